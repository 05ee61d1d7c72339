package dues

import (
	"fmt"

	"github.com/google/uuid"
)

// MonthlyRate is the fixed dues amount per calendar month.
const MonthlyRate = 800.0

// MonthLayout formats the YYYY-MM month key.
const MonthLayout = "2006-01"

// Fee is one member-month dues entry. Its id is deterministic so
// generation can be replayed without duplicating entries.
type Fee struct {
	ID               string    `json:"id"`
	MemberID         uuid.UUID `json:"memberId"`
	MembershipNumber string    `json:"membershipNumber"`
	Month            string    `json:"month"`
	Amount           float64   `json:"amount"`
	Paid             bool      `json:"paid"`
	DueDate          string    `json:"dueDate"`
}

// FeeID builds the deterministic {memberId}-{YYYY-MM} key.
func FeeID(memberID uuid.UUID, month string) string {
	return fmt.Sprintf("%s-%s", memberID, month)
}

// DueDatePolicy decides the due date when a member registered on a day the
// target month does not have.
type DueDatePolicy string

const (
	// ClampToMonthEnd keeps the due date inside the month, so a member
	// registered on the 31st is due on Feb 28 (or 29).
	ClampToMonthEnd DueDatePolicy = "clamp"
	// RollForward lets date normalization spill into the next month
	// (Jan 31 becomes Mar 2 or 3), matching the club's previous system.
	RollForward DueDatePolicy = "roll-forward"
)
