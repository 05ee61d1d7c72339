package guest

import (
	"time"

	"github.com/google/uuid"
)

const (
	// FreeGuestLimit is the number of same-day guests a member brings in
	// before each additional guest is charged.
	FreeGuestLimit = 2
	// AdditionalGuestFee is the flat fee per guest over the limit.
	AdditionalGuestFee = 10.0
)

// Record is one guest visit. The overage fee is stamped at creation time
// and never recomputed.
type Record struct {
	ID               uuid.UUID `json:"id"`
	MemberID         uuid.UUID `json:"memberId"`
	MembershipNumber string    `json:"membershipNumber"`
	GuestName        string    `json:"guestName"`
	EntryTime        time.Time `json:"entryTime"`
	Date             string    `json:"date"`
	AdditionalCharge float64   `json:"additionalCharge"`
}

// Charge is a billable extra on a member's account. Only the paid flag is
// mutable after creation.
type Charge struct {
	ID               uuid.UUID `json:"id"`
	MemberID         uuid.UUID `json:"memberId"`
	MembershipNumber string    `json:"membershipNumber"`
	Amount           float64   `json:"amount"`
	Reason           string    `json:"reason"`
	Date             string    `json:"date"`
	Paid             bool      `json:"paid"`
}
