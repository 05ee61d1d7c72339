package member

import (
	"time"

	"github.com/google/uuid"
)

// Member is a registered club member. The id and membership number are
// immutable once assigned.
type Member struct {
	ID                    uuid.UUID `json:"id"`
	MembershipNumber      string    `json:"membershipNumber"`
	FirstName             string    `json:"firstName"`
	LastName              string    `json:"lastName"`
	Phone                 string    `json:"phone"`
	Email                 string    `json:"email"`
	EmergencyContactName  string    `json:"emergencyContactName"`
	EmergencyContactPhone string    `json:"emergencyContactPhone"`
	HasInsurance          bool      `json:"hasInsurance"`
	InsuranceCompany      string    `json:"insuranceCompany,omitempty"`
	PolicyNumber          string    `json:"policyNumber,omitempty"`
	CreatedAt             time.Time `json:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

// FullName returns the member's display name.
func (m Member) FullName() string {
	return m.FirstName + " " + m.LastName
}

// Input carries the editable member fields for create and update.
type Input struct {
	FirstName             string `json:"firstName"`
	LastName              string `json:"lastName"`
	Phone                 string `json:"phone"`
	Email                 string `json:"email"`
	EmergencyContactName  string `json:"emergencyContactName"`
	EmergencyContactPhone string `json:"emergencyContactPhone"`
	HasInsurance          bool   `json:"hasInsurance"`
	InsuranceCompany      string `json:"insuranceCompany"`
	PolicyNumber          string `json:"policyNumber"`
}
