package attendance

import (
	"time"

	"github.com/google/uuid"
)

// Facility is one of the club's fixed tracked areas.
type Facility string

const (
	Gym             Facility = "gym"
	Pool            Facility = "pool"
	BasketballCourt Facility = "basketball court"
	TennisCourt     Facility = "tennis court"
	Cafeteria       Facility = "cafeteria"
	Sauna           Facility = "sauna"
	SpinningArea    Facility = "spinning area"
	MainEntrance    Facility = "main entrance"
)

// Facilities lists every tracked area. Adding a facility means extending
// this set; it is not data-driven.
var Facilities = []Facility{
	Gym,
	Pool,
	BasketballCourt,
	TennisCourt,
	Cafeteria,
	Sauna,
	SpinningArea,
	MainEntrance,
}

// Valid reports whether f is a known facility.
func (f Facility) Valid() bool {
	for _, known := range Facilities {
		if f == known {
			return true
		}
	}
	return false
}

// EventType marks a record as an entry or an exit.
type EventType string

const (
	EventEntry EventType = "entry"
	EventExit  EventType = "exit"
)

// Record is one immutable scan event. Entries and exits for a
// member/facility/day alternate; the ledger only ever appends.
type Record struct {
	ID               uuid.UUID  `json:"id"`
	MemberID         uuid.UUID  `json:"memberId"`
	MembershipNumber string     `json:"membershipNumber"`
	MemberName       string     `json:"memberName,omitempty"`
	Facility         Facility   `json:"facility"`
	Type             EventType  `json:"type"`
	EntryTime        time.Time  `json:"entryTime"`
	ExitTime         *time.Time `json:"exitTime,omitempty"`
	Date             string     `json:"date"`
	Companions       []string   `json:"companions,omitempty"`
}

// EventTime is the instant the record represents.
func (r Record) EventTime() time.Time {
	if r.Type == EventExit && r.ExitTime != nil {
		return *r.ExitTime
	}
	return r.EntryTime
}

// Status of a member relative to a facility.
type Status string

const (
	StatusInside  Status = "inside"
	StatusOutside Status = "outside"
)

// ScanResult reports what a scan turned into.
type ScanResult struct {
	Action EventType `json:"action"`
	Record Record    `json:"record"`
}
