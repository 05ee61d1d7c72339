package attendance

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"clubpulse/internal/member"
	"clubpulse/internal/storage"
)

// ErrUnknownFacility is returned for a facility outside the fixed set.
var ErrUnknownFacility = errors.New("unknown facility")

// service implements the Service interface.
type service struct {
	store     storage.Store
	members   member.Service
	logger    *zap.Logger
	now       func() time.Time
	carryOver bool
}

// Option configures the service.
type Option func(*service)

// WithClock overrides the time source; tests use it to pin "now".
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// WithCarryOver makes an entry left open on a previous day decide the next
// scan instead of resetting to "outside" at midnight.
func WithCarryOver(enabled bool) Option {
	return func(s *service) { s.carryOver = enabled }
}

// NewService creates an attendance ledger backed by the record store.
func NewService(store storage.Store, members member.Service, logger *zap.Logger, opts ...Option) Service {
	s := &service{store: store, members: members, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordScan decides whether the scan is an entry or an exit for the
// member/facility/day triple and appends the resulting record.
func (s *service) RecordScan(ctx context.Context, memberID uuid.UUID, facility Facility, companions []string) (*ScanResult, error) {
	if !facility.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFacility, facility)
	}
	m, err := s.members.Get(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("resolve member: %w", err)
	}

	now := s.now()
	today := now.Format(storage.DateLayout)

	var result *ScanResult
	err = s.store.Atomic(ctx, func(ctx context.Context, tx storage.Tx) error {
		var records []Record
		if err := tx.Get(ctx, storage.Attendance, &records); err != nil {
			return err
		}

		rec := Record{
			ID:               uuid.New(),
			MemberID:         memberID,
			MembershipNumber: m.MembershipNumber,
			MemberName:       m.FullName(),
			Facility:         facility,
			EntryTime:        now,
			Date:             today,
			Companions:       companions,
		}
		if s.hasOpenEntry(records, memberID, facility, today) {
			rec.Type = EventExit
			rec.ExitTime = &now
		} else {
			rec.Type = EventEntry
		}

		records = append(records, rec)
		if err := tx.Put(ctx, storage.Attendance, records); err != nil {
			return err
		}
		result = &ScanResult{Action: rec.Type, Record: rec}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("record scan: %w", err)
	}

	s.logger.Info("scan recorded",
		zap.String("membershipNumber", m.MembershipNumber),
		zap.String("facility", string(facility)),
		zap.String("action", string(result.Action)))
	return result, nil
}

// hasOpenEntry applies the latest-record rule: the member is inside when
// the most recent record for the member/facility pair is an entry. Without
// carry-over only today's records count, so every day starts "outside"
// even if yesterday's entry was never closed.
func (s *service) hasOpenEntry(records []Record, memberID uuid.UUID, facility Facility, today string) bool {
	var latest *Record
	for i := range records {
		r := &records[i]
		if r.MemberID != memberID || r.Facility != facility {
			continue
		}
		if !s.carryOver && r.Date != today {
			continue
		}
		if latest == nil || r.EventTime().After(latest.EventTime()) {
			latest = r
		}
	}
	return latest != nil && latest.Type == EventEntry
}

// Status replays the latest-record rule without writing anything.
func (s *service) Status(ctx context.Context, memberID uuid.UUID, facility Facility) (Status, error) {
	if !facility.Valid() {
		return "", fmt.Errorf("%w: %s", ErrUnknownFacility, facility)
	}
	var records []Record
	if err := s.store.Get(ctx, storage.Attendance, &records); err != nil {
		return "", fmt.Errorf("load attendance: %w", err)
	}
	today := s.now().Format(storage.DateLayout)
	if s.hasOpenEntry(records, memberID, facility, today) {
		return StatusInside, nil
	}
	return StatusOutside, nil
}

// History returns the member's records, most recent first.
func (s *service) History(ctx context.Context, memberID uuid.UUID) ([]Record, error) {
	var records []Record
	if err := s.store.Get(ctx, storage.Attendance, &records); err != nil {
		return nil, fmt.Errorf("load attendance: %w", err)
	}
	history := make([]Record, 0)
	for _, r := range records {
		if r.MemberID == memberID {
			history = append(history, r)
		}
	}
	sort.Slice(history, func(i, j int) bool {
		return history[i].EventTime().After(history[j].EventTime())
	})
	return history, nil
}
