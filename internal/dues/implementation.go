package dues

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"clubpulse/internal/member"
	"clubpulse/internal/storage"
)

// service implements the Service interface.
type service struct {
	store   storage.Store
	members member.Service
	logger  *zap.Logger
	now     func() time.Time
	policy  DueDatePolicy
}

// Option configures the service.
type Option func(*service)

// WithClock overrides the time source; tests use it to pin "now".
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// WithDueDatePolicy selects the month-end behavior for due dates.
func WithDueDatePolicy(policy DueDatePolicy) Option {
	return func(s *service) { s.policy = policy }
}

// NewService creates a dues generator backed by the record store.
func NewService(store storage.Store, members member.Service, logger *zap.Logger, opts ...Option) Service {
	s := &service{
		store:   store,
		members: members,
		logger:  logger,
		now:     time.Now,
		policy:  ClampToMonthEnd,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureGenerated walks each member's months from registration through the
// current month and appends any fee whose deterministic id is missing.
// Existing fees, including their paid flags, are never rewritten, so the
// call is idempotent and additive-only.
func (s *service) EnsureGenerated(ctx context.Context) ([]Fee, error) {
	members, err := s.members.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	var out []Fee
	err = s.store.Atomic(ctx, func(ctx context.Context, tx storage.Tx) error {
		var fees []Fee
		if err := tx.Get(ctx, storage.MonthlyFees, &fees); err != nil {
			return err
		}

		existing := make(map[string]struct{}, len(fees))
		for _, f := range fees {
			existing[f.ID] = struct{}{}
		}

		now := s.now()
		end := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		added := 0
		for _, m := range members {
			reg := m.CreatedAt
			cursor := time.Date(reg.Year(), reg.Month(), 1, 0, 0, 0, 0, time.UTC)
			for !cursor.After(end) {
				monthKey := cursor.Format(MonthLayout)
				id := FeeID(m.ID, monthKey)
				if _, ok := existing[id]; !ok {
					fees = append(fees, Fee{
						ID:               id,
						MemberID:         m.ID,
						MembershipNumber: m.MembershipNumber,
						Month:            monthKey,
						Amount:           MonthlyRate,
						Paid:             false,
						DueDate:          s.dueDate(cursor.Year(), cursor.Month(), reg.Day()),
					})
					existing[id] = struct{}{}
					added++
				}
				cursor = cursor.AddDate(0, 1, 0)
			}
		}

		sort.Slice(fees, func(i, j int) bool {
			if fees[i].Month != fees[j].Month {
				return fees[i].Month > fees[j].Month
			}
			return fees[i].MembershipNumber < fees[j].MembershipNumber
		})
		if err := tx.Put(ctx, storage.MonthlyFees, fees); err != nil {
			return err
		}

		if added > 0 {
			s.logger.Info("monthly dues generated", zap.Int("added", added))
		}
		out = fees
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("generate dues: %w", err)
	}
	return out, nil
}

// dueDate applies the registration day to the target month under the
// configured month-end policy.
func (s *service) dueDate(year int, month time.Month, day int) string {
	if s.policy == ClampToMonthEnd {
		if last := daysIn(year, month); day > last {
			day = last
		}
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Format(storage.DateLayout)
}

// daysIn returns the number of days in the month; day 0 of the next month
// normalizes to the last day of this one.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (s *service) List(ctx context.Context) ([]Fee, error) {
	fees := []Fee{}
	if err := s.store.Get(ctx, storage.MonthlyFees, &fees); err != nil {
		return nil, fmt.Errorf("load fees: %w", err)
	}
	return fees, nil
}

func (s *service) OutstandingForMember(ctx context.Context, memberID uuid.UUID) ([]Fee, error) {
	fees, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	outstanding := []Fee{}
	for _, f := range fees {
		if f.MemberID == memberID && !f.Paid {
			outstanding = append(outstanding, f)
		}
	}
	return outstanding, nil
}

// MarkPaid flips a fee to paid; an unknown id is a no-op.
func (s *service) MarkPaid(ctx context.Context, feeID string) error {
	err := s.store.Atomic(ctx, func(ctx context.Context, tx storage.Tx) error {
		var fees []Fee
		if err := tx.Get(ctx, storage.MonthlyFees, &fees); err != nil {
			return err
		}
		for i := range fees {
			if fees[i].ID == feeID {
				fees[i].Paid = true
			}
		}
		return tx.Put(ctx, storage.MonthlyFees, fees)
	})
	if err != nil {
		return fmt.Errorf("mark fee paid: %w", err)
	}
	return nil
}
