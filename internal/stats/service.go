package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"clubpulse/internal/member"
	"clubpulse/internal/storage"
)

// Service defines the read-only statistics interface.
type Service interface {
	MemberStats(ctx context.Context, memberID uuid.UUID, rng Range) (*MemberStats, error)
	GlobalStats(ctx context.Context, rng Range) (GlobalStats, error)
	MemberTrend(ctx context.Context, memberID uuid.UUID, days int) ([]TrendPoint, error)
	Calendar(ctx context.Context, memberID uuid.UUID, year int, month time.Month) ([]CalendarDay, error)
	Recent(ctx context.Context, limit int) ([]Activity, error)
	Dashboard(ctx context.Context) (Dashboard, error)
	Growth(ctx context.Context, months int) ([]GrowthPoint, error)
}

type service struct {
	store storage.Store
	now   func() time.Time
}

// Option configures the service.
type Option func(*service)

// WithClock overrides the time source; tests use it to pin "now".
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// NewService creates a statistics reader backed by the record store.
func NewService(store storage.Store, opts ...Option) Service {
	s := &service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// snapshot loads every collection an aggregation may touch. Reads are
// independent; a torn view only skews a report, never the ledger.
func (s *service) snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	if err := s.store.Get(ctx, storage.Members, &snap.Members); err != nil {
		return snap, fmt.Errorf("load members: %w", err)
	}
	if err := s.store.Get(ctx, storage.Attendance, &snap.Attendance); err != nil {
		return snap, fmt.Errorf("load attendance: %w", err)
	}
	if err := s.store.Get(ctx, storage.Guests, &snap.Guests); err != nil {
		return snap, fmt.Errorf("load guests: %w", err)
	}
	if err := s.store.Get(ctx, storage.Charges, &snap.Charges); err != nil {
		return snap, fmt.Errorf("load charges: %w", err)
	}
	return snap, nil
}

func (s *service) MemberStats(ctx context.Context, memberID uuid.UUID, rng Range) (*MemberStats, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	stats := MemberStatsFor(snap, memberID, rng, s.now())
	if stats == nil {
		return nil, member.ErrNotFound
	}
	return stats, nil
}

func (s *service) GlobalStats(ctx context.Context, rng Range) (GlobalStats, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return GlobalStats{}, err
	}
	return GlobalStatsFor(snap, rng, s.now()), nil
}

func (s *service) MemberTrend(ctx context.Context, memberID uuid.UUID, days int) ([]TrendPoint, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		days = TrendDays
	}
	return MemberVisitTrend(snap, memberID, days, s.now()), nil
}

func (s *service) Calendar(ctx context.Context, memberID uuid.UUID, year int, month time.Month) ([]CalendarDay, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return CalendarData(snap, memberID, year, month), nil
}

func (s *service) Recent(ctx context.Context, limit int) ([]Activity, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return RecentActivity(snap, limit), nil
}

func (s *service) Dashboard(ctx context.Context) (Dashboard, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	return DashboardFor(snap, s.now()), nil
}

func (s *service) Growth(ctx context.Context, months int) ([]GrowthPoint, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if months <= 0 {
		months = 12
	}
	return MembershipGrowth(snap, months, s.now()), nil
}
