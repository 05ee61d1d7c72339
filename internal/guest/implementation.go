package guest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"clubpulse/internal/member"
	"clubpulse/internal/storage"
)

// ErrGuestNameRequired is returned when the guest name is blank.
var ErrGuestNameRequired = errors.New("guest name required")

// service implements the Service interface.
type service struct {
	store   storage.Store
	members member.Service
	logger  *zap.Logger
	now     func() time.Time
}

// Option configures the service.
type Option func(*service)

// WithClock overrides the time source; tests use it to pin "now".
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// NewService creates a guest ledger backed by the record store.
func NewService(store storage.Store, members member.Service, logger *zap.Logger, opts ...Option) Service {
	s := &service{store: store, members: members, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterGuest records a guest visit. The count of guests already
// registered today decides the fee, so the third guest of the day is the
// first one charged. The guest record and the matching charge are written
// in one atomic update.
func (s *service) RegisterGuest(ctx context.Context, memberID uuid.UUID, guestName string) (*Record, error) {
	guestName = strings.TrimSpace(guestName)
	if guestName == "" {
		return nil, ErrGuestNameRequired
	}
	m, err := s.members.Get(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("resolve member: %w", err)
	}

	now := s.now()
	today := now.Format(storage.DateLayout)

	var created *Record
	err = s.store.Atomic(ctx, func(ctx context.Context, tx storage.Tx) error {
		var guests []Record
		if err := tx.Get(ctx, storage.Guests, &guests); err != nil {
			return err
		}

		count := 0
		for _, g := range guests {
			if g.MemberID == memberID && g.Date == today {
				count++
			}
		}
		var fee float64
		if count >= FreeGuestLimit {
			fee = AdditionalGuestFee
		}

		rec := Record{
			ID:               uuid.New(),
			MemberID:         memberID,
			MembershipNumber: m.MembershipNumber,
			GuestName:        guestName,
			EntryTime:        now,
			Date:             today,
			AdditionalCharge: fee,
		}
		guests = append(guests, rec)
		if err := tx.Put(ctx, storage.Guests, guests); err != nil {
			return err
		}

		if fee > 0 {
			var charges []Charge
			if err := tx.Get(ctx, storage.Charges, &charges); err != nil {
				return err
			}
			charges = append(charges, Charge{
				ID:               uuid.New(),
				MemberID:         memberID,
				MembershipNumber: m.MembershipNumber,
				Amount:           fee,
				Reason:           fmt.Sprintf("Additional guest: %s", guestName),
				Date:             today,
				Paid:             false,
			})
			if err := tx.Put(ctx, storage.Charges, charges); err != nil {
				return err
			}
		}

		created = &rec
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("register guest: %w", err)
	}

	if created.AdditionalCharge > 0 {
		s.logger.Info("guest over the free limit",
			zap.String("membershipNumber", m.MembershipNumber),
			zap.Float64("fee", created.AdditionalCharge))
	}
	return created, nil
}

// TodayGuestCount counts the member's guests for the current date.
func (s *service) TodayGuestCount(ctx context.Context, memberID uuid.UUID) (int, error) {
	var guests []Record
	if err := s.store.Get(ctx, storage.Guests, &guests); err != nil {
		return 0, fmt.Errorf("load guests: %w", err)
	}
	today := s.now().Format(storage.DateLayout)
	count := 0
	for _, g := range guests {
		if g.MemberID == memberID && g.Date == today {
			count++
		}
	}
	return count, nil
}

func (s *service) ListGuests(ctx context.Context) ([]Record, error) {
	guests := []Record{}
	if err := s.store.Get(ctx, storage.Guests, &guests); err != nil {
		return nil, fmt.Errorf("load guests: %w", err)
	}
	return guests, nil
}

func (s *service) ListCharges(ctx context.Context) ([]Charge, error) {
	charges := []Charge{}
	if err := s.store.Get(ctx, storage.Charges, &charges); err != nil {
		return nil, fmt.Errorf("load charges: %w", err)
	}
	return charges, nil
}

// MarkPaid flips a charge to paid. The update is a map-and-replace over
// the collection, so an unknown id is a no-op rather than an error, and
// repeating the call changes nothing.
func (s *service) MarkPaid(ctx context.Context, chargeID uuid.UUID) error {
	err := s.store.Atomic(ctx, func(ctx context.Context, tx storage.Tx) error {
		var charges []Charge
		if err := tx.Get(ctx, storage.Charges, &charges); err != nil {
			return err
		}
		for i := range charges {
			if charges[i].ID == chargeID {
				charges[i].Paid = true
			}
		}
		return tx.Put(ctx, storage.Charges, charges)
	})
	if err != nil {
		return fmt.Errorf("mark charge paid: %w", err)
	}
	return nil
}
