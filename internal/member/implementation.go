package member

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"clubpulse/internal/storage"
)

// ErrNotFound is returned when no member matches the given id or number.
var ErrNotFound = errors.New("member not found")

// service implements the Service interface.
type service struct {
	store  storage.Store
	logger *zap.Logger
	now    func() time.Time
}

// Option configures the service.
type Option func(*service)

// WithClock overrides the time source; tests use it to pin "now".
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// NewService creates a member service backed by the record store.
func NewService(store storage.Store, logger *zap.Logger, opts ...Option) Service {
	s := &service{store: store, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates the input, assigns the next membership number and
// appends the member.
func (s *service) Create(ctx context.Context, input Input) (*Member, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var created *Member
	err := s.store.Atomic(ctx, func(ctx context.Context, tx storage.Tx) error {
		var members []Member
		if err := tx.Get(ctx, storage.Members, &members); err != nil {
			return err
		}

		now := s.now()
		m := Member{
			ID:                    uuid.New(),
			MembershipNumber:      nextMembershipNumber(members),
			FirstName:             input.FirstName,
			LastName:              input.LastName,
			Phone:                 input.Phone,
			Email:                 input.Email,
			EmergencyContactName:  input.EmergencyContactName,
			EmergencyContactPhone: input.EmergencyContactPhone,
			HasInsurance:          input.HasInsurance,
			InsuranceCompany:      input.InsuranceCompany,
			PolicyNumber:          input.PolicyNumber,
			CreatedAt:             now,
			UpdatedAt:             now,
		}
		members = append(members, m)
		if err := tx.Put(ctx, storage.Members, members); err != nil {
			return err
		}
		created = &m
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create member: %w", err)
	}

	s.logger.Info("member created",
		zap.String("membershipNumber", created.MembershipNumber))
	return created, nil
}

// nextMembershipNumber continues the zero-padded sequence.
func nextMembershipNumber(members []Member) string {
	max := 0
	for _, m := range members {
		if n, err := strconv.Atoi(m.MembershipNumber); err == nil && n > max {
			max = n
		}
	}
	return fmt.Sprintf("%06d", max+1)
}

// Update replaces the editable fields. The id, membership number and
// creation time are never touched.
func (s *service) Update(ctx context.Context, id uuid.UUID, input Input) (*Member, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var updated *Member
	err := s.store.Atomic(ctx, func(ctx context.Context, tx storage.Tx) error {
		var members []Member
		if err := tx.Get(ctx, storage.Members, &members); err != nil {
			return err
		}
		for i := range members {
			if members[i].ID != id {
				continue
			}
			m := &members[i]
			m.FirstName = input.FirstName
			m.LastName = input.LastName
			m.Phone = input.Phone
			m.Email = input.Email
			m.EmergencyContactName = input.EmergencyContactName
			m.EmergencyContactPhone = input.EmergencyContactPhone
			m.HasInsurance = input.HasInsurance
			m.InsuranceCompany = input.InsuranceCompany
			m.PolicyNumber = input.PolicyNumber
			m.UpdatedAt = s.now()
			updated = m
			break
		}
		if updated == nil {
			return ErrNotFound
		}
		return tx.Put(ctx, storage.Members, members)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update member: %w", err)
	}
	return updated, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Member, error) {
	var members []Member
	if err := s.store.Get(ctx, storage.Members, &members); err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}
	for i := range members {
		if members[i].ID == id {
			return &members[i], nil
		}
	}
	return nil, ErrNotFound
}

func (s *service) GetByMembershipNumber(ctx context.Context, number string) (*Member, error) {
	var members []Member
	if err := s.store.Get(ctx, storage.Members, &members); err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}
	for i := range members {
		if members[i].MembershipNumber == number {
			return &members[i], nil
		}
	}
	return nil, ErrNotFound
}

func (s *service) List(ctx context.Context) ([]Member, error) {
	members := []Member{}
	if err := s.store.Get(ctx, storage.Members, &members); err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}
	return members, nil
}

// Delete removes the member and cascades to every dependent collection in
// one atomic update.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.store.Atomic(ctx, func(ctx context.Context, tx storage.Tx) error {
		var members []Member
		if err := tx.Get(ctx, storage.Members, &members); err != nil {
			return err
		}
		kept := members[:0]
		found := false
		for _, m := range members {
			if m.ID == id {
				found = true
				continue
			}
			kept = append(kept, m)
		}
		if !found {
			return ErrNotFound
		}
		if err := tx.Put(ctx, storage.Members, kept); err != nil {
			return err
		}

		cascades := []string{storage.Attendance, storage.Guests, storage.Charges, storage.MonthlyFees}
		for _, key := range cascades {
			if err := dropOwned(ctx, tx, key, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete member: %w", err)
	}

	s.logger.Info("member deleted", zap.String("id", id.String()))
	return nil
}

// dropOwned filters a collection down to records not owned by the member,
// without assuming the collection's full schema.
func dropOwned(ctx context.Context, tx storage.Tx, key string, memberID uuid.UUID) error {
	var records []json.RawMessage
	if err := tx.Get(ctx, key, &records); err != nil {
		return err
	}
	kept := records[:0]
	for _, raw := range records {
		var owner struct {
			MemberID uuid.UUID `json:"memberId"`
		}
		if err := json.Unmarshal(raw, &owner); err == nil && owner.MemberID == memberID {
			continue
		}
		kept = append(kept, raw)
	}
	return tx.Put(ctx, key, kept)
}
