package guest

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the interface for the guest and charge ledger.
type Service interface {
	RegisterGuest(ctx context.Context, memberID uuid.UUID, guestName string) (*Record, error)
	TodayGuestCount(ctx context.Context, memberID uuid.UUID) (int, error)
	ListGuests(ctx context.Context) ([]Record, error)
	ListCharges(ctx context.Context) ([]Charge, error)
	MarkPaid(ctx context.Context, chargeID uuid.UUID) error
}
