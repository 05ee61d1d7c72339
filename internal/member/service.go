package member

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the interface for member management.
type Service interface {
	Create(ctx context.Context, input Input) (*Member, error)
	Update(ctx context.Context, id uuid.UUID, input Input) (*Member, error)
	Get(ctx context.Context, id uuid.UUID) (*Member, error)
	GetByMembershipNumber(ctx context.Context, number string) (*Member, error)
	List(ctx context.Context) ([]Member, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
