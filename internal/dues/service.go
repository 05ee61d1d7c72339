package dues

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the interface for the monthly dues generator.
type Service interface {
	// EnsureGenerated brings the fee collection up to date and returns it.
	// Callers invoke it before dues are displayed or totaled.
	EnsureGenerated(ctx context.Context) ([]Fee, error)
	List(ctx context.Context) ([]Fee, error)
	OutstandingForMember(ctx context.Context, memberID uuid.UUID) ([]Fee, error)
	MarkPaid(ctx context.Context, feeID string) error
}
