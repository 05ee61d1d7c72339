package attendance

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the interface for the attendance ledger.
type Service interface {
	RecordScan(ctx context.Context, memberID uuid.UUID, facility Facility, companions []string) (*ScanResult, error)
	Status(ctx context.Context, memberID uuid.UUID, facility Facility) (Status, error)
	History(ctx context.Context, memberID uuid.UUID) ([]Record, error)
}
