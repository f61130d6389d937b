// internal/audit/service.go
package audit

import (
	"context"
	"time"

	"focis/internal/domain"
	"focis/internal/projection"
)

// Service defines the interface for ledger oversight.
type Service interface {
	Trail(ctx context.Context, f TrailFilter) ([]domain.Event, error)
	Event(ctx context.Context, id string) (domain.Event, error)
	Record(ctx context.Context, e Entry) (domain.Event, error)
	Reverse(ctx context.Context, r Reversal) (domain.Event, error)
	Dashboard(ctx context.Context, factoryID string, window time.Duration) (projection.KPIs, error)
	VerifyChain(ctx context.Context) (ChainStatus, error)
}
