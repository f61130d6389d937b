// internal/production/service.go
package production

import (
	"context"
	"time"

	"focis/internal/domain"
	"focis/internal/projection"
)

// Service defines the interface for the shop floor: cycles, waste and curing.
type Service interface {
	StartCycle(ctx context.Context, c CycleStart) (domain.Event, error)
	EndCycle(ctx context.Context, c CycleEnd) (CycleResult, error)
	RecordWaste(ctx context.Context, w Waste) (domain.Event, error)
	ReleaseDrying(ctx context.Context, r DryingRelease) (domain.Event, error)
	ActiveCycles(ctx context.Context) ([]projection.ActiveCycle, error)
	DryingSlots(ctx context.Context) ([]projection.DryingSlot, error)
	OEE(ctx context.Context, factoryID string, window time.Duration) (projection.OEEBreakdown, error)
}
