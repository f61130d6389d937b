// internal/inventory/service.go
package inventory

import (
	"context"

	"focis/internal/domain"
	"focis/internal/projection"
)

// Service defines the interface for stock movements and valuation.
type Service interface {
	Receive(ctx context.Context, r Receipt) (domain.Event, error)
	OpeningBalance(ctx context.Context, r Receipt) (domain.Event, error)
	Issue(ctx context.Context, i Issue) (domain.Event, error)
	Consume(ctx context.Context, i Issue) (domain.Event, error)
	Transfer(ctx context.Context, t Transfer) (domain.Event, error)
	Adjust(ctx context.Context, a Adjustment) (domain.Event, error)
	Batches(ctx context.Context, f BatchFilter) ([]projection.Batch, error)
	Stock(ctx context.Context) ([]projection.StockSummary, error)
	CostBreakdown(ctx context.Context, itemID string) (projection.CostBreakdown, error)
}
