// internal/maintenance/service.go
package maintenance

import (
	"context"

	"focis/internal/domain"
	"focis/internal/projection"
)

// Service defines the interface for asset maintenance.
type Service interface {
	ReportBreakdown(ctx context.Context, b BreakdownReport) (BreakdownResult, error)
	StartWorkOrder(ctx context.Context, a WorkOrderAction) (domain.Event, error)
	CloseWorkOrder(ctx context.Context, a WorkOrderAction) (domain.Event, error)
	RecordFix(ctx context.Context, r ServiceRecord) (domain.Event, error)
	RecordPreventive(ctx context.Context, r ServiceRecord) (domain.Event, error)
	IssueSparePart(ctx context.Context, i SpareIssue) (domain.Event, error)
	AssetMetrics(ctx context.Context) ([]projection.AssetMetrics, error)
	Asset(ctx context.Context, assetID string) (projection.AssetMetrics, error)
	WorkOrders(ctx context.Context) ([]projection.WorkOrder, error)
}
