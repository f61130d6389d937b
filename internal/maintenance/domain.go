// internal/maintenance/domain.go
package maintenance

import (
	"time"

	"github.com/shopspring/decimal"

	"focis/internal/domain"
)

// PriorityHigh is given to work orders opened by a breakdown.
const PriorityHigh = "High"

// BreakdownReport takes an asset down and opens a work order for it.
type BreakdownReport struct {
	AssetID     string    `json:"assetId"`
	Description string    `json:"description,omitempty"`
	Priority    string    `json:"priority,omitempty"`
	OccurredAt  time.Time `json:"occurredAt,omitempty"`
	Location    string    `json:"location,omitempty"`
}

// BreakdownResult is the pair of events a breakdown report records.
type BreakdownResult struct {
	Breakdown domain.Event `json:"breakdown"`
	WorkOrder domain.Event `json:"workOrder"`
}

// WorkOrderAction starts or closes a work order.
type WorkOrderAction struct {
	WorkOrderID string    `json:"woId"`
	Conclusion  string    `json:"conclusion,omitempty"`
	OccurredAt  time.Time `json:"occurredAt,omitempty"`
	Location    string    `json:"location,omitempty"`
}

// ServiceRecord records maintenance on an asset outside the work order flow
// (Fix or Preventive Maintenance).
type ServiceRecord struct {
	AssetID     string    `json:"assetId"`
	WorkOrderID string    `json:"woId,omitempty"`
	Description string    `json:"description,omitempty"`
	OccurredAt  time.Time `json:"occurredAt,omitempty"`
	Location    string    `json:"location,omitempty"`
}

// SpareIssue consumes spare parts against an open work order.
type SpareIssue struct {
	WorkOrderID string          `json:"woId"`
	PartID      string          `json:"partId"`
	WarehouseID string          `json:"warehouseId,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	OccurredAt  time.Time       `json:"occurredAt,omitempty"`
	Location    string          `json:"location,omitempty"`
}
