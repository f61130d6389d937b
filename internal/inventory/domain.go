// internal/inventory/domain.go
package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

// Receipt books purchased stock (Goods Receipt) or pre-ledger stock
// (Opening Balance) into a warehouse.
type Receipt struct {
	ItemID      string          `json:"itemId"`
	WarehouseID string          `json:"warehouseId"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	ExpiryDate  *time.Time      `json:"expiryDate,omitempty"`
	Reference   string          `json:"reference,omitempty"`
	OccurredAt  time.Time       `json:"occurredAt,omitempty"`
	Location    string          `json:"location,omitempty"`
}

// Issue takes stock out of inventory, optionally against an asset.
type Issue struct {
	ItemID            string          `json:"itemId"`
	WarehouseID       string          `json:"warehouseId,omitempty"`
	Quantity          decimal.Decimal `json:"quantity"`
	LinkedAssetID     string          `json:"linkedAssetId,omitempty"`
	LinkedWorkOrderID string          `json:"linkedWorkOrderId,omitempty"`
	OccurredAt        time.Time       `json:"occurredAt,omitempty"`
	Location          string          `json:"location,omitempty"`
}

// Transfer moves stock between two warehouses.
type Transfer struct {
	ItemID          string          `json:"itemId"`
	FromWarehouseID string          `json:"fromWarehouseId"`
	ToWarehouseID   string          `json:"toWarehouseId"`
	Quantity        decimal.Decimal `json:"quantity"`
	OccurredAt      time.Time       `json:"occurredAt,omitempty"`
	Location        string          `json:"location,omitempty"`
}

// Adjustment corrects a count. Negative quantities are losses.
type Adjustment struct {
	ItemID     string          `json:"itemId"`
	BatchID    string          `json:"batchId,omitempty"`
	Quantity   decimal.Decimal `json:"quantity"`
	Reason     string          `json:"reason"`
	OccurredAt time.Time       `json:"occurredAt,omitempty"`
	Location   string          `json:"location,omitempty"`
}

// BatchFilter narrows a batch listing. Zero values match everything.
type BatchFilter struct {
	ItemID      string
	WarehouseID string
	OpenOnly    bool
}
