// internal/security/domain.go
package security

import (
	"time"

	"github.com/shopspring/decimal"

	"focis/internal/domain"
)

// Movement is a vehicle crossing the gate. ItemID is empty for trucks that
// carry nothing the factory stocks.
type Movement struct {
	VehicleNo  string          `json:"vehicleNo"`
	DriverName string          `json:"driverName,omitempty"`
	ItemID     string          `json:"itemId,omitempty"`
	Quantity   decimal.Decimal `json:"quantity"`
	Reference  string          `json:"reference,omitempty"`
	OccurredAt time.Time       `json:"occurredAt,omitempty"`
	Location   string          `json:"location,omitempty"`
}

// GateResult holds the gate event and, for inbound stock, its receipt.
type GateResult struct {
	Gate    domain.Event  `json:"gate"`
	Receipt *domain.Event `json:"receipt,omitempty"`
}

// Check is an inspection recorded at the gate.
type Check struct {
	VehicleNo  string    `json:"vehicleNo,omitempty"`
	Result     string    `json:"result"`
	Notes      string    `json:"notes,omitempty"`
	OccurredAt time.Time `json:"occurredAt,omitempty"`
	Location   string    `json:"location,omitempty"`
}

// Options sets where and at what price gate receipts are booked.
type Options struct {
	ReceiptWarehouseID string
	ReceiptUnitPrice   decimal.Decimal
}

// DefaultOptions books gate receipts into raw material stores at 450.
func DefaultOptions() Options {
	return Options{
		ReceiptWarehouseID: "wh-rm",
		ReceiptUnitPrice:   decimal.NewFromInt(450),
	}
}
