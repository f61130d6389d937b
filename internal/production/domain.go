// internal/production/domain.go
package production

import (
	"time"

	"github.com/shopspring/decimal"

	"focis/internal/domain"
)

// CycleStart opens a production cycle on a line.
type CycleStart struct {
	AssetID    string    `json:"assetId"`
	ProductID  string    `json:"productId"`
	OccurredAt time.Time `json:"occurredAt,omitempty"`
	Location   string    `json:"location,omitempty"`
}

// CycleEnd closes an active cycle and moves its pallets into curing.
// SlotID defaults to the factory's drying room.
type CycleEnd struct {
	StartEventID        string    `json:"startEventId"`
	PalletCount         int       `json:"palletCount"`
	UnitsPerPallet      int       `json:"unitsPerPallet,omitempty"`
	SlotID              string    `json:"slotId,omitempty"`
	CuringDurationHours float64   `json:"curingDurationHours,omitempty"`
	OccurredAt          time.Time `json:"occurredAt,omitempty"`
	Location            string    `json:"location,omitempty"`
}

// Waste records rejected units on a line.
type Waste struct {
	AssetID    string          `json:"assetId"`
	ProductID  string          `json:"productId,omitempty"`
	Quantity   decimal.Decimal `json:"quantity"`
	Reason     string          `json:"reason,omitempty"`
	OccurredAt time.Time       `json:"occurredAt,omitempty"`
	Location   string          `json:"location,omitempty"`
}

// DryingRelease takes a cured pallet group out of its slot.
type DryingRelease struct {
	EntryEventID string    `json:"entryEventId"`
	OccurredAt   time.Time `json:"occurredAt,omitempty"`
	Location     string    `json:"location,omitempty"`
}

// CycleResult is the pair of events a cycle end records.
type CycleResult struct {
	End         domain.Event `json:"end"`
	DryingEntry domain.Event `json:"dryingEntry"`
}
