package projection

import (
	"github.com/shopspring/decimal"
)

// Fixed display split of a unit cost.
var (
	MaterialShare    = decimal.RequireFromString("0.7")
	OperationalShare = decimal.RequireFromString("0.2")
	MaintenanceShare = decimal.RequireFromString("0.1")
)

// SourceBatch is a batch contributing to a cost breakdown.
type SourceBatch struct {
	BatchID         string          `json:"batchId"`
	InitialQuantity decimal.Decimal `json:"initialQuantity"`
	UnitCost        decimal.Decimal `json:"unitCost"`
	Contribution    decimal.Decimal `json:"contribution"`
}

// CostBreakdown is the quantity-weighted unit cost of an item.
type CostBreakdown struct {
	ItemID               string          `json:"itemId"`
	UnitCost             decimal.Decimal `json:"unitCost"`
	MaterialComponent    decimal.Decimal `json:"materialComponent"`
	OperationalComponent decimal.Decimal `json:"operationalComponent"`
	MaintenanceLoad      decimal.Decimal `json:"maintenanceLoad"`
	SourceBatches        []SourceBatch   `json:"sourceBatches"`
}

// CostBreakdownFor averages unit cost over every batch ever created for the
// item, weighted by initial quantity. Slices moved by transfers are not new
// cost and are left out; contribution is each batch's remaining quantity.
func CostBreakdownFor(l Ledger, itemID string) CostBreakdown {
	out := CostBreakdown{
		ItemID:               itemID,
		UnitCost:             decimal.Zero,
		MaterialComponent:    decimal.Zero,
		OperationalComponent: decimal.Zero,
		MaintenanceLoad:      decimal.Zero,
		SourceBatches:        []SourceBatch{},
	}

	totalQty := decimal.Zero
	totalCost := decimal.Zero
	for _, b := range Batches(l) {
		if b.ItemID != itemID || b.transferred() {
			continue
		}
		totalQty = totalQty.Add(b.InitialQuantity)
		totalCost = totalCost.Add(b.InitialQuantity.Mul(b.UnitCost))
		out.SourceBatches = append(out.SourceBatches, SourceBatch{
			BatchID:         b.BatchID,
			InitialQuantity: b.InitialQuantity,
			UnitCost:        b.UnitCost,
			Contribution:    b.RemainingQuantity,
		})
	}
	if totalQty.IsPositive() {
		out.UnitCost = totalCost.Div(totalQty)
	}
	out.MaterialComponent = out.UnitCost.Mul(MaterialShare)
	out.OperationalComponent = out.UnitCost.Mul(OperationalShare)
	out.MaintenanceLoad = out.UnitCost.Mul(MaintenanceShare)
	return out
}
