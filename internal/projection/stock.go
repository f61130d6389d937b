package projection

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockSummary aggregates an item's batches.
type StockSummary struct {
	ItemID             string          `json:"itemId"`
	ItemName           string          `json:"itemName"`
	Category           string          `json:"category"`
	UOM                string          `json:"uom"`
	TotalQuantity      decimal.Decimal `json:"totalQuantity"`
	TotalValue         decimal.Decimal `json:"totalValue"`
	AverageUnitCost    decimal.Decimal `json:"averageUnitCost"`
	OpenBatches        int             `json:"openBatches"`
	InCuringPallets    int             `json:"inCuring"`
	StabilizingPallets int             `json:"stabilizingPallets"`
	ReadyForDispatch   decimal.Decimal `json:"readyForDispatch"`
}

// StockSummaries reports every registered item in registry order, followed
// by any item that has batches without a registry entry.
func StockSummaries(l Ledger, now time.Time) []StockSummary {
	batches := Batches(l)
	inCuring, stabilizing := curingByProduct(DryingSlots(l, now))

	byItem := make(map[string]*StockSummary)
	var order []string
	ensure := func(itemID string) *StockSummary {
		if s, ok := byItem[itemID]; ok {
			return s
		}
		s := &StockSummary{ItemID: itemID}
		if item, ok := l.MasterData.Item(itemID); ok {
			s.ItemName = item.Name
			s.Category = item.Category
			s.UOM = item.UOM
		}
		byItem[itemID] = s
		order = append(order, itemID)
		return s
	}

	for _, item := range l.MasterData.Items {
		ensure(item.ID)
	}
	for _, b := range batches {
		s := ensure(b.ItemID)
		s.TotalQuantity = s.TotalQuantity.Add(b.RemainingQuantity)
		s.TotalValue = s.TotalValue.Add(b.Value())
		if b.RemainingQuantity.IsPositive() {
			s.OpenBatches++
		}
	}

	out := make([]StockSummary, 0, len(order))
	for _, id := range order {
		s := byItem[id]
		if s.TotalQuantity.IsPositive() {
			s.AverageUnitCost = s.TotalValue.Div(s.TotalQuantity)
		}
		s.InCuringPallets = inCuring[id]
		s.StabilizingPallets = stabilizing[id]

		perPallet := 1
		if item, ok := l.MasterData.Item(id); ok {
			perPallet = item.PalletSize()
		}
		held := decimal.NewFromInt(int64(s.StabilizingPallets) * int64(perPallet))
		s.ReadyForDispatch = decimal.Max(decimal.Zero, s.TotalQuantity.Sub(held))
		out = append(out, *s)
	}
	return out
}
