package projection

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"focis/internal/domain"
)

var propertyItems = []string{"itm-cement", "itm-sp-bearing", "itm-interlock-6cm"}

// drawLedger generates a random but well-formed event history.
func drawLedger(t *rapid.T) *ledgerBuilder {
	b := newLedger()
	n := rapid.IntRange(1, 40).Draw(t, "events")
	for i := 0; i < n; i++ {
		at := time.Duration(rapid.IntRange(0, 72).Draw(t, "hour")) * time.Hour
		item := rapid.SampledFrom(propertyItems).Draw(t, "item")
		qty := decimal.NewFromInt(int64(rapid.IntRange(1, 500).Draw(t, "qty")))
		asset := rapid.SampledFrom([]string{"ast-line1", "ast-line2"}).Draw(t, "asset")

		switch rapid.IntRange(0, 9).Draw(t, "kind") {
		case 0, 1:
			price := decimal.NewFromInt(int64(rapid.IntRange(0, 50).Draw(t, "price")))
			b.add(at, item, domain.GoodsReceipt{WarehouseID: "wh-rm", Quantity: qty, UnitPrice: price})
		case 2:
			b.add(at, item, domain.InventoryIssue{Quantity: qty})
		case 3:
			b.add(at, item, domain.GateOut{GateMovement: domain.GateMovement{VehicleNo: "V", Quantity: qty}})
		case 4:
			pallets := rapid.IntRange(1, 20).Draw(t, "pallets")
			b.add(at, asset, domain.ProductionCycleEnd{ProductID: "itm-interlock-6cm", PalletCount: pallets})
		case 5:
			b.add(at, asset, domain.Breakdown{})
		case 6:
			b.add(at, asset, domain.Fix{})
		case 7:
			b.add(at, "itm-interlock-6cm", domain.ProductionWaste{Quantity: qty})
		case 8:
			b.add(at, "itm-interlock-6cm", domain.DryingEntry{SlotID: "wh-drying", ProductID: "itm-interlock-6cm", PalletCount: rapid.IntRange(1, 10).Draw(t, "pallets")})
		case 9:
			b.add(at, item, domain.InventoryAdjustment{Quantity: qty.Neg(), Reason: "count"})
		}
	}
	return b
}

func TestProperty_RemainingWithinBounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		for _, batch := range Batches(drawLedger(t).ledger()) {
			if batch.RemainingQuantity.IsNegative() {
				t.Fatalf("batch %s remaining %s is negative", batch.BatchID, batch.RemainingQuantity)
			}
			if batch.RemainingQuantity.GreaterThan(batch.InitialQuantity) {
				t.Fatalf("batch %s remaining %s exceeds initial %s", batch.BatchID, batch.RemainingQuantity, batch.InitialQuantity)
			}
		}
	})
}

func TestProperty_FIFOOrder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		b := newLedger()
		receipts := rapid.IntRange(2, 8).Draw(t, "receipts")
		for i := 0; i < receipts; i++ {
			qty := decimal.NewFromInt(int64(rapid.IntRange(1, 100).Draw(t, "qty")))
			b.add(time.Duration(i)*time.Hour, "itm-cement", domain.GoodsReceipt{WarehouseID: "wh-rm", Quantity: qty, UnitPrice: decimal.NewFromInt(1)})
		}
		issue := decimal.NewFromInt(int64(rapid.IntRange(1, 900).Draw(t, "issue")))
		b.add(time.Duration(receipts)*time.Hour, "itm-cement", domain.InventoryIssue{Quantity: issue})

		batches := Batches(b.ledger())
		for i := 1; i < len(batches); i++ {
			touched := batches[i].RemainingQuantity.LessThan(batches[i].InitialQuantity)
			if touched && !batches[i-1].RemainingQuantity.IsZero() {
				t.Fatalf("batch %d was drawn before older batch %d was empty", i, i-1)
			}
		}
	})
}

func TestProperty_ReplayIsDeterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		l := drawLedger(t).ledger()
		now := t0.Add(96 * time.Hour)

		require.Equal(t, Batches(l), Batches(l))
		require.Equal(t, StockSummaries(l, now), StockSummaries(l, now))
		require.Equal(t, Reliability(l, now), Reliability(l, now))
		require.Equal(t, OEE(l, "fac-1", 0, now), OEE(l, "fac-1", 0, now))
		require.Equal(t, DryingSlots(l, now), DryingSlots(l, now))
		require.Equal(t, GateHistory(l), GateHistory(l))
	})
}

func TestProperty_ReversedEventsDoNotContribute(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		b := drawLedger(t)
		victim := rapid.IntRange(0, len(b.events)-1).Draw(t, "victim")
		now := t0.Add(96 * time.Hour)

		reversed := b.ledger()
		reversed.Events[victim].IsReversed = true

		removed := b.ledger()
		removed.Events = append(removed.Events[:victim:victim], removed.Events[victim+1:]...)

		require.Equal(t, Batches(removed), Batches(reversed))
		require.Equal(t, Reliability(removed, now), Reliability(reversed, now))
		require.Equal(t, DryingSlots(removed, now), DryingSlots(reversed, now))
		require.Equal(t, OEE(removed, "fac-1", 0, now), OEE(reversed, "fac-1", 0, now))
		require.Equal(t, GateHistory(removed), GateHistory(reversed))
	})
}

func TestProperty_OEEWithinUnitInterval(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		l := drawLedger(t).ledger()
		now := t0.Add(time.Duration(rapid.IntRange(0, 100).Draw(t, "now")) * time.Hour)
		window := time.Duration(rapid.IntRange(1, 48).Draw(t, "window")) * time.Hour

		o := OEE(l, "fac-1", window, now)
		for name, v := range map[string]float64{
			"availability": o.Availability,
			"performance":  o.Performance,
			"quality":      o.Quality,
			"oee":          o.OEE,
		} {
			if v < 0 || v > 1 {
				t.Fatalf("%s = %v outside [0,1]", name, v)
			}
		}
		if o.ConfidenceScore < 0 || o.ConfidenceScore > 100 {
			t.Fatalf("confidence %d outside [0,100]", o.ConfidenceScore)
		}
	})
}
