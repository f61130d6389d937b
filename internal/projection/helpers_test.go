package projection

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"focis/internal/domain"
)

var t0 = time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC)

// ledgerBuilder assembles events without a store so projections can be
// exercised directly.
type ledgerBuilder struct {
	md     domain.MasterData
	events []domain.Event
}

func newLedger() *ledgerBuilder {
	return &ledgerBuilder{md: domain.DefaultMasterData()}
}

func (b *ledgerBuilder) add(at time.Duration, entityID string, p domain.Payload) domain.Event {
	seq := uint64(len(b.events) + 1)
	e := domain.Event{
		ID:         fmt.Sprintf("EV-%03d", seq),
		Seq:        seq,
		FactoryID:  "fac-1",
		RecordedAt: t0.Add(at),
		OccurredAt: t0.Add(at),
		UserID:     "u-test",
		EntityID:   entityID,
		Location:   domain.DefaultLocation,
	}.WithPayload(p)
	b.events = append(b.events, e)
	return e
}

func (b *ledgerBuilder) reverse(id string) {
	for i := range b.events {
		if b.events[i].ID == id {
			b.events[i].IsReversed = true
			b.events[i].ReversedByID = "EV-REV"
		}
	}
}

func (b *ledgerBuilder) ledger() Ledger {
	return Ledger{Events: append([]domain.Event(nil), b.events...), MasterData: b.md}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func receiptOf(qty, price string) domain.GoodsReceipt {
	return domain.GoodsReceipt{WarehouseID: "wh-rm", Quantity: dec(qty), UnitPrice: dec(price)}
}

func issueOf(qty string) domain.InventoryIssue {
	return domain.InventoryIssue{Quantity: dec(qty)}
}

func batchByID(batches []Batch, id string) (Batch, bool) {
	for _, b := range batches {
		if b.BatchID == id {
			return b, true
		}
	}
	return Batch{}, false
}
