package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focis/internal/domain"
	"focis/internal/eventstore"
	"focis/internal/ledgertest"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestService(t *testing.T) (Service, *eventstore.EventStore, *ledgertest.Clock) {
	es, clock := ledgertest.Open(t)
	return NewService(es), es, clock
}

func TestReceiveAndIssueFIFO(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := ledgertest.As(domain.RoleStorekeeper)

	first, err := svc.Receive(ctx, Receipt{ItemID: "itm-cement", WarehouseID: "wh-rm", Quantity: dec("100"), UnitPrice: dec("10")})
	require.NoError(t, err)
	assert.Equal(t, domain.KindGoodsReceipt, first.Kind)
	assert.Equal(t, "itm-cement", first.EntityID)
	assert.Equal(t, "u-storekeeper", first.UserID)

	clock.Advance(time.Hour)
	_, err = svc.Receive(ctx, Receipt{ItemID: "itm-cement", WarehouseID: "wh-rm", Quantity: dec("50"), UnitPrice: dec("12")})
	require.NoError(t, err)

	clock.Advance(time.Hour)
	_, err = svc.Issue(ctx, Issue{ItemID: "itm-cement", Quantity: dec("120")})
	require.NoError(t, err)

	batches, err := svc.Batches(ctx, BatchFilter{ItemID: "itm-cement"})
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.True(t, batches[0].RemainingQuantity.IsZero())
	assert.True(t, dec("30").Equal(batches[1].RemainingQuantity))

	open, err := svc.Batches(ctx, BatchFilter{ItemID: "itm-cement", OpenOnly: true})
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, batches[1].BatchID, open[0].BatchID)
}

func TestBackdatedReceipt(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := ledgertest.As(domain.RoleStorekeeper)

	at := ledgertest.Start.Add(-48 * time.Hour)
	e, err := svc.OpeningBalance(ctx, Receipt{ItemID: "itm-cement", WarehouseID: "wh-rm", Quantity: dec("5"), UnitPrice: dec("400"), OccurredAt: at})
	require.NoError(t, err)
	assert.True(t, at.Equal(e.OccurredAt))
	assert.True(t, ledgertest.Start.Equal(e.RecordedAt))
}

func TestRecordRejectsUnknownReferences(t *testing.T) {
	svc, es, _ := newTestService(t)
	ctx := ledgertest.As(domain.RoleStorekeeper)

	_, err := svc.Receive(ctx, Receipt{ItemID: "itm-ghost", WarehouseID: "wh-rm", Quantity: dec("1")})
	assert.ErrorIs(t, err, domain.ErrUnknownEntity)

	_, err = svc.Receive(ctx, Receipt{ItemID: "itm-cement", WarehouseID: "wh-ghost", Quantity: dec("1")})
	assert.ErrorIs(t, err, domain.ErrUnknownEntity)

	_, err = svc.Issue(ctx, Issue{ItemID: "itm-sp-bearing", Quantity: dec("1"), LinkedAssetID: "ast-ghost"})
	assert.ErrorIs(t, err, domain.ErrUnknownEntity)

	_, err = svc.Receive(ctx, Receipt{ItemID: "itm-cement", WarehouseID: "wh-rm", Quantity: dec("0")})
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)

	_, err = svc.Transfer(ctx, Transfer{ItemID: "itm-cement", FromWarehouseID: "wh-rm", ToWarehouseID: "wh-rm", Quantity: dec("1")})
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)

	_, err = svc.Receive(context.Background(), Receipt{ItemID: "itm-cement", WarehouseID: "wh-rm", Quantity: dec("1")})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	events, err := es.Query(context.Background(), eventstore.Query{})
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestTransferAndAdjust(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := ledgertest.As(domain.RoleStorekeeper)

	_, err := svc.Receive(ctx, Receipt{ItemID: "itm-sp-bearing", WarehouseID: "wh-rm", Quantity: dec("10"), UnitPrice: dec("35")})
	require.NoError(t, err)
	clock.Advance(time.Minute)
	_, err = svc.Transfer(ctx, Transfer{ItemID: "itm-sp-bearing", FromWarehouseID: "wh-rm", ToWarehouseID: "wh-spare", Quantity: dec("4")})
	require.NoError(t, err)
	clock.Advance(time.Minute)
	_, err = svc.Adjust(ctx, Adjustment{ItemID: "itm-sp-bearing", Quantity: dec("-1"), Reason: "damaged"})
	require.NoError(t, err)

	spare, err := svc.Batches(ctx, BatchFilter{WarehouseID: "wh-spare"})
	require.NoError(t, err)
	require.Len(t, spare, 1)
	assert.True(t, dec("4").Equal(spare[0].RemainingQuantity))
	assert.True(t, dec("35").Equal(spare[0].UnitCost))

	stock, err := svc.Stock(ctx)
	require.NoError(t, err)
	var bearing bool
	for _, s := range stock {
		if s.ItemID == "itm-sp-bearing" {
			bearing = true
			assert.True(t, dec("9").Equal(s.TotalQuantity), s.TotalQuantity.String())
			assert.True(t, dec("315").Equal(s.TotalValue), s.TotalValue.String())
		}
	}
	assert.True(t, bearing)

	_, err = svc.Adjust(ctx, Adjustment{ItemID: "itm-sp-bearing", Quantity: dec("2")})
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
}

func TestCostBreakdown(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := ledgertest.As(domain.RoleStorekeeper)

	_, err := svc.Receive(ctx, Receipt{ItemID: "itm-cement", WarehouseID: "wh-rm", Quantity: dec("10"), UnitPrice: dec("450")})
	require.NoError(t, err)

	cb, err := svc.CostBreakdown(ctx, "itm-cement")
	require.NoError(t, err)
	assert.True(t, dec("450").Equal(cb.UnitCost))
	assert.True(t, dec("315").Equal(cb.MaterialComponent))
	require.Len(t, cb.SourceBatches, 1)

	_, err = svc.CostBreakdown(ctx, "itm-ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
