package security

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
	"focis/internal/projection"
)

func TestGateInReceivesStock(t *testing.T) {
	es, _ := ledgertest.Open(t)
	svc := NewService(es, Options{})
	ctx := ledgertest.As(domain.RoleSecurity)

	res, err := svc.GateIn(ctx, Movement{VehicleNo: "AD-4471", DriverName: "Saeed", ItemID: "itm-cement", Quantity: decimal.NewFromInt(30), Reference: "DN-881"})
	require.NoError(t, err)
	assert.Equal(t, domain.KindGateIn, res.Gate.Kind)
	assert.Equal(t, "itm-cement", res.Gate.EntityID)
	require.NotNil(t, res.Receipt)

	receipt := res.Receipt.Payload().(domain.GoodsReceipt)
	assert.Equal(t, "wh-rm", receipt.WarehouseID)
	assert.True(t, decimal.NewFromInt(450).Equal(receipt.UnitPrice))
	assert.True(t, decimal.NewFromInt(30).Equal(receipt.Quantity))

	snap, err := es.Snapshot(context.Background())
	require.NoError(t, err)
	batches := projection.Batches(projection.Ledger{Events: snap.Events, MasterData: snap.MasterData})
	require.Len(t, batches, 1)
	assert.Equal(t, res.Receipt.ID, batches[0].BatchID)
}

func TestGateMovementsWithoutItem(t *testing.T) {
	es, clock := ledgertest.Open(t)
	svc := NewService(es, Options{ReceiptWarehouseID: "wh-spare", ReceiptUnitPrice: decimal.NewFromInt(1)})
	ctx := ledgertest.As(domain.RoleSecurity)

	in, err := svc.GateIn(ctx, Movement{VehicleNo: "AD-1"})
	require.NoError(t, err)
	assert.Nil(t, in.Receipt)
	assert.Equal(t, domain.LogisticUnit, in.Gate.EntityID)

	clock.Advance(time.Hour)
	_, err = svc.GateOut(ctx, Movement{VehicleNo: "AD-1"})
	require.NoError(t, err)

	history, err := svc.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, projection.GateOut, history[0].Direction)
	assert.Equal(t, projection.GateIn, history[1].Direction)
	assert.Equal(t, domain.LogisticUnit, history[1].Payload)
}

func TestGateRejections(t *testing.T) {
	es, _ := ledgertest.Open(t)
	svc := NewService(es, DefaultOptions())
	ctx := ledgertest.As(domain.RoleSecurity)

	_, err := svc.GateIn(ctx, Movement{ItemID: "itm-cement", Quantity: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)

	_, err = svc.GateIn(ctx, Movement{VehicleNo: "AD-2", ItemID: "itm-ghost", Quantity: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrUnknownEntity)

	// A receipt needs a quantity; the gate event must not be kept without it.
	_, err = svc.GateIn(ctx, Movement{VehicleNo: "AD-3", ItemID: "itm-cement"})
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)

	events, err := es.Query(context.Background(), eventstore.Query{})
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestSecurityCheck(t *testing.T) {
	es, _ := ledgertest.Open(t)
	svc := NewService(es, DefaultOptions())

	e, err := svc.RecordCheck(ledgertest.As(domain.RoleSecurity), Check{VehicleNo: "AD-9", Result: "Cleared"})
	require.NoError(t, err)
	assert.Equal(t, "AD-9", e.EntityID)
	assert.Equal(t, domain.KindSecurityCheck, e.Kind)

	_, err = svc.RecordCheck(ledgertest.As(domain.RoleSecurity), Check{VehicleNo: "AD-9"})
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
}
