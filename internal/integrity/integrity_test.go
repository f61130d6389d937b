package integrity

import (
	"bytes"
	"context"
	"encoding/json"
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

var t0 = time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC)

func ev(id string, at time.Time, entity string, p domain.Payload) domain.Event {
	return domain.Event{ID: id, OccurredAt: at, EntityID: entity, FactoryID: "fac-1"}.WithPayload(p)
}

func input(events ...domain.Event) Input {
	for i := range events {
		events[i].Seq = uint64(i + 1)
	}
	return Input{
		Events: events,
		Ledger: projection.Ledger{Events: events, MasterData: domain.DefaultMasterData()},
		Now:    t0.Add(48 * time.Hour),
	}
}

func messages(vs []Violation) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.EventID + ": " + v.Message
	}
	return out
}

func TestCleanLedgerPasses(t *testing.T) {
	es, clock := ledgertest.Open(t)
	ctx := context.Background()
	draft := func(entity string, p domain.Payload) eventstore.Draft {
		return eventstore.Draft{Payload: p, UserID: "u-1", EntityID: entity}
	}

	_, err := es.AppendEvents(ctx,
		draft("itm-cement", domain.GateIn{GateMovement: domain.GateMovement{VehicleNo: "AD-1", Quantity: decimal.NewFromInt(10)}}),
		draft("itm-cement", domain.GoodsReceipt{WarehouseID: "wh-rm", Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(450)}),
	)
	require.NoError(t, err)
	start, err := es.Append(ctx, draft("ast-line1", domain.ProductionCycleStart{ProductID: "itm-interlock-6cm"}))
	require.NoError(t, err)
	clock.Advance(time.Hour)
	events, err := es.AppendEvents(ctx,
		draft("ast-line1", domain.ProductionCycleEnd{ProductID: "itm-interlock-6cm", PalletCount: 5, StartEventID: start.ID}),
		draft("itm-interlock-6cm", domain.DryingEntry{SlotID: "wh-drying", ProductID: "itm-interlock-6cm", PalletCount: 5}),
	)
	require.NoError(t, err)
	clock.Advance(25 * time.Hour)
	_, err = es.Append(ctx, draft("itm-interlock-6cm", domain.DryingExit{SlotID: "wh-drying", EntryEventID: events[1].ID}))
	require.NoError(t, err)
	down, err := es.Append(ctx, draft("ast-line2", domain.Breakdown{}))
	require.NoError(t, err)
	wo, err := es.Append(ctx, draft("ast-line2", domain.WorkOrderOpen{BreakdownEventID: down.ID}))
	require.NoError(t, err)
	clock.Advance(time.Hour)
	_, err = es.Append(ctx, draft("ast-line2", domain.WorkOrderClose{WorkOrderID: wo.ID}))
	require.NoError(t, err)
	_, err = es.Reverse(ctx, "u-admin", down.ID, "test")
	require.NoError(t, err)

	snap, err := es.Snapshot(ctx)
	require.NoError(t, err)

	auditor := NewAuditor()
	auditor.RegisterDefaultRules()
	require.Len(t, auditor.Rules(), 6)

	report := auditor.Run(ctx, snap)
	for _, r := range report.Results {
		assert.True(t, r.Passed, "%s: %v", r.Rule, messages(r.Violations))
	}
	assert.True(t, report.Passed)
	assert.Equal(t, len(snap.Events), report.Events)

	var buf bytes.Buffer
	PrintReport(&buf, report)
	assert.Contains(t, buf.String(), "PASS  Gate Handshake")
}

func TestImmutableInventoryDetectsTampering(t *testing.T) {
	es, _ := ledgertest.Open(t)
	ctx := context.Background()
	_, err := es.Append(ctx, eventstore.Draft{
		Payload:  domain.GoodsReceipt{WarehouseID: "wh-rm", Quantity: decimal.NewFromInt(10)},
		EntityID: "itm-cement",
	})
	require.NoError(t, err)
	snap, err := es.Snapshot(ctx)
	require.NoError(t, err)

	snap.Events[0].Details = json.RawMessage(`{"warehouseId":"wh-rm","quantity":"1000"}`)
	snap.Events[0].IsReversed = true
	vs := ImmutableInventoryRule().Check(input(snap.Events...))
	assert.Len(t, vs, 2, messages(vs))
}

func TestEventLockedProduction(t *testing.T) {
	start := ev("S1", t0, "ast-line1", domain.ProductionCycleStart{ProductID: "itm-interlock-6cm"})
	orphan := ev("E1", t0.Add(time.Hour), "ast-line1", domain.ProductionCycleEnd{ProductID: "itm-interlock-6cm", PalletCount: 1, StartEventID: "S9"})
	good := ev("E2", t0.Add(time.Hour), "ast-line1", domain.ProductionCycleEnd{ProductID: "itm-interlock-6cm", PalletCount: 1, StartEventID: "S1"})
	dup := ev("E3", t0.Add(2*time.Hour), "ast-line1", domain.ProductionCycleEnd{ProductID: "itm-interlock-6cm", PalletCount: 1, StartEventID: "S1"})

	vs := EventLockedProductionRule().Check(input(start, orphan, good, dup))
	ids := map[string]int{}
	for _, v := range vs {
		ids[v.EventID]++
	}
	// No cement was received, so every end is also short of material.
	assert.Equal(t, 2, ids["E1"], messages(vs))
	assert.Equal(t, 1, ids["E2"], messages(vs))
	assert.Equal(t, 2, ids["E3"], messages(vs))
}

func TestTimeBoundCuring(t *testing.T) {
	entry := ev("D1", t0, "itm-interlock-6cm", domain.DryingEntry{SlotID: "wh-drying", ProductID: "itm-interlock-6cm", PalletCount: 2})
	early := ev("X1", t0.Add(10*time.Hour), "itm-interlock-6cm", domain.DryingExit{EntryEventID: "D1"})
	dangling := ev("X2", t0.Add(30*time.Hour), "itm-interlock-6cm", domain.DryingExit{EntryEventID: "D9"})

	vs := TimeBoundCuringRule().Check(input(entry, early, dangling))
	require.Len(t, vs, 2, messages(vs))
	assert.Equal(t, "X1", vs[0].EventID)
	assert.Contains(t, vs[0].Message, "14.0h early")
	assert.Equal(t, "X2", vs[1].EventID)
}

func TestMaintenanceChain(t *testing.T) {
	down := ev("B1", t0.Add(time.Hour), "ast-line1", domain.Breakdown{})
	wo := ev("W1", t0, "ast-line1", domain.WorkOrderOpen{BreakdownEventID: "B1"})
	start := ev("W2", t0.Add(2*time.Hour), "ast-line2", domain.WorkOrderStart{WorkOrderID: "W1"})
	closeUnknown := ev("W3", t0.Add(3*time.Hour), "ast-line1", domain.WorkOrderClose{WorkOrderID: "W9"})

	vs := MaintenanceChainRule().Check(input(down, wo, start, closeUnknown))
	assert.Len(t, vs, 3, messages(vs))
}

func TestZeroManualCosting(t *testing.T) {
	end := ev("E1", t0, "ast-line1", domain.ProductionCycleEnd{ProductID: "itm-interlock-6cm", PalletCount: 1})
	end.Details = json.RawMessage(`{"productId":"itm-interlock-6cm","palletCount":1,"unitCost":0.01}`)
	receipt := ev("R1", t0, "itm-cement", domain.GoodsReceipt{WarehouseID: "wh-rm", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(450)})

	vs := ZeroManualCostingRule().Check(input(end, receipt))
	require.Len(t, vs, 1, messages(vs))
	assert.Equal(t, "E1", vs[0].EventID)
}

func TestGateHandshake(t *testing.T) {
	mv := domain.GateMovement{VehicleNo: "AD-1", Quantity: decimal.NewFromInt(5)}
	in := ev("G1", t0, "itm-cement", domain.GateIn{GateMovement: mv})
	empty := ev("G2", t0, domain.LogisticUnit, domain.GateIn{GateMovement: mv})
	out := ev("G3", t0.Add(time.Hour), "itm-cement", domain.GateOut{GateMovement: mv})

	vs := GateHandshakeRule().Check(input(in, empty, out))
	require.Len(t, vs, 2, messages(vs))
	assert.Equal(t, "G1", vs[0].EventID)
	assert.Equal(t, "G3", vs[1].EventID)
}
