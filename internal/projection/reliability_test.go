package projection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focis/internal/domain"
)

func TestReliability_BreakdownThenClose(t *testing.T) {
	b := newLedger()
	b.add(0, "ast-line1", domain.Breakdown{Description: "vibrator seized"})
	b.add(2*time.Hour, "ast-line1", domain.WorkOrderClose{WorkOrderID: "EV-X"})

	m := ReliabilityFor(b.ledger(), "ast-line1", t0.Add(10*time.Hour))
	assert.InDelta(t, 2.0, m.TotalDowntimeHours, 1e-9)
	assert.False(t, m.IsDown)
	assert.Nil(t, m.DownSince)
	assert.Equal(t, 1, m.BreakdownCount)
	assert.Equal(t, 0, m.RepairCount, "no work order start was recorded")
	assert.Zero(t, m.MTTRHours)
	assert.Equal(t, 90, m.HealthScore)
	assert.InDelta(t, 8.0, m.RuntimeHours, 1e-9)
	assert.InDelta(t, 8.0, m.MTBFHours, 1e-9)
	assert.True(t, m.DowntimeLoss.Equal(dec("2400")), m.DowntimeLoss.String())
}

func TestReliability_RepairMatchedByWorkOrder(t *testing.T) {
	b := newLedger()
	b.add(0, "ast-line1", domain.Breakdown{})
	open := b.add(0, "ast-line1", domain.WorkOrderOpen{Priority: "High"})
	b.add(30*time.Minute, "ast-line1", domain.WorkOrderStart{WorkOrderID: open.ID})
	b.add(2*time.Hour, "ast-line1", domain.WorkOrderClose{WorkOrderID: open.ID, Conclusion: "bearing replaced"})

	m := ReliabilityFor(b.ledger(), "ast-line1", t0.Add(4*time.Hour))
	assert.Equal(t, 1, m.RepairCount)
	assert.InDelta(t, 1.5, m.TotalRepairHours, 1e-9)
	assert.InDelta(t, 1.5, m.MTTRHours, 1e-9)
	assert.Empty(t, m.ActiveWorkOrderID)
}

func TestReliability_FixWithoutWorkOrderMatchesOwnID(t *testing.T) {
	b := newLedger()
	b.add(0, "ast-line2", domain.Breakdown{})
	b.add(time.Hour, "ast-line2", domain.Fix{Description: "reset"})

	m := ReliabilityFor(b.ledger(), "ast-line2", t0.Add(2*time.Hour))
	assert.False(t, m.IsDown)
	assert.InDelta(t, 1.0, m.TotalDowntimeHours, 1e-9)
	assert.Equal(t, 0, m.RepairCount)
}

func TestReliability_StillDownAccruesToNow(t *testing.T) {
	b := newLedger()
	b.add(0, "ast-line1", domain.Breakdown{})
	open := b.add(0, "ast-line1", domain.WorkOrderOpen{BreakdownEventID: "EV-001", Priority: "High"})

	m := ReliabilityFor(b.ledger(), "ast-line1", t0.Add(3*time.Hour))
	assert.True(t, m.IsDown)
	require.NotNil(t, m.DownSince)
	assert.Equal(t, t0, *m.DownSince)
	assert.InDelta(t, 3.0, m.TotalDowntimeHours, 1e-9)
	assert.Equal(t, open.ID, m.ActiveWorkOrderID)
	assert.Zero(t, m.RuntimeHours)
}

func TestReliability_CloseWhileUpIsIgnored(t *testing.T) {
	b := newLedger()
	b.add(0, "ast-line1", domain.WorkOrderClose{WorkOrderID: "EV-404"})

	m := ReliabilityFor(b.ledger(), "ast-line1", t0.Add(time.Hour))
	assert.Zero(t, m.TotalDowntimeHours)
	assert.Zero(t, m.RepairCount)
	assert.False(t, m.IsDown)
}

func TestReliability_RepeatedBreakdownKeepsFirstInterval(t *testing.T) {
	b := newLedger()
	b.add(0, "ast-line1", domain.Breakdown{})
	b.add(time.Hour, "ast-line1", domain.Breakdown{})
	b.add(3*time.Hour, "ast-line1", domain.Fix{})

	m := ReliabilityFor(b.ledger(), "ast-line1", t0.Add(3*time.Hour))
	assert.Equal(t, 2, m.BreakdownCount)
	assert.InDelta(t, 3.0, m.TotalDowntimeHours, 1e-9)
	assert.Equal(t, 80, m.HealthScore)
}

func TestReliability_HealthScoreFloorsAtZero(t *testing.T) {
	b := newLedger()
	for i := 0; i < 12; i++ {
		b.add(time.Duration(2*i)*time.Hour, "ast-line1", domain.Breakdown{})
		b.add(time.Duration(2*i+1)*time.Hour, "ast-line1", domain.Fix{})
	}
	m := ReliabilityFor(b.ledger(), "ast-line1", t0.Add(24*time.Hour))
	assert.Equal(t, 0, m.HealthScore)
	assert.Equal(t, 12, m.BreakdownCount)
	assert.InDelta(t, 12.0/12, m.MTBFHours, 1e-9)
}

func TestReliability_NoEvents(t *testing.T) {
	m := ReliabilityFor(newLedger().ledger(), "ast-line1", t0)
	assert.Equal(t, 100, m.HealthScore)
	assert.Zero(t, m.MTBFHours)
	assert.Zero(t, m.MTTRHours)
	assert.True(t, m.SparePartsCost.IsZero())
}

func TestReliability_SparePartsCost(t *testing.T) {
	b := newLedger()
	b.add(0, "itm-sp-bearing", domain.GoodsReceipt{WarehouseID: "wh-spare", Quantity: dec("4"), UnitPrice: dec("110")})
	b.add(time.Hour, "itm-sp-bearing", domain.InventoryIssue{Quantity: dec("2"), LinkedAssetID: "ast-line1", UnitPrice: dec("125")})
	b.add(2*time.Hour, "itm-unstocked", domain.InventoryIssue{Quantity: dec("1"), LinkedAssetID: "ast-line1", UnitPrice: dec("125")})
	b.add(3*time.Hour, "itm-sp-bearing", domain.InventoryIssue{Quantity: dec("1"), LinkedAssetID: "ast-line2", UnitPrice: dec("125")})

	m := ReliabilityFor(b.ledger(), "ast-line1", t0.Add(4*time.Hour))
	assert.True(t, m.SparePartsCost.Equal(dec("345")), m.SparePartsCost.String())
}

func TestReliability_ReversedBreakdownIgnored(t *testing.T) {
	b := newLedger()
	bd := b.add(0, "ast-line1", domain.Breakdown{})
	b.reverse(bd.ID)

	m := ReliabilityFor(b.ledger(), "ast-line1", t0.Add(time.Hour))
	assert.False(t, m.IsDown)
	assert.Zero(t, m.BreakdownCount)
}

func TestReliability_AllAssetsInRegistryOrder(t *testing.T) {
	all := Reliability(newLedger().ledger(), t0)
	require.Len(t, all, 2)
	assert.Equal(t, "ast-line1", all[0].AssetID)
	assert.Equal(t, "ast-line2", all[1].AssetID)
}
