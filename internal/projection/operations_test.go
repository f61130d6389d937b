package projection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focis/internal/domain"
)

func TestActiveCycles(t *testing.T) {
	b := newLedger()
	done := b.add(0, "ast-line1", domain.ProductionCycleStart{ProductID: "itm-interlock-6cm"})
	running := b.add(time.Hour, "ast-line2", domain.ProductionCycleStart{ProductID: "itm-interlock-6cm"})
	b.add(2*time.Hour, "ast-line1", domain.ProductionCycleEnd{ProductID: "itm-interlock-6cm", PalletCount: 1, StartEventID: done.ID})

	cycles := ActiveCycles(b.ledger(), t0.Add(3*time.Hour))
	require.Len(t, cycles, 1)
	assert.Equal(t, running.ID, cycles[0].StartEventID)
	assert.Equal(t, "ast-line2", cycles[0].AssetID)
	assert.InDelta(t, 2.0, cycles[0].ElapsedHours, 1e-9)
}

func TestActiveCycles_ReversedEndReopensCycle(t *testing.T) {
	b := newLedger()
	start := b.add(0, "ast-line1", domain.ProductionCycleStart{ProductID: "itm-interlock-6cm"})
	end := b.add(time.Hour, "ast-line1", domain.ProductionCycleEnd{ProductID: "itm-interlock-6cm", PalletCount: 1, StartEventID: start.ID})
	b.reverse(end.ID)

	assert.Len(t, ActiveCycles(b.ledger(), t0.Add(2*time.Hour)), 1)
}

func TestOpenWorkOrders(t *testing.T) {
	b := newLedger()
	bd := b.add(0, "ast-line1", domain.Breakdown{})
	wo1 := b.add(0, "ast-line1", domain.WorkOrderOpen{BreakdownEventID: bd.ID, Priority: "High"})
	wo2 := b.add(time.Hour, "ast-line2", domain.WorkOrderOpen{Priority: "Low"})
	wo3 := b.add(time.Hour, "ast-line2", domain.WorkOrderOpen{Priority: "Low"})
	b.add(2*time.Hour, "ast-line1", domain.WorkOrderStart{WorkOrderID: wo1.ID})
	b.add(3*time.Hour, "ast-line2", domain.WorkOrderClose{WorkOrderID: wo2.ID})
	b.add(3*time.Hour, "ast-line2", domain.Fix{WorkOrderID: wo3.ID})

	open := OpenWorkOrders(b.ledger())
	require.Len(t, open, 1)
	assert.Equal(t, wo1.ID, open[0].WorkOrderID)
	assert.Equal(t, bd.ID, open[0].BreakdownEventID)
	assert.True(t, open[0].Started)
	require.NotNil(t, open[0].StartedAt)
	assert.Equal(t, t0.Add(2*time.Hour), *open[0].StartedAt)
}

func TestDashboard(t *testing.T) {
	now := t0.Add(24 * time.Hour)
	b := newLedger()
	b.add(time.Hour, "ast-line1", domain.Breakdown{})
	b.add(time.Hour, "ast-line1", domain.WorkOrderOpen{Priority: "High"})

	k := Dashboard(b.ledger(), "fac-1", 24*time.Hour, now)
	assert.InDelta(t, (48.0-23.0)/48.0*100, k.Availability, 1e-9)
	assert.Equal(t, 40, k.Confidence)
	assert.Equal(t, 1, k.AssetsDown)
	assert.Equal(t, 1, k.OpenWorkOrders)
	assert.InDelta(t, 95.0, k.FactoryHealth, 1e-9)
	// line1: 0h runtime, line2: no events so 0h.
	assert.InDelta(t, 0.0, k.MeanMTBFHours, 1e-9)
}
