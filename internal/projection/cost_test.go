package projection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focis/internal/domain"
)

func TestCostBreakdown_WeightedOverAllBatches(t *testing.T) {
	b := newLedger()
	first := b.add(0, "itm-cement", receiptOf("10", "4"))
	b.add(time.Hour, "itm-cement", receiptOf("30", "8"))
	b.add(2*time.Hour, "itm-cement", issueOf("10"))
	b.add(3*time.Hour, "itm-cement", domain.InventoryTransfer{FromWarehouseID: "wh-rm", ToWarehouseID: "wh-fg", Quantity: dec("5")})

	c := CostBreakdownFor(b.ledger(), "itm-cement")
	// (10x4 + 30x8) / 40 = 7, drained batch included, transfer slice excluded.
	assert.True(t, c.UnitCost.Equal(dec("7")), c.UnitCost.String())
	assert.True(t, c.MaterialComponent.Equal(dec("4.9")))
	assert.True(t, c.OperationalComponent.Equal(dec("1.4")))
	assert.True(t, c.MaintenanceLoad.Equal(dec("0.7")))

	require.Len(t, c.SourceBatches, 2)
	assert.Equal(t, first.ID, c.SourceBatches[0].BatchID)
	assert.True(t, c.SourceBatches[0].Contribution.IsZero())
	assert.True(t, c.SourceBatches[1].Contribution.Equal(dec("25")))
}

func TestCostBreakdown_UnknownItem(t *testing.T) {
	c := CostBreakdownFor(newLedger().ledger(), "itm-none")
	assert.True(t, c.UnitCost.IsZero())
	assert.Empty(t, c.SourceBatches)
}
