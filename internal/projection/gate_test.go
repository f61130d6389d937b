package projection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focis/internal/domain"
)

func TestGateHistory(t *testing.T) {
	b := newLedger()
	in := b.add(0, "itm-cement", domain.GateIn{GateMovement: domain.GateMovement{
		VehicleNo: "AD-1234", DriverName: "R. Khan", Quantity: dec("30"), PayloadDescription: "Cement bulk",
	}})
	out := b.add(time.Hour, domain.LogisticUnit, domain.GateOut{GateMovement: domain.GateMovement{VehicleNo: "AD-1234"}})
	gone := b.add(2*time.Hour, domain.LogisticUnit, domain.GateIn{GateMovement: domain.GateMovement{VehicleNo: "AD-9"}})
	b.add(3*time.Hour, "itm-cement", receiptOf("1", "1"))
	b.reverse(gone.ID)

	history := GateHistory(b.ledger())
	require.Len(t, history, 2)

	assert.Equal(t, out.ID, history[0].EventID)
	assert.Equal(t, GateOut, history[0].Direction)
	assert.Equal(t, domain.LogisticUnit, history[0].Payload, "payload falls back to the entity")

	assert.Equal(t, in.ID, history[1].EventID)
	assert.Equal(t, GateIn, history[1].Direction)
	assert.Equal(t, "Cement bulk", history[1].Payload)
	assert.Equal(t, "R. Khan", history[1].DriverName)
	assert.Equal(t, "u-test", history[1].UserID)
	assert.Equal(t, t0, history[1].Timestamp)
}
