package projection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"focis/internal/domain"
)

func TestOEE_NoActivity(t *testing.T) {
	o := OEE(newLedger().ledger(), "fac-1", 0, t0)
	assert.Equal(t, DefaultOEEWindow, o.WindowEnd.Sub(o.WindowStart))
	assert.Equal(t, 1.0, o.Availability)
	assert.Equal(t, 0.0, o.Performance)
	assert.Equal(t, 1.0, o.Quality)
	assert.Equal(t, 0.0, o.OEE)
	assert.Equal(t, 0, o.ConfidenceScore)
	assert.InDelta(t, 48.0, o.PlannedHours, 1e-9)
}

func TestOEE_Components(t *testing.T) {
	now := t0.Add(24 * time.Hour)
	b := newLedger()
	b.add(time.Hour, "ast-line1", domain.Breakdown{})
	b.add(7*time.Hour, "ast-line1", domain.Fix{})
	b.add(8*time.Hour, "ast-line1", domain.ProductionCycleEnd{ProductID: "itm-interlock-6cm", PalletCount: 100})
	b.add(9*time.Hour, "ast-line1", domain.ProductionWaste{ProductID: "itm-interlock-6cm", Quantity: dec("120")})

	o := OEE(b.ledger(), "fac-1", 24*time.Hour, now)
	// 2 assets x 24h planned, 6h down.
	assert.InDelta(t, 6.0, o.DowntimeHours, 1e-9)
	assert.InDelta(t, 42.0/48.0, o.Availability, 1e-9)
	// 1200 units x 15s = 5h ideal over 42h operating.
	assert.InDelta(t, 5.0/42.0, o.Performance, 1e-9)
	assert.InDelta(t, 0.9, o.Quality, 1e-9)
	assert.InDelta(t, o.Availability*o.Performance*o.Quality, o.OEE, 1e-12)
	assert.Equal(t, 80, o.ConfidenceScore)
	assert.Equal(t, 4, o.EventsInWindow)
}

func TestOEE_OpenBreakdownCountsThroughNow(t *testing.T) {
	now := t0.Add(10 * time.Hour)
	b := newLedger()
	b.add(-30*time.Hour, "ast-line2", domain.Breakdown{})

	o := OEE(b.ledger(), "fac-1", 24*time.Hour, now)
	assert.InDelta(t, 24.0, o.DowntimeHours, 1e-9, "clipped to the window")
	assert.InDelta(t, 0.5, o.Availability, 1e-9)
	assert.Equal(t, 0, o.EventsInWindow)
}

func TestOEE_FactorsAreCapped(t *testing.T) {
	now := t0.Add(time.Hour)
	b := newLedger()
	b.add(30*time.Minute, "ast-line2", domain.ProductionCycleEnd{ProductID: "itm-interlock-6cm", PalletCount: 1000})
	b.add(40*time.Minute, "ast-line2", domain.ProductionWaste{Quantity: dec("999999")})

	o := OEE(b.ledger(), "fac-1", time.Hour, now)
	assert.Equal(t, 1.0, o.Performance)
	assert.Equal(t, 0.0, o.Quality)
	assert.Equal(t, 0.0, o.OEE)
}

func TestOEE_OtherFactoryIgnored(t *testing.T) {
	b := newLedger()
	e := b.add(time.Hour, "ast-line1", domain.Breakdown{})
	for i := range b.events {
		if b.events[i].ID == e.ID {
			b.events[i].FactoryID = "fac-2"
		}
	}
	o := OEE(b.ledger(), "fac-1", 24*time.Hour, t0.Add(2*time.Hour))
	assert.Zero(t, o.DowntimeHours)
	assert.Zero(t, o.EventsInWindow)
}

func TestConfidence(t *testing.T) {
	assert.Equal(t, 0, confidence(0))
	assert.Equal(t, 60, confidence(3))
	assert.Equal(t, 100, confidence(5))
	assert.Equal(t, 100, confidence(40))
}
