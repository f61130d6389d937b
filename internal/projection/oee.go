package projection

import (
	"time"

	"github.com/shopspring/decimal"

	"focis/internal/domain"
)

// DefaultOEEWindow is the lookback used when none is given.
const DefaultOEEWindow = 24 * time.Hour

// OEEBreakdown is Overall Equipment Effectiveness for a factory over a window.
// Every factor lies in [0, 1]. Confidence is advisory.
type OEEBreakdown struct {
	FactoryID       string    `json:"factoryId"`
	WindowStart     time.Time `json:"windowStart"`
	WindowEnd       time.Time `json:"windowEnd"`
	Availability    float64   `json:"availability"`
	Performance     float64   `json:"performance"`
	Quality         float64   `json:"quality"`
	OEE             float64   `json:"oee"`
	PlannedHours    float64   `json:"plannedHours"`
	DowntimeHours   float64   `json:"downtimeHours"`
	UnitsProduced   float64   `json:"unitsProduced"`
	UnitsWasted     float64   `json:"unitsWasted"`
	EventsInWindow  int       `json:"eventsInWindow"`
	ConfidenceScore int       `json:"confidenceScore"`
}

// OEE computes availability, performance, and quality for factoryID over
// (now-window, now]. Downtime intervals that began before the window are
// clipped to it; a breakdown still open counts through now.
func OEE(l Ledger, factoryID string, window time.Duration, now time.Time) OEEBreakdown {
	if window <= 0 {
		window = DefaultOEEWindow
	}
	cutoff := now.Add(-window)
	out := OEEBreakdown{FactoryID: factoryID, WindowStart: cutoff, WindowEnd: now}

	inWindow := l.replay(replayOptions{Filter: func(e domain.Event) bool {
		return e.FactoryID == factoryID && e.OccurredAt.After(cutoff) && !e.OccurredAt.After(now)
	}})
	out.EventsInWindow = len(inWindow)
	out.ConfidenceScore = confidence(len(inWindow))

	assets := l.MasterData.AssetsIn(factoryID)
	out.PlannedHours = float64(len(assets)) * window.Hours()
	for _, a := range assets {
		history := l.replay(replayOptions{Filter: func(e domain.Event) bool {
			return e.EntityID == a.ID && e.FactoryID == factoryID && !e.OccurredAt.After(now)
		}})
		out.DowntimeHours += replayDowntime(history).hoursWithin(cutoff, now)
	}

	idealHours := 0.0
	produced := 0.0
	wasted := decimal.Zero
	for _, e := range inWindow {
		switch p := e.Payload().(type) {
		case domain.ProductionCycleEnd:
			product, _ := l.MasterData.Item(p.ProductID)
			perPallet := product.PalletSize()
			if p.UnitsPerPallet > 0 {
				perPallet = p.UnitsPerPallet
			}
			units := float64(p.PalletCount * perPallet)
			if units <= 0 {
				continue
			}
			cycleMs := int64(domain.DefaultIdealCycleTimeMs)
			if asset, ok := l.MasterData.Asset(e.EntityID); ok && asset.IdealCycleTimeMs > 0 {
				cycleMs = asset.IdealCycleTimeMs
			}
			produced += units
			idealHours += units * float64(cycleMs) / float64(time.Hour/time.Millisecond)
		case domain.ProductionWaste:
			if p.Quantity.IsPositive() {
				wasted = wasted.Add(p.Quantity)
			}
		}
	}
	out.UnitsProduced = produced
	out.UnitsWasted = wasted.InexactFloat64()

	operating := out.PlannedHours - out.DowntimeHours
	if out.PlannedHours > 0 {
		out.Availability = clamp01(operating / out.PlannedHours)
	}
	if operating > 0 {
		out.Performance = clamp01(idealHours / operating)
	}
	out.Quality = 1
	if produced > 0 {
		out.Quality = clamp01((produced - out.UnitsWasted) / produced)
	}
	out.OEE = out.Availability * out.Performance * out.Quality
	return out
}

func confidence(events int) int {
	c := events * 20
	if c > 100 {
		return 100
	}
	return c
}
