package projection

import (
	"time"

	"github.com/shopspring/decimal"

	"focis/internal/domain"
)

// AssetMetrics summarizes an asset's breakdown and repair history.
type AssetMetrics struct {
	AssetID            string          `json:"assetId"`
	BreakdownCount     int             `json:"breakdownCount"`
	RepairCount        int             `json:"repairCount"`
	TotalDowntimeHours float64         `json:"totalDowntimeHours"`
	TotalRepairHours   float64         `json:"totalRepairHours"`
	RuntimeHours       float64         `json:"runtimeHours"`
	MTBFHours          float64         `json:"mtbfHours"`
	MTTRHours          float64         `json:"mttrHours"`
	HealthScore        int             `json:"healthScore"`
	IsDown             bool            `json:"isDown"`
	DownSince          *time.Time      `json:"downSince,omitempty"`
	DowntimeLoss       decimal.Decimal `json:"downtimeLoss"`
	SparePartsCost     decimal.Decimal `json:"sparePartsCost"`
	ActiveWorkOrderID  string          `json:"activeWorkOrderId,omitempty"`
}

// interval is a closed stretch of downtime; end is zero while still open.
type interval struct {
	start, end time.Time
}

// downtime replays an asset's events as an Up/Down machine. A breakdown takes
// the asset down; a work order close or fix brings it back up. A breakdown
// while already down is counted but does not restart the interval.
type downtime struct {
	intervals   []interval
	breakdowns  int
	repairs     int
	repairHours float64
	downSince   *time.Time
}

func replayDowntime(events []domain.Event) downtime {
	var d downtime
	for _, e := range events {
		switch p := e.Payload().(type) {
		case domain.Breakdown:
			d.breakdowns++
			if d.downSince == nil {
				at := e.OccurredAt
				d.downSince = &at
			}
		case domain.WorkOrderClose:
			d.restore(e, events, p.WorkOrderID)
		case domain.Fix:
			d.restore(e, events, p.WorkOrderID)
		}
	}
	return d
}

func (d *downtime) restore(closing domain.Event, events []domain.Event, woID string) {
	if d.downSince == nil {
		return
	}
	d.intervals = append(d.intervals, interval{start: *d.downSince, end: closing.OccurredAt})
	d.downSince = nil

	if woID == "" {
		woID = closing.ID
	}
	if start, ok := matchingStart(events, woID, closing.OccurredAt); ok {
		d.repairs++
		d.repairHours += hoursBetween(start, closing.OccurredAt)
	}
}

// matchingStart finds the latest work order start for woID at or before t.
func matchingStart(events []domain.Event, woID string, t time.Time) (time.Time, bool) {
	var found time.Time
	ok := false
	for _, e := range events {
		if e.OccurredAt.After(t) {
			break
		}
		if p, isStart := e.Payload().(domain.WorkOrderStart); isStart && p.WorkOrderID == woID {
			found, ok = e.OccurredAt, true
		}
	}
	return found, ok
}

// hoursWithin sums downtime clipped to [from, to]; an open interval runs to to.
func (d downtime) hoursWithin(from, to time.Time) float64 {
	total := 0.0
	add := func(start, end time.Time) {
		if start.Before(from) {
			start = from
		}
		if end.After(to) {
			end = to
		}
		total += hoursBetween(start, end)
	}
	for _, iv := range d.intervals {
		add(iv.start, iv.end)
	}
	if d.downSince != nil {
		add(*d.downSince, to)
	}
	return total
}

func (d downtime) totalHours(now time.Time) float64 {
	total := 0.0
	for _, iv := range d.intervals {
		total += hoursBetween(iv.start, iv.end)
	}
	if d.downSince != nil {
		total += hoursBetween(*d.downSince, now)
	}
	return total
}

func assetEvents(l Ledger, assetID string) []domain.Event {
	return l.replay(replayOptions{Filter: func(e domain.Event) bool {
		return e.EntityID == assetID
	}})
}

// ReliabilityFor computes metrics for one asset as of now.
func ReliabilityFor(l Ledger, assetID string, now time.Time) AssetMetrics {
	return reliability(l, assetID, now, ReplayInventory(l))
}

// Reliability computes metrics for every registered asset, in registry order.
func Reliability(l Ledger, now time.Time) []AssetMetrics {
	inv := ReplayInventory(l)
	out := make([]AssetMetrics, 0, len(l.MasterData.Assets))
	for _, a := range l.MasterData.Assets {
		out = append(out, reliability(l, a.ID, now, inv))
	}
	return out
}

func reliability(l Ledger, assetID string, now time.Time, inv Inventory) AssetMetrics {
	events := assetEvents(l, assetID)
	d := replayDowntime(events)

	m := AssetMetrics{
		AssetID:            assetID,
		BreakdownCount:     d.breakdowns,
		RepairCount:        d.repairs,
		TotalDowntimeHours: d.totalHours(now),
		TotalRepairHours:   d.repairHours,
		IsDown:             d.downSince != nil,
		DownSince:          d.downSince,
		HealthScore:        100 - 10*d.breakdowns,
		DowntimeLoss:       decimal.Zero,
		SparePartsCost:     decimal.Zero,
	}
	if m.HealthScore < 0 {
		m.HealthScore = 0
	}

	first := now
	if len(events) > 0 {
		first = events[0].OccurredAt
	}
	m.RuntimeHours = hoursBetween(first, now) - m.TotalDowntimeHours
	if m.RuntimeHours < 0 {
		m.RuntimeHours = 0
	}
	m.MTBFHours = m.RuntimeHours
	if d.breakdowns > 0 {
		m.MTBFHours = m.RuntimeHours / float64(d.breakdowns)
	}
	if d.repairs > 0 {
		m.MTTRHours = d.repairHours / float64(d.repairs)
	}

	if asset, ok := l.MasterData.Asset(assetID); ok {
		m.DowntimeLoss = asset.HourlyDowntimeCost.Mul(decimal.NewFromFloat(m.TotalDowntimeHours)).Round(2)
	}
	m.SparePartsCost = sparePartsCost(l, assetID, inv)

	for _, wo := range OpenWorkOrders(l) {
		if wo.AssetID == assetID {
			m.ActiveWorkOrderID = wo.WorkOrderID
		}
	}
	return m
}

// sparePartsCost values issues linked to the asset at their FIFO cost, or at
// the stated unit price when no stock was drawn.
func sparePartsCost(l Ledger, assetID string, inv Inventory) decimal.Decimal {
	total := decimal.Zero
	for _, e := range l.chronological() {
		p, ok := e.Payload().(domain.InventoryIssue)
		if !ok || p.LinkedAssetID != assetID {
			continue
		}
		cost := inv.DrawnCost[e.ID]
		if !cost.IsPositive() {
			cost = p.Quantity.Mul(p.UnitPrice)
		}
		total = total.Add(cost)
	}
	return total
}
