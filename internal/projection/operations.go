package projection

import (
	"time"

	"focis/internal/domain"
)

// ActiveCycle is a production cycle that has started but not ended.
type ActiveCycle struct {
	StartEventID string    `json:"startEventId"`
	AssetID      string    `json:"assetId"`
	ProductID    string    `json:"productId"`
	StartedAt    time.Time `json:"startedAt"`
	ElapsedHours float64   `json:"elapsedHours"`
}

// ActiveCycles lists starts no cycle end references, oldest first.
func ActiveCycles(l Ledger, now time.Time) []ActiveCycle {
	events := l.chronological()
	ended := make(map[string]bool)
	for _, e := range events {
		if p, ok := e.Payload().(domain.ProductionCycleEnd); ok && p.StartEventID != "" {
			ended[p.StartEventID] = true
		}
	}
	out := make([]ActiveCycle, 0)
	for _, e := range events {
		p, ok := e.Payload().(domain.ProductionCycleStart)
		if !ok || ended[e.ID] {
			continue
		}
		out = append(out, ActiveCycle{
			StartEventID: e.ID,
			AssetID:      e.EntityID,
			ProductID:    p.ProductID,
			StartedAt:    e.OccurredAt,
			ElapsedHours: hoursBetween(e.OccurredAt, now),
		})
	}
	return out
}

// WorkOrder is an open maintenance work order. Its id is the id of the event
// that opened it.
type WorkOrder struct {
	WorkOrderID      string     `json:"workOrderId"`
	AssetID          string     `json:"assetId"`
	BreakdownEventID string     `json:"breakdownEventId,omitempty"`
	Priority         string     `json:"priority,omitempty"`
	OpenedAt         time.Time  `json:"openedAt"`
	OpenedBy         string     `json:"openedBy"`
	Started          bool       `json:"started"`
	StartedAt        *time.Time `json:"startedAt,omitempty"`
}

// OpenWorkOrders lists work orders with no close or fix referencing them,
// oldest first.
func OpenWorkOrders(l Ledger) []WorkOrder {
	events := l.chronological()
	closed := make(map[string]bool)
	started := make(map[string]time.Time)
	for _, e := range events {
		switch p := e.Payload().(type) {
		case domain.WorkOrderClose:
			closed[p.WorkOrderID] = true
		case domain.Fix:
			if p.WorkOrderID != "" {
				closed[p.WorkOrderID] = true
			}
		case domain.WorkOrderStart:
			if _, seen := started[p.WorkOrderID]; !seen {
				started[p.WorkOrderID] = e.OccurredAt
			}
		}
	}

	out := make([]WorkOrder, 0)
	for _, e := range events {
		p, ok := e.Payload().(domain.WorkOrderOpen)
		if !ok || closed[e.ID] {
			continue
		}
		wo := WorkOrder{
			WorkOrderID:      e.ID,
			AssetID:          e.EntityID,
			BreakdownEventID: p.BreakdownEventID,
			Priority:         p.Priority,
			OpenedAt:         e.OccurredAt,
			OpenedBy:         e.UserID,
		}
		if at, ok := started[e.ID]; ok {
			wo.Started = true
			wo.StartedAt = &at
		}
		out = append(out, wo)
	}
	return out
}

// KPIs is the dashboard roll-up for one factory. Percentages are 0-100.
type KPIs struct {
	FactoryID      string  `json:"factoryId"`
	OEE            float64 `json:"oee"`
	Availability   float64 `json:"availability"`
	Performance    float64 `json:"performance"`
	Quality        float64 `json:"quality"`
	Confidence     int     `json:"confidence"`
	MeanMTBFHours  float64 `json:"mtbf"`
	FactoryHealth  float64 `json:"factoryHealth"`
	AssetsDown     int     `json:"assetsDown"`
	OpenWorkOrders int     `json:"openWorkOrders"`
}

// Dashboard rolls OEE and asset reliability into headline numbers.
func Dashboard(l Ledger, factoryID string, window time.Duration, now time.Time) KPIs {
	oee := OEE(l, factoryID, window, now)
	k := KPIs{
		FactoryID:    factoryID,
		OEE:          oee.OEE * 100,
		Availability: oee.Availability * 100,
		Performance:  oee.Performance * 100,
		Quality:      oee.Quality * 100,
		Confidence:   oee.ConfidenceScore,
	}

	assets := l.MasterData.AssetsIn(factoryID)
	if len(assets) > 0 {
		inv := ReplayInventory(l)
		var mtbf, health float64
		for _, a := range assets {
			m := reliability(l, a.ID, now, inv)
			mtbf += m.MTBFHours
			health += float64(m.HealthScore)
			if m.IsDown {
				k.AssetsDown++
			}
		}
		k.MeanMTBFHours = mtbf / float64(len(assets))
		k.FactoryHealth = health / float64(len(assets))
	}

	for _, wo := range OpenWorkOrders(l) {
		if a, ok := l.MasterData.Asset(wo.AssetID); ok && a.FactoryID == factoryID {
			k.OpenWorkOrders++
		}
	}
	return k
}
