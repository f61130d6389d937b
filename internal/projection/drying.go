package projection

import (
	"sort"
	"time"

	"focis/internal/domain"
)

// DefaultSlotCapacity is reported for drying rooms that do not state one.
const DefaultSlotCapacity = 100

// Curing states of a pallet group.
const (
	CuringStabilizing = "stabilizing"
	CuringReady       = "ready"
)

// PalletGroup is the set of pallets placed by one drying entry.
type PalletGroup struct {
	EntryEventID        string    `json:"entryEventId"`
	ProductID           string    `json:"productId"`
	PalletCount         int       `json:"palletCount"`
	EnteredAt           time.Time `json:"enteredAt"`
	CuringDurationHours float64   `json:"curingDurationHours"`
	ReadyAt             time.Time `json:"readyAt"`
	ElapsedHours        float64   `json:"elapsedHours"`
	Status              string    `json:"status"`
}

// Ready reports whether the group has completed its dwell.
func (g PalletGroup) Ready() bool {
	return g.Status == CuringReady
}

// DryingSlot is one curing location and the groups still inside it.
// Capacity is advisory: entries beyond it are still recorded.
type DryingSlot struct {
	SlotID          string        `json:"slotId"`
	WarehouseID     string        `json:"warehouseId,omitempty"`
	Name            string        `json:"name"`
	CapacityPallets int           `json:"capacityPallets"`
	OccupiedPallets int           `json:"occupiedPallets"`
	OverCapacity    bool          `json:"overCapacity"`
	Groups          []PalletGroup `json:"groups"`
}

// DryingSlots replays entries and exits into per-slot occupancy as of now.
// Slots are the drying-room warehouses; an entry naming an unknown slot opens
// an ad-hoc slot so that no pallets disappear from view.
func DryingSlots(l Ledger, now time.Time) []DryingSlot {
	var slots []*DryingSlot
	for _, w := range l.MasterData.Warehouses {
		if w.Type != domain.WarehouseDryingRoom {
			continue
		}
		capacity := w.CapacityPallets
		if capacity <= 0 {
			capacity = DefaultSlotCapacity
		}
		slots = append(slots, &DryingSlot{
			SlotID:          w.ID,
			WarehouseID:     w.ID,
			Name:            w.Name,
			CapacityPallets: capacity,
		})
	}

	find := func(ref string) *DryingSlot {
		for _, s := range slots {
			if s.SlotID == ref || s.Name == ref {
				return s
			}
		}
		return nil
	}

	for _, e := range l.chronological() {
		switch p := e.Payload().(type) {
		case domain.DryingEntry:
			if p.PalletCount <= 0 {
				continue
			}
			slot := find(p.SlotID)
			if slot == nil {
				slot = &DryingSlot{SlotID: p.SlotID, Name: p.SlotID, CapacityPallets: DefaultSlotCapacity}
				slots = append(slots, slot)
			}
			hours := p.CuringDurationHours
			if hours <= 0 {
				item, _ := l.MasterData.Item(p.ProductID)
				hours = item.CuringHours()
			}
			slot.Groups = append(slot.Groups, PalletGroup{
				EntryEventID:        e.ID,
				ProductID:           p.ProductID,
				PalletCount:         p.PalletCount,
				EnteredAt:           e.OccurredAt,
				CuringDurationHours: hours,
			})
		case domain.DryingExit:
			for _, s := range slots {
				s.Groups = removeGroup(s.Groups, p.EntryEventID)
			}
		}
	}

	out := make([]DryingSlot, 0, len(slots))
	for _, s := range slots {
		for i := range s.Groups {
			g := &s.Groups[i]
			dwell := time.Duration(g.CuringDurationHours * float64(time.Hour))
			g.ReadyAt = g.EnteredAt.Add(dwell)
			g.ElapsedHours = hoursBetween(g.EnteredAt, now)
			g.Status = CuringStabilizing
			if !now.Before(g.ReadyAt) {
				g.Status = CuringReady
			}
			s.OccupiedPallets += g.PalletCount
		}
		s.OverCapacity = s.OccupiedPallets > s.CapacityPallets
		if s.Groups == nil {
			s.Groups = []PalletGroup{}
		}
		out = append(out, *s)
	}
	return out
}

func removeGroup(groups []PalletGroup, entryEventID string) []PalletGroup {
	kept := groups[:0]
	for _, g := range groups {
		if g.EntryEventID != entryEventID {
			kept = append(kept, g)
		}
	}
	return kept
}

// curingByProduct sums pallets in curing per product, split by state.
func curingByProduct(slots []DryingSlot) (total, stabilizing map[string]int) {
	total = make(map[string]int)
	stabilizing = make(map[string]int)
	for _, s := range slots {
		for _, g := range s.Groups {
			total[g.ProductID] += g.PalletCount
			if !g.Ready() {
				stabilizing[g.ProductID] += g.PalletCount
			}
		}
	}
	return total, stabilizing
}

// ReadyGroups lists groups that have finished curing, oldest first.
func ReadyGroups(slots []DryingSlot) []PalletGroup {
	var out []PalletGroup
	for _, s := range slots {
		for _, g := range s.Groups {
			if g.Ready() {
				out = append(out, g)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].EnteredAt.Before(out[j].EnteredAt) })
	return out
}
