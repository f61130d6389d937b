// internal/integrity/rules.go
package integrity

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"focis/internal/domain"
	"focis/internal/eventstore"
	"focis/internal/projection"
)

// RegisterDefaultRules registers the standard ledger rules.
func (a *Auditor) RegisterDefaultRules() {
	a.RegisterRule(ImmutableInventoryRule())
	a.RegisterRule(EventLockedProductionRule())
	a.RegisterRule(TimeBoundCuringRule())
	a.RegisterRule(MaintenanceChainRule())
	a.RegisterRule(ZeroManualCostingRule())
	a.RegisterRule(GateHandshakeRule())
}

func index(events []domain.Event) map[string]domain.Event {
	byID := make(map[string]domain.Event, len(events))
	for _, e := range events {
		byID[e.ID] = e
	}
	return byID
}

// ImmutableInventoryRule re-hashes the ledger and checks that every
// reversal mark is backed by a reversal event.
func ImmutableInventoryRule() Rule {
	return Rule{
		Name:        "Immutable Inventory",
		Description: "Every balance is derived from sealed, unaltered events",
		Check: func(in Input) []Violation {
			var out []Violation
			if err := eventstore.VerifyChain(in.Events); err != nil {
				out = append(out, Violation{Message: err.Error()})
			}
			byID := index(in.Events)
			for _, e := range in.Events {
				if e.IsReversed {
					rev, ok := byID[e.ReversedByID]
					p, isRev := rev.Payload().(domain.EventReversal)
					if !ok || !isRev || p.ReversedEventID != e.ID {
						out = append(out, Violation{EventID: e.ID, Message: "marked reversed without a matching reversal"})
					}
				}
				if p, ok := e.Payload().(domain.EventReversal); ok {
					target, found := byID[p.ReversedEventID]
					if !found || target.ReversedByID != e.ID {
						out = append(out, Violation{EventID: e.ID, Message: fmt.Sprintf("reversal of %s not applied", p.ReversedEventID)})
					}
				}
			}
			return out
		},
	}
}

// EventLockedProductionRule checks that each cycle end closes exactly one
// earlier start on the same line and that its bill of materials was in stock.
func EventLockedProductionRule() Rule {
	return Rule{
		Name:        "Event-Locked Production",
		Description: "Each cycle end closes a started cycle and draws its bill of materials from stock",
		Check: func(in Input) []Violation {
			var out []Violation
			byID := index(in.Events)
			closedBy := make(map[string]string)
			shortfall := projection.ReplayInventory(in.Ledger).Shortfall
			for _, e := range in.Events {
				p, ok := e.Payload().(domain.ProductionCycleEnd)
				if !ok || e.IsReversed {
					continue
				}
				start, found := byID[p.StartEventID]
				switch {
				case p.StartEventID == "" || !found || start.Kind != domain.KindProductionCycleStart:
					out = append(out, Violation{EventID: e.ID, Message: "cycle end without a recorded start"})
				case start.IsReversed:
					out = append(out, Violation{EventID: e.ID, Message: fmt.Sprintf("start %s was reversed", start.ID)})
				case start.EntityID != e.EntityID:
					out = append(out, Violation{EventID: e.ID, Message: fmt.Sprintf("start %s ran on %s", start.ID, start.EntityID)})
				case start.OccurredAt.After(e.OccurredAt):
					out = append(out, Violation{EventID: e.ID, Message: "cycle ends before it starts"})
				}
				if prev, dup := closedBy[p.StartEventID]; dup && p.StartEventID != "" {
					out = append(out, Violation{EventID: e.ID, Message: fmt.Sprintf("start %s already closed by %s", p.StartEventID, prev)})
				}
				closedBy[p.StartEventID] = e.ID
				if short, ok := shortfall[e.ID]; ok && short.IsPositive() {
					out = append(out, Violation{EventID: e.ID, Message: fmt.Sprintf("bill of materials short by %s", short)})
				}
			}
			return out
		},
	}
}

// TimeBoundCuringRule checks that pallets leave curing only after their
// required dwell.
func TimeBoundCuringRule() Rule {
	return Rule{
		Name:        "Time-Bound Curing",
		Description: "Drying exits happen after the product's curing duration",
		Check: func(in Input) []Violation {
			var out []Violation
			byID := index(in.Events)
			exited := make(map[string]bool)
			for _, e := range in.Events {
				p, ok := e.Payload().(domain.DryingExit)
				if !ok || e.IsReversed {
					continue
				}
				entry, found := byID[p.EntryEventID]
				ep, isEntry := entry.Payload().(domain.DryingEntry)
				if !found || !isEntry || entry.IsReversed {
					out = append(out, Violation{EventID: e.ID, Message: fmt.Sprintf("no active drying entry %s", p.EntryEventID)})
					continue
				}
				if exited[p.EntryEventID] {
					out = append(out, Violation{EventID: e.ID, Message: fmt.Sprintf("entry %s already exited", p.EntryEventID)})
				}
				exited[p.EntryEventID] = true

				hours := ep.CuringDurationHours
				if hours <= 0 {
					item, _ := in.Ledger.MasterData.Item(ep.ProductID)
					hours = item.CuringHours()
				}
				ready := entry.OccurredAt.Add(time.Duration(hours * float64(time.Hour)))
				if e.OccurredAt.Before(ready) {
					out = append(out, Violation{
						EventID: e.ID,
						Message: fmt.Sprintf("left curing %.1fh early", ready.Sub(e.OccurredAt).Hours()),
					})
				}
			}
			return out
		},
	}
}

// MaintenanceChainRule checks breakdown, work order and repair chronology.
func MaintenanceChainRule() Rule {
	return Rule{
		Name:        "Maintenance Event Chain",
		Description: "Breakdown precedes work order open, which precedes start and close",
		Check: func(in Input) []Violation {
			var out []Violation
			byID := index(in.Events)
			openWO := func(e domain.Event, woID string) {
				wo, found := byID[woID]
				if !found || wo.Kind != domain.KindWorkOrderOpen {
					out = append(out, Violation{EventID: e.ID, Message: fmt.Sprintf("references unknown work order %q", woID)})
					return
				}
				if wo.OccurredAt.After(e.OccurredAt) {
					out = append(out, Violation{EventID: e.ID, Message: fmt.Sprintf("precedes work order %s", woID)})
				}
				if wo.EntityID != e.EntityID {
					out = append(out, Violation{EventID: e.ID, Message: fmt.Sprintf("work order %s is for %s", woID, wo.EntityID)})
				}
			}
			for _, e := range in.Events {
				if e.IsReversed {
					continue
				}
				switch p := e.Payload().(type) {
				case domain.WorkOrderOpen:
					if p.BreakdownEventID == "" {
						continue
					}
					b, found := byID[p.BreakdownEventID]
					if !found || b.Kind != domain.KindBreakdown {
						out = append(out, Violation{EventID: e.ID, Message: fmt.Sprintf("references unknown breakdown %q", p.BreakdownEventID)})
					} else if b.OccurredAt.After(e.OccurredAt) {
						out = append(out, Violation{EventID: e.ID, Message: "opened before its breakdown"})
					}
				case domain.WorkOrderStart:
					openWO(e, p.WorkOrderID)
				case domain.WorkOrderClose:
					openWO(e, p.WorkOrderID)
				case domain.Fix:
					if p.WorkOrderID != "" {
						openWO(e, p.WorkOrderID)
					}
				}
			}
			return out
		},
	}
}

// costKeys are detail fields that would set a value FIFO derives.
var costKeys = map[string]bool{"unitcost": true, "unitprice": true, "cost": true, "totalcost": true, "value": true}

// fifoCosted kinds take their cost from consumed batches only.
var fifoCosted = map[domain.Kind]bool{
	domain.KindProductionCycleEnd:  true,
	domain.KindConsumption:         true,
	domain.KindInventoryTransfer:   true,
	domain.KindInventoryAdjustment: true,
	domain.KindGateOut:             true,
}

// ZeroManualCostingRule flags FIFO-costed events that carry a cost of their own.
func ZeroManualCostingRule() Rule {
	return Rule{
		Name:        "Zero Manual Costing",
		Description: "Costs come from FIFO batches, never from typed-in values",
		Check: func(in Input) []Violation {
			var out []Violation
			for _, e := range in.Events {
				if !fifoCosted[e.Kind] || len(e.Details) == 0 {
					continue
				}
				var fields map[string]json.RawMessage
				if err := json.Unmarshal(e.Details, &fields); err != nil {
					continue
				}
				for key := range fields {
					if costKeys[strings.ToLower(key)] {
						out = append(out, Violation{EventID: e.ID, Message: fmt.Sprintf("%s carries manual %q", e.Kind, key)})
					}
				}
			}
			return out
		},
	}
}

// GateHandshakeRule checks that inbound stock at the gate was received and
// that dispatches leave from stock on hand.
func GateHandshakeRule() Rule {
	return Rule{
		Name:        "Gate Handshake",
		Description: "Gate-in of stock is paired with its goods receipt; gate-out ships stock on hand",
		Check: func(in Input) []Violation {
			var out []Violation
			shortfall := projection.ReplayInventory(in.Ledger).Shortfall
			for i, e := range in.Events {
				if e.IsReversed || e.EntityID == "" || e.EntityID == domain.LogisticUnit {
					continue
				}
				switch p := e.Payload().(type) {
				case domain.GateIn:
					if !receivedAfter(in.Events[i+1:], e, p) {
						out = append(out, Violation{EventID: e.ID, Message: "gate-in of " + e.EntityID + " has no goods receipt"})
					}
				case domain.GateOut:
					if short, ok := shortfall[e.ID]; ok && short.IsPositive() {
						out = append(out, Violation{EventID: e.ID, Message: fmt.Sprintf("dispatched %s more than on hand", short)})
					}
				}
			}
			return out
		},
	}
}

// receivedAfter reports whether a live receipt for the same item and
// quantity follows gate at the same time.
func receivedAfter(rest []domain.Event, gate domain.Event, p domain.GateIn) bool {
	for _, e := range rest {
		r, ok := e.Payload().(domain.GoodsReceipt)
		if !ok || e.IsReversed || e.EntityID != gate.EntityID {
			continue
		}
		if e.OccurredAt.Equal(gate.OccurredAt) && r.Quantity.Equal(p.Quantity) {
			return true
		}
	}
	return false
}
