// internal/production/implementation.go
package production

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"focis/internal/domain"
	"focis/internal/eventstore"
	"focis/internal/projection"
)

// service implements the Service interface.
type service struct {
	eventStore *eventstore.EventStore
	tracer     trace.Tracer
}

// NewService creates a new production service instance.
func NewService(es *eventstore.EventStore) Service {
	return &service{
		eventStore: es,
		tracer:     otel.Tracer("focis/production"),
	}
}

// StartCycle records a cycle start against the line.
func (s *service) StartCycle(ctx context.Context, c CycleStart) (domain.Event, error) {
	actor, err := domain.RequireActor(ctx)
	if err != nil {
		return domain.Event{}, err
	}

	var start domain.Event
	err = s.eventStore.Transact(ctx, func(tx *eventstore.Tx) error {
		md := tx.Registry()
		asset, ok := md.Asset(c.AssetID)
		if !ok {
			return fmt.Errorf("%w: asset %q", domain.ErrUnknownEntity, c.AssetID)
		}
		if _, ok := md.Item(c.ProductID); !ok {
			return fmt.Errorf("%w: product %q", domain.ErrUnknownEntity, c.ProductID)
		}
		e, err := tx.Append(eventstore.Draft{
			Payload:    domain.ProductionCycleStart{ProductID: c.ProductID, Location: c.Location},
			UserID:     actor.UserID,
			EntityID:   c.AssetID,
			FactoryID:  asset.FactoryID,
			OccurredAt: c.OccurredAt,
		})
		start = e
		return err
	})
	if err != nil {
		return domain.Event{}, fmt.Errorf("failed to start cycle: %w", err)
	}
	return start, nil
}

// EndCycle closes an active cycle and places its pallets into curing in the
// same write.
func (s *service) EndCycle(ctx context.Context, c CycleEnd) (CycleResult, error) {
	actor, err := domain.RequireActor(ctx)
	if err != nil {
		return CycleResult{}, err
	}
	if c.PalletCount <= 0 {
		return CycleResult{}, fmt.Errorf("%w: palletCount must be positive", domain.ErrInvalidPayload)
	}

	var res CycleResult
	err = s.eventStore.Transact(ctx, func(tx *eventstore.Tx) error {
		start, ok := tx.Event(c.StartEventID)
		if !ok || start.Kind != domain.KindProductionCycleStart {
			return fmt.Errorf("%w: no cycle start %q", domain.ErrUnknownEntity, c.StartEventID)
		}
		if !active(tx, c.StartEventID) {
			return fmt.Errorf("%w: cycle %s is not running", domain.ErrInvalidState, c.StartEventID)
		}
		p, _ := start.Payload().(domain.ProductionCycleStart)
		productID := p.ProductID

		slot := c.SlotID
		if slot == "" {
			slot = dryingRoom(tx.Registry(), start.FactoryID)
		}

		end, err := tx.Append(eventstore.Draft{
			Payload: domain.ProductionCycleEnd{
				ProductID:      productID,
				PalletCount:    c.PalletCount,
				UnitsPerPallet: c.UnitsPerPallet,
				StartEventID:   c.StartEventID,
				Location:       c.Location,
			},
			UserID:     actor.UserID,
			EntityID:   start.EntityID,
			FactoryID:  start.FactoryID,
			OccurredAt: c.OccurredAt,
		})
		if err != nil {
			return err
		}
		entry, err := tx.Append(eventstore.Draft{
			Payload: domain.DryingEntry{
				SlotID:              slot,
				ProductID:           productID,
				PalletCount:         c.PalletCount,
				CuringDurationHours: c.CuringDurationHours,
				Location:            c.Location,
			},
			UserID:     actor.UserID,
			EntityID:   productID,
			FactoryID:  start.FactoryID,
			OccurredAt: end.OccurredAt,
		})
		if err != nil {
			return err
		}
		res = CycleResult{End: end, DryingEntry: entry}
		return nil
	})
	if err != nil {
		return CycleResult{}, fmt.Errorf("failed to end cycle: %w", err)
	}
	return res, nil
}

func active(tx *eventstore.Tx, startEventID string) bool {
	l := projection.Ledger{Events: tx.Events(), MasterData: tx.Registry()}
	for _, c := range projection.ActiveCycles(l, tx.Now()) {
		if c.StartEventID == startEventID {
			return true
		}
	}
	return false
}

// dryingRoom picks the factory's first drying-room warehouse.
func dryingRoom(md domain.MasterData, factoryID string) string {
	for _, w := range md.Warehouses {
		if w.Type == domain.WarehouseDryingRoom && w.FactoryID == factoryID {
			return w.ID
		}
	}
	return domain.DryingWarehouseID
}

// RecordWaste records rejected units against the line.
func (s *service) RecordWaste(ctx context.Context, w Waste) (domain.Event, error) {
	actor, err := domain.RequireActor(ctx)
	if err != nil {
		return domain.Event{}, err
	}

	var waste domain.Event
	err = s.eventStore.Transact(ctx, func(tx *eventstore.Tx) error {
		asset, ok := tx.Registry().Asset(w.AssetID)
		if !ok {
			return fmt.Errorf("%w: asset %q", domain.ErrUnknownEntity, w.AssetID)
		}
		e, err := tx.Append(eventstore.Draft{
			Payload: domain.ProductionWaste{
				ProductID: w.ProductID,
				Quantity:  w.Quantity,
				Reason:    w.Reason,
				Location:  w.Location,
			},
			UserID:     actor.UserID,
			EntityID:   w.AssetID,
			FactoryID:  asset.FactoryID,
			OccurredAt: w.OccurredAt,
		})
		waste = e
		return err
	})
	if err != nil {
		return domain.Event{}, fmt.Errorf("failed to record waste: %w", err)
	}
	return waste, nil
}

// ReleaseDrying records a drying exit. The group must still be in a slot and
// have completed its curing dwell at the exit time.
func (s *service) ReleaseDrying(ctx context.Context, r DryingRelease) (domain.Event, error) {
	actor, err := domain.RequireActor(ctx)
	if err != nil {
		return domain.Event{}, err
	}

	var exit domain.Event
	err = s.eventStore.Transact(ctx, func(tx *eventstore.Tx) error {
		at := r.OccurredAt
		if at.IsZero() {
			at = tx.Now()
		}
		l := projection.Ledger{Events: tx.Events(), MasterData: tx.Registry()}
		slot, group, ok := findGroup(projection.DryingSlots(l, at), r.EntryEventID)
		if !ok {
			return fmt.Errorf("%w: no pallets in curing for entry %q", domain.ErrInvalidState, r.EntryEventID)
		}
		if !group.Ready() {
			return fmt.Errorf("%w: %s ready at %s", domain.ErrCuringIncomplete, r.EntryEventID, group.ReadyAt.Format(time.RFC3339))
		}
		entry, _ := tx.Event(r.EntryEventID)
		e, err := tx.Append(eventstore.Draft{
			Payload: domain.DryingExit{
				SlotID:       slot.SlotID,
				EntryEventID: r.EntryEventID,
				ProductID:    group.ProductID,
				PalletCount:  group.PalletCount,
				Location:     r.Location,
			},
			UserID:     actor.UserID,
			EntityID:   group.ProductID,
			FactoryID:  entry.FactoryID,
			OccurredAt: at,
		})
		exit = e
		return err
	})
	if err != nil {
		return domain.Event{}, fmt.Errorf("failed to release drying: %w", err)
	}
	return exit, nil
}

func findGroup(slots []projection.DryingSlot, entryEventID string) (projection.DryingSlot, projection.PalletGroup, bool) {
	for _, s := range slots {
		for _, g := range s.Groups {
			if g.EntryEventID == entryEventID {
				return s, g, true
			}
		}
	}
	return projection.DryingSlot{}, projection.PalletGroup{}, false
}

func (s *service) ledger(ctx context.Context, name string) (projection.Ledger, time.Time, trace.Span, error) {
	ctx, span := s.tracer.Start(ctx, "projection."+name)
	snap, err := s.eventStore.Snapshot(ctx)
	if err != nil {
		span.RecordError(err)
		span.End()
		return projection.Ledger{}, time.Time{}, nil, err
	}
	span.SetAttributes(attribute.Int("events.replayed", len(snap.Events)))
	return projection.Ledger{Events: snap.Events, MasterData: snap.MasterData}, snap.TakenAt, span, nil
}

func (s *service) ActiveCycles(ctx context.Context) ([]projection.ActiveCycle, error) {
	l, now, span, err := s.ledger(ctx, "active_cycles")
	if err != nil {
		return nil, err
	}
	defer span.End()
	return projection.ActiveCycles(l, now), nil
}

func (s *service) DryingSlots(ctx context.Context) ([]projection.DryingSlot, error) {
	l, now, span, err := s.ledger(ctx, "drying_slots")
	if err != nil {
		return nil, err
	}
	defer span.End()
	return projection.DryingSlots(l, now), nil
}

// OEE computes the factory's OEE over window ending now. An empty factoryID
// selects the default factory; a non-positive window selects 24 hours.
func (s *service) OEE(ctx context.Context, factoryID string, window time.Duration) (projection.OEEBreakdown, error) {
	l, now, span, err := s.ledger(ctx, "oee")
	if err != nil {
		return projection.OEEBreakdown{}, err
	}
	defer span.End()

	if factoryID == "" {
		factoryID = l.MasterData.DefaultFactoryID()
	}
	if _, ok := l.MasterData.Factory(factoryID); !ok {
		return projection.OEEBreakdown{}, fmt.Errorf("%w: factory %q", domain.ErrNotFound, factoryID)
	}
	if window <= 0 {
		window = projection.DefaultOEEWindow
	}
	span.SetAttributes(attribute.String("factory.id", factoryID))
	return projection.OEE(l, factoryID, window, now), nil
}
