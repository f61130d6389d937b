// internal/maintenance/implementation.go
package maintenance

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

// NewService creates a new maintenance service instance.
func NewService(es *eventstore.EventStore) Service {
	return &service{
		eventStore: es,
		tracer:     otel.Tracer("focis/maintenance"),
	}
}

// ReportBreakdown records the failure and opens a work order referencing it
// in the same write.
func (s *service) ReportBreakdown(ctx context.Context, b BreakdownReport) (BreakdownResult, error) {
	actor, err := domain.RequireActor(ctx)
	if err != nil {
		return BreakdownResult{}, err
	}
	priority := b.Priority
	if priority == "" {
		priority = PriorityHigh
	}

	var res BreakdownResult
	err = s.eventStore.Transact(ctx, func(tx *eventstore.Tx) error {
		asset, ok := tx.Registry().Asset(b.AssetID)
		if !ok {
			return fmt.Errorf("%w: asset %q", domain.ErrUnknownEntity, b.AssetID)
		}
		down, err := tx.Append(eventstore.Draft{
			Payload:    domain.Breakdown{Description: b.Description, DetectedBy: actor.UserID, Location: b.Location},
			UserID:     actor.UserID,
			EntityID:   asset.ID,
			FactoryID:  asset.FactoryID,
			OccurredAt: b.OccurredAt,
		})
		if err != nil {
			return err
		}
		wo, err := tx.Append(eventstore.Draft{
			Payload:    domain.WorkOrderOpen{BreakdownEventID: down.ID, Priority: priority, Location: b.Location},
			UserID:     actor.UserID,
			EntityID:   asset.ID,
			FactoryID:  asset.FactoryID,
			OccurredAt: down.OccurredAt,
		})
		if err != nil {
			return err
		}
		res = BreakdownResult{Breakdown: down, WorkOrder: wo}
		return nil
	})
	if err != nil {
		return BreakdownResult{}, fmt.Errorf("failed to report breakdown: %w", err)
	}
	return res, nil
}

// openWorkOrder finds woID among the work orders still open in tx.
func openWorkOrder(tx *eventstore.Tx, woID string) (projection.WorkOrder, error) {
	l := projection.Ledger{Events: tx.Events(), MasterData: tx.Registry()}
	for _, wo := range projection.OpenWorkOrders(l) {
		if wo.WorkOrderID == woID {
			return wo, nil
		}
	}
	if e, ok := tx.Event(woID); !ok || e.Kind != domain.KindWorkOrderOpen {
		return projection.WorkOrder{}, fmt.Errorf("%w: work order %q", domain.ErrUnknownEntity, woID)
	}
	return projection.WorkOrder{}, fmt.Errorf("%w: work order %s is closed", domain.ErrInvalidState, woID)
}

// StartWorkOrder records a technician beginning work on an open order.
func (s *service) StartWorkOrder(ctx context.Context, a WorkOrderAction) (domain.Event, error) {
	return s.onWorkOrder(ctx, a.WorkOrderID, func(tx *eventstore.Tx, wo projection.WorkOrder) (eventstore.Draft, error) {
		if wo.Started {
			return eventstore.Draft{}, fmt.Errorf("%w: work order %s already started", domain.ErrInvalidState, wo.WorkOrderID)
		}
		return eventstore.Draft{
			Payload:    domain.WorkOrderStart{WorkOrderID: wo.WorkOrderID, Location: a.Location},
			OccurredAt: a.OccurredAt,
		}, nil
	})
}

// CloseWorkOrder completes an open order and brings its asset back up.
func (s *service) CloseWorkOrder(ctx context.Context, a WorkOrderAction) (domain.Event, error) {
	return s.onWorkOrder(ctx, a.WorkOrderID, func(tx *eventstore.Tx, wo projection.WorkOrder) (eventstore.Draft, error) {
		return eventstore.Draft{
			Payload:    domain.WorkOrderClose{WorkOrderID: wo.WorkOrderID, Conclusion: a.Conclusion, Location: a.Location},
			OccurredAt: a.OccurredAt,
		}, nil
	})
}

// IssueSparePart draws parts against an open work order and its asset.
func (s *service) IssueSparePart(ctx context.Context, i SpareIssue) (domain.Event, error) {
	return s.onWorkOrder(ctx, i.WorkOrderID, func(tx *eventstore.Tx, wo projection.WorkOrder) (eventstore.Draft, error) {
		md := tx.Registry()
		if _, ok := md.Item(i.PartID); !ok {
			return eventstore.Draft{}, fmt.Errorf("%w: part %q", domain.ErrUnknownEntity, i.PartID)
		}
		if i.WarehouseID != "" {
			if _, ok := md.Warehouse(i.WarehouseID); !ok {
				return eventstore.Draft{}, fmt.Errorf("%w: warehouse %q", domain.ErrUnknownEntity, i.WarehouseID)
			}
		}
		return eventstore.Draft{
			Payload: domain.InventoryIssue{
				Quantity:          i.Quantity,
				WarehouseID:       i.WarehouseID,
				LinkedAssetID:     wo.AssetID,
				LinkedWorkOrderID: wo.WorkOrderID,
				UnitPrice:         i.UnitPrice,
				Location:          i.Location,
			},
			EntityID:   i.PartID,
			OccurredAt: i.OccurredAt,
		}, nil
	})
}

// onWorkOrder appends the draft build returns for an open work order. The
// draft's entity defaults to the order's asset.
func (s *service) onWorkOrder(ctx context.Context, woID string, build func(*eventstore.Tx, projection.WorkOrder) (eventstore.Draft, error)) (domain.Event, error) {
	actor, err := domain.RequireActor(ctx)
	if err != nil {
		return domain.Event{}, err
	}

	var recorded domain.Event
	err = s.eventStore.Transact(ctx, func(tx *eventstore.Tx) error {
		wo, err := openWorkOrder(tx, woID)
		if err != nil {
			return err
		}
		d, err := build(tx, wo)
		if err != nil {
			return err
		}
		opened, _ := tx.Event(wo.WorkOrderID)
		d.UserID = actor.UserID
		d.FactoryID = opened.FactoryID
		if d.EntityID == "" {
			d.EntityID = wo.AssetID
		}
		e, err := tx.Append(d)
		recorded = e
		return err
	})
	if err != nil {
		return domain.Event{}, fmt.Errorf("failed to update work order %s: %w", woID, err)
	}
	return recorded, nil
}

// RecordFix brings an asset back up. A named work order must be open and
// belong to the asset.
func (s *service) RecordFix(ctx context.Context, r ServiceRecord) (domain.Event, error) {
	return s.onAsset(ctx, r, domain.Fix{WorkOrderID: r.WorkOrderID, Description: r.Description, Location: r.Location})
}

// RecordPreventive records planned service. It does not change asset state.
func (s *service) RecordPreventive(ctx context.Context, r ServiceRecord) (domain.Event, error) {
	return s.onAsset(ctx, r, domain.PreventiveMaintenance{Description: r.Description, WorkOrderID: r.WorkOrderID, Location: r.Location})
}

func (s *service) onAsset(ctx context.Context, r ServiceRecord, p domain.Payload) (domain.Event, error) {
	actor, err := domain.RequireActor(ctx)
	if err != nil {
		return domain.Event{}, err
	}

	var recorded domain.Event
	err = s.eventStore.Transact(ctx, func(tx *eventstore.Tx) error {
		asset, ok := tx.Registry().Asset(r.AssetID)
		if !ok {
			return fmt.Errorf("%w: asset %q", domain.ErrUnknownEntity, r.AssetID)
		}
		if r.WorkOrderID != "" {
			wo, err := openWorkOrder(tx, r.WorkOrderID)
			if err != nil {
				return err
			}
			if wo.AssetID != asset.ID {
				return fmt.Errorf("%w: work order %s belongs to %s", domain.ErrInvalidState, wo.WorkOrderID, wo.AssetID)
			}
		}
		e, err := tx.Append(eventstore.Draft{
			Payload:    p,
			UserID:     actor.UserID,
			EntityID:   asset.ID,
			FactoryID:  asset.FactoryID,
			OccurredAt: r.OccurredAt,
		})
		recorded = e
		return err
	})
	if err != nil {
		return domain.Event{}, fmt.Errorf("failed to record %s: %w", p.Kind(), err)
	}
	return recorded, nil
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

func (s *service) AssetMetrics(ctx context.Context) ([]projection.AssetMetrics, error) {
	l, now, span, err := s.ledger(ctx, "reliability")
	if err != nil {
		return nil, err
	}
	defer span.End()
	return projection.Reliability(l, now), nil
}

func (s *service) Asset(ctx context.Context, assetID string) (projection.AssetMetrics, error) {
	l, now, span, err := s.ledger(ctx, "reliability")
	if err != nil {
		return projection.AssetMetrics{}, err
	}
	defer span.End()
	if _, ok := l.MasterData.Asset(assetID); !ok {
		return projection.AssetMetrics{}, fmt.Errorf("%w: asset %q", domain.ErrNotFound, assetID)
	}
	span.SetAttributes(attribute.String("asset.id", assetID))
	return projection.ReliabilityFor(l, assetID, now), nil
}

func (s *service) WorkOrders(ctx context.Context) ([]projection.WorkOrder, error) {
	l, _, span, err := s.ledger(ctx, "work_orders")
	if err != nil {
		return nil, err
	}
	defer span.End()
	return projection.OpenWorkOrders(l), nil
}
