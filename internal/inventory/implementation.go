// internal/inventory/implementation.go
package inventory

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

// NewService creates a new inventory service instance.
func NewService(es *eventstore.EventStore) Service {
	return &service{
		eventStore: es,
		tracer:     otel.Tracer("focis/inventory"),
	}
}

func (s *service) Receive(ctx context.Context, r Receipt) (domain.Event, error) {
	return s.record(ctx, r.ItemID, r.OccurredAt, []string{r.WarehouseID}, domain.GoodsReceipt{
		WarehouseID: r.WarehouseID,
		Quantity:    r.Quantity,
		UnitPrice:   r.UnitPrice,
		ExpiryDate:  r.ExpiryDate,
		Reference:   r.Reference,
		Location:    r.Location,
	})
}

func (s *service) OpeningBalance(ctx context.Context, r Receipt) (domain.Event, error) {
	return s.record(ctx, r.ItemID, r.OccurredAt, []string{r.WarehouseID}, domain.OpeningBalance{
		WarehouseID: r.WarehouseID,
		Quantity:    r.Quantity,
		UnitPrice:   r.UnitPrice,
		Location:    r.Location,
	})
}

func (s *service) Issue(ctx context.Context, i Issue) (domain.Event, error) {
	if i.LinkedAssetID != "" {
		md, err := s.eventStore.MasterData(ctx)
		if err != nil {
			return domain.Event{}, err
		}
		if _, ok := md.Asset(i.LinkedAssetID); !ok {
			return domain.Event{}, fmt.Errorf("%w: asset %q", domain.ErrUnknownEntity, i.LinkedAssetID)
		}
	}
	return s.record(ctx, i.ItemID, i.OccurredAt, []string{i.WarehouseID}, domain.InventoryIssue{
		Quantity:          i.Quantity,
		WarehouseID:       i.WarehouseID,
		LinkedAssetID:     i.LinkedAssetID,
		LinkedWorkOrderID: i.LinkedWorkOrderID,
		Location:          i.Location,
	})
}

func (s *service) Consume(ctx context.Context, i Issue) (domain.Event, error) {
	return s.record(ctx, i.ItemID, i.OccurredAt, []string{i.WarehouseID}, domain.Consumption{
		Quantity:    i.Quantity,
		WarehouseID: i.WarehouseID,
		Location:    i.Location,
	})
}

func (s *service) Transfer(ctx context.Context, t Transfer) (domain.Event, error) {
	if t.FromWarehouseID == t.ToWarehouseID && t.FromWarehouseID != "" {
		return domain.Event{}, fmt.Errorf("%w: transfer source and destination are both %q", domain.ErrInvalidPayload, t.FromWarehouseID)
	}
	return s.record(ctx, t.ItemID, t.OccurredAt, []string{t.FromWarehouseID, t.ToWarehouseID}, domain.InventoryTransfer{
		FromWarehouseID: t.FromWarehouseID,
		ToWarehouseID:   t.ToWarehouseID,
		Quantity:        t.Quantity,
		Location:        t.Location,
	})
}

func (s *service) Adjust(ctx context.Context, a Adjustment) (domain.Event, error) {
	return s.record(ctx, a.ItemID, a.OccurredAt, nil, domain.InventoryAdjustment{
		BatchID:  a.BatchID,
		Quantity: a.Quantity,
		Reason:   a.Reason,
		Location: a.Location,
	})
}

// record appends p against itemID after checking that the item and every
// named warehouse are registered.
func (s *service) record(ctx context.Context, itemID string, at time.Time, warehouses []string, p domain.Payload) (domain.Event, error) {
	actor, err := domain.RequireActor(ctx)
	if err != nil {
		return domain.Event{}, err
	}

	var recorded domain.Event
	err = s.eventStore.Transact(ctx, func(tx *eventstore.Tx) error {
		md := tx.Registry()
		if _, ok := md.Item(itemID); !ok {
			return fmt.Errorf("%w: item %q", domain.ErrUnknownEntity, itemID)
		}
		for _, id := range warehouses {
			if id == "" {
				continue
			}
			if _, ok := md.Warehouse(id); !ok {
				return fmt.Errorf("%w: warehouse %q", domain.ErrUnknownEntity, id)
			}
		}
		e, err := tx.Append(eventstore.Draft{
			Payload:    p,
			UserID:     actor.UserID,
			EntityID:   itemID,
			FactoryID:  actor.FactoryID,
			OccurredAt: at,
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

func (s *service) Batches(ctx context.Context, f BatchFilter) ([]projection.Batch, error) {
	l, _, span, err := s.ledger(ctx, "batches")
	if err != nil {
		return nil, err
	}
	defer span.End()

	out := make([]projection.Batch, 0)
	for _, b := range projection.Batches(l) {
		if f.ItemID != "" && b.ItemID != f.ItemID {
			continue
		}
		if f.WarehouseID != "" && b.WarehouseID != f.WarehouseID {
			continue
		}
		if f.OpenOnly && !b.RemainingQuantity.IsPositive() {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *service) Stock(ctx context.Context) ([]projection.StockSummary, error) {
	l, now, span, err := s.ledger(ctx, "stock")
	if err != nil {
		return nil, err
	}
	defer span.End()
	return projection.StockSummaries(l, now), nil
}

func (s *service) CostBreakdown(ctx context.Context, itemID string) (projection.CostBreakdown, error) {
	l, _, span, err := s.ledger(ctx, "cost_breakdown")
	if err != nil {
		return projection.CostBreakdown{}, err
	}
	defer span.End()
	if _, ok := l.MasterData.Item(itemID); !ok {
		return projection.CostBreakdown{}, fmt.Errorf("%w: item %q", domain.ErrNotFound, itemID)
	}
	return projection.CostBreakdownFor(l, itemID), nil
}
