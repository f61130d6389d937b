// internal/security/implementation.go
package security

import (
	"context"
	"fmt"

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
	opts       Options
	tracer     trace.Tracer
}

// NewService creates a new gate service instance.
func NewService(es *eventstore.EventStore, opts Options) Service {
	def := DefaultOptions()
	if opts.ReceiptWarehouseID == "" {
		opts.ReceiptWarehouseID = def.ReceiptWarehouseID
	}
	if opts.ReceiptUnitPrice.IsZero() {
		opts.ReceiptUnitPrice = def.ReceiptUnitPrice
	}
	return &service{
		eventStore: es,
		opts:       opts,
		tracer:     otel.Tracer("focis/security"),
	}
}

// GateIn records an arriving vehicle. Inbound stock is also received into
// the configured warehouse in the same write.
func (s *service) GateIn(ctx context.Context, m Movement) (GateResult, error) {
	return s.cross(ctx, m, true)
}

// GateOut records a departing vehicle. Outbound stock leaves inventory when
// the ledger is replayed.
func (s *service) GateOut(ctx context.Context, m Movement) (GateResult, error) {
	return s.cross(ctx, m, false)
}

func (s *service) cross(ctx context.Context, m Movement, inbound bool) (GateResult, error) {
	actor, err := domain.RequireActor(ctx)
	if err != nil {
		return GateResult{}, err
	}

	entity := m.ItemID
	if entity == "" {
		entity = domain.LogisticUnit
	}
	move := domain.GateMovement{
		VehicleNo:  m.VehicleNo,
		DriverName: m.DriverName,
		Quantity:   m.Quantity,
		Reference:  m.Reference,
		Location:   m.Location,
	}
	if m.ItemID != "" {
		move.PayloadDescription = fmt.Sprintf("%s units of %s", m.Quantity.String(), m.ItemID)
	}
	var p domain.Payload = domain.GateOut{GateMovement: move}
	if inbound {
		p = domain.GateIn{GateMovement: move}
	}

	var res GateResult
	err = s.eventStore.Transact(ctx, func(tx *eventstore.Tx) error {
		if m.ItemID != "" {
			if _, ok := tx.Registry().Item(m.ItemID); !ok {
				return fmt.Errorf("%w: item %q", domain.ErrUnknownEntity, m.ItemID)
			}
		}
		gate, err := tx.Append(eventstore.Draft{
			Payload:    p,
			UserID:     actor.UserID,
			EntityID:   entity,
			FactoryID:  actor.FactoryID,
			OccurredAt: m.OccurredAt,
		})
		if err != nil {
			return err
		}
		res.Gate = gate
		if !inbound || m.ItemID == "" {
			return nil
		}
		receipt, err := tx.Append(eventstore.Draft{
			Payload: domain.GoodsReceipt{
				WarehouseID: s.opts.ReceiptWarehouseID,
				Quantity:    m.Quantity,
				UnitPrice:   s.opts.ReceiptUnitPrice,
				Reference:   m.Reference,
				Location:    m.Location,
			},
			UserID:     actor.UserID,
			EntityID:   m.ItemID,
			FactoryID:  gate.FactoryID,
			OccurredAt: gate.OccurredAt,
		})
		if err != nil {
			return err
		}
		res.Receipt = &receipt
		return nil
	})
	if err != nil {
		return GateResult{}, fmt.Errorf("failed to record gate movement: %w", err)
	}
	return res, nil
}

// RecordCheck records an inspection against the vehicle.
func (s *service) RecordCheck(ctx context.Context, c Check) (domain.Event, error) {
	actor, err := domain.RequireActor(ctx)
	if err != nil {
		return domain.Event{}, err
	}
	entity := c.VehicleNo
	if entity == "" {
		entity = domain.LogisticUnit
	}
	e, err := s.eventStore.Append(ctx, eventstore.Draft{
		Payload:    domain.SecurityCheck{VehicleNo: c.VehicleNo, Result: c.Result, Notes: c.Notes, Location: c.Location},
		UserID:     actor.UserID,
		EntityID:   entity,
		FactoryID:  actor.FactoryID,
		OccurredAt: c.OccurredAt,
	})
	if err != nil {
		return domain.Event{}, fmt.Errorf("failed to record security check: %w", err)
	}
	return e, nil
}

// History lists gate crossings, newest first.
func (s *service) History(ctx context.Context) ([]projection.GateCrossing, error) {
	ctx, span := s.tracer.Start(ctx, "projection.gate_history")
	defer span.End()

	snap, err := s.eventStore.Snapshot(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	history := projection.GateHistory(projection.Ledger{Events: snap.Events, MasterData: snap.MasterData})
	span.SetAttributes(attribute.Int("crossings", len(history)))
	return history, nil
}
