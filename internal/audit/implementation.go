// internal/audit/implementation.go
package audit

import (
	"context"
	"fmt"
	"strings"
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

// NewService creates a new audit service instance.
func NewService(es *eventstore.EventStore) Service {
	return &service{
		eventStore: es,
		tracer:     otel.Tracer("focis/audit"),
	}
}

// Trail lists events newest first, reversed ones included.
func (s *service) Trail(ctx context.Context, f TrailFilter) ([]domain.Event, error) {
	kind := strings.ToLower(strings.TrimSpace(f.Kind))
	events, err := s.eventStore.Query(ctx, eventstore.Query{Predicate: func(e domain.Event) bool {
		if f.EntityID != "" && e.EntityID != f.EntityID {
			return false
		}
		if kind == "" {
			return true
		}
		return strings.Contains(strings.ToLower(string(e.Kind)), kind) ||
			strings.Contains(strings.ToLower(e.Kind.Code()), kind)
	}})
	if err != nil {
		return nil, err
	}
	if f.Limit > 0 && len(events) > f.Limit {
		events = events[:f.Limit]
	}
	if events == nil {
		events = []domain.Event{}
	}
	return events, nil
}

func (s *service) Event(ctx context.Context, id string) (domain.Event, error) {
	return s.eventStore.Get(ctx, id)
}

// Record appends a raw entry after strict payload validation. Reversals and
// registry changes have their own paths and are refused here.
func (s *service) Record(ctx context.Context, entry Entry) (domain.Event, error) {
	actor, err := domain.RequireActor(ctx)
	if err != nil {
		return domain.Event{}, err
	}
	kind, ok := domain.ParseKind(entry.Type)
	if !ok {
		return domain.Event{}, fmt.Errorf("%w: %q", domain.ErrUnknownKind, entry.Type)
	}
	switch kind {
	case domain.KindEventReversal, domain.KindMasterDataModification:
		return domain.Event{}, fmt.Errorf("%w: %s cannot be recorded directly", domain.ErrInvalidPayload, kind)
	}
	p, err := domain.NewPayload(kind, entry.Details)
	if err != nil {
		return domain.Event{}, err
	}
	if strings.TrimSpace(entry.EntityID) == "" {
		return domain.Event{}, fmt.Errorf("%w: entityId required", domain.ErrInvalidPayload)
	}

	factoryID := entry.FactoryID
	if factoryID == "" {
		factoryID = actor.FactoryID
	}
	e, err := s.eventStore.Append(ctx, eventstore.Draft{
		Payload:    p,
		UserID:     actor.UserID,
		EntityID:   entry.EntityID,
		FactoryID:  factoryID,
		OccurredAt: entry.OccurredAt,
	})
	if err != nil {
		return domain.Event{}, fmt.Errorf("failed to record %s: %w", kind, err)
	}
	return e, nil
}

// Reverse voids an event. Only supervisory roles may reverse.
func (s *service) Reverse(ctx context.Context, r Reversal) (domain.Event, error) {
	actor, err := domain.RequireActor(ctx)
	if err != nil {
		return domain.Event{}, err
	}
	if !actor.Role.CanReverse() {
		return domain.Event{}, fmt.Errorf("%w: %s cannot reverse events", domain.ErrForbidden, actor.Role)
	}
	if strings.TrimSpace(r.Reason) == "" {
		return domain.Event{}, fmt.Errorf("%w: reversal reason required", domain.ErrInvalidPayload)
	}
	return s.eventStore.Reverse(ctx, actor.UserID, r.EventID, r.Reason)
}

// Dashboard rolls up the factory's KPIs over window ending now.
func (s *service) Dashboard(ctx context.Context, factoryID string, window time.Duration) (projection.KPIs, error) {
	ctx, span := s.tracer.Start(ctx, "projection.dashboard")
	defer span.End()

	snap, err := s.eventStore.Snapshot(ctx)
	if err != nil {
		span.RecordError(err)
		return projection.KPIs{}, err
	}
	l := projection.Ledger{Events: snap.Events, MasterData: snap.MasterData}
	if factoryID == "" {
		factoryID = l.MasterData.DefaultFactoryID()
	}
	if _, ok := l.MasterData.Factory(factoryID); !ok {
		return projection.KPIs{}, fmt.Errorf("%w: factory %q", domain.ErrNotFound, factoryID)
	}
	span.SetAttributes(
		attribute.String("factory.id", factoryID),
		attribute.Int("events.replayed", len(snap.Events)),
	)
	return projection.Dashboard(l, factoryID, window, snap.TakenAt), nil
}

// VerifyChain re-hashes the ledger in append order.
func (s *service) VerifyChain(ctx context.Context) (ChainStatus, error) {
	ctx, span := s.tracer.Start(ctx, "audit.verify_chain")
	defer span.End()

	snap, err := s.eventStore.Snapshot(ctx)
	if err != nil {
		return ChainStatus{}, err
	}
	status := ChainStatus{Events: len(snap.Events), Valid: true, Verified: snap.TakenAt}
	if err := eventstore.VerifyChain(snap.Events); err != nil {
		status.Valid = false
		status.Problem = err.Error()
		span.RecordError(err)
	}
	span.SetAttributes(attribute.Bool("chain.valid", status.Valid))
	return status, nil
}
