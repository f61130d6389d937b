package eventstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"focis/internal/domain"
)

var (
	ErrEventNotFound   = errors.New("event not found")
	ErrAlreadyReversed = errors.New("event already reversed")
	ErrNotReversible   = errors.New("event cannot be reversed")
	ErrStoreClosed     = errors.New("event store closed")
)

// Draft is an event before the ledger assigns identity and timestamps.
type Draft struct {
	Payload    domain.Payload
	UserID     string
	EntityID   string
	FactoryID  string    // defaults to the first registered factory
	OccurredAt time.Time // defaults to now
	Location   string    // defaults to the payload's location, then "SITE"
}

// Query selects events. Results are ordered by OccurredAt, newest first
// unless Ascending is set; ties keep append order.
type Query struct {
	Predicate func(domain.Event) bool
	Ascending bool
}

// Snapshot is a consistent copy of the ledger and registry.
type Snapshot struct {
	Events     []domain.Event
	MasterData domain.MasterData
	TakenAt    time.Time
}

// EventStore is the single-writer ledger. Every mutation rewrites the whole
// document through the BlobStore before returning.
type EventStore struct {
	blob     BlobStore
	tracer   trace.Tracer
	appended metric.Int64Counter
	now      func() time.Time
	newID    func() string

	mu     sync.Mutex
	doc    Document
	closed bool
}

// Option configures an EventStore.
type Option func(*options)

type options struct {
	now   func() time.Time
	newID func() string
	seed  *domain.MasterData
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator replaces the default "EV-<uuid>" ids.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) { o.newID = fn }
}

// WithSeed sets the master data an empty store starts with.
func WithSeed(md domain.MasterData) Option {
	return func(o *options) { o.seed = &md }
}

// Open loads the document from blob, seeding it when the blob is empty.
func Open(ctx context.Context, blob BlobStore, opts ...Option) (*EventStore, error) {
	o := options{
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() string { return "EV-" + uuid.NewString() },
	}
	for _, opt := range opts {
		opt(&o)
	}

	meter := otel.Meter("focis/eventstore")
	appended, err := meter.Int64Counter("focis.events.appended",
		metric.WithDescription("Events appended to the ledger"),
	)
	if err != nil {
		return nil, fmt.Errorf("create counter: %w", err)
	}

	es := &EventStore{
		blob:     blob,
		tracer:   otel.Tracer("focis/eventstore"),
		appended: appended,
		now:      o.now,
		newID:    o.newID,
	}

	ctx, span := es.tracer.Start(ctx, "eventstore.open")
	defer span.End()

	data, err := blob.Load(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("load document: %w", err)
	}
	if len(data) > 0 {
		doc, err := decodeDocument(data)
		if err != nil {
			return nil, err
		}
		es.doc = doc
		span.SetAttributes(attribute.Int("events.loaded", len(doc.Events)))
		return es, nil
	}

	if o.seed != nil {
		es.doc.MasterData = o.seed.Clone()
		if err := es.persist(ctx, es.doc); err != nil {
			return nil, err
		}
		span.SetAttributes(attribute.Bool("seeded", true))
	}
	return es, nil
}

// Append records a single event.
func (es *EventStore) Append(ctx context.Context, d Draft) (domain.Event, error) {
	events, err := es.AppendEvents(ctx, d)
	if err != nil {
		return domain.Event{}, err
	}
	return events[0], nil
}

// AppendEvents records drafts in order as one atomic write: either all are
// persisted or none are.
func (es *EventStore) AppendEvents(ctx context.Context, drafts ...Draft) ([]domain.Event, error) {
	var out []domain.Event
	err := es.Transact(ctx, func(tx *Tx) error {
		for _, d := range drafts {
			e, err := tx.Append(d)
			if err != nil {
				return err
			}
			out = append(out, e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Transact runs fn against a working copy of the document. The copy replaces
// the current document only if fn succeeds and the write is persisted.
func (es *EventStore) Transact(ctx context.Context, fn func(tx *Tx) error) error {
	ctx, span := es.tracer.Start(ctx, "eventstore.append")
	defer span.End()

	es.mu.Lock()
	defer es.mu.Unlock()

	if es.closed {
		return ErrStoreClosed
	}

	tx := &Tx{
		store: es,
		doc:   es.doc.clone(),
		now:   es.now(),
	}
	if err := fn(tx); err != nil {
		span.RecordError(err)
		return err
	}
	if !tx.dirty {
		return nil
	}
	if err := es.persist(ctx, tx.doc); err != nil {
		span.RecordError(err)
		return err
	}
	es.doc = tx.doc

	span.SetAttributes(
		attribute.Int("event.count", len(tx.appended)),
		attribute.Bool("append.success", true),
	)
	for _, e := range tx.appended {
		span.AddEvent("event.appended", trace.WithAttributes(
			attribute.String("event.id", e.ID),
			attribute.Int64("event.seq", int64(e.Seq)),
			attribute.String("event.type", string(e.Kind)),
		))
		es.appended.Add(ctx, 1, metric.WithAttributes(attribute.String("event.type", string(e.Kind))))
	}
	return nil
}

func (es *EventStore) persist(ctx context.Context, doc Document) error {
	ctx, span := es.tracer.Start(ctx, "eventstore.persist",
		trace.WithAttributes(attribute.Int("events.total", len(doc.Events))),
	)
	defer span.End()

	data, err := encodeDocument(doc)
	if err != nil {
		return err
	}
	if err := es.blob.Save(ctx, data); err != nil {
		span.RecordError(err)
		return fmt.Errorf("persist document: %w", err)
	}
	span.SetAttributes(attribute.Int("document.bytes", len(data)))
	return nil
}

// Query returns a fresh, ordered copy of the matching events.
func (es *EventStore) Query(ctx context.Context, q Query) ([]domain.Event, error) {
	_, span := es.tracer.Start(ctx, "eventstore.query",
		trace.WithAttributes(attribute.Bool("ascending", q.Ascending)),
	)
	defer span.End()

	es.mu.Lock()
	if es.closed {
		es.mu.Unlock()
		return nil, ErrStoreClosed
	}
	var out []domain.Event
	for _, e := range es.doc.Events {
		if q.Predicate == nil || q.Predicate(e) {
			out = append(out, e)
		}
	}
	es.mu.Unlock()

	SortEvents(out, q.Ascending)
	span.SetAttributes(attribute.Int("events.returned", len(out)))
	return out, nil
}

// SortEvents orders events by OccurredAt, breaking ties by append sequence.
func SortEvents(events []domain.Event, ascending bool) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if !a.OccurredAt.Equal(b.OccurredAt) {
			if ascending {
				return a.OccurredAt.Before(b.OccurredAt)
			}
			return a.OccurredAt.After(b.OccurredAt)
		}
		if ascending {
			return a.Seq < b.Seq
		}
		return a.Seq > b.Seq
	})
}

// Get returns a single event by id.
func (es *EventStore) Get(ctx context.Context, id string) (domain.Event, error) {
	es.mu.Lock()
	defer es.mu.Unlock()
	if es.closed {
		return domain.Event{}, ErrStoreClosed
	}
	i := es.doc.indexOf(id)
	if i < 0 {
		return domain.Event{}, fmt.Errorf("%w: %s", ErrEventNotFound, id)
	}
	return es.doc.Events[i], nil
}

// Reverse voids eventID by appending an Event Reversal and marking the
// original. Nothing derived from other events is adjusted.
func (es *EventStore) Reverse(ctx context.Context, userID, eventID, reason string) (domain.Event, error) {
	ctx, span := es.tracer.Start(ctx, "eventstore.reverse",
		trace.WithAttributes(attribute.String("event.id", eventID)),
	)
	defer span.End()

	var reversal domain.Event
	err := es.Transact(ctx, func(tx *Tx) error {
		var err error
		reversal, err = tx.Reverse(userID, eventID, reason)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return domain.Event{}, err
	}
	return reversal, nil
}

// Snapshot copies the ledger in append order together with the registry.
func (es *EventStore) Snapshot(ctx context.Context) (Snapshot, error) {
	_, span := es.tracer.Start(ctx, "eventstore.snapshot")
	defer span.End()

	es.mu.Lock()
	defer es.mu.Unlock()
	if es.closed {
		return Snapshot{}, ErrStoreClosed
	}
	doc := es.doc.clone()
	span.SetAttributes(attribute.Int("events.total", len(doc.Events)))
	return Snapshot{
		Events:     doc.Events,
		MasterData: doc.MasterData,
		TakenAt:    es.now(),
	}, nil
}

// MasterData returns a copy of the registry.
func (es *EventStore) MasterData(ctx context.Context) (domain.MasterData, error) {
	es.mu.Lock()
	defer es.mu.Unlock()
	if es.closed {
		return domain.MasterData{}, ErrStoreClosed
	}
	return es.doc.MasterData.Clone(), nil
}

// Now returns the store's clock reading.
func (es *EventStore) Now() time.Time {
	return es.now()
}

// Close rejects further operations. The BlobStore is not closed.
func (es *EventStore) Close() error {
	es.mu.Lock()
	defer es.mu.Unlock()
	es.closed = true
	return nil
}
