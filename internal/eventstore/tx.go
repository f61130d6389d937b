package eventstore

import (
	"fmt"
	"time"

	"focis/internal/domain"
)

// Tx is a pending change to the ledger. It is only valid inside Transact.
type Tx struct {
	store    *EventStore
	doc      Document
	now      time.Time
	appended []domain.Event
	dirty    bool
}

// Now is the recording time shared by every event in the transaction.
func (tx *Tx) Now() time.Time {
	return tx.now
}

// Append validates d, assigns identity, and stages the event.
func (tx *Tx) Append(d Draft) (domain.Event, error) {
	if d.Payload == nil {
		return domain.Event{}, fmt.Errorf("%w: missing payload", domain.ErrInvalidPayload)
	}
	if !d.Payload.Kind().IsValid() {
		return domain.Event{}, fmt.Errorf("%w: %q", domain.ErrUnknownKind, d.Payload.Kind())
	}
	if err := d.Payload.Validate(); err != nil {
		return domain.Event{}, err
	}

	e := domain.Event{
		ID:         tx.store.newID(),
		Seq:        tx.doc.lastSeq() + 1,
		FactoryID:  d.FactoryID,
		RecordedAt: tx.now,
		OccurredAt: d.OccurredAt.UTC(),
		UserID:     d.UserID,
		EntityID:   d.EntityID,
		Location:   d.Location,
	}.WithPayload(d.Payload)

	if e.FactoryID == "" {
		e.FactoryID = tx.doc.DefaultFactoryID()
	}
	if d.OccurredAt.IsZero() {
		e.OccurredAt = tx.now
	}
	if e.Location == "" {
		e.Location = domain.PayloadLocation(d.Payload)
	}
	if e.Location == "" {
		e.Location = domain.DefaultLocation
	}
	if err := seal(&e, tx.doc.lastChainHash()); err != nil {
		return domain.Event{}, err
	}

	tx.doc.Events = append(tx.doc.Events, e)
	tx.appended = append(tx.appended, e)
	tx.dirty = true
	return e, nil
}

// Event returns a staged or committed event by id.
func (tx *Tx) Event(id string) (domain.Event, bool) {
	i := tx.doc.indexOf(id)
	if i < 0 {
		return domain.Event{}, false
	}
	return tx.doc.Events[i], true
}

// Events returns the events visible to the transaction in append order.
func (tx *Tx) Events() []domain.Event {
	return tx.doc.Events
}

// Registry returns the registry for reading.
func (tx *Tx) Registry() domain.MasterData {
	return tx.doc.MasterData
}

// MasterData exposes the registry for modification.
func (tx *Tx) MasterData() *domain.MasterData {
	tx.dirty = true
	return &tx.doc.MasterData
}

// Reverse appends an Event Reversal for eventID and marks the original.
func (tx *Tx) Reverse(userID, eventID, reason string) (domain.Event, error) {
	i := tx.doc.indexOf(eventID)
	if i < 0 {
		return domain.Event{}, fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
	}
	target := tx.doc.Events[i]
	if target.Kind == domain.KindEventReversal {
		return domain.Event{}, fmt.Errorf("%w: %s is a reversal", ErrNotReversible, eventID)
	}
	if target.IsReversed {
		return domain.Event{}, fmt.Errorf("%w: %s by %s", ErrAlreadyReversed, eventID, target.ReversedByID)
	}

	reversal, err := tx.Append(Draft{
		Payload:   domain.EventReversal{ReversedEventID: eventID, Reason: reason},
		UserID:    userID,
		EntityID:  target.EntityID,
		FactoryID: target.FactoryID,
		Location:  target.Location,
	})
	if err != nil {
		return domain.Event{}, err
	}
	tx.doc.Events[i].IsReversed = true
	tx.doc.Events[i].ReversedByID = reversal.ID
	return reversal, nil
}
