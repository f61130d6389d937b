// internal/domain/event.go
package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// Kind identifies the physical action an event records.
type Kind string

// Inventory events.
const (
	KindGoodsReceipt        Kind = "Goods Receipt"
	KindOpeningBalance      Kind = "Opening Balance"
	KindInventoryIssue      Kind = "Inventory Issue"
	KindInventoryTransfer   Kind = "Inventory Transfer"
	KindInventoryAdjustment Kind = "Inventory Adjustment"
	KindConsumption         Kind = "Consumption"
)

// Production events.
const (
	KindProductionCycleStart Kind = "Production Cycle Start"
	KindProductionCycleEnd   Kind = "Production Cycle End"
	KindProductionWaste      Kind = "Production Waste"
	KindDryingEntry          Kind = "Drying Entry"
	KindDryingExit           Kind = "Drying Exit"
)

// Gate and security events.
const (
	KindGateIn        Kind = "Gate In"
	KindGateOut       Kind = "Gate Out"
	KindSecurityCheck Kind = "Security Check"
)

// Maintenance events.
const (
	KindBreakdown             Kind = "Breakdown"
	KindWorkOrderOpen         Kind = "Work Order Open"
	KindWorkOrderStart        Kind = "Work Order Start"
	KindWorkOrderClose        Kind = "Work Order Close"
	KindPreventiveMaintenance Kind = "Preventive Maintenance"
	KindFix                   Kind = "Fix"
)

// Ledger administration events.
const (
	KindMasterDataModification Kind = "Master Data Modification"
	KindEventReversal          Kind = "Event Reversal"
)

// Kinds lists every kind the engine recognizes, in declaration order.
var Kinds = []Kind{
	KindGoodsReceipt,
	KindOpeningBalance,
	KindInventoryIssue,
	KindInventoryTransfer,
	KindInventoryAdjustment,
	KindProductionCycleStart,
	KindProductionCycleEnd,
	KindProductionWaste,
	KindConsumption,
	KindDryingEntry,
	KindDryingExit,
	KindGateIn,
	KindGateOut,
	KindSecurityCheck,
	KindBreakdown,
	KindWorkOrderOpen,
	KindWorkOrderStart,
	KindWorkOrderClose,
	KindPreventiveMaintenance,
	KindFix,
	KindMasterDataModification,
	KindEventReversal,
}

// IsValid reports whether k belongs to the closed set of kinds.
func (k Kind) IsValid() bool {
	_, ok := payloadFactories[k]
	return ok
}

// ParseKind accepts either the display name ("Goods Receipt") or the
// constant form ("GOODS_RECEIPT").
func ParseKind(s string) (Kind, bool) {
	s = strings.TrimSpace(s)
	for _, k := range Kinds {
		if string(k) == s || k.Code() == strings.ToUpper(s) {
			return k, true
		}
	}
	return "", false
}

// Code returns the constant form of the kind, e.g. "GOODS_RECEIPT".
func (k Kind) Code() string {
	return strings.ToUpper(strings.ReplaceAll(string(k), " ", "_"))
}

// LogisticUnit is the entity id used for gate movements that carry no
// inventoried item (empty trucks, third-party cargo).
const LogisticUnit = "LOGISTIC_UNIT"

// DefaultLocation is recorded when an action does not name one.
const DefaultLocation = "SITE"

// Event is an immutable fact in the factory ledger.
//
// Details holds the kind-specific payload exactly as it was recorded; Payload
// decodes it into the typed shape for Kind. Only IsReversed and ReversedByID
// change after append, and only through a reversal.
type Event struct {
	ID           string          `json:"id"`
	Seq          uint64          `json:"seq"`
	Kind         Kind            `json:"type"`
	FactoryID    string          `json:"factoryId"`
	RecordedAt   time.Time       `json:"recordedAt"`
	OccurredAt   time.Time       `json:"occurredAt"`
	UserID       string          `json:"userId"`
	EntityID     string          `json:"entityId"`
	Location     string          `json:"location"`
	Details      json.RawMessage `json:"details"`
	IsReversed   bool            `json:"isReversed,omitempty"`
	ReversedByID string          `json:"reversedById,omitempty"`
	Hash         string          `json:"hash,omitempty"`
	ChainHash    string          `json:"chainHash,omitempty"`

	payload Payload
}

// WithPayload returns a copy of e carrying p: Kind, Details and the decoded
// payload are all set from it.
func (e Event) WithPayload(p Payload) Event {
	raw, err := json.Marshal(p)
	if err != nil {
		raw = json.RawMessage("{}")
	}
	e.Kind = p.Kind()
	e.Details = raw
	e.payload = p
	return e
}

// Payload returns the typed details. Malformed or missing fields decode to
// zero values; an unknown kind yields an Unknown payload.
func (e Event) Payload() Payload {
	if e.payload != nil && e.payload.Kind() == e.Kind {
		return e.payload
	}
	return DecodePayload(e.Kind, e.Details)
}

// UnmarshalJSON decodes the envelope and caches the typed payload.
func (e *Event) UnmarshalJSON(data []byte) error {
	type envelope Event
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	*e = Event(env)
	e.payload = DecodePayload(e.Kind, e.Details)
	return nil
}

// Active reports whether the event still contributes to projections.
func (e Event) Active() bool {
	return !e.IsReversed
}
