// internal/domain/payload.go
package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrUnknownKind    = errors.New("unknown event kind")
	ErrInvalidPayload = errors.New("invalid event payload")
)

// Payload is the kind-specific body of an event.
type Payload interface {
	Kind() Kind
	// Validate checks the fields an append must carry for this kind.
	Validate() error
}

var payloadFactories = map[Kind]func() Payload{
	KindGoodsReceipt:           func() Payload { return &GoodsReceipt{} },
	KindOpeningBalance:         func() Payload { return &OpeningBalance{} },
	KindInventoryIssue:         func() Payload { return &InventoryIssue{} },
	KindInventoryTransfer:      func() Payload { return &InventoryTransfer{} },
	KindInventoryAdjustment:    func() Payload { return &InventoryAdjustment{} },
	KindProductionCycleStart:   func() Payload { return &ProductionCycleStart{} },
	KindProductionCycleEnd:     func() Payload { return &ProductionCycleEnd{} },
	KindProductionWaste:        func() Payload { return &ProductionWaste{} },
	KindConsumption:            func() Payload { return &Consumption{} },
	KindDryingEntry:            func() Payload { return &DryingEntry{} },
	KindDryingExit:             func() Payload { return &DryingExit{} },
	KindGateIn:                 func() Payload { return &GateIn{} },
	KindGateOut:                func() Payload { return &GateOut{} },
	KindSecurityCheck:          func() Payload { return &SecurityCheck{} },
	KindBreakdown:              func() Payload { return &Breakdown{} },
	KindWorkOrderOpen:          func() Payload { return &WorkOrderOpen{} },
	KindWorkOrderStart:         func() Payload { return &WorkOrderStart{} },
	KindWorkOrderClose:         func() Payload { return &WorkOrderClose{} },
	KindPreventiveMaintenance:  func() Payload { return &PreventiveMaintenance{} },
	KindFix:                    func() Payload { return &Fix{} },
	KindMasterDataModification: func() Payload { return &MasterDataModification{} },
	KindEventReversal:          func() Payload { return &EventReversal{} },
}

// DecodePayload turns raw details into the typed payload for kind. Decoding
// never fails: fields that do not parse are left at their zero value.
func DecodePayload(kind Kind, raw json.RawMessage) Payload {
	factory, ok := payloadFactories[kind]
	if !ok {
		return Unknown{kind: kind, Raw: raw}
	}
	ptr := factory()
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, ptr); err != nil {
			ptr = decodeLenient(factory, raw)
		}
	}
	return deref(ptr)
}

// decodeLenient salvages whatever fields parse when the whole object does not,
// by decoding one key at a time.
func decodeLenient(factory func() Payload, raw json.RawMessage) Payload {
	ptr := factory()
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return ptr
	}
	for key, value := range fields {
		single, err := json.Marshal(map[string]json.RawMessage{key: value})
		if err != nil {
			continue
		}
		_ = json.Unmarshal(single, ptr)
	}
	return ptr
}

// NewPayload builds a payload of kind from raw details and validates it.
func NewPayload(kind Kind, raw json.RawMessage) (Payload, error) {
	factory, ok := payloadFactories[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	ptr := factory()
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, ptr); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
	}
	p := deref(ptr)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func deref(p Payload) Payload {
	switch v := p.(type) {
	case *GoodsReceipt:
		return *v
	case *OpeningBalance:
		return *v
	case *InventoryIssue:
		return *v
	case *InventoryTransfer:
		return *v
	case *InventoryAdjustment:
		return *v
	case *ProductionCycleStart:
		return *v
	case *ProductionCycleEnd:
		return *v
	case *ProductionWaste:
		return *v
	case *Consumption:
		return *v
	case *DryingEntry:
		return *v
	case *DryingExit:
		return *v
	case *GateIn:
		return *v
	case *GateOut:
		return *v
	case *SecurityCheck:
		return *v
	case *Breakdown:
		return *v
	case *WorkOrderOpen:
		return *v
	case *WorkOrderStart:
		return *v
	case *WorkOrderClose:
		return *v
	case *PreventiveMaintenance:
		return *v
	case *Fix:
		return *v
	case *MasterDataModification:
		return *v
	case *EventReversal:
		return *v
	}
	return p
}

func missing(kind Kind, field string) error {
	return fmt.Errorf("%w: %s requires %s", ErrInvalidPayload, kind, field)
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// GoodsReceipt brings purchased stock into a warehouse.
type GoodsReceipt struct {
	WarehouseID string          `json:"warehouseId"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	ExpiryDate  *time.Time      `json:"expiryDate,omitempty"`
	Reference   string          `json:"reference,omitempty"`
	Location    string          `json:"location,omitempty"`
}

func (GoodsReceipt) Kind() Kind { return KindGoodsReceipt }

func (p GoodsReceipt) Validate() error {
	if blank(p.WarehouseID) {
		return missing(KindGoodsReceipt, "warehouseId")
	}
	if !p.Quantity.IsPositive() {
		return missing(KindGoodsReceipt, "positive quantity")
	}
	if p.UnitPrice.IsNegative() {
		return fmt.Errorf("%w: unitPrice must not be negative", ErrInvalidPayload)
	}
	return nil
}

// OpeningBalance records stock present before the ledger started.
type OpeningBalance struct {
	WarehouseID string          `json:"warehouseId"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Location    string          `json:"location,omitempty"`
}

func (OpeningBalance) Kind() Kind { return KindOpeningBalance }

func (p OpeningBalance) Validate() error {
	if blank(p.WarehouseID) {
		return missing(KindOpeningBalance, "warehouseId")
	}
	if !p.Quantity.IsPositive() {
		return missing(KindOpeningBalance, "positive quantity")
	}
	if p.UnitPrice.IsNegative() {
		return fmt.Errorf("%w: unitPrice must not be negative", ErrInvalidPayload)
	}
	return nil
}

// InventoryIssue draws stock out of inventory, optionally against an asset
// and work order (spare parts).
type InventoryIssue struct {
	Quantity          decimal.Decimal `json:"quantity"`
	WarehouseID       string          `json:"warehouseId,omitempty"`
	LinkedAssetID     string          `json:"linkedAssetId,omitempty"`
	LinkedWorkOrderID string          `json:"linkedWorkOrderId,omitempty"`
	UnitPrice         decimal.Decimal `json:"unitPrice"`
	Location          string          `json:"location,omitempty"`
}

func (InventoryIssue) Kind() Kind { return KindInventoryIssue }

func (p InventoryIssue) Validate() error {
	if !p.Quantity.IsPositive() {
		return missing(KindInventoryIssue, "positive quantity")
	}
	return nil
}

// InventoryTransfer moves stock between warehouses.
type InventoryTransfer struct {
	FromWarehouseID string          `json:"fromWarehouseId"`
	ToWarehouseID   string          `json:"toWarehouseId"`
	Quantity        decimal.Decimal `json:"quantity"`
	Location        string          `json:"location,omitempty"`
}

func (InventoryTransfer) Kind() Kind { return KindInventoryTransfer }

func (p InventoryTransfer) Validate() error {
	if blank(p.FromWarehouseID) {
		return missing(KindInventoryTransfer, "fromWarehouseId")
	}
	if blank(p.ToWarehouseID) {
		return missing(KindInventoryTransfer, "toWarehouseId")
	}
	if !p.Quantity.IsPositive() {
		return missing(KindInventoryTransfer, "positive quantity")
	}
	return nil
}

// InventoryAdjustment corrects a physical count. Quantity is signed.
type InventoryAdjustment struct {
	BatchID  string          `json:"batchId,omitempty"`
	Quantity decimal.Decimal `json:"quantity"`
	Reason   string          `json:"reason"`
	Location string          `json:"location,omitempty"`
}

func (InventoryAdjustment) Kind() Kind { return KindInventoryAdjustment }

func (p InventoryAdjustment) Validate() error {
	if p.Quantity.IsZero() {
		return missing(KindInventoryAdjustment, "non-zero quantity")
	}
	if blank(p.Reason) {
		return missing(KindInventoryAdjustment, "reason")
	}
	return nil
}

// Consumption records material used outside a production cycle.
type Consumption struct {
	Quantity    decimal.Decimal `json:"quantity"`
	WarehouseID string          `json:"warehouseId,omitempty"`
	Location    string          `json:"location,omitempty"`
}

func (Consumption) Kind() Kind { return KindConsumption }

func (p Consumption) Validate() error {
	if !p.Quantity.IsPositive() {
		return missing(KindConsumption, "positive quantity")
	}
	return nil
}

// ProductionCycleStart opens a cycle on a line (the event's entity).
type ProductionCycleStart struct {
	ProductID string `json:"productId"`
	Location  string `json:"location,omitempty"`
}

func (ProductionCycleStart) Kind() Kind { return KindProductionCycleStart }

func (p ProductionCycleStart) Validate() error {
	if blank(p.ProductID) {
		return missing(KindProductionCycleStart, "productId")
	}
	return nil
}

// ProductionCycleEnd closes a cycle. UnitsPerPallet overrides the product's
// pallet size when positive.
type ProductionCycleEnd struct {
	ProductID      string `json:"productId"`
	PalletCount    int    `json:"palletCount"`
	UnitsPerPallet int    `json:"unitsPerPallet,omitempty"`
	StartEventID   string `json:"startEventId,omitempty"`
	Location       string `json:"location,omitempty"`
}

func (ProductionCycleEnd) Kind() Kind { return KindProductionCycleEnd }

func (p ProductionCycleEnd) Validate() error {
	if blank(p.ProductID) {
		return missing(KindProductionCycleEnd, "productId")
	}
	if p.PalletCount <= 0 {
		return missing(KindProductionCycleEnd, "positive palletCount")
	}
	return nil
}

// ProductionWaste records rejected output units.
type ProductionWaste struct {
	ProductID string          `json:"productId,omitempty"`
	Quantity  decimal.Decimal `json:"quantity"`
	Reason    string          `json:"reason,omitempty"`
	Location  string          `json:"location,omitempty"`
}

func (ProductionWaste) Kind() Kind { return KindProductionWaste }

func (p ProductionWaste) Validate() error {
	if !p.Quantity.IsPositive() {
		return missing(KindProductionWaste, "positive quantity")
	}
	return nil
}

// DryingEntry places pallets into a curing slot. CuringDurationHours, when
// set, overrides the product's required dwell.
type DryingEntry struct {
	SlotID              string  `json:"slotId"`
	ProductID           string  `json:"productId"`
	PalletCount         int     `json:"palletCount"`
	CuringDurationHours float64 `json:"curingDurationHours,omitempty"`
	Location            string  `json:"location,omitempty"`
}

func (DryingEntry) Kind() Kind { return KindDryingEntry }

func (p DryingEntry) Validate() error {
	if blank(p.SlotID) {
		return missing(KindDryingEntry, "slotId")
	}
	if blank(p.ProductID) {
		return missing(KindDryingEntry, "productId")
	}
	if p.PalletCount <= 0 {
		return missing(KindDryingEntry, "positive palletCount")
	}
	return nil
}

// DryingExit removes the pallet group created by EntryEventID.
type DryingExit struct {
	SlotID       string `json:"slotId"`
	EntryEventID string `json:"entryEventId"`
	ProductID    string `json:"productId,omitempty"`
	PalletCount  int    `json:"palletCount,omitempty"`
	Location     string `json:"location,omitempty"`
}

func (DryingExit) Kind() Kind { return KindDryingExit }

func (p DryingExit) Validate() error {
	if blank(p.EntryEventID) {
		return missing(KindDryingExit, "entryEventId")
	}
	return nil
}

// GateMovement is the shared body of gate crossings.
type GateMovement struct {
	VehicleNo          string          `json:"vehicleNo"`
	DriverName         string          `json:"driverName,omitempty"`
	Quantity           decimal.Decimal `json:"quantity"`
	Reference          string          `json:"reference,omitempty"`
	PayloadDescription string          `json:"payloadDescription,omitempty"`
	Location           string          `json:"location,omitempty"`
}

// GateIn records a vehicle entering the site.
type GateIn struct {
	GateMovement
}

func (GateIn) Kind() Kind { return KindGateIn }

func (p GateIn) Validate() error {
	if blank(p.VehicleNo) {
		return missing(KindGateIn, "vehicleNo")
	}
	if p.Quantity.IsNegative() {
		return fmt.Errorf("%w: quantity must not be negative", ErrInvalidPayload)
	}
	return nil
}

// GateOut records a vehicle leaving the site. For physical items the quantity
// leaves inventory.
type GateOut struct {
	GateMovement
}

func (GateOut) Kind() Kind { return KindGateOut }

func (p GateOut) Validate() error {
	if blank(p.VehicleNo) {
		return missing(KindGateOut, "vehicleNo")
	}
	if p.Quantity.IsNegative() {
		return fmt.Errorf("%w: quantity must not be negative", ErrInvalidPayload)
	}
	return nil
}

// SecurityCheck records an inspection at the gate.
type SecurityCheck struct {
	VehicleNo string `json:"vehicleNo,omitempty"`
	Result    string `json:"result"`
	Notes     string `json:"notes,omitempty"`
	Location  string `json:"location,omitempty"`
}

func (SecurityCheck) Kind() Kind { return KindSecurityCheck }

func (p SecurityCheck) Validate() error {
	if blank(p.Result) {
		return missing(KindSecurityCheck, "result")
	}
	return nil
}

// Breakdown takes an asset down.
type Breakdown struct {
	Description string `json:"description,omitempty"`
	DetectedBy  string `json:"detectedBy,omitempty"`
	Location    string `json:"location,omitempty"`
}

func (Breakdown) Kind() Kind { return KindBreakdown }

func (Breakdown) Validate() error { return nil }

// WorkOrderOpen creates a work order; its event id is the work order id.
type WorkOrderOpen struct {
	BreakdownEventID string `json:"breakdownEventId,omitempty"`
	Priority         string `json:"priority,omitempty"`
	Location         string `json:"location,omitempty"`
}

func (WorkOrderOpen) Kind() Kind { return KindWorkOrderOpen }

func (WorkOrderOpen) Validate() error { return nil }

// WorkOrderStart records a technician beginning repair work.
type WorkOrderStart struct {
	WorkOrderID string `json:"woId"`
	Location    string `json:"location,omitempty"`
}

func (WorkOrderStart) Kind() Kind { return KindWorkOrderStart }

func (p WorkOrderStart) Validate() error {
	if blank(p.WorkOrderID) {
		return missing(KindWorkOrderStart, "woId")
	}
	return nil
}

// WorkOrderClose completes a work order and brings the asset back up.
type WorkOrderClose struct {
	WorkOrderID string `json:"woId"`
	Conclusion  string `json:"conclusion,omitempty"`
	Location    string `json:"location,omitempty"`
}

func (WorkOrderClose) Kind() Kind { return KindWorkOrderClose }

func (p WorkOrderClose) Validate() error {
	if blank(p.WorkOrderID) {
		return missing(KindWorkOrderClose, "woId")
	}
	return nil
}

// PreventiveMaintenance records planned service on an asset.
type PreventiveMaintenance struct {
	Description string `json:"description,omitempty"`
	WorkOrderID string `json:"woId,omitempty"`
	Location    string `json:"location,omitempty"`
}

func (PreventiveMaintenance) Kind() Kind { return KindPreventiveMaintenance }

func (PreventiveMaintenance) Validate() error { return nil }

// Fix brings an asset back up without a formal work order close.
type Fix struct {
	WorkOrderID string `json:"woId,omitempty"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
}

func (Fix) Kind() Kind { return KindFix }

func (Fix) Validate() error { return nil }

// MasterDataModification audits a change to the registry.
type MasterDataModification struct {
	EntityType string          `json:"type"`
	Data       json.RawMessage `json:"data,omitempty"`
	Location   string          `json:"location,omitempty"`
}

func (MasterDataModification) Kind() Kind { return KindMasterDataModification }

func (p MasterDataModification) Validate() error {
	if blank(p.EntityType) {
		return missing(KindMasterDataModification, "type")
	}
	return nil
}

// EventReversal voids ReversedEventID.
type EventReversal struct {
	ReversedEventID string `json:"reversedEventId"`
	Reason          string `json:"reason,omitempty"`
	Location        string `json:"location,omitempty"`
}

func (EventReversal) Kind() Kind { return KindEventReversal }

func (p EventReversal) Validate() error {
	if blank(p.ReversedEventID) {
		return missing(KindEventReversal, "reversedEventId")
	}
	return nil
}

// Unknown carries details of a kind this build does not recognize.
type Unknown struct {
	kind Kind
	Raw  json.RawMessage
}

func (u Unknown) Kind() Kind { return u.kind }

func (u Unknown) Validate() error {
	return fmt.Errorf("%w: %q", ErrUnknownKind, u.kind)
}

func (u Unknown) MarshalJSON() ([]byte, error) {
	if len(u.Raw) == 0 {
		return []byte("{}"), nil
	}
	return u.Raw, nil
}

// PayloadLocation returns the location a payload names, if any.
func PayloadLocation(p Payload) string {
	raw, err := json.Marshal(p)
	if err != nil {
		return ""
	}
	var probe struct {
		Location string `json:"location"`
	}
	_ = json.Unmarshal(raw, &probe)
	return probe.Location
}
