// internal/domain/masterdata.go
package domain

import (
	"github.com/shopspring/decimal"
)

// Warehouse types the projections care about.
const (
	WarehouseRawMaterial   = "Raw Material"
	WarehouseFinishedGoods = "Finished Goods"
	WarehouseDryingRoom    = "Drying Room"
	WarehouseSpareParts    = "Spare Parts"
)

// Item categories.
const (
	CategoryRawMaterial     = "Raw Material"
	CategorySparePart       = "Spare Part"
	CategoryFinishedProduct = "Finished Product"
	CategoryConsumable      = "Consumable"
)

// DryingWarehouseID is where finished batches land after a cycle ends.
const DryingWarehouseID = "wh-drying"

// DefaultCuringHours applies when an item does not state its curing time.
const DefaultCuringHours = 24.0

// DefaultIdealCycleTimeMs applies when an asset does not state its cycle time.
const DefaultIdealCycleTimeMs = 15000

// Factory is a production site.
type Factory struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

// Warehouse groups stock by location. Type decides which projection reads it.
type Warehouse struct {
	ID              string `json:"id"`
	FactoryID       string `json:"factoryId"`
	Name            string `json:"name"`
	Type            string `json:"type"`
	CapacityPallets int    `json:"capacityPallets,omitempty"`
}

// Asset is a production or auxiliary machine.
type Asset struct {
	ID                 string          `json:"id"`
	FactoryID          string          `json:"factoryId"`
	Name               string          `json:"name"`
	Type               string          `json:"type"`
	Capacity           int             `json:"capacity,omitempty"`
	IdealCycleTimeMs   int64           `json:"idealCycleTimeMs,omitempty"`
	HourlyDowntimeCost decimal.Decimal `json:"hourlyDowntimeCost"`
}

// BOMLine is one component of a bill of materials, per unit of output.
type BOMLine struct {
	ItemID   string          `json:"itemId"`
	Quantity decimal.Decimal `json:"quantity"`
}

// Item is anything stocked or produced.
type Item struct {
	ID                  string    `json:"id"`
	Code                string    `json:"code"`
	Name                string    `json:"name"`
	Category            string    `json:"category"`
	UOM                 string    `json:"uom"`
	BOM                 []BOMLine `json:"bom,omitempty"`
	UnitsPerPallet      int       `json:"unitsPerPallet,omitempty"`
	CuringDurationHours float64   `json:"curingDurationHours,omitempty"`
}

// PalletSize returns units per pallet, at least 1.
func (i Item) PalletSize() int {
	if i.UnitsPerPallet <= 0 {
		return 1
	}
	return i.UnitsPerPallet
}

// CuringHours returns the required dwell, falling back to DefaultCuringHours.
func (i Item) CuringHours() float64 {
	if i.CuringDurationHours <= 0 {
		return DefaultCuringHours
	}
	return i.CuringDurationHours
}

// MasterData is the registry the projections join against.
type MasterData struct {
	Factories  []Factory   `json:"factories"`
	Warehouses []Warehouse `json:"warehouses"`
	Assets     []Asset     `json:"assets"`
	Items      []Item      `json:"items"`
}

// Item looks up an item by id.
func (m MasterData) Item(id string) (Item, bool) {
	for _, it := range m.Items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// Asset looks up an asset by id.
func (m MasterData) Asset(id string) (Asset, bool) {
	for _, a := range m.Assets {
		if a.ID == id {
			return a, true
		}
	}
	return Asset{}, false
}

// Warehouse looks up a warehouse by id.
func (m MasterData) Warehouse(id string) (Warehouse, bool) {
	for _, w := range m.Warehouses {
		if w.ID == id {
			return w, true
		}
	}
	return Warehouse{}, false
}

// Factory looks up a factory by id.
func (m MasterData) Factory(id string) (Factory, bool) {
	for _, f := range m.Factories {
		if f.ID == id {
			return f, true
		}
	}
	return Factory{}, false
}

// AssetsIn returns the assets of a factory.
func (m MasterData) AssetsIn(factoryID string) []Asset {
	var out []Asset
	for _, a := range m.Assets {
		if a.FactoryID == factoryID {
			out = append(out, a)
		}
	}
	return out
}

// DefaultFactoryID returns the first factory, or "" when none exist.
func (m MasterData) DefaultFactoryID() string {
	if len(m.Factories) == 0 {
		return ""
	}
	return m.Factories[0].ID
}

// Clone returns a deep copy.
func (m MasterData) Clone() MasterData {
	out := MasterData{
		Factories:  append([]Factory(nil), m.Factories...),
		Warehouses: append([]Warehouse(nil), m.Warehouses...),
		Assets:     append([]Asset(nil), m.Assets...),
		Items:      make([]Item, len(m.Items)),
	}
	for i, it := range m.Items {
		it.BOM = append([]BOMLine(nil), it.BOM...)
		out.Items[i] = it
	}
	return out
}

// DefaultMasterData is the catalog a fresh store starts with.
func DefaultMasterData() MasterData {
	return MasterData{
		Factories: []Factory{
			{ID: "fac-1", Name: "Al-Ain Block Factory", Location: "Al-Ain Industrial"},
		},
		Warehouses: []Warehouse{
			{ID: "wh-rm", FactoryID: "fac-1", Name: "Cement Silo A", Type: WarehouseRawMaterial},
			{ID: "wh-fg", FactoryID: "fac-1", Name: "Yard 04 - Interlock", Type: WarehouseFinishedGoods},
			{ID: DryingWarehouseID, FactoryID: "fac-1", Name: "Curing Chamber 01", Type: WarehouseDryingRoom, CapacityPallets: 100},
			{ID: "wh-spare", FactoryID: "fac-1", Name: "Maintenance Stores", Type: WarehouseSpareParts},
		},
		Assets: []Asset{
			{
				ID: "ast-line1", FactoryID: "fac-1", Name: "MASA-01", Type: "Block Press",
				Capacity: 4500, IdealCycleTimeMs: 15000, HourlyDowntimeCost: decimal.NewFromInt(1200),
			},
			{
				ID: "ast-line2", FactoryID: "fac-1", Name: "HESS-02", Type: "Secondary Press",
				Capacity: 3800, IdealCycleTimeMs: 22000, HourlyDowntimeCost: decimal.NewFromInt(900),
			},
		},
		Items: []Item{
			{ID: "itm-cement", Code: "RM-CEM-SRC", Name: "Sulphate Resistant Cement", Category: CategoryRawMaterial, UOM: "MT"},
			{
				ID: "itm-interlock-6cm", Code: "FG-INT-6", Name: "Interlock 6cm Rectangular",
				Category: CategoryFinishedProduct, UOM: "SQM",
				BOM:            []BOMLine{{ItemID: "itm-cement", Quantity: decimal.RequireFromString("0.015")}},
				UnitsPerPallet: 12, CuringDurationHours: 24,
			},
			{ID: "itm-sp-bearing", Code: "SP-BRG-22", Name: "Vibrator Bearing K-90", Category: CategorySparePart, UOM: "PC"},
		},
	}
}
