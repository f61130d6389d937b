package projection

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"focis/internal/domain"
)

// OverheadMultiplier loads material cost with operational and maintenance
// overhead when a production batch is valued.
var OverheadMultiplier = decimal.RequireFromString("1.35")

// Batch is a quantity of one item that entered inventory at one cost.
type Batch struct {
	BatchID           string          `json:"batchId"`
	ItemID            string          `json:"itemId"`
	WarehouseID       string          `json:"warehouseId"`
	InitialQuantity   decimal.Decimal `json:"initialQuantity"`
	RemainingQuantity decimal.Decimal `json:"remainingQuantity"`
	UnitCost          decimal.Decimal `json:"unitCost"`
	ReceivedAt        time.Time       `json:"receivedAt"`
	ExpiryDate        *time.Time      `json:"expiryDate,omitempty"`
	SourceKind        domain.Kind     `json:"sourceKind"`
	CostSourceEvents  []string        `json:"costSourceEvents"`
}

// Value is the remaining quantity at the batch's unit cost.
func (b Batch) Value() decimal.Decimal {
	return b.RemainingQuantity.Mul(b.UnitCost)
}

// transferred reports whether the batch is a slice moved from another batch.
func (b Batch) transferred() bool {
	return b.SourceKind == domain.KindInventoryTransfer
}

// Inventory is the result of replaying stock movements.
type Inventory struct {
	// Batches in creation order, drained ones included.
	Batches []Batch
	// DrawnCost is the FIFO cost of what each consuming event actually took.
	DrawnCost map[string]decimal.Decimal
	// Shortfall is the quantity each consuming event asked for but could not get.
	Shortfall map[string]decimal.Decimal
}

type inventory struct {
	md        domain.MasterData
	batches   []*Batch
	drawn     map[string]decimal.Decimal
	shortfall map[string]decimal.Decimal
}

type slice struct {
	batch *Batch
	qty   decimal.Decimal
}

// ReplayInventory materializes FIFO batches from the ledger.
func ReplayInventory(l Ledger) Inventory {
	inv := &inventory{
		md:        l.MasterData,
		drawn:     make(map[string]decimal.Decimal),
		shortfall: make(map[string]decimal.Decimal),
	}
	for _, e := range l.chronological() {
		inv.apply(e)
	}

	out := Inventory{
		Batches:   make([]Batch, len(inv.batches)),
		DrawnCost: inv.drawn,
		Shortfall: inv.shortfall,
	}
	for i, b := range inv.batches {
		out.Batches[i] = *b
	}
	return out
}

// Batches returns every batch ever created, in creation order.
func Batches(l Ledger) []Batch {
	return ReplayInventory(l).Batches
}

func (inv *inventory) apply(e domain.Event) {
	switch p := e.Payload().(type) {
	case domain.GoodsReceipt:
		inv.receive(e, p.WarehouseID, p.Quantity, p.UnitPrice, p.ExpiryDate)
	case domain.OpeningBalance:
		inv.receive(e, p.WarehouseID, p.Quantity, p.UnitPrice, nil)
	case domain.ProductionCycleEnd:
		inv.produce(e, p)
	case domain.InventoryIssue:
		inv.consume(e, e.EntityID, "", p.Quantity)
	case domain.Consumption:
		inv.consume(e, e.EntityID, "", p.Quantity)
	case domain.GateOut:
		if e.EntityID != "" && e.EntityID != domain.LogisticUnit {
			inv.consume(e, e.EntityID, "", p.Quantity)
		}
	case domain.InventoryTransfer:
		inv.transfer(e, p)
	case domain.InventoryAdjustment:
		inv.adjust(e, p)
	}
}

func (inv *inventory) receive(e domain.Event, warehouseID string, qty, price decimal.Decimal, expiry *time.Time) {
	if !qty.IsPositive() {
		return
	}
	if price.IsNegative() {
		price = decimal.Zero
	}
	inv.batches = append(inv.batches, &Batch{
		BatchID:           e.ID,
		ItemID:            e.EntityID,
		WarehouseID:       warehouseID,
		InitialQuantity:   qty,
		RemainingQuantity: qty,
		UnitCost:          price,
		ReceivedAt:        e.OccurredAt,
		ExpiryDate:        expiry,
		SourceKind:        e.Kind,
		CostSourceEvents:  []string{e.ID},
	})
}

// produce draws the product's bill of materials FIFO and books the output
// into the drying warehouse at loaded material cost per unit.
func (inv *inventory) produce(e domain.Event, p domain.ProductionCycleEnd) {
	product, _ := inv.md.Item(p.ProductID)
	perPallet := product.PalletSize()
	if p.UnitsPerPallet > 0 {
		perPallet = p.UnitsPerPallet
	}
	output := decimal.NewFromInt(int64(p.PalletCount) * int64(perPallet))
	if !output.IsPositive() || p.ProductID == "" {
		return
	}

	material := decimal.Zero
	sources := []string{e.ID}
	for _, line := range product.BOM {
		need := line.Quantity.Mul(output)
		taken, cost, short := inv.draw(line.ItemID, "", need)
		material = material.Add(cost)
		for _, s := range taken {
			sources = append(sources, s.batch.BatchID)
		}
		if short.IsPositive() {
			inv.shortfall[e.ID] = inv.shortfall[e.ID].Add(short)
		}
	}
	inv.drawn[e.ID] = material

	inv.batches = append(inv.batches, &Batch{
		BatchID:           e.ID,
		ItemID:            p.ProductID,
		WarehouseID:       dryingWarehouse(inv.md, e.FactoryID),
		InitialQuantity:   output,
		RemainingQuantity: output,
		UnitCost:          material.Div(output).Mul(OverheadMultiplier),
		ReceivedAt:        e.OccurredAt,
		SourceKind:        e.Kind,
		CostSourceEvents:  sources,
	})
}

func (inv *inventory) consume(e domain.Event, itemID, warehouseID string, qty decimal.Decimal) []slice {
	if !qty.IsPositive() || itemID == "" {
		return nil
	}
	taken, cost, short := inv.draw(itemID, warehouseID, qty)
	inv.drawn[e.ID] = inv.drawn[e.ID].Add(cost)
	if short.IsPositive() {
		inv.shortfall[e.ID] = inv.shortfall[e.ID].Add(short)
	}
	return taken
}

// transfer moves FIFO slices from one warehouse to another. Each slice keeps
// its unit cost and age so later consumption order is unchanged.
func (inv *inventory) transfer(e domain.Event, p domain.InventoryTransfer) {
	taken := inv.consume(e, e.EntityID, p.FromWarehouseID, p.Quantity)
	for i, s := range taken {
		inv.batches = append(inv.batches, &Batch{
			BatchID:           fmt.Sprintf("%s/%d", e.ID, i+1),
			ItemID:            s.batch.ItemID,
			WarehouseID:       p.ToWarehouseID,
			InitialQuantity:   s.qty,
			RemainingQuantity: s.qty,
			UnitCost:          s.batch.UnitCost,
			ReceivedAt:        s.batch.ReceivedAt,
			ExpiryDate:        s.batch.ExpiryDate,
			SourceKind:        e.Kind,
			CostSourceEvents:  []string{s.batch.BatchID, e.ID},
		})
	}
}

// adjust corrects a count. A named batch is drawn directly; otherwise the
// item is drawn FIFO. Gains are booked at the item's latest unit cost.
func (inv *inventory) adjust(e domain.Event, p domain.InventoryAdjustment) {
	var target *Batch
	if p.BatchID != "" {
		for _, b := range inv.batches {
			if b.BatchID == p.BatchID {
				target = b
				break
			}
		}
	}
	itemID := e.EntityID
	if target != nil {
		itemID = target.ItemID
	}

	if p.Quantity.IsNegative() {
		loss := p.Quantity.Neg()
		if target == nil {
			inv.consume(e, itemID, "", loss)
			return
		}
		take := decimal.Min(loss, target.RemainingQuantity)
		target.RemainingQuantity = target.RemainingQuantity.Sub(take)
		inv.drawn[e.ID] = take.Mul(target.UnitCost)
		if short := loss.Sub(take); short.IsPositive() {
			inv.shortfall[e.ID] = short
		}
		return
	}

	if !p.Quantity.IsPositive() || itemID == "" {
		return
	}
	ref := target
	if ref == nil {
		ref = inv.latest(itemID)
	}
	gain := &Batch{
		BatchID:           e.ID,
		ItemID:            itemID,
		InitialQuantity:   p.Quantity,
		RemainingQuantity: p.Quantity,
		ReceivedAt:        e.OccurredAt,
		SourceKind:        e.Kind,
		CostSourceEvents:  []string{e.ID},
	}
	if ref != nil {
		gain.WarehouseID = ref.WarehouseID
		gain.UnitCost = ref.UnitCost
		gain.CostSourceEvents = append(gain.CostSourceEvents, ref.BatchID)
	}
	inv.batches = append(inv.batches, gain)
}

func (inv *inventory) latest(itemID string) *Batch {
	for i := len(inv.batches) - 1; i >= 0; i-- {
		if inv.batches[i].ItemID == itemID {
			return inv.batches[i]
		}
	}
	return nil
}

// draw takes up to qty of itemID, oldest batch first, optionally limited to
// one warehouse. It returns the slices taken, their cost, and any deficit.
func (inv *inventory) draw(itemID, warehouseID string, qty decimal.Decimal) ([]slice, decimal.Decimal, decimal.Decimal) {
	var candidates []*Batch
	for _, b := range inv.batches {
		if b.ItemID != itemID || !b.RemainingQuantity.IsPositive() {
			continue
		}
		if warehouseID != "" && b.WarehouseID != warehouseID {
			continue
		}
		candidates = append(candidates, b)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].ReceivedAt.Before(candidates[j].ReceivedAt)
	})

	remaining := qty
	cost := decimal.Zero
	var taken []slice
	for _, b := range candidates {
		if !remaining.IsPositive() {
			break
		}
		take := decimal.Min(remaining, b.RemainingQuantity)
		b.RemainingQuantity = b.RemainingQuantity.Sub(take)
		cost = cost.Add(take.Mul(b.UnitCost))
		remaining = remaining.Sub(take)
		taken = append(taken, slice{batch: b, qty: take})
	}
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	return taken, cost, remaining
}

// dryingWarehouse picks the factory's first drying room, falling back to the
// well-known drying warehouse id.
func dryingWarehouse(md domain.MasterData, factoryID string) string {
	for _, w := range md.Warehouses {
		if w.Type == domain.WarehouseDryingRoom && (factoryID == "" || w.FactoryID == factoryID) {
			return w.ID
		}
	}
	return domain.DryingWarehouseID
}
