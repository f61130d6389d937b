// internal/clients/floor_client.go
package clients

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"focis/internal/domain"
	"focis/internal/inventory"
	"focis/internal/maintenance"
	"focis/internal/production"
	"focis/internal/projection"
	"focis/internal/security"
)

func (c *Client) Receive(ctx context.Context, r inventory.Receipt) (domain.Event, error) {
	var e domain.Event
	err := c.post(ctx, "/inventory/receipts", r, &e)
	return e, err
}

func (c *Client) OpeningBalance(ctx context.Context, r inventory.Receipt) (domain.Event, error) {
	var e domain.Event
	err := c.post(ctx, "/inventory/opening-balances", r, &e)
	return e, err
}

func (c *Client) Issue(ctx context.Context, i inventory.Issue) (domain.Event, error) {
	var e domain.Event
	err := c.post(ctx, "/inventory/issues", i, &e)
	return e, err
}

func (c *Client) Consume(ctx context.Context, i inventory.Issue) (domain.Event, error) {
	var e domain.Event
	err := c.post(ctx, "/inventory/consumptions", i, &e)
	return e, err
}

func (c *Client) Transfer(ctx context.Context, t inventory.Transfer) (domain.Event, error) {
	var e domain.Event
	err := c.post(ctx, "/inventory/transfers", t, &e)
	return e, err
}

func (c *Client) Adjust(ctx context.Context, a inventory.Adjustment) (domain.Event, error) {
	var e domain.Event
	err := c.post(ctx, "/inventory/adjustments", a, &e)
	return e, err
}

func (c *Client) Batches(ctx context.Context, f inventory.BatchFilter) ([]projection.Batch, error) {
	q := url.Values{}
	if f.ItemID != "" {
		q.Set("itemId", f.ItemID)
	}
	if f.WarehouseID != "" {
		q.Set("warehouseId", f.WarehouseID)
	}
	if f.OpenOnly {
		q.Set("open", "true")
	}
	var out []projection.Batch
	err := c.get(ctx, withQuery("/inventory/batches", q), &out)
	return out, err
}

func (c *Client) Stock(ctx context.Context) ([]projection.StockSummary, error) {
	var out []projection.StockSummary
	err := c.get(ctx, "/inventory/stock", &out)
	return out, err
}

func (c *Client) CostBreakdown(ctx context.Context, itemID string) (projection.CostBreakdown, error) {
	var out projection.CostBreakdown
	err := c.get(ctx, "/inventory/items/"+url.PathEscape(itemID)+"/cost", &out)
	return out, err
}

func (c *Client) StartCycle(ctx context.Context, s production.CycleStart) (domain.Event, error) {
	var e domain.Event
	err := c.post(ctx, "/production/cycles", s, &e)
	return e, err
}

func (c *Client) EndCycle(ctx context.Context, end production.CycleEnd) (production.CycleResult, error) {
	var out production.CycleResult
	err := c.post(ctx, "/production/cycles/"+url.PathEscape(end.StartEventID)+"/end", end, &out)
	return out, err
}

func (c *Client) RecordWaste(ctx context.Context, w production.Waste) (domain.Event, error) {
	var e domain.Event
	err := c.post(ctx, "/production/waste", w, &e)
	return e, err
}

func (c *Client) ReleaseDrying(ctx context.Context, r production.DryingRelease) (domain.Event, error) {
	var e domain.Event
	err := c.post(ctx, "/production/drying/"+url.PathEscape(r.EntryEventID)+"/release", r, &e)
	return e, err
}

func (c *Client) ActiveCycles(ctx context.Context) ([]projection.ActiveCycle, error) {
	var out []projection.ActiveCycle
	err := c.get(ctx, "/production/cycles", &out)
	return out, err
}

func (c *Client) DryingSlots(ctx context.Context) ([]projection.DryingSlot, error) {
	var out []projection.DryingSlot
	err := c.get(ctx, "/production/drying", &out)
	return out, err
}

func (c *Client) OEE(ctx context.Context, factoryID string, window time.Duration) (projection.OEEBreakdown, error) {
	var out projection.OEEBreakdown
	err := c.get(ctx, withQuery("/production/oee", windowQuery(factoryID, window)), &out)
	return out, err
}

func (c *Client) ReportBreakdown(ctx context.Context, b maintenance.BreakdownReport) (maintenance.BreakdownResult, error) {
	var out maintenance.BreakdownResult
	err := c.post(ctx, "/maintenance/breakdowns", b, &out)
	return out, err
}

func (c *Client) StartWorkOrder(ctx context.Context, a maintenance.WorkOrderAction) (domain.Event, error) {
	var e domain.Event
	err := c.post(ctx, "/maintenance/work-orders/"+url.PathEscape(a.WorkOrderID)+"/start", a, &e)
	return e, err
}

func (c *Client) CloseWorkOrder(ctx context.Context, a maintenance.WorkOrderAction) (domain.Event, error) {
	var e domain.Event
	err := c.post(ctx, "/maintenance/work-orders/"+url.PathEscape(a.WorkOrderID)+"/close", a, &e)
	return e, err
}

func (c *Client) IssueSparePart(ctx context.Context, i maintenance.SpareIssue) (domain.Event, error) {
	var e domain.Event
	err := c.post(ctx, "/maintenance/work-orders/"+url.PathEscape(i.WorkOrderID)+"/spares", i, &e)
	return e, err
}

func (c *Client) RecordFix(ctx context.Context, r maintenance.ServiceRecord) (domain.Event, error) {
	var e domain.Event
	err := c.post(ctx, "/maintenance/fixes", r, &e)
	return e, err
}

func (c *Client) RecordPreventive(ctx context.Context, r maintenance.ServiceRecord) (domain.Event, error) {
	var e domain.Event
	err := c.post(ctx, "/maintenance/preventive", r, &e)
	return e, err
}

func (c *Client) WorkOrders(ctx context.Context) ([]projection.WorkOrder, error) {
	var out []projection.WorkOrder
	err := c.get(ctx, "/maintenance/work-orders", &out)
	return out, err
}

func (c *Client) AssetMetrics(ctx context.Context) ([]projection.AssetMetrics, error) {
	var out []projection.AssetMetrics
	err := c.get(ctx, "/maintenance/assets", &out)
	return out, err
}

func (c *Client) Asset(ctx context.Context, assetID string) (projection.AssetMetrics, error) {
	var out projection.AssetMetrics
	err := c.get(ctx, "/maintenance/assets/"+url.PathEscape(assetID), &out)
	return out, err
}

func (c *Client) GateIn(ctx context.Context, m security.Movement) (security.GateResult, error) {
	var out security.GateResult
	err := c.post(ctx, "/gate/in", m, &out)
	return out, err
}

func (c *Client) GateOut(ctx context.Context, m security.Movement) (security.GateResult, error) {
	var out security.GateResult
	err := c.post(ctx, "/gate/out", m, &out)
	return out, err
}

func (c *Client) RecordCheck(ctx context.Context, chk security.Check) (domain.Event, error) {
	var e domain.Event
	err := c.post(ctx, "/gate/checks", chk, &e)
	return e, err
}

func (c *Client) GateHistory(ctx context.Context) ([]projection.GateCrossing, error) {
	var out []projection.GateCrossing
	err := c.get(ctx, "/gate/history", &out)
	return out, err
}

func windowQuery(factoryID string, window time.Duration) url.Values {
	q := url.Values{}
	if factoryID != "" {
		q.Set("factoryId", factoryID)
	}
	if window > 0 {
		q.Set("windowHours", strconv.FormatFloat(window.Hours(), 'f', -1, 64))
	}
	return q
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
