// internal/clients/audit_client.go
package clients

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"focis/internal/audit"
	"focis/internal/domain"
	"focis/internal/integrity"
	"focis/internal/projection"
)

func (c *Client) Trail(ctx context.Context, f audit.TrailFilter) ([]domain.Event, error) {
	q := url.Values{}
	if f.EntityID != "" {
		q.Set("entityId", f.EntityID)
	}
	if f.Kind != "" {
		q.Set("type", f.Kind)
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	var out []domain.Event
	err := c.get(ctx, withQuery("/events", q), &out)
	return out, err
}

func (c *Client) Event(ctx context.Context, id string) (domain.Event, error) {
	var e domain.Event
	err := c.get(ctx, "/events/"+url.PathEscape(id), &e)
	return e, err
}

func (c *Client) Record(ctx context.Context, entry audit.Entry) (domain.Event, error) {
	var e domain.Event
	err := c.post(ctx, "/events", entry, &e)
	return e, err
}

func (c *Client) Reverse(ctx context.Context, r audit.Reversal) (domain.Event, error) {
	var e domain.Event
	err := c.post(ctx, "/events/"+url.PathEscape(r.EventID)+"/reverse", r, &e)
	return e, err
}

func (c *Client) VerifyChain(ctx context.Context) (audit.ChainStatus, error) {
	var out audit.ChainStatus
	err := c.get(ctx, "/events/verify", &out)
	return out, err
}

func (c *Client) Dashboard(ctx context.Context, factoryID string, window time.Duration) (projection.KPIs, error) {
	var out projection.KPIs
	err := c.get(ctx, withQuery("/dashboard", windowQuery(factoryID, window)), &out)
	return out, err
}

func (c *Client) Integrity(ctx context.Context) (integrity.Report, error) {
	var out integrity.Report
	err := c.get(ctx, "/integrity", &out)
	return out, err
}
