// internal/clients/catalog_client.go
package clients

import (
	"context"
	"net/url"

	"focis/internal/domain"
)

func (c *Client) MasterData(ctx context.Context) (domain.MasterData, error) {
	var md domain.MasterData
	err := c.get(ctx, "/master-data", &md)
	return md, err
}

func (c *Client) GetItem(ctx context.Context, id string) (domain.Item, error) {
	var it domain.Item
	err := c.get(ctx, "/items/"+url.PathEscape(id), &it)
	return it, err
}

func (c *Client) GetAsset(ctx context.Context, id string) (domain.Asset, error) {
	var a domain.Asset
	err := c.get(ctx, "/assets/"+url.PathEscape(id), &a)
	return a, err
}

func (c *Client) AddFactory(ctx context.Context, f domain.Factory) (domain.Factory, error) {
	var out domain.Factory
	err := c.post(ctx, "/factories", f, &out)
	return out, err
}

func (c *Client) AddWarehouse(ctx context.Context, w domain.Warehouse) (domain.Warehouse, error) {
	var out domain.Warehouse
	err := c.post(ctx, "/warehouses", w, &out)
	return out, err
}

func (c *Client) AddAsset(ctx context.Context, a domain.Asset) (domain.Asset, error) {
	var out domain.Asset
	err := c.post(ctx, "/assets", a, &out)
	return out, err
}

func (c *Client) AddItem(ctx context.Context, it domain.Item) (domain.Item, error) {
	var out domain.Item
	err := c.post(ctx, "/items", it, &out)
	return out, err
}
