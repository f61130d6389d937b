// internal/catalog/service.go
package catalog

import (
	"context"

	"focis/internal/domain"
)

// Service defines the interface for the master data registry.
type Service interface {
	MasterData(ctx context.Context) (domain.MasterData, error)
	GetItem(ctx context.Context, id string) (domain.Item, error)
	GetAsset(ctx context.Context, id string) (domain.Asset, error)
	AddFactory(ctx context.Context, f domain.Factory) (domain.Factory, error)
	AddWarehouse(ctx context.Context, w domain.Warehouse) (domain.Warehouse, error)
	AddAsset(ctx context.Context, a domain.Asset) (domain.Asset, error)
	AddItem(ctx context.Context, it domain.Item) (domain.Item, error)
}
