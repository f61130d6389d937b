// internal/catalog/domain.go
package catalog

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"focis/internal/domain"
)

// Entity types recorded in Master Data Modification events.
const (
	EntityFactory   = "Factory"
	EntityWarehouse = "Warehouse"
	EntityAsset     = "Asset"
	EntityItem      = "Item"
)

// id prefixes for generated master data ids.
const (
	prefixFactory   = "fac-"
	prefixWarehouse = "wh-"
	prefixAsset     = "ast-"
	prefixItem      = "itm-"
)

func newID(prefix string) string {
	return prefix + strings.SplitN(uuid.NewString(), "-", 2)[0]
}

func required(entity, field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s %s required", domain.ErrInvalidPayload, entity, field)
	}
	return nil
}

func validateFactory(f domain.Factory) error {
	return required(EntityFactory, "name", f.Name)
}

func validateWarehouse(md *domain.MasterData, w domain.Warehouse) error {
	if err := required(EntityWarehouse, "name", w.Name); err != nil {
		return err
	}
	if err := required(EntityWarehouse, "type", w.Type); err != nil {
		return err
	}
	if w.CapacityPallets < 0 {
		return fmt.Errorf("%w: warehouse capacity must not be negative", domain.ErrInvalidPayload)
	}
	if _, ok := md.Factory(w.FactoryID); !ok {
		return fmt.Errorf("%w: factory %q", domain.ErrUnknownEntity, w.FactoryID)
	}
	return nil
}

func validateAsset(md *domain.MasterData, a domain.Asset) error {
	if err := required(EntityAsset, "name", a.Name); err != nil {
		return err
	}
	if a.IdealCycleTimeMs < 0 || a.HourlyDowntimeCost.IsNegative() {
		return fmt.Errorf("%w: asset cycle time and downtime cost must not be negative", domain.ErrInvalidPayload)
	}
	if _, ok := md.Factory(a.FactoryID); !ok {
		return fmt.Errorf("%w: factory %q", domain.ErrUnknownEntity, a.FactoryID)
	}
	return nil
}

func validateItem(md *domain.MasterData, it domain.Item) error {
	if err := required(EntityItem, "name", it.Name); err != nil {
		return err
	}
	if err := required(EntityItem, "category", it.Category); err != nil {
		return err
	}
	if it.UnitsPerPallet < 0 || it.CuringDurationHours < 0 {
		return fmt.Errorf("%w: pallet size and curing time must not be negative", domain.ErrInvalidPayload)
	}
	for _, line := range it.BOM {
		if !line.Quantity.IsPositive() {
			return fmt.Errorf("%w: bom line %q needs a positive quantity", domain.ErrInvalidPayload, line.ItemID)
		}
		if line.ItemID == it.ID {
			return fmt.Errorf("%w: item %q lists itself in its bom", domain.ErrInvalidPayload, it.ID)
		}
		if _, ok := md.Item(line.ItemID); !ok {
			return fmt.Errorf("%w: bom item %q", domain.ErrUnknownEntity, line.ItemID)
		}
	}
	return nil
}

func taken(md *domain.MasterData, id string) bool {
	if _, ok := md.Factory(id); ok {
		return true
	}
	if _, ok := md.Warehouse(id); ok {
		return true
	}
	if _, ok := md.Asset(id); ok {
		return true
	}
	_, ok := md.Item(id)
	return ok
}
