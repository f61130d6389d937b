// internal/catalog/implementation.go
package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"focis/internal/domain"
	"focis/internal/eventstore"
)

// service implements the Service interface.
type service struct {
	eventStore *eventstore.EventStore
	tracer     trace.Tracer
}

// NewService creates a new catalog service instance.
func NewService(es *eventstore.EventStore) Service {
	return &service{
		eventStore: es,
		tracer:     otel.Tracer("focis/catalog"),
	}
}

func (s *service) MasterData(ctx context.Context) (domain.MasterData, error) {
	return s.eventStore.MasterData(ctx)
}

func (s *service) GetItem(ctx context.Context, id string) (domain.Item, error) {
	md, err := s.eventStore.MasterData(ctx)
	if err != nil {
		return domain.Item{}, err
	}
	it, ok := md.Item(id)
	if !ok {
		return domain.Item{}, fmt.Errorf("%w: item %q", domain.ErrNotFound, id)
	}
	return it, nil
}

func (s *service) GetAsset(ctx context.Context, id string) (domain.Asset, error) {
	md, err := s.eventStore.MasterData(ctx)
	if err != nil {
		return domain.Asset{}, err
	}
	a, ok := md.Asset(id)
	if !ok {
		return domain.Asset{}, fmt.Errorf("%w: asset %q", domain.ErrNotFound, id)
	}
	return a, nil
}

// AddFactory registers a new production site.
func (s *service) AddFactory(ctx context.Context, f domain.Factory) (domain.Factory, error) {
	err := s.modify(ctx, EntityFactory, &f.ID, prefixFactory, func(md *domain.MasterData) (interface{}, error) {
		if err := validateFactory(f); err != nil {
			return nil, err
		}
		md.Factories = append(md.Factories, f)
		return f, nil
	})
	return f, err
}

// AddWarehouse registers a warehouse in an existing factory.
func (s *service) AddWarehouse(ctx context.Context, w domain.Warehouse) (domain.Warehouse, error) {
	err := s.modify(ctx, EntityWarehouse, &w.ID, prefixWarehouse, func(md *domain.MasterData) (interface{}, error) {
		if w.FactoryID == "" {
			w.FactoryID = md.DefaultFactoryID()
		}
		if err := validateWarehouse(md, w); err != nil {
			return nil, err
		}
		md.Warehouses = append(md.Warehouses, w)
		return w, nil
	})
	return w, err
}

// AddAsset registers a machine in an existing factory.
func (s *service) AddAsset(ctx context.Context, a domain.Asset) (domain.Asset, error) {
	err := s.modify(ctx, EntityAsset, &a.ID, prefixAsset, func(md *domain.MasterData) (interface{}, error) {
		if a.FactoryID == "" {
			a.FactoryID = md.DefaultFactoryID()
		}
		if err := validateAsset(md, a); err != nil {
			return nil, err
		}
		md.Assets = append(md.Assets, a)
		return a, nil
	})
	return a, err
}

// AddItem registers a stocked or produced item. BOM lines must name
// registered items.
func (s *service) AddItem(ctx context.Context, it domain.Item) (domain.Item, error) {
	err := s.modify(ctx, EntityItem, &it.ID, prefixItem, func(md *domain.MasterData) (interface{}, error) {
		if err := validateItem(md, it); err != nil {
			return nil, err
		}
		md.Items = append(md.Items, it)
		return it, nil
	})
	return it, err
}

// modify applies change to the registry and audits it with a Master Data
// Modification event in the same write.
func (s *service) modify(ctx context.Context, entity string, id *string, prefix string, change func(md *domain.MasterData) (interface{}, error)) error {
	ctx, span := s.tracer.Start(ctx, "catalog.modify",
		trace.WithAttributes(attribute.String("entity.type", entity)),
	)
	defer span.End()

	actor, err := domain.RequireActor(ctx)
	if err != nil {
		return err
	}
	if !actor.Role.CanEditMasterData() {
		return fmt.Errorf("%w: %s cannot edit master data", domain.ErrForbidden, actor.Role)
	}

	return s.eventStore.Transact(ctx, func(tx *eventstore.Tx) error {
		md := tx.MasterData()
		if *id == "" {
			*id = newID(prefix)
		}
		if taken(md, *id) {
			return fmt.Errorf("%w: id %q already registered", domain.ErrInvalidState, *id)
		}
		record, err := change(md)
		if err != nil {
			return err
		}
		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", entity, err)
		}
		_, err = tx.Append(eventstore.Draft{
			Payload:   domain.MasterDataModification{EntityType: entity, Data: data},
			UserID:    actor.UserID,
			EntityID:  *id,
			FactoryID: actor.FactoryID,
		})
		if err != nil {
			return fmt.Errorf("failed to append event: %w", err)
		}
		span.SetAttributes(attribute.String("entity.id", *id))
		return nil
	})
}
