// internal/server/ledger.go
package server

import (
	"context"
	"fmt"

	"focis/internal/config"
	"focis/internal/domain"
	"focis/internal/eventstore"
	"focis/internal/identity"
	"focis/internal/security"
	"focis/internal/storage"
)

// OpenLedger opens the configured backend and loads the ledger from it.
// Closing the returned blob is the caller's job.
func OpenLedger(ctx context.Context, cfg config.Config) (*eventstore.EventStore, storage.Blob, error) {
	kind, opts := cfg.StorageOptions()
	blob, err := storage.Open(ctx, kind, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s store: %w", kind, err)
	}

	var esOpts []eventstore.Option
	if cfg.SeedDefaults {
		esOpts = append(esOpts, eventstore.WithSeed(domain.DefaultMasterData()))
	}
	es, err := eventstore.Open(ctx, blob, esOpts...)
	if err != nil {
		_ = blob.Close()
		return nil, nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	return es, blob, nil
}

// OptionsFrom maps configuration onto router options for es.
func OptionsFrom(cfg config.Config, es *eventstore.EventStore) Options {
	opts := Options{
		Store: es,
		Gate: security.Options{
			ReceiptWarehouseID: cfg.GateReceiptWarehouse,
			ReceiptUnitPrice:   cfg.GateReceiptPrice,
		},
		WriteRate:  cfg.WriteRate,
		WriteBurst: cfg.WriteBurst,
	}
	if cfg.JWTSecret != "" {
		opts.Verifier = identity.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer, nil)
	}
	return opts
}
