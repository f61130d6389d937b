package server

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focis/internal/config"
)

func TestOpenLedgerSeedsEmptyStore(t *testing.T) {
	cfg := config.Config{
		Store:        "file",
		StorePath:    filepath.Join(t.TempDir(), "focis.json"),
		SeedDefaults: true,
	}
	es, blob, err := OpenLedger(context.Background(), cfg)
	require.NoError(t, err)
	defer blob.Close()

	md, err := es.MasterData(context.Background())
	require.NoError(t, err)
	_, ok := md.Asset("ast-line1")
	assert.True(t, ok)
}

func TestOpenLedgerWithoutSeed(t *testing.T) {
	es, blob, err := OpenLedger(context.Background(), config.Config{Store: "memory"})
	require.NoError(t, err)
	defer blob.Close()

	md, err := es.MasterData(context.Background())
	require.NoError(t, err)
	assert.Empty(t, md.Factories)
}

func TestOptionsFrom(t *testing.T) {
	cfg := config.Config{
		GateReceiptWarehouse: "wh-fg",
		GateReceiptPrice:     decimal.NewFromInt(300),
		WriteRate:            5,
		WriteBurst:           10,
	}
	opts := OptionsFrom(cfg, nil)
	assert.Nil(t, opts.Verifier)
	assert.Equal(t, "wh-fg", opts.Gate.ReceiptWarehouseID)
	assert.True(t, opts.Gate.ReceiptUnitPrice.Equal(decimal.NewFromInt(300)))

	cfg.JWTSecret = "s3cret"
	assert.NotNil(t, OptionsFrom(cfg, nil).Verifier)
}
