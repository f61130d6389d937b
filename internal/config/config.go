// Package config loads process settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"focis/internal/storage"
)

// Config holds every FOCIS_* setting.
type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	Store        string `env:"STORE" envDefault:"file"`
	StorePath    string `env:"STORE_PATH" envDefault:"focis.json"`
	DatabaseURL  string `env:"DATABASE_URL"`
	RedisAddr    string `env:"REDIS_ADDR"`
	RedisKey     string `env:"REDIS_KEY" envDefault:"focis:document"`
	DocumentID   string `env:"DOCUMENT_ID" envDefault:"default"`
	SeedDefaults bool   `env:"SEED_DEFAULTS" envDefault:"true"`

	JWTSecret string `env:"JWT_SECRET"`
	JWTIssuer string `env:"JWT_ISSUER"`

	WriteRate  float64 `env:"WRITE_RATE" envDefault:"20"`
	WriteBurst int     `env:"WRITE_BURST" envDefault:"40"`

	GateReceiptWarehouse string          `env:"GATE_RECEIPT_WAREHOUSE" envDefault:"wh-rm"`
	GateReceiptPrice     decimal.Decimal `env:"GATE_RECEIPT_PRICE" envDefault:"450"`

	OTelEndpoint string `env:"OTEL_ENDPOINT"`
	ServiceName  string `env:"SERVICE_NAME" envDefault:"focis"`
}

// Prefix is prepended to every variable name.
const Prefix = "FOCIS_"

// Load reads a .env file when one exists, then parses the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("failed to read .env: %v", err)
	}
	return Parse()
}

// Parse reads the environment without touching .env.
func Parse() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: Prefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks combinations the tags cannot express.
func (c Config) Validate() error {
	switch storage.Kind(c.Store) {
	case storage.KindMemory, storage.KindFile, storage.KindSQLite:
	case storage.KindPostgres, storage.KindMySQL:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%sDATABASE_URL is required for store %q", Prefix, c.Store)
		}
	case storage.KindRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("%sREDIS_ADDR is required for store %q", Prefix, c.Store)
		}
	default:
		return fmt.Errorf("unknown %sSTORE %q", Prefix, c.Store)
	}
	if c.WriteRate <= 0 || c.WriteBurst <= 0 {
		return fmt.Errorf("%sWRITE_RATE and %sWRITE_BURST must be positive", Prefix, Prefix)
	}
	if c.GateReceiptPrice.IsNegative() {
		return fmt.Errorf("%sGATE_RECEIPT_PRICE must not be negative", Prefix)
	}
	return nil
}

// StorageOptions maps the store settings onto storage.Open.
func (c Config) StorageOptions() (storage.Kind, storage.Options) {
	return storage.Kind(c.Store), storage.Options{
		Path:        c.StorePath,
		DatabaseURL: c.DatabaseURL,
		RedisAddr:   c.RedisAddr,
		RedisKey:    c.RedisKey,
		DocumentID:  c.DocumentID,
	}
}
