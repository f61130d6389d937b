package storage

import (
	"context"
	"fmt"
)

// Kind names a blob store backend.
type Kind string

const (
	KindMemory   Kind = "memory"
	KindFile     Kind = "file"
	KindPostgres Kind = "postgres"
	KindMySQL    Kind = "mysql"
	KindSQLite   Kind = "sqlite"
	KindRedis    Kind = "redis"
)

// Options carries the settings each backend needs.
type Options struct {
	Path        string // file and sqlite
	DatabaseURL string // postgres and mysql
	RedisAddr   string
	RedisKey    string
	DocumentID  string
}

// Blob is a BlobStore that holds resources.
type Blob interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	Close() error
}

// Open builds the backend named by kind.
func Open(ctx context.Context, kind Kind, opts Options) (Blob, error) {
	switch kind {
	case KindMemory:
		return NewMemoryStore(), nil
	case KindFile, "":
		return OpenFile(opts.Path)
	case KindPostgres:
		return OpenSQL(ctx, Postgres, opts.DatabaseURL, opts.DocumentID)
	case KindMySQL:
		return OpenSQL(ctx, MySQL, opts.DatabaseURL, opts.DocumentID)
	case KindSQLite:
		path := opts.DatabaseURL
		if path == "" {
			path = opts.Path
		}
		return OpenSQL(ctx, SQLite, path, opts.DocumentID)
	case KindRedis:
		return OpenRedis(ctx, opts.RedisAddr, opts.RedisKey)
	default:
		return nil, fmt.Errorf("unknown store kind %q", kind)
	}
}
