package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect selects the SQL flavour of a SQLStore.
type Dialect string

const (
	Postgres Dialect = "postgres"
	MySQL    Dialect = "mysql"
	SQLite   Dialect = "sqlite"
)

type dialectSQL struct {
	driver string
	schema string
	load   string
	upsert string
	stamp  func(time.Time) any
}

var dialects = map[Dialect]dialectSQL{
	Postgres: {
		driver: "postgres",
		schema: `
			CREATE TABLE IF NOT EXISTS focis_documents (
				id TEXT PRIMARY KEY,
				body TEXT NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL
			)`,
		load: `SELECT body FROM focis_documents WHERE id = $1`,
		upsert: `
			INSERT INTO focis_documents (id, body, updated_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE
			SET body = EXCLUDED.body,
			    updated_at = EXCLUDED.updated_at`,
		stamp: func(t time.Time) any { return t },
	},
	MySQL: {
		driver: "mysql",
		schema: `
			CREATE TABLE IF NOT EXISTS focis_documents (
				id VARCHAR(191) PRIMARY KEY,
				body LONGTEXT NOT NULL,
				updated_at DATETIME(6) NOT NULL
			)`,
		load: `SELECT body FROM focis_documents WHERE id = ?`,
		upsert: `
			INSERT INTO focis_documents (id, body, updated_at)
			VALUES (?, ?, ?)
			ON DUPLICATE KEY UPDATE body = VALUES(body), updated_at = VALUES(updated_at)`,
		stamp: func(t time.Time) any { return t },
	},
	SQLite: {
		driver: "sqlite",
		schema: `
			CREATE TABLE IF NOT EXISTS focis_documents (
				id TEXT PRIMARY KEY,
				body TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
		load: `SELECT body FROM focis_documents WHERE id = ?`,
		upsert: `
			INSERT INTO focis_documents (id, body, updated_at)
			VALUES (?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		stamp: func(t time.Time) any { return t.Format(time.RFC3339Nano) },
	},
}

// SQLStore keeps the document as one row of focis_documents.
type SQLStore struct {
	db    *sql.DB
	sql   dialectSQL
	docID string
	owned bool
}

// OpenSQL connects with dsn, creates the table if needed, and returns a store
// for the row docID. The connection is closed by Close.
func OpenSQL(ctx context.Context, dialect Dialect, dsn, docID string) (*SQLStore, error) {
	d, ok := dialects[dialect]
	if !ok {
		return nil, fmt.Errorf("unsupported sql dialect %q", dialect)
	}
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("%s dsn is required", dialect)
	}
	if dialect == SQLite && !strings.Contains(dsn, "?") {
		dsn = filepath.Clean(dsn) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s db: %w", dialect, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s db: %w", dialect, err)
	}

	s, err := NewSQLStore(ctx, db, dialect, docID)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.owned = true
	return s, nil
}

// NewSQLStore wraps an existing connection. The caller keeps ownership of db.
func NewSQLStore(ctx context.Context, db *sql.DB, dialect Dialect, docID string) (*SQLStore, error) {
	d, ok := dialects[dialect]
	if !ok {
		return nil, fmt.Errorf("unsupported sql dialect %q", dialect)
	}
	if docID == "" {
		docID = "default"
	}
	if _, err := db.ExecContext(ctx, d.schema); err != nil {
		return nil, fmt.Errorf("create documents table: %w", err)
	}
	return &SQLStore{db: db, sql: d, docID: docID}, nil
}

func (s *SQLStore) Load(ctx context.Context) ([]byte, error) {
	var body string
	err := s.db.QueryRowContext(ctx, s.sql.load, s.docID).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load document %s: %w", s.docID, err)
	}
	return []byte(body), nil
}

func (s *SQLStore) Save(ctx context.Context, data []byte) error {
	_, err := s.db.ExecContext(ctx, s.sql.upsert, s.docID, string(data), s.sql.stamp(time.Now().UTC()))
	if err != nil {
		return fmt.Errorf("save document %s: %w", s.docID, err)
	}
	return nil
}

// Close closes the connection if OpenSQL created it.
func (s *SQLStore) Close() error {
	if s == nil || s.db == nil || !s.owned {
		return nil
	}
	return s.db.Close()
}
