package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseBlob checks the read-whole/write-whole contract every backend shares.
func exerciseBlob(t *testing.T, b Blob) {
	t.Helper()
	ctx := context.Background()

	data, err := b.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, data, "fresh store must be empty")

	require.NoError(t, b.Save(ctx, []byte(`{"events":[]}`)))
	data, err = b.Load(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"events":[]}`, string(data))

	require.NoError(t, b.Save(ctx, []byte(`{"events":[{"id":"EV-1"}]}`)))
	data, err = b.Load(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"events":[{"id":"EV-1"}]}`, string(data))
}

func TestMemoryStore(t *testing.T) {
	exerciseBlob(t, NewMemoryStore())
}

func TestMemoryStore_LoadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	require.NoError(t, m.Save(ctx, []byte("abc")))

	data, err := m.Load(ctx)
	require.NoError(t, err)
	data[0] = 'x'

	again, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "focis.json")
	f, err := OpenFile(path)
	require.NoError(t, err)
	exerciseBlob(t, f)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestFileStore_RequiresPath(t *testing.T) {
	_, err := OpenFile("  ")
	assert.Error(t, err)
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQL(ctx, SQLite, filepath.Join(t.TempDir(), "focis.db"), "plant-a")
	require.NoError(t, err)
	defer s.Close()
	exerciseBlob(t, s)
}

func TestSQLiteStore_DocumentsAreIsolated(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "focis.db")

	a, err := OpenSQL(ctx, SQLite, path, "plant-a")
	require.NoError(t, err)
	defer a.Close()
	b, err := NewSQLStore(ctx, a.db, SQLite, "plant-b")
	require.NoError(t, err)

	require.NoError(t, a.Save(ctx, []byte(`"a"`)))
	data, err := b.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("FOCIS_TEST_POSTGRES_URL")
	if dsn == "" {
		t.Skip("FOCIS_TEST_POSTGRES_URL not set")
	}
	ctx := context.Background()
	s, err := OpenSQL(ctx, Postgres, dsn, "test-"+t.Name())
	if err != nil {
		t.Skipf("postgres not available: %v", err)
	}
	defer s.Close()
	_, _ = s.db.ExecContext(ctx, `DELETE FROM focis_documents WHERE id = $1`, s.docID)
	exerciseBlob(t, s)
}

func TestMySQLStore(t *testing.T) {
	dsn := os.Getenv("FOCIS_TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("FOCIS_TEST_MYSQL_DSN not set")
	}
	ctx := context.Background()
	s, err := OpenSQL(ctx, MySQL, dsn, "test-"+t.Name())
	if err != nil {
		t.Skipf("mysql not available: %v", err)
	}
	defer s.Close()
	_, _ = s.db.ExecContext(ctx, `DELETE FROM focis_documents WHERE id = ?`, s.docID)
	exerciseBlob(t, s)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("FOCIS_TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	ctx := context.Background()
	s, err := OpenRedis(ctx, addr, "focis:test:"+t.Name())
	if err != nil {
		t.Skipf("redis not available: %v", err)
	}
	defer s.Close()
	_ = s.client.Del(ctx, s.key).Err()
	exerciseBlob(t, s)
}

func TestOpen_UnknownKind(t *testing.T) {
	_, err := Open(context.Background(), Kind("tape"), Options{})
	assert.Error(t, err)
}
