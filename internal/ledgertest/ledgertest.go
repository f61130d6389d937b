// Package ledgertest opens seeded in-memory ledgers with a controllable clock
// for service and handler tests.
package ledgertest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"focis/internal/domain"
	"focis/internal/eventstore"
	"focis/internal/storage"
)

// Start is the clock reading of a freshly opened test ledger.
var Start = time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC)

// Clock is a manually advanced time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Open returns a store seeded with the default catalog, ids EV-001, EV-002...
func Open(t testing.TB) (*eventstore.EventStore, *Clock) {
	t.Helper()
	clock := &Clock{now: Start}
	var (
		mu sync.Mutex
		n  int
	)
	es, err := eventstore.Open(context.Background(), storage.NewMemoryStore(),
		eventstore.WithClock(clock.Now),
		eventstore.WithIDGenerator(func() string {
			mu.Lock()
			defer mu.Unlock()
			n++
			return fmt.Sprintf("EV-%03d", n)
		}),
		eventstore.WithSeed(domain.DefaultMasterData()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = es.Close() })
	return es, clock
}

// As returns a context acting as a user with role in the seed factory.
func As(role domain.Role) context.Context {
	return domain.WithActor(context.Background(), domain.Actor{
		UserID:    "u-" + strings.ToLower(strings.ReplaceAll(string(role), " ", "-")),
		Role:      role,
		FactoryID: "fac-1",
	})
}
