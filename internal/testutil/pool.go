package testutil

import (
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crystalfall/rpgserver/internal/storage/postgres"
)

var (
	sharedMu        sync.Mutex
	sharedContainer *PostgresContainer
)

// NewPool returns a pgx pool connected to a shared migrated test
// database, starting the container on first use. The container lives
// for the whole test binary run and is reaped at process exit.
//
// Precondition: Docker must be available.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	return shared(t).RawPool
}

// SharedPool returns the wrapped pool of the shared test database, for
// tests exercising the Pool surface itself.
func SharedPool(t *testing.T) *postgres.Pool {
	t.Helper()
	return shared(t).Pool
}

func shared(t *testing.T) *PostgresContainer {
	t.Helper()

	sharedMu.Lock()
	defer sharedMu.Unlock()

	if sharedContainer == nil {
		sharedContainer = startPostgresContainer(t)
		sharedContainer.ApplyMigrations(t)
	}
	return sharedContainer
}
