// Package testutil provides test helpers including container management.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/crystalfall/rpgserver/internal/config"
	"github.com/crystalfall/rpgserver/internal/storage/postgres"
)

// PostgresContainer wraps a testcontainers PostgreSQL instance.
type PostgresContainer struct {
	container testcontainers.Container
	Pool      *postgres.Pool
	RawPool   *pgxpool.Pool
	Config    config.DatabaseConfig
}

// NewPostgresContainer starts a PostgreSQL test container and returns
// a connected Pool.
//
// Precondition: Docker must be available.
// Postcondition: Returns a running container with a connected pool,
// or fails the test.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()
	pc := startPostgresContainer(t)
	t.Cleanup(func() {
		pc.Pool.Close()
		_ = pc.container.Terminate(context.Background())
	})
	return pc
}

// startPostgresContainer starts the container without registering
// cleanup. Used directly by NewPool, which outlives any single test;
// the testcontainers reaper removes the container at process exit.
func startPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()
	ctx := context.Background()
	start := time.Now()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(30 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("starting postgres container: %v [%s]", err, time.Since(start))
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("getting container host: %v", err)
	}

	mappedPort, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("getting mapped port: %v", err)
	}

	dbCfg := config.DatabaseConfig{
		Host:            host,
		Port:            mappedPort.Int(),
		User:            "test",
		Password:        "test",
		Name:            "test",
		SSLMode:         "disable",
		MaxConns:        5,
		MinConns:        1,
		MaxConnLifetime: 5 * time.Minute,
	}

	pool, err := postgres.NewPool(ctx, dbCfg)
	if err != nil {
		t.Fatalf("connecting to test postgres: %v [%s]", err, time.Since(start))
	}

	t.Logf("postgres container started [%s]", time.Since(start))

	return &PostgresContainer{
		container: container,
		Pool:      pool,
		RawPool:   pool.DB(),
		Config:    dbCfg,
	}
}

// ApplyMigrations creates the schema directly for tests. The SQL must
// stay in sync with migrations/0001_init.up.sql.
//
// Precondition: Pool must be connected.
// Postcondition: The accounts, characters, items, and monsters tables
// exist in the test database.
func (pc *PostgresContainer) ApplyMigrations(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	start := time.Now()

	schema := `
		CREATE TABLE IF NOT EXISTS accounts (
			id            BIGSERIAL    PRIMARY KEY,
			username      VARCHAR(64)  NOT NULL UNIQUE,
			password_hash TEXT         NOT NULL,
			created_at    TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS characters (
			id               UUID         PRIMARY KEY,
			name             VARCHAR(64)  NOT NULL,
			image            TEXT         NOT NULL DEFAULT '',
			vitality         INT NOT NULL DEFAULT 0,
			vitality_current INT NOT NULL DEFAULT 0,
			mana             INT NOT NULL DEFAULT 0,
			mana_current     INT NOT NULL DEFAULT 0,
			strength         INT NOT NULL DEFAULT 0,
			agility          INT NOT NULL DEFAULT 0,
			energy           INT NOT NULL DEFAULT 0,
			intellect        INT NOT NULL DEFAULT 0,
			spirit           INT NOT NULL DEFAULT 0,
			attack           INT NOT NULL DEFAULT 0,
			defense          INT NOT NULL DEFAULT 0,
			magic_defense    INT NOT NULL DEFAULT 0,
			attack_extra     INT NOT NULL DEFAULT 0,
			weapon_id        TEXT NOT NULL DEFAULT '',
			armor_id         TEXT NOT NULL DEFAULT '',
			accessory_id     TEXT NOT NULL DEFAULT '',
			experience_total INT NOT NULL DEFAULT 0,
			level            INT NOT NULL DEFAULT 1,
			formation        VARCHAR(16) NOT NULL DEFAULT 'vanguard'
			                 CHECK (formation IN ('vanguard', 'rearguard')),
			position_x       INT NOT NULL DEFAULT 0,
			position_y       INT NOT NULL DEFAULT 0,
			spells           JSONB NOT NULL DEFAULT '[]',
			created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS items (
			id                UUID        PRIMARY KEY,
			name              VARCHAR(64) NOT NULL,
			quantity          INT         NOT NULL DEFAULT 0,
			buy_price         INT         NOT NULL DEFAULT 0,
			sell_price        INT         NOT NULL DEFAULT 0,
			kind              VARCHAR(16) NOT NULL
			                  CHECK (kind IN ('consumable', 'weapon', 'armor')),
			attack_power      INT,
			defense           INT,
			magic_defense     INT,
			description       TEXT,
			effect_type       TEXT,
			effect_attribute  TEXT,
			effect_value      INT,
			effect_percentage INT
		);

		CREATE TABLE IF NOT EXISTS monsters (
			id                UUID        PRIMARY KEY,
			name              VARCHAR(64) NOT NULL,
			image             TEXT        NOT NULL DEFAULT '',
			vitality          INT NOT NULL DEFAULT 0,
			level             INT NOT NULL DEFAULT 1,
			strength          INT NOT NULL DEFAULT 0,
			agility           INT NOT NULL DEFAULT 0,
			energy            INT NOT NULL DEFAULT 0,
			intellect         INT NOT NULL DEFAULT 0,
			spirit            INT NOT NULL DEFAULT 0,
			attack            INT NOT NULL DEFAULT 0,
			defense           INT NOT NULL DEFAULT 0,
			magic_defense     INT NOT NULL DEFAULT 0,
			attack_extra      INT NOT NULL DEFAULT 0,
			experience_reward INT NOT NULL DEFAULT 0,
			currency_reward   INT NOT NULL DEFAULT 0
		);
	`

	_, err := pc.RawPool.Exec(ctx, schema)
	if err != nil {
		t.Fatalf("applying migrations: %v", err)
	}
	t.Logf("migrations applied [%s]", time.Since(start))
}

// DSN returns the connection string for the test database.
func (pc *PostgresContainer) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		pc.Config.User, pc.Config.Password,
		pc.Config.Host, pc.Config.Port,
		pc.Config.Name, pc.Config.SSLMode,
	)
}
