// Package postgres persists the game state in PostgreSQL using pgx v5.
// Characters, the item catalog, the bestiary, and player accounts each get
// a repository, all backed by one shared connection pool.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/crystalfall/rpgserver/internal/config"
)

// HealthTimeout bounds a single reachability check.
const HealthTimeout = 5 * time.Second

// healthInterval is the pause between checks in WatchHealth.
const healthInterval = 30 * time.Second

// Pool wraps a pgx connection pool and hands out the game repositories.
type Pool struct {
	pool *pgxpool.Pool
}

// NewPool connects to PostgreSQL with the configured pool sizing and
// verifies the connection with a ping.
//
// Precondition: cfg must contain valid database connection parameters.
// Postcondition: Returns a connected Pool or a non-nil error. The pool is
// ready for queries upon successful return.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &Pool{pool: pool}, nil
}

// Characters returns the character repository bound to this pool.
func (p *Pool) Characters() *CharacterRepository {
	return NewCharacterRepository(p.pool)
}

// Items returns the item catalog repository bound to this pool.
func (p *Pool) Items() *ItemRepository {
	return NewItemRepository(p.pool)
}

// Monsters returns the bestiary repository bound to this pool.
func (p *Pool) Monsters() *MonsterRepository {
	return NewMonsterRepository(p.pool)
}

// Accounts returns the account repository bound to this pool.
func (p *Pool) Accounts() *AccountRepository {
	return NewAccountRepository(p.pool)
}

// Health checks that the database is reachable within the given timeout.
//
// Precondition: The pool must not be closed.
// Postcondition: Returns nil if the database responds within the timeout.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.pool.Ping(ctx)
}

// WatchHealth pings the database on a fixed interval until ctx is
// cancelled, logging every failed check. It blocks and is meant to run as
// a lifecycle service.
func (p *Pool) WatchHealth(ctx context.Context, logger *zap.Logger) {
	ticker := time.NewTicker(healthInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.Health(ctx, HealthTimeout); err != nil {
				logger.Warn("database health check failed", zap.Error(err))
			}
		}
	}
}

// Close releases all pool resources.
//
// Postcondition: The pool is no longer usable after calling Close.
func (p *Pool) Close() {
	p.pool.Close()
}

// DB returns the underlying pgxpool.Pool for use by repositories.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}
