// Package api provides the HTTP/JSON transport for the RPG backend.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crystalfall/rpgserver/internal/config"
	"github.com/crystalfall/rpgserver/internal/game/character"
	"github.com/crystalfall/rpgserver/internal/game/item"
	"github.com/crystalfall/rpgserver/internal/game/monster"
	"github.com/crystalfall/rpgserver/internal/game/spell"
	"github.com/crystalfall/rpgserver/internal/game/stats"
	"github.com/crystalfall/rpgserver/internal/storage/postgres"
)

// CharacterStore defines the character persistence operations the handlers
// require.
type CharacterStore interface {
	List(ctx context.Context) ([]*character.Character, error)
	GetByID(ctx context.Context, id uuid.UUID) (*character.Character, error)
	Save(ctx context.Context, c *character.Character) error
	BulkApply(ctx context.Context, updates []postgres.CharacterUpdate) (int64, error)
}

// MonsterStore defines the bestiary read operations the handlers require.
type MonsterStore interface {
	List(ctx context.Context) ([]*monster.Monster, error)
}

// ItemStore defines the catalog operations the handlers require. It doubles
// as the attribute resolver's catalog.
type ItemStore interface {
	List(ctx context.Context) ([]*item.Item, error)
	ItemByID(ctx context.Context, id string) (*item.Item, error)
}

// AccountStore defines the account operations required for token issuance.
type AccountStore interface {
	Authenticate(ctx context.Context, username, password string) (postgres.Account, error)
}

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	Health(ctx context.Context, timeout time.Duration) error
}

// Server holds the handler dependencies and builds the HTTP routing table.
type Server struct {
	characters CharacterStore
	monsters   MonsterStore
	items      ItemStore
	accounts   AccountStore
	spells     *spell.Engine
	health     HealthChecker
	auth       config.AuthConfig
	uploads    config.UploadsConfig
	logger     *zap.Logger
}

// NewServer creates a Server with the given collaborators.
//
// Precondition: all stores, spells, and logger must be non-nil; health may
// be nil (the health endpoint then only reports process liveness).
func NewServer(
	characters CharacterStore,
	monsters MonsterStore,
	items ItemStore,
	accounts AccountStore,
	spells *spell.Engine,
	health HealthChecker,
	auth config.AuthConfig,
	uploads config.UploadsConfig,
	logger *zap.Logger,
) *Server {
	return &Server{
		characters: characters,
		monsters:   monsters,
		items:      items,
		accounts:   accounts,
		spells:     spells,
		health:     health,
		auth:       auth,
		uploads:    uploads,
		logger:     logger,
	}
}

// Routes returns the fully wired handler, with request logging and CORS
// applied to every route.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("POST /api/auth/token", s.handleToken)

	mux.HandleFunc("GET /api/characters", s.handleListCharacters)
	mux.HandleFunc("GET /api/monsters", s.handleListMonsters)
	mux.HandleFunc("GET /api/inventory", s.handleListInventory)

	mux.HandleFunc("PATCH /api/characters/{id}/equipment", s.handleEquip)
	mux.HandleFunc("GET /api/characters/{id}/position", s.handlePosition)
	mux.HandleFunc("PATCH /api/characters/formation", s.handleFormation)
	mux.HandleFunc("PATCH /api/characters/bulk", s.handleBulk)

	mux.HandleFunc("POST /api/spells/cast", s.handleCast)

	mux.HandleFunc("POST /api/uploads", s.handleUpload)

	return s.withCORS(s.withRequestLog(mux))
}

// resolveAndSave recomputes the character's derived attributes and persists
// the result. Shared by every handler that changes equipment.
func (s *Server) resolveAndSave(ctx context.Context, c *character.Character) error {
	if err := stats.Resolve(ctx, c, s.items); err != nil {
		return err
	}
	return s.characters.Save(ctx, c)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("rpgserver: turn-based RPG backend\n"))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health.Health(r.Context(), 5*time.Second); err != nil {
			s.logger.Warn("health check failed", zap.Error(err))
			writeError(w, http.StatusServiceUnavailable, "database unreachable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
