// Package spell resolves the casting of support spells across multiple
// targets: cost deduction, even effect split, and clamped restoration.
package spell

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crystalfall/rpgserver/internal/game/character"
)

// ErrInvalidSpell is returned when the spell index does not reference an
// entry in the caster's spell list.
var ErrInvalidSpell = errors.New("spell does not exist")

// ErrNoTargets is returned when a cast names no targets. The effect split
// divides by the target count, so an empty list is rejected up front rather
// than propagating a division fault.
var ErrNoTargets = errors.New("cast requires at least one target")

// CharacterStore is the persistence surface the engine reads and writes.
// GetByID returns the store's not-found sentinel when the id is absent;
// GetByIDs silently omits ids that do not resolve.
type CharacterStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*character.Character, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*character.Character, error)
	Save(ctx context.Context, c *character.Character) error
}

// Result holds the updated caster and the updated targets. Targets whose
// ids did not resolve are dropped, mirroring the bulk applier's
// no-op-on-missing policy.
type Result struct {
	Caster  *character.Character   `json:"caster"`
	Targets []*character.Character `json:"targets"`
}

// Engine resolves spell casts against the character store.
type Engine struct {
	characters CharacterStore
	logger     *zap.Logger
}

// NewEngine creates an Engine backed by the given store.
//
// Precondition: characters and logger must be non-nil.
func NewEngine(characters CharacterStore, logger *zap.Logger) *Engine {
	return &Engine{characters: characters, logger: logger}
}

// Cast resolves casterID casting the spell at spellIndex on targetIDs.
//
// The spell's cost is deducted from the caster's mana, floored at zero.
// The effect value is split evenly: each target receives
// floor(value / len(targetIDs)); the remainder from a non-divisible total
// is dropped, not redistributed, so missing or dangling target ids still
// count toward the divisor. Each resolved target's pool, selected by the
// spell effect's attribute (vitality when unset), is restored by the share
// and clamped to its maximum.
//
// Targets are loaded in one batched fetch. Every mutated target is saved
// before the caster; when the caster targets itself the cost and the
// restore apply to the one caster object, saved once at the end. Two
// concurrent casts over overlapping targets have no serialization
// guarantee and may lose an update.
//
// Postcondition: returns the store's not-found error when the caster is
// absent, ErrInvalidSpell for an out-of-range index, ErrNoTargets for an
// empty target list.
func (e *Engine) Cast(ctx context.Context, casterID uuid.UUID, spellIndex int, targetIDs []string) (*Result, error) {
	if len(targetIDs) == 0 {
		return nil, ErrNoTargets
	}

	caster, err := e.characters.GetByID(ctx, casterID)
	if err != nil {
		return nil, err
	}

	if spellIndex < 0 || spellIndex >= len(caster.Spells) {
		return nil, ErrInvalidSpell
	}
	spell := caster.Spells[spellIndex]

	caster.Attributes.ManaCurrent -= spell.Cost
	if caster.Attributes.ManaCurrent < 0 {
		caster.Attributes.ManaCurrent = 0
	}

	share := spell.Effect.Value / len(targetIDs)

	pool := spell.Effect.Attribute
	if pool == "" {
		pool = character.PoolVitality
	}

	targets, err := e.characters.GetByIDs(ctx, parseTargetIDs(targetIDs))
	if err != nil {
		return nil, fmt.Errorf("loading targets: %w", err)
	}

	for i, t := range targets {
		if t.ID == caster.ID {
			// A self-targeting cast must restore the same object the cost
			// was deducted from; a separately fetched copy would be
			// overwritten by the caster save below.
			t = caster
			targets[i] = caster
		}
		current, _, ok := t.Attributes.Pool(pool)
		if !ok {
			e.logger.Warn("spell effect names unknown pool, skipping target",
				zap.String("caster_id", caster.ID.String()),
				zap.String("target_id", t.ID.String()),
				zap.String("attribute", pool),
			)
			continue
		}
		t.Attributes.SetPoolCurrent(pool, current+share)
		if t == caster {
			continue
		}
		if err := e.characters.Save(ctx, t); err != nil {
			return nil, fmt.Errorf("saving target %s: %w", t.ID, err)
		}
	}

	if err := e.characters.Save(ctx, caster); err != nil {
		return nil, fmt.Errorf("saving caster: %w", err)
	}

	e.logger.Info("spell cast resolved",
		zap.String("caster_id", caster.ID.String()),
		zap.String("spell", spell.Name),
		zap.Int("requested_targets", len(targetIDs)),
		zap.Int("resolved_targets", len(targets)),
		zap.Int("share", share),
	)

	return &Result{Caster: caster, Targets: targets}, nil
}

// parseTargetIDs keeps the well-formed ids. Malformed ids behave like
// missing ones: skipped in the fetch but already counted in the divisor.
func parseTargetIDs(raw []string) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
