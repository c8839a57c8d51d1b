package spell

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/crystalfall/rpgserver/internal/game/character"
)

var errCharacterNotFound = errors.New("character not found")

type fakeStore struct {
	characters map[uuid.UUID]*character.Character
	saved      []uuid.UUID
}

func newFakeStore(chars ...*character.Character) *fakeStore {
	s := &fakeStore{characters: make(map[uuid.UUID]*character.Character)}
	for _, c := range chars {
		s.characters[c.ID] = c
	}
	return s
}

func (s *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*character.Character, error) {
	c, ok := s.characters[id]
	if !ok {
		return nil, errCharacterNotFound
	}
	return c, nil
}

func (s *fakeStore) GetByIDs(_ context.Context, ids []uuid.UUID) ([]*character.Character, error) {
	var out []*character.Character
	for _, id := range ids {
		if c, ok := s.characters[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *fakeStore) Save(_ context.Context, c *character.Character) error {
	s.saved = append(s.saved, c.ID)
	return nil
}

// rowStore persists characters by value the way a database row does: every
// read hands out an independent copy and Save overwrites the whole row.
type rowStore struct {
	rows map[uuid.UUID]character.Character
}

func newRowStore(chars ...*character.Character) *rowStore {
	s := &rowStore{rows: make(map[uuid.UUID]character.Character)}
	for _, c := range chars {
		s.rows[c.ID] = *c
	}
	return s
}

func (s *rowStore) GetByID(_ context.Context, id uuid.UUID) (*character.Character, error) {
	row, ok := s.rows[id]
	if !ok {
		return nil, errCharacterNotFound
	}
	return &row, nil
}

func (s *rowStore) GetByIDs(_ context.Context, ids []uuid.UUID) ([]*character.Character, error) {
	var out []*character.Character
	for _, id := range ids {
		if row, ok := s.rows[id]; ok {
			copied := row
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *rowStore) Save(_ context.Context, c *character.Character) error {
	s.rows[c.ID] = *c
	return nil
}

func makeCaster(spells ...character.Spell) *character.Character {
	return &character.Character{
		ID:   uuid.New(),
		Name: "Arc",
		Attributes: character.Attributes{
			Vitality: 50, VitalityCurrent: 50,
			Mana: 30, ManaCurrent: 30,
		},
		Spells: spells,
	}
}

func makeTarget(name string, vitality, current int) *character.Character {
	return &character.Character{
		ID:   uuid.New(),
		Name: name,
		Attributes: character.Attributes{
			Vitality: vitality, VitalityCurrent: current,
			Mana: 20, ManaCurrent: 20,
		},
	}
}

func cureSpell(cost, value int) character.Spell {
	return character.Spell{
		Name: "Cure",
		Cost: cost,
		Effect: character.SpellEffect{
			Type:      "restore",
			Attribute: character.PoolVitality,
			Value:     value,
		},
	}
}

func TestCastDeductsManaCost(t *testing.T) {
	caster := makeCaster(cureSpell(4, 24))
	target := makeTarget("Luneth", 60, 30)
	store := newFakeStore(caster, target)
	engine := NewEngine(store, zaptest.NewLogger(t))

	result, err := engine.Cast(context.Background(), caster.ID, 0, []string{target.ID.String()})
	require.NoError(t, err)

	assert.Equal(t, 26, result.Caster.Attributes.ManaCurrent)
}

func TestCastManaFlooredAtZero(t *testing.T) {
	caster := makeCaster(cureSpell(12, 24))
	caster.Attributes.ManaCurrent = 10
	target := makeTarget("Luneth", 60, 30)
	store := newFakeStore(caster, target)
	engine := NewEngine(store, zaptest.NewLogger(t))

	result, err := engine.Cast(context.Background(), caster.ID, 0, []string{target.ID.String()})
	require.NoError(t, err)

	assert.Equal(t, 0, result.Caster.Attributes.ManaCurrent)
}

func TestCastSplitsEffectAcrossTargets(t *testing.T) {
	caster := makeCaster(cureSpell(4, 10))
	t1 := makeTarget("Luneth", 60, 30)
	t2 := makeTarget("Refia", 60, 30)
	t3 := makeTarget("Ingus", 60, 30)
	store := newFakeStore(caster, t1, t2, t3)
	engine := NewEngine(store, zaptest.NewLogger(t))

	// floor(10 / 3) = 3, the remainder is dropped
	result, err := engine.Cast(context.Background(), caster.ID, 0,
		[]string{t1.ID.String(), t2.ID.String(), t3.ID.String()})
	require.NoError(t, err)
	require.Len(t, result.Targets, 3)

	for _, tgt := range result.Targets {
		assert.Equal(t, 33, tgt.Attributes.VitalityCurrent)
	}
}

func TestCastClampsToPoolMaximum(t *testing.T) {
	caster := makeCaster(cureSpell(4, 10))
	target := makeTarget("Luneth", 50, 48)
	store := newFakeStore(caster, target)
	engine := NewEngine(store, zaptest.NewLogger(t))

	result, err := engine.Cast(context.Background(), caster.ID, 0, []string{target.ID.String()})
	require.NoError(t, err)
	require.Len(t, result.Targets, 1)

	assert.Equal(t, 50, result.Targets[0].Attributes.VitalityCurrent)
}

func TestCastMissingTargetsStillCountTowardSplit(t *testing.T) {
	caster := makeCaster(cureSpell(4, 30))
	target := makeTarget("Luneth", 100, 40)
	store := newFakeStore(caster, target)
	engine := NewEngine(store, zaptest.NewLogger(t))

	// Three requested targets, one resolvable: the share stays floor(30/3).
	result, err := engine.Cast(context.Background(), caster.ID, 0,
		[]string{target.ID.String(), uuid.NewString(), "not-a-uuid"})
	require.NoError(t, err)
	require.Len(t, result.Targets, 1)

	assert.Equal(t, 50, result.Targets[0].Attributes.VitalityCurrent)
}

func TestCastEmptyTargetList(t *testing.T) {
	caster := makeCaster(cureSpell(4, 24))
	store := newFakeStore(caster)
	engine := NewEngine(store, zaptest.NewLogger(t))

	_, err := engine.Cast(context.Background(), caster.ID, 0, nil)
	assert.ErrorIs(t, err, ErrNoTargets)
}

func TestCastUnknownCaster(t *testing.T) {
	store := newFakeStore()
	engine := NewEngine(store, zaptest.NewLogger(t))

	_, err := engine.Cast(context.Background(), uuid.New(), 0, []string{uuid.NewString()})
	assert.ErrorIs(t, err, errCharacterNotFound)
}

func TestCastSpellIndexOutOfRange(t *testing.T) {
	caster := makeCaster(cureSpell(4, 24))
	target := makeTarget("Luneth", 60, 30)
	store := newFakeStore(caster, target)
	engine := NewEngine(store, zaptest.NewLogger(t))

	_, err := engine.Cast(context.Background(), caster.ID, 1, []string{target.ID.String()})
	assert.ErrorIs(t, err, ErrInvalidSpell)

	_, err = engine.Cast(context.Background(), caster.ID, -1, []string{target.ID.String()})
	assert.ErrorIs(t, err, ErrInvalidSpell)
}

func TestCastManaRestorationSpell(t *testing.T) {
	aura := character.Spell{
		Name: "Aura",
		Cost: 6,
		Effect: character.SpellEffect{
			Type:      "restore",
			Attribute: character.PoolMana,
			Value:     12,
		},
	}
	caster := makeCaster(aura)
	target := makeTarget("Refia", 60, 30)
	store := newFakeStore(caster, target)
	engine := NewEngine(store, zaptest.NewLogger(t))

	result, err := engine.Cast(context.Background(), caster.ID, 0, []string{target.ID.String()})
	require.NoError(t, err)
	require.Len(t, result.Targets, 1)

	// Mana pool restored, vitality untouched.
	assert.Equal(t, 20, result.Targets[0].Attributes.Mana)
	assert.Equal(t, 20, result.Targets[0].Attributes.ManaCurrent)
	assert.Equal(t, 30, result.Targets[0].Attributes.VitalityCurrent)
}

func TestCastDefaultsToVitalityPool(t *testing.T) {
	spell := character.Spell{
		Name:   "Pray",
		Cost:   0,
		Effect: character.SpellEffect{Type: "restore", Value: 8},
	}
	caster := makeCaster(spell)
	target := makeTarget("Luneth", 60, 30)
	store := newFakeStore(caster, target)
	engine := NewEngine(store, zaptest.NewLogger(t))

	result, err := engine.Cast(context.Background(), caster.ID, 0, []string{target.ID.String()})
	require.NoError(t, err)
	require.Len(t, result.Targets, 1)

	assert.Equal(t, 38, result.Targets[0].Attributes.VitalityCurrent)
}

func TestCastSelfTargetPersistsBothCostAndRestore(t *testing.T) {
	caster := makeCaster(cureSpell(4, 10))
	caster.Attributes.VitalityCurrent = 30
	store := newRowStore(caster)
	engine := NewEngine(store, zaptest.NewLogger(t))

	result, err := engine.Cast(context.Background(), caster.ID, 0, []string{caster.ID.String()})
	require.NoError(t, err)
	require.Len(t, result.Targets, 1)

	// The caster and its target entry are the same character.
	assert.Same(t, result.Caster, result.Targets[0])
	assert.Equal(t, 26, result.Caster.Attributes.ManaCurrent)
	assert.Equal(t, 40, result.Caster.Attributes.VitalityCurrent)

	row, err := store.GetByID(context.Background(), caster.ID)
	require.NoError(t, err)
	assert.Equal(t, 26, row.Attributes.ManaCurrent)
	assert.Equal(t, 40, row.Attributes.VitalityCurrent)
}

func TestCastPartyHealIncludingCaster(t *testing.T) {
	caster := makeCaster(cureSpell(4, 10))
	caster.Attributes.VitalityCurrent = 30
	target := makeTarget("Luneth", 60, 30)
	store := newRowStore(caster, target)
	engine := NewEngine(store, zaptest.NewLogger(t))

	result, err := engine.Cast(context.Background(), caster.ID, 0,
		[]string{target.ID.String(), caster.ID.String()})
	require.NoError(t, err)
	require.Len(t, result.Targets, 2)

	casterRow, err := store.GetByID(context.Background(), caster.ID)
	require.NoError(t, err)
	assert.Equal(t, 26, casterRow.Attributes.ManaCurrent)
	assert.Equal(t, 35, casterRow.Attributes.VitalityCurrent)

	targetRow, err := store.GetByID(context.Background(), target.ID)
	require.NoError(t, err)
	assert.Equal(t, 35, targetRow.Attributes.VitalityCurrent)
}

func TestCastSavesTargetsBeforeCaster(t *testing.T) {
	caster := makeCaster(cureSpell(4, 24))
	target := makeTarget("Luneth", 60, 30)
	store := newFakeStore(caster, target)
	engine := NewEngine(store, zaptest.NewLogger(t))

	_, err := engine.Cast(context.Background(), caster.ID, 0, []string{target.ID.String()})
	require.NoError(t, err)

	require.Len(t, store.saved, 2)
	assert.Equal(t, target.ID, store.saved[0])
	assert.Equal(t, caster.ID, store.saved[1])
}
