package postgres_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crystalfall/rpgserver/internal/game/character"
	"github.com/crystalfall/rpgserver/internal/game/patch"
	"github.com/crystalfall/rpgserver/internal/storage/postgres"
	"github.com/crystalfall/rpgserver/internal/testutil"
)

func makeTestCharacter(name string) *character.Character {
	return &character.Character{
		Name:  name,
		Image: "portrait.png",
		Attributes: character.Attributes{
			Vitality: 50, VitalityCurrent: 50,
			Mana: 20, ManaCurrent: 20,
			Strength: 12, Agility: 10, Energy: 8, Intellect: 6, Spirit: 7,
		},
		Level:     1,
		Formation: character.FormationVanguard,
		Position:  character.Position{X: 1, Y: 2},
		Spells: []character.Spell{{
			Name: "Cure",
			Cost: 4,
			Effect: character.SpellEffect{
				Type: "restore", Attribute: character.PoolVitality, Value: 24,
			},
		}},
	}
}

func TestCharacterRepository_CreateAndGet(t *testing.T) {
	repo := postgres.NewCharacterRepository(testutil.NewPool(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, makeTestCharacter(uniqueName("Luneth")))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, got.Name)
	assert.Equal(t, 50, got.Attributes.Vitality)
	assert.Equal(t, character.FormationVanguard, got.Formation)
	assert.Equal(t, character.Position{X: 1, Y: 2}, got.Position)
	require.Len(t, got.Spells, 1)
	assert.Equal(t, "Cure", got.Spells[0].Name)
	assert.Equal(t, 24, got.Spells[0].Effect.Value)
}

func TestCharacterRepository_GetByIDNotFound(t *testing.T) {
	repo := postgres.NewCharacterRepository(testutil.NewPool(t))
	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, postgres.ErrCharacterNotFound)
}

func TestCharacterRepository_GetByIDsOmitsMissing(t *testing.T) {
	repo := postgres.NewCharacterRepository(testutil.NewPool(t))
	ctx := context.Background()

	c1, err := repo.Create(ctx, makeTestCharacter(uniqueName("Luneth")))
	require.NoError(t, err)
	c2, err := repo.Create(ctx, makeTestCharacter(uniqueName("Arc")))
	require.NoError(t, err)

	got, err := repo.GetByIDs(ctx, []uuid.UUID{c1.ID, uuid.New(), c2.ID})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestCharacterRepository_GetByIDsEmpty(t *testing.T) {
	repo := postgres.NewCharacterRepository(testutil.NewPool(t))
	got, err := repo.GetByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCharacterRepository_Save(t *testing.T) {
	repo := postgres.NewCharacterRepository(testutil.NewPool(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, makeTestCharacter(uniqueName("Luneth")))
	require.NoError(t, err)

	created.Attributes.VitalityCurrent = 31
	created.Equipment.Weapon = uuid.NewString()
	created.Formation = character.FormationRearguard
	require.NoError(t, repo.Save(ctx, created))

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 31, got.Attributes.VitalityCurrent)
	assert.Equal(t, created.Equipment.Weapon, got.Equipment.Weapon)
	assert.Equal(t, character.FormationRearguard, got.Formation)
}

func TestCharacterRepository_SaveNotFound(t *testing.T) {
	repo := postgres.NewCharacterRepository(testutil.NewPool(t))

	c := makeTestCharacter(uniqueName("Ghost"))
	c.ID = uuid.New()
	err := repo.Save(context.Background(), c)
	assert.ErrorIs(t, err, postgres.ErrCharacterNotFound)
}

func TestCharacterRepository_BulkApply(t *testing.T) {
	repo := postgres.NewCharacterRepository(testutil.NewPool(t))
	ctx := context.Background()

	c1, err := repo.Create(ctx, makeTestCharacter(uniqueName("Luneth")))
	require.NoError(t, err)
	c2, err := repo.Create(ctx, makeTestCharacter(uniqueName("Arc")))
	require.NoError(t, err)

	modified, err := repo.BulkApply(ctx, []postgres.CharacterUpdate{
		{ID: c1.ID, Set: map[string]any{
			patch.FieldLevel:           7,
			"attributes.strength":      15,
			patch.FieldVitalityCurrent: 12,
		}},
		{ID: c2.ID, Set: map[string]any{
			patch.FieldFormation: character.FormationRearguard,
			patch.FieldPositionX: 4,
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), modified)

	got1, err := repo.GetByID(ctx, c1.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, got1.Level)
	assert.Equal(t, 15, got1.Attributes.Strength)
	assert.Equal(t, 12, got1.Attributes.VitalityCurrent)
	// Untouched fields survive.
	assert.Equal(t, 50, got1.Attributes.Vitality)

	got2, err := repo.GetByID(ctx, c2.ID)
	require.NoError(t, err)
	assert.Equal(t, character.FormationRearguard, got2.Formation)
	assert.Equal(t, 4, got2.Position.X)
	assert.Equal(t, 2, got2.Position.Y)
}

func TestCharacterRepository_BulkApplyMissingIDIsNoOp(t *testing.T) {
	repo := postgres.NewCharacterRepository(testutil.NewPool(t))
	ctx := context.Background()

	c, err := repo.Create(ctx, makeTestCharacter(uniqueName("Luneth")))
	require.NoError(t, err)

	modified, err := repo.BulkApply(ctx, []postgres.CharacterUpdate{
		{ID: c.ID, Set: map[string]any{patch.FieldLevel: 3}},
		{ID: uuid.New(), Set: map[string]any{patch.FieldLevel: 9}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), modified)
}

func TestCharacterRepository_BulkApplyEquipmentExpands(t *testing.T) {
	repo := postgres.NewCharacterRepository(testutil.NewPool(t))
	ctx := context.Background()

	c, err := repo.Create(ctx, makeTestCharacter(uniqueName("Luneth")))
	require.NoError(t, err)

	eq := character.Equipment{Weapon: uuid.NewString(), Armor: uuid.NewString()}
	modified, err := repo.BulkApply(ctx, []postgres.CharacterUpdate{
		{ID: c.ID, Set: map[string]any{patch.FieldEquipment: eq}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), modified)

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, eq, got.Equipment)
}

func TestCharacterRepository_BulkApplyUnknownField(t *testing.T) {
	repo := postgres.NewCharacterRepository(testutil.NewPool(t))

	_, err := repo.BulkApply(context.Background(), []postgres.CharacterUpdate{
		{ID: uuid.New(), Set: map[string]any{"name": "Renamed"}},
	})
	assert.ErrorIs(t, err, postgres.ErrUnknownField)
}

func TestCharacterRepository_BulkApplyEmptyBatch(t *testing.T) {
	repo := postgres.NewCharacterRepository(testutil.NewPool(t))

	modified, err := repo.BulkApply(context.Background(), []postgres.CharacterUpdate{
		{ID: uuid.New(), Set: map[string]any{}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), modified)
}
