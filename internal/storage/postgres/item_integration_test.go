package postgres_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crystalfall/rpgserver/internal/game/item"
	"github.com/crystalfall/rpgserver/internal/storage/postgres"
	"github.com/crystalfall/rpgserver/internal/testutil"
)

func TestItemRepository_CreateWeapon(t *testing.T) {
	repo := postgres.NewItemRepository(testutil.NewPool(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, &item.Item{
		Name:      uniqueName("Longsword"),
		Quantity:  1,
		BuyPrice:  300,
		SellPrice: 150,
		Kind:      item.KindWeapon,
		Weapon:    &item.WeaponSpec{AttackPower: 14},
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Weapon)
	assert.Equal(t, 14, got.Weapon.AttackPower)
	assert.Nil(t, got.Armor)
	assert.Nil(t, got.Consumable)
}

func TestItemRepository_CreateArmor(t *testing.T) {
	repo := postgres.NewItemRepository(testutil.NewPool(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, &item.Item{
		Name:  uniqueName("Leather Vest"),
		Kind:  item.KindArmor,
		Armor: &item.ArmorSpec{Defense: 8, MagicDefense: 3},
	})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Armor)
	assert.Equal(t, 8, got.Armor.Defense)
	assert.Equal(t, 3, got.Armor.MagicDefense)
}

func TestItemRepository_CreateConsumableAbsolute(t *testing.T) {
	repo := postgres.NewItemRepository(testutil.NewPool(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, &item.Item{
		Name: uniqueName("Potion"),
		Kind: item.KindConsumable,
		Consumable: &item.ConsumableSpec{
			Description: "Restores vitality.",
			Effect:      item.AbsoluteEffect("restore", "vitality", 30),
		},
	})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Consumable)

	v, ok := got.Consumable.Effect.Value()
	assert.True(t, ok)
	assert.Equal(t, 30, v)
	_, ok = got.Consumable.Effect.Percentage()
	assert.False(t, ok)
}

func TestItemRepository_CreateConsumableRelative(t *testing.T) {
	repo := postgres.NewItemRepository(testutil.NewPool(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, &item.Item{
		Name: uniqueName("Ether"),
		Kind: item.KindConsumable,
		Consumable: &item.ConsumableSpec{
			Description: "Restores mana.",
			Effect:      item.RelativeEffect("restore", "mana", 25),
		},
	})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Consumable)

	p, ok := got.Consumable.Effect.Percentage()
	assert.True(t, ok)
	assert.Equal(t, 25, p)
}

func TestItemRepository_CreateRejectsInvalid(t *testing.T) {
	repo := postgres.NewItemRepository(testutil.NewPool(t))

	_, err := repo.Create(context.Background(), &item.Item{
		Name: uniqueName("Broken"),
		Kind: item.KindWeapon,
		// No weapon spec.
	})
	assert.Error(t, err)
}

func TestItemRepository_GetByIDNotFound(t *testing.T) {
	repo := postgres.NewItemRepository(testutil.NewPool(t))
	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, item.ErrNotFound)
}

func TestItemRepository_ItemByIDMalformed(t *testing.T) {
	repo := postgres.NewItemRepository(testutil.NewPool(t))
	_, err := repo.ItemByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, item.ErrNotFound)
}
