package postgres_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crystalfall/rpgserver/internal/game/monster"
	"github.com/crystalfall/rpgserver/internal/storage/postgres"
	"github.com/crystalfall/rpgserver/internal/testutil"
)

func TestMonsterRepository_CreateAndList(t *testing.T) {
	repo := postgres.NewMonsterRepository(testutil.NewPool(t))
	ctx := context.Background()

	name := uniqueName("Goblin")
	created, err := repo.Create(ctx, &monster.Monster{
		Name:             name,
		Image:            "goblin.png",
		Vitality:         24,
		Level:            1,
		Attack:           8,
		Defense:          3,
		ExperienceReward: 12,
		CurrencyReward:   8,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)

	monsters, err := repo.List(ctx)
	require.NoError(t, err)

	var found *monster.Monster
	for _, m := range monsters {
		if m.ID == created.ID {
			found = m
			break
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, name, found.Name)
	assert.Equal(t, 24, found.Vitality)
	assert.Equal(t, 12, found.ExperienceReward)
}
