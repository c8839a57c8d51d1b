package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crystalfall/rpgserver/internal/game/monster"
)

const monsterColumns = `
	id, name, image, vitality, level,
	strength, agility, energy, intellect, spirit,
	attack, defense, magic_defense, attack_extra,
	experience_reward, currency_reward`

// MonsterRepository provides read access to the bestiary.
type MonsterRepository struct {
	db *pgxpool.Pool
}

// NewMonsterRepository creates a MonsterRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewMonsterRepository(db *pgxpool.Pool) *MonsterRepository {
	return &MonsterRepository{db: db}
}

// List returns all monsters ordered by level then name.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *MonsterRepository) List(ctx context.Context) ([]*monster.Monster, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+monsterColumns+` FROM monsters ORDER BY level ASC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing monsters: %w", err)
	}
	defer rows.Close()

	monsters := make([]*monster.Monster, 0)
	for rows.Next() {
		var m monster.Monster
		if err := rows.Scan(
			&m.ID, &m.Name, &m.Image, &m.Vitality, &m.Level,
			&m.Strength, &m.Agility, &m.Energy, &m.Intellect, &m.Spirit,
			&m.Attack, &m.Defense, &m.MagicDefense, &m.AttackExtra,
			&m.ExperienceReward, &m.CurrencyReward,
		); err != nil {
			return nil, fmt.Errorf("scanning monster row: %w", err)
		}
		monsters = append(monsters, &m)
	}
	return monsters, rows.Err()
}

// Create inserts a new bestiary entry. A zero ID is replaced with a fresh
// one. Used by the seed tooling.
func (r *MonsterRepository) Create(ctx context.Context, m *monster.Monster) (*monster.Monster, error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO monsters
			(id, name, image, vitality, level,
			 strength, agility, energy, intellect, spirit,
			 attack, defense, magic_defense, attack_extra,
			 experience_reward, currency_reward)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		m.ID.String(), m.Name, m.Image, m.Vitality, m.Level,
		m.Strength, m.Agility, m.Energy, m.Intellect, m.Spirit,
		m.Attack, m.Defense, m.MagicDefense, m.AttackExtra,
		m.ExperienceReward, m.CurrencyReward,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting monster: %w", err)
	}
	return m, nil
}
