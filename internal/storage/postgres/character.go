package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crystalfall/rpgserver/internal/game/character"
)

// ErrCharacterNotFound is returned when a character lookup yields no results.
var ErrCharacterNotFound = errors.New("character not found")

// ErrUnknownField is returned when a bulk update names a field path that
// does not map to a character column.
var ErrUnknownField = errors.New("unknown character field")

const characterColumns = `
	id, name, image,
	vitality, vitality_current, mana, mana_current,
	strength, agility, energy, intellect, spirit,
	attack, defense, magic_defense, attack_extra,
	weapon_id, armor_id, accessory_id,
	experience_total, level, formation,
	position_x, position_y, spells,
	created_at, updated_at`

// bulkColumns maps patch field paths to character columns. Only these
// paths are settable through BulkApply; the equipment object is handled
// separately because it expands to three columns.
var bulkColumns = map[string]string{
	"level":                       "level",
	"experience_total":            "experience_total",
	"formation":                   "formation",
	"attributes.vitality":         "vitality",
	"attributes.vitality_current": "vitality_current",
	"attributes.mana":             "mana",
	"attributes.mana_current":     "mana_current",
	"attributes.strength":         "strength",
	"attributes.agility":          "agility",
	"attributes.energy":           "energy",
	"attributes.intellect":        "intellect",
	"attributes.spirit":           "spirit",
	"attributes.attack":           "attack",
	"attributes.defense":          "defense",
	"attributes.magic_defense":    "magic_defense",
	"attributes.attack_extra":     "attack_extra",
	"position.x":                  "position_x",
	"position.y":                  "position_y",
}

// CharacterUpdate is one per-document field-set operation for BulkApply,
// keyed by the target character id.
type CharacterUpdate struct {
	ID  uuid.UUID
	Set map[string]any
}

// CharacterRepository provides character persistence operations.
type CharacterRepository struct {
	db *pgxpool.Pool
}

// NewCharacterRepository creates a CharacterRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewCharacterRepository(db *pgxpool.Pool) *CharacterRepository {
	return &CharacterRepository{db: db}
}

// List returns all characters ordered by creation time.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *CharacterRepository) List(ctx context.Context) ([]*character.Character, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+characterColumns+` FROM characters ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing characters: %w", err)
	}
	defer rows.Close()

	chars := make([]*character.Character, 0)
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, err
		}
		chars = append(chars, c)
	}
	return chars, rows.Err()
}

// GetByID retrieves a character by its primary key.
//
// Postcondition: Returns the Character or ErrCharacterNotFound.
func (r *CharacterRepository) GetByID(ctx context.Context, id uuid.UUID) (*character.Character, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+characterColumns+` FROM characters WHERE id = $1`, id.String())
	c, err := scanCharacter(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCharacterNotFound
		}
		return nil, err
	}
	return c, nil
}

// GetByIDs retrieves all characters whose ids appear in ids, in creation
// order. Ids that do not resolve are silently omitted from the result.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *CharacterRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*character.Character, error) {
	if len(ids) == 0 {
		return []*character.Character{}, nil
	}
	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = id.String()
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+characterColumns+` FROM characters
		 WHERE id = ANY($1::uuid[]) ORDER BY created_at ASC`, raw)
	if err != nil {
		return nil, fmt.Errorf("loading characters by id: %w", err)
	}
	defer rows.Close()

	chars := make([]*character.Character, 0, len(ids))
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, err
		}
		chars = append(chars, c)
	}
	return chars, rows.Err()
}

// Create inserts a new character. A zero ID is replaced with a fresh one.
//
// Postcondition: Returns the stored character with ID and timestamps set.
func (r *CharacterRepository) Create(ctx context.Context, c *character.Character) (*character.Character, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	spells, err := json.Marshal(c.Spells)
	if err != nil {
		return nil, fmt.Errorf("encoding spells: %w", err)
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO characters
			(id, name, image,
			 vitality, vitality_current, mana, mana_current,
			 strength, agility, energy, intellect, spirit,
			 attack, defense, magic_defense, attack_extra,
			 weapon_id, armor_id, accessory_id,
			 experience_total, level, formation,
			 position_x, position_y, spells)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,
		        $17,$18,$19,$20,$21,$22,$23,$24,$25)
		RETURNING `+characterColumns,
		c.ID.String(), c.Name, c.Image,
		c.Attributes.Vitality, c.Attributes.VitalityCurrent,
		c.Attributes.Mana, c.Attributes.ManaCurrent,
		c.Attributes.Strength, c.Attributes.Agility, c.Attributes.Energy,
		c.Attributes.Intellect, c.Attributes.Spirit,
		c.Attributes.Attack, c.Attributes.Defense,
		c.Attributes.MagicDefense, c.Attributes.AttackExtra,
		c.Equipment.Weapon, c.Equipment.Armor, c.Equipment.Accessory,
		c.ExperienceTotal, c.Level, c.Formation,
		c.Position.X, c.Position.Y, spells,
	)
	out, err := scanCharacter(row)
	if err != nil {
		return nil, fmt.Errorf("inserting character: %w", err)
	}
	return out, nil
}

// Save persists the full character document.
//
// Postcondition: Returns nil on success, ErrCharacterNotFound if no row
// was updated.
func (r *CharacterRepository) Save(ctx context.Context, c *character.Character) error {
	spells, err := json.Marshal(c.Spells)
	if err != nil {
		return fmt.Errorf("encoding spells: %w", err)
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE characters SET
			name = $2, image = $3,
			vitality = $4, vitality_current = $5, mana = $6, mana_current = $7,
			strength = $8, agility = $9, energy = $10, intellect = $11, spirit = $12,
			attack = $13, defense = $14, magic_defense = $15, attack_extra = $16,
			weapon_id = $17, armor_id = $18, accessory_id = $19,
			experience_total = $20, level = $21, formation = $22,
			position_x = $23, position_y = $24, spells = $25,
			updated_at = NOW()
		WHERE id = $1`,
		c.ID.String(), c.Name, c.Image,
		c.Attributes.Vitality, c.Attributes.VitalityCurrent,
		c.Attributes.Mana, c.Attributes.ManaCurrent,
		c.Attributes.Strength, c.Attributes.Agility, c.Attributes.Energy,
		c.Attributes.Intellect, c.Attributes.Spirit,
		c.Attributes.Attack, c.Attributes.Defense,
		c.Attributes.MagicDefense, c.Attributes.AttackExtra,
		c.Equipment.Weapon, c.Equipment.Armor, c.Equipment.Accessory,
		c.ExperienceTotal, c.Level, c.Formation,
		c.Position.X, c.Position.Y, spells,
	)
	if err != nil {
		return fmt.Errorf("saving character: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCharacterNotFound
	}
	return nil
}

// BulkApply issues one batched write of per-character field-set operations
// and returns the number of rows updated. Each character's update is
// atomic; an update whose id does not resolve is a silent no-op and does
// not abort the rest of the batch.
//
// Postcondition: Returns ErrUnknownField (before any write) when a set
// names an unmapped field path.
func (r *CharacterRepository) BulkApply(ctx context.Context, updates []CharacterUpdate) (int64, error) {
	batch := &pgx.Batch{}
	for _, u := range updates {
		if len(u.Set) == 0 {
			continue
		}
		sql, args, err := buildCharacterUpdate(u)
		if err != nil {
			return 0, err
		}
		batch.Queue(sql, args...)
	}
	if batch.Len() == 0 {
		return 0, nil
	}

	br := r.db.SendBatch(ctx, batch)
	defer br.Close()

	var modified int64
	for i := 0; i < batch.Len(); i++ {
		tag, err := br.Exec()
		if err != nil {
			return modified, fmt.Errorf("applying bulk update: %w", err)
		}
		modified += tag.RowsAffected()
	}
	return modified, nil
}

// buildCharacterUpdate renders one field-set operation as an UPDATE
// statement. Column names come from the bulkColumns whitelist, never from
// input, so the only interpolated text is trusted.
func buildCharacterUpdate(u CharacterUpdate) (string, []any, error) {
	assignments := make([]string, 0, len(u.Set)+2)
	args := make([]any, 0, len(u.Set)+3)

	for path, value := range u.Set {
		if path == "equipment" {
			eq, ok := value.(character.Equipment)
			if !ok {
				return "", nil, fmt.Errorf("%w: equipment value has type %T", ErrUnknownField, value)
			}
			args = append(args, eq.Weapon, eq.Armor, eq.Accessory)
			assignments = append(assignments,
				fmt.Sprintf("weapon_id = $%d", len(args)-2),
				fmt.Sprintf("armor_id = $%d", len(args)-1),
				fmt.Sprintf("accessory_id = $%d", len(args)),
			)
			continue
		}
		col, ok := bulkColumns[path]
		if !ok {
			return "", nil, fmt.Errorf("%w: %q", ErrUnknownField, path)
		}
		args = append(args, value)
		assignments = append(assignments, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	args = append(args, u.ID.String())
	sql := fmt.Sprintf(
		"UPDATE characters SET %s, updated_at = NOW() WHERE id = $%d",
		strings.Join(assignments, ", "), len(args),
	)
	return sql, args, nil
}

func scanCharacter(row pgx.Row) (*character.Character, error) {
	var c character.Character
	var spells []byte
	if err := row.Scan(
		&c.ID, &c.Name, &c.Image,
		&c.Attributes.Vitality, &c.Attributes.VitalityCurrent,
		&c.Attributes.Mana, &c.Attributes.ManaCurrent,
		&c.Attributes.Strength, &c.Attributes.Agility, &c.Attributes.Energy,
		&c.Attributes.Intellect, &c.Attributes.Spirit,
		&c.Attributes.Attack, &c.Attributes.Defense,
		&c.Attributes.MagicDefense, &c.Attributes.AttackExtra,
		&c.Equipment.Weapon, &c.Equipment.Armor, &c.Equipment.Accessory,
		&c.ExperienceTotal, &c.Level, &c.Formation,
		&c.Position.X, &c.Position.Y, &spells,
		&c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning character row: %w", err)
	}
	if len(spells) > 0 {
		if err := json.Unmarshal(spells, &c.Spells); err != nil {
			return nil, fmt.Errorf("decoding spells: %w", err)
		}
	}
	return &c, nil
}
