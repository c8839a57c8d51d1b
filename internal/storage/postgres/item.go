package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crystalfall/rpgserver/internal/game/item"
)

const itemColumns = `
	id, name, quantity, buy_price, sell_price, kind,
	attack_power, defense, magic_defense,
	description, effect_type, effect_attribute, effect_value, effect_percentage`

// ItemRepository provides read access to the inventory item catalog.
type ItemRepository struct {
	db *pgxpool.Pool
}

// NewItemRepository creates an ItemRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewItemRepository(db *pgxpool.Pool) *ItemRepository {
	return &ItemRepository{db: db}
}

// List returns the full item catalog ordered by name.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *ItemRepository) List(ctx context.Context) ([]*item.Item, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+itemColumns+` FROM items ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	items := make([]*item.Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// GetByID retrieves a catalog entry by its primary key.
//
// Postcondition: Returns the Item or item.ErrNotFound.
func (r *ItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*item.Item, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = $1`, id.String())
	it, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, item.ErrNotFound
		}
		return nil, err
	}
	return it, nil
}

// ItemByID implements the attribute resolver's catalog lookup. A malformed
// id behaves like a dangling reference and reports item.ErrNotFound, so
// equipment desync degrades instead of erroring.
func (r *ItemRepository) ItemByID(ctx context.Context, id string) (*item.Item, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, item.ErrNotFound
	}
	return r.GetByID(ctx, parsed)
}

// Create inserts a new catalog entry. A zero ID is replaced with a fresh
// one. Used by the seed tooling; request handlers never create items.
//
// Precondition: it must pass item.Validate.
func (r *ItemRepository) Create(ctx context.Context, it *item.Item) (*item.Item, error) {
	if err := it.Validate(); err != nil {
		return nil, err
	}
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}

	var (
		attackPower, defense, magicDefense       *int
		description, effectType, effectAttribute *string
		effectValue, effectPercentage            *int
	)
	switch it.Kind {
	case item.KindWeapon:
		attackPower = &it.Weapon.AttackPower
	case item.KindArmor:
		defense = &it.Armor.Defense
		magicDefense = &it.Armor.MagicDefense
	case item.KindConsumable:
		description = &it.Consumable.Description
		eff := it.Consumable.Effect
		effectType = &eff.Type
		effectAttribute = &eff.Attribute
		if v, ok := eff.Value(); ok {
			effectValue = &v
		}
		if p, ok := eff.Percentage(); ok {
			effectPercentage = &p
		}
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO items
			(id, name, quantity, buy_price, sell_price, kind,
			 attack_power, defense, magic_defense,
			 description, effect_type, effect_attribute, effect_value, effect_percentage)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		RETURNING `+itemColumns,
		it.ID.String(), it.Name, it.Quantity, it.BuyPrice, it.SellPrice, it.Kind,
		attackPower, defense, magicDefense,
		description, effectType, effectAttribute, effectValue, effectPercentage,
	)
	out, err := scanItem(row)
	if err != nil {
		return nil, fmt.Errorf("inserting item: %w", err)
	}
	return out, nil
}

// scanItem reassembles the tagged-variant Item from the discriminator
// column and its kind-specific nullable columns.
func scanItem(row pgx.Row) (*item.Item, error) {
	var it item.Item
	var (
		attackPower, defense, magicDefense       *int
		description, effectType, effectAttribute *string
		effectValue, effectPercentage            *int
	)
	if err := row.Scan(
		&it.ID, &it.Name, &it.Quantity, &it.BuyPrice, &it.SellPrice, &it.Kind,
		&attackPower, &defense, &magicDefense,
		&description, &effectType, &effectAttribute, &effectValue, &effectPercentage,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning item row: %w", err)
	}

	switch it.Kind {
	case item.KindWeapon:
		spec := item.WeaponSpec{}
		if attackPower != nil {
			spec.AttackPower = *attackPower
		}
		it.Weapon = &spec
	case item.KindArmor:
		spec := item.ArmorSpec{}
		if defense != nil {
			spec.Defense = *defense
		}
		if magicDefense != nil {
			spec.MagicDefense = *magicDefense
		}
		it.Armor = &spec
	case item.KindConsumable:
		spec := item.ConsumableSpec{}
		if description != nil {
			spec.Description = *description
		}
		eff, err := item.NewEffect(deref(effectType), deref(effectAttribute), effectValue, effectPercentage)
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", it.ID, err)
		}
		spec.Effect = eff
		it.Consumable = &spec
	default:
		return nil, fmt.Errorf("item %s has unknown kind %q", it.ID, it.Kind)
	}
	return &it, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
