// Package stats recomputes a character's derived combat attributes from its
// equipment slots.
package stats

import (
	"context"
	"errors"
	"fmt"

	"github.com/crystalfall/rpgserver/internal/game/character"
	"github.com/crystalfall/rpgserver/internal/game/item"
)

// Catalog is the item lookup the resolver reads from. Implementations
// return item.ErrNotFound when the id does not resolve to a catalog entry.
type Catalog interface {
	ItemByID(ctx context.Context, id string) (*item.Item, error)
}

// Resolve overwrites c's attack, defense, and magic defense from the
// currently equipped weapon and armor slots. The accessory slot is
// persisted but contributes no derived attribute.
//
// An empty slot, a dangling reference, or a reference to an item of the
// wrong kind degrades to a zero contribution rather than an error:
// equipment desync must never block a stat recompute. Only a catalog
// failure is surfaced.
//
// The function is pure given the character and catalog state: resolving
// twice produces identical attributes, and the caller is responsible for
// persisting the result.
func Resolve(ctx context.Context, c *character.Character, catalog Catalog) error {
	attack, err := weaponAttack(ctx, c.Equipment.Weapon, catalog)
	if err != nil {
		return err
	}
	defense, magicDefense, err := armorDefenses(ctx, c.Equipment.Armor, catalog)
	if err != nil {
		return err
	}

	c.Attributes.Attack = attack
	c.Attributes.Defense = defense
	c.Attributes.MagicDefense = magicDefense
	return nil
}

func weaponAttack(ctx context.Context, itemID string, catalog Catalog) (int, error) {
	if itemID == "" {
		return 0, nil
	}
	it, err := catalog.ItemByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, item.ErrNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("resolving weapon slot: %w", err)
	}
	if it.Kind != item.KindWeapon || it.Weapon == nil {
		return 0, nil
	}
	return it.Weapon.AttackPower, nil
}

func armorDefenses(ctx context.Context, itemID string, catalog Catalog) (defense, magicDefense int, err error) {
	if itemID == "" {
		return 0, 0, nil
	}
	it, err := catalog.ItemByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, item.ErrNotFound) {
			return 0, 0, nil
		}
		return 0, 0, fmt.Errorf("resolving armor slot: %w", err)
	}
	if it.Kind != item.KindArmor || it.Armor == nil {
		return 0, 0, nil
	}
	return it.Armor.Defense, it.Armor.MagicDefense, nil
}
