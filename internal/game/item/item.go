// Package item defines the inventory item catalog model. Items are a closed
// tagged variant: the Kind discriminator is fixed at creation and selects
// which sub-spec is legal on the record.
package item

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Kind constants for Item.Kind.
const (
	KindConsumable = "consumable"
	KindWeapon     = "weapon"
	KindArmor      = "armor"
)

// validKinds is the set of valid item kinds.
var validKinds = map[string]bool{
	KindConsumable: true,
	KindWeapon:     true,
	KindArmor:      true,
}

// ValidKind reports whether kind is a recognised item kind.
func ValidKind(kind string) bool {
	return validKinds[kind]
}

// ErrNotFound is returned when an item lookup yields no results.
var ErrNotFound = errors.New("item not found")

// WeaponSpec holds the fields legal only for weapon items.
type WeaponSpec struct {
	AttackPower int `json:"attack_power" yaml:"attack_power"`
}

// ArmorSpec holds the fields legal only for armor items.
type ArmorSpec struct {
	Defense      int `json:"defense" yaml:"defense"`
	MagicDefense int `json:"magic_defense" yaml:"magic_defense"`
}

// ConsumableSpec holds the fields legal only for consumable items.
type ConsumableSpec struct {
	Description string `json:"description" yaml:"description"`
	Effect      Effect `json:"effect" yaml:"effect"`
}

// Item is a catalog entry. Exactly one of Weapon, Armor, or Consumable is
// non-nil, matching Kind.
type Item struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	BuyPrice  int       `json:"buy_price"`
	SellPrice int       `json:"sell_price"`
	Kind      string    `json:"kind"`

	Weapon     *WeaponSpec     `json:"weapon,omitempty"`
	Armor      *ArmorSpec      `json:"armor,omitempty"`
	Consumable *ConsumableSpec `json:"consumable,omitempty"`
}

// Validate checks that the Item satisfies its invariants: a valid kind,
// non-negative quantities and prices, and exactly the sub-spec legal for
// its kind.
//
// Postcondition: returns nil iff the item is well-formed.
func (i *Item) Validate() error {
	var errs []error
	if i.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if i.Quantity < 0 {
		errs = append(errs, errors.New("quantity must be >= 0"))
	}
	if i.BuyPrice < 0 || i.SellPrice < 0 {
		errs = append(errs, errors.New("prices must be >= 0"))
	}
	if !validKinds[i.Kind] {
		errs = append(errs, fmt.Errorf("kind must be one of consumable, weapon, armor; got %q", i.Kind))
	}

	specs := 0
	if i.Weapon != nil {
		specs++
	}
	if i.Armor != nil {
		specs++
	}
	if i.Consumable != nil {
		specs++
	}
	if specs != 1 {
		errs = append(errs, fmt.Errorf("exactly one kind spec must be set, got %d", specs))
	} else {
		switch i.Kind {
		case KindWeapon:
			if i.Weapon == nil {
				errs = append(errs, errors.New("weapon spec is required when kind is weapon"))
			}
		case KindArmor:
			if i.Armor == nil {
				errs = append(errs, errors.New("armor spec is required when kind is armor"))
			}
		case KindConsumable:
			if i.Consumable == nil {
				errs = append(errs, errors.New("consumable spec is required when kind is consumable"))
			} else if err := i.Consumable.Effect.Validate(); err != nil {
				errs = append(errs, fmt.Errorf("effect: %w", err))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("item validation failed: %v", errs)
	}
	return nil
}
