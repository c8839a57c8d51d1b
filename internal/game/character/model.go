// Package character defines the player character domain model.
package character

import (
	"time"

	"github.com/google/uuid"
)

// Formation constants for Character.Formation.
const (
	FormationVanguard  = "vanguard"
	FormationRearguard = "rearguard"
)

// ValidFormation reports whether formation is a recognised battle row.
func ValidFormation(formation string) bool {
	return formation == FormationVanguard || formation == FormationRearguard
}

// Pool attribute names understood by Attributes.Pool and spell effects.
const (
	PoolVitality = "vitality"
	PoolMana     = "mana"
)

// Attributes holds the fixed set of named numeric stats.
//
// Attack, Defense, and MagicDefense are derived: they always equal the value
// recomputed from the currently equipped items and are never hand-set
// independently of an equip operation.
type Attributes struct {
	Vitality        int `json:"vitality" yaml:"vitality"`
	VitalityCurrent int `json:"vitality_current" yaml:"vitality_current"`
	Mana            int `json:"mana" yaml:"mana"`
	ManaCurrent     int `json:"mana_current" yaml:"mana_current"`
	Strength        int `json:"strength" yaml:"strength"`
	Agility         int `json:"agility" yaml:"agility"`
	Energy          int `json:"energy" yaml:"energy"`
	Intellect       int `json:"intellect" yaml:"intellect"`
	Spirit          int `json:"spirit" yaml:"spirit"`
	Attack          int `json:"attack" yaml:"attack"`
	Defense         int `json:"defense" yaml:"defense"`
	MagicDefense    int `json:"magic_defense" yaml:"magic_defense"`
	AttackExtra     int `json:"attack_extra" yaml:"attack_extra"`
}

// Pool returns the current and maximum values of the named resource pool.
//
// Postcondition: ok is false when attr does not name a current/max pool.
func (a *Attributes) Pool(attr string) (current, max int, ok bool) {
	switch attr {
	case PoolVitality:
		return a.VitalityCurrent, a.Vitality, true
	case PoolMana:
		return a.ManaCurrent, a.Mana, true
	}
	return 0, 0, false
}

// SetPoolCurrent sets the current value of the named pool, clamped to
// [0, max].
//
// Postcondition: returns false when attr does not name a pool; the
// attributes are unchanged in that case.
func (a *Attributes) SetPoolCurrent(attr string, value int) bool {
	switch attr {
	case PoolVitality:
		a.VitalityCurrent = clamp(value, a.Vitality)
	case PoolMana:
		a.ManaCurrent = clamp(value, a.Mana)
	default:
		return false
	}
	return true
}

// ClampPools restores the current <= max invariant on both resource pools.
// Values are clamped, never rejected.
func (a *Attributes) ClampPools() {
	a.VitalityCurrent = clamp(a.VitalityCurrent, a.Vitality)
	a.ManaCurrent = clamp(a.ManaCurrent, a.Mana)
}

func clamp(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

// Equipment holds the three named equipment slots. Each slot holds an item
// identifier with no ownership; an empty string means the slot is empty.
// References are weak: a dangling id resolves to zero stat contribution.
type Equipment struct {
	Weapon    string `json:"weapon" yaml:"weapon"`
	Armor     string `json:"armor" yaml:"armor"`
	Accessory string `json:"accessory" yaml:"accessory"`
}

// Slot name constants for equip operations.
const (
	SlotWeapon    = "weapon"
	SlotArmor     = "armor"
	SlotAccessory = "accessory"
)

// ValidSlot reports whether slot is a recognised equipment slot name.
func ValidSlot(slot string) bool {
	switch slot {
	case SlotWeapon, SlotArmor, SlotAccessory:
		return true
	}
	return false
}

// SetSlot assigns itemID to the named slot. An empty itemID unequips.
//
// Postcondition: returns false when slot is not a recognised slot name; the
// equipment is unchanged in that case.
func (e *Equipment) SetSlot(slot, itemID string) bool {
	switch slot {
	case SlotWeapon:
		e.Weapon = itemID
	case SlotArmor:
		e.Armor = itemID
	case SlotAccessory:
		e.Accessory = itemID
	default:
		return false
	}
	return true
}

// Position is a 2D integer map coordinate.
type Position struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// SpellEffect describes what a spell does when it lands. Attribute selects
// the resource pool the effect magnitude is applied to; an empty Attribute
// defaults to vitality (the healing path).
type SpellEffect struct {
	Type      string `json:"type" yaml:"type"`
	Attribute string `json:"attribute,omitempty" yaml:"attribute,omitempty"`
	Value     int    `json:"value" yaml:"value"`
}

// Spell is a castable ability embedded in a character.
type Spell struct {
	Name        string      `json:"name" yaml:"name"`
	Description string      `json:"description" yaml:"description"`
	Cost        int         `json:"cost" yaml:"cost"`
	Effect      SpellEffect `json:"effect" yaml:"effect"`
}

// Character represents a party member's persistent state.
//
// ID is set by the persistence layer; characters are created out of band by
// the seed tooling and are never created or deleted by request handlers.
type Character struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Image string    `json:"image"`

	Attributes      Attributes `json:"attributes"`
	Equipment       Equipment  `json:"equipment"`
	ExperienceTotal int        `json:"experience_total"`
	Level           int        `json:"level"`
	Formation       string     `json:"formation"`
	Position        Position   `json:"position"`
	Spells          []Spell    `json:"spells"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
