// Package patch defines sparse per-character update payloads and flattens
// them into per-field set operations for the bulk write path.
//
// A field is modified iff it is present (non-null) in the patch; absent
// fields leave the stored document untouched. Nested attributes flatten to
// individual field paths so that updating one stat never disturbs another.
package patch

import "github.com/crystalfall/rpgserver/internal/game/character"

// Attributes is the generic numeric-attribute subset of a patch. The two
// current pools are deliberately absent: they are accepted only through the
// top-level vitality_current / mana_current shorthand keys, mirroring how
// they are tracked separately from their maximums.
type Attributes struct {
	Vitality     *int `json:"vitality"`
	Mana         *int `json:"mana"`
	Strength     *int `json:"strength"`
	Agility      *int `json:"agility"`
	Energy       *int `json:"energy"`
	Intellect    *int `json:"intellect"`
	Spirit       *int `json:"spirit"`
	Attack       *int `json:"attack"`
	Defense      *int `json:"defense"`
	MagicDefense *int `json:"magic_defense"`
	AttackExtra  *int `json:"attack_extra"`
}

// Position is the coordinate subset of a patch. X and Y apply independently.
type Position struct {
	X *int `json:"x"`
	Y *int `json:"y"`
}

// Character is one partial update naming its target by id. Every other
// field is optional.
type Character struct {
	ID              string               `json:"id"`
	Level           *int                 `json:"level"`
	ExperienceTotal *int                 `json:"experience_total"`
	VitalityCurrent *int                 `json:"vitality_current"`
	ManaCurrent     *int                 `json:"mana_current"`
	Formation       *string              `json:"formation"`
	Equipment       *character.Equipment `json:"equipment"`
	Attributes      *Attributes          `json:"attributes"`
	Position        *Position            `json:"position"`
}

// Field paths produced by Changes. The storage layer maps each path to a
// column; Equipment is the one object-valued entry and replaces all three
// slots at once.
const (
	FieldLevel           = "level"
	FieldExperienceTotal = "experience_total"
	FieldFormation       = "formation"
	FieldVitalityCurrent = "attributes.vitality_current"
	FieldManaCurrent     = "attributes.mana_current"
	FieldEquipment       = "equipment"
	FieldPositionX       = "position.x"
	FieldPositionY       = "position.y"
)

// Changes flattens the patch into per-field set operations keyed by field
// path. Absent fields produce no entry.
//
// Postcondition: the returned map is non-nil and contains only fields
// present in the patch.
func (p Character) Changes() map[string]any {
	set := make(map[string]any)

	if p.Level != nil {
		set[FieldLevel] = *p.Level
	}
	if p.ExperienceTotal != nil {
		set[FieldExperienceTotal] = *p.ExperienceTotal
	}
	if p.VitalityCurrent != nil {
		set[FieldVitalityCurrent] = *p.VitalityCurrent
	}
	if p.ManaCurrent != nil {
		set[FieldManaCurrent] = *p.ManaCurrent
	}
	if p.Formation != nil {
		set[FieldFormation] = *p.Formation
	}
	if p.Equipment != nil {
		set[FieldEquipment] = *p.Equipment
	}

	if p.Attributes != nil {
		for path, v := range map[string]*int{
			"attributes.vitality":      p.Attributes.Vitality,
			"attributes.mana":          p.Attributes.Mana,
			"attributes.strength":      p.Attributes.Strength,
			"attributes.agility":       p.Attributes.Agility,
			"attributes.energy":        p.Attributes.Energy,
			"attributes.intellect":     p.Attributes.Intellect,
			"attributes.spirit":        p.Attributes.Spirit,
			"attributes.attack":        p.Attributes.Attack,
			"attributes.defense":       p.Attributes.Defense,
			"attributes.magic_defense": p.Attributes.MagicDefense,
			"attributes.attack_extra":  p.Attributes.AttackExtra,
		} {
			if v != nil {
				set[path] = *v
			}
		}
	}

	if p.Position != nil {
		if p.Position.X != nil {
			set[FieldPositionX] = *p.Position.X
		}
		if p.Position.Y != nil {
			set[FieldPositionY] = *p.Position.Y
		}
	}

	return set
}
