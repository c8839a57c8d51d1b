package item

import (
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Effect describes what a consumable does to a character attribute. The
// magnitude is a sum of two cases: an absolute value or a relative
// percentage. The constructors make the illegal both/neither state
// unrepresentable; values decoded from the wire or the database go through
// NewEffect, which enforces the same one-of rule.
type Effect struct {
	// Type is a free-form tag describing the effect, e.g. "restore".
	Type string
	// Attribute names the character attribute the effect touches.
	Attribute string

	value      *int
	percentage *int
}

// AbsoluteEffect returns an Effect with a fixed magnitude.
func AbsoluteEffect(effectType, attribute string, value int) Effect {
	return Effect{Type: effectType, Attribute: attribute, value: &value}
}

// RelativeEffect returns an Effect with a percentage magnitude.
func RelativeEffect(effectType, attribute string, percentage int) Effect {
	return Effect{Type: effectType, Attribute: attribute, percentage: &percentage}
}

// NewEffect builds an Effect from optional magnitude fields.
//
// Postcondition: returns an error unless exactly one of value and
// percentage is non-nil.
func NewEffect(effectType, attribute string, value, percentage *int) (Effect, error) {
	if (value == nil) == (percentage == nil) {
		return Effect{}, errors.New("effect must carry either a value or a percentage, not both or neither")
	}
	if effectType == "" {
		return Effect{}, errors.New("effect type must not be empty")
	}
	if attribute == "" {
		return Effect{}, errors.New("effect attribute must not be empty")
	}
	e := Effect{Type: effectType, Attribute: attribute}
	if value != nil {
		v := *value
		e.value = &v
	} else {
		p := *percentage
		e.percentage = &p
	}
	return e, nil
}

// Value returns the absolute magnitude and whether the effect is absolute.
func (e Effect) Value() (int, bool) {
	if e.value == nil {
		return 0, false
	}
	return *e.value, true
}

// Percentage returns the relative magnitude and whether the effect is relative.
func (e Effect) Percentage() (int, bool) {
	if e.percentage == nil {
		return 0, false
	}
	return *e.percentage, true
}

// Validate checks the construction-time invariant. An Effect built through
// the constructors always passes; the zero Effect does not.
func (e Effect) Validate() error {
	if (e.value == nil) == (e.percentage == nil) {
		return errors.New("effect must carry either a value or a percentage, not both or neither")
	}
	if e.Type == "" {
		return errors.New("effect type must not be empty")
	}
	if e.Attribute == "" {
		return errors.New("effect attribute must not be empty")
	}
	return nil
}

type effectJSON struct {
	Type       string `json:"effect_type" yaml:"effect_type"`
	Attribute  string `json:"attribute" yaml:"attribute"`
	Value      *int   `json:"value,omitempty" yaml:"value,omitempty"`
	Percentage *int   `json:"percentage,omitempty" yaml:"percentage,omitempty"`
}

// MarshalJSON emits the effect with whichever magnitude field is set.
func (e Effect) MarshalJSON() ([]byte, error) {
	return json.Marshal(effectJSON{
		Type:       e.Type,
		Attribute:  e.Attribute,
		Value:      e.value,
		Percentage: e.percentage,
	})
}

// UnmarshalJSON decodes an effect, enforcing the one-of magnitude rule.
func (e *Effect) UnmarshalJSON(data []byte) error {
	var raw effectJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out, err := NewEffect(raw.Type, raw.Attribute, raw.Value, raw.Percentage)
	if err != nil {
		return fmt.Errorf("decoding effect: %w", err)
	}
	*e = out
	return nil
}

// UnmarshalYAML decodes an effect from seed content, enforcing the same
// one-of magnitude rule as UnmarshalJSON.
func (e *Effect) UnmarshalYAML(node *yaml.Node) error {
	var raw effectJSON
	if err := node.Decode(&raw); err != nil {
		return err
	}
	out, err := NewEffect(raw.Type, raw.Attribute, raw.Value, raw.Percentage)
	if err != nil {
		return fmt.Errorf("decoding effect: %w", err)
	}
	*e = out
	return nil
}
