// Package monster defines the bestiary model. Monsters are read-mostly
// reference data for encounters; no mutation logic operates on them.
package monster

import "github.com/google/uuid"

// Monster represents a bestiary entry.
type Monster struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Image string    `json:"image"`

	Vitality int `json:"vitality"`
	Level    int `json:"level"`

	Strength     int `json:"strength"`
	Agility      int `json:"agility"`
	Energy       int `json:"energy"`
	Intellect    int `json:"intellect"`
	Spirit       int `json:"spirit"`
	Attack       int `json:"attack"`
	Defense      int `json:"defense"`
	MagicDefense int `json:"magic_defense"`
	AttackExtra  int `json:"attack_extra"`

	ExperienceReward int `json:"experience_reward"`
	CurrencyReward   int `json:"currency_reward"`
}
