// Package main loads starter game content from YAML files into the database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/crystalfall/rpgserver/internal/config"
	"github.com/crystalfall/rpgserver/internal/game/character"
	"github.com/crystalfall/rpgserver/internal/game/item"
	"github.com/crystalfall/rpgserver/internal/game/monster"
	"github.com/crystalfall/rpgserver/internal/storage/postgres"
)

type characterDoc struct {
	Name            string               `yaml:"name"`
	Image           string               `yaml:"image"`
	Attributes      character.Attributes `yaml:"attributes"`
	Equipment       character.Equipment  `yaml:"equipment"`
	ExperienceTotal int                  `yaml:"experience_total"`
	Level           int                  `yaml:"level"`
	Formation       string               `yaml:"formation"`
	Position        character.Position   `yaml:"position"`
	Spells          []character.Spell    `yaml:"spells"`
}

type monsterDoc struct {
	Name             string `yaml:"name"`
	Image            string `yaml:"image"`
	Vitality         int    `yaml:"vitality"`
	Level            int    `yaml:"level"`
	Strength         int    `yaml:"strength"`
	Agility          int    `yaml:"agility"`
	Energy           int    `yaml:"energy"`
	Intellect        int    `yaml:"intellect"`
	Spirit           int    `yaml:"spirit"`
	Attack           int    `yaml:"attack"`
	Defense          int    `yaml:"defense"`
	MagicDefense     int    `yaml:"magic_defense"`
	AttackExtra      int    `yaml:"attack_extra"`
	ExperienceReward int    `yaml:"experience_reward"`
	CurrencyReward   int    `yaml:"currency_reward"`
}

type itemDoc struct {
	Name       string               `yaml:"name"`
	Quantity   int                  `yaml:"quantity"`
	BuyPrice   int                  `yaml:"buy_price"`
	SellPrice  int                  `yaml:"sell_price"`
	Kind       string               `yaml:"kind"`
	Weapon     *item.WeaponSpec     `yaml:"weapon"`
	Armor      *item.ArmorSpec      `yaml:"armor"`
	Consumable *item.ConsumableSpec `yaml:"consumable"`
}

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	contentDir := flag.String("content", "content", "path to content directory")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("connecting to database: %v", err)
	}
	defer pool.Close()

	items := pool.Items()
	characters := pool.Characters()
	monsters := pool.Monsters()

	itemCount, err := seedItems(ctx, items, filepath.Join(*contentDir, "items.yaml"))
	if err != nil {
		log.Fatalf("seeding items: %v", err)
	}
	charCount, err := seedCharacters(ctx, characters, filepath.Join(*contentDir, "characters.yaml"))
	if err != nil {
		log.Fatalf("seeding characters: %v", err)
	}
	monsterCount, err := seedMonsters(ctx, monsters, filepath.Join(*contentDir, "monsters.yaml"))
	if err != nil {
		log.Fatalf("seeding monsters: %v", err)
	}

	fmt.Fprintf(os.Stdout, "seeded %d items, %d characters, %d monsters in %s\n",
		itemCount, charCount, monsterCount, time.Since(start).Round(time.Millisecond))
}

func loadDocs[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var docs []T
	if err := yaml.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return docs, nil
}

func seedItems(ctx context.Context, repo *postgres.ItemRepository, path string) (int, error) {
	docs, err := loadDocs[itemDoc](path)
	if err != nil {
		return 0, err
	}
	for _, d := range docs {
		it := &item.Item{
			Name:       d.Name,
			Quantity:   d.Quantity,
			BuyPrice:   d.BuyPrice,
			SellPrice:  d.SellPrice,
			Kind:       d.Kind,
			Weapon:     d.Weapon,
			Armor:      d.Armor,
			Consumable: d.Consumable,
		}
		if _, err := repo.Create(ctx, it); err != nil {
			return 0, fmt.Errorf("item %q: %w", d.Name, err)
		}
	}
	return len(docs), nil
}

func seedCharacters(ctx context.Context, repo *postgres.CharacterRepository, path string) (int, error) {
	docs, err := loadDocs[characterDoc](path)
	if err != nil {
		return 0, err
	}
	for _, d := range docs {
		c := &character.Character{
			Name:            d.Name,
			Image:           d.Image,
			Attributes:      d.Attributes,
			Equipment:       d.Equipment,
			ExperienceTotal: d.ExperienceTotal,
			Level:           d.Level,
			Formation:       d.Formation,
			Position:        d.Position,
			Spells:          d.Spells,
		}
		if c.Formation == "" {
			c.Formation = character.FormationVanguard
		}
		c.Attributes.ClampPools()
		if _, err := repo.Create(ctx, c); err != nil {
			return 0, fmt.Errorf("character %q: %w", d.Name, err)
		}
	}
	return len(docs), nil
}

func seedMonsters(ctx context.Context, repo *postgres.MonsterRepository, path string) (int, error) {
	docs, err := loadDocs[monsterDoc](path)
	if err != nil {
		return 0, err
	}
	for _, d := range docs {
		m := &monster.Monster{
			Name:             d.Name,
			Image:            d.Image,
			Vitality:         d.Vitality,
			Level:            d.Level,
			Strength:         d.Strength,
			Agility:          d.Agility,
			Energy:           d.Energy,
			Intellect:        d.Intellect,
			Spirit:           d.Spirit,
			Attack:           d.Attack,
			Defense:          d.Defense,
			MagicDefense:     d.MagicDefense,
			AttackExtra:      d.AttackExtra,
			ExperienceReward: d.ExperienceReward,
			CurrencyReward:   d.CurrencyReward,
		}
		if _, err := repo.Create(ctx, m); err != nil {
			return 0, fmt.Errorf("monster %q: %w", d.Name, err)
		}
	}
	return len(docs), nil
}
