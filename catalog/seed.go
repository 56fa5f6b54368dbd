package catalog

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/maru-games/gacha-settlement-engine/gacha"
)

// Seed is the parsed catalog seed file: campaigns, reward items and featured
// boosts, loaded once at boot.
type Seed struct {
	Campaigns []Campaign
	Items     []Item
	// Featured maps campaign id -> item id -> multiplier.
	Featured map[string]map[string]float64
}

type seedFile struct {
	Campaigns []seedCampaign `yaml:"campaigns"`
	Items     []seedItem     `yaml:"items"`
}

type seedCampaign struct {
	ID          string          `yaml:"id"`
	Name        string          `yaml:"name"`
	StartsAt    time.Time       `yaml:"starts_at"`
	EndsAt      time.Time       `yaml:"ends_at"`
	Active      bool            `yaml:"active"`
	SinglePrice string          `yaml:"single_price"`
	BatchPrice  string          `yaml:"batch_price"`
	Rates       gacha.TierRates `yaml:"rates"`
	Featured    []seedFeatured  `yaml:"featured,omitempty"`
}

type seedFeatured struct {
	ItemID     string  `yaml:"item_id"`
	Multiplier float64 `yaml:"multiplier,omitempty"`
}

type seedItem struct {
	ID        string  `yaml:"id"`
	Name      string  `yaml:"name"`
	Tier      string  `yaml:"tier"`
	Weight    float64 `yaml:"weight"`
	Available *bool   `yaml:"available,omitempty"` // defaults to true
}

// LoadSeed reads and validates a YAML catalog seed file.
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes and validates seed YAML. Campaigns failing validation
// (rate sum, prices, window) reject the whole seed: a bad catalog must not
// boot a server that charges for draws.
func ParseSeed(data []byte) (*Seed, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}

	seed := &Seed{Featured: make(map[string]map[string]float64)}

	itemIDs := make(map[string]bool, len(f.Items))
	for _, it := range f.Items {
		if it.ID == "" {
			return nil, fmt.Errorf("seed item with empty id")
		}
		if itemIDs[it.ID] {
			return nil, fmt.Errorf("duplicate seed item %q", it.ID)
		}
		itemIDs[it.ID] = true
		if it.Weight <= 0 {
			return nil, fmt.Errorf("seed item %q: weight must be positive", it.ID)
		}
		tier := gacha.Tier(it.Tier)
		if !validTier(tier) {
			return nil, fmt.Errorf("seed item %q: unknown tier %q", it.ID, it.Tier)
		}
		available := true
		if it.Available != nil {
			available = *it.Available
		}
		seed.Items = append(seed.Items, Item{
			ID:        it.ID,
			Name:      it.Name,
			Tier:      tier,
			Weight:    it.Weight,
			Available: available,
		})
	}

	for _, sc := range f.Campaigns {
		single, err := decimal.NewFromString(sc.SinglePrice)
		if err != nil {
			return nil, fmt.Errorf("campaign %q: single_price: %w", sc.ID, err)
		}
		batch, err := decimal.NewFromString(sc.BatchPrice)
		if err != nil {
			return nil, fmt.Errorf("campaign %q: batch_price: %w", sc.ID, err)
		}
		c := Campaign{
			ID:          sc.ID,
			Name:        sc.Name,
			StartsAt:    sc.StartsAt,
			EndsAt:      sc.EndsAt,
			Active:      sc.Active,
			SinglePrice: single,
			BatchPrice:  batch,
			Rates:       sc.Rates,
		}
		if err := c.Validate(); err != nil {
			return nil, err
		}
		seed.Campaigns = append(seed.Campaigns, c)

		for _, fe := range sc.Featured {
			if !itemIDs[fe.ItemID] {
				return nil, fmt.Errorf("campaign %q: featured item %q not in seed", sc.ID, fe.ItemID)
			}
			mult := fe.Multiplier
			if mult <= 0 {
				mult = DefaultFeaturedMultiplier
			}
			if seed.Featured[sc.ID] == nil {
				seed.Featured[sc.ID] = make(map[string]float64)
			}
			seed.Featured[sc.ID][fe.ItemID] = mult
		}
	}

	return seed, nil
}

func validTier(t gacha.Tier) bool {
	for _, known := range gacha.Tiers {
		if t == known {
			return true
		}
	}
	return false
}
