package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/maru-games/gacha-settlement-engine/gacha"
)

// ErrCampaignNotFound reports a campaign lookup miss.
var ErrCampaignNotFound = errors.New("catalog: campaign not found")

// DefaultFeaturedMultiplier is applied to featured items that do not declare
// an explicit rate boost.
const DefaultFeaturedMultiplier = 2.0

// Campaign is one versioned draw configuration. Read-only to the engine;
// catalog management owns creation and edits.
type Campaign struct {
	ID          string
	Name        string
	StartsAt    time.Time
	EndsAt      time.Time
	Active      bool
	SinglePrice decimal.Decimal
	BatchPrice  decimal.Decimal
	Rates       gacha.TierRates
}

// Validate rejects campaigns whose tier rates break the sum invariant or
// whose prices are not positive. Stores call this before accepting a
// campaign, so a misconfigured one can never be drawn against.
func (c Campaign) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("campaign id is required")
	}
	if err := c.Rates.Validate(); err != nil {
		return fmt.Errorf("campaign %s: %w", c.ID, err)
	}
	if !c.SinglePrice.IsPositive() || !c.BatchPrice.IsPositive() {
		return fmt.Errorf("campaign %s: prices must be positive", c.ID)
	}
	if !c.EndsAt.After(c.StartsAt) {
		return fmt.Errorf("campaign %s: window end must be after start", c.ID)
	}
	return nil
}

// ActiveAt reports whether draws are accepted at the given instant: the
// active flag is set and now falls in [StartsAt, EndsAt).
func (c Campaign) ActiveAt(now time.Time) bool {
	return c.Active && !now.Before(c.StartsAt) && now.Before(c.EndsAt)
}

// Item is one reward definition. Each item belongs to exactly one tier and
// carries a base relative weight for in-tier selection.
type Item struct {
	ID        string
	Name      string
	Tier      gacha.Tier
	Weight    float64
	Available bool
}

// CampaignStore resolves campaign configuration by id.
type CampaignStore interface {
	GetCampaign(ctx context.Context, id string) (Campaign, error)
}

// Reader is the read-only catalog surface the engine draws from. ListItems
// must return the tier's items in a stable order (catalog insertion order)
// so weighted selection is reproducible for a given draw value.
type Reader interface {
	ListItems(ctx context.Context, campaignID string, tier gacha.Tier) ([]Item, error)
	FeaturedMultipliers(ctx context.Context, campaignID string) (map[string]float64, error)
}
