package gacha

import (
	"fmt"
	"math"
)

// Tier is a rarity bucket. Every reward item belongs to exactly one tier.
type Tier string

const (
	TierLegendary Tier = "legendary"
	TierEpic      Tier = "epic"
	TierRare      Tier = "rare"
	TierCommon    Tier = "common"
)

// Tiers lists all tiers in draw priority order (rarest first). The order is
// load-bearing: ResolveTier walks cumulative thresholds in this order, so a
// boundary draw lands in the rarer tier.
var Tiers = []Tier{TierLegendary, TierEpic, TierRare, TierCommon}

// RateSumEpsilon is the tolerance for the tier rate-sum invariant.
const RateSumEpsilon = 0.0001

// TierRates holds a campaign's per-tier draw probabilities.
type TierRates struct {
	Legendary float64 `json:"legendary" yaml:"legendary"`
	Epic      float64 `json:"epic" yaml:"epic"`
	Rare      float64 `json:"rare" yaml:"rare"`
	Common    float64 `json:"common" yaml:"common"`
}

// Sum returns the total probability mass across all tiers.
func (r TierRates) Sum() float64 {
	return r.Legendary + r.Epic + r.Rare + r.Common
}

// Validate checks all rates are in [0,1] and that they sum to 1.0 within
// RateSumEpsilon. Campaigns failing this must not be activated.
func (r TierRates) Validate() error {
	for _, v := range []float64{r.Legendary, r.Epic, r.Rare, r.Common} {
		if v < 0 || v > 1 {
			return fmt.Errorf("tier rate %v out of range [0,1]", v)
		}
	}
	if sum := r.Sum(); math.Abs(sum-1.0) > RateSumEpsilon {
		return fmt.Errorf("tier rates sum to %v, want 1.0 ±%v", sum, RateSumEpsilon)
	}
	return nil
}

// ResolveTier maps one uniform draw in [0,1) to a tier by cumulative
// threshold, rarest tier first. Common is the catch-all: if the configured
// rates sum to slightly less than 1.0 the shortfall lands there, so a draw
// never fails on rate rounding.
func ResolveTier(rates TierRates, draw float64) Tier {
	cum := rates.Legendary
	if draw < cum {
		return TierLegendary
	}
	cum += rates.Epic
	if draw < cum {
		return TierEpic
	}
	cum += rates.Rare
	if draw < cum {
		return TierRare
	}
	return TierCommon
}
