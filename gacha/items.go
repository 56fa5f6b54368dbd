package gacha

import "errors"

// ErrTierExhausted reports a resolved tier with no available items. This is a
// catalog configuration bug, not a transient fault: callers must abort the
// whole settlement and never substitute an item from another tier.
var ErrTierExhausted = errors.New("gacha: no available items in resolved tier")

// PoolItem is one candidate reward inside a tier's pool.
type PoolItem struct {
	ID        string
	Weight    float64
	Available bool
}

// ResolveItem maps one uniform draw in [0,1) to a concrete item from the
// pool. Each item's effective weight is Weight × boosts[ID] (1.0 when the
// item has no boost). Unavailable or non-positively weighted items are
// skipped and contribute nothing to the total.
//
// The walk runs in slice order, which callers must keep stable (catalog
// insertion order) so a given draw value always resolves the same item.
// If floating-point accumulation leaves a remainder after the walk, the
// last candidate wins: a paid draw never fails on rounding.
func ResolveItem(items []PoolItem, boosts map[string]float64, draw float64) (PoolItem, error) {
	var total float64
	for _, it := range items {
		if !it.Available || it.Weight <= 0 {
			continue
		}
		total += effectiveWeight(it, boosts)
	}
	if total <= 0 {
		return PoolItem{}, ErrTierExhausted
	}

	r := draw * total
	last := PoolItem{}
	for _, it := range items {
		if !it.Available || it.Weight <= 0 {
			continue
		}
		w := effectiveWeight(it, boosts)
		if r < w {
			return it, nil
		}
		r -= w
		last = it
	}
	return last, nil
}

func effectiveWeight(it PoolItem, boosts map[string]float64) float64 {
	w := it.Weight
	if m, ok := boosts[it.ID]; ok && m > 0 {
		w *= m
	}
	return w
}
