package gacha

import (
	"errors"
	"testing"
)

func TestResolveItem_EmptyPool(t *testing.T) {
	if _, err := ResolveItem(nil, nil, 0.5); !errors.Is(err, ErrTierExhausted) {
		t.Fatalf("nil pool: got %v, want ErrTierExhausted", err)
	}
	unavailable := []PoolItem{
		{ID: "a", Weight: 1, Available: false},
		{ID: "b", Weight: 0, Available: true},
	}
	if _, err := ResolveItem(unavailable, nil, 0.5); !errors.Is(err, ErrTierExhausted) {
		t.Fatalf("no available weight: got %v, want ErrTierExhausted", err)
	}
}

func TestResolveItem_SingleItem(t *testing.T) {
	pool := []PoolItem{{ID: "only", Weight: 3, Available: true}}
	for _, draw := range []float64{0, 0.5, 0.99999} {
		it, err := ResolveItem(pool, nil, draw)
		if err != nil {
			t.Fatal(err)
		}
		if it.ID != "only" {
			t.Errorf("draw %v: got %q", draw, it.ID)
		}
	}
}

func TestResolveItem_SkipsUnavailable(t *testing.T) {
	pool := []PoolItem{
		{ID: "gone", Weight: 100, Available: false},
		{ID: "live", Weight: 1, Available: true},
	}
	for i := 0; i < 50; i++ {
		rng := NewSeededRNG(uint64(i))
		it, err := ResolveItem(pool, nil, rng.Float64())
		if err != nil {
			t.Fatal(err)
		}
		if it.ID != "live" {
			t.Errorf("unavailable item selected: %q", it.ID)
		}
	}
}

func TestResolveItem_WeightedDistribution(t *testing.T) {
	// Weights 1 and 3: second item should win ~75% of draws.
	pool := []PoolItem{
		{ID: "light", Weight: 1, Available: true},
		{ID: "heavy", Weight: 3, Available: true},
	}
	rng := NewSeededRNG(42)
	const rounds = 100_000
	heavy := 0
	for i := 0; i < rounds; i++ {
		it, err := ResolveItem(pool, nil, rng.Float64())
		if err != nil {
			t.Fatal(err)
		}
		if it.ID == "heavy" {
			heavy++
		}
	}
	if p := float64(heavy) / rounds; p < 0.73 || p > 0.77 {
		t.Errorf("heavy proportion %.4f want ~0.75", p)
	}
}

func TestResolveItem_FeaturedBoost(t *testing.T) {
	// Equal base weights, one boosted 2.0x: boosted item wins ~2/3 of draws.
	pool := []PoolItem{
		{ID: "plain", Weight: 1, Available: true},
		{ID: "featured", Weight: 1, Available: true},
	}
	boosts := map[string]float64{"featured": 2.0}
	rng := NewSeededRNG(99)
	const rounds = 100_000
	featured := 0
	for i := 0; i < rounds; i++ {
		it, err := ResolveItem(pool, boosts, rng.Float64())
		if err != nil {
			t.Fatal(err)
		}
		if it.ID == "featured" {
			featured++
		}
	}
	want := 2.0 / 3.0
	if p := float64(featured) / rounds; p < want-0.02 || p > want+0.02 {
		t.Errorf("featured proportion %.4f want ~%.4f", p, want)
	}
}

func TestResolveItem_StableOrder(t *testing.T) {
	// Same pool and draw value must always resolve the same item.
	pool := []PoolItem{
		{ID: "a", Weight: 1, Available: true},
		{ID: "b", Weight: 1, Available: true},
		{ID: "c", Weight: 1, Available: true},
	}
	for _, draw := range []float64{0.0, 0.1, 0.34, 0.5, 0.67, 0.9} {
		first, err := ResolveItem(pool, nil, draw)
		if err != nil {
			t.Fatal(err)
		}
		for i := 0; i < 10; i++ {
			again, err := ResolveItem(pool, nil, draw)
			if err != nil {
				t.Fatal(err)
			}
			if again.ID != first.ID {
				t.Fatalf("draw %v: resolved %q then %q", draw, first.ID, again.ID)
			}
		}
	}
}

func TestResolveItem_RoundingFallsToLast(t *testing.T) {
	// A draw at the very top of [0,1) can leave a positive remainder after
	// the subtraction walk; the last candidate absorbs it.
	pool := []PoolItem{
		{ID: "first", Weight: 0.1, Available: true},
		{ID: "second", Weight: 0.2, Available: true},
		{ID: "last", Weight: 0.7, Available: true},
	}
	it, err := ResolveItem(pool, nil, 0.9999999999999999)
	if err != nil {
		t.Fatal(err)
	}
	if it.ID != "last" {
		t.Errorf("top-of-range draw resolved %q, want last", it.ID)
	}
}
