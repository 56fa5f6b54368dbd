package gacha

import "testing"

func TestTierRates_Validate(t *testing.T) {
	ok := TierRates{Legendary: 0.02, Epic: 0.08, Rare: 0.20, Common: 0.70}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid rates rejected: %v", err)
	}
	// Within epsilon on either side.
	if err := (TierRates{Legendary: 0.02, Epic: 0.08, Rare: 0.20, Common: 0.70005}).Validate(); err != nil {
		t.Errorf("rates within epsilon rejected: %v", err)
	}
	if err := (TierRates{Legendary: 0.02, Epic: 0.08, Rare: 0.20, Common: 0.71}).Validate(); err == nil {
		t.Error("rates summing to 1.01 should be rejected")
	}
	if err := (TierRates{Legendary: -0.01, Epic: 0.11, Rare: 0.20, Common: 0.70}).Validate(); err == nil {
		t.Error("negative rate should be rejected")
	}
}

func TestResolveTier_Boundaries(t *testing.T) {
	rates := TierRates{Legendary: 0.02, Epic: 0.08, Rare: 0.20, Common: 0.70}
	cases := []struct {
		draw float64
		want Tier
	}{
		{0.0, TierLegendary},
		{0.0199, TierLegendary},
		{0.02, TierEpic},
		{0.0999, TierEpic},
		{0.10, TierRare},
		{0.2999, TierRare},
		{0.31, TierCommon},
		{0.99999, TierCommon},
	}
	for _, c := range cases {
		if got := ResolveTier(rates, c.draw); got != c.want {
			t.Errorf("draw %v: got %q want %q", c.draw, got, c.want)
		}
	}
}

func TestResolveTier_ShortfallFallsToCommon(t *testing.T) {
	// Rates summing slightly below 1.0: draws past the configured mass must
	// land in common instead of failing.
	rates := TierRates{Legendary: 0.02, Epic: 0.08, Rare: 0.20, Common: 0.6999}
	if got := ResolveTier(rates, 0.99999); got != TierCommon {
		t.Errorf("shortfall draw resolved to %q, want common", got)
	}
}

func TestResolveTier_Distribution(t *testing.T) {
	rates := TierRates{Legendary: 0.02, Epic: 0.08, Rare: 0.20, Common: 0.70}
	rng := NewSeededRNG(7)
	const rounds = 100_000
	count := map[Tier]int{}
	for i := 0; i < rounds; i++ {
		count[ResolveTier(rates, rng.Float64())]++
	}
	expect := map[Tier]float64{
		TierLegendary: 0.02,
		TierEpic:      0.08,
		TierRare:      0.20,
		TierCommon:    0.70,
	}
	tol := 0.01
	for tier, wantP := range expect {
		gotP := float64(count[tier]) / rounds
		if gotP < wantP-tol || gotP > wantP+tol {
			t.Errorf("tier %q: proportion %.4f want ~%.4f (tol ±%.0f%%)", tier, gotP, wantP, tol*100)
		}
	}
}
