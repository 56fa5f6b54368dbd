package gacha

import "testing"

func TestDefaultRNG_Bounds(t *testing.T) {
	rng := DefaultRNG()
	for i := 0; i < 10_000; i++ {
		v := rng.Float64()
		if v < 0 || v >= 1 {
			t.Fatalf("draw %v outside [0,1)", v)
		}
	}
}

func TestSeededRNG_Deterministic(t *testing.T) {
	a, b := NewSeededRNG(123), NewSeededRNG(123)
	for i := 0; i < 1000; i++ {
		if av, bv := a.Float64(), b.Float64(); av != bv {
			t.Fatalf("same seed diverged at draw %d: %v vs %v", i, av, bv)
		}
	}
}
