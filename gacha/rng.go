package gacha

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// RandomSource supplies uniform draws in [0, 1). Selection functions in this
// package never generate randomness themselves; the source is injected so
// callers can seed it for reproducible tests.
type RandomSource interface {
	Float64() float64
}

// cryptoRNG draws 53-bit doubles from crypto/rand (CSPRNG).
type cryptoRNG struct{}

func (cryptoRNG) Float64() float64 {
	var buf [8]byte
	if _, err := cryptorand.Read(buf[:]); err != nil {
		// crypto/rand read failures are effectively impossible on supported
		// platforms; fall back to the global PRNG rather than halt a draw.
		return rand.Float64()
	}
	u := binary.BigEndian.Uint64(buf[:]) >> 11 // keep 53 bits of mantissa
	return float64(u) / (1 << 53)
}

// DefaultRNG returns the production random source (crypto/rand backed).
func DefaultRNG() RandomSource { return cryptoRNG{} }

type seededRNG struct{ r *rand.Rand }

// NewSeededRNG returns a deterministic source for tests and simulations.
func NewSeededRNG(seed uint64) RandomSource {
	return &seededRNG{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *seededRNG) Float64() float64 { return s.r.Float64() }
