package monty

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// RandomSource supplies the uniform draws that place the car, choose the
// simulated pick and choose the goat door to reveal.
type RandomSource interface {
	Float64() float64 // [0, 1)
}

// cryptoRNG backs unseeded play.
type cryptoRNG struct{}

func (cryptoRNG) Float64() float64 {
	// 53 random bits map exactly onto the float64 mantissa
	var buf [8]byte
	if _, err := cryptoRand.Read(buf[:]); err != nil {
		// entropy unavailable: fall back to the runtime source
		return rand.Float64()
	}

	u := binary.BigEndian.Uint64(buf[:]) >> 11 // 53 bits
	return float64(u) / (1 << 53)
}

// DefaultRNG returns the source used when no seed is configured.
func DefaultRNG() RandomSource { return cryptoRNG{} }

// seededRNG makes rounds and simulations reproducible.
type seededRNG struct{ r *rand.Rand }

// NewSeededRNG returns a PCG-backed source; equal seeds give equal draws.
func NewSeededRNG(seed uint64) RandomSource {
	return &seededRNG{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *seededRNG) Float64() float64 { return s.r.Float64() }

// pickIndex draws a uniform index in [0, n).
func pickIndex(rng RandomSource, n int) int {
	if n <= 1 {
		return 0
	}
	i := int(rng.Float64() * float64(n))
	// sources that return exactly 1.0 would overflow the range
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}
