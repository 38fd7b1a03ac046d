package continuity

import (
	"math/rand/v2"
	"sync"
)

// NoiseSource yields the integer jitter added to each projected day.
type NoiseSource interface {
	Next() int
}

// NoiseFunc adapts a plain function to NoiseSource.
type NoiseFunc func() int

func (f NoiseFunc) Next() int { return f() }

// UniformNoise draws from [-spread, spread] using the package-level generator,
// which is safe for concurrent use.
func UniformNoise(spread int) NoiseSource {
	if spread <= 0 {
		return FixedNoise(0)
	}
	return NoiseFunc(func() int {
		return rand.IntN(2*spread+1) - spread
	})
}

type seededNoise struct {
	mu     sync.Mutex
	rng    *rand.Rand
	spread int
}

// SeededNoise is a reproducible uniform source over [-spread, spread].
func SeededNoise(seed uint64, spread int) NoiseSource {
	if spread <= 0 {
		return FixedNoise(0)
	}
	return &seededNoise{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), spread: spread}
}

func (s *seededNoise) Next() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(2*s.spread+1) - s.spread
}

// FixedNoise always returns v.
func FixedNoise(v int) NoiseSource {
	return NoiseFunc(func() int { return v })
}
