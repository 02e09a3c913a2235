// Package entropy provides the seeded random stream injected into the market
// and shock systems. A single owned stream (never the global RNG) keeps runs
// reproducible from the seed alone.
package entropy

import "math/rand"

// Source is a deterministic random stream.
type Source struct {
	r *rand.Rand
}

// NewSource creates a stream seeded deterministically.
func NewSource(seed int64) *Source {
	return &Source{r: rand.New(rand.NewSource(seed))}
}

// Float returns a random float64 in [0, 1).
func (s *Source) Float() float64 {
	return s.r.Float64()
}

// Range returns a random float64 in [min, max).
func (s *Source) Range(min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + s.r.Float64()*(max-min)
}

// IntBetween returns a random int in [min, max] inclusive.
func (s *Source) IntBetween(min, max int) int {
	if max <= min {
		return min
	}
	return min + s.r.Intn(max-min+1)
}

// Chance returns true with probability p.
func (s *Source) Chance(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return s.r.Float64() < p
}
