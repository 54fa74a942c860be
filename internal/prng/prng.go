// Package prng derives every stochastic draw in the simulation from a
// (seed, day) pair. Re-deriving any day's values never depends on how many
// draws earlier days consumed, which is what makes runs bit-exact
// reproducible and snapshots branchable.
package prng

import "math/rand"

func ForDay(seed int64, day int) *rand.Rand {
	return rand.New(rand.NewSource(seed + int64(day)))
}

// Normal draws one sample from N(0, stddev).
func Normal(r *rand.Rand, stddev float64) float64 {
	return r.NormFloat64() * stddev
}
