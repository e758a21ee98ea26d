// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package ga implements the genetic operators (C9: crossover, mutation,
// tournament selection) and the population/evolution loop (C10) that
// evolves Genomes toward lower fitness, typically the makespan a
// scheduler.MakespanEvaluator reports for a decoded schedule.
package ga

import "math/rand"

// ChildRNG derives a reproducible *rand.Rand for one (generation, index)
// draw from a single root seed, via the MurmurHash3 fmix64 finalizer.
// Every Evolve step asks for a fresh stream per child slot instead of
// sharing one *rand.Rand across the generation, so reordering or
// parallelizing child production never changes the sequence a given slot
// sees: the run stays reproducible given only the root seed.
func ChildRNG(seed int64, generation, index int) *rand.Rand {
	h := uint64(seed)
	h = h*31 + uint64(uint32(generation))
	h = h*31 + uint64(uint32(index))
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	h *= 0xc4ceb9fe1a85ec53
	h ^= h >> 33
	return rand.New(rand.NewSource(int64(h)))
}
