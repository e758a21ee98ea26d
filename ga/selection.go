// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package ga

import (
	"math/rand"

	"github.com/iyulab/U-RAS/genome"
)

// Tournament samples k individuals uniformly with replacement from pop and
// returns the one with the lowest fitness (first draw wins ties), per
// spec.md §4.6. Returns nil for an empty pop; a k below 1 is treated as 1.
func Tournament(pop []*genome.Genome, k int, rng *rand.Rand) *genome.Genome {
	if len(pop) == 0 {
		return nil
	}
	if k < 1 {
		k = 1
	}
	best := pop[rng.Intn(len(pop))]
	for i := 1; i < k; i++ {
		candidate := pop[rng.Intn(len(pop))]
		if candidate.Fitness < best.Fitness {
			best = candidate
		}
	}
	return best
}
