// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package ga

import (
	"math"
	"math/rand"

	"github.com/iyulab/U-RAS/genome"
)

// MutationKind selects one of the three OSV mutation operators spec.md
// §4.6 names.
type MutationKind int

const (
	MutationSwap MutationKind = iota
	MutationInsert
	MutationInvert
)

func (k MutationKind) String() string {
	switch k {
	case MutationSwap:
		return "Swap"
	case MutationInsert:
		return "Insert"
	case MutationInvert:
		return "Invert"
	default:
		return "Unknown"
	}
}

// Mutate returns a clone of g with one OSV mutation of kind applied and
// Fitness reset to +Inf, per spec.md §4.6. A genome with fewer than two
// OSV elements has nothing to rearrange and is cloned unchanged.
func Mutate(kind MutationKind, g *genome.Genome, rng *rand.Rand) *genome.Genome {
	child := g.Clone()
	if len(child.OSV) < 2 {
		return child
	}
	switch kind {
	case MutationInsert:
		insertMutation(child.OSV, rng)
	case MutationInvert:
		invertMutation(child.OSV, rng)
	default:
		swapMutation(child.OSV, rng)
	}
	child.Fitness = math.Inf(1)
	return child
}

func swapMutation(osv []string, rng *rand.Rand) {
	i, j := rng.Intn(len(osv)), rng.Intn(len(osv))
	osv[i], osv[j] = osv[j], osv[i]
}

// insertMutation moves osv[src] to position dst, shifting the intervening
// elements to close the gap it leaves behind.
func insertMutation(osv []string, rng *rand.Rand) {
	src, dst := rng.Intn(len(osv)), rng.Intn(len(osv))
	if src == dst {
		return
	}
	v := osv[src]
	if src < dst {
		copy(osv[src:dst], osv[src+1:dst+1])
	} else {
		copy(osv[dst+1:src+1], osv[dst:src])
	}
	osv[dst] = v
}

func invertMutation(osv []string, rng *rand.Rand) {
	i, j := rng.Intn(len(osv)), rng.Intn(len(osv))
	if i > j {
		i, j = j, i
	}
	for i < j {
		osv[i], osv[j] = osv[j], osv[i]
		i++
		j--
	}
}

// MutateMAV returns a clone of g with one canonical index's resource
// replaced by a uniform sample from that activity's candidate list, and
// Fitness reset to +Inf. A no-op (besides the clone) when idx is empty or
// the chosen activity has no candidates.
func MutateMAV(g *genome.Genome, idx *genome.Index, rng *rand.Rand) *genome.Genome {
	child := g.Clone()
	if idx.Len() == 0 {
		return child
	}
	i := rng.Intn(idx.Len())
	candidates := idx.ActivityAt(i).Candidates()
	if len(candidates) == 0 {
		return child
	}
	child.MAV[i] = candidates[rng.Intn(len(candidates))]
	child.Fitness = math.Inf(1)
	return child
}
