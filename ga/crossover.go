// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package ga

import (
	"math/rand"
	"sort"

	"github.com/iyulab/U-RAS/genome"
)

// CrossoverKind selects one of the three OSV recombination operators
// spec.md §4.6 names.
type CrossoverKind int

const (
	CrossoverPOX CrossoverKind = iota
	CrossoverLOX
	CrossoverJOX
)

func (k CrossoverKind) String() string {
	switch k {
	case CrossoverPOX:
		return "POX"
	case CrossoverLOX:
		return "LOX"
	case CrossoverJOX:
		return "JOX"
	default:
		return "UNKNOWN"
	}
}

// Crossover produces two children from two parents, preserving OSV
// multiset counts; MAV is inherited positionally (Child1 from Parent1,
// Child2 from Parent2) since MAV is indexed by canonical activity and is
// untouched by an OSV recombination. Parents whose OSV has fewer than two
// elements have nothing to recombine and are returned as clones, per
// spec.md §4.7's "population with fewer than two individuals skips
// crossover" edge case generalized to the genome level.
//
// JOX is specified equivalent to POX in this iteration (an explicit open
// question in spec.md §9, resolved here by aliasing rather than
// implementing a distinct job-based variant).
func Crossover(kind CrossoverKind, p1, p2 *genome.Genome, rng *rand.Rand) (*genome.Genome, *genome.Genome) {
	if len(p1.OSV) < 2 || len(p2.OSV) < 2 {
		return p1.Clone(), p2.Clone()
	}
	if kind == CrossoverLOX {
		return lox(p1, p2, rng)
	}
	return pox(p1, p2, rng)
}

func pox(p1, p2 *genome.Genome, rng *rand.Rand) (*genome.Genome, *genome.Genome) {
	subset := randomNonEmptySubset(distinctTaskIDs(p1.OSV), rng)
	child1OSV := poxChild(p1.OSV, p2.OSV, subset)
	child2OSV := poxChild(p2.OSV, p1.OSV, subset)
	c1 := genome.NewUnevaluated(child1OSV, append([]string(nil), p1.MAV...))
	c2 := genome.NewUnevaluated(child2OSV, append([]string(nil), p2.MAV...))
	return c1, c2
}

// poxChild builds one POX child: positions whose primary task id is in
// subset keep primary's value; the rest are filled, left to right, from
// secondary's scan restricted to ids not in subset.
func poxChild(primary, secondary []string, subset map[string]bool) []string {
	fillQueue := make([]string, 0, len(secondary))
	for _, id := range secondary {
		if !subset[id] {
			fillQueue = append(fillQueue, id)
		}
	}
	child := make([]string, len(primary))
	fi := 0
	for i, id := range primary {
		if subset[id] {
			child[i] = id
			continue
		}
		child[i] = fillQueue[fi]
		fi++
	}
	return child
}

func distinctTaskIDs(osv []string) []string {
	seen := make(map[string]bool, len(osv))
	out := make([]string, 0, len(osv))
	for _, id := range osv {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// randomNonEmptySubset flips a fair coin per id until at least one is
// selected, honoring POX's "non-empty random subset" requirement.
func randomNonEmptySubset(ids []string, rng *rand.Rand) map[string]bool {
	if len(ids) == 0 {
		return map[string]bool{}
	}
	for {
		subset := make(map[string]bool, len(ids))
		any := false
		for _, id := range ids {
			if rng.Intn(2) == 1 {
				subset[id] = true
				any = true
			}
		}
		if any {
			return subset
		}
	}
}

func lox(p1, p2 *genome.Genome, rng *rand.Rand) (*genome.Genome, *genome.Genome) {
	a, b := twoCutPoints(len(p1.OSV), rng)
	child1OSV := loxChild(p1.OSV, p2.OSV, a, b)
	child2OSV := loxChild(p2.OSV, p1.OSV, a, b)
	c1 := genome.NewUnevaluated(child1OSV, append([]string(nil), p1.MAV...))
	c2 := genome.NewUnevaluated(child2OSV, append([]string(nil), p2.MAV...))
	return c1, c2
}

// twoCutPoints returns a half-open [a, b) segment with a uniformly chosen
// pair of cut points over [0, n).
func twoCutPoints(n int, rng *rand.Rand) (int, int) {
	a, b := rng.Intn(n), rng.Intn(n)
	if a > b {
		a, b = b, a
	}
	return a, b + 1
}

// loxChild copies primary's [a, b) segment verbatim, then fills the
// remaining positions, in order, with secondary's elements not yet
// consumed by the segment — tracked per-id by count so duplicate task ids
// (an OSV invariant) are preserved exactly once each.
func loxChild(primary, secondary []string, a, b int) []string {
	n := len(primary)
	child := make([]string, n)
	consumed := make(map[string]int, n)
	for i := a; i < b; i++ {
		child[i] = primary[i]
		consumed[primary[i]]++
	}

	fillQueue := make([]string, 0, n-(b-a))
	for _, id := range secondary {
		if consumed[id] > 0 {
			consumed[id]--
			continue
		}
		fillQueue = append(fillQueue, id)
	}

	fi := 0
	for i := 0; i < n; i++ {
		if i >= a && i < b {
			continue
		}
		child[i] = fillQueue[fi]
		fi++
	}
	return child
}
