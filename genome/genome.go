// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package genome

import (
	"math"

	"github.com/mitchellh/copystructure"
	"github.com/mitchellh/hashstructure"
)

// Genome is the (OSV, MAV) pair encoding one full scheduling decision. The
// k-th occurrence of task T in OSV binds to activity (T, k) where sequence
// numbers are dense 1-based per task (the decode invariant of spec.md
// §4.5). Fitness is lower-is-better and starts at +Inf before evaluation.
type Genome struct {
	OSV     []string
	MAV     []string
	Fitness float64
}

// NewUnevaluated returns a Genome with the given OSV/MAV and Fitness set to
// +Inf, per spec.md §4.5.
func NewUnevaluated(osv, mav []string) *Genome {
	return &Genome{OSV: osv, MAV: mav, Fitness: math.Inf(1)}
}

// Clone returns a deep copy of g, including its OSV/MAV slices, so mutating
// operators never alias a parent's backing array.
func (g *Genome) Clone() *Genome {
	if g == nil {
		return nil
	}
	cp, err := copystructure.Copy(g)
	if err != nil {
		panic("genome: Clone: " + err.Error())
	}
	return cp.(*Genome)
}

// Fingerprint returns a stable structural hash of OSV and MAV (Fitness is
// excluded — two genomes encoding the same schedule but evaluated at
// different points in a run must still compare equal). No kernel package
// calls it; SameEncoding is the direct OSV/MAV equality check.
func (g *Genome) Fingerprint() (uint64, error) {
	return hashstructure.Hash(struct {
		OSV []string
		MAV []string
	}{g.OSV, g.MAV}, nil)
}

// SameEncoding reports whether g and other encode the same OSV and MAV
// (membership by OSV/MAV equality, as P6 requires), ignoring Fitness.
func (g *Genome) SameEncoding(other *Genome) bool {
	if g == nil || other == nil {
		return g == other
	}
	if len(g.OSV) != len(other.OSV) || len(g.MAV) != len(other.MAV) {
		return false
	}
	for i := range g.OSV {
		if g.OSV[i] != other.OSV[i] {
			return false
		}
	}
	for i := range g.MAV {
		if g.MAV[i] != other.MAV[i] {
			return false
		}
	}
	return true
}

// Valid checks the validity predicate of spec.md §4.5 against idx: OSV and
// MAV lengths match idx.Len(); per-task occurrence counts in OSV match the
// task's activity count; every MAV entry lies within its activity's
// candidate list (when non-empty).
func (g *Genome) Valid(idx *Index) bool {
	n := idx.Len()
	if len(g.OSV) != n || len(g.MAV) != n {
		return false
	}

	occurrences := make(map[string]int)
	for _, taskID := range g.OSV {
		occurrences[taskID]++
	}
	for _, taskID := range idx.TaskIDs() {
		if occurrences[taskID] != idx.OccurrencesOf(taskID) {
			return false
		}
	}
	// No stray task ids beyond what idx knows about.
	for taskID := range occurrences {
		if idx.Task(taskID) == nil {
			return false
		}
	}

	seen := make(map[string]int)
	for _, taskID := range g.OSV {
		seen[taskID]++
		canonical, ok := idx.PositionOf(taskID, seen[taskID])
		if !ok {
			return false
		}
		activity := idx.ActivityAt(canonical)
		resourceID := g.MAV[canonical]
		candidates := activity.Candidates()
		if len(candidates) == 0 {
			continue
		}
		found := false
		for _, c := range candidates {
			if c == resourceID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
