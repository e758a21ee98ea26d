// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package genome

import (
	"math/rand"

	"github.com/iyulab/U-RAS/structs"
)

// buildOSV returns a uniform shuffle of the multiset of task ids, each
// repeated once per its activity count, per spec.md §4.5 Random
// construction. Every seeding strategy shares this OSV construction; they
// differ only in how MAV is populated.
func buildOSV(idx *Index, rng *rand.Rand) []string {
	osv := make([]string, 0, idx.Len())
	for _, taskID := range idx.TaskIDs() {
		for i := 0; i < idx.OccurrencesOf(taskID); i++ {
			osv = append(osv, taskID)
		}
	}
	rng.Shuffle(len(osv), func(i, j int) { osv[i], osv[j] = osv[j], osv[i] })
	return osv
}

// NewRandom builds a Genome whose OSV is a uniform shuffle and whose MAV
// picks each activity's candidate uniformly at random.
func NewRandom(idx *Index, rng *rand.Rand) *Genome {
	osv := buildOSV(idx, rng)
	mav := make([]string, idx.Len())
	for i := 0; i < idx.Len(); i++ {
		candidates := idx.ActivityAt(i).Candidates()
		if len(candidates) == 0 {
			continue
		}
		mav[i] = candidates[rng.Intn(len(candidates))]
	}
	return NewUnevaluated(osv, mav)
}

func resourceByID(resources []*structs.Resource) map[string]*structs.Resource {
	m := make(map[string]*structs.Resource, len(resources))
	for _, r := range resources {
		m[r.ID] = r
	}
	return m
}

// NewLoadBalanced builds a Genome whose MAV greedily assigns each activity,
// in canonical order, to the candidate with the lowest cumulative
// process-time assigned so far among its Primary-typed candidates
// (falling back to the full candidate list when none are Primary).
func NewLoadBalanced(idx *Index, resources []*structs.Resource, rng *rand.Rand) *Genome {
	osv := buildOSV(idx, rng)
	byID := resourceByID(resources)
	load := make(map[string]int64)

	mav := make([]string, idx.Len())
	for i := 0; i < idx.Len(); i++ {
		activity := idx.ActivityAt(i)
		candidates := activity.Candidates()
		if len(candidates) == 0 {
			continue
		}
		pool := primaryOnly(candidates, byID)
		if len(pool) == 0 {
			pool = candidates
		}
		chosen := pool[0]
		best := load[chosen]
		for _, c := range pool[1:] {
			if load[c] < best {
				chosen, best = c, load[c]
			}
		}
		mav[i] = chosen
		load[chosen] += activity.Duration.EffectiveProcessMS()
	}
	return NewUnevaluated(osv, mav)
}

func primaryOnly(candidates []string, byID map[string]*structs.Resource) []string {
	var out []string
	for _, c := range candidates {
		if r, ok := byID[c]; ok && r.ResourceType.Kind == structs.ResourceKindPrimary {
			out = append(out, c)
		}
	}
	return out
}

// NewShortestTime builds a Genome whose MAV picks, per activity, the
// candidate yielding the smallest effective processing time once resource
// efficiency is applied.
func NewShortestTime(idx *Index, resources []*structs.Resource, rng *rand.Rand) *Genome {
	osv := buildOSV(idx, rng)
	byID := resourceByID(resources)

	mav := make([]string, idx.Len())
	for i := 0; i < idx.Len(); i++ {
		activity := idx.ActivityAt(i)
		candidates := activity.Candidates()
		if len(candidates) == 0 {
			continue
		}
		chosen := candidates[0]
		best := effectiveProcessTime(activity, chosen, byID)
		for _, c := range candidates[1:] {
			t := effectiveProcessTime(activity, c, byID)
			if t < best {
				chosen, best = c, t
			}
		}
		mav[i] = chosen
	}
	return NewUnevaluated(osv, mav)
}

func effectiveProcessTime(activity *structs.Activity, resourceID string, byID map[string]*structs.Resource) float64 {
	base := float64(activity.Duration.EffectiveProcessMS())
	r, ok := byID[resourceID]
	if !ok || r.Efficiency <= 0 {
		return base
	}
	return base / r.Efficiency
}
