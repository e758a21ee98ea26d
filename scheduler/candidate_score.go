// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package scheduler

import (
	"sort"

	"github.com/iyulab/U-RAS/structs"
)

// CandidateScore ranks one of an Activity's candidate Resources. It is a
// read-only diagnostic (SPEC_FULL.md §7): nothing in Schedule or
// ScheduleGenome consults it, so its presence or absence never changes a
// placement decision.
type CandidateScore struct {
	ResourceID    string
	SkillScore    float64
	EffectiveTime float64
	Eligible      bool
}

// RankCandidates scores every candidate of activity by mean required-skill
// proficiency (1.0 when the activity requires no skills) and by effective
// processing time under that resource's efficiency, then returns them
// ordered highest-skill-first, ties broken by lowest effective time. A
// candidate missing any required skill is still scored (Eligible=false)
// rather than dropped, so a caller can see which candidates lack a required
// skill; the greedy pass itself does not check skills.
func RankCandidates(activity *structs.Activity, resources []*structs.Resource) []CandidateScore {
	byID := make(map[string]*structs.Resource, len(resources))
	for _, r := range resources {
		byID[r.ID] = r
	}
	required := requiredSkills(activity)

	var out []CandidateScore
	for _, candidateID := range activity.Candidates() {
		r, ok := byID[candidateID]
		if !ok {
			out = append(out, CandidateScore{ResourceID: candidateID, Eligible: false})
			continue
		}
		out = append(out, CandidateScore{
			ResourceID:    candidateID,
			SkillScore:    meanSkillLevel(r, required),
			EffectiveTime: effectiveProcessTimeMS(activity, r),
			Eligible:      r.HasSkills(required),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SkillScore != out[j].SkillScore {
			return out[i].SkillScore > out[j].SkillScore
		}
		return out[i].EffectiveTime < out[j].EffectiveTime
	})
	return out
}

func requiredSkills(activity *structs.Activity) []string {
	var out []string
	for _, req := range activity.ResourceRequirements {
		out = append(out, req.RequiredSkills...)
	}
	return out
}

// meanSkillLevel returns the mean proficiency level r carries across
// required, or 1.0 when required is empty (no skill requirement to weigh).
func meanSkillLevel(r *structs.Resource, required []string) float64 {
	if len(required) == 0 {
		return 1.0
	}
	levels := make(map[string]float64, len(r.Skills))
	for _, s := range r.Skills {
		levels[s.Name] = s.Level
	}
	var sum float64
	for _, name := range required {
		sum += levels[name]
	}
	return sum / float64(len(required))
}

func effectiveProcessTimeMS(activity *structs.Activity, r *structs.Resource) float64 {
	base := float64(activity.Duration.EffectiveProcessMS())
	if r.Efficiency <= 0 {
		return base
	}
	return base / r.Efficiency
}
