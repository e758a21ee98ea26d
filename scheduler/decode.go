// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package scheduler

import (
	"time"

	"github.com/iyulab/U-RAS/genome"
	"github.com/iyulab/U-RAS/structs"
	"github.com/iyulab/U-RAS/transition"
	"github.com/iyulab/U-RAS/urasmetrics"
)

// ScheduleGenome decodes g into a Schedule: the OSV supplies the activity
// visitation order (the k-th occurrence of task T binds to activity
// (T, k), the decode invariant of spec.md §4.5), and the MAV supplies the
// resource for each canonical activity directly, skipping the candidate
// search step 3.b of the priority scheduler. It otherwise reuses the exact
// same precedence/availability bookkeeping (per-resource available_at and
// last_category, per-task cursor) as Schedule, since the decoder is
// required to mirror the priority scheduler's rules (spec.md §1).
func ScheduleGenome(g *genome.Genome, idx *genome.Index, resources []*structs.Resource, startMS int64, matrices *transition.Collection, opts Options) *structs.Schedule {
	defer opts.metrics().MeasureSince([]string{"scheduler", "decode"}, time.Now())

	state := newResourceState(startMS, resources)
	cursors := make(map[string]int64)

	sched := &structs.Schedule{}

	occurrence := make(map[string]int)
	for _, taskID := range g.OSV {
		occurrence[taskID]++
		canonical, ok := idx.PositionOf(taskID, occurrence[taskID])
		if !ok {
			continue
		}
		activity := idx.ActivityAt(canonical)
		task := idx.Task(taskID)

		cursor, ok := cursors[taskID]
		if !ok {
			cursor = startMS
			if task.ReleaseTime != nil && *task.ReleaseTime > cursor {
				cursor = *task.ReleaseTime
			}
		}

		resourceID := g.MAV[canonical]
		if resourceID == "" {
			continue
		}

		effective := effectiveStart(state, resourceID, cursor)
		setup := matrices.Setup(resourceID, state.lastCategory[resourceID], task.Category)
		start := effective
		end := start + setup + activity.Duration.EffectiveProcessMS()

		sched.Assignments = append(sched.Assignments, structs.Assignment{
			ActivityID: activity.ID,
			TaskID:     taskID,
			ResourceID: resourceID,
			StartMS:    start,
			EndMS:      end,
			SetupMS:    setup,
		})

		state.availableAt[resourceID] = end
		state.lastCategory[resourceID] = task.Category
		cursors[taskID] = end

		if end > sched.MakespanMS {
			sched.MakespanMS = end
		}
	}

	return sched
}

// MakespanEvaluator returns a function suitable as ga.Population's
// Evaluator: it decodes a genome with ScheduleGenome and returns the
// resulting makespan, the fitness signal spec.md §4.7 calls "typically the
// greedy decoder yielding a makespan". When every candidate list is empty
// the decoder produces an empty schedule, whose makespan (0) is the
// documented "no-op" fitness every genome in that scenario shares.
func MakespanEvaluator(idx *genome.Index, resources []*structs.Resource, startMS int64, matrices *transition.Collection, sink urasmetrics.Sink) func(*genome.Genome) float64 {
	return func(g *genome.Genome) float64 {
		sched := ScheduleGenome(g, idx, resources, startMS, matrices, Options{Metrics: sink})
		return float64(sched.MakespanMS)
	}
}
