// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package scheduler implements the greedy priority scheduler (C7): a
// single, non-preemptive, non-backtracking pass over tasks that places
// every activity on the earliest-available feasible candidate resource.
// It is both the deterministic baseline scheduler and the GA's decoder
// when parameterized by a genome's operation-sequence ordering
// (ScheduleGenome).
package scheduler

import (
	"sort"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/iyulab/U-RAS/structs"
	"github.com/iyulab/U-RAS/transition"
	"github.com/iyulab/U-RAS/urasmetrics"
)

// Options configures optional, non-load-bearing instrumentation. The zero
// value is a fully usable Options: a null logger and a discard metrics
// sink, exactly like the greedy algorithm run with no Options at all.
type Options struct {
	Logger hclog.Logger
	Metrics urasmetrics.Sink
}

func (o Options) logger() hclog.Logger {
	if o.Logger == nil {
		return hclog.NewNullLogger()
	}
	return o.Logger
}

func (o Options) metrics() urasmetrics.Sink {
	return urasmetrics.Or(o.Metrics)
}

// resourceState is the per-resource mutable register the greedy pass
// carries across activities: available_at and last_category, exactly as
// spec.md §4.4 step 1 describes. It is local to one Schedule call and
// never shared across decodes, even when decodes run concurrently (see
// spec.md §5).
type resourceState struct {
	availableAt  map[string]int64
	lastCategory map[string]string
}

func newResourceState(startMS int64, resources []*structs.Resource) *resourceState {
	rs := &resourceState{
		availableAt:  make(map[string]int64, len(resources)),
		lastCategory: make(map[string]string, len(resources)),
	}
	for _, r := range resources {
		rs.availableAt[r.ID] = startMS
	}
	return rs
}

// Schedule runs the greedy priority scheduler over tasks and resources,
// starting no earlier than startMS, per spec.md §4.4. Tasks are visited in
// descending-priority order (ties broken by input order, a stable sort);
// within a task, activities are visited in sequence order. matrices may be
// nil, meaning every setup time is 0.
func Schedule(tasks []*structs.Task, resources []*structs.Resource, startMS int64, matrices *transition.Collection, opts Options) *structs.Schedule {
	defer opts.metrics().MeasureSince([]string{"scheduler", "schedule"}, time.Now())
	log := opts.logger()

	ordered := append([]*structs.Task(nil), tasks...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Priority > ordered[j].Priority })

	state := newResourceState(startMS, resources)
	sched := &structs.Schedule{}

	for _, task := range ordered {
		cursor := startMS
		if task.ReleaseTime != nil && *task.ReleaseTime > cursor {
			cursor = *task.ReleaseTime
		}

		for _, activity := range task.SortedActivities() {
			candidates := activity.Candidates()
			if len(candidates) == 0 {
				log.Debug("skipping activity with no candidates", "activity", activity.ID)
				continue
			}

			chosen, effectiveStart := pickCandidate(candidates, state, cursor)

			setup := matrices.Setup(chosen, state.lastCategory[chosen], task.Category)
			start := effectiveStart
			end := start + setup + activity.Duration.EffectiveProcessMS()

			sched.Assignments = append(sched.Assignments, structs.Assignment{
				ActivityID: activity.ID,
				TaskID:     task.ID,
				ResourceID: chosen,
				StartMS:    start,
				EndMS:      end,
				SetupMS:    setup,
			})

			state.availableAt[chosen] = end
			state.lastCategory[chosen] = task.Category
			cursor = end

			if end > sched.MakespanMS {
				sched.MakespanMS = end
			}
			log.Debug("placed activity", "activity", activity.ID, "resource", chosen, "start", start, "end", end)
			opts.metrics().IncrCounter([]string{"scheduler", "assignments"}, 1)
		}
	}

	return sched
}

// pickCandidate chooses, among candidates, the one with the smallest
// effective_start = max(available_at[cand], cursor); ties are broken by
// input order of the candidate list (spec.md §4.4 step b).
func pickCandidate(candidates []string, state *resourceState, cursor int64) (string, int64) {
	chosen := candidates[0]
	best := effectiveStart(state, chosen, cursor)
	for _, c := range candidates[1:] {
		s := effectiveStart(state, c, cursor)
		if s < best {
			chosen, best = c, s
		}
	}
	return chosen, best
}

func effectiveStart(state *resourceState, resourceID string, cursor int64) int64 {
	available := state.availableAt[resourceID]
	if available > cursor {
		return available
	}
	return cursor
}
