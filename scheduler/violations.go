// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package scheduler

import (
	"fmt"
	"sort"

	"github.com/iyulab/U-RAS/helper"
	"github.com/iyulab/U-RAS/structs"
)

// DetectViolations recomputes every invariant of spec.md §3 (I1-I5) against
// an already-built Schedule and returns the Violations found. It is run
// after construction, never during: the greedy hot path (Schedule) and the
// GA decoder (ScheduleGenome) both deliberately omit capacity>1 packing and
// calendar gating for speed (spec.md §4.4 design notes); this pass is the
// "future work of the decoder" turned into a concrete, always-available
// component rather than a silent gap.
func DetectViolations(sched *structs.Schedule, tasks []*structs.Task, resources []*structs.Resource) []structs.Violation {
	var violations []structs.Violation

	byID := make(map[string]*structs.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}
	resourceByID := make(map[string]*structs.Resource, len(resources))
	for _, r := range resources {
		resourceByID[r.ID] = r
	}
	candidatesOf := make(map[string][]string)
	for _, t := range tasks {
		for _, a := range t.Activities {
			candidatesOf[a.ID] = a.Candidates()
		}
	}

	violations = append(violations, detectCapacityOverruns(sched, resourceByID)...)
	violations = append(violations, detectIntraTaskOrder(sched, byID)...)
	violations = append(violations, detectRelease(sched, byID)...)
	violations = append(violations, detectCandidateFeasibility(sched, candidatesOf)...)
	violations = append(violations, detectCalendarFeasibility(sched, resourceByID)...)

	return violations
}

// detectCapacityOverruns checks I1 for every resource, including capacity
// > 1, which the greedy hot path does not enforce.
func detectCapacityOverruns(sched *structs.Schedule, resources map[string]*structs.Resource) []structs.Violation {
	byResource := make(map[string][]structs.Assignment)
	for _, a := range sched.Assignments {
		byResource[a.ResourceID] = append(byResource[a.ResourceID], a)
	}

	var out []structs.Violation
	for resourceID, assignments := range byResource {
		capacity := 1
		if r, ok := resources[resourceID]; ok {
			capacity = r.NormalizedCapacity()
		}
		if maxOverlap(assignments) > capacity {
			out = append(out, structs.Violation{
				Kind:     structs.ViolationResourceOverlap,
				EntityID: resourceID,
				Message:  fmt.Sprintf("resource %q exceeds capacity %d at peak overlap", resourceID, capacity),
				Severity: structs.SeverityMajor,
			})
		}
	}
	return out
}

// maxOverlap returns the maximum number of assignments whose [start, end)
// intervals simultaneously contain some instant, via a classic sweep.
func maxOverlap(assignments []structs.Assignment) int {
	type event struct {
		t     int64
		delta int
	}
	events := make([]event, 0, len(assignments)*2)
	for _, a := range assignments {
		events = append(events, event{a.StartMS, 1}, event{a.EndMS, -1})
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].t != events[j].t {
			return events[i].t < events[j].t
		}
		// Process ends before starts at the same instant: a half-open
		// [start,end) interval does not overlap one that starts exactly
		// where it ends.
		return events[i].delta < events[j].delta
	})

	cur, max := 0, 0
	for _, e := range events {
		cur += e.delta
		if cur > max {
			max = cur
		}
	}
	return max
}

func detectIntraTaskOrder(sched *structs.Schedule, tasks map[string]*structs.Task) []structs.Violation {
	byActivity := make(map[string]structs.Assignment, len(sched.Assignments))
	for _, a := range sched.Assignments {
		byActivity[a.ActivityID] = a
	}

	var out []structs.Violation
	for _, task := range tasks {
		sorted := task.SortedActivities()
		for i := 0; i+1 < len(sorted); i++ {
			cur, ok1 := byActivity[sorted[i].ID]
			next, ok2 := byActivity[sorted[i+1].ID]
			if !ok1 || !ok2 {
				continue
			}
			if cur.EndMS > next.StartMS {
				out = append(out, structs.Violation{
					Kind:     structs.ViolationIntraTaskOrder,
					EntityID: sorted[i+1].ID,
					Message:  fmt.Sprintf("activity %q starts before predecessor %q ends", sorted[i+1].ID, sorted[i].ID),
					Severity: structs.SeverityMajor,
				})
			}
		}
	}
	return out
}

func detectRelease(sched *structs.Schedule, tasks map[string]*structs.Task) []structs.Violation {
	var out []structs.Violation
	for _, a := range sched.Assignments {
		task, ok := tasks[a.TaskID]
		if !ok || task.ReleaseTime == nil {
			continue
		}
		if a.StartMS < *task.ReleaseTime {
			out = append(out, structs.Violation{
				Kind:     structs.ViolationReleaseTime,
				EntityID: a.ActivityID,
				Message:  fmt.Sprintf("activity %q starts before task %q's release time", a.ActivityID, task.ID),
				Severity: structs.SeverityMajor,
			})
		}
	}
	return out
}

func detectCandidateFeasibility(sched *structs.Schedule, candidatesOf map[string][]string) []structs.Violation {
	var out []structs.Violation
	for _, a := range sched.Assignments {
		candidates, ok := candidatesOf[a.ActivityID]
		if !ok || len(candidates) == 0 {
			continue
		}
		if !helper.ContainsString(candidates, a.ResourceID) {
			out = append(out, structs.Violation{
				Kind:     structs.ViolationCandidateFeasibility,
				EntityID: a.ActivityID,
				Message:  fmt.Sprintf("activity %q assigned to %q outside its candidate list", a.ActivityID, a.ResourceID),
				Severity: structs.SeverityCritical,
			})
		}
	}
	return out
}

func detectCalendarFeasibility(sched *structs.Schedule, resources map[string]*structs.Resource) []structs.Violation {
	var out []structs.Violation
	for _, a := range sched.Assignments {
		r, ok := resources[a.ResourceID]
		if !ok || r.Calendar == nil {
			continue
		}
		if !r.Calendar.IsWorkingTime(a.StartMS) {
			out = append(out, structs.Violation{
				Kind:     structs.ViolationCalendarFeasibility,
				EntityID: a.ActivityID,
				Message:  fmt.Sprintf("activity %q starts outside resource %q's working calendar", a.ActivityID, a.ResourceID),
				Severity: structs.SeverityMinor,
			})
		}
	}
	return out
}

