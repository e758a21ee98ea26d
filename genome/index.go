// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package genome implements the dual-vector scheduling encoding (C8): the
// Operation Sequence Vector (OSV), the Machine Assignment Vector (MAV),
// the canonical activity Index shared read-only across a population
// (per SPEC_FULL.md §4.5's design note, hoisted out of the genome itself),
// and the three seeding strategies.
package genome

import (
	"fmt"
	"sort"

	"github.com/iyulab/U-RAS/structs"
)

// activityKey is the canonical (task_id, sequence) identity of one
// Activity.
type activityKey struct {
	TaskID   string
	Sequence int
}

// Index is the read-only, once-built mapping from canonical activity
// identity to its position in the fixed enumeration every genome's MAV is
// indexed by, and back. It is owned by ga.Population, not by any
// individual Genome, so a large population pays its cost exactly once.
type Index struct {
	activities []*structs.Activity
	order      []activityKey
	position   map[activityKey]int
	tasks      map[string]*structs.Task
	occursOf   map[string]int
}

// BuildIndex enumerates every Activity of tasks in (task_id, sequence)
// order, the fixed canonical activity ordering spec.md §4.5 mandates.
func BuildIndex(tasks []*structs.Task) (*Index, error) {
	idx := &Index{
		position: make(map[activityKey]int),
		tasks:    make(map[string]*structs.Task, len(tasks)),
		occursOf: make(map[string]int, len(tasks)),
	}

	sortedTasks := append([]*structs.Task(nil), tasks...)
	sort.SliceStable(sortedTasks, func(i, j int) bool { return sortedTasks[i].ID < sortedTasks[j].ID })

	for _, t := range sortedTasks {
		idx.tasks[t.ID] = t
		idx.occursOf[t.ID] = len(t.Activities)
		for _, a := range t.SortedActivities() {
			key := activityKey{TaskID: t.ID, Sequence: a.Sequence}
			if _, exists := idx.position[key]; exists {
				return nil, fmt.Errorf("genome: duplicate (task,sequence) %+v", key)
			}
			idx.position[key] = len(idx.activities)
			idx.order = append(idx.order, key)
			idx.activities = append(idx.activities, a)
		}
	}
	return idx, nil
}

// Len returns the number of canonical activities (len(OSV) == len(MAV) ==
// Len()).
func (idx *Index) Len() int { return len(idx.activities) }

// ActivityAt returns the canonical Activity at position i.
func (idx *Index) ActivityAt(i int) *structs.Activity { return idx.activities[i] }

// PositionOf returns the canonical index of the k-th (1-based) occurrence
// of taskID, i.e. activity (taskID, k).
func (idx *Index) PositionOf(taskID string, sequence int) (int, bool) {
	p, ok := idx.position[activityKey{TaskID: taskID, Sequence: sequence}]
	return p, ok
}

// TaskIDs returns every task id in the Index, in canonical (sorted) order.
func (idx *Index) TaskIDs() []string {
	ids := make([]string, 0, len(idx.tasks))
	for id := range idx.tasks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// OccurrencesOf returns how many times taskID must appear in a valid OSV
// (== the number of its activities).
func (idx *Index) OccurrencesOf(taskID string) int { return idx.occursOf[taskID] }

// Task returns the Task for a given id.
func (idx *Index) Task(taskID string) *structs.Task { return idx.tasks[taskID] }

// ActivityFor resolves the k-th (1-based) occurrence of taskID in OSV to
// its Activity, per the decode invariant of spec.md §4.5.
func (idx *Index) ActivityFor(taskID string, occurrence int) (*structs.Activity, bool) {
	p, ok := idx.PositionOf(taskID, occurrence)
	if !ok {
		return nil, false
	}
	return idx.activities[p], true
}
