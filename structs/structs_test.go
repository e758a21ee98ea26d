// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package structs

import (
	"encoding/json"
	"testing"

	"github.com/iyulab/U-RAS/ci"
	"github.com/iyulab/U-RAS/helper"
	"github.com/shoenig/test/must"
	"github.com/stretchr/testify/require"
)

func mockTask(id string, candidates ...string) *Task {
	return &Task{
		ID:       id,
		Name:     id,
		Category: "widget",
		Priority: 1,
		Activities: []*Activity{
			{
				ID:       id + "-a1",
				TaskID:   id,
				Sequence: 1,
				Duration: Duration{ProcessMS: 1000},
				ResourceRequirements: []*ResourceRequirement{
					{ResourceType: "machine", Quantity: 1, Candidates: candidates},
				},
			},
		},
	}
}

func mockResource(id string) *Resource {
	return &Resource{ID: id, Name: id, ResourceType: ResourceType{Kind: ResourceKindPrimary}, Capacity: 1, Efficiency: 1.0}
}

func TestValidateInput_DuplicateTask(t *testing.T) {
	ci.Parallel(t)

	tasks := []*Task{mockTask("T1", "M1"), mockTask("T1", "M1")}
	resources := []*Resource{mockResource("M1")}

	result := ValidateInput(tasks, resources)
	require.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	require.Equal(t, ErrDuplicateTask, result.Errors[0].Code)
}

func TestValidateInput_InvalidResourceRef(t *testing.T) {
	ci.Parallel(t)

	tasks := []*Task{mockTask("T1", "UNKNOWN")}
	resources := []*Resource{mockResource("M1")}

	result := ValidateInput(tasks, resources)
	require.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	require.Equal(t, ErrInvalidResourceRef, result.Errors[0].Code)
}

func TestValidateInput_Valid(t *testing.T) {
	ci.Parallel(t)

	tasks := []*Task{mockTask("T1", "M1")}
	resources := []*Resource{mockResource("M1")}

	result := ValidateInput(tasks, resources)
	must.True(t, result.Valid)
	must.Nil(t, result.Err())
}

func TestResourceType_JSONRoundTrip(t *testing.T) {
	ci.Parallel(t)

	for _, rt := range []ResourceType{
		{Kind: ResourceKindPrimary},
		{Kind: ResourceKindSecondary},
		{Kind: ResourceKindHuman},
		{Kind: ResourceKindConsumable},
		NewCustomResourceType("forklift"),
	} {
		data, err := json.Marshal(rt)
		require.NoError(t, err)
		var got ResourceType
		require.NoError(t, json.Unmarshal(data, &got))
		require.Equal(t, rt, got)
	}
}

func TestDuration_EffectiveProcessMS_PrefersPERT(t *testing.T) {
	ci.Parallel(t)

	d := Duration{ProcessMS: 999, Estimate: &ProcessEstimate{Optimistic: 2, MostLikely: 4, Pessimistic: 12}}
	require.Equal(t, int64(5), d.EffectiveProcessMS()) // (2+16+12)/6 = 5
	require.Equal(t, int64(999), Duration{ProcessMS: 999}.EffectiveProcessMS())
}

func TestSchedule_RecomputeMakespan(t *testing.T) {
	ci.Parallel(t)

	s := &Schedule{Assignments: []Assignment{{EndMS: 500}, {EndMS: 1500}, {EndMS: 700}}}
	s.RecomputeMakespan()
	require.Equal(t, int64(1500), s.MakespanMS)

	empty := &Schedule{}
	empty.RecomputeMakespan()
	require.Equal(t, int64(0), empty.MakespanMS)
}

func TestSchedule_WorstSeverity(t *testing.T) {
	ci.Parallel(t)

	s := &Schedule{Violations: []Violation{
		{Severity: SeverityMinor},
		{Severity: SeverityCritical},
		{Severity: SeverityInfo},
	}}
	require.Equal(t, SeverityCritical, s.WorstSeverity())
	require.Equal(t, SeverityInfo, (&Schedule{}).WorstSeverity())
}

func TestSchedule_MsgpackRoundTrip(t *testing.T) {
	ci.Parallel(t)

	s := &Schedule{
		Assignments: []Assignment{{ActivityID: "A1", TaskID: "T1", ResourceID: "M1", StartMS: 0, EndMS: 100, SetupMS: 10}},
		MakespanMS:  100,
	}
	data, err := s.EncodeMsgpack()
	require.NoError(t, err)

	got, warn, err := DecodeScheduleMsgpack(data)
	require.NoError(t, err)
	require.Nil(t, warn)
	require.Equal(t, s.MakespanMS, got.MakespanMS)
	require.Equal(t, s.Assignments, got.Assignments)
}

func TestResource_NormalizedCapacity(t *testing.T) {
	ci.Parallel(t)

	require.Equal(t, 1, (&Resource{}).NormalizedCapacity())
	require.Equal(t, 4, (&Resource{Capacity: 4}).NormalizedCapacity())
}

func TestResource_HasSkills(t *testing.T) {
	ci.Parallel(t)

	r := &Resource{Skills: []Skill{{Name: "welding", Level: 0.8}}}
	require.True(t, r.HasSkills(nil))
	require.True(t, r.HasSkills([]string{"welding"}))
	require.False(t, r.HasSkills([]string{"welding", "painting"}))
}

func TestTask_Copy_IsDeep(t *testing.T) {
	ci.Parallel(t)

	orig := mockTask("T1", "M1")
	orig.Deadline = helper.Ptr(int64(5000))
	cp := orig.Copy()
	cp.Deadline = helper.Ptr(int64(9999))
	cp.Activities[0].Duration.ProcessMS = 1

	require.Equal(t, int64(5000), *orig.Deadline)
	require.Equal(t, int64(1000), orig.Activities[0].Duration.ProcessMS)
}
