// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package structs holds every shared domain entity of the scheduling
// kernel: Task, Activity, ResourceRequirement, Resource, Schedule,
// Assignment, and the Violation/ValidationResult error surfaces. Every
// exported type here is serialization-friendly: the field names are the
// wire contract and must not change across ports.
//
// Entities are immutable once handed to a scheduler. Nothing in this
// package mutates a Task, Activity, or Resource after construction; Copy
// methods are provided for callers that need a defensive clone before
// mutating their own working copy.
package structs

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"
	set "github.com/hashicorp/go-set/v3"
	"github.com/mitchellh/copystructure"

	"github.com/iyulab/U-RAS/calendar"
)

// Task is an ordered collection of Activities competing for resources under
// a single priority, category, and optional release/deadline window.
type Task struct {
	ID          string            `json:"id" msgpack:"id"`
	Name        string            `json:"name" msgpack:"name"`
	Category    string            `json:"category" msgpack:"category"`
	Priority    int               `json:"priority" msgpack:"priority"`
	Deadline    *int64            `json:"deadline" msgpack:"deadline"`
	ReleaseTime *int64            `json:"release_time" msgpack:"release_time"`
	Activities  []*Activity       `json:"activities" msgpack:"activities"`
	Attributes  map[string]string `json:"attributes" msgpack:"attributes"`
}

// SortedActivities returns Activities sorted by Sequence, ascending. The
// source slice is not mutated.
func (t *Task) SortedActivities() []*Activity {
	out := append([]*Activity(nil), t.Activities...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out
}

// TotalDurationMS sums EffectiveTotalMS across every Activity, the quantity
// every SPT/LPT/LWKR-family dispatching rule consults.
func (t *Task) TotalDurationMS() int64 {
	var total int64
	for _, a := range t.Activities {
		total += a.Duration.EffectiveTotalMS()
	}
	return total
}

// Copy returns a deep copy of t, including every Activity.
func (t *Task) Copy() *Task {
	if t == nil {
		return nil
	}
	cp, err := copystructure.Copy(t)
	if err != nil {
		// copystructure only fails on types it cannot reflect over (e.g. an
		// unexported field smuggled in); every field here is exported and
		// copy-safe, so this path is unreachable in practice.
		panic(fmt.Sprintf("structs: Task.Copy: %v", err))
	}
	return cp.(*Task)
}

// Activity is a single step of a Task: a duration, a set of resource
// requirements, and optional intra-task predecessors.
type Activity struct {
	ID                  string                `json:"id" msgpack:"id"`
	TaskID              string                `json:"task_id" msgpack:"task_id"`
	Sequence            int                   `json:"sequence" msgpack:"sequence"`
	Duration            Duration              `json:"duration" msgpack:"duration"`
	ResourceRequirements []*ResourceRequirement `json:"resource_requirements" msgpack:"resource_requirements"`
	Predecessors        []string              `json:"predecessors" msgpack:"predecessors"`
	Splittable          bool                  `json:"splittable" msgpack:"splittable"`
	MinSplitMS          int64                 `json:"min_split_ms" msgpack:"min_split_ms"`
	Attributes          map[string]string     `json:"attributes" msgpack:"attributes"`
}

// Candidates flattens every ResourceRequirement's candidate list, in
// requirement order then candidate-list order, the enumeration the
// priority scheduler (C7 step a) consults.
func (a *Activity) Candidates() []string {
	var out []string
	for _, r := range a.ResourceRequirements {
		out = append(out, r.Candidates...)
	}
	return out
}

// Duration is the three-part activity duration: setup, process, teardown,
// plus an optional PERT three-point estimate supplementing the flat
// ProcessMS figure (see SPEC_FULL.md §7).
type Duration struct {
	SetupMS    int64 `json:"setup_ms" msgpack:"setup_ms"`
	ProcessMS  int64 `json:"process_ms" msgpack:"process_ms"`
	TeardownMS int64 `json:"teardown_ms" msgpack:"teardown_ms"`

	Estimate *ProcessEstimate `json:"process_estimate,omitempty" msgpack:"process_estimate,omitempty"`
}

// ProcessEstimate is a three-point (optimistic, most-likely, pessimistic)
// PERT estimate of process time, in milliseconds.
type ProcessEstimate struct {
	Optimistic  int64 `json:"optimistic" msgpack:"optimistic"`
	MostLikely  int64 `json:"most_likely" msgpack:"most_likely"`
	Pessimistic int64 `json:"pessimistic" msgpack:"pessimistic"`
}

// Mean returns the PERT mean (O+4M+P)/6.
func (p ProcessEstimate) Mean() int64 {
	return (p.Optimistic + 4*p.MostLikely + p.Pessimistic) / 6
}

// EffectiveProcessMS returns the PERT mean when an Estimate is present,
// otherwise the flat ProcessMS. Additive: callers that never set Estimate
// see identical behavior to the flat field alone.
func (d Duration) EffectiveProcessMS() int64 {
	if d.Estimate != nil {
		return d.Estimate.Mean()
	}
	return d.ProcessMS
}

// EffectiveTotalMS returns setup + EffectiveProcessMS + teardown.
func (d Duration) EffectiveTotalMS() int64 {
	return d.SetupMS + d.EffectiveProcessMS() + d.TeardownMS
}

// ResourceRequirement names a resource type, quantity, candidate list, and
// required skills an Activity needs. An empty Candidates list means no
// feasible placement exists for this requirement.
type ResourceRequirement struct {
	ResourceType    string   `json:"resource_type" msgpack:"resource_type"`
	Quantity        int      `json:"quantity" msgpack:"quantity"`
	Candidates      []string `json:"candidates" msgpack:"candidates"`
	RequiredSkills  []string `json:"required_skills" msgpack:"required_skills"`
}

// ResourceKind is the variant tag of a Resource's type.
type ResourceKind int

const (
	ResourceKindPrimary ResourceKind = iota
	ResourceKindSecondary
	ResourceKindHuman
	ResourceKindConsumable
	ResourceKindCustom
)

func (k ResourceKind) String() string {
	switch k {
	case ResourceKindPrimary:
		return "Primary"
	case ResourceKindSecondary:
		return "Secondary"
	case ResourceKindHuman:
		return "Human"
	case ResourceKindConsumable:
		return "Consumable"
	case ResourceKindCustom:
		return "Custom"
	default:
		return "Unknown"
	}
}

// ResourceType is Primary | Secondary | Human | Consumable | Custom(tag).
// It marshals to the bare string for the four fixed variants, or to
// {"Custom":"<tag>"} for the custom variant, exactly as spec.md §6
// documents.
type ResourceType struct {
	Kind   ResourceKind
	Custom string
}

// NewCustomResourceType builds a Custom(tag) ResourceType.
func NewCustomResourceType(tag string) ResourceType {
	return ResourceType{Kind: ResourceKindCustom, Custom: tag}
}

func (rt ResourceType) String() string {
	if rt.Kind == ResourceKindCustom {
		return rt.Custom
	}
	return rt.Kind.String()
}

func (rt ResourceType) MarshalJSON() ([]byte, error) {
	if rt.Kind == ResourceKindCustom {
		return []byte(fmt.Sprintf(`{"Custom":%q}`, rt.Custom)), nil
	}
	return []byte(fmt.Sprintf("%q", rt.Kind.String())), nil
}

func (rt *ResourceType) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		switch plain {
		case "Primary":
			*rt = ResourceType{Kind: ResourceKindPrimary}
		case "Secondary":
			*rt = ResourceType{Kind: ResourceKindSecondary}
		case "Human":
			*rt = ResourceType{Kind: ResourceKindHuman}
		case "Consumable":
			*rt = ResourceType{Kind: ResourceKindConsumable}
		default:
			return fmt.Errorf("structs: unknown resource_type %q", plain)
		}
		return nil
	}
	var wrapped struct {
		Custom string `json:"Custom"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return fmt.Errorf("structs: invalid resource_type: %w", err)
	}
	*rt = NewCustomResourceType(wrapped.Custom)
	return nil
}

// Skill is a named proficiency in [0,1] carried by a Resource.
type Skill struct {
	Name  string  `json:"name" msgpack:"name"`
	Level float64 `json:"level" msgpack:"level"`
}

// Resource is a schedulable unit of capacity: a machine, a worker, a tool.
type Resource struct {
	ID          string            `json:"id" msgpack:"id"`
	Name        string            `json:"name" msgpack:"name"`
	ResourceType ResourceType     `json:"resource_type" msgpack:"resource_type"`
	Capacity    int               `json:"capacity" msgpack:"capacity"`
	Efficiency  float64           `json:"efficiency" msgpack:"efficiency"`
	Calendar    *calendar.Calendar `json:"calendar,omitempty" msgpack:"calendar,omitempty"`
	Skills      []Skill           `json:"skills" msgpack:"skills"`
	CostPerHour *float64          `json:"cost_per_hour,omitempty" msgpack:"cost_per_hour,omitempty"`
	Attributes  map[string]string `json:"attributes" msgpack:"attributes"`
}

// NormalizedCapacity returns Capacity, defaulting to 1 when unset (<=0),
// per spec.md §3 "integer capacity (simultaneous users; default 1)".
func (r *Resource) NormalizedCapacity() int {
	if r.Capacity <= 0 {
		return 1
	}
	return r.Capacity
}

// HasSkills reports whether r carries every skill in required, regardless
// of proficiency level.
func (r *Resource) HasSkills(required []string) bool {
	if len(required) == 0 {
		return true
	}
	have := set.New[string](len(r.Skills))
	for _, s := range r.Skills {
		have.Insert(s.Name)
	}
	for _, need := range required {
		if !have.Contains(need) {
			return false
		}
	}
	return true
}

// Copy returns a deep copy of r.
func (r *Resource) Copy() *Resource {
	if r == nil {
		return nil
	}
	cp, err := copystructure.Copy(r)
	if err != nil {
		panic(fmt.Sprintf("structs: Resource.Copy: %v", err))
	}
	return cp.(*Resource)
}

// Severity ranks a Violation's importance, Info < Minor < Major < Critical.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityMinor
	SeverityMajor
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "Info"
	case SeverityMinor:
		return "Minor"
	case SeverityMajor:
		return "Major"
	case SeverityCritical:
		return "Critical"
	default:
		return "Unknown"
	}
}

// ViolationKind names the invariant a Violation reports against.
type ViolationKind string

const (
	ViolationResourceOverlap      ViolationKind = "RESOURCE_OVERLAP"
	ViolationIntraTaskOrder       ViolationKind = "INTRA_TASK_ORDER"
	ViolationReleaseTime          ViolationKind = "RELEASE_TIME"
	ViolationCandidateFeasibility ViolationKind = "CANDIDATE_FEASIBILITY"
	ViolationCalendarFeasibility  ViolationKind = "CALENDAR_FEASIBILITY"
)

// Violation records a model-logic problem found in a Schedule. Violations
// never abort construction; they annotate the Schedule the kernel returns.
type Violation struct {
	Kind     ViolationKind `json:"kind" msgpack:"kind"`
	EntityID string        `json:"entity_id" msgpack:"entity_id"`
	Message  string        `json:"message" msgpack:"message"`
	Severity Severity      `json:"severity" msgpack:"severity"`
}

// Assignment binds one Activity to one Resource over [StartMS, EndMS).
type Assignment struct {
	ActivityID string `json:"activity_id" msgpack:"activity_id"`
	TaskID     string `json:"task_id" msgpack:"task_id"`
	ResourceID string `json:"resource_id" msgpack:"resource_id"`
	StartMS    int64  `json:"start_ms" msgpack:"start_ms"`
	EndMS      int64  `json:"end_ms" msgpack:"end_ms"`
	SetupMS    int64  `json:"setup_ms" msgpack:"setup_ms"`
}

// Schedule is the kernel's sole output: a list of Assignments plus the
// derived makespan and any recorded Violations.
type Schedule struct {
	Assignments []Assignment `json:"assignments" msgpack:"assignments"`
	MakespanMS  int64        `json:"makespan_ms" msgpack:"makespan_ms"`
	Violations  []Violation  `json:"violations" msgpack:"violations"`

	// Version is ambient bookkeeping for callers that want cheap cache
	// invalidation. Neither Schedule nor ScheduleGenome sets it (it stays
	// 0 on a freshly built Schedule), and it participates in no invariant
	// or equality check.
	Version uint64 `json:"version" msgpack:"version"`
}

// RecomputeMakespan sets MakespanMS to the max EndMS over every Assignment,
// or 0 when Assignments is empty (P3 Makespan identity).
func (s *Schedule) RecomputeMakespan() {
	var max int64
	for _, a := range s.Assignments {
		if a.EndMS > max {
			max = a.EndMS
		}
	}
	s.MakespanMS = max
}

// WorstSeverity returns the highest Severity among s.Violations, or
// SeverityInfo when there are none. A cheap "is this schedule acceptable"
// getter for callers that don't want to aggregate KPIs themselves.
func (s *Schedule) WorstSeverity() Severity {
	worst := SeverityInfo
	for _, v := range s.Violations {
		if v.Severity > worst {
			worst = v.Severity
		}
	}
	return worst
}

// ValidationErrorCode enumerates the input-validation failures ValidateInput
// can report.
type ValidationErrorCode string

const (
	ErrDuplicateTask     ValidationErrorCode = "DUPLICATE_TASK"
	ErrDuplicateResource ValidationErrorCode = "DUPLICATE_RESOURCE"
	ErrInvalidResourceRef ValidationErrorCode = "INVALID_RESOURCE_REF"
)

// ValidationError is one recorded input-validation failure.
type ValidationError struct {
	Code     ValidationErrorCode `json:"code"`
	EntityID string              `json:"entity_id"`
	Message  string              `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Code, e.EntityID, e.Message)
}

// ValidationResult is the outcome of ValidateInput: Valid is true iff Errors
// is empty.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors"`
}

// Err returns a *multierror.Error aggregating every ValidationError, or nil
// when r is valid. Kept for callers that want the standard Go error idiom
// on top of the structured Errors slice.
func (r *ValidationResult) Err() error {
	if r == nil || r.Valid {
		return nil
	}
	var merr *multierror.Error
	for _, e := range r.Errors {
		merr = multierror.Append(merr, e)
	}
	return merr.ErrorOrNil()
}

// ValidateInput checks tasks and resources for duplicate ids and unknown
// resource references, per spec.md §6. Scheduling on invalid input is
// permitted but produces undefined assignments; this is advisory, not a
// gate the kernel enforces itself.
func ValidateInput(tasks []*Task, resources []*Resource) *ValidationResult {
	result := &ValidationResult{Valid: true}

	seenTasks := set.New[string](len(tasks))
	for _, t := range tasks {
		if seenTasks.Contains(t.ID) {
			result.Errors = append(result.Errors, ValidationError{
				Code: ErrDuplicateTask, EntityID: t.ID,
				Message: fmt.Sprintf("duplicate task id %q", t.ID),
			})
			continue
		}
		seenTasks.Insert(t.ID)
	}

	resourceIDs := set.New[string](len(resources))
	seenResources := set.New[string](len(resources))
	for _, r := range resources {
		if seenResources.Contains(r.ID) {
			result.Errors = append(result.Errors, ValidationError{
				Code: ErrDuplicateResource, EntityID: r.ID,
				Message: fmt.Sprintf("duplicate resource id %q", r.ID),
			})
			continue
		}
		seenResources.Insert(r.ID)
		resourceIDs.Insert(r.ID)
	}

	for _, t := range tasks {
		for _, a := range t.Activities {
			for _, req := range a.ResourceRequirements {
				for _, cand := range req.Candidates {
					if !resourceIDs.Contains(cand) {
						result.Errors = append(result.Errors, ValidationError{
							Code: ErrInvalidResourceRef, EntityID: a.ID,
							Message: fmt.Sprintf("activity %q references unknown resource %q", a.ID, cand),
						})
					}
				}
			}
		}
	}

	result.Valid = len(result.Errors) == 0
	return result
}
