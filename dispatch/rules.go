// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package dispatch

import (
	"math"

	"github.com/iyulab/U-RAS/structs"
)

// Rule is a pure, side-effect-free, total priority function: lower score
// means higher priority. Implementations are lightweight value types, not
// object-identity-bearing singletons — two SPTRule{} values are
// interchangeable.
type Rule interface {
	Name() string
	Evaluate(t *structs.Task, ctx Context) float64
}

// remainingOrTotal returns Context.RemainingWork(t.ID) when set, else the
// static sum of the task's activity totals — the fallback every rule that
// consults "remaining work" shares (LWKR, MWKR, MST, CR).
func remainingOrTotal(t *structs.Task, ctx Context) float64 {
	if v, ok := ctx.RemainingWork(t.ID); ok {
		return float64(v)
	}
	return float64(t.TotalDurationMS())
}

func deadlineOf(t *structs.Task) (float64, bool) {
	if t.Deadline == nil {
		return 0, false
	}
	return float64(*t.Deadline), true
}

// SPTRule: Shortest Processing Time — Σ activity totals.
type SPTRule struct{}

func (SPTRule) Name() string { return "SPT" }
func (SPTRule) Evaluate(t *structs.Task, ctx Context) float64 {
	return orInf(float64(t.TotalDurationMS()))
}

// LPTRule: Longest Processing Time — −Σ activity totals.
type LPTRule struct{}

func (LPTRule) Name() string { return "LPT" }
func (LPTRule) Evaluate(t *structs.Task, ctx Context) float64 {
	return orInf(-float64(t.TotalDurationMS()))
}

// LWKRRule: Least Work Remaining.
type LWKRRule struct{}

func (LWKRRule) Name() string { return "LWKR" }
func (LWKRRule) Evaluate(t *structs.Task, ctx Context) float64 {
	return orInf(remainingOrTotal(t, ctx))
}

// MWKRRule: Most Work Remaining — the negation of LWKR's score.
type MWKRRule struct{}

func (MWKRRule) Name() string { return "MWKR" }
func (MWKRRule) Evaluate(t *structs.Task, ctx Context) float64 {
	return orInf(-remainingOrTotal(t, ctx))
}

// WSPTRule: Weighted Shortest Processing Time.
type WSPTRule struct{}

func (WSPTRule) Name() string { return "WSPT" }
func (WSPTRule) Evaluate(t *structs.Task, ctx Context) float64 {
	total := float64(t.TotalDurationMS())
	if total == 0 {
		return math.Inf(1)
	}
	weight := 1000.0 / (float64(t.Priority) + 1)
	return orInf(-weight / total)
}

// EDDRule: Earliest Due Date.
type EDDRule struct{}

func (EDDRule) Name() string { return "EDD" }
func (EDDRule) Evaluate(t *structs.Task, ctx Context) float64 {
	dl, ok := deadlineOf(t)
	if !ok {
		return math.Inf(1)
	}
	return orInf(dl)
}

// MSTRule: Minimum Slack Time — (deadline − now) − remaining.
type MSTRule struct{}

func (MSTRule) Name() string { return "MST" }
func (MSTRule) Evaluate(t *structs.Task, ctx Context) float64 {
	dl, ok := deadlineOf(t)
	if !ok {
		return math.Inf(1)
	}
	remaining := remainingOrTotal(t, ctx)
	return orInf((dl - float64(ctx.Now())) - remaining)
}

// CRRule: Critical Ratio — (deadline − now) / remaining.
type CRRule struct{}

func (CRRule) Name() string { return "CR" }
func (CRRule) Evaluate(t *structs.Task, ctx Context) float64 {
	dl, ok := deadlineOf(t)
	if !ok {
		return math.Inf(1)
	}
	remaining := remainingOrTotal(t, ctx)
	if remaining <= 0 {
		return math.Inf(1)
	}
	return orInf((dl - float64(ctx.Now())) / remaining)
}

// SlackPerOpRule: Slack / Remaining Operations ("S/RO").
type SlackPerOpRule struct{}

func (SlackPerOpRule) Name() string { return "S/RO" }
func (SlackPerOpRule) Evaluate(t *structs.Task, ctx Context) float64 {
	dl, ok := deadlineOf(t)
	if !ok {
		return math.Inf(1)
	}
	remaining := remainingOrTotal(t, ctx)
	slack := (dl - float64(ctx.Now())) - remaining
	opCount := len(t.Activities)
	if opCount < 1 {
		opCount = 1
	}
	return orInf(slack / float64(opCount))
}

// FIFORule: First In, First Out — arrival time, else release time, else 0.
type FIFORule struct{}

func (FIFORule) Name() string { return "FIFO" }
func (FIFORule) Evaluate(t *structs.Task, ctx Context) float64 {
	if arrival, ok := ctx.Arrival(t.ID); ok {
		return orInf(float64(arrival))
	}
	if t.ReleaseTime != nil {
		return orInf(float64(*t.ReleaseTime))
	}
	return 0
}

// WINQRule: Work In Next Queue.
type WINQRule struct{}

func (WINQRule) Name() string { return "WINQ" }
func (WINQRule) Evaluate(t *structs.Task, ctx Context) float64 {
	return orInf(float64(ctx.NextQueueLength(t.ID)))
}

// LPULRule: Least Percentage Utilization — the minimum utilization across the first activity's candidate resources, or
// 0 when the task has no activities.
type LPULRule struct{}

func (LPULRule) Name() string { return "LPUL" }
func (LPULRule) Evaluate(t *structs.Task, ctx Context) float64 {
	if len(t.Activities) == 0 {
		return 0
	}
	candidates := t.SortedActivities()[0].Candidates()
	if len(candidates) == 0 {
		return 0
	}
	min := math.Inf(1)
	for _, c := range candidates {
		u := ctx.Utilization(c)
		if u < min {
			min = u
		}
	}
	return orInf(min)
}

// AllRules returns one instance of every built-in rule, in the order
// spec.md §4.2 tables them. Useful for tests and for engines that want to
// expose every named rule to a caller by string lookup.
func AllRules() []Rule {
	return []Rule{
		SPTRule{}, LPTRule{}, LWKRRule{}, MWKRRule{}, WSPTRule{},
		EDDRule{}, MSTRule{}, CRRule{}, SlackPerOpRule{}, FIFORule{},
		WINQRule{}, LPULRule{},
	}
}
