// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package dispatch

import (
	"math"
	"sort"

	"github.com/iyulab/U-RAS/structs"
)

// EvaluationMode selects how an Engine combines multiple rules' scores.
type EvaluationMode int

const (
	// ModeSequential compares tasks lexicographically across rule indices,
	// with an epsilon-tolerant equality test at each index, falling
	// through to the next rule (and finally the TieBreaker) on a tie.
	ModeSequential EvaluationMode = iota
	// ModeWeighted orders by the sum of weighted per-rule scores. No
	// epsilon tolerance is applied.
	ModeWeighted
)

// TieBreaker selects the final comparison an Engine falls back to once
// every configured rule has compared equal.
type TieBreaker int

const (
	// TieBreakNextRule yields equality: ties are left in stable (input)
	// order.
	TieBreakNextRule TieBreaker = iota
	// TieBreakRandomByHash orders by the lexicographic byte-sum of the
	// task id — deterministic, reproducible across runs, not a real PRNG.
	TieBreakRandomByHash
	// TieBreakById orders by lexicographic task id comparison.
	TieBreakById
)

// epsilon is the tolerance below which two Sequential-mode raw scores are
// considered equal (spec.md §4.3).
const epsilon = 1e-9

// weightedRule pairs a Rule with the weight an Engine applies to it.
type weightedRule struct {
	rule   Rule
	weight float64
}

// Engine holds an ordered list of (rule, weight) pairs plus the two policy
// knobs controlling how they combine. The zero value is a usable empty
// engine (no rules configured): per spec.md §4.3, Sort/SelectBest on an
// empty rule list return their input unchanged.
type Engine struct {
	rules      []weightedRule
	mode       EvaluationMode
	tieBreaker TieBreaker
}

// NewEngine constructs an Engine with the given mode and final tie-breaker.
func NewEngine(mode EvaluationMode, tieBreaker TieBreaker) *Engine {
	return &Engine{mode: mode, tieBreaker: tieBreaker}
}

// Add appends a (rule, weight) pair and returns the Engine for chaining.
// Tie-breaker rules, per spec.md §4.3, are conventionally added with
// weight 0 — they never move a Weighted-mode sum but still participate in
// Sequential-mode's lexicographic chain if added as an explicit Rule
// rather than relying on the configured TieBreaker.
func (e *Engine) Add(rule Rule, weight float64) *Engine {
	e.rules = append(e.rules, weightedRule{rule: rule, weight: weight})
	return e
}

// Len reports how many rules are configured.
func (e *Engine) Len() int { return len(e.rules) }

// rawScores returns, per task, the unweighted score of every configured
// rule, NaN already coerced to +Inf by each Rule's own Evaluate.
func (e *Engine) rawScores(tasks []*structs.Task, ctx Context) [][]float64 {
	out := make([][]float64, len(tasks))
	for i, t := range tasks {
		row := make([]float64, len(e.rules))
		for j, wr := range e.rules {
			row[j] = orInf(wr.rule.Evaluate(t, ctx))
		}
		out[i] = row
	}
	return out
}

// Evaluate returns the weighted score of every configured rule for a
// single task, for external inspection (e.g. test assertions, UI
// breakdowns). It does not consult the Engine's mode.
func (e *Engine) Evaluate(t *structs.Task, ctx Context) []float64 {
	out := make([]float64, len(e.rules))
	for i, wr := range e.rules {
		out[i] = orInf(wr.rule.Evaluate(t, ctx)) * wr.weight
	}
	return out
}

// Sort returns tasks ordered best-first according to the Engine's mode and
// tie-breaker, stable with respect to ties that survive every comparison.
// An empty rule list or empty task list returns tasks unchanged.
func (e *Engine) Sort(tasks []*structs.Task, ctx Context) []*structs.Task {
	if len(e.rules) == 0 || len(tasks) == 0 {
		return tasks
	}

	out := append([]*structs.Task(nil), tasks...)
	raw := e.rawScores(out, ctx)

	less := func(i, j int) bool {
		switch e.mode {
		case ModeWeighted:
			return e.weightedLess(raw[i], raw[j], out[i], out[j])
		default:
			return e.sequentialLess(raw[i], raw[j], out[i], out[j])
		}
	}
	sort.SliceStable(out, less)
	return out
}

// SelectBest returns the highest-priority task after Sort, or nil when
// tasks is empty.
func (e *Engine) SelectBest(tasks []*structs.Task, ctx Context) *structs.Task {
	sorted := e.Sort(tasks, ctx)
	if len(sorted) == 0 {
		return nil
	}
	return sorted[0]
}

func (e *Engine) sequentialLess(a, b []float64, taskA, taskB *structs.Task) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) >= epsilon {
			return a[i] < b[i]
		}
	}
	return e.breakTie(taskA, taskB)
}

func (e *Engine) weightedLess(a, b []float64, taskA, taskB *structs.Task) bool {
	sumA, sumB := weightedSum(a, e.weights()), weightedSum(b, e.weights())
	if sumA != sumB {
		return sumA < sumB
	}
	return e.breakTie(taskA, taskB)
}

func (e *Engine) weights() []float64 {
	w := make([]float64, len(e.rules))
	for i, wr := range e.rules {
		w[i] = wr.weight
	}
	return w
}

func weightedSum(scores, weights []float64) float64 {
	var sum float64
	for i, s := range scores {
		sum += s * weights[i]
	}
	return orInf(sum)
}

func (e *Engine) breakTie(a, b *structs.Task) bool {
	switch e.tieBreaker {
	case TieBreakRandomByHash:
		return byteSum(a.ID) < byteSum(b.ID)
	case TieBreakById:
		return a.ID < b.ID
	default: // TieBreakNextRule: equality, stable order preserved
		return false
	}
}

func byteSum(s string) int {
	sum := 0
	for _, b := range []byte(s) {
		sum += int(b)
	}
	return sum
}
