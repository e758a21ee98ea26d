// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package calendar implements the working-time contract every resource in
// the kernel can optionally carry: a set of open time windows, a set of
// blocked windows punched out of them, and the two-function capability
// ({ is_working_time(t), next_available_time(t) }) the scheduler and the
// post-hoc violation pass consult.
//
// A nil *Calendar is a first-class implementation: it is always working and
// next_available_time is the identity function. This mirrors the source
// system's own short-circuit and is preserved deliberately rather than
// forcing every caller to nil-check before use.
package calendar

import (
	"sort"
	"time"

	"github.com/hashicorp/cronexpr"
)

// Window is a half-open interval [Start, End) of epoch milliseconds.
type Window struct {
	Start int64 `json:"start" msgpack:"start"`
	End   int64 `json:"end" msgpack:"end"`
}

func (w Window) contains(t int64) bool {
	return t >= w.Start && t < w.End
}

func (w Window) valid() bool {
	return w.End > w.Start
}

// Calendar is an ordered list of open Windows with Blocked windows punched
// out of them. The zero value (no windows at all) is always *not* working;
// use a nil *Calendar, not &Calendar{}, to mean "always available".
type Calendar struct {
	Windows []Window `json:"windows" msgpack:"windows"`
	Blocked []Window `json:"blocked" msgpack:"blocked"`
}

// IsWorkingTime reports whether t falls inside some open Window and no
// Blocked window. A nil Calendar is always working.
func (c *Calendar) IsWorkingTime(t int64) bool {
	if c == nil {
		return true
	}
	for _, b := range c.Blocked {
		if b.valid() && b.contains(t) {
			return false
		}
	}
	for _, w := range c.Windows {
		if w.valid() && w.contains(t) {
			return true
		}
	}
	return false
}

// NextAvailableTime returns the smallest t' >= t that IsWorkingTime(t')
// holds. A nil Calendar returns t unchanged (the identity function). When
// no working instant at or after t exists, the result is not a working
// time (a Calendar with no Windows returns t itself).
func (c *Calendar) NextAvailableTime(t int64) int64 {
	if c == nil {
		return t
	}
	// Candidates are: t itself (if already working), every open window's
	// start that is >= t, and the first point after every blocked window
	// that intersects a candidate. Iterate to a fixed point since advancing
	// past one blocked window can land inside another.
	cur := t
	for i := 0; i < len(c.Windows)+len(c.Blocked)+1; i++ {
		if c.IsWorkingTime(cur) {
			return cur
		}
		next, ok := c.nextCandidate(cur)
		if !ok {
			return cur
		}
		cur = next
	}
	return cur
}

// nextCandidate returns the smallest known boundary greater than or equal
// to cur that might be working: the start of the next open window at or
// after cur, or the end of whichever blocked window currently contains cur.
func (c *Calendar) nextCandidate(cur int64) (int64, bool) {
	best := int64(0)
	found := false
	consider := func(v int64) {
		if v < cur {
			return
		}
		if !found || v < best {
			best = v
			found = true
		}
	}
	for _, w := range c.Windows {
		if w.valid() {
			consider(w.Start)
		}
	}
	for _, b := range c.Blocked {
		if b.valid() && b.contains(cur) {
			consider(b.End)
		}
	}
	return best, found
}

// Sorted returns a copy of the Calendar with Windows and Blocked ordered by
// Start, useful for deterministic serialization and for tests that diff
// calendars structurally.
func (c *Calendar) Sorted() *Calendar {
	if c == nil {
		return nil
	}
	out := &Calendar{
		Windows: append([]Window(nil), c.Windows...),
		Blocked: append([]Window(nil), c.Blocked...),
	}
	sort.Slice(out.Windows, func(i, j int) bool { return out.Windows[i].Start < out.Windows[j].Start })
	sort.Slice(out.Blocked, func(i, j int) bool { return out.Blocked[i].Start < out.Blocked[j].Start })
	return out
}

// WindowsFromCron expands a cron expression into a list of recurring
// open Windows of the given duration, one per firing between from and to
// (both epoch milliseconds, inclusive). This is a convenience constructor
// only: it never changes the two-function contract above, it just saves a
// caller from hand-listing "every weekday 09:00-17:00" as dozens of
// individual Window literals.
func WindowsFromCron(expr string, from, to int64, duration time.Duration) ([]Window, error) {
	sched, err := cronexpr.Parse(expr)
	if err != nil {
		return nil, err
	}
	start := time.UnixMilli(from).UTC()
	end := time.UnixMilli(to).UTC()

	var windows []Window
	// Next is strictly after its argument; start one nanosecond early so a
	// firing exactly at from is included.
	cur := start.Add(-time.Nanosecond)
	for {
		next := sched.Next(cur)
		if next.IsZero() || next.After(end) {
			break
		}
		windowEnd := next.Add(duration)
		windows = append(windows, Window{
			Start: next.UnixMilli(),
			End:   windowEnd.UnixMilli(),
		})
		cur = next
	}
	return windows, nil
}
