// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package urasmetrics is a thin go-metrics shim used by scheduler and ga to
// emit optional timing and counter samples. Instrumentation is never load
// bearing: every call site works identically with the default discard sink.
package urasmetrics

import (
	"time"

	gometrics "github.com/hashicorp/go-metrics"
)

// Sink is the narrow interface the kernel consumes, satisfied by
// *gometrics.Metrics. Defining it locally lets callers inject a fake in
// tests without pulling in a real metrics.Metrics.
type Sink interface {
	IncrCounter(key []string, val float32)
	MeasureSince(key []string, start time.Time)
	SetGauge(key []string, val float32)
}

// discard is the default Sink: every method is a no-op.
type discard struct{}

func (discard) IncrCounter(key []string, val float32)   {}
func (discard) MeasureSince(key []string, start time.Time) {}
func (discard) SetGauge(key []string, val float32)      {}

// Discard is the zero-cost default sink used when no Sink is injected.
var Discard Sink = discard{}

// Default constructs a new go-metrics sink (not the global one) writing
// nowhere but memory, suitable for embedding applications that want real go-metrics
// semantics (labels, aggregation windows) without standing up a real
// collector.
func Default() Sink {
	cfg := gometrics.DefaultConfig("uras")
	cfg.EnableHostname = false
	cfg.EnableRuntimeMetrics = false
	sink := gometrics.NewInmemSink(time.Minute, time.Hour)
	m, err := gometrics.New(cfg, sink)
	if err != nil {
		return Discard
	}
	return m
}

// Or returns s if non-nil, else Discard. Every call site in scheduler/ga
// routes its injected Sink through this so a nil Sink field never panics.
func Or(s Sink) Sink {
	if s == nil {
		return Discard
	}
	return s
}
