// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package ci centralizes the handful of test-environment decisions every
// kernel package's test suite needs, so individual _test.go files never have
// to special-case CI themselves.
package ci

import (
	"os"
	"testing"
)

// Parallel marks t as safe to run in parallel with its siblings, unless the
// environment opts out via CI_SERIAL. Short-lived CI runners with small CPU
// allotments sometimes thrash badly under full parallelism; CI_SERIAL lets a
// runner's environment override it without touching any test file.
func Parallel(t *testing.T) {
	t.Helper()
	if os.Getenv("CI_SERIAL") != "" {
		return
	}
	t.Parallel()
}
