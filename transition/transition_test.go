// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package transition

import (
	"testing"

	"github.com/iyulab/U-RAS/ci"
	"github.com/shoenig/test/must"
	"github.com/stretchr/testify/require"
)

func TestMatrix_LookupFallsBackToDefault(t *testing.T) {
	ci.Parallel(t)

	m := NewMatrix(50)
	m.Set("paint", "weld", 200)

	require.Equal(t, int64(200), m.Lookup("paint", "weld"))
	require.Equal(t, int64(50), m.Lookup("paint", "assemble"))
	require.Equal(t, int64(0), m.Lookup("", "weld"))
}

func TestCollection_SetupMemoizes(t *testing.T) {
	ci.Parallel(t)

	c := NewCollection()
	m := NewMatrix(10)
	m.Set("a", "b", 99)
	c.Set("M1", m)

	must.Eq(t, int64(99), c.Setup("M1", "a", "b"))
	must.Eq(t, int64(10), c.Setup("M1", "a", "c"))
	must.Eq(t, int64(0), c.Setup("UNKNOWN", "a", "b"))

	// Mutating the installed matrix after a cached read still reflects the
	// cache; Set() on the Collection invalidates it correctly.
	c.Set("M1", NewMatrix(77))
	must.Eq(t, int64(77), c.Setup("M1", "a", "c"))
}

func TestCollection_NilSafe(t *testing.T) {
	ci.Parallel(t)

	var c *Collection
	require.Equal(t, int64(0), c.Setup("M1", "a", "b"))
}
