// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package helper

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iyulab/U-RAS/ci"
)

func TestPtrOrNil(t *testing.T) {
	ci.Parallel(t)

	v, ok := PtrOrNil[int](nil)
	require.False(t, ok)
	require.Equal(t, 0, v)

	v, ok = PtrOrNil(Ptr(5))
	require.True(t, ok)
	require.Equal(t, 5, v)
}

func TestContainsString(t *testing.T) {
	ci.Parallel(t)

	require.True(t, ContainsString([]string{"a", "b"}, "b"))
	require.False(t, ContainsString([]string{"a", "b"}, "c"))
	require.False(t, ContainsString(nil, "c"))
}

func TestFromMap(t *testing.T) {
	ci.Parallel(t)

	type attrs struct {
		Name  string `attr:"name"`
		Count int    `attr:"count"`
	}
	var out attrs
	err := FromMap(map[string]any{"name": "m1", "count": "3"}, &out)
	require.NoError(t, err)
	require.Equal(t, "m1", out.Name)
	require.Equal(t, 3, out.Count)
}
