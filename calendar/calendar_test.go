// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package calendar

import (
	"testing"
	"time"

	"github.com/iyulab/U-RAS/ci"
	"github.com/shoenig/test/must"
	"github.com/stretchr/testify/require"
)

func TestCalendar_NilIsAlwaysWorking(t *testing.T) {
	ci.Parallel(t)

	var c *Calendar
	must.True(t, c.IsWorkingTime(0))
	must.True(t, c.IsWorkingTime(1<<40))
	must.Eq(t, int64(1234), c.NextAvailableTime(1234))
}

func TestCalendar_WindowsAndBlocked(t *testing.T) {
	ci.Parallel(t)

	c := &Calendar{
		Windows: []Window{{Start: 1000, End: 5000}},
		Blocked: []Window{{Start: 2000, End: 3000}},
	}

	require.True(t, c.IsWorkingTime(1500))
	require.False(t, c.IsWorkingTime(2500))
	require.True(t, c.IsWorkingTime(3500))
	require.False(t, c.IsWorkingTime(6000))

	require.Equal(t, int64(1500), c.NextAvailableTime(1500))
	require.Equal(t, int64(3000), c.NextAvailableTime(2500))
	require.Equal(t, int64(1000), c.NextAvailableTime(0))
}

func TestCalendar_NextAvailableTime_SkipsMultipleBlocked(t *testing.T) {
	ci.Parallel(t)

	c := &Calendar{
		Windows: []Window{{Start: 0, End: 10000}},
		Blocked: []Window{
			{Start: 100, End: 200},
			{Start: 200, End: 300},
		},
	}
	require.Equal(t, int64(300), c.NextAvailableTime(100))
}

func TestCalendar_NoWindowIsNeverWorking(t *testing.T) {
	ci.Parallel(t)

	c := &Calendar{}
	require.False(t, c.IsWorkingTime(0))
	require.Equal(t, int64(0), c.NextAvailableTime(0))
}

func TestWindowsFromCron(t *testing.T) {
	ci.Parallel(t)

	from := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC).UnixMilli()  // Monday
	to := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC).UnixMilli()

	windows, err := WindowsFromCron("0 9 * * 1-5", from, to, 8*time.Hour)
	require.NoError(t, err)
	require.Len(t, windows, 5)
	for _, w := range windows {
		require.Equal(t, int64(8*time.Hour/time.Millisecond), w.End-w.Start)
	}
}
