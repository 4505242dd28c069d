/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package timerfd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func mustCreate(t *testing.T, clockid int, flags int) int {
	t.Helper()
	fd, err := Create(clockid, flags)
	require.NoError(t, err)
	t.Cleanup(func() { unix.Close(fd) })
	return fd
}

func TestSecondsTimespecRoundTrip(t *testing.T) {
	durations := []float64{
		0,
		0.000000001,
		0.05,
		0.1,
		0.25,
		0.3,
		0.5,
		1.0,
		1.5,
		2.25,
		10.125,
		3600.5,
	}
	for _, d := range durations {
		ts := secondsToTimespec(d)
		require.GreaterOrEqual(t, ts.Nsec, int64(0))
		require.Less(t, ts.Nsec, int64(nsPerSec))
		require.InDelta(t, d, timespecToSeconds(ts), 1e-9, "round trip of %v", d)
	}
}

func TestSecondsTimespecSplit(t *testing.T) {
	ts := secondsToTimespec(1.5)
	require.Equal(t, int64(1), ts.Sec)
	require.Equal(t, int64(500000000), ts.Nsec)

	ts = secondsToTimespec(0.05)
	require.Equal(t, int64(0), ts.Sec)
	require.Equal(t, int64(50000000), ts.Nsec)
}

func TestCreateInvalidClock(t *testing.T) {
	_, err := Create(12345, 0)
	require.ErrorIs(t, err, unix.EINVAL)
}

func TestCreateStartsDisarmed(t *testing.T) {
	fd := mustCreate(t, ClockMonotonic, 0)
	remaining, interval, err := GetTime(fd)
	require.NoError(t, err)
	require.Equal(t, 0.0, remaining)
	require.Equal(t, 0.0, interval)
}

func TestSetTimeReturnsPrevious(t *testing.T) {
	fd := mustCreate(t, ClockMonotonic, 0)

	prevInitial, prevInterval, err := SetTime(fd, 0, 10.0, 5.0)
	require.NoError(t, err)
	require.Equal(t, 0.0, prevInitial)
	require.Equal(t, 0.0, prevInterval)

	prevInitial, prevInterval, err = SetTime(fd, 0, 2.0, 1.0)
	require.NoError(t, err)
	// previous initial is the remaining time, which has been ticking down
	require.Greater(t, prevInitial, 9.9)
	require.LessOrEqual(t, prevInitial, 10.0)
	require.InDelta(t, 5.0, prevInterval, 1e-9)
}

func TestSetTimeDisarms(t *testing.T) {
	fd := mustCreate(t, ClockMonotonic, 0)

	_, _, err := SetTime(fd, 0, 60.0, 1.0)
	require.NoError(t, err)

	prevInitial, prevInterval, err := SetTime(fd, 0, 0, 0)
	require.NoError(t, err)
	require.Greater(t, prevInitial, 0.0)
	require.InDelta(t, 1.0, prevInterval, 1e-9)

	remaining, interval, err := GetTime(fd)
	require.NoError(t, err)
	require.Equal(t, 0.0, remaining)
	require.Equal(t, 0.0, interval)
}

func TestSetTimeNegative(t *testing.T) {
	fd := mustCreate(t, ClockMonotonic, 0)
	_, _, err := SetTime(fd, 0, -1.0, 0)
	require.ErrorIs(t, err, unix.EINVAL)
}

func TestSetTimeNsSubSecondOnly(t *testing.T) {
	fd := mustCreate(t, ClockMonotonic, 0)
	// values land in the nanosecond field, so a whole second is out of range
	_, _, err := SetTimeNs(fd, 0, 2*nsPerSec, 0)
	require.ErrorIs(t, err, unix.EINVAL)
}

func TestOneShotEndToEnd(t *testing.T) {
	fd := mustCreate(t, ClockMonotonic, 0)

	_, _, err := SetTime(fd, 0, 0.05, 0)
	require.NoError(t, err)

	start := time.Now()
	count, err := Read(fd)
	require.NoError(t, err)
	require.Equal(t, uint64(1), count)
	require.GreaterOrEqual(t, time.Since(start), 45*time.Millisecond)

	// one-shot: fired once and disarmed itself
	remaining, interval, err := GetTime(fd)
	require.NoError(t, err)
	require.Equal(t, 0.0, remaining)
	require.Equal(t, 0.0, interval)
}

func TestPeriodicNsEndToEnd(t *testing.T) {
	fd := mustCreate(t, ClockMonotonic, 0)

	_, _, err := SetTimeNs(fd, 0, 10000000, 10000000)
	require.NoError(t, err)

	first, err := Read(fd)
	require.NoError(t, err)
	require.GreaterOrEqual(t, first, uint64(1))

	time.Sleep(25 * time.Millisecond)
	second, err := Read(fd)
	require.NoError(t, err)
	require.GreaterOrEqual(t, second, uint64(1))
	require.GreaterOrEqual(t, first+second, uint64(2))

	remaining, interval, err := GetTime(fd)
	require.NoError(t, err)
	require.Greater(t, remaining, 0.0)
	require.InDelta(t, 0.01, interval, 1e-9)
}

func TestReadAccumulates(t *testing.T) {
	fd := mustCreate(t, ClockMonotonic, 0)

	_, _, err := SetTimeNs(fd, 0, 10000000, 10000000)
	require.NoError(t, err)

	// let several periods elapse without draining
	time.Sleep(35 * time.Millisecond)
	count, err := Read(fd)
	require.NoError(t, err)
	require.GreaterOrEqual(t, count, uint64(2))
}

func TestReadNonblock(t *testing.T) {
	fd := mustCreate(t, ClockMonotonic, Nonblock)

	count, err := Read(fd)
	require.ErrorIs(t, err, unix.EAGAIN)
	require.Equal(t, uint64(0), count)
}

func TestInvalidDescriptor(t *testing.T) {
	fd, err := Create(ClockMonotonic, 0)
	require.NoError(t, err)
	require.NoError(t, unix.Close(fd))

	_, _, err = SetTime(fd, 0, 1.0, 0)
	require.ErrorIs(t, err, unix.EBADF)
	_, _, err = GetTime(fd)
	require.ErrorIs(t, err, unix.EBADF)
	count, err := Read(fd)
	require.ErrorIs(t, err, unix.EBADF)
	require.Equal(t, uint64(0), count)
}

func TestShortReadIsIOError(t *testing.T) {
	require.ErrorIs(t, ErrShortRead, unix.EIO)
}

func TestReadShortCount(t *testing.T) {
	// a pipe holding fewer than 8 bytes makes read(2) succeed with a short
	// count, the one case where Read must fail without an errno to pass through
	var p [2]int
	require.NoError(t, unix.Pipe(p[:]))
	t.Cleanup(func() {
		unix.Close(p[0])
		unix.Close(p[1])
	})

	n, err := unix.Write(p[1], []byte{1, 2, 3, 4})
	require.NoError(t, err)
	require.Equal(t, 4, n)

	count, err := Read(p[0])
	require.ErrorIs(t, err, ErrShortRead)
	require.ErrorIs(t, err, unix.EIO)
	require.Equal(t, uint64(0), count)
}

func TestConstantsMatchKernel(t *testing.T) {
	require.Equal(t, unix.CLOCK_REALTIME, ClockRealtime)
	require.Equal(t, unix.CLOCK_MONOTONIC, ClockMonotonic)
	require.Equal(t, unix.CLOCK_MONOTONIC_RAW, ClockMonotonicRaw)
	require.Equal(t, unix.TFD_CLOEXEC, Cloexec)
	require.Equal(t, unix.TFD_NONBLOCK, Nonblock)
	require.Equal(t, unix.TFD_TIMER_ABSTIME, AbsTime)
}
