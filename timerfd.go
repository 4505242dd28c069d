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
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/facebookincubator/timerfd/hostendian"
)

// Clock sources a timer can measure against. Values come straight from
// the kernel headers and are passed through unmodified.
const (
	ClockRealtime     = unix.CLOCK_REALTIME
	ClockMonotonic    = unix.CLOCK_MONOTONIC
	ClockMonotonicRaw = unix.CLOCK_MONOTONIC_RAW
)

// Flags accepted by Create
const (
	Cloexec  = unix.TFD_CLOEXEC
	Nonblock = unix.TFD_NONBLOCK
)

// AbsTime makes SetTime and SetTimeNs interpret the initial expiration
// as an absolute value on the timer's clock rather than relative to now
const AbsTime = unix.TFD_TIMER_ABSTIME

const nsPerSec = 1000000000

// counterSize is how many bytes a read from a timer descriptor must return
const counterSize = 8

// ErrShortRead is returned by Read when the kernel returns fewer than 8 bytes.
// The read syscall itself succeeded, so there is no errno to propagate; this keeps
// "kernel call failed" and "kernel call returned insufficient data" distinguishable.
var ErrShortRead = fmt.Errorf("short read from timer descriptor: %w", unix.EIO)

// Create makes a new timer descriptor measuring against clockid, in the disarmed state.
// The caller owns the descriptor and must eventually unix.Close it,
// or use Timer which manages the lifecycle.
func Create(clockid int, flags int) (int, error) {
	return unix.TimerfdCreate(clockid, flags)
}

// SetTime arms the timer: initial is seconds until the first expiration
// (or an absolute timestamp with AbsTime), interval is the period after that.
// initial of zero disarms the timer, interval of zero makes it one-shot.
// Returns the specification the timer held before the change.
func SetTime(fd int, flags int, initial float64, interval float64) (float64, float64, error) {
	spec := unix.ItimerSpec{
		Value:    secondsToTimespec(initial),
		Interval: secondsToTimespec(interval),
	}
	var old unix.ItimerSpec
	if err := unix.TimerfdSettime(fd, flags, &spec, &old); err != nil {
		return 0, 0, err
	}
	return timespecToSeconds(old.Value), timespecToSeconds(old.Interval), nil
}

// SetTimeNs is SetTime with integer nanosecond inputs. The values go into the
// sub-second field only, with whole seconds pinned to zero: arguments at or
// above 1e9 are rejected by the kernel with EINVAL. Sub-second timers only.
func SetTimeNs(fd int, flags int, initialNs int64, intervalNs int64) (float64, float64, error) {
	spec := unix.ItimerSpec{
		Value:    subsecondTimespec(initialNs),
		Interval: subsecondTimespec(intervalNs),
	}
	var old unix.ItimerSpec
	if err := unix.TimerfdSettime(fd, flags, &spec, &old); err != nil {
		return 0, 0, err
	}
	return timespecToSeconds(old.Value), timespecToSeconds(old.Interval), nil
}

// GetTime returns seconds remaining until the next expiration and the current
// interval. Remaining of zero means the timer is disarmed.
func GetTime(fd int) (float64, float64, error) {
	var curr unix.ItimerSpec
	if err := unix.TimerfdGettime(fd, &curr); err != nil {
		return 0, 0, err
	}
	return timespecToSeconds(curr.Value), timespecToSeconds(curr.Interval), nil
}

// Read drains the expiration counter: how many times the timer has fired since
// the last read. Blocks until the timer fires at least once, unless the
// descriptor was created with Nonblock, in which case it fails with EAGAIN
// when no expiration is pending. A read interrupted by a signal can come back
// short; that surfaces as ErrShortRead, never as a truncated count.
func Read(fd int) (uint64, error) {
	buf := make([]byte, counterSize)
	n, err := unix.Read(fd, buf)
	if err != nil {
		return 0, err
	}
	if n != counterSize {
		return 0, ErrShortRead
	}
	return hostendian.Order.Uint64(buf), nil
}

func timespecToSeconds(ts unix.Timespec) float64 {
	return float64(ts.Sec) + float64(ts.Nsec)/nsPerSec
}
