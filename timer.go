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
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// Timer owns a timer descriptor for its whole lifecycle, from New to Close.
// Where the package-level functions leave descriptor ownership with the
// caller, Timer guarantees there is exactly one owner and one release point.
// Methods mirror the raw operations but speak time.Duration.
type Timer struct {
	fd int
}

// New creates a disarmed Timer measuring against clockid.
// flags is a bitmask of Cloexec and Nonblock.
func New(clockid int, flags int) (*Timer, error) {
	fd, err := Create(clockid, flags)
	if err != nil {
		return nil, os.NewSyscallError("timerfd_create", err)
	}
	return &Timer{fd: fd}, nil
}

// Fd returns the underlying descriptor so the timer can be polled
// alongside other descriptors. The Timer keeps ownership.
func (t *Timer) Fd() int {
	return t.fd
}

// Set arms the timer to first fire after initial (or at initial, with AbsTime)
// and then every interval. A zero initial disarms, a zero interval makes the
// timer one-shot. Returns the specification held before the change.
func (t *Timer) Set(flags int, initial time.Duration, interval time.Duration) (time.Duration, time.Duration, error) {
	spec := unix.ItimerSpec{
		Value:    unix.NsecToTimespec(initial.Nanoseconds()),
		Interval: unix.NsecToTimespec(interval.Nanoseconds()),
	}
	var old unix.ItimerSpec
	if err := unix.TimerfdSettime(t.fd, flags, &spec, &old); err != nil {
		return 0, 0, os.NewSyscallError("timerfd_settime", err)
	}
	return time.Duration(old.Value.Nano()), time.Duration(old.Interval.Nano()), nil
}

// Get returns the time remaining until the next expiration and the current
// interval. Zero remaining means disarmed.
func (t *Timer) Get() (time.Duration, time.Duration, error) {
	var curr unix.ItimerSpec
	if err := unix.TimerfdGettime(t.fd, &curr); err != nil {
		return 0, 0, os.NewSyscallError("timerfd_gettime", err)
	}
	return time.Duration(curr.Value.Nano()), time.Duration(curr.Interval.Nano()), nil
}

// Read drains and returns the expiration counter, blocking until the timer
// has fired at least once unless the Timer was created with Nonblock.
func (t *Timer) Read() (uint64, error) {
	return Read(t.fd)
}

// Close releases the descriptor. The stored fd is invalidated first, so a
// call after Close fails with EBADF instead of touching a recycled
// descriptor.
func (t *Timer) Close() error {
	fd := t.fd
	t.fd = -1
	return os.NewSyscallError("close", unix.Close(fd))
}
