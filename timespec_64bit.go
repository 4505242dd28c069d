//go:build !386

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
	"golang.org/x/sys/unix"
)

// secondsToTimespec splits fractional seconds into the kernel's (sec, nsec)
// pair: whole seconds truncated, remainder scaled by 1e9. Negative input is
// passed through for the kernel to reject.
func secondsToTimespec(seconds float64) unix.Timespec {
	sec := int64(seconds)
	return unix.Timespec{
		Sec:  sec,
		Nsec: int64((seconds - float64(sec)) * nsPerSec),
	}
}

// subsecondTimespec puts ns into the nanosecond field only, seconds stay
// zero. Values at or above 1e9 are for the kernel to reject.
func subsecondTimespec(ns int64) unix.Timespec {
	return unix.Timespec{Sec: 0, Nsec: ns}
}
