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

/*
Package timerfd is a thin wrapper around the Linux timerfd facility:
timers that deliver expirations through a readable file descriptor.

Two layers are provided:
  - raw functions (Create, SetTime, SetTimeNs, GetTime, Read) that map 1:1
    onto the syscalls, take and return primitive values, and leave
    descriptor ownership with the caller;
  - the Timer type, which owns its descriptor and speaks time.Duration.

Errors are the kernel's: every failing syscall returns its errno
unchanged, so callers can errors.Is against unix.Errno values. The one
exception is ErrShortRead, raised when a read returns fewer than the 8
bytes of the expiration counter.

Blocking reads park only the calling goroutine; other goroutines keep
running. There is no cancellation of a blocked read; see the ticker
package for a shutdown-capable periodic timer built on top.
*/
package timerfd
