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
Package ticker delivers periodic ticks from a kernel timer descriptor
over a channel.

Compared to time.Ticker, the period is kept by the kernel (timerfd on
CLOCK_MONOTONIC), and a consumer that falls behind is told exactly how
many periods it missed instead of silently losing them: the kernel
accumulates expirations in the descriptor's counter and we drain it in
one read.
*/
package ticker

import (
	"errors"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/facebookincubator/timerfd"
	"github.com/facebookincubator/timerfd/hostendian"
)

// Tick is one delivery from a Ticker
type Tick struct {
	// Time the expiration batch was drained from the kernel
	Time time.Time
	// Missed counts expirations beyond the first since the previous delivery
	Missed uint64
}

// Ticker fires on channel C every interval. Created by New, released by Stop.
type Ticker struct {
	C <-chan Tick

	timer  *timerfd.Timer
	wakeFd int
	c      chan Tick
	done   chan struct{}
}

// New creates a running Ticker with the given interval.
func New(interval time.Duration) (*Ticker, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("ticker interval must be positive, got %v", interval)
	}
	timer, err := timerfd.New(timerfd.ClockMonotonic, timerfd.Cloexec|timerfd.Nonblock)
	if err != nil {
		return nil, err
	}
	// eventfd wakes the poll loop on Stop; a blocked read(2) on the timer
	// descriptor could not be interrupted.
	wakeFd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		timer.Close()
		return nil, os.NewSyscallError("eventfd", err)
	}
	if _, _, err := timer.Set(0, interval, interval); err != nil {
		timer.Close()
		unix.Close(wakeFd)
		return nil, err
	}
	t := &Ticker{
		timer:  timer,
		wakeFd: wakeFd,
		c:      make(chan Tick, 1),
		done:   make(chan struct{}),
	}
	t.C = t.c
	go t.loop()
	return t, nil
}

// Reset changes the interval. The next tick fires a full new interval from now.
func (t *Ticker) Reset(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("ticker interval must be positive, got %v", interval)
	}
	_, _, err := t.timer.Set(0, interval, interval)
	return err
}

// Stop disarms the ticker, terminates the delivery goroutine and releases
// both descriptors. C is not closed. Stop must be called exactly once.
func (t *Ticker) Stop() error {
	var one [8]byte
	hostendian.Order.PutUint64(one[:], 1)
	if _, err := unix.Write(t.wakeFd, one[:]); err != nil {
		return os.NewSyscallError("write", err)
	}
	<-t.done
	unix.Close(t.wakeFd)
	return t.timer.Close()
}

func (t *Ticker) loop() {
	defer close(t.done)
	fds := []unix.PollFd{
		{Fd: int32(t.timer.Fd()), Events: unix.POLLIN},
		{Fd: int32(t.wakeFd), Events: unix.POLLIN},
	}
	// expirations drained from the kernel but not yet delivered on C
	var backlog uint64
	for {
		fds[0].Revents = 0
		fds[1].Revents = 0
		if _, err := unix.Poll(fds, -1); err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			log.Errorf("polling timer descriptor: %v", err)
			return
		}
		if fds[1].Revents&unix.POLLIN != 0 {
			return
		}
		if fds[0].Revents&unix.POLLIN == 0 {
			continue
		}
		count, err := t.timer.Read()
		if err != nil {
			// Reset can rearm between poll and read, leaving nothing to drain
			if errors.Is(err, unix.EAGAIN) {
				continue
			}
			log.Errorf("draining expiration counter: %v", err)
			return
		}
		backlog += count
		select {
		case t.c <- Tick{Time: time.Now(), Missed: backlog - 1}:
			backlog = 0
		default:
			log.Debugf("tick consumer behind, %d expirations pending", backlog)
		}
	}
}
