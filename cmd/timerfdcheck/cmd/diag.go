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

package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/facebookincubator/timerfd"
)

type status int

// possible check results
const (
	OK status = iota
	FAIL
)

// diagnoser is a function that checks one aspect of kernel timer support
type diagnoser func() (status, string)

var okString = color.GreenString("[ OK ]")
var failString = color.RedString("[FAIL]")

var statusToColor = []string{okString, failString}

func checkClockSource(name string, clockid int) diagnoser {
	return func() (status, string) {
		timer, err := timerfd.New(clockid, timerfd.Cloexec)
		if err != nil {
			return FAIL, fmt.Sprintf("creating %s timer: %v", name, err)
		}
		defer timer.Close()
		remaining, interval, err := timer.Get()
		if err != nil {
			return FAIL, fmt.Sprintf("querying fresh %s timer: %v", name, err)
		}
		if remaining != 0 || interval != 0 {
			return FAIL, fmt.Sprintf("fresh %s timer is not disarmed: remaining %v, interval %v", name, remaining, interval)
		}
		return OK, fmt.Sprintf("%s timer created disarmed", name)
	}
}

func checkSetGetRoundTrip() (status, string) {
	timer, err := timerfd.New(timerfd.ClockMonotonic, timerfd.Cloexec)
	if err != nil {
		return FAIL, fmt.Sprintf("creating timer: %v", err)
	}
	defer timer.Close()
	if _, _, err := timer.Set(0, time.Hour, time.Minute); err != nil {
		return FAIL, fmt.Sprintf("arming timer: %v", err)
	}
	remaining, interval, err := timer.Get()
	if err != nil {
		return FAIL, fmt.Sprintf("querying armed timer: %v", err)
	}
	if remaining <= 59*time.Minute || remaining > time.Hour {
		return FAIL, fmt.Sprintf("remaining %v is not close to the hour we armed", remaining)
	}
	if interval != time.Minute {
		return FAIL, fmt.Sprintf("interval %v is not the minute we armed", interval)
	}
	return OK, "set/get round trip preserves the specification"
}

func checkOneShotFires() (status, string) {
	timer, err := timerfd.New(timerfd.ClockMonotonic, timerfd.Cloexec)
	if err != nil {
		return FAIL, fmt.Sprintf("creating timer: %v", err)
	}
	defer timer.Close()
	if _, _, err := timer.Set(0, 5*time.Millisecond, 0); err != nil {
		return FAIL, fmt.Sprintf("arming timer: %v", err)
	}
	count, err := timer.Read()
	if err != nil {
		return FAIL, fmt.Sprintf("reading expiration counter: %v", err)
	}
	if count != 1 {
		return FAIL, fmt.Sprintf("one-shot timer reported %d expirations, want 1", count)
	}
	remaining, interval, err := timer.Get()
	if err != nil {
		return FAIL, fmt.Sprintf("querying fired timer: %v", err)
	}
	if remaining != 0 || interval != 0 {
		return FAIL, fmt.Sprintf("one-shot timer still armed after firing: remaining %v, interval %v", remaining, interval)
	}
	return OK, "one-shot timer fires once and disarms"
}

func checkNonblockRead() (status, string) {
	timer, err := timerfd.New(timerfd.ClockMonotonic, timerfd.Cloexec|timerfd.Nonblock)
	if err != nil {
		return FAIL, fmt.Sprintf("creating non-blocking timer: %v", err)
	}
	defer timer.Close()
	if _, err := timer.Read(); !errors.Is(err, unix.EAGAIN) {
		return FAIL, fmt.Sprintf("read of a disarmed non-blocking timer returned %v, want EAGAIN", err)
	}
	return OK, "non-blocking read of a disarmed timer returns EAGAIN"
}

var diagnosers = []diagnoser{
	checkClockSource("realtime", timerfd.ClockRealtime),
	checkClockSource("monotonic", timerfd.ClockMonotonic),
	checkClockSource("monotonic-raw", timerfd.ClockMonotonicRaw),
	checkSetGetRoundTrip,
	checkOneShotFires,
	checkNonblockRead,
}

func runDiagnosers(toRun []diagnoser) int {
	failed := 0
	for _, check := range toRun {
		status, msg := check()
		if status != OK {
			failed++
		}
		fmt.Printf("%s %s\n", statusToColor[status], msg)
	}
	return failed
}

func init() {
	RootCmd.AddCommand(diagCmd)
}

var diagCmd = &cobra.Command{
	Use:   "diag",
	Short: "Check kernel timer descriptor support, report in human-readable form.",
	Long: `Check kernel timer descriptor support, report in human-readable form.
Runs a set of checks against the running kernel, and prints the results.
Exit code will be equal to the number of failed checks.
`,
	Run: func(_ *cobra.Command, _ []string) {
		ConfigureVerbosity()
		os.Exit(runDiagnosers(diagnosers))
	},
}
