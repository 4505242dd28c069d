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
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/facebookincubator/timerfd"
)

// flags
var (
	statusClockFlag    string
	statusInitialFlag  time.Duration
	statusIntervalFlag time.Duration
	statusAfterFlag    time.Duration
)

func init() {
	RootCmd.AddCommand(statusCmd)
	flags := statusCmd.Flags()
	flags.StringVarP(&statusClockFlag, "clock", "c", "monotonic", "clock source: realtime, monotonic or monotonic-raw")
	flags.DurationVarP(&statusInitialFlag, "initial", "I", time.Second, "time until first expiration")
	flags.DurationVarP(&statusIntervalFlag, "interval", "i", 0, "re-arm interval, 0 for one-shot")
	flags.DurationVarP(&statusAfterFlag, "after", "a", 100*time.Millisecond, "how long to wait before querying the timer")
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Arm a timer, wait a bit and report what the kernel says is left on it",
	Run:   runStatusCmd,
}

func runStatusCmd(_ *cobra.Command, _ []string) {
	ConfigureVerbosity()

	clockid, err := clockFromName(statusClockFlag)
	if err != nil {
		log.Fatal(err)
	}
	timer, err := timerfd.New(clockid, timerfd.Cloexec)
	if err != nil {
		log.Fatal(err)
	}
	defer timer.Close()

	prevInitial, prevInterval, err := timer.Set(0, statusInitialFlag, statusIntervalFlag)
	if err != nil {
		log.Fatal(err)
	}
	log.Debugf("previous specification: initial %v, interval %v", prevInitial, prevInterval)

	time.Sleep(statusAfterFlag)

	remaining, interval, err := timer.Get()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("clock: %s\n", statusClockFlag)
	fmt.Printf("remaining: %v\n", remaining)
	fmt.Printf("interval: %v\n", interval)
}
