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
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/facebookincubator/timerfd"
)

// flags
var (
	tickClockFlag    string
	tickIntervalFlag time.Duration
	tickCountFlag    int
)

func init() {
	RootCmd.AddCommand(tickCmd)
	flags := tickCmd.Flags()
	flags.StringVarP(&tickClockFlag, "clock", "c", "monotonic", "clock source: realtime, monotonic or monotonic-raw")
	flags.DurationVarP(&tickIntervalFlag, "interval", "i", time.Second, "tick interval")
	flags.IntVarP(&tickCountFlag, "count", "n", 10, "number of expiration batches to report, 0 means forever")
}

var tickCmd = &cobra.Command{
	Use:   "tick",
	Short: "Arm a periodic timer descriptor and report every expiration batch",
	Run:   runTickCmd,
}

func runTickCmd(_ *cobra.Command, _ []string) {
	ConfigureVerbosity()

	clockid, err := clockFromName(tickClockFlag)
	if err != nil {
		log.Fatal(err)
	}
	timer, err := timerfd.New(clockid, timerfd.Cloexec)
	if err != nil {
		log.Fatal(err)
	}
	defer timer.Close()

	if _, _, err := timer.Set(0, tickIntervalFlag, tickIntervalFlag); err != nil {
		log.Fatal(err)
	}
	log.Debugf("armed fd %d on %s clock, interval %v", timer.Fd(), tickClockFlag, tickIntervalFlag)

	for i := 0; tickCountFlag == 0 || i < tickCountFlag; i++ {
		count, err := timer.Read()
		if err != nil {
			log.Fatal(err)
		}
		remaining, _, err := timer.Get()
		if err != nil {
			log.Fatal(err)
		}
		log.Infof("expired %d time(s), next expiration in %v", count, remaining.Round(time.Millisecond))
	}
}
