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
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/facebookincubator/timerfd"
)

// RootCmd is a main entry point. It's exported so timerfdcheck could be easily extended without touching core functionality.
var RootCmd = &cobra.Command{
	Use:   "timerfdcheck",
	Short: "CLI to poke at kernel timer descriptors",
}

// flags
var rootVerboseFlag bool

func init() {
	RootCmd.PersistentFlags().BoolVarP(&rootVerboseFlag, "verbose", "v", false, "verbose output")
}

// ConfigureVerbosity configures log verbosity based on parsed flags. Needs to be called by any subcommand.
func ConfigureVerbosity() {
	log.SetLevel(log.InfoLevel)
	if rootVerboseFlag {
		log.SetLevel(log.DebugLevel)
	}
}

// clockFromName maps the human-readable clock flag to a kernel clock source
func clockFromName(name string) (int, error) {
	switch name {
	case "realtime":
		return timerfd.ClockRealtime, nil
	case "monotonic":
		return timerfd.ClockMonotonic, nil
	case "monotonic-raw":
		return timerfd.ClockMonotonicRaw, nil
	default:
		return 0, fmt.Errorf("unknown clock %q, supported: realtime, monotonic, monotonic-raw", name)
	}
}

// Execute is the main entry point for CLI interface
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
