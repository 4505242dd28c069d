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

// tickd runs a kernel-backed periodic timer and exports its behavior as
// prometheus metrics. Mostly useful to observe tick jitter and missed
// ticks on a loaded host, where the expiration counter shows how far a
// userspace consumer falls behind the kernel timer.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"time"

	_ "net/http/pprof"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/facebookincubator/timerfd/ticker"
)

func main() {
	var (
		verboseFlag  bool
		portFlag     int
		intervalFlag time.Duration
		pprofFlag    string
	)

	flag.BoolVar(&verboseFlag, "verbose", false, "verbose output")
	flag.IntVar(&portFlag, "port", 6943, "port to serve prometheus metrics on")
	flag.DurationVar(&intervalFlag, "interval", time.Second, "tick interval")
	flag.StringVar(&pprofFlag, "pprof", "", "Address to have the profiler listen on, disabled if empty.")
	flag.Parse()

	log.SetLevel(log.InfoLevel)
	if verboseFlag {
		log.SetLevel(log.DebugLevel)
	}
	if pprofFlag != "" {
		go func() {
			err := http.ListenAndServe(pprofFlag, nil)
			if err != nil {
				log.Errorf("Failed to start pprof. Err: %v", err)
			}
		}()
	}

	registry := prometheus.NewRegistry()
	ticks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tickd_ticks_total",
		Help: "Expiration batches delivered by the kernel timer",
	})
	missed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tickd_missed_ticks_total",
		Help: "Expirations that accumulated while the consumer was behind",
	})
	registry.MustRegister(ticks, missed)

	tk, err := ticker.New(intervalFlag)
	if err != nil {
		log.Fatalf("Failed to start ticker: %v", err)
	}
	defer tk.Stop()
	go func() {
		for tick := range tk.C {
			ticks.Inc()
			missed.Add(float64(tick.Missed))
			log.Debugf("tick at %v, missed %d", tick.Time, tick.Missed)
		}
	}()

	http.Handle("/metrics", promhttp.HandlerFor(
		registry,
		promhttp.HandlerOpts{
			// Opt into OpenMetrics to support exemplars.
			EnableOpenMetrics: true,
		},
	))
	log.Fatal(http.ListenAndServe(fmt.Sprintf(":%d", portFlag), nil))
}
