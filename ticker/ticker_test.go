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

package ticker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func receiveTick(t *testing.T, tk *Ticker, timeout time.Duration) Tick {
	t.Helper()
	select {
	case tick := <-tk.C:
		return tick
	case <-time.After(timeout):
		t.Fatalf("no tick within %v", timeout)
	}
	return Tick{}
}

func TestTickerInvalidInterval(t *testing.T) {
	tk, err := New(0)
	require.Error(t, err)
	require.Nil(t, tk)

	tk, err = New(-time.Second)
	require.Error(t, err)
	require.Nil(t, tk)
}

func TestTickerDelivers(t *testing.T) {
	tk, err := New(20 * time.Millisecond)
	require.NoError(t, err)

	start := time.Now()
	first := receiveTick(t, tk, time.Second)
	require.False(t, first.Time.IsZero())
	second := receiveTick(t, tk, time.Second)
	require.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	require.False(t, second.Time.Before(first.Time))

	require.NoError(t, tk.Stop())
}

func TestTickerReportsMissed(t *testing.T) {
	tk, err := New(10 * time.Millisecond)
	require.NoError(t, err)

	// let the consumer fall far behind
	time.Sleep(100 * time.Millisecond)
	receiveTick(t, tk, time.Second)
	late := receiveTick(t, tk, time.Second)
	require.GreaterOrEqual(t, late.Missed, uint64(1))

	require.NoError(t, tk.Stop())
}

func TestTickerReset(t *testing.T) {
	tk, err := New(time.Hour)
	require.NoError(t, err)

	require.Error(t, tk.Reset(0))
	require.NoError(t, tk.Reset(20*time.Millisecond))
	receiveTick(t, tk, time.Second)

	require.NoError(t, tk.Stop())
}

func TestTickerStop(t *testing.T) {
	tk, err := New(10 * time.Millisecond)
	require.NoError(t, err)
	receiveTick(t, tk, time.Second)
	require.NoError(t, tk.Stop())

	// at most one buffered tick can be left over, none may arrive after that
	select {
	case <-tk.C:
	default:
	}
	select {
	case tick := <-tk.C:
		t.Fatalf("tick %+v delivered after Stop", tick)
	case <-time.After(50 * time.Millisecond):
	}
}
