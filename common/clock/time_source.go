// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"context"
	"sync"
	"time"
)

type (
	// TimeSource is the source of time and of blocking waits.
	// The backoff poller suspends the calling goroutine through it, so tests can
	// observe the requested delays without actually sleeping.
	TimeSource interface {
		Now() time.Time
		// Sleep blocks for d, or until ctx is done, in which case ctx.Err() is returned
		Sleep(ctx context.Context, d time.Duration) error
	}

	realTimeSource struct{}

	// FakeTimeSource never blocks. Sleep advances the fake clock and records the delay.
	FakeTimeSource struct {
		sync.Mutex
		now    time.Time
		sleeps []time.Duration
	}
)

// NewRealTimeSource returns a time source backed by the wall clock
func NewRealTimeSource() TimeSource {
	return realTimeSource{}
}

func (realTimeSource) Now() time.Time {
	return time.Now()
}

func (realTimeSource) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NewFakeTimeSource returns a fake time source starting at the given time
func NewFakeTimeSource(start time.Time) *FakeTimeSource {
	return &FakeTimeSource{now: start}
}

func (f *FakeTimeSource) Now() time.Time {
	f.Lock()
	defer f.Unlock()
	return f.now
}

func (f *FakeTimeSource) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.Lock()
	defer f.Unlock()
	f.sleeps = append(f.sleeps, d)
	f.now = f.now.Add(d)
	return nil
}

// Sleeps returns a copy of all the delays requested so far
func (f *FakeTimeSource) Sleeps() []time.Duration {
	f.Lock()
	defer f.Unlock()
	out := make([]time.Duration, len(f.sleeps))
	copy(out, f.sleeps)
	return out
}
