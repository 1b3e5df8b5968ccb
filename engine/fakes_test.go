// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/xcherryio/auditflow/common/clock"
	"github.com/xcherryio/auditflow/common/log"
	"github.com/xcherryio/auditflow/common/metrics"
)

func newTestPoller() (*BackoffPoller, *clock.FakeTimeSource) {
	ts := clock.NewFakeTimeSource(time.Unix(1700000000, 0))
	return NewBackoffPoller(ts, log.NewNopLogger(), metrics.NewScope()), ts
}

// nextScripted returns the state for the n-th call (1-based), repeating the last one
func nextScripted(states []ExecutionState, n int) ExecutionState {
	if len(states) == 0 {
		return ""
	}
	if n > len(states) {
		return states[len(states)-1]
	}
	return states[n-1]
}

type scriptedCheck struct {
	states []ExecutionState
	calls  int
	errAt  int
	err    error
}

func (s *scriptedCheck) check(context.Context) (ExecutionState, error) {
	s.calls++
	if s.errAt == s.calls {
		return "", s.err
	}
	return nextScripted(s.states, s.calls), nil
}

type fakeCatalog struct {
	sync.Mutex
	refreshErr   error
	states       []ExecutionState
	triggerCalls int
	fetchCalls   int
	panicOnFetch bool
}

func (f *fakeCatalog) TriggerRefresh(_ context.Context, _ string) error {
	f.Lock()
	defer f.Unlock()
	f.triggerCalls++
	return f.refreshErr
}

func (f *fakeCatalog) FetchState(_ context.Context, _ string) (ExecutionState, error) {
	f.Lock()
	defer f.Unlock()
	if f.panicOnFetch {
		panic("catalog exploded")
	}
	f.fetchCalls++
	return nextScripted(f.states, f.fetchCalls), nil
}

type fakeQueryEngine struct {
	sync.Mutex
	handle     QueryHandle
	startErr   error
	states     []ExecutionState
	startCalls int
	fetchCalls int
	lastQuery  string
	lastDB     string
	lastOutput string
}

func (f *fakeQueryEngine) StartExecution(_ context.Context, query, database, output string) (QueryHandle, error) {
	f.Lock()
	defer f.Unlock()
	f.startCalls++
	f.lastQuery, f.lastDB, f.lastOutput = query, database, output
	if f.startErr != nil {
		return "", f.startErr
	}
	return f.handle, nil
}

func (f *fakeQueryEngine) FetchState(_ context.Context, handle QueryHandle) (ExecutionState, error) {
	f.Lock()
	defer f.Unlock()
	if handle != f.handle {
		return "", fmt.Errorf("unknown query handle %q", handle)
	}
	f.fetchCalls++
	return nextScripted(f.states, f.fetchCalls), nil
}

type fakeExporter struct {
	handle ExportHandle
	err    error
	calls  []ExportRequest
}

func (f *fakeExporter) ExportTable(_ context.Context, req ExportRequest) (ExportHandle, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return "", f.err
	}
	return f.handle, nil
}

type invocation struct {
	target  string
	payload InvocationPayload
}

type fakeInvoker struct {
	err   error
	calls []invocation
}

func (f *fakeInvoker) Invoke(_ context.Context, target string, payload InvocationPayload) error {
	f.calls = append(f.calls, invocation{target: target, payload: payload})
	return f.err
}
