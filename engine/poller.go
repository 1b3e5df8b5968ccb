// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/xcherryio/auditflow/common/clock"
	"github.com/xcherryio/auditflow/common/log"
	"github.com/xcherryio/auditflow/common/log/tag"
	"github.com/xcherryio/auditflow/common/metrics"
	"github.com/xcherryio/auditflow/config"
)

type (
	// StateCheck returns the current state of a remote operation. It is called again on every attempt.
	StateCheck func(ctx context.Context) (ExecutionState, error)

	PollRequest struct {
		// Label is descriptive only, e.g. "Query 1234"
		Label string
		// Kind is a low cardinality name for metrics, e.g. "discovery"
		Kind          string
		Check         StateCheck
		SuccessStates []ExecutionState
		// FailureStates may be empty, then the loop can only succeed or time out
		FailureStates []ExecutionState
		Policy        config.PollPolicy
	}

	// BackoffPoller checks a state until it is in the success set, in the failure set,
	// or the attempt budget is exhausted. It keeps no state between Poll calls,
	// so one instance can serve any number of concurrent loops.
	BackoffPoller struct {
		timeSource clock.TimeSource
		logger     log.Logger
		metrics    *metrics.Scope
	}
)

func NewBackoffPoller(timeSource clock.TimeSource, logger log.Logger, scope *metrics.Scope) *BackoffPoller {
	return &BackoffPoller{
		timeSource: timeSource,
		logger:     logger,
		metrics:    scope,
	}
}

// Poll runs the loop on the calling goroutine.
// The outcome is returned with a nil error when a success or failure state is observed.
// Running out of attempts returns a *PollTimeoutError, a failed check returns a *RemoteError.
// Both come with the outcome observed so far.
func (p *BackoffPoller) Poll(ctx context.Context, req PollRequest) (PollOutcome, error) {
	policy := req.Policy.WithDefaults(config.DefaultPollPolicy())
	if err := policy.Validate(); err != nil {
		return PollOutcome{}, fmt.Errorf("%w: %v poll policy: %v", config.ErrInvalidConfiguration, req.Label, err)
	}

	logger := p.logger.WithTags(tag.Label(req.Label))
	start := p.timeSource.Now()
	delay := policy.InitialDelay
	outcome := PollOutcome{}

	for outcome.Attempts < policy.MaxAttempts {
		state, err := req.Check(ctx)
		outcome.Attempts++
		if err != nil {
			logger.Error("state check failed", tag.Attempt(outcome.Attempts), tag.Error(err))
			p.record(req.Kind, "error", outcome.Attempts, start)
			return outcome, newRemoteError(req.Label, err)
		}
		outcome.State = state

		if containsState(req.SuccessStates, state) {
			outcome.Status = PollSucceeded
			logger.Info("completed successfully",
				tag.State(state.String()), tag.Attempts(outcome.Attempts),
				tag.Duration(p.timeSource.Now().Sub(start)))
			p.record(req.Kind, "succeeded", outcome.Attempts, start)
			return outcome, nil
		}
		if len(req.FailureStates) > 0 && containsState(req.FailureStates, state) {
			outcome.Status = PollFailed
			logger.Error("failed", tag.State(state.String()), tag.Attempts(outcome.Attempts))
			p.record(req.Kind, "failed", outcome.Attempts, start)
			return outcome, nil
		}

		if outcome.Attempts == policy.MaxAttempts {
			// no point in waiting when there is no attempt left
			break
		}
		logger.Info("still in progress",
			tag.State(state.String()), tag.NextWait(delay), tag.Attempt(outcome.Attempts))
		if err := p.timeSource.Sleep(ctx, delay); err != nil {
			p.record(req.Kind, "canceled", outcome.Attempts, start)
			return outcome, err
		}
		delay = nextDelay(delay, policy)
	}

	outcome.Status = PollTimedOut
	logger.Error("timed out", tag.Attempts(outcome.Attempts), tag.State(outcome.State.String()))
	p.record(req.Kind, "timed_out", outcome.Attempts, start)
	return outcome, &PollTimeoutError{
		Label:     req.Label,
		Attempts:  outcome.Attempts,
		LastState: outcome.State,
	}
}

func (p *BackoffPoller) record(kind, result string, attempts int, start time.Time) {
	if kind == "" {
		kind = "unknown"
	}
	p.metrics.RecordPoll(kind, result, attempts, p.timeSource.Now().Sub(start))
}

// exact token equality, no case folding
func containsState(states []ExecutionState, state ExecutionState) bool {
	for _, s := range states {
		if s == state {
			return true
		}
	}
	return false
}
