// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"

	"github.com/xcherryio/auditflow/common/log"
	"github.com/xcherryio/auditflow/common/log/tag"
	"github.com/xcherryio/auditflow/config"
)

// AnalyticsStage submits a query and waits for it to complete
type AnalyticsStage struct {
	queryEngine QueryEngine
	poller      *BackoffPoller
	policy      config.PollPolicy
	logger      log.Logger
}

func NewAnalyticsStage(
	queryEngine QueryEngine, poller *BackoffPoller, policy config.PollPolicy, logger log.Logger,
) *AnalyticsStage {
	return &AnalyticsStage{
		queryEngine: queryEngine,
		poller:      poller,
		policy:      policy.WithDefaults(config.DefaultPollPolicy()),
		logger:      logger,
	}
}

// RunQuery submits the query and returns its handle immediately
func (a *AnalyticsStage) RunQuery(ctx context.Context, query, database, outputLocation string) (QueryHandle, error) {
	handle, err := a.queryEngine.StartExecution(ctx, query, database, outputLocation)
	if err != nil {
		return "", newRemoteError("start query execution", err)
	}
	a.logger.Info("query submitted", tag.QueryId(handle.String()), tag.Database(database))
	return handle, nil
}

// WaitCompletion polls the query until it is SUCCEEDED, FAILED or CANCELLED and returns that state.
// A query that never terminates within the attempt budget is a *PollTimeoutError, never FAILED.
func (a *AnalyticsStage) WaitCompletion(ctx context.Context, handle QueryHandle) (ExecutionState, error) {
	outcome, err := a.poller.Poll(ctx, PollRequest{
		Label: "Query " + handle.String(),
		Kind:  "analytics",
		Check: func(ctx context.Context) (ExecutionState, error) {
			return a.queryEngine.FetchState(ctx, handle)
		},
		SuccessStates: []ExecutionState{StateSucceeded},
		FailureStates: []ExecutionState{StateFailed, StateCancelled},
		Policy:        a.policy,
	})
	return outcome.State, err
}
