// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"errors"

	"github.com/xcherryio/auditflow/common/log"
	"github.com/xcherryio/auditflow/common/log/tag"
	"github.com/xcherryio/auditflow/config"
)

// DiscoveryStage refreshes the metadata catalog and waits until it is READY
type DiscoveryStage struct {
	catalog     MetadataCatalog
	crawlerName string
	poller      *BackoffPoller
	policy      config.PollPolicy
	logger      log.Logger
}

func NewDiscoveryStage(
	catalog MetadataCatalog, crawlerName string, poller *BackoffPoller, policy config.PollPolicy, logger log.Logger,
) *DiscoveryStage {
	return &DiscoveryStage{
		catalog:     catalog,
		crawlerName: crawlerName,
		poller:      poller,
		policy:      policy.WithDefaults(config.DefaultDiscoveryPollPolicy()),
		logger:      logger.WithTags(tag.Crawler(crawlerName)),
	}
}

// Refresh asks the catalog to start a refresh and returns without waiting.
// A refresh that is already running is fine, any other rejection is returned.
func (d *DiscoveryStage) Refresh(ctx context.Context) error {
	err := d.catalog.TriggerRefresh(ctx, d.crawlerName)
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrRefreshAlreadyRunning) {
		d.logger.Info("crawler already running")
		return nil
	}
	return newRemoteError("trigger crawler "+d.crawlerName, err)
}

// WaitReady polls the catalog until it reports READY.
// With no failure states configured the loop ends in READY or in a *PollTimeoutError.
func (d *DiscoveryStage) WaitReady(ctx context.Context) (ExecutionState, error) {
	outcome, err := d.poller.Poll(ctx, PollRequest{
		Label: "Crawler " + d.crawlerName,
		Kind:  "discovery",
		Check: func(ctx context.Context) (ExecutionState, error) {
			return d.catalog.FetchState(ctx, d.crawlerName)
		},
		SuccessStates: []ExecutionState{StateReady},
		FailureStates: toStates(d.policy.FailureStates),
		Policy:        d.policy,
	})
	return outcome.State, err
}

func toStates(states []string) []ExecutionState {
	if len(states) == 0 {
		return nil
	}
	out := make([]ExecutionState, 0, len(states))
	for _, s := range states {
		out = append(out, ExecutionState(s))
	}
	return out
}
