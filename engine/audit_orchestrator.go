// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"fmt"

	"github.com/xcherryio/auditflow/common/log"
	"github.com/xcherryio/auditflow/common/log/tag"
	"github.com/xcherryio/auditflow/common/metrics"
	"github.com/xcherryio/auditflow/config"
)

// AuditTrigger describes what started an audit. It is only used for logging.
type AuditTrigger struct {
	RequestId string
	ExportArn string
}

// AuditOrchestrator runs discovery and then, only if the catalog became READY, analytics.
//
//	START -> DISCOVERING -> DISCOVERY_FAILED
//	                     -> ANALYZING -> ANALYSIS_DONE
type AuditOrchestrator struct {
	catalog     MetadataCatalog
	queryEngine QueryEngine
	poller      *BackoffPoller
	pollerCfg   config.PollerConfig
	logger      log.Logger
	metrics     *metrics.Scope
}

func NewAuditOrchestrator(
	catalog MetadataCatalog, queryEngine QueryEngine, poller *BackoffPoller,
	pollerCfg config.PollerConfig, logger log.Logger, scope *metrics.Scope,
) *AuditOrchestrator {
	return &AuditOrchestrator{
		catalog:     catalog,
		queryEngine: queryEngine,
		poller:      poller,
		pollerCfg:   pollerCfg,
		logger:      logger,
		metrics:     scope,
	}
}

// RunOptOutAudit runs one audit to a terminal phase on the calling goroutine.
// Errors are never returned or propagated as panics, they are put into the outcome.
func (o *AuditOrchestrator) RunOptOutAudit(
	ctx context.Context, wf config.WorkflowConfiguration, trigger AuditTrigger,
) (outcome AuditOutcome) {
	logger := o.logger.WithTags(tag.RequestId(trigger.RequestId), tag.ExportArn(trigger.ExportArn))
	outcome.Phase = AuditPhaseStart

	defer func() {
		if r := recover(); r != nil {
			outcome.Err = &RemoteError{Op: string(outcome.Phase), Err: fmt.Errorf("panic: %v", r)}
		}
		o.report(logger, outcome)
	}()

	if err := wf.ValidateForAudit(); err != nil {
		outcome.Err = err
		return outcome
	}

	outcome.Phase = AuditPhaseDiscovering
	logger.Info("Starting Audit: Discovery Phase", tag.Phase(string(outcome.Phase)))
	discovery := NewDiscoveryStage(o.catalog, wf.CrawlerName, o.poller, o.pollerCfg.Discovery, logger)
	if err := discovery.Refresh(ctx); err != nil {
		outcome.Phase = AuditPhaseDiscoveryFailed
		outcome.Err = err
		return outcome
	}
	state, err := discovery.WaitReady(ctx)
	if err == nil && state != StateReady {
		err = &TerminalStateError{Label: "Crawler " + wf.CrawlerName, State: state}
	}
	if err != nil {
		outcome.Phase = AuditPhaseDiscoveryFailed
		outcome.Err = err
		return outcome
	}

	outcome.Phase = AuditPhaseAnalyzing
	logger.Info("Starting Audit: Analysis Phase", tag.Phase(string(outcome.Phase)))
	analytics := NewAnalyticsStage(o.queryEngine, o.poller, o.pollerCfg.Analytics, logger)
	query := BuildOptOutAuditQuery(wf.DatabaseName, wf.TableName)
	handle, err := analytics.RunQuery(ctx, query, wf.DatabaseName, wf.QueryOutputLocation)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	outcome.QueryHandle = handle

	finalState, err := analytics.WaitCompletion(ctx, handle)
	outcome.FinalState = finalState
	if err != nil {
		outcome.Err = err
		return outcome
	}
	outcome.Phase = AuditPhaseAnalysisDone
	return outcome
}

func (o *AuditOrchestrator) report(logger log.Logger, outcome AuditOutcome) {
	status := outcome.FinalState.String()
	if outcome.Err != nil {
		status = string(ClassifyFailure(outcome.Err))
	}
	o.metrics.RecordAudit(string(outcome.Phase), status)

	tags := []tag.Tag{
		tag.Phase(string(outcome.Phase)),
		tag.QueryId(outcome.QueryHandle.String()),
		tag.State(outcome.FinalState.String()),
	}
	switch {
	case outcome.Succeeded():
		logger.Info("Privacy Audit Successful", tags...)
	case outcome.Err != nil:
		logger.Error("Privacy Audit Failed", append(tags, tag.Error(outcome.Err))...)
	default:
		logger.Error("Privacy Audit Failed", tags...)
	}
}

// Failure classifies a non successful outcome. A query that ended in a state
// other than SUCCEEDED is a terminal failure state.
func (o AuditOutcome) Failure() FailureKind {
	if o.Err != nil {
		return ClassifyFailure(o.Err)
	}
	if o.FinalState != StateSucceeded {
		return FailureTerminalFailureState
	}
	return FailureNone
}
