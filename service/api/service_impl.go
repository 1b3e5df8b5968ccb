// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"net/http"

	"github.com/xcherryio/auditflow/common/log"
	"github.com/xcherryio/auditflow/common/log/tag"
	"github.com/xcherryio/auditflow/config"
	"github.com/xcherryio/auditflow/engine"
)

type serviceImpl struct {
	rootCtx      context.Context
	workflow     config.WorkflowConfiguration
	orchestrator *engine.AuditOrchestrator
	snapshot     *engine.SnapshotStage
	logger       log.Logger
}

// NewServiceImpl creates the entry point service. Audits follow rootCtx for
// cancellation instead of the request context.
func NewServiceImpl(
	rootCtx context.Context, workflow config.WorkflowConfiguration, orchestrator *engine.AuditOrchestrator,
	snapshot *engine.SnapshotStage, logger log.Logger,
) Service {
	return &serviceImpl{
		rootCtx:      rootCtx,
		workflow:     workflow,
		orchestrator: orchestrator,
		snapshot:     snapshot,
		logger:       logger,
	}
}

func (s serviceImpl) StartSnapshot(
	ctx context.Context, request SnapshotStartRequest,
) (*engine.SnapshotResult, *ErrorWithStatus) {
	result := s.snapshot.StartSnapshot(ctx, NewExportRequest(s.workflow, request))
	return snapshotResponse(result)
}

func (s serviceImpl) HandleExportCompleted(
	ctx context.Context, event engine.ExportCompletionEvent,
) (*engine.SnapshotResult, *ErrorWithStatus) {
	result := s.snapshot.HandleExportCompletion(ctx, event, s.workflow.AuditTarget)
	return snapshotResponse(result)
}

func (s serviceImpl) RunAudit(ctx context.Context, requestId string) (*AuditResponse, *ErrorWithStatus) {
	// a caller going away must not stop the audit mid-poll, only server shutdown does
	auditCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	defer cancel()
	stop := context.AfterFunc(s.rootCtx, cancel)
	defer stop()

	outcome := s.orchestrator.RunOptOutAudit(auditCtx, s.workflow, engine.AuditTrigger{RequestId: requestId})
	if outcome.Err != nil {
		s.logger.Debug("audit ended with error", tag.RequestId(requestId), tag.Error(outcome.Err))
	}
	return NewAuditResponse(outcome)
}

// NewExportRequest fills the empty fields of the request from the workflow configuration
func NewExportRequest(workflow config.WorkflowConfiguration, request SnapshotStartRequest) engine.ExportRequest {
	req := engine.ExportRequest{
		TableName: workflow.TableName,
		Bucket:    workflow.SnapshotBucket,
		Prefix:    workflow.ExportPrefix,
		Region:    workflow.Region,
	}
	if request.TableName != "" {
		req.TableName = request.TableName
	}
	if request.BucketName != "" {
		req.Bucket = request.BucketName
	}
	if request.Region != "" {
		req.Region = request.Region
	}
	return req
}

// NewAuditResponse maps an audit outcome to the entry point response:
// a SUCCEEDED query is a 200, everything else is a 500
func NewAuditResponse(outcome engine.AuditOutcome) (*AuditResponse, *ErrorWithStatus) {
	switch outcome.Failure() {
	case engine.FailureNone:
		return &AuditResponse{QueryId: outcome.QueryHandle.String(), Status: AuditStatusCompleted}, nil
	case engine.FailureConfiguration:
		return nil, NewErrorResponseWithStatus(http.StatusInternalServerError,
			AuditResponse{Body: BodyConfigurationError})
	}
	if outcome.Err == nil {
		// the query reached a failure state
		return nil, NewErrorResponseWithStatus(http.StatusInternalServerError,
			AuditResponse{QueryId: outcome.QueryHandle.String(), Status: outcome.FinalState.String()})
	}
	return nil, NewErrorResponseWithStatus(http.StatusInternalServerError, AuditResponse{Body: BodyExecutionFailed})
}

func snapshotResponse(result engine.SnapshotResult) (*engine.SnapshotResult, *ErrorWithStatus) {
	if result.Status == engine.SnapshotFailed {
		return nil, NewErrorResponseWithStatus(http.StatusInternalServerError, result)
	}
	return &result, nil
}
