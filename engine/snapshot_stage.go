// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"

	"github.com/xcherryio/auditflow/common/log"
	"github.com/xcherryio/auditflow/common/log/tag"
	"github.com/xcherryio/auditflow/common/metrics"
)

// SnapshotStage starts the nightly export and, on a separate invocation, reacts to the
// export completion by forwarding an audit invocation. The completion event is the only
// link between the two operations.
type SnapshotStage struct {
	exporter SnapshotExporter
	invoker  Invoker
	logger   log.Logger
	metrics  *metrics.Scope
}

func NewSnapshotStage(exporter SnapshotExporter, invoker Invoker, logger log.Logger, scope *metrics.Scope) *SnapshotStage {
	return &SnapshotStage{
		exporter: exporter,
		invoker:  invoker,
		logger:   logger,
		metrics:  scope,
	}
}

// StartSnapshot starts the export of the table into the bucket. It does not wait for the export.
func (s *SnapshotStage) StartSnapshot(ctx context.Context, req ExportRequest) SnapshotResult {
	result := s.startSnapshot(ctx, req)
	s.metrics.RecordSnapshot("start", string(result.Status))
	return result
}

func (s *SnapshotStage) startSnapshot(ctx context.Context, req ExportRequest) SnapshotResult {
	logger := s.logger.WithTags(tag.Table(req.TableName), tag.Bucket(req.Bucket), tag.Region(req.Region))
	if req.TableName == "" || req.Bucket == "" {
		logger.Error("SnapshotService: Missing configuration")
		return SnapshotResult{Status: SnapshotFailed, Reason: ReasonMissingConfig}
	}

	handle, err := s.exporter.ExportTable(ctx, req)
	if err != nil {
		logger.Error("SnapshotService: Export failed", tag.Error(err))
		return SnapshotResult{Status: SnapshotFailed, Error: err.Error()}
	}
	logger.Info("SnapshotService: Export Started", tag.ExportArn(handle.String()))
	return SnapshotResult{Status: SnapshotStarted, ExportArn: handle.String()}
}

// HandleExportCompletion forwards an audit invocation to target when the event reports COMPLETED.
// Any other status is ignored.
func (s *SnapshotStage) HandleExportCompletion(
	ctx context.Context, event ExportCompletionEvent, target string,
) SnapshotResult {
	result := s.handleExportCompletion(ctx, event, target)
	s.metrics.RecordSnapshot("export_completed", string(result.Status))
	return result
}

func (s *SnapshotStage) handleExportCompletion(
	ctx context.Context, event ExportCompletionEvent, target string,
) SnapshotResult {
	exportArn := event.Detail.ExportArn
	status := event.Detail.ExportStatus
	logger := s.logger.WithTags(tag.ExportArn(exportArn), tag.ExportStatus(status))

	if status != ExportStatusCompleted {
		logger.Info("SnapshotService: Non-completed export status received")
		return SnapshotResult{Status: SnapshotIgnored, Reason: "STATUS_" + status}
	}
	if target == "" {
		logger.Error("SnapshotService: Missing audit target")
		return SnapshotResult{Status: SnapshotFailed, Reason: ReasonMissingConfig}
	}

	logger.Info("SnapshotService: Export Complete. Triggering Auditor.", tag.Target(target))
	err := s.invoker.Invoke(ctx, target, InvocationPayload{
		Type:      InvocationTypeSnapshotComplete,
		ExportArn: exportArn,
	})
	if err != nil {
		logger.Error("SnapshotService: Auditor trigger failed", tag.Target(target), tag.Error(err))
		return SnapshotResult{Status: SnapshotFailed, Error: err.Error()}
	}
	return SnapshotResult{Status: SnapshotAuditTriggered}
}
