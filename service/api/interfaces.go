// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"

	"github.com/xcherryio/auditflow/engine"
)

type Server interface {
	// Start will start running on the background
	Start() error
	Stop(ctx context.Context) error
}

// Service is the interface of API service, which decoupled from REST server framework like Gin
// So that users can choose to use other REST frameworks to serve requests
type Service interface {
	StartSnapshot(ctx context.Context, request SnapshotStartRequest) (
		resp *engine.SnapshotResult, err *ErrorWithStatus)
	HandleExportCompleted(ctx context.Context, event engine.ExportCompletionEvent) (
		resp *engine.SnapshotResult, err *ErrorWithStatus)
	// RunAudit blocks until the audit is terminal
	RunAudit(ctx context.Context, requestId string) (resp *AuditResponse, err *ErrorWithStatus)
}
