// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
)

// MetadataCatalog is the metadata discovery collaborator, e.g. a Glue crawler
type MetadataCatalog interface {
	// TriggerRefresh starts a refresh of the catalog.
	// It returns ErrRefreshAlreadyRunning (possibly wrapped) if one is in progress.
	TriggerRefresh(ctx context.Context, name string) error
	FetchState(ctx context.Context, name string) (ExecutionState, error)
}

// QueryEngine is the analytical query collaborator, e.g. Athena
type QueryEngine interface {
	// StartExecution submits the query and returns without waiting for it
	StartExecution(ctx context.Context, query, database, outputLocation string) (QueryHandle, error)
	FetchState(ctx context.Context, handle QueryHandle) (ExecutionState, error)
}

// SnapshotExporter is the snapshot/export collaborator, e.g. a DynamoDB export to S3
type SnapshotExporter interface {
	// ExportTable starts the export. Completion is reported later by an external event.
	ExportTable(ctx context.Context, req ExportRequest) (ExportHandle, error)
}

// Invoker forwards a payload to the target without waiting for the target to run it
type Invoker interface {
	Invoke(ctx context.Context, target string, payload InvocationPayload) error
}

type ExportRequest struct {
	TableName string
	Bucket    string
	Prefix    string
	Region    string
}
