// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package extensions

import (
	"context"

	"github.com/xcherryio/auditflow/common/log"
	"github.com/xcherryio/auditflow/config"
	"github.com/xcherryio/auditflow/engine"
)

// BackendExtension provides the remote collaborators that the workflow stages drive
type BackendExtension interface {
	StartBackend(ctx context.Context, cfg *config.Config, logger log.Logger) (*Backend, error)
}

// Backend is the set of collaborators of one extension.
// Invoker may be nil when the extension cannot hand off invocations,
// then a dispatcher must be configured.
type Backend struct {
	Catalog     engine.MetadataCatalog
	QueryEngine engine.QueryEngine
	Exporter    engine.SnapshotExporter
	Invoker     engine.Invoker
}

// ErrorChecker classifies the errors returned by a backend
type ErrorChecker interface {
	IsThrottlingError(err error) bool
	IsNotFoundError(err error) bool
	IsTimeoutError(err error) bool
}
