// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"

	"github.com/xcherryio/auditflow/common/log"
	"github.com/xcherryio/auditflow/common/log/tag"
	"github.com/xcherryio/auditflow/config"
	"github.com/xcherryio/auditflow/engine"
	"github.com/xcherryio/auditflow/extensions"
)

const ExtensionName = "memory"

type extension struct{}

var _ extensions.BackendExtension = (*extension)(nil)

func init() {
	extensions.RegisterBackend(ExtensionName, &extension{})
}

func (e *extension) StartBackend(
	_ context.Context, cfg *config.Config, logger log.Logger,
) (*extensions.Backend, error) {
	b := NewBackend(cfg.Memory, cfg.Workflow.Region, logger)
	return b.Collaborators(), nil
}

// Backend keeps every collaborator in process. State sequences are scripted by
// config.MemoryBackendConfig, so a whole audit can run without any cloud account.
type Backend struct {
	Catalog     *Catalog
	QueryEngine *QueryEngine
	Exporter    *Exporter
	Invoker     *Invoker
}

func NewBackend(cfg config.MemoryBackendConfig, region string, logger log.Logger) *Backend {
	logger = logger.WithTags(tag.Service(ExtensionName))
	return &Backend{
		Catalog:     newCatalog(cfg, logger),
		QueryEngine: newQueryEngine(cfg, logger),
		Exporter:    newExporter(region, logger),
		Invoker:     newInvoker(logger),
	}
}

// Collaborators returns the backend as engine collaborators
func (b *Backend) Collaborators() *extensions.Backend {
	return &extensions.Backend{
		Catalog:     b.Catalog,
		QueryEngine: b.QueryEngine,
		Exporter:    b.Exporter,
		Invoker:     b.Invoker,
	}
}

func toStates(states []string, defaults ...engine.ExecutionState) []engine.ExecutionState {
	if len(states) == 0 {
		return defaults
	}
	out := make([]engine.ExecutionState, 0, len(states))
	for _, s := range states {
		out = append(out, engine.ExecutionState(s))
	}
	return out
}

// stateAt returns the n-th (1-based) state, repeating the last one once exhausted
func stateAt(states []engine.ExecutionState, n int) engine.ExecutionState {
	if n > len(states) {
		return states[len(states)-1]
	}
	return states[n-1]
}
