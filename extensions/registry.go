// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package extensions

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/xcherryio/auditflow/common/log"
	"github.com/xcherryio/auditflow/config"
)

var (
	registryLock sync.RWMutex
	registry     = map[string]BackendExtension{}
)

// RegisterBackend will register a backend extension. It is meant to be called from init()
func RegisterBackend(name string, ext BackendExtension) {
	registryLock.Lock()
	defer registryLock.Unlock()
	if _, ok := registry[name]; ok {
		panic("backend extension " + name + " already registered")
	}
	registry[name] = ext
}

// NewBackend starts the backend named by cfg.Backend
func NewBackend(ctx context.Context, cfg *config.Config, logger log.Logger) (*Backend, error) {
	registryLock.RLock()
	ext, ok := registry[cfg.Backend]
	registryLock.RUnlock()

	if !ok {
		return nil, fmt.Errorf("not supported backend %v, only supported: %v", cfg.Backend, RegisteredBackends())
	}

	backend, err := ext.StartBackend(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to start backend %v: %w", cfg.Backend, err)
	}
	if backend.Catalog == nil || backend.QueryEngine == nil || backend.Exporter == nil {
		return nil, fmt.Errorf("backend %v is incomplete", cfg.Backend)
	}
	return backend, nil
}

// RegisteredBackends returns the sorted names of the registered extensions
func RegisteredBackends() []string {
	registryLock.RLock()
	defer registryLock.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
