// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/xcherryio/auditflow/common/log"
	"github.com/xcherryio/auditflow/common/log/tag"
	"github.com/xcherryio/auditflow/config"
	"github.com/xcherryio/auditflow/engine"
)

// Catalog is an in-memory engine.MetadataCatalog.
// Every crawler replays the scripted states from the start when it is refreshed.
type Catalog struct {
	sync.Mutex
	states         []engine.ExecutionState
	alreadyRunning bool
	logger         log.Logger
	// crawler name -> number of state fetches since the last refresh
	fetches   map[string]int
	refreshes map[string]int
}

var _ engine.MetadataCatalog = (*Catalog)(nil)

func newCatalog(cfg config.MemoryBackendConfig, logger log.Logger) *Catalog {
	return &Catalog{
		states:         toStates(cfg.CrawlerStates, "RUNNING", engine.StateReady),
		alreadyRunning: cfg.CrawlerAlreadyRunning,
		logger:         logger,
		fetches:        map[string]int{},
		refreshes:      map[string]int{},
	}
}

func (c *Catalog) TriggerRefresh(_ context.Context, crawlerName string) error {
	c.Lock()
	defer c.Unlock()
	c.refreshes[crawlerName]++
	if c.alreadyRunning {
		return fmt.Errorf("crawler %v: %w", crawlerName, engine.ErrRefreshAlreadyRunning)
	}
	c.fetches[crawlerName] = 0
	c.logger.Debug("memory crawler started", tag.Crawler(crawlerName))
	return nil
}

func (c *Catalog) FetchState(_ context.Context, crawlerName string) (engine.ExecutionState, error) {
	c.Lock()
	defer c.Unlock()
	c.fetches[crawlerName]++
	return stateAt(c.states, c.fetches[crawlerName]), nil
}

// Refreshes returns how many times the crawler was asked to refresh
func (c *Catalog) Refreshes(crawlerName string) int {
	c.Lock()
	defer c.Unlock()
	return c.refreshes[crawlerName]
}
