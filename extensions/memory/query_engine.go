// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/xcherryio/auditflow/common/log"
	"github.com/xcherryio/auditflow/common/log/tag"
	"github.com/xcherryio/auditflow/config"
	"github.com/xcherryio/auditflow/engine"
)

type (
	// QueryEngine is an in-memory engine.QueryEngine. Every submitted query
	// gets its own handle and replays the scripted states independently.
	QueryEngine struct {
		sync.Mutex
		states  []engine.ExecutionState
		logger  log.Logger
		queries map[engine.QueryHandle]*QueryRecord
		order   []engine.QueryHandle
	}

	QueryRecord struct {
		Handle         engine.QueryHandle
		Query          string
		Database       string
		OutputLocation string
		Fetches        int
	}
)

var _ engine.QueryEngine = (*QueryEngine)(nil)

func newQueryEngine(cfg config.MemoryBackendConfig, logger log.Logger) *QueryEngine {
	return &QueryEngine{
		states:  toStates(cfg.QueryStates, "QUEUED", "RUNNING", engine.StateSucceeded),
		logger:  logger,
		queries: map[engine.QueryHandle]*QueryRecord{},
	}
}

func (q *QueryEngine) StartExecution(
	_ context.Context, query, database, outputLocation string,
) (engine.QueryHandle, error) {
	handle := engine.QueryHandle(uuid.NewString())

	q.Lock()
	defer q.Unlock()
	q.queries[handle] = &QueryRecord{
		Handle:         handle,
		Query:          query,
		Database:       database,
		OutputLocation: outputLocation,
	}
	q.order = append(q.order, handle)
	q.logger.Debug("memory query submitted", tag.QueryId(handle.String()))
	return handle, nil
}

func (q *QueryEngine) FetchState(_ context.Context, handle engine.QueryHandle) (engine.ExecutionState, error) {
	q.Lock()
	defer q.Unlock()
	record, ok := q.queries[handle]
	if !ok {
		return "", fmt.Errorf("query execution %v not found", handle)
	}
	record.Fetches++
	return stateAt(q.states, record.Fetches), nil
}

// Queries returns a copy of the submitted queries in submission order
func (q *QueryEngine) Queries() []QueryRecord {
	q.Lock()
	defer q.Unlock()
	out := make([]QueryRecord, 0, len(q.order))
	for _, h := range q.order {
		out = append(out, *q.queries[h])
	}
	return out
}
