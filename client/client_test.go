// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xcherryio/auditflow/common/clock"
	"github.com/xcherryio/auditflow/common/log"
	"github.com/xcherryio/auditflow/common/metrics"
	"github.com/xcherryio/auditflow/config"
	"github.com/xcherryio/auditflow/engine"
	"github.com/xcherryio/auditflow/extensions/memory"
	"github.com/xcherryio/auditflow/service/api"
	"github.com/xcherryio/auditflow/service/async"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestClient(t *testing.T, memCfg config.MemoryBackendConfig) (*Client, *memory.Backend) {
	cfg := config.Config{
		Workflow: config.WorkflowConfiguration{
			CrawlerName:         "signals-crawler",
			DatabaseName:        "privacy_db",
			TableName:           "signals",
			QueryOutputLocation: "s3://results/",
			SnapshotBucket:      "lake",
			Region:              "us-east-1",
			AuditTarget:         "auditor",
		},
		AsyncService: config.AsyncServiceConfig{ProcessorConcurrency: 1, ProcessorBufferSize: 4},
	}
	logger := log.NewNopLogger()
	scope := metrics.NewScope()
	backend := memory.NewBackend(memCfg, cfg.Workflow.Region, logger)
	poller := engine.NewBackoffPoller(clock.NewFakeTimeSource(time.Unix(0, 0)), logger, scope)
	policy := config.PollPolicy{MaxAttempts: 3}
	orchestrator := engine.NewAuditOrchestrator(backend.Catalog, backend.QueryEngine, poller,
		config.PollerConfig{Discovery: policy, Analytics: policy}, logger, scope)
	snapshot := engine.NewSnapshotStage(backend.Exporter, backend.Invoker, logger, scope)

	apiServer := httptest.NewServer(api.NewGinEngine(
		api.NewServiceImpl(context.Background(), cfg.Workflow, orchestrator, snapshot, logger), scope, logger))
	t.Cleanup(apiServer.Close)

	asyncSvc := async.NewAsyncServiceImpl(context.Background(), cfg, orchestrator, scope, logger)
	require.NoError(t, asyncSvc.Start())
	t.Cleanup(func() { _ = asyncSvc.Stop(context.Background()) })
	asyncServer := httptest.NewServer(async.NewGinEngine(asyncSvc, logger))
	t.Cleanup(asyncServer.Close)

	return NewClient(apiServer.URL, asyncServer.URL, 5*time.Second), backend
}

func TestClientRunAudit(t *testing.T) {
	c, _ := newTestClient(t, config.MemoryBackendConfig{})

	resp, err := c.RunAudit(context.Background(), "req-1")

	require.NoError(t, err)
	assert.Equal(t, api.AuditStatusCompleted, resp.Status)
	assert.NotEmpty(t, resp.QueryId)
}

func TestClientRunAuditFailed(t *testing.T) {
	c, _ := newTestClient(t, config.MemoryBackendConfig{QueryStates: []string{"FAILED"}})

	resp, err := c.RunAudit(context.Background(), "")

	var respErr *ResponseError
	require.True(t, errors.As(err, &respErr))
	assert.Equal(t, http.StatusInternalServerError, respErr.StatusCode)
	assert.Equal(t, "FAILED", resp.Status)
}

func TestClientSnapshotFlow(t *testing.T) {
	c, backend := newTestClient(t, config.MemoryBackendConfig{})
	ctx := context.Background()

	started, err := c.StartSnapshot(ctx, api.SnapshotStartRequest{})
	require.NoError(t, err)
	assert.Equal(t, engine.SnapshotStarted, started.Status)

	event := engine.ExportCompletionEvent{Detail: engine.ExportCompletionDetail{
		ExportArn: started.ExportArn, ExportStatus: "COMPLETED",
	}}
	invoked, err := c.ExportCompleted(ctx, event)
	require.NoError(t, err)
	assert.Equal(t, engine.SnapshotAuditTriggered, invoked.Status)

	invocations := backend.Invoker.Invocations()
	require.Len(t, invocations, 1)
	assert.Equal(t, "auditor", invocations[0].Target)
	assert.Equal(t, started.ExportArn, invocations[0].Payload.ExportArn)
}

func TestClientInvokeAudit(t *testing.T) {
	c, backend := newTestClient(t, config.MemoryBackendConfig{})

	taskId, err := c.InvokeAudit(context.Background(), engine.InvocationPayload{Type: "SNAPSHOT_COMPLETE"})

	require.NoError(t, err)
	assert.NotEmpty(t, taskId)
	require.Eventually(t, func() bool {
		return len(backend.QueryEngine.Queries()) == 1
	}, 5*time.Second, 10*time.Millisecond)
}

func TestClientMetrics(t *testing.T) {
	c, _ := newTestClient(t, config.MemoryBackendConfig{})
	_, err := c.RunAudit(context.Background(), "")
	require.NoError(t, err)

	body, err := c.Metrics(context.Background())

	require.NoError(t, err)
	assert.Contains(t, body, "auditflow_audit_total")
}

func TestDefaultTimeoutCoversDefaultPollPolicies(t *testing.T) {
	assert.Greater(t, DefaultTimeout, config.PollerConfig{}.MaxAuditWait())
}
