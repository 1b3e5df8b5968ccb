// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xcherryio/auditflow/common/clock"
	"github.com/xcherryio/auditflow/config"
)

func TestRunAuditOutlivesClientDisconnect(t *testing.T) {
	memCfg := config.MemoryBackendConfig{CrawlerStates: []string{"RUNNING", "RUNNING", "READY"}}
	policy := config.PollPolicy{InitialDelay: 100 * time.Millisecond, MaxAttempts: 5}
	env := newTestEnvWithClock(context.Background(), fullWorkflow(), memCfg, clock.NewRealTimeSource(), policy)
	server := httptest.NewServer(env.handler)
	defer server.Close()

	// the client gives up while discovery is still polling
	httpClient := &http.Client{Timeout: 150 * time.Millisecond}
	resp, err := httpClient.Post(server.URL+PathRunAudit, "application/json", nil)
	if resp != nil {
		_ = resp.Body.Close()
	}
	require.Error(t, err)

	require.Eventually(t, func() bool {
		return len(env.backend.QueryEngine.Queries()) == 1
	}, 5*time.Second, 20*time.Millisecond)
}

func TestRunAuditStopsOnShutdown(t *testing.T) {
	rootCtx, cancel := context.WithCancel(context.Background())
	cancel()
	memCfg := config.MemoryBackendConfig{CrawlerStates: []string{"RUNNING"}}
	policy := config.PollPolicy{InitialDelay: 10 * time.Second, MaxAttempts: 5}
	env := newTestEnvWithClock(rootCtx, fullWorkflow(), memCfg, clock.NewRealTimeSource(), policy)

	start := time.Now()
	code, body := env.do(t, http.MethodPost, PathRunAudit, "")

	assert.Less(t, time.Since(start), 10*time.Second)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, BodyExecutionFailed, body["body"])
	assert.Empty(t, env.backend.QueryEngine.Queries())
}
