// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xcherryio/auditflow/config"
)

func memoryConfig() *config.Config {
	return &config.Config{
		Log:     config.Logger{Level: "error"},
		Backend: "memory",
		Workflow: config.WorkflowConfiguration{
			CrawlerName:         "signals-crawler",
			DatabaseName:        "privacy_db",
			TableName:           "signals",
			QueryOutputLocation: "s3://results/",
			SnapshotBucket:      "lake",
		},
		ApiService: config.ApiServiceConfig{
			HttpServer: config.HttpServerConfig{Address: "127.0.0.1:0"},
		},
		AsyncService: config.AsyncServiceConfig{
			InternalHttpServer: config.HttpServerConfig{Address: "127.0.0.1:0"},
		},
	}
}

func TestMemoryBackendRequiresAsyncService(t *testing.T) {
	shutdown, err := StartAuditFlowServer(context.Background(), memoryConfig(), map[string]bool{ApiServiceName: true})

	assert.ErrorContains(t, err, AsyncServiceName)
	assert.Nil(t, shutdown)
}

func TestMemoryBackendWithAsyncService(t *testing.T) {
	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdown, err := StartAuditFlowServer(rootCtx, memoryConfig(),
		map[string]bool{ApiServiceName: true, AsyncServiceName: true})
	require.NoError(t, err)

	cancel()
	ctx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	assert.NoError(t, shutdown(ctx))
}
