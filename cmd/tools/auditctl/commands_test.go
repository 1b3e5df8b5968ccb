// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xcherryio/auditflow/engine"
	"github.com/xcherryio/auditflow/service/api"
)

type recordedRequest struct {
	path string
	body string
}

func newStubServer(t *testing.T, status int, response string) (*httptest.Server, *[]recordedRequest) {
	var requests []recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		requests = append(requests, recordedRequest{path: r.URL.Path, body: string(body)})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(server.Close)
	return server, &requests
}

func run(t *testing.T, server *httptest.Server, args ...string) (string, error) {
	var out bytes.Buffer
	app := buildCLIOptions(&out)
	argv := append([]string{"auditctl", "--" + flagApiEndpoint, server.URL, "--" + flagAsyncEndpoint, server.URL}, args...)
	err := app.Run(argv)
	return out.String(), err
}

func TestSnapshotStartCommand(t *testing.T) {
	server, requests := newStubServer(t, http.StatusOK, `{"status":"STARTED","export_arn":"arn:export/1"}`)

	out, err := run(t, server, "snapshot-start", "--table", "logs", "--bucket", "lake")

	require.NoError(t, err)
	require.Len(t, *requests, 1)
	assert.Equal(t, api.PathStartSnapshot, (*requests)[0].path)
	assert.JSONEq(t, `{"table_name":"logs","bucket_name":"lake"}`, (*requests)[0].body)

	var result engine.SnapshotResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, engine.SnapshotStarted, result.Status)
}

func TestExportCompletedCommandWithRawEvent(t *testing.T) {
	server, requests := newStubServer(t, http.StatusOK, `{"status":"AUDIT_TRIGGERED","export_arn":"arn:export/1"}`)

	_, err := run(t, server, "export-completed",
		"--event", `{"detail":{"exportArn":"arn:export/1","exportStatus":"COMPLETED"}}`)

	require.NoError(t, err)
	require.Len(t, *requests, 1)
	assert.JSONEq(t, `{"detail":{"exportArn":"arn:export/1","exportStatus":"COMPLETED"}}`, (*requests)[0].body)
}

func TestExportCompletedCommandInvalidEvent(t *testing.T) {
	server, requests := newStubServer(t, http.StatusOK, `{}`)

	_, err := run(t, server, "export-completed", "--event", `{"detail":`)

	assert.Error(t, err)
	assert.Empty(t, *requests)
}

func TestAuditCommandFailed(t *testing.T) {
	server, _ := newStubServer(t, http.StatusInternalServerError, `{"query_id":"q-1","status":"FAILED"}`)

	out, err := run(t, server, "audit")

	assert.Error(t, err)
	assert.Contains(t, out, `"status": "FAILED"`)
}
