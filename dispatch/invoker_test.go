// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xcherryio/auditflow/common/log"
	"github.com/xcherryio/auditflow/config"
	"github.com/xcherryio/auditflow/engine"
)

type recordingInvoker struct {
	payloads []engine.InvocationPayload
}

func (r *recordingInvoker) Invoke(_ context.Context, _ string, payload engine.InvocationPayload) error {
	r.payloads = append(r.payloads, payload)
	return nil
}

var testPayload = engine.InvocationPayload{Type: engine.InvocationTypeSnapshotComplete, ExportArn: "arn:export"}

func TestHttpInvokerPostsPayload(t *testing.T) {
	var received engine.InvocationPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	invoker := NewHttpInvoker(config.HttpDispatchConfig{Timeout: time.Second}, log.NewNopLogger())

	require.NoError(t, invoker.Invoke(context.Background(), server.URL+"/internal/v1/auditflow/audit/invoke", testPayload))
	assert.Equal(t, testPayload, received)
}

func TestHttpInvokerRejectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	invoker := NewHttpInvoker(config.HttpDispatchConfig{}, log.NewNopLogger())

	err := invoker.Invoke(context.Background(), server.URL, testPayload)
	assert.ErrorContains(t, err, "503")
}

func TestHttpInvokerUnreachable(t *testing.T) {
	invoker := NewHttpInvoker(config.HttpDispatchConfig{Timeout: time.Second}, log.NewNopLogger())

	err := invoker.Invoke(context.Background(), "http://127.0.0.1:1/unreachable", testPayload)
	assert.Error(t, err)
}

func TestNewInvokerBackendMode(t *testing.T) {
	backendInvoker := &recordingInvoker{}

	invoker, err := NewInvoker(config.DispatchConfig{Mode: config.DispatchModeBackend}, backendInvoker, log.NewNopLogger())
	require.NoError(t, err)
	require.NoError(t, invoker.Invoke(context.Background(), "auditor", testPayload))
	assert.NoError(t, invoker.Close())
	assert.Equal(t, []engine.InvocationPayload{testPayload}, backendInvoker.payloads)

	_, err = NewInvoker(config.DispatchConfig{Mode: config.DispatchModeBackend}, nil, log.NewNopLogger())
	assert.Error(t, err)
}

func TestNewInvokerHttpMode(t *testing.T) {
	invoker, err := NewInvoker(config.DispatchConfig{Mode: config.DispatchModeHttp}, nil, log.NewNopLogger())
	require.NoError(t, err)
	assert.IsType(t, &HttpInvoker{}, invoker)

	_, err = NewInvoker(config.DispatchConfig{Mode: "carrier-pigeon"}, nil, log.NewNopLogger())
	assert.Error(t, err)
}
