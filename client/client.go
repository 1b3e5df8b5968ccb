// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/xcherryio/auditflow/engine"
	"github.com/xcherryio/auditflow/service/api"
	"github.com/xcherryio/auditflow/service/async"
)

const (
	DefaultApiEndpoint   = "http://localhost:8801"
	DefaultAsyncEndpoint = "http://localhost:8701"

	// DefaultTimeout covers config.PollerConfig{}.MaxAuditWait, about 23 minutes of
	// backoff sleeps for a synchronous audit with the default poll policies
	DefaultTimeout = 30 * time.Minute
)

// Client calls the http entry points of a running server
type Client struct {
	api   *resty.Client
	async *resty.Client
}

// ResponseError is a non-2xx response. Body is the raw response body.
type ResponseError struct {
	StatusCode int
	Body       string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("unexpected status %v: %v", e.StatusCode, e.Body)
}

func NewClient(apiEndpoint, asyncEndpoint string, timeout time.Duration) *Client {
	newResty := func(endpoint string) *resty.Client {
		return resty.New().
			SetBaseURL(endpoint).
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json")
	}
	return &Client{
		api:   newResty(apiEndpoint),
		async: newResty(asyncEndpoint),
	}
}

func (c *Client) StartSnapshot(ctx context.Context, req api.SnapshotStartRequest) (*engine.SnapshotResult, error) {
	var result engine.SnapshotResult
	resp, err := c.api.R().SetContext(ctx).SetBody(req).SetResult(&result).Post(api.PathStartSnapshot)
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ExportCompleted(
	ctx context.Context, event engine.ExportCompletionEvent,
) (*engine.SnapshotResult, error) {
	var result engine.SnapshotResult
	resp, err := c.api.R().SetContext(ctx).SetBody(event).SetResult(&result).Post(api.PathExportCompleted)
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}
	return &result, nil
}

// RunAudit runs a synchronous audit. A failed audit is a *ResponseError with status 500,
// and its body is still decoded into the returned response.
func (c *Client) RunAudit(ctx context.Context, requestId string) (*api.AuditResponse, error) {
	var result api.AuditResponse
	req := c.api.R().SetContext(ctx).SetResult(&result).SetError(&result)
	if requestId != "" {
		req.SetHeader(api.HeaderRequestId, requestId)
	}
	resp, err := req.Post(api.PathRunAudit)
	return &result, checkResponse(resp, err)
}

// InvokeAudit queues an audit on the async service and returns the task id
func (c *Client) InvokeAudit(ctx context.Context, payload engine.InvocationPayload) (string, error) {
	var result async.InvokeAuditResponse
	resp, err := c.async.R().SetContext(ctx).SetBody(payload).SetResult(&result).Post(async.PathInvokeAudit)
	if err := checkResponse(resp, err); err != nil {
		return "", err
	}
	return result.TaskId, nil
}

// Metrics returns the prometheus exposition of the api service
func (c *Client) Metrics(ctx context.Context) (string, error) {
	resp, err := c.api.R().SetContext(ctx).Get(api.PathMetrics)
	if err := checkResponse(resp, err); err != nil {
		return "", err
	}
	return resp.String(), nil
}

func checkResponse(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if resp.IsError() {
		return &ResponseError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}
	return nil
}
