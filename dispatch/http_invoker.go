// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/xcherryio/auditflow/common/httperror"
	"github.com/xcherryio/auditflow/common/log"
	"github.com/xcherryio/auditflow/common/log/tag"
	"github.com/xcherryio/auditflow/common/urlautofix"
	"github.com/xcherryio/auditflow/config"
	"github.com/xcherryio/auditflow/engine"
)

// HttpInvoker posts the payload as JSON to the target url, usually the
// internal intake of an async service. Any 2xx is a successful hand-off.
type HttpInvoker struct {
	client *resty.Client
	logger log.Logger
}

func NewHttpInvoker(cfg config.HttpDispatchConfig, logger log.Logger) *HttpInvoker {
	client := resty.New()
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	client.SetHeader("Content-Type", "application/json")
	return &HttpInvoker{client: client, logger: logger}
}

func (h *HttpInvoker) Invoke(ctx context.Context, target string, payload engine.InvocationPayload) error {
	url := urlautofix.FixUrl(target)
	resp, err := h.client.R().
		SetContext(ctx).
		SetBody(payload).
		Post(url)

	var rawResp *http.Response
	if resp != nil {
		rawResp = resp.RawResponse
	}
	if err := httperror.CheckHttpResponseAndError(err, rawResp, h.logger.WithTags(tag.Target(url))); err != nil {
		return fmt.Errorf("post invocation to %v: %w", url, err)
	}
	return nil
}

func (h *HttpInvoker) Close() error {
	return nil
}
