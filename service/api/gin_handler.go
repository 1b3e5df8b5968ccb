// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/xcherryio/auditflow/common/log"
	"github.com/xcherryio/auditflow/common/log/tag"
	"github.com/xcherryio/auditflow/engine"
)

const HeaderRequestId = "X-Request-Id"

type ginHandler struct {
	logger log.Logger
	svc    Service
}

func newGinHandler(svc Service, logger log.Logger) *ginHandler {
	return &ginHandler{
		logger: logger,
		svc:    svc,
	}
}

func (h *ginHandler) StartSnapshot(c *gin.Context) {
	var req SnapshotStartRequest
	// the body is optional
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		invalidRequestSchema(c)
		return
	}
	h.logger.Debug("received StartSnapshot API request", tag.Value(h.toJson(req)))

	resp, errResp := h.svc.StartSnapshot(c.Request.Context(), req)

	if errResp != nil {
		c.JSON(errResp.StatusCode, errResp.Error)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ginHandler) ExportCompleted(c *gin.Context) {
	var event engine.ExportCompletionEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		invalidRequestSchema(c)
		return
	}
	h.logger.Debug("received ExportCompleted API request", tag.Value(h.toJson(event)))

	resp, errResp := h.svc.HandleExportCompleted(c.Request.Context(), event)

	if errResp != nil {
		c.JSON(errResp.StatusCode, errResp.Error)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ginHandler) RunAudit(c *gin.Context) {
	requestId := c.GetHeader(HeaderRequestId)
	if requestId == "" {
		requestId = uuid.NewString()
	}
	h.logger.Debug("received RunAudit API request", tag.RequestId(requestId))

	resp, errResp := h.svc.RunAudit(c.Request.Context(), requestId)

	if errResp != nil {
		c.JSON(errResp.StatusCode, errResp.Error)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ginHandler) toJson(req any) string {
	str, err := json.Marshal(req)
	if err != nil {
		h.logger.Error("error when serializing request", tag.Error(err), tag.DefaultValue(req))
		return ""
	}
	return string(str)
}

func invalidRequestSchema(c *gin.Context) {
	c.JSON(http.StatusBadRequest, ApiErrorResponse{
		Detail: "invalid request schema",
	})
}
