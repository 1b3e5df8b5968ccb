// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package async

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xcherryio/auditflow/common/log"
	"github.com/xcherryio/auditflow/common/log/tag"
	"github.com/xcherryio/auditflow/engine"
)

type (
	ginHandler struct {
		logger log.Logger
		svc    Service
	}

	InvokeAuditResponse struct {
		TaskId string `json:"task_id"`
	}

	ApiErrorResponse struct {
		Detail string `json:"detail"`
	}
)

func newGinHandler(svc Service, logger log.Logger) *ginHandler {
	return &ginHandler{
		logger: logger,
		svc:    svc,
	}
}

func (h *ginHandler) InvokeAudit(c *gin.Context) {
	var payload engine.InvocationPayload
	// an empty body is a manual trigger
	if err := c.ShouldBindJSON(&payload); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, ApiErrorResponse{Detail: "invalid request schema"})
		return
	}

	taskId, accepted := h.svc.SubmitInvocation(payload, ChannelHttp, nil)
	if !accepted {
		h.logger.Warn("audit invocation rejected", tag.ExportArn(payload.ExportArn))
		c.JSON(http.StatusServiceUnavailable, ApiErrorResponse{Detail: "too many audits in progress"})
		return
	}
	c.JSON(http.StatusAccepted, InvokeAuditResponse{TaskId: taskId})
}
