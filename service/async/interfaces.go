// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package async

import (
	"context"

	"github.com/xcherryio/auditflow/engine"
)

type Server interface {
	// Start will start running on the background
	Start() error
	Stop(ctx context.Context) error
}

type Service interface {
	Start() error
	// SubmitInvocation queues one audit without waiting for it.
	// It returns false when the processor cannot take more work.
	SubmitInvocation(payload engine.InvocationPayload, channel string, onComplete func(engine.AuditOutcome)) (
		taskId string, accepted bool)
	Stop(ctx context.Context) error
}
