// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"
	"sync"

	"github.com/xcherryio/auditflow/common/log"
	"github.com/xcherryio/auditflow/common/log/tag"
	"github.com/xcherryio/auditflow/engine"
)

type (
	// InvocationHandler receives the invocations of the in-memory invoker
	InvocationHandler func(ctx context.Context, target string, payload engine.InvocationPayload) error

	Invocation struct {
		Target  string
		Payload engine.InvocationPayload
	}

	// Invoker records every invocation and forwards it to the handler, if one is set.
	// The server sets the async intake as handler, so a completed export starts an audit in process.
	Invoker struct {
		sync.Mutex
		logger      log.Logger
		handler     InvocationHandler
		invocations []Invocation
	}
)

var _ engine.Invoker = (*Invoker)(nil)

func newInvoker(logger log.Logger) *Invoker {
	return &Invoker{logger: logger}
}

func (i *Invoker) SetHandler(handler InvocationHandler) {
	i.Lock()
	defer i.Unlock()
	i.handler = handler
}

func (i *Invoker) Invoke(ctx context.Context, target string, payload engine.InvocationPayload) error {
	i.Lock()
	i.invocations = append(i.invocations, Invocation{Target: target, Payload: payload})
	handler := i.handler
	i.Unlock()

	i.logger.Debug("memory invocation", tag.Target(target), tag.ExportArn(payload.ExportArn))
	if handler == nil {
		return nil
	}
	return handler(ctx, target, payload)
}

func (i *Invoker) Invocations() []Invocation {
	i.Lock()
	defer i.Unlock()
	return append([]Invocation(nil), i.invocations...)
}
