// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"fmt"

	"github.com/xcherryio/auditflow/common/log"
	"github.com/xcherryio/auditflow/config"
	"github.com/xcherryio/auditflow/engine"
)

// Invoker is an engine.Invoker that owns connections
type Invoker interface {
	engine.Invoker
	Close() error
}

// NewInvoker returns the invoker of the configured dispatch mode.
// In backend mode the invoker of the backend is used as is.
func NewInvoker(cfg config.DispatchConfig, backendInvoker engine.Invoker, logger log.Logger) (Invoker, error) {
	switch cfg.Mode {
	case config.DispatchModeBackend, "":
		if backendInvoker == nil {
			return nil, fmt.Errorf("the backend has no invoker, configure dispatch.mode http or pulsar")
		}
		return nopCloser{backendInvoker}, nil
	case config.DispatchModeHttp:
		return NewHttpInvoker(cfg.Http, logger), nil
	case config.DispatchModePulsar:
		return NewPulsarInvoker(cfg.Pulsar, logger)
	default:
		return nil, fmt.Errorf("unsupported dispatch mode %v", cfg.Mode)
	}
}

type nopCloser struct {
	engine.Invoker
}

func (nopCloser) Close() error {
	return nil
}
