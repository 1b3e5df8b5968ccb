// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xcherryio/auditflow/common/log"
	"github.com/xcherryio/auditflow/common/log/tag"
	"github.com/xcherryio/auditflow/common/metrics"
	"github.com/xcherryio/auditflow/config"
)

const PathStartSnapshot = "/api/v1/auditflow/snapshot/start"
const PathExportCompleted = "/api/v1/auditflow/snapshot/export-completed"
const PathRunAudit = "/api/v1/auditflow/audit/run"
const PathMetrics = "/metrics"

type defaultSever struct {
	rootCtx    context.Context
	cfg        config.Config
	logger     log.Logger
	engine     *gin.Engine
	httpServer *http.Server
}

// NewGinEngine routes the entry points to the service
func NewGinEngine(svc Service, scope *metrics.Scope, logger log.Logger) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())

	handler := newGinHandler(svc, logger)

	engine.POST(PathStartSnapshot, handler.StartSnapshot)
	engine.POST(PathExportCompleted, handler.ExportCompleted)
	engine.POST(PathRunAudit, handler.RunAudit)
	engine.GET(PathMetrics, gin.WrapH(scope.Handler()))
	return engine
}

func NewDefaultAPIServerWithGin(
	rootCtx context.Context, cfg config.Config, svc Service, scope *metrics.Scope, logger log.Logger,
) Server {
	engine := NewGinEngine(svc, scope, logger)

	svrCfg := cfg.ApiService.HttpServer
	httpServer := &http.Server{
		Addr:              svrCfg.Address,
		ReadTimeout:       svrCfg.ReadTimeout,
		WriteTimeout:      svrCfg.WriteTimeout,
		ReadHeaderTimeout: svrCfg.ReadHeaderTimeout,
		IdleTimeout:       svrCfg.IdleTimeout,
		MaxHeaderBytes:    svrCfg.MaxHeaderBytes,
		TLSConfig:         svrCfg.TLSConfig,
		Handler:           engine,
		BaseContext: func(listener net.Listener) context.Context {
			// for graceful shutdown
			return rootCtx
		},
	}

	return &defaultSever{
		rootCtx:    rootCtx,
		cfg:        cfg,
		logger:     logger,
		engine:     engine,
		httpServer: httpServer,
	}
}

func (s defaultSever) Start() error {
	go func() {
		err := s.httpServer.ListenAndServe()
		s.logger.Info("Http Server for API service is closed", tag.Error(err))
	}()

	return nil
}

func (s defaultSever) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
