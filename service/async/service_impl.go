// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package async

import (
	"context"

	"github.com/google/uuid"
	"github.com/xcherryio/auditflow/common/log"
	"github.com/xcherryio/auditflow/common/log/tag"
	"github.com/xcherryio/auditflow/common/metrics"
	"github.com/xcherryio/auditflow/config"
	"github.com/xcherryio/auditflow/engine"
)

const (
	ChannelHttp   = "http"
	ChannelPulsar = "pulsar"
	ChannelLocal  = "local"
)

type asyncService struct {
	rootCtx context.Context

	auditTaskProcessor engine.AuditTaskProcessor
	pulsarConsumer     *pulsarConsumer

	cfg    config.Config
	logger log.Logger
}

func NewAsyncServiceImpl(
	rootCtx context.Context, cfg config.Config, orchestrator *engine.AuditOrchestrator,
	scope *metrics.Scope, logger log.Logger,
) Service {
	asyncCfg := cfg.AsyncService
	processor := engine.NewAuditTaskConcurrentProcessor(
		rootCtx, asyncCfg.ProcessorConcurrency, asyncCfg.ProcessorBufferSize,
		orchestrator, cfg.Workflow, logger, scope)

	svc := &asyncService{
		rootCtx:            rootCtx,
		auditTaskProcessor: processor,
		cfg:                cfg,
		logger:             logger,
	}
	if asyncCfg.ConsumePulsar {
		svc.pulsarConsumer = newPulsarConsumer(cfg.Dispatch.Pulsar, svc, logger)
	}
	return svc
}

func (a *asyncService) Start() error {
	err := a.auditTaskProcessor.Start()
	if err != nil {
		a.logger.Error("fail to start audit task processor", tag.Error(err))
		return err
	}
	if a.pulsarConsumer != nil {
		err = a.pulsarConsumer.Start()
		if err != nil {
			a.logger.Error("fail to start pulsar consumer", tag.Error(err))
			return err
		}
	}
	a.logger.Info("async service started", tag.Value(a.cfg.AsyncService.ProcessorConcurrency))
	return nil
}

func (a *asyncService) SubmitInvocation(
	payload engine.InvocationPayload, channel string, onComplete func(engine.AuditOutcome),
) (string, bool) {
	taskId := uuid.NewString()
	accepted := a.auditTaskProcessor.TrySubmit(engine.AuditTask{
		TaskId:     taskId,
		Channel:    channel,
		Payload:    payload,
		OnComplete: onComplete,
	})
	if accepted {
		a.logger.Info("audit invocation accepted",
			tag.TaskId(taskId), tag.Channel(channel), tag.ExportArn(payload.ExportArn))
	}
	return taskId, accepted
}

func (a *asyncService) Stop(ctx context.Context) error {
	if a.pulsarConsumer != nil {
		a.pulsarConsumer.StopReceiving()
	}
	// the running audits still ack their messages
	err := a.auditTaskProcessor.Stop(ctx)
	if a.pulsarConsumer != nil {
		a.pulsarConsumer.Close()
	}
	return err
}
