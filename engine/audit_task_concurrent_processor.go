// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"sync"

	"github.com/xcherryio/auditflow/common/log"
	"github.com/xcherryio/auditflow/common/log/tag"
	"github.com/xcherryio/auditflow/common/metrics"
	"github.com/xcherryio/auditflow/config"
)

type (
	// AuditTask is one accepted audit invocation
	AuditTask struct {
		TaskId  string
		Channel string
		Payload InvocationPayload
		// OnComplete is called on the worker goroutine once the audit is terminal, it can be nil
		OnComplete func(outcome AuditOutcome)
	}

	AuditTaskProcessor interface {
		Start() error
		// TrySubmit queues the task without blocking. It returns false when the buffer is full.
		TrySubmit(task AuditTask) bool
		Stop(ctx context.Context) error
	}

	auditTaskConcurrentProcessor struct {
		rootCtx           context.Context
		concurrency       int
		taskToProcessChan chan AuditTask
		orchestrator      *AuditOrchestrator
		workflow          config.WorkflowConfiguration
		logger            log.Logger
		metrics           *metrics.Scope
		workers           sync.WaitGroup
		stopCh            chan struct{}
		stopOnce          sync.Once
	}
)

// NewAuditTaskConcurrentProcessor runs every accepted invocation as an independent audit.
// At most concurrency audits run at once, and at most bufferSize wait for a goroutine.
func NewAuditTaskConcurrentProcessor(
	rootCtx context.Context, concurrency, bufferSize int, orchestrator *AuditOrchestrator,
	workflow config.WorkflowConfiguration, logger log.Logger, scope *metrics.Scope,
) AuditTaskProcessor {
	return &auditTaskConcurrentProcessor{
		rootCtx:           rootCtx,
		concurrency:       concurrency,
		taskToProcessChan: make(chan AuditTask, bufferSize),
		orchestrator:      orchestrator,
		workflow:          workflow,
		logger:            logger,
		metrics:           scope,
		stopCh:            make(chan struct{}),
	}
}

func (w *auditTaskConcurrentProcessor) Start() error {
	for i := 0; i < w.concurrency; i++ {
		w.workers.Add(1)
		go func() {
			defer w.workers.Done()
			for {
				select {
				case <-w.rootCtx.Done():
					return
				case <-w.stopCh:
					return
				case task := <-w.taskToProcessChan:
					w.processAuditTask(task)
				}
			}
		}()
	}
	return nil
}

func (w *auditTaskConcurrentProcessor) TrySubmit(task AuditTask) bool {
	select {
	case w.taskToProcessChan <- task:
		w.metrics.RecordDispatch(task.Channel, "queued")
		return true
	default:
		w.metrics.RecordDispatch(task.Channel, "rejected")
		w.logger.Warn("audit task buffer is full, rejecting the task", tag.TaskId(task.TaskId), tag.Channel(task.Channel))
		return false
	}
}

func (w *auditTaskConcurrentProcessor) processAuditTask(task AuditTask) {
	w.logger.Debug("start executing audit task", tag.TaskId(task.TaskId), tag.Channel(task.Channel))

	outcome := w.orchestrator.RunOptOutAudit(w.rootCtx, w.workflow, AuditTrigger{
		RequestId: task.TaskId,
		ExportArn: task.Payload.ExportArn,
	})
	if task.OnComplete != nil {
		task.OnComplete(outcome)
	}
}

// Stop stops taking queued tasks and waits for the running audits to return.
// Running audits return soon after the root context is done.
func (w *auditTaskConcurrentProcessor) Stop(ctx context.Context) error {
	w.stopOnce.Do(func() { close(w.stopCh) })
	done := make(chan struct{})
	go func() {
		w.workers.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
