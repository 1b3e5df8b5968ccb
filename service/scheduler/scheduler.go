// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/xcherryio/auditflow/common/log"
	"github.com/xcherryio/auditflow/common/log/tag"
	"github.com/xcherryio/auditflow/config"
	"github.com/xcherryio/auditflow/engine"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// SnapshotScheduler starts the configured snapshot on a cron schedule
type SnapshotScheduler struct {
	rootCtx  context.Context
	cron     *cron.Cron
	spec     string
	request  engine.ExportRequest
	snapshot *engine.SnapshotStage
	logger   log.Logger
}

func NewSnapshotScheduler(
	rootCtx context.Context, cfg config.SchedulerConfig, request engine.ExportRequest,
	snapshot *engine.SnapshotStage, logger log.Logger,
) (*SnapshotScheduler, error) {
	if _, err := cronParser.Parse(cfg.SnapshotCron); err != nil {
		return nil, fmt.Errorf("invalid snapshot cron %q: %w", cfg.SnapshotCron, err)
	}
	s := &SnapshotScheduler{
		rootCtx:  rootCtx,
		spec:     cfg.SnapshotCron,
		request:  request,
		snapshot: snapshot,
		logger:   logger.WithTags(tag.Service("scheduler")),
	}
	s.cron = cron.New(
		cron.WithParser(cronParser),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	if _, err := s.cron.AddFunc(s.spec, func() { s.RunOnce(s.rootCtx) }); err != nil {
		return nil, err
	}
	return s, nil
}

// RunOnce starts one snapshot now
func (s *SnapshotScheduler) RunOnce(ctx context.Context) engine.SnapshotResult {
	result := s.snapshot.StartSnapshot(ctx, s.request)
	if result.Status == engine.SnapshotFailed {
		s.logger.Error("scheduled snapshot failed",
			tag.Table(s.request.TableName), tag.Message(result.Error))
	} else {
		s.logger.Info("scheduled snapshot started",
			tag.Table(s.request.TableName), tag.ExportArn(result.ExportArn))
	}
	return result
}

func (s *SnapshotScheduler) Start() error {
	s.cron.Start()
	s.logger.Info("snapshot scheduler started", tag.Value(s.spec))
	return nil
}

// Stop waits for a running snapshot start to return, or for ctx
func (s *SnapshotScheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
