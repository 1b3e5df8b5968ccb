// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package bootstrap

import (
	"context"
	"fmt"
	rawLog "log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"github.com/xcherryio/auditflow/common/clock"
	"github.com/xcherryio/auditflow/common/log"
	"github.com/xcherryio/auditflow/common/log/tag"
	"github.com/xcherryio/auditflow/common/metrics"
	"github.com/xcherryio/auditflow/config"
	"github.com/xcherryio/auditflow/dispatch"
	"github.com/xcherryio/auditflow/engine"
	"github.com/xcherryio/auditflow/extensions"
	"github.com/xcherryio/auditflow/extensions/memory"
	"github.com/xcherryio/auditflow/service/api"
	"github.com/xcherryio/auditflow/service/async"
	"github.com/xcherryio/auditflow/service/scheduler"
	"go.uber.org/multierr"
)

const ApiServiceName = "api"
const AsyncServiceName = "async"
const SchedulerServiceName = "scheduler"

const FlagConfig = "config"
const FlagService = "service"

func StartAuditFlowServerCli(c *cli.Context) {
	// register interrupt signal for graceful shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	configPath := c.String(FlagConfig)
	services := getServices(c)

	cfg, err := config.NewConfig(configPath)
	if err != nil {
		rawLog.Fatalf("Unable to load config for path %v because of error %v", configPath, err)
	}
	cfg.ApplyEnv(os.LookupEnv)

	shutdownFunc, err := StartAuditFlowServer(rootCtx, cfg, services)
	if err != nil {
		rawLog.Fatalf("Unable to start the server because of error %v", err)
	}
	// wait for os signals
	<-rootCtx.Done()

	ctx, cancF := context.WithTimeout(context.Background(), time.Second*10)
	defer cancF()
	err = shutdownFunc(ctx)
	if err != nil {
		fmt.Println("shutdown error:", err)
	}
}

type GracefulShutdown func(ctx context.Context) error

type stoppable interface {
	Stop(ctx context.Context) error
}

func StartAuditFlowServer(
	rootCtx context.Context, cfg *config.Config, services map[string]bool,
) (GracefulShutdown, error) {
	if len(services) == 0 {
		services = map[string]bool{ApiServiceName: true, AsyncServiceName: true, SchedulerServiceName: true}
	}

	zapLogger, err := cfg.Log.NewZapLogger()
	if err != nil {
		return nil, fmt.Errorf("unable to create a new zap logger: %w", err)
	}
	logger := log.NewLogger(zapLogger)
	err = cfg.ValidateAndSetDefaults()
	if err != nil {
		logger.Error("config is invalid", tag.Error(err))
		return nil, err
	}
	logger.Info("config is loaded", tag.Value(cfg.String()))

	backend, err := extensions.NewBackend(rootCtx, cfg, logger)
	if err != nil {
		logger.Error("error on backend setup", tag.Error(err))
		return nil, err
	}
	if _, ok := backend.Invoker.(*memory.Invoker); ok &&
		cfg.Dispatch.Mode == config.DispatchModeBackend && !services[AsyncServiceName] {
		// nothing would ever run the audits the snapshot stage reports as triggered
		err := fmt.Errorf("the %v backend with %v dispatch delivers audits to the %v service, which is not enabled",
			cfg.Backend, config.DispatchModeBackend, AsyncServiceName)
		logger.Error("invalid service selection", tag.Error(err))
		return nil, err
	}
	invoker, err := dispatch.NewInvoker(cfg.Dispatch, backend.Invoker, logger)
	if err != nil {
		logger.Error("error on dispatch setup", tag.Error(err))
		return nil, err
	}

	scope := metrics.NewScope()
	poller := engine.NewBackoffPoller(clock.NewRealTimeSource(), logger, scope)
	orchestrator := engine.NewAuditOrchestrator(
		backend.Catalog, backend.QueryEngine, poller, cfg.Poller, logger, scope)
	snapshot := engine.NewSnapshotStage(backend.Exporter, invoker, logger, scope)

	// stopped in reverse order
	var started []stoppable
	shutdown := func(ctx context.Context) error {
		var errs error
		for i := len(started) - 1; i >= 0; i-- {
			errs = multierr.Append(errs, started[i].Stop(ctx))
		}
		return multierr.Append(errs, invoker.Close())
	}
	fail := func(msg string, err error) (GracefulShutdown, error) {
		logger.Error(msg, tag.Error(err))
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return nil, multierr.Append(err, shutdown(ctx))
	}

	if services[AsyncServiceName] {
		asyncLogger := logger.WithTags(tag.Service(AsyncServiceName))
		asyncSvc := async.NewAsyncServiceImpl(rootCtx, *cfg, orchestrator, scope, asyncLogger)
		asyncServer := async.NewDefaultAsyncServerWithGin(rootCtx, *cfg, asyncSvc, asyncLogger)
		if err := asyncServer.Start(); err != nil {
			return fail("Failed to start async server", err)
		}
		started = append(started, asyncServer)

		if memInvoker, ok := backend.Invoker.(*memory.Invoker); ok && cfg.Dispatch.Mode == config.DispatchModeBackend {
			// the in-memory backend has no audit target of its own, hand invocations to this process
			memInvoker.SetHandler(func(_ context.Context, target string, payload engine.InvocationPayload) error {
				if _, accepted := asyncSvc.SubmitInvocation(payload, async.ChannelLocal, nil); !accepted {
					return fmt.Errorf("audit invocation for %v is rejected, too many audits in progress", target)
				}
				return nil
			})
		}
	}

	if services[ApiServiceName] {
		apiLogger := logger.WithTags(tag.Service(ApiServiceName))
		apiSvc := api.NewServiceImpl(rootCtx, cfg.Workflow, orchestrator, snapshot, apiLogger)
		apiServer := api.NewDefaultAPIServerWithGin(rootCtx, *cfg, apiSvc, scope, apiLogger)
		if err := apiServer.Start(); err != nil {
			return fail("Failed to start api server", err)
		}
		started = append(started, apiServer)
	}

	if services[SchedulerServiceName] && cfg.Scheduler.SnapshotCron != "" {
		request := api.NewExportRequest(cfg.Workflow, api.SnapshotStartRequest{})
		snapshotScheduler, err := scheduler.NewSnapshotScheduler(
			rootCtx, cfg.Scheduler, request, snapshot, logger)
		if err != nil {
			return fail("Failed to create snapshot scheduler", err)
		}
		if err := snapshotScheduler.Start(); err != nil {
			return fail("Failed to start snapshot scheduler", err)
		}
		started = append(started, snapshotScheduler)
	}

	return shutdown, nil
}

func getServices(c *cli.Context) map[string]bool {
	val := strings.TrimSpace(c.String(FlagService))
	tokens := strings.Split(val, ",")

	if len(tokens) == 0 {
		rawLog.Fatal("No services specified for starting")
	}

	services := map[string]bool{}
	for _, token := range tokens {
		t := strings.TrimSpace(token)
		if t != "" {
			services[t] = true
		}
	}

	return services
}
