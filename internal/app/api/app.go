// Copyright 2026 fanjia1024
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package api assembles the HTTP application: executor, services, handler,
// router and the hertz server.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	hertzslog "github.com/hertz-contrib/logger/slog"
	"github.com/hertz-contrib/obs-opentelemetry/provider"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"

	"engage-platform/internal/api/http"
	"engage-platform/internal/api/http/middleware"
	"engage-platform/internal/app"
	"engage-platform/internal/tool/actions"
	"engage-platform/internal/tool/executor"
)

// otelProviderShutdown closes the OpenTelemetry provider on shutdown.
type otelProviderShutdown interface {
	Shutdown(ctx context.Context) error
}

// App is the API application.
type App struct {
	bootstrap    *app.Bootstrap
	router       *http.Router
	hertz        *server.Hertz
	otelProvider otelProviderShutdown
	janitorStop  chan struct{}
}

// NewApp assembles the application from bootstrapped infrastructure.
func NewApp(bootstrap *app.Bootstrap) (*App, error) {
	cfg := bootstrap.Config
	logger := bootstrap.Logger

	registry, err := actions.NewBuiltinRegistry(bootstrap.Tickets, bootstrap.Conversations)
	if err != nil {
		return nil, fmt.Errorf("register internal actions: %w", err)
	}
	logger.Info("internal actions registered", "actions", registry.Names())

	exec := executor.New(
		bootstrap.ToolStore,
		bootstrap.AgentStore,
		bootstrap.ExecStore,
		executor.NewInternalExecutor(registry, logger),
		executor.NewExternalExecutor(bootstrap.Secrets, cfg.Executor, logger),
		cfg.Executor,
		logger,
	)

	toolService := app.NewToolService(
		bootstrap.ToolStore, bootstrap.ExecStore, cfg.Executor.RetentionDays, logger)

	handler := http.NewHandler(
		toolService, exec, bootstrap.ExecStore, bootstrap.AgentStore, logger)
	router := http.NewRouter(handler, middleware.NewMiddleware())

	return &App{
		bootstrap: bootstrap,
		router:    router,
	}, nil
}

// Run starts the hertz server on addr and blocks until it exits.
func (a *App) Run(addr string) error {
	cfg := a.bootstrap.Config
	a.bootstrap.Logger.Info("API server starting", "addr", addr)

	// Route hertz's own logging through slog, aligned with the app logger.
	output := os.Stdout
	if cfg != nil && cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		output = f
	}
	levelVar := &slog.LevelVar{}
	if cfg != nil {
		switch cfg.Log.Level {
		case "debug":
			levelVar.Set(slog.LevelDebug)
		case "warn":
			levelVar.Set(slog.LevelWarn)
		case "error":
			levelVar.Set(slog.LevelError)
		default:
			levelVar.Set(slog.LevelInfo)
		}
	}
	hlog.SetLogger(hertzslog.NewLogger(
		hertzslog.WithOutput(output),
		hertzslog.WithLevel(levelVar),
	))

	if cfg != nil && cfg.Monitoring.Tracing.Enable {
		serviceName := cfg.Monitoring.Tracing.ServiceName
		if serviceName == "" {
			serviceName = "engage-tools-api"
		}
		exportEndpoint := cfg.Monitoring.Tracing.ExportEndpoint
		if exportEndpoint == "" {
			exportEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
		}
		if exportEndpoint != "" {
			opts := []provider.Option{
				provider.WithServiceName(serviceName),
				provider.WithExportEndpoint(exportEndpoint),
			}
			if cfg.Monitoring.Tracing.Insecure {
				opts = append(opts, provider.WithInsecure())
			}
			a.otelProvider = provider.NewOpenTelemetryProvider(opts...)
			tracerOpt, tracerCfg := hertztracing.NewServerTracer()
			a.hertz = a.router.Build(addr, tracerOpt)
			a.hertz.Use(hertztracing.ServerMiddleware(tracerCfg))
			a.bootstrap.Logger.Info("tracing enabled",
				"service_name", serviceName, "endpoint", exportEndpoint)
		} else {
			a.hertz = a.router.Build(addr)
		}
	} else {
		a.hertz = a.router.Build(addr)
	}

	a.startJanitor()
	return a.hertz.Run()
}

// startJanitor purges execution records past the retention window once a
// day. Retention is an operational policy, not part of the execution core.
func (a *App) startJanitor() {
	retention := 30
	if a.bootstrap.Config != nil && a.bootstrap.Config.Executor.RetentionDays > 0 {
		retention = a.bootstrap.Config.Executor.RetentionDays
	}
	a.janitorStop = make(chan struct{})
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				cutoff := time.Now().AddDate(0, 0, -retention)
				removed, err := a.bootstrap.ExecStore.DeleteOlderThan(context.Background(), cutoff)
				if err != nil {
					a.bootstrap.Logger.Error("execution record cleanup failed", "error", err)
					continue
				}
				if removed > 0 {
					a.bootstrap.Logger.Info("execution records purged",
						"removed", removed, "cutoff", cutoff.Format(time.RFC3339))
				}
			case <-a.janitorStop:
				return
			}
		}
	}()
}

// Shutdown stops the server and background work gracefully.
func (a *App) Shutdown(ctx context.Context) error {
	if a.janitorStop != nil {
		close(a.janitorStop)
	}
	if a.otelProvider != nil {
		_ = a.otelProvider.Shutdown(ctx)
	}
	if a.hertz != nil {
		if err := a.hertz.Shutdown(ctx); err != nil {
			return err
		}
	}
	return a.bootstrap.Close()
}
