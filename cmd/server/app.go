package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taskwell/taskwell-api/internal/config"
	"github.com/taskwell/taskwell-api/internal/extraction"
	"github.com/taskwell/taskwell-api/internal/llm"
	"github.com/taskwell/taskwell-api/internal/platform/gemini"
	"github.com/taskwell/taskwell-api/internal/platform/postgres"
	"github.com/taskwell/taskwell-api/internal/service"
	"github.com/taskwell/taskwell-api/internal/task"
)

// application bundles the server's long-lived dependencies.
type application struct {
	config      *config.Config
	logger      *slog.Logger
	db          *sql.DB
	runner      *task.TaskRunner
	taskService service.TaskService
}

// newApplication wires the full dependency graph: database and migrations,
// the Gemini gateway, the extraction pipeline, the background runner, and
// the task service the HTTP handlers talk to.
func newApplication(cfg *config.Config, logger *slog.Logger) (*application, error) {
	db, err := setupDatabase(cfg, logger)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(db, logger); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	gateway, err := gemini.New(ctx, logger, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM gateway: %w", err)
	}

	extractor, err := extraction.NewExtractor(gateway, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize extractor: %w", err)
	}

	runner := task.NewTaskRunner(task.TaskRunnerConfig{
		WorkerCount: cfg.Task.WorkerCount,
		QueueSize:   cfg.Task.QueueSize,
	}, logger)

	taskStore := postgres.NewPostgresTaskStore(db, logger)
	workbenchStore := postgres.NewPostgresWorkbenchStore(db, logger)
	todoStore := postgres.NewPostgresTodoStore(db, logger)

	taskService, err := service.NewTaskService(db, taskStore, workbenchStore, todoStore, runner, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize task service: %w", err)
	}

	retryPolicy := llm.RetryPolicy{
		MaxRetries: cfg.LLM.MaxRetries,
		BaseDelay:  time.Duration(cfg.LLM.RetryDelaySeconds) * time.Second,
	}
	taskService.SetTaskFactory(
		task.NewEnrichmentTaskFactory(taskService, gateway, extractor, retryPolicy, logger),
	)

	return &application{
		config:      cfg,
		logger:      logger,
		db:          db,
		runner:      runner,
		taskService: taskService,
	}, nil
}

// run starts the background runner and the HTTP server, then blocks until a
// shutdown signal arrives and everything has drained.
func (app *application) run() error {
	if err := app.runner.Start(); err != nil {
		return fmt.Errorf("failed to start task runner: %w", err)
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", app.config.Server.Port),
		Handler: app.setupRouter(),
	}

	serverErr := make(chan error, 1)
	go func() {
		app.logger.Info("Starting server", "port", app.config.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdownCh:
		app.logger.Info("Shutting down server...", "signal", sig.String())
	case err := <-serverErr:
		app.logger.Error("Server failed", "error", err)
		app.cleanup()
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("Server shutdown failed", "error", err)
		app.cleanup()
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	app.cleanup()
	app.logger.Info("Server shutdown completed")
	return nil
}

// cleanup stops the background runner and closes the database connection.
func (app *application) cleanup() {
	app.runner.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("Failed to close database connection", "error", err)
	}
}
