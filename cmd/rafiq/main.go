// Command rafiq runs the bilingual personal-knowledge agent: REST surface,
// background job workers, and the proactive scheduler, wired against the
// Graph/Vector/Memory stores and the LLM Gateway. Ported from the
// teacher's cmd/tarsy/main.go bootstrap shape (flag parsing, .env load,
// client construction, graceful shutdown) and retargeted at this
// system's own service set.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/rafiq-ai/rafiq/pkg/api"
	"github.com/rafiq-ai/rafiq/pkg/backup"
	"github.com/rafiq-ai/rafiq/pkg/config"
	"github.com/rafiq-ai/rafiq/pkg/database"
	"github.com/rafiq-ai/rafiq/pkg/fileprocessor"
	"github.com/rafiq-ai/rafiq/pkg/graph"
	"github.com/rafiq-ai/rafiq/pkg/graphstore"
	"github.com/rafiq-ai/rafiq/pkg/ingestion"
	"github.com/rafiq-ai/rafiq/pkg/llmgateway"
	"github.com/rafiq-ai/rafiq/pkg/masking"
	"github.com/rafiq-ai/rafiq/pkg/memorystore"
	"github.com/rafiq-ai/rafiq/pkg/ner"
	"github.com/rafiq-ai/rafiq/pkg/orchestrator"
	"github.com/rafiq-ai/rafiq/pkg/proactive"
	"github.com/rafiq-ai/rafiq/pkg/queue"
	"github.com/rafiq-ai/rafiq/pkg/router"
	"github.com/rafiq-ai/rafiq/pkg/runbook"
	"github.com/rafiq-ai/rafiq/pkg/scheduler"
	"github.com/rafiq-ai/rafiq/pkg/vectorstore"
	"github.com/rafiq-ai/rafiq/pkg/version"
)

// Exit codes per spec.md §6: 0 normal, 1 startup failure, 2 unrecoverable
// storage error.
const (
	exitOK             = 0
	exitStartupFailure = 1
	exitStorageError   = 2
)

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func main() {
	os.Exit(run())
}

func run() int {
	configDir := flag.String("config-dir", getEnv("CONFIG_DIR", "./deploy/config"), "Path to configuration directory")
	flag.Parse()

	logSvc := masking.New()
	slog.SetDefault(slog.New(masking.NewHandler(slog.NewJSONHandler(os.Stdout, nil), logSvc)))

	slog.Info("starting rafiq", "version", version.Full(), "config_dir", *configDir)

	cfg, err := config.Load(*configDir)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		return exitStartupFailure
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := database.NewClient(database.Config{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: int64(cfg.Database.ConnMaxLifetime.Seconds()),
	})
	if err != nil {
		slog.Error("failed to connect bookkeeping database", "error", err)
		return exitStartupFailure
	}
	defer func() { _ = dbClient.Close() }()

	if err := database.RunMigrations(ctx, dbClient); err != nil {
		slog.Error("failed to run bookkeeping migrations", "error", err)
		return exitStorageError
	}
	slog.Info("bookkeeping database ready")

	graphStore, err := graphstore.New(cfg.Graph)
	if err != nil {
		slog.Error("failed to connect graph store", "error", err)
		return exitStartupFailure
	}
	defer func() { _ = graphStore.Close(ctx) }()

	vecStore, err := vectorstore.New(cfg.Vector)
	if err != nil {
		slog.Error("failed to connect vector store", "error", err)
		return exitStartupFailure
	}
	defer func() { _ = vecStore.Close() }()
	if err := vecStore.EnsureCollection(ctx); err != nil {
		slog.Error("failed to ensure vector collection", "error", err)
		return exitStorageError
	}

	memStore := memorystore.New(cfg.Memory)
	defer func() { _ = memStore.Close() }()

	llm := llmgateway.New(cfg.LLM)
	nerRecognizer := ner.New(llm)
	thresholds := graph.Thresholds{
		PersonResolution:  cfg.Thresholds.EntityResolutionPersonThreshold,
		DefaultResolution: cfg.Thresholds.EntityResolutionDefaultThreshold,
		TagDedup:          cfg.Thresholds.SmartTagDedupThreshold,
		InventorySimilar:  cfg.Thresholds.InventorySimilarityThreshold,
		MaxHops:           cfg.Thresholds.GraphMaxHops,
	}
	graphSvc := graph.New(graphStore, vecStore, llm, thresholds)

	chunker, err := ingestion.NewChunker()
	if err != nil {
		slog.Error("failed to initialise chunker", "error", err)
		return exitStartupFailure
	}
	pipeline := ingestion.New(llm, vecStore, graphSvc, nerRecognizer, chunker)

	runbookSvc := runbook.NewService(&cfg.Runbook, cfg.Runbook.GitHubToken, "")
	fileProc := fileprocessor.New(llm, graphSvc, runbookSvc)
	smartRouter := router.New(llm)

	catalog := orchestrator.BuildCatalog(graphSvc, pipeline)
	orch := orchestrator.New(llm, catalog, memStore, graphSvc, nerRecognizer, *cfg)

	if err := os.MkdirAll(filepath.Join(cfg.DataDir, "files"), 0o755); err != nil {
		slog.Error("failed to create data directory", "error", err)
		return exitStorageError
	}
	if err := os.MkdirAll(filepath.Join(cfg.DataDir, "backups"), 0o755); err != nil {
		slog.Error("failed to create backup directory", "error", err)
		return exitStorageError
	}
	backupSvc := backup.New(graphStore, vecStore, memStore, cfg.DataDir, cfg.Retention.BackupRetentionDays)
	proactiveSvc := proactive.New(graphSvc)

	podID := getEnv("POD_ID", uuid.New().String())
	ingestExecutor := queue.NewIngestExecutor(pipeline)
	workerPool := queue.NewWorkerPool(podID, dbClient, &cfg.Queue, ingestExecutor)
	if err := queue.CleanupStartupOrphans(ctx, dbClient, podID); err != nil {
		slog.Warn("startup orphan cleanup failed", "error", err)
	}
	if err := workerPool.Start(ctx); err != nil {
		slog.Error("failed to start worker pool", "error", err)
		return exitStartupFailure
	}
	defer workerPool.Stop()

	notifier := &logNotifierWithFallback{}
	sched := scheduler.New(*cfg, proactiveSvc, backupSvc, notifier)
	if err := sched.Start(ctx); err != nil {
		slog.Error("failed to start scheduler", "error", err)
		return exitStartupFailure
	}
	defer sched.Stop()

	server := api.NewServer(cfg, dbClient, graphSvc, pipeline, fileProc, orch, backupSvc, proactiveSvc, smartRouter, workerPool, graphStore)
	if err := server.ValidateWiring(); err != nil {
		slog.Error("server wiring incomplete", "error", err)
		return exitStartupFailure
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", addr)
		if err := server.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case err := <-errCh:
		slog.Error("http server failed", "error", err)
		return exitStartupFailure
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}

	return exitOK
}

// logNotifierWithFallback is the Scheduler's live Notifier until a
// dashboard push channel is wired; it always succeeds so scheduled jobs
// never fail solely because no one is listening.
type logNotifierWithFallback struct{ scheduler.LogNotifier }
