package main

import (
	"context"
	"flag"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/joseph-ayodele/legaldocs/constants"
	"github.com/joseph-ayodele/legaldocs/internal/analysis"
	"github.com/joseph-ayodele/legaldocs/internal/async"
	"github.com/joseph-ayodele/legaldocs/internal/common"
	"github.com/joseph-ayodele/legaldocs/internal/export"
	"github.com/joseph-ayodele/legaldocs/internal/extract"
	"github.com/joseph-ayodele/legaldocs/internal/ingest"
	"github.com/joseph-ayodele/legaldocs/internal/ocr"
	"github.com/joseph-ayodele/legaldocs/internal/pipeline"
	"github.com/joseph-ayodele/legaldocs/internal/progress"
	repo "github.com/joseph-ayodele/legaldocs/internal/repository"
	svc "github.com/joseph-ayodele/legaldocs/internal/server"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (defaults to $LEGALDOCS_CONFIG)")
	flag.Parse()

	cfg, err := common.LoadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(2)
	}
	logger := cfg.Log.NewLogger(os.Stdout, true)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(2)
	}
	addr := cfg.Server.GRPCAddr
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repo.Open(ctx, repo.ConfigFrom(cfg.Database), logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.HealthCheck(ctx, 5*time.Second); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(ctx); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	analysesRepo := repo.NewAnalysisRepository(db, logger)

	engine, closeEngine, err := ocr.NewEngine(cfg.OCR, logger)
	if err != nil {
		logger.Error("failed to open ocr cache", "path", cfg.OCR.CachePath, "error", err)
		os.Exit(1)
	}
	defer closeEngine()
	dispatcher := extract.NewDispatcher(engine, cfg.OCR.TesseractLang, logger)
	analyzer := analysis.New(analysis.Options{AnalyzeFailureText: cfg.Analysis.AnalyzeFailureText}, logger)
	processor := pipeline.NewProcessor(logger, dispatcher, analyzer, analysesRepo)

	queue := async.NewProcessorQueue(processor, logger,
		async.WithWorkers(cfg.Queue.Workers),
		async.WithQueueSize(cfg.Queue.Size),
		async.WithProcessTimeout(cfg.Queue.Timeout),
	)
	ingestor := ingest.NewFSIngestor(cfg.Ingest.MaxFileSize, logger)
	tracker := progress.NewTracker()

	if cfg.Ingest.WatchDir != "" {
		if err := watch(ctx, cfg.Ingest, ingestor, queue, tracker, logger); err != nil {
			logger.Error("failed to start watcher", "dir", cfg.Ingest.WatchDir, "error", err)
			os.Exit(1)
		}
	}

	maxMsg := int(constants.MaxUploadSize) * 2
	if cfg.Ingest.MaxFileSize > 0 {
		maxMsg = int(cfg.Ingest.MaxFileSize) * 2
	}
	grpcServer := grpc.NewServer(grpc.MaxRecvMsgSize(maxMsg))

	intake := svc.NewIntakeServer(svc.Deps{
		Processor:   processor,
		Repo:        analysesRepo,
		Exporter:    export.NewService(analysesRepo, logger),
		Ingestor:    ingestor,
		Queue:       queue,
		Tracker:     tracker,
		MaxFileSize: cfg.Ingest.MaxFileSize,
	}, logger)
	svc.RegisterIntakeServiceServer(grpcServer, intake)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(svc.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", addr, "error", err)
		os.Exit(1)
	}
	logger.Info("legaldocs listening", "addr", addr, "workers", cfg.Queue.Workers)
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			slog.Error("gRPC serve error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	healthServer.Shutdown()
	grpcServer.GracefulStop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Queue.Timeout)
	defer cancel()
	queue.Shutdown(shutdownCtx)
}

// watch feeds files appearing under the watch directory into the queue.
func watch(ctx context.Context, cfg common.IngestConfig, ing ingest.Ingestor, q async.Queue, tracker *progress.Tracker, logger *slog.Logger) error {
	events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       []string{cfg.WatchDir},
		InitialScan: true,
		Debounce:    cfg.Debounce,
		SkipHidden:  cfg.SkipHidden,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	go func() {
		for {
			select {
			case path, ok := <-events:
				if !ok {
					return
				}
				file, err := ing.IngestPath(ctx, path)
				if err != nil {
					logger.Warn("watch ingest failed", "path", path, "error", err)
					continue
				}
				job := async.Job{Request: pipeline.Request{File: file}, TraceID: file.ID.String(), Sink: tracker}
				if err := q.Enqueue(ctx, job); err != nil {
					logger.Warn("watch enqueue failed", "path", path, "error", err)
				}
			case err, ok := <-errs:
				if !ok {
					errs = nil
					continue
				}
				logger.Warn("watcher reported error", "error", err)
			}
		}
	}()
	return nil
}
