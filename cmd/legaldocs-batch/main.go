package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/legaldocs/internal/analysis"
	"github.com/joseph-ayodele/legaldocs/internal/common"
	"github.com/joseph-ayodele/legaldocs/internal/export"
	"github.com/joseph-ayodele/legaldocs/internal/extract"
	"github.com/joseph-ayodele/legaldocs/internal/ingest"
	"github.com/joseph-ayodele/legaldocs/internal/ocr"
	"github.com/joseph-ayodele/legaldocs/internal/pipeline"
	repo "github.com/joseph-ayodele/legaldocs/internal/repository"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		inmem      = flag.Bool("inmem", false, "use an in-memory SQLite database")
		dir        = flag.String("dir", "", "directory to analyze documents from (required)")
		out        = flag.String("out", "", "output XLSX file path (optional, defaults to parent directory)")
		fromStr    = flag.String("from", "", "export from date YYYY-MM-DD")
		toStr      = flag.String("to", "", "export to date YYYY-MM-DD")
		workers    = flag.Int("workers", 4, "files analyzed concurrently")
		force      = flag.Bool("force", false, "analyze files again even if their content was seen before")
		configPath = flag.String("config", "", "YAML config file (defaults to $LEGALDOCS_CONFIG)")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(filepath.Clean(*dir)), "analyses.xlsx")
	}

	var filter repo.ListFilter
	if *fromStr != "" {
		parsed, err := time.Parse("2006-01-02", *fromStr)
		if err != nil {
			printError("Error: invalid --from date format, use YYYY-MM-DD: %v\n", err)
			os.Exit(1)
		}
		filter.From = &parsed
	}
	if *toStr != "" {
		parsed, err := time.Parse("2006-01-02", *toStr)
		if err != nil {
			printError("Error: invalid --to date format, use YYYY-MM-DD: %v\n", err)
			os.Exit(1)
		}
		filter.To = &parsed
	}

	cfg, err := common.LoadConfig(*configPath)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	if *inmem {
		cfg.Database.DSN = repo.InMemoryDSN
	}

	logger := cfg.Log.NewLogger(os.Stdout, true)
	slog.SetDefault(logger)

	ctx := context.Background()

	db, err := repo.Open(ctx, repo.ConfigFrom(cfg.Database), logger)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
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

	ingestor := ingest.NewFSIngestor(cfg.Ingest.MaxFileSize, logger)

	logger.Info("starting ingestion", "dir", *dir)
	results, stats, err := ingestor.IngestDirectory(ctx, *dir, cfg.Ingest.SkipHidden)
	if err != nil {
		logger.Error("failed to ingest directory", "error", err)
		os.Exit(1)
	}

	var reqs []pipeline.Request
	for _, r := range results {
		if r.Err != "" {
			logger.Warn("skipping file", "path", r.SourcePath, "error", r.Err)
			continue
		}
		reqs = append(reqs, pipeline.Request{File: r.File, Force: *force})
	}
	logger.Info("ingestion complete",
		"files_ingested", len(reqs),
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"deduplicated", stats.Deduplicated)

	processed, failures, reused := 0, 0, 0
	for _, item := range processor.ProcessBatch(ctx, reqs, *workers) {
		switch {
		case item.Err != nil:
			logger.Error("failed to process file", "path", item.Request.File.SourcePath, "error", item.Err)
			failures++
		case item.Outcome.Deduplicated:
			reused++
		default:
			processed++
		}
	}

	logger.Info("exporting to XLSX", "output", *out)
	xlsxBytes, err := export.NewService(analysesRepo, logger).ExportAnalysesXLSX(ctx, filter)
	if err != nil {
		logger.Error("failed to export analyses", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, xlsxBytes, 0o644); err != nil {
		logger.Error("failed to write output file", "error", err)
		os.Exit(1)
	}

	logger.Info("batch processing complete",
		"files_ingested", len(reqs),
		"files_processed", processed,
		"files_reused", reused,
		"failures", failures,
		"output_file", *out)

	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Files ingested: %d\n", len(reqs))
	fmt.Printf("- Files analyzed: %d\n", processed)
	fmt.Printf("- Already analyzed: %d\n", reused)
	fmt.Printf("- Failures: %d\n", failures)
	fmt.Printf("- Output: %s\n", *out)
}
