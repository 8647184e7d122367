package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"github.com/joseph-ayodele/legaldocs/internal/analysis"
	"github.com/joseph-ayodele/legaldocs/internal/common"
	"github.com/joseph-ayodele/legaldocs/internal/extract"
	"github.com/joseph-ayodele/legaldocs/internal/ingest"
	"github.com/joseph-ayodele/legaldocs/internal/ocr"
	"github.com/joseph-ayodele/legaldocs/internal/progress"
	"github.com/joseph-ayodele/legaldocs/internal/report"
)

// runextract extracts and analyzes one file and prints the report; nothing is stored.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "runextract <path>")
		os.Exit(2)
	}

	cfg, err := common.LoadConfig("")
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	file, err := ingest.NewFSIngestor(cfg.Ingest.MaxFileSize, logger).IngestPath(ctx, os.Args[1])
	if err != nil {
		logger.Error("read file", "path", os.Args[1], "error", err)
		os.Exit(1)
	}

	engine, closeEngine, err := ocr.NewEngine(cfg.OCR, logger)
	if err != nil {
		logger.Error("open ocr cache", "path", cfg.OCR.CachePath, "error", err)
		os.Exit(1)
	}
	defer closeEngine()
	dispatcher := extract.NewDispatcher(engine, cfg.OCR.TesseractLang, logger)
	sink := progress.Func(func(id string, pct int) {
		logger.Info("ocr progress", "document_id", id, "percent", pct)
	})

	start := time.Now()
	res := dispatcher.Extract(ctx, file, sink)
	dur := time.Since(start)

	if res.OK() {
		logger.Info("text extraction OK",
			"method", res.Method,
			"pages", res.Pages,
			"bytes", len(res.Text),
			"confidence", res.Confidence,
			"duration_ms", dur.Milliseconds(),
		)
	} else {
		logger.Warn("text extraction failed",
			"method", res.Method,
			"kind", string(res.Failure.Kind),
			"message", res.Failure.Message,
			"duration_ms", dur.Milliseconds(),
		)
	}

	rep := analysis.New(analysis.Options{AnalyzeFailureText: cfg.Analysis.AnalyzeFailureText}, logger).Analyze(res, file.Filename)
	raw, err := report.Marshal(rep)
	if err != nil {
		logger.Error("report invalid", "error", err)
		os.Exit(1)
	}
	var pretty bytes.Buffer
	_ = json.Indent(&pretty, raw, "", "  ")
	pretty.WriteByte('\n')
	if _, err := pretty.WriteTo(os.Stdout); err != nil {
		logger.Error("write report", "error", err)
		os.Exit(1)
	}
}
