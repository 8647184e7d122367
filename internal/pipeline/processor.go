// Package pipeline runs extraction, analysis and persistence for uploaded files.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/legaldocs/constants"
	"github.com/joseph-ayodele/legaldocs/internal/analysis"
	"github.com/joseph-ayodele/legaldocs/internal/common"
	"github.com/joseph-ayodele/legaldocs/internal/entity"
	"github.com/joseph-ayodele/legaldocs/internal/extract"
	"github.com/joseph-ayodele/legaldocs/internal/progress"
	"github.com/joseph-ayodele/legaldocs/internal/report"
	"github.com/joseph-ayodele/legaldocs/internal/repository"
)

// Request is one file to process.
type Request struct {
	File  entity.UploadedFile
	Force bool // analyze again even if the same upload is already stored
}

// Outcome is what Process produced for a file.
type Outcome struct {
	Record       *entity.AnalysisRecord
	Result       extract.Result
	Report       analysis.Report
	Deduplicated bool
}

// BatchItem pairs a batch entry with its outcome.
type BatchItem struct {
	Request Request
	Outcome Outcome
	Err     error
}

// Processor coordinates text extraction, then analysis, then storage.
type Processor struct {
	Logger    *slog.Logger
	Extractor extract.TextExtractor
	Analyzer  *analysis.Analyzer
	Repo      repository.AnalysisRepository // nil -> nothing is stored
}

func NewProcessor(logger *slog.Logger, ex extract.TextExtractor, an *analysis.Analyzer, repo repository.AnalysisRepository) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if an == nil {
		an = analysis.New(analysis.DefaultOptions(), logger)
	}
	return &Processor{Logger: logger, Extractor: ex, Analyzer: an, Repo: repo}
}

// Process runs one file through the pipeline. Extraction and analysis never
// fail; errors come from deduplication lookups, report validation or storage.
func (p *Processor) Process(ctx context.Context, req Request, sink progress.Sink) (Outcome, error) {
	start := time.Now()
	file := req.File
	if file.ID == uuid.Nil {
		file.ID = uuid.New()
	}
	if file.ContentHash == "" {
		sum := sha256.Sum256(file.Content)
		file.ContentHash = hex.EncodeToString(sum[:])
	}
	if file.Size == 0 {
		file.Size = int64(len(file.Content))
	}
	ctx = common.WithDocumentID(ctx, file.ID.String())
	log := common.LoggerFromContext(ctx, p.Logger)

	if p.Repo != nil && !req.Force {
		out, found, err := p.lookup(ctx, file)
		if err != nil {
			return Outcome{}, err
		}
		if found {
			return out, nil
		}
	}

	res := p.Extractor.Extract(ctx, file, sink)
	rep := p.Analyzer.Analyze(res, file.Filename)

	raw, err := report.Marshal(rep)
	if err != nil {
		log.Error("processor.report.invalid", "err", err)
		return Outcome{Result: res, Report: rep}, err
	}

	status := constants.JobStatusAnalyzed
	if !res.OK() {
		status = constants.JobStatusFailed
	}
	rec := &entity.AnalysisRecord{
		DocumentID:    file.ID,
		Filename:      file.Filename,
		MediaType:     file.MediaType,
		Size:          file.Size,
		ContentHash:   file.ContentHash,
		Method:        res.Method,
		Pages:         res.Pages,
		FailureKind:   string(res.Kind()),
		ExtractedText: res.Content(), // failure message when FailureKind is set
		DocumentType:  rep.DocumentType,
		Authenticity:  rep.Authenticity,
		Confidence:    rep.ConfidenceScore,
		Report:        raw,
		Status:        string(status),
		DurationMS:    time.Since(start).Milliseconds(),
		CreatedAt:     time.Now().UTC(),
	}

	if p.Repo != nil {
		if err := p.Repo.Create(ctx, rec); err != nil {
			log.Error("processor.store.failed", "err", err)
			return Outcome{Result: res, Report: rep}, err
		}
	} else {
		rec.ID = uuid.New()
	}

	log.Info("processor.ok",
		"filename", file.Filename,
		"method", res.Method,
		"pages", res.Pages,
		"document_type", rep.DocumentType,
		"authenticity", rep.Authenticity,
		"confidence", rep.ConfidenceScore,
		"elapsed_ms", rec.DurationMS,
	)
	return Outcome{Record: rec, Result: res, Report: rep}, nil
}

func (p *Processor) lookup(ctx context.Context, file entity.UploadedFile) (Outcome, bool, error) {
	rec, err := p.Repo.GetLatestBySource(ctx, repository.SourceKey{
		ContentHash: file.ContentHash,
		MediaType:   file.MediaType,
		Filename:    file.Filename,
	})
	if errors.Is(err, common.ErrNotFound) {
		return Outcome{}, false, nil
	}
	if err != nil {
		return Outcome{}, false, common.WrapError(err, "dedup lookup")
	}

	var rep analysis.Report
	if err := json.Unmarshal(rec.Report, &rep); err != nil {
		common.LoggerFromContext(ctx, p.Logger).Warn("processor.dedup.unreadable", "record_id", rec.ID, "err", err)
		return Outcome{}, false, nil
	}
	res := extract.TextResult(rec.ExtractedText)
	if rec.FailureKind != "" {
		res = extract.FailureResult(extract.FailureKind(rec.FailureKind), rec.ExtractedText)
	}
	res.Method = rec.Method
	res.Pages = rec.Pages

	common.LoggerFromContext(ctx, p.Logger).Info("processor.dedup",
		"record_id", rec.ID,
		"content_hash", file.ContentHash,
	)
	return Outcome{Record: rec, Result: res, Report: rep, Deduplicated: true}, true, nil
}

// ProcessBatch processes reqs with at most limit running at once. One file's
// failure never stops the others; items come back in input order.
func (p *Processor) ProcessBatch(ctx context.Context, reqs []Request, limit int) []BatchItem {
	items := make([]BatchItem, len(reqs))
	if limit <= 0 {
		limit = 1
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for i, req := range reqs {
		items[i].Request = req
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				items[i].Err = err
				return nil
			}
			out, err := p.Process(ctx, req, nil)
			items[i].Outcome = out
			items[i].Err = err
			return nil
		})
	}
	_ = g.Wait()
	return items
}
