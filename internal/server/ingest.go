package server

import (
	"context"
	"strings"

	"github.com/joseph-ayodele/legaldocs/internal/async"
	"github.com/joseph-ayodele/legaldocs/internal/common"
	"github.com/joseph-ayodele/legaldocs/internal/pipeline"
)

// IngestFile reads a server-local file and analyzes it synchronously.
func (s *IntakeServer) IngestFile(ctx context.Context, req *IngestFileRequest) (*AnalyzeResponse, error) {
	ctx, _ = withRequestID(ctx)
	log := common.LoggerFromContext(ctx, s.logger)
	path := strings.TrimSpace(req.Path)
	if path == "" {
		log.Error("ingest request missing path")
		return nil, common.InvalidArgumentError("path is required")
	}
	if s.ingestor == nil {
		return nil, common.UnavailableError("filesystem ingest is disabled")
	}

	log.Info("starting file ingest", "path", path)
	file, err := s.ingestor.IngestPath(ctx, path)
	if err != nil {
		log.Warn("file ingest failed", "path", path, "error", err)
		return nil, common.ToStatus(err)
	}

	out, err := s.proc.Process(ctx, pipeline.Request{File: file, Force: req.Force}, s.tracker)
	if err != nil {
		log.Error("pipeline.failed", "document_id", file.ID, "err", err)
		return nil, common.ToStatus(err)
	}
	return toResponse(out), nil
}

// IngestDirectory walks a server-local directory and queues every matching
// file. Files whose content repeats earlier in the walk are not queued.
func (s *IntakeServer) IngestDirectory(ctx context.Context, req *IngestDirectoryRequest) (*IngestDirectoryResponse, error) {
	ctx, reqID := withRequestID(ctx)
	log := common.LoggerFromContext(ctx, s.logger)
	root := strings.TrimSpace(req.RootPath)
	if root == "" {
		return nil, common.InvalidArgumentError("root_path is required")
	}
	if s.ingestor == nil || s.queue == nil {
		return nil, common.UnavailableError("directory ingest is disabled")
	}

	results, stats, err := s.ingestor.IngestDirectory(ctx, root, req.SkipHidden)
	if err != nil {
		log.Error("directory ingest failed", "root", root, "error", err)
		return nil, common.InvalidArgumentErrorf("ingest directory: %v", err)
	}

	resp := &IngestDirectoryResponse{Stats: stats, Results: make([]IngestFileResult, 0, len(results))}
	for _, r := range results {
		item := IngestFileResult{Path: r.SourcePath, Deduplicated: r.Deduplicated, Error: r.Err}
		if r.Err == "" {
			item.DocumentID = r.File.ID.String()
			item.ContentHash = r.File.ContentHash
		}
		if r.Err == "" && !r.Deduplicated {
			err := s.queue.Enqueue(ctx, async.Job{
				Request: pipeline.Request{File: r.File, Force: req.Force},
				TraceID: reqID,
				Sink:    s.tracker,
			})
			if err != nil {
				item.Error = err.Error()
			} else {
				item.Queued = true
			}
		}
		resp.Results = append(resp.Results, item)
	}
	log.Info("directory queued", "root", root, "matched", stats.Matched, "failed", stats.Failed)
	return resp, nil
}
