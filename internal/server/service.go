package server

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/metadata"

	"github.com/joseph-ayodele/legaldocs/constants"
	"github.com/joseph-ayodele/legaldocs/internal/async"
	"github.com/joseph-ayodele/legaldocs/internal/common"
	"github.com/joseph-ayodele/legaldocs/internal/entity"
	"github.com/joseph-ayodele/legaldocs/internal/export"
	"github.com/joseph-ayodele/legaldocs/internal/ingest"
	"github.com/joseph-ayodele/legaldocs/internal/pipeline"
	"github.com/joseph-ayodele/legaldocs/internal/progress"
	"github.com/joseph-ayodele/legaldocs/internal/repository"
)

// IntakeServer implements IntakeServiceServer on top of the pipeline.
type IntakeServer struct {
	proc     *pipeline.Processor
	repo     repository.AnalysisRepository
	exporter *export.Service
	ingestor ingest.Ingestor
	queue    async.Queue // nil -> streams process inline
	tracker  *progress.Tracker
	maxBytes int64
	logger   *slog.Logger
}

type Deps struct {
	Processor   *pipeline.Processor
	Repo        repository.AnalysisRepository
	Exporter    *export.Service
	Ingestor    ingest.Ingestor
	Queue       async.Queue
	Tracker     *progress.Tracker
	MaxFileSize int64 // 0 -> unlimited
}

func NewIntakeServer(d Deps, logger *slog.Logger) *IntakeServer {
	if logger == nil {
		logger = slog.Default()
	}
	if d.Tracker == nil {
		d.Tracker = progress.NewTracker()
	}
	return &IntakeServer{
		proc:     d.Processor,
		repo:     d.Repo,
		exporter: d.Exporter,
		ingestor: d.Ingestor,
		queue:    d.Queue,
		tracker:  d.Tracker,
		maxBytes: d.MaxFileSize,
		logger:   logger,
	}
}

// RequestIDHeader is the metadata key callers may set to correlate logs.
const RequestIDHeader = "x-request-id"

// withRequestID tags ctx with the caller's request id, or a fresh one.
func withRequestID(ctx context.Context) (context.Context, string) {
	id := ""
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get(RequestIDHeader); len(v) > 0 {
			id = strings.TrimSpace(v[0])
		}
	}
	if id == "" {
		id = uuid.NewString()
	}
	return common.WithRequestID(ctx, id), id
}

func (s *IntakeServer) uploadedFile(req *AnalyzeRequest) (entity.UploadedFile, error) {
	v := common.NewValidator().
		Field("filename", req.Filename, common.Required, common.MaxLengthRule(255)).
		Field("media_type", req.MediaType, common.MediaType).
		Field("content", req.Content, common.MaxBytes(s.maxBytes))
	if req.DocumentID != "" {
		v.Field("document_id", req.DocumentID, common.UUID)
	}
	if err := common.ValidateAndReturnError(v); err != nil {
		s.logger.Warn("analyze request rejected", "filename", req.Filename, "error", v.ErrorMessage())
		return entity.UploadedFile{}, err
	}

	id := uuid.New()
	if req.DocumentID != "" {
		id = uuid.MustParse(req.DocumentID)
	}
	return entity.UploadedFile{
		ID:        id,
		Filename:  strings.TrimSpace(req.Filename),
		MediaType: req.MediaType,
		Size:      int64(len(req.Content)),
		Content:   req.Content,
	}, nil
}

func (s *IntakeServer) Analyze(ctx context.Context, req *AnalyzeRequest) (*AnalyzeResponse, error) {
	ctx, _ = withRequestID(ctx)
	file, err := s.uploadedFile(req)
	if err != nil {
		return nil, err
	}
	out, err := s.proc.Process(ctx, pipeline.Request{File: file, Force: req.Force}, s.tracker)
	if err != nil {
		common.LoggerFromContext(ctx, s.logger).Error("analyze failed", "document_id", file.ID, "error", err)
		return nil, common.ToStatus(err)
	}
	return toResponse(out), nil
}

type processed struct {
	out pipeline.Outcome
	err error
}

// AnalyzeStream sends progress events while the file is processed, then the result.
func (s *IntakeServer) AnalyzeStream(req *AnalyzeRequest, stream AnalyzeStreamServer) error {
	ctx, reqID := withRequestID(stream.Context())
	file, err := s.uploadedFile(req)
	if err != nil {
		return err
	}
	docID := file.ID.String()

	updates, cancel := s.tracker.Subscribe(docID, 32)
	defer cancel()

	done := make(chan processed, 1)
	preq := pipeline.Request{File: file, Force: req.Force}
	if s.queue != nil {
		err := s.queue.Enqueue(ctx, async.Job{
			Request: preq,
			TraceID: reqID,
			Sink:    s.tracker,
			Done:    func(o pipeline.Outcome, err error) { done <- processed{o, err} },
		})
		if errors.Is(err, async.ErrQueueClosed) {
			return common.UnavailableError("server is shutting down")
		}
		if err != nil {
			return common.ToStatus(err)
		}
	} else {
		go func() {
			o, err := s.proc.Process(ctx, preq, s.tracker)
			done <- processed{o, err}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case u, ok := <-updates:
			if !ok {
				updates = nil
				continue
			}
			if err := stream.Send(&AnalyzeEvent{Progress: &Progress{DocumentID: u.DocumentID, Percent: u.Percent}}); err != nil {
				return err
			}
		case p := <-done:
			if err := drainProgress(stream, updates); err != nil {
				return err
			}
			if p.err != nil {
				common.LoggerFromContext(ctx, s.logger).Error("analyze stream failed", "document_id", docID, "error", p.err)
				return common.ToStatus(p.err)
			}
			return stream.Send(&AnalyzeEvent{Result: toResponse(p.out)})
		}
	}
}

// drainProgress forwards updates already buffered so they precede the result.
func drainProgress(stream AnalyzeStreamServer, updates <-chan progress.Update) error {
	for updates != nil {
		select {
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			if err := stream.Send(&AnalyzeEvent{Progress: &Progress{DocumentID: u.DocumentID, Percent: u.Percent}}); err != nil {
				return err
			}
		default:
			return nil
		}
	}
	return nil
}

func (s *IntakeServer) GetAnalysis(ctx context.Context, req *GetAnalysisRequest) (*AnalyzeResponse, error) {
	v := common.NewValidator().Field("id", strings.TrimSpace(req.ID), common.UUID)
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}
	rec, err := s.repo.GetByID(ctx, uuid.MustParse(strings.TrimSpace(req.ID)))
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return recordResponse(rec, false), nil
}

func (s *IntakeServer) ListAnalyses(ctx context.Context, req *ListAnalysesRequest) (*ListAnalysesResponse, error) {
	filter, err := listFilter(req)
	if err != nil {
		return nil, err
	}
	recs, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("list analyses failed", "error", err)
		return nil, common.ToStatus(err)
	}
	out := make([]*AnalyzeResponse, 0, len(recs))
	for _, r := range recs {
		out = append(out, recordResponse(r, false))
	}
	return &ListAnalysesResponse{Analyses: out}, nil
}

func (s *IntakeServer) ExportAnalyses(ctx context.Context, req *ListAnalysesRequest) (*ExportAnalysesResponse, error) {
	filter, err := listFilter(req)
	if err != nil {
		return nil, err
	}
	xlsx, err := s.exporter.ExportAnalysesXLSX(ctx, filter)
	if err != nil {
		s.logger.Error("export.xlsx.failed", "err", err)
		return nil, common.InternalError(err.Error())
	}
	return &ExportAnalysesResponse{XLSX: xlsx}, nil
}

// listFilter parses optional YYYY-MM-DD bounds and the document type.
func listFilter(req *ListAnalysesRequest) (repository.ListFilter, error) {
	var f repository.ListFilter
	if fd := strings.TrimSpace(req.FromDate); fd != "" {
		t, err := time.Parse("2006-01-02", fd)
		if err != nil {
			return f, common.InvalidArgumentError("from_date must be YYYY-MM-DD")
		}
		f.From = &t
	}
	if td := strings.TrimSpace(req.ToDate); td != "" {
		t, err := time.Parse("2006-01-02", td)
		if err != nil {
			return f, common.InvalidArgumentError("to_date must be YYYY-MM-DD")
		}
		f.To = &t
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return f, common.InvalidArgumentError("to_date must not be before from_date")
	}
	if dt := strings.TrimSpace(req.DocumentType); dt != "" {
		canon, ok := constants.Canonicalize(dt)
		if !ok {
			return f, common.InvalidArgumentErrorf("unknown document_type %q", dt)
		}
		f.DocumentType = string(canon)
	}
	if req.Limit < 0 {
		return f, common.InvalidArgumentError("limit must not be negative")
	}
	f.Limit = req.Limit
	return f, nil
}

func toResponse(out pipeline.Outcome) *AnalyzeResponse {
	resp := recordResponse(out.Record, out.Deduplicated)
	resp.Method = out.Result.Method
	resp.Pages = out.Result.Pages
	if !out.Result.OK() {
		resp.FailureKind = string(out.Result.Failure.Kind)
		resp.ExtractedText = ""
	}
	return resp
}

func recordResponse(r *entity.AnalysisRecord, dedup bool) *AnalyzeResponse {
	resp := &AnalyzeResponse{
		RecordID:      r.ID.String(),
		DocumentID:    r.DocumentID.String(),
		Filename:      r.Filename,
		MediaType:     r.MediaType,
		Method:        r.Method,
		Pages:         r.Pages,
		ExtractedText: r.ExtractedText,
		FailureKind:   r.FailureKind,
		Deduplicated:  dedup,
		Report:        r.Report,
		CreatedAt:     r.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if r.FailureKind != "" {
		resp.ExtractedText = ""
	}
	return resp
}
