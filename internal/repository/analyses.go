package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/legaldocs/constants"
	"github.com/joseph-ayodele/legaldocs/internal/common"
	"github.com/joseph-ayodele/legaldocs/internal/entity"
)

const (
	analysesTable = "analyses"
	timeLayout    = "2006-01-02T15:04:05.000000000Z07:00"
)

var analysisColumns = []string{
	"id", "document_id", "filename", "media_type", "size", "content_hash",
	"method", "pages", "failure_kind", "extracted_text", "document_type",
	"authenticity", "confidence", "report", "status", "duration_ms", "created_at",
}

// ListFilter narrows List. Dates are inclusive calendar days in UTC.
type ListFilter struct {
	From         *time.Time
	To           *time.Time
	DocumentType string
	Limit        int
}

// SourceKey identifies an upload for deduplication. Extraction depends on the
// media type and filename as well as the bytes, so all three must match.
type SourceKey struct {
	ContentHash string
	MediaType   string
	Filename    string
}

type AnalysisRepository interface {
	Create(ctx context.Context, rec *entity.AnalysisRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.AnalysisRecord, error)
	GetLatestBySource(ctx context.Context, key SourceKey) (*entity.AnalysisRecord, error)
	List(ctx context.Context, f ListFilter) ([]*entity.AnalysisRecord, error)
}

type analysisRepo struct {
	db     *DB
	logger *slog.Logger
}

func NewAnalysisRepository(db *DB, logger *slog.Logger) AnalysisRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &analysisRepo{db: db, logger: logger}
}

func (r *analysisRepo) builder() *entsql.DialectBuilder {
	return entsql.Dialect(r.db.Dialect)
}

// Create inserts rec, filling ID and CreatedAt when unset.
func (r *analysisRepo) Create(ctx context.Context, rec *entity.AnalysisRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	report := string(rec.Report)
	if report == "" {
		report = "{}"
	}

	query, args := r.builder().Insert(analysesTable).
		Columns(analysisColumns...).
		Values(
			rec.ID.String(), rec.DocumentID.String(), rec.Filename, rec.MediaType, rec.Size, rec.ContentHash,
			rec.Method, rec.Pages, rec.FailureKind, rec.ExtractedText, rec.DocumentType,
			rec.Authenticity, rec.Confidence, report, rec.Status, rec.DurationMS, rec.CreatedAt.UTC().Format(timeLayout),
		).Query()

	if err := r.db.Driver.Exec(ctx, query, args, nil); err != nil {
		r.logger.Error("analysis insert failed", "id", rec.ID, "filename", rec.Filename, "error", err)
		return common.NewAppError("DB_ERROR", "insert analysis", fmt.Errorf("%w: %v", common.ErrDatabase, err))
	}
	r.logger.Info("analysis stored",
		"id", rec.ID,
		"document_id", rec.DocumentID,
		"document_type", rec.DocumentType,
		"authenticity", rec.Authenticity,
	)
	return nil
}

func (r *analysisRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.AnalysisRecord, error) {
	b := r.builder()
	sel := b.Select(analysisColumns...).
		From(b.Table(analysesTable)).
		Where(entsql.EQ("id", id.String())).
		Limit(1)
	recs, err := r.query(ctx, sel)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, common.NewAppError("NOT_FOUND", fmt.Sprintf("analysis %s", id), common.ErrNotFound)
	}
	return recs[0], nil
}

// GetLatestBySource returns the newest record stored for the same bytes
// uploaded under the same media type and filename.
func (r *analysisRepo) GetLatestBySource(ctx context.Context, key SourceKey) (*entity.AnalysisRecord, error) {
	b := r.builder()
	sel := b.Select(analysisColumns...).
		From(b.Table(analysesTable)).
		Where(entsql.And(
			entsql.EQ("content_hash", key.ContentHash),
			entsql.EQ("media_type", key.MediaType),
			entsql.EQ("filename", key.Filename),
		)).
		OrderBy(entsql.Desc("created_at")).
		Limit(1)
	recs, err := r.query(ctx, sel)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, common.NewAppError("NOT_FOUND", "analysis for source", common.ErrNotFound)
	}
	return recs[0], nil
}

// List returns matching records, newest first.
func (r *analysisRepo) List(ctx context.Context, f ListFilter) ([]*entity.AnalysisRecord, error) {
	b := r.builder()
	sel := b.Select(analysisColumns...).
		From(b.Table(analysesTable)).
		OrderBy(entsql.Desc("created_at"))

	var preds []*entsql.Predicate
	if f.From != nil {
		from := dayStart(*f.From)
		preds = append(preds, entsql.GTE("created_at", from.Format(timeLayout)))
	}
	if f.To != nil {
		end := dayStart(*f.To).AddDate(0, 0, 1)
		preds = append(preds, entsql.LT("created_at", end.Format(timeLayout)))
	}
	if f.DocumentType != "" {
		if f.DocumentType == constants.TextDocumentPrefix {
			preds = append(preds, entsql.HasPrefix("document_type", constants.TextDocumentPrefix+" ("))
		} else {
			preds = append(preds, entsql.EQ("document_type", f.DocumentType))
		}
	}
	if len(preds) > 0 {
		sel = sel.Where(entsql.And(preds...))
	}
	if f.Limit > 0 {
		sel = sel.Limit(f.Limit)
	}
	return r.query(ctx, sel)
}

func (r *analysisRepo) query(ctx context.Context, sel *entsql.Selector) ([]*entity.AnalysisRecord, error) {
	query, args := sel.Query()
	rows := &entsql.Rows{}
	if err := r.db.Driver.Query(ctx, query, args, rows); err != nil {
		r.logger.Error("analysis query failed", "error", err)
		return nil, common.NewAppError("DB_ERROR", "query analyses", fmt.Errorf("%w: %v", common.ErrDatabase, err))
	}
	defer rows.Close()

	var out []*entity.AnalysisRecord
	for rows.Next() {
		rec, err := scanAnalysis(rows)
		if err != nil {
			return nil, common.NewAppError("DB_ERROR", "scan analysis", fmt.Errorf("%w: %v", common.ErrDatabase, err))
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewAppError("DB_ERROR", "iterate analyses", fmt.Errorf("%w: %v", common.ErrDatabase, err))
	}
	return out, nil
}

func scanAnalysis(rows *entsql.Rows) (*entity.AnalysisRecord, error) {
	var (
		rec                  entity.AnalysisRecord
		id, docID, createdAt string
		report               string
	)
	if err := rows.Scan(
		&id, &docID, &rec.Filename, &rec.MediaType, &rec.Size, &rec.ContentHash,
		&rec.Method, &rec.Pages, &rec.FailureKind, &rec.ExtractedText, &rec.DocumentType,
		&rec.Authenticity, &rec.Confidence, &report, &rec.Status, &rec.DurationMS, &createdAt,
	); err != nil {
		return nil, err
	}
	var err error
	if rec.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("id: %w", err)
	}
	if rec.DocumentID, err = uuid.Parse(docID); err != nil {
		return nil, fmt.Errorf("document_id: %w", err)
	}
	if rec.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("created_at: %w", err)
	}
	rec.Report = []byte(report)
	return &rec, nil
}

func dayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
