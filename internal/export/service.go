package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/legaldocs/internal/analysis"
	"github.com/joseph-ayodele/legaldocs/internal/repository"
)

const sheet = "Analyses"

var headers = []string{
	"Analyzed At",
	"Filename",
	"Media Type",
	"Document Type",
	"Authenticity",
	"Confidence",
	"Names",
	"Dates",
	"Amounts",
	"Locations",
	"Summary",
	"Corrections",
}

// Service produces XLSX bytes for stored analyses.
type Service struct {
	repo   repository.AnalysisRepository
	logger *slog.Logger
}

func NewService(repo repository.AnalysisRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// ExportAnalysesXLSX returns a workbook for the analyses matching filter.
// If only From is provided the window runs to today (inclusive).
func (s *Service) ExportAnalysesXLSX(ctx context.Context, filter repository.ListFilter) ([]byte, error) {
	start := time.Now()

	if filter.From != nil && filter.To == nil {
		today := time.Now().UTC()
		t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
		filter.To = &t
	}

	recs, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	_ = f.DeleteSheet("Sheet1")

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, r := range recs {
		var rep analysis.Report
		if len(r.Report) > 0 {
			if err := json.Unmarshal(r.Report, &rep); err != nil {
				s.logger.Warn("export.report.unreadable", "id", r.ID, "err", err)
			}
		}

		values := []any{
			r.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			r.Filename,
			r.MediaType,
			r.DocumentType,
			r.Authenticity,
			r.Confidence,
			joinList(rep.Entities.Names),
			joinList(rep.Entities.Dates),
			joinList(rep.Entities.Amounts),
			joinList(rep.Entities.Locations),
			truncate(rep.Summary, 300),
			joinList(rep.Corrections),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 20) // timestamp
	_ = f.SetColWidth(sheet, "B", "B", 32) // filename
	_ = f.SetColWidth(sheet, "C", "C", 24)
	_ = f.SetColWidth(sheet, "D", "E", 30)
	_ = f.SetColWidth(sheet, "F", "F", 12)
	_ = f.SetColWidth(sheet, "G", "J", 36) // entities
	_ = f.SetColWidth(sheet, "K", "K", 60) // summary
	_ = f.SetColWidth(sheet, "L", "L", 48)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(recs),
		"document_type", filter.DocumentType,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func joinList(items []string) string {
	return strings.Join(items, "; ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
