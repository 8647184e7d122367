// Package analysis builds a report from extracted text with fixed keyword and pattern rules.
package analysis

import (
	"log/slog"

	"github.com/joseph-ayodele/legaldocs/internal/extract"
)

const noReadableText = "No readable text content found in the document."

type Options struct {
	// AnalyzeFailureText feeds a failed extraction's message through the
	// rules as if it were document text. Enabled by default.
	AnalyzeFailureText bool
}

func DefaultOptions() Options {
	return Options{AnalyzeFailureText: true}
}

type Analyzer struct {
	opts   Options
	logger *slog.Logger
}

func New(opts Options, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{opts: opts, logger: logger}
}

// Analyze never fails; unusable input degrades to a low-confidence report.
func (a *Analyzer) Analyze(res extract.Result, filename string) Report {
	text, ok := a.analysisInput(res)
	if !ok {
		r := emptyReport()
		v := processingErrorVerdict()
		r.Summary = res.Failure.Message
		r.Authenticity = string(v.Authenticity)
		r.ConfidenceScore = v.Confidence
		r.Corrections = v.Corrections
		a.logger.Debug("analysis skipped failed extraction", "filename", filename, "kind", string(res.Failure.Kind))
		return r
	}

	r := AnalyzeText(text, filename)
	a.logger.Debug("analysis complete",
		"filename", filename,
		"document_type", r.DocumentType,
		"authenticity", r.Authenticity,
		"confidence", r.ConfidenceScore,
	)
	return r
}

// analysisInput picks the text the rules run on. A failure contributes its
// message only when AnalyzeFailureText is set; ok is false otherwise.
func (a *Analyzer) analysisInput(res extract.Result) (string, bool) {
	if res.OK() {
		return res.Text, true
	}
	if a.opts.AnalyzeFailureText {
		return res.Failure.Message, true
	}
	return "", false
}

// AnalyzeText runs the full rule set on text.
func AnalyzeText(text, filename string) Report {
	r := emptyReport()
	if len(text) == 0 {
		v := unreadableVerdict()
		r.Summary = noReadableText
		r.Authenticity = string(v.Authenticity)
		r.ConfidenceScore = v.Confidence
		r.Corrections = v.Corrections
		return r
	}

	r.Summary = Summarize(text)
	r.KeyPoints = KeyPoints(text)
	r.Entities = ExtractEntities(text)
	r.DocumentType = Classify(text, filename)

	v := Judge(text)
	r.Authenticity = string(v.Authenticity)
	r.ConfidenceScore = v.Confidence
	r.Corrections = v.Corrections
	return r
}
