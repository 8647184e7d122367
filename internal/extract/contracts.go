// Package extract turns uploaded files into text, one strategy per file type.
package extract

import (
	"context"
	"time"

	"github.com/joseph-ayodele/legaldocs/internal/entity"
	"github.com/joseph-ayodele/legaldocs/internal/progress"
)

// FailureKind classifies why extraction produced no text.
type FailureKind string

const (
	UnsupportedType  FailureKind = "UnsupportedType"
	ReadError        FailureKind = "ReadError"
	ParseError       FailureKind = "ParseError"
	RecognitionError FailureKind = "RecognitionError"
)

// Method names recorded on results.
const (
	MethodPlainText = "plain-text"
	MethodPDFText   = "pdf-text"
	MethodImageOCR  = "image-ocr"
	MethodDOCXText  = "docx-text"
	MethodDOCLegacy = "doc-legacy"
	MethodFallback  = "fallback-text"
)

// Failure is the error variant of a Result.
type Failure struct {
	Kind    FailureKind
	Message string
}

// Result is either Text or a Failure, never both.
// The remaining fields are diagnostics and never change what the analyzer sees.
type Result struct {
	Text    string
	Failure *Failure

	Method     string
	Pages      int
	Warnings   []string
	Duration   time.Duration
	Confidence float32 // OCR only
}

// TextResult builds a successful result.
func TextResult(text string) Result {
	return Result{Text: text}
}

// FailureResult builds a failed result.
func FailureResult(kind FailureKind, message string) Result {
	return Result{Failure: &Failure{Kind: kind, Message: message}}
}

// OK reports whether the result carries text.
func (r Result) OK() bool { return r.Failure == nil }

// Content returns the text, or the failure message for failed results.
func (r Result) Content() string {
	if r.Failure != nil {
		return r.Failure.Message
	}
	return r.Text
}

// Kind returns the failure kind, or "" for text results.
func (r Result) Kind() FailureKind {
	if r.Failure == nil {
		return ""
	}
	return r.Failure.Kind
}

// PageTextItem is one text fragment of a PDF page.
type PageTextItem struct {
	Str string
}

// TextExtractor is what the pipeline depends on.
type TextExtractor interface {
	Extract(ctx context.Context, file entity.UploadedFile, sink progress.Sink) Result
}
