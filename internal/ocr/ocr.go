// Package ocr recognizes text in images through the tesseract CLI.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/legaldocs/internal/common"
)

// Status values reported through RecognitionProgressEvent.
const (
	StatusLoadingCore     = "loading tesseract core"
	StatusInitializingAPI = "initializing api"
	StatusRecognizingText = "recognizing text"
)

// ErrUnsupportedFormat is returned when an image cannot be prepared for recognition.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// RecognitionProgressEvent is a single progress notification from an engine.
// Progress is a fraction in [0,1] within the named phase.
type RecognitionProgressEvent struct {
	Status   string
	Progress float64
}

// Recognition is the engine output for one image.
type Recognition struct {
	Text       string
	Confidence float32
	Warnings   []string
	Duration   time.Duration
}

// Engine recognizes text in an encoded image.
type Engine interface {
	Recognize(ctx context.Context, image []byte, mediaType, lang string, onProgress func(RecognitionProgressEvent)) (Recognition, error)
}

type Config struct {
	Tesseract     string // binary name or absolute path; if empty -> "tesseract"
	TesseractLang string // default "eng"
	TessdataDir   string

	HeicConverter string // "magick" | "heif-convert" | "sips"; empty disables HEIC

	// TSVConfidence runs a second tesseract pass in TSV mode for word confidences.
	TSVConfidence bool

	PSM int // e.g., 6 is good for uniform block of text
	OEM int // 1 = LSTM; leave 0 to use default
}

// Tesseract is the production Engine.
type Tesseract struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

type Option func(*Tesseract)

// WithRunner replaces the command runner, mostly for tests.
func WithRunner(r Runner) Option {
	return func(t *Tesseract) {
		if r != nil {
			t.runner = r
		}
	}
}

func NewTesseract(cfg Config, logger *slog.Logger, opts ...Option) *Tesseract {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	t := &Tesseract{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Recognize prepares the image, runs tesseract over stdin and reports phase progress.
func (t *Tesseract) Recognize(ctx context.Context, image []byte, mediaType, lang string, onProgress func(RecognitionProgressEvent)) (Recognition, error) {
	start := time.Now()
	if onProgress == nil {
		onProgress = func(RecognitionProgressEvent) {}
	}
	if lang == "" {
		lang = t.cfg.TesseractLang
	}
	t.logger.Debug("starting ocr recognition", "media_type", mediaType, "lang", lang, "bytes", len(image))

	onProgress(RecognitionProgressEvent{Status: StatusLoadingCore, Progress: 0})
	prepared, warns, err := t.prepare(ctx, image, mediaType)
	if err != nil {
		t.logger.Error("image preparation failed", "media_type", mediaType, "error", err)
		return Recognition{Warnings: warns}, err
	}
	onProgress(RecognitionProgressEvent{Status: StatusLoadingCore, Progress: 1})
	onProgress(RecognitionProgressEvent{Status: StatusInitializingAPI, Progress: 1})

	onProgress(RecognitionProgressEvent{Status: StatusRecognizingText, Progress: 0})
	txt, w, err := t.tesseractOCR(ctx, prepared, lang)
	warns = append(warns, w...)
	if err != nil {
		return Recognition{Warnings: warns, Duration: time.Since(start)}, err
	}
	onProgress(RecognitionProgressEvent{Status: StatusRecognizingText, Progress: 1})

	txt = Normalize(txt)
	conf := t.confidence(ctx, prepared, lang, txt, &warns)

	return Recognition{
		Text:       txt,
		Confidence: conf,
		Warnings:   warns,
		Duration:   time.Since(start),
	}, nil
}

// prepare turns the upload into bytes tesseract can read from stdin.
func (t *Tesseract) prepare(ctx context.Context, image []byte, mediaType string) ([]byte, []string, error) {
	switch {
	case isHEIC(mediaType):
		if t.cfg.HeicConverter == "" {
			return nil, nil, fmt.Errorf("%w: HEIC images are not supported without a converter", ErrUnsupportedFormat)
		}
		return convertHEICtoPNG(ctx, t.runner, t.logger, t.cfg.HeicConverter, image)
	case needsReencode(mediaType):
		out, err := reencodePNG(image)
		if err != nil {
			return nil, nil, err
		}
		return out, nil, nil
	default:
		return image, nil, nil
	}
}

// ConfigFrom maps the application OCR settings onto Config.
func ConfigFrom(c common.OCRConfig) Config {
	return Config{
		Tesseract:     c.Tesseract,
		TesseractLang: c.TesseractLang,
		TessdataDir:   c.TessdataDir,
		HeicConverter: c.HeicConverter,
		TSVConfidence: c.TSVConfidence,
		PSM:           c.PSM,
		OEM:           c.OEM,
	}
}
