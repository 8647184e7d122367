package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/legaldocs/constants"
	"github.com/joseph-ayodele/legaldocs/internal/common"
	"github.com/joseph-ayodele/legaldocs/internal/entity"
	"github.com/joseph-ayodele/legaldocs/internal/ocr"
	"github.com/joseph-ayodele/legaldocs/internal/progress"
)

// Strategy names the extractor a file is routed to.
type Strategy int

const (
	StrategyFallback Strategy = iota
	StrategyPlainText
	StrategyPDF
	StrategyImage
	StrategyWord
	StrategyLegacyWord
)

func (s Strategy) String() string {
	switch s {
	case StrategyPlainText:
		return "plain-text"
	case StrategyPDF:
		return "pdf"
	case StrategyImage:
		return "image"
	case StrategyWord:
		return "word"
	case StrategyLegacyWord:
		return "legacy-word"
	default:
		return "fallback"
	}
}

const legacyWordNotice = "Legacy Word document format (.doc) detected. Please convert to .docx format for better text extraction, or the content will be processed as available."

// Route picks a strategy from the declared media type and the filename only.
func Route(mediaType, filename string) Strategy {
	switch {
	case mediaType == constants.MediaTypePlainText:
		return StrategyPlainText
	case mediaType == constants.MediaTypePDF:
		return StrategyPDF
	case strings.HasPrefix(mediaType, constants.MediaTypeImagePfx):
		return StrategyImage
	case mediaType == constants.MediaTypeDOCX || strings.HasSuffix(filename, ".docx"):
		return StrategyWord
	case mediaType == constants.MediaTypeMSWord || strings.HasSuffix(filename, ".doc"):
		return StrategyLegacyWord
	default:
		return StrategyFallback
	}
}

// Dispatcher routes files to the matching extractor.
type Dispatcher struct {
	engine ocr.Engine
	lang   string
	logger *slog.Logger
}

func NewDispatcher(engine ocr.Engine, lang string, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if lang == "" {
		lang = "eng"
	}
	return &Dispatcher{engine: engine, lang: lang, logger: logger}
}

// Extract never returns an error: every failure is a Failure result.
// A nil sink discards progress.
func (d *Dispatcher) Extract(ctx context.Context, file entity.UploadedFile, sink progress.Sink) Result {
	start := time.Now()
	if sink == nil {
		sink = progress.Discard
	}
	log := common.LoggerFromContext(ctx, d.logger)
	strategy := Route(file.MediaType, file.Filename)
	log.Debug("dispatching extraction",
		"filename", file.Filename,
		"media_type", file.MediaType,
		"size", len(file.Content),
		"strategy", strategy.String(),
	)

	var res Result
	switch strategy {
	case StrategyPlainText:
		res = extractPlainText(file.Content)
	case StrategyPDF:
		res = extractPDF(file.Content)
	case StrategyImage:
		documentID := file.ID.String()
		if file.ID == uuid.Nil {
			documentID = uuid.NewString()
		}
		res = d.extractImage(ctx, file, documentID, sink)
	case StrategyWord:
		res = extractWord(file.Content, log)
	case StrategyLegacyWord:
		res = TextResult(legacyWordNotice)
		res.Method = MethodDOCLegacy
	default:
		res = extractFallback(file.Content)
	}
	res.Duration = time.Since(start)

	if res.OK() {
		log.Info("extraction ok",
			"filename", file.Filename,
			"method", res.Method,
			"pages", res.Pages,
			"chars", len([]rune(res.Text)),
			"duration_ms", res.Duration.Milliseconds(),
		)
	} else {
		log.Warn("extraction failed",
			"filename", file.Filename,
			"method", res.Method,
			"kind", string(res.Failure.Kind),
			"message", res.Failure.Message,
			"duration_ms", res.Duration.Milliseconds(),
		)
	}
	return res
}

// recoverAs converts a panic inside a strategy into a failure of the given kind.
func recoverAs(res *Result, kind FailureKind, prefix, method string) {
	if r := recover(); r != nil {
		*res = FailureResult(kind, fmt.Sprintf("%s%v", prefix, r))
		res.Method = method
	}
}
