package extract

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/joseph-ayodele/legaldocs/internal/entity"
	"github.com/joseph-ayodele/legaldocs/internal/ocr"
	"github.com/joseph-ayodele/legaldocs/internal/progress"
)

const noImageText = "No text detected in the image."

// extractImage runs OCR and reports recognition progress for documentID.
// The progress entry is cleared exactly once, after the outcome is known.
func (d *Dispatcher) extractImage(ctx context.Context, file entity.UploadedFile, documentID string, sink progress.Sink) (res Result) {
	defer sink.Clear(documentID)
	defer recoverAs(&res, RecognitionError, "OCR Error: ", MethodImageOCR)

	sink.Report(documentID, 0)
	if d.engine == nil {
		res = FailureResult(UnsupportedType, "OCR Error: no OCR engine configured")
		res.Method = MethodImageOCR
		return res
	}

	last := 0
	onProgress := func(ev ocr.RecognitionProgressEvent) {
		if ev.Status != ocr.StatusRecognizingText {
			return
		}
		pct := percent(ev.Progress)
		if pct < last {
			return
		}
		last = pct
		sink.Report(documentID, pct)
	}

	rec, err := d.engine.Recognize(ctx, file.Content, file.MediaType, d.lang, onProgress)
	if err != nil {
		kind := RecognitionError
		if errors.Is(err, ocr.ErrUnsupportedFormat) {
			kind = UnsupportedType
		}
		res = FailureResult(kind, "OCR Error: "+err.Error())
		res.Method = MethodImageOCR
		res.Warnings = rec.Warnings
		return res
	}

	txt := strings.TrimSpace(rec.Text)
	if txt == "" {
		txt = noImageText
	}
	res = TextResult(txt)
	res.Method = MethodImageOCR
	res.Pages = 1
	res.Warnings = rec.Warnings
	res.Confidence = rec.Confidence
	return res
}

// percent converts a [0,1] fraction to a rounded, clamped percentage.
func percent(fraction float64) int {
	if math.IsNaN(fraction) {
		return 0
	}
	p := int(math.Round(fraction * 100))
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
