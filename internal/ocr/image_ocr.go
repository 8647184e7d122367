package ocr

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// ImageConfidenceThreshold marks recognitions worth a manual look.
const ImageConfidenceThreshold = 0.6

func (t *Tesseract) baseArgs(lang string) []string {
	// tesseract stdin stdout -l <lang>
	args := []string{"stdin", "stdout", "-l", lang}
	if t.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(t.cfg.PSM))
	}
	if t.cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(t.cfg.OEM))
	}
	if t.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", t.cfg.TessdataDir)
	}
	return args
}

func (t *Tesseract) tesseractOCR(ctx context.Context, img []byte, lang string) (string, []string, error) {
	out, errb, err := t.runner.Run(ctx, img, t.cfg.Tesseract, t.baseArgs(lang)...)
	if err != nil {
		if msg := strings.TrimSpace(string(errb)); msg != "" {
			return "", []string{msg}, fmt.Errorf("tesseract: %w: %s", err, truncate(msg, 200))
		}
		return "", nil, fmt.Errorf("tesseract: %w", err)
	}

	// minor cleanup of obvious line noise
	txt := reBoxNoise.ReplaceAllString(string(out), "")
	return txt, nil, nil
}

// tesseractTSVConfidence runs tesseract in TSV mode and returns mean word conf in 0..1.
func (t *Tesseract) tesseractTSVConfidence(ctx context.Context, img []byte, lang string) (float32, error) {
	args := append(t.baseArgs(lang), "tsv")

	out, _, err := t.runner.Run(ctx, img, t.cfg.Tesseract, args...)
	if err != nil {
		return 0, fmt.Errorf("tesseract TSV: %w", err)
	}
	return meanTSVConfidence(string(out)), nil
}

func meanTSVConfidence(tsv string) float32 {
	lines := strings.Split(tsv, "\n")
	// conf column is the 11th; header line includes "conf"
	var sum, n float64
	for i, ln := range lines {
		if i == 0 || len(ln) == 0 {
			continue
		}
		cols := strings.Split(ln, "\t")
		if len(cols) < 12 {
			continue
		}
		confStr := strings.TrimSpace(cols[10])
		if confStr == "" || confStr == "-1" {
			continue
		}
		if v, err := strconv.ParseFloat(confStr, 64); err == nil {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float32(sum / n / 100.0)
}

// confidence blends tesseract word confidence with the text heuristic.
func (t *Tesseract) confidence(ctx context.Context, img []byte, lang, txt string, warns *[]string) float32 {
	heur := heuristicConfidence(txt)
	if !t.cfg.TSVConfidence {
		return heur
	}
	ocrConf, err := t.tesseractTSVConfidence(ctx, img, lang)
	if err != nil {
		*warns = append(*warns, err.Error())
		return heur
	}
	if ocrConf <= 0 {
		return heur
	}
	conf := 0.7*ocrConf + 0.3*heur
	if conf > 1.0 {
		conf = 1.0
	}
	return conf
}
