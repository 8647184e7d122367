package analysis

import (
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/legaldocs/constants"
)

const minAnalyzableLength = 50

// Verdict is the authenticity outcome of the rule set.
type Verdict struct {
	Authenticity constants.Authenticity
	Confidence   float64
	Corrections  []string
}

var (
	correctionsInsufficient = []string{
		"Document appears to have insufficient content for proper analysis",
	}
	correctionsNeedsOCR = []string{
		"This document requires proper OCR processing",
		"For accurate analysis, use specialized OCR tools",
		"Consider using Google Vision API, AWS Textract, or Tesseract.js",
	}
	correctionsError = []string{
		"There was an error processing this document",
		"Try uploading a higher quality image",
		"Ensure the document is clearly visible and not corrupted",
	}
	correctionsUnreadable = []string{
		"Document could not be read properly",
		"Try uploading a clearer image or different file format",
		"Ensure document is not corrupted",
	}
)

// Judge applies the verdict rules in order to non-empty text.
func Judge(text string) Verdict {
	switch {
	// Lengths are in runes: an emoji counts once, not as a UTF-16 surrogate pair.
	case utf8.RuneCountInString(text) < minAnalyzableLength:
		return Verdict{constants.AuthenticityInsufficient, 0.3, clone(correctionsInsufficient)}
	case strings.Contains(text, "[PDF Content]") || strings.Contains(text, "[Image OCR]"):
		return Verdict{constants.AuthenticityNeedsOCR, 0.6, clone(correctionsNeedsOCR)}
	case strings.Contains(text, "Error processing") || strings.Contains(text, "OCR Error"):
		return Verdict{constants.AuthenticityError, 0.2, clone(correctionsError)}
	default:
		return Verdict{constants.AuthenticityComplete, 0.85, []string{}}
	}
}

func unreadableVerdict() Verdict {
	return Verdict{constants.AuthenticityUnreadable, 0.1, clone(correctionsUnreadable)}
}

func processingErrorVerdict() Verdict {
	return Verdict{constants.AuthenticityError, 0.2, clone(correctionsError)}
}

func clone(s []string) []string {
	return append([]string{}, s...)
}
