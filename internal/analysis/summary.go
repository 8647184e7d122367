package analysis

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	maxSummarySentences = 3
	maxKeyPoints        = 5

	summaryPrefix   = "This document contains: "
	summaryMore     = "Additional content includes more details about the document subject matter."
	summaryFallback = "This document appears to contain structured information that requires further analysis."
)

var reSentenceEnd = regexp.MustCompile(`[.!?]+`)

// Sentences splits on runs of terminal punctuation and drops blank fragments.
// Kept fragments are not trimmed.
func Sentences(text string) []string {
	var out []string
	for _, s := range reSentenceEnd.Split(text, -1) {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

// Summarize quotes the first three sentences when they say enough.
func Summarize(text string) string {
	sentences := Sentences(text)
	first := sentences
	if len(first) > maxSummarySentences {
		first = first[:maxSummarySentences]
	}
	joined := strings.Join(first, ". ")
	// runes, not UTF-16 units
	if utf8.RuneCountInString(joined) <= 20 {
		return summaryFallback
	}
	more := ""
	if len(sentences) > maxSummarySentences {
		more = summaryMore
	}
	return summaryPrefix + joined + ". " + more
}

// KeyPoints returns the first five non-blank lines, trimmed.
func KeyPoints(text string) []string {
	out := make([]string, 0, maxKeyPoints)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == maxKeyPoints {
			break
		}
	}
	return out
}
