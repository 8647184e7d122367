// Package report validates analysis reports against a JSON schema before they are stored or served.
package report

import (
	"github.com/joseph-ayodele/legaldocs/constants"
)

func entityList() map[string]any {
	return map[string]any{
		"type":        "array",
		"items":       map[string]any{"type": "string", "minLength": 1},
		"maxItems":    5,
		"uniqueItems": true,
	}
}

// Schema returns the JSON schema for analysis.Report.
func Schema() map[string]any {
	return map[string]any{
		"$schema":              "http://json-schema.org/draft-07/schema#",
		"type":                 "object",
		"additionalProperties": false,
		"required": []any{
			"documentType", "authenticity", "summary", "keyPoints",
			"entities", "corrections", "confidenceScore",
		},
		"properties": map[string]any{
			"documentType": map[string]any{"type": "string", "minLength": 1},
			"authenticity": map[string]any{
				"type": "string",
				"enum": toAny(constants.AuthenticityLabels()),
			},
			"summary": map[string]any{"type": "string"},
			"keyPoints": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "string", "minLength": 1},
				"maxItems": 5,
			},
			"entities": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"required":             []any{"names", "dates", "amounts", "locations"},
				"properties": map[string]any{
					"names":     entityList(),
					"dates":     entityList(),
					"amounts":   entityList(),
					"locations": entityList(),
				},
			},
			"corrections": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"confidenceScore": map[string]any{
				"type":    "number",
				"minimum": 0,
				"maximum": 1,
			},
		},
	}
}

func toAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
