package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Report is one SBAR handoff note. Every value is a single string; the
// assessment carries its per-system subsections as embedded newlines rather
// than nested structure, so the client can render and copy it verbatim.
type Report struct {
	Situation      string `json:"situation"`
	Background     string `json:"background"`
	Assessment     string `json:"assessment"`
	Recommendation string `json:"recommendation"`
	AISuggestion   string `json:"ai_suggestion"`
}

var reportKeys = []string{"situation", "background", "assessment", "recommendation", "ai_suggestion"}

// fromMap builds a Report from the model's parsed JSON. Missing keys become
// empty strings; nested objects or lists the model returns despite the
// prompt's formatting constraints are flattened to readable text.
func fromMap(m map[string]any) *Report {
	get := func(key string) string {
		v, ok := m[key]
		if !ok {
			return ""
		}
		return Flatten(v)
	}
	return &Report{
		Situation:      get("situation"),
		Background:     get("background"),
		Assessment:     get("assessment"),
		Recommendation: get("recommendation"),
		AISuggestion:   get("ai_suggestion"),
	}
}

// Flatten renders an arbitrary JSON value as display text. Maps become
// "key: value" lines with sorted keys, lists become bullet lines.
func Flatten(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var lines []string
		for _, k := range keys {
			switch inner := val[k].(type) {
			case []any:
				lines = append(lines, k+":")
				for _, item := range inner {
					lines = append(lines, "  • "+Flatten(item))
				}
			case map[string]any:
				lines = append(lines, k+":")
				innerKeys := make([]string, 0, len(inner))
				for ik := range inner {
					innerKeys = append(innerKeys, ik)
				}
				sort.Strings(innerKeys)
				for _, ik := range innerKeys {
					lines = append(lines, fmt.Sprintf("  • %s: %s", ik, Flatten(inner[ik])))
				}
			default:
				lines = append(lines, fmt.Sprintf("%s: %s", k, Flatten(val[k])))
			}
		}
		return strings.Join(lines, "\n")
	case []any:
		lines := make([]string, len(val))
		for i, item := range val {
			lines[i] = "• " + Flatten(item)
		}
		return strings.Join(lines, "\n")
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}
