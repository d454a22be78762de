// Package aijson parses JSON out of generative-model output. Model replies
// are untrusted text: even with an application/json response hint some models
// wrap the payload in markdown code fences or return prose. Every endpoint
// that expects structured output goes through Unmarshal so the cleanup rule
// stays in one place.
package aijson

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MalformedError means the model's reply was not valid JSON after the cleanup
// pass. It carries the raw text for diagnostics. This is distinct from an
// upstream transport failure: the HTTP call succeeded, the payload didn't.
type MalformedError struct {
	Raw string
	Err error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed model response: %v", e.Err)
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}

// Unmarshal strips surrounding whitespace and a single markdown code fence
// (with an optional language tag, e.g. ```json) from raw, then makes exactly
// one parse attempt into v. The cleanup is deterministic so a given raw
// string either always parses or always fails.
func Unmarshal(raw string, v any) error {
	text := strings.TrimSpace(raw)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// Drop a language tag on the opening fence line.
		if i := strings.IndexByte(text, '\n'); i >= 0 {
			first := strings.TrimSpace(text[:i])
			if first == "" || isLanguageTag(first) {
				text = text[i+1:]
			}
		}
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}

	if err := json.Unmarshal([]byte(text), v); err != nil {
		return &MalformedError{Raw: raw, Err: err}
	}
	return nil
}

func isLanguageTag(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
