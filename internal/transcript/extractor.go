// Package transcript turns a noisy voice or free-text nursing report into
// structured form-field values via two chained model calls: a terminology
// correction pass, then a field extraction pass. There is no partial-result
// fallback: if either stage fails the whole operation fails.
package transcript

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/mapleward/sbard/internal/aijson"
	"github.com/mapleward/sbard/internal/report"
)

// Source labels where the raw text came from; it only changes the wording of
// the correction prompt.
type Source string

const (
	SourceVoice Source = "voice"
	SourceText  Source = "text"
)

type LLM interface {
	Generate(ctx context.Context, prompt string, jsonOnly bool) (string, error)
}

type Extractor struct {
	llm    LLM
	logger *slog.Logger
}

func NewExtractor(llm LLM, logger *slog.Logger) *Extractor {
	return &Extractor{llm: llm, logger: logger}
}

// Process runs both stages and returns the extracted form-field mapping.
// Only keys from FieldKeys appear in the result.
func (e *Extractor) Process(ctx context.Context, raw string, source Source) (map[string]string, error) {
	e.logger.Info("processing transcript",
		"source", string(source),
		"transcript_len", len(raw),
	)

	cleaned, err := e.clean(ctx, raw, source)
	if err != nil {
		return nil, fmt.Errorf("clean transcript: %w", err)
	}

	fields, err := e.extractFields(ctx, cleaned)
	if err != nil {
		return nil, fmt.Errorf("extract fields: %w", err)
	}

	e.logger.Info("transcript processed", "fields", len(fields))
	return fields, nil
}

func (e *Extractor) clean(ctx context.Context, raw string, source Source) (string, error) {
	label := "voice-to-text transcript"
	if source == SourceText {
		label = "free-text report"
	}

	prompt := fmt.Sprintf(cleaningPromptTemplate, label, raw)
	cleaned, err := e.llm.Generate(ctx, prompt, false)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(cleaned), nil
}

func (e *Extractor) extractFields(ctx context.Context, cleaned string) (map[string]string, error) {
	prompt := fmt.Sprintf(extractionPromptTemplate, strings.Join(FieldKeys, ", "), cleaned)

	raw, err := e.llm.Generate(ctx, prompt, true)
	if err != nil {
		return nil, err
	}

	var parsed map[string]any
	if err := aijson.Unmarshal(raw, &parsed); err != nil {
		e.logger.Error("failed to parse extraction response",
			"error", err,
			"raw", raw,
		)
		return nil, err
	}

	// Keep known keys only; the vocabulary is the contract with the form.
	fields := make(map[string]string, len(parsed))
	for _, key := range FieldKeys {
		v, ok := parsed[key]
		if !ok {
			continue
		}
		if s := report.Flatten(v); s != "" {
			fields[key] = s
		}
	}

	if dropped := len(parsed) - len(fields); dropped > 0 {
		keys := make([]string, 0, len(parsed))
		for k := range parsed {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		e.logger.Warn("extraction returned unknown or empty keys", "dropped", dropped, "keys", strings.Join(keys, ","))
	}

	return fields, nil
}
