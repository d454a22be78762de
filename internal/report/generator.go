package report

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mapleward/sbard/internal/aijson"
)

// LLM is the single-turn completion surface the generator needs.
type LLM interface {
	Generate(ctx context.Context, prompt string, jsonOnly bool) (string, error)
}

type Generator struct {
	llm    LLM
	logger *slog.Logger
}

func NewGenerator(llm LLM, logger *slog.Logger) *Generator {
	return &Generator{llm: llm, logger: logger}
}

// Generate turns structured patient data into an SBAR report via one model
// call. The model's reply is parsed defensively; a transport failure and an
// unparseable payload surface as different error types.
func (g *Generator) Generate(ctx context.Context, patientData map[string]string) (*Report, error) {
	prompt := BuildPrompt(patientData)

	g.logger.Info("generating sbar report",
		"fields", len(patientData),
		"prompt_len", len(prompt),
	)

	raw, err := g.llm.Generate(ctx, prompt, true)
	if err != nil {
		return nil, fmt.Errorf("llm generation: %w", err)
	}

	var parsed map[string]any
	if err := aijson.Unmarshal(raw, &parsed); err != nil {
		g.logger.Error("failed to parse report response",
			"error", err,
			"raw", raw,
		)
		return nil, fmt.Errorf("parse report: %w", err)
	}

	rep := fromMap(parsed)

	g.logger.Info("sbar report generated",
		"situation_len", len(rep.Situation),
		"assessment_len", len(rep.Assessment),
	)

	return rep, nil
}
