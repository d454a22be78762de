package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/mapleward/sbard/internal/aijson"
	"github.com/mapleward/sbard/internal/auth"
	"github.com/mapleward/sbard/internal/events"
	"github.com/mapleward/sbard/internal/gemini"
	"github.com/mapleward/sbard/internal/store"
	"github.com/mapleward/sbard/internal/transcript"
)

type generateReportRequest struct {
	PatientData map[string]string `json:"patientData"`
}

type saveDraftRequest struct {
	FormData map[string]string `json:"formData"`
}

type processTranscriptRequest struct {
	Transcript string `json:"transcript"`
	Source     string `json:"source"`
}

// generateReport handles POST /api/v1/reports.
func (s *Server) generateReport(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "you must be logged in"})
		return
	}

	var req generateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if len(req.PatientData) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "patientData is required"})
		return
	}

	rep, err := s.reports.Generate(r.Context(), req.PatientData)
	if err != nil {
		s.logger.Error("report generation failed", "subject", id.Subject, "error", err)
		s.writeAIError(w, err)
		return
	}

	// Bookkeeping only: a usage-accounting failure never fails the request.
	if err := s.usage.RecordUsage(r.Context(), id.Subject, id.Email); err != nil {
		s.logger.Error("failed to record usage", "subject", id.Subject, "error", err)
	}

	if s.events != nil {
		evt := events.ReportGenerated{
			ReportID:  uuid.New().String(),
			Subject:   id.Subject,
			Fields:    len(req.PatientData),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}
		if err := s.events.Publish(events.SubjectReportGenerated, evt); err != nil {
			s.logger.Warn("failed to publish report event", "error", err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"report": rep})
}

// saveDraft handles POST /api/v1/drafts.
func (s *Server) saveDraft(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "you must be logged in"})
		return
	}

	var req saveDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.FormData == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "formData is required"})
		return
	}

	if err := s.drafts.SaveDraft(r.Context(), id.Subject, req.FormData); err != nil {
		s.logger.Error("failed to save draft", "subject", id.Subject, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save draft"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "draft saved"})
}

// loadDraft handles GET /api/v1/drafts.
func (s *Server) loadDraft(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "you must be logged in"})
		return
	}

	formData, err := s.drafts.LoadDraft(r.Context(), id.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "no saved draft found"})
			return
		}
		s.logger.Error("failed to load draft", "subject", id.Subject, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load draft"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"formData": formData})
}

// processTranscript handles POST /api/v1/transcripts.
func (s *Server) processTranscript(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "you must be logged in"})
		return
	}

	var req processTranscriptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Transcript == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "transcript is required"})
		return
	}

	source := transcript.SourceVoice
	if req.Source == string(transcript.SourceText) {
		source = transcript.SourceText
	}

	fields, err := s.transcripts.Process(r.Context(), req.Transcript, source)
	if err != nil {
		s.logger.Error("transcript processing failed", "subject", id.Subject, "error", err)
		s.writeAIError(w, err)
		return
	}

	if s.events != nil {
		evt := events.TranscriptProcessed{
			Subject:       id.Subject,
			Source:        string(source),
			TranscriptLen: len(req.Transcript),
			Fields:        len(fields),
			Timestamp:     time.Now().UTC().Format(time.RFC3339),
		}
		if err := s.events.Publish(events.SubjectTranscriptProcessed, evt); err != nil {
			s.logger.Warn("failed to publish transcript event", "error", err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"formData": fields})
}

// writeAIError maps a failure from the generation path onto the response.
// Upstream errors are never retried; the user retries by hand.
func (s *Server) writeAIError(w http.ResponseWriter, err error) {
	var apiErr *gemini.APIError
	var malformed *aijson.MalformedError
	switch {
	case errors.Is(err, gemini.ErrNoAPIKey):
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "AI service is not configured"})
	case errors.As(err, &malformed):
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "the AI returned an invalid response, please try again"})
	case errors.As(err, &apiErr):
		msg := apiErr.Message
		if msg == "" {
			msg = "failed to get a response from the AI, please try again"
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": msg})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get a response from the AI, please try again"})
	}
}
