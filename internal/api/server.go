package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mapleward/sbard/internal/auth"
	"github.com/mapleward/sbard/internal/report"
	"github.com/mapleward/sbard/internal/transcript"
)

// ReportGenerator produces an SBAR report from patient data.
type ReportGenerator interface {
	Generate(ctx context.Context, patientData map[string]string) (*report.Report, error)
}

// TranscriptProcessor turns a raw transcript into form-field values.
type TranscriptProcessor interface {
	Process(ctx context.Context, raw string, source transcript.Source) (map[string]string, error)
}

// DraftStore persists one form draft per user.
type DraftStore interface {
	SaveDraft(ctx context.Context, userID string, formData map[string]string) error
	LoadDraft(ctx context.Context, userID string) (map[string]string, error)
}

// UsageRecorder bumps the per-user generation counter.
type UsageRecorder interface {
	RecordUsage(ctx context.Context, userID, email string) error
}

// Publisher emits audit events. May be absent (nil) when no broker is
// configured.
type Publisher interface {
	Publish(subject string, data any) error
}

// Deps carries the server's injected collaborators, constructed once at
// process startup.
type Deps struct {
	Reports     ReportGenerator
	Transcripts TranscriptProcessor
	Drafts      DraftStore
	Usage       UsageRecorder
	Events      Publisher
	Logger      *slog.Logger
}

type Server struct {
	router *chi.Mux
	http   *http.Server
	port   int
	logger *slog.Logger

	reports     ReportGenerator
	transcripts TranscriptProcessor
	drafts      DraftStore
	usage       UsageRecorder
	events      Publisher
}

func NewServer(port int, jwtSecret string, deps Deps) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		router:      router,
		port:        port,
		logger:      logger,
		reports:     deps.Reports,
		transcripts: deps.Transcripts,
		drafts:      deps.Drafts,
		usage:       deps.Usage,
		events:      deps.Events,
	}

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	})

	router.Get("/health", s.health)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware(jwtSecret))
		r.Post("/reports", s.generateReport)
		r.Post("/drafts", s.saveDraft)
		r.Get("/drafts", s.loadDraft)
		r.Post("/transcripts", s.processTranscript)
	})

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("API server starting", "addr", addr)
	s.http = &http.Server{Addr: addr, Handler: s.router}
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
