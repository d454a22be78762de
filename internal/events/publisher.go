// Package events publishes audit events to NATS. The service runs fine
// without a broker configured; publishing is bookkeeping, never part of the
// user-facing request outcome.
package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	// SubjectReportGenerated fires once per successful SBAR generation.
	SubjectReportGenerated = "sbar.report.generated"
	// SubjectTranscriptProcessed fires once per successful transcript extraction.
	SubjectTranscriptProcessed = "sbar.transcript.processed"
)

// ReportGenerated is the payload for SubjectReportGenerated.
type ReportGenerated struct {
	ReportID  string `json:"report_id"`
	Subject   string `json:"subject"`
	Fields    int    `json:"fields"`
	Timestamp string `json:"timestamp"`
}

// TranscriptProcessed is the payload for SubjectTranscriptProcessed.
type TranscriptProcessed struct {
	Subject       string `json:"subject"`
	Source        string `json:"source"`
	TranscriptLen int    `json:"transcript_len"`
	Fields        int    `json:"fields"`
	Timestamp     string `json:"timestamp"`
}

type Publisher struct {
	conn   *nats.Conn
	logger *slog.Logger
}

func NewPublisher(url, token string, logger *slog.Logger) (*Publisher, error) {
	opts := []nats.Option{
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Publisher{conn: nc, logger: logger}, nil
}

func (p *Publisher) Publish(subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return p.conn.Publish(subject, payload)
}

func (p *Publisher) Close() {
	p.conn.Close()
}
