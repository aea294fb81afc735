// Package events publishes search analytics to NATS. Publishing is best
// effort: callers log failures and carry on.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/rodruizronald/tw-search/internal/telemetry"
)

var tracer = telemetry.GetTracer("tw-search/events")

const (
	SearchPerformedSubject = "jobs.search.performed"
)

// SearchPerformed describes one answered search.
type SearchPerformed struct {
	Query      string            `json:"query"`
	Language   string            `json:"language"`
	Filters    map[string]string `json:"filters,omitempty"`
	Limit      int               `json:"limit"`
	Offset     int               `json:"offset"`
	TotalCount int               `json:"totalCount"`
	Returned   int               `json:"returned"`
	Cached     bool              `json:"cached"`
	RequestID  string            `json:"requestId,omitempty"`
	At         time.Time         `json:"at"`
}

type Publisher interface {
	PublishSearch(ctx context.Context, ev SearchPerformed) error
	Close()
}

type natsPublisher struct {
	conn   *nats.Conn
	logger *zap.Logger
}

// Connect dials NATS with unlimited reconnects.
func Connect(url string, timeout time.Duration) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name("tw-search"),
		nats.Timeout(timeout),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1),
		nats.RetryOnFailedConnect(true),
	}
	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}
	return conn, nil
}

func NewPublisher(conn *nats.Conn, logger *zap.Logger) Publisher {
	return &natsPublisher{conn: conn, logger: logger}
}

func (p *natsPublisher) PublishSearch(ctx context.Context, ev SearchPerformed) error {
	_, span := tracer.Start(ctx, "PublishSearch")
	defer span.End()

	data, err := json.Marshal(ev)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("marshaling search event: %w", err)
	}

	span.SetAttributes(
		telemetry.String("nats.subject", SearchPerformedSubject),
		telemetry.Int("message.size", len(data)),
	)

	if err := p.conn.Publish(SearchPerformedSubject, data); err != nil {
		span.RecordError(err)
		return fmt.Errorf("publishing to NATS: %w", err)
	}

	p.logger.Debug("published search event",
		zap.String("subject", SearchPerformedSubject),
		zap.String("request_id", ev.RequestID))
	return nil
}

func (p *natsPublisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}

// Nop discards events. It stands in when NATS is not configured.
type Nop struct{}

func (Nop) PublishSearch(context.Context, SearchPerformed) error { return nil }
func (Nop) Close()                                               {}
