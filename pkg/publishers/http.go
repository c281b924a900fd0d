package publishers

import (
	"context"
	"fmt"

	"github.com/samvad-hq/login-probe/internal/logger"
	"github.com/samvad-hq/login-probe/pkg/httpclient"
)

// Headers stamped on every webhook delivery.
const (
	HeaderEventID      = "X-Event-ID"
	HeaderEventOutcome = "X-Event-Outcome"
)

type httpPublisher struct {
	id      string
	method  string
	url     string
	headers map[string]string
	client  httpclient.Client
	log     logger.Logger
}

func newHTTPPublisher(_ context.Context, cfg PublisherConfig, log logger.Logger) (Publisher, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("publisher %q missing http configuration", cfg.ID)
	}
	return &httpPublisher{
		id:      cfg.ID,
		method:  cfg.HTTP.Method,
		url:     cfg.HTTP.URL,
		headers: cfg.HTTP.Headers,
		client:  httpclient.NewRestyClient(cfg.HTTP.Timeout()),
		log:     log,
	}, nil
}

func (h *httpPublisher) ID() string   { return h.id }
func (h *httpPublisher) Type() string { return TypeHTTP }

// Publish sends evt as JSON; configured headers cannot override the event headers.
func (h *httpPublisher) Publish(ctx context.Context, evt Event) error {
	headers := make(map[string]string, len(h.headers)+2)
	for k, v := range h.headers {
		headers[k] = v
	}
	headers[HeaderEventID] = evt.ProbeID
	headers[HeaderEventOutcome] = evt.Outcome()

	resp, err := h.client.Do(ctx, h.method, h.url, headers, evt)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	if err := httpclient.CheckStatus(resp); err != nil {
		return err
	}
	h.log.DebugObj("http publisher delivered event", "publisher_http_delivery", map[string]any{
		"publisher_id": h.id,
		"status":       resp.StatusCode(),
	})
	return nil
}
