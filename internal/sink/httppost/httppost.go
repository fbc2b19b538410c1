package httppost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/silverpine/tapline/internal/model"
)

const defaultTimeout = 30 * time.Second

// StatusError represents a non-2xx HTTP response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d", e.Code)
}

// Option configures Sink behavior.
type Option func(*Sink)

// WithTimeout sets the HTTP client timeout. Default: 30s.
func WithTimeout(d time.Duration) Option {
	return func(s *Sink) { s.client.Timeout = d }
}

// Sink POSTs one JSON-encoded event per attempt to a fixed URL. A bearer
// token header is attached when an API key is configured. Any 2xx status
// is success; everything else is a *StatusError.
type Sink struct {
	client *http.Client
	url    string
	apiKey string
}

// New creates an HTTP sink targeting the given URL.
func New(url, apiKey string, opts ...Option) *Sink {
	s := &Sink{
		client: &http.Client{Timeout: defaultTimeout},
		url:    url,
		apiKey: apiKey,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Sink) Name() string { return "http" }

// Attempt makes a single POST. No retries here — the output handler owns
// the retry schedule.
func (s *Sink) Attempt(ctx context.Context, event model.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("httppost: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("httppost: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("httppost: %w", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return &StatusError{Code: resp.StatusCode}
}

func (s *Sink) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
