package relay

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/silverpine/tapline/internal/config"
	"github.com/silverpine/tapline/internal/model"
	"github.com/silverpine/tapline/internal/sink"
	"github.com/silverpine/tapline/internal/sink/amqp"
	"github.com/silverpine/tapline/internal/sink/httppost"
)

// Handler owns the delivery sinks and applies the per-event policy:
// one broker attempt, then retried HTTP attempts, then log-only.
// Read-only after construction; safe for concurrent use, though the
// dispatcher invokes it sequentially.
type Handler struct {
	broker     sink.Sink // nil when unconfigured or unreachable at startup
	http       sink.Sink // nil when no output URL is configured
	maxRetries int
	retryDelay time.Duration
}

// NewHandler builds sinks from configuration. A broker that cannot be
// reached degrades the handler to HTTP-only instead of failing startup.
func NewHandler(cfg config.Config) *Handler {
	var broker sink.Sink
	if cfg.BrokerURL != "" {
		b, err := amqp.New(cfg.BrokerURL, cfg.BrokerExchange, cfg.BrokerRoutingKey)
		if err != nil {
			slog.Warn("broker unavailable, delivering over HTTP only", "error", err)
		} else {
			slog.Info("broker connected", "exchange", cfg.BrokerExchange, "routing_key", cfg.BrokerRoutingKey)
			broker = b
		}
	}

	var httpSink sink.Sink
	if cfg.OutputURL != "" {
		httpSink = httppost.New(cfg.OutputURL, cfg.APIKey)
	}

	return NewHandlerWithSinks(broker, httpSink, cfg.MaxRetries, cfg.RetryDelay)
}

// NewHandlerWithSinks wires explicit sinks; either may be nil.
func NewHandlerWithSinks(broker, http sink.Sink, maxRetries int, retryDelay time.Duration) *Handler {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Handler{broker: broker, http: http, maxRetries: maxRetries, retryDelay: retryDelay}
}

// Deliver attempts delivery of a single event. It returns nil on success
// and on the no-sink path (best-effort: the event is logged as unsent,
// not treated as a pipeline error). Otherwise it returns the most recent
// failure reason after the fallback chain is exhausted.
func (h *Handler) Deliver(ctx context.Context, event model.Event) error {
	if h.broker == nil && h.http == nil {
		payload, _ := json.Marshal(event)
		slog.Info("no sink configured, event unsent", "event", string(payload))
		return nil
	}

	var lastErr error

	if h.broker != nil {
		err := h.broker.Attempt(ctx, event)
		if err == nil {
			return nil
		}
		slog.Warn("broker delivery failed, falling back", "type", event.Type, "error", err)
		lastErr = err
	}

	if h.http != nil {
		for attempt := 1; attempt <= h.maxRetries; attempt++ {
			err := h.http.Attempt(ctx, event)
			if err == nil {
				return nil
			}
			lastErr = err
			slog.Warn("http delivery attempt failed",
				"type", event.Type, "attempt", attempt, "max_retries", h.maxRetries, "error", err)

			if attempt < h.maxRetries {
				if err := sleep(ctx, h.retryDelay); err != nil {
					return err
				}
			}
		}
	}

	return lastErr
}

// Close releases both sinks.
func (h *Handler) Close() error {
	var errs []error
	if h.broker != nil {
		errs = append(errs, h.broker.Close())
	}
	if h.http != nil {
		errs = append(errs, h.http.Close())
	}
	return errors.Join(errs...)
}

// sleep waits for d or until the context is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
