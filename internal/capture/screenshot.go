package capture

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"time"

	"github.com/silverpine/tapline/internal/model"
)

// CaptureFunc returns an encoded screen image and its format tag. The
// actual grab is an external collaborator; the scheduler only cares
// about its output or failure.
type CaptureFunc func(ctx context.Context) (data, format string, err error)

// StubCapture returns a fixed placeholder payload for platforms without
// a capture backend.
func StubCapture(context.Context) (string, string, error) {
	return base64.StdEncoding.EncodeToString([]byte("tapline placeholder frame")), "png", nil
}

// ScreenshotScheduler invokes a CaptureFunc on a fixed wall-clock
// interval and enqueues the result as a Screenshot event. Capture
// failures are logged and the cadence continues.
type ScreenshotScheduler struct {
	interval time.Duration
	capture  CaptureFunc
	factory  *model.Factory
	queue    Enqueuer
}

// NewScreenshotScheduler validates the interval and wires the scheduler.
func NewScreenshotScheduler(interval time.Duration, capture CaptureFunc, factory *model.Factory, queue Enqueuer) (*ScreenshotScheduler, error) {
	if interval <= 0 {
		return nil, errors.New("capture: screenshot interval must be positive")
	}
	if capture == nil {
		capture = StubCapture
	}
	return &ScreenshotScheduler{
		interval: interval,
		capture:  capture,
		factory:  factory,
		queue:    queue,
	}, nil
}

// Run captures on every tick until the context is cancelled.
func (s *ScreenshotScheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			data, format, err := s.capture(ctx)
			if err != nil {
				slog.Warn("screen capture failed", "error", err)
				continue
			}
			if err := s.queue.Enqueue(s.factory.Screenshot(data, format)); err != nil {
				slog.Warn("enqueue failed, dropping screenshot", "error", err)
			}
		}
	}
}
