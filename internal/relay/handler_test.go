package relay

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/silverpine/tapline/internal/model"
)

// scriptedSink fails the first failures attempts, then succeeds.
type scriptedSink struct {
	name     string
	failures int
	err      error

	mu       sync.Mutex
	attempts int
}

func (s *scriptedSink) Name() string { return s.name }

func (s *scriptedSink) Attempt(_ context.Context, _ model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts++
	if s.attempts <= s.failures {
		return s.err
	}
	return nil
}

func (s *scriptedSink) Close() error { return nil }

func (s *scriptedSink) attemptCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}

func alwaysFailing(name string, err error) *scriptedSink {
	return &scriptedSink{name: name, failures: 1 << 30, err: err}
}

func testEvent() model.Event {
	f := model.NewFactory("s1", "d1")
	return f.KeyPress("A", nil)
}

func TestBrokerSuccessSkipsHTTP(t *testing.T) {
	broker := &scriptedSink{name: "broker"}
	httpSink := &scriptedSink{name: "http"}
	h := NewHandlerWithSinks(broker, httpSink, 3, time.Millisecond)

	if err := h.Deliver(context.Background(), testEvent()); err != nil {
		t.Fatalf("Deliver error: %v", err)
	}
	if broker.attemptCount() != 1 {
		t.Errorf("broker attempts = %d, want 1", broker.attemptCount())
	}
	if httpSink.attemptCount() != 0 {
		t.Errorf("http attempts = %d, want 0", httpSink.attemptCount())
	}
}

func TestBrokerFailureFallsBackToHTTP(t *testing.T) {
	broker := alwaysFailing("broker", errors.New("publish refused"))
	// HTTP succeeds on the 2nd attempt.
	httpSink := &scriptedSink{name: "http", failures: 1, err: errors.New("HTTP 503")}
	h := NewHandlerWithSinks(broker, httpSink, 3, time.Millisecond)

	if err := h.Deliver(context.Background(), testEvent()); err != nil {
		t.Fatalf("expected delivery via HTTP fallback, got %v", err)
	}
	if broker.attemptCount() != 1 {
		t.Errorf("broker attempts = %d, want exactly 1 (no broker retry)", broker.attemptCount())
	}
	if httpSink.attemptCount() != 2 {
		t.Errorf("http attempts = %d, want 2", httpSink.attemptCount())
	}
}

func TestExhaustionReportsLastHTTPReason(t *testing.T) {
	brokerErr := errors.New("publish refused")
	httpErr := errors.New("HTTP 500")
	broker := alwaysFailing("broker", brokerErr)
	httpSink := alwaysFailing("http", httpErr)
	h := NewHandlerWithSinks(broker, httpSink, 3, time.Millisecond)

	err := h.Deliver(context.Background(), testEvent())
	if !errors.Is(err, httpErr) {
		t.Fatalf("terminal error = %v, want the HTTP reason", err)
	}
	if broker.attemptCount() != 1 {
		t.Errorf("broker attempts = %d, want 1", broker.attemptCount())
	}
	if httpSink.attemptCount() != 3 {
		t.Errorf("http attempts = %d, want exactly max_retries (3)", httpSink.attemptCount())
	}
}

func TestNoSinksIsBestEffortSuccess(t *testing.T) {
	h := NewHandlerWithSinks(nil, nil, 3, time.Millisecond)
	if err := h.Deliver(context.Background(), testEvent()); err != nil {
		t.Errorf("no-sink delivery should succeed (log-only), got %v", err)
	}
}

func TestBrokerOnlyFailureReportsBrokerReason(t *testing.T) {
	brokerErr := errors.New("publish refused")
	broker := alwaysFailing("broker", brokerErr)
	h := NewHandlerWithSinks(broker, nil, 3, time.Millisecond)

	if err := h.Deliver(context.Background(), testEvent()); !errors.Is(err, brokerErr) {
		t.Errorf("error = %v, want broker reason", err)
	}
}

func TestHTTPOnlySuccess(t *testing.T) {
	httpSink := &scriptedSink{name: "http"}
	h := NewHandlerWithSinks(nil, httpSink, 3, time.Millisecond)

	if err := h.Deliver(context.Background(), testEvent()); err != nil {
		t.Fatalf("Deliver error: %v", err)
	}
	if httpSink.attemptCount() != 1 {
		t.Errorf("http attempts = %d, want 1", httpSink.attemptCount())
	}
}

func TestRetryDelayBetweenAttempts(t *testing.T) {
	httpSink := &scriptedSink{name: "http", failures: 2, err: errors.New("HTTP 502")}
	h := NewHandlerWithSinks(nil, httpSink, 3, 30*time.Millisecond)

	start := time.Now()
	if err := h.Deliver(context.Background(), testEvent()); err != nil {
		t.Fatalf("Deliver error: %v", err)
	}
	// Two failed attempts mean two delays before the third succeeds.
	if elapsed := time.Since(start); elapsed < 60*time.Millisecond {
		t.Errorf("elapsed = %v, want >= 60ms of retry delay", elapsed)
	}
}

func TestRetrySleepIsCancellable(t *testing.T) {
	httpSink := alwaysFailing("http", errors.New("HTTP 500"))
	h := NewHandlerWithSinks(nil, httpSink, 3, 10*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	done := make(chan error, 1)
	go func() { done <- h.Deliver(ctx, testEvent()) }()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Deliver did not return after cancellation during retry delay")
	}
}
