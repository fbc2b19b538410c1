package relay

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/silverpine/tapline/internal/model"
)

const (
	defaultBatchSize     = 100
	defaultBatchTimeout  = 5 * time.Second
	defaultQueueCapacity = 1000
)

// ErrClosed is returned by Enqueue after Close has been called.
var ErrClosed = errors.New("relay: queue closed")

// Deliverer is the dispatcher's delivery dependency, implemented by
// Handler.
type Deliverer interface {
	Deliver(ctx context.Context, event model.Event) error
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithBatchSize sets the flush threshold. Default: 100.
func WithBatchSize(n int) DispatcherOption {
	return func(d *Dispatcher) { d.batchSize = n }
}

// WithBatchTimeout sets the idle period after which a partial batch is
// flushed. Default: 5s.
func WithBatchTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) { d.batchTimeout = timeout }
}

// WithQueueCapacity sets the bounded queue capacity. Default: 1000.
func WithQueueCapacity(n int) DispatcherOption {
	return func(d *Dispatcher) { d.queueCapacity = n }
}

// Dispatcher drains the bounded producer queue into batches and flushes
// them through a Deliverer when the batch fills or the queue goes idle.
// Exactly one goroutine runs the consume loop, so the batch buffer needs
// no locking.
type Dispatcher struct {
	handler       Deliverer
	queue         chan model.Event
	batchSize     int
	batchTimeout  time.Duration
	queueCapacity int

	mu     sync.RWMutex
	closed bool
}

// NewDispatcher creates a Dispatcher. Run must be started for events to
// drain.
func NewDispatcher(handler Deliverer, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		handler:       handler,
		batchSize:     defaultBatchSize,
		batchTimeout:  defaultBatchTimeout,
		queueCapacity: defaultQueueCapacity,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.batchSize < 1 {
		d.batchSize = 1
	}
	d.queue = make(chan model.Event, d.queueCapacity)
	return d
}

// Enqueue hands an event to the dispatcher. It blocks while the queue is
// full — backpressure slows the producer instead of growing memory.
// Returns ErrClosed once Close has been called; producers log and carry
// on, they never crash on a dropped receiver.
func (d *Dispatcher) Enqueue(event model.Event) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}
	d.queue <- event
	return nil
}

// Close stops accepting events. The running loop drains whatever is
// queued, flushes the final batch, and returns. Safe to call more than
// once.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	close(d.queue)
}

// Run is the single-consumer loop. On each iteration it waits for an
// event or for the idle timeout, whichever comes first. Queue closure is
// the sole normal termination path: remaining events are drained, the
// final batch flushed, and nil returned. Context cancellation flushes
// the buffered batch (no mid-batch abort) and returns the context error.
func (d *Dispatcher) Run(ctx context.Context) error {
	batch := make([]model.Event, 0, d.batchSize)
	timer := time.NewTimer(d.batchTimeout)
	defer timer.Stop()

	for {
		select {
		case event, ok := <-d.queue:
			if !ok {
				d.flush(ctx, &batch)
				return nil
			}
			batch = append(batch, event)
			if len(batch) >= d.batchSize {
				d.flush(ctx, &batch)
			}

		case <-timer.C:
			if len(batch) > 0 {
				d.flush(ctx, &batch)
			}

		case <-ctx.Done():
			d.flush(context.WithoutCancel(ctx), &batch)
			return ctx.Err()
		}

		// Re-arm the idle timer after every receive attempt.
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(d.batchTimeout)
	}
}

// flush delivers the batch sequentially in enqueue order, then clears it.
// Individual delivery failures are logged and never abort the remaining
// events or the loop.
func (d *Dispatcher) flush(ctx context.Context, batch *[]model.Event) {
	if len(*batch) == 0 {
		return
	}
	slog.Debug("flushing batch", "events", len(*batch))
	for _, event := range *batch {
		if err := d.handler.Deliver(ctx, event); err != nil {
			slog.Warn("event delivery failed, dropping", "type", event.Type, "error", err)
		}
	}
	*batch = (*batch)[:0]
}
