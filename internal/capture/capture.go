package capture

import (
	"context"
	"log/slog"

	"github.com/silverpine/tapline/internal/model"
)

// Enqueuer accepts events from producers. Implemented by the relay
// dispatcher.
type Enqueuer interface {
	Enqueue(event model.Event) error
}

// Source is an external producer of activity events. Stream blocks until
// the context is cancelled or the source is exhausted. Sources own their
// threading: emit may be called from whatever goroutine (or OS thread) a
// native hook library requires.
type Source interface {
	Stream(ctx context.Context, emit func(model.Event)) error
}

// Filter decides whether an event may leave the machine. The filtering
// logic itself (password fields, excluded applications) lives outside
// the pipeline; the pump only applies the verdict.
type Filter interface {
	Allows(event model.Event) bool
}

// Options hold capture-side policy for a Pump.
type Options struct {
	// TrackMouseMove controls whether MouseMove events are forwarded at
	// all. Off by default: movement is high-volume and rarely useful.
	TrackMouseMove bool

	// Filter, when non-nil, is consulted for every event.
	Filter Filter
}

// Pump drains a Source into the bounded queue, applying capture-side
// policy. A failed enqueue (receiver gone) is logged and the producer
// keeps running.
type Pump struct {
	source Source
	queue  Enqueuer
	opts   Options
}

// NewPump wires a source to the queue.
func NewPump(source Source, queue Enqueuer, opts Options) *Pump {
	return &Pump{source: source, queue: queue, opts: opts}
}

// Run streams events until the source stops or the context is cancelled.
func (p *Pump) Run(ctx context.Context) error {
	return p.source.Stream(ctx, func(event model.Event) {
		if event.Type == model.MouseMove && !p.opts.TrackMouseMove {
			return
		}
		if p.opts.Filter != nil && !p.opts.Filter.Allows(event) {
			return
		}
		if err := p.queue.Enqueue(event); err != nil {
			slog.Warn("enqueue failed, dropping event", "type", event.Type, "error", err)
		}
	})
}
