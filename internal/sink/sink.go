package sink

import (
	"context"

	"github.com/silverpine/tapline/internal/model"
)

// Sink is a delivery channel capable of attempting to send a single
// event to a downstream destination. A runtime-absent channel is a nil
// Sink held by the handler, not a separate implementation.
type Sink interface {
	// Name identifies the channel in logs ("broker", "http").
	Name() string

	// Attempt makes exactly one delivery attempt. Retry policy belongs
	// to the caller.
	Attempt(ctx context.Context, event model.Event) error

	// Close releases the underlying connection, if any.
	Close() error
}
