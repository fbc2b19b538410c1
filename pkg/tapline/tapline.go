package tapline

import (
	"context"
	"errors"

	"github.com/silverpine/tapline/internal/config"
	"github.com/silverpine/tapline/internal/model"
	"github.com/silverpine/tapline/internal/relay"
)

// Button identifies a pointer button.
type Button = model.Button

// Pointer button values.
const (
	ButtonLeft    = model.ButtonLeft
	ButtonRight   = model.ButtonRight
	ButtonMiddle  = model.ButtonMiddle
	ButtonUnknown = model.ButtonUnknown
)

// Relay batches recorded events and delivers them in the background.
// Record methods are safe to call from multiple goroutines; they block
// only when the bounded queue is full.
type Relay struct {
	factory    *model.Factory
	handler    *relay.Handler
	dispatcher *relay.Dispatcher
	done       chan error
}

// Open builds the configured sinks, starts the consumer loop, and
// returns a ready Relay. With neither an output URL nor a broker
// configured the relay still works, logging events instead of sending
// them.
func Open(opts ...Option) (*Relay, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	handler := relay.NewHandler(config.Config{
		OutputURL:        o.outputURL,
		APIKey:           o.apiKey,
		BrokerURL:        o.brokerURL,
		BrokerExchange:   o.brokerExchange,
		BrokerRoutingKey: o.brokerRoutingKey,
		MaxRetries:       o.maxRetries,
		RetryDelay:       o.retryDelay,
	})

	dispatcher := relay.NewDispatcher(handler,
		relay.WithBatchSize(o.batchSize),
		relay.WithBatchTimeout(o.batchTimeout),
		relay.WithQueueCapacity(o.queueCapacity),
	)

	r := &Relay{
		factory:    model.NewFactory(o.sessionID, o.deviceID),
		handler:    handler,
		dispatcher: dispatcher,
		done:       make(chan error, 1),
	}
	go func() { r.done <- r.dispatcher.Run(context.Background()) }()
	return r, nil
}

// KeyPress records a key going down with the given held modifiers.
func (r *Relay) KeyPress(key string, modifiers ...string) error {
	return r.dispatcher.Enqueue(r.factory.KeyPress(key, modifiers))
}

// KeyRelease records a key coming up with the given held modifiers.
func (r *Relay) KeyRelease(key string, modifiers ...string) error {
	return r.dispatcher.Enqueue(r.factory.KeyRelease(key, modifiers))
}

// Click records a pointer button press at the given position.
func (r *Relay) Click(button Button, x, y float64) error {
	return r.dispatcher.Enqueue(r.factory.MouseClick(button, x, y))
}

// Move records a pointer movement.
func (r *Relay) Move(x, y float64) error {
	return r.dispatcher.Enqueue(r.factory.MouseMove(x, y))
}

// Scroll records scroll travel at the given position.
func (r *Relay) Scroll(deltaX, deltaY, x, y float64) error {
	return r.dispatcher.Enqueue(r.factory.MouseScroll(deltaX, deltaY, x, y))
}

// Screenshot records an encoded screen capture.
func (r *Relay) Screenshot(data, format string) error {
	return r.dispatcher.Enqueue(r.factory.Screenshot(data, format))
}

// Close stops intake, waits for the queue to drain and the final batch
// to flush, then releases the sinks. The Relay must not be used after
// Close.
func (r *Relay) Close() error {
	r.dispatcher.Close()
	runErr := <-r.done
	return errors.Join(runErr, r.handler.Close())
}
