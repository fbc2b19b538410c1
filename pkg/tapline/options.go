package tapline

import (
	"time"

	"github.com/google/uuid"
)

type options struct {
	outputURL string
	apiKey    string

	brokerURL        string
	brokerExchange   string
	brokerRoutingKey string

	sessionID string
	deviceID  string

	batchSize     int
	batchTimeout  time.Duration
	maxRetries    int
	retryDelay    time.Duration
	queueCapacity int
}

// Option configures a Relay.
type Option func(*options)

// WithOutputURL enables the HTTP sink targeting the given URL.
func WithOutputURL(url string) Option {
	return func(o *options) { o.outputURL = url }
}

// WithAPIKey attaches a bearer token to HTTP deliveries.
func WithAPIKey(key string) Option {
	return func(o *options) { o.apiKey = key }
}

// WithBroker enables the AMQP sink. The exchange is declared as a topic
// exchange at Open time; an unreachable broker degrades the relay to
// HTTP-only rather than failing Open.
func WithBroker(url, exchange, routingKey string) Option {
	return func(o *options) {
		o.brokerURL = url
		o.brokerExchange = exchange
		o.brokerRoutingKey = routingKey
	}
}

// WithIdentity sets the session and device identifiers stamped onto
// every event. Default: a generated session UUID and "default_device".
func WithIdentity(sessionID, deviceID string) Option {
	return func(o *options) {
		o.sessionID = sessionID
		o.deviceID = deviceID
	}
}

// WithBatchSize sets the flush threshold. Default: 100.
func WithBatchSize(n int) Option {
	return func(o *options) { o.batchSize = n }
}

// WithBatchTimeout sets the idle period after which a partial batch is
// flushed. Default: 5s.
func WithBatchTimeout(d time.Duration) Option {
	return func(o *options) { o.batchTimeout = d }
}

// WithRetries sets the HTTP attempt limit and the delay between
// attempts. Default: 3 attempts, 1s apart.
func WithRetries(maxRetries int, delay time.Duration) Option {
	return func(o *options) {
		o.maxRetries = maxRetries
		o.retryDelay = delay
	}
}

// WithQueueCapacity sets the bounded queue capacity. Enqueue blocks when
// the queue is full. Default: 1000.
func WithQueueCapacity(n int) Option {
	return func(o *options) { o.queueCapacity = n }
}

func defaultOptions() options {
	return options{
		sessionID:     uuid.NewString(),
		deviceID:      "default_device",
		batchSize:     100,
		batchTimeout:  5 * time.Second,
		maxRetries:    3,
		retryDelay:    time.Second,
		queueCapacity: 1000,
	}
}
