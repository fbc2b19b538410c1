package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Config holds all tapline configuration.
type Config struct {
	// HTTP sink.
	OutputURL string
	APIKey    string

	// Broker sink. Empty BrokerURL disables the broker entirely.
	BrokerURL        string
	BrokerExchange   string
	BrokerRoutingKey string

	// Identity stamped onto every event.
	SessionID string
	DeviceID  string

	// Capture side.
	Source             string
	TrackMouseMove     bool
	ScreenshotEnabled  bool
	ScreenshotInterval time.Duration
	ExcludedApps       []string

	// Batching and delivery.
	BatchSize     int
	BatchTimeout  time.Duration
	MaxRetries    int
	RetryDelay    time.Duration
	QueueCapacity int

	// Logging.
	LogLevel  string
	LogFormat string // "text" or "json"
}

// Load reads configuration from environment variables with defaults
// matching the upstream monitor. The session identifier is generated once
// per process when not supplied, so it stays stable for the process
// lifetime.
func Load() Config {
	return Config{
		OutputURL:        getenv("TAPLINE_OUTPUT_URL", "http://localhost:8080/api/events"),
		APIKey:           os.Getenv("TAPLINE_API_KEY"),
		BrokerURL:        os.Getenv("TAPLINE_BROKER_URL"),
		BrokerExchange:   getenv("TAPLINE_BROKER_EXCHANGE", "activity_events"),
		BrokerRoutingKey: getenv("TAPLINE_BROKER_ROUTING_KEY", "input.events"),

		SessionID: loadSessionID(),
		DeviceID:  getenv("TAPLINE_DEVICE_ID", "default_device"),

		Source:             getenv("TAPLINE_SOURCE", "synthetic"),
		TrackMouseMove:     getenvBool("TAPLINE_TRACK_MOUSE_MOVEMENT", false),
		ScreenshotEnabled:  getenvBool("TAPLINE_SCREENSHOT_ENABLED", true),
		ScreenshotInterval: time.Duration(getenvInt("TAPLINE_SCREENSHOT_INTERVAL_SECS", 300)) * time.Second,
		ExcludedApps:       getenvList("TAPLINE_EXCLUDED_APPS", []string{"KeePass", "1Password", "Bitwarden"}),

		BatchSize:     getenvInt("TAPLINE_BATCH_SIZE", 100),
		BatchTimeout:  time.Duration(getenvInt("TAPLINE_BATCH_TIMEOUT_MS", 5000)) * time.Millisecond,
		MaxRetries:    getenvInt("TAPLINE_MAX_RETRIES", 3),
		RetryDelay:    time.Duration(getenvInt("TAPLINE_RETRY_DELAY_MS", 1000)) * time.Millisecond,
		QueueCapacity: getenvInt("TAPLINE_QUEUE_CAPACITY", 1000),

		LogLevel:  getenv("TAPLINE_LOG_LEVEL", "info"),
		LogFormat: getenv("TAPLINE_LOG_FORMAT", "text"),
	}
}

func loadSessionID() string {
	if v := os.Getenv("TAPLINE_SESSION_ID"); v != "" {
		return v
	}
	return uuid.NewString()
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// getenvList parses a comma-separated value, trimming whitespace and
// skipping empty entries.
func getenvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
