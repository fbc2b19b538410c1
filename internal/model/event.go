package model

import (
	"sort"
	"time"
)

// EventType discriminates the captured-activity variants. The string
// values are the wire tags consumed downstream.
type EventType string

const (
	KeyPress    EventType = "KeyPress"
	KeyRelease  EventType = "KeyRelease"
	MouseClick  EventType = "MouseClick"
	MouseMove   EventType = "MouseMove"
	MouseScroll EventType = "MouseScroll"
	Screenshot  EventType = "Screenshot"
)

// Button identifies a pointer button.
type Button string

const (
	ButtonLeft    Button = "Left"
	ButtonRight   Button = "Right"
	ButtonMiddle  Button = "Middle"
	ButtonUnknown Button = "Unknown"
)

// Position is a pointer location in screen coordinates.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ScrollDelta is the horizontal/vertical travel of a scroll action.
type ScrollDelta struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Event is one immutable record of captured activity. Every event carries
// the common metadata fields; the payload fields present depend on Type.
// Events are never mutated after construction — they flow through the
// pipeline by value and are dropped after a terminal delivery outcome.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
	DeviceID  string    `json:"device_id"`

	Key       string       `json:"key,omitempty"`
	Modifiers []string     `json:"modifiers,omitempty"`
	Button    Button       `json:"button,omitempty"`
	Position  *Position    `json:"position,omitempty"`
	Delta     *ScrollDelta `json:"delta,omitempty"`
	Data      string       `json:"data,omitempty"`
	Format    string       `json:"format,omitempty"`
}

// recognised modifier names; anything else is dropped from the set.
var knownModifiers = map[string]struct{}{
	"Shift":   {},
	"Control": {},
	"Alt":     {},
	"Meta":    {},
}

// normalizeModifiers keeps only recognised modifier names, deduplicated
// and sorted so serialization is deterministic.
func normalizeModifiers(modifiers []string) []string {
	if len(modifiers) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(modifiers))
	out := make([]string, 0, len(modifiers))
	for _, m := range modifiers {
		if _, ok := knownModifiers[m]; !ok {
			continue
		}
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Strings(out)
	return out
}

// Factory stamps session/device identity and a UTC creation timestamp
// onto new events. The clock is injectable so batching and delivery can
// be tested with fixed timestamps.
type Factory struct {
	session string
	device  string
	clock   func() time.Time
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithClock overrides the timestamp source. Default: time.Now.
func WithClock(clock func() time.Time) FactoryOption {
	return func(f *Factory) { f.clock = clock }
}

// NewFactory creates a Factory for the given session and device identity.
func NewFactory(session, device string, opts ...FactoryOption) *Factory {
	f := &Factory{session: session, device: device, clock: time.Now}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Factory) stamp(e Event) Event {
	e.Timestamp = f.clock().UTC()
	e.SessionID = f.session
	e.DeviceID = f.device
	return e
}

// KeyPress records a key going down with the currently-held modifiers.
func (f *Factory) KeyPress(key string, modifiers []string) Event {
	return f.stamp(Event{Type: KeyPress, Key: key, Modifiers: normalizeModifiers(modifiers)})
}

// KeyRelease records a key coming up with the currently-held modifiers.
func (f *Factory) KeyRelease(key string, modifiers []string) Event {
	return f.stamp(Event{Type: KeyRelease, Key: key, Modifiers: normalizeModifiers(modifiers)})
}

// MouseClick records a button press at the given position.
func (f *Factory) MouseClick(button Button, x, y float64) Event {
	return f.stamp(Event{Type: MouseClick, Button: button, Position: &Position{X: x, Y: y}})
}

// MouseMove records a pointer movement.
func (f *Factory) MouseMove(x, y float64) Event {
	return f.stamp(Event{Type: MouseMove, Position: &Position{X: x, Y: y}})
}

// MouseScroll records scroll travel at the given position.
func (f *Factory) MouseScroll(deltaX, deltaY, x, y float64) Event {
	return f.stamp(Event{
		Type:     MouseScroll,
		Delta:    &ScrollDelta{X: deltaX, Y: deltaY},
		Position: &Position{X: x, Y: y},
	})
}

// Screenshot records an encoded screen capture.
func (f *Factory) Screenshot(data, format string) Event {
	return f.stamp(Event{Type: Screenshot, Data: data, Format: format})
}
