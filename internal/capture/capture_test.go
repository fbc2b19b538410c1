package capture

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/silverpine/tapline/internal/model"
)

// recordingQueue collects enqueued events.
type recordingQueue struct {
	mu     sync.Mutex
	events []model.Event
	err    error // if set, Enqueue returns this
}

func (q *recordingQueue) Enqueue(event model.Event) error {
	if q.err != nil {
		return q.err
	}
	q.mu.Lock()
	q.events = append(q.events, event)
	q.mu.Unlock()
	return nil
}

func (q *recordingQueue) types() []model.EventType {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]model.EventType, len(q.events))
	for i, e := range q.events {
		out[i] = e.Type
	}
	return out
}

// listSource emits a fixed slice of events and returns.
type listSource struct {
	events []model.Event
}

func (s *listSource) Stream(_ context.Context, emit func(model.Event)) error {
	for _, e := range s.events {
		emit(e)
	}
	return nil
}

// blockFilter rejects events whose key matches.
type blockFilter struct{ key string }

func (f blockFilter) Allows(event model.Event) bool { return event.Key != f.key }

func testFactory() *model.Factory {
	return model.NewFactory("s1", "d1")
}

func TestPumpForwardsEvents(t *testing.T) {
	f := testFactory()
	src := &listSource{events: []model.Event{
		f.KeyPress("A", nil),
		f.MouseClick(model.ButtonLeft, 1, 2),
	}}
	q := &recordingQueue{}

	p := NewPump(src, q, Options{})
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	want := []model.EventType{model.KeyPress, model.MouseClick}
	if got := q.types(); !reflect.DeepEqual(got, want) {
		t.Errorf("forwarded types = %v, want %v", got, want)
	}
}

func TestPumpSuppressesMouseMoveByDefault(t *testing.T) {
	f := testFactory()
	src := &listSource{events: []model.Event{
		f.MouseMove(1, 2),
		f.KeyPress("A", nil),
		f.MouseMove(3, 4),
	}}
	q := &recordingQueue{}

	NewPump(src, q, Options{}).Run(context.Background())

	if got := q.types(); !reflect.DeepEqual(got, []model.EventType{model.KeyPress}) {
		t.Errorf("forwarded types = %v, want only KeyPress", got)
	}
}

func TestPumpForwardsMouseMoveWhenTracked(t *testing.T) {
	f := testFactory()
	src := &listSource{events: []model.Event{f.MouseMove(1, 2)}}
	q := &recordingQueue{}

	NewPump(src, q, Options{TrackMouseMove: true}).Run(context.Background())

	if got := q.types(); !reflect.DeepEqual(got, []model.EventType{model.MouseMove}) {
		t.Errorf("forwarded types = %v, want MouseMove", got)
	}
}

func TestPumpAppliesFilter(t *testing.T) {
	f := testFactory()
	src := &listSource{events: []model.Event{
		f.KeyPress("A", nil),
		f.KeyPress("B", nil),
	}}
	q := &recordingQueue{}

	NewPump(src, q, Options{Filter: blockFilter{key: "B"}}).Run(context.Background())

	if len(q.events) != 1 || q.events[0].Key != "A" {
		t.Errorf("filter leaked: %+v", q.events)
	}
}

func TestPumpSurvivesEnqueueFailure(t *testing.T) {
	f := testFactory()
	src := &listSource{events: []model.Event{f.KeyPress("A", nil)}}
	q := &recordingQueue{err: errors.New("queue closed")}

	// A dropped receiver must not crash or abort the producer.
	if err := NewPump(src, q, Options{}).Run(context.Background()); err != nil {
		t.Errorf("Run returned %v, want nil", err)
	}
}

func TestModifierTracker(t *testing.T) {
	tr := NewModifierTracker()

	tr.Update("ShiftLeft", true)
	if got := tr.Active(); !reflect.DeepEqual(got, []string{"Shift"}) {
		t.Errorf("after ShiftLeft press: %v", got)
	}

	tr.Update("ControlRight", true)
	if got := tr.Active(); !reflect.DeepEqual(got, []string{"Control", "Shift"}) {
		t.Errorf("after ControlRight press: %v", got)
	}

	// Non-modifier keys are ignored.
	tr.Update("A", true)
	if got := tr.Active(); !reflect.DeepEqual(got, []string{"Control", "Shift"}) {
		t.Errorf("after letter press: %v", got)
	}

	tr.Update("ShiftLeft", false)
	if got := tr.Active(); !reflect.DeepEqual(got, []string{"Control"}) {
		t.Errorf("after ShiftLeft release: %v", got)
	}

	tr.Update("ControlRight", false)
	if got := tr.Active(); got != nil {
		t.Errorf("after all released: %v", got)
	}
}

func TestRegistry(t *testing.T) {
	if _, err := Get("synthetic"); err != nil {
		t.Errorf("synthetic source should be registered: %v", err)
	}
	if _, err := Get("no-such-source"); err == nil {
		t.Error("expected error for unknown source")
	}
}

func TestSyntheticSourceEmitsValidEvents(t *testing.T) {
	ctor, err := Get("synthetic")
	if err != nil {
		t.Fatal(err)
	}
	src := ctor(testFactory())

	ctx, cancel := context.WithCancel(context.Background())
	var events []model.Event
	done := make(chan error, 1)
	go func() {
		done <- src.Stream(ctx, func(e model.Event) {
			events = append(events, e)
			if len(events) >= 7 {
				cancel()
			}
		})
	}()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Stream returned %v, want context.Canceled", err)
	}
	if len(events) != 7 {
		t.Fatalf("emitted %d events, want 7", len(events))
	}
	// Shift is held while H is typed.
	if got := events[1].Modifiers; !reflect.DeepEqual(got, []string{"Shift"}) {
		t.Errorf("H press modifiers = %v, want [Shift]", got)
	}
	for _, e := range events {
		if e.SessionID != "s1" || e.Timestamp.IsZero() {
			t.Errorf("event missing stamped metadata: %+v", e)
		}
	}
}
