package capture

import (
	"context"

	"github.com/silverpine/tapline/internal/model"
)

func init() {
	Register("synthetic", func(factory *model.Factory) Source {
		return &syntheticSource{factory: factory}
	})
}

// syntheticSource replays a short scripted burst of activity and then
// idles until cancelled. It stands in for the OS-level hook on platforms
// where no capture backend is wired, and gives the pipeline something to
// relay during development.
type syntheticSource struct {
	factory *model.Factory
}

// ActiveApp reports the synthetic foreground application, so exclusion
// filtering stays wired even without a native hook.
func (s *syntheticSource) ActiveApp() string { return "tapline-synthetic" }

func (s *syntheticSource) Stream(ctx context.Context, emit func(model.Event)) error {
	mods := NewModifierTracker()

	script := []func() model.Event{
		func() model.Event {
			mods.Update("ShiftLeft", true)
			return s.factory.KeyPress("ShiftLeft", mods.Active())
		},
		func() model.Event { return s.factory.KeyPress("H", mods.Active()) },
		func() model.Event { return s.factory.KeyRelease("H", mods.Active()) },
		func() model.Event {
			mods.Update("ShiftLeft", false)
			return s.factory.KeyRelease("ShiftLeft", mods.Active())
		},
		func() model.Event { return s.factory.MouseMove(640, 360) },
		func() model.Event { return s.factory.MouseClick(model.ButtonLeft, 640, 360) },
		func() model.Event { return s.factory.MouseScroll(0, -3, 640, 360) },
	}

	for _, step := range script {
		if err := ctx.Err(); err != nil {
			return err
		}
		emit(step())
	}

	<-ctx.Done()
	return ctx.Err()
}
