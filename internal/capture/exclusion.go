package capture

import (
	"strings"

	"github.com/silverpine/tapline/internal/model"
)

// AppReporter is implemented by sources that can name the foreground
// application. Native hook sources know this from the window system;
// sources that cannot tell simply don't implement it.
type AppReporter interface {
	ActiveApp() string
}

// appExclusion drops every event captured while a blocked application
// is in the foreground. Password managers are the usual entries.
type appExclusion struct {
	names  []string
	active func() string
}

// ExcludeApps builds a Filter from the excluded-application list and a
// foreground probe. Returns nil (no filtering) when either side is
// missing, so callers can pass the result straight into Options.
func ExcludeApps(names []string, active func() string) Filter {
	if len(names) == 0 || active == nil {
		return nil
	}
	return &appExclusion{names: names, active: active}
}

func (f *appExclusion) Allows(_ model.Event) bool {
	app := f.active()
	if app == "" {
		return true
	}
	for _, name := range f.names {
		if strings.EqualFold(name, app) {
			return false
		}
	}
	return true
}
