package capture

import (
	"fmt"

	"github.com/silverpine/tapline/internal/model"
)

// Constructor creates a Source that stamps events via the given factory.
type Constructor func(factory *model.Factory) Source

var registry = map[string]Constructor{}

// Register adds a source constructor under the given name.
func Register(name string, ctor Constructor) {
	registry[name] = ctor
}

// Get returns the source constructor for the given name.
func Get(name string) (Constructor, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown capture source: %s", name)
	}
	return ctor, nil
}

// Sources returns the names of all registered capture sources.
func Sources() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}
