package capture

import "sort"

// modifierForKey maps raw key symbols to canonical modifier names. Left
// and right variants collapse to one name.
var modifierForKey = map[string]string{
	"ShiftLeft":    "Shift",
	"ShiftRight":   "Shift",
	"ControlLeft":  "Control",
	"ControlRight": "Control",
	"Alt":          "Alt",
	"AltGr":        "Alt",
	"MetaLeft":     "Meta",
	"MetaRight":    "Meta",
}

// ModifierTracker maintains the set of currently-held modifiers from raw
// press/release key symbols. Not safe for concurrent use; a hook source
// updates it from its single event thread.
type ModifierTracker struct {
	held map[string]struct{}
}

// NewModifierTracker returns an empty tracker.
func NewModifierTracker() *ModifierTracker {
	return &ModifierTracker{held: make(map[string]struct{})}
}

// Update records a press or release of the given raw key symbol.
// Non-modifier keys are ignored.
func (t *ModifierTracker) Update(key string, pressed bool) {
	name, ok := modifierForKey[key]
	if !ok {
		return
	}
	if pressed {
		t.held[name] = struct{}{}
	} else {
		delete(t.held, name)
	}
}

// Active returns the currently-held modifier names, sorted.
func (t *ModifierTracker) Active() []string {
	if len(t.held) == 0 {
		return nil
	}
	out := make([]string, 0, len(t.held))
	for name := range t.held {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
