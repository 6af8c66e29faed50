package ui

import "strings"

// Action is what a key press asks the preview to do.
type Action string

const (
	ActionNone       Action = ""
	ActionQuit       Action = "quit"
	ActionFit        Action = "fit"
	ActionFilters    Action = "filters"
	ActionGrow       Action = "grow"
	ActionShrink     Action = "shrink"
	ActionReset      Action = "reset"
	ActionCopy       Action = "copy"
	ActionNextColumn Action = "next_column"
	ActionPrevColumn Action = "prev_column"
	ActionDown       Action = "down"
	ActionUp         Action = "up"
)

// KeyBindings maps keys to preview actions.
var KeyBindings = map[string]Action{
	"q":      ActionQuit,
	"ctrl+c": ActionQuit,
	"esc":    ActionQuit,
	"f":      ActionFit,
	"t":      ActionFilters,
	"+":      ActionGrow,
	"=":      ActionGrow,
	"-":      ActionShrink,
	"r":      ActionReset,
	"y":      ActionCopy,
	"l":      ActionNextColumn,
	"right":  ActionNextColumn,
	"tab":    ActionNextColumn,
	"h":      ActionPrevColumn,
	"left":   ActionPrevColumn,
	"j":      ActionDown,
	"down":   ActionDown,
	"k":      ActionUp,
	"up":     ActionUp,
}

// actionByName maps config action names to actions.
var actionByName = map[string]Action{
	"quit":        ActionQuit,
	"fit":         ActionFit,
	"filters":     ActionFilters,
	"grow":        ActionGrow,
	"shrink":      ActionShrink,
	"reset":       ActionReset,
	"copy":        ActionCopy,
	"next_column": ActionNextColumn,
	"prev_column": ActionPrevColumn,
}

// BindKeys rebinds actions by name. Earlier keys for a rebound action
// are removed. Unknown action names are returned.
func BindKeys(keys map[string]string) []string {
	var unknown []string
	for name, key := range keys {
		action, ok := actionByName[name]
		if !ok || key == "" {
			unknown = append(unknown, name)
			continue
		}
		for k, v := range KeyBindings {
			if v == action {
				delete(KeyBindings, k)
			}
		}
		KeyBindings[key] = action
	}
	return unknown
}

func actionFor(key string) Action {
	return KeyBindings[key]
}

// helpLine lists one key per action in a fixed order.
func helpLine() string {
	order := []struct {
		action Action
		label  string
	}{
		{ActionPrevColumn, "column"},
		{ActionGrow, "wider"},
		{ActionShrink, "narrower"},
		{ActionFit, "fit"},
		{ActionFilters, "filters"},
		{ActionCopy, "copy"},
		{ActionReset, "reset"},
		{ActionQuit, "quit"},
	}
	parts := make([]string, 0, len(order))
	for _, o := range order {
		key := keyFor(o.action)
		if key == "" {
			continue
		}
		if o.action == ActionPrevColumn {
			if next := keyFor(ActionNextColumn); next != "" {
				key += "/" + next
			}
		}
		parts = append(parts, key+" "+o.label)
	}
	return strings.Join(parts, "  ")
}

// keyFor returns the shortest key bound to action, ties broken
// alphabetically.
func keyFor(action Action) string {
	best := ""
	for k, v := range KeyBindings {
		if v != action {
			continue
		}
		if best == "" || len(k) < len(best) || (len(k) == len(best) && k < best) {
			best = k
		}
	}
	return best
}
