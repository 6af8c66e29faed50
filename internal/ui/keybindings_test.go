package ui

import (
	"maps"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActionFor(t *testing.T) {
	tests := []struct {
		key  string
		want Action
	}{
		{"q", ActionQuit},
		{"ctrl+c", ActionQuit},
		{"f", ActionFit},
		{"t", ActionFilters},
		{"+", ActionGrow},
		{"=", ActionGrow},
		{"-", ActionShrink},
		{"r", ActionReset},
		{"y", ActionCopy},
		{"right", ActionNextColumn},
		{"left", ActionPrevColumn},
		{"x", ActionNone},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, actionFor(tt.key))
		})
	}
}

func TestHelpLine(t *testing.T) {
	assert.Equal(t, "h/l column  + wider  - narrower  f fit  t filters  y copy  r reset  q quit", helpLine())
}

func TestBindKeys(t *testing.T) {
	saved := maps.Clone(KeyBindings)
	t.Cleanup(func() { KeyBindings = saved })

	unknown := BindKeys(map[string]string{"fit": "F", "explode": "x", "reset": ""})
	assert.ElementsMatch(t, []string{"explode", "reset"}, unknown)
	assert.Equal(t, ActionFit, actionFor("F"))
	assert.Equal(t, ActionNone, actionFor("f"))
	assert.Equal(t, ActionReset, actionFor("r"))
}
