package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Newline key.Binding
	Submit  key.Binding
	Cancel  key.Binding
	Quit    key.Binding
}

// newKeyMap binds submit to the configured modifier+Enter chords. Terminals do not
// report cmd+enter, so alt+enter and ctrl+s stand in for it by default.
func newKeyMap(submitKeys []string) keyMap {
	keys := make([]string, 0, len(submitKeys))
	for _, k := range submitKeys {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		keys = []string{"alt+enter", "ctrl+s"}
	}
	return keyMap{
		Newline: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "newline")),
		Submit:  key.NewBinding(key.WithKeys(keys...), key.WithHelp(strings.Join(keys, "/"), "save")),
		Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Newline, k.Submit, k.Cancel}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.Quit}}
}
