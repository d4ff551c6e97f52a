package tui

import "charm.land/bubbles/v2/key"

type keyMap struct {
	Finish   key.Binding
	Retry    key.Binding
	Copy     key.Binding
	Quit     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Finish, k.Retry, k.Copy, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Finish, k.Retry, k.Copy, k.Quit},
		{k.PageUp, k.PageDown},
	}
}

var keys = keyMap{
	Finish: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("C-s", "finish"),
	),
	Retry: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("C-r", "retry"),
	),
	Copy: key.NewBinding(
		key.WithKeys("ctrl+y"),
		key.WithHelp("C-y", "copy summary"),
	),
	Quit: key.NewBinding(
		key.WithKeys("esc", "ctrl+c"),
		key.WithHelp("esc", "quit"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("pgup", "up"),
		key.WithHelp("pgup", "summary up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("pgdown", "down"),
		key.WithHelp("pgdn", "summary down"),
	),
}
