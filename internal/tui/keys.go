package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Success key.Binding
	Shaky   key.Binding
	Drank   key.Binding
	Comfort key.Binding
	Quit    key.Binding
	Help    key.Binding
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Success, k.Shaky, k.Comfort, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Success, k.Shaky, k.Drank},
		{k.Comfort, k.Help, k.Quit},
	}
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Success: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sober today"),
		),
		Shaky: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "urge resisted"),
		),
		Drank: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "drank"),
		),
		Comfort: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "read comfort message"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
