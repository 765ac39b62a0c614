package ui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
)

// keyMap holds the panel's key bindings
type keyMap struct {
	Quit      key.Binding
	NextPanel key.Binding
	PrevPanel key.Binding
	Left      key.Binding
	Right     key.Binding
	Side      key.Binding
	Up        key.Binding
	Down      key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
	Link      key.Binding
	Mute      key.Binding
	Sense     key.Binding
	Reset     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
		NextPanel: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "panel"),
		),
		PrevPanel: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous panel"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/→", "select"),
		),
		Right: key.NewBinding(
			key.WithKeys("right"),
		),
		Side: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "side"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/↓", "gain"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup/pgdn", "6dB"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
		),
		Link: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "link"),
		),
		Mute: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mute"),
		),
		Sense: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sense"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset peaks"),
		),
	}
}

// panelHelp lists the bindings that apply to one panel
type panelHelp struct {
	keys   keyMap
	analog bool
}

var _ help.KeyMap = panelHelp{}

// ShortHelp implements help.KeyMap
func (p panelHelp) ShortHelp() []key.Binding {
	k := p.keys
	bindings := []key.Binding{k.NextPanel, k.Left, k.Up, k.PageUp}
	if p.analog {
		bindings = append(bindings, k.Sense)
	} else {
		bindings = append(bindings, k.Side, k.Mute, k.Link)
	}
	return append(bindings, k.Reset, k.Quit)
}

// FullHelp implements help.KeyMap
func (p panelHelp) FullHelp() [][]key.Binding {
	k := p.keys
	return [][]key.Binding{
		{k.NextPanel, k.PrevPanel, k.Left, k.Side},
		{k.Up, k.PageUp, k.Mute, k.Link},
		{k.Sense, k.Reset, k.Quit},
	}
}
