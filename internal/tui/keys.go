package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	MoveUp   key.Binding
	MoveDown key.Binding

	Edit     key.Binding
	Add      key.Binding
	Delete   key.Binding
	Complete key.Binding

	Status   key.Binding
	Color    key.Binding
	Cat      key.Binding
	Editor   key.Binding
	Files    key.Binding
	Archived key.Binding

	Refresh key.Binding
	Confirm key.Binding
	Cancel  key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	MoveUp:   key.NewBinding(key.WithKeys("shift+up", "K"), key.WithHelp("K", "move row up")),
	MoveDown: key.NewBinding(key.WithKeys("shift+down", "J"), key.WithHelp("J", "move row down")),

	Edit:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
	Add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add article")),
	Delete:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Complete: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mark complete")),

	Status:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "status timeline")),
	Color:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "cycle color")),
	Cat:      key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "cycle category")),
	Editor:   key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "cycle editor")),
	Files:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "files")),
	Archived: key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "completed articles")),

	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
	Cancel:  key.NewBinding(key.WithKeys("esc", "ctrl+g"), key.WithHelp("esc", "cancel")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}
