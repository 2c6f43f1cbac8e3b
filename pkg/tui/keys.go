package tui

import "github.com/charmbracelet/bubbles/key"

// GlobalKeys are always active outside overlays.
type GlobalKeys struct {
	Quit     key.Binding
	Help     key.Binding
	Save     key.Binding
	Start    key.Binding
	Stop     key.Binding
	New      key.Binding
	Copy     key.Binding
	Delete   key.Binding
	Theme    key.Binding
	Profiles key.Binding
}

var globalKeys = GlobalKeys{
	Quit: key.NewBinding(
		key.WithKeys("ctrl+q", "ctrl+c"),
		key.WithHelp("Ctrl+q", "quit"),
	),
	Help: key.NewBinding(
		key.WithKeys("f1"),
		key.WithHelp("F1", "help"),
	),
	Save: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("Ctrl+s", "save"),
	),
	Start: key.NewBinding(
		key.WithKeys("ctrl+g", "f5"),
		key.WithHelp("Ctrl+g", "start"),
	),
	Stop: key.NewBinding(
		key.WithKeys("ctrl+x", "f6"),
		key.WithHelp("Ctrl+x", "stop"),
	),
	New: key.NewBinding(
		key.WithKeys("ctrl+n"),
		key.WithHelp("Ctrl+n", "new"),
	),
	Copy: key.NewBinding(
		key.WithKeys("ctrl+o"),
		key.WithHelp("Ctrl+o", "copy"),
	),
	Delete: key.NewBinding(
		key.WithKeys("ctrl+d"),
		key.WithHelp("Ctrl+d", "delete"),
	),
	Theme: key.NewBinding(
		key.WithKeys("ctrl+t"),
		key.WithHelp("Ctrl+t", "theme"),
	),
	Profiles: key.NewBinding(
		key.WithKeys("ctrl+p"),
		key.WithHelp("Ctrl+p", "profiles"),
	),
}

// FormKeys move between fields.
type FormKeys struct {
	Next key.Binding
	Prev key.Binding
}

var formKeys = FormKeys{
	Next: key.NewBinding(
		key.WithKeys("tab", "down"),
		key.WithHelp("Tab", "next field"),
	),
	Prev: key.NewBinding(
		key.WithKeys("shift+tab", "up"),
		key.WithHelp("Shift+Tab", "previous field"),
	),
}

// ListKeys are active when the profile list is focused.
type ListKeys struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Back   key.Binding
}

var listKeys = ListKeys{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("j/k", "navigate"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("j/k", "navigate"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter", " "),
		key.WithHelp("Enter", "load profile"),
	),
	Back: key.NewBinding(
		key.WithKeys("tab", "esc"),
		key.WithHelp("Tab", "back to fields"),
	),
}

// OverlayKeys are active when a prompt or dialog is shown.
type OverlayKeys struct {
	Submit key.Binding
	Cancel key.Binding
}

var overlayKeys = OverlayKeys{
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("Enter", "ok"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "cancel"),
	),
}

// ConfirmKeys for confirmation prompts.
type ConfirmKeys struct {
	Yes    key.Binding
	No     key.Binding
	Cancel key.Binding
}

var confirmKeys = ConfirmKeys{
	Yes: key.NewBinding(
		key.WithKeys("y", "Y"),
		key.WithHelp("y", "confirm"),
	),
	No: key.NewBinding(
		key.WithKeys("n", "N"),
		key.WithHelp("n", "cancel"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "cancel"),
	),
}
