// Package tui implements the interactive terminal editor for presence profiles.
package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the editor and blocks until it exits. The model must be bound to
// an initialized controller.
func Run(m *Model) error {
	if m.ctrl == nil {
		return fmt.Errorf("tui: model has no controller")
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
