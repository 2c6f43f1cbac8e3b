package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/small-frappuccino/richpresence/pkg/discordrpc"
)

// confirmMode values.
const (
	confirmNone   = 0
	confirmDelete = 1
	confirmQuit   = 2
)

func renderStatusBar(m *Model, width int) string {
	switch m.confirmMode {
	case confirmDelete:
		return renderConfirmBar(m.st, fmt.Sprintf("Delete profile %q? (y/n)", m.active), width)
	case confirmQuit:
		return renderConfirmBar(m.st, "Presence is broadcasting. Stop and quit? (y/n)", width)
	}

	left := " " + m.keyHints()
	if m.flash != "" {
		left = " " + m.st.flash.Render(m.flash)
	}
	right := m.renderState() + " "

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return m.st.statusBar.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m *Model) keyHints() string {
	st := m.st
	if m.focus == focusProfiles {
		return keyHint(st, "j/k", "navigate") + "  " + keyHint(st, "Enter", "load") + "  " +
			keyHint(st, "Tab", "fields") + "  " + keyHint(st, "F1", "help")
	}
	hints := keyHint(st, "Ctrl+s", "save") + "  "
	if m.broadcasting() {
		hints += keyHint(st, "Ctrl+x", "stop")
	} else {
		hints += keyHint(st, "Ctrl+g", "start")
	}
	return hints + "  " + keyHint(st, "Ctrl+p", "profiles") + "  " +
		keyHint(st, "F1", "help") + "  " + keyHint(st, "Ctrl+q", "quit")
}

func (m *Model) renderState() string {
	s := m.status
	label := s.Label()
	switch s.State {
	case discordrpc.StateBroadcasting:
		text := label
		if s.Profile != "" {
			text = fmt.Sprintf("%s: %s (%d)", label, s.Profile, s.Pushes)
		}
		return m.st.running.Render("● " + text)
	case discordrpc.StateConnecting, discordrpc.StateStopping:
		return m.st.pending.Render("◌ " + label)
	default:
		if s.LastError != "" {
			return m.st.failed.Render("✕ " + label)
		}
		return m.st.stopped.Render("○ " + label)
	}
}

func keyHint(st styles, k, desc string) string {
	if k == "" {
		return st.hint.Render(desc)
	}
	return st.key.Render(k) + " " + st.hint.Render(desc)
}

func renderConfirmBar(st styles, msg string, width int) string {
	return st.statusBar.
		Inherit(st.pending).
		Width(width).
		Render(" " + msg)
}
