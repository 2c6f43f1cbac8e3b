package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type helpSection struct {
	title string
	keys  []helpKey
}

type helpKey struct {
	key  string
	desc string
}

var helpSections = []helpSection{
	{
		title: "Global",
		keys: []helpKey{
			{"Ctrl+q", "Quit"},
			{"F1", "Toggle help"},
			{"Ctrl+t", "Toggle dark mode"},
			{"Ctrl+p", "Focus profile list"},
		},
	},
	{
		title: "Presence",
		keys: []helpKey{
			{"Ctrl+s", "Save profile"},
			{"Ctrl+g / F5", "Start broadcasting"},
			{"Ctrl+x / F6", "Stop broadcasting"},
			{"Tab / ↓", "Next field"},
			{"Shift+Tab / ↑", "Previous field"},
		},
	},
	{
		title: "Profiles",
		keys: []helpKey{
			{"Ctrl+n", "New profile"},
			{"Ctrl+o", "Copy profile"},
			{"Ctrl+d", "Delete profile"},
			{"j/k ↑/↓", "Navigate list"},
			{"Enter", "Load profile"},
		},
	},
}

func (m *Model) renderHelp() string {
	var b strings.Builder
	b.WriteString(m.st.overlayTitle.Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	for i, section := range helpSections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.st.header.Render(section.title))
		b.WriteString("\n")
		for _, k := range section.keys {
			b.WriteString("  ")
			b.WriteString(m.st.key.Width(16).Render(k.key))
			b.WriteString(m.st.hint.Render(k.desc))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(m.st.hint.Render("Press F1 or Esc to close"))
	return m.st.overlay.Render(lipgloss.NewStyle().Render(b.String()))
}
