package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// renderProfileList renders the profile names, scrolled so the cursor stays visible.
func (m *Model) renderProfileList(height int) string {
	lines := []string{m.st.header.Render("Profiles"), ""}
	if len(m.profiles) == 0 {
		lines = append(lines, m.st.dim.Render("No profiles."), m.st.dim.Render("Ctrl+n to create one."))
		return strings.Join(lines, "\n")
	}

	visible := height - len(lines)
	if visible < 1 {
		visible = 1
	}
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := start + visible
	if end > len(m.profiles) {
		end = len(m.profiles)
	}

	for i := start; i < end; i++ {
		name := ansi.Truncate(m.profiles[i], profilePanelWidth-4, "…")
		marker := "  "
		style := m.st.profile
		if m.profiles[i] == m.active {
			marker = "● "
			style = m.st.activeProfile
		}
		line := style.Render(marker + name)
		if m.focus == focusProfiles && i == m.cursor {
			line = m.st.cursor.Render(marker + name)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
