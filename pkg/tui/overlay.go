package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/small-frappuccino/richpresence/pkg/controller"
)

// Overlay kinds.
const (
	overlayNone   = 0
	overlayHelp   = 1
	overlayPrompt = 2
	overlayNotice = 3
)

// Prompt kinds for overlayPrompt.
const (
	promptNewProfile  = 0
	promptCopyProfile = 1
)

// renderOverlay draws overlayContent centered over a dimmed base view.
func renderOverlay(st styles, base, overlayContent string, width, height int) string {
	baseLines := strings.Split(base, "\n")
	for i, line := range baseLines {
		baseLines[i] = st.dim.Render(ansi.Strip(line))
	}

	overlayLines := strings.Split(overlayContent, "\n")
	overlayHeight := len(overlayLines)
	overlayWidth := 0
	for _, l := range overlayLines {
		if w := lipgloss.Width(l); w > overlayWidth {
			overlayWidth = w
		}
	}

	top := (height - overlayHeight) / 2
	left := (width - overlayWidth) / 2
	if top < 1 {
		top = 1
	}
	if left < 1 {
		left = 1
	}

	for len(baseLines) < top+overlayHeight {
		baseLines = append(baseLines, "")
	}

	for i, line := range overlayLines {
		row := top + i
		bg := baseLines[row]
		bgWidth := lipgloss.Width(bg)

		leftPart := ansi.Truncate(bg, left, "")
		if pad := left - lipgloss.Width(leftPart); pad > 0 {
			leftPart += strings.Repeat(" ", pad)
		}

		rightPart := ""
		rightStart := left + lipgloss.Width(line)
		if rightStart < bgWidth {
			rightPart = ansi.Cut(bg, rightStart, bgWidth)
		}

		baseLines[row] = leftPart + "\033[0m" + line + "\033[0m" + rightPart
	}

	return strings.Join(baseLines, "\n")
}

func (m *Model) renderPrompt() string {
	title := "New Profile"
	if m.promptKind == promptCopyProfile {
		title = "Copy Profile"
	}
	body := []string{
		m.st.overlayTitle.Render(title),
		"Enter profile name:",
		m.st.entry.Render(m.prompt.View()),
		"",
		keyHint(m.st, "Enter", "ok") + "  " + keyHint(m.st, "Esc", "cancel"),
	}
	return m.st.overlay.Width(48).Render(strings.Join(body, "\n"))
}

func (m *Model) renderNotice() string {
	title := m.st.overlayTitle.Render(m.notice.Title)
	if m.notice.Level == controller.LevelError {
		title = m.st.overlayError.Render(m.notice.Title)
	}
	body := []string{
		title,
		lipgloss.NewStyle().Width(52).Render(m.notice.Message),
		"",
		keyHint(m.st, "Enter", "dismiss"),
	}
	return m.st.overlay.Render(strings.Join(body, "\n"))
}
