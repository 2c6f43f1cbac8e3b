package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/small-frappuccino/richpresence/pkg/theme"
)

// styles are derived from the current theme and rebuilt when it changes.
type styles struct {
	app          lipgloss.Style
	header       lipgloss.Style
	label        lipgloss.Style
	focusedLabel lipgloss.Style
	entry        lipgloss.Style
	dim          lipgloss.Style

	panel        lipgloss.Style
	focusedPanel lipgloss.Style

	profile       lipgloss.Style
	activeProfile lipgloss.Style
	cursor        lipgloss.Style

	statusBar lipgloss.Style
	key       lipgloss.Style
	hint      lipgloss.Style

	running  lipgloss.Style
	pending  lipgloss.Style
	stopped  lipgloss.Style
	failed   lipgloss.Style
	flash    lipgloss.Style
	errorBar lipgloss.Style

	overlay      lipgloss.Style
	overlayTitle lipgloss.Style
	overlayError lipgloss.Style
}

func newStyles(th *theme.Theme) styles {
	bg := lipgloss.Color(th.Background)
	fg := lipgloss.Color(th.Foreground)
	entryBg := lipgloss.Color(th.EntryBackground)
	accent := lipgloss.Color(th.Accent)
	muted := lipgloss.Color(th.Muted)
	border := lipgloss.Color(th.Border)

	return styles{
		app: lipgloss.NewStyle().
			Background(bg).
			Foreground(fg),
		header: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),
		label: lipgloss.NewStyle().
			Foreground(muted),
		focusedLabel: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true),
		entry: lipgloss.NewStyle().
			Background(entryBg).
			Foreground(fg),
		dim: lipgloss.NewStyle().
			Foreground(muted),

		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1),
		focusedPanel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1),

		profile: lipgloss.NewStyle().
			Foreground(fg),
		activeProfile: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true),
		cursor: lipgloss.NewStyle().
			Background(entryBg),

		statusBar: lipgloss.NewStyle().
			Foreground(fg).
			Background(entryBg),
		key: lipgloss.NewStyle().
			Bold(true).
			Foreground(fg),
		hint: lipgloss.NewStyle().
			Foreground(muted),

		running: lipgloss.NewStyle().Foreground(lipgloss.Color(th.Success)).Bold(true),
		pending: lipgloss.NewStyle().Foreground(lipgloss.Color(th.Warning)).Bold(true),
		stopped: lipgloss.NewStyle().Foreground(muted),
		failed:  lipgloss.NewStyle().Foreground(lipgloss.Color(th.Error)).Bold(true),
		flash:   lipgloss.NewStyle().Foreground(lipgloss.Color(th.Success)),
		errorBar: lipgloss.NewStyle().
			Foreground(lipgloss.Color(th.Error)).
			Bold(true),

		overlay: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Background(bg).
			Foreground(fg).
			Padding(1, 2),
		overlayTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			MarginBottom(1),
		overlayError: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(th.Error)).
			MarginBottom(1),
	}
}
