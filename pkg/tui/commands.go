package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/small-frappuccino/richpresence/pkg/discordrpc"
)

// waitForReport blocks on the broadcaster's report channel and delivers the next report.
func waitForReport(ch <-chan discordrpc.Report) tea.Cmd {
	return func() tea.Msg {
		r, ok := <-ch
		if !ok {
			return reportsClosedMsg{}
		}
		return reportMsg{Report: r}
	}
}

func statusTick() tea.Cmd {
	return tea.Tick(statusTickInterval, func(time.Time) tea.Msg {
		return statusTickMsg{}
	})
}
