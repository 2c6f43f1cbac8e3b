package tui

import (
	"github.com/small-frappuccino/richpresence/pkg/discordrpc"
)

// reportMsg carries a broadcaster failure drained from the reports channel.
type reportMsg struct {
	Report discordrpc.Report
}

// reportsClosedMsg signals the reports channel was closed.
type reportsClosedMsg struct{}

// statusTickMsg is a periodic tick for refreshing the broadcaster status.
type statusTickMsg struct{}

// clearFlashMsg clears the transient status bar message with the given sequence number.
type clearFlashMsg struct {
	seq int
}
