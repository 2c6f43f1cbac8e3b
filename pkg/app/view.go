package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/small-frappuccino/richpresence/pkg/controller"
	"github.com/small-frappuccino/richpresence/pkg/log"
)

// consoleView is the controller.View of the non-interactive commands. The form
// lives in memory. Every notice is logged; info notices and, unless quiet,
// status changes are also printed to out, while failures reach the user as the
// command's error.
type consoleView struct {
	out   io.Writer
	quiet bool

	form      controller.Form
	names     []string
	active    string
	status    controller.Status
	lastLabel string
}

func newConsoleView(out io.Writer) *consoleView {
	return &consoleView{out: out}
}

// newQuietConsoleView is the view of the profile commands, whose output must
// stay machine readable.
func newQuietConsoleView(out io.Writer) *consoleView {
	return &consoleView{out: out, quiet: true}
}

func (v *consoleView) Gather() controller.Form { return v.form }

func (v *consoleView) Show(f controller.Form) { v.form = f }

func (v *consoleView) ListProfiles(names []string, active string) {
	v.names = append([]string(nil), names...)
	v.active = active
}

// ShowStatus prints the status line only when the label changes.
func (v *consoleView) ShowStatus(s controller.Status) {
	v.status = s
	label := s.Label()
	if label == v.lastLabel {
		return
	}
	v.lastLabel = label
	if v.quiet {
		return
	}
	if s.Profile != "" {
		fmt.Fprintf(v.out, "Status: %s (%s)\n", label, s.Profile)
		return
	}
	fmt.Fprintf(v.out, "Status: %s\n", label)
}

func (v *consoleView) Notify(n controller.Notice) {
	level := slog.LevelInfo
	switch n.Level {
	case controller.LevelWarning:
		level = slog.LevelWarn
	case controller.LevelError:
		level = slog.LevelError
	}
	log.ApplicationLogger().Log(context.Background(), level, n.Title, "message", n.Message)
	if n.Level == controller.LevelInfo {
		fmt.Fprintln(v.out, n.Message)
	}
}
