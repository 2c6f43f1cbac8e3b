package controller

import (
	"github.com/small-frappuccino/richpresence/pkg/discordrpc"
)

// View is the user-facing collaborator. Dialogs (prompts, confirmations) are the
// View's concern; the Controller receives their answers as arguments.
// Every method is called from the foreground loop.
type View interface {
	// Gather returns the current field values.
	Gather() Form
	// Show replaces the field values.
	Show(Form)
	ListProfiles(names []string, active string)
	ShowStatus(Status)
	Notify(Notice)
}

// Status is the broadcaster state as shown to the user.
type Status struct {
	State   discordrpc.State
	Profile string
	Pushes  int64
	// LastError is the message of the last run failure, cleared on the next start.
	LastError string
}

// Label is the short status text.
func (s Status) Label() string {
	switch s.State {
	case discordrpc.StateBroadcasting:
		return "Running"
	case discordrpc.StateConnecting:
		return "Connecting"
	case discordrpc.StateStopping:
		return "Stopping"
	default:
		if s.LastError != "" {
			return "Failed"
		}
		return "Stopped"
	}
}

// Level is the severity of a Notice.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notice is a message for the user, typically shown as a dialog or toast.
type Notice struct {
	Level   Level
	Title   string
	Message string
}
