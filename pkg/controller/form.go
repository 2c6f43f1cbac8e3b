package controller

import (
	"strings"
	"time"

	"github.com/small-frappuccino/richpresence/pkg/files"
)

// Form is the flat set of editable fields a View shows for one profile.
type Form struct {
	ClientID   string
	State      string
	Details    string
	LargeImage string
	LargeText  string
	SmallImage string
	SmallText  string
	Interval   int
	Buttons    [files.MaxButtons]files.Button
}

// FormFromProfile loads a stored profile into editable fields.
func FormFromProfile(p files.Profile) Form {
	f := Form{
		ClientID:   p.ClientID,
		State:      p.Presence.State,
		Details:    p.Presence.Details,
		LargeImage: p.Presence.LargeImage,
		LargeText:  p.Presence.LargeText,
		SmallImage: p.Presence.SmallImage,
		SmallText:  p.Presence.SmallText,
		Interval:   p.UpdateInterval,
	}
	if f.Interval == 0 {
		f.Interval = files.DefaultUpdateInterval
	}
	for i, b := range p.Presence.Buttons {
		if i == files.MaxButtons {
			break
		}
		f.Buttons[i] = b
	}
	return f
}

// Profile converts the fields into a full profile record. Strings are trimmed,
// incomplete buttons dropped, the interval clamped to the editable range and
// the start timestamp set to now.
func (f Form) Profile(now time.Time) files.Profile {
	presence := files.Presence{
		State:      f.State,
		Details:    f.Details,
		LargeImage: f.LargeImage,
		LargeText:  f.LargeText,
		SmallImage: f.SmallImage,
		SmallText:  f.SmallText,
		Start:      now.Unix(),
		Buttons:    f.Buttons[:],
	}
	return files.Profile{
		ClientID:       strings.TrimSpace(f.ClientID),
		Presence:       presence.Normalize(),
		UpdateInterval: ClampInterval(f.Interval),
	}
}

// ClampInterval bounds seconds to [MinUpdateInterval, MaxUpdateInterval]; zero means the default.
func ClampInterval(seconds int) int {
	switch {
	case seconds == 0:
		return files.DefaultUpdateInterval
	case seconds < files.MinUpdateInterval:
		return files.MinUpdateInterval
	case seconds > files.MaxUpdateInterval:
		return files.MaxUpdateInterval
	default:
		return seconds
	}
}
