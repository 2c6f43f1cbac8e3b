package files

import (
	"strings"
	"sync"

	"github.com/small-frappuccino/richpresence/pkg/util"
)

const (
	// DefaultUpdateInterval is the interval given to new profiles, in seconds.
	DefaultUpdateInterval = 15
	// MinUpdateInterval and MaxUpdateInterval bound the editing surface; the store does not enforce them.
	MinUpdateInterval = 5
	MaxUpdateInterval = 3600
	// MaxButtons is the number of buttons Discord renders.
	MaxButtons = 2
)

// Log and error message templates.
const (
	LogLoadProfilesFileNotFound = "Profiles file not found at %s; starting with an empty store"
	LogLoadProfilesEmpty        = "Profiles file at %s has no profiles"
	LogSaveProfilesSuccess      = "Profiles saved to %s"
	LogLastProfileUnknown       = "Recorded last profile no longer exists; ignoring"
)

// Button is a clickable link shown under the presence.
type Button struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Complete reports whether both label and url are set.
func (b Button) Complete() bool {
	return strings.TrimSpace(b.Label) != "" && strings.TrimSpace(b.URL) != ""
}

// Presence is the set of optional display fields pushed to Discord.
// Blank strings are omitted from the JSON document.
type Presence struct {
	State      string   `json:"state,omitempty"`
	Details    string   `json:"details,omitempty"`
	LargeImage string   `json:"large_image,omitempty"`
	LargeText  string   `json:"large_text,omitempty"`
	SmallImage string   `json:"small_image,omitempty"`
	SmallText  string   `json:"small_text,omitempty"`
	Start      int64    `json:"start,omitempty"`
	Buttons    []Button `json:"buttons,omitempty"`
}

// Clone returns a deep copy.
func (p Presence) Clone() Presence {
	cp := p
	if p.Buttons != nil {
		cp.Buttons = make([]Button, len(p.Buttons))
		copy(cp.Buttons, p.Buttons)
	}
	return cp
}

// Normalize trims every field and keeps at most MaxButtons complete buttons.
func (p Presence) Normalize() Presence {
	out := Presence{
		State:      strings.TrimSpace(p.State),
		Details:    strings.TrimSpace(p.Details),
		LargeImage: strings.TrimSpace(p.LargeImage),
		LargeText:  strings.TrimSpace(p.LargeText),
		SmallImage: strings.TrimSpace(p.SmallImage),
		SmallText:  strings.TrimSpace(p.SmallText),
		Start:      p.Start,
	}
	for _, b := range p.Buttons {
		if !b.Complete() {
			continue
		}
		out.Buttons = append(out.Buttons, Button{
			Label: strings.TrimSpace(b.Label),
			URL:   strings.TrimSpace(b.URL),
		})
		if len(out.Buttons) == MaxButtons {
			break
		}
	}
	return out
}

// HasText reports whether state or details is set.
func (p Presence) HasText() bool {
	return strings.TrimSpace(p.State) != "" || strings.TrimSpace(p.Details) != ""
}

// Profile is a named presence configuration.
type Profile struct {
	ClientID       string   `json:"client_id"`
	Presence       Presence `json:"presence_data"`
	UpdateInterval int      `json:"update_interval"`
}

// NewProfile returns the blank profile created by "new".
func NewProfile() Profile {
	return Profile{UpdateInterval: DefaultUpdateInterval}
}

// Clone returns a deep copy.
func (p Profile) Clone() Profile {
	cp := p
	cp.Presence = p.Presence.Clone()
	return cp
}

// ProfileManager owns the in-memory name -> profile mapping and its JSON document.
type ProfileManager struct {
	filePath    string
	jsonManager *util.JSONManager

	mu       sync.RWMutex
	profiles map[string]Profile
	order    []string
	active   string
}
