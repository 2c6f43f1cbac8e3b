package discordrpc

import (
	"strings"

	"github.com/small-frappuccino/richpresence/pkg/files"
)

// Activity is the SET_ACTIVITY payload.
type Activity struct {
	Details    string      `json:"details,omitempty"`
	State      string      `json:"state,omitempty"`
	Assets     *Assets     `json:"assets,omitempty"`
	Timestamps *Timestamps `json:"timestamps,omitempty"`
	Buttons    []Button    `json:"buttons,omitempty"`
}

type Assets struct {
	LargeImage string `json:"large_image,omitempty"`
	LargeText  string `json:"large_text,omitempty"`
	SmallImage string `json:"small_image,omitempty"`
	SmallText  string `json:"small_text,omitempty"`
}

// Timestamps are unix milliseconds.
type Timestamps struct {
	Start *uint64 `json:"start,omitempty"`
	End   *uint64 `json:"end,omitempty"`
}

type Button struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// BuildActivity converts a stored presence into the wire payload.
func BuildActivity(p files.Presence) *Activity {
	activity := &Activity{
		Details: strings.TrimSpace(p.Details),
		State:   strings.TrimSpace(p.State),
	}
	if assets := buildAssets(p); assets != nil {
		activity.Assets = assets
	}
	if p.Start > 0 {
		start := uint64(p.Start) * 1000
		activity.Timestamps = &Timestamps{Start: &start}
	}
	if buttons := buildButtons(p.Buttons); len(buttons) > 0 {
		activity.Buttons = buttons
	}
	return activity
}

func buildAssets(p files.Presence) *Assets {
	assets := Assets{
		LargeImage: strings.TrimSpace(p.LargeImage),
		LargeText:  strings.TrimSpace(p.LargeText),
		SmallImage: strings.TrimSpace(p.SmallImage),
		SmallText:  strings.TrimSpace(p.SmallText),
	}
	if assets == (Assets{}) {
		return nil
	}
	return &assets
}

func buildButtons(in []files.Button) []Button {
	if len(in) == 0 {
		return nil
	}
	buttons := make([]Button, 0, files.MaxButtons)
	for _, b := range in {
		label := strings.TrimSpace(b.Label)
		url := strings.TrimSpace(b.URL)
		if label == "" || url == "" {
			continue
		}
		buttons = append(buttons, Button{Label: label, URL: url})
		if len(buttons) == files.MaxButtons {
			break
		}
	}
	return buttons
}
