package theme

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Color is a "#rrggbb" hex string, directly usable as a lipgloss.Color.
type Color = string

const (
	Light = "light"
	Dark  = "dark"
)

// Theme holds all color roles used by the terminal UI.
// Keep these roles generic enough so they can be reused across views.
type Theme struct {
	// Human-friendly name for the theme (unique within the registry).
	Name string

	// Surface roles
	Background      Color
	Foreground      Color
	EntryBackground Color // input fields
	Border          Color

	// Core roles
	Accent  Color // focused field, active profile
	Muted   Color // hints, disabled
	Success Color // broadcasting
	Warning Color // connecting, stopping
	Error   Color
}

// Clone returns a copy of the Theme.
func (t *Theme) Clone() *Theme {
	cp := *t
	return &cp
}

// IsDark reports whether the theme uses a dark background.
func (t *Theme) IsDark() bool {
	return t.Name == Dark || strings.HasPrefix(t.Name, Dark+"-")
}

// ToggleLabel is the caption of the control that switches away from this theme.
func (t *Theme) ToggleLabel() string {
	if t.IsDark() {
		return "Light Mode"
	}
	return "Dark Mode"
}

// ensureDefaults fills zero-valued fields with fallbacks derived from other roles.
// This allows themes to override only a subset of fields.
func (t *Theme) ensureDefaults() {
	if t.Background == "" {
		t.Background = "#f0f0f0"
	}
	if t.Foreground == "" {
		t.Foreground = "#000000"
	}
	if t.EntryBackground == "" {
		t.EntryBackground = t.Background
	}
	if t.Accent == "" {
		t.Accent = "#5865f2"
	}
	if t.Muted == "" {
		t.Muted = "#99aab5"
	}
	if t.Border == "" {
		t.Border = t.Muted
	}
	if t.Success == "" {
		t.Success = "#57f287"
	}
	if t.Warning == "" {
		t.Warning = "#f59e0b"
	}
	if t.Error == "" {
		t.Error = "#ed4245"
	}
}

// defaultTheme returns the built-in light theme.
func defaultTheme() *Theme {
	th := &Theme{
		Name:            Light,
		Background:      "#f0f0f0",
		Foreground:      "#000000",
		EntryBackground: "#ffffff",
		Accent:          "#4752c4",
		Muted:           "#6b7280",
		Success:         "#1f8b4c",
		Warning:         "#b45309",
		Error:           "#c0392b",
	}
	th.ensureDefaults()
	return th
}

func darkTheme() *Theme {
	th := &Theme{
		Name:            Dark,
		Background:      "#2e2e2e",
		Foreground:      "#ffffff",
		EntryBackground: "#4a4a4a",
		Accent:          "#7983f5",
		Muted:           "#99aab5",
		Success:         "#57f287",
		Warning:         "#fee75c",
		Error:           "#ed4245",
	}
	th.ensureDefaults()
	return th
}

var (
	mu        sync.RWMutex
	registry  = map[string]*Theme{Light: defaultTheme(), Dark: darkTheme()}
	currentTh = defaultTheme()
)

// Register adds a theme to the registry. It returns an error if the name is empty or already registered.
func Register(t *Theme) error {
	if t == nil {
		return fmt.Errorf("theme: cannot register nil theme")
	}
	if t.Name == "" {
		return fmt.Errorf("theme: name is required")
	}
	cp := t.Clone()
	cp.ensureDefaults()

	mu.Lock()
	defer mu.Unlock()
	if _, exists := registry[cp.Name]; exists {
		return fmt.Errorf("theme: theme %q already registered", cp.Name)
	}
	registry[cp.Name] = cp
	return nil
}

// SetCurrent switches the active theme by name. An empty name restores the default.
func SetCurrent(name string) error {
	name = strings.ToLower(strings.TrimSpace(name))
	mu.Lock()
	defer mu.Unlock()
	if name == "" {
		currentTh = defaultTheme()
		return nil
	}
	th, ok := registry[name]
	if !ok {
		return fmt.Errorf("theme: theme %q not found", name)
	}
	currentTh = th.Clone()
	return nil
}

// Toggle flips between the light and dark themes and returns the new current theme.
func Toggle() *Theme {
	mu.Lock()
	defer mu.Unlock()
	next := Dark
	if currentTh.IsDark() {
		next = Light
	}
	currentTh = registry[next].Clone()
	return currentTh.Clone()
}

// Current returns a copy of the current theme.
// Modifying the returned value does not affect the global theme.
func Current() *Theme {
	mu.RLock()
	defer mu.RUnlock()
	return currentTh.Clone()
}

// Default returns a copy of the built-in default theme.
func Default() *Theme {
	return defaultTheme()
}

// Names lists registered theme names, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
