package theme

import (
	"reflect"
	"testing"
)

func TestToggleFlipsLightAndDark(t *testing.T) {
	t.Cleanup(func() { _ = SetCurrent("") })
	if err := SetCurrent(Light); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := Current(); got.Background != "#f0f0f0" || got.EntryBackground != "#ffffff" {
		t.Fatalf("unexpected light palette: %+v", got)
	}
	if Current().ToggleLabel() != "Dark Mode" {
		t.Fatalf("unexpected label on light theme")
	}

	dark := Toggle()
	if dark.Name != Dark || dark.Background != "#2e2e2e" || dark.Foreground != "#ffffff" || dark.EntryBackground != "#4a4a4a" {
		t.Fatalf("unexpected dark palette: %+v", dark)
	}
	if dark.ToggleLabel() != "Light Mode" {
		t.Fatalf("unexpected label on dark theme")
	}
	if Toggle().Name != Light {
		t.Fatalf("expected toggle back to light")
	}
}

func TestRegisterFillsDefaults(t *testing.T) {
	t.Cleanup(func() { _ = SetCurrent("") })
	if err := Register(&Theme{Name: "solar", Accent: "#b58900"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := Register(&Theme{Name: "solar"}); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
	if err := Register(&Theme{}); err == nil {
		t.Fatalf("expected nameless theme to fail")
	}
	if err := SetCurrent("Solar"); err != nil {
		t.Fatalf("set: %v", err)
	}
	got := Current()
	if got.Accent != "#b58900" || got.Error == "" || got.Border == "" {
		t.Fatalf("defaults not applied: %+v", got)
	}
	if err := SetCurrent("missing"); err == nil {
		t.Fatalf("expected unknown theme error")
	}
}

func TestCurrentReturnsCopy(t *testing.T) {
	t.Cleanup(func() { _ = SetCurrent("") })
	c := Current()
	c.Accent = "#000000"
	if reflect.DeepEqual(c, Current()) {
		t.Fatalf("mutating the copy changed the current theme")
	}
}
