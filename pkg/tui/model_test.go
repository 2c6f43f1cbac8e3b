package tui

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/small-frappuccino/richpresence/pkg/controller"
	"github.com/small-frappuccino/richpresence/pkg/discordrpc"
	"github.com/small-frappuccino/richpresence/pkg/files"
	"github.com/small-frappuccino/richpresence/pkg/theme"
)

const testClientID = "1234567890123456789"

type nopClient struct {
	connectErr error
}

func (c *nopClient) Connect(string) error                { return c.connectErr }
func (c *nopClient) Update(*discordrpc.Activity) error { return nil }
func (c *nopClient) Clear() error                        { return nil }
func (c *nopClient) Close() error                        { return nil }

type harness struct {
	m     *Model
	ctrl  *controller.Controller
	rpc   *discordrpc.Broadcaster
	store *files.ProfileManager
}

func newHarness(t *testing.T, client discordrpc.Client, opts ...ModelOption) *harness {
	t.Helper()
	h := &harness{
		m:     NewModel(opts...),
		rpc:   discordrpc.NewBroadcaster(client),
		store: files.NewProfileManagerWithPath(filepath.Join(t.TempDir(), "profiles.json")),
	}
	h.ctrl = controller.New(h.store, h.rpc, h.m)
	h.m.Bind(h.ctrl)
	if err := h.ctrl.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	h.m.Update(tea.WindowSizeMsg{Width: 110, Height: 32})
	t.Cleanup(func() {
		h.rpc.Stop()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = h.rpc.Wait(ctx)
	})
	return h
}

func (h *harness) send(msgs ...tea.Msg) {
	for _, msg := range msgs {
		h.m.Update(msg)
	}
}

func keyType(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func (h *harness) createProfile(t *testing.T, name string) {
	t.Helper()
	h.send(keyType(tea.KeyCtrlN), runes(name), keyType(tea.KeyEnter))
	if h.m.active != name {
		t.Fatalf("expected %q active, got %q (overlay %d)", name, h.m.active, h.m.activeOverlay)
	}
}

func TestNewProfilePromptCreatesAndPersists(t *testing.T) {
	h := newHarness(t, &nopClient{})

	h.send(keyType(tea.KeyCtrlN))
	if h.m.activeOverlay != overlayPrompt || h.m.promptKind != promptNewProfile {
		t.Fatalf("expected new-profile prompt, overlay=%d kind=%d", h.m.activeOverlay, h.m.promptKind)
	}
	h.send(runes("work"), keyType(tea.KeyEnter))

	if h.m.activeOverlay != overlayNone {
		t.Fatalf("prompt should close, overlay=%d", h.m.activeOverlay)
	}
	if len(h.m.profiles) != 1 || h.m.profiles[0] != "work" || h.m.active != "work" {
		t.Fatalf("unexpected list: %v active=%q", h.m.profiles, h.m.active)
	}

	reloaded := files.NewProfileManagerWithPath(h.store.Path())
	if err := reloaded.Load(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.ActiveName() != "work" {
		t.Fatalf("expected persisted active profile, got %q", reloaded.ActiveName())
	}
}

func TestPromptEscapeCancels(t *testing.T) {
	h := newHarness(t, &nopClient{})
	h.send(keyType(tea.KeyCtrlN), runes("draft"), keyType(tea.KeyEsc))
	if h.m.activeOverlay != overlayNone || len(h.m.profiles) != 0 {
		t.Fatalf("escape should cancel, overlay=%d profiles=%v", h.m.activeOverlay, h.m.profiles)
	}
}

func TestErrorNoticeOpensDialog(t *testing.T) {
	h := newHarness(t, &nopClient{})
	h.createProfile(t, "work")

	h.send(keyType(tea.KeyCtrlN), runes("work"), keyType(tea.KeyEnter))
	if h.m.activeOverlay != overlayNotice || h.m.notice.Level != controller.LevelError {
		t.Fatalf("expected error dialog, overlay=%d notice=%+v", h.m.activeOverlay, h.m.notice)
	}
	if !strings.Contains(h.m.View(), h.m.notice.Title) {
		t.Fatalf("dialog title not rendered")
	}

	h.send(keyType(tea.KeyEnter))
	if h.m.activeOverlay != overlayNone {
		t.Fatalf("enter should dismiss the dialog")
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	h := newHarness(t, &nopClient{})
	h.createProfile(t, "a")
	h.createProfile(t, "b")

	h.send(keyType(tea.KeyCtrlD))
	if h.m.confirmMode != confirmDelete {
		t.Fatalf("expected delete confirmation")
	}
	h.send(runes("n"))
	if h.m.confirmMode != confirmNone || len(h.m.profiles) != 2 {
		t.Fatalf("n should cancel, profiles=%v", h.m.profiles)
	}

	h.send(keyType(tea.KeyCtrlD), runes("y"))
	if len(h.m.profiles) != 1 || h.m.profiles[0] != "a" || h.m.active != "a" {
		t.Fatalf("unexpected state after delete: %v active=%q", h.m.profiles, h.m.active)
	}
}

func TestSaveFlashesAndClears(t *testing.T) {
	h := newHarness(t, &nopClient{})
	h.createProfile(t, "work")

	h.send(keyType(tea.KeyCtrlS))
	if h.m.flash != "Profile saved." {
		t.Fatalf("expected saved flash, got %q", h.m.flash)
	}
	seq := h.m.flashSeq
	h.send(clearFlashMsg{seq: seq - 1})
	if h.m.flash == "" {
		t.Fatalf("stale clear should be ignored")
	}
	h.send(clearFlashMsg{seq: seq})
	if h.m.flash != "" {
		t.Fatalf("flash not cleared")
	}
}

func TestProfileListSelectLoadsFields(t *testing.T) {
	h := newHarness(t, &nopClient{})
	h.createProfile(t, "a")
	h.m.Show(controller.Form{State: "In A", Interval: 20})
	h.send(keyType(tea.KeyCtrlS))
	h.createProfile(t, "b")

	h.send(keyType(tea.KeyCtrlP))
	if h.m.focus != focusProfiles {
		t.Fatalf("expected list focus")
	}
	h.send(runes("k"), keyType(tea.KeyEnter))

	if h.m.active != "a" || h.m.focus != focusForm {
		t.Fatalf("expected a selected and form focused, active=%q focus=%d", h.m.active, h.m.focus)
	}
	if got := h.m.Gather(); got.State != "In A" || got.Interval != 20 {
		t.Fatalf("fields not loaded: %+v", got)
	}
}

func TestStartStopAndQuitConfirmation(t *testing.T) {
	h := newHarness(t, &nopClient{})
	h.createProfile(t, "work")
	h.m.Show(controller.Form{ClientID: testClientID, State: "Coding", Interval: 5})

	h.send(keyType(tea.KeyCtrlG))
	if !h.m.broadcasting() {
		t.Fatalf("expected broadcasting status, got %+v", h.m.status)
	}

	h.send(keyType(tea.KeyCtrlQ))
	if h.m.confirmMode != confirmQuit {
		t.Fatalf("quit while running should ask")
	}
	h.send(runes("n"))
	if h.m.quitting {
		t.Fatalf("n must not quit")
	}

	h.send(keyType(tea.KeyCtrlX))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := h.rpc.Wait(ctx); err != nil {
		t.Fatalf("broadcaster did not stop: %v", err)
	}
	h.send(statusTickMsg{})
	if h.m.broadcasting() {
		t.Fatalf("status not refreshed: %+v", h.m.status)
	}

	_, cmd := h.m.Update(keyType(tea.KeyCtrlQ))
	if !h.m.quitting || cmd == nil {
		t.Fatalf("idle quit should exit immediately")
	}
}

func TestReportOpensRPCErrorDialog(t *testing.T) {
	h := newHarness(t, &nopClient{connectErr: stderrors.New("no discord")})
	h.createProfile(t, "work")
	h.m.Show(controller.Form{ClientID: testClientID, State: "Coding", Interval: 5})

	h.send(keyType(tea.KeyCtrlG))
	var r discordrpc.Report
	select {
	case r = <-h.rpc.Reports():
	case <-time.After(2 * time.Second):
		t.Fatalf("no report")
	}
	h.send(reportMsg{Report: r})

	if h.m.activeOverlay != overlayNotice || h.m.notice.Title != "RPC Error" {
		t.Fatalf("expected RPC error dialog, got %+v", h.m.notice)
	}
	if !strings.HasPrefix(h.m.notice.Message, "Connection error") {
		t.Fatalf("unexpected message %q", h.m.notice.Message)
	}
}

func TestThemeToggleNotifiesCallback(t *testing.T) {
	t.Cleanup(func() { _ = theme.SetCurrent("") })

	var got []string
	h := newHarness(t, &nopClient{}, WithThemeChange(func(name string) { got = append(got, name) }))

	h.send(keyType(tea.KeyCtrlT))
	h.send(keyType(tea.KeyCtrlT))
	if len(got) != 2 || got[0] != theme.Dark || got[1] != theme.Light {
		t.Fatalf("unexpected theme changes: %v", got)
	}
}

func TestViewRenders(t *testing.T) {
	h := newHarness(t, &nopClient{})
	h.createProfile(t, "work")

	out := h.m.View()
	for _, want := range []string{"Profiles", "work", "Client ID", "Button 2 URL", "Stopped"} {
		if !strings.Contains(out, want) {
			t.Fatalf("view missing %q", want)
		}
	}

	h.send(keyType(tea.KeyF1))
	if !strings.Contains(h.m.View(), "Keyboard Shortcuts") {
		t.Fatalf("help overlay not rendered")
	}

	h.send(tea.WindowSizeMsg{Width: 40, Height: 10})
	if !strings.Contains(h.m.View(), "Terminal too small") {
		t.Fatalf("expected size warning")
	}
}
