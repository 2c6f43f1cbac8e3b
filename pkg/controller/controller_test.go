package controller

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/small-frappuccino/richpresence/pkg/discordrpc"
	"github.com/small-frappuccino/richpresence/pkg/errors"
	"github.com/small-frappuccino/richpresence/pkg/files"
)

const testClientID = "1234567890123456789"

type fakeView struct {
	form     Form
	shown    []Form
	names    []string
	active   string
	statuses []Status
	notices  []Notice
}

func (v *fakeView) Gather() Form { return v.form }
func (v *fakeView) Show(f Form) {
	v.form = f
	v.shown = append(v.shown, f)
}
func (v *fakeView) ListProfiles(names []string, active string) {
	v.names = append([]string(nil), names...)
	v.active = active
}
func (v *fakeView) ShowStatus(s Status) { v.statuses = append(v.statuses, s) }
func (v *fakeView) Notify(n Notice)     { v.notices = append(v.notices, n) }

func (v *fakeView) lastNotice() Notice {
	if len(v.notices) == 0 {
		return Notice{}
	}
	return v.notices[len(v.notices)-1]
}

type stubClient struct {
	mu         sync.Mutex
	connectErr error
	ids        []string
	updates    []*discordrpc.Activity
}

func (c *stubClient) Connect(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids = append(c.ids, id)
	return c.connectErr
}

func (c *stubClient) Update(a *discordrpc.Activity) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updates = append(c.updates, a)
	return nil
}

func (c *stubClient) Clear() error { return nil }
func (c *stubClient) Close() error { return nil }

func (c *stubClient) last() *discordrpc.Activity {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.updates) == 0 {
		return nil
	}
	return c.updates[len(c.updates)-1]
}

type harness struct {
	ctrl   *Controller
	view   *fakeView
	client *stubClient
	rpc    *discordrpc.Broadcaster
	store  *files.ProfileManager
	now    time.Time
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		view:   &fakeView{},
		client: &stubClient{},
		store:  files.NewProfileManagerWithPath(filepath.Join(t.TempDir(), "profiles.json")),
		now:    time.Unix(1700000000, 0),
	}
	h.rpc = discordrpc.NewBroadcaster(h.client)
	opts = append([]Option{WithClock(func() time.Time { return h.now })}, opts...)
	h.ctrl = New(h.store, h.rpc, h.view, opts...)
	if err := h.ctrl.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		h.rpc.Stop()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = h.rpc.Wait(ctx)
	})
	return h
}

func waitState(t *testing.T, rpc *discordrpc.Broadcaster, want discordrpc.State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for rpc.State() != want {
		if time.Now().After(deadline) {
			t.Fatalf("state %s never reached, at %s", want, rpc.State())
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func TestInitEmptyStoreShowsBlankForm(t *testing.T) {
	h := newHarness(t)
	if len(h.view.names) != 0 || h.view.active != "" {
		t.Fatalf("expected empty list, got %v active=%q", h.view.names, h.view.active)
	}
	if h.view.form.Interval != files.DefaultUpdateInterval {
		t.Fatalf("expected default interval in blank form, got %d", h.view.form.Interval)
	}
	if got := h.view.statuses[len(h.view.statuses)-1].Label(); got != "Stopped" {
		t.Fatalf("unexpected status %q", got)
	}
}

func TestNewCopyDeletePersistImmediately(t *testing.T) {
	h := newHarness(t)
	if err := h.ctrl.NewProfile("A"); err != nil {
		t.Fatalf("new: %v", err)
	}
	h.view.form.State = "Coding"
	if err := h.ctrl.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := h.ctrl.CopyProfile("B"); err != nil {
		t.Fatalf("copy: %v", err)
	}
	if h.view.active != "B" || h.view.form.State != "Coding" {
		t.Fatalf("copy not shown: active=%q form=%+v", h.view.active, h.view.form)
	}

	reloaded := files.NewProfileManagerWithPath(h.store.Path())
	if err := reloaded.Load(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reflect.DeepEqual(reloaded.Names(), []string{"A", "B"}) || reloaded.ActiveName() != "B" {
		t.Fatalf("copy not persisted: %v active=%q", reloaded.Names(), reloaded.ActiveName())
	}

	if err := h.ctrl.DeleteProfile(); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if h.view.active != "A" {
		t.Fatalf("expected A active after deleting B, got %q", h.view.active)
	}
	if err := reloaded.Load(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reflect.DeepEqual(reloaded.Names(), []string{"A"}) {
		t.Fatalf("delete not persisted: %v", reloaded.Names())
	}
}

func TestNewDuplicateNotifiesAndKeepsRecord(t *testing.T) {
	h := newHarness(t)
	_ = h.ctrl.NewProfile("A")
	h.view.form.Details = "keep me"
	_ = h.ctrl.Save()

	err := h.ctrl.NewProfile("A")
	if !errors.IsCategory(err, errors.CategoryDuplicate) {
		t.Fatalf("expected duplicate, got %v", err)
	}
	if n := h.view.lastNotice(); n.Level != LevelError || n.Message == "" {
		t.Fatalf("expected error notice, got %+v", n)
	}
	p, _ := h.store.Get("A")
	if p.Presence.Details != "keep me" {
		t.Fatalf("A was altered: %+v", p)
	}
}

func TestSaveRequiresActiveProfile(t *testing.T) {
	h := newHarness(t)
	h.view.form.State = "x"
	if err := h.ctrl.Save(); !errors.IsCategory(err, errors.CategoryValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if h.store.Len() != 0 {
		t.Fatalf("store mutated")
	}
}

func TestSaveDemoProfile(t *testing.T) {
	h := newHarness(t)
	_ = h.ctrl.NewProfile("demo")
	h.view.form = Form{State: " Coding ", Details: "", Interval: 30}
	if err := h.ctrl.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	p, _ := h.store.Get("demo")
	want := files.Presence{State: "Coding", Start: h.now.Unix()}
	if !reflect.DeepEqual(p.Presence, want) || p.UpdateInterval != 30 {
		t.Fatalf("unexpected saved profile: %+v", p)
	}
	if h.view.lastNotice().Title != "Saved" {
		t.Fatalf("expected saved notice, got %+v", h.view.lastNotice())
	}
}

func TestSaveClampsIntervalAndKeepsButtons(t *testing.T) {
	h := newHarness(t)
	_ = h.ctrl.NewProfile("p")
	h.view.form = Form{
		Details:  "d",
		Interval: 2,
		Buttons: [2]files.Button{
			{Label: "Repo", URL: "https://example.com"},
			{Label: "no url"},
		},
	}
	if err := h.ctrl.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	p, _ := h.store.Get("p")
	if p.UpdateInterval != files.MinUpdateInterval {
		t.Fatalf("expected clamped interval, got %d", p.UpdateInterval)
	}
	if len(p.Presence.Buttons) != 1 || p.Presence.Buttons[0].Label != "Repo" {
		t.Fatalf("unexpected buttons: %+v", p.Presence.Buttons)
	}
}

func TestStartValidation(t *testing.T) {
	cases := []struct {
		name string
		opts []Option
		form Form
	}{
		{name: "missing client id", form: Form{State: "x"}},
		{name: "invalid client id", form: Form{ClientID: "abc", State: "x"}},
		{name: "missing text", form: Form{ClientID: testClientID, LargeImage: "logo"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, tc.opts...)
			h.view.form = tc.form
			if err := h.ctrl.Start(); !errors.IsCategory(err, errors.CategoryValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if h.rpc.State() != discordrpc.StateIdle {
				t.Fatalf("broadcaster started despite validation error")
			}
			if h.view.lastNotice().Level != LevelError {
				t.Fatalf("expected error notice")
			}
		})
	}
}

func TestStartUsesDefaultClientIDAndFullPresence(t *testing.T) {
	h := newHarness(t, WithDefaultClientID(testClientID))
	_ = h.ctrl.NewProfile("p")
	h.view.form = Form{
		State:      "Coding",
		LargeImage: "logo",
		Interval:   5,
		Buttons:    [2]files.Button{{Label: "Repo", URL: "https://example.com"}},
	}
	if err := h.ctrl.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := h.ctrl.Start(); err != nil {
		t.Fatalf("second start should be a no-op: %v", err)
	}
	waitState(t, h.rpc, discordrpc.StateBroadcasting)

	deadline := time.Now().Add(2 * time.Second)
	for h.client.last() == nil {
		if time.Now().After(deadline) {
			t.Fatalf("no update pushed")
		}
		time.Sleep(2 * time.Millisecond)
	}
	a := h.client.last()
	if a.State != "Coding" || a.Assets == nil || a.Assets.LargeImage != "logo" || len(a.Buttons) != 1 {
		t.Fatalf("unexpected activity: %+v", a)
	}
	if *a.Timestamps.Start != uint64(h.now.Unix())*1000 {
		t.Fatalf("unexpected start timestamp %d", *a.Timestamps.Start)
	}
	h.client.mu.Lock()
	ids := append([]string(nil), h.client.ids...)
	h.client.mu.Unlock()
	if len(ids) != 1 || ids[0] != testClientID {
		t.Fatalf("expected one connect with default id, got %v", ids)
	}
	if st := h.ctrl.Status(); st.Profile != "p" || st.Label() != "Running" {
		t.Fatalf("unexpected status: %+v", st)
	}

	p, _ := h.store.Get("p")
	if p.ClientID != "" {
		t.Fatalf("start must not persist the default client id, got %q", p.ClientID)
	}
}

func TestSaveWhileRunningSwapsSnapshot(t *testing.T) {
	h := newHarness(t)
	_ = h.ctrl.NewProfile("p")
	h.view.form = Form{ClientID: testClientID, State: "Coding", Interval: 5}
	if err := h.ctrl.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitState(t, h.rpc, discordrpc.StateBroadcasting)

	h.view.form.State = "Reviewing"
	if err := h.ctrl.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got := h.rpc.Snapshot().State; got != "Reviewing" {
		t.Fatalf("snapshot not swapped, got %q", got)
	}
	if h.rpc.State() != discordrpc.StateBroadcasting {
		t.Fatalf("save must not restart the worker")
	}
}

func TestReportSurfacesError(t *testing.T) {
	h := newHarness(t)
	h.client.connectErr = stderrors.New("discord not running")
	_ = h.ctrl.NewProfile("p")
	h.view.form = Form{ClientID: testClientID, State: "Coding"}
	if err := h.ctrl.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	select {
	case r := <-h.ctrl.Reports():
		h.ctrl.HandleReport(r)
	case <-time.After(2 * time.Second):
		t.Fatalf("no report")
	}
	n := h.view.lastNotice()
	if n.Level != LevelError || n.Title != "RPC Error" {
		t.Fatalf("unexpected notice: %+v", n)
	}
	waitState(t, h.rpc, discordrpc.StateIdle)
	if got := h.ctrl.Status().Label(); got != "Failed" {
		t.Fatalf("expected failed status, got %q", got)
	}

	h.client.mu.Lock()
	h.client.connectErr = nil
	h.client.mu.Unlock()
	if err := h.ctrl.Start(); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if h.ctrl.Status().LastError != "" {
		t.Fatalf("last error should clear on a new start")
	}
}

func TestStopReturnsToIdle(t *testing.T) {
	h := newHarness(t)
	_ = h.ctrl.NewProfile("p")
	h.view.form = Form{ClientID: testClientID, State: "Coding", Interval: 3600}
	if err := h.ctrl.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitState(t, h.rpc, discordrpc.StateBroadcasting)
	h.ctrl.Stop()
	waitState(t, h.rpc, discordrpc.StateIdle)
	if got := h.ctrl.Status().Label(); got != "Stopped" {
		t.Fatalf("unexpected status %q", got)
	}
}

func TestFormRoundTrip(t *testing.T) {
	p := files.Profile{
		ClientID:       "1",
		UpdateInterval: 60,
		Presence: files.Presence{
			State:   "s",
			Details: "d",
			Start:   5,
			Buttons: []files.Button{{Label: "a", URL: "u"}, {Label: "b", URL: "v"}},
		},
	}
	now := time.Unix(99, 0)
	got := FormFromProfile(p).Profile(now)
	p.Presence.Start = 99
	if !reflect.DeepEqual(got, p) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, p)
	}
}

func TestClampInterval(t *testing.T) {
	cases := map[int]int{0: 15, -3: 5, 4: 5, 5: 5, 30: 30, 3600: 3600, 9000: 3600}
	for in, want := range cases {
		if got := ClampInterval(in); got != want {
			t.Fatalf("ClampInterval(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestReloadPublishesOrRequestsRestart(t *testing.T) {
	h := newHarness(t)
	_ = h.ctrl.NewProfile("p")
	_ = h.ctrl.NewProfile("other")
	_ = h.ctrl.Select("p")
	h.view.form = Form{ClientID: testClientID, State: "Coding", Interval: 5}
	if err := h.ctrl.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := h.ctrl.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitState(t, h.rpc, discordrpc.StateBroadcasting)

	edit := func(fn func(*files.Profile)) {
		t.Helper()
		disk := files.NewProfileManagerWithPath(h.store.Path())
		if err := disk.Load(); err != nil {
			t.Fatalf("load: %v", err)
		}
		p, _ := disk.Get("p")
		fn(&p)
		if err := disk.SaveProfile("p", p); err != nil {
			t.Fatalf("save profile: %v", err)
		}
		if err := disk.Select("other"); err != nil {
			t.Fatalf("select: %v", err)
		}
		if err := disk.Save(); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	edit(func(p *files.Profile) { p.Presence.State = "Reviewing" })
	restart, err := h.ctrl.Reload()
	if err != nil || restart {
		t.Fatalf("text change should publish: restart=%v err=%v", restart, err)
	}
	if got := h.rpc.Snapshot().State; got != "Reviewing" {
		t.Fatalf("snapshot not reloaded, got %q", got)
	}
	if h.view.active != "p" || h.view.form.State != "Reviewing" {
		t.Fatalf("running profile should stay active: active=%q form=%+v", h.view.active, h.view.form)
	}

	edit(func(p *files.Profile) { p.UpdateInterval = 60 })
	restart, err = h.ctrl.Reload()
	if err != nil || !restart {
		t.Fatalf("interval change should request a restart: restart=%v err=%v", restart, err)
	}
}

func TestReloadWhileIdleOnlyRefreshes(t *testing.T) {
	h := newHarness(t)
	disk := files.NewProfileManagerWithPath(h.store.Path())
	if err := disk.Create("fresh"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := disk.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	restart, err := h.ctrl.Reload()
	if err != nil || restart {
		t.Fatalf("unexpected reload result: restart=%v err=%v", restart, err)
	}
	if !reflect.DeepEqual(h.view.names, []string{"fresh"}) || h.view.active != "fresh" {
		t.Fatalf("view not refreshed: %v active=%q", h.view.names, h.view.active)
	}
}
