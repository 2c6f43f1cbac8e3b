package controller

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/small-frappuccino/richpresence/pkg/discordrpc"
	"github.com/small-frappuccino/richpresence/pkg/errors"
	"github.com/small-frappuccino/richpresence/pkg/files"
	"github.com/small-frappuccino/richpresence/pkg/log"
)

const component = "controller"

// Broadcaster is the part of discordrpc.Broadcaster the Controller drives.
type Broadcaster interface {
	Start(ctx context.Context, p discordrpc.Params) (bool, error)
	Stop()
	Publish(files.Presence)
	State() discordrpc.State
	Pushes() int64
	Current() discordrpc.Params
	Reports() <-chan discordrpc.Report
}

// Option configures a Controller.
type Option func(*Controller)

// WithDefaultClientID sets the client id used when a profile leaves it blank.
func WithDefaultClientID(id string) Option {
	return func(c *Controller) { c.defaultClientID = strings.TrimSpace(id) }
}

// WithClock overrides time.Now for start timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithContext sets the parent context of every broadcaster run.
func WithContext(ctx context.Context) Option {
	return func(c *Controller) { c.ctx = ctx }
}

// Controller mediates between a View, the profile store and the broadcaster.
// It is not safe for concurrent use; call it from the foreground loop only.
type Controller struct {
	store *files.ProfileManager
	rpc   Broadcaster
	view  View

	defaultClientID string
	now             func() time.Time
	ctx             context.Context
	lastErr         string
}

// New returns a controller. Call Init before anything else.
func New(store *files.ProfileManager, rpc Broadcaster, view View, opts ...Option) *Controller {
	c := &Controller{
		store: store,
		rpc:   rpc,
		view:  view,
		now:   time.Now,
		ctx:   context.Background(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Init loads the store and shows the active profile.
func (c *Controller) Init() error {
	if err := c.store.Load(); err != nil {
		return c.fail("Load failed", err)
	}
	c.refresh()
	return nil
}

// Store exposes the profile store.
func (c *Controller) Store() *files.ProfileManager { return c.store }

// DefaultClientID is the fallback used for blank profile client ids.
func (c *Controller) DefaultClientID() string { return c.defaultClientID }

// NewProfile creates an empty profile named name, activates it and persists the store.
func (c *Controller) NewProfile(name string) error {
	name = strings.TrimSpace(name)
	if err := c.store.Create(name); err != nil {
		return c.fail("New Profile", err)
	}
	if err := c.store.Save(); err != nil {
		return c.fail("Save failed", err)
	}
	log.ApplicationLogger().Info("Profile created", "profile", name)
	c.refresh()
	return nil
}

// CopyProfile deep-copies the active profile under newName, activates the copy and persists the store.
func (c *Controller) CopyProfile(newName string) error {
	newName = strings.TrimSpace(newName)
	src := c.store.ActiveName()
	if err := c.store.Copy(src, newName); err != nil {
		return c.fail("Copy Profile", err)
	}
	if err := c.store.Save(); err != nil {
		return c.fail("Save failed", err)
	}
	log.ApplicationLogger().Info("Profile copied", "from", src, "to", newName)
	c.refresh()
	return nil
}

// DeleteProfile removes the active profile and persists the store.
// Confirmation is the View's job.
func (c *Controller) DeleteProfile() error {
	name := c.store.ActiveName()
	if name == "" {
		return c.fail("Delete", errors.Validation(component, "delete", "no profile selected"))
	}
	if err := c.store.Delete(name); err != nil {
		return c.fail("Delete", err)
	}
	if err := c.store.Save(); err != nil {
		return c.fail("Save failed", err)
	}
	log.ApplicationLogger().Info("Profile deleted", "profile", name)
	c.refresh()
	return nil
}

// Select activates name and shows its fields. Unsaved edits are discarded.
func (c *Controller) Select(name string) error {
	if err := c.store.Select(name); err != nil {
		return c.fail("Select", err)
	}
	c.refresh()
	return nil
}

// Save gathers the fields into the active profile and persists the store.
// A running broadcast of the same profile picks up the new presence on its next push.
func (c *Controller) Save() error {
	name := c.store.ActiveName()
	if name == "" {
		return c.fail("Save", errors.Validation(component, "save", "create or select a profile first"))
	}

	p := c.view.Gather().Profile(c.now())
	if err := c.store.SaveProfile(name, p); err != nil {
		return c.fail("Save failed", err)
	}

	if c.live(name) {
		c.rpc.Publish(p.Presence)
		log.ApplicationLogger().Info("Live presence updated", "profile", name)
	}
	c.view.Show(FormFromProfile(p))
	c.view.Notify(Notice{Level: LevelInfo, Title: "Saved", Message: "Profile saved."})
	return nil
}

// Start validates the fields and starts broadcasting them. Starting while a
// run is active does nothing.
func (c *Controller) Start() error {
	if c.running() {
		return nil
	}

	form := c.view.Gather()
	clientID := strings.TrimSpace(form.ClientID)
	if clientID == "" {
		clientID = c.defaultClientID
	}
	clientID, err := discordrpc.ValidateClientID(clientID)
	if err != nil {
		return c.fail("Start", err)
	}

	p := form.Profile(c.now())
	if !p.Presence.HasText() {
		return c.fail("Start", errors.Validation(component, "start", "state or details is required"))
	}

	started, err := c.rpc.Start(c.ctx, discordrpc.Params{
		Label:    c.store.ActiveName(),
		ClientID: clientID,
		Presence: p.Presence,
		Interval: time.Duration(p.UpdateInterval) * time.Second,
	})
	if err != nil {
		if stderrors.Is(err, discordrpc.ErrStopping) {
			c.view.Notify(Notice{Level: LevelWarning, Title: "Busy", Message: "The previous broadcast is still stopping; try again in a moment."})
			c.ShowStatus()
			return err
		}
		return c.fail("Start", err)
	}
	if started {
		c.lastErr = ""
	}
	c.ShowStatus()
	return nil
}

// Stop asks the broadcaster to stop. It returns immediately.
func (c *Controller) Stop() {
	c.rpc.Stop()
	c.ShowStatus()
}

// Reload re-reads the store from disk and refreshes the view. The running
// profile stays active when it still exists and its presence is published.
// It returns true when the profile's client id or interval changed, in which
// case the caller has to restart the run for the change to apply.
func (c *Controller) Reload() (bool, error) {
	label := ""
	if c.running() {
		label = c.rpc.Current().Label
	}
	if err := c.store.Load(); err != nil {
		return false, c.fail("Reload failed", err)
	}
	if label != "" {
		if _, ok := c.store.Get(label); ok {
			_ = c.store.Select(label)
		}
	}
	c.refresh()
	if label == "" {
		return false, nil
	}

	p, ok := c.store.Get(label)
	if !ok {
		log.ApplicationLogger().Warn("Running profile removed from disk; keeping last presence", "profile", label)
		return false, nil
	}
	cur := c.rpc.Current()
	clientID := strings.TrimSpace(p.ClientID)
	if clientID == "" {
		clientID = c.defaultClientID
	}
	interval := time.Duration(ClampInterval(p.UpdateInterval)) * time.Second
	if clientID != cur.ClientID || interval != cur.Interval {
		log.ApplicationLogger().Info("Profile changed connection settings", "profile", label)
		return true, nil
	}
	c.rpc.Publish(p.Presence)
	log.ApplicationLogger().Info("Live presence reloaded", "profile", label)
	return false, nil
}

// Reports is the broadcaster's failure channel, to be drained by the foreground loop.
func (c *Controller) Reports() <-chan discordrpc.Report {
	return c.rpc.Reports()
}

// HandleReport surfaces a broadcaster failure to the user.
func (c *Controller) HandleReport(r discordrpc.Report) {
	title := "RPC Error"
	prefix := "Error updating presence"
	if r.Stage == discordrpc.StageConnect {
		prefix = "Connection error"
	}
	msg := prefix
	if r.Err != nil {
		msg = prefix + ": " + r.Err.Error()
	}
	c.lastErr = msg
	log.ErrorLoggerRaw().Error("Broadcast failed", "stage", r.Stage, "profile", r.Label, "err", r.Err)
	c.view.Notify(Notice{Level: LevelError, Title: title, Message: msg})
	c.ShowStatus()
}

// Status returns the current broadcaster status.
func (c *Controller) Status() Status {
	st := Status{
		State:     c.rpc.State(),
		Pushes:    c.rpc.Pushes(),
		LastError: c.lastErr,
	}
	if st.State != discordrpc.StateIdle || st.Pushes > 0 {
		st.Profile = c.rpc.Current().Label
	}
	return st
}

// ShowStatus pushes the current status to the view.
func (c *Controller) ShowStatus() {
	c.view.ShowStatus(c.Status())
}

// refresh re-renders the profile list, the active profile's fields and the status.
func (c *Controller) refresh() {
	name, p, ok := c.store.Active()
	c.view.ListProfiles(c.store.Names(), name)
	if ok {
		c.view.Show(FormFromProfile(p))
	} else {
		c.view.Show(FormFromProfile(files.NewProfile()))
	}
	c.ShowStatus()
}

func (c *Controller) running() bool {
	s := c.rpc.State()
	return s == discordrpc.StateConnecting || s == discordrpc.StateBroadcasting
}

func (c *Controller) live(name string) bool {
	return c.running() && c.rpc.Current().Label == name
}

// fail notifies the view and returns err unchanged.
func (c *Controller) fail(title string, err error) error {
	errors.Log(err)
	c.view.Notify(Notice{Level: LevelError, Title: title, Message: err.Error()})
	return err
}
