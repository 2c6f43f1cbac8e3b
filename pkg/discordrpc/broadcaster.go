package discordrpc

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/small-frappuccino/richpresence/pkg/errors"
	"github.com/small-frappuccino/richpresence/pkg/files"
	"github.com/small-frappuccino/richpresence/pkg/log"
)

// State is the lifecycle position of a Broadcaster.
type State int32

const (
	StateIdle State = iota
	StateConnecting
	StateBroadcasting
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateBroadcasting:
		return "broadcasting"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// MarshalText renders the state name in JSON.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Stage names the step at which a run failed.
type Stage string

const (
	StageConnect Stage = "connect"
	StageUpdate  Stage = "update"
)

const (
	// DefaultReportBuffer is the capacity of the reports channel.
	DefaultReportBuffer = 8

	component = "discordrpc"
)

// ErrStopping is returned by Start while the previous run is still cleaning up.
var ErrStopping = stderrors.New("broadcaster is still stopping")

// Params configure one broadcaster run.
type Params struct {
	// Label identifies the run in logs and history, normally the profile name.
	Label    string
	ClientID string
	Presence files.Presence
	// Interval between pushes; non-positive means files.DefaultUpdateInterval seconds.
	Interval time.Duration
}

// Report is a terminal failure posted by the worker.
type Report struct {
	Stage Stage
	Label string
	Err   error
	At    time.Time
}

// RunSummary describes a finished run.
type RunSummary struct {
	Label     string
	ClientID  string
	StartedAt time.Time
	EndedAt   time.Time
	Pushes    int
	// Stage and Err are set when the run ended on a failure.
	Stage Stage
	Err   error
}

// Option configures a Broadcaster.
type Option func(*Broadcaster)

// WithRunHook registers fn to be called on the worker goroutine after every run.
func WithRunHook(fn func(RunSummary)) Option {
	return func(b *Broadcaster) { b.onRun = fn }
}

// WithReportBuffer overrides the reports channel capacity.
func WithReportBuffer(n int) Option {
	return func(b *Broadcaster) {
		if n > 0 {
			b.reportCap = n
		}
	}
}

// Broadcaster owns the Discord connection and pushes the current presence on a timer
// from a single background worker.
type Broadcaster struct {
	client    Client
	onRun     func(RunSummary)
	reportCap int
	reports   chan Report

	state    atomic.Int32
	snapshot atomic.Pointer[files.Presence]
	pushes   atomic.Int64

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	current Params
}

// NewBroadcaster returns an idle broadcaster using client.
func NewBroadcaster(client Client, opts ...Option) *Broadcaster {
	b := &Broadcaster{
		client:    client,
		reportCap: DefaultReportBuffer,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.reports = make(chan Report, b.reportCap)
	empty := files.Presence{}
	b.snapshot.Store(&empty)
	return b
}

// Start spawns the worker for p. It returns false without error when a run is
// already connecting or broadcasting, and ErrStopping while one is shutting down.
func (b *Broadcaster) Start(ctx context.Context, p Params) (bool, error) {
	if strings.TrimSpace(p.ClientID) == "" {
		return false, errors.Validation(component, "start", "client id is required")
	}
	if p.Interval <= 0 {
		p.Interval = files.DefaultUpdateInterval * time.Second
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.state.CompareAndSwap(int32(StateIdle), int32(StateConnecting)) {
		if State(b.state.Load()) == StateStopping {
			return false, ErrStopping
		}
		return false, nil
	}

	b.Publish(p.Presence)
	b.pushes.Store(0)

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	b.cancel = cancel
	b.done = done
	b.current = p

	log.RPCLogger().Info("Broadcaster starting", "profile", p.Label, "interval", p.Interval)
	go b.run(runCtx, cancel, p, done)
	return true, nil
}

// Stop asks the running worker to finish. An in-flight connect or update is not
// interrupted; the worker exits at its next wait. Stop on an idle broadcaster is a no-op.
func (b *Broadcaster) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cancel == nil {
		return
	}
	prev := State(b.state.Load())
	if prev == StateConnecting || prev == StateBroadcasting {
		b.state.Store(int32(StateStopping))
		log.RPCLogger().Info("Broadcaster stopping", "profile", b.current.Label, "from", prev)
	}
	b.cancel()
}

// Publish replaces the presence pushed on the next iteration.
func (b *Broadcaster) Publish(p files.Presence) {
	snap := p.Clone()
	b.snapshot.Store(&snap)
}

// Snapshot returns a copy of the presence that will be pushed next.
func (b *Broadcaster) Snapshot() files.Presence {
	return b.snapshot.Load().Clone()
}

// State returns the current lifecycle state.
func (b *Broadcaster) State() State {
	return State(b.state.Load())
}

// Pushes returns the number of successful updates in the current or last run.
func (b *Broadcaster) Pushes() int64 {
	return b.pushes.Load()
}

// Current returns the parameters of the current or last run.
func (b *Broadcaster) Current() Params {
	b.mu.Lock()
	defer b.mu.Unlock()
	p := b.current
	p.Presence = b.Snapshot()
	return p
}

// Reports returns the channel on which terminal run failures are posted.
func (b *Broadcaster) Reports() <-chan Report {
	return b.reports
}

// Done returns a channel closed when the current run has fully exited.
// It is already closed when no run was ever started.
func (b *Broadcaster) Done() <-chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.done == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return b.done
}

// Wait blocks until the current run exits or ctx is done.
func (b *Broadcaster) Wait(ctx context.Context) error {
	select {
	case <-b.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Broadcaster) run(ctx context.Context, cancel context.CancelFunc, p Params, done chan struct{}) {
	defer cancel()

	logger := log.RPCLogger().With("profile", p.Label)
	summary := RunSummary{
		Label:     p.Label,
		ClientID:  p.ClientID,
		StartedAt: time.Now(),
	}

	if err := b.client.Connect(p.ClientID); err != nil {
		summary.Stage = StageConnect
		summary.Err = errors.NewServiceError(errors.CategoryConnection, errors.SeverityHigh, component, "connect",
			"could not connect to Discord", err)
		b.post(Report{Stage: StageConnect, Label: p.Label, Err: summary.Err, At: time.Now()})
		if cerr := b.client.Close(); cerr != nil {
			logger.Warn("Close after failed connect", "err", cerr)
		}
		b.finish(summary, done)
		return
	}
	b.state.CompareAndSwap(int32(StateConnecting), int32(StateBroadcasting))
	logger.Info("Broadcasting presence")

	for ctx.Err() == nil {
		snap := b.snapshot.Load()
		if err := b.client.Update(BuildActivity(*snap)); err != nil {
			summary.Stage = StageUpdate
			summary.Err = errors.NewServiceError(errors.CategoryUpdate, errors.SeverityMedium, component, "update",
				"could not update presence", err)
			b.post(Report{Stage: StageUpdate, Label: p.Label, Err: summary.Err, At: time.Now()})
			break
		}
		b.pushes.Add(1)
		summary.Pushes++
		logger.Debug("Presence pushed", "pushes", summary.Pushes)

		timer := time.NewTimer(p.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
		case <-timer.C:
		}
	}

	if err := b.client.Clear(); err != nil {
		logger.Warn("Clear presence on exit", "err", err)
	}
	if err := b.client.Close(); err != nil {
		logger.Warn("Close connection on exit", "err", err)
	}
	b.finish(summary, done)
}

func (b *Broadcaster) finish(summary RunSummary, done chan struct{}) {
	summary.EndedAt = time.Now()
	if b.onRun != nil {
		b.onRun(summary)
	}

	b.mu.Lock()
	b.cancel = nil
	b.state.Store(int32(StateIdle))
	close(done)
	b.mu.Unlock()

	log.RPCLogger().Info("Broadcaster stopped", "profile", summary.Label, "pushes", summary.Pushes, "err", summary.Err)
}

// post never blocks the worker; a full channel drops the report.
func (b *Broadcaster) post(r Report) {
	select {
	case b.reports <- r:
	default:
		log.ErrorLoggerRaw().Warn("Dropped broadcaster report", "stage", r.Stage, "profile", r.Label, "err", r.Err)
	}
}
