// Package app wires the profile store, the broadcaster, run history and the
// user-facing surfaces (terminal editor, headless runner, CLI commands).
package app

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/small-frappuccino/richpresence/pkg/discordrpc"
	"github.com/small-frappuccino/richpresence/pkg/errutil"
	"github.com/small-frappuccino/richpresence/pkg/files"
	"github.com/small-frappuccino/richpresence/pkg/log"
	"github.com/small-frappuccino/richpresence/pkg/storage"
	"github.com/small-frappuccino/richpresence/pkg/theme"
	"github.com/small-frappuccino/richpresence/pkg/util"
)

// Environment variables.
const (
	EnvClientID    = "CLIENT_ID"
	EnvConfig      = "RICHPRESENCE_CONFIG"
	EnvHistoryDB   = "RICHPRESENCE_HISTORY_DB"
	EnvTheme       = "RICHPRESENCE_THEME"
	EnvControlAddr = "RICHPRESENCE_CONTROL_ADDR"
	EnvNoWatch     = "RICHPRESENCE_NO_WATCH"
	EnvHistoryKeep = "RICHPRESENCE_HISTORY_KEEP"
	EnvLogLevel    = "LOG_LEVEL"
)

const (
	// defaultHistoryKeep bounds the runs table unless RICHPRESENCE_HISTORY_KEEP is set.
	defaultHistoryKeep = 500
	// metaTheme is the runtime_meta key holding the last theme choice.
	metaTheme = "theme"
)

// mode selects how logging is configured.
type mode int

const (
	// modeTUI keeps the alt-screen clean: file logging only.
	modeTUI mode = iota
	// modeHeadless logs to stderr and the file.
	modeHeadless
	// modeCommand is for short CLI commands; only warnings reach the console unless LOG_LEVEL says otherwise.
	modeCommand
)

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	logFile    string
	logLevel   string
}

func (o *rootOptions) profilesPath() string {
	if p := strings.TrimSpace(o.configPath); p != "" {
		return p
	}
	return util.EnvString(EnvConfig, util.GetProfilesFilePath())
}

// setupLogging installs the global logger for m.
func (o *rootOptions) setupLogging(m mode) error {
	opts := log.Options{
		Console:  m != modeTUI,
		FilePath: strings.TrimSpace(o.logFile),
	}
	switch {
	case strings.TrimSpace(o.logLevel) != "":
		lvl := log.ParseLevel(o.logLevel)
		opts.Level = &lvl
	case m == modeCommand && strings.TrimSpace(os.Getenv(EnvLogLevel)) == "":
		lvl := slog.LevelWarn
		opts.Level = &lvl
	}
	if opts.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(opts.FilePath), 0o755); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
	}
	return log.SetupLogger(opts)
}

// loadProfiles opens and loads the profile document.
func (o *rootOptions) loadProfiles() (*files.ProfileManager, error) {
	store := files.NewProfileManagerWithPath(o.profilesPath())
	if err := store.Load(); err != nil {
		return nil, err
	}
	return store, nil
}

// defaultClientID reads CLIENT_ID once, loading the fallback .env files if needed.
func defaultClientID() string {
	id, err := util.LoadEnvWithFallbacks(EnvClientID)
	if err != nil {
		log.ApplicationLogger().Debug("No default client id", "err", err)
		return ""
	}
	return id
}

// historyPath returns RICHPRESENCE_HISTORY_DB or the per-user default.
func historyPath() string {
	return util.EnvString(EnvHistoryDB, util.GetHistoryDBPath())
}

// historyKeep is the number of runs kept after each recorded run.
func historyKeep() int {
	n := util.EnvInt64(EnvHistoryKeep, defaultHistoryKeep)
	if n <= 0 {
		return defaultHistoryKeep
	}
	return int(n)
}

// openHistory opens the run history database, creating it as needed.
func openHistory() (*storage.Store, error) {
	path := historyPath()
	err := errutil.HandleConfigError("create history directory", path, func() error {
		if path == util.GetHistoryDBPath() {
			return util.EnsureCacheDirs()
		}
		return os.MkdirAll(filepath.Dir(path), 0o755)
	})
	if err != nil {
		return nil, err
	}
	store := storage.NewStore(path)
	if err := store.Init(); err != nil {
		return nil, fmt.Errorf("initialize history store: %w", err)
	}
	return store, nil
}

// recordRun returns the broadcaster run hook that appends each run to history.
func recordRun(history *storage.Store) func(discordrpc.RunSummary) {
	return func(s discordrpc.RunSummary) {
		rec := storage.RunRecord{
			Profile:   s.Label,
			ClientID:  s.ClientID,
			StartedAt: s.StartedAt,
			EndedAt:   s.EndedAt,
			Pushes:    s.Pushes,
			Stage:     string(s.Stage),
		}
		if s.Err != nil {
			rec.Error = s.Err.Error()
		}
		if _, err := history.RecordRun(rec); err != nil {
			log.DatabaseLogger().Warn("Failed to record run", "profile", s.Label, "err", err)
			return
		}
		if _, err := history.PruneRuns(historyKeep()); err != nil {
			log.DatabaseLogger().Warn("Failed to prune run history", "err", err)
		}
	}
}

// newBroadcaster builds the broadcaster over the Discord IPC client, recording
// runs when history is available.
func newBroadcaster(client discordrpc.Client, history *storage.Store) *discordrpc.Broadcaster {
	var opts []discordrpc.Option
	if history != nil {
		opts = append(opts, discordrpc.WithRunHook(recordRun(history)))
	}
	return discordrpc.NewBroadcaster(client, opts...)
}

// applyTheme selects the theme from RICHPRESENCE_THEME, else the last saved choice.
func applyTheme(history *storage.Store) {
	name := util.EnvString(EnvTheme, "")
	if name == "" && history != nil {
		if v, ok, err := history.GetMeta(metaTheme); err == nil && ok {
			name = v
		}
	}
	if err := theme.SetCurrent(name); err != nil {
		log.ApplicationLogger().Warn("Unknown theme; using default", "theme", name, "err", err)
		_ = theme.SetCurrent("")
	}
}

// saveTheme persists the theme choice for the next session.
func saveTheme(history *storage.Store) func(string) {
	return func(name string) {
		if history == nil {
			return
		}
		if err := history.SetMeta(metaTheme, name); err != nil {
			log.DatabaseLogger().Warn("Failed to save theme", "theme", name, "err", err)
		}
	}
}
