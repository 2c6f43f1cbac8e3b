package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/small-frappuccino/richpresence/pkg/log"
	_ "modernc.org/sqlite"
)

// Store wraps an embedded SQLite database holding the broadcaster run history
// and small runtime key/value settings.
// It uses modernc.org/sqlite for CGO-less builds.
type Store struct {
	dbPath string
	db     *sql.DB
}

// NewStore creates a new Store pointing to dbPath. Call Init() before using it.
func NewStore(dbPath string) *Store {
	return &Store{dbPath: dbPath}
}

// Path returns the database file path.
func (s *Store) Path() string { return s.dbPath }

// Init opens the SQLite database, configures pragmas, and ensures the schema exists.
func (s *Store) Init() error {
	if s.db != nil {
		return nil
	}
	if s.dbPath == "" {
		return fmt.Errorf("db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(s.dbPath), 0o755); err != nil {
		return fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.dbPath)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}

	// Pragmas for durability and concurrency
	pragmas := []struct{ stmt, what string }{
		{`PRAGMA journal_mode=WAL;`, "set WAL"},
		{`PRAGMA busy_timeout=5000;`, "set busy_timeout"},
		{`PRAGMA synchronous=NORMAL;`, "set synchronous"},
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p.stmt); err != nil {
			_ = db.Close()
			return fmt.Errorf("%s: %w", p.what, err)
		}
	}

	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	log.DatabaseLogger().Debug("History store ready", "path", s.dbPath)
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// RunRecord is one broadcaster run.
type RunRecord struct {
	ID        int64
	Profile   string
	ClientID  string
	StartedAt time.Time
	EndedAt   time.Time
	Pushes    int
	// Stage and Error are empty for runs that ended on a stop.
	Stage string
	Error string
}

// Failed reports whether the run ended on a connect or update failure.
func (r RunRecord) Failed() bool { return r.Error != "" }

// Duration is the wall time the run lasted.
func (r RunRecord) Duration() time.Duration {
	if r.EndedAt.Before(r.StartedAt) {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt)
}

// RecordRun inserts a run and returns its id.
func (s *Store) RecordRun(r RunRecord) (int64, error) {
	if s.db == nil {
		return 0, fmt.Errorf("store not initialized")
	}
	res, err := s.db.Exec(
		`INSERT INTO runs (profile, client_id, started_at, ended_at, pushes, stage, error)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.Profile, r.ClientID, r.StartedAt.UTC(), r.EndedAt.UTC(), r.Pushes, r.Stage, r.Error,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	return res.LastInsertId()
}

// RecentRuns returns up to limit runs, newest first. A non-positive limit means 20.
func (s *Store) RecentRuns(limit int) ([]RunRecord, error) {
	if s.db == nil {
		return nil, fmt.Errorf("store not initialized")
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, profile, client_id, started_at, ended_at, pushes, stage, error
         FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.ID, &r.Profile, &r.ClientID, &r.StartedAt, &r.EndedAt, &r.Pushes, &r.Stage, &r.Error); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ProfileStat aggregates runs per profile.
type ProfileStat struct {
	Profile  string
	Runs     int
	Failures int
	Pushes   int
	LastRun  time.Time
}

// ProfileStats returns aggregates for every profile with history, most recently used first.
func (s *Store) ProfileStats() ([]ProfileStat, error) {
	if s.db == nil {
		return nil, fmt.Errorf("store not initialized")
	}
	rows, err := s.db.Query(
		`SELECT profile, COUNT(*), SUM(CASE WHEN error <> '' THEN 1 ELSE 0 END), SUM(pushes), MAX(started_at)
         FROM runs GROUP BY profile ORDER BY MAX(started_at) DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	var out []ProfileStat
	for rows.Next() {
		var st ProfileStat
		var last string
		if err := rows.Scan(&st.Profile, &st.Runs, &st.Failures, &st.Pushes, &last); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		st.LastRun = parseTimestamp(last)
		out = append(out, st)
	}
	return out, rows.Err()
}

// PruneRuns keeps the newest keep runs and deletes the rest.
func (s *Store) PruneRuns(keep int) (int64, error) {
	if s.db == nil {
		return 0, fmt.Errorf("store not initialized")
	}
	if keep < 0 {
		keep = 0
	}
	res, err := s.db.Exec(
		`DELETE FROM runs WHERE id NOT IN (SELECT id FROM runs ORDER BY started_at DESC, id DESC LIMIT ?)`, keep,
	)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		log.DatabaseLogger().Info("Pruned run history", "deleted", n, "kept", keep)
	}
	return n, nil
}

// SetMeta stores a runtime setting.
func (s *Store) SetMeta(key, value string) error {
	if s.db == nil {
		return fmt.Errorf("store not initialized")
	}
	_, err := s.db.Exec(
		`INSERT INTO runtime_meta (key, value, updated_at) VALUES (?, ?, ?)
         ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	return err
}

// GetMeta returns a runtime setting; ok is false when unset.
func (s *Store) GetMeta(key string) (value string, ok bool, err error) {
	if s.db == nil {
		return "", false, fmt.Errorf("store not initialized")
	}
	row := s.db.QueryRow(`SELECT value FROM runtime_meta WHERE key=?`, key)
	if err := row.Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

// parseTimestamp reads the text form the driver uses for aggregated TIMESTAMP columns.
func parseTimestamp(v string) time.Time {
	v = strings.TrimSpace(v)
	layouts := []string{
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02T15:04:05.999999999-07:00",
		"2006-01-02 15:04:05.999999999Z07:00",
		time.RFC3339Nano,
		"2006-01-02 15:04:05",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func ensureSchema(db *sql.DB) error {
	const createRuns = `
CREATE TABLE IF NOT EXISTS runs (
  id         INTEGER PRIMARY KEY AUTOINCREMENT,
  profile    TEXT NOT NULL,
  client_id  TEXT NOT NULL,
  started_at TIMESTAMP NOT NULL,
  ended_at   TIMESTAMP NOT NULL,
  pushes     INTEGER NOT NULL DEFAULT 0,
  stage      TEXT NOT NULL DEFAULT '',
  error      TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_runs_profile ON runs(profile);`

	const createRuntimeMeta = `
CREATE TABLE IF NOT EXISTS runtime_meta (
  key        TEXT PRIMARY KEY,
  value      TEXT NOT NULL,
  updated_at TIMESTAMP NOT NULL
);`

	if _, err := db.Exec(createRuns); err != nil {
		return fmt.Errorf("create runs: %w", err)
	}
	if _, err := db.Exec(createRuntimeMeta); err != nil {
		return fmt.Errorf("create runtime_meta: %w", err)
	}
	return nil
}
