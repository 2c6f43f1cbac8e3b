package storage

import (
	"path/filepath"
	"testing"
	"time"
)

func newTempStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "history", "test.db")
	store := NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSchemaInitialized(t *testing.T) {
	store := newTempStore(t)
	rows, err := store.db.Query(`SELECT name FROM sqlite_master WHERE type='table'`)
	if err != nil {
		t.Fatalf("query schema: %v", err)
	}
	defer rows.Close()

	required := map[string]bool{
		"runs":         false,
		"runtime_meta": false,
	}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("scan: %v", err)
		}
		if _, ok := required[name]; ok {
			required[name] = true
		}
	}
	for k, ok := range required {
		if !ok {
			t.Fatalf("expected table %s to exist", k)
		}
	}

	if err := store.Init(); err != nil {
		t.Fatalf("second init should be a no-op: %v", err)
	}
}

func TestUninitializedStoreErrors(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "x.db"))
	if _, err := store.RecordRun(RunRecord{}); err == nil {
		t.Fatalf("expected error before Init")
	}
	if _, err := store.RecentRuns(1); err == nil {
		t.Fatalf("expected error before Init")
	}
	if err := NewStore("").Init(); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestRecordAndListRuns(t *testing.T) {
	store := newTempStore(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	runs := []RunRecord{
		{Profile: "demo", ClientID: "1", StartedAt: base, EndedAt: base.Add(time.Minute), Pushes: 4},
		{Profile: "work", ClientID: "2", StartedAt: base.Add(time.Hour), EndedAt: base.Add(time.Hour + time.Second), Stage: "connect", Error: "no discord"},
		{Profile: "demo", ClientID: "1", StartedAt: base.Add(2 * time.Hour), EndedAt: base.Add(3 * time.Hour), Pushes: 240},
	}
	for _, r := range runs {
		if _, err := store.RecordRun(r); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	got, err := store.RecentRuns(2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(got))
	}
	if got[0].Pushes != 240 || got[1].Profile != "work" {
		t.Fatalf("unexpected order: %+v", got)
	}
	if !got[1].Failed() || got[1].Stage != "connect" {
		t.Fatalf("expected failed connect run, got %+v", got[1])
	}
	if got[0].Duration() != time.Hour {
		t.Fatalf("unexpected duration %s", got[0].Duration())
	}
	if !got[0].StartedAt.Equal(base.Add(2 * time.Hour)) {
		t.Fatalf("started_at round trip: %s", got[0].StartedAt)
	}

	stats, err := store.ProfileStats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(stats) != 2 || stats[0].Profile != "demo" {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats[0].Runs != 2 || stats[0].Pushes != 244 || stats[0].Failures != 0 {
		t.Fatalf("unexpected demo stats: %+v", stats[0])
	}
	if stats[1].Failures != 1 {
		t.Fatalf("expected one failure for work, got %+v", stats[1])
	}
}

func TestPruneRunsKeepsNewest(t *testing.T) {
	store := newTempStore(t)
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		start := base.Add(time.Duration(i) * time.Minute)
		if _, err := store.RecordRun(RunRecord{Profile: "p", ClientID: "1", StartedAt: start, EndedAt: start}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	n, err := store.PruneRuns(2)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 deleted, got %d", n)
	}
	left, err := store.RecentRuns(10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(left) != 2 || !left[1].StartedAt.Equal(base.Add(3*time.Minute)) {
		t.Fatalf("unexpected remaining runs: %+v", left)
	}
}

func TestMetaRoundTrip(t *testing.T) {
	store := newTempStore(t)
	if _, ok, err := store.GetMeta("theme"); err != nil || ok {
		t.Fatalf("expected unset meta, ok=%v err=%v", ok, err)
	}
	if err := store.SetMeta("theme", "light"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.SetMeta("theme", "dark"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, ok, err := store.GetMeta("theme")
	if err != nil || !ok || v != "dark" {
		t.Fatalf("got %q ok=%v err=%v", v, ok, err)
	}
}
