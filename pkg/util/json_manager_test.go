package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestJSONManagerMissingFileIsNoop(t *testing.T) {
	m := NewJSONManager(filepath.Join(t.TempDir(), "missing.json"))
	v := sample{Name: "keep"}
	if err := m.Load(&v); err != nil {
		t.Fatalf("load: %v", err)
	}
	if v.Name != "keep" {
		t.Fatalf("expected untouched value, got %+v", v)
	}
	if ok, err := m.Exists(); ok || err != nil {
		t.Fatalf("expected file to be absent, got ok=%v err=%v", ok, err)
	}
}

func TestJSONManagerSaveReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "data.json")
	m := NewJSONManager(path)

	if err := m.Save(sample{Name: "a", Count: 1}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := m.Save(sample{Name: "b", Count: 2}); err != nil {
		t.Fatalf("second save: %v", err)
	}

	var got sample
	if err := m.Load(&got); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Name != "b" || got.Count != 2 {
		t.Fatalf("unexpected content: %+v", got)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

func TestJSONManagerExistsReportsStatErrors(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	ok, err := NewJSONManager(filepath.Join(blocker, "data.json")).Exists()
	if ok || err == nil {
		t.Fatalf("expected a stat error under a regular file, got ok=%v err=%v", ok, err)
	}

	path := filepath.Join(t.TempDir(), "data.json")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if ok, err := NewJSONManager(path).Exists(); !ok || err != nil {
		t.Fatalf("expected file to exist, got ok=%v err=%v", ok, err)
	}
}

func TestJSONManagerLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	var v sample
	if err := NewJSONManager(path).Load(&v); err == nil {
		t.Fatalf("expected unmarshal error")
	}
}
