package metastore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testRecord() Record {
	return Record{
		Build:       "b7f3",
		Datetime:    "2026-08-01T12:00:00Z",
		Locations:   "aaa",
		Multimedia:  "bbb",
		Subs:        "ccc",
		Summaries:   "ddd",
		Text:        "eee",
		WhatChanged: [5]bool{true, false, false, false, true},
	}
}

func TestReadAbsentIsNotAnError(t *testing.T) {
	store := New(t.TempDir(), nil)

	_, found, err := store.ReadExperience("summer-trip")
	if err != nil {
		t.Fatalf("absent record must not error: %v", err)
	}
	if found {
		t.Error("absent record must report found=false")
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	store := New(t.TempDir(), nil)
	want := testRecord()

	if err := store.WriteExperience("summer-trip", want); err != nil {
		t.Fatalf("WriteExperience: %v", err)
	}

	got, found, err := store.ReadExperience("summer-trip")
	if err != nil {
		t.Fatalf("ReadExperience: %v", err)
	}
	if !found {
		t.Fatal("record should exist after write")
	}
	if got != want {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestCorruptRecordIsAnError(t *testing.T) {
	dir := t.TempDir()
	store := New(dir, nil)

	path := store.ExperiencePath("summer-trip")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, found, err := store.ReadExperience("summer-trip")
	if err == nil {
		t.Fatal("corrupt record must surface an error, not read as absent")
	}
	if !found {
		t.Error("corrupt record must not be reported as absent")
	}
}

func TestWriteIsHumanDiffable(t *testing.T) {
	dir := t.TempDir()
	store := New(dir, nil)

	if err := store.WriteExperience("summer-trip", testRecord()); err != nil {
		t.Fatalf("WriteExperience: %v", err)
	}

	payload, err := os.ReadFile(store.ExperiencePath("summer-trip"))
	if err != nil {
		t.Fatal(err)
	}
	text := string(payload)
	if !strings.Contains(text, "\n") {
		t.Error("record should be indented, not a single line")
	}

	// Stable key order: build first, what_changed last.
	if strings.Index(text, `"build"`) > strings.Index(text, `"datetime"`) {
		t.Error("keys should appear in sorted order")
	}
	if strings.Index(text, `"text"`) > strings.Index(text, `"what_changed"`) {
		t.Error("what_changed should be the final key")
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		t.Fatalf("written record must parse: %v", err)
	}
	if len(raw) != 8 {
		t.Errorf("record should carry 8 fields, got %d", len(raw))
	}
}

func TestWriteLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	store := New(dir, nil)

	if err := store.WriteExperience("summer-trip", testRecord()); err != nil {
		t.Fatalf("WriteExperience: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(dir, "experiences"))
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".tmp") {
			t.Errorf("temp file left behind: %s", entry.Name())
		}
	}
}

func TestWriteOverwritesWholesale(t *testing.T) {
	store := New(t.TempDir(), nil)

	first := testRecord()
	if err := store.WriteExperience("summer-trip", first); err != nil {
		t.Fatal(err)
	}

	second := first
	second.Locations = "fff"
	second.WhatChanged = [5]bool{true, false, false, false, false}
	if err := store.WriteExperience("summer-trip", second); err != nil {
		t.Fatal(err)
	}

	got, _, err := store.ReadExperience("summer-trip")
	if err != nil {
		t.Fatal(err)
	}
	if got != second {
		t.Errorf("record should be replaced wholesale: got %+v", got)
	}
}

func TestPageRecordRoundTrip(t *testing.T) {
	store := New(t.TempDir(), nil)
	want := PageRecord{
		Build:        "b7f3",
		LastUpdate:   "2026-08-01T12:00:00Z",
		PageChecksum: "abc123",
	}

	if err := store.WritePage("root!index", want); err != nil {
		t.Fatalf("WritePage: %v", err)
	}

	got, found, err := store.ReadPage("root!index")
	if err != nil {
		t.Fatalf("ReadPage: %v", err)
	}
	if !found {
		t.Fatal("page record should exist after write")
	}
	if got != want {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestExperienceSlugs(t *testing.T) {
	store := New(t.TempDir(), nil)

	slugs, err := store.ExperienceSlugs()
	if err != nil {
		t.Fatalf("listing with no compiled dir must not error: %v", err)
	}
	if len(slugs) != 0 {
		t.Fatalf("expected no slugs, got %v", slugs)
	}

	for _, slug := range []string{"iceland", "summer-trip"} {
		if err := store.WriteExperience(slug, testRecord()); err != nil {
			t.Fatal(err)
		}
	}

	slugs, err = store.ExperienceSlugs()
	if err != nil {
		t.Fatal(err)
	}
	if len(slugs) != 2 || slugs[0] != "iceland" || slugs[1] != "summer-trip" {
		t.Errorf("unexpected slugs: %v", slugs)
	}
}
