package metastore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"waymark/internal/fileutil"
	"waymark/internal/logging"
)

// Record is the persisted change-detection state for one experience.
// Fields are declared in key order so the serialized form diffs cleanly.
type Record struct {
	Build       string  `json:"build"`
	Datetime    string  `json:"datetime"`
	Locations   string  `json:"locations"`
	Multimedia  string  `json:"multimedia"`
	Subs        string  `json:"subs"`
	Summaries   string  `json:"summaries"`
	Text        string  `json:"text"`
	WhatChanged [5]bool `json:"what_changed"`
}

// PageRecord is the persisted change-detection state for one page.
type PageRecord struct {
	Build        string `json:"build"`
	LastUpdate   string `json:"last_update"`
	PageChecksum string `json:"page_checksum"`
}

// Store reads and writes per-slug metadata records under the compiled data
// directory. Records are immutable once written: a build either leaves one
// untouched or replaces it wholesale.
type Store struct {
	root   string
	logger *slog.Logger
}

// New creates a store rooted at the compiled data directory.
func New(compiledDir string, logger *slog.Logger) *Store {
	return &Store{
		root:   compiledDir,
		logger: logging.NewComponentLogger(logger, "metastore"),
	}
}

// ReadExperience loads the record for slug. A missing record is the expected
// first-build state and returns found=false with a nil error. A record that
// exists but fails to parse returns an error: corrupt state must never be
// conflated with absent state.
func (s *Store) ReadExperience(slug string) (Record, bool, error) {
	var rec Record
	found, err := s.read(s.ExperiencePath(slug), &rec)
	return rec, found, err
}

// WriteExperience replaces the record for slug.
func (s *Store) WriteExperience(slug string, rec Record) error {
	return s.write(s.ExperiencePath(slug), rec)
}

// ReadPage loads the record for a page, with the same absent/corrupt policy
// as ReadExperience.
func (s *Store) ReadPage(name string) (PageRecord, bool, error) {
	var rec PageRecord
	found, err := s.read(s.PagePath(name), &rec)
	return rec, found, err
}

// WritePage replaces the record for a page.
func (s *Store) WritePage(name string, rec PageRecord) error {
	return s.write(s.PagePath(name), rec)
}

// ExperiencePath returns the record path for an experience slug.
func (s *Store) ExperiencePath(slug string) string {
	return filepath.Join(s.root, "experiences", slug+".json")
}

// PagePath returns the record path for a page name.
func (s *Store) PagePath(name string) string {
	return filepath.Join(s.root, "pages", name+".json")
}

// ExperienceSlugs lists slugs with persisted records, sorted by filename.
func (s *Store) ExperienceSlugs() ([]string, error) {
	return s.slugs(filepath.Join(s.root, "experiences"))
}

// PageNames lists page names with persisted records, sorted by filename.
func (s *Store) PageNames() ([]string, error) {
	return s.slugs(filepath.Join(s.root, "pages"))
}

func (s *Store) slugs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("metastore: list %s: %w", dir, err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		names = append(names, entry.Name()[:len(entry.Name())-len(".json")])
	}
	return names, nil
}

func (s *Store) read(path string, out any) (bool, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("metastore: read %s: %w", path, err)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return true, fmt.Errorf("metastore: decode %s: %w", path, err)
	}
	return true, nil
}

// write persists via temp-file-and-rename so a crash mid-write cannot leave
// a file that parses as valid but wrong data. Output is indented JSON with
// stable key order to support manual inspection.
func (s *Store) write(path string, rec any) error {
	payload, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("metastore: encode %s: %w", path, err)
	}
	if err := fileutil.WriteAtomic(path, payload, 0o644); err != nil {
		return fmt.Errorf("metastore: %w", err)
	}
	s.logger.Debug("wrote metadata record", logging.String("path", path))
	return nil
}
