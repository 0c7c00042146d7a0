package ledger

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"waymark/internal/fingerprint"
	"waymark/internal/logging"
	"waymark/internal/metastore"
)

// Category identifies one tracked slot of an experience fingerprint. The
// numeric order matches the persisted what_changed vector and must not be
// rearranged.
type Category int

const (
	CategoryLocations Category = iota
	CategoryMultimedia
	CategorySummaries
	CategorySubs
	CategoryText

	CategoryCount = 5
)

func (c Category) String() string {
	switch c {
	case CategoryLocations:
		return "locations"
	case CategoryMultimedia:
		return "images and/or clips"
	case CategorySummaries:
		return "summaries"
	case CategorySubs:
		return "sub-experiences"
	case CategoryText:
		return "text"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// Digests carries the freshly computed digest for every tracked category.
type Digests struct {
	Locations  fingerprint.Digest
	Multimedia fingerprint.Digest
	Summaries  fingerprint.Digest
	Subs       fingerprint.Digest
	Text       fingerprint.Digest
}

// BuildInfo identifies the build run producing a record.
type BuildInfo struct {
	ID   string
	Time time.Time
}

// Verdict is the result of comparing fresh digests against the persisted
// record for one experience. Previous is nil on a first build.
type Verdict struct {
	Changed  bool
	Flags    [CategoryCount]bool
	Previous *metastore.Record
	Fresh    metastore.Record
}

// CategoryChanged reports whether one category diverged.
func (v Verdict) CategoryChanged(c Category) bool {
	if c < 0 || int(c) >= CategoryCount {
		return false
	}
	return v.Flags[c]
}

// ChangedCategories renders a human-readable summary of what changed, in the
// order the categories are tracked.
func (v Verdict) ChangedCategories() string {
	var parts []string
	for c := Category(0); c < CategoryCount; c++ {
		if v.Flags[c] {
			parts = append(parts, c.String())
		}
	}
	return strings.Join(parts, ", ")
}

// PageVerdict is the page analogue of Verdict: a single context checksum
// compared against the persisted page record.
type PageVerdict struct {
	Changed  bool
	Previous *metastore.PageRecord
	Fresh    metastore.PageRecord
}

// Ledger compares fresh fingerprints against persisted records and commits
// replacements. Every evaluation is independent; nothing is cached between
// calls.
type Ledger struct {
	store  *metastore.Store
	logger *slog.Logger
}

// New creates a ledger over the given record store.
func New(store *metastore.Store, logger *slog.Logger) *Ledger {
	return &Ledger{
		store:  store,
		logger: logging.NewComponentLogger(logger, "ledger"),
	}
}

// Evaluate compares the digests for slug against the last persisted record
// and classifies exactly which categories changed. A missing record is the
// expected first-build state: every category reads as changed. A corrupt
// record propagates as an error.
func (l *Ledger) Evaluate(slug string, d Digests, build BuildInfo) (Verdict, error) {
	prev, found, err := l.store.ReadExperience(slug)
	if err != nil {
		return Verdict{}, err
	}

	var v Verdict
	if !found {
		for i := range v.Flags {
			v.Flags[i] = true
		}
	} else {
		v.Previous = &prev
		v.Flags[CategoryLocations] = string(d.Locations) != prev.Locations
		v.Flags[CategoryMultimedia] = string(d.Multimedia) != prev.Multimedia
		v.Flags[CategorySummaries] = string(d.Summaries) != prev.Summaries
		v.Flags[CategorySubs] = string(d.Subs) != prev.Subs
		v.Flags[CategoryText] = string(d.Text) != prev.Text
	}

	for _, flag := range v.Flags {
		v.Changed = v.Changed || flag
	}

	v.Fresh = metastore.Record{
		Build:       build.ID,
		Datetime:    build.Time.UTC().Format(time.RFC3339),
		Locations:   string(d.Locations),
		Multimedia:  string(d.Multimedia),
		Subs:        string(d.Subs),
		Summaries:   string(d.Summaries),
		Text:        string(d.Text),
		WhatChanged: v.Flags,
	}

	l.logger.Debug("evaluated experience",
		logging.String("slug", slug),
		logging.Bool("changed", v.Changed),
		logging.Bool("first_build", !found))
	return v, nil
}

// Commit persists the fresh record for slug. Callers invoke it only when a
// rebuild actually happened (a change was detected or a rebuild was forced).
func (l *Ledger) Commit(slug string, v Verdict) error {
	return l.store.WriteExperience(slug, v.Fresh)
}

// EvaluatePage compares a page's context checksum against its persisted
// record, with the same absent/corrupt policy as Evaluate.
func (l *Ledger) EvaluatePage(name string, checksum fingerprint.Digest, build BuildInfo) (PageVerdict, error) {
	prev, found, err := l.store.ReadPage(name)
	if err != nil {
		return PageVerdict{}, err
	}

	v := PageVerdict{Changed: !found || prev.PageChecksum != string(checksum)}
	if found {
		v.Previous = &prev
	}
	v.Fresh = metastore.PageRecord{
		Build:        build.ID,
		LastUpdate:   build.Time.UTC().Format(time.RFC3339),
		PageChecksum: string(checksum),
	}

	l.logger.Debug("evaluated page",
		logging.String("page", name),
		logging.Bool("changed", v.Changed),
		logging.Bool("first_build", !found))
	return v, nil
}

// CommitPage persists the fresh page record.
func (l *Ledger) CommitPage(name string, v PageVerdict) error {
	return l.store.WritePage(name, v.Fresh)
}
