package experiences

import (
	"sort"

	"waymark/internal/fingerprint"
	"waymark/internal/ledger"
	"waymark/internal/locations"
	"waymark/internal/media"
)

// Sources bundles the build-scoped content stores an experience absorbs
// from. It is constructed once per run and passed down explicitly.
type Sources struct {
	Locations *locations.Set
	Media     map[string][]media.Asset
	Summaries map[string]string
}

// Absorb figures out everything that happened during the experience:
// locations within the range (inclusive), media and summaries strictly
// within it, each routed to the right sub-experience or kept on the parent.
func (e *Experience) Absorb(src Sources) {
	e.absorbLocations(src)
	e.absorbMedia(src)
	e.absorbSummaries(src)
	e.absorbed = true
}

func (e *Experience) absorbLocations(src Sources) {
	e.SpecificLocations = nil
	e.AllLocations = nil
	if src.Locations == nil {
		return
	}

	for _, day := range src.Locations.Days() {
		for _, loc := range src.Locations.ByDay[day] {
			if loc.At.Before(e.Start) || loc.At.After(e.End) {
				continue
			}
			e.AllLocations = append(e.AllLocations, loc)
			// A top-level experience only lists places that opted into
			// top-level visibility; leaf experiences list everything.
			if len(e.Subs) == 0 || loc.Place.ShowOnTopLevelExperience {
				e.SpecificLocations = append(e.SpecificLocations, loc)
			}
		}
	}

	sortLocations(e.SpecificLocations)
	sortLocations(e.AllLocations)
}

func (e *Experience) absorbMedia(src Sources) {
	e.Media = nil
	e.seenMedia = nil
	for _, sub := range e.Subs {
		sub.Media = nil
	}

	for _, day := range media.SortedDays(src.Media) {
		for _, asset := range src.Media[day] {
			at := asset.At()
			if !at.After(e.Start) || !at.Before(e.End) {
				continue
			}
			e.seenMedia = append(e.seenMedia, asset)

			// The first sub-experience with a tag overlap claims the
			// asset; the parent keeps anything unclaimed.
			claimed := false
			for _, sub := range e.Subs {
				if tagsOverlap(sub.Tags, asset.Tags()) {
					sub.Media = append(sub.Media, asset)
					claimed = true
					break
				}
			}
			if !claimed {
				e.Media = append(e.Media, asset)
			}
		}
	}
}

func (e *Experience) absorbSummaries(src Sources) {
	e.Summaries = make(map[string]string)
	for day, summary := range src.Summaries {
		ts, err := parseBoundary(day, false)
		if err != nil {
			continue
		}
		if ts.After(e.Start) && ts.Before(e.End) {
			e.Summaries[day] = summary
		}
	}
}

// Digests computes the per-category fingerprints for the absorbed state.
func (e *Experience) Digests() ledger.Digests {
	subNames := make([]string, 0, len(e.Subs))
	for _, sub := range e.Subs {
		subNames = append(subNames, sub.String())
	}

	return ledger.Digests{
		Locations:  fingerprint.Locations(e.AllLocations),
		Multimedia: fingerprint.Media(e.seenMedia),
		Summaries:  fingerprint.Summaries(e.Summaries),
		Subs:       fingerprint.Subs(subNames),
		Text:       fingerprint.Text(e.Description, e.Summary),
	}
}

// Evaluate absorbs nothing itself; it hands the current digests to the
// ledger for comparison against the persisted record.
func (e *Experience) Evaluate(led *ledger.Ledger, build ledger.BuildInfo) (ledger.Verdict, error) {
	return led.Evaluate(e.Slug, e.Digests(), build)
}

func sortLocations(locs []*locations.Location) {
	sort.SliceStable(locs, func(i, j int) bool {
		return locs[i].Canonical() < locs[j].Canonical()
	})
}

func tagsOverlap(a, b []string) bool {
	for _, tag := range a {
		for _, other := range b {
			if tag == other {
				return true
			}
		}
	}
	return false
}

// LocationIndex derives the reverse mapping from location to the
// experiences that list it, computed once per build instead of mutating
// back-pointers during traversal.
func LocationIndex(all []*Experience) map[*locations.Location][]*Experience {
	index := make(map[*locations.Location][]*Experience)
	var walk func(exp *Experience)
	walk = func(exp *Experience) {
		for _, loc := range exp.SpecificLocations {
			index[loc] = append(index[loc], exp)
		}
		for _, sub := range exp.Subs {
			walk(sub)
		}
	}
	for _, exp := range all {
		walk(exp)
	}
	return index
}
