package fingerprint

import "testing"

type canonLoc string

func (c canonLoc) Canonical() string { return string(c) }

type distAsset string

func (d distAsset) Distinguisher() string { return string(d) }

func TestLocationsOrderIndependent(t *testing.T) {
	forward := []canonLoc{
		"2024-07-01T09:00: Harbor - Reykjavik, Iceland",
		"2024-07-01T18:00: Blue Lagoon - Grindavik, Iceland",
		"2024-07-02T11:30: Thingvellir - Iceland",
	}
	shuffled := []canonLoc{forward[2], forward[0], forward[1]}

	if Locations(forward) != Locations(shuffled) {
		t.Error("location digest must not depend on store resolution order")
	}
}

func TestLocationsChangeDetected(t *testing.T) {
	base := []canonLoc{"2024-07-01T09:00: A", "2024-07-01T18:00: B"}
	extended := append(append([]canonLoc{}, base...), "2024-07-01T21:00: C")

	if Locations(base) == Locations(extended) {
		t.Error("adding a location must change the digest")
	}
}

func TestMediaOrderSensitive(t *testing.T) {
	forward := []distAsset{"aaa111", "bbb222__0:04-0:12", "ccc333"}
	reversed := []distAsset{"ccc333", "bbb222__0:04-0:12", "aaa111"}

	if Media(forward) == Media(reversed) {
		t.Error("media digest is order-sensitive by design; reordered input must differ")
	}
}

func TestEmptyCategoriesStable(t *testing.T) {
	if Locations([]canonLoc{}) != Locations([]canonLoc(nil)) {
		t.Error("empty location digest must be stable")
	}
	if Media([]distAsset{}) != Media([]distAsset(nil)) {
		t.Error("empty media digest must be stable")
	}
	if Summaries(nil) != Summaries(map[string]string{}) {
		t.Error("empty summaries digest must be stable")
	}
	if Subs(nil) != Subs([]string{}) {
		t.Error("empty subs digest must be stable")
	}
}

func TestEmptyAndSingleEmptyElementDiffer(t *testing.T) {
	if Subs(nil) == Subs([]string{""}) {
		t.Error("an empty sequence and a sequence of one empty string must differ")
	}
}

func TestTextConcatenation(t *testing.T) {
	if Text("a", "b") != Text("a", "b") {
		t.Error("text digest must be deterministic")
	}
	// Raw concatenation, matching the legacy on-disk records: the boundary
	// between description and summary is not part of the digest.
	if Text("ab", "") != Text("a", "b") {
		t.Error("text digest is a raw byte concatenation of description and summary")
	}
	if Text("a", "b") == Text("a", "c") {
		t.Error("changed summary must change the digest")
	}
}

func TestTextRawBytesNoNormalization(t *testing.T) {
	composed := "caf\u00e9"
	decomposed := "cafe\u0301"
	if Text(composed, "") == Text(decomposed, "") {
		t.Error("text digest hashes raw bytes; unicode forms must not be normalized together")
	}
}

func TestSummariesKeyOrderIndependent(t *testing.T) {
	a := map[string]string{"2024-07-01": "sailing", "2024-07-02": "hiking"}
	b := map[string]string{"2024-07-02": "hiking", "2024-07-01": "sailing"}
	if Summaries(a) != Summaries(b) {
		t.Error("summaries digest must serialize by sorted day")
	}
}

func TestContextSortedPairs(t *testing.T) {
	a := map[string]any{"title": "About", "compact": true, "count": 3}
	b := map[string]any{"count": 3, "compact": true, "title": "About"}
	if Context(a) != Context(b) {
		t.Error("context digest must not depend on map iteration order")
	}

	c := map[string]any{"title": "About", "compact": false, "count": 3}
	if Context(a) == Context(c) {
		t.Error("changed context value must change the digest")
	}
}

func TestContextNestedMapping(t *testing.T) {
	a := map[string]any{"nav": map[string]any{"home": "/", "blog": "/blog"}}
	b := map[string]any{"nav": map[string]any{"blog": "/blog", "home": "/"}}
	if Context(a) != Context(b) {
		t.Error("nested mappings must serialize by sorted key")
	}
}
