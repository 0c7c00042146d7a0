package locations

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"waymark/internal/places"
)

func testPlaces() map[string]*places.Place {
	return map[string]*places.Place{
		"old-harbor":  {SmallName: "Old Harbor", BigName: "Reykjavik, Iceland", ShowOnTopLevelExperience: true, Significance: 2},
		"blue-lagoon": {SmallName: "Blue Lagoon", BigName: "Grindavik, Iceland", ShowOnTopLevelExperience: true},
	}
}

func writeDay(t *testing.T, dir, day, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, day+".yaml"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeDay(t, dir, "2024-07-01", "\"09:00\": old-harbor\n\"18:00\": blue-lagoon\n")
	writeDay(t, dir, "2024-07-02", "\"11:30\": old-harbor\n")

	set, err := Load(dir, testPlaces())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if set.Count() != 3 {
		t.Fatalf("expected 3 locations, got %d", set.Count())
	}
	if days := set.Days(); len(days) != 2 || days[0] != "2024-07-01" {
		t.Errorf("days: %v", days)
	}

	first := set.ByDay["2024-07-01"][0]
	if got := first.Canonical(); got != "2024-07-01T09:00: Old Harbor - Reykjavik, Iceland" {
		t.Errorf("Canonical: %q", got)
	}
	if first.At.Hour() != 9 {
		t.Errorf("timestamp: %v", first.At)
	}
}

func TestLoadSignificanceOverride(t *testing.T) {
	dir := t.TempDir()
	writeDay(t, dir, "2024-07-01", "\"09:00\": [old-harbor, 5]\n\"18:00\": blue-lagoon\n")

	set, err := Load(dir, testPlaces())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	locs := set.ByDay["2024-07-01"]
	if locs[0].Significance() != 5 {
		t.Errorf("override significance: %d", locs[0].Significance())
	}
	if locs[1].Significance() != 0 {
		t.Errorf("place significance fallback: %d", locs[1].Significance())
	}
}

func TestLoadBadTimeIsFatalAndNamed(t *testing.T) {
	dir := t.TempDir()
	writeDay(t, dir, "2024-07-01", "noonish: old-harbor\n")

	_, err := Load(dir, testPlaces())
	if err == nil {
		t.Fatal("unparseable time must abort the build")
	}
	msg := err.Error()
	if !strings.Contains(msg, "2024-07-01.yaml") {
		t.Errorf("error must name the file: %q", msg)
	}
	if !strings.Contains(msg, "noonish") {
		t.Errorf("error must name the offending value: %q", msg)
	}
}

func TestLoadUnknownPlaceIsFatal(t *testing.T) {
	dir := t.TempDir()
	writeDay(t, dir, "2024-07-01", "\"09:00\": atlantis\n")

	_, err := Load(dir, testPlaces())
	if err == nil || !strings.Contains(err.Error(), "atlantis") {
		t.Errorf("unknown place must abort with the name: %v", err)
	}
}

func TestAllOrderedByDayThenTime(t *testing.T) {
	dir := t.TempDir()
	writeDay(t, dir, "2024-07-02", "\"08:00\": old-harbor\n")
	writeDay(t, dir, "2024-07-01", "\"18:00\": blue-lagoon\n\"09:00\": old-harbor\n")

	set, err := Load(dir, testPlaces())
	if err != nil {
		t.Fatal(err)
	}
	all := set.All()
	if len(all) != 3 {
		t.Fatalf("expected 3, got %d", len(all))
	}
	want := []string{"2024-07-01T09:00", "2024-07-01T18:00", "2024-07-02T08:00"}
	for i, prefix := range want {
		if !strings.HasPrefix(all[i].Canonical(), prefix) {
			t.Errorf("position %d: %q", i, all[i].Canonical())
		}
	}
}
