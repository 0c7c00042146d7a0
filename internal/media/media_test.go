package media

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeDayFile(t *testing.T, dir, day, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, day+".json"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

const imagesDay1 = `[
  {"caption": "harbor at dawn", "hash": "aaa111", "slug": "harbor-dawn", "time": "06:45", "ext": "jpg", "tags": ["iceland"], "orig": "IMG_0101.jpg"},
  {"caption": "lagoon", "hash": "bbb222", "slug": "lagoon", "time": "18:20", "ext": "jpg", "tags": ["iceland", "swim"], "orig": "IMG_0142.jpg"}
]`

const clipsDay1 = `[
  {"caption": "geyser", "hash": "ccc333", "slug": "geyser", "time": "12:05", "ext": "mov", "tags": ["iceland"], "start": "0:04", "duration": "0:12"}
]`

func TestLoadImages(t *testing.T) {
	dir := t.TempDir()
	writeDayFile(t, dir, "2024-07-01", imagesDay1)

	images, err := LoadImages(dir, "")
	if err != nil {
		t.Fatalf("LoadImages: %v", err)
	}
	if images.Count != 2 {
		t.Fatalf("count: %d", images.Count)
	}

	day := images.ForDay("2024-07-01")
	if len(day) != 2 || day[0].Slug() != "harbor-dawn" {
		t.Errorf("day assets out of order: %v", day)
	}
	if got := day[0].Distinguisher(); got != "aaa111" {
		t.Errorf("image distinguisher: %q", got)
	}
	if got := day[0].Filename(); got != "2024-07-01__harbor-dawn__aaa111.jpg" {
		t.Errorf("filename: %q", got)
	}
}

func TestLoadImagesAppliesOffset(t *testing.T) {
	dir := t.TempDir()
	writeDayFile(t, dir, "2024-07-01", imagesDay1)

	images, err := LoadImages(dir, "-05:00")
	if err != nil {
		t.Fatal(err)
	}
	at := images.ForDay("2024-07-01")[0].At().UTC()
	if at.Hour() != 11 || at.Minute() != 45 {
		t.Errorf("offset not applied: %v", at)
	}
}

func TestClipDistinguisherIncludesWindow(t *testing.T) {
	dir := t.TempDir()
	writeDayFile(t, dir, "2024-07-01", clipsDay1)

	clips, err := LoadClips(dir, "")
	if err != nil {
		t.Fatalf("LoadClips: %v", err)
	}
	clip := clips.ForDay("2024-07-01")[0]
	if got := clip.Distinguisher(); got != "ccc333__0:04-0:12" {
		t.Errorf("clip distinguisher: %q", got)
	}
	if got := clip.Filename(); !strings.HasSuffix(got, ".webm") {
		t.Errorf("published clips are webm: %q", got)
	}
}

func TestLoadCorruptMetadataNamesFile(t *testing.T) {
	dir := t.TempDir()
	writeDayFile(t, dir, "2024-07-01", "[{broken")

	_, err := LoadImages(dir, "")
	if err == nil {
		t.Fatal("corrupt metadata must abort the build")
	}
	if !strings.Contains(err.Error(), "2024-07-01.json") {
		t.Errorf("error must name the file: %v", err)
	}
}

func TestLoadBadTimeNamesFile(t *testing.T) {
	dir := t.TempDir()
	writeDayFile(t, dir, "2024-07-01", `[{"hash": "a", "slug": "x", "time": "sunset", "ext": "jpg"}]`)

	_, err := LoadImages(dir, "")
	if err == nil || !strings.Contains(err.Error(), "sunset") {
		t.Errorf("bad capture time must abort with the value named: %v", err)
	}
}

func TestLookupAmbiguity(t *testing.T) {
	dir := t.TempDir()
	writeDayFile(t, dir, "2024-07-01", `[
	  {"hash": "dup", "slug": "one", "time": "09:00", "ext": "jpg"},
	  {"hash": "dup", "slug": "two", "time": "10:00", "ext": "jpg"}
	]`)

	images, err := LoadImages(dir, "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := images.ByHash("dup"); err == nil {
		t.Error("ambiguous hash lookup must fail")
	}
	if _, err := images.BySlug("one"); err != nil {
		t.Errorf("unique slug lookup should succeed: %v", err)
	}
	if _, err := images.BySlug("missing"); err == nil {
		t.Error("unknown slug lookup must fail")
	}
}

func TestIntertwineOrdersWithinDay(t *testing.T) {
	dir := t.TempDir()
	clipDir := t.TempDir()
	writeDayFile(t, dir, "2024-07-01", imagesDay1)
	writeDayFile(t, clipDir, "2024-07-01", clipsDay1)
	writeDayFile(t, clipDir, "2024-07-02", `[{"hash": "ddd", "slug": "road", "time": "08:00", "ext": "mov", "start": "0:00", "duration": "0:30"}]`)

	images, err := LoadImages(dir, "")
	if err != nil {
		t.Fatal(err)
	}
	clips, err := LoadClips(clipDir, "")
	if err != nil {
		t.Fatal(err)
	}

	merged := Intertwine(images, clips)
	days := SortedDays(merged)
	if len(days) != 2 {
		t.Fatalf("days: %v", days)
	}

	day1 := merged["2024-07-01"]
	want := []string{"harbor-dawn", "geyser", "lagoon"}
	if len(day1) != len(want) {
		t.Fatalf("day1 size: %d", len(day1))
	}
	for i, slug := range want {
		if day1[i].Slug() != slug {
			t.Errorf("position %d: got %s, want %s", i, day1[i].Slug(), slug)
		}
	}
}
