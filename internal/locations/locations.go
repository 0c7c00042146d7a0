package locations

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"waymark/internal/daytime"
	"waymark/internal/places"
)

// Location is a timestamped visit to a place.
type Location struct {
	Day   string
	Time  string
	At    time.Time
	Place *places.Place

	significance *int
}

// Canonical is the stable string form used for sorting and fingerprinting:
// day, time, and place identity.
func (l *Location) Canonical() string {
	return fmt.Sprintf("%sT%s: %s", l.Day, l.Time, l.Place)
}

func (l *Location) String() string { return l.Canonical() }

// Significance returns the per-visit override when authored, otherwise the
// place's own significance.
func (l *Location) Significance() int {
	if l.significance != nil {
		return *l.significance
	}
	return l.Place.Significance
}

// Set holds every authored location for one build, grouped by day.
type Set struct {
	ByDay map[string][]*Location
}

// Days returns the authored days in ascending order.
func (s *Set) Days() []string {
	days := make([]string, 0, len(s.ByDay))
	for day := range s.ByDay {
		days = append(days, day)
	}
	sort.Strings(days)
	return days
}

// All returns every location ordered by day then time of day.
func (s *Set) All() []*Location {
	var all []*Location
	for _, day := range s.Days() {
		all = append(all, s.ByDay[day]...)
	}
	return all
}

// Count returns the total number of authored locations.
func (s *Set) Count() int {
	n := 0
	for _, locs := range s.ByDay {
		n += len(locs)
	}
	return n
}

// Load reads every per-day location file. Each file maps a time of day to a
// place reference, either a bare place name or a [name, significance] pair.
// A day or time that does not form a valid timestamp is a fatal authoring
// error carrying the file name and offending value; dropping the record
// silently would produce a falsely complete fingerprint.
func Load(dir string, byName map[string]*places.Place) (*Set, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("locations: read dir %s: %w", dir, err)
	}

	set := &Set{ByDay: make(map[string][]*Location)}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".yaml") {
			continue
		}
		path := filepath.Join(dir, name)
		day := strings.TrimSuffix(name, ".yaml")

		locs, err := loadDay(path, day, byName)
		if err != nil {
			return nil, err
		}
		set.ByDay[day] = locs
	}
	return set, nil
}

func loadDay(path, day string, byName map[string]*places.Place) ([]*Location, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("locations: read %s: %w", path, err)
	}

	var entries map[string]any
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("locations: parse %s: %w", path, err)
	}

	times := make([]string, 0, len(entries))
	for timeOfDay := range entries {
		times = append(times, timeOfDay)
	}
	sort.Strings(times)

	locs := make([]*Location, 0, len(times))
	for _, timeOfDay := range times {
		at, err := daytime.Parse(day, timeOfDay, "")
		if err != nil {
			return nil, fmt.Errorf("locations: %s: %w", path, err)
		}

		placeName, significance, err := placeRef(entries[timeOfDay])
		if err != nil {
			return nil, fmt.Errorf("locations: %s: %s: %w", path, timeOfDay, err)
		}
		place, ok := byName[placeName]
		if !ok {
			return nil, fmt.Errorf("locations: %s: %s: unknown place %q", path, timeOfDay, placeName)
		}

		locs = append(locs, &Location{
			Day:          day,
			Time:         timeOfDay,
			At:           at,
			Place:        place,
			significance: significance,
		})
	}
	return locs, nil
}

func placeRef(value any) (string, *int, error) {
	switch v := value.(type) {
	case string:
		return strings.TrimSuffix(v, ".yaml"), nil, nil
	case []any:
		if len(v) != 2 {
			return "", nil, fmt.Errorf("place reference list must be [place, significance], got %d items", len(v))
		}
		name, ok := v[0].(string)
		if !ok {
			return "", nil, fmt.Errorf("place reference %v is not a name", v[0])
		}
		significance, ok := v[1].(int)
		if !ok {
			return "", nil, fmt.Errorf("significance %v is not an integer", v[1])
		}
		return strings.TrimSuffix(name, ".yaml"), &significance, nil
	default:
		return "", nil, fmt.Errorf("unsupported place reference %v", value)
	}
}
