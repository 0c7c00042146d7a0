package experiences

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"waymark/internal/daytime"
	"waymark/internal/locations"
	"waymark/internal/media"
)

// Experience is a time-ranged content unit: a named span of the journey with
// its own page, absorbing the locations, media, and summaries that fall
// inside its range.
type Experience struct {
	Slug        string
	Name        string
	Start       time.Time
	End         time.Time
	Description string
	Summary     string
	Tags        []string

	Display       string
	ShowLocations bool
	ShowDates     bool

	Subs []*Experience

	// Transient per-build associations, populated by Absorb.
	SpecificLocations []*locations.Location
	AllLocations      []*locations.Location
	Media             []media.Asset
	Summaries         map[string]string

	// seenMedia accumulates every asset inside the range, including those
	// claimed by sub-experiences, in processing order.
	seenMedia []media.Asset

	absorbed bool
}

func (e *Experience) String() string { return e.Name }

// PrettyName renders the display name with the covered date range.
func (e *Experience) PrettyName() string {
	return fmt.Sprintf("%s (%s - %s)",
		e.Name, e.Start.Format("Jan 2, 2006"), e.End.Format("Jan 2, 2006"))
}

// URL is the published page path for this experience.
func (e *Experience) URL() string {
	return fmt.Sprintf("/experiences/%s.html", e.Slug)
}

// Absorbed reports whether Absorb ran for this build.
func (e *Experience) Absorbed() bool { return e.absorbed }

// SeenMedia returns every asset inside the range in accumulation order,
// including assets claimed by sub-experiences.
func (e *Experience) SeenMedia() []media.Asset { return e.seenMedia }

// MediaCount tallies directly attributed images and clips, including
// sub-experiences.
func (e *Experience) MediaCount() (imageCount, clipCount int) {
	for _, sub := range e.Subs {
		subImages, subClips := sub.MediaCount()
		imageCount += subImages
		clipCount += subClips
	}
	for _, asset := range e.Media {
		switch asset.(type) {
		case *media.Image:
			imageCount++
		case *media.Clip:
			clipCount++
		}
	}
	return imageCount, clipCount
}

// UniquePlaceLocations returns the first location at each distinct place
// visited during the experience, including sub-experiences, in visit order.
func (e *Experience) UniquePlaceLocations() []*locations.Location {
	seen := make(map[string]bool)
	var unique []*locations.Location
	for _, loc := range e.AllLocations {
		slug := loc.Place.Slug()
		if seen[slug] {
			continue
		}
		seen[slug] = true
		unique = append(unique, loc)
	}
	return unique
}

type experienceYAML struct {
	Slug          string   `yaml:"slug"`
	Name          string   `yaml:"name"`
	Start         string   `yaml:"start"`
	End           string   `yaml:"end"`
	Description   string   `yaml:"description"`
	Summary       string   `yaml:"summary"`
	Tags          []string `yaml:"tags"`
	Display       string   `yaml:"display"`
	ShowLocations *bool    `yaml:"show_locations"`
	ShowDates     *bool    `yaml:"show_dates"`
	Subs          []string `yaml:"subs"`
}

// Load reads every authored experience and resolves sub-experience
// references by slug. Top-level experiences (those not claimed as a sub)
// are returned sorted by start time.
func Load(dir string) ([]*Experience, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("experiences: read dir %s: %w", dir, err)
	}

	bySlug := make(map[string]*Experience)
	subRefs := make(map[string][]string)
	claimed := make(map[string]bool)

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".yaml") {
			continue
		}
		path := filepath.Join(dir, name)

		exp, subs, err := fromYAML(path, strings.TrimSuffix(name, ".yaml"))
		if err != nil {
			return nil, err
		}
		if _, dup := bySlug[exp.Slug]; dup {
			return nil, fmt.Errorf("experiences: %s: duplicate slug %q", path, exp.Slug)
		}
		bySlug[exp.Slug] = exp
		subRefs[exp.Slug] = subs
	}

	for slug, refs := range subRefs {
		parent := bySlug[slug]
		for _, ref := range refs {
			sub, ok := bySlug[ref]
			if !ok {
				return nil, fmt.Errorf("experiences: %s references unknown sub-experience %q", slug, ref)
			}
			parent.Subs = append(parent.Subs, sub)
			claimed[ref] = true
		}
	}

	var top []*Experience
	for slug, exp := range bySlug {
		if !claimed[slug] {
			top = append(top, exp)
		}
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Start.Equal(top[j].Start) {
			return top[i].Slug < top[j].Slug
		}
		return top[i].Start.Before(top[j].Start)
	})
	return top, nil
}

func fromYAML(path, fallbackSlug string) (*Experience, []string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("experiences: read %s: %w", path, err)
	}

	var doc experienceYAML
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, nil, fmt.Errorf("experiences: parse %s: %w", path, err)
	}

	slug := doc.Slug
	if slug == "" {
		slug = fallbackSlug
	}
	if doc.Name == "" {
		return nil, nil, fmt.Errorf("experiences: %s: name is required", path)
	}

	start, err := parseBoundary(doc.Start, false)
	if err != nil {
		return nil, nil, fmt.Errorf("experiences: %s: start: %w", path, err)
	}
	end, err := parseBoundary(doc.End, true)
	if err != nil {
		return nil, nil, fmt.Errorf("experiences: %s: end: %w", path, err)
	}
	if end.Before(start) {
		return nil, nil, fmt.Errorf("experiences: %s: end %s precedes start %s", path, doc.End, doc.Start)
	}

	exp := &Experience{
		Slug:          slug,
		Name:          doc.Name,
		Start:         start,
		End:           end,
		Description:   doc.Description,
		Summary:       doc.Summary,
		Tags:          doc.Tags,
		Display:       doc.Display,
		ShowLocations: doc.ShowLocations == nil || *doc.ShowLocations,
		ShowDates:     doc.ShowDates == nil || *doc.ShowDates,
	}
	return exp, doc.Subs, nil
}

// parseBoundary accepts a bare day or a day plus time. A bare end day covers
// the whole day.
func parseBoundary(value string, isEnd bool) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("missing value")
	}
	if day, timeOfDay, ok := strings.Cut(value, "T"); ok {
		return daytime.Parse(day, timeOfDay, "")
	}
	ts, err := daytime.ParseDay(value)
	if err != nil {
		return time.Time{}, err
	}
	if isEnd {
		ts = ts.Add(24*time.Hour - time.Second)
	}
	return ts, nil
}
