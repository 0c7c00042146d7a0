package places

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Place is a named geographic point referenced by authored locations.
type Place struct {
	Lat                      float64 `yaml:"lat"`
	Lon                      float64 `yaml:"lon"`
	SmallName                string  `yaml:"small_name"`
	BigName                  string  `yaml:"big_name"`
	ThumbStyle               string  `yaml:"thumb_style"`
	ThumbZoom                float64 `yaml:"thumb_zoom"`
	LinkZoom                 float64 `yaml:"link_zoom"`
	Bearing                  float64 `yaml:"bearing"`
	Pitch                    float64 `yaml:"pitch"`
	UseBothNamesForSlug      bool    `yaml:"use_both_names_for_slug"`
	ShowOnTopLevelExperience bool    `yaml:"show_on_top_level_experience"`
	SmallLink                string  `yaml:"small_link"`
	Significance             int     `yaml:"significance"`

	// YAMLChecksum fingerprints the raw authored bytes so the compiled
	// representation can be checked for currency.
	YAMLChecksum string `yaml:"-"`
}

func (p *Place) String() string {
	return fmt.Sprintf("%s - %s", p.SmallName, p.BigName)
}

// Slug derives the stable identifier used for compiled output filenames.
func (p *Place) Slug() string {
	slug := Slugify(p.SmallName)
	if p.UseBothNamesForSlug {
		slug += Slugify(p.BigName)
	}
	return slug
}

// MapURL links the place on OpenStreetMap. Thumbnail fetching lives outside
// this tool; only the derived URLs are recorded.
func (p *Place) MapURL() string {
	return fmt.Sprintf("https://www.openstreetmap.org/?mlat=%v&mlon=%v#map=%v/%v/%v",
		p.Lat, p.Lon, p.LinkZoom, p.Lat, p.Lon)
}

// FromYAML parses one authored place file. Visibility on top-level
// experiences defaults to true when the author says nothing.
func FromYAML(path string) (*Place, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("places: read %s: %w", path, err)
	}

	place := &Place{ShowOnTopLevelExperience: true}
	if err := yaml.Unmarshal(raw, place); err != nil {
		return nil, fmt.Errorf("places: parse %s: %w", path, err)
	}
	if strings.TrimSpace(place.SmallName) == "" {
		return nil, fmt.Errorf("places: %s: small_name is required", path)
	}

	sum := md5.Sum(raw)
	place.YAMLChecksum = hex.EncodeToString(sum[:])
	return place, nil
}

// Load reads every authored place, keyed by authored file name without the
// .yaml extension (the form location files reference).
func Load(dir string) (map[string]*Place, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("places: read dir %s: %w", dir, err)
	}

	byName := make(map[string]*Place, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".yaml") {
			continue
		}
		place, err := FromYAML(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		byName[strings.TrimSuffix(name, ".yaml")] = place
	}
	return byName, nil
}

// Names returns the reference names sorted, for stable iteration.
func Names(byName map[string]*Place) []string {
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
