package media

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"waymark/internal/daytime"
)

// Collection indexes one kind of media asset loaded from per-day metadata
// files. Keys that collide are remembered so ambiguous lookups fail loudly
// instead of returning an arbitrary asset.
type Collection struct {
	Kind  string
	Count int

	byDay  map[string][]Asset
	bySlug map[string]Asset
	byHash map[string]Asset

	nonUniqueSlugs  map[string]bool
	nonUniqueHashes map[string]bool
}

func newCollection(kind string) *Collection {
	return &Collection{
		Kind:            kind,
		byDay:           make(map[string][]Asset),
		bySlug:          make(map[string]Asset),
		byHash:          make(map[string]Asset),
		nonUniqueSlugs:  make(map[string]bool),
		nonUniqueHashes: make(map[string]bool),
	}
}

func (c *Collection) String() string {
	return fmt.Sprintf("%s collection - %d", c.Kind, c.Count)
}

// Days returns the capture days in ascending order.
func (c *Collection) Days() []string {
	days := make([]string, 0, len(c.byDay))
	for day := range c.byDay {
		days = append(days, day)
	}
	sort.Strings(days)
	return days
}

// ForDay returns the day's assets sorted by time of day.
func (c *Collection) ForDay(day string) []Asset {
	return c.byDay[day]
}

// ByHash looks an asset up by content hash, failing when the hash is shared
// by more than one asset.
func (c *Collection) ByHash(hash string) (Asset, error) {
	if c.nonUniqueHashes[hash] {
		return nil, fmt.Errorf("media: hash %s is not unique", hash)
	}
	asset, ok := c.byHash[hash]
	if !ok {
		return nil, fmt.Errorf("media: no %s with hash %s", c.Kind, hash)
	}
	return asset, nil
}

// BySlug looks an asset up by slug, failing when the slug is ambiguous.
func (c *Collection) BySlug(slug string) (Asset, error) {
	if c.nonUniqueSlugs[slug] {
		return nil, fmt.Errorf("media: slug %s is not unique", slug)
	}
	asset, ok := c.bySlug[slug]
	if !ok {
		return nil, fmt.Errorf("media: no %s with slug %s", c.Kind, slug)
	}
	return asset, nil
}

func (c *Collection) add(day string, asset Asset) {
	c.Count++
	c.byDay[day] = append(c.byDay[day], asset)

	meta := assetMeta(asset)
	if _, seen := c.byHash[meta.Hash]; seen {
		c.nonUniqueHashes[meta.Hash] = true
	} else {
		c.byHash[meta.Hash] = asset
	}
	if meta.SlugVal != "" {
		if _, seen := c.bySlug[meta.SlugVal]; seen {
			c.nonUniqueSlugs[meta.SlugVal] = true
		} else {
			c.bySlug[meta.SlugVal] = asset
		}
	}
}

func (c *Collection) sortDays() {
	for day := range c.byDay {
		assets := c.byDay[day]
		sort.SliceStable(assets, func(i, j int) bool {
			return assets[i].At().Before(assets[j].At())
		})
	}
}

func assetMeta(asset Asset) *Meta {
	switch a := asset.(type) {
	case *Image:
		return &a.Meta
	case *Clip:
		return &a.Meta
	default:
		return &Meta{}
	}
}

// LoadImages reads per-day image metadata files from dir. utcOffset applies
// to every authored capture time.
func LoadImages(dir, utcOffset string) (*Collection, error) {
	return load(dir, utcOffset, "image", func() Asset { return &Image{} })
}

// LoadClips reads per-day clip metadata files from dir.
func LoadClips(dir, utcOffset string) (*Collection, error) {
	return load(dir, utcOffset, "clip", func() Asset { return &Clip{} })
}

func load(dir, utcOffset, kind string, newAsset func() Asset) (*Collection, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("media: read dir %s: %w", dir, err)
	}

	collection := newCollection(kind)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		path := filepath.Join(dir, name)
		day := strings.TrimSuffix(name, ".json")

		payload, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("media: read %s: %w", path, err)
		}

		var records []json.RawMessage
		if err := json.Unmarshal(payload, &records); err != nil {
			return nil, fmt.Errorf("media: problem with %s metadata %s: %w", kind, path, err)
		}

		for _, record := range records {
			asset := newAsset()
			if err := json.Unmarshal(record, asset); err != nil {
				return nil, fmt.Errorf("media: can't make a %s from %s: %w", kind, path, err)
			}

			meta := assetMeta(asset)
			at, err := daytime.Parse(day, meta.Time, utcOffset)
			if err != nil {
				return nil, fmt.Errorf("media: %s: %w", path, err)
			}
			meta.SetCapture(day, at)

			collection.add(day, asset)
		}
	}
	collection.sortDays()
	return collection, nil
}

// Intertwine merges collections into a single day-keyed view, each day's
// assets ordered by capture time. This is the accumulation order the media
// fingerprint preserves.
func Intertwine(collections ...*Collection) map[string][]Asset {
	merged := make(map[string][]Asset)
	for _, collection := range collections {
		if collection == nil {
			continue
		}
		for day, assets := range collection.byDay {
			merged[day] = append(merged[day], assets...)
		}
	}
	for day := range merged {
		assets := merged[day]
		sort.SliceStable(assets, func(i, j int) bool {
			return assets[i].At().Before(assets[j].At())
		})
	}
	return merged
}

// SortedDays returns the day keys of an intertwined view in ascending order.
func SortedDays(byDay map[string][]Asset) []string {
	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)
	return days
}
