package places

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"waymark/internal/fileutil"
)

// Compiled is the durable JSON representation of a place, keyed on disk by
// slug and guarded by the authored YAML checksum.
type Compiled struct {
	BigName      string  `json:"big_name"`
	Lat          float64 `json:"lat"`
	Lon          float64 `json:"lon"`
	MapURL       string  `json:"map_url"`
	Significance int     `json:"significance"`
	SmallLink    string  `json:"small_link,omitempty"`
	SmallName    string  `json:"small_name"`
	Slug         string  `json:"slug"`
	YAMLChecksum string  `json:"yaml_checksum"`
}

// CompiledIsCurrent reads the compiled representation and reports whether it
// matches the authored checksum. Absence reads as stale with no error;
// malformed compiled data propagates.
func (p *Place) CompiledIsCurrent(dir string) (Compiled, bool, error) {
	path := filepath.Join(dir, p.Slug()+".json")
	payload, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Compiled{}, false, nil
		}
		return Compiled{}, false, fmt.Errorf("places: read compiled %s: %w", path, err)
	}
	var compiled Compiled
	if err := json.Unmarshal(payload, &compiled); err != nil {
		return Compiled{}, false, fmt.Errorf("places: decode compiled %s: %w", path, err)
	}
	return compiled, compiled.YAMLChecksum == p.YAMLChecksum, nil
}

// Compile writes the compiled representation when the authored source
// changed (or force is set). Returns true when a write happened.
func (p *Place) Compile(dir string, force bool) (bool, error) {
	if !force {
		if _, current, err := p.CompiledIsCurrent(dir); err != nil {
			return false, err
		} else if current {
			return false, nil
		}
	}

	compiled := Compiled{
		BigName:      p.BigName,
		Lat:          p.Lat,
		Lon:          p.Lon,
		MapURL:       p.MapURL(),
		Significance: p.Significance,
		SmallLink:    p.SmallLink,
		SmallName:    p.SmallName,
		Slug:         p.Slug(),
		YAMLChecksum: p.YAMLChecksum,
	}
	payload, err := json.MarshalIndent(compiled, "", "  ")
	if err != nil {
		return false, fmt.Errorf("places: encode %s: %w", compiled.Slug, err)
	}
	path := filepath.Join(dir, compiled.Slug+".json")
	if err := fileutil.WriteAtomic(path, payload, 0o644); err != nil {
		return false, fmt.Errorf("places: %w", err)
	}
	return true, nil
}
