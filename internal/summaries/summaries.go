// Package summaries loads the authored per-day summary texts.
package summaries

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"waymark/internal/daytime"
)

// Load reads every summary file in dir, keyed by day. File names must be
// days ("2024-07-01.md"); anything else is an authoring error.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("summaries: read dir %s: %w", dir, err)
	}

	byDay := make(map[string]string, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".md") {
			continue
		}
		day := strings.TrimSuffix(name, ".md")
		if _, err := daytime.ParseDay(day); err != nil {
			return nil, fmt.Errorf("summaries: %s: %w", filepath.Join(dir, name), err)
		}

		body, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("summaries: read %s: %w", name, err)
		}
		byDay[day] = string(body)
	}
	return byDay, nil
}
