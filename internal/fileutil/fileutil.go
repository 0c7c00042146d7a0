// Package fileutil holds small filesystem helpers shared by the stores that
// persist build state.
package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// WriteAtomic writes payload to path through a temp file in the same
// directory plus rename, so a crash mid-write can never leave a partial
// file behind. Parent directories are created as needed.
func WriteAtomic(path string, payload []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure %s: %w", dir, err)
	}
	tmp := filepath.Join(dir, fmt.Sprintf(".waymark-%d.tmp", time.Now().UnixNano()))
	if err := os.WriteFile(tmp, payload, mode); err != nil {
		return fmt.Errorf("write temp for %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
