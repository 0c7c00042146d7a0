package config

import (
	"errors"
	"fmt"

	"waymark/internal/daytime"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateBuild(); err != nil {
		return err
	}
	if err := c.validateWatch(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.DataDir == c.Paths.OutputDir {
		return errors.New("paths.data_dir and paths.output_dir must differ")
	}
	return nil
}

func (c *Config) validateBuild() error {
	if c.Build.UTCOffset != "" && !daytime.ValidOffset(c.Build.UTCOffset) {
		return fmt.Errorf("build.utc_offset %q is not a valid offset (want e.g. +02:00)", c.Build.UTCOffset)
	}
	return nil
}

func (c *Config) validateWatch() error {
	if c.Watch.DebounceSeconds <= 0 {
		return errors.New("watch.debounce_seconds must be positive")
	}
	return nil
}
