package config

import (
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// EnsurePaths makes sure the content, templates and output directories exist.
// A configured directory that is missing falls back to <workdir>/<name>,
// which is created when needed.
func (c *Config) EnsurePaths() error {
	dirs := []struct {
		name string
		path *string
	}{
		{DefaultContentDir, &c.Paths.Content},
		{DefaultTemplatesDir, &c.Paths.Templates},
		{DefaultOutputDir, &c.Paths.Output},
	}
	for _, d := range dirs {
		if info, err := os.Stat(*d.path); err == nil && info.IsDir() {
			continue
		}
		fallback := filepath.Join(c.Workdir, d.name)
		if fallback != *d.path {
			slog.Warn("Directory not found, using default", "key", d.name, "configured", *d.path, "path", fallback)
			*d.path = fallback
		}
		if err := os.MkdirAll(fallback, 0o750); err != nil {
			return errors.FileSystemError("create directory").
				WithCause(err).
				WithContext("key", d.name).
				WithContext("path", fallback).
				Build()
		}
	}
	return nil
}
