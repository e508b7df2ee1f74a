package templates

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
)

// ExportDefaults writes the embedded default templates into dir so they can be
// customised. Existing files are never overwritten. It returns the files written.
func ExportDefaults(dir string) ([]string, error) {
	if dir == "" {
		return nil, errors.New("template directory is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create template directory: %w", err)
	}

	entries, err := fs.ReadDir(defaultFS, "defaults")
	if err != nil {
		return nil, fmt.Errorf("read embedded templates: %w", err)
	}

	var written []string
	for _, e := range entries {
		body, err := defaultFS.ReadFile("defaults/" + e.Name())
		if err != nil {
			return written, fmt.Errorf("read embedded %s: %w", e.Name(), err)
		}
		fullPath := filepath.Join(dir, e.Name())

		// #nosec G304 -- fullPath is a fixed embedded name under dir.
		file, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
		if err != nil {
			if errors.Is(err, os.ErrExist) {
				continue
			}
			return written, fmt.Errorf("write %s: %w", fullPath, err)
		}
		_, werr := file.Write(body)
		cerr := file.Close()
		if werr != nil {
			return written, fmt.Errorf("write %s: %w", fullPath, werr)
		}
		if cerr != nil {
			return written, fmt.Errorf("close %s: %w", fullPath, cerr)
		}
		written = append(written, e.Name())
	}
	slices.Sort(written)
	return written, nil
}
