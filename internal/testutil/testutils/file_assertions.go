// Package helpers holds test helpers shared by the build packages.
package helpers

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// FileAssertions checks the contents of a generated directory tree.
type FileAssertions struct {
	t       *testing.T
	baseDir string
}

// NewFileAssertions creates an assertion helper rooted at baseDir.
func NewFileAssertions(t *testing.T, baseDir string) *FileAssertions {
	return &FileAssertions{t: t, baseDir: baseDir}
}

// AssertFileExists fails the test unless rel is a regular file.
func (fa *FileAssertions) AssertFileExists(rel string) *FileAssertions {
	fa.t.Helper()
	stat, err := os.Stat(fa.path(rel))
	switch {
	case err != nil:
		fa.t.Errorf("expected file %s: %v", rel, err)
	case stat.IsDir():
		fa.t.Errorf("expected %s to be a file, found a directory", rel)
	}
	return fa
}

// AssertNotExists fails the test if rel exists.
func (fa *FileAssertions) AssertNotExists(rel string) *FileAssertions {
	fa.t.Helper()
	if _, err := os.Stat(fa.path(rel)); err == nil {
		fa.t.Errorf("expected %s to be absent", rel)
	}
	return fa
}

// AssertDirExists fails the test unless rel is a directory.
func (fa *FileAssertions) AssertDirExists(rel string) *FileAssertions {
	fa.t.Helper()
	stat, err := os.Stat(fa.path(rel))
	switch {
	case err != nil:
		fa.t.Errorf("expected directory %s: %v", rel, err)
	case !stat.IsDir():
		fa.t.Errorf("expected %s to be a directory, found a file", rel)
	}
	return fa
}

// AssertFileContains fails the test unless rel contains want.
func (fa *FileAssertions) AssertFileContains(rel, want string) *FileAssertions {
	fa.t.Helper()
	body, ok := fa.read(rel)
	if ok && !strings.Contains(body, want) {
		fa.t.Errorf("expected %s to contain %q\nactual content:\n%s", rel, want, body)
	}
	return fa
}

// AssertFileNotContains fails the test if rel contains unwanted.
func (fa *FileAssertions) AssertFileNotContains(rel, unwanted string) *FileAssertions {
	fa.t.Helper()
	body, ok := fa.read(rel)
	if ok && strings.Contains(body, unwanted) {
		fa.t.Errorf("expected %s not to contain %q", rel, unwanted)
	}
	return fa
}

// AssertFileCount fails the test unless rel holds exactly want regular files.
func (fa *FileAssertions) AssertFileCount(rel string, want int) *FileAssertions {
	fa.t.Helper()
	entries, err := os.ReadDir(fa.path(rel))
	if err != nil {
		fa.t.Errorf("read directory %s: %v", rel, err)
		return fa
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() {
			n++
		}
	}
	if n != want {
		fa.t.Errorf("expected %d files in %s, found %d", want, rel, n)
	}
	return fa
}

func (fa *FileAssertions) path(rel string) string {
	return filepath.Join(fa.baseDir, filepath.FromSlash(rel))
}

func (fa *FileAssertions) read(rel string) (string, bool) {
	fa.t.Helper()
	// #nosec G304 - test helper, paths are controlled by test code
	data, err := os.ReadFile(fa.path(rel))
	if err != nil {
		fa.t.Errorf("read %s: %v", rel, err)
		return "", false
	}
	return string(data), true
}
