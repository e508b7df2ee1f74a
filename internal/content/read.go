package content

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// Page is a content file's parsed representation.
type Page struct {
	PageID   string
	Path     string
	Created  time.Time
	Modified time.Time
	Sections []Section
}

// DateSource supplies the creation and modification dates shown on a page.
type DateSource interface {
	Dates(path string) (created, modified time.Time, err error)
}

// FileDates reads dates from filesystem metadata.
type FileDates struct{}

func (FileDates) Dates(path string) (time.Time, time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return changeTime(info), info.ModTime(), nil
}

// SplitID separates the page id line from the body. It reports false when
// the text has no line break.
func SplitID(text string) (id, body string, ok bool) {
	id, body, ok = strings.Cut(text, "\n")
	if !ok {
		return "", "", false
	}
	return strings.TrimSuffix(id, "\r"), body, true
}

// ReadPage loads and parses one content file. Files without a line break or
// whose id known rejects yield (nil, nil): they are not part of the build.
func ReadPage(path string, known func(id string) bool, dates DateSource) (*Page, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryContent, "read content file").
			WithContext("path", path).
			Build()
	}
	id, body, ok := SplitID(string(raw))
	if !ok || !known(id) {
		return nil, nil
	}

	if dates == nil {
		dates = FileDates{}
	}
	created, modified, err := dates.Dates(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryContent, "read content dates").
			WithContext("path", path).
			Build()
	}

	return &Page{
		PageID:   id,
		Path:     path,
		Created:  created,
		Modified: modified,
		Sections: ParseSections(body),
	}, nil
}

// Discover returns every .md file below root in lexical order.
func Discover(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".md") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "discover content files").
			WithContext("root", root).
			Build()
	}
	slices.Sort(files)
	return files, nil
}
