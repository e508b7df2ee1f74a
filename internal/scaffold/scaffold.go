// Package scaffold keeps the content directory in line with the structure
// table: it assigns page ids, files every content file under the name its
// position in the hierarchy dictates and creates stubs for new pages.
//
// Where a content file lives has no effect on the build; the layout only
// helps people find their way around the content directory.
package scaffold

import (
	"context"
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/content"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/observability"
	"git.home.luguber.info/inful/sitebuilder/internal/structure"
)

// Options tune a scaffolding run.
type Options struct {
	// Sheet selects the worksheet of .xlsx tables.
	Sheet string
	// Prune deletes content files whose page id is not in the table.
	Prune bool
	// NewID generates page ids; defaults to random upper-case ids.
	NewID func() string
}

// Move is one renamed content file.
type Move struct {
	From string
	To   string
}

// Report lists what a run changed, with paths relative to the content directory.
type Report struct {
	AssignedIDs []string
	Renamed     []Move
	Created     []string
	Unknown     []string // files with an id the table does not know
	Deleted     []string
	Duplicates  []string // files sharing a page id with an earlier file
	NewTable    bool
}

// DefaultRows is the table written when none exists: a single home page.
func DefaultRows() []structure.Row {
	return []structure.Row{{
		SectionOrder: 1,
		Section:      "Home",
		ChapterOrder: 1,
		GroupOrder:   1,
		PageOrder:    1,
		Page:         "Home",
	}}
}

// RandomID returns a random page id of structure.IDLength characters.
func RandomID() string {
	return rand.Text()[:structure.IDLength]
}

// Run scaffolds contentDir according to the table at tablePath and saves
// the table back with any ids it assigned.
func Run(ctx context.Context, contentDir, tablePath string, opts Options) (*Report, error) {
	if opts.NewID == nil {
		opts.NewID = RandomID
	}
	rep := &Report{}

	rows, err := structure.ReadTable(tablePath, opts.Sheet)
	switch {
	case errors.HasCategory(err, errors.CategoryNotFound):
		observability.InfoContext(ctx, "No structure table found, starting with a home page", logfields.Path(tablePath))
		rows = DefaultRows()
		rep.NewTable = true
	case err != nil:
		return nil, err
	}

	rep.AssignedIDs = assignIDs(rows, opts.NewID)
	byID := make(map[string]structure.Row, len(rows))
	for _, r := range rows {
		byID[r.PageID] = r
	}

	files, err := content.Discover(contentDir)
	if err != nil {
		return nil, err
	}
	found := map[string]string{}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id, ok, err := readID(file)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		rel := relPath(contentDir, file)

		row, known := byID[id]
		if !known {
			rep.Unknown = append(rep.Unknown, rel)
			if opts.Prune {
				if err := os.Remove(file); err != nil {
					return nil, errors.FileSystemError("delete content file").WithCause(err).WithContext("path", file).Build()
				}
				rep.Deleted = append(rep.Deleted, rel)
				observability.InfoContext(ctx, "Deleted content file with unknown page id", logfields.File(rel), logfields.PageID(id))
			} else {
				observability.WarnContext(ctx, "Content file has unknown page id", logfields.File(rel), logfields.PageID(id))
			}
			continue
		}
		if first, dup := found[id]; dup {
			rep.Duplicates = append(rep.Duplicates, rel)
			observability.WarnContext(ctx, "Page id already used by another file",
				logfields.File(rel), logfields.PageID(id), logfields.Path(first))
			continue
		}
		found[id] = rel

		target := filepath.Join(contentDir, FileName(row))
		if target == file {
			continue
		}
		if err := move(file, target); err != nil {
			return nil, err
		}
		found[id] = relPath(contentDir, target)
		rep.Renamed = append(rep.Renamed, Move{From: rel, To: found[id]})
	}

	for _, r := range rows {
		if _, ok := found[r.PageID]; ok {
			continue
		}
		target := filepath.Join(contentDir, FileName(r))
		if err := writeStub(target, r.PageID); err != nil {
			return nil, err
		}
		rep.Created = append(rep.Created, relPath(contentDir, target))
	}

	if err := structure.WriteTable(tablePath, opts.Sheet, rows); err != nil {
		return nil, err
	}
	return rep, nil
}

// assignIDs gives every row without a page id a fresh unique one.
func assignIDs(rows []structure.Row, newID func() string) []string {
	used := map[string]bool{}
	for _, r := range rows {
		used[r.PageID] = true
	}
	var assigned []string
	for i := range rows {
		if rows[i].PageID != "" {
			continue
		}
		id := newID()
		for used[id] {
			id = newID()
		}
		used[id] = true
		rows[i].PageID = id
		assigned = append(assigned, id)
	}
	return assigned
}

// FileName is where a row's content file belongs, relative to the content
// directory: "<SS>_<section>/<CCGGPP> - <chapter> - <page>.md", lower-cased,
// with blank names left out.
func FileName(r structure.Row) string {
	dir := fmt.Sprintf("%02d_%s", r.SectionOrder, clean(r.Section))
	parts := []string{fmt.Sprintf("%02d%02d%02d", r.ChapterOrder, r.GroupOrder, r.PageOrder)}
	for _, name := range []string{r.Chapter, r.Page} {
		if n := clean(name); n != "" {
			parts = append(parts, n)
		}
	}
	return filepath.Join(dir, strings.Join(parts, " - ")+".md")
}

func clean(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer("/", "-", `\`, "-").Replace(name)
}

// readID returns the page id line of a file that looks like page content:
// it has a line break and its first line is a page id.
func readID(path string) (string, bool, error) {
	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return "", false, errors.WrapError(err, errors.CategoryContent, "read content file").WithContext("path", path).Build()
	}
	id, _, ok := content.SplitID(string(raw))
	if !ok || len(id) != structure.IDLength {
		return "", false, nil
	}
	return id, true, nil
}

func move(from, to string) error {
	if err := os.MkdirAll(filepath.Dir(to), 0o750); err != nil {
		return errors.FileSystemError("create section directory").WithCause(err).WithContext("path", to).Build()
	}
	if _, err := os.Stat(to); err == nil {
		return errors.FileSystemError("rename target already exists").
			WithContext("from", from).
			WithContext("to", to).
			UserAction().
			Build()
	}
	if err := os.Rename(from, to); err != nil {
		return errors.FileSystemError("rename content file").WithCause(err).WithContext("from", from).Build()
	}
	return nil
}

func writeStub(path, id string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return errors.FileSystemError("create section directory").WithCause(err).WithContext("path", path).Build()
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return errors.FileSystemError("create page stub").WithCause(err).WithContext("path", path).Build()
	}
	if _, err := f.WriteString(id + "\n"); err != nil {
		_ = f.Close()
		return errors.FileSystemError("write page stub").WithCause(err).WithContext("path", path).Build()
	}
	return f.Close()
}

func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
