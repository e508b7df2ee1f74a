// Package gitdates reads page dates from git history: a page was created by
// the first commit that touched it and modified by the last.
package gitdates

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"git.home.luguber.info/inful/sitebuilder/internal/content"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// Source is a content.DateSource backed by a git repository. Files without
// history get their dates from the fallback source.
type Source struct {
	mu       sync.Mutex
	repo     *git.Repository
	root     string
	fallback content.DateSource
}

// Open finds the repository containing dir.
func Open(dir string, fallback content.DateSource) (*Source, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "open git repository for page dates").
			WithContext("dir", dir).
			Build()
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "git worktree for page dates").
			WithContext("dir", dir).
			Build()
	}
	root, err := realPath(wt.Filesystem.Root())
	if err != nil {
		return nil, errors.FileSystemError("resolve repository root").WithCause(err).Build()
	}
	if fallback == nil {
		fallback = content.FileDates{}
	}
	return &Source{repo: repo, root: root, fallback: fallback}, nil
}

// Dates returns the author time of the oldest and newest commit touching path.
func (s *Source) Dates(path string) (time.Time, time.Time, error) {
	rel, ok := s.relative(path)
	if !ok {
		return s.fallback.Dates(path)
	}

	s.mu.Lock()
	created, modified, err := s.history(rel)
	s.mu.Unlock()
	if err != nil || modified.IsZero() {
		return s.fallback.Dates(path)
	}
	return created, modified, nil
}

func (s *Source) history(rel string) (time.Time, time.Time, error) {
	head, err := s.repo.Head()
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	iter, err := s.repo.Log(&git.LogOptions{
		From:     head.Hash(),
		Order:    git.LogOrderCommitterTime,
		FileName: &rel,
	})
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	defer iter.Close()

	var created, modified time.Time
	err = iter.ForEach(func(c *object.Commit) error {
		when := c.Author.When
		if created.IsZero() || when.Before(created) {
			created = when
		}
		if when.After(modified) {
			modified = when
		}
		return nil
	})
	return created, modified, err
}

func (s *Source) relative(path string) (string, bool) {
	abs, err := realPath(path)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(s.root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func realPath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
