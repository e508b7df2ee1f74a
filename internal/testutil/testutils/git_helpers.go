package helpers

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// SetupTestGitRepo initializes a git repository in a temporary directory.
// Returns the repository, its worktree, and the directory.
func SetupTestGitRepo(t *testing.T) (*git.Repository, *git.Worktree, string) {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("failed to initialize git repo: %v", err)
	}
	w, err := repo.Worktree()
	if err != nil {
		t.Fatalf("failed to get worktree: %v", err)
	}
	return repo, w, dir
}

// CommitFile writes body to rel inside the worktree and commits it with the
// given author time.
func CommitFile(t *testing.T, w *git.Worktree, dir, rel, body string, when time.Time) {
	t.Helper()

	full := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		t.Fatalf("mkdir %s: %v", rel, err)
	}
	if err := os.WriteFile(full, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
	if _, err := w.Add(filepath.ToSlash(rel)); err != nil {
		t.Fatalf("git add %s: %v", rel, err)
	}
	sig := &object.Signature{Name: "Site Editor", Email: "editor@example.com", When: when}
	if _, err := w.Commit("update "+rel, &git.CommitOptions{Author: sig, Committer: sig}); err != nil {
		t.Fatalf("git commit %s: %v", rel, err)
	}
}
