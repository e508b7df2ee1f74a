package preview

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/observability"
	"git.home.luguber.info/inful/sitebuilder/internal/util/sets"
)

// Watcher reports changes below a set of directories. New subdirectories
// are watched as they appear.
type Watcher struct {
	fs     *fsnotify.Watcher
	ignore sets.Set[string]
}

// NewWatcher watches every directory below roots. Changes to the files in
// ignore (absolute paths) are not reported.
func NewWatcher(roots []string, ignore ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.FileSystemError("create file watcher").WithCause(err).Build()
	}
	w := &Watcher{fs: fw, ignore: sets.New[string]()}
	for _, p := range ignore {
		w.ignore.Add(filepath.Clean(p))
	}
	for _, root := range roots {
		if err := w.addTree(root); err != nil {
			_ = fw.Close()
			return nil, err
		}
	}
	return w, nil
}

// Run calls onChange for every relevant event until ctx is done.
func (w *Watcher) Run(ctx context.Context, onChange func(path string)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if w.ignored(ev.Name) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					_ = w.addTree(ev.Name)
				}
			}
			observability.DebugContext(ctx, "File change detected", logfields.Path(ev.Name), logfields.Method(ev.Op.String()))
			onChange(ev.Name)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			observability.WarnContext(ctx, "File watcher error", logfields.Error(err))
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

func (w *Watcher) ignored(path string) bool {
	return w.ignore.Has(filepath.Clean(path)) || shouldIgnoreEvent(path)
}

func (w *Watcher) addTree(root string) error {
	if _, err := os.Stat(root); err != nil {
		return errors.FileSystemError("watch directory").WithCause(err).WithContext("path", root).Build()
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			observability.WarnContext(context.Background(), "Cannot watch directory", logfields.Path(path), logfields.Error(err))
		}
		return nil
	})
}

// shouldIgnoreEvent skips hidden files, editor swap files and office lock
// files.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)
	switch {
	case strings.HasPrefix(base, "."), strings.HasPrefix(base, "~$"):
		return true
	case strings.HasSuffix(base, "~"), strings.HasSuffix(base, ".swp"), strings.HasSuffix(base, ".swx"):
		return true
	case strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"):
		return true
	case base == "Thumbs.db":
		return true
	}
	return false
}
