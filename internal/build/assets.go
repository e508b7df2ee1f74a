package build

import (
	"bytes"
	"context"
	derrors "errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/observability"
	"git.home.luguber.info/inful/sitebuilder/internal/templates"
	"git.home.luguber.info/inful/sitebuilder/internal/util/sets"
)

// CSSDir is the output subdirectory holding stylesheets.
const CSSDir = "css"

// BaseStylesheet is the file every page links; it concatenates the base stylesheets.
var BaseStylesheet = templates.StylesheetFile("base")

// writeAssets copies the verbatim content directories and writes the stylesheets.
func writeAssets(ctx context.Context, cfg *config.Config, set *templates.Set, used []string) error {
	for _, dir := range cfg.Build.CopyDirs {
		src := filepath.Join(cfg.Paths.Content, dir)
		if _, err := os.Stat(src); derrors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := copyTree(ctx, src, filepath.Join(cfg.Paths.Output, dir)); err != nil {
			return err
		}
	}
	return writeStylesheets(ctx, cfg, set, used)
}

func writeStylesheets(ctx context.Context, cfg *config.Config, set *templates.Set, used []string) error {
	cssDir := filepath.Join(cfg.Paths.Output, CSSDir)
	if err := os.MkdirAll(cssDir, 0o755); err != nil {
		return errors.FileSystemError("create stylesheet directory").WithCause(err).WithContext("path", cssDir).Build()
	}

	base := sets.New(cfg.Build.BaseStylesheets...)
	usedFiles := sets.New(used...)
	for _, name := range set.StylesheetNames() {
		file := templates.StylesheetFile(name)
		if base.Has(name) || (cfg.Build.TrimStylesheets && !usedFiles.Has(file)) {
			continue
		}
		css, _ := set.Stylesheet(name)
		if err := writeFile(filepath.Join(cssDir, file), css); err != nil {
			return err
		}
	}

	var combined bytes.Buffer
	for _, name := range cfg.Build.BaseStylesheets {
		css, ok := set.Stylesheet(name)
		if !ok {
			observability.WarnContext(ctx, "Base stylesheet not found", logfields.File(templates.StylesheetFile(name)))
			continue
		}
		combined.Write(css)
	}
	return writeFile(filepath.Join(cssDir, BaseStylesheet), combined.Bytes())
}

// copyTree copies the regular files below src into dst, replacing existing files.
func copyTree(ctx context.Context, src, dst string) error {
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return copyFile(path, target)
	})
	if err != nil && !derrors.Is(err, context.Canceled) {
		return errors.FileSystemError("copy directory").WithCause(err).WithContext("src", src).Build()
	}
	return err
}

func copyFile(src, dst string) error {
	in, err := os.Open(filepath.Clean(src))
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	// #nosec G302 -- copied assets are public
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func writeFile(path string, data []byte) error {
	// #nosec G306 -- stylesheets are public
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.FileSystemError("write file").WithCause(err).WithContext("path", path).Build()
	}
	return nil
}
