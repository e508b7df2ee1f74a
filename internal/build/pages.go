package build

import (
	"context"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/content"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/observability"
	"git.home.luguber.info/inful/sitebuilder/internal/page"
	"git.home.luguber.info/inful/sitebuilder/internal/util/sets"
)

type pagesOutput struct {
	pages       int
	ignored     int
	failures    int
	stylesheets []string
}

// writePages assembles every content file with up to Concurrency workers,
// then writes the pages and the sitemap. Each page reports its own
// stylesheets; they are merged here once all workers are done.
func writePages(ctx context.Context, cfg *config.Config, site *loadedSite) (*pagesOutput, error) {
	files, err := content.Discover(cfg.Paths.Content)
	if err != nil {
		return nil, err
	}

	built := make([]*page.Page, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Build.Concurrency, 1))
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			pc, err := content.ReadPage(file, site.model.Has, site.dates)
			if err != nil || pc == nil {
				return err
			}
			p, err := site.assembler.Build(gctx, pc)
			if err != nil {
				return errors.WrapError(err, errors.CategoryTemplate, "build page").
					WithContext("file", file).
					Fatal().
					Build()
			}
			built[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &pagesOutput{}
	used := sets.NewOrdered[string]()
	written := map[string]string{}
	for i, p := range built {
		if p == nil {
			out.ignored++
			observability.DebugContext(ctx, "Content file not part of the site", logfields.File(files[i]))
			continue
		}
		if first, dup := written[p.PageID]; dup {
			observability.WarnContext(ctx, "Page id used by more than one file; keeping the first",
				logfields.PageID(p.PageID), logfields.File(files[i]), logfields.Path(first))
			out.ignored++
			continue
		}
		written[p.PageID] = files[i]
		if err := writeOutput(cfg.Paths.Output, p.Href, p.HTML); err != nil {
			return nil, err
		}
		out.pages++
		out.failures += len(p.Failures)
		used.Add(p.Stylesheets...)
	}

	sitemap, err := site.assembler.Sitemap(ctx)
	if err != nil {
		return nil, err
	}
	if err := writeOutput(cfg.Paths.Output, sitemap.Href, sitemap.HTML); err != nil {
		return nil, err
	}
	used.Add(sitemap.Stylesheets...)

	out.stylesheets = used.Items()
	return out, nil
}

// writeOutput writes one page to root/href.
func writeOutput(root, href, html string) error {
	full := filepath.Join(root, filepath.FromSlash(href))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return errors.FileSystemError("create output directory").WithCause(err).WithContext("path", full).Build()
	}
	// #nosec G306 -- generated pages are public
	if err := os.WriteFile(full, []byte(html), 0o644); err != nil {
		return errors.FileSystemError("write page").WithCause(err).WithContext("path", full).Build()
	}
	return nil
}
