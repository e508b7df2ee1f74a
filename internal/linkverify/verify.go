package linkverify

import (
	"context"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/observability"
)

// BrokenLink is an internal link with no file behind it.
type BrokenLink struct {
	Page   string // page path relative to the output directory
	URL    string
	Tag    string
	Text   string
	Reason string
}

// Report summarizes one verification run.
type Report struct {
	Pages   int
	Checked int
	Broken  []BrokenLink
}

// OK reports whether every checked link resolved.
func (r *Report) OK() bool { return len(r.Broken) == 0 }

type pageResult struct {
	checked int
	broken  []BrokenLink
}

// Verify parses every HTML page below outputDir and checks its internal
// links. Pages are processed by up to concurrency workers; the report lists
// broken links in page order.
func Verify(ctx context.Context, outputDir string, concurrency int) (*Report, error) {
	var pages []string
	err := filepath.WalkDir(outputDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(p), ".html") {
			rel, err := filepath.Rel(outputDir, p)
			if err != nil {
				return err
			}
			pages = append(pages, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "scan output directory").
			WithContext("output", outputDir).
			Build()
	}

	results := make([]pageResult, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for i, page := range pages {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := verifyPage(outputDir, page)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{Pages: len(pages)}
	for _, res := range results {
		report.Checked += res.checked
		report.Broken = append(report.Broken, res.broken...)
	}
	for _, b := range report.Broken {
		observability.WarnContext(ctx, "broken link",
			logfields.Path(b.Page),
			logfields.URL(b.URL),
			slog.String("reason", b.Reason))
	}
	return report, nil
}

func verifyPage(outputDir, page string) (pageResult, error) {
	links, err := ExtractLinks(filepath.Join(outputDir, filepath.FromSlash(page)))
	if err != nil {
		return pageResult{}, err
	}
	var res pageResult
	for _, link := range links {
		if !ShouldVerifyLink(link) {
			continue
		}
		res.checked++
		if reason := checkInternalLink(outputDir, page, link.URL); reason != "" {
			res.broken = append(res.broken, BrokenLink{
				Page:   page,
				URL:    link.URL,
				Tag:    link.Tag,
				Text:   link.Text,
				Reason: reason,
			})
		}
	}
	return res, nil
}

// checkInternalLink returns why ref, found on page, does not resolve, or ""
// when it does.
func checkInternalLink(outputDir, page, ref string) string {
	target, reason := localPath(page, ref)
	if reason != "" {
		return reason
	}
	if target == "" {
		return ""
	}
	stat, err := os.Stat(filepath.Join(outputDir, filepath.FromSlash(target)))
	switch {
	case err != nil:
		return "file not found"
	case stat.IsDir():
		return "directory without index.html"
	}
	return ""
}

// localPath maps ref to a slash path relative to the output directory. An
// empty path means the link targets the page itself.
func localPath(page, ref string) (string, string) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", "invalid URL"
	}
	p := u.Path
	if p == "" {
		return "", ""
	}
	var joined string
	if strings.HasPrefix(p, "/") {
		joined = path.Clean(strings.TrimPrefix(p, "/"))
	} else {
		joined = path.Join(path.Dir(page), p)
	}
	if joined == ".." || strings.HasPrefix(joined, "../") {
		return "", "points outside the site"
	}
	if strings.HasSuffix(p, "/") || joined == "." {
		joined = path.Join(joined, "index.html")
	}
	return joined, ""
}
