// Package templates loads the page templates, section snippets and
// stylesheets a site is rendered with.
//
// A template directory holds base*.html page templates, snippet_*.html
// section snippets and styles_*.css stylesheets. Files present in the
// directory replace the embedded defaults of the same name; anything missing
// falls back to the defaults, so an empty directory still builds a site.
package templates

import (
	"embed"
	"io/fs"
	"maps"
	"os"
	"path"
	"slices"
	"strings"
	"text/template"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

//go:embed defaults/*
var defaultFS embed.FS

const (
	// PageTemplate renders content pages.
	PageTemplate = "base"
	// SitemapTemplate renders the standalone sitemap page.
	SitemapTemplate = "base_sitemap"

	pagePrefix       = "base"
	snippetPrefix    = "snippet_"
	stylesheetPrefix = "styles_"
)

// Set is a loaded template directory. It is safe for concurrent rendering.
type Set struct {
	pages       *template.Template
	snippets    *template.Template
	stylesheets map[string][]byte
	sources     map[string]string
}

// StylesheetFile returns the file name of the stylesheet called name.
func StylesheetFile(name string) string {
	return stylesheetPrefix + name + ".css"
}

// Load reads dir over the embedded defaults. An empty dir uses only the defaults.
func Load(dir string) (*Set, error) {
	files := map[string][]byte{}
	sources := map[string]string{}

	defaults, err := fs.Sub(defaultFS, "defaults")
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "open embedded templates").Build()
	}
	if err := collect(defaults, files, sources, "embedded"); err != nil {
		return nil, err
	}
	if dir != "" {
		if _, statErr := os.Stat(dir); statErr == nil {
			if err := collect(os.DirFS(dir), files, sources, dir); err != nil {
				return nil, err
			}
		}
	}

	s := &Set{
		pages:       template.New("pages").Option("missingkey=error").Funcs(funcs),
		snippets:    template.New("snippets").Option("missingkey=error").Funcs(funcs),
		stylesheets: map[string][]byte{},
		sources:     sources,
	}
	for _, name := range slices.Sorted(maps.Keys(files)) {
		body := files[name]
		stem := strings.TrimSuffix(name, path.Ext(name))
		switch {
		case strings.HasPrefix(name, snippetPrefix) && path.Ext(name) == ".html":
			if _, err := s.snippets.New(strings.TrimPrefix(stem, snippetPrefix)).Parse(string(body)); err != nil {
				return nil, parseError(err, name, sources[name])
			}
		case strings.HasPrefix(name, pagePrefix) && path.Ext(name) == ".html":
			if _, err := s.pages.New(stem).Parse(string(body)); err != nil {
				return nil, parseError(err, name, sources[name])
			}
		case strings.HasPrefix(name, stylesheetPrefix) && path.Ext(name) == ".css":
			s.stylesheets[strings.TrimPrefix(stem, stylesheetPrefix)] = body
		}
	}
	return s, nil
}

// collect gathers template files at the top level of fsys; later calls override earlier ones.
func collect(fsys fs.FS, files map[string][]byte, sources map[string]string, origin string) error {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "read template directory").
			WithContext("dir", origin).
			Build()
	}
	for _, e := range entries {
		if e.IsDir() || !isTemplateFile(e.Name()) {
			continue
		}
		body, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "read template file").
				WithContext("file", e.Name()).
				WithContext("dir", origin).
				Build()
		}
		files[e.Name()] = body
		sources[e.Name()] = origin
	}
	return nil
}

func isTemplateFile(name string) bool {
	ext := path.Ext(name)
	switch {
	case ext == ".html" && (strings.HasPrefix(name, snippetPrefix) || strings.HasPrefix(name, pagePrefix)):
		return true
	case ext == ".css" && strings.HasPrefix(name, stylesheetPrefix):
		return true
	}
	return false
}

func parseError(err error, name, origin string) error {
	return errors.WrapError(err, errors.CategoryTemplate, "parse template").
		WithContext("file", name).
		WithContext("dir", origin).
		Build()
}

// HasSnippet reports whether a snippet called name exists.
func (s *Set) HasSnippet(name string) bool {
	return s.snippets.Lookup(name) != nil
}

// SnippetNames returns the names of all loaded snippets, sorted.
func (s *Set) SnippetNames() []string {
	var names []string
	for _, t := range s.snippets.Templates() {
		if t.Tree != nil && t.Name() != s.snippets.Name() {
			names = append(names, t.Name())
		}
	}
	slices.Sort(names)
	return names
}

// HasPage reports whether a page template called name exists.
func (s *Set) HasPage(name string) bool {
	return s.pages.Lookup(name) != nil
}

// Stylesheet returns the css for a stylesheet name such as "card".
func (s *Set) Stylesheet(name string) ([]byte, bool) {
	b, ok := s.stylesheets[name]
	return b, ok
}

// StylesheetNames returns every stylesheet name, sorted.
func (s *Set) StylesheetNames() []string {
	return slices.Sorted(maps.Keys(s.stylesheets))
}

// Source reports where a template file was loaded from: a directory or "embedded".
func (s *Set) Source(file string) string {
	return s.sources[file]
}
