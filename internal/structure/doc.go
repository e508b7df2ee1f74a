// Package structure holds the site hierarchy: the table of pages ordered by
// section, chapter, group and page, the hrefs derived from it, and the
// navigation queries (breadcrumbs, adjacent pages, sitemap, crossrefs)
// every page build reads from.
//
// A Model is built once per run with NewModel and is read-only afterwards,
// so it can be shared across page workers without locking.
package structure
