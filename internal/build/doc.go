// Package build runs a complete site build: it loads the site properties,
// the structure table and the templates, assembles every content page in
// parallel, writes pages, the sitemap and the assets to the output
// directory, and records the outcome.
//
// All execution paths (CLI, preview, daemon) go through Service.Run.
package build
