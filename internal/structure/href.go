package structure

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	// PageExt is appended to the last href segment.
	PageExt = ".html"
	// RootHref is forced onto the first page in sort order.
	RootHref = "index.html"
)

// ResolveHref derives an output path from the present hierarchy names,
// e.g. ("Getting Started", "", "First Steps") -> "getting_started/first_steps.html".
// Blank names are skipped. It returns false when no level is present.
func ResolveHref(names ...string) (string, bool) {
	segments := make([]string, 0, len(names))
	for _, name := range names {
		seg := hrefSegment(name)
		if seg == "" {
			continue
		}
		segments = append(segments, seg)
	}
	if len(segments) == 0 {
		return "", false
	}
	segments[len(segments)-1] += PageExt
	return strings.Join(segments, "/"), true
}

func hrefSegment(name string) string {
	s := strings.TrimSpace(norm.NFC.String(name))
	if s == "" {
		return ""
	}
	return strings.ReplaceAll(strings.ToLower(s), " ", "_")
}

// NestLevel counts the present levels among section and chapter. Groups and
// page names never add a directory level.
func NestLevel(section, chapter string) int {
	n := 0
	if present(section) {
		n++
	}
	if present(chapter) {
		n++
	}
	return n
}

// NestPrefix returns the relative path from a page at nest level n back to the site root.
func NestPrefix(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("../", n)
}

func present(s string) bool {
	return strings.TrimSpace(s) != ""
}
