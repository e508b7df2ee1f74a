package structure

import (
	"cmp"
	"slices"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// Row is one line of the structure table. Blank names mean the level is absent.
type Row struct {
	PageID       string
	SectionOrder int
	Section      string
	ChapterOrder int
	Chapter      string
	GroupOrder   int
	Group        string
	PageOrder    int
	Page         string
	Code         string
}

// Page is a Row with its derived output location.
type Page struct {
	Row
	Href string
	Nest int
	// Index is the position in sort order.
	Index int
}

// PageLink is a page name paired with its href.
type PageLink struct {
	Name string
	Href string
}

// SectionLink points a section at the href of its first page.
type SectionLink struct {
	Name string
	Href string
}

// Crossref maps a crossref code to the href of the page carrying it.
type Crossref struct {
	Code string
	Href string
}

// Adjacent holds the previous and next page in sort order.
type Adjacent struct {
	Prev PageLink
	Next PageLink
}

// Model is the sorted, indexed site hierarchy. It is immutable after NewModel.
type Model struct {
	pages     []Page
	byID      map[string]int
	sections  []SectionLink
	crossrefs []Crossref
	sitemap   Sitemap
}

// NewModel sorts rows by (section, chapter, group, page) order, derives hrefs
// and nest levels, forces the first page to the site root, and indexes by page id.
// Rows with equal order tuples keep their input order.
func NewModel(rows []Row) (*Model, error) {
	if len(rows) == 0 {
		return nil, errors.StructureError("structure table has no pages").Build()
	}

	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, compareOrder)

	m := &Model{
		pages: make([]Page, len(sorted)),
		byID:  make(map[string]int, len(sorted)),
	}
	for i, row := range sorted {
		row.PageID = strings.TrimSpace(row.PageID)
		if row.PageID == "" {
			return nil, errors.StructureError("page without page id").
				WithContext("position", i).
				Build()
		}
		if _, dup := m.byID[row.PageID]; dup {
			return nil, errors.StructureError("duplicate page id").
				WithContext("page_id", row.PageID).
				Build()
		}

		p := Page{Row: row, Index: i}
		if i == 0 {
			p.Href, p.Nest = RootHref, 0
		} else {
			href, ok := ResolveHref(row.Section, row.Chapter, row.Page)
			if !ok {
				return nil, errors.StructureError("page has no section, chapter or page name").
					WithContext("page_id", row.PageID).
					Build()
			}
			p.Href, p.Nest = href, NestLevel(row.Section, row.Chapter)
		}
		m.pages[i] = p
		m.byID[row.PageID] = i
	}

	m.sections = findSectionLinks(m.pages)
	m.crossrefs = findCrossrefs(m.pages)
	m.sitemap = buildSitemap(m.pages)
	return m, nil
}

func compareOrder(a, b Row) int {
	return cmp.Or(
		cmp.Compare(a.SectionOrder, b.SectionOrder),
		cmp.Compare(a.ChapterOrder, b.ChapterOrder),
		cmp.Compare(a.GroupOrder, b.GroupOrder),
		cmp.Compare(a.PageOrder, b.PageOrder),
	)
}

// rootIndex returns the position of the row that sorts first; ties go to
// the earlier row, as with the stable sort in NewModel.
func rootIndex(rows []Row) int {
	root := 0
	for i := 1; i < len(rows); i++ {
		if compareOrder(rows[i], rows[root]) < 0 {
			root = i
		}
	}
	return root
}

// findSectionLinks keeps the first page of each (section order, name) pair.
// Pages without a section name get no navigation entry.
func findSectionLinks(pages []Page) []SectionLink {
	type key struct {
		order int
		name  string
	}
	var out []SectionLink
	seen := map[key]bool{}
	for _, p := range pages {
		k := key{p.SectionOrder, strings.TrimSpace(p.Section)}
		if k.name == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, SectionLink{Name: p.Section, Href: p.Href})
	}
	return out
}

// findCrossrefs keeps the first page for each code; duplicates are reported by Validate.
func findCrossrefs(pages []Page) []Crossref {
	var out []Crossref
	seen := map[string]bool{}
	for _, p := range pages {
		code := strings.TrimSpace(p.Code)
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		out = append(out, Crossref{Code: code, Href: p.Href})
	}
	return out
}

// Len returns the number of pages.
func (m *Model) Len() int { return len(m.pages) }

// Pages returns all pages in sort order.
func (m *Model) Pages() []Page { return slices.Clone(m.pages) }

// Has reports whether id is a known page id.
func (m *Model) Has(id string) bool {
	_, ok := m.byID[id]
	return ok
}

// Lookup returns the page with the given id.
func (m *Model) Lookup(id string) (Page, error) {
	i, ok := m.byID[id]
	if !ok {
		return Page{}, errors.NotFoundError("unknown page id").
			WithContext("page_id", id).
			Build()
	}
	return m.pages[i], nil
}

// At returns the page at position i in sort order.
func (m *Model) At(i int) (Page, bool) {
	if i < 0 || i >= len(m.pages) {
		return Page{}, false
	}
	return m.pages[i], true
}

// Breadcrumbs returns the present section, chapter, group and page names.
// When they are all the same text only one is returned.
func (m *Model) Breadcrumbs(id string) ([]string, error) {
	p, err := m.Lookup(id)
	if err != nil {
		return nil, err
	}
	var items []string
	for _, s := range []string{p.Section, p.Chapter, p.Group, p.Page} {
		if present(s) {
			items = append(items, s)
		}
	}
	if len(items) > 1 && allEqual(items) {
		items = items[:1]
	}
	return items, nil
}

func allEqual(items []string) bool {
	for _, s := range items[1:] {
		if s != items[0] {
			return false
		}
	}
	return true
}

// Adjacent returns the previous and next page, wrapping around at both ends.
func (m *Model) Adjacent(id string) (Adjacent, error) {
	p, err := m.Lookup(id)
	if err != nil {
		return Adjacent{}, err
	}
	n := len(m.pages)
	prev := m.pages[(p.Index-1+n)%n]
	next := m.pages[(p.Index+1)%n]
	return Adjacent{
		Prev: PageLink{Name: prev.Page, Href: prev.Href},
		Next: PageLink{Name: next.Page, Href: next.Href},
	}, nil
}

// SectionsWithHrefs returns each distinct section with the href of its first page.
func (m *Model) SectionsWithHrefs() []SectionLink { return slices.Clone(m.sections) }

// Crossrefs returns every (code, href) pair, one per code.
func (m *Model) Crossrefs() []Crossref { return slices.Clone(m.crossrefs) }

// Sitemap returns the nested section, chapter, group, page grouping.
func (m *Model) Sitemap() Sitemap { return m.sitemap }
