package structure

import "strconv"

// Sitemap is the whole hierarchy grouped for navigation. Callers must treat it as read-only.
type Sitemap struct {
	Sections []SitemapSection
}

// SitemapSection groups the chapters of one section.
type SitemapSection struct {
	Name     string
	Href     string
	Chapters []SitemapChapter
}

// SitemapChapter groups the groups of one chapter.
type SitemapChapter struct {
	Name   string
	Groups []SitemapGroup
}

// SitemapGroup lists the pages of one group in sort order.
type SitemapGroup struct {
	Name  string
	Pages []PageLink
}

// Section returns the subtree for the named section.
func (s Sitemap) Section(name string) (SitemapSection, bool) {
	for _, sec := range s.Sections {
		if sec.Name == name {
			return sec, true
		}
	}
	return SitemapSection{}, false
}

// buildSitemap groups pages by label in first-seen order. Unnamed chapters
// and groups are labelled with their order number.
func buildSitemap(pages []Page) Sitemap {
	var sm Sitemap
	secIdx := map[string]int{}
	chIdx := map[[2]string]int{}
	grIdx := map[[3]string]int{}

	for _, p := range pages {
		chapter := labelOr(p.Chapter, p.ChapterOrder)
		group := labelOr(p.Group, p.GroupOrder)

		si, ok := secIdx[p.Section]
		if !ok {
			si = len(sm.Sections)
			secIdx[p.Section] = si
			sm.Sections = append(sm.Sections, SitemapSection{Name: p.Section, Href: p.Href})
		}
		sec := &sm.Sections[si]

		chKey := [2]string{p.Section, chapter}
		ci, ok := chIdx[chKey]
		if !ok {
			ci = len(sec.Chapters)
			chIdx[chKey] = ci
			sec.Chapters = append(sec.Chapters, SitemapChapter{Name: chapter})
		}
		ch := &sec.Chapters[ci]

		grKey := [3]string{p.Section, chapter, group}
		gi, ok := grIdx[grKey]
		if !ok {
			gi = len(ch.Groups)
			grIdx[grKey] = gi
			ch.Groups = append(ch.Groups, SitemapGroup{Name: group})
		}
		ch.Groups[gi].Pages = append(ch.Groups[gi].Pages, PageLink{Name: p.Page, Href: p.Href})
	}
	return sm
}

func labelOr(name string, order int) string {
	if present(name) {
		return name
	}
	return strconv.Itoa(order)
}
