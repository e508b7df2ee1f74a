// Package page assembles finished HTML pages from parsed content, the site
// structure and the page templates.
package page

import (
	"context"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/content"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/htmlfmt"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/observability"
	"git.home.luguber.info/inful/sitebuilder/internal/render"
	"git.home.luguber.info/inful/sitebuilder/internal/structure"
	"git.home.luguber.info/inful/sitebuilder/internal/templates"
)

const (
	// SitemapHref is where the sitemap page is written.
	SitemapHref = "sitemap.html"

	sitemapTitle      = "Sitemap"
	sitemapStylesheet = "sitemap"
	breadcrumbSep     = " | "
	watermarkPrefix   = "Built with "
)

// Renderer executes named page templates.
type Renderer interface {
	RenderPage(name string, data any) (string, error)
}

// Data is what page templates see.
type Data struct {
	DocumentTitle  string
	Language       string
	Generator      string
	Version        string
	Created        string
	Modified       string
	FooterInfo     string
	FooterContact  string
	CurrentPageID  string
	CurrentPage    string
	CurrentChapter string
	CurrentSection string
	CurrentHref    string
	Breadcrumbs    string
	Nest           string
	Stylesheets    []string
	Sections       []structure.SectionLink
	Sitemap        []structure.SitemapSection
	Adjacent       *structure.Adjacent
	SetNavigation  bool
	Content        string
}

// Page is one assembled page ready to be written.
type Page struct {
	PageID      string
	Href        string
	HTML        string
	Stylesheets []string
	Failures    []render.Result
}

// Options tune an Assembler.
type Options struct {
	Prettify bool
	Recorder metrics.Recorder
	// Now stamps the sitemap page; defaults to time.Now.
	Now func() time.Time
}

// Assembler builds pages. It only reads shared state and is safe for
// concurrent use.
type Assembler struct {
	model     *structure.Model
	site      Site
	pages     Renderer
	sections  *render.Dispatcher
	crossrefs []structure.Crossref
	opts      Options
}

// NewAssembler creates an assembler for one build.
func NewAssembler(model *structure.Model, site Site, pages Renderer, sections *render.Dispatcher, opts Options) *Assembler {
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Assembler{
		model:     model,
		site:      site,
		pages:     pages,
		sections:  sections,
		crossrefs: model.Crossrefs(),
		opts:      opts,
	}
}

// Build renders the sections of pc, places them in the page template with
// the page's navigation, and finishes the markup. Section failures only
// leave gaps; template failures fail the page.
func (a *Assembler) Build(ctx context.Context, pc *content.Page) (*Page, error) {
	sp, err := a.model.Lookup(pc.PageID)
	if err != nil {
		return nil, err
	}
	ctx = observability.WithPage(ctx, sp.PageID, sp.Href)

	crumbs, err := a.model.Breadcrumbs(sp.PageID)
	if err != nil {
		return nil, err
	}
	adjacent, err := a.model.Adjacent(sp.PageID)
	if err != nil {
		return nil, err
	}

	data := a.baseData()
	data.Created = pc.Created.Format(a.site.DateFormat)
	data.Modified = pc.Modified.Format(a.site.DateFormat)
	data.CurrentPageID = sp.PageID
	data.CurrentPage = sp.Page
	data.CurrentChapter = sp.Chapter
	data.CurrentSection = sp.Section
	data.CurrentHref = sp.Href
	data.Breadcrumbs = strings.Join(crumbs, breadcrumbSep)
	data.Nest = structure.NestPrefix(sp.Nest)
	data.Adjacent = &adjacent
	data.SetNavigation = true
	if sec, ok := a.model.Sitemap().Section(sp.Section); ok {
		data.Sitemap = []structure.SitemapSection{sec}
	}

	rendered := a.sections.RenderSections(ctx, pc.Sections, variables(data))
	body := rendered.HTML
	if strings.TrimSpace(body) == "" {
		body = "<p>" + a.site.Placeholder + "</p>"
	}
	data.Content = ResolveCrossrefs(body, data.Nest, a.crossrefs)
	data.Stylesheets = rendered.Stylesheets

	html, err := a.finish(templates.PageTemplate, data)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryTemplate, "assemble page").
			WithContext("page_id", sp.PageID).
			WithContext("href", sp.Href).
			Fatal().
			Build()
	}
	a.opts.Recorder.IncPageRendered()
	return &Page{
		PageID:      sp.PageID,
		Href:        sp.Href,
		HTML:        html + htmlfmt.Comment(watermarkPrefix+a.site.Generator),
		Stylesheets: rendered.Stylesheets,
		Failures:    rendered.Failures,
	}, nil
}

// Sitemap renders the standalone overview of the whole site, dated at build time.
func (a *Assembler) Sitemap(_ context.Context) (*Page, error) {
	today := a.opts.Now().Format(a.site.DateFormat)
	stylesheets := []string{templates.StylesheetFile(sitemapStylesheet)}

	data := a.baseData()
	data.Created = today
	data.Modified = today
	data.CurrentPage = sitemapTitle
	data.Breadcrumbs = sitemapTitle
	data.Stylesheets = stylesheets
	data.Sitemap = a.model.Sitemap().Sections

	html, err := a.finish(templates.SitemapTemplate, data)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryTemplate, "assemble sitemap").Fatal().Build()
	}
	return &Page{Href: SitemapHref, HTML: html, Stylesheets: stylesheets}, nil
}

func (a *Assembler) baseData() Data {
	return Data{
		DocumentTitle: a.site.Title,
		Language:      a.site.Language,
		Generator:     a.site.Generator,
		Version:       a.site.Version,
		FooterInfo:    a.site.FooterInfo,
		FooterContact: a.site.FooterContact,
		Sections:      a.model.SectionsWithHrefs(),
	}
}

func (a *Assembler) finish(template string, data Data) (string, error) {
	html, err := a.pages.RenderPage(template, data)
	if err != nil {
		return "", err
	}
	if !a.opts.Prettify {
		return html, nil
	}
	return htmlfmt.Prettify(html)
}

// variables exposes the textual page data to section arguments under their
// snake_case names, so "|iframe:nest" receives the page's relative prefix.
func variables(d Data) map[string]string {
	return map[string]string{
		"cdate":           d.Created,
		"mdate":           d.Modified,
		"document_title":  d.DocumentTitle,
		"language":        d.Language,
		"version":         d.Version,
		"footer_contact":  d.FooterContact,
		"footer_info":     d.FooterInfo,
		"current_page_id": d.CurrentPageID,
		"current_page":    d.CurrentPage,
		"current_chapter": d.CurrentChapter,
		"current_section": d.CurrentSection,
		"breadcrumbs":     d.Breadcrumbs,
		"nest":            d.Nest,
	}
}
