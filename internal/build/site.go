package build

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/content"
	"git.home.luguber.info/inful/sitebuilder/internal/gitdates"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/markdown"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/observability"
	"git.home.luguber.info/inful/sitebuilder/internal/page"
	"git.home.luguber.info/inful/sitebuilder/internal/properties"
	"git.home.luguber.info/inful/sitebuilder/internal/render"
	"git.home.luguber.info/inful/sitebuilder/internal/structure"
	"git.home.luguber.info/inful/sitebuilder/internal/templates"
	"git.home.luguber.info/inful/sitebuilder/internal/util/sets"
)

// loadedSite is everything a build shares read-only between pages.
type loadedSite struct {
	props     *properties.Properties
	model     *structure.Model
	templates *templates.Set
	assembler *page.Assembler
	dates     content.DateSource
}

func loadSite(ctx context.Context, cfg *config.Config, increment, strict bool, rec metrics.Recorder) (*loadedSite, error) {
	props, err := properties.Load(cfg.PropertiesPath(), increment)
	if err != nil {
		return nil, err
	}

	rows, err := structure.ReadTable(cfg.StructurePath(), cfg.Structure.Sheet)
	if err != nil {
		return nil, err
	}
	report := structure.Validate(rows)
	for _, w := range report.Warnings {
		observability.WarnContext(ctx, "Structure table warning", slog.String("issue", w.String()))
	}
	if err := report.Err(strict); err != nil {
		return nil, err
	}
	model, err := structure.NewModel(rows)
	if err != nil {
		return nil, err
	}

	set, err := templates.Load(cfg.Paths.Templates)
	if err != nil {
		return nil, err
	}
	md, err := markdown.New(cfg.Markdown.Extensions...)
	if err != nil {
		return nil, err
	}
	site, err := page.NewSite(props, md, cfg.Build.DateFormat)
	if err != nil {
		return nil, err
	}
	reg, err := render.NewDefaultRegistry(set, md)
	if err != nil {
		return nil, err
	}

	dispatcher := render.NewDispatcher(reg, optionalStylesheets(set, cfg.Build.BaseStylesheets), rec)
	assembler := page.NewAssembler(model, site, set, dispatcher, page.Options{
		Prettify: cfg.Build.PrettifyEnabled(),
		Recorder: rec,
	})

	observability.InfoContext(ctx, "Site loaded",
		logfields.Count(model.Len()),
		logfields.Version(site.Version),
		slog.String("templates", cfg.Paths.Templates))

	return &loadedSite{
		props:     props,
		model:     model,
		templates: set,
		assembler: assembler,
		dates:     dateSource(ctx, cfg),
	}, nil
}

// optionalStylesheets are the stylesheets pulled in by directives: all of
// them except those concatenated into the base stylesheet.
func optionalStylesheets(set *templates.Set, base []string) []string {
	skip := sets.New(base...)
	var out []string
	for _, name := range set.StylesheetNames() {
		if !skip.Has(name) {
			out = append(out, name)
		}
	}
	return out
}

func dateSource(ctx context.Context, cfg *config.Config) content.DateSource {
	if cfg.Build.DateSource != config.DateSourceGit {
		return content.FileDates{}
	}
	src, err := gitdates.Open(cfg.Paths.Content, content.FileDates{})
	if err != nil {
		observability.WarnContext(ctx, "Git dates unavailable, using file dates", logfields.Error(err))
		return content.FileDates{}
	}
	return src
}
