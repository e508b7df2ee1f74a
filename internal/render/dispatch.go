package render

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/content"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/observability"
	"git.home.luguber.info/inful/sitebuilder/internal/templates"
	"git.home.luguber.info/inful/sitebuilder/internal/util/sets"
)

// maxLoggedText bounds how much of a failing section ends up in the log.
const maxLoggedText = 200

// Status tells whether a section rendered.
type Status int

const (
	StatusRendered Status = iota
	StatusFailed
)

// Result is the outcome of rendering one section.
type Result struct {
	Directive string
	Status    Status
	HTML      string
	Err       error
}

// Rendered builds a successful result.
func Rendered(directive, html string) Result {
	return Result{Directive: directive, Status: StatusRendered, HTML: html}
}

// Failed builds a failed result carrying the reason.
func Failed(directive string, err error) Result {
	return Result{Directive: directive, Status: StatusFailed, Err: err}
}

// Output is what the section contributes to the page; failed sections contribute nothing.
func (r Result) Output() string {
	if r.Status == StatusFailed {
		return ""
	}
	return r.HTML
}

// Sections is the combined result of rendering all sections of a page.
type Sections struct {
	HTML string
	// Stylesheets holds the stylesheet files the page needs, in first-use order.
	Stylesheets []string
	Failures    []Result
}

// Dispatcher renders sections through a Registry.
type Dispatcher struct {
	registry    *Registry
	stylesheets sets.Set[string]
	recorder    metrics.Recorder
}

// NewDispatcher creates a dispatcher. stylesheets names the optional
// stylesheets a directive can pull into a page (e.g. "card").
func NewDispatcher(reg *Registry, stylesheets []string, rec metrics.Recorder) *Dispatcher {
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Dispatcher{
		registry:    reg,
		stylesheets: sets.New(stylesheets...),
		recorder:    rec,
	}
}

// Dispatch renders a single section. An argument that names a page
// variable is replaced by that variable's value. The skip directive and
// unregistered directives return the text unchanged.
func (d *Dispatcher) Dispatch(sec content.Section, vars map[string]string) Result {
	if sec.Directive == SkipDirective {
		return Rendered(sec.Directive, sec.Text)
	}
	c, ok := d.registry.Lookup(sec.Directive)
	if !ok {
		return Rendered(sec.Directive, sec.Text)
	}

	arg := sec.Arg
	if v, found := vars[arg]; found && arg != "" {
		arg = v
	}
	if c.Arity == TextOnly {
		arg = ""
	}

	out, err := invoke(c, sec.Text, arg)
	if err != nil {
		return Failed(sec.Directive, err)
	}
	return Rendered(sec.Directive, out)
}

func invoke(c Capability, text, arg string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s panicked: %v", c.Name, r)
		}
	}()
	return c.Render(text, arg)
}

// RenderSections renders sections in order and joins their output with
// newlines. Failures are logged and leave a gap; they never abort the page.
func (d *Dispatcher) RenderSections(ctx context.Context, sections []content.Section, vars map[string]string) Sections {
	var (
		parts    = make([]string, 0, len(sections))
		used     sets.Ordered[string]
		failures []Result
	)
	for _, sec := range sections {
		res := d.Dispatch(sec, vars)
		parts = append(parts, res.Output())

		if res.Status == StatusFailed {
			failures = append(failures, res)
			d.recorder.IncSectionFailure(sec.Directive)
			observability.WarnContext(ctx, "Section render failed, skipping it",
				logfields.Directive(sec.Directive),
				logfields.Argument(sec.Arg),
				slog.String("text", truncate(sec.Text, maxLoggedText)),
				logfields.Error(res.Err))
			continue
		}
		d.recorder.IncSectionRendered(sec.Directive)
		if d.stylesheets.Has(sec.Directive) {
			used.Add(templates.StylesheetFile(sec.Directive))
		}
	}
	return Sections{
		HTML:        strings.Join(parts, "\n"),
		Stylesheets: used.Items(),
		Failures:    failures,
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
