package render

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/content"
	"git.home.luguber.info/inful/sitebuilder/internal/markdown"
	"git.home.luguber.info/inful/sitebuilder/internal/templates"
)

func newTestBuiltins(t *testing.T) *Builtins {
	t.Helper()
	set, err := templates.Load("")
	require.NoError(t, err)
	b := NewBuiltins(set, markdown.MustNew())
	n := 0
	b.newID = func() string {
		n++
		return fmt.Sprintf("id%d", n)
	}
	return b
}

func newTestRegistry(t *testing.T, caps ...Capability) *Registry {
	t.Helper()
	reg := NewRegistry()
	for _, c := range caps {
		require.NoError(t, reg.Register(c))
	}
	return reg
}

func echo(name string, arity Arity) Capability {
	return Capability{Name: name, Arity: arity, Render: func(text, arg string) (string, error) {
		return fmt.Sprintf("%s(%s|%s)", name, text, arg), nil
	}}
}

func TestRegistry_Register(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(echo("a", TextOnly)))

	assert.Error(t, reg.Register(echo("a", TextOnly)), "duplicate")
	assert.Error(t, reg.Register(echo(SkipDirective, TextOnly)), "reserved")
	assert.Error(t, reg.Register(Capability{Name: "b", Arity: TextOnly}), "no func")
	assert.Error(t, reg.Register(echo("c", Arity(7))), "bad arity")
	assert.Error(t, reg.Register(echo("", TextOnly)), "no name")

	c, ok := reg.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, TextOnly, c.Arity)
	assert.Equal(t, []string{"a"}, reg.Names())
}

func TestDispatch_SkipAndUnknownPassThrough(t *testing.T) {
	// "skip" cannot be registered, so the pass-through holds whatever the registry contains.
	d := NewDispatcher(newTestRegistry(t, echo("markdown", TextOnly)), nil, nil)

	res := d.Dispatch(content.Section{Text: "**raw**", Directive: SkipDirective}, nil)
	assert.Equal(t, Rendered(SkipDirective, "**raw**"), res)

	res = d.Dispatch(content.Section{Text: "keep me", Directive: "nope", Arg: "x"}, nil)
	assert.Equal(t, StatusRendered, res.Status)
	assert.Equal(t, "keep me", res.Output())
}

func TestDispatch_Arity(t *testing.T) {
	d := NewDispatcher(newTestRegistry(t, echo("one", TextOnly), echo("two", TextAndArg)), nil, nil)

	assert.Equal(t, "one(t|)", d.Dispatch(content.Section{Text: "t", Directive: "one", Arg: "ignored"}, nil).Output())
	assert.Equal(t, "two(t|a)", d.Dispatch(content.Section{Text: "t", Directive: "two", Arg: "a"}, nil).Output())
}

func TestDispatch_SubstitutesPageVariables(t *testing.T) {
	d := NewDispatcher(newTestRegistry(t, echo("iframe", TextAndArg)), nil, nil)
	vars := map[string]string{"nest": "../../", "": "never"}

	got := d.Dispatch(content.Section{Text: "map.html", Directive: "iframe", Arg: "nest"}, vars)
	assert.Equal(t, "iframe(map.html|../../)", got.Output())

	got = d.Dispatch(content.Section{Text: "map.html", Directive: "iframe", Arg: "nested"}, vars)
	assert.Equal(t, "iframe(map.html|nested)", got.Output())

	got = d.Dispatch(content.Section{Text: "map.html", Directive: "iframe"}, vars)
	assert.Equal(t, "iframe(map.html|)", got.Output())
}

func TestDispatch_FailuresAreIsolated(t *testing.T) {
	boom := errors.New("boom")
	d := NewDispatcher(newTestRegistry(t,
		Capability{Name: "bad", Arity: TextOnly, Render: func(string, string) (string, error) { return "partial", boom }},
		Capability{Name: "panics", Arity: TextOnly, Render: func(string, string) (string, error) { panic("oops") }},
	), nil, nil)

	res := d.Dispatch(content.Section{Text: "x", Directive: "bad"}, nil)
	assert.Equal(t, StatusFailed, res.Status)
	assert.ErrorIs(t, res.Err, boom)
	assert.Empty(t, res.Output())

	res = d.Dispatch(content.Section{Text: "x", Directive: "panics"}, nil)
	assert.Equal(t, StatusFailed, res.Status)
	assert.Contains(t, res.Err.Error(), "oops")
}

func TestRenderSections(t *testing.T) {
	reg := newTestRegistry(t,
		echo("card", TextOnly),
		echo("table", TextAndArg),
		Capability{Name: "flextable", Arity: TextOnly, Render: func(string, string) (string, error) { return "", errors.New("bad csv") }},
	)
	d := NewDispatcher(reg, []string{"card", "table", "flextable"}, nil)

	out := d.RenderSections(context.Background(), []content.Section{
		{Text: "a", Directive: "card"},
		{Text: "b", Directive: "flextable"},
		{Text: "c", Directive: "table", Arg: "wide"},
		{Text: "d", Directive: "card"},
		{Text: "e", Directive: "markdown"},
	}, nil)

	assert.Equal(t, "card(a|)\n\ntable(c|wide)\ncard(d|)\ne", out.HTML)
	assert.Equal(t, []string{"styles_card.css", "styles_table.css"}, out.Stylesheets)
	require.Len(t, out.Failures, 1)
	assert.Equal(t, "flextable", out.Failures[0].Directive)
}

func TestBuiltins_Markdown(t *testing.T) {
	b := newTestBuiltins(t)
	out, err := b.markdown("line one\nline two", "")
	require.NoError(t, err)
	assert.Contains(t, out, "line one<br />")
}

func TestBuiltins_Container(t *testing.T) {
	b := newTestBuiltins(t)

	out, err := b.container("*single line*", "note")
	require.NoError(t, err)
	assert.Contains(t, out, `<div class="note">`)
	assert.Contains(t, out, "*single line*", "single-line text is not converted")

	out, err = b.container("*first*\nsecond", "note")
	require.NoError(t, err)
	assert.Contains(t, out, "<em>first</em><br />")
}

func TestBuiltins_Collapsible(t *testing.T) {
	b := newTestBuiltins(t)

	out, err := b.collapsible("ignored intro\n### First:open\nBody **one**\n### Second\nBody two\n", "")
	require.NoError(t, err)

	assert.Equal(t, 2, strings.Count(out, `<div class="collapsible">`))
	assert.Contains(t, out, `id="collapsible-id1" class="collapsible__toggle" type="checkbox" checked>`)
	assert.Contains(t, out, `id="collapsible-id2" class="collapsible__toggle" type="checkbox">`)
	assert.Contains(t, out, `class="collapsible__label">First</label>`)
	assert.Contains(t, out, `class="collapsible__label">Second</label>`)
	assert.Contains(t, out, "<strong>one</strong>")
	assert.NotContains(t, out, "ignored intro")

	_, err = b.collapsible("### label without body", "")
	assert.Error(t, err)
}

func TestBuiltins_CollapsibleDefaultIDs(t *testing.T) {
	set, err := templates.Load("")
	require.NoError(t, err)
	b := NewBuiltins(set, markdown.MustNew())
	assert.Len(t, b.newID(), panelIDLength)
	assert.NotEqual(t, b.newID(), b.newID())
}

func TestBuiltins_Iframe(t *testing.T) {
	b := newTestBuiltins(t)
	out, err := b.iframe("chart.html\n", "../")
	require.NoError(t, err)
	assert.Contains(t, out, `src="../iframes/chart.html"`)
}

func TestBuiltins_Card(t *testing.T) {
	b := newTestBuiltins(t)
	out, err := b.card("Name, John\nRole, '**Lead**, ops'\nName, Jane\n", "")
	require.NoError(t, err)

	assert.Equal(t, 2, strings.Count(out, `<div class="card__row">`))
	assert.Contains(t, out, `<div class="card__value">Jane</div>`)
	assert.NotContains(t, out, "John")
	assert.Contains(t, out, `<div class="card__value"><p><strong>Lead</strong>, ops</p></div>`)
	assert.Less(t, strings.Index(out, "Name"), strings.Index(out, "Role"))
}

func TestBuiltins_TableCellHeuristic(t *testing.T) {
	b := newTestBuiltins(t)
	out, err := b.table("plain, marked, broken\nhello, **bold**, 'a\nb'\n", "wide")
	require.NoError(t, err)

	assert.Contains(t, out, `<div class="table__container">`)
	assert.Contains(t, out, `<table class="table wide">`)
	assert.Contains(t, out, "<th>plain</th>")
	assert.Contains(t, out, "<td>hello</td>")
	assert.Contains(t, out, "<td><p><strong>bold</strong></p></td>")
	assert.Contains(t, out, "<td><p>a<br />b</p></td>")
}

func TestBuiltins_Flextable(t *testing.T) {
	b := newTestBuiltins(t)
	out, err := b.flextable("h1,h2\nx,\ny,z\n", "")
	require.NoError(t, err)

	want := strings.Join([]string{
		`<div class="flextable" style="grid-template-columns: repeat(2, auto)">`,
		`<div class="flextable__header">h1</div>`,
		`<div class="flextable__header">h2</div>`,
		`<div class="flextable__item">`,
		"\t" + `<div class="flextable__category">h1</div>`,
		"\t<div>x</div>",
		`</div>`,
		`<div class="flextable__item remove_padding">`,
		"\t<div></div>",
		`</div>`,
		`<div class="flextable__item">`,
		"\t" + `<div class="flextable__category">h1</div>`,
		"\t<div>y</div>",
		`</div>`,
		`<div class="flextable__item flextable__item__last-row">`,
		"\t" + `<div class="flextable__category">h2</div>`,
		"\t<div>z</div>",
		`</div>`,
		``,
		`</div>`,
		``,
	}, "\n")
	assert.Equal(t, want, out)
}

func TestNewDefaultRegistry(t *testing.T) {
	set, err := templates.Load("")
	require.NoError(t, err)

	reg, err := NewDefaultRegistry(set, markdown.MustNew())
	require.NoError(t, err)
	assert.Equal(t, []string{"card", "collapsible", "container", "flextable", "iframe", "markdown", "table"}, reg.Names())
}
