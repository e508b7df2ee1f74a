package render

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/sitebuilder/internal/markdown"
)

// Built-in directive names.
const (
	DirectiveMarkdown    = "markdown"
	DirectiveContainer   = "container"
	DirectiveCollapsible = "collapsible"
	DirectiveIframe      = "iframe"
	DirectiveCard        = "card"
	DirectiveTable       = "table"
	DirectiveFlextable   = "flextable"

	panelMarker         = "###"
	tableContainerClass = "table__container"
	panelIDLength       = 8
)

// Snippets renders named section snippets.
type Snippets interface {
	RenderSnippet(name string, data any) (string, error)
	SnippetNames() []string
}

// ContainerData feeds the container snippet.
type ContainerData struct {
	Class   string
	Content string
}

// CollapsibleData feeds the collapsible snippet, once per panel.
type CollapsibleData struct {
	Code    string
	Checked bool
	Label   string
	Content string
}

// IframeData feeds the iframe snippet.
type IframeData struct {
	Nest string
	Code string
}

// CardEntry is one key/value line of a card.
type CardEntry struct {
	Key   string
	Value string
}

// CardData feeds the card snippet.
type CardData struct {
	Entries []CardEntry
}

// SnippetData feeds snippets that have no built-in capability.
type SnippetData struct {
	Text    string
	Arg     string
	Content string
}

// Builtins implements the built-in capabilities.
type Builtins struct {
	snippets Snippets
	md       *markdown.Converter
	newID    func() string
}

// NewBuiltins creates the built-in capabilities on top of snippets and md.
func NewBuiltins(snippets Snippets, md *markdown.Converter) *Builtins {
	return &Builtins{
		snippets: snippets,
		md:       md,
		newID:    func() string { return uuid.NewString()[:panelIDLength] },
	}
}

// Capabilities lists the built-in capabilities.
func (b *Builtins) Capabilities() []Capability {
	return []Capability{
		{Name: DirectiveMarkdown, Arity: TextOnly, Render: b.markdown},
		{Name: DirectiveContainer, Arity: TextAndArg, Render: b.container},
		{Name: DirectiveCollapsible, Arity: TextOnly, Render: b.collapsible},
		{Name: DirectiveIframe, Arity: TextAndArg, Render: b.iframe},
		{Name: DirectiveCard, Arity: TextOnly, Render: b.card},
		{Name: DirectiveTable, Arity: TextAndArg, Render: b.table},
		{Name: DirectiveFlextable, Arity: TextOnly, Render: b.flextable},
	}
}

// NewDefaultRegistry registers the built-in capabilities plus one generic
// capability for every snippet that has no built-in counterpart.
func NewDefaultRegistry(snippets Snippets, md *markdown.Converter) (*Registry, error) {
	reg := NewRegistry()
	for _, c := range NewBuiltins(snippets, md).Capabilities() {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	for _, name := range snippets.SnippetNames() {
		if _, exists := reg.Lookup(name); exists || name == SkipDirective {
			continue
		}
		if err := reg.Register(snippetCapability(name, snippets, md)); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func snippetCapability(name string, snippets Snippets, md *markdown.Converter) Capability {
	return Capability{
		Name:  name,
		Arity: TextAndArg,
		Render: func(text, arg string) (string, error) {
			html, err := md.Convert(text)
			if err != nil {
				return "", err
			}
			return snippets.RenderSnippet(name, SnippetData{Text: text, Arg: arg, Content: html})
		},
	}
}

func (b *Builtins) markdown(text, _ string) (string, error) {
	return b.md.Convert(text)
}

func (b *Builtins) container(text, class string) (string, error) {
	return b.wrap(text, class, true)
}

// wrap places text in the container snippet, converting multi-line text
// through markdown when process is set.
func (b *Builtins) wrap(text, class string, process bool) (string, error) {
	if process && strings.Contains(text, "\n") {
		html, err := b.md.Convert(text)
		if err != nil {
			return "", err
		}
		text = html
	}
	return b.snippets.RenderSnippet(DirectiveContainer, ContainerData{Class: class, Content: text})
}

// collapsible renders every "###" panel. The panel's first line is its
// label; "label:open" (any non-empty suffix) starts the panel expanded.
func (b *Builtins) collapsible(text, _ string) (string, error) {
	panels := strings.Split(text, panelMarker)[1:]
	out := make([]string, 0, len(panels))
	for _, panel := range panels {
		head, body, ok := strings.Cut(panel, "\n")
		if !ok {
			return "", fmt.Errorf("collapsible panel %q has no body", strings.TrimSpace(head))
		}
		label, flag, _ := strings.Cut(head, ":")
		html, err := b.md.Convert(body)
		if err != nil {
			return "", err
		}
		rendered, err := b.snippets.RenderSnippet(DirectiveCollapsible, CollapsibleData{
			Code:    b.newID(),
			Checked: strings.TrimSpace(flag) != "",
			Label:   strings.TrimSpace(label),
			Content: html,
		})
		if err != nil {
			return "", err
		}
		out = append(out, rendered)
	}
	return strings.Join(out, "\n"), nil
}

func (b *Builtins) iframe(text, nest string) (string, error) {
	return b.snippets.RenderSnippet(DirectiveIframe, IframeData{Nest: nest, Code: strings.TrimSpace(text)})
}

// card renders two-column data as ordered key/value entries. A repeated
// key keeps its first position and takes the last value.
func (b *Builtins) card(text, _ string) (string, error) {
	f, err := b.readFrame(text, false, "key", "value")
	if err != nil {
		return "", err
	}
	var data CardData
	index := map[string]int{}
	for _, row := range f.rows {
		if i, seen := index[row[0]]; seen {
			data.Entries[i].Value = row[1]
			continue
		}
		index[row[0]] = len(data.Entries)
		data.Entries = append(data.Entries, CardEntry{Key: row[0], Value: row[1]})
	}
	return b.snippets.RenderSnippet(DirectiveCard, data)
}

func (b *Builtins) table(text, class string) (string, error) {
	f, err := b.readFrame(text, true)
	if err != nil {
		return "", err
	}
	return b.wrap(tableHTML(f, class), tableContainerClass, false)
}

func (b *Builtins) flextable(text, _ string) (string, error) {
	f, err := b.readFrame(text, true)
	if err != nil {
		return "", err
	}
	return flextableHTML(f), nil
}

// readFrame parses delimited text and converts cells that contain markup.
func (b *Builtins) readFrame(text string, withHeader bool, names ...string) (*frame, error) {
	records, err := parseDelimited(text)
	if err != nil {
		return nil, err
	}
	f, err := newFrame(records, withHeader, names...)
	if err != nil {
		return nil, err
	}
	if err := f.mapCells(b.md.ConvertInline); err != nil {
		return nil, err
	}
	return f, nil
}
