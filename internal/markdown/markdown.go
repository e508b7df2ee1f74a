// Package markdown converts section text to HTML with goldmark.
//
// Line breaks inside paragraphs are kept as <br /> and raw HTML passes
// through, matching how authors write content files.
package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// triggerChars mark a short string as containing markup worth converting.
const triggerChars = "*#`\n"

// Converter renders markdown. It is safe for concurrent use.
type Converter struct {
	md goldmark.Markdown
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"tables":        extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
	"typographer":   extension.Typographer,
}

// KnownExtensions lists the extension names New accepts.
func KnownExtensions() []string {
	names := make([]string, 0, len(extensionRegistry))
	for k := range extensionRegistry {
		names = append(names, k)
	}
	return names
}

// New builds a converter with the named goldmark extensions enabled.
// Unknown names are an error so typos in config surface early.
func New(extensions ...string) (*Converter, error) {
	var exts []goldmark.Extender
	seen := map[string]bool{}
	for _, name := range extensions {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" || seen[key] {
			continue
		}
		ext, ok := extensionRegistry[key]
		if !ok {
			return nil, errors.ConfigError("unknown markdown extension").
				WithContext("extension", name).
				Build()
		}
		seen[key] = true
		exts = append(exts, ext)
	}

	md := goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML(), html.WithUnsafe()),
	)
	return &Converter{md: md}, nil
}

// MustNew is New for extension lists known to be valid.
func MustNew(extensions ...string) *Converter {
	c, err := New(extensions...)
	if err != nil {
		panic(err)
	}
	return c
}

// Convert renders src to HTML.
func (c *Converter) Convert(src string) (string, error) {
	var buf bytes.Buffer
	if err := c.md.Convert([]byte(src), &buf); err != nil {
		return "", errors.WrapError(err, errors.CategoryRender, "markdown conversion").Build()
	}
	return buf.String(), nil
}

// HasMarkup reports whether s contains a character that triggers conversion.
func HasMarkup(s string) bool {
	return strings.ContainsAny(s, triggerChars)
}

// ConvertInline converts s only when HasMarkup says so, and strips the line
// breaks from the result so it fits in a table cell. Plain strings come back unchanged.
func (c *Converter) ConvertInline(s string) (string, error) {
	if !HasMarkup(s) {
		return s, nil
	}
	out, err := c.Convert(s)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(out, "\n", ""), nil
}
