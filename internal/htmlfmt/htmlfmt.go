// Package htmlfmt normalizes rendered pages into a stable, indented layout.
//
// Every element starts on its own line, indented one space per nesting level.
// Text is trimmed and whitespace-only text is dropped. Preformatted content
// (pre, textarea, script, style) is emitted untouched.
package htmlfmt

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

const indentUnit = " "

var rawElements = map[string]bool{
	"pre":      true,
	"textarea": true,
	"script":   true,
	"style":    true,
}

// voidElements never carry an end tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", `"`, "&quot;")
)

// Prettify parses src as a complete HTML document and re-serializes it.
func Prettify(src string) (string, error) {
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryRender, "parse html").Build()
	}
	var buf bytes.Buffer
	p := printer{w: &buf}
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		p.node(c, 0)
	}
	if p.err != nil {
		return "", errors.WrapError(p.err, errors.CategoryRender, "serialize html").Build()
	}
	return buf.String(), nil
}

// Comment formats text as a standalone HTML comment line.
func Comment(text string) string {
	text = strings.ReplaceAll(text, "--", "- -")
	return "<!-- " + text + " -->\n"
}

type printer struct {
	w   *bytes.Buffer
	err error
}

func (p *printer) line(depth int, s string) {
	p.w.WriteString(strings.Repeat(indentUnit, depth))
	p.w.WriteString(s)
	p.w.WriteByte('\n')
}

func (p *printer) node(n *html.Node, depth int) {
	switch n.Type {
	case html.DoctypeNode:
		p.line(depth, "<!DOCTYPE "+n.Data+">")
	case html.CommentNode:
		p.line(depth, "<!--"+n.Data+"-->")
	case html.TextNode:
		text := strings.TrimSpace(n.Data)
		if text == "" {
			return
		}
		p.line(depth, textEscaper.Replace(text))
	case html.ElementNode:
		p.element(n, depth)
	}
}

func (p *printer) element(n *html.Node, depth int) {
	if rawElements[n.Data] {
		var buf bytes.Buffer
		if err := html.Render(&buf, n); err != nil && p.err == nil {
			p.err = err
		}
		p.line(depth, buf.String())
		return
	}
	p.line(depth, startTag(n))
	if voidElements[n.Data] {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.node(c, depth+1)
	}
	p.line(depth, "</"+n.Data+">")
}

func startTag(n *html.Node) string {
	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(n.Data)
	for _, a := range n.Attr {
		b.WriteByte(' ')
		if a.Namespace != "" {
			b.WriteString(a.Namespace)
			b.WriteByte(':')
		}
		b.WriteString(a.Key)
		b.WriteString(`="`)
		b.WriteString(attrEscaper.Replace(a.Val))
		b.WriteByte('"')
	}
	b.WriteByte('>')
	return b.String()
}
