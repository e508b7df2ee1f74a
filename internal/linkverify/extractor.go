// Package linkverify checks that the links in a generated site resolve to
// files in the output directory.
package linkverify

import (
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// Link is one reference found in a page.
type Link struct {
	URL        string // as written in the attribute
	Text       string // link text, alt text or rel
	Tag        string // a, img, link, script, iframe ...
	Attribute  string // href or src
	IsInternal bool   // relative to the site
}

// linkAttrs names the attribute carrying the reference for each tag.
var linkAttrs = map[string]string{
	"a":      "href",
	"link":   "href",
	"img":    "src",
	"script": "src",
	"iframe": "src",
	"video":  "src",
	"audio":  "src",
	"source": "src",
}

// ExtractLinks reads the links of one HTML file.
func ExtractLinks(htmlPath string) ([]Link, error) {
	f, err := os.Open(filepath.Clean(htmlPath))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "open HTML file").
			WithContext("html_path", htmlPath).
			Build()
	}
	defer func() { _ = f.Close() }()
	return ExtractLinksFromReader(f)
}

// ExtractLinksFromReader reads the links of an HTML document in document order.
func ExtractLinksFromReader(r io.Reader) ([]Link, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "parse HTML").Build()
	}

	var links []Link
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if link, ok := elementLink(n); ok {
				links = append(links, link)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links, nil
}

func elementLink(n *html.Node) (Link, bool) {
	attr, ok := linkAttrs[n.Data]
	if !ok {
		return Link{}, false
	}
	ref := getAttr(n, attr)
	if ref == "" {
		return Link{}, false
	}
	link := Link{URL: ref, Tag: n.Data, Attribute: attr, IsInternal: isInternalLink(ref)}
	switch n.Data {
	case "a":
		link.Text = extractText(n)
	case "img":
		link.Text = getAttr(n, "alt")
	case "link":
		link.Text = getAttr(n, "rel")
	}
	return link, true
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func extractText(n *html.Node) string {
	if n.Type == html.TextNode {
		return strings.TrimSpace(n.Data)
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(extractText(c))
	}
	return strings.TrimSpace(b.String())
}

// isInternalLink reports whether ref points into the site: no scheme and no host.
func isInternalLink(ref string) bool {
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == ""
}

// ShouldVerifyLink reports whether a link refers to a file that can be checked.
func ShouldVerifyLink(link Link) bool {
	if !link.IsInternal || link.URL == "" || strings.HasPrefix(link.URL, "#") {
		return false
	}
	for _, prefix := range []string{"mailto:", "tel:", "javascript:", "data:"} {
		if strings.HasPrefix(link.URL, prefix) {
			return false
		}
	}
	return true
}
