package page

import (
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/structure"
)

// ResolveCrossrefs replaces every "[code]" whose code is known with a link
// to that code's page, prefixed by nest. Unknown codes stay as written.
func ResolveCrossrefs(html, nest string, refs []structure.Crossref) string {
	if len(refs) == 0 || !strings.Contains(html, "[") {
		return html
	}
	pairs := make([]string, 0, 2*len(refs))
	for _, ref := range refs {
		pairs = append(pairs,
			"["+ref.Code+"]",
			`<a class="crossref" href="`+nest+ref.Href+`">`+ref.Code+`</a>`)
	}
	return strings.NewReplacer(pairs...).Replace(html)
}
