package content

import (
	"regexp"
	"strings"
)

// DefaultDirective renders a section as prose when it has no header line.
const DefaultDirective = "markdown"

// HeaderMarker starts a section header line: "|directive" or "|directive:arg".
const HeaderMarker = '|'

var delimiter = regexp.MustCompile(`_{5,}\r?\n`)

// Section is one delimited chunk of a page body.
type Section struct {
	Text      string
	Directive string
	// Arg is empty when the header carried no argument.
	Arg string
}

// ParseSections splits body on delimiter lines of five or more underscores
// and classifies each non-empty chunk. Order is preserved.
func ParseSections(body string) []Section {
	chunks := delimiter.Split(body, -1)
	sections := make([]Section, 0, len(chunks))
	for _, chunk := range chunks {
		if chunk == "" {
			continue
		}
		sections = append(sections, parseChunk(chunk))
	}
	return sections
}

func parseChunk(chunk string) Section {
	if chunk[0] != HeaderMarker {
		return Section{Text: chunk, Directive: DefaultDirective}
	}
	header, text, _ := strings.Cut(chunk, "\n")
	header = strings.TrimSuffix(header[1:], "\r")

	directive, arg, _ := strings.Cut(header, ":")
	return Section{
		Text:      text,
		Directive: strings.ToLower(strings.TrimSpace(directive)),
		Arg:       strings.TrimSpace(arg),
	}
}
