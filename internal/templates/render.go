package templates

import (
	"bytes"
	"strings"
	"text/template"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

var funcs = template.FuncMap{
	"join":  strings.Join,
	"lower": strings.ToLower,
}

// RenderPage executes the page template called name.
func (s *Set) RenderPage(name string, data any) (string, error) {
	return execute(s.pages, "page", name, data)
}

// RenderSnippet executes the snippet called name.
func (s *Set) RenderSnippet(name string, data any) (string, error) {
	return execute(s.snippets, "snippet", name, data)
}

func execute(t *template.Template, kind, name string, data any) (string, error) {
	tpl := t.Lookup(name)
	if tpl == nil {
		return "", errors.NewError(errors.CategoryTemplate, kind+" template not found").
			WithContext("template", name).
			Build()
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", errors.WrapError(err, errors.CategoryTemplate, "render "+kind+" template").
			WithContext("template", name).
			Build()
	}
	return buf.String(), nil
}
