// Package prompt renders the instruction templates the stage executors
// send as system prompts. Stage inputs travel separately, as a JSON
// payload in the user message, so instructions and data never mix.
package prompt

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/kolobosdimitrios/GANDALF/internal/types"
)

// Template is a named, parsed instruction template. Rendering with a
// missing key is an error rather than a silent "<no value>".
type Template struct {
	name string
	tmpl *template.Template
}

// New parses a template. Parse failures are programmer errors on builtin
// templates but real failures on user-supplied ones, so they are
// returned, not panicked.
func New(name, text string) (*Template, error) {
	t, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, types.WrapError(types.PIPELINE_MISSING_TEMPLATE,
			fmt.Sprintf("template %q does not parse", name), err)
	}
	return &Template{name: name, tmpl: t}, nil
}

// MustNew is New for builtin templates known to parse.
func MustNew(name, text string) *Template {
	t, err := New(name, text)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the template's name.
func (t *Template) Name() string { return t.name }

// Render executes the template over data.
func (t *Template) Render(data any) (string, error) {
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, data); err != nil {
		return "", types.WrapError(types.PIPELINE_MISSING_TEMPLATE,
			fmt.Sprintf("template %q failed to render", t.name), err)
	}
	return buf.String(), nil
}
