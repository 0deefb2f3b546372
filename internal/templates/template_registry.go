// Package templates holds the text templates rendered by dispatchgen.
package templates

import (
	"bytes"
	"fmt"
	"sort"
	"text/template"
)

// Template names
const (
	ComponentsTemplate = "components"
)

// TemplateRegistry provides a centralized way to access all templates
type TemplateRegistry struct {
	templates map[string]string
}

// NewTemplateRegistry creates a new template registry with all templates
func NewTemplateRegistry() *TemplateRegistry {
	registry := &TemplateRegistry{
		templates: make(map[string]string),
	}

	registry.registerComponentTemplates()

	return registry
}

// Get retrieves a template by name
func (tr *TemplateRegistry) Get(name string) (string, bool) {
	template, exists := tr.templates[name]
	return template, exists
}

// MustGet retrieves a template by name, panics if not found
func (tr *TemplateRegistry) MustGet(name string) string {
	template, exists := tr.templates[name]
	if !exists {
		panic("template not found: " + name)
	}
	return template
}

// Names returns the registered template names, sorted
func (tr *TemplateRegistry) Names() []string {
	names := make([]string, 0, len(tr.templates))
	for name := range tr.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute renders the named template with data
func (tr *TemplateRegistry) Execute(name string, data any) (string, error) {
	text, exists := tr.Get(name)
	if !exists {
		return "", fmt.Errorf("template not found: %s", name)
	}

	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.String(), nil
}

// registerComponentTemplates registers the catalog registration template
func (tr *TemplateRegistry) registerComponentTemplates() {
	// One init function per package registering its namespace, capabilities
	// and component types with the default catalog.
	tr.templates[ComponentsTemplate] = `// Code generated by dispatchgen. DO NOT EDIT.
// This file was automatically generated and should not be modified manually.

package {{.PackageName}}

import "{{.RuntimeImport}}"

func init() {
	dispatch.RegisterPackage({{printf "%q" .Namespace}}, {{printf "%q" .ImportPath}})
{{- if .Capabilities}}
{{range .Capabilities}}
	dispatch.RegisterCapability[{{.TypeName}}]({{printf "%q" .Name}})
{{- end}}
{{- end}}
{{- if .Types}}
{{range .Types}}
	dispatch.Register[{{.TypeName}}]({{printf "%q" .Name}}){{if .Role}} // {{.Role}}{{end}}
{{- end}}
{{- end}}
}
`
}

// ComponentsData is the input of the components template
type ComponentsData struct {
	PackageName   string
	RuntimeImport string
	Namespace     string
	ImportPath    string
	Capabilities  []TypeRef
	Types         []TypeRef
}

// TypeRef names a Go type and the catalog name it is registered under
type TypeRef struct {
	TypeName string
	Name     string
	Role     string
}
