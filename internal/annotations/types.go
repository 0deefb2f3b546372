package annotations

import (
	"fmt"
	"strings"

	"github.com/toyz/dispatch/internal/errors"
)

// Prefix is the marker every annotation comment starts with (after "//").
const Prefix = "dispatch::"

// Kind represents the type of annotation
type Kind int

const (
	UnknownKind Kind = iota
	ControllerKind
	ServiceKind
	RouteKind
	InjectKind
)

// String returns the string representation of the annotation kind
func (k Kind) String() string {
	switch k {
	case ControllerKind:
		return "controller"
	case ServiceKind:
		return "service"
	case RouteKind:
		return "route"
	case InjectKind:
		return "inject"
	default:
		return "unknown"
	}
}

// ParseKind converts string to Kind
func ParseKind(s string) (Kind, error) {
	switch s {
	case "controller":
		return ControllerKind, nil
	case "service":
		return ServiceKind, nil
	case "route":
		return RouteKind, nil
	case "inject":
		return InjectKind, nil
	default:
		return UnknownKind, fmt.Errorf("unknown annotation type: %s", s)
	}
}

// Target is the kind of declaration an annotation is attached to.
type Target int

const (
	TypeTarget Target = 1 << iota
	MethodTarget
	FieldTarget
)

// String returns the string representation of the target
func (t Target) String() string {
	var parts []string
	if t&TypeTarget != 0 {
		parts = append(parts, "type")
	}
	if t&MethodTarget != 0 {
		parts = append(parts, "method")
	}
	if t&FieldTarget != 0 {
		parts = append(parts, "field")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// SourceLocation represents the location of an annotation in source code
type SourceLocation = errors.SourceLocation

// ParsedAnnotation represents a fully parsed annotation
type ParsedAnnotation struct {
	Kind       Kind              // Annotation kind
	Positional []string          // Positional arguments in order
	Params     map[string]string // Named -Key=value parameters
	Flags      []string          // Bare -Flag switches
	Location   SourceLocation    // Source location
	Raw        string            // Original annotation text
}

// GetString returns a named parameter value with optional default
func (p *ParsedAnnotation) GetString(name string, defaultValue ...string) string {
	if value, exists := p.Params[name]; exists {
		return value
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

// HasParameter checks if a named parameter exists
func (p *ParsedAnnotation) HasParameter(name string) bool {
	_, exists := p.Params[name]
	return exists
}

// HasFlag reports whether the bare flag was given
func (p *ParsedAnnotation) HasFlag(name string) bool {
	for _, f := range p.Flags {
		if f == name {
			return true
		}
	}
	return false
}

// Path returns the route path of a route annotation.
func (p *ParsedAnnotation) Path() string {
	if len(p.Positional) == 0 {
		return ""
	}
	return p.Positional[0]
}

// Name returns the trimmed -Name parameter.
func (p *ParsedAnnotation) Name() string {
	return strings.TrimSpace(p.GetString(ParamName))
}
