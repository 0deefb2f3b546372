package models

import (
	"strings"

	"github.com/toyz/dispatch/internal/errors"
)

// TypeKind is the shape of a scanned type declaration
type TypeKind int

const (
	KindOther TypeKind = iota
	KindStruct
	KindInterface
)

// String returns the string representation of the type kind
func (k TypeKind) String() string {
	switch k {
	case KindStruct:
		return "struct"
	case KindInterface:
		return "interface"
	default:
		return "other"
	}
}

// Role is the container role a type is tagged with
type Role int

const (
	RoleNone Role = iota
	RoleController
	RoleService
)

// String returns the string representation of the role
func (r Role) String() string {
	switch r {
	case RoleController:
		return "controller"
	case RoleService:
		return "service"
	default:
		return "none"
	}
}

// ComponentDescriptor represents one scanned type unit and its resolved annotations
type ComponentDescriptor struct {
	Name        string                // fully-qualified name: namespace + "." + TypeName
	Namespace   string                // dotted namespace the type was found in
	PackageName string                // Go package clause of the declaring file
	TypeName    string                // bare type name
	Kind        TypeKind              // struct, interface or other
	Generic     bool                  // declared with type parameters
	Constraint  bool                  // interface usable only as a type constraint
	Role        Role                  // controller, service or none
	BeanName    string                // explicit -Name of a service, trimmed
	BasePath    string                // type-level route path
	HasBasePath bool                  // whether a type-level route was declared
	Routes      []RouteMethod         // annotated handler methods
	Injections  []InjectionPoint      // annotated fields declared directly on the type
	Location    errors.SourceLocation // declaration site
}

// RouteMethod represents a method carrying a route annotation
type RouteMethod struct {
	Method   string                // method name
	Path     string                // raw path from the annotation
	Location errors.SourceLocation // annotation site
}

// InjectionPoint represents a field carrying an inject annotation
type InjectionPoint struct {
	Field    string                // field name
	Name     string                // explicit target bean name, empty for by-type
	TypeExpr string                // declared field type as written in source
	Exported bool                  // whether the field can be assigned directly
	Location errors.SourceLocation // annotation site
}

// IsController reports whether the descriptor is tagged as a controller
func (d *ComponentDescriptor) IsController() bool {
	return d.Role == RoleController
}

// IsService reports whether the descriptor is tagged as a service
func (d *ComponentDescriptor) IsService() bool {
	return d.Role == RoleService
}

// IsAnnotated reports whether the type takes part in the container
func (d *ComponentDescriptor) IsAnnotated() bool {
	return d.Role != RoleNone
}

// Instantiable reports whether the type can be named as a type argument
// outside a constraint, which generated registration code requires.
func (d *ComponentDescriptor) Instantiable() bool {
	return !d.Generic && !d.Constraint
}

// Route returns the route bound to a method, if any
func (d *ComponentDescriptor) Route(method string) (RouteMethod, bool) {
	for _, r := range d.Routes {
		if r.Method == method {
			return r, true
		}
	}
	return RouteMethod{}, false
}

// QualifiedName joins a namespace and a type name
func QualifiedName(namespace, typeName string) string {
	namespace = strings.Trim(strings.TrimSpace(namespace), ".")
	typeName = strings.TrimSpace(typeName)
	if namespace == "" {
		return typeName
	}
	return namespace + "." + typeName
}
