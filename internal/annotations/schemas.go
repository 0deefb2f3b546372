package annotations

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ParamName is the named parameter carrying an explicit bean name.
const ParamName = "Name"

// ParameterSpec defines a named parameter accepted by an annotation
type ParameterSpec struct {
	Required    bool
	Description string
	Validator   func(value string) error
}

// Schema defines the accepted shape of one annotation kind
type Schema struct {
	Kind        Kind
	Description string
	Targets     Target
	MinArgs     int // required positional arguments
	MaxArgs     int // accepted positional arguments
	Parameters  map[string]ParameterSpec
	Examples    []string
}

// ControllerSchema defines the schema for //dispatch::controller annotations
var ControllerSchema = Schema{
	Kind:        ControllerKind,
	Description: "Marks a struct as a dispatchable controller",
	Targets:     TypeTarget,
	Examples:    []string{"//dispatch::controller"},
}

// ServiceSchema defines the schema for //dispatch::service annotations
var ServiceSchema = Schema{
	Kind:        ServiceKind,
	Description: "Marks a struct as an injectable service",
	Targets:     TypeTarget,
	Parameters: map[string]ParameterSpec{
		ParamName: {
			Description: "Explicit bean name; defaults to every implemented capability",
			Validator:   nonBlank,
		},
	},
	Examples: []string{
		"//dispatch::service",
		"//dispatch::service -Name=greeter",
	},
}

// RouteSchema defines the schema for //dispatch::route annotations
var RouteSchema = Schema{
	Kind:        RouteKind,
	Description: "Contributes a path segment on a controller or binds a handler method",
	Targets:     TypeTarget | MethodTarget,
	MinArgs:     1,
	MaxArgs:     1,
	Examples: []string{
		"//dispatch::route /api",
		"//dispatch::route /hello",
	},
}

// InjectSchema defines the schema for //dispatch::inject annotations
var InjectSchema = Schema{
	Kind:        InjectKind,
	Description: "Marks a field to be wired from the container",
	Targets:     FieldTarget,
	Parameters: map[string]ParameterSpec{
		ParamName: {
			Description: "Explicit bean name; defaults to the field's declared type",
			Validator:   nonBlank,
		},
	},
	Examples: []string{
		"//dispatch::inject",
		"//dispatch::inject -Name=clock",
	},
}

func nonBlank(v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("must not be blank")
	}
	return nil
}

// Registry holds the schema for each annotation kind
type Registry struct {
	mu      sync.RWMutex
	schemas map[Kind]Schema
}

// NewRegistry creates an empty schema registry
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[Kind]Schema)}
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the registry preloaded with the built-in schemas
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
		for _, s := range []Schema{ControllerSchema, ServiceSchema, RouteSchema, InjectSchema} {
			if err := defaultRegistry.Register(s); err != nil {
				panic(err)
			}
		}
	})
	return defaultRegistry
}

// Register adds a schema to the registry
func (r *Registry) Register(schema Schema) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if schema.Kind == UnknownKind {
		return fmt.Errorf("schema has no annotation kind")
	}
	if _, exists := r.schemas[schema.Kind]; exists {
		return fmt.Errorf("annotation type %s is already registered", schema.Kind)
	}
	if schema.MaxArgs < schema.MinArgs {
		return fmt.Errorf("schema for %s accepts fewer arguments than it requires", schema.Kind)
	}
	r.schemas[schema.Kind] = schema
	return nil
}

// Schema retrieves the schema for a kind
func (r *Registry) Schema(kind Kind) (Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[kind]
	return s, ok
}

// Kinds returns all registered kinds in declaration order
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]Kind, 0, len(r.schemas))
	for k := range r.schemas {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// validate checks a parsed annotation against its schema and the declaration it sits on
func (s Schema) validate(a *ParsedAnnotation, target Target) error {
	if target != 0 && s.Targets&target == 0 {
		return fmt.Errorf("cannot be placed on a %s (allowed: %s)", target, s.Targets)
	}
	if len(a.Positional) < s.MinArgs {
		return fmt.Errorf("requires %d argument(s), got %d", s.MinArgs, len(a.Positional))
	}
	if len(a.Positional) > s.MaxArgs {
		return fmt.Errorf("accepts at most %d argument(s), got %d", s.MaxArgs, len(a.Positional))
	}
	for name, value := range a.Params {
		spec, ok := s.Parameters[name]
		if !ok {
			return fmt.Errorf("unknown parameter '%s'", name)
		}
		if spec.Validator != nil {
			if err := spec.Validator(value); err != nil {
				return fmt.Errorf("parameter '%s' validation failed: %w", name, err)
			}
		}
	}
	if len(a.Flags) > 0 {
		return fmt.Errorf("unknown flag '-%s'", a.Flags[0])
	}
	for name, spec := range s.Parameters {
		if spec.Required && !a.HasParameter(name) {
			return fmt.Errorf("missing required parameter '%s'", name)
		}
	}
	return nil
}
