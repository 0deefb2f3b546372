package dispatch

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/toyz/dispatch/internal/errors"
)

// Factory creates a new instance of a registered type. It must return a
// pointer to the registered struct type.
type Factory func() (any, error)

// TypeEntry is a registered, instantiable type
type TypeEntry struct {
	// Name is the fully-qualified name, namespace + "." + type name
	Name string

	// Type is the struct type (never a pointer)
	Type reflect.Type

	// Factory creates a fresh *Type
	Factory Factory
}

// Catalog is the compile-time registration table consulted when beans are
// built. Generated autogen_components.go files populate DefaultCatalog from
// init functions.
type Catalog struct {
	mu           sync.RWMutex
	types        map[string]TypeEntry
	capabilities map[string]reflect.Type
	names        map[reflect.Type]string
	packages     map[string]string // import path -> namespace
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{
		types:        make(map[string]TypeEntry),
		capabilities: make(map[string]reflect.Type),
		names:        make(map[reflect.Type]string),
		packages:     make(map[string]string),
	}
}

// DefaultCatalog is the process-wide catalog used by generated code
var DefaultCatalog = NewCatalog()

// RegisterFactory registers an instantiable struct type under name
func (c *Catalog) RegisterFactory(name string, typ reflect.Type, factory Factory) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New(errors.ValidationErrorCode, "catalog entry name must not be empty")
	}
	if typ == nil || typ.Kind() != reflect.Struct {
		return errors.Newf(errors.ValidationErrorCode, "catalog entry %s must be a struct type, got %v", name, typ)
	}
	if factory == nil {
		return errors.Newf(errors.ValidationErrorCode, "catalog entry %s has no factory", name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.types[name] = TypeEntry{Name: name, Type: typ, Factory: factory}
	c.names[typ] = name
	return nil
}

// RegisterCapabilityType registers an interface type as a capability under name
func (c *Catalog) RegisterCapabilityType(name string, typ reflect.Type) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New(errors.ValidationErrorCode, "capability name must not be empty")
	}
	if typ == nil || typ.Kind() != reflect.Interface {
		return errors.Newf(errors.ValidationErrorCode, "capability %s must be an interface type, got %v", name, typ)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.capabilities[name] = typ
	c.names[typ] = name
	return nil
}

// RegisterPackage maps a Go import path onto the namespace it was scanned as
func (c *Catalog) RegisterPackage(namespace, importPath string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.packages[strings.TrimSpace(importPath)] = strings.Trim(strings.TrimSpace(namespace), ".")
}

// Lookup returns the registered type for a fully-qualified name
func (c *Catalog) Lookup(name string) (TypeEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.types[name]
	return entry, ok
}

// Capability returns the registered interface type for a capability name
func (c *Catalog) Capability(name string) (reflect.Type, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	typ, ok := c.capabilities[name]
	return typ, ok
}

// Capabilities returns the sorted names of every registered capability that
// typ or *typ implements. Capabilities with an empty method set match every
// type and are never reported.
func (c *Catalog) Capabilities(typ reflect.Type) []string {
	if typ == nil {
		return nil
	}
	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	ptr := reflect.PointerTo(typ)

	c.mu.RLock()
	defer c.mu.RUnlock()

	var names []string
	for name, iface := range c.capabilities {
		if iface.NumMethod() == 0 {
			continue
		}
		if typ.Implements(iface) || ptr.Implements(iface) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// NameOf returns the container name a field of type typ resolves to by type.
// Pointers are dereferenced. Registered types and capabilities use their
// registered name; other named types use the namespace of their package when
// known, else the Go import path.
func (c *Catalog) NameOf(typ reflect.Type) string {
	if typ == nil {
		return ""
	}
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if name, ok := c.names[typ]; ok {
		return name
	}
	if typ.Name() == "" {
		return typ.String()
	}
	if ns, ok := c.packages[typ.PkgPath()]; ok {
		return ns + "." + typ.Name()
	}
	if typ.PkgPath() == "" {
		return typ.Name()
	}
	return typ.PkgPath() + "." + typ.Name()
}

// Len returns the number of registered types
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.types)
}

// RegisterIn registers struct type T in catalog c with a zero-value factory.
// It panics on invalid input so misuse surfaces at init time.
func RegisterIn[T any](c *Catalog, name string) {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	factory := func() (any, error) { return new(T), nil }
	if err := c.RegisterFactory(name, typ, factory); err != nil {
		panic(err)
	}
}

// RegisterCapabilityIn registers interface type I in catalog c as a capability.
// It panics on invalid input so misuse surfaces at init time.
func RegisterCapabilityIn[I any](c *Catalog, name string) {
	typ := reflect.TypeOf((*I)(nil)).Elem()
	if err := c.RegisterCapabilityType(name, typ); err != nil {
		panic(err)
	}
}

// Register registers struct type T in DefaultCatalog
func Register[T any](name string) {
	RegisterIn[T](DefaultCatalog, name)
}

// RegisterCapability registers interface type I in DefaultCatalog
func RegisterCapability[I any](name string) {
	RegisterCapabilityIn[I](DefaultCatalog, name)
}

// RegisterFactory registers a custom factory in DefaultCatalog
func RegisterFactory(name string, typ reflect.Type, factory Factory) {
	if err := DefaultCatalog.RegisterFactory(name, typ, factory); err != nil {
		panic(err)
	}
}

// RegisterPackage maps an import path onto a namespace in DefaultCatalog
func RegisterPackage(namespace, importPath string) {
	DefaultCatalog.RegisterPackage(namespace, importPath)
}

// instantiate runs the factory of entry, converting panics and wrong result
// types into errors.
func instantiate(entry TypeEntry) (instance any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("factory panicked: %v", r)
		}
	}()

	instance, err = entry.Factory()
	if err != nil {
		return nil, err
	}
	if instance == nil {
		return nil, fmt.Errorf("factory returned nil")
	}
	if want := reflect.PointerTo(entry.Type); reflect.TypeOf(instance) != want {
		return nil, fmt.Errorf("factory returned %T, want %v", instance, want)
	}
	if reflect.ValueOf(instance).IsNil() {
		return nil, fmt.Errorf("factory returned a nil %T", instance)
	}
	return instance, nil
}
