package dispatch

import (
	"fmt"
	"reflect"
	"unicode"
	"unicode/utf8"

	"github.com/muir/reflectutils"
	"go.uber.org/zap"

	"github.com/toyz/dispatch/internal/logging"
)

// Initializer is implemented by beans that need a hook once every
// dependency has been wired.
type Initializer interface {
	Init() error
}

// InjectionEdge records one wiring decision made at boot
type InjectionEdge struct {
	Bean     string // name of the bean owning the field
	Field    string // field name
	Target   string // bean name the field resolves to
	Resolved bool   // whether the field was assigned
	Setter   string // setter used for unexported fields, empty for direct assignment
}

// String returns a readable form of the edge
func (e InjectionEdge) String() string {
	state := "unresolved"
	if e.Resolved {
		state = "resolved"
	}
	return fmt.Sprintf("%s.%s -> %s (%s)", e.Bean, e.Field, e.Target, state)
}

// Inject wires the inject fields of every bean in the container, then runs
// Init on beans implementing Initializer. Unresolvable fields are left at
// their zero value and logged.
func Inject(c *Container, catalog *Catalog, logger *zap.Logger) []InjectionEdge {
	logger = logging.OrNop(logger).Named("inject")

	var edges []InjectionEdge
	for _, bean := range c.Beans() {
		for _, point := range bean.Descriptor.Injections {
			edges = append(edges, injectField(c, catalog, bean, point.Field, point.Name, logger))
		}
	}

	for _, bean := range c.Beans() {
		initialize(bean, logger)
	}

	return edges
}

func injectField(c *Container, catalog *Catalog, bean *Bean, fieldName, explicit string, logger *zap.Logger) InjectionEdge {
	edge := InjectionEdge{Bean: bean.Name, Field: fieldName}
	log := logger.With(zap.String("bean", bean.Name), zap.String("field", fieldName))

	field, ok := bean.Type.FieldByName(fieldName)
	if !ok || len(field.Index) != 1 {
		log.Warn("inject field not declared on type")
		return edge
	}

	edge.Target = explicit
	if edge.Target == "" {
		edge.Target = catalog.NameOf(field.Type)
	}
	log = log.With(zap.String("target", edge.Target))

	dep, ok := c.Get(edge.Target)
	if !ok {
		log.Warn("dependency not found, field left unset",
			zap.String("field_type", reflectutils.TypeName(field.Type)))
		return edge
	}
	value := reflect.ValueOf(dep.Instance)

	if field.IsExported() {
		if !value.Type().AssignableTo(field.Type) {
			log.Warn("dependency type mismatch, field left unset",
				zap.String("field_type", reflectutils.TypeName(field.Type)),
				zap.String("dependency_type", reflectutils.TypeName(value.Type())))
			return edge
		}
		reflect.ValueOf(bean.Instance).Elem().FieldByIndex(field.Index).Set(value)
		edge.Resolved = true
		log.Debug("field injected")
		return edge
	}

	setterName := setterFor(fieldName)
	setter := reflect.ValueOf(bean.Instance).MethodByName(setterName)
	if !setter.IsValid() {
		log.Warn("unexported field has no setter, field left unset",
			zap.String("setter", setterName))
		return edge
	}
	st := setter.Type()
	if st.NumIn() != 1 || !value.Type().AssignableTo(st.In(0)) {
		log.Warn("setter does not accept dependency, field left unset",
			zap.String("setter", setterName),
			zap.String("dependency_type", reflectutils.TypeName(value.Type())))
		return edge
	}

	out := setter.Call([]reflect.Value{value})
	if len(out) == 1 {
		if err, isErr := out[0].Interface().(error); isErr && err != nil {
			log.Warn("setter rejected dependency", zap.String("setter", setterName), zap.Error(err))
			return edge
		}
	}
	edge.Resolved = true
	edge.Setter = setterName
	log.Debug("field injected via setter", zap.String("setter", setterName))
	return edge
}

func initialize(bean *Bean, logger *zap.Logger) {
	initializer, ok := bean.Instance.(Initializer)
	if !ok {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Error("bean Init panicked", zap.String("bean", bean.Name), zap.Any("panic", r))
		}
	}()
	if err := initializer.Init(); err != nil {
		logger.Error("bean Init failed", zap.String("bean", bean.Name), zap.Error(err))
	}
}

// setterFor returns the setter method name for a field: clock -> SetClock
func setterFor(field string) string {
	r, size := utf8.DecodeRuneInString(field)
	return "Set" + string(unicode.ToUpper(r)) + field[size:]
}
