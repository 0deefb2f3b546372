package dispatch

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/toyz/dispatch/internal/errors"
	"github.com/toyz/dispatch/internal/logging"
)

var (
	errorType    = reflect.TypeOf((*error)(nil)).Elem()
	stringerType = reflect.TypeOf((*fmt.Stringer)(nil)).Elem()
	bytesType    = reflect.TypeOf([]byte(nil))
)

// HandlerFunc invokes a bound handler method and renders its result
type HandlerFunc func() ([]byte, error)

// Route binds a normalized path to a handler method of a controller bean
type Route struct {
	Path       string
	Controller string // bean name of the owning controller
	Method     string // handler method name
	Bean       *Bean
	Handler    HandlerFunc
}

// RouteTable maps normalized paths to routes. It is immutable once built.
type RouteTable struct {
	routes map[string]*Route
}

// Lookup returns the route registered for an already normalized path
func (t *RouteTable) Lookup(path string) (*Route, bool) {
	if t == nil {
		return nil, false
	}
	r, ok := t.routes[path]
	return r, ok
}

// Len returns the number of routes
func (t *RouteTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.routes)
}

// Routes returns every route sorted by path
func (t *RouteTable) Routes() []*Route {
	if t == nil {
		return nil
	}
	routes := make([]*Route, 0, len(t.routes))
	for _, r := range t.routes {
		routes = append(routes, r)
	}
	sort.Slice(routes, func(i, j int) bool { return routes[i].Path < routes[j].Path })
	return routes
}

// NormalizePath collapses runs of "/" and guarantees a single leading slash.
// An empty path normalizes to "/".
func NormalizePath(path string) string {
	var b strings.Builder
	b.Grow(len(path) + 1)
	b.WriteByte('/')
	prevSlash := true
	for i := 0; i < len(path); i++ {
		c := path[i]
		if c == '/' {
			if prevSlash {
				continue
			}
			prevSlash = true
		} else {
			prevSlash = false
		}
		b.WriteByte(c)
	}
	return b.String()
}

// BuildRoutes registers every route method of every controller bean. Each
// controller starts from its own base path; a path registered twice keeps the
// later route.
func BuildRoutes(c *Container, logger *zap.Logger) *RouteTable {
	logger = logging.OrNop(logger).Named("routes")
	table := &RouteTable{routes: make(map[string]*Route)}

	for _, bean := range c.Controllers() {
		base := "/" + bean.Descriptor.BasePath

		for _, rm := range bean.Descriptor.Routes {
			path := NormalizePath(base + "/" + rm.Path)

			handler, err := bindHandler(bean, rm.Method)
			if err != nil {
				logger.Warn("route skipped",
					zap.String("path", path),
					zap.String("controller", bean.Name),
					zap.String("method", rm.Method),
					zap.Stringer("location", rm.Location),
					zap.Error(err))
				continue
			}

			if prev, exists := table.routes[path]; exists {
				logger.Warn("route overwritten",
					zap.String("path", path),
					zap.String("previous", prev.Controller+"."+prev.Method),
					zap.String("replacement", bean.Name+"."+rm.Method))
			}

			table.routes[path] = &Route{
				Path:       path,
				Controller: bean.Name,
				Method:     rm.Method,
				Bean:       bean,
				Handler:    handler,
			}
			logger.Debug("route registered",
				zap.String("path", path),
				zap.String("handler", bean.Name+"."+rm.Method))
		}
	}

	logger.Info("route table built", zap.Int("routes", table.Len()))
	return table
}

// bindHandler resolves an exported, argument-less method on the bean and
// wraps it so its result is rendered to bytes.
func bindHandler(bean *Bean, methodName string) (HandlerFunc, error) {
	method := reflect.ValueOf(bean.Instance).MethodByName(methodName)
	if !method.IsValid() {
		return nil, errors.Newf(errors.RouteErrorCode, "%s has no exported method %s", bean.Name, methodName)
	}

	mt := method.Type()
	if mt.NumIn() != 0 {
		return nil, errors.Newf(errors.RouteErrorCode, "handler %s must not take arguments", methodName)
	}

	switch mt.NumOut() {
	case 0:
		return func() ([]byte, error) {
			method.Call(nil)
			return nil, nil
		}, nil
	case 1:
		if mt.Out(0) == errorType {
			return func() ([]byte, error) {
				return nil, asError(method.Call(nil)[0])
			}, nil
		}
		return func() ([]byte, error) {
			return render(method.Call(nil)[0]), nil
		}, nil
	case 2:
		if mt.Out(1) != errorType {
			return nil, errors.Newf(errors.RouteErrorCode, "handler %s must return (T, error)", methodName)
		}
		return func() ([]byte, error) {
			out := method.Call(nil)
			if err := asError(out[1]); err != nil {
				return nil, err
			}
			return render(out[0]), nil
		}, nil
	default:
		return nil, errors.Newf(errors.RouteErrorCode, "handler %s returns too many values", methodName)
	}
}

func asError(v reflect.Value) error {
	if v.IsNil() {
		return nil
	}
	return v.Interface().(error)
}

// render writes a handler result verbatim
func render(v reflect.Value) []byte {
	if v.Type() == bytesType {
		return v.Bytes()
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		if v.IsNil() {
			return nil
		}
	}
	if v.Kind() == reflect.Interface {
		return render(v.Elem())
	}
	if v.Type().Implements(stringerType) {
		return []byte(v.Interface().(fmt.Stringer).String())
	}
	if v.Kind() == reflect.String {
		return []byte(v.String())
	}
	return []byte(fmt.Sprint(v.Interface()))
}
