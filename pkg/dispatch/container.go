package dispatch

import (
	"reflect"
	"strings"

	"go.uber.org/zap"

	"github.com/toyz/dispatch/internal/errors"
	"github.com/toyz/dispatch/internal/logging"
	"github.com/toyz/dispatch/internal/models"
)

// Bean is a live component instance managed by the container
type Bean struct {
	// Name is the first name the bean was registered under
	Name string

	// Names lists every name currently resolving to this bean
	Names []string

	// Type is the struct type of the instance
	Type reflect.Type

	// Role is controller or service
	Role models.Role

	// Instance is the *Type value shared by every consumer
	Instance any

	// Descriptor is the scanned metadata the bean was built from
	Descriptor models.ComponentDescriptor
}

// Container maps bean names to beans. Registration order is kept so that
// iteration is deterministic. A Container is built once and only read after
// boot, so it carries no locks.
type Container struct {
	beans  map[string]*Bean
	order  []string
	logger *zap.Logger
}

func newContainer(logger *zap.Logger) *Container {
	return &Container{
		beans:  make(map[string]*Bean),
		logger: logger,
	}
}

// BuildContainer instantiates every controller and service descriptor in
// scan order. Types that cannot be instantiated are logged and skipped.
func BuildContainer(catalog *Catalog, descriptors []models.ComponentDescriptor, logger *zap.Logger) *Container {
	logger = logging.OrNop(logger).Named("container")
	c := newContainer(logger)

	for _, desc := range descriptors {
		if !desc.IsAnnotated() {
			continue
		}

		bean, err := newBean(catalog, desc)
		if err != nil {
			logger.Error("component skipped",
				zap.String("type", desc.Name),
				zap.Error(err))
			continue
		}

		switch desc.Role {
		case models.RoleController:
			c.register(desc.Name, bean)
		case models.RoleService:
			if name := strings.TrimSpace(desc.BeanName); name != "" {
				c.register(name, bean)
				continue
			}
			capabilities := catalog.Capabilities(bean.Type)
			if len(capabilities) == 0 {
				logger.Warn("service implements no registered capability and is unreachable",
					zap.String("type", desc.Name))
				continue
			}
			for _, name := range capabilities {
				c.register(name, bean)
			}
		}
	}

	logger.Debug("container built",
		zap.Int("names", c.Len()),
		zap.Int("beans", len(c.Beans())))
	return c
}

func newBean(catalog *Catalog, desc models.ComponentDescriptor) (*Bean, error) {
	entry, ok := catalog.Lookup(desc.Name)
	if !ok {
		err := errors.NewInstantiationError(desc.Name, "type not found in catalog", nil)
		err.WithLocation(desc.Location)
		err.WithSuggestion("run dispatchgen to regenerate autogen_components.go")
		return nil, err
	}

	instance, err := instantiate(entry)
	if err != nil {
		return nil, errors.NewInstantiationError(desc.Name, "factory failed", err)
	}

	return &Bean{
		Name:       desc.Name,
		Type:       entry.Type,
		Role:       desc.Role,
		Instance:   instance,
		Descriptor: desc,
	}, nil
}

// register binds name to bean. An existing binding is overwritten in place.
func (c *Container) register(name string, bean *Bean) {
	if old, exists := c.beans[name]; exists {
		if old != bean {
			c.logger.Warn("bean name overwritten",
				zap.String("name", name),
				zap.String("previous", old.Descriptor.Name),
				zap.String("replacement", bean.Descriptor.Name))
			old.Names = removeName(old.Names, name)
		}
	} else {
		c.order = append(c.order, name)
	}

	if len(bean.Names) == 0 {
		bean.Name = name
	}
	if !containsName(bean.Names, name) {
		bean.Names = append(bean.Names, name)
	}
	c.beans[name] = bean
}

// Get returns the bean registered under name
func (c *Container) Get(name string) (*Bean, bool) {
	bean, ok := c.beans[name]
	return bean, ok
}

// Instance returns the instance registered under name, or nil
func (c *Container) Instance(name string) any {
	if bean, ok := c.beans[name]; ok {
		return bean.Instance
	}
	return nil
}

// Names returns every registered name in registration order
func (c *Container) Names() []string {
	return append([]string(nil), c.order...)
}

// Beans returns each distinct bean once, in first-registration order
func (c *Container) Beans() []*Bean {
	seen := make(map[*Bean]bool, len(c.beans))
	beans := make([]*Bean, 0, len(c.beans))
	for _, name := range c.order {
		bean := c.beans[name]
		if seen[bean] {
			continue
		}
		seen[bean] = true
		beans = append(beans, bean)
	}
	return beans
}

// Controllers returns the distinct controller beans in registration order
func (c *Container) Controllers() []*Bean {
	var controllers []*Bean
	for _, bean := range c.Beans() {
		if bean.Role == models.RoleController {
			controllers = append(controllers, bean)
		}
	}
	return controllers
}

// Len returns the number of registered names
func (c *Container) Len() int {
	return len(c.order)
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func removeName(names []string, name string) []string {
	out := names[:0]
	for _, n := range names {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}
