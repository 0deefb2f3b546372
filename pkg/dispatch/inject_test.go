package dispatch

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/toyz/dispatch/internal/models"
)

func TestInject(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	logger := zap.New(core)

	catalog := fixtureCatalog()
	c := BuildContainer(catalog, scanFixture(t), logger)
	edges := Inject(c, catalog, logger)

	demo := c.Instance("app.DemoController").(*DemoController)
	api := c.Instance("app.ApiController").(*ApiController)

	t.Run("by type resolves the capability name", func(t *testing.T) {
		require.NotNil(t, demo.Greeter)
		assert.Same(t, c.Instance("app.service.Greeter"), demo.Greeter)
		assert.Equal(t, "hi", demo.Hello())
	})

	t.Run("unexported field is set through its setter", func(t *testing.T) {
		require.NotNil(t, api.clock)
		assert.Same(t, c.Instance("clock"), api.clock)
	})

	t.Run("missing dependency leaves the field unset", func(t *testing.T) {
		assert.Nil(t, api.Missing)
		assert.Equal(t, 1, logs.FilterMessage("dependency not found, field left unset").Len())
	})

	t.Run("initializers run after wiring", func(t *testing.T) {
		assert.True(t, api.initialized)
	})

	t.Run("edges", func(t *testing.T) {
		require.Len(t, edges, 3)
		assert.Equal(t, InjectionEdge{
			Bean: "app.DemoController", Field: "Greeter", Target: "app.service.Greeter", Resolved: true,
		}, edges[0])
		assert.Equal(t, InjectionEdge{
			Bean: "app.ApiController", Field: "clock", Target: "clock", Resolved: true, Setter: "SetClock",
		}, edges[1])
		assert.Equal(t, InjectionEdge{
			Bean: "app.ApiController", Field: "Missing", Target: "nothing",
		}, edges[2])
		assert.Equal(t, "app.ApiController.Missing -> nothing (unresolved)", edges[2].String())
	})
}

type mismatchController struct {
	Greeter *ClockService
	hidden  Greeter
	Named   Named
}

type failingInit struct {
	Dep Greeter
}

func (f *failingInit) Init() error { return fmt.Errorf("not ready") }

type panickingInit struct{}

func (p *panickingInit) Init() error { panic("init exploded") }

type rejectingSetter struct {
	dep Greeter
}

func (r *rejectingSetter) SetDep(g Greeter) error { return fmt.Errorf("rejected") }

func TestInject_Warnings(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	logger := zap.New(core)

	catalog := NewCatalog()
	RegisterIn[GreetingService](catalog, "app.Greeting")
	RegisterCapabilityIn[Greeter](catalog, "app.Greeter")
	RegisterIn[mismatchController](catalog, "app.Mismatch")
	RegisterIn[failingInit](catalog, "app.FailingInit")
	RegisterIn[panickingInit](catalog, "app.PanickingInit")
	RegisterIn[rejectingSetter](catalog, "app.Rejecting")

	descriptors := []models.ComponentDescriptor{
		{Name: "app.Greeting", Role: models.RoleService},
		{Name: "app.Mismatch", Role: models.RoleController, Injections: []models.InjectionPoint{
			{Field: "Greeter", Name: "app.Greeter", Exported: true},
			{Field: "hidden"},
			{Field: "Gone", Exported: true},
		}},
		{Name: "app.FailingInit", Role: models.RoleController, Injections: []models.InjectionPoint{
			{Field: "Dep", Exported: true},
		}},
		{Name: "app.PanickingInit", Role: models.RoleController},
		{Name: "app.Rejecting", Role: models.RoleController, Injections: []models.InjectionPoint{
			{Field: "dep"},
		}},
	}

	c := BuildContainer(catalog, descriptors, logger)
	edges := Inject(c, catalog, logger)

	mismatch := c.Instance("app.Mismatch").(*mismatchController)
	assert.Nil(t, mismatch.Greeter)
	assert.Nil(t, mismatch.hidden)
	assert.Equal(t, 1, logs.FilterMessage("dependency type mismatch, field left unset").Len())
	assert.Equal(t, 1, logs.FilterMessage("unexported field has no setter, field left unset").Len())
	assert.Equal(t, 1, logs.FilterMessage("inject field not declared on type").Len())

	failing := c.Instance("app.FailingInit").(*failingInit)
	assert.NotNil(t, failing.Dep, "Init failure keeps the bean and its wiring")
	assert.Equal(t, 1, logs.FilterMessage("bean Init failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("bean Init panicked").Len())

	rejecting := c.Instance("app.Rejecting").(*rejectingSetter)
	assert.Nil(t, rejecting.dep)
	assert.Equal(t, 1, logs.FilterMessage("setter rejected dependency").Len())

	resolved := 0
	for _, e := range edges {
		if e.Resolved {
			resolved++
		}
	}
	assert.Equal(t, 1, resolved)
}

func TestSetterFor(t *testing.T) {
	assert.Equal(t, "SetClock", setterFor("clock"))
	assert.Equal(t, "SetURL", setterFor("uRL"))
	assert.Equal(t, "SetÉtat", setterFor("état"))
}
