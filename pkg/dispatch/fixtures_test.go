package dispatch

import (
	"context"
	"errors"
	"testing/fstest"
)

// Source mirrored by the Go fixtures below. Namespace "app" holds the
// controllers, "app.service" the services and capabilities.

const appControllersSrc = `package app

import "example.com/fixture/app/service"

//dispatch::controller
//dispatch::route /
type DemoController struct {
	//dispatch::inject
	Greeter service.Greeter
}

//dispatch::route /hello
func (c *DemoController) Hello() string { return c.Greeter.Greet() }

//dispatch::controller
//dispatch::route /api
type ApiController struct {
	//dispatch::inject -Name=clock
	clock *service.ClockService

	//dispatch::inject -Name=nothing
	Missing service.Named

	initialized bool
}

//dispatch::route /hello
func (c *ApiController) Hello() string { return "api hello" }

//dispatch::route //time//
func (c *ApiController) Time() string { return c.clock.Now() }

//dispatch::route /fail
func (c *ApiController) Fail() (string, error) { return "", errFixture }

//dispatch::route /boom
func (c *ApiController) Boom() string { panic("boom") }

//dispatch::route /bytes
func (c *ApiController) Bytes() []byte { return []byte("raw") }

//dispatch::route /count
func (c *ApiController) Count() int { return 42 }
`

const appServicesSrc = `package service

type Greeter interface {
	Greet() string
}

type Named interface {
	Name() string
}

//dispatch::service
type GreetingService struct{}

func (g *GreetingService) Greet() string { return "hi" }
func (g *GreetingService) Name() string { return "greeting" }

//dispatch::service -Name=clock
type ClockService struct {
	closed *[]string
}

//dispatch::service
type LonelyService struct{}
`

func fixtureFS() fstest.MapFS {
	return fstest.MapFS{
		"app/controllers.go":           {Data: []byte(appControllersSrc)},
		"app/service/services.go":      {Data: []byte(appServicesSrc)},
		"app/autogen_components.go":    {Data: []byte("package app\n")},
		"app/service/services_test.go": {Data: []byte("package service\n\ntype OnlyInTests struct{}\n")},
	}
}

var errFixture = errors.New("fixture failure")

type Greeter interface {
	Greet() string
}

type Named interface {
	Name() string
}

type GreetingService struct{}

func (g *GreetingService) Greet() string { return "hi" }
func (g *GreetingService) Name() string { return "greeting" }

type ClockService struct {
	closed *[]string
}

func (c *ClockService) Now() string { return "12:00" }

func (c *ClockService) Close(context.Context) error {
	if c.closed != nil {
		*c.closed = append(*c.closed, "clock")
	}
	return nil
}

type LonelyService struct{}

type DemoController struct {
	Greeter Greeter
}

func (c *DemoController) Hello() string { return c.Greeter.Greet() }

type ApiController struct {
	clock       *ClockService
	Missing     Named
	initialized bool
}

func (c *ApiController) SetClock(clock *ClockService) { c.clock = clock }

func (c *ApiController) Init() error {
	c.initialized = true
	return nil
}

func (c *ApiController) Hello() string { return "api hello" }
func (c *ApiController) Time() string { return c.clock.Now() }
func (c *ApiController) Fail() (string, error) { return "", errFixture }
func (c *ApiController) Boom() string { panic("boom") }
func (c *ApiController) Bytes() []byte { return []byte("raw") }
func (c *ApiController) Count() int { return 42 }

// fixtureCatalog registers the fixture types the way generated code does
func fixtureCatalog() *Catalog {
	c := NewCatalog()
	RegisterIn[DemoController](c, "app.DemoController")
	RegisterIn[ApiController](c, "app.ApiController")
	RegisterCapabilityIn[Greeter](c, "app.service.Greeter")
	RegisterCapabilityIn[Named](c, "app.service.Named")
	RegisterIn[GreetingService](c, "app.service.GreetingService")
	RegisterIn[ClockService](c, "app.service.ClockService")
	RegisterIn[LonelyService](c, "app.service.LonelyService")
	return c
}
