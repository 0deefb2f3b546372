package app

import (
	"fmt"

	"github.com/toyz/dispatch/demo/app/service"
)

// DemoController serves the root namespace
//
//dispatch::controller
//dispatch::route /
type DemoController struct {
	//dispatch::inject
	Greeter service.Greeter
}

//dispatch::route /hello
func (c *DemoController) Hello() string {
	return c.Greeter.Greet()
}

// ApiController groups the api endpoints under /api
//
//dispatch::controller
//dispatch::route /api
type ApiController struct {
	//dispatch::inject -Name=clock
	clock *service.ClockService

	//dispatch::inject
	Greeter service.Greeter
}

// SetClock receives the clock service
func (c *ApiController) SetClock(clock *service.ClockService) {
	c.clock = clock
}

//dispatch::route /hello
func (c *ApiController) Hello() string {
	return c.Greeter.Greet() + " from the api"
}

//dispatch::route /time
func (c *ApiController) Time() (string, error) {
	if c.clock == nil {
		return "", fmt.Errorf("clock service is not wired")
	}
	return c.clock.Now(), nil
}

//dispatch::route /uptime
func (c *ApiController) Uptime() (string, error) {
	if c.clock == nil {
		return "", fmt.Errorf("clock service is not wired")
	}
	return c.clock.Uptime().String(), nil
}
