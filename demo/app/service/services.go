package service

import (
	"context"
	"sync"
	"time"
)

// Greeter produces the greeting served by the demo
type Greeter interface {
	Greet() string
}

//dispatch::service
type GreetingService struct{}

func (g *GreetingService) Greet() string {
	return "hi"
}

// ClockService reports the wall clock and how long the application has run
//
//dispatch::service -Name=clock
type ClockService struct {
	mu      sync.Mutex
	started time.Time
	stopped bool
}

// Init records the start time once wiring is done
func (c *ClockService) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started = time.Now()
	return nil
}

// Now returns the current UTC time in RFC 3339 format
func (c *ClockService) Now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// Uptime returns the time elapsed since Init, truncated to the second
func (c *ClockService) Uptime() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started.IsZero() || c.stopped {
		return 0
	}
	return time.Since(c.started).Truncate(time.Second)
}

// Close stops the clock at shutdown
func (c *ClockService) Close(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
	return nil
}
