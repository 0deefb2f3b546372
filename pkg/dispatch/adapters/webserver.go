// Package adapters mounts the dispatcher on a concrete HTTP engine.
package adapters

import (
	"context"
	"net/http"
	"strings"

	"github.com/toyz/dispatch/internal/errors"
)

// Engine names accepted by New
const (
	EngineChi   = "chi"
	EngineEcho  = "echo"
	EngineGin   = "gin"
	EngineFiber = "fiber"
)

// WebServer hosts a single catch-all handler. Every request, whatever its
// method or path, is handed to the mounted handler, which decides the status.
type WebServer interface {
	// Mount installs h as the catch-all handler
	Mount(h http.Handler)

	// Start listens on addr and blocks until the server stops. A graceful
	// Stop makes Start return nil.
	Start(addr string) error

	// Stop shuts the server down
	Stop(ctx context.Context) error

	// Name returns the adapter name
	Name() string
}

// Engines lists the supported engine names
func Engines() []string {
	return []string{EngineChi, EngineEcho, EngineFiber, EngineGin}
}

// New creates a web server for the named engine with its default middleware
func New(engine string) (WebServer, error) {
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case EngineChi, "":
		return NewDefaultChiAdapter(), nil
	case EngineEcho:
		return NewDefaultEchoAdapter(), nil
	case EngineGin:
		return NewDefaultGinAdapter(), nil
	case EngineFiber:
		return NewDefaultFiberAdapter(), nil
	}

	err := errors.NewConfigurationError("server.engine", "unknown web server engine '"+engine+"'", nil)
	err.WithSuggestion("use one of: " + strings.Join(Engines(), ", "))
	return nil, err
}
