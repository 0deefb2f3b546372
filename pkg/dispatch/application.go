// Package dispatch is the runtime of the framework: it turns scanned
// component descriptors into a bean container, wires injection points,
// builds the route table and serves requests from it.
package dispatch

import (
	"context"
	"io/fs"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/toyz/dispatch/internal/errors"
	"github.com/toyz/dispatch/internal/logging"
	"github.com/toyz/dispatch/internal/scanner"
)

// Closer is implemented by beans that release resources at shutdown
type Closer interface {
	Close(ctx context.Context) error
}

// Options configures Boot
type Options struct {
	// Catalog holds the registered types; nil means DefaultCatalog
	Catalog *Catalog

	// Source is the tree holding the namespace directories
	Source fs.FS

	// ScanPackage is the root namespace, e.g. "app"
	ScanPackage string

	// ContextPath is the deployment prefix stripped from request paths
	ContextPath string

	// NotFoundBody overrides the lookup-miss body
	NotFoundBody string

	// Logger receives boot and request logs; nil disables logging
	Logger *zap.Logger
}

// Application is the process-scoped handle on a booted container
type Application struct {
	container  *Container
	routes     *RouteTable
	edges      []InjectionEdge
	dispatcher *Dispatcher
	logger     *zap.Logger

	closeOnce sync.Once
	closeErr  error
}

// Boot scans opts.ScanPackage, builds the container, injects dependencies and
// builds the route table, in that order. Only a scan failure is fatal.
func Boot(opts Options) (*Application, error) {
	logger := logging.OrNop(opts.Logger)
	catalog := opts.Catalog
	if catalog == nil {
		catalog = DefaultCatalog
	}
	if opts.Source == nil {
		return nil, errors.NewScanError(opts.ScanPackage, "", fs.ErrInvalid)
	}

	descriptors, err := scanner.New(opts.Source, logger).ScanComponents(opts.ScanPackage)
	if err != nil {
		logger.Error("scan failed", zap.String("scan_package", opts.ScanPackage), zap.Error(err))
		return nil, err
	}
	logger.Info("scan complete",
		zap.String("scan_package", opts.ScanPackage),
		zap.Int("types", len(descriptors)))

	container := BuildContainer(catalog, descriptors, logger)
	edges := Inject(container, catalog, logger)
	routes := BuildRoutes(container, logger)

	app := &Application{
		container: container,
		routes:    routes,
		edges:     edges,
		dispatcher: NewDispatcher(routes,
			WithContextPath(opts.ContextPath),
			WithNotFoundBody(opts.NotFoundBody),
			WithLogger(logger)),
		logger: logger,
	}

	logger.Info("application booted",
		zap.Int("beans", len(container.Beans())),
		zap.Int("names", container.Len()),
		zap.Int("injections", len(edges)),
		zap.Int("routes", routes.Len()))
	return app, nil
}

// Container returns the bean container
func (a *Application) Container() *Container {
	return a.container
}

// Routes returns the route table
func (a *Application) Routes() *RouteTable {
	return a.routes
}

// Injections returns the wiring decisions made at boot
func (a *Application) Injections() []InjectionEdge {
	return append([]InjectionEdge(nil), a.edges...)
}

// Handler returns the request dispatcher
func (a *Application) Handler() http.Handler {
	return a.dispatcher
}

// Close tears the application down, closing Closer beans in reverse
// registration order. It is safe to call more than once.
func (a *Application) Close(ctx context.Context) error {
	a.closeOnce.Do(func() {
		errs := errors.NewMultipleErrors()
		beans := a.container.Beans()
		for i := len(beans) - 1; i >= 0; i-- {
			closer, ok := beans[i].Instance.(Closer)
			if !ok {
				continue
			}
			if err := closer.Close(ctx); err != nil {
				a.logger.Error("bean close failed", zap.String("bean", beans[i].Name), zap.Error(err))
				errs.Add(errors.Wrapf(errors.UnknownErrorCode, err, "close %s", beans[i].Name))
			}
		}
		a.closeErr = errs.ErrOrNil()
		a.logger.Info("application closed")
	})
	return a.closeErr
}
