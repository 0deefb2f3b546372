package dispatch

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/toyz/dispatch/internal/errors"
	"github.com/toyz/dispatch/internal/logging"
)

const (
	// DefaultNotFoundBody is written when no route matches
	DefaultNotFoundBody = "...404"

	// HeaderRequestID carries the per-request correlation id
	HeaderRequestID = "X-Request-ID"

	contentTypeText = "text/plain; charset=utf-8"
)

// Dispatcher serves requests from a finished RouteTable.
//
// Lookups never mutate shared state, so a Dispatcher is safe for concurrent
// use. Controller beans are shared by every request routed to them and
// handler methods are invoked without synchronization: a handler that
// touches mutable bean state must guard it itself.
type Dispatcher struct {
	routes       *RouteTable
	contextPath  string
	notFoundBody string
	logger       *zap.Logger
}

// DispatcherOption configures a Dispatcher
type DispatcherOption func(*Dispatcher)

// WithContextPath sets the deployment prefix stripped from request paths
func WithContextPath(prefix string) DispatcherOption {
	return func(d *Dispatcher) {
		prefix = strings.TrimRight(strings.TrimSpace(prefix), "/")
		if prefix != "" {
			prefix = NormalizePath(prefix)
		}
		d.contextPath = prefix
	}
}

// WithNotFoundBody overrides the body written on a lookup miss
func WithNotFoundBody(body string) DispatcherOption {
	return func(d *Dispatcher) {
		if body != "" {
			d.notFoundBody = body
		}
	}
}

// WithLogger sets the dispatcher logger
func WithLogger(logger *zap.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logging.OrNop(logger)
	}
}

// NewDispatcher creates a dispatcher over routes
func NewDispatcher(routes *RouteTable, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		routes:       routes,
		notFoundBody: DefaultNotFoundBody,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.Named("dispatcher")
	return d
}

// Normalize converts a raw request path into route table form
func (d *Dispatcher) Normalize(raw string) string {
	path := raw
	if d.contextPath != "" && (path == d.contextPath || strings.HasPrefix(path, d.contextPath+"/")) {
		path = strings.TrimPrefix(path, d.contextPath)
	}
	return NormalizePath(path)
}

// ServeHTTP implements http.Handler
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := r.Header.Get(HeaderRequestID)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	w.Header().Set(HeaderRequestID, requestID)
	log := d.logger.With(zap.String("request_id", requestID))

	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET, POST")
		writeText(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
		return
	}

	if d.routes.Len() == 0 {
		log.Warn("request received before routes were built", zap.String("path", r.URL.Path))
		writeText(w, http.StatusServiceUnavailable, "framework not ready")
		return
	}

	path := d.Normalize(r.URL.Path)
	route, ok := d.routes.Lookup(path)
	if !ok {
		log.Debug("no route", zap.String("method", r.Method), zap.String("path", path))
		writeText(w, http.StatusNotFound, d.notFoundBody)
		return
	}

	body, err := d.invoke(route)
	if err != nil {
		log.Error("handler failed",
			zap.String("path", path),
			zap.String("handler", route.Controller+"."+route.Method),
			zap.Error(err))
		writeText(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	log.Debug("dispatched",
		zap.String("method", r.Method),
		zap.String("path", path),
		zap.String("handler", route.Controller+"."+route.Method))
	w.Header().Set("Content-Type", contentTypeText)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// invoke calls the handler, turning a panic into an error
func (d *Dispatcher) invoke(route *Route) (body []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf(errors.DispatchErrorCode, "handler panicked: %v", r)
		}
	}()
	return route.Handler()
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", contentTypeText)
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
