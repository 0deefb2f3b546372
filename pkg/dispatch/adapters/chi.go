package adapters

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// ChiAdapter implements WebServer for chi
type ChiAdapter struct {
	router *chi.Mux
	server *http.Server
}

// NewChiAdapter creates a new chi adapter
func NewChiAdapter(r *chi.Mux) *ChiAdapter {
	return &ChiAdapter{router: r, server: &http.Server{Handler: r}}
}

// NewDefaultChiAdapter creates a chi adapter with RealIP and Recoverer middleware
func NewDefaultChiAdapter() *ChiAdapter {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	return NewChiAdapter(r)
}

// Mount installs h for every method on every path
func (ca *ChiAdapter) Mount(h http.Handler) {
	ca.router.Handle("/*", h)
}

// Start starts the server
func (ca *ChiAdapter) Start(addr string) error {
	ca.server.Addr = addr
	if err := ca.server.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts the server down
func (ca *ChiAdapter) Stop(ctx context.Context) error {
	return ca.server.Shutdown(ctx)
}

// Name returns the adapter name
func (ca *ChiAdapter) Name() string {
	return "Chi"
}

// ServeHTTP implements http.Handler
func (ca *ChiAdapter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ca.router.ServeHTTP(w, r)
}

// GetRouter returns the underlying chi router
func (ca *ChiAdapter) GetRouter() *chi.Mux {
	return ca.router
}
