package adapters

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// GinAdapter implements WebServer for the Gin framework
type GinAdapter struct {
	engine *gin.Engine
	server *http.Server
}

// NewGinAdapter creates a new Gin adapter
func NewGinAdapter(g *gin.Engine) *GinAdapter {
	return &GinAdapter{engine: g, server: &http.Server{Handler: g}}
}

// NewDefaultGinAdapter creates a Gin adapter with Recovery middleware
func NewDefaultGinAdapter() *GinAdapter {
	g := gin.New()
	g.Use(gin.Recovery())
	return NewGinAdapter(g)
}

// Mount installs h for every method on every path
func (ga *GinAdapter) Mount(h http.Handler) {
	ga.engine.Any("/*path", gin.WrapH(h))
}

// Start starts the server. Gin has no shutdown of its own, so the engine is
// served through an http.Server.
func (ga *GinAdapter) Start(addr string) error {
	ga.server.Addr = addr
	if err := ga.server.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts the server down
func (ga *GinAdapter) Stop(ctx context.Context) error {
	return ga.server.Shutdown(ctx)
}

// Name returns the adapter name
func (ga *GinAdapter) Name() string {
	return "Gin"
}

// ServeHTTP implements http.Handler
func (ga *GinAdapter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ga.engine.ServeHTTP(w, r)
}

// GetEngine returns the underlying Gin engine
func (ga *GinAdapter) GetEngine() *gin.Engine {
	return ga.engine
}
