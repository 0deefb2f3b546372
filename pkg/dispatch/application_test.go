package dispatch

import (
	"context"
	goerrors "errors"
	"io/fs"
	"net/http"
	"reflect"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/toyz/dispatch/internal/errors"
)

func TestBoot_EndToEnd(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	app, err := Boot(Options{
		Catalog:     fixtureCatalog(),
		Source:      fixtureFS(),
		ScanPackage: "app",
		Logger:      zap.New(core),
	})
	require.NoError(t, err)

	rec := serve(t, app.Handler(), http.MethodGet, "/hello")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hi", rec.Body.String())

	rec = serve(t, app.Handler(), http.MethodGet, "/unknown")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "...404", rec.Body.String())

	assert.Equal(t, 7, app.Routes().Len())
	assert.Len(t, app.Injections(), 3)
	assert.Len(t, app.Container().Controllers(), 2)
	assert.Equal(t, 1, logs.FilterMessage("application booted").Len())
}

func TestBoot_Options(t *testing.T) {
	app, err := Boot(Options{
		Catalog:      fixtureCatalog(),
		Source:       fixtureFS(),
		ScanPackage:  "app",
		ContextPath:  "/shop",
		NotFoundBody: "gone",
	})
	require.NoError(t, err)

	assert.Equal(t, "hi", serve(t, app.Handler(), http.MethodPost, "/shop/hello").Body.String())
	assert.Equal(t, "gone", serve(t, app.Handler(), http.MethodGet, "/shop/nope").Body.String())
}

func TestBoot_SubNamespace(t *testing.T) {
	app, err := Boot(Options{
		Catalog:     fixtureCatalog(),
		Source:      fixtureFS(),
		ScanPackage: "app.service",
	})
	require.NoError(t, err)

	assert.Equal(t, 0, app.Routes().Len())
	_, ok := app.Container().Get("clock")
	assert.True(t, ok)
	assert.Equal(t, http.StatusServiceUnavailable, serve(t, app.Handler(), http.MethodGet, "/hello").Code)
}

func TestBoot_Idempotent(t *testing.T) {
	boot := func() *Application {
		app, err := Boot(Options{Catalog: fixtureCatalog(), Source: fixtureFS(), ScanPackage: "app"})
		require.NoError(t, err)
		return app
	}
	first, second := boot(), boot()

	assert.Equal(t, first.Container().Names(), second.Container().Names())
	assert.Equal(t, first.Injections(), second.Injections())

	a, b := first.Routes().Routes(), second.Routes().Routes()
	require.Len(t, b, len(a))
	for i := range a {
		assert.Equal(t, a[i].Path, b[i].Path)
		assert.Equal(t, a[i].Controller+"."+a[i].Method, b[i].Controller+"."+b[i].Method)
	}
}

func TestBoot_ScanFailures(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		is   error
	}{
		{"missing namespace", Options{Source: fixtureFS(), ScanPackage: "nowhere"}, fs.ErrNotExist},
		{"empty scan package", Options{Source: fixtureFS()}, nil},
		{"no source", Options{ScanPackage: "app"}, fs.ErrInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Catalog = fixtureCatalog()
			app, err := Boot(tt.opts)
			require.Error(t, err)
			assert.Nil(t, app)

			var scanErr *errors.ScanError
			assert.True(t, goerrors.As(err, &scanErr))
			assert.True(t, errors.HasCode(err, errors.ScanErrorCode))
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

const closeFixtureSrc = `package app

//dispatch::service -Name=first
type FirstCloser struct{}

//dispatch::service -Name=second
type SecondCloser struct{}

//dispatch::controller
type PingController struct{}

//dispatch::route /ping
func (c *PingController) Ping() string { return "pong" }
`

type recordingCloser struct {
	name   string
	closed *[]string
	err    error
}

func (r *recordingCloser) Close(context.Context) error {
	*r.closed = append(*r.closed, r.name)
	return r.err
}

type pingController struct{}

func (c *pingController) Ping() string { return "pong" }

func bootClosers(t *testing.T, closed *[]string, secondErr error) *Application {
	t.Helper()

	catalog := NewCatalog()
	typ := reflect.TypeOf(recordingCloser{})
	require.NoError(t, catalog.RegisterFactory("app.FirstCloser", typ, func() (any, error) {
		return &recordingCloser{name: "first", closed: closed}, nil
	}))
	require.NoError(t, catalog.RegisterFactory("app.SecondCloser", typ, func() (any, error) {
		return &recordingCloser{name: "second", closed: closed, err: secondErr}, nil
	}))
	RegisterIn[pingController](catalog, "app.PingController")

	app, err := Boot(Options{
		Catalog:     catalog,
		Source:      fstest.MapFS{"app/app.go": {Data: []byte(closeFixtureSrc)}},
		ScanPackage: "app",
	})
	require.NoError(t, err)
	return app
}

func TestApplication_Close(t *testing.T) {
	t.Run("reverse registration order", func(t *testing.T) {
		var closed []string
		app := bootClosers(t, &closed, nil)
		assert.Equal(t, "pong", serve(t, app.Handler(), http.MethodGet, "/ping").Body.String())

		require.NoError(t, app.Close(context.Background()))
		assert.Equal(t, []string{"second", "first"}, closed)

		require.NoError(t, app.Close(context.Background()))
		assert.Len(t, closed, 2, "second Close is a no-op")
	})

	t.Run("errors are collected", func(t *testing.T) {
		var closed []string
		failure := goerrors.New("flush failed")
		app := bootClosers(t, &closed, failure)

		err := app.Close(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "close second")
		assert.Equal(t, []string{"second", "first"}, closed, "a failing bean does not stop the others")
		assert.Equal(t, err, app.Close(context.Background()))
	})

	t.Run("fixture clock", func(t *testing.T) {
		var closed []string
		catalog := fixtureCatalog()
		require.NoError(t, catalog.RegisterFactory("app.service.ClockService", reflect.TypeOf(ClockService{}), func() (any, error) {
			return &ClockService{closed: &closed}, nil
		}))

		app, err := Boot(Options{Catalog: catalog, Source: fixtureFS(), ScanPackage: "app"})
		require.NoError(t, err)
		require.NoError(t, app.Close(context.Background()))
		assert.Equal(t, []string{"clock"}, closed)
	})
}
