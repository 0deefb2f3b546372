package dispatch

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestDispatcher_ServeHTTP(t *testing.T) {
	d := NewDispatcher(bootFixtureRoutes(t, nil))

	tests := []struct {
		name   string
		method string
		target string
		status int
		body   string
	}{
		{"get hit", http.MethodGet, "/hello", http.StatusOK, "hi"},
		{"post is handled like get", http.MethodPost, "/hello", http.StatusOK, "hi"},
		{"redundant separators", http.MethodGet, "//api///hello", http.StatusOK, "api hello"},
		{"trailing slash route", http.MethodGet, "/api/time/", http.StatusOK, "12:00"},
		{"bytes", http.MethodGet, "/api/bytes", http.StatusOK, "raw"},
		{"miss", http.MethodGet, "/unknown", http.StatusNotFound, DefaultNotFoundBody},
		{"no prefix matching", http.MethodGet, "/hello/extra", http.StatusNotFound, DefaultNotFoundBody},
		{"query string ignored", http.MethodGet, "/hello?name=x", http.StatusOK, "hi"},
		{"handler error", http.MethodGet, "/api/fail", http.StatusInternalServerError, "Internal Server Error"},
		{"handler panic", http.MethodGet, "/api/boom", http.StatusInternalServerError, "Internal Server Error"},
		{"unsupported method", http.MethodDelete, "/hello", http.StatusMethodNotAllowed, "Method Not Allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, d, tt.method, tt.target)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.body, rec.Body.String())
			assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
		})
	}

	t.Run("allow header on 405", func(t *testing.T) {
		rec := serve(t, d, http.MethodPut, "/hello")
		assert.Equal(t, "GET, POST", rec.Header().Get("Allow"))
	})
}

func TestDispatcher_EmptyTable(t *testing.T) {
	d := NewDispatcher(&RouteTable{routes: map[string]*Route{}})

	rec := serve(t, d, http.MethodGet, "/hello")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = serve(t, NewDispatcher(nil), http.MethodGet, "/hello")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDispatcher_ContextPath(t *testing.T) {
	d := NewDispatcher(bootFixtureRoutes(t, nil), WithContextPath("shop/"))

	assert.Equal(t, "/hello", d.Normalize("/shop/hello"))
	assert.Equal(t, "/", d.Normalize("/shop"))
	assert.Equal(t, "/shopping", d.Normalize("/shopping"))

	rec := serve(t, d, http.MethodGet, "/shop/hello")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hi", rec.Body.String())

	rec = serve(t, d, http.MethodGet, "/shop//api//hello")
	assert.Equal(t, "api hello", rec.Body.String())
}

func TestDispatcher_NotFoundBody(t *testing.T) {
	d := NewDispatcher(bootFixtureRoutes(t, nil), WithNotFoundBody("nothing here"))

	rec := serve(t, d, http.MethodGet, "/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "nothing here", rec.Body.String())

	d = NewDispatcher(bootFixtureRoutes(t, nil), WithNotFoundBody(""))
	assert.Equal(t, DefaultNotFoundBody, serve(t, d, http.MethodGet, "/missing").Body.String())
}

func TestDispatcher_RequestID(t *testing.T) {
	d := NewDispatcher(bootFixtureRoutes(t, nil))

	t.Run("generated", func(t *testing.T) {
		rec := serve(t, d, http.MethodGet, "/hello")
		_, err := uuid.Parse(rec.Header().Get(HeaderRequestID))
		assert.NoError(t, err)
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/unknown", nil)
		req.Header.Set(HeaderRequestID, "abc-123")
		rec := httptest.NewRecorder()
		d.ServeHTTP(rec, req)
		assert.Equal(t, "abc-123", rec.Header().Get(HeaderRequestID))
	})
}

func TestDispatcher_ConcurrentRequests(t *testing.T) {
	d := NewDispatcher(bootFixtureRoutes(t, nil))

	var wg sync.WaitGroup
	bodies := make([]string, 32)
	for i := range bodies {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			target := "/hello"
			if i%2 == 1 {
				target = "/api/hello"
			}
			req := httptest.NewRequest(http.MethodGet, target, strings.NewReader(""))
			rec := httptest.NewRecorder()
			d.ServeHTTP(rec, req)
			bodies[i] = rec.Body.String()
		}(i)
	}
	wg.Wait()

	for i, body := range bodies {
		want := "hi"
		if i%2 == 1 {
			want = "api hello"
		}
		require.Equal(t, want, body)
	}
}
