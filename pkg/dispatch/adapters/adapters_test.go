package adapters

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/dispatch/internal/errors"
	"github.com/toyz/dispatch/pkg/dispatch"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// echoHandler reports what it received so tests can see the request reached it
var echoHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/panic" {
		panic("handler exploded")
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusAccepted)
	_, _ = io.WriteString(w, r.Method+" "+r.URL.Path)
})

type requestFunc func(t *testing.T, req *http.Request) (int, string)

func viaHandler(h http.Handler) requestFunc {
	return func(t *testing.T, req *http.Request) (int, string) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code, rec.Body.String()
	}
}

func viaFiber(fa *FiberAdapter) requestFunc {
	return func(t *testing.T, req *http.Request) (int, string) {
		resp, err := fa.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, string(body)
	}
}

func mounted(t *testing.T, h http.Handler) map[string]requestFunc {
	t.Helper()

	chiAdapter := NewDefaultChiAdapter()
	echoAdapter := NewDefaultEchoAdapter()
	ginAdapter := NewDefaultGinAdapter()
	fiberAdapter := NewDefaultFiberAdapter()
	for _, ws := range []WebServer{chiAdapter, echoAdapter, ginAdapter, fiberAdapter} {
		ws.Mount(h)
	}

	return map[string]requestFunc{
		"Chi":   viaHandler(chiAdapter),
		"Echo":  viaHandler(echoAdapter),
		"Gin":   viaHandler(ginAdapter),
		"Fiber": viaFiber(fiberAdapter),
	}
}

func TestAdapters_CatchAll(t *testing.T) {
	for name, do := range mounted(t, echoHandler) {
		t.Run(name, func(t *testing.T) {
			for _, tc := range []struct {
				method string
				path   string
			}{
				{http.MethodGet, "/"},
				{http.MethodGet, "/hello"},
				{http.MethodPost, "/api/time"},
				{http.MethodDelete, "/api/hello"},
			} {
				status, body := do(t, httptest.NewRequest(tc.method, tc.path, nil))
				assert.Equal(t, http.StatusAccepted, status, tc.path)
				assert.Equal(t, tc.method+" "+tc.path, body)
			}
		})
	}
}

func TestAdapters_RecoverFromPanics(t *testing.T) {
	for name, do := range mounted(t, echoHandler) {
		t.Run(name, func(t *testing.T) {
			status, _ := do(t, httptest.NewRequest(http.MethodGet, "/panic", nil))
			assert.Equal(t, http.StatusInternalServerError, status)
		})
	}
}

func TestAdapters_DispatcherStatuses(t *testing.T) {
	for name, do := range mounted(t, dispatch.NewDispatcher(nil)) {
		t.Run(name, func(t *testing.T) {
			status, body := do(t, httptest.NewRequest(http.MethodGet, "/hello", nil))
			assert.Equal(t, http.StatusServiceUnavailable, status)
			assert.Equal(t, "framework not ready", body)

			status, _ = do(t, httptest.NewRequest(http.MethodPut, "/hello", nil))
			assert.Equal(t, http.StatusMethodNotAllowed, status)
		})
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		engine string
		want   string
	}{
		{"", "Chi"},
		{"chi", "Chi"},
		{"ECHO", "Echo"},
		{" gin ", "Gin"},
		{"fiber", "Fiber"},
	}

	for _, tt := range tests {
		t.Run(tt.engine, func(t *testing.T) {
			ws, err := New(tt.engine)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ws.Name())
		})
	}

	t.Run("unknown engine", func(t *testing.T) {
		ws, err := New("tomcat")
		require.Error(t, err)
		assert.Nil(t, ws)
		assert.True(t, errors.HasCode(err, errors.ConfigurationErrorCode))
		assert.Contains(t, err.Error(), "tomcat")
	})
}

func TestStopBeforeStart(t *testing.T) {
	for _, server := range []WebServer{NewDefaultChiAdapter(), NewDefaultGinAdapter()} {
		t.Run(server.Name(), func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			t.Cleanup(cancel)
			require.NoError(t, server.Stop(ctx))
			assert.NoError(t, server.Start("127.0.0.1:0"), "a stopped server does not start listening")
		})
	}
}
