package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studybud/internal/service"
	"studybud/pkg/logger"
)

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(ctx context.Context) error {
	return p.err
}

type stubRenderer struct {
	name string
}

func (r *stubRenderer) Render(c *gin.Context, status int, name string, data gin.H) {
	r.name = name
	c.String(status, name)
}

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"database reachable", nil, http.StatusOK},
		{"database down", errors.New("connection refused"), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

			NewHealthHandler(stubPinger{err: tt.err}, logger.NewNop()).Health(c)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestSafeNext(t *testing.T) {
	tests := map[string]string{
		"":                      "/",
		"/":                     "/",
		"/room/3/":              "/room/3/",
		"/?q=go":                "/?q=go",
		"room/3/":               "/",
		"//evil.example/":       "/",
		"/\\evil.example":      "/",
		"https://evil.example/": "/",
		"javascript:alert(1)":   "/",
	}

	for next, want := range tests {
		assert.Equal(t, want, safeNext(next), next)
	}
}

func TestAbortWithError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		err      error
		status   int
		template string
	}{
		{"not found", service.ErrNotFound, http.StatusNotFound, "404.html"},
		{"wrapped not found", errors.Join(errors.New("lookup"), service.ErrNotFound), http.StatusNotFound, "404.html"},
		{"forbidden", service.ErrForbidden, http.StatusForbidden, ""},
		{"anything else", errors.New("disk on fire"), http.StatusInternalServerError, "500.html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			renderer := &stubRenderer{}
			r := responder{view: renderer, log: logger.NewNop()}

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

			r.abortWithError(c, tt.err)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.template, renderer.name)
			assert.True(t, c.IsAborted())
		})
	}
}

func TestParamID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := responder{view: &stubRenderer{}, log: logger.NewNop()}

	for raw, ok := range map[string]bool{"12": true, "0": false, "-1": false, "abc": false, "99999999999": false} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/room/"+raw+"/", nil)
		c.Params = gin.Params{{Key: "id", Value: raw}}

		id, got := r.paramID(c)
		require.Equal(t, ok, got, raw)
		if ok {
			assert.EqualValues(t, 12, id)
		} else {
			assert.Equal(t, http.StatusNotFound, w.Code, raw)
		}
	}
}
