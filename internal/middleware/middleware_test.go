// internal/middleware/middleware_test.go
package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gurkanbulca/taskboard/internal/apperror"
	"github.com/gurkanbulca/taskboard/internal/service"
)

type stubResolver struct {
	known map[uuid.UUID]bool
	token map[string]uuid.UUID
}

func (s *stubResolver) Authenticate(_ context.Context, token string) (service.Caller, error) {
	id, ok := s.token[token]
	if !ok {
		return service.Caller{}, apperror.Unauthenticated("invalid token")
	}
	return service.Caller{ID: id}, nil
}

func (s *stubResolver) Resolve(_ context.Context, id uuid.UUID) (service.Caller, error) {
	if !s.known[id] {
		return service.Caller{}, apperror.Unauthenticated("")
	}
	return service.Caller{ID: id}, nil
}

// newTestRouter renders recorded errors as their kind so tests can read them.
func newTestRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Next()
		if err := c.Errors.Last(); err != nil {
			c.String(http.StatusTeapot, apperror.KindOf(err.Err).String())
		}
	})
	r.Use(mw...)
	ok := func(c *gin.Context) { c.String(http.StatusOK, CallerFrom(c).ID.String()) }
	r.GET("/health", ok)
	r.GET("/tasks", ok)
	r.POST("/tasks", ok)
	r.PATCH("/tasks/:id/complete", ok)
	return r
}

func TestAuthMiddleware(t *testing.T) {
	alice := uuid.New()
	resolver := &stubResolver{
		known: map[uuid.UUID]bool{alice: true},
		token: map[string]uuid.UUID{"good": alice},
	}

	tests := []struct {
		name        string
		path        string
		headers     map[string]string
		allowHeader bool
		wantStatus  int
		wantBody    string
	}{
		{name: "public route", path: "/health", wantStatus: http.StatusOK, wantBody: uuid.Nil.String()},
		{name: "bearer token", path: "/tasks", headers: map[string]string{"Authorization": "Bearer good"}, wantStatus: http.StatusOK, wantBody: alice.String()},
		{name: "bad token", path: "/tasks", headers: map[string]string{"Authorization": "Bearer bad"}, wantStatus: http.StatusTeapot, wantBody: "unauthenticated"},
		{name: "malformed header", path: "/tasks", headers: map[string]string{"Authorization": "Token good"}, wantStatus: http.StatusTeapot, wantBody: "unauthenticated"},
		{name: "no identity", path: "/tasks", wantStatus: http.StatusTeapot, wantBody: "unauthenticated"},
		{name: "user id header allowed", path: "/tasks", headers: map[string]string{UserIDHeader: alice.String()}, allowHeader: true, wantStatus: http.StatusOK, wantBody: alice.String()},
		{name: "user id header disabled", path: "/tasks", headers: map[string]string{UserIDHeader: alice.String()}, wantStatus: http.StatusTeapot, wantBody: "unauthenticated"},
		{name: "unknown user id", path: "/tasks", headers: map[string]string{UserIDHeader: uuid.NewString()}, allowHeader: true, wantStatus: http.StatusTeapot, wantBody: "unauthenticated"},
		{name: "unmatched path passes through", path: "/nowhere", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(NewAuthMiddleware(resolver, tt.allowHeader).Handler())
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
			}
		})
	}
}

func TestRequestValidator(t *testing.T) {
	r := newTestRouter(NewRequestValidator(&ValidationConfig{MaxBodyBytes: 64}).Handler())

	send := func(method, path, contentType, body string) *httptest.ResponseRecorder {
		var req *http.Request
		if body == "" {
			req = httptest.NewRequest(method, path, nil)
		} else {
			req = httptest.NewRequest(method, path, strings.NewReader(body))
		}
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, send(http.MethodPost, "/tasks", "application/json; charset=utf-8", `{"task":{}}`).Code)
	assert.Equal(t, http.StatusOK, send(http.MethodPatch, "/tasks/1/complete", "", "").Code)

	w := send(http.MethodPost, "/tasks", "text/plain", "hello")
	require.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "malformed", w.Body.String())

	w = send(http.MethodPost, "/tasks", "application/json", `{"task":{"title":"`+strings.Repeat("x", 100)+`"}}`)
	require.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "malformed", w.Body.String())
}

func TestClientInfoMiddleware(t *testing.T) {
	var got ClientInfo
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ClientInfoMiddleware())
	r.GET("/health", func(c *gin.Context) {
		got = GetClientInfoFromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("User-Agent", "taskboard-test")
	req.Header.Set(RequestIDHeader, "req-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-1", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "taskboard-test", got.UserAgent)
	assert.Equal(t, "req-1", got.RequestID)
	assert.NotEmpty(t, got.IPAddress)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader), "a request id is generated")
}
