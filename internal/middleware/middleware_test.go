package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/fleetwatch/internal/types"
	"github.com/stretchr/testify/assert"
)

type staticCreds struct {
	user, password string
	err            error
}

func (s staticCreds) Verify(_ context.Context, user, password string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return user == s.user && password == s.password, nil
}

type staticTokens map[string]string

func (s staticTokens) Verify(token string) (string, error) {
	if subject, ok := s[token]; ok {
		return subject, nil
	}
	return "", errors.New("bad token")
}

func newEngine(creds CredentialVerifier, tokens TokenVerifier) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestID())
	r.GET("/private", AuthMiddleware(creds, tokens), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(types.ContextPrincipalKey))
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	creds := staticCreds{user: "admin", password: "pw"}
	tokens := staticTokens{"good": "admin"}

	tests := []struct {
		name   string
		setup  func(r *http.Request)
		tokens TokenVerifier
		creds  CredentialVerifier
		status int
	}{
		{name: "missing header", setup: func(r *http.Request) {}, status: http.StatusUnauthorized},
		{name: "valid basic", setup: func(r *http.Request) { r.SetBasicAuth("admin", "pw") }, status: http.StatusOK},
		{name: "wrong password", setup: func(r *http.Request) { r.SetBasicAuth("admin", "nope") }, status: http.StatusUnauthorized},
		{name: "valid bearer", setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer good") }, tokens: tokens, status: http.StatusOK},
		{name: "invalid bearer", setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer bad") }, tokens: tokens, status: http.StatusUnauthorized},
		{name: "bearer disabled", setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer good") }, status: http.StatusUnauthorized},
		{name: "query token", setup: func(r *http.Request) { r.URL.RawQuery = "access_token=good" }, tokens: tokens, status: http.StatusOK},
		{name: "query token disabled", setup: func(r *http.Request) { r.URL.RawQuery = "access_token=good" }, status: http.StatusUnauthorized},
		{name: "unknown scheme", setup: func(r *http.Request) { r.Header.Set("Authorization", "Digest abc") }, status: http.StatusUnauthorized},
		{name: "lookup failure", setup: func(r *http.Request) { r.SetBasicAuth("admin", "pw") }, creds: staticCreds{err: errors.New("down")}, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.creds
			if c == nil {
				c = creds
			}

			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			tt.setup(req)
			w := httptest.NewRecorder()

			newEngine(c, tt.tokens).ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "admin", w.Body.String())
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	r := newEngine(staticCreds{}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}
