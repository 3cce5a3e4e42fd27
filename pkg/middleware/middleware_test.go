package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/propelyu/pkg/apperr"
	"github.com/shashiranjanraj/propelyu/pkg/auth"
	"github.com/shashiranjanraj/propelyu/pkg/middleware"
)

func echoUser(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := middleware.UserFromCtx(r.Context())
		require.True(t, ok)
		w.Header().Set("X-User", u.ID+"/"+u.Role)
		w.WriteHeader(http.StatusOK)
	})
}

func resolver(known map[string]string) middleware.UserResolver {
	return func(_ context.Context, c *auth.Claims) (middleware.User, error) {
		role, ok := known[c.ID]
		if !ok {
			return middleware.User{}, apperr.NotFound("no user")
		}
		return middleware.User{ID: c.ID, Role: role}, nil
	}
}

func TestAuthenticate(t *testing.T) {
	iss := auth.NewIssuer("mw-secret")
	h := middleware.Authenticate(iss, resolver(map[string]string{"u1": "vendor"}))(echoUser(t))

	good, err := iss.IssueToken("u1", "vendor")
	require.NoError(t, err)
	ghost, err := iss.IssueToken("u2", "vendor")
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		code   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + good, http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.token", http.StatusUnauthorized},
		{"deleted user", "Bearer " + ghost, http.StatusUnauthorized},
		{"valid", "Bearer " + good, http.StatusOK},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if c.header != "" {
				req.Header.Set("Authorization", c.header)
			}
			h.ServeHTTP(rec, req)
			assert.Equal(t, c.code, rec.Code)
			if c.code == http.StatusOK {
				assert.Equal(t, "u1/vendor", rec.Header().Get("X-User"))
			}
		})
	}
}

func TestRequestIDGeneratedAndEchoed(t *testing.T) {
	var seen string
	h := middleware.RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = middleware.RequestIDFromCtx(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(middleware.RequestIDHeader))

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.RequestIDHeader, "upstream-1")
	h.ServeHTTP(rec, req)
	assert.Equal(t, "upstream-1", seen)
}

func TestRecoveryReturns500(t *testing.T) {
	h := middleware.Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRateLimiter(t *testing.T) {
	l := middleware.NewRateLimiter(2, time.Minute)
	now := time.Now()

	assert.True(t, l.Allow("1.2.3.4", now))
	assert.True(t, l.Allow("1.2.3.4", now))
	assert.False(t, l.Allow("1.2.3.4", now))
	assert.True(t, l.Allow("5.6.7.8", now))
	assert.True(t, l.Allow("1.2.3.4", now.Add(2*time.Minute)))
}
