// Package middleware provides the HTTP middleware stack.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/shashiranjanraj/propelyu/pkg/apperr"
	"github.com/shashiranjanraj/propelyu/pkg/auth"
	"github.com/shashiranjanraj/propelyu/pkg/logger"
	"github.com/shashiranjanraj/propelyu/pkg/response"
)

// User is the authenticated principal stored in the request context.
type User struct {
	ID       string
	Username string
	Email    string
	Role     string
}

// UserResolver loads the user a verified token refers to. It must return an
// Unauthorized error when the user no longer exists.
type UserResolver func(ctx context.Context, claims *auth.Claims) (User, error)

type userKey struct{}

// WithUser stores u in ctx.
func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFromCtx returns the authenticated user, if any.
func UserFromCtx(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(userKey{}).(User)
	return u, ok
}

// BearerToken extracts the token from an "Authorization: Bearer <t>" header.
func BearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Authenticate verifies the bearer token, resolves the user and stores it in
// the request context. Any failure is a 401.
func Authenticate(iss *auth.Issuer, resolve UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				response.Error(w, http.StatusUnauthorized, "Not authenticated")
				return
			}

			claims, err := iss.VerifyToken(token)
			if err != nil {
				logger.WithCtx(r.Context()).Debug("token rejected", "error", err)
				response.Error(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			u, err := resolve(r.Context(), claims)
			if err != nil {
				if apperr.KindOf(err) == apperr.KindInternal {
					response.Fail(w, r, err)
					return
				}
				response.Fail(w, r, apperr.Unauthorized("Authenticated user missing from database!"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}
