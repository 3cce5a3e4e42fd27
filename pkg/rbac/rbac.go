// Package rbac maps roles to permissions and gates handlers on them.
//
// The table is static. Allowed is a total function over every
// (role, permission) pair: unknown roles are denied, "*" grants all.
package rbac

import (
	"net/http"
	"slices"

	"github.com/shashiranjanraj/propelyu/pkg/apperr"
	"github.com/shashiranjanraj/propelyu/pkg/middleware"
	"github.com/shashiranjanraj/propelyu/pkg/response"
)

const (
	RoleAdmin  = "admin"
	RoleVendor = "vendor"
	RoleGuest  = "guest"
)

// Roles lists every known role.
var Roles = []string{RoleAdmin, RoleVendor, RoleGuest}

// Permission names.
const (
	PostAdvert        = "post_advert"
	GetAllAdverts     = "get_all_adverts"
	GetVendorAdverts  = "get_vendor_adverts"
	GetAdvertByID     = "get_advert_by_id"
	GetSimilarAdverts = "get_similar_adverts"
	UpdateAdvert      = "update_advert"
	DeleteAdvert      = "delete_advert"
	RetrainModel      = "retrain_model"
)

// Permissions lists every permission the application checks.
var Permissions = []string{
	PostAdvert, GetAllAdverts, GetVendorAdverts, GetAdvertByID,
	GetSimilarAdverts, UpdateAdvert, DeleteAdvert, RetrainModel,
}

const wildcard = "*"

var table = map[string][]string{
	RoleAdmin: {wildcard},
	RoleVendor: {
		PostAdvert, GetAllAdverts, GetVendorAdverts, GetAdvertByID,
		GetSimilarAdverts, UpdateAdvert, DeleteAdvert,
	},
	RoleGuest: {GetAllAdverts, GetAdvertByID, GetSimilarAdverts},
}

// Allowed reports whether role grants permission.
func Allowed(role, permission string) bool {
	perms, ok := table[role]
	if !ok {
		return false
	}
	return slices.Contains(perms, wildcard) || slices.Contains(perms, permission)
}

// ValidRole reports whether role is one of Roles.
func ValidRole(role string) bool {
	return slices.Contains(Roles, role)
}

// RequireRole returns a Forbidden error unless role is in allowed.
func RequireRole(role string, allowed ...string) error {
	if slices.Contains(allowed, role) {
		return nil
	}
	return apperr.Forbidden("Access denied!")
}

// RequirePermission returns a Forbidden error unless role grants permission.
func RequirePermission(role, permission string) error {
	if Allowed(role, permission) {
		return nil
	}
	return apperr.Forbidden("Permission denied")
}

// CanModify reports whether a user may change a resource owned by ownerID:
// admins always, everyone else only their own.
func CanModify(userID, role, ownerID string) bool {
	return role == RoleAdmin || (userID != "" && userID == ownerID)
}

// HasRole returns middleware that allows access only to users with one of
// the given roles. middleware.Authenticate must run first.
func HasRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := middleware.UserFromCtx(r.Context())
			if !ok {
				response.Unauthorized(w)
				return
			}
			if err := RequireRole(u.Role, roles...); err != nil {
				response.Fail(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// HasPermission returns middleware that allows access only to roles granting p.
func HasPermission(p string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := middleware.UserFromCtx(r.Context())
			if !ok {
				response.Unauthorized(w)
				return
			}
			if err := RequirePermission(u.Role, p); err != nil {
				response.Fail(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
