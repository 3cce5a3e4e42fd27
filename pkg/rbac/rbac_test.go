package rbac_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/propelyu/pkg/apperr"
	"github.com/shashiranjanraj/propelyu/pkg/middleware"
	"github.com/shashiranjanraj/propelyu/pkg/rbac"
)

func TestAllowedIsTotal(t *testing.T) {
	vendor := []string{
		rbac.PostAdvert, rbac.GetAllAdverts, rbac.GetVendorAdverts, rbac.GetAdvertByID,
		rbac.GetSimilarAdverts, rbac.UpdateAdvert, rbac.DeleteAdvert,
	}
	guest := []string{rbac.GetAllAdverts, rbac.GetAdvertByID, rbac.GetSimilarAdverts}

	for _, role := range rbac.Roles {
		for _, perm := range rbac.Permissions {
			var want bool
			switch role {
			case rbac.RoleAdmin:
				want = true
			case rbac.RoleVendor:
				want = slices.Contains(vendor, perm)
			case rbac.RoleGuest:
				want = slices.Contains(guest, perm)
			}
			assert.Equal(t, want, rbac.Allowed(role, perm), "%s/%s", role, perm)
		}
	}
}

func TestAllowedUnknownRoleDenied(t *testing.T) {
	for _, perm := range rbac.Permissions {
		assert.False(t, rbac.Allowed("superuser", perm))
		assert.False(t, rbac.Allowed("", perm))
	}
}

func TestVendorLacksPermissionIsDenied(t *testing.T) {
	// A role match without the permission must deny, not fall through.
	err := rbac.RequirePermission(rbac.RoleVendor, rbac.RetrainModel)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	assert.NoError(t, rbac.RequirePermission(rbac.RoleGuest, rbac.GetAdvertByID))
}

func TestRequireRole(t *testing.T) {
	assert.NoError(t, rbac.RequireRole(rbac.RoleVendor, rbac.RoleVendor, rbac.RoleAdmin))
	assert.ErrorIs(t, rbac.RequireRole(rbac.RoleGuest, rbac.RoleVendor, rbac.RoleAdmin), apperr.ErrForbidden)
}

func TestCanModify(t *testing.T) {
	assert.True(t, rbac.CanModify("u1", rbac.RoleVendor, "u1"))
	assert.False(t, rbac.CanModify("u2", rbac.RoleVendor, "u1"))
	assert.True(t, rbac.CanModify("u2", rbac.RoleAdmin, "u1"))
	assert.False(t, rbac.CanModify("", rbac.RoleGuest, ""))
}

func TestHasRoleMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := rbac.HasRole(rbac.RoleVendor)(ok)

	run := func(ctx context.Context) int {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusUnauthorized, run(context.Background()))
	guest := middleware.WithUser(context.Background(), middleware.User{ID: "g", Role: rbac.RoleGuest})
	assert.Equal(t, http.StatusForbidden, run(guest))
	vendor := middleware.WithUser(context.Background(), middleware.User{ID: "v", Role: rbac.RoleVendor})
	assert.Equal(t, http.StatusNoContent, run(vendor))
}
