package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveAccessPrecedence(t *testing.T) {
	profile := Profile{
		Email: "kim@example.com",
		Role:  RoleUser,
		Permissions: map[string]bool{
			PermCreateBooking: false, // user override beats everything
			PermManageTheme:   true,
		},
	}
	template := map[string]bool{
		PermCreateBooking: true,
		PermPostForum:     false, // template beats the defaults
	}

	access := ResolveAccess(profile, template, "admin@example.com")

	assert.Equal(t, RoleUser, access.Role)
	assert.False(t, access.IsAdmin)
	assert.False(t, access.HasPermission(PermCreateBooking), "per-user override wins over template")
	assert.False(t, access.HasPermission(PermPostForum), "template wins over defaults")
	assert.True(t, access.HasPermission(PermManageTheme), "per-user grant applies")
	assert.True(t, access.HasPermission(PermCreateReview), "untouched defaults survive")
}

func TestResolveAccessAdminEmailOverride(t *testing.T) {
	profile := Profile{Email: "  Admin@Example.COM ", Role: RoleUser}

	access := ResolveAccess(profile, nil, "admin@example.com")

	assert.True(t, access.IsAdmin)
	assert.True(t, access.IsAdminAuthenticated)
	assert.Equal(t, RoleAdmin, access.Role)
	assert.True(t, access.HasPermission(PermViewAuditLog), "admins hold every permission")
}

func TestResolveAccessModeratorFallback(t *testing.T) {
	profile := Profile{Email: "mod@example.com", Role: RoleModerator}

	// No stored template: the built-in moderator set applies.
	access := ResolveAccess(profile, nil, "admin@example.com")
	assert.True(t, access.HasPermission(PermModerateReviews))
	assert.True(t, access.HasPermission(PermManageBookings))
	assert.False(t, access.IsAdmin)

	// Stored template replaces the built-in set.
	access = ResolveAccess(profile, map[string]bool{PermModerateForum: true}, "admin@example.com")
	assert.True(t, access.HasPermission(PermModerateForum))
	assert.False(t, access.HasPermission(PermModerateReviews))
}

func TestResolveAccessInvalidRole(t *testing.T) {
	profile := Profile{Email: "x@example.com", Role: Role("superuser")}

	access := ResolveAccess(profile, nil, "")

	assert.Equal(t, RoleUser, access.Role)
	assert.False(t, access.IsAdmin)
}

func TestHasPermissionDefaultsFalse(t *testing.T) {
	var access ResolvedAccess

	assert.False(t, access.HasPermission(PermSendMessage), "zero value grants nothing")
}
