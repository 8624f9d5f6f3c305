package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is the coarse-grained permission bucket.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// Profile is the stored per-user record created on first sign-in.
// Permissions holds per-user overrides; nil means no overrides and the
// role template applies.
type Profile struct {
	UID         uuid.UUID       `json:"uid"`
	DisplayName string          `json:"display_name"`
	Email       string          `json:"email"`
	PhoneNumber string          `json:"phone_number,omitempty"`
	PhotoURL    string          `json:"photo_url,omitempty"`
	Role        Role            `json:"role"`
	Permissions map[string]bool `json:"permissions,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Permission names used across the site.
const (
	PermCreateBooking   = "createBooking"
	PermCreateReview    = "createReview"
	PermSendMessage     = "sendMessage"
	PermPostForum       = "postForum"
	PermModerateReviews = "moderateReviews"
	PermModerateForum   = "moderateForum"
	PermManageBookings  = "manageBookings"
	PermManageTheme     = "manageTheme"
	PermViewAuditLog    = "viewAuditLog"
)

// DefaultUserPermissions is the permission template assigned to a freshly
// created profile and used as the final fallback during resolution.
func DefaultUserPermissions() map[string]bool {
	return map[string]bool{
		PermCreateBooking: true,
		PermCreateReview:  true,
		PermSendMessage:   true,
		PermPostForum:     true,
	}
}

// ModeratorPermissions is the built-in template for the moderator role,
// used when no stored role template exists.
func ModeratorPermissions() map[string]bool {
	perms := DefaultUserPermissions()
	perms[PermModerateReviews] = true
	perms[PermModerateForum] = true
	perms[PermManageBookings] = true
	return perms
}

// ResolvedAccess is the effective authorization state for a signed-in
// user, derived from the stored profile, the role template, and the
// configured admin email.
type ResolvedAccess struct {
	Role                 Role
	IsAdmin              bool
	IsAdminAuthenticated bool
	Permissions          map[string]bool
}

// ResolveAccess derives the effective role and permission map.
// Precedence: per-user overrides in the profile beat the role template,
// which beats the built-in user defaults. A profile whose email matches
// adminEmail is admin regardless of its stored role, and that also flips
// the legacy console-authenticated flag.
func ResolveAccess(profile Profile, roleTemplate map[string]bool, adminEmail string) ResolvedAccess {
	role := profile.Role
	if !role.Valid() {
		role = RoleUser
	}

	isAdmin := role == RoleAdmin
	if adminEmail != "" && strings.EqualFold(strings.TrimSpace(profile.Email), adminEmail) {
		isAdmin = true
		role = RoleAdmin
	}

	perms := make(map[string]bool)
	for name, allowed := range DefaultUserPermissions() {
		perms[name] = allowed
	}
	if roleTemplate != nil {
		for name, allowed := range roleTemplate {
			perms[name] = allowed
		}
	} else if role == RoleModerator {
		for name, allowed := range ModeratorPermissions() {
			perms[name] = allowed
		}
	}
	for name, allowed := range profile.Permissions {
		perms[name] = allowed
	}

	return ResolvedAccess{
		Role:                 role,
		IsAdmin:              isAdmin,
		IsAdminAuthenticated: isAdmin,
		Permissions:          perms,
	}
}

// HasPermission reports whether the permission is granted. Admins hold
// every permission unconditionally; everyone else gets the stored value,
// defaulting to false when absent.
func (a ResolvedAccess) HasPermission(name string) bool {
	if a.IsAdmin {
		return true
	}
	return a.Permissions[name]
}
