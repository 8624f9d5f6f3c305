package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pixeldesk/backend/pkg/validator"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidRole     = errors.New("invalid role")
)

// ProfileRepository defines profile and role-template data access.
type ProfileRepository interface {
	GetProfile(ctx context.Context, uid uuid.UUID) (*Profile, error)
	CreateProfile(ctx context.Context, profile Profile) error
	UpsertProfile(ctx context.Context, profile Profile) error
	ListProfiles(ctx context.Context) ([]Profile, error)
	// RoleTemplate returns the stored permission template for a role, or
	// nil when none is stored and the built-in template applies.
	RoleTemplate(ctx context.Context, role Role) (map[string]bool, error)
	UpdatePushToken(ctx context.Context, uid uuid.UUID, token string) error
}

// ProfileService resolves roles and permissions for signed-in users.
type ProfileService struct {
	repo       ProfileRepository
	adminEmail string
	logger     *zap.Logger
}

// NewProfileService creates a new profile service. adminEmail is the
// configured address that is always treated as admin.
func NewProfileService(repo ProfileRepository, adminEmail string, logger *zap.Logger) *ProfileService {
	return &ProfileService{
		repo:       repo,
		adminEmail: adminEmail,
		logger:     logger,
	}
}

// GetOrCreate fetches the profile for a user, creating it with the role
// `user` and the default permission set on first sign-in.
func (s *ProfileService) GetOrCreate(ctx context.Context, uid uuid.UUID, displayName, email, photoURL string) (*Profile, error) {
	profile, err := s.repo.GetProfile(ctx, uid)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		return profile, nil
	}

	now := time.Now()
	created := Profile{
		UID:         uid,
		DisplayName: validator.SanitizeString(displayName, 100),
		Email:       validator.SanitizeEmail(email),
		PhotoURL:    photoURL,
		Role:        RoleUser,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateProfile(ctx, created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Resolve computes the effective access for a user. Any failure during
// the lookup falls back to a minimal user profile so callers are never
// blocked on auth errors.
func (s *ProfileService) Resolve(ctx context.Context, uid uuid.UUID, email string) ResolvedAccess {
	profile, err := s.repo.GetProfile(ctx, uid)
	if err != nil || profile == nil {
		if err != nil {
			s.logger.Warn("profile lookup failed, falling back to minimal profile",
				zap.String("uid", uid.String()), zap.Error(err))
		}
		fallback := Profile{UID: uid, Email: email, Role: RoleUser}
		return ResolveAccess(fallback, nil, s.adminEmail)
	}

	template, err := s.repo.RoleTemplate(ctx, profile.Role)
	if err != nil {
		s.logger.Warn("role template lookup failed, using built-in template",
			zap.String("role", string(profile.Role)), zap.Error(err))
		template = nil
	}

	return ResolveAccess(*profile, template, s.adminEmail)
}

// SetRole elevates or demotes a user. Elevation to admin happens only
// through this call or the configured admin email match.
func (s *ProfileService) SetRole(ctx context.Context, uid uuid.UUID, role Role) error {
	if !role.Valid() {
		return ErrInvalidRole
	}

	profile, err := s.repo.GetProfile(ctx, uid)
	if err != nil {
		return err
	}
	if profile == nil {
		return ErrProfileNotFound
	}

	profile.Role = role
	profile.UpdatedAt = time.Now()
	return s.repo.UpsertProfile(ctx, *profile)
}

// SetPermission writes a per-user permission override.
func (s *ProfileService) SetPermission(ctx context.Context, uid uuid.UUID, name string, allowed bool) error {
	profile, err := s.repo.GetProfile(ctx, uid)
	if err != nil {
		return err
	}
	if profile == nil {
		return ErrProfileNotFound
	}

	if profile.Permissions == nil {
		profile.Permissions = make(map[string]bool)
	}
	profile.Permissions[name] = allowed
	profile.UpdatedAt = time.Now()
	return s.repo.UpsertProfile(ctx, *profile)
}

// UpdateProfile changes the user-editable fields.
func (s *ProfileService) UpdateProfile(ctx context.Context, uid uuid.UUID, displayName, phoneNumber, photoURL string) (*Profile, error) {
	profile, err := s.repo.GetProfile(ctx, uid)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}

	if name := validator.SanitizeString(displayName, 100); name != "" {
		profile.DisplayName = name
	}
	profile.PhoneNumber = validator.SanitizeString(phoneNumber, 30)
	if photoURL != "" {
		profile.PhotoURL = photoURL
	}
	profile.UpdatedAt = time.Now()

	if err := s.repo.UpsertProfile(ctx, *profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// List returns every profile for the admin console.
func (s *ProfileService) List(ctx context.Context) ([]Profile, error) {
	return s.repo.ListProfiles(ctx)
}

// UpdatePushToken stores the device push token used for admin alerts.
func (s *ProfileService) UpdatePushToken(ctx context.Context, uid uuid.UUID, token string) error {
	return s.repo.UpdatePushToken(ctx, uid, token)
}
