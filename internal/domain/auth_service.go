package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pixeldesk/backend/internal/auth"
	"github.com/pixeldesk/backend/pkg/validator"
)

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenRevoked       = errors.New("token has been revoked")
)

// StoredRefreshToken is a persisted, hashed refresh token.
type StoredRefreshToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}

// CreateAccountParams holds parameters for account creation.
type CreateAccountParams struct {
	Email        string
	PasswordHash *string
	DisplayName  string
	GoogleID     *string
	PhotoURL     string
}

// AuthRepository defines credential and token data access. Accounts and
// profiles share a record; credential columns are only reachable here.
type AuthRepository interface {
	CreateAccount(ctx context.Context, params CreateAccountParams) (*Profile, error)
	GetAccountByEmail(ctx context.Context, email string) (*Profile, error)
	GetAccountByGoogleID(ctx context.Context, googleID string) (*Profile, error)
	GetAccountWithPassword(ctx context.Context, email string) (*Profile, string, error)
	LinkGoogleAccount(ctx context.Context, uid uuid.UUID, googleID string) error
	AccountExistsByEmail(ctx context.Context, email string) (bool, error)

	CreateRefreshToken(ctx context.Context, token StoredRefreshToken) error
	GetRefreshTokenByHash(ctx context.Context, hash string) (*StoredRefreshToken, error)
	RevokeRefreshToken(ctx context.Context, id uuid.UUID) error
	RevokeRefreshTokenByHash(ctx context.Context, hash string) error
	RevokeUserRefreshTokens(ctx context.Context, uid uuid.UUID) error

	CreateLoginRecord(ctx context.Context, record LoginRecord) error
	ListLoginRecords(ctx context.Context, limit int) ([]LoginRecord, error)
}

// AuthService handles sign-in, sign-up, and token lifecycle.
type AuthService struct {
	repo     AuthRepository
	profiles *ProfileService
	jwt      *auth.JWTManager
	google   *auth.GoogleAuthVerifier
	logger   *zap.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(repo AuthRepository, profiles *ProfileService, jwt *auth.JWTManager, google *auth.GoogleAuthVerifier, logger *zap.Logger) *AuthService {
	return &AuthService{
		repo:     repo,
		profiles: profiles,
		jwt:      jwt,
		google:   google,
		logger:   logger,
	}
}

// SignInResult is returned by every successful sign-in path.
type SignInResult struct {
	Profile      *Profile       `json:"profile"`
	Access       ResolvedAccess `json:"-"`
	Role         Role           `json:"role"`
	IsAdmin      bool           `json:"is_admin"`
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	IsNewUser    bool           `json:"is_new_user,omitempty"`
}

// Register creates a new account with email/password.
func (s *AuthService) Register(ctx context.Context, email, password, displayName string) (*SignInResult, error) {
	email = validator.SanitizeEmail(email)
	if !validator.ValidateEmail(email) {
		return nil, ErrInvalidCredentials
	}
	if errs := validator.ValidatePassword(password); errs.HasErrors() {
		return nil, errs
	}

	exists, err := s.repo.AccountExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserAlreadyExists
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	profile, err := s.repo.CreateAccount(ctx, CreateAccountParams{
		Email:        email,
		PasswordHash: &passwordHash,
		DisplayName:  validator.SanitizeString(displayName, 100),
	})
	if err != nil {
		return nil, err
	}

	result, err := s.issueTokens(ctx, profile, false)
	if err != nil {
		return nil, err
	}
	s.recordLogin(ctx, &profile.UID, email, "password", true)
	return result, nil
}

// Login authenticates with email/password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*SignInResult, error) {
	email = validator.SanitizeEmail(email)

	profile, passwordHash, err := s.repo.GetAccountWithPassword(ctx, email)
	if err != nil || profile == nil || passwordHash == "" {
		s.recordLogin(ctx, nil, email, "password", false)
		return nil, ErrInvalidCredentials
	}

	if err := auth.VerifyPassword(password, passwordHash); err != nil {
		s.recordLogin(ctx, &profile.UID, email, "password", false)
		return nil, ErrInvalidCredentials
	}

	result, err := s.issueTokens(ctx, profile, false)
	if err != nil {
		return nil, err
	}
	s.recordLogin(ctx, &profile.UID, email, "password", true)
	return result, nil
}

// GoogleLogin authenticates with a Google ID token, creating the account
// and its profile on first sign-in.
func (s *AuthService) GoogleLogin(ctx context.Context, idToken string) (*SignInResult, error) {
	googleUser, err := s.google.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}

	isNewUser := false
	profile, err := s.repo.GetAccountByGoogleID(ctx, googleUser.GoogleID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		profile, err = s.repo.GetAccountByEmail(ctx, validator.SanitizeEmail(googleUser.Email))
		if err != nil {
			return nil, err
		}
		if profile == nil {
			googleID := googleUser.GoogleID
			profile, err = s.repo.CreateAccount(ctx, CreateAccountParams{
				Email:       validator.SanitizeEmail(googleUser.Email),
				DisplayName: googleUser.Name,
				GoogleID:    &googleID,
				PhotoURL:    googleUser.Picture,
			})
			if err != nil {
				return nil, err
			}
			isNewUser = true
		} else if err := s.repo.LinkGoogleAccount(ctx, profile.UID, googleUser.GoogleID); err != nil {
			return nil, err
		}
	}

	result, err := s.issueTokens(ctx, profile, isNewUser)
	if err != nil {
		return nil, err
	}
	s.recordLogin(ctx, &profile.UID, profile.Email, "google", true)
	return result, nil
}

// Refresh validates and rotates a refresh token. A revoked token being
// replayed revokes the whole family.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*SignInResult, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	stored, err := s.repo.GetRefreshTokenByHash(ctx, auth.HashToken(refreshToken))
	if err != nil || stored == nil {
		return nil, ErrTokenRevoked
	}
	if stored.Revoked {
		_ = s.repo.RevokeUserRefreshTokens(ctx, claims.UserID)
		return nil, ErrTokenRevoked
	}
	_ = s.repo.RevokeRefreshToken(ctx, stored.ID)

	profile, err := s.profiles.GetOrCreate(ctx, claims.UserID, "", claims.Email, "")
	if err != nil {
		return nil, err
	}
	return s.issueTokens(ctx, profile, false)
}

// Logout revokes a refresh token.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.repo.RevokeRefreshTokenByHash(ctx, auth.HashToken(refreshToken))
}

// LogoutAll revokes every refresh token for a user.
func (s *AuthService) LogoutAll(ctx context.Context, uid uuid.UUID) error {
	return s.repo.RevokeUserRefreshTokens(ctx, uid)
}

// LoginRecords returns recent sign-in audit entries, newest first.
func (s *AuthService) LoginRecords(ctx context.Context, limit int) ([]LoginRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.repo.ListLoginRecords(ctx, limit)
}

func (s *AuthService) issueTokens(ctx context.Context, profile *Profile, isNewUser bool) (*SignInResult, error) {
	access := s.profiles.Resolve(ctx, profile.UID, profile.Email)

	tokenPair, err := s.jwt.GenerateTokenPair(profile.UID, profile.Email, string(access.Role))
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateRefreshToken(ctx, StoredRefreshToken{
		ID:        uuid.New(),
		UserID:    profile.UID,
		TokenHash: auth.HashToken(tokenPair.RefreshToken),
		ExpiresAt: tokenPair.ExpiresAt,
		CreatedAt: time.Now(),
	}); err != nil {
		return nil, err
	}

	return &SignInResult{
		Profile:      profile,
		Access:       access,
		Role:         access.Role,
		IsAdmin:      access.IsAdmin,
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		IsNewUser:    isNewUser,
	}, nil
}

func (s *AuthService) recordLogin(ctx context.Context, uid *uuid.UUID, email, method string, success bool) {
	record := LoginRecord{
		ID:        uuid.New(),
		UserID:    uid,
		Email:     email,
		Method:    method,
		Success:   success,
		CreatedAt: time.Now(),
	}
	if err := s.repo.CreateLoginRecord(ctx, record); err != nil {
		s.logger.Warn("write login record", zap.String("method", method), zap.Error(err))
	}
}
