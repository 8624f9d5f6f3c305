package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pixeldesk/backend/internal/domain"
)

const profileColumns = `uid, display_name, email, phone_number, photo_url, role, permissions, created_at, updated_at`

// CreateAccount inserts a new account row and returns the resulting
// profile. Accounts and profiles share the profiles table; credential
// columns never leave this file.
func (r *PostgresRepository) CreateAccount(ctx context.Context, params domain.CreateAccountParams) (*domain.Profile, error) {
	now := time.Now()
	profile := domain.Profile{
		UID:         uuid.New(),
		DisplayName: params.DisplayName,
		Email:       params.Email,
		PhotoURL:    params.PhotoURL,
		Role:        domain.RoleUser,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	query := `
		INSERT INTO profiles (uid, display_name, email, photo_url, role, password_hash, google_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	err := r.execWithRetry(ctx, query,
		profile.UID, profile.DisplayName, profile.Email, profile.PhotoURL,
		string(profile.Role), params.PasswordHash, params.GoogleID,
		profile.CreatedAt, profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetAccountByEmail returns the profile for an email, or nil when absent.
func (r *PostgresRepository) GetAccountByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE LOWER(email) = LOWER($1)`
	profile, err := scanProfile(r.db.QueryRow(ctx, query, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return profile, err
}

// GetAccountByGoogleID returns the profile linked to a Google subject id,
// or nil when absent.
func (r *PostgresRepository) GetAccountByGoogleID(ctx context.Context, googleID string) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE google_id = $1`
	profile, err := scanProfile(r.db.QueryRow(ctx, query, googleID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return profile, err
}

// GetAccountWithPassword returns the profile and its stored password
// hash. The hash is empty for Google-only accounts.
func (r *PostgresRepository) GetAccountWithPassword(ctx context.Context, email string) (*domain.Profile, string, error) {
	query := `
		SELECT uid, display_name, email, phone_number, photo_url, role, permissions, created_at, updated_at, password_hash
		FROM profiles WHERE LOWER(email) = LOWER($1)
	`
	var p domain.Profile
	var role string
	var phoneNumber, photoURL, passwordHash *string
	var permissions map[string]bool

	err := r.db.QueryRow(ctx, query, email).Scan(
		&p.UID, &p.DisplayName, &p.Email, &phoneNumber, &photoURL,
		&role, &permissions, &p.CreatedAt, &p.UpdatedAt, &passwordHash,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", err
	}

	p.Role = domain.Role(role)
	p.Permissions = permissions
	if phoneNumber != nil {
		p.PhoneNumber = *phoneNumber
	}
	if photoURL != nil {
		p.PhotoURL = *photoURL
	}
	hash := ""
	if passwordHash != nil {
		hash = *passwordHash
	}
	return &p, hash, nil
}

// LinkGoogleAccount attaches a Google subject id to an existing account.
func (r *PostgresRepository) LinkGoogleAccount(ctx context.Context, uid uuid.UUID, googleID string) error {
	return r.execWithRetry(ctx, `UPDATE profiles SET google_id = $1, updated_at = NOW() WHERE uid = $2`, googleID, uid)
}

// AccountExistsByEmail reports whether an account with the email exists.
func (r *PostgresRepository) AccountExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM profiles WHERE LOWER(email) = LOWER($1))`, email).Scan(&exists)
	return exists, err
}

// GetProfile returns one profile, or nil when absent.
func (r *PostgresRepository) GetProfile(ctx context.Context, uid uuid.UUID) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE uid = $1`
	profile, err := scanProfile(r.db.QueryRow(ctx, query, uid))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return profile, err
}

// CreateProfile inserts a profile row without credentials. Used for
// first sign-in through an already-verified identity.
func (r *PostgresRepository) CreateProfile(ctx context.Context, profile domain.Profile) error {
	query := `
		INSERT INTO profiles (uid, display_name, email, phone_number, photo_url, role, permissions, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	return r.execWithRetry(ctx, query,
		profile.UID, profile.DisplayName, profile.Email, profile.PhoneNumber,
		profile.PhotoURL, string(profile.Role), profile.Permissions,
		profile.CreatedAt, profile.UpdatedAt,
	)
}

// UpsertProfile overwrites the profile fields, creating the row if
// absent. Credential columns are left untouched.
func (r *PostgresRepository) UpsertProfile(ctx context.Context, profile domain.Profile) error {
	query := `
		INSERT INTO profiles (uid, display_name, email, phone_number, photo_url, role, permissions, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (uid) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			email = EXCLUDED.email,
			phone_number = EXCLUDED.phone_number,
			photo_url = EXCLUDED.photo_url,
			role = EXCLUDED.role,
			permissions = EXCLUDED.permissions,
			updated_at = EXCLUDED.updated_at
	`
	return r.execWithRetry(ctx, query,
		profile.UID, profile.DisplayName, profile.Email, profile.PhoneNumber,
		profile.PhotoURL, string(profile.Role), profile.Permissions,
		profile.CreatedAt, profile.UpdatedAt,
	)
}

// ListProfiles returns every profile, newest first.
func (r *PostgresRepository) ListProfiles(ctx context.Context) ([]domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []domain.Profile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *profile)
	}
	return profiles, rows.Err()
}

// RoleTemplate returns the stored permission template for a role, or nil
// when none is stored.
func (r *PostgresRepository) RoleTemplate(ctx context.Context, role domain.Role) (map[string]bool, error) {
	var permissions map[string]bool
	err := r.db.QueryRow(ctx, `SELECT permissions FROM role_templates WHERE role = $1`, string(role)).Scan(&permissions)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return permissions, nil
}

// UpdatePushToken stores the device push token for admin alerts.
func (r *PostgresRepository) UpdatePushToken(ctx context.Context, uid uuid.UUID, token string) error {
	return r.execWithRetry(ctx, `UPDATE profiles SET push_token = $1, updated_at = NOW() WHERE uid = $2`, token, uid)
}

// CreateRefreshToken stores a hashed refresh token.
func (r *PostgresRepository) CreateRefreshToken(ctx context.Context, token domain.StoredRefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, revoked, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	return r.execWithRetry(ctx, query,
		token.ID, token.UserID, token.TokenHash, token.ExpiresAt, token.Revoked, token.CreatedAt,
	)
}

// GetRefreshTokenByHash returns a stored refresh token, or nil when the
// hash is unknown or the token has expired.
func (r *PostgresRepository) GetRefreshTokenByHash(ctx context.Context, hash string) (*domain.StoredRefreshToken, error) {
	query := `
		SELECT id, user_id, token_hash, expires_at, revoked, created_at
		FROM refresh_tokens WHERE token_hash = $1 AND expires_at > NOW()
	`
	var t domain.StoredRefreshToken
	err := r.db.QueryRow(ctx, query, hash).Scan(
		&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.Revoked, &t.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// RevokeRefreshToken marks one token revoked.
func (r *PostgresRepository) RevokeRefreshToken(ctx context.Context, id uuid.UUID) error {
	return r.execWithRetry(ctx, `UPDATE refresh_tokens SET revoked = true WHERE id = $1`, id)
}

// RevokeRefreshTokenByHash marks the token with the given hash revoked.
func (r *PostgresRepository) RevokeRefreshTokenByHash(ctx context.Context, hash string) error {
	return r.execWithRetry(ctx, `UPDATE refresh_tokens SET revoked = true WHERE token_hash = $1`, hash)
}

// RevokeUserRefreshTokens revokes every token issued to a user.
func (r *PostgresRepository) RevokeUserRefreshTokens(ctx context.Context, uid uuid.UUID) error {
	return r.execWithRetry(ctx, `UPDATE refresh_tokens SET revoked = true WHERE user_id = $1`, uid)
}

// CreateLoginRecord inserts a sign-in audit entry.
func (r *PostgresRepository) CreateLoginRecord(ctx context.Context, record domain.LoginRecord) error {
	query := `
		INSERT INTO login_records (id, user_id, email, method, ip_address, user_agent, success, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	return r.execWithRetry(ctx, query,
		record.ID, record.UserID, record.Email, record.Method,
		record.IPAddress, record.UserAgent, record.Success, record.CreatedAt,
	)
}

// ListLoginRecords returns recent sign-in audit entries, newest first.
func (r *PostgresRepository) ListLoginRecords(ctx context.Context, limit int) ([]domain.LoginRecord, error) {
	query := `
		SELECT id, user_id, email, method, ip_address, user_agent, success, created_at
		FROM login_records ORDER BY created_at DESC LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.LoginRecord
	for rows.Next() {
		var rec domain.LoginRecord
		var ipAddress, userAgent *string
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Email, &rec.Method, &ipAddress, &userAgent, &rec.Success, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if ipAddress != nil {
			rec.IPAddress = *ipAddress
		}
		if userAgent != nil {
			rec.UserAgent = *userAgent
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanProfile(row pgx.Row) (*domain.Profile, error) {
	var p domain.Profile
	var role string
	var phoneNumber, photoURL *string
	var permissions map[string]bool

	err := row.Scan(
		&p.UID, &p.DisplayName, &p.Email, &phoneNumber, &photoURL,
		&role, &permissions, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Role = domain.Role(role)
	p.Permissions = permissions
	if phoneNumber != nil {
		p.PhoneNumber = *phoneNumber
	}
	if photoURL != nil {
		p.PhotoURL = *photoURL
	}
	return &p, nil
}
