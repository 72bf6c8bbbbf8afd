package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/velimirr/pinmap-api/internal/database"
	"github.com/velimirr/pinmap-api/internal/models"
	"github.com/velimirr/pinmap-api/internal/oauth"
)

type UserService struct {
	db *database.DB
}

func NewUserService(db *database.DB) *UserService {
	return &UserService{db: db}
}

// FindOrCreateFromOAuth upserts the user record for a completed OAuth
// login. New users get the database default role (Viewer); an existing
// user's role is never touched here.
func (s *UserService) FindOrCreateFromOAuth(ctx context.Context, info *oauth.UserInfo) (*models.User, error) {
	var user models.User
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, email, first_name, last_name, profile_image_url, role, provider, provider_id, created_at, updated_at
		FROM users
		WHERE provider = $1 AND provider_id = $2
	`, info.Provider, info.ID).Scan(
		&user.ID, &user.Email, &user.FirstName, &user.LastName, &user.ProfileImageURL,
		&user.Role, &user.Provider, &user.ProviderID, &user.CreatedAt, &user.UpdatedAt,
	)

	if err == nil {
		if user.Email != info.Email || (user.ProfileImageURL == nil && info.AvatarURL != "") {
			_, _ = s.db.Pool.Exec(ctx, `
				UPDATE users SET email = $1, profile_image_url = $2, updated_at = NOW()
				WHERE id = $3
			`, info.Email, nullableString(info.AvatarURL), user.ID)
			user.Email = info.Email
			if info.AvatarURL != "" {
				user.ProfileImageURL = &info.AvatarURL
			}
		}
		return &user, nil
	}

	err = s.db.Pool.QueryRow(ctx, `
		INSERT INTO users (email, first_name, last_name, profile_image_url, provider, provider_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, email, first_name, last_name, profile_image_url, role, provider, provider_id, created_at, updated_at
	`, info.Email, nullableString(info.FirstName), nullableString(info.LastName),
		nullableString(info.AvatarURL), info.Provider, info.ID).Scan(
		&user.ID, &user.Email, &user.FirstName, &user.LastName, &user.ProfileImageURL,
		&user.Role, &user.Provider, &user.ProviderID, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, email, first_name, last_name, profile_image_url, role, provider, provider_id, created_at, updated_at
		FROM users WHERE id = $1
	`, id).Scan(
		&user.ID, &user.Email, &user.FirstName, &user.LastName, &user.ProfileImageURL,
		&user.Role, &user.Provider, &user.ProviderID, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, email, first_name, last_name, profile_image_url, role, provider, provider_id, created_at, updated_at
		FROM users WHERE email = $1
	`, email).Scan(
		&user.ID, &user.Email, &user.FirstName, &user.LastName, &user.ProfileImageURL,
		&user.Role, &user.Provider, &user.ProviderID, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile patches the display name fields. Nil means "leave
// unchanged", so a single-field patch never erases the other.
func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, firstName, lastName *string) (*models.User, error) {
	var user models.User
	err := s.db.Pool.QueryRow(ctx, `
		UPDATE users
		SET first_name = COALESCE($1, first_name), last_name = COALESCE($2, last_name), updated_at = NOW()
		WHERE id = $3
		RETURNING id, email, first_name, last_name, profile_image_url, role, provider, provider_id, created_at, updated_at
	`, firstName, lastName, id).Scan(
		&user.ID, &user.Email, &user.FirstName, &user.LastName, &user.ProfileImageURL,
		&user.Role, &user.Provider, &user.ProviderID, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
