package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/velimirr/pinmap-api/internal/models"
	"github.com/velimirr/pinmap-api/internal/oauth"
	"github.com/velimirr/pinmap-api/internal/services"
)

// POIServiceInterface defines the methods used by handlers from POIService
type POIServiceInterface interface {
	Create(ctx context.Context, actorID uuid.UUID, input services.CreatePOIInput) (*models.POI, error)
	GetByID(ctx context.Context, id int) (*models.POI, error)
	Update(ctx context.Context, actorID uuid.UUID, id int, patch services.UpdatePOIPatch) (*models.POI, error)
	Delete(ctx context.Context, actorID uuid.UUID, id int) error
	List(ctx context.Context) ([]models.POI, error)
	Export(ctx context.Context) ([]models.ExportRecord, error)
}

// UserServiceInterface defines the methods used by handlers from UserService
type UserServiceInterface interface {
	FindOrCreateFromOAuth(ctx context.Context, info *oauth.UserInfo) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, firstName, lastName *string) (*models.User, error)
}

// TokenServiceInterface defines the methods used by handlers from TokenService
type TokenServiceInterface interface {
	StoreRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	ValidateRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error
}

// JWTServiceInterface defines the methods used by handlers from JWTService
type JWTServiceInterface interface {
	GenerateTokenPair(userID uuid.UUID, email, role string) (*services.TokenPair, error)
	ValidateRefreshToken(token string) (uuid.UUID, error)
	RefreshExpiry() time.Duration
}
