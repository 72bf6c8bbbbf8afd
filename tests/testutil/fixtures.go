package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/velimirr/pinmap-api/internal/database"
	"github.com/velimirr/pinmap-api/internal/models"
)

// Fixtures provides factory methods for creating test data
type Fixtures struct {
	db      *database.DB
	counter int
}

// NewFixtures creates a new fixtures factory
func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// CreateUser creates a test user with default values
func (f *Fixtures) CreateUser(t *testing.T, opts ...UserOption) *models.User {
	t.Helper()
	f.counter++

	user := &models.User{
		Email:      fmt.Sprintf("user%d@example.com", f.counter),
		Role:       models.RoleViewer,
		Provider:   "github",
		ProviderID: fmt.Sprintf("provider-%d", f.counter),
	}

	for _, opt := range opts {
		opt(user)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO users (email, first_name, last_name, role, provider, provider_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, email, first_name, last_name, profile_image_url, role, provider, provider_id, created_at, updated_at
	`, user.Email, user.FirstName, user.LastName, user.Role, user.Provider, user.ProviderID).Scan(
		&user.ID, &user.Email, &user.FirstName, &user.LastName, &user.ProfileImageURL,
		&user.Role, &user.Provider, &user.ProviderID, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user
}

// UserOption configures a test user
type UserOption func(*models.User)

// WithEmail sets the user's email
func WithEmail(email string) UserOption {
	return func(u *models.User) {
		u.Email = email
	}
}

// WithRole sets the user's role
func WithRole(role string) UserOption {
	return func(u *models.User) {
		u.Role = role
	}
}

// WithProvider sets the user's OAuth provider
func WithProvider(provider, providerID string) UserOption {
	return func(u *models.User) {
		u.Provider = provider
		u.ProviderID = providerID
	}
}

// CreatePOI creates a test POI owned by the given user
func (f *Fixtures) CreatePOI(t *testing.T, owner *models.User, opts ...POIOption) *models.POI {
	t.Helper()
	f.counter++

	poi := &models.POI{
		Name:      fmt.Sprintf("Test POI %d", f.counter),
		Type:      models.CategoryMeetingPoint,
		Latitude:  45.0,
		Longitude: 20.0,
		CreatedBy: owner.ID,
	}

	for _, opt := range opts {
		opt(poi)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO pois (name, type, description, latitude, longitude, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, name, type, description, latitude, longitude, created_by, created_at, updated_at
	`, poi.Name, poi.Type, poi.Description, poi.Latitude, poi.Longitude, poi.CreatedBy).Scan(
		&poi.ID, &poi.Name, &poi.Type, &poi.Description,
		&poi.Latitude, &poi.Longitude, &poi.CreatedBy, &poi.CreatedAt, &poi.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create poi: %v", err)
	}

	return poi
}

// POIOption configures a test POI
type POIOption func(*models.POI)

// WithPOIName sets the POI's name
func WithPOIName(name string) POIOption {
	return func(p *models.POI) {
		p.Name = name
	}
}

// WithPOIType sets the POI's category
func WithPOIType(category string) POIOption {
	return func(p *models.POI) {
		p.Type = category
	}
}

// WithCoordinates sets the POI's position
func WithCoordinates(lat, lng float64) POIOption {
	return func(p *models.POI) {
		p.Latitude = lat
		p.Longitude = lng
	}
}

// WithDescription sets the POI's description
func WithDescription(desc string) POIOption {
	return func(p *models.POI) {
		p.Description = &desc
	}
}
