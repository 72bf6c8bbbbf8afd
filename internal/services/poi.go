package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/velimirr/pinmap-api/internal/database"
	"github.com/velimirr/pinmap-api/internal/models"
	"github.com/velimirr/pinmap-api/internal/policy"
)

var (
	ErrPOINotFound = errors.New("poi not found")
	ErrForbidden   = errors.New("insufficient permissions")
	ErrValidation  = errors.New("invalid poi data")
)

// UserLookup resolves the acting user so the policy can see an
// authoritative role, not whatever a stale token claims.
type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type POIService struct {
	db    *database.DB
	users UserLookup
}

func NewPOIService(db *database.DB, users UserLookup) *POIService {
	return &POIService{db: db, users: users}
}

type CreatePOIInput struct {
	Name        string
	Type        string
	Description *string
	Latitude    float64
	Longitude   float64
}

// UpdatePOIPatch carries only the fields the caller supplied. Nil means
// "leave unchanged".
type UpdatePOIPatch struct {
	Name        *string
	Type        *string
	Description *string
	Latitude    *float64
	Longitude   *float64
}

func (in CreatePOIInput) validate() error {
	if in.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if !models.ValidCategory(in.Type) {
		return fmt.Errorf("%w: unknown type %q", ErrValidation, in.Type)
	}
	if err := validateCoordinates(in.Latitude, in.Longitude); err != nil {
		return err
	}
	return nil
}

func (p UpdatePOIPatch) validate() error {
	if p.Name != nil && *p.Name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrValidation)
	}
	if p.Type != nil && !models.ValidCategory(*p.Type) {
		return fmt.Errorf("%w: unknown type %q", ErrValidation, *p.Type)
	}
	// Coordinates move as a pair; a marker with only one updated axis is
	// meaningless on the map.
	if (p.Latitude == nil) != (p.Longitude == nil) {
		return fmt.Errorf("%w: latitude and longitude must be supplied together", ErrValidation)
	}
	if p.Latitude != nil {
		if err := validateCoordinates(*p.Latitude, *p.Longitude); err != nil {
			return err
		}
	}
	return nil
}

func validateCoordinates(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("%w: latitude %v out of range [-90, 90]", ErrValidation, lat)
	}
	if lng < -180 || lng > 180 {
		return fmt.Errorf("%w: longitude %v out of range [-180, 180]", ErrValidation, lng)
	}
	return nil
}

func (s *POIService) Create(ctx context.Context, actorID uuid.UUID, input CreatePOIInput) (*models.POI, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, ErrForbidden
	}
	if !policy.CanMutate(actor, nil, policy.OpCreate) {
		return nil, ErrForbidden
	}

	var poi models.POI
	err = s.db.Pool.QueryRow(ctx, `
		INSERT INTO pois (name, type, description, latitude, longitude, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, name, type, description, latitude, longitude, created_by, created_at, updated_at
	`, input.Name, input.Type, input.Description, input.Latitude, input.Longitude, actor.ID).Scan(
		&poi.ID, &poi.Name, &poi.Type, &poi.Description,
		&poi.Latitude, &poi.Longitude, &poi.CreatedBy, &poi.CreatedAt, &poi.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create poi: %w", err)
	}
	return &poi, nil
}

func (s *POIService) GetByID(ctx context.Context, id int) (*models.POI, error) {
	var poi models.POI
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, name, type, description, latitude, longitude, created_by, created_at, updated_at
		FROM pois WHERE id = $1
	`, id).Scan(
		&poi.ID, &poi.Name, &poi.Type, &poi.Description,
		&poi.Latitude, &poi.Longitude, &poi.CreatedBy, &poi.CreatedAt, &poi.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPOINotFound
		}
		return nil, err
	}
	return &poi, nil
}

// Update applies a partial patch. Existence is checked before permission,
// so callers can distinguish 404 from 403.
func (s *POIService) Update(ctx context.Context, actorID uuid.UUID, id int, patch UpdatePOIPatch) (*models.POI, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := patch.validate(); err != nil {
		return nil, err
	}

	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, ErrForbidden
	}
	if !policy.CanMutate(actor, existing, policy.OpUpdate) {
		return nil, ErrForbidden
	}

	if patch.Name != nil {
		existing.Name = *patch.Name
	}
	if patch.Type != nil {
		existing.Type = *patch.Type
	}
	if patch.Description != nil {
		existing.Description = patch.Description
	}
	if patch.Latitude != nil {
		existing.Latitude = *patch.Latitude
		existing.Longitude = *patch.Longitude
	}

	var poi models.POI
	err = s.db.Pool.QueryRow(ctx, `
		UPDATE pois
		SET name = $1, type = $2, description = $3, latitude = $4, longitude = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING id, name, type, description, latitude, longitude, created_by, created_at, updated_at
	`, existing.Name, existing.Type, existing.Description,
		existing.Latitude, existing.Longitude, id).Scan(
		&poi.ID, &poi.Name, &poi.Type, &poi.Description,
		&poi.Latitude, &poi.Longitude, &poi.CreatedBy, &poi.CreatedAt, &poi.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPOINotFound
		}
		return nil, fmt.Errorf("failed to update poi: %w", err)
	}
	return &poi, nil
}

func (s *POIService) Delete(ctx context.Context, actorID uuid.UUID, id int) error {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return ErrForbidden
	}
	if !policy.CanMutate(actor, existing, policy.OpDelete) {
		return ErrForbidden
	}

	result, err := s.db.Pool.Exec(ctx, `DELETE FROM pois WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete poi: %w", err)
	}
	// A concurrent delete between the load and this statement would
	// otherwise be reported as success.
	if result.RowsAffected() == 0 {
		return ErrPOINotFound
	}
	return nil
}

func (s *POIService) List(ctx context.Context) ([]models.POI, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, name, type, description, latitude, longitude, created_by, created_at, updated_at
		FROM pois
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pois []models.POI
	for rows.Next() {
		var p models.POI
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Type, &p.Description,
			&p.Latitude, &p.Longitude, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		pois = append(pois, p)
	}
	return pois, rows.Err()
}

func (s *POIService) Export(ctx context.Context) ([]models.ExportRecord, error) {
	pois, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]models.ExportRecord, len(pois))
	for i, p := range pois {
		records[i] = models.ExportRecord{
			ID:          fmt.Sprintf("poi-%d", p.ID),
			Type:        p.Type,
			Name:        p.Name,
			Description: p.Description,
			Location: models.ExportLocation{
				Lat: p.Latitude,
				Lng: p.Longitude,
			},
			CreatedAt: p.CreatedAt,
			UpdatedAt: p.UpdatedAt,
		}
	}
	return records, nil
}
