package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/velimirr/pinmap-api/internal/database"
	"github.com/velimirr/pinmap-api/internal/models"
)

var poiColumns = []string{
	"id", "name", "type", "description", "latitude", "longitude",
	"created_by", "created_at", "updated_at",
}

// stubUserLookup avoids threading user queries through the pool mock.
type stubUserLookup struct {
	users map[uuid.UUID]*models.User
}

func (s *stubUserLookup) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, pgx.ErrNoRows
}

func (s *stubUserLookup) add(role string) *models.User {
	u := &models.User{ID: uuid.New(), Email: "u@example.com", Role: role}
	s.users[u.ID] = u
	return u
}

func setupPOIService(t *testing.T) (*POIService, pgxmock.PgxPoolIface, *stubUserLookup) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	users := &stubUserLookup{users: make(map[uuid.UUID]*models.User)}
	db := &database.DB{Pool: mock}
	return NewPOIService(db, users), mock, users
}

func validInput() CreatePOIInput {
	desc := "by the east gate"
	return CreatePOIInput{
		Name:        "Lake View",
		Type:        models.CategoryMeetingPoint,
		Description: &desc,
		Latitude:    52.52,
		Longitude:   13.405,
	}
}

func TestPOIService_Create_Success(t *testing.T) {
	svc, mock, users := setupPOIService(t)
	ctx := context.Background()
	editor := users.add(models.RoleEditor)
	input := validInput()
	now := time.Now()

	rows := pgxmock.NewRows(poiColumns).AddRow(
		1, input.Name, input.Type, input.Description,
		input.Latitude, input.Longitude, editor.ID, now, now,
	)
	mock.ExpectQuery(`INSERT INTO pois`).
		WithArgs(input.Name, input.Type, input.Description, input.Latitude, input.Longitude, editor.ID).
		WillReturnRows(rows)

	poi, err := svc.Create(ctx, editor.ID, input)

	require.NoError(t, err)
	assert.Equal(t, 1, poi.ID)
	assert.Equal(t, "Lake View", poi.Name)
	assert.Equal(t, editor.ID, poi.CreatedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPOIService_Create_ViewerForbidden(t *testing.T) {
	svc, mock, users := setupPOIService(t)
	viewer := users.add(models.RoleViewer)

	_, err := svc.Create(context.Background(), viewer.ID, validInput())

	assert.ErrorIs(t, err, ErrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPOIService_Create_UnknownActorForbidden(t *testing.T) {
	svc, mock, _ := setupPOIService(t)

	_, err := svc.Create(context.Background(), uuid.New(), validInput())

	assert.ErrorIs(t, err, ErrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPOIService_Create_Validation(t *testing.T) {
	svc, mock, users := setupPOIService(t)
	admin := users.add(models.RoleAdmin)

	tests := []struct {
		name   string
		modify func(*CreatePOIInput)
	}{
		{"empty name", func(in *CreatePOIInput) { in.Name = "" }},
		{"unknown type", func(in *CreatePOIInput) { in.Type = "Viewpoint" }},
		{"latitude too low", func(in *CreatePOIInput) { in.Latitude = -90.01 }},
		{"latitude too high", func(in *CreatePOIInput) { in.Latitude = 90.01 }},
		{"longitude too low", func(in *CreatePOIInput) { in.Longitude = -180.5 }},
		{"longitude too high", func(in *CreatePOIInput) { in.Longitude = 180.5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.modify(&input)

			_, err := svc.Create(context.Background(), admin.ID, input)

			// Rejected before any repository access.
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPOIService_Create_BoundaryCoordinatesAccepted(t *testing.T) {
	svc, mock, users := setupPOIService(t)
	editor := users.add(models.RoleEditor)
	input := validInput()
	input.Latitude = -90
	input.Longitude = 180
	now := time.Now()

	rows := pgxmock.NewRows(poiColumns).AddRow(
		2, input.Name, input.Type, input.Description,
		input.Latitude, input.Longitude, editor.ID, now, now,
	)
	mock.ExpectQuery(`INSERT INTO pois`).
		WithArgs(input.Name, input.Type, input.Description, input.Latitude, input.Longitude, editor.ID).
		WillReturnRows(rows)

	_, err := svc.Create(context.Background(), editor.ID, input)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPOIService_GetByID_NotFound(t *testing.T) {
	svc, mock, _ := setupPOIService(t)

	mock.ExpectQuery(`SELECT .+ FROM pois WHERE id`).
		WithArgs(42).
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.GetByID(context.Background(), 42)

	assert.ErrorIs(t, err, ErrPOINotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func expectLoadPOI(mock pgxmock.PgxPoolIface, poi *models.POI) {
	rows := pgxmock.NewRows(poiColumns).AddRow(
		poi.ID, poi.Name, poi.Type, poi.Description,
		poi.Latitude, poi.Longitude, poi.CreatedBy, poi.CreatedAt, poi.UpdatedAt,
	)
	mock.ExpectQuery(`SELECT .+ FROM pois WHERE id`).
		WithArgs(poi.ID).
		WillReturnRows(rows)
}

func existingPOI(owner uuid.UUID) *models.POI {
	now := time.Now().Add(-time.Hour)
	return &models.POI{
		ID:        7,
		Name:      "Old Fountain",
		Type:      models.CategoryWaterFountain,
		Latitude:  48.8566,
		Longitude: 2.3522,
		CreatedBy: owner,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestPOIService_Update_NotFound(t *testing.T) {
	svc, mock, users := setupPOIService(t)
	admin := users.add(models.RoleAdmin)

	mock.ExpectQuery(`SELECT .+ FROM pois WHERE id`).
		WithArgs(99).
		WillReturnError(pgx.ErrNoRows)

	name := "X"
	_, err := svc.Update(context.Background(), admin.ID, 99, UpdatePOIPatch{Name: &name})

	// Existence is reported before permission is evaluated.
	assert.ErrorIs(t, err, ErrPOINotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPOIService_Update_EditorNotOwnerForbidden(t *testing.T) {
	svc, mock, users := setupPOIService(t)
	editor := users.add(models.RoleEditor)
	poi := existingPOI(uuid.New())

	expectLoadPOI(mock, poi)

	name := "X"
	_, err := svc.Update(context.Background(), editor.ID, poi.ID, UpdatePOIPatch{Name: &name})

	assert.ErrorIs(t, err, ErrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPOIService_Update_ViewerForbidden(t *testing.T) {
	svc, mock, users := setupPOIService(t)
	viewer := users.add(models.RoleViewer)
	poi := existingPOI(viewer.ID)

	expectLoadPOI(mock, poi)

	name := "X"
	_, err := svc.Update(context.Background(), viewer.ID, poi.ID, UpdatePOIPatch{Name: &name})

	assert.ErrorIs(t, err, ErrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPOIService_Update_AdminOverridesOwnership(t *testing.T) {
	svc, mock, users := setupPOIService(t)
	admin := users.add(models.RoleAdmin)
	poi := existingPOI(uuid.New())
	newName := "Renamed Fountain"

	expectLoadPOI(mock, poi)

	updated := pgxmock.NewRows(poiColumns).AddRow(
		poi.ID, newName, poi.Type, poi.Description,
		poi.Latitude, poi.Longitude, poi.CreatedBy, poi.CreatedAt, time.Now(),
	)
	mock.ExpectQuery(`UPDATE pois`).
		WithArgs(newName, poi.Type, poi.Description, poi.Latitude, poi.Longitude, poi.ID).
		WillReturnRows(updated)

	result, err := svc.Update(context.Background(), admin.ID, poi.ID, UpdatePOIPatch{Name: &newName})

	require.NoError(t, err)
	assert.Equal(t, newName, result.Name)
	assert.True(t, result.UpdatedAt.After(poi.UpdatedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPOIService_Update_MergesPatchIntoExisting(t *testing.T) {
	svc, mock, users := setupPOIService(t)
	editor := users.add(models.RoleEditor)
	poi := existingPOI(editor.ID)

	expectLoadPOI(mock, poi)

	newType := models.CategoryFoodStop
	lat, lng := 52.52, 13.405

	updated := pgxmock.NewRows(poiColumns).AddRow(
		poi.ID, poi.Name, newType, poi.Description,
		lat, lng, poi.CreatedBy, poi.CreatedAt, time.Now(),
	)
	// Untouched fields keep their loaded values.
	mock.ExpectQuery(`UPDATE pois`).
		WithArgs(poi.Name, newType, poi.Description, lat, lng, poi.ID).
		WillReturnRows(updated)

	result, err := svc.Update(context.Background(), editor.ID, poi.ID, UpdatePOIPatch{
		Type:      &newType,
		Latitude:  &lat,
		Longitude: &lng,
	})

	require.NoError(t, err)
	assert.Equal(t, poi.Name, result.Name)
	assert.Equal(t, newType, result.Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPOIService_Update_CoordinatesMustTravelTogether(t *testing.T) {
	svc, mock, users := setupPOIService(t)
	editor := users.add(models.RoleEditor)
	poi := existingPOI(editor.ID)

	expectLoadPOI(mock, poi)

	lat := 10.0
	_, err := svc.Update(context.Background(), editor.ID, poi.ID, UpdatePOIPatch{Latitude: &lat})

	assert.ErrorIs(t, err, ErrValidation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPOIService_Update_PatchValidation(t *testing.T) {
	svc, mock, users := setupPOIService(t)
	editor := users.add(models.RoleEditor)
	poi := existingPOI(editor.ID)

	empty := ""
	badType := "Castle"
	badLat, lng := 120.0, 10.0

	tests := []struct {
		name  string
		patch UpdatePOIPatch
	}{
		{"empty name", UpdatePOIPatch{Name: &empty}},
		{"unknown type", UpdatePOIPatch{Type: &badType}},
		{"latitude out of range", UpdatePOIPatch{Latitude: &badLat, Longitude: &lng}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectLoadPOI(mock, poi)

			_, err := svc.Update(context.Background(), editor.ID, poi.ID, tt.patch)

			assert.ErrorIs(t, err, ErrValidation)
		})
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPOIService_Delete_Success(t *testing.T) {
	svc, mock, users := setupPOIService(t)
	editor := users.add(models.RoleEditor)
	poi := existingPOI(editor.ID)

	expectLoadPOI(mock, poi)
	mock.ExpectExec(`DELETE FROM pois WHERE id`).
		WithArgs(poi.ID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := svc.Delete(context.Background(), editor.ID, poi.ID)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPOIService_Delete_NotFound(t *testing.T) {
	svc, mock, users := setupPOIService(t)
	admin := users.add(models.RoleAdmin)

	mock.ExpectQuery(`SELECT .+ FROM pois WHERE id`).
		WithArgs(5).
		WillReturnError(pgx.ErrNoRows)

	err := svc.Delete(context.Background(), admin.ID, 5)

	assert.ErrorIs(t, err, ErrPOINotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPOIService_Delete_EditorNotOwnerForbidden(t *testing.T) {
	svc, mock, users := setupPOIService(t)
	editor := users.add(models.RoleEditor)
	poi := existingPOI(uuid.New())

	expectLoadPOI(mock, poi)

	err := svc.Delete(context.Background(), editor.ID, poi.ID)

	assert.ErrorIs(t, err, ErrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPOIService_Delete_RaceLostReportsNotFound(t *testing.T) {
	svc, mock, users := setupPOIService(t)
	admin := users.add(models.RoleAdmin)
	poi := existingPOI(admin.ID)

	expectLoadPOI(mock, poi)
	// Row vanished between the load and the delete.
	mock.ExpectExec(`DELETE FROM pois WHERE id`).
		WithArgs(poi.ID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := svc.Delete(context.Background(), admin.ID, poi.ID)

	assert.ErrorIs(t, err, ErrPOINotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPOIService_List(t *testing.T) {
	svc, mock, _ := setupPOIService(t)
	now := time.Now()
	owner := uuid.New()

	rows := pgxmock.NewRows(poiColumns).
		AddRow(2, "Newer", models.CategoryFuelStation, nil, 1.0, 2.0, owner, now, now).
		AddRow(1, "Older", models.CategoryRestroom, nil, 3.0, 4.0, owner, now.Add(-time.Hour), now.Add(-time.Hour))

	mock.ExpectQuery(`SELECT .+ FROM pois ORDER BY created_at DESC`).
		WillReturnRows(rows)

	pois, err := svc.List(context.Background())

	require.NoError(t, err)
	require.Len(t, pois, 2)
	assert.Equal(t, "Newer", pois[0].Name)
	assert.Equal(t, "Older", pois[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPOIService_Export(t *testing.T) {
	svc, mock, _ := setupPOIService(t)
	now := time.Now()
	owner := uuid.New()
	desc := "west entrance"

	rows := pgxmock.NewRows(poiColumns).
		AddRow(7, "Lake View", models.CategoryMeetingPoint, &desc, 52.52, 13.405, owner, now, now)

	mock.ExpectQuery(`SELECT .+ FROM pois ORDER BY created_at DESC`).
		WillReturnRows(rows)

	records, err := svc.Export(context.Background())

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "poi-7", records[0].ID)
	assert.Equal(t, models.CategoryMeetingPoint, records[0].Type)
	assert.Equal(t, "Lake View", records[0].Name)
	require.NotNil(t, records[0].Description)
	assert.Equal(t, desc, *records[0].Description)
	assert.Equal(t, 52.52, records[0].Location.Lat)
	assert.Equal(t, 13.405, records[0].Location.Lng)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPOIService_Export_Empty(t *testing.T) {
	svc, mock, _ := setupPOIService(t)

	mock.ExpectQuery(`SELECT .+ FROM pois ORDER BY created_at DESC`).
		WillReturnRows(pgxmock.NewRows(poiColumns))

	records, err := svc.Export(context.Background())

	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPOIService_List_QueryError(t *testing.T) {
	svc, mock, _ := setupPOIService(t)

	mock.ExpectQuery(`SELECT .+ FROM pois ORDER BY created_at DESC`).
		WillReturnError(errors.New("connection reset"))

	_, err := svc.List(context.Background())

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
