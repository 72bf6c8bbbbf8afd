package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/velimirr/pinmap-api/internal/middleware"
	"github.com/velimirr/pinmap-api/internal/models"
	"github.com/velimirr/pinmap-api/internal/services"
	"github.com/velimirr/pinmap-api/pkg/dto"
)

type POIHandler struct {
	poiService POIServiceInterface
}

func NewPOIHandler(poiService POIServiceInterface) *POIHandler {
	return &POIHandler{poiService: poiService}
}

func (h *POIHandler) List(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	pois, err := h.poiService.List(context.Background())
	if err != nil {
		c.InternalServerError("failed to get pois")
		return
	}

	response := make([]dto.POIResponse, len(pois))
	for i, p := range pois {
		response[i] = poiResponse(&p)
	}

	_ = c.JSON(200, response)
}

func (h *POIHandler) Create(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.CreatePOIRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Latitude == nil || req.Longitude == nil {
		c.BadRequest("latitude and longitude are required")
		return
	}

	poi, err := h.poiService.Create(context.Background(), userID, services.CreatePOIInput{
		Name:        req.Name,
		Type:        req.Type,
		Description: req.Description,
		Latitude:    *req.Latitude,
		Longitude:   *req.Longitude,
	})
	if err != nil {
		h.writeError(c, err, "failed to create poi")
		return
	}

	_ = c.JSON(201, poiResponse(poi))
}

func (h *POIHandler) Update(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid poi id")
		return
	}

	var req dto.UpdatePOIRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	poi, err := h.poiService.Update(context.Background(), userID, id, services.UpdatePOIPatch{
		Name:        req.Name,
		Type:        req.Type,
		Description: req.Description,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	})
	if err != nil {
		h.writeError(c, err, "failed to update poi")
		return
	}

	_ = c.JSON(200, poiResponse(poi))
}

func (h *POIHandler) Delete(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid poi id")
		return
	}

	if err := h.poiService.Delete(context.Background(), userID, id); err != nil {
		h.writeError(c, err, "failed to delete poi")
		return
	}

	c.Response.WriteHeader(http.StatusNoContent)
}

func (h *POIHandler) Export(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	records, err := h.poiService.Export(context.Background())
	if err != nil {
		c.InternalServerError("failed to export pois")
		return
	}
	if records == nil {
		records = []models.ExportRecord{}
	}

	c.Response.Header().Set("Content-Disposition", "attachment; filename=pois-export.json")
	_ = c.JSON(200, records)
}

func (h *POIHandler) writeError(c *drift.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrValidation):
		c.BadRequest(err.Error())
	case errors.Is(err, services.ErrForbidden):
		c.Forbidden("insufficient permissions")
	case errors.Is(err, services.ErrPOINotFound):
		c.NotFound("poi not found")
	default:
		c.InternalServerError(fallback)
	}
}

func poiResponse(p *models.POI) dto.POIResponse {
	return dto.POIResponse{
		ID:          p.ID,
		Name:        p.Name,
		Type:        p.Type,
		Description: p.Description,
		Latitude:    p.Latitude,
		Longitude:   p.Longitude,
		CreatedBy:   p.CreatedBy,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
