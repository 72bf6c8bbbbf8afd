package models

import (
	"time"

	"github.com/google/uuid"
)

// POI categories. The export format and the map UI both key off these
// exact strings, including the spaces.
const (
	CategoryRestroom      = "Restroom"
	CategoryWaterFountain = "Water Fountain"
	CategoryFoodStop      = "Food Stop"
	CategoryFuelStation   = "Fuel Station"
	CategoryMeetingPoint  = "Meeting Point"
)

var Categories = []string{
	CategoryRestroom,
	CategoryWaterFountain,
	CategoryFoodStop,
	CategoryFuelStation,
	CategoryMeetingPoint,
}

func ValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

type POI struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Description *string   `json:"description,omitempty"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	CreatedBy   uuid.UUID `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ExportRecord is the bulk-download shape. Field order is part of the
// contract consumed by downstream tooling; do not reorder.
type ExportRecord struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Name        string         `json:"name"`
	Description *string        `json:"description"`
	Location    ExportLocation `json:"location"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type ExportLocation struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
