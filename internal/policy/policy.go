// Package policy holds the single source of truth for who may mutate
// points of interest. Decisions are pure functions over the actor and the
// record; persistence and HTTP status mapping live elsewhere.
package policy

import "github.com/velimirr/pinmap-api/internal/models"

type Operation int

const (
	OpCreate Operation = iota
	OpUpdate
	OpDelete
)

// CanMutate reports whether actor may perform op. For OpCreate poi is nil.
// Callers must resolve existence first: a missing record is NotFound, never
// Forbidden, so this function is only consulted for records that exist.
func CanMutate(actor *models.User, poi *models.POI, op Operation) bool {
	if actor == nil {
		return false
	}

	switch op {
	case OpCreate:
		return actor.Role == models.RoleAdmin || actor.Role == models.RoleEditor
	case OpUpdate, OpDelete:
		if poi == nil {
			return false
		}
		switch actor.Role {
		case models.RoleAdmin:
			// Admins override ownership on every path.
			return true
		case models.RoleEditor:
			return poi.CreatedBy == actor.ID
		default:
			return false
		}
	}
	return false
}
