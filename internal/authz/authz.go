// Package authz holds the pure authorization predicates. Functions here
// never touch the database; aggregates load a snapshot inside their
// transaction and consult these against it.
package authz

import (
	"github.com/google/uuid"

	"github.com/mpavlov/courtbook-api/internal/models"
)

// IsAdmin reports whether the actor owns the group or holds the admin role.
func IsAdmin(group *models.Group, actorID uuid.UUID) bool {
	if group == nil {
		return false
	}
	if group.OwnerID == actorID {
		return true
	}
	for _, m := range group.Members {
		if m.UserID == actorID && m.Role == models.RoleAdmin {
			return true
		}
	}
	return false
}

// IsMember reports whether the actor belongs to the group in any role.
func IsMember(group *models.Group, actorID uuid.UUID) bool {
	if group == nil {
		return false
	}
	if group.OwnerID == actorID {
		return true
	}
	for _, m := range group.Members {
		if m.UserID == actorID {
			return true
		}
	}
	return false
}

// ResolveCreatorActorID returns the authoritative creator id, falling back
// to the id recorded inside the legacy creator snapshot for rows written
// before creator ids were tracked separately.
func ResolveCreatorActorID(r *models.Reservation) (uuid.UUID, bool) {
	if r == nil {
		return uuid.Nil, false
	}
	if r.CreatorID != nil {
		return *r.CreatorID, true
	}
	if r.LegacyCreatorID != nil {
		return *r.LegacyCreatorID, true
	}
	return uuid.Nil, false
}

func IsReservationCreator(r *models.Reservation, actorID uuid.UUID) bool {
	creatorID, ok := ResolveCreatorActorID(r)
	return ok && creatorID == actorID
}

// CanAccessReservation decides read/join access. Link-only reservations are
// open; otherwise access comes from the owning group, creatorship, a guest
// grant, or an existing signup.
func CanAccessReservation(r *models.Reservation, actorID uuid.UUID, allowedGroupIDs map[uuid.UUID]bool) bool {
	if r == nil {
		return false
	}
	if r.Visibility == models.VisibilityLinkOnly || !r.IsGroupScoped() {
		return true
	}
	if allowedGroupIDs[*r.GroupID] {
		return true
	}
	if IsReservationCreator(r, actorID) {
		return true
	}
	for _, g := range r.GuestIDs {
		if g == actorID {
			return true
		}
	}
	for _, s := range r.Signups {
		if s.UserID != nil && *s.UserID == actorID {
			return true
		}
	}
	return false
}
