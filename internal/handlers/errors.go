package handlers

import (
	"errors"

	"github.com/m1z23r/drift/pkg/drift"

	"github.com/mpavlov/courtbook-api/internal/services"
)

// respondServiceError maps an aggregate error onto an HTTP status. Anything
// not in the taxonomy is reported as a store failure with the fallback text.
func respondServiceError(c *drift.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrGroupNotFound),
		errors.Is(err, services.ErrReservationNotFound),
		errors.Is(err, services.ErrInviteNotFound):
		c.NotFound(err.Error())

	case errors.Is(err, services.ErrNotAdmin),
		errors.Is(err, services.ErrNotGroupMember),
		errors.Is(err, services.ErrNotCreator):
		c.Forbidden(err.Error())

	case errors.Is(err, services.ErrEmptyName),
		errors.Is(err, services.ErrInvalidStartTime),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidVisibility),
		errors.Is(err, services.ErrInvalidDuration),
		errors.Is(err, services.ErrInvalidChannel),
		errors.Is(err, services.ErrInvalidListMode),
		errors.Is(err, services.ErrMissingTargetGroup):
		c.BadRequest(err.Error())

	case errors.Is(err, services.ErrOwnerImmutable),
		errors.Is(err, services.ErrLastAdmin),
		errors.Is(err, services.ErrTargetNotMember),
		errors.Is(err, services.ErrReservationCancelled),
		errors.Is(err, services.ErrInviteExpired),
		errors.Is(err, services.ErrLinkOnlyReservation):
		_ = c.JSON(409, map[string]string{"error": err.Error()})

	default:
		c.InternalServerError(fallback)
	}
}
