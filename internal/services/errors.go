package services

import "errors"

// Sentinel errors returned by the aggregates. Handlers translate these into
// HTTP statuses; everything else is treated as a transient store failure.
var (
	ErrGroupNotFound       = errors.New("group not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrInviteNotFound      = errors.New("invite not found")

	ErrNotAdmin       = errors.New("actor is not a group admin")
	ErrNotGroupMember = errors.New("actor is not a group member")
	ErrNotCreator     = errors.New("only the creator or a group admin may do this")

	ErrEmptyName          = errors.New("name must not be empty")
	ErrInvalidStartTime   = errors.New("start time is not a valid timestamp")
	ErrInvalidStatus      = errors.New("invalid attendance status")
	ErrInvalidVisibility  = errors.New("invalid visibility scope")
	ErrInvalidDuration    = errors.New("duration must be a positive number of minutes")
	ErrInvalidChannel     = errors.New("invalid invite channel")
	ErrInvalidListMode    = errors.New("list mode must be active or history")
	ErrMissingTargetGroup = errors.New("group visibility requires a target group")

	ErrOwnerImmutable       = errors.New("the group owner cannot be demoted or removed")
	ErrLastAdmin            = errors.New("a group must keep at least one admin")
	ErrTargetNotMember      = errors.New("target is not a member of the group")
	ErrReservationCancelled = errors.New("reservation is cancelled")
	ErrInviteExpired        = errors.New("invite is expired or no longer active")
	ErrLinkOnlyReservation  = errors.New("operation requires a group-scoped reservation")
)
