package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	VisibilityGroup    = "group"
	VisibilityLinkOnly = "link_only"
)

const (
	ReservationActive    = "active"
	ReservationCancelled = "cancelled"
)

const (
	AttendanceConfirmed = "confirmed"
	AttendanceMaybe     = "maybe"
	AttendanceCancelled = "cancelled"
)

type Reservation struct {
	ID              uuid.UUID  `json:"id"`
	GroupID         *uuid.UUID `json:"group_id,omitempty"`
	GroupName       string     `json:"group_name,omitempty"`
	Visibility      string     `json:"visibility"`
	Venue           string     `json:"venue"`
	Court           string     `json:"court"`
	StartsAt        time.Time  `json:"starts_at"`
	DurationMinutes int        `json:"duration_minutes"`
	CreatorID       *uuid.UUID `json:"creator_id,omitempty"`
	LegacyCreatorID *uuid.UUID `json:"-"`
	CreatedByName   string     `json:"created_by_name"`
	MaxAccepted     int        `json:"max_accepted"`
	AllowWaitlist   bool       `json:"allow_waitlist"`
	PriorityIDs     []uuid.UUID `json:"priority_ids"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	Signups  []Signup    `json:"signups,omitempty"`
	GuestIDs []uuid.UUID `json:"guest_ids,omitempty"`
}

func (r *Reservation) IsGroupScoped() bool {
	return r.GroupID != nil
}

type Signup struct {
	ID            uuid.UUID  `json:"id"`
	ReservationID uuid.UUID  `json:"reservation_id"`
	UserID        *uuid.UUID `json:"user_id,omitempty"`
	NameKey       *string    `json:"-"`
	DisplayName   string     `json:"display_name"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func ValidAttendanceStatus(status string) bool {
	switch status {
	case AttendanceConfirmed, AttendanceMaybe, AttendanceCancelled:
		return true
	}
	return false
}
