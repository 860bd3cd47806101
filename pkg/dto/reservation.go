package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateReservationRequest struct {
	GroupID         *uuid.UUID  `json:"group_id"`
	Visibility      string      `json:"visibility"`
	Venue           string      `json:"venue"`
	Court           string      `json:"court"`
	StartsAt        string      `json:"starts_at"`
	DurationMinutes int         `json:"duration_minutes"`
	MaxAccepted     int         `json:"max_accepted"`
	AllowWaitlist   *bool       `json:"allow_waitlist"`
	PriorityIDs     []uuid.UUID `json:"priority_ids"`
}

type UpdateReservationRequest struct {
	Venue           *string `json:"venue"`
	Court           *string `json:"court"`
	StartsAt        *string `json:"starts_at"`
	DurationMinutes *int    `json:"duration_minutes"`
	MaxAccepted     *int    `json:"max_accepted"`
	AllowWaitlist   *bool   `json:"allow_waitlist"`

	GroupID  *uuid.UUID `json:"group_id"`
	LinkOnly bool       `json:"link_only"`
}

type SetAttendanceRequest struct {
	DisplayName string `json:"display_name"`
	Status      string `json:"status"`
}

type ReassignOwnerRequest struct {
	UserID      uuid.UUID `json:"user_id"`
	DisplayName string    `json:"display_name"`
}

type ReservationResponse struct {
	ID              uuid.UUID        `json:"id"`
	GroupID         *uuid.UUID       `json:"group_id,omitempty"`
	GroupName       string           `json:"group_name,omitempty"`
	Visibility      string           `json:"visibility"`
	Venue           string           `json:"venue"`
	Court           string           `json:"court"`
	StartsAt        time.Time        `json:"starts_at"`
	DurationMinutes int              `json:"duration_minutes"`
	CreatorID       *uuid.UUID       `json:"creator_id,omitempty"`
	CreatedByName   string           `json:"created_by_name"`
	MaxAccepted     int              `json:"max_accepted"`
	AllowWaitlist   bool             `json:"allow_waitlist"`
	PriorityIDs     []uuid.UUID      `json:"priority_ids"`
	Status          string           `json:"status"`
	Signups         []SignupResponse `json:"signups,omitempty"`
}

type SignupResponse struct {
	ID          uuid.UUID  `json:"id"`
	UserID      *uuid.UUID `json:"user_id,omitempty"`
	DisplayName string     `json:"display_name"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
}
