package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateInviteRequest struct {
	Channel string `json:"channel"`
	Email   string `json:"email"`
}

type AcceptInviteRequest struct {
	DisplayName string `json:"display_name"`
}

type InviteResponse struct {
	Token         string     `json:"token"`
	TargetType    string     `json:"target_type"`
	GroupID       *uuid.UUID `json:"group_id,omitempty"`
	ReservationID *uuid.UUID `json:"reservation_id,omitempty"`
	Channel       string     `json:"channel"`
	Status        string     `json:"status"`
	URL           string     `json:"url"`
	ExpiresAt     time.Time  `json:"expires_at"`
}
