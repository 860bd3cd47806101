package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	InviteTargetGroup       = "group"
	InviteTargetReservation = "reservation"
)

const (
	InviteStatusActive = "active"
	InviteStatusVoid   = "void"
)

const (
	InviteChannelWhatsApp = "whatsapp"
	InviteChannelEmail    = "email"
	InviteChannelLink     = "link"
)

type Invite struct {
	Token         string     `json:"token"`
	TargetType    string     `json:"target_type"`
	GroupID       *uuid.UUID `json:"group_id,omitempty"`
	ReservationID *uuid.UUID `json:"reservation_id,omitempty"`
	CreatedBy     uuid.UUID  `json:"created_by"`
	Channel       string     `json:"channel"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	ExpiresAt     time.Time  `json:"expires_at"`
}

// Redeemable reports whether the token can still be accepted at the given
// instant. A token at exactly ExpiresAt is already expired.
func (i *Invite) Redeemable(now time.Time) bool {
	return i.Status == InviteStatusActive && now.Before(i.ExpiresAt)
}

func ValidInviteChannel(channel string) bool {
	switch channel {
	case InviteChannelWhatsApp, InviteChannelEmail, InviteChannelLink:
		return true
	}
	return false
}
