package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

type Group struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	OwnerID   uuid.UUID `json:"owner_id"`
	IsDeleted bool      `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Members is populated by the aggregate loaders so authorization
	// predicates can run against the same snapshot the transaction read.
	Members []GroupMember `json:"members,omitempty"`
}

type GroupMember struct {
	ID          uuid.UUID `json:"id"`
	GroupID     uuid.UUID `json:"group_id"`
	UserID      uuid.UUID `json:"user_id"`
	Role        string    `json:"role"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	User        *User     `json:"user,omitempty"`
}

// NameKey derives the identifier signups were keyed by before actor ids
// were tracked. Kept for matching legacy rows only.
func NameKey(displayName string) string {
	return strings.ToLower(strings.Join(strings.Fields(displayName), "-"))
}
