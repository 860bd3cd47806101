package dto

import (
	"time"

	"github.com/google/uuid"
)

type AuditEventResponse struct {
	ID         uuid.UUID         `json:"id"`
	GroupID    uuid.UUID         `json:"group_id"`
	Type       string            `json:"type"`
	ActorID    *uuid.UUID        `json:"actor_id,omitempty"`
	ActorName  string            `json:"actor_name,omitempty"`
	TargetID   *uuid.UUID        `json:"target_id,omitempty"`
	TargetName *string           `json:"target_name,omitempty"`
	Metadata   map[string]string `json:"metadata"`
	CreatedAt  time.Time         `json:"created_at"`
}
