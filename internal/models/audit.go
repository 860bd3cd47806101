package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	AuditMemberJoined       = "member_joined"
	AuditMemberRemoved      = "member_removed"
	AuditAdminGranted       = "admin_granted"
	AuditAdminRevoked       = "admin_revoked"
	AuditGroupRenamed       = "group_renamed"
	AuditOwnerReassigned    = "reservation_owner_reassigned"
	AuditReservationCreated = "reservation_created"
	AuditReservationUpdated = "reservation_updated"
	AuditReservationCancel  = "reservation_cancelled"
)

type AuditEvent struct {
	ID         uuid.UUID         `json:"id"`
	GroupID    uuid.UUID         `json:"group_id"`
	Type       string            `json:"type"`
	ActorID    *uuid.UUID        `json:"actor_id,omitempty"`
	ActorName  string            `json:"actor_name"`
	TargetID   *uuid.UUID        `json:"target_id,omitempty"`
	TargetName *string           `json:"target_name,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}
