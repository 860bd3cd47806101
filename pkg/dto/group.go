package dto

import "github.com/google/uuid"

type CreateGroupRequest struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

type RenameGroupRequest struct {
	Name string `json:"name"`
}

type SetAdminRequest struct {
	Admin bool `json:"admin"`
}

type SetDisplayNameRequest struct {
	DisplayName string `json:"display_name"`
}

type GroupResponse struct {
	ID          uuid.UUID             `json:"id"`
	Name        string                `json:"name"`
	OwnerID     uuid.UUID             `json:"owner_id"`
	Role        string                `json:"role,omitempty"`
	MemberCount int                   `json:"member_count,omitempty"`
	Members     []GroupMemberResponse `json:"members,omitempty"`
}

type GroupMemberResponse struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Role        string    `json:"role"`
	DisplayName string    `json:"display_name"`
}
