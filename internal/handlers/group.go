package handlers

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"

	"github.com/mpavlov/courtbook-api/internal/middleware"
	"github.com/mpavlov/courtbook-api/internal/models"
	"github.com/mpavlov/courtbook-api/pkg/dto"
)

type GroupHandler struct {
	groupService   GroupServiceInterface
	listingService ListingServiceInterface
}

func NewGroupHandler(groupService GroupServiceInterface, listingService ListingServiceInterface) *GroupHandler {
	return &GroupHandler{
		groupService:   groupService,
		listingService: listingService,
	}
}

func (h *GroupHandler) Create(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.CreateGroupRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	group, err := h.groupService.Create(context.Background(), req.Name, userID, req.DisplayName)
	if err != nil {
		respondServiceError(c, err, "failed to create group")
		return
	}

	_ = c.JSON(201, toGroupResponse(group, models.RoleAdmin))
}

func (h *GroupHandler) List(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	summaries, err := h.listingService.ListGroupsForActor(context.Background(), userID)
	if err != nil {
		c.InternalServerError("failed to list groups")
		return
	}

	response := make([]dto.GroupResponse, len(summaries))
	for i, s := range summaries {
		response[i] = dto.GroupResponse{
			ID:          s.Group.ID,
			Name:        s.Group.Name,
			OwnerID:     s.Group.OwnerID,
			Role:        s.Role,
			MemberCount: s.MemberCount,
		}
	}

	_ = c.JSON(200, response)
}

func (h *GroupHandler) Get(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid group id")
		return
	}

	group, err := h.groupService.Get(context.Background(), groupID, userID)
	if err != nil {
		respondServiceError(c, err, "failed to get group")
		return
	}

	role := models.RoleMember
	for _, m := range group.Members {
		if m.UserID == userID {
			role = m.Role
			break
		}
	}

	_ = c.JSON(200, toGroupResponse(group, role))
}

func (h *GroupHandler) Rename(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid group id")
		return
	}

	var req dto.RenameGroupRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	group, err := h.groupService.Rename(context.Background(), groupID, req.Name, userID)
	if err != nil {
		respondServiceError(c, err, "failed to rename group")
		return
	}

	_ = c.JSON(200, toGroupResponse(group, models.RoleAdmin))
}

func (h *GroupHandler) Delete(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid group id")
		return
	}

	if err := h.groupService.SoftDelete(context.Background(), groupID, userID); err != nil {
		respondServiceError(c, err, "failed to delete group")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "group deleted"})
}

func (h *GroupHandler) SetAdmin(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid group id")
		return
	}

	targetID, err := uuid.Parse(c.Param("memberId"))
	if err != nil {
		c.BadRequest("invalid member id")
		return
	}

	var req dto.SetAdminRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if err := h.groupService.SetMemberAdmin(context.Background(), groupID, targetID, req.Admin, userID); err != nil {
		respondServiceError(c, err, "failed to update member role")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "member role updated"})
}

func (h *GroupHandler) RemoveMember(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid group id")
		return
	}

	targetID, err := uuid.Parse(c.Param("memberId"))
	if err != nil {
		c.BadRequest("invalid member id")
		return
	}

	if err := h.groupService.RemoveMember(context.Background(), groupID, targetID, userID); err != nil {
		respondServiceError(c, err, "failed to remove member")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "member removed"})
}

func (h *GroupHandler) SetDisplayName(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid group id")
		return
	}

	var req dto.SetDisplayNameRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.DisplayName == "" {
		c.BadRequest("display_name is required")
		return
	}

	if err := h.groupService.SetDisplayName(context.Background(), groupID, userID, req.DisplayName); err != nil {
		respondServiceError(c, err, "failed to update display name")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "display name updated"})
}

func (h *GroupHandler) ListAudit(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid group id")
		return
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	events, err := h.listingService.ListGroupAudit(context.Background(), groupID, userID, limit)
	if err != nil {
		respondServiceError(c, err, "failed to list audit events")
		return
	}

	response := make([]dto.AuditEventResponse, len(events))
	for i, e := range events {
		response[i] = dto.AuditEventResponse{
			ID:         e.ID,
			GroupID:    e.GroupID,
			Type:       e.Type,
			ActorID:    e.ActorID,
			ActorName:  e.ActorName,
			TargetID:   e.TargetID,
			TargetName: e.TargetName,
			Metadata:   e.Metadata,
			CreatedAt:  e.CreatedAt,
		}
	}

	_ = c.JSON(200, response)
}

func toGroupResponse(group *models.Group, role string) dto.GroupResponse {
	members := make([]dto.GroupMemberResponse, len(group.Members))
	for i, m := range group.Members {
		members[i] = dto.GroupMemberResponse{
			ID:          m.ID,
			UserID:      m.UserID,
			Role:        m.Role,
			DisplayName: m.DisplayName,
		}
	}
	return dto.GroupResponse{
		ID:          group.ID,
		Name:        group.Name,
		OwnerID:     group.OwnerID,
		Role:        role,
		MemberCount: len(group.Members),
		Members:     members,
	}
}
