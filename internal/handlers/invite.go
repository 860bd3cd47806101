package handlers

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"

	"github.com/mpavlov/courtbook-api/internal/middleware"
	"github.com/mpavlov/courtbook-api/internal/models"
	"github.com/mpavlov/courtbook-api/pkg/dto"
)

type InviteHandler struct {
	inviteService InviteServiceInterface
	baseURL       string
}

func NewInviteHandler(inviteService InviteServiceInterface, baseURL string) *InviteHandler {
	return &InviteHandler{inviteService: inviteService, baseURL: baseURL}
}

func (h *InviteHandler) CreateGroupInvite(c *drift.Context) {
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

	var req dto.CreateInviteRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Channel == "" {
		req.Channel = models.InviteChannelLink
	}

	invite, err := h.inviteService.IssueGroupInvite(context.Background(), groupID, userID, req.Channel, req.Email)
	if err != nil {
		respondServiceError(c, err, "failed to create invite")
		return
	}

	_ = c.JSON(201, h.toInviteResponse(invite))
}

func (h *InviteHandler) CreateReservationInvite(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	reservationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid reservation id")
		return
	}

	var req dto.CreateInviteRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Channel == "" {
		req.Channel = models.InviteChannelLink
	}

	invite, err := h.inviteService.IssueReservationInvite(context.Background(), reservationID, userID, req.Channel)
	if err != nil {
		respondServiceError(c, err, "failed to create invite")
		return
	}

	_ = c.JSON(201, h.toInviteResponse(invite))
}

// Get lets a client preview an invite before accepting it. No auth needed;
// the token itself is the capability.
func (h *InviteHandler) Get(c *drift.Context) {
	token := c.Param("token")
	if token == "" {
		c.BadRequest("invalid invite token")
		return
	}

	invite, err := h.inviteService.Get(context.Background(), token)
	if err != nil {
		respondServiceError(c, err, "failed to get invite")
		return
	}

	_ = c.JSON(200, h.toInviteResponse(invite))
}

func (h *InviteHandler) Accept(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	token := c.Param("token")
	if token == "" {
		c.BadRequest("invalid invite token")
		return
	}

	var req dto.AcceptInviteRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	invite, err := h.inviteService.Accept(context.Background(), token, userID, req.DisplayName)
	if err != nil {
		respondServiceError(c, err, "failed to accept invite")
		return
	}

	_ = c.JSON(200, h.toInviteResponse(invite))
}

func (h *InviteHandler) Revoke(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	token := c.Param("token")
	if token == "" {
		c.BadRequest("invalid invite token")
		return
	}

	if err := h.inviteService.Revoke(context.Background(), token, userID); err != nil {
		respondServiceError(c, err, "failed to revoke invite")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "invite revoked"})
}

func (h *InviteHandler) toInviteResponse(invite *models.Invite) dto.InviteResponse {
	return dto.InviteResponse{
		Token:         invite.Token,
		TargetType:    invite.TargetType,
		GroupID:       invite.GroupID,
		ReservationID: invite.ReservationID,
		Channel:       invite.Channel,
		Status:        invite.Status,
		URL:           fmt.Sprintf("%s/invite/%s", h.baseURL, invite.Token),
		ExpiresAt:     invite.ExpiresAt,
	}
}
