package handlers

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"

	"github.com/mpavlov/courtbook-api/internal/middleware"
	"github.com/mpavlov/courtbook-api/internal/models"
	"github.com/mpavlov/courtbook-api/internal/services"
	"github.com/mpavlov/courtbook-api/pkg/dto"
)

type ReservationHandler struct {
	reservationService ReservationServiceInterface
	listingService     ListingServiceInterface
	userService        UserServiceInterface
}

func NewReservationHandler(
	reservationService ReservationServiceInterface,
	listingService ListingServiceInterface,
	userService UserServiceInterface,
) *ReservationHandler {
	return &ReservationHandler{
		reservationService: reservationService,
		listingService:     listingService,
		userService:        userService,
	}
}

func (h *ReservationHandler) Create(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.CreateReservationRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.StartsAt == "" {
		c.BadRequest("starts_at is required")
		return
	}

	ctx := context.Background()

	actorName := ""
	if user, err := h.userService.GetByID(ctx, userID); err == nil {
		actorName = user.Name
	}

	reservation, err := h.reservationService.Create(ctx, services.CreateReservationInput{
		GroupID:         req.GroupID,
		Visibility:      req.Visibility,
		Venue:           req.Venue,
		Court:           req.Court,
		StartsAt:        req.StartsAt,
		DurationMinutes: req.DurationMinutes,
		MaxAccepted:     req.MaxAccepted,
		AllowWaitlist:   req.AllowWaitlist,
		PriorityIDs:     req.PriorityIDs,
	}, userID, actorName)
	if err != nil {
		respondServiceError(c, err, "failed to create reservation")
		return
	}

	_ = c.JSON(201, toReservationResponse(reservation))
}

func (h *ReservationHandler) List(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	mode := c.QueryParam("mode")
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	reservations, err := h.listingService.ListReservations(context.Background(), userID, mode, limit)
	if err != nil {
		respondServiceError(c, err, "failed to list reservations")
		return
	}

	response := make([]dto.ReservationResponse, len(reservations))
	for i := range reservations {
		response[i] = toReservationResponse(&reservations[i])
	}

	_ = c.JSON(200, response)
}

func (h *ReservationHandler) Get(c *drift.Context) {
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

	reservation, err := h.reservationService.Get(context.Background(), reservationID, userID)
	if err != nil {
		respondServiceError(c, err, "failed to get reservation")
		return
	}

	_ = c.JSON(200, toReservationResponse(reservation))
}

func (h *ReservationHandler) Update(c *drift.Context) {
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

	var req dto.UpdateReservationRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	reservation, err := h.reservationService.UpdateDetails(context.Background(), reservationID, services.UpdateReservationInput{
		Venue:           req.Venue,
		Court:           req.Court,
		StartsAt:        req.StartsAt,
		DurationMinutes: req.DurationMinutes,
		MaxAccepted:     req.MaxAccepted,
		AllowWaitlist:   req.AllowWaitlist,
		GroupID:         req.GroupID,
		LinkOnly:        req.LinkOnly,
	}, userID)
	if err != nil {
		respondServiceError(c, err, "failed to update reservation")
		return
	}

	_ = c.JSON(200, toReservationResponse(reservation))
}

func (h *ReservationHandler) Cancel(c *drift.Context) {
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

	if err := h.reservationService.Cancel(context.Background(), reservationID, userID); err != nil {
		respondServiceError(c, err, "failed to cancel reservation")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "reservation cancelled"})
}

func (h *ReservationHandler) SetAttendance(c *drift.Context) {
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

	var req dto.SetAttendanceRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	displayName := req.DisplayName
	if displayName == "" {
		if user, err := h.userService.GetByID(context.Background(), userID); err == nil {
			displayName = user.Name
		}
	}

	if err := h.reservationService.SetAttendance(context.Background(), reservationID, userID, displayName, req.Status); err != nil {
		respondServiceError(c, err, "failed to update attendance")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "attendance updated"})
}

func (h *ReservationHandler) ReassignOwner(c *drift.Context) {
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

	var req dto.ReassignOwnerRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.UserID == uuid.Nil {
		c.BadRequest("user_id is required")
		return
	}

	if err := h.reservationService.ReassignOwner(context.Background(), reservationID, req.UserID, req.DisplayName, userID); err != nil {
		respondServiceError(c, err, "failed to reassign reservation")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "reservation reassigned"})
}

func toReservationResponse(r *models.Reservation) dto.ReservationResponse {
	signups := make([]dto.SignupResponse, len(r.Signups))
	for i, su := range r.Signups {
		signups[i] = dto.SignupResponse{
			ID:          su.ID,
			UserID:      su.UserID,
			DisplayName: su.DisplayName,
			Status:      su.Status,
			CreatedAt:   su.CreatedAt,
		}
	}
	return dto.ReservationResponse{
		ID:              r.ID,
		GroupID:         r.GroupID,
		GroupName:       r.GroupName,
		Visibility:      r.Visibility,
		Venue:           r.Venue,
		Court:           r.Court,
		StartsAt:        r.StartsAt,
		DurationMinutes: r.DurationMinutes,
		CreatorID:       r.CreatorID,
		CreatedByName:   r.CreatedByName,
		MaxAccepted:     r.MaxAccepted,
		AllowWaitlist:   r.AllowWaitlist,
		PriorityIDs:     r.PriorityIDs,
		Status:          r.Status,
		Signups:         signups,
	}
}
