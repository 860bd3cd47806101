package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	driftmw "github.com/m1z23r/drift/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mpavlov/courtbook-api/internal/middleware"
	"github.com/mpavlov/courtbook-api/internal/models"
	"github.com/mpavlov/courtbook-api/internal/services"
	"github.com/mpavlov/courtbook-api/pkg/dto"
	"github.com/mpavlov/courtbook-api/tests/testutil"
)

func setupInviteTest(t *testing.T) (*testutil.MockInviteService, *InviteHandler, *services.JWTService) {
	t.Helper()
	mockInviteService := new(testutil.MockInviteService)
	handler := NewInviteHandler(mockInviteService, "http://localhost:8080")
	jwtSvc := newTestJWTService()
	return mockInviteService, handler, jwtSvc
}

func TestInviteHandler_CreateGroupInvite_Success(t *testing.T) {
	mockInviteService, handler, jwtSvc := setupInviteTest(t)

	userID := uuid.New()
	email := "maria@example.com"
	groupID := uuid.New()
	invite := &models.Invite{
		Token:      "abc123token",
		TargetType: models.InviteTargetGroup,
		GroupID:    &groupID,
		CreatedBy:  userID,
		Channel:    models.InviteChannelWhatsApp,
		Status:     models.InviteStatusActive,
		ExpiresAt:  time.Now().Add(7 * 24 * time.Hour),
	}

	mockInviteService.On("IssueGroupInvite", mock.Anything, groupID, userID, models.InviteChannelWhatsApp, "").Return(invite, nil)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(jwtSvc))
	app.Post("/groups/:id/invites", handler.CreateGroupInvite)

	body := dto.CreateInviteRequest{Channel: models.InviteChannelWhatsApp}
	jsonBody, _ := json.Marshal(body)

	token := generateTestToken(t, jwtSvc, userID, email)
	req := httptest.NewRequest(http.MethodPost, "/groups/"+groupID.String()+"/invites", bytes.NewReader(jsonBody))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var response dto.InviteResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "abc123token", response.Token)
	assert.Equal(t, models.InviteTargetGroup, response.TargetType)
	assert.Equal(t, "http://localhost:8080/invite/abc123token", response.URL)

	mockInviteService.AssertExpectations(t)
}

func TestInviteHandler_CreateGroupInvite_DefaultsToLinkChannel(t *testing.T) {
	mockInviteService, handler, jwtSvc := setupInviteTest(t)

	userID := uuid.New()
	email := "maria@example.com"
	groupID := uuid.New()
	invite := &models.Invite{
		Token:      "def456token",
		TargetType: models.InviteTargetGroup,
		GroupID:    &groupID,
		CreatedBy:  userID,
		Channel:    models.InviteChannelLink,
		Status:     models.InviteStatusActive,
		ExpiresAt:  time.Now().Add(7 * 24 * time.Hour),
	}

	mockInviteService.On("IssueGroupInvite", mock.Anything, groupID, userID, models.InviteChannelLink, "").Return(invite, nil)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(jwtSvc))
	app.Post("/groups/:id/invites", handler.CreateGroupInvite)

	jsonBody, _ := json.Marshal(dto.CreateInviteRequest{})

	token := generateTestToken(t, jwtSvc, userID, email)
	req := httptest.NewRequest(http.MethodPost, "/groups/"+groupID.String()+"/invites", bytes.NewReader(jsonBody))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	mockInviteService.AssertExpectations(t)
}

func TestInviteHandler_CreateGroupInvite_NotAdmin(t *testing.T) {
	mockInviteService, handler, jwtSvc := setupInviteTest(t)

	userID := uuid.New()
	email := "petar@example.com"
	groupID := uuid.New()

	mockInviteService.On("IssueGroupInvite", mock.Anything, groupID, userID, models.InviteChannelLink, "").Return(nil, services.ErrNotAdmin)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(jwtSvc))
	app.Post("/groups/:id/invites", handler.CreateGroupInvite)

	jsonBody, _ := json.Marshal(dto.CreateInviteRequest{})

	token := generateTestToken(t, jwtSvc, userID, email)
	req := httptest.NewRequest(http.MethodPost, "/groups/"+groupID.String()+"/invites", bytes.NewReader(jsonBody))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)

	mockInviteService.AssertExpectations(t)
}

func TestInviteHandler_CreateReservationInvite_Success(t *testing.T) {
	mockInviteService, handler, jwtSvc := setupInviteTest(t)

	userID := uuid.New()
	email := "maria@example.com"
	reservationID := uuid.New()
	invite := &models.Invite{
		Token:         "res789token",
		TargetType:    models.InviteTargetReservation,
		ReservationID: &reservationID,
		CreatedBy:     userID,
		Channel:       models.InviteChannelLink,
		Status:        models.InviteStatusActive,
		ExpiresAt:     time.Now().Add(7 * 24 * time.Hour),
	}

	mockInviteService.On("IssueReservationInvite", mock.Anything, reservationID, userID, models.InviteChannelLink).Return(invite, nil)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(jwtSvc))
	app.Post("/reservations/:id/invites", handler.CreateReservationInvite)

	jsonBody, _ := json.Marshal(dto.CreateInviteRequest{})

	token := generateTestToken(t, jwtSvc, userID, email)
	req := httptest.NewRequest(http.MethodPost, "/reservations/"+reservationID.String()+"/invites", bytes.NewReader(jsonBody))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var response dto.InviteResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, models.InviteTargetReservation, response.TargetType)
	assert.Equal(t, &reservationID, response.ReservationID)

	mockInviteService.AssertExpectations(t)
}

func TestInviteHandler_Get_Public(t *testing.T) {
	mockInviteService, handler, jwtSvc := setupInviteTest(t)
	_ = jwtSvc

	groupID := uuid.New()
	invite := &models.Invite{
		Token:      "public-token",
		TargetType: models.InviteTargetGroup,
		GroupID:    &groupID,
		CreatedBy:  uuid.New(),
		Channel:    models.InviteChannelLink,
		Status:     models.InviteStatusActive,
		ExpiresAt:  time.Now().Add(time.Hour),
	}

	mockInviteService.On("Get", mock.Anything, "public-token").Return(invite, nil)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Get("/invites/:token", handler.Get)

	req := httptest.NewRequest(http.MethodGet, "/invites/public-token", nil)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.InviteResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "public-token", response.Token)

	mockInviteService.AssertExpectations(t)
}

func TestInviteHandler_Get_NotFound(t *testing.T) {
	mockInviteService, handler, _ := setupInviteTest(t)

	mockInviteService.On("Get", mock.Anything, "missing-token").Return(nil, services.ErrInviteNotFound)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Get("/invites/:token", handler.Get)

	req := httptest.NewRequest(http.MethodGet, "/invites/missing-token", nil)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "invite not found")

	mockInviteService.AssertExpectations(t)
}

func TestInviteHandler_Accept_Success(t *testing.T) {
	mockInviteService, handler, jwtSvc := setupInviteTest(t)

	userID := uuid.New()
	email := "petar@example.com"
	groupID := uuid.New()
	invite := &models.Invite{
		Token:      "join-token",
		TargetType: models.InviteTargetGroup,
		GroupID:    &groupID,
		CreatedBy:  uuid.New(),
		Channel:    models.InviteChannelLink,
		Status:     models.InviteStatusActive,
		ExpiresAt:  time.Now().Add(time.Hour),
	}

	mockInviteService.On("Accept", mock.Anything, "join-token", userID, "Petar").Return(invite, nil)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(jwtSvc))
	app.Post("/invites/:token/accept", handler.Accept)

	body := dto.AcceptInviteRequest{DisplayName: "Petar"}
	jsonBody, _ := json.Marshal(body)

	token := generateTestToken(t, jwtSvc, userID, email)
	req := httptest.NewRequest(http.MethodPost, "/invites/join-token/accept", bytes.NewReader(jsonBody))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.InviteResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, &groupID, response.GroupID)

	mockInviteService.AssertExpectations(t)
}

func TestInviteHandler_Accept_Expired(t *testing.T) {
	mockInviteService, handler, jwtSvc := setupInviteTest(t)

	userID := uuid.New()
	email := "petar@example.com"

	mockInviteService.On("Accept", mock.Anything, "old-token", userID, "Petar").Return(nil, services.ErrInviteExpired)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(jwtSvc))
	app.Post("/invites/:token/accept", handler.Accept)

	body := dto.AcceptInviteRequest{DisplayName: "Petar"}
	jsonBody, _ := json.Marshal(body)

	token := generateTestToken(t, jwtSvc, userID, email)
	req := httptest.NewRequest(http.MethodPost, "/invites/old-token/accept", bytes.NewReader(jsonBody))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "expired")

	mockInviteService.AssertExpectations(t)
}

func TestInviteHandler_Accept_NotAuthenticated(t *testing.T) {
	_, handler, jwtSvc := setupInviteTest(t)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(jwtSvc))
	app.Post("/invites/:token/accept", handler.Accept)

	body := dto.AcceptInviteRequest{DisplayName: "Petar"}
	jsonBody, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/invites/join-token/accept", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestInviteHandler_Revoke_Success(t *testing.T) {
	mockInviteService, handler, jwtSvc := setupInviteTest(t)

	userID := uuid.New()
	email := "maria@example.com"

	mockInviteService.On("Revoke", mock.Anything, "abc123token", userID).Return(nil)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(jwtSvc))
	app.Delete("/invites/:token", handler.Revoke)

	token := generateTestToken(t, jwtSvc, userID, email)
	req := httptest.NewRequest(http.MethodDelete, "/invites/abc123token", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "invite revoked")

	mockInviteService.AssertExpectations(t)
}

func TestInviteHandler_Revoke_NotAllowed(t *testing.T) {
	mockInviteService, handler, jwtSvc := setupInviteTest(t)

	userID := uuid.New()
	email := "stranger@example.com"

	mockInviteService.On("Revoke", mock.Anything, "abc123token", userID).Return(services.ErrNotAdmin)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(jwtSvc))
	app.Delete("/invites/:token", handler.Revoke)

	token := generateTestToken(t, jwtSvc, userID, email)
	req := httptest.NewRequest(http.MethodDelete, "/invites/abc123token", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)

	mockInviteService.AssertExpectations(t)
}
