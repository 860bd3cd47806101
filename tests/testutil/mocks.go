package testutil

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/mpavlov/courtbook-api/internal/models"
	"github.com/mpavlov/courtbook-api/internal/oauth"
	"github.com/mpavlov/courtbook-api/internal/services"
)

// MockUserService mocks the UserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) FindOrCreateFromOAuth(ctx context.Context, info *oauth.UserInfo) (*models.User, error) {
	args := m.Called(ctx, info)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Update(ctx context.Context, id uuid.UUID, name string) (*models.User, error) {
	args := m.Called(ctx, id, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockGroupService mocks the GroupService
type MockGroupService struct {
	mock.Mock
}

func (m *MockGroupService) Create(ctx context.Context, name string, ownerID uuid.UUID, displayName string) (*models.Group, error) {
	args := m.Called(ctx, name, ownerID, displayName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Group), args.Error(1)
}

func (m *MockGroupService) Rename(ctx context.Context, groupID uuid.UUID, name string, actorID uuid.UUID) (*models.Group, error) {
	args := m.Called(ctx, groupID, name, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Group), args.Error(1)
}

func (m *MockGroupService) SetMemberAdmin(ctx context.Context, groupID, targetID uuid.UUID, makeAdmin bool, actorID uuid.UUID) error {
	args := m.Called(ctx, groupID, targetID, makeAdmin, actorID)
	return args.Error(0)
}

func (m *MockGroupService) RemoveMember(ctx context.Context, groupID, targetID, actorID uuid.UUID) error {
	args := m.Called(ctx, groupID, targetID, actorID)
	return args.Error(0)
}

func (m *MockGroupService) SetDisplayName(ctx context.Context, groupID, actorID uuid.UUID, displayName string) error {
	args := m.Called(ctx, groupID, actorID, displayName)
	return args.Error(0)
}

func (m *MockGroupService) SoftDelete(ctx context.Context, groupID, actorID uuid.UUID) error {
	args := m.Called(ctx, groupID, actorID)
	return args.Error(0)
}

func (m *MockGroupService) Get(ctx context.Context, groupID, actorID uuid.UUID) (*models.Group, error) {
	args := m.Called(ctx, groupID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Group), args.Error(1)
}

// MockReservationService mocks the ReservationService
type MockReservationService struct {
	mock.Mock
}

func (m *MockReservationService) Create(ctx context.Context, input services.CreateReservationInput, actorID uuid.UUID, actorName string) (*models.Reservation, error) {
	args := m.Called(ctx, input, actorID, actorName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reservation), args.Error(1)
}

func (m *MockReservationService) SetAttendance(ctx context.Context, reservationID, actorID uuid.UUID, displayName, status string) error {
	args := m.Called(ctx, reservationID, actorID, displayName, status)
	return args.Error(0)
}

func (m *MockReservationService) Cancel(ctx context.Context, reservationID, actorID uuid.UUID) error {
	args := m.Called(ctx, reservationID, actorID)
	return args.Error(0)
}

func (m *MockReservationService) UpdateDetails(ctx context.Context, reservationID uuid.UUID, input services.UpdateReservationInput, actorID uuid.UUID) (*models.Reservation, error) {
	args := m.Called(ctx, reservationID, input, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reservation), args.Error(1)
}

func (m *MockReservationService) ReassignOwner(ctx context.Context, reservationID, targetID uuid.UUID, targetName string, actorID uuid.UUID) error {
	args := m.Called(ctx, reservationID, targetID, targetName, actorID)
	return args.Error(0)
}

func (m *MockReservationService) Get(ctx context.Context, reservationID, actorID uuid.UUID) (*models.Reservation, error) {
	args := m.Called(ctx, reservationID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reservation), args.Error(1)
}

// MockInviteService mocks the InviteService
type MockInviteService struct {
	mock.Mock
}

func (m *MockInviteService) IssueGroupInvite(ctx context.Context, groupID, actorID uuid.UUID, channel, inviteeEmail string) (*models.Invite, error) {
	args := m.Called(ctx, groupID, actorID, channel, inviteeEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invite), args.Error(1)
}

func (m *MockInviteService) IssueReservationInvite(ctx context.Context, reservationID, actorID uuid.UUID, channel string) (*models.Invite, error) {
	args := m.Called(ctx, reservationID, actorID, channel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invite), args.Error(1)
}

func (m *MockInviteService) Accept(ctx context.Context, token string, actorID uuid.UUID, displayName string) (*models.Invite, error) {
	args := m.Called(ctx, token, actorID, displayName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invite), args.Error(1)
}

func (m *MockInviteService) Get(ctx context.Context, token string) (*models.Invite, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invite), args.Error(1)
}

func (m *MockInviteService) Revoke(ctx context.Context, token string, actorID uuid.UUID) error {
	args := m.Called(ctx, token, actorID)
	return args.Error(0)
}

// MockListingService mocks the ListingService
type MockListingService struct {
	mock.Mock
}

func (m *MockListingService) ListGroupsForActor(ctx context.Context, actorID uuid.UUID) ([]services.GroupSummary, error) {
	args := m.Called(ctx, actorID)
	return args.Get(0).([]services.GroupSummary), args.Error(1)
}

func (m *MockListingService) ListReservations(ctx context.Context, actorID uuid.UUID, mode string, limit int) ([]models.Reservation, error) {
	args := m.Called(ctx, actorID, mode, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Reservation), args.Error(1)
}

func (m *MockListingService) ListGroupAudit(ctx context.Context, groupID, actorID uuid.UUID, limit int) ([]models.AuditEvent, error) {
	args := m.Called(ctx, groupID, actorID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AuditEvent), args.Error(1)
}

// MockTokenService mocks the TokenService
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) StoreRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, tokenHash, expiresAt)
	return args.Error(0)
}

func (m *MockTokenService) ValidateRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, error) {
	args := m.Called(ctx, tokenHash)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockTokenService) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	args := m.Called(ctx, tokenHash)
	return args.Error(0)
}

func (m *MockTokenService) RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockOAuthProvider mocks an OAuth provider
type MockOAuthProvider struct {
	mock.Mock
}

func (m *MockOAuthProvider) GetConsentURL(state string) string {
	args := m.Called(state)
	return args.String(0)
}

func (m *MockOAuthProvider) ExchangeCode(ctx context.Context, code string) (*oauth.UserInfo, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauth.UserInfo), args.Error(1)
}

func (m *MockOAuthProvider) Name() string {
	args := m.Called()
	return args.String(0)
}
