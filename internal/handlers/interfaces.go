package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mpavlov/courtbook-api/internal/models"
	"github.com/mpavlov/courtbook-api/internal/oauth"
	"github.com/mpavlov/courtbook-api/internal/services"
)

// UserServiceInterface defines the methods used by handlers from UserService
type UserServiceInterface interface {
	FindOrCreateFromOAuth(ctx context.Context, info *oauth.UserInfo) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, id uuid.UUID, name string) (*models.User, error)
}

// GroupServiceInterface defines the methods used by handlers from GroupService
type GroupServiceInterface interface {
	Create(ctx context.Context, name string, ownerID uuid.UUID, displayName string) (*models.Group, error)
	Rename(ctx context.Context, groupID uuid.UUID, name string, actorID uuid.UUID) (*models.Group, error)
	SetMemberAdmin(ctx context.Context, groupID, targetID uuid.UUID, makeAdmin bool, actorID uuid.UUID) error
	RemoveMember(ctx context.Context, groupID, targetID, actorID uuid.UUID) error
	SetDisplayName(ctx context.Context, groupID, actorID uuid.UUID, displayName string) error
	SoftDelete(ctx context.Context, groupID, actorID uuid.UUID) error
	Get(ctx context.Context, groupID, actorID uuid.UUID) (*models.Group, error)
}

// ReservationServiceInterface defines the methods used by handlers from ReservationService
type ReservationServiceInterface interface {
	Create(ctx context.Context, input services.CreateReservationInput, actorID uuid.UUID, actorName string) (*models.Reservation, error)
	SetAttendance(ctx context.Context, reservationID, actorID uuid.UUID, displayName, status string) error
	Cancel(ctx context.Context, reservationID, actorID uuid.UUID) error
	UpdateDetails(ctx context.Context, reservationID uuid.UUID, input services.UpdateReservationInput, actorID uuid.UUID) (*models.Reservation, error)
	ReassignOwner(ctx context.Context, reservationID, targetID uuid.UUID, targetName string, actorID uuid.UUID) error
	Get(ctx context.Context, reservationID, actorID uuid.UUID) (*models.Reservation, error)
}

// InviteServiceInterface defines the methods used by handlers from InviteService
type InviteServiceInterface interface {
	IssueGroupInvite(ctx context.Context, groupID, actorID uuid.UUID, channel, inviteeEmail string) (*models.Invite, error)
	IssueReservationInvite(ctx context.Context, reservationID, actorID uuid.UUID, channel string) (*models.Invite, error)
	Accept(ctx context.Context, token string, actorID uuid.UUID, displayName string) (*models.Invite, error)
	Get(ctx context.Context, token string) (*models.Invite, error)
	Revoke(ctx context.Context, token string, actorID uuid.UUID) error
}

// ListingServiceInterface defines the methods used by handlers from ListingService
type ListingServiceInterface interface {
	ListGroupsForActor(ctx context.Context, actorID uuid.UUID) ([]services.GroupSummary, error)
	ListReservations(ctx context.Context, actorID uuid.UUID, mode string, limit int) ([]models.Reservation, error)
	ListGroupAudit(ctx context.Context, groupID, actorID uuid.UUID, limit int) ([]models.AuditEvent, error)
}

// TokenServiceInterface defines the methods used by handlers from TokenService
type TokenServiceInterface interface {
	StoreRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	ValidateRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error
}

// JWTServiceInterface defines the methods used by handlers from JWTService
type JWTServiceInterface interface {
	GenerateTokenPair(userID uuid.UUID, email string) (*services.TokenPair, error)
	ValidateRefreshToken(token string) (uuid.UUID, error)
	RefreshExpiry() time.Duration
}
