package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mpavlov/courtbook-api/internal/authz"
	"github.com/mpavlov/courtbook-api/internal/database"
	"github.com/mpavlov/courtbook-api/internal/models"
)

type InviteService struct {
	db           *database.DB
	groups       *GroupService
	reservations *ReservationService
	email        *EmailService
	baseURL      string
	ttl          time.Duration
}

func NewInviteService(db *database.DB, groups *GroupService, reservations *ReservationService, email *EmailService, baseURL string, ttl time.Duration) *InviteService {
	return &InviteService{
		db:           db,
		groups:       groups,
		reservations: reservations,
		email:        email,
		baseURL:      baseURL,
		ttl:          ttl,
	}
}

func (s *InviteService) IssueGroupInvite(ctx context.Context, groupID, actorID uuid.UUID, channel, inviteeEmail string) (*models.Invite, error) {
	if !models.ValidInviteChannel(channel) {
		return nil, ErrInvalidChannel
	}

	group, err := s.groups.loadGroup(ctx, s.db.Pool, groupID, false)
	if err != nil {
		return nil, err
	}
	if !authz.IsAdmin(group, actorID) {
		return nil, ErrNotAdmin
	}

	invite, err := s.insertInvite(ctx, models.Invite{
		TargetType: models.InviteTargetGroup,
		GroupID:    &groupID,
		CreatedBy:  actorID,
		Channel:    channel,
	})
	if err != nil {
		return nil, err
	}

	if channel == models.InviteChannelEmail && inviteeEmail != "" && s.email != nil {
		inviteURL := fmt.Sprintf("%s/invite/%s", s.baseURL, invite.Token)
		inviterName := displayNameOf(group, actorID)
		go func() {
			if err := s.email.SendGroupInvite(inviteeEmail, group.Name, inviterName, inviteURL); err != nil {
				log.Printf("invite: failed to send invite email for group %s: %v", groupID, err)
			}
		}()
	}

	return invite, nil
}

// IssueReservationInvite mints a guest-access token for one reservation. The
// owning group id rides along for provenance; redemption grants guest access,
// not membership.
func (s *InviteService) IssueReservationInvite(ctx context.Context, reservationID, actorID uuid.UUID, channel string) (*models.Invite, error) {
	if !models.ValidInviteChannel(channel) {
		return nil, ErrInvalidChannel
	}

	r, err := s.reservations.loadReservation(ctx, s.db.Pool, reservationID, false)
	if err != nil {
		return nil, err
	}
	if !authz.IsReservationCreator(r, actorID) {
		return nil, ErrNotCreator
	}

	return s.insertInvite(ctx, models.Invite{
		TargetType:    models.InviteTargetReservation,
		GroupID:       r.GroupID,
		ReservationID: &reservationID,
		CreatedBy:     actorID,
		Channel:       channel,
	})
}

// Accept redeems a token. Tokens stay active after a successful redemption,
// so several invitees can use the same link until it expires; redeeming
// twice is idempotent for the same actor.
func (s *InviteService) Accept(ctx context.Context, token string, actorID uuid.UUID, displayName string) (*models.Invite, error) {
	invite, err := s.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if !invite.Redeemable(time.Now()) {
		return nil, ErrInviteExpired
	}

	switch invite.TargetType {
	case models.InviteTargetGroup:
		if invite.GroupID == nil {
			return nil, ErrInviteNotFound
		}
		if err := s.groups.JoinViaInvite(ctx, *invite.GroupID, actorID, displayName); err != nil {
			return nil, err
		}
	case models.InviteTargetReservation:
		if invite.ReservationID == nil {
			return nil, ErrInviteNotFound
		}
		if _, err := s.reservations.loadReservation(ctx, s.db.Pool, *invite.ReservationID, false); err != nil {
			return nil, err
		}
		_, err = s.db.Pool.Exec(ctx, `
			INSERT INTO reservation_guests (reservation_id, user_id)
			VALUES ($1, $2)
			ON CONFLICT (reservation_id, user_id) DO NOTHING
		`, *invite.ReservationID, actorID)
		if err != nil {
			return nil, fmt.Errorf("failed to grant guest access: %w", err)
		}
	default:
		return nil, ErrInviteNotFound
	}

	return invite, nil
}

func (s *InviteService) Get(ctx context.Context, token string) (*models.Invite, error) {
	var invite models.Invite
	err := s.db.Pool.QueryRow(ctx, `
		SELECT token, target_type, group_id, reservation_id, created_by, channel, status, created_at, expires_at
		FROM invites WHERE token = $1
	`, token).Scan(
		&invite.Token, &invite.TargetType, &invite.GroupID, &invite.ReservationID,
		&invite.CreatedBy, &invite.Channel, &invite.Status, &invite.CreatedAt, &invite.ExpiresAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInviteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load invite: %w", err)
	}
	return &invite, nil
}

// Revoke voids a token before its natural expiry. Allowed for the issuer or
// an admin of the invite's group.
func (s *InviteService) Revoke(ctx context.Context, token string, actorID uuid.UUID) error {
	invite, err := s.Get(ctx, token)
	if err != nil {
		return err
	}

	allowed := invite.CreatedBy == actorID
	if !allowed && invite.GroupID != nil {
		group, err := s.groups.loadGroup(ctx, s.db.Pool, *invite.GroupID, false)
		if err == nil && authz.IsAdmin(group, actorID) {
			allowed = true
		}
	}
	if !allowed {
		return ErrNotAdmin
	}

	_, err = s.db.Pool.Exec(ctx, `
		UPDATE invites SET status = $1 WHERE token = $2
	`, models.InviteStatusVoid, token)
	if err != nil {
		return fmt.Errorf("failed to revoke invite: %w", err)
	}
	return nil
}

func (s *InviteService) insertInvite(ctx context.Context, invite models.Invite) (*models.Invite, error) {
	token, err := generateInviteToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate invite token: %w", err)
	}

	err = s.db.Pool.QueryRow(ctx, `
		INSERT INTO invites (token, target_type, group_id, reservation_id, created_by, channel, status, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW() + $8)
		RETURNING token, target_type, group_id, reservation_id, created_by, channel, status, created_at, expires_at
	`, token, invite.TargetType, invite.GroupID, invite.ReservationID, invite.CreatedBy,
		invite.Channel, models.InviteStatusActive, s.ttl,
	).Scan(
		&invite.Token, &invite.TargetType, &invite.GroupID, &invite.ReservationID,
		&invite.CreatedBy, &invite.Channel, &invite.Status, &invite.CreatedAt, &invite.ExpiresAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create invite: %w", err)
	}
	return &invite, nil
}

func generateInviteToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
