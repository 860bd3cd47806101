package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mpavlov/courtbook-api/internal/database"
	"github.com/mpavlov/courtbook-api/internal/models"
	"github.com/mpavlov/courtbook-api/internal/oauth"
)

// Fixtures provides factory methods for creating test data
type Fixtures struct {
	db      *database.DB
	counter int
}

// NewFixtures creates a new fixtures factory
func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// CreateUser creates a test user with default values
func (f *Fixtures) CreateUser(t *testing.T, opts ...UserOption) *models.User {
	t.Helper()
	f.counter++

	user := &models.User{
		Email:      fmt.Sprintf("user%d@example.com", f.counter),
		Name:       fmt.Sprintf("Test User %d", f.counter),
		Provider:   "google",
		ProviderID: fmt.Sprintf("provider-%d", f.counter),
	}

	for _, opt := range opts {
		opt(user)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO users (email, name, avatar_url, provider, provider_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, email, name, avatar_url, provider, provider_id, created_at, updated_at
	`, user.Email, user.Name, user.AvatarURL, user.Provider, user.ProviderID).Scan(
		&user.ID, &user.Email, &user.Name, &user.AvatarURL,
		&user.Provider, &user.ProviderID, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user
}

// UserOption configures a test user
type UserOption func(*models.User)

// WithEmail sets the user's email
func WithEmail(email string) UserOption {
	return func(u *models.User) {
		u.Email = email
	}
}

// WithName sets the user's name
func WithName(name string) UserOption {
	return func(u *models.User) {
		u.Name = name
	}
}

// CreateGroup creates a test group with the given owner enrolled as admin
func (f *Fixtures) CreateGroup(t *testing.T, owner *models.User, opts ...GroupOption) *models.Group {
	t.Helper()
	f.counter++

	group := &models.Group{
		Name:    fmt.Sprintf("Test Group %d", f.counter),
		OwnerID: owner.ID,
	}

	for _, opt := range opts {
		opt(group)
	}

	ctx := context.Background()
	tx, err := f.db.Pool.Begin(ctx)
	if err != nil {
		t.Fatalf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO groups (name, owner_id)
		VALUES ($1, $2)
		RETURNING id, name, owner_id, created_at, updated_at
	`, group.Name, group.OwnerID).Scan(&group.ID, &group.Name, &group.OwnerID, &group.CreatedAt, &group.UpdatedAt)
	if err != nil {
		t.Fatalf("failed to create group: %v", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO group_members (group_id, user_id, role, display_name)
		VALUES ($1, $2, $3, $4)
	`, group.ID, owner.ID, models.RoleAdmin, owner.Name)
	if err != nil {
		t.Fatalf("failed to add owner as member: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("failed to commit transaction: %v", err)
	}

	return group
}

// GroupOption configures a test group
type GroupOption func(*models.Group)

// WithGroupName sets the group's name
func WithGroupName(name string) GroupOption {
	return func(g *models.Group) {
		g.Name = name
	}
}

// AddGroupMember enrolls a user in a group with the given role
func (f *Fixtures) AddGroupMember(t *testing.T, group *models.Group, user *models.User, role string) {
	t.Helper()
	ctx := context.Background()

	_, err := f.db.Pool.Exec(ctx, `
		INSERT INTO group_members (group_id, user_id, role, display_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (group_id, user_id) DO UPDATE SET role = EXCLUDED.role
	`, group.ID, user.ID, role, user.Name)
	if err != nil {
		t.Fatalf("failed to add group member: %v", err)
	}
}

// CreateReservation creates a test reservation
func (f *Fixtures) CreateReservation(t *testing.T, creator *models.User, opts ...ReservationOption) *models.Reservation {
	t.Helper()
	f.counter++

	r := &models.Reservation{
		Visibility:      models.VisibilityLinkOnly,
		Venue:           fmt.Sprintf("Venue %d", f.counter),
		Court:           "1",
		StartsAt:        time.Now().Add(48 * time.Hour).Truncate(time.Second),
		DurationMinutes: 90,
		CreatorID:       &creator.ID,
		CreatedByName:   creator.Name,
		AllowWaitlist:   true,
		Status:          models.ReservationActive,
	}

	for _, opt := range opts {
		opt(r)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO reservations (group_id, group_name, visibility, venue, court, starts_at,
			duration_minutes, creator_id, legacy_creator_id, created_by_name,
			max_accepted, allow_waitlist, priority_ids, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at
	`, r.GroupID, r.GroupName, r.Visibility, r.Venue, r.Court, r.StartsAt,
		r.DurationMinutes, r.CreatorID, r.LegacyCreatorID, r.CreatedByName,
		r.MaxAccepted, r.AllowWaitlist, r.PriorityIDs, r.Status).Scan(
		&r.ID, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create reservation: %v", err)
	}

	return r
}

// ReservationOption configures a test reservation
type ReservationOption func(*models.Reservation)

// InGroup scopes the reservation to the given group
func InGroup(group *models.Group) ReservationOption {
	return func(r *models.Reservation) {
		r.GroupID = &group.ID
		r.GroupName = group.Name
		r.Visibility = models.VisibilityGroup
	}
}

// StartingAt sets the reservation start time
func StartingAt(at time.Time) ReservationOption {
	return func(r *models.Reservation) {
		r.StartsAt = at
	}
}

// WithLegacyCreator clears the creator id and records only a legacy one
func WithLegacyCreator(legacyID uuid.UUID, name string) ReservationOption {
	return func(r *models.Reservation) {
		r.CreatorID = nil
		r.LegacyCreatorID = &legacyID
		r.CreatedByName = name
	}
}

// AddSignup records an attendance entry tied to an actor id
func (f *Fixtures) AddSignup(t *testing.T, reservation *models.Reservation, user *models.User, status string) {
	t.Helper()
	ctx := context.Background()

	_, err := f.db.Pool.Exec(ctx, `
		INSERT INTO signups (reservation_id, user_id, name_key, display_name, status)
		VALUES ($1, $2, $3, $4, $5)
	`, reservation.ID, user.ID, models.NameKey(user.Name), user.Name, status)
	if err != nil {
		t.Fatalf("failed to add signup: %v", err)
	}
}

// AddLegacySignup records an attendance entry keyed only by display name
func (f *Fixtures) AddLegacySignup(t *testing.T, reservation *models.Reservation, displayName, status string) {
	t.Helper()
	ctx := context.Background()

	nameKey := models.NameKey(displayName)
	_, err := f.db.Pool.Exec(ctx, `
		INSERT INTO signups (reservation_id, name_key, display_name, status)
		VALUES ($1, $2, $3, $4)
	`, reservation.ID, nameKey, displayName, status)
	if err != nil {
		t.Fatalf("failed to add legacy signup: %v", err)
	}
}

// CreateInvite creates a test invite token
func (f *Fixtures) CreateInvite(t *testing.T, invite *models.Invite) *models.Invite {
	t.Helper()
	ctx := context.Background()

	if invite.Token == "" {
		f.counter++
		invite.Token = fmt.Sprintf("test-invite-token-%d", f.counter)
	}
	if invite.Channel == "" {
		invite.Channel = models.InviteChannelLink
	}
	if invite.Status == "" {
		invite.Status = models.InviteStatusActive
	}
	if invite.ExpiresAt.IsZero() {
		invite.ExpiresAt = time.Now().Add(7 * 24 * time.Hour)
	}

	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO invites (token, target_type, group_id, reservation_id, created_by, channel, status, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`, invite.Token, invite.TargetType, invite.GroupID, invite.ReservationID,
		invite.CreatedBy, invite.Channel, invite.Status, invite.ExpiresAt).Scan(&invite.CreatedAt)
	if err != nil {
		t.Fatalf("failed to create invite: %v", err)
	}

	return invite
}

// CreateRefreshToken creates a test refresh token
func (f *Fixtures) CreateRefreshToken(t *testing.T, userID uuid.UUID, tokenHash string, expiresAt time.Time) {
	t.Helper()
	ctx := context.Background()

	_, err := f.db.Pool.Exec(ctx, `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
	`, userID, tokenHash, expiresAt)
	if err != nil {
		t.Fatalf("failed to create refresh token: %v", err)
	}
}

// OAuthUserInfo creates test OAuth user info
func OAuthUserInfo(email, name, provider, id string) *oauth.UserInfo {
	return &oauth.UserInfo{
		Email:     email,
		Name:      name,
		AvatarURL: "https://example.com/avatar.png",
		ID:        id,
		Provider:  provider,
	}
}
