package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpavlov/courtbook-api/internal/database"
	"github.com/mpavlov/courtbook-api/internal/models"
)

func setupListingService(t *testing.T) (*ListingService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	groups := NewGroupService(db, nil)
	audit := NewAuditService(db)
	return NewListingService(db, groups, audit), mock
}

func TestListingService_ListGroupsForActor(t *testing.T) {
	svc, mock := setupListingService(t)
	ctx := context.Background()
	actorID := uuid.New()
	groupID1 := uuid.New()
	groupID2 := uuid.New()
	now := time.Now()

	rows := pgxmock.NewRows([]string{
		"id", "name", "owner_id", "created_at", "updated_at", "role", "display_name", "count",
	}).
		AddRow(groupID1, "Alpha", actorID, now, now, models.RoleAdmin, "Maria", 4).
		AddRow(groupID2, "Beta", uuid.New(), now, now, models.RoleMember, "Masha", 12)

	mock.ExpectQuery(`SELECT .+ FROM groups g\s+JOIN group_members gm`).
		WithArgs(actorID).
		WillReturnRows(rows)

	summaries, err := svc.ListGroupsForActor(ctx, actorID)

	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "Alpha", summaries[0].Group.Name)
	assert.Equal(t, models.RoleAdmin, summaries[0].Role)
	assert.Equal(t, 12, summaries[1].MemberCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingService_ListReservations_Active(t *testing.T) {
	svc, mock := setupListingService(t)
	ctx := context.Background()
	actorID := uuid.New()
	reservationID := uuid.New()
	groupID := uuid.New()
	now := time.Now()

	rows := pgxmock.NewRows([]string{
		"id", "group_id", "group_name", "visibility", "venue", "court", "starts_at",
		"duration_minutes", "creator_id", "legacy_creator_id", "created_by_name",
		"max_accepted", "allow_waitlist", "priority_ids", "status", "created_at", "updated_at",
	}).AddRow(
		reservationID, &groupID, "Tuesday Tennis", models.VisibilityGroup, "City Courts", "3", now.Add(time.Hour),
		90, &actorID, nil, "Maria",
		0, true, []uuid.UUID{}, models.ReservationActive, now, now,
	)

	mock.ExpectQuery(`SELECT .+ FROM reservations r`).
		WithArgs(actorID, defaultListLimit).
		WillReturnRows(rows)

	reservations, err := svc.ListReservations(ctx, actorID, "active", 0)

	require.NoError(t, err)
	require.Len(t, reservations, 1)
	assert.Equal(t, reservationID, reservations[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingService_ListReservations_ActiveIncludesStartedSessions(t *testing.T) {
	svc, mock := setupListingService(t)
	ctx := context.Background()
	actorID := uuid.New()
	reservationID := uuid.New()
	now := time.Now()

	rows := pgxmock.NewRows([]string{
		"id", "group_id", "group_name", "visibility", "venue", "court", "starts_at",
		"duration_minutes", "creator_id", "legacy_creator_id", "created_by_name",
		"max_accepted", "allow_waitlist", "priority_ids", "status", "created_at", "updated_at",
	}).AddRow(
		reservationID, nil, "", models.VisibilityLinkOnly, "City Courts", "1", now.Add(-30*time.Minute),
		90, &actorID, nil, "Maria",
		0, true, []uuid.UUID{}, models.ReservationActive, now, now,
	)

	// Active mode filters on status only; it must not cut off sessions
	// whose start time has already passed.
	mock.ExpectQuery(`AND r\.status = 'active' ORDER BY r\.starts_at ASC`).
		WithArgs(actorID, defaultListLimit).
		WillReturnRows(rows)

	reservations, err := svc.ListReservations(ctx, actorID, "active", 0)

	require.NoError(t, err)
	require.Len(t, reservations, 1)
	assert.Equal(t, reservationID, reservations[0].ID)
	assert.True(t, reservations[0].StartsAt.Before(now))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingService_ListReservations_History(t *testing.T) {
	svc, mock := setupListingService(t)
	ctx := context.Background()
	actorID := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM reservations r`).
		WithArgs(actorID, 10).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "group_id", "group_name", "visibility", "venue", "court", "starts_at",
			"duration_minutes", "creator_id", "legacy_creator_id", "created_by_name",
			"max_accepted", "allow_waitlist", "priority_ids", "status", "created_at", "updated_at",
		}))

	reservations, err := svc.ListReservations(ctx, actorID, "history", 10)

	require.NoError(t, err)
	assert.Empty(t, reservations)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingService_ListReservations_LimitCapped(t *testing.T) {
	svc, mock := setupListingService(t)
	ctx := context.Background()
	actorID := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM reservations r`).
		WithArgs(actorID, maxListLimit).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "group_id", "group_name", "visibility", "venue", "court", "starts_at",
			"duration_minutes", "creator_id", "legacy_creator_id", "created_by_name",
			"max_accepted", "allow_waitlist", "priority_ids", "status", "created_at", "updated_at",
		}))

	_, err := svc.ListReservations(ctx, actorID, "active", 10000)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingService_ListReservations_InvalidMode(t *testing.T) {
	svc, mock := setupListingService(t)

	_, err := svc.ListReservations(context.Background(), uuid.New(), "upcoming-ish", 0)

	assert.ErrorIs(t, err, ErrInvalidListMode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingService_ListGroupAudit(t *testing.T) {
	svc, mock := setupListingService(t)
	ctx := context.Background()
	groupID := uuid.New()
	actorID := uuid.New()
	now := time.Now()

	expectGroupLoad(mock, groupID, actorID, "Tuesday Tennis", []memberRow{
		{userID: actorID, role: models.RoleMember, displayName: "Petar"},
	})

	rows := pgxmock.NewRows([]string{
		"id", "group_id", "type", "actor_id", "actor_name", "target_id", "target_name", "metadata", "created_at",
	}).AddRow(
		uuid.New(), groupID, models.AuditMemberJoined, &actorID, "Petar", nil, nil, map[string]string{}, now,
	)
	mock.ExpectQuery(`SELECT .+ FROM audit_events`).
		WithArgs(groupID, defaultListLimit).
		WillReturnRows(rows)

	events, err := svc.ListGroupAudit(ctx, groupID, actorID, 0)

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.AuditMemberJoined, events[0].Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingService_ListGroupAudit_NonMember(t *testing.T) {
	svc, mock := setupListingService(t)
	ctx := context.Background()
	groupID := uuid.New()
	ownerID := uuid.New()

	expectGroupLoad(mock, groupID, ownerID, "Tuesday Tennis", []memberRow{
		{userID: ownerID, role: models.RoleAdmin, displayName: "Maria"},
	})

	_, err := svc.ListGroupAudit(ctx, groupID, uuid.New(), 0)

	assert.ErrorIs(t, err, ErrGroupNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
