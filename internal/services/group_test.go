package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpavlov/courtbook-api/internal/database"
	"github.com/mpavlov/courtbook-api/internal/models"
)

func setupGroupService(t *testing.T) (*GroupService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	return NewGroupService(db, nil), mock
}

type memberRow struct {
	userID      uuid.UUID
	role        string
	displayName string
}

func expectGroupLoad(mock pgxmock.PgxPoolIface, groupID, ownerID uuid.UUID, name string, members []memberRow) {
	now := time.Now()
	groupRows := pgxmock.NewRows([]string{"id", "name", "owner_id", "is_deleted", "created_at", "updated_at"}).
		AddRow(groupID, name, ownerID, false, now, now)
	mock.ExpectQuery(`SELECT .+ FROM groups WHERE id`).
		WithArgs(groupID).
		WillReturnRows(groupRows)

	rows := pgxmock.NewRows([]string{"id", "group_id", "user_id", "role", "display_name", "created_at"})
	for _, m := range members {
		rows.AddRow(uuid.New(), groupID, m.userID, m.role, m.displayName, now)
	}
	mock.ExpectQuery(`SELECT .+ FROM group_members WHERE group_id`).
		WithArgs(groupID).
		WillReturnRows(rows)
}

func TestGroupService_Create(t *testing.T) {
	svc, mock := setupGroupService(t)
	ctx := context.Background()
	ownerID := uuid.New()
	groupID := uuid.New()
	now := time.Now()

	mock.ExpectBegin()

	groupRows := pgxmock.NewRows([]string{"id", "name", "owner_id", "is_deleted", "created_at", "updated_at"}).
		AddRow(groupID, "Tuesday Tennis", ownerID, false, now, now)
	mock.ExpectQuery(`INSERT INTO groups`).
		WithArgs("Tuesday Tennis", ownerID).
		WillReturnRows(groupRows)

	mock.ExpectExec(`INSERT INTO group_members`).
		WithArgs(groupID, ownerID, models.RoleAdmin, "Maria").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	mock.ExpectCommit()

	group, err := svc.Create(ctx, "Tuesday Tennis", ownerID, "Maria")

	require.NoError(t, err)
	assert.Equal(t, groupID, group.ID)
	assert.Equal(t, ownerID, group.OwnerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupService_Create_EmptyName(t *testing.T) {
	svc, mock := setupGroupService(t)

	_, err := svc.Create(context.Background(), "   ", uuid.New(), "Maria")

	assert.ErrorIs(t, err, ErrEmptyName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupService_Rename(t *testing.T) {
	svc, mock := setupGroupService(t)
	ctx := context.Background()
	groupID := uuid.New()
	ownerID := uuid.New()

	mock.ExpectBegin()
	expectGroupLoad(mock, groupID, ownerID, "Old Name", []memberRow{
		{userID: ownerID, role: models.RoleAdmin, displayName: "Maria"},
	})
	mock.ExpectExec(`UPDATE groups SET name`).
		WithArgs("New Name", groupID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	group, err := svc.Rename(ctx, groupID, "New Name", ownerID)

	require.NoError(t, err)
	assert.Equal(t, "New Name", group.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupService_Rename_NotAdmin(t *testing.T) {
	svc, mock := setupGroupService(t)
	ctx := context.Background()
	groupID := uuid.New()
	ownerID := uuid.New()
	memberID := uuid.New()

	mock.ExpectBegin()
	expectGroupLoad(mock, groupID, ownerID, "Old Name", []memberRow{
		{userID: ownerID, role: models.RoleAdmin, displayName: "Maria"},
		{userID: memberID, role: models.RoleMember, displayName: "Petar"},
	})
	mock.ExpectRollback()

	_, err := svc.Rename(ctx, groupID, "New Name", memberID)

	assert.ErrorIs(t, err, ErrNotAdmin)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupService_Rename_GroupNotFound(t *testing.T) {
	svc, mock := setupGroupService(t)
	ctx := context.Background()
	groupID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM groups WHERE id`).
		WithArgs(groupID).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	_, err := svc.Rename(ctx, groupID, "New Name", uuid.New())

	assert.ErrorIs(t, err, ErrGroupNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupService_SetMemberAdmin_Grant(t *testing.T) {
	svc, mock := setupGroupService(t)
	ctx := context.Background()
	groupID := uuid.New()
	ownerID := uuid.New()
	targetID := uuid.New()

	mock.ExpectBegin()
	expectGroupLoad(mock, groupID, ownerID, "Tuesday Tennis", []memberRow{
		{userID: ownerID, role: models.RoleAdmin, displayName: "Maria"},
		{userID: targetID, role: models.RoleMember, displayName: "Petar"},
	})
	mock.ExpectExec(`UPDATE group_members SET role`).
		WithArgs(models.RoleAdmin, groupID, targetID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err := svc.SetMemberAdmin(ctx, groupID, targetID, true, ownerID)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupService_SetMemberAdmin_RevokeKeepsOwnerAdmin(t *testing.T) {
	svc, mock := setupGroupService(t)
	ctx := context.Background()
	groupID := uuid.New()
	ownerID := uuid.New()
	targetID := uuid.New()

	// Demoting the only explicit admin is fine: the owner is always an admin.
	mock.ExpectBegin()
	expectGroupLoad(mock, groupID, ownerID, "Tuesday Tennis", []memberRow{
		{userID: ownerID, role: models.RoleMember, displayName: "Maria"},
		{userID: targetID, role: models.RoleAdmin, displayName: "Petar"},
	})
	mock.ExpectExec(`UPDATE group_members SET role`).
		WithArgs(models.RoleMember, groupID, targetID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err := svc.SetMemberAdmin(ctx, groupID, targetID, false, ownerID)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupService_SetMemberAdmin_OwnerImmutable(t *testing.T) {
	svc, mock := setupGroupService(t)
	ctx := context.Background()
	groupID := uuid.New()
	ownerID := uuid.New()
	adminID := uuid.New()

	mock.ExpectBegin()
	expectGroupLoad(mock, groupID, ownerID, "Tuesday Tennis", []memberRow{
		{userID: ownerID, role: models.RoleAdmin, displayName: "Maria"},
		{userID: adminID, role: models.RoleAdmin, displayName: "Petar"},
	})
	mock.ExpectRollback()

	err := svc.SetMemberAdmin(ctx, groupID, ownerID, false, adminID)

	assert.ErrorIs(t, err, ErrOwnerImmutable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupService_SetMemberAdmin_TargetNotMember(t *testing.T) {
	svc, mock := setupGroupService(t)
	ctx := context.Background()
	groupID := uuid.New()
	ownerID := uuid.New()

	mock.ExpectBegin()
	expectGroupLoad(mock, groupID, ownerID, "Tuesday Tennis", []memberRow{
		{userID: ownerID, role: models.RoleAdmin, displayName: "Maria"},
	})
	mock.ExpectRollback()

	err := svc.SetMemberAdmin(ctx, groupID, uuid.New(), true, ownerID)

	assert.ErrorIs(t, err, ErrTargetNotMember)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupService_SetMemberAdmin_NotAdmin(t *testing.T) {
	svc, mock := setupGroupService(t)
	ctx := context.Background()
	groupID := uuid.New()
	ownerID := uuid.New()
	memberID := uuid.New()
	targetID := uuid.New()

	mock.ExpectBegin()
	expectGroupLoad(mock, groupID, ownerID, "Tuesday Tennis", []memberRow{
		{userID: ownerID, role: models.RoleAdmin, displayName: "Maria"},
		{userID: memberID, role: models.RoleMember, displayName: "Petar"},
		{userID: targetID, role: models.RoleMember, displayName: "Jovan"},
	})
	mock.ExpectRollback()

	err := svc.SetMemberAdmin(ctx, groupID, targetID, true, memberID)

	assert.ErrorIs(t, err, ErrNotAdmin)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupService_RemoveMember(t *testing.T) {
	svc, mock := setupGroupService(t)
	ctx := context.Background()
	groupID := uuid.New()
	ownerID := uuid.New()
	targetID := uuid.New()

	mock.ExpectBegin()
	expectGroupLoad(mock, groupID, ownerID, "Tuesday Tennis", []memberRow{
		{userID: ownerID, role: models.RoleAdmin, displayName: "Maria"},
		{userID: targetID, role: models.RoleMember, displayName: "Petar"},
	})
	mock.ExpectExec(`DELETE FROM group_members WHERE group_id`).
		WithArgs(groupID, targetID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	err := svc.RemoveMember(ctx, groupID, targetID, ownerID)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupService_RemoveMember_OwnerImmutable(t *testing.T) {
	svc, mock := setupGroupService(t)
	ctx := context.Background()
	groupID := uuid.New()
	ownerID := uuid.New()
	adminID := uuid.New()

	mock.ExpectBegin()
	expectGroupLoad(mock, groupID, ownerID, "Tuesday Tennis", []memberRow{
		{userID: ownerID, role: models.RoleAdmin, displayName: "Maria"},
		{userID: adminID, role: models.RoleAdmin, displayName: "Petar"},
	})
	mock.ExpectRollback()

	err := svc.RemoveMember(ctx, groupID, ownerID, adminID)

	assert.ErrorIs(t, err, ErrOwnerImmutable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupService_JoinViaInvite_NewMember(t *testing.T) {
	svc, mock := setupGroupService(t)
	ctx := context.Background()
	groupID := uuid.New()
	ownerID := uuid.New()
	joinerID := uuid.New()

	mock.ExpectBegin()
	expectGroupLoad(mock, groupID, ownerID, "Tuesday Tennis", []memberRow{
		{userID: ownerID, role: models.RoleAdmin, displayName: "Maria"},
	})
	mock.ExpectExec(`INSERT INTO group_members .+ ON CONFLICT .+ DO UPDATE`).
		WithArgs(groupID, joinerID, models.RoleMember, "Petar").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := svc.JoinViaInvite(ctx, groupID, joinerID, "Petar")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupService_JoinViaInvite_ExistingMemberIdempotent(t *testing.T) {
	svc, mock := setupGroupService(t)
	ctx := context.Background()
	groupID := uuid.New()
	ownerID := uuid.New()
	joinerID := uuid.New()

	mock.ExpectBegin()
	expectGroupLoad(mock, groupID, ownerID, "Tuesday Tennis", []memberRow{
		{userID: ownerID, role: models.RoleAdmin, displayName: "Maria"},
		{userID: joinerID, role: models.RoleMember, displayName: "Petar"},
	})
	mock.ExpectExec(`INSERT INTO group_members .+ ON CONFLICT .+ DO UPDATE`).
		WithArgs(groupID, joinerID, models.RoleMember, "Pero").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := svc.JoinViaInvite(ctx, groupID, joinerID, "Pero")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupService_SetDisplayName(t *testing.T) {
	svc, mock := setupGroupService(t)
	ctx := context.Background()
	groupID := uuid.New()
	userID := uuid.New()

	mock.ExpectExec(`UPDATE group_members SET display_name`).
		WithArgs("Pero", groupID, userID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := svc.SetDisplayName(ctx, groupID, userID, "Pero")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupService_SetDisplayName_NotMember(t *testing.T) {
	svc, mock := setupGroupService(t)
	ctx := context.Background()
	groupID := uuid.New()
	userID := uuid.New()

	mock.ExpectExec(`UPDATE group_members SET display_name`).
		WithArgs("Pero", groupID, userID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := svc.SetDisplayName(ctx, groupID, userID, "Pero")

	assert.ErrorIs(t, err, ErrNotGroupMember)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupService_SoftDelete_OwnerOnly(t *testing.T) {
	svc, mock := setupGroupService(t)
	ctx := context.Background()
	groupID := uuid.New()
	ownerID := uuid.New()
	adminID := uuid.New()

	mock.ExpectBegin()
	expectGroupLoad(mock, groupID, ownerID, "Tuesday Tennis", []memberRow{
		{userID: ownerID, role: models.RoleAdmin, displayName: "Maria"},
		{userID: adminID, role: models.RoleAdmin, displayName: "Petar"},
	})
	mock.ExpectRollback()

	err := svc.SoftDelete(ctx, groupID, adminID)

	assert.ErrorIs(t, err, ErrNotAdmin)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupService_SoftDelete(t *testing.T) {
	svc, mock := setupGroupService(t)
	ctx := context.Background()
	groupID := uuid.New()
	ownerID := uuid.New()

	mock.ExpectBegin()
	expectGroupLoad(mock, groupID, ownerID, "Tuesday Tennis", []memberRow{
		{userID: ownerID, role: models.RoleAdmin, displayName: "Maria"},
	})
	mock.ExpectExec(`UPDATE groups SET is_deleted`).
		WithArgs(groupID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err := svc.SoftDelete(ctx, groupID, ownerID)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupService_Get_NonMemberSeesNotFound(t *testing.T) {
	svc, mock := setupGroupService(t)
	ctx := context.Background()
	groupID := uuid.New()
	ownerID := uuid.New()

	expectGroupLoad(mock, groupID, ownerID, "Tuesday Tennis", []memberRow{
		{userID: ownerID, role: models.RoleAdmin, displayName: "Maria"},
	})

	_, err := svc.Get(ctx, groupID, uuid.New())

	assert.ErrorIs(t, err, ErrGroupNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupService_Get_DeletedGroupHidden(t *testing.T) {
	svc, mock := setupGroupService(t)
	ctx := context.Background()
	groupID := uuid.New()
	ownerID := uuid.New()
	now := time.Now()

	rows := pgxmock.NewRows([]string{"id", "name", "owner_id", "is_deleted", "created_at", "updated_at"}).
		AddRow(groupID, "Tuesday Tennis", ownerID, true, now, now)
	mock.ExpectQuery(`SELECT .+ FROM groups WHERE id`).
		WithArgs(groupID).
		WillReturnRows(rows)

	_, err := svc.Get(ctx, groupID, ownerID)

	assert.ErrorIs(t, err, ErrGroupNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
