package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mpavlov/courtbook-api/internal/authz"
	"github.com/mpavlov/courtbook-api/internal/database"
	"github.com/mpavlov/courtbook-api/internal/models"
)

type GroupService struct {
	db    *database.DB
	audit AuditRecorder
}

func NewGroupService(db *database.DB, audit AuditRecorder) *GroupService {
	return &GroupService{db: db, audit: audit}
}

func (s *GroupService) Create(ctx context.Context, name string, ownerID uuid.UUID, displayName string) (*models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var group models.Group
	err = tx.QueryRow(ctx, `
		INSERT INTO groups (name, owner_id)
		VALUES ($1, $2)
		RETURNING id, name, owner_id, is_deleted, created_at, updated_at
	`, name, ownerID).Scan(&group.ID, &group.Name, &group.OwnerID, &group.IsDeleted, &group.CreatedAt, &group.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO group_members (group_id, user_id, role, display_name)
		VALUES ($1, $2, $3, $4)
	`, group.ID, ownerID, models.RoleAdmin, displayName)
	if err != nil {
		return nil, fmt.Errorf("failed to add owner as member: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &group, nil
}

func (s *GroupService) Rename(ctx context.Context, groupID uuid.UUID, name string, actorID uuid.UUID) (*models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	group, err := s.lockGroup(ctx, tx, groupID)
	if err != nil {
		return nil, err
	}
	if !authz.IsAdmin(group, actorID) {
		return nil, ErrNotAdmin
	}

	previousName := group.Name
	_, err = tx.Exec(ctx, `
		UPDATE groups SET name = $1, updated_at = NOW() WHERE id = $2
	`, name, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to rename group: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	group.Name = name

	// The denormalized copy on reservations is reconciled outside the
	// transaction; the rename itself must not depend on it.
	go s.cascadeGroupName(context.WithoutCancel(ctx), groupID, name)

	recordAudit(s.audit, models.AuditEvent{
		GroupID:   groupID,
		Type:      models.AuditGroupRenamed,
		ActorID:   &actorID,
		ActorName: displayNameOf(group, actorID),
		Metadata:  map[string]string{"previous_name": previousName, "new_name": name},
	})

	return group, nil
}

func (s *GroupService) SetMemberAdmin(ctx context.Context, groupID, targetID uuid.UUID, makeAdmin bool, actorID uuid.UUID) error {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	group, err := s.lockGroup(ctx, tx, groupID)
	if err != nil {
		return err
	}
	if !authz.IsAdmin(group, actorID) {
		return ErrNotAdmin
	}
	if targetID == group.OwnerID {
		return ErrOwnerImmutable
	}

	target := memberOf(group, targetID)
	if target == nil {
		return ErrTargetNotMember
	}

	// Next admin set is (admins ± target) ∪ {owner}; the owner term keeps
	// the set from ever emptying.
	nextAdmins := map[uuid.UUID]bool{group.OwnerID: true}
	for _, m := range group.Members {
		if m.Role == models.RoleAdmin {
			nextAdmins[m.UserID] = true
		}
	}
	if makeAdmin {
		nextAdmins[targetID] = true
	} else {
		delete(nextAdmins, targetID)
	}
	if len(nextAdmins) == 0 {
		return ErrLastAdmin
	}

	role := models.RoleMember
	if makeAdmin {
		role = models.RoleAdmin
	}
	_, err = tx.Exec(ctx, `
		UPDATE group_members SET role = $1 WHERE group_id = $2 AND user_id = $3
	`, role, groupID, targetID)
	if err != nil {
		return fmt.Errorf("failed to update member role: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	auditType := models.AuditAdminGranted
	if !makeAdmin {
		auditType = models.AuditAdminRevoked
	}
	targetName := target.DisplayName
	recordAudit(s.audit, models.AuditEvent{
		GroupID:    groupID,
		Type:       auditType,
		ActorID:    &actorID,
		ActorName:  displayNameOf(group, actorID),
		TargetID:   &targetID,
		TargetName: &targetName,
	})

	return nil
}

func (s *GroupService) RemoveMember(ctx context.Context, groupID, targetID, actorID uuid.UUID) error {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	group, err := s.lockGroup(ctx, tx, groupID)
	if err != nil {
		return err
	}
	if !authz.IsAdmin(group, actorID) {
		return ErrNotAdmin
	}
	if targetID == group.OwnerID {
		return ErrOwnerImmutable
	}

	target := memberOf(group, targetID)
	if target == nil {
		return ErrTargetNotMember
	}

	if target.Role == models.RoleAdmin {
		remaining := map[uuid.UUID]bool{group.OwnerID: true}
		for _, m := range group.Members {
			if m.Role == models.RoleAdmin && m.UserID != targetID {
				remaining[m.UserID] = true
			}
		}
		if len(remaining) == 0 {
			return ErrLastAdmin
		}
	}

	// Removing the row drops membership, admin role and the display-name
	// entry together.
	_, err = tx.Exec(ctx, `
		DELETE FROM group_members WHERE group_id = $1 AND user_id = $2
	`, groupID, targetID)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	targetName := target.DisplayName
	recordAudit(s.audit, models.AuditEvent{
		GroupID:    groupID,
		Type:       models.AuditMemberRemoved,
		ActorID:    &actorID,
		ActorName:  displayNameOf(group, actorID),
		TargetID:   &targetID,
		TargetName: &targetName,
	})

	return nil
}

// JoinViaInvite adds the actor to the group, overwriting their display name.
// Joining twice is a no-op apart from the display-name refresh.
func (s *GroupService) JoinViaInvite(ctx context.Context, groupID, actorID uuid.UUID, displayName string) error {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	group, err := s.lockGroup(ctx, tx, groupID)
	if err != nil {
		return err
	}
	alreadyMember := authz.IsMember(group, actorID)

	_, err = tx.Exec(ctx, `
		INSERT INTO group_members (group_id, user_id, role, display_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (group_id, user_id) DO UPDATE SET display_name = EXCLUDED.display_name
	`, groupID, actorID, models.RoleMember, displayName)
	if err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	if !alreadyMember {
		recordAudit(s.audit, models.AuditEvent{
			GroupID:   groupID,
			Type:      models.AuditMemberJoined,
			ActorID:   &actorID,
			ActorName: displayName,
		})
	}

	return nil
}

func (s *GroupService) SetDisplayName(ctx context.Context, groupID, actorID uuid.UUID, displayName string) error {
	tag, err := s.db.Pool.Exec(ctx, `
		UPDATE group_members SET display_name = $1 WHERE group_id = $2 AND user_id = $3
	`, displayName, groupID, actorID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotGroupMember
	}
	return nil
}

func (s *GroupService) SoftDelete(ctx context.Context, groupID, actorID uuid.UUID) error {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	group, err := s.lockGroup(ctx, tx, groupID)
	if err != nil {
		return err
	}
	if group.OwnerID != actorID {
		return ErrNotAdmin
	}

	_, err = tx.Exec(ctx, `
		UPDATE groups SET is_deleted = TRUE, updated_at = NOW() WHERE id = $1
	`, groupID)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}

	return tx.Commit(ctx)
}

// Get returns the group with members. Non-members get ErrGroupNotFound
// rather than a hint that the group exists.
func (s *GroupService) Get(ctx context.Context, groupID, actorID uuid.UUID) (*models.Group, error) {
	group, err := s.loadGroup(ctx, s.db.Pool, groupID, false)
	if err != nil {
		return nil, err
	}
	if !authz.IsMember(group, actorID) {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

// GetSnapshot loads the group without an authorization check. Intended for
// other aggregates that run their own checks against the snapshot.
func (s *GroupService) GetSnapshot(ctx context.Context, groupID uuid.UUID) (*models.Group, error) {
	return s.loadGroup(ctx, s.db.Pool, groupID, false)
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// lockGroup reads the group row FOR UPDATE so concurrent membership edits
// serialize on it, then loads the member snapshot.
func (s *GroupService) lockGroup(ctx context.Context, tx pgx.Tx, groupID uuid.UUID) (*models.Group, error) {
	return s.loadGroup(ctx, tx, groupID, true)
}

func (s *GroupService) loadGroup(ctx context.Context, q querier, groupID uuid.UUID, forUpdate bool) (*models.Group, error) {
	query := `
		SELECT id, name, owner_id, is_deleted, created_at, updated_at
		FROM groups WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var group models.Group
	err := q.QueryRow(ctx, query, groupID).Scan(
		&group.ID, &group.Name, &group.OwnerID, &group.IsDeleted, &group.CreatedAt, &group.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrGroupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load group: %w", err)
	}
	if group.IsDeleted {
		return nil, ErrGroupNotFound
	}

	rows, err := q.Query(ctx, `
		SELECT id, group_id, user_id, role, display_name, created_at
		FROM group_members WHERE group_id = $1
		ORDER BY created_at
	`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load group members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m models.GroupMember
		if err := rows.Scan(&m.ID, &m.GroupID, &m.UserID, &m.Role, &m.DisplayName, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group member: %w", err)
		}
		group.Members = append(group.Members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read group members: %w", err)
	}

	return &group, nil
}

// cascadeGroupName refreshes the denormalized name on reservations. The
// update is idempotent, so a failed run is simply retried by the next rename.
func (s *GroupService) cascadeGroupName(ctx context.Context, groupID uuid.UUID, name string) {
	_, err := s.db.Pool.Exec(ctx, `
		UPDATE reservations SET group_name = $1, updated_at = NOW()
		WHERE group_id = $2 AND group_name <> $1
	`, name, groupID)
	if err != nil {
		log.Printf("group: failed to cascade rename of %s: %v", groupID, err)
	}
}

func memberOf(group *models.Group, userID uuid.UUID) *models.GroupMember {
	for i := range group.Members {
		if group.Members[i].UserID == userID {
			return &group.Members[i]
		}
	}
	return nil
}

func displayNameOf(group *models.Group, userID uuid.UUID) string {
	if m := memberOf(group, userID); m != nil && m.DisplayName != "" {
		return m.DisplayName
	}
	return ""
}
