package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mpavlov/courtbook-api/internal/authz"
	"github.com/mpavlov/courtbook-api/internal/database"
	"github.com/mpavlov/courtbook-api/internal/models"
)

const defaultDurationMinutes = 90

// Start times arrive either as a local wall-clock string (no zone) or as a
// full instant, depending on which client wrote them.
var startTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

type ReservationService struct {
	db     *database.DB
	groups *GroupService
	audit  AuditRecorder
}

func NewReservationService(db *database.DB, groups *GroupService, audit AuditRecorder) *ReservationService {
	return &ReservationService{db: db, groups: groups, audit: audit}
}

type CreateReservationInput struct {
	GroupID         *uuid.UUID
	Visibility      string
	Venue           string
	Court           string
	StartsAt        string
	DurationMinutes int
	MaxAccepted     int
	AllowWaitlist   *bool
	PriorityIDs     []uuid.UUID
}

func (s *ReservationService) Create(ctx context.Context, input CreateReservationInput, actorID uuid.UUID, actorName string) (*models.Reservation, error) {
	startsAt, err := parseStartTime(input.StartsAt)
	if err != nil {
		return nil, err
	}

	duration := input.DurationMinutes
	if duration <= 0 {
		duration = defaultDurationMinutes
	}

	visibility := input.Visibility
	switch visibility {
	case models.VisibilityGroup:
		if input.GroupID == nil {
			return nil, ErrMissingTargetGroup
		}
	case models.VisibilityLinkOnly:
		input.GroupID = nil
	case "":
		// Scope is inferred from the presence of a target group.
		if input.GroupID != nil {
			visibility = models.VisibilityGroup
		} else {
			visibility = models.VisibilityLinkOnly
		}
	default:
		return nil, ErrInvalidVisibility
	}

	allowWaitlist := true
	if input.AllowWaitlist != nil {
		allowWaitlist = *input.AllowWaitlist
	}
	priorityIDs := input.PriorityIDs
	if priorityIDs == nil {
		priorityIDs = []uuid.UUID{}
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	groupName := ""
	if visibility == models.VisibilityGroup {
		group, err := s.groups.loadGroup(ctx, tx, *input.GroupID, false)
		if err != nil {
			return nil, err
		}
		if !authz.IsMember(group, actorID) {
			return nil, ErrNotGroupMember
		}
		groupName = group.Name
		if name := displayNameOf(group, actorID); name != "" {
			actorName = name
		}
	}

	var r models.Reservation
	err = tx.QueryRow(ctx, `
		INSERT INTO reservations (
			group_id, group_name, visibility, venue, court, starts_at,
			duration_minutes, creator_id, created_by_name, max_accepted,
			allow_waitlist, priority_ids
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, group_id, group_name, visibility, venue, court, starts_at,
			duration_minutes, creator_id, legacy_creator_id, created_by_name,
			max_accepted, allow_waitlist, priority_ids, status, created_at, updated_at
	`, input.GroupID, groupName, visibility, input.Venue, input.Court, startsAt,
		duration, actorID, actorName, input.MaxAccepted, allowWaitlist, priorityIDs,
	).Scan(
		&r.ID, &r.GroupID, &r.GroupName, &r.Visibility, &r.Venue, &r.Court, &r.StartsAt,
		&r.DurationMinutes, &r.CreatorID, &r.LegacyCreatorID, &r.CreatedByName,
		&r.MaxAccepted, &r.AllowWaitlist, &r.PriorityIDs, &r.Status, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if r.IsGroupScoped() {
		reservationID := r.ID
		recordAudit(s.audit, models.AuditEvent{
			GroupID:   *r.GroupID,
			Type:      models.AuditReservationCreated,
			ActorID:   &actorID,
			ActorName: actorName,
			TargetID:  &reservationID,
			Metadata:  map[string]string{"venue": r.Venue, "starts_at": r.StartsAt.Format(time.RFC3339)},
		})
	}

	return &r, nil
}

// SetAttendance upserts the actor's signup. Matching is by actor id with a
// fallback to the name-derived key signups carried before actor ids existed.
func (s *ReservationService) SetAttendance(ctx context.Context, reservationID, actorID uuid.UUID, displayName, status string) error {
	if !models.ValidAttendanceStatus(status) {
		return ErrInvalidStatus
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	r, err := s.lockReservation(ctx, tx, reservationID)
	if err != nil {
		return err
	}
	if r.Status == models.ReservationCancelled && status != models.AttendanceCancelled {
		return ErrReservationCancelled
	}

	canJoin := false
	if r.IsGroupScoped() {
		group, err := s.groups.loadGroup(ctx, tx, *r.GroupID, false)
		if err != nil {
			if errors.Is(err, ErrGroupNotFound) {
				return ErrNotGroupMember
			}
			return err
		}
		if !authz.IsMember(group, actorID) {
			return ErrNotGroupMember
		}
		canJoin = true
		if name := displayNameOf(group, actorID); name != "" && displayName == "" {
			displayName = name
		}
	} else {
		canJoin = authz.CanAccessReservation(r, actorID, nil)
	}

	nameKey := models.NameKey(displayName)
	var existing *models.Signup
	for i := range r.Signups {
		su := &r.Signups[i]
		if su.UserID != nil && *su.UserID == actorID {
			existing = su
			break
		}
		if existing == nil && su.UserID == nil && su.NameKey != nil && *su.NameKey == nameKey {
			existing = su
		}
	}

	if existing == nil && status != models.AttendanceCancelled && !canJoin {
		return ErrNotGroupMember
	}

	if existing != nil {
		_, err = tx.Exec(ctx, `
			UPDATE signups SET user_id = $1, display_name = $2, status = $3, updated_at = NOW()
			WHERE id = $4
		`, actorID, displayName, status, existing.ID)
		if err != nil {
			return fmt.Errorf("failed to update signup: %w", err)
		}
	} else {
		_, err = tx.Exec(ctx, `
			INSERT INTO signups (reservation_id, user_id, name_key, display_name, status)
			VALUES ($1, $2, $3, $4, $5)
		`, reservationID, actorID, nameKey, displayName, status)
		if err != nil {
			return fmt.Errorf("failed to create signup: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (s *ReservationService) Cancel(ctx context.Context, reservationID, actorID uuid.UUID) error {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	r, err := s.lockReservation(ctx, tx, reservationID)
	if err != nil {
		return err
	}
	if r.Status == models.ReservationCancelled {
		return nil
	}

	actorName, err := s.authorizeManage(ctx, tx, r, actorID)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		UPDATE reservations SET status = $1, updated_at = NOW() WHERE id = $2
	`, models.ReservationCancelled, reservationID)
	if err != nil {
		return fmt.Errorf("failed to cancel reservation: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	if r.IsGroupScoped() {
		recordAudit(s.audit, models.AuditEvent{
			GroupID:   *r.GroupID,
			Type:      models.AuditReservationCancel,
			ActorID:   &actorID,
			ActorName: actorName,
			TargetID:  &reservationID,
			Metadata:  map[string]string{"venue": r.Venue, "starts_at": r.StartsAt.Format(time.RFC3339)},
		})
	}

	return nil
}

type UpdateReservationInput struct {
	Venue           *string
	Court           *string
	StartsAt        *string
	DurationMinutes *int
	MaxAccepted     *int
	AllowWaitlist   *bool

	// GroupID moves the reservation into another group; LinkOnly detaches
	// it from any group. At most one of the two applies.
	GroupID  *uuid.UUID
	LinkOnly bool
}

func (s *ReservationService) UpdateDetails(ctx context.Context, reservationID uuid.UUID, input UpdateReservationInput, actorID uuid.UUID) (*models.Reservation, error) {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	r, err := s.lockReservation(ctx, tx, reservationID)
	if err != nil {
		return nil, err
	}

	if _, err := s.authorizeManage(ctx, tx, r, actorID); err != nil {
		return nil, err
	}

	if input.Venue != nil {
		r.Venue = *input.Venue
	}
	if input.Court != nil {
		r.Court = *input.Court
	}
	if input.StartsAt != nil {
		startsAt, err := parseStartTime(*input.StartsAt)
		if err != nil {
			return nil, err
		}
		r.StartsAt = startsAt
	}
	if input.DurationMinutes != nil {
		if *input.DurationMinutes <= 0 {
			return nil, ErrInvalidDuration
		}
		r.DurationMinutes = *input.DurationMinutes
	}
	if input.MaxAccepted != nil {
		r.MaxAccepted = *input.MaxAccepted
	}
	if input.AllowWaitlist != nil {
		r.AllowWaitlist = *input.AllowWaitlist
	}

	switch {
	case input.LinkOnly:
		r.GroupID = nil
		r.GroupName = ""
		r.Visibility = models.VisibilityLinkOnly
	case input.GroupID != nil:
		group, err := s.groups.loadGroup(ctx, tx, *input.GroupID, false)
		if err != nil {
			return nil, err
		}
		if !authz.IsMember(group, actorID) {
			return nil, ErrNotGroupMember
		}
		r.GroupID = input.GroupID
		r.GroupName = group.Name
		r.Visibility = models.VisibilityGroup
	}

	err = tx.QueryRow(ctx, `
		UPDATE reservations SET
			group_id = $1, group_name = $2, visibility = $3, venue = $4, court = $5,
			starts_at = $6, duration_minutes = $7, max_accepted = $8, allow_waitlist = $9,
			updated_at = NOW()
		WHERE id = $10
		RETURNING updated_at
	`, r.GroupID, r.GroupName, r.Visibility, r.Venue, r.Court,
		r.StartsAt, r.DurationMinutes, r.MaxAccepted, r.AllowWaitlist, reservationID,
	).Scan(&r.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update reservation: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if r.IsGroupScoped() {
		recordAudit(s.audit, models.AuditEvent{
			GroupID:  *r.GroupID,
			Type:     models.AuditReservationUpdated,
			ActorID:  &actorID,
			TargetID: &reservationID,
			Metadata: map[string]string{"venue": r.Venue, "starts_at": r.StartsAt.Format(time.RFC3339)},
		})
	}

	return r, nil
}

// ReassignOwner hands the reservation to another member of its group.
func (s *ReservationService) ReassignOwner(ctx context.Context, reservationID, targetID uuid.UUID, targetName string, actorID uuid.UUID) error {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	r, err := s.lockReservation(ctx, tx, reservationID)
	if err != nil {
		return err
	}
	if !r.IsGroupScoped() {
		return ErrLinkOnlyReservation
	}

	group, err := s.groups.loadGroup(ctx, tx, *r.GroupID, false)
	if err != nil {
		return err
	}
	if !authz.IsAdmin(group, actorID) {
		return ErrNotAdmin
	}
	target := memberOf(group, targetID)
	if target == nil {
		return ErrTargetNotMember
	}
	if targetName == "" {
		targetName = target.DisplayName
	}

	_, err = tx.Exec(ctx, `
		UPDATE reservations
		SET creator_id = $1, created_by_name = $2, legacy_creator_id = NULL, updated_at = NOW()
		WHERE id = $3
	`, targetID, targetName, reservationID)
	if err != nil {
		return fmt.Errorf("failed to reassign reservation: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	recordAudit(s.audit, models.AuditEvent{
		GroupID:    *r.GroupID,
		Type:       models.AuditOwnerReassigned,
		ActorID:    &actorID,
		ActorName:  displayNameOf(group, actorID),
		TargetID:   &targetID,
		TargetName: &targetName,
	})

	return nil
}

// Get returns the reservation with signups and guests when the actor may
// see it, hiding its existence otherwise.
func (s *ReservationService) Get(ctx context.Context, reservationID, actorID uuid.UUID) (*models.Reservation, error) {
	r, err := s.loadReservation(ctx, s.db.Pool, reservationID, false)
	if err != nil {
		return nil, err
	}

	allowed := map[uuid.UUID]bool{}
	if r.IsGroupScoped() {
		var isMember bool
		err := s.db.Pool.QueryRow(ctx, `
			SELECT EXISTS(
				SELECT 1 FROM group_members gm
				JOIN groups g ON g.id = gm.group_id
				WHERE gm.group_id = $1 AND gm.user_id = $2 AND g.is_deleted = FALSE
			)
		`, *r.GroupID, actorID).Scan(&isMember)
		if err != nil {
			return nil, fmt.Errorf("failed to check membership: %w", err)
		}
		allowed[*r.GroupID] = isMember
	}

	if !authz.CanAccessReservation(r, actorID, allowed) {
		return nil, ErrReservationNotFound
	}
	return r, nil
}

// authorizeManage allows the creator, or an admin of the owning group while
// that group still exists. Returns the actor's display name for auditing.
func (s *ReservationService) authorizeManage(ctx context.Context, tx pgx.Tx, r *models.Reservation, actorID uuid.UUID) (string, error) {
	if authz.IsReservationCreator(r, actorID) {
		return r.CreatedByName, nil
	}
	if r.IsGroupScoped() {
		group, err := s.groups.loadGroup(ctx, tx, *r.GroupID, false)
		if err == nil && authz.IsAdmin(group, actorID) {
			return displayNameOf(group, actorID), nil
		}
		if err != nil && !errors.Is(err, ErrGroupNotFound) {
			return "", err
		}
	}
	return "", ErrNotCreator
}

func (s *ReservationService) lockReservation(ctx context.Context, tx pgx.Tx, reservationID uuid.UUID) (*models.Reservation, error) {
	return s.loadReservation(ctx, tx, reservationID, true)
}

func (s *ReservationService) loadReservation(ctx context.Context, q querier, reservationID uuid.UUID, forUpdate bool) (*models.Reservation, error) {
	query := `
		SELECT id, group_id, group_name, visibility, venue, court, starts_at,
			duration_minutes, creator_id, legacy_creator_id, created_by_name,
			max_accepted, allow_waitlist, priority_ids, status, created_at, updated_at
		FROM reservations WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var r models.Reservation
	err := q.QueryRow(ctx, query, reservationID).Scan(
		&r.ID, &r.GroupID, &r.GroupName, &r.Visibility, &r.Venue, &r.Court, &r.StartsAt,
		&r.DurationMinutes, &r.CreatorID, &r.LegacyCreatorID, &r.CreatedByName,
		&r.MaxAccepted, &r.AllowWaitlist, &r.PriorityIDs, &r.Status, &r.CreatedAt, &r.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load reservation: %w", err)
	}
	if r.PriorityIDs == nil {
		r.PriorityIDs = []uuid.UUID{}
	}
	if r.Visibility == "" {
		// Legacy rows predate the visibility column.
		if r.GroupID != nil {
			r.Visibility = models.VisibilityGroup
		} else {
			r.Visibility = models.VisibilityLinkOnly
		}
	}

	rows, err := q.Query(ctx, `
		SELECT id, reservation_id, user_id, name_key, display_name, status, created_at, updated_at
		FROM signups WHERE reservation_id = $1
		ORDER BY created_at
	`, reservationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load signups: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var su models.Signup
		if err := rows.Scan(&su.ID, &su.ReservationID, &su.UserID, &su.NameKey, &su.DisplayName, &su.Status, &su.CreatedAt, &su.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan signup: %w", err)
		}
		r.Signups = append(r.Signups, su)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read signups: %w", err)
	}

	guestRows, err := q.Query(ctx, `
		SELECT user_id FROM reservation_guests WHERE reservation_id = $1
	`, reservationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load guests: %w", err)
	}
	defer guestRows.Close()
	for guestRows.Next() {
		var guestID uuid.UUID
		if err := guestRows.Scan(&guestID); err != nil {
			return nil, fmt.Errorf("failed to scan guest: %w", err)
		}
		r.GuestIDs = append(r.GuestIDs, guestID)
	}
	if err := guestRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read guests: %w", err)
	}

	return &r, nil
}

func parseStartTime(value string) (time.Time, error) {
	for _, layout := range startTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidStartTime
}
