package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mpavlov/courtbook-api/internal/authz"
	"github.com/mpavlov/courtbook-api/internal/database"
	"github.com/mpavlov/courtbook-api/internal/models"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
	maxAuditLimit    = 100
)

// ListingService serves the read side: per-actor group and reservation
// feeds. Reads run outside transactions and never mutate.
type ListingService struct {
	db     *database.DB
	groups *GroupService
	audit  *AuditService
}

func NewListingService(db *database.DB, groups *GroupService, audit *AuditService) *ListingService {
	return &ListingService{db: db, groups: groups, audit: audit}
}

// GroupSummary is one row of the actor's group feed, carrying the actor's
// own role and display name inside that group.
type GroupSummary struct {
	Group       models.Group `json:"group"`
	Role        string       `json:"role"`
	DisplayName string       `json:"display_name"`
	MemberCount int          `json:"member_count"`
}

func (s *ListingService) ListGroupsForActor(ctx context.Context, actorID uuid.UUID) ([]GroupSummary, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT g.id, g.name, g.owner_id, g.created_at, g.updated_at,
			gm.role, gm.display_name,
			(SELECT COUNT(*) FROM group_members c WHERE c.group_id = g.id)
		FROM groups g
		JOIN group_members gm ON gm.group_id = g.id
		WHERE gm.user_id = $1 AND g.is_deleted = FALSE
		ORDER BY g.name
	`, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	summaries := []GroupSummary{}
	for rows.Next() {
		var sum GroupSummary
		if err := rows.Scan(
			&sum.Group.ID, &sum.Group.Name, &sum.Group.OwnerID,
			&sum.Group.CreatedAt, &sum.Group.UpdatedAt,
			&sum.Role, &sum.DisplayName, &sum.MemberCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// ListReservations returns reservations visible to the actor. mode is
// "active" (status active, soonest first; a session already underway still
// counts) or "history" (past, newest first). Visible means: member of the
// owning group, creator under either identity, invited guest, or signed up.
func (s *ListingService) ListReservations(ctx context.Context, actorID uuid.UUID, mode string, limit int) ([]models.Reservation, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	base := `
		SELECT r.id, r.group_id, r.group_name, r.visibility, r.venue, r.court, r.starts_at,
			r.duration_minutes, r.creator_id, r.legacy_creator_id, r.created_by_name,
			r.max_accepted, r.allow_waitlist, r.priority_ids, r.status, r.created_at, r.updated_at
		FROM reservations r
		WHERE (
			r.creator_id = $1
			OR r.legacy_creator_id = $1
			OR EXISTS(
				SELECT 1 FROM group_members gm
				JOIN groups g ON g.id = gm.group_id
				WHERE gm.group_id = r.group_id AND gm.user_id = $1 AND g.is_deleted = FALSE
			)
			OR EXISTS(SELECT 1 FROM reservation_guests rg WHERE rg.reservation_id = r.id AND rg.user_id = $1)
			OR EXISTS(SELECT 1 FROM signups su WHERE su.reservation_id = r.id AND su.user_id = $1)
		)`

	var query string
	switch mode {
	case "history":
		query = base + ` AND r.starts_at < NOW() ORDER BY r.starts_at DESC LIMIT $2`
	case "active", "":
		query = base + ` AND r.status = 'active' ORDER BY r.starts_at ASC LIMIT $2`
	default:
		return nil, ErrInvalidListMode
	}

	rows, err := s.db.Pool.Query(ctx, query, actorID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	defer rows.Close()

	reservations := []models.Reservation{}
	for rows.Next() {
		var r models.Reservation
		if err := rows.Scan(
			&r.ID, &r.GroupID, &r.GroupName, &r.Visibility, &r.Venue, &r.Court, &r.StartsAt,
			&r.DurationMinutes, &r.CreatorID, &r.LegacyCreatorID, &r.CreatedByName,
			&r.MaxAccepted, &r.AllowWaitlist, &r.PriorityIDs, &r.Status, &r.CreatedAt, &r.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		if r.PriorityIDs == nil {
			r.PriorityIDs = []uuid.UUID{}
		}
		if r.Visibility == "" {
			if r.GroupID != nil {
				r.Visibility = models.VisibilityGroup
			} else {
				r.Visibility = models.VisibilityLinkOnly
			}
		}
		reservations = append(reservations, r)
	}
	return reservations, rows.Err()
}

// ListGroupAudit returns the group's audit trail, newest first. Members
// only; outsiders learn nothing about the group's existence.
func (s *ListingService) ListGroupAudit(ctx context.Context, groupID, actorID uuid.UUID, limit int) ([]models.AuditEvent, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxAuditLimit {
		limit = maxAuditLimit
	}

	group, err := s.groups.loadGroup(ctx, s.db.Pool, groupID, false)
	if err != nil {
		return nil, err
	}
	if !authz.IsMember(group, actorID) {
		return nil, ErrGroupNotFound
	}

	events, err := s.audit.ListForGroup(ctx, groupID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit events: %w", err)
	}
	if events == nil {
		events = []models.AuditEvent{}
	}
	return events, nil
}
