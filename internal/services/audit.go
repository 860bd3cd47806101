package services

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/mpavlov/courtbook-api/internal/database"
	"github.com/mpavlov/courtbook-api/internal/models"
)

// AuditRecorder is the sink the aggregates report privileged mutations to.
// Recording happens after the mutation commits and failures are swallowed.
type AuditRecorder interface {
	Record(ctx context.Context, event models.AuditEvent) error
}

type AuditService struct {
	db *database.DB
}

func NewAuditService(db *database.DB) *AuditService {
	return &AuditService{db: db}
}

func (s *AuditService) Record(ctx context.Context, event models.AuditEvent) error {
	metadata := event.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}
	_, err := s.db.Pool.Exec(ctx, `
		INSERT INTO audit_events (group_id, type, actor_id, actor_name, target_id, target_name, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, event.GroupID, event.Type, event.ActorID, event.ActorName, event.TargetID, event.TargetName, metadata)
	return err
}

func (s *AuditService) ListForGroup(ctx context.Context, groupID uuid.UUID, limit int) ([]models.AuditEvent, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, group_id, type, actor_id, actor_name, target_id, target_name, metadata, created_at
		FROM audit_events
		WHERE group_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, groupID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.AuditEvent
	for rows.Next() {
		var e models.AuditEvent
		if err := rows.Scan(
			&e.ID, &e.GroupID, &e.Type, &e.ActorID, &e.ActorName,
			&e.TargetID, &e.TargetName, &e.Metadata, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		if e.Metadata == nil {
			e.Metadata = map[string]string{}
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// recordAudit dispatches an event on a detached goroutine. The triggering
// mutation has already committed; a lost event must never fail it.
func recordAudit(audit AuditRecorder, event models.AuditEvent) {
	if audit == nil {
		return
	}
	go func() {
		if err := audit.Record(context.Background(), event); err != nil {
			log.Printf("audit: failed to record %s for group %s: %v", event.Type, event.GroupID, err)
		}
	}()
}
