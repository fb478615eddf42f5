package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/repairops/backend/internal/models"
)

// InsertAuditLog appends one immutable entry. Rows are never updated or
// deleted.
func (s *Store) InsertAuditLog(ctx context.Context, entry models.AuditLog) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO audit_logs (id, actor_id, action, entity_type, entity_id, details, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,NOW())
	`, uuid.NewString(), entry.ActorID, entry.Action, entry.EntityType, entry.EntityID, entry.Details)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

func (s *Store) ListAuditLogs(ctx context.Context, actorID, action, entityType string, limit, offset int) ([]models.AuditLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT id, actor_id, action, entity_type, entity_id, details, created_at FROM audit_logs`
	var args []any
	var wheres []string
	if actorID != "" {
		args = append(args, actorID)
		wheres = append(wheres, fmt.Sprintf("actor_id = $%d", len(args)))
	}
	if action != "" {
		args = append(args, action)
		wheres = append(wheres, fmt.Sprintf("action = $%d", len(args)))
	}
	if entityType != "" {
		args = append(args, entityType)
		wheres = append(wheres, fmt.Sprintf("entity_type = $%d", len(args)))
	}
	if len(wheres) > 0 {
		query += " WHERE " + strings.Join(wheres, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	var out []models.AuditLog
	for rows.Next() {
		var e models.AuditLog
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.EntityType, &e.EntityID, &e.Details, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
