package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/repairops/backend/internal/models"
)

const callColumns = `id, ringcentral_call_id, caller_number, caller_name, technician_id, status,
	routed_at, answered_at, ended_at, duration, recording_url, created_at`

func scanCall(row pgx.Row) (models.Call, error) {
	var c models.Call
	err := row.Scan(
		&c.ID, &c.RingCentralCallID, &c.CallerNumber, &c.CallerName, &c.TechnicianID, &c.Status,
		&c.RoutedAt, &c.AnsweredAt, &c.EndedAt, &c.Duration, &c.RecordingURL, &c.CreatedAt,
	)
	return c, err
}

func (s *Store) GetCall(ctx context.Context, id string) (models.Call, error) {
	row := s.db.QueryRow(ctx, `SELECT `+callColumns+` FROM calls WHERE id = $1`, id)
	c, err := scanCall(row)
	if err != nil {
		return models.Call{}, fmt.Errorf("get call %s: %w", id, err)
	}
	return c, nil
}

func (s *Store) GetCallByExternalID(ctx context.Context, externalID string) (models.Call, error) {
	row := s.db.QueryRow(ctx, `SELECT `+callColumns+` FROM calls WHERE ringcentral_call_id = $1`, externalID)
	c, err := scanCall(row)
	if err != nil {
		return models.Call{}, fmt.Errorf("get call by external id %s: %w", externalID, err)
	}
	return c, nil
}

// CreateCall inserts a PENDING call row. The unique index on
// ringcentral_call_id is the serialization point for duplicate webhook
// deliveries; a violation comes back as ErrUniqueViolation.
func (s *Store) CreateCall(ctx context.Context, externalID, callerNumber, callerName string) (models.Call, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(ctx, `
		INSERT INTO calls (id, ringcentral_call_id, caller_number, caller_name, status, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`, id, externalID, callerNumber, callerName, models.CallPending)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Call{}, ErrUniqueViolation
		}
		return models.Call{}, fmt.Errorf("create call: %w", err)
	}
	return s.GetCall(ctx, id)
}

func (s *Store) AssignCall(ctx context.Context, callID, technicianID string, at time.Time) error {
	_, err := s.db.Exec(ctx, `
		UPDATE calls SET technician_id = $1, status = $2, routed_at = $3 WHERE id = $4
	`, technicianID, models.CallRouted, at, callID)
	if err != nil {
		return fmt.Errorf("assign call %s: %w", callID, err)
	}
	return nil
}

func (s *Store) MarkCallAnswered(ctx context.Context, callID string, at time.Time) error {
	_, err := s.db.Exec(ctx, `
		UPDATE calls SET status = $1, answered_at = $2 WHERE id = $3
	`, models.CallAnswered, at, callID)
	if err != nil {
		return fmt.Errorf("mark call %s answered: %w", callID, err)
	}
	return nil
}

func (s *Store) MarkCallCompleted(ctx context.Context, callID string, at time.Time, duration *int, recordingURL *string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE calls SET status = $1, ended_at = $2, duration = $3, recording_url = $4 WHERE id = $5
	`, models.CallCompleted, at, duration, recordingURL, callID)
	if err != nil {
		return fmt.Errorf("mark call %s completed: %w", callID, err)
	}
	return nil
}

func (s *Store) MarkCallMissed(ctx context.Context, callID string, at time.Time) error {
	_, err := s.db.Exec(ctx, `
		UPDATE calls SET status = $1, ended_at = $2 WHERE id = $3
	`, models.CallMissed, at, callID)
	if err != nil {
		return fmt.Errorf("mark call %s missed: %w", callID, err)
	}
	return nil
}

func (s *Store) ListCalls(ctx context.Context, technicianID string, status models.CallStatus, limit, offset int) ([]models.Call, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + callColumns + ` FROM calls`
	var args []any
	var wheres []string
	if technicianID != "" {
		args = append(args, technicianID)
		wheres = append(wheres, fmt.Sprintf("technician_id = $%d", len(args)))
	}
	if status != "" {
		args = append(args, status)
		wheres = append(wheres, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(wheres) > 0 {
		query += " WHERE " + strings.Join(wheres, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list calls: %w", err)
	}
	defer rows.Close()

	var out []models.Call
	for rows.Next() {
		c, err := scanCall(rows)
		if err != nil {
			return nil, fmt.Errorf("scan call: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) CallStats(ctx context.Context) (map[string]any, error) {
	rows, err := s.db.Query(ctx, `SELECT status, COUNT(*) FROM calls GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("call stats: %w", err)
	}
	defer rows.Close()

	byStatus := map[string]int{}
	total := 0
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan call stats: %w", err)
		}
		byStatus[status] = count
		total += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var avgDuration *float64
	if err := s.db.QueryRow(ctx, `SELECT AVG(duration) FROM calls WHERE duration IS NOT NULL`).Scan(&avgDuration); err != nil {
		return nil, fmt.Errorf("call avg duration: %w", err)
	}
	avg := 0
	if avgDuration != nil {
		avg = int(*avgDuration + 0.5)
	}

	return map[string]any{
		"total":            total,
		"by_status":        byStatus,
		"average_duration": avg,
	}, nil
}
