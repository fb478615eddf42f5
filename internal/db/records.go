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

const recordColumns = `id, technician_id, call_id, customer_name, customer_phone, customer_address,
	appliance_type, issue_description, status, scheduled_date, notes,
	diagnosis, resolution, parts_used, labor_hours, completed_at, created_at`

func scanRecord(row pgx.Row) (models.ServiceRecord, error) {
	var r models.ServiceRecord
	err := row.Scan(
		&r.ID, &r.TechnicianID, &r.CallID, &r.CustomerName, &r.CustomerPhone, &r.CustomerAddress,
		&r.ApplianceType, &r.IssueDescription, &r.Status, &r.ScheduledDate, &r.Notes,
		&r.Diagnosis, &r.Resolution, &r.PartsUsed, &r.LaborHours, &r.CompletedAt, &r.CreatedAt,
	)
	return r, err
}

func (s *Store) GetServiceRecord(ctx context.Context, id string) (models.ServiceRecord, error) {
	row := s.db.QueryRow(ctx, `SELECT `+recordColumns+` FROM service_records WHERE id = $1`, id)
	r, err := scanRecord(row)
	if err != nil {
		return models.ServiceRecord{}, fmt.Errorf("get service record %s: %w", id, err)
	}
	return r, nil
}

func (s *Store) CreateServiceRecord(ctx context.Context, r models.ServiceRecord) (models.ServiceRecord, error) {
	r.ID = uuid.NewString()
	r.Status = models.ServiceScheduled
	_, err := s.db.Exec(ctx, `
		INSERT INTO service_records (id, technician_id, call_id, customer_name, customer_phone,
			customer_address, appliance_type, issue_description, status, scheduled_date, notes, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,NOW())
	`, r.ID, r.TechnicianID, r.CallID, r.CustomerName, r.CustomerPhone,
		r.CustomerAddress, r.ApplianceType, r.IssueDescription, r.Status, r.ScheduledDate, r.Notes)
	if err != nil {
		return models.ServiceRecord{}, fmt.Errorf("create service record: %w", err)
	}
	return s.GetServiceRecord(ctx, r.ID)
}

// RecordUpdate carries the patchable service-record fields; nil leaves a
// column untouched. Status changes go through Complete/Cancel instead.
type RecordUpdate struct {
	CustomerName     *string
	CustomerPhone    *string
	CustomerAddress  *string
	ApplianceType    *string
	IssueDescription *string
	ScheduledDate    *time.Time
	Notes            *string
}

func (s *Store) UpdateServiceRecord(ctx context.Context, id string, u RecordUpdate) error {
	_, err := s.db.Exec(ctx, `
		UPDATE service_records
		SET customer_name = COALESCE($1, customer_name),
			customer_phone = COALESCE($2, customer_phone),
			customer_address = COALESCE($3, customer_address),
			appliance_type = COALESCE($4, appliance_type),
			issue_description = COALESCE($5, issue_description),
			scheduled_date = COALESCE($6, scheduled_date),
			notes = COALESCE($7, notes)
		WHERE id = $8
	`, u.CustomerName, u.CustomerPhone, u.CustomerAddress, u.ApplianceType,
		u.IssueDescription, u.ScheduledDate, u.Notes, id)
	if err != nil {
		return fmt.Errorf("update service record %s: %w", id, err)
	}
	return nil
}

type CompletionFields struct {
	Diagnosis  string
	Resolution string
	PartsUsed  string
	LaborHours *float64
	Notes      string
}

// CompleteServiceRecord sets the completion fields and bumps the owning
// technician's weekly counter in one transaction, so a crash between the
// two can never leave a completed record uncounted.
func (s *Store) CompleteServiceRecord(ctx context.Context, id, technicianID string, f CompletionFields, at time.Time) error {
	err := s.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			UPDATE service_records
			SET status = $1, diagnosis = $2, resolution = $3, parts_used = $4, labor_hours = $5,
				notes = CASE WHEN $6 <> '' THEN $6 ELSE notes END, completed_at = $7
			WHERE id = $8
		`, models.ServiceCompleted, f.Diagnosis, f.Resolution, f.PartsUsed, f.LaborHours, f.Notes, at, id)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			UPDATE technicians SET current_week_completed = current_week_completed + 1 WHERE id = $1
		`, technicianID)
		return err
	})
	if err != nil {
		return fmt.Errorf("complete service record %s: %w", id, err)
	}
	return nil
}

func (s *Store) CancelServiceRecord(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `UPDATE service_records SET status = $1 WHERE id = $2`, models.ServiceCancelled, id)
	if err != nil {
		return fmt.Errorf("cancel service record %s: %w", id, err)
	}
	return nil
}

func (s *Store) ListServiceRecords(ctx context.Context, technicianID string, status models.ServiceStatus, limit, offset int) ([]models.ServiceRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + recordColumns + ` FROM service_records`
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
		return nil, fmt.Errorf("list service records: %w", err)
	}
	defer rows.Close()

	var out []models.ServiceRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan service record: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) ServiceRecordStats(ctx context.Context) (map[string]any, error) {
	rows, err := s.db.Query(ctx, `SELECT status, COUNT(*) FROM service_records GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("service record stats: %w", err)
	}
	defer rows.Close()

	byStatus := map[string]int{}
	total := 0
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan service record stats: %w", err)
		}
		byStatus[status] = count
		total += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var avgLabor *float64
	if err := s.db.QueryRow(ctx, `SELECT AVG(labor_hours) FROM service_records WHERE labor_hours IS NOT NULL`).Scan(&avgLabor); err != nil {
		return nil, fmt.Errorf("service record avg labor: %w", err)
	}
	avg := 0.0
	if avgLabor != nil {
		avg = *avgLabor
	}

	return map[string]any{
		"total":               total,
		"by_status":           byStatus,
		"average_labor_hours": avg,
	}, nil
}
