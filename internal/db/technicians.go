package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/repairops/backend/internal/models"
)

const technicianColumns = `t.id, t.user_id, t.phone, t.status, t.weekly_quota, t.current_week_completed,
	t.last_quota_reset, t.locked_at, t.locked_reason, t.created_at,
	u.id, u.email, u.name, u.role, u.is_active`

const selectTechnician = `SELECT ` + technicianColumns + ` FROM technicians t JOIN users u ON u.id = t.user_id`

func scanTechnician(row pgx.Row) (models.Technician, error) {
	var t models.Technician
	err := row.Scan(
		&t.ID, &t.UserID, &t.Phone, &t.Status, &t.WeeklyQuota, &t.CurrentWeekCompleted,
		&t.LastQuotaReset, &t.LockedAt, &t.LockedReason, &t.CreatedAt,
		&t.User.ID, &t.User.Email, &t.User.Name, &t.User.Role, &t.User.IsActive,
	)
	return t, err
}

func (s *Store) ListTechnicians(ctx context.Context, status models.TechnicianStatus) ([]models.Technician, error) {
	query := selectTechnician
	var args []any
	if status != "" {
		args = append(args, status)
		query += " WHERE t.status = $1"
	}
	query += " ORDER BY t.created_at DESC"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list technicians: %w", err)
	}
	defer rows.Close()

	var out []models.Technician
	for rows.Next() {
		t, err := scanTechnician(rows)
		if err != nil {
			return nil, fmt.Errorf("scan technician: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) GetTechnician(ctx context.Context, id string) (models.Technician, error) {
	row := s.db.QueryRow(ctx, selectTechnician+" WHERE t.id = $1", id)
	t, err := scanTechnician(row)
	if err != nil {
		return models.Technician{}, fmt.Errorf("get technician %s: %w", id, err)
	}
	return t, nil
}

// ActiveTechnicians returns ACTIVE technicians whose linked user is active.
// Ordering by current_week_completed keeps routing load-balanced; the id
// tiebreak keeps it deterministic.
func (s *Store) ActiveTechnicians(ctx context.Context) ([]models.Technician, error) {
	query := selectTechnician + ` WHERE t.status = $1 AND u.is_active = TRUE
		ORDER BY t.current_week_completed ASC, t.id ASC`
	rows, err := s.db.Query(ctx, query, models.TechnicianActive)
	if err != nil {
		return nil, fmt.Errorf("list active technicians: %w", err)
	}
	defer rows.Close()

	var out []models.Technician
	for rows.Next() {
		t, err := scanTechnician(rows)
		if err != nil {
			return nil, fmt.Errorf("scan technician: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// TechniciansForQuotaEvaluation returns every technician that is not INACTIVE.
func (s *Store) TechniciansForQuotaEvaluation(ctx context.Context) ([]models.Technician, error) {
	query := selectTechnician + ` WHERE t.status <> $1 ORDER BY t.id ASC`
	rows, err := s.db.Query(ctx, query, models.TechnicianInactive)
	if err != nil {
		return nil, fmt.Errorf("list technicians for quota evaluation: %w", err)
	}
	defer rows.Close()

	var out []models.Technician
	for rows.Next() {
		t, err := scanTechnician(rows)
		if err != nil {
			return nil, fmt.Errorf("scan technician: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) CreateTechnician(ctx context.Context, email, password, name, phone string, weeklyQuota int) (models.Technician, error) {
	userID := uuid.NewString()
	techID := uuid.NewString()
	err := s.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO users (id, email, password_hash, name, role, is_active)
			VALUES ($1, $2, crypt($3, gen_salt('bf')), $4, 'TECHNICIAN', TRUE)
		`, userID, email, password, name)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO technicians (id, user_id, phone, status, weekly_quota, current_week_completed, created_at)
			VALUES ($1, $2, $3, $4, $5, 0, NOW())
		`, techID, userID, phone, models.TechnicianActive, weeklyQuota)
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return models.Technician{}, ErrUniqueViolation
		}
		return models.Technician{}, fmt.Errorf("create technician: %w", err)
	}
	return s.GetTechnician(ctx, techID)
}

func (s *Store) UpdateTechnician(ctx context.Context, id string, phone *string, weeklyQuota *int) error {
	_, err := s.db.Exec(ctx, `
		UPDATE technicians
		SET phone = COALESCE($1, phone), weekly_quota = COALESCE($2, weekly_quota)
		WHERE id = $3
	`, phone, weeklyQuota, id)
	if err != nil {
		return fmt.Errorf("update technician %s: %w", id, err)
	}
	return nil
}

func (s *Store) LockTechnician(ctx context.Context, id, reason string, at time.Time) error {
	_, err := s.db.Exec(ctx, `
		UPDATE technicians
		SET status = $1, locked_at = $2, locked_reason = $3
		WHERE id = $4
	`, models.TechnicianLocked, at, reason, id)
	if err != nil {
		return fmt.Errorf("lock technician %s: %w", id, err)
	}
	return nil
}

// LockTechnicianForQuota applies the quota-miss outcome in one statement:
// lock and counter reset are a single mutually exclusive decision.
func (s *Store) LockTechnicianForQuota(ctx context.Context, id, reason string, at time.Time) error {
	_, err := s.db.Exec(ctx, `
		UPDATE technicians
		SET status = $1, locked_at = $2, locked_reason = $3, current_week_completed = 0, last_quota_reset = $2
		WHERE id = $4
	`, models.TechnicianLocked, at, reason, id)
	if err != nil {
		return fmt.Errorf("lock technician %s for quota: %w", id, err)
	}
	return nil
}

func (s *Store) UnlockTechnician(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE technicians
		SET status = $1, locked_at = NULL, locked_reason = NULL
		WHERE id = $2
	`, models.TechnicianActive, id)
	if err != nil {
		return fmt.Errorf("unlock technician %s: %w", id, err)
	}
	return nil
}

func (s *Store) ResetTechnicianQuota(ctx context.Context, id string, at time.Time) error {
	_, err := s.db.Exec(ctx, `
		UPDATE technicians
		SET current_week_completed = 0, last_quota_reset = $1
		WHERE id = $2
	`, at, id)
	if err != nil {
		return fmt.Errorf("reset quota for technician %s: %w", id, err)
	}
	return nil
}

// IncrementCompleted bumps the weekly counter atomically at the database,
// never read-modify-write in the application.
func (s *Store) IncrementCompleted(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE technicians SET current_week_completed = current_week_completed + 1 WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("increment completed for technician %s: %w", id, err)
	}
	return nil
}

func (s *Store) DeleteTechnician(ctx context.Context, id string) error {
	err := s.WithTx(ctx, func(tx pgx.Tx) error {
		var userID string
		if err := tx.QueryRow(ctx, `SELECT user_id FROM technicians WHERE id = $1`, id).Scan(&userID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM technicians WHERE id = $1`, id); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete technician %s: %w", id, err)
	}
	return nil
}
