package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/repairops/backend/internal/models"
)

const scheduleColumns = `id, technician_id, day_of_week, start_time, end_time, is_available`

func scanSchedule(row pgx.Row) (models.Schedule, error) {
	var sc models.Schedule
	err := row.Scan(&sc.ID, &sc.TechnicianID, &sc.DayOfWeek, &sc.StartTime, &sc.EndTime, &sc.IsAvailable)
	return sc, err
}

func (s *Store) GetSchedule(ctx context.Context, id string) (models.Schedule, error) {
	row := s.db.QueryRow(ctx, `SELECT `+scheduleColumns+` FROM schedules WHERE id = $1`, id)
	sc, err := scanSchedule(row)
	if err != nil {
		return models.Schedule{}, fmt.Errorf("get schedule %s: %w", id, err)
	}
	return sc, nil
}

func (s *Store) ListSchedules(ctx context.Context, technicianID string) ([]models.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules`
	var args []any
	if technicianID != "" {
		args = append(args, technicianID)
		query += " WHERE technician_id = $1"
	}
	query += " ORDER BY technician_id ASC, day_of_week ASC"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	defer rows.Close()

	var out []models.Schedule
	for rows.Next() {
		sc, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// SchedulesForDay returns the availability windows for one day of week
// across all technicians.
func (s *Store) SchedulesForDay(ctx context.Context, dayOfWeek int) ([]models.Schedule, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+scheduleColumns+` FROM schedules WHERE day_of_week = $1 ORDER BY technician_id ASC
	`, dayOfWeek)
	if err != nil {
		return nil, fmt.Errorf("list schedules for day %d: %w", dayOfWeek, err)
	}
	defer rows.Close()

	var out []models.Schedule
	for rows.Next() {
		sc, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// CreateSchedule relies on the unique (technician_id, day_of_week) index;
// a second row for the same day comes back as ErrUniqueViolation.
func (s *Store) CreateSchedule(ctx context.Context, sc models.Schedule) (models.Schedule, error) {
	sc.ID = uuid.NewString()
	_, err := s.db.Exec(ctx, `
		INSERT INTO schedules (id, technician_id, day_of_week, start_time, end_time, is_available)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, sc.ID, sc.TechnicianID, sc.DayOfWeek, sc.StartTime, sc.EndTime, sc.IsAvailable)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Schedule{}, ErrUniqueViolation
		}
		return models.Schedule{}, fmt.Errorf("create schedule: %w", err)
	}
	return sc, nil
}

func (s *Store) UpdateSchedule(ctx context.Context, sc models.Schedule) error {
	_, err := s.db.Exec(ctx, `
		UPDATE schedules SET start_time = $1, end_time = $2, is_available = $3 WHERE id = $4
	`, sc.StartTime, sc.EndTime, sc.IsAvailable, sc.ID)
	if err != nil {
		return fmt.Errorf("update schedule %s: %w", sc.ID, err)
	}
	return nil
}

func (s *Store) DeleteSchedule(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM schedules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete schedule %s: %w", id, err)
	}
	return nil
}
