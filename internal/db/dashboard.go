package db

import (
	"context"
	"fmt"
	"time"

	"github.com/repairops/backend/internal/models"
)

type TechnicianCounts struct {
	Total  int `json:"total"`
	Active int `json:"active"`
	Locked int `json:"locked"`
}

func (s *Store) CountTechnicians(ctx context.Context) (TechnicianCounts, error) {
	var c TechnicianCounts
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = $1),
			COUNT(*) FILTER (WHERE status = $2)
		FROM technicians
	`, models.TechnicianActive, models.TechnicianLocked).Scan(&c.Total, &c.Active, &c.Locked)
	if err != nil {
		return TechnicianCounts{}, fmt.Errorf("count technicians: %w", err)
	}
	return c, nil
}

func (s *Store) CountCallsSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM calls WHERE created_at >= $1`, since).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count calls: %w", err)
	}
	return n, nil
}

func (s *Store) CountServicesSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM service_records WHERE created_at >= $1`, since).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count services: %w", err)
	}
	return n, nil
}

func (s *Store) CountCompletedServicesSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM service_records WHERE status = $1 AND completed_at >= $2
	`, models.ServiceCompleted, since).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count completed services: %w", err)
	}
	return n, nil
}

// PerformanceRow is one technician's aggregated activity over a report
// window.
type PerformanceRow struct {
	TechnicianID      string                  `json:"id"`
	Name              string                  `json:"name"`
	Email             string                  `json:"email"`
	Status            models.TechnicianStatus `json:"status"`
	TotalServices     int                     `json:"total_services"`
	CompletedServices int                     `json:"completed_services"`
	TotalCalls        int                     `json:"total_calls"`
	AnsweredCalls     int                     `json:"answered_calls"`
	TotalLaborHours   float64                 `json:"total_labor_hours"`
}

func (s *Store) PerformanceReport(ctx context.Context, start, end time.Time) ([]PerformanceRow, error) {
	rows, err := s.db.Query(ctx, `
		SELECT t.id, u.name, u.email, t.status,
			(SELECT COUNT(*) FROM service_records r
				WHERE r.technician_id = t.id AND r.created_at BETWEEN $1 AND $2),
			(SELECT COUNT(*) FROM service_records r
				WHERE r.technician_id = t.id AND r.status = $3 AND r.created_at BETWEEN $1 AND $2),
			(SELECT COUNT(*) FROM calls c
				WHERE c.technician_id = t.id AND c.created_at BETWEEN $1 AND $2),
			(SELECT COUNT(*) FROM calls c
				WHERE c.technician_id = t.id AND c.status IN ($4, $5) AND c.created_at BETWEEN $1 AND $2),
			(SELECT COALESCE(SUM(r.labor_hours), 0) FROM service_records r
				WHERE r.technician_id = t.id AND r.status = $3 AND r.created_at BETWEEN $1 AND $2)
		FROM technicians t JOIN users u ON u.id = t.user_id
		ORDER BY u.name ASC
	`, start, end, models.ServiceCompleted, models.CallAnswered, models.CallCompleted)
	if err != nil {
		return nil, fmt.Errorf("performance report: %w", err)
	}
	defer rows.Close()

	var out []PerformanceRow
	for rows.Next() {
		var r PerformanceRow
		if err := rows.Scan(&r.TechnicianID, &r.Name, &r.Email, &r.Status,
			&r.TotalServices, &r.CompletedServices, &r.TotalCalls, &r.AnsweredCalls, &r.TotalLaborHours); err != nil {
			return nil, fmt.Errorf("scan performance row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// TopTechnicians returns the ACTIVE technicians leading the current week,
// highest completed count first.
func (s *Store) TopTechnicians(ctx context.Context, limit int) ([]models.Technician, error) {
	rows, err := s.db.Query(ctx, selectTechnician+`
		WHERE t.status = $1 ORDER BY t.current_week_completed DESC LIMIT $2
	`, models.TechnicianActive, limit)
	if err != nil {
		return nil, fmt.Errorf("top technicians: %w", err)
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
