package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pashagolub/pgxmock/v3"

	"github.com/repairops/backend/internal/models"
)

func TestTechniciansAvailableFiltersBySchedule(t *testing.T) {
	h, mock := newAdminTestHandler(t)
	now := time.Now()

	techCols := []string{
		"id", "user_id", "phone", "status", "weekly_quota", "current_week_completed",
		"last_quota_reset", "locked_at", "locked_reason", "created_at",
		"u_id", "email", "name", "role", "is_active",
	}
	mock.ExpectQuery("(?s)SELECT .+ FROM technicians t JOIN users u ON u.id = t.user_id WHERE t.status = \\$1 AND u.is_active = TRUE").
		WithArgs(models.TechnicianActive).
		WillReturnRows(pgxmock.NewRows(techCols).
			AddRow("t1", "u1", "", models.TechnicianActive, 25, 2,
				(*time.Time)(nil), (*time.Time)(nil), (*string)(nil), now,
				"u1", "t1@example.com", "Tech One", "TECHNICIAN", true).
			AddRow("t2", "u2", "", models.TechnicianActive, 25, 0,
				(*time.Time)(nil), (*time.Time)(nil), (*string)(nil), now,
				"u2", "t2@example.com", "Tech Two", "TECHNICIAN", true))

	// Only t1 has a window covering the whole day; t2 has none today.
	mock.ExpectQuery("(?s)SELECT .+ FROM schedules WHERE day_of_week = \\$1 ORDER BY technician_id ASC").
		WithArgs(int(now.Weekday())).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "technician_id", "day_of_week", "start_time", "end_time", "is_available",
		}).AddRow("s1", "t1", int(now.Weekday()), "00:00", "23:59", true))

	r := gin.New()
	r.GET("/api/technicians/available", h.TechniciansAvailable)

	req, _ := http.NewRequest(http.MethodGet, "/api/technicians/available", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var res struct {
		Items []models.Technician `json:"items"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(res.Items) != 1 || res.Items[0].ID != "t1" {
		t.Fatalf("expected only t1 available, got %+v", res.Items)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
