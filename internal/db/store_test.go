package db_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repairops/backend/internal/db"
	"github.com/repairops/backend/internal/models"
)

var technicianCols = []string{
	"id", "user_id", "phone", "status", "weekly_quota", "current_week_completed",
	"last_quota_reset", "locked_at", "locked_reason", "created_at",
	"u_id", "email", "name", "role", "is_active",
}

var callCols = []string{
	"id", "ringcentral_call_id", "caller_number", "caller_name", "technician_id", "status",
	"routed_at", "answered_at", "ended_at", "duration", "recording_url", "created_at",
}

func technicianRow(id string, completed int) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows(technicianCols).AddRow(
		id, "u-"+id, "", models.TechnicianActive, 25, completed,
		(*time.Time)(nil), (*time.Time)(nil), (*string)(nil), now,
		"u-"+id, id+"@example.com", "Tech "+id, "TECHNICIAN", true,
	)
}

func TestActiveTechnicians(t *testing.T) {
	t.Parallel()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := db.NewWithDB(mock)

	rows := technicianRow("t1", 2)
	mock.ExpectQuery("(?s)SELECT .+ FROM technicians t JOIN users u ON u.id = t.user_id WHERE t.status = \\$1 AND u.is_active = TRUE\\s+ORDER BY t.current_week_completed ASC, t.id ASC").
		WithArgs(models.TechnicianActive).
		WillReturnRows(rows)

	got, err := store.ActiveTechnicians(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "t1", got[0].ID)
	assert.Equal(t, 2, got[0].CurrentWeekCompleted)
	assert.Equal(t, "Tech t1", got[0].User.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTechnicianNotFound(t *testing.T) {
	t.Parallel()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := db.NewWithDB(mock)

	mock.ExpectQuery("(?s)SELECT .+ FROM technicians t JOIN users u ON u.id = t.user_id WHERE t.id = \\$1").
		WithArgs("nope").
		WillReturnError(pgx.ErrNoRows)

	_, err = store.GetTechnician(context.Background(), "nope")
	require.ErrorIs(t, err, pgx.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementCompleted(t *testing.T) {
	t.Parallel()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := db.NewWithDB(mock)

	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE technicians SET current_week_completed = current_week_completed + 1 WHERE id = $1",
	)).WithArgs("t1").WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, store.IncrementCompleted(context.Background(), "t1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockTechnicianForQuota(t *testing.T) {
	t.Parallel()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := db.NewWithDB(mock)
	at := time.Now()

	mock.ExpectExec("UPDATE technicians\\s+SET status = \\$1, locked_at = \\$2, locked_reason = \\$3, current_week_completed = 0, last_quota_reset = \\$2\\s+WHERE id = \\$4").
		WithArgs(models.TechnicianLocked, at, "Failed to meet weekly quota (3/25)", "t1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = store.LockTechnicianForQuota(context.Background(), "t1", "Failed to meet weekly quota (3/25)", at)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCallDuplicateExternalID(t *testing.T) {
	t.Parallel()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := db.NewWithDB(mock)

	mock.ExpectExec("INSERT INTO calls .+").
		WithArgs(pgxmock.AnyArg(), "sess-1", "+15551234567", "", models.CallPending).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "calls_ringcentral_call_id_key"})

	_, err = store.CreateCall(context.Background(), "sess-1", "+15551234567", "")
	require.ErrorIs(t, err, db.ErrUniqueViolation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCall(t *testing.T) {
	t.Parallel()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := db.NewWithDB(mock)

	mock.ExpectExec("INSERT INTO calls .+").
		WithArgs(pgxmock.AnyArg(), "sess-1", "+15551234567", "Jane", models.CallPending).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	rows := pgxmock.NewRows(callCols).AddRow(
		"call-1", "sess-1", "+15551234567", "Jane", (*string)(nil), models.CallPending,
		(*time.Time)(nil), (*time.Time)(nil), (*time.Time)(nil), (*int)(nil), (*string)(nil), time.Now(),
	)
	mock.ExpectQuery("(?s)SELECT .+ FROM calls WHERE id = \\$1").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(rows)

	got, err := store.CreateCall(context.Background(), "sess-1", "+15551234567", "Jane")
	require.NoError(t, err)
	assert.Equal(t, "call-1", got.ID)
	assert.Equal(t, models.CallPending, got.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCallByExternalID(t *testing.T) {
	t.Parallel()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := db.NewWithDB(mock)

	techID := "t1"
	answered := time.Now().Add(-time.Minute)
	rows := pgxmock.NewRows(callCols).AddRow(
		"call-1", "sess-1", "+15551234567", "", &techID, models.CallAnswered,
		&answered, &answered, (*time.Time)(nil), (*int)(nil), (*string)(nil), time.Now(),
	)
	mock.ExpectQuery("(?s)SELECT .+ FROM calls WHERE ringcentral_call_id = \\$1").
		WithArgs("sess-1").
		WillReturnRows(rows)

	got, err := store.GetCallByExternalID(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, models.CallAnswered, got.Status)
	require.NotNil(t, got.TechnicianID)
	assert.Equal(t, "t1", *got.TechnicianID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateServiceRecord(t *testing.T) {
	t.Parallel()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := db.NewWithDB(mock)

	notes := "rescheduled by customer"
	scheduled := time.Now().Add(48 * time.Hour)
	mock.ExpectExec("(?s)UPDATE service_records\\s+SET customer_name = COALESCE\\(\\$1, customer_name\\),.+WHERE id = \\$8").
		WithArgs((*string)(nil), (*string)(nil), (*string)(nil), (*string)(nil), (*string)(nil), &scheduled, &notes, "rec-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = store.UpdateServiceRecord(context.Background(), "rec-1", db.RecordUpdate{
		ScheduledDate: &scheduled,
		Notes:         &notes,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteServiceRecordTransaction(t *testing.T) {
	t.Parallel()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := db.NewWithDB(mock)
	at := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE service_records\\s+SET .+").
		WithArgs(models.ServiceCompleted, "fixed seal", "replaced seal", "seal kit", (*float64)(nil), "", at, "rec-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE technicians SET current_week_completed = current_week_completed + 1 WHERE id = $1",
	)).WithArgs("t1").WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err = store.CompleteServiceRecord(context.Background(), "rec-1", "t1", db.CompletionFields{
		Diagnosis:  "fixed seal",
		Resolution: "replaced seal",
		PartsUsed:  "seal kit",
	}, at)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListSystemConfig(t *testing.T) {
	t.Parallel()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := db.NewWithDB(mock)
	updated := time.Now()

	mock.ExpectQuery("(?s)SELECT key, value, updated_at FROM system_config ORDER BY key ASC").
		WillReturnRows(pgxmock.NewRows([]string{"key", "value", "updated_at"}).
			AddRow(db.ConfigQuotaResetDay, "1", updated).
			AddRow(db.ConfigQuotaResetHour, "0", updated))

	entries, err := store.ListSystemConfig(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, db.ConfigQuotaResetDay, entries[0].Key)
	assert.Equal(t, "1", entries[0].Value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertSystemConfig(t *testing.T) {
	t.Parallel()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := db.NewWithDB(mock)
	updated := time.Now()

	mock.ExpectQuery("(?s)INSERT INTO system_config.+ON CONFLICT \\(key\\) DO UPDATE SET value = EXCLUDED\\.value.+RETURNING key, value, updated_at").
		WithArgs(db.ConfigQuotaResetHour, "6").
		WillReturnRows(pgxmock.NewRows([]string{"key", "value", "updated_at"}).
			AddRow(db.ConfigQuotaResetHour, "6", updated))

	entry, err := store.UpsertSystemConfig(context.Background(), db.ConfigQuotaResetHour, "6")
	require.NoError(t, err)
	assert.Equal(t, "6", entry.Value)
	assert.Equal(t, updated, entry.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPerformanceReport(t *testing.T) {
	t.Parallel()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := db.NewWithDB(mock)
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	mock.ExpectQuery("(?s)SELECT t\\.id, u\\.name, u\\.email, t\\.status,.+FROM technicians t JOIN users u ON u\\.id = t\\.user_id\\s+ORDER BY u\\.name ASC").
		WithArgs(start, end, models.ServiceCompleted, models.CallAnswered, models.CallCompleted).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "name", "email", "status",
			"total_services", "completed_services", "total_calls", "answered_calls", "total_labor_hours",
		}).AddRow("t1", "Dana", "dana@example.com", models.TechnicianActive, 8, 6, 12, 9, 14.5))

	report, err := store.PerformanceReport(context.Background(), start, end)
	require.NoError(t, err)
	require.Len(t, report, 1)
	assert.Equal(t, 6, report[0].CompletedServices)
	assert.Equal(t, 9, report[0].AnsweredCalls)
	assert.InDelta(t, 14.5, report[0].TotalLaborHours, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}
