package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/repairops/backend/internal/db"
	"github.com/repairops/backend/internal/models"
)

// mockStore implements the service store interfaces through overridable
// function fields. Unset lookup fields report pgx.ErrNoRows, unset write
// fields succeed, so each test only wires the calls it cares about.
type mockStore struct {
	getCallByExternalIDFn func(ctx context.Context, externalID string) (models.Call, error)
	createCallFn          func(ctx context.Context, externalID, callerNumber, callerName string) (models.Call, error)
	assignCallFn          func(ctx context.Context, callID, technicianID string, at time.Time) error
	markCallAnsweredFn    func(ctx context.Context, callID string, at time.Time) error
	markCallCompletedFn   func(ctx context.Context, callID string, at time.Time, duration *int, recordingURL *string) error
	markCallMissedFn      func(ctx context.Context, callID string, at time.Time) error

	activeTechniciansFn             func(ctx context.Context) ([]models.Technician, error)
	techniciansForQuotaEvaluationFn func(ctx context.Context) ([]models.Technician, error)
	getTechnicianFn                 func(ctx context.Context, id string) (models.Technician, error)
	createTechnicianFn              func(ctx context.Context, email, password, name, phone string, weeklyQuota int) (models.Technician, error)
	updateTechnicianFn              func(ctx context.Context, id string, phone *string, weeklyQuota *int) error
	lockTechnicianFn                func(ctx context.Context, id, reason string, at time.Time) error
	lockTechnicianForQuotaFn        func(ctx context.Context, id, reason string, at time.Time) error
	unlockTechnicianFn              func(ctx context.Context, id string) error
	resetTechnicianQuotaFn          func(ctx context.Context, id string, at time.Time) error
	deleteTechnicianFn              func(ctx context.Context, id string) error

	schedulesForDayFn func(ctx context.Context, dayOfWeek int) ([]models.Schedule, error)
	getScheduleFn     func(ctx context.Context, id string) (models.Schedule, error)
	createScheduleFn  func(ctx context.Context, sc models.Schedule) (models.Schedule, error)
	updateScheduleFn  func(ctx context.Context, sc models.Schedule) error
	deleteScheduleFn  func(ctx context.Context, id string) error

	getServiceRecordFn      func(ctx context.Context, id string) (models.ServiceRecord, error)
	createServiceRecordFn   func(ctx context.Context, r models.ServiceRecord) (models.ServiceRecord, error)
	updateServiceRecordFn   func(ctx context.Context, id string, u db.RecordUpdate) error
	completeServiceRecordFn func(ctx context.Context, id, technicianID string, f db.CompletionFields, at time.Time) error
	cancelServiceRecordFn   func(ctx context.Context, id string) error

	insertAuditLogFn func(ctx context.Context, entry models.AuditLog) error
}

func (m *mockStore) GetCallByExternalID(ctx context.Context, externalID string) (models.Call, error) {
	if m.getCallByExternalIDFn == nil {
		return models.Call{}, pgx.ErrNoRows
	}
	return m.getCallByExternalIDFn(ctx, externalID)
}

func (m *mockStore) CreateCall(ctx context.Context, externalID, callerNumber, callerName string) (models.Call, error) {
	if m.createCallFn == nil {
		return models.Call{ID: "call-1", RingCentralCallID: externalID, Status: models.CallPending}, nil
	}
	return m.createCallFn(ctx, externalID, callerNumber, callerName)
}

func (m *mockStore) AssignCall(ctx context.Context, callID, technicianID string, at time.Time) error {
	if m.assignCallFn == nil {
		return nil
	}
	return m.assignCallFn(ctx, callID, technicianID, at)
}

func (m *mockStore) MarkCallAnswered(ctx context.Context, callID string, at time.Time) error {
	if m.markCallAnsweredFn == nil {
		return nil
	}
	return m.markCallAnsweredFn(ctx, callID, at)
}

func (m *mockStore) MarkCallCompleted(ctx context.Context, callID string, at time.Time, duration *int, recordingURL *string) error {
	if m.markCallCompletedFn == nil {
		return nil
	}
	return m.markCallCompletedFn(ctx, callID, at, duration, recordingURL)
}

func (m *mockStore) MarkCallMissed(ctx context.Context, callID string, at time.Time) error {
	if m.markCallMissedFn == nil {
		return nil
	}
	return m.markCallMissedFn(ctx, callID, at)
}

func (m *mockStore) ActiveTechnicians(ctx context.Context) ([]models.Technician, error) {
	if m.activeTechniciansFn == nil {
		return nil, nil
	}
	return m.activeTechniciansFn(ctx)
}

func (m *mockStore) TechniciansForQuotaEvaluation(ctx context.Context) ([]models.Technician, error) {
	if m.techniciansForQuotaEvaluationFn == nil {
		return nil, nil
	}
	return m.techniciansForQuotaEvaluationFn(ctx)
}

func (m *mockStore) GetTechnician(ctx context.Context, id string) (models.Technician, error) {
	if m.getTechnicianFn == nil {
		return models.Technician{}, pgx.ErrNoRows
	}
	return m.getTechnicianFn(ctx, id)
}

func (m *mockStore) CreateTechnician(ctx context.Context, email, password, name, phone string, weeklyQuota int) (models.Technician, error) {
	if m.createTechnicianFn == nil {
		return models.Technician{ID: "tech-1", WeeklyQuota: weeklyQuota, Status: models.TechnicianActive}, nil
	}
	return m.createTechnicianFn(ctx, email, password, name, phone, weeklyQuota)
}

func (m *mockStore) UpdateTechnician(ctx context.Context, id string, phone *string, weeklyQuota *int) error {
	if m.updateTechnicianFn == nil {
		return nil
	}
	return m.updateTechnicianFn(ctx, id, phone, weeklyQuota)
}

func (m *mockStore) LockTechnician(ctx context.Context, id, reason string, at time.Time) error {
	if m.lockTechnicianFn == nil {
		return nil
	}
	return m.lockTechnicianFn(ctx, id, reason, at)
}

func (m *mockStore) LockTechnicianForQuota(ctx context.Context, id, reason string, at time.Time) error {
	if m.lockTechnicianForQuotaFn == nil {
		return nil
	}
	return m.lockTechnicianForQuotaFn(ctx, id, reason, at)
}

func (m *mockStore) UnlockTechnician(ctx context.Context, id string) error {
	if m.unlockTechnicianFn == nil {
		return nil
	}
	return m.unlockTechnicianFn(ctx, id)
}

func (m *mockStore) ResetTechnicianQuota(ctx context.Context, id string, at time.Time) error {
	if m.resetTechnicianQuotaFn == nil {
		return nil
	}
	return m.resetTechnicianQuotaFn(ctx, id, at)
}

func (m *mockStore) DeleteTechnician(ctx context.Context, id string) error {
	if m.deleteTechnicianFn == nil {
		return nil
	}
	return m.deleteTechnicianFn(ctx, id)
}

func (m *mockStore) SchedulesForDay(ctx context.Context, dayOfWeek int) ([]models.Schedule, error) {
	if m.schedulesForDayFn == nil {
		return nil, nil
	}
	return m.schedulesForDayFn(ctx, dayOfWeek)
}

func (m *mockStore) GetSchedule(ctx context.Context, id string) (models.Schedule, error) {
	if m.getScheduleFn == nil {
		return models.Schedule{}, pgx.ErrNoRows
	}
	return m.getScheduleFn(ctx, id)
}

func (m *mockStore) CreateSchedule(ctx context.Context, sc models.Schedule) (models.Schedule, error) {
	if m.createScheduleFn == nil {
		sc.ID = "sched-1"
		return sc, nil
	}
	return m.createScheduleFn(ctx, sc)
}

func (m *mockStore) UpdateSchedule(ctx context.Context, sc models.Schedule) error {
	if m.updateScheduleFn == nil {
		return nil
	}
	return m.updateScheduleFn(ctx, sc)
}

func (m *mockStore) DeleteSchedule(ctx context.Context, id string) error {
	if m.deleteScheduleFn == nil {
		return nil
	}
	return m.deleteScheduleFn(ctx, id)
}

func (m *mockStore) GetServiceRecord(ctx context.Context, id string) (models.ServiceRecord, error) {
	if m.getServiceRecordFn == nil {
		return models.ServiceRecord{}, pgx.ErrNoRows
	}
	return m.getServiceRecordFn(ctx, id)
}

func (m *mockStore) CreateServiceRecord(ctx context.Context, r models.ServiceRecord) (models.ServiceRecord, error) {
	if m.createServiceRecordFn == nil {
		r.ID = "rec-1"
		r.Status = models.ServiceScheduled
		return r, nil
	}
	return m.createServiceRecordFn(ctx, r)
}

func (m *mockStore) UpdateServiceRecord(ctx context.Context, id string, u db.RecordUpdate) error {
	if m.updateServiceRecordFn == nil {
		return nil
	}
	return m.updateServiceRecordFn(ctx, id, u)
}

func (m *mockStore) CompleteServiceRecord(ctx context.Context, id, technicianID string, f db.CompletionFields, at time.Time) error {
	if m.completeServiceRecordFn == nil {
		return nil
	}
	return m.completeServiceRecordFn(ctx, id, technicianID, f, at)
}

func (m *mockStore) CancelServiceRecord(ctx context.Context, id string) error {
	if m.cancelServiceRecordFn == nil {
		return nil
	}
	return m.cancelServiceRecordFn(ctx, id)
}

func (m *mockStore) InsertAuditLog(ctx context.Context, entry models.AuditLog) error {
	if m.insertAuditLogFn == nil {
		return nil
	}
	return m.insertAuditLogFn(ctx, entry)
}
