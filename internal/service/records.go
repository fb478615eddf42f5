package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/repairops/backend/internal/db"
	"github.com/repairops/backend/internal/models"
)

type RecordStore interface {
	GetTechnician(ctx context.Context, id string) (models.Technician, error)
	GetServiceRecord(ctx context.Context, id string) (models.ServiceRecord, error)
	CreateServiceRecord(ctx context.Context, r models.ServiceRecord) (models.ServiceRecord, error)
	UpdateServiceRecord(ctx context.Context, id string, u db.RecordUpdate) error
	CompleteServiceRecord(ctx context.Context, id, technicianID string, f db.CompletionFields, at time.Time) error
	CancelServiceRecord(ctx context.Context, id string) error
	InsertAuditLog(ctx context.Context, entry models.AuditLog) error
}

// Records manages field-service visits. Completion is the only operation
// with a side effect beyond the record itself: exactly one increment to
// the owning technician's weekly counter.
type Records struct {
	Store  RecordStore
	Logger zerolog.Logger
	Now    func() time.Time
}

func NewRecords(store RecordStore, logger zerolog.Logger) *Records {
	return &Records{Store: store, Logger: logger, Now: time.Now}
}

func (s *Records) Create(ctx context.Context, r models.ServiceRecord, actorID string) (models.ServiceRecord, error) {
	if _, err := s.Store.GetTechnician(ctx, r.TechnicianID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ServiceRecord{}, ErrNotFound
		}
		return models.ServiceRecord{}, err
	}

	created, err := s.Store.CreateServiceRecord(ctx, r)
	if err != nil {
		return models.ServiceRecord{}, err
	}

	details, _ := json.Marshal(map[string]any{"customer_name": created.CustomerName})
	s.audit(ctx, actorID, "CREATE", created.ID, details)
	return created, nil
}

func (s *Records) Update(ctx context.Context, id string, u db.RecordUpdate, actorID string) (models.ServiceRecord, error) {
	record, err := s.Store.GetServiceRecord(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ServiceRecord{}, ErrNotFound
		}
		return models.ServiceRecord{}, err
	}
	if record.Status.Terminal() {
		return models.ServiceRecord{}, ErrInvalidTransition
	}
	if err := s.Store.UpdateServiceRecord(ctx, id, u); err != nil {
		return models.ServiceRecord{}, err
	}

	changed := map[string]any{}
	if u.CustomerName != nil {
		changed["customer_name"] = *u.CustomerName
	}
	if u.CustomerPhone != nil {
		changed["customer_phone"] = *u.CustomerPhone
	}
	if u.CustomerAddress != nil {
		changed["customer_address"] = *u.CustomerAddress
	}
	if u.ApplianceType != nil {
		changed["appliance_type"] = *u.ApplianceType
	}
	if u.IssueDescription != nil {
		changed["issue_description"] = *u.IssueDescription
	}
	if u.ScheduledDate != nil {
		changed["scheduled_date"] = u.ScheduledDate.Format(time.RFC3339)
	}
	if u.Notes != nil {
		changed["notes"] = *u.Notes
	}
	details, _ := json.Marshal(changed)
	s.audit(ctx, actorID, "UPDATE", id, details)

	return s.Store.GetServiceRecord(ctx, id)
}

// Complete transitions a record to COMPLETED, populates the completion
// fields, and increments the technician's weekly counter once. Terminal
// records are immutable: a second completion fails.
func (s *Records) Complete(ctx context.Context, id string, f db.CompletionFields, actorID string) (models.ServiceRecord, error) {
	record, err := s.Store.GetServiceRecord(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ServiceRecord{}, ErrNotFound
		}
		return models.ServiceRecord{}, err
	}
	if record.Status.Terminal() {
		return models.ServiceRecord{}, ErrInvalidTransition
	}

	if err := s.Store.CompleteServiceRecord(ctx, id, record.TechnicianID, f, s.Now()); err != nil {
		return models.ServiceRecord{}, err
	}

	details, _ := json.Marshal(map[string]any{"technician_id": record.TechnicianID})
	s.audit(ctx, actorID, "SERVICE_COMPLETED", id, details)

	return s.Store.GetServiceRecord(ctx, id)
}

func (s *Records) Cancel(ctx context.Context, id string, actorID string) error {
	record, err := s.Store.GetServiceRecord(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if record.Status.Terminal() {
		return ErrInvalidTransition
	}
	if err := s.Store.CancelServiceRecord(ctx, id); err != nil {
		return err
	}
	details, _ := json.Marshal(map[string]any{"status": models.ServiceCancelled})
	s.audit(ctx, actorID, "UPDATE", id, details)
	return nil
}

func (s *Records) audit(ctx context.Context, actorID, action, recordID string, details []byte) {
	var actor *string
	if actorID != "" {
		actor = &actorID
	}
	if err := s.Store.InsertAuditLog(ctx, models.AuditLog{
		ActorID:    actor,
		Action:     action,
		EntityType: "SERVICE_RECORD",
		EntityID:   &recordID,
		Details:    details,
	}); err != nil {
		s.Logger.Error().Err(err).Str("record_id", recordID).Msg("failed to write audit entry")
	}
}
