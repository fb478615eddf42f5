package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/repairops/backend/internal/models"
)

type TechnicianStore interface {
	GetTechnician(ctx context.Context, id string) (models.Technician, error)
	CreateTechnician(ctx context.Context, email, password, name, phone string, weeklyQuota int) (models.Technician, error)
	UpdateTechnician(ctx context.Context, id string, phone *string, weeklyQuota *int) error
	LockTechnician(ctx context.Context, id, reason string, at time.Time) error
	UnlockTechnician(ctx context.Context, id string) error
	DeleteTechnician(ctx context.Context, id string) error
	InsertAuditLog(ctx context.Context, entry models.AuditLog) error
}

// Technicians covers the administrative lifecycle of a technician:
// creation, quota tuning, and the explicit lock/unlock controls.
type Technicians struct {
	Store  TechnicianStore
	Logger zerolog.Logger
	Now    func() time.Time
}

func NewTechnicians(store TechnicianStore, logger zerolog.Logger) *Technicians {
	return &Technicians{Store: store, Logger: logger, Now: time.Now}
}

func (s *Technicians) Create(ctx context.Context, email, password, name, phone string, weeklyQuota int, actorID string) (models.Technician, error) {
	if weeklyQuota <= 0 {
		weeklyQuota = 25
	}
	t, err := s.Store.CreateTechnician(ctx, email, password, name, phone, weeklyQuota)
	if err != nil {
		return models.Technician{}, err
	}
	details, _ := json.Marshal(map[string]any{"email": email, "name": name})
	s.audit(ctx, actorID, "CREATE", t.ID, details)
	return t, nil
}

func (s *Technicians) Update(ctx context.Context, id string, phone *string, weeklyQuota *int, actorID string) (models.Technician, error) {
	if _, err := s.get(ctx, id); err != nil {
		return models.Technician{}, err
	}
	if err := s.Store.UpdateTechnician(ctx, id, phone, weeklyQuota); err != nil {
		return models.Technician{}, err
	}
	details, _ := json.Marshal(map[string]any{"phone": phone, "weekly_quota": weeklyQuota})
	s.audit(ctx, actorID, "UPDATE", id, details)
	return s.get(ctx, id)
}

// Lock refuses an already-locked technician so a lock always captures one
// reason and one timestamp.
func (s *Technicians) Lock(ctx context.Context, id, reason, actorID string) (models.Technician, error) {
	t, err := s.get(ctx, id)
	if err != nil {
		return models.Technician{}, err
	}
	if t.Status == models.TechnicianLocked {
		return models.Technician{}, ErrAlreadyLocked
	}
	if err := s.Store.LockTechnician(ctx, id, reason, s.Now()); err != nil {
		return models.Technician{}, err
	}
	details, _ := json.Marshal(map[string]any{"reason": reason})
	s.audit(ctx, actorID, "LOCK", id, details)
	return s.get(ctx, id)
}

// Unlock clears the lock fields and restores ACTIVE status. This is the
// only way out of LOCKED; the weekly reset never unlocks.
func (s *Technicians) Unlock(ctx context.Context, id, actorID string) (models.Technician, error) {
	t, err := s.get(ctx, id)
	if err != nil {
		return models.Technician{}, err
	}
	if t.Status != models.TechnicianLocked {
		return models.Technician{}, ErrNotLocked
	}
	if err := s.Store.UnlockTechnician(ctx, id); err != nil {
		return models.Technician{}, err
	}
	details, _ := json.Marshal(map[string]any{"previous_reason": t.LockedReason})
	s.audit(ctx, actorID, "UNLOCK", id, details)
	return s.get(ctx, id)
}

func (s *Technicians) Delete(ctx context.Context, id, actorID string) error {
	t, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Store.DeleteTechnician(ctx, id); err != nil {
		return err
	}
	details, _ := json.Marshal(map[string]any{"email": t.User.Email})
	s.audit(ctx, actorID, "DELETE", id, details)
	return nil
}

func (s *Technicians) get(ctx context.Context, id string) (models.Technician, error) {
	t, err := s.Store.GetTechnician(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Technician{}, ErrNotFound
		}
		return models.Technician{}, err
	}
	return t, nil
}

func (s *Technicians) audit(ctx context.Context, actorID, action, technicianID string, details []byte) {
	var actor *string
	if actorID != "" {
		actor = &actorID
	}
	if err := s.Store.InsertAuditLog(ctx, models.AuditLog{
		ActorID:    actor,
		Action:     action,
		EntityType: "TECHNICIAN",
		EntityID:   &technicianID,
		Details:    details,
	}); err != nil {
		s.Logger.Error().Err(err).Str("technician_id", technicianID).Msg("failed to write audit entry")
	}
}
