package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/repairops/backend/internal/metrics"
	"github.com/repairops/backend/internal/models"
)

type QuotaStore interface {
	GetTechnician(ctx context.Context, id string) (models.Technician, error)
	TechniciansForQuotaEvaluation(ctx context.Context) ([]models.Technician, error)
	LockTechnicianForQuota(ctx context.Context, id, reason string, at time.Time) error
	ResetTechnicianQuota(ctx context.Context, id string, at time.Time) error
	InsertAuditLog(ctx context.Context, entry models.AuditLog) error
}

// Quota maintains the weekly completed-service counters and applies the
// recurring lock-or-reset evaluation.
type Quota struct {
	Store   QuotaStore
	Metrics *metrics.Metrics
	Logger  zerolog.Logger
}

func NewQuota(store QuotaStore, m *metrics.Metrics, logger zerolog.Logger) *Quota {
	return &Quota{Store: store, Metrics: m, Logger: logger}
}

// ResetDecision is the single evaluation applied to each technician at a
// weekly boundary. Lock and reset are mutually exclusive outcomes: an
// ACTIVE technician short of quota is locked (with the counter reset in
// the same write); everyone else only has the counter reset. A LOCKED
// technician stays LOCKED, unlocking is always an explicit admin action.
func ResetDecision(t models.Technician) models.ResetOutcome {
	if t.Status == models.TechnicianActive && t.CurrentWeekCompleted < t.WeeklyQuota {
		return models.OutcomeLocked
	}
	return models.OutcomeReset
}

// ExpectedProgress is the pro-rated target for the elapsed workdays of the
// week, on a fixed 5-workday model. Sunday counts as day 7 of the cycle.
// Display heuristic only, never an enforcement input.
func ExpectedProgress(weeklyQuota int, now time.Time) int {
	day := int(now.Weekday())
	if day == 0 {
		day = 7
	}
	if day > 5 {
		day = 5
	}
	return int(math.Floor(float64(weeklyQuota) / 5 * float64(day)))
}

// EvaluateAndReset runs the weekly evaluation over every non-INACTIVE
// technician. Each technician's update is independent: one failure is
// logged and does not abort the batch.
func (q *Quota) EvaluateAndReset(ctx context.Context, now time.Time) ([]models.ResetResult, error) {
	q.Logger.Info().Msg("performing weekly quota reset")

	technicians, err := q.Store.TechniciansForQuotaEvaluation(ctx)
	if err != nil {
		return nil, err
	}

	var results []models.ResetResult
	for _, t := range technicians {
		outcome := ResetDecision(t)
		switch outcome {
		case models.OutcomeLocked:
			reason := fmt.Sprintf("Failed to meet weekly quota (%d/%d)", t.CurrentWeekCompleted, t.WeeklyQuota)
			if err := q.Store.LockTechnicianForQuota(ctx, t.ID, reason, now); err != nil {
				q.Logger.Error().Err(err).Str("technician_id", t.ID).Msg("failed to lock technician")
				continue
			}
			q.Metrics.QuotaLocks.Inc()
			details, _ := json.Marshal(map[string]any{
				"reason":    "Quota not met",
				"completed": t.CurrentWeekCompleted,
				"required":  t.WeeklyQuota,
			})
			if err := q.Store.InsertAuditLog(ctx, models.AuditLog{
				Action:     "LOCK",
				EntityType: "TECHNICIAN",
				EntityID:   &t.ID,
				Details:    details,
			}); err != nil {
				q.Logger.Error().Err(err).Str("technician_id", t.ID).Msg("failed to write audit entry")
			}
			q.Logger.Warn().
				Str("technician_id", t.ID).
				Str("email", t.User.Email).
				Msg("technician locked for not meeting quota")
		case models.OutcomeReset:
			if err := q.Store.ResetTechnicianQuota(ctx, t.ID, now); err != nil {
				q.Logger.Error().Err(err).Str("technician_id", t.ID).Msg("failed to reset quota")
				continue
			}
		}
		results = append(results, models.ResetResult{TechnicianID: t.ID, Outcome: outcome})
	}

	q.Metrics.QuotaResets.Inc()
	details, _ := json.Marshal(map[string]any{
		"technician_count": len(technicians),
		"timestamp":        now.Format(time.RFC3339),
	})
	if err := q.Store.InsertAuditLog(ctx, models.AuditLog{
		Action:     "QUOTA_RESET",
		EntityType: "SYSTEM",
		Details:    details,
	}); err != nil {
		q.Logger.Error().Err(err).Msg("failed to write audit entry")
	}

	q.Logger.Info().Int("technicians", len(technicians)).Msg("weekly quota reset completed")
	return results, nil
}

// ManualReset is the admin-triggered equivalent of EvaluateAndReset, with
// an extra audit entry attributed to the actor.
func (q *Quota) ManualReset(ctx context.Context, actorID string, now time.Time) ([]models.ResetResult, error) {
	results, err := q.EvaluateAndReset(ctx, now)
	if err != nil {
		return nil, err
	}

	details, _ := json.Marshal(map[string]any{"manual": true})
	if err := q.Store.InsertAuditLog(ctx, models.AuditLog{
		ActorID:    &actorID,
		Action:     "QUOTA_RESET",
		EntityType: "SYSTEM",
		Details:    details,
	}); err != nil {
		q.Logger.Error().Err(err).Msg("failed to write audit entry")
	}
	return results, nil
}

// Status derives the quota progress view for one technician.
func (q *Quota) Status(ctx context.Context, technicianID string, now time.Time) (models.QuotaStatus, error) {
	t, err := q.Store.GetTechnician(ctx, technicianID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.QuotaStatus{}, ErrNotFound
		}
		return models.QuotaStatus{}, err
	}

	percentage := 0
	if t.WeeklyQuota > 0 {
		percentage = int(math.Round(float64(t.CurrentWeekCompleted) / float64(t.WeeklyQuota) * 100))
	}
	remaining := t.WeeklyQuota - t.CurrentWeekCompleted
	if remaining < 0 {
		remaining = 0
	}
	return models.QuotaStatus{
		Current:    t.CurrentWeekCompleted,
		Required:   t.WeeklyQuota,
		Remaining:  remaining,
		Percentage: percentage,
		OnTrack:    t.CurrentWeekCompleted >= ExpectedProgress(t.WeeklyQuota, now),
		LastReset:  t.LastQuotaReset,
	}, nil
}
