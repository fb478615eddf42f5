package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/repairops/backend/internal/db"
	"github.com/repairops/backend/internal/metrics"
	"github.com/repairops/backend/internal/models"
)

// RouterStore is the storage port the router needs.
type RouterStore interface {
	GetCallByExternalID(ctx context.Context, externalID string) (models.Call, error)
	CreateCall(ctx context.Context, externalID, callerNumber, callerName string) (models.Call, error)
	AssignCall(ctx context.Context, callID, technicianID string, at time.Time) error
	MarkCallAnswered(ctx context.Context, callID string, at time.Time) error
	MarkCallCompleted(ctx context.Context, callID string, at time.Time, duration *int, recordingURL *string) error
	MarkCallMissed(ctx context.Context, callID string, at time.Time) error
	ActiveTechnicians(ctx context.Context) ([]models.Technician, error)
	SchedulesForDay(ctx context.Context, dayOfWeek int) ([]models.Schedule, error)
	InsertAuditLog(ctx context.Context, entry models.AuditLog) error
}

// Router receives inbound telephony events, creates calls, and assigns
// them to the least-loaded available technician.
type Router struct {
	Store   RouterStore
	Metrics *metrics.Metrics
	Logger  zerolog.Logger
	Now     func() time.Time
}

func NewRouter(store RouterStore, m *metrics.Metrics, logger zerolog.Logger) *Router {
	return &Router{Store: store, Metrics: m, Logger: logger, Now: time.Now}
}

// RouteIncomingCall implements the ingestion path for a new inbound call.
// The same external id is processed at most once: both the lookup and the
// unique index on insert collapse redeliveries into a "already processed"
// result instead of an error.
func (r *Router) RouteIncomingCall(ctx context.Context, externalID, callerNumber, callerName string) (models.RoutingResult, error) {
	started := r.Now()
	defer func() {
		r.Metrics.RoutingDuration.Observe(time.Since(started).Seconds())
	}()

	if _, err := r.Store.GetCallByExternalID(ctx, externalID); err == nil {
		r.Logger.Info().Str("external_id", externalID).Msg("call already exists, skipping")
		return models.RoutingResult{Success: false, Message: "Call already processed"}, nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return models.RoutingResult{}, err
	}

	call, err := r.Store.CreateCall(ctx, externalID, callerNumber, callerName)
	if err != nil {
		if errors.Is(err, db.ErrUniqueViolation) {
			// Lost the race against a concurrent delivery of the same id.
			r.Logger.Info().Str("external_id", externalID).Msg("duplicate call insert, skipping")
			return models.RoutingResult{Success: false, Message: "Call already processed"}, nil
		}
		return models.RoutingResult{}, err
	}

	now := r.Now()
	technicians, err := r.Store.ActiveTechnicians(ctx)
	if err != nil {
		return models.RoutingResult{}, err
	}
	schedules, err := r.Store.SchedulesForDay(ctx, int(now.Weekday()))
	if err != nil {
		return models.RoutingResult{}, err
	}

	candidates := AvailableNow(now, technicians, schedules)
	if len(candidates) == 0 {
		r.Logger.Warn().Str("call_id", call.ID).Msg("no available technicians for call routing")
		r.Metrics.CallsUnrouted.Inc()
		return models.RoutingResult{
			Success: false,
			CallID:  call.ID,
			Message: "No available technicians",
		}, nil
	}

	selected := candidates[0]
	if err := r.Store.AssignCall(ctx, call.ID, selected.ID, now); err != nil {
		return models.RoutingResult{}, err
	}
	r.Metrics.CallsRouted.Inc()

	details, _ := json.Marshal(map[string]any{
		"technician_id":   selected.ID,
		"technician_name": selected.User.Name,
		"caller_number":   callerNumber,
	})
	if err := r.Store.InsertAuditLog(ctx, models.AuditLog{
		Action:     "CALL_ROUTED",
		EntityType: "CALL",
		EntityID:   &call.ID,
		Details:    details,
	}); err != nil {
		// Assignment is already committed; the missing entry is logged,
		// not rolled back.
		r.Logger.Error().Err(err).Str("call_id", call.ID).Msg("failed to write audit entry")
	}

	r.Logger.Info().
		Str("call_id", call.ID).
		Str("technician_id", selected.ID).
		Msg("call routed")

	return models.RoutingResult{
		Success:        true,
		CallID:         call.ID,
		TechnicianID:   selected.ID,
		TechnicianName: selected.User.Name,
		Message:        "Call routed successfully",
	}, nil
}

// ApplyStatusEvent advances a call through its lifecycle from an external
// status report. Unknown external ids and events against terminal calls
// are logged and dropped: telephony providers redeliver events.
func (r *Router) ApplyStatusEvent(ctx context.Context, externalID, statusCode, recordingID string) error {
	call, err := r.Store.GetCallByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.Logger.Warn().Str("external_id", externalID).Msg("status update for unknown call, ignoring")
			return nil
		}
		return err
	}

	next, ok := NextStatus(call.Status, statusCode)
	if !ok {
		r.Logger.Info().
			Str("call_id", call.ID).
			Str("status", string(call.Status)).
			Str("code", statusCode).
			Msg("status event does not apply, ignoring")
		return nil
	}

	now := r.Now()
	switch next {
	case models.CallAnswered:
		return r.Store.MarkCallAnswered(ctx, call.ID, now)
	case models.CallCompleted:
		var duration *int
		if call.AnsweredAt != nil {
			d := int(now.Sub(*call.AnsweredAt).Round(time.Second) / time.Second)
			duration = &d
		}
		var recordingURL *string
		if recordingID != "" {
			u := "https://platform.ringcentral.com/recordings/" + recordingID
			recordingURL = &u
		}
		return r.Store.MarkCallCompleted(ctx, call.ID, now, duration, recordingURL)
	case models.CallMissed:
		r.Metrics.CallsMissed.Inc()
		return r.Store.MarkCallMissed(ctx, call.ID, now)
	}
	return nil
}
