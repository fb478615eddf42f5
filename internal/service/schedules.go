package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/repairops/backend/internal/db"
	"github.com/repairops/backend/internal/models"
)

type ScheduleStore interface {
	GetTechnician(ctx context.Context, id string) (models.Technician, error)
	GetSchedule(ctx context.Context, id string) (models.Schedule, error)
	CreateSchedule(ctx context.Context, sc models.Schedule) (models.Schedule, error)
	UpdateSchedule(ctx context.Context, sc models.Schedule) error
	DeleteSchedule(ctx context.Context, id string) error
}

// Schedules validates and stores weekly availability windows. Changing a
// schedule never touches in-flight calls.
type Schedules struct {
	Store  ScheduleStore
	Logger zerolog.Logger
}

func NewSchedules(store ScheduleStore, logger zerolog.Logger) *Schedules {
	return &Schedules{Store: store, Logger: logger}
}

func validateWindow(startTime, endTime string) error {
	if !ValidClockTime(startTime) || !ValidClockTime(endTime) {
		return ErrInvalidTimeFormat
	}
	if startTime >= endTime {
		return ErrInvalidTimeRange
	}
	return nil
}

func (s *Schedules) Create(ctx context.Context, sc models.Schedule) (models.Schedule, error) {
	if err := validateWindow(sc.StartTime, sc.EndTime); err != nil {
		return models.Schedule{}, err
	}
	if _, err := s.Store.GetTechnician(ctx, sc.TechnicianID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Schedule{}, ErrNotFound
		}
		return models.Schedule{}, err
	}

	created, err := s.Store.CreateSchedule(ctx, sc)
	if err != nil {
		if errors.Is(err, db.ErrUniqueViolation) {
			return models.Schedule{}, ErrScheduleExists
		}
		return models.Schedule{}, err
	}
	return created, nil
}

func (s *Schedules) Update(ctx context.Context, id string, startTime, endTime *string, isAvailable *bool) (models.Schedule, error) {
	sc, err := s.Store.GetSchedule(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Schedule{}, ErrNotFound
		}
		return models.Schedule{}, err
	}

	if startTime != nil {
		sc.StartTime = *startTime
	}
	if endTime != nil {
		sc.EndTime = *endTime
	}
	if isAvailable != nil {
		sc.IsAvailable = *isAvailable
	}
	if err := validateWindow(sc.StartTime, sc.EndTime); err != nil {
		return models.Schedule{}, err
	}

	if err := s.Store.UpdateSchedule(ctx, sc); err != nil {
		return models.Schedule{}, err
	}
	return sc, nil
}

func (s *Schedules) Delete(ctx context.Context, id string) error {
	if _, err := s.Store.GetSchedule(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return s.Store.DeleteSchedule(ctx, id)
}
