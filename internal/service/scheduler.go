package service

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/repairops/backend/internal/db"
	"github.com/repairops/backend/internal/models"
)

// ConfigStore exposes the persisted system configuration.
type ConfigStore interface {
	ListSystemConfig(ctx context.Context) ([]models.ConfigEntry, error)
}

// ResetScheduler polls on a fixed interval and triggers the weekly quota
// evaluation when the configured day of week and hour match. The daily
// poll plus same-day guard yields effectively-weekly execution without a
// calendar-aware timer.
//
// Config, when set, overrides the env-derived boundary with the persisted
// quota_reset_day/quota_reset_hour entries, re-read on every tick so an
// admin edit applies without a restart.
type ResetScheduler struct {
	Quota     *Quota
	Config    ConfigStore
	ResetDay  int // 0 = Sunday
	ResetHour int
	Interval  time.Duration
	Logger    zerolog.Logger
	Now       func() time.Time

	lastFired time.Time
}

func NewResetScheduler(quota *Quota, resetDay, resetHour int, interval time.Duration, logger zerolog.Logger) *ResetScheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &ResetScheduler{
		Quota:     quota,
		ResetDay:  resetDay,
		ResetHour: resetHour,
		Interval:  interval,
		Logger:    logger,
		Now:       time.Now,
	}
}

// resetBoundary applies persisted overrides to the configured defaults.
// Out-of-range or non-numeric values are ignored.
func resetBoundary(entries []models.ConfigEntry, day, hour int) (int, int) {
	for _, e := range entries {
		switch e.Key {
		case db.ConfigQuotaResetDay:
			if v, err := strconv.Atoi(e.Value); err == nil && v >= 0 && v <= 6 {
				day = v
			}
		case db.ConfigQuotaResetHour:
			if v, err := strconv.Atoi(e.Value); err == nil && v >= 0 && v <= 23 {
				hour = v
			}
		}
	}
	return day, hour
}

// shouldFire matches the configured weekly boundary and refuses a second
// firing within the same calendar day, so an interval shorter than an
// hour cannot double-reset.
func shouldFire(now time.Time, resetDay, resetHour int, lastFired time.Time) bool {
	if int(now.Weekday()) != resetDay || now.Hour() != resetHour {
		return false
	}
	if lastFired.IsZero() {
		return true
	}
	y1, m1, d1 := now.Date()
	y2, m2, d2 := lastFired.Date()
	return y1 != y2 || m1 != m2 || d1 != d2
}

// Run blocks until ctx is cancelled.
func (s *ResetScheduler) Run(ctx context.Context) {
	s.Logger.Info().
		Int("reset_day", s.ResetDay).
		Int("reset_hour", s.ResetHour).
		Dur("interval", s.Interval).
		Msg("quota reset scheduler started")

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.Logger.Info().Msg("quota reset scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *ResetScheduler) tick(ctx context.Context) {
	now := s.Now()
	day, hour := s.ResetDay, s.ResetHour
	if s.Config != nil {
		entries, err := s.Config.ListSystemConfig(ctx)
		if err != nil {
			s.Logger.Error().Err(err).Msg("failed to read system config, using defaults")
		} else {
			day, hour = resetBoundary(entries, day, hour)
		}
	}
	if !shouldFire(now, day, hour, s.lastFired) {
		return
	}
	s.lastFired = now
	if _, err := s.Quota.EvaluateAndReset(ctx, now); err != nil {
		s.Logger.Error().Err(err).Msg("scheduled quota reset failed")
	}
}
