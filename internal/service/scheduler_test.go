package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/repairops/backend/internal/models"
)

func TestShouldFire(t *testing.T) {
	// Monday 00:xx, reset configured for Monday hour 0.
	boundary := mondayAt("00:15")

	assert.True(t, shouldFire(boundary, 1, 0, time.Time{}))
	assert.False(t, shouldFire(mondayAt("01:15"), 1, 0, time.Time{}), "wrong hour")
	assert.False(t, shouldFire(boundary.AddDate(0, 0, 1), 1, 0, time.Time{}), "wrong day")

	// A second tick within the same hour must not fire again.
	assert.False(t, shouldFire(mondayAt("00:45"), 1, 0, boundary))

	// The following week fires again.
	nextWeek := boundary.AddDate(0, 0, 7)
	assert.True(t, shouldFire(nextWeek, 1, 0, boundary))
}

func TestShouldFireSundayBoundary(t *testing.T) {
	sunday := mondayAt("00:30").AddDate(0, 0, 6)
	assert.Equal(t, time.Sunday, sunday.Weekday())
	assert.True(t, shouldFire(sunday, 0, 0, time.Time{}))
	assert.False(t, shouldFire(sunday, 1, 0, time.Time{}))
}

func TestResetBoundaryOverrides(t *testing.T) {
	entries := []models.ConfigEntry{
		{Key: "quota_reset_day", Value: "3"},
		{Key: "quota_reset_hour", Value: "6"},
		{Key: "unrelated", Value: "x"},
	}
	day, hour := resetBoundary(entries, 1, 0)
	assert.Equal(t, 3, day)
	assert.Equal(t, 6, hour)

	// Garbage and out-of-range values leave the defaults alone.
	bad := []models.ConfigEntry{
		{Key: "quota_reset_day", Value: "7"},
		{Key: "quota_reset_hour", Value: "banana"},
	}
	day, hour = resetBoundary(bad, 1, 0)
	assert.Equal(t, 1, day)
	assert.Equal(t, 0, hour)

	day, hour = resetBoundary(nil, 2, 5)
	assert.Equal(t, 2, day)
	assert.Equal(t, 5, hour)
}

type fakeConfigStore struct {
	entries []models.ConfigEntry
}

func (f *fakeConfigStore) ListSystemConfig(context.Context) ([]models.ConfigEntry, error) {
	return f.entries, nil
}

func TestTickHonorsPersistedBoundary(t *testing.T) {
	evaluated := false
	store := &mockStore{
		techniciansForQuotaEvaluationFn: func(context.Context) ([]models.Technician, error) {
			evaluated = true
			return nil, nil
		},
	}
	quota := newTestQuota(store)

	// Defaults say Monday 00; the persisted config moves the boundary to
	// Wednesday 06, which is when the tick happens.
	wednesday := mondayAt("06:30").AddDate(0, 0, 2)
	s := NewResetScheduler(quota, 1, 0, time.Hour, zerolog.Nop())
	s.Now = func() time.Time { return wednesday }

	s.tick(context.Background())
	assert.False(t, evaluated, "env defaults alone must not fire on Wednesday")

	s.Config = &fakeConfigStore{entries: []models.ConfigEntry{
		{Key: "quota_reset_day", Value: "3"},
		{Key: "quota_reset_hour", Value: "6"},
	}}
	s.tick(context.Background())
	assert.True(t, evaluated, "persisted boundary applies without restart")
}

func TestNewResetSchedulerDefaultsInterval(t *testing.T) {
	s := NewResetScheduler(nil, 1, 0, 0, zerolog.Nop())
	assert.Equal(t, time.Hour, s.Interval)
}
