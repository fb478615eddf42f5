package service

import (
	"sort"
	"time"

	"github.com/repairops/backend/internal/models"
)

// AvailableNow filters technicians to those eligible to receive a call at
// the given instant: ACTIVE status, active linked user, and an availability
// window covering now on today's day of week. Window boundaries are
// inclusive on both ends, so a technician is reachable at the exact start
// and end minute.
//
// The result is ordered least-loaded first (current_week_completed
// ascending), with technician id as the deterministic tiebreak.
func AvailableNow(now time.Time, technicians []models.Technician, schedules []models.Schedule) []models.Technician {
	day := int(now.Weekday())
	clock := now.Format("15:04")

	windows := make(map[string]models.Schedule, len(schedules))
	for _, sc := range schedules {
		if sc.DayOfWeek == day {
			windows[sc.TechnicianID] = sc
		}
	}

	out := make([]models.Technician, 0, len(technicians))
	for _, t := range technicians {
		if t.Status != models.TechnicianActive || !t.User.IsActive {
			continue
		}
		w, ok := windows[t.ID]
		if !ok || !w.IsAvailable {
			continue
		}
		// HH:mm strings compare correctly lexicographically.
		if w.StartTime <= clock && clock <= w.EndTime {
			out = append(out, t)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CurrentWeekCompleted == out[j].CurrentWeekCompleted {
			return out[i].ID < out[j].ID
		}
		return out[i].CurrentWeekCompleted < out[j].CurrentWeekCompleted
	})
	return out
}

// ValidClockTime reports whether v is a 24-hour HH:mm wall-clock value.
func ValidClockTime(v string) bool {
	_, err := time.Parse("15:04", v)
	return err == nil && len(v) == 5
}
