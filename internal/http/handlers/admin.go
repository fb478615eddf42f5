package handlers

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/repairops/backend/internal/db"
	"github.com/repairops/backend/internal/models"
	"github.com/repairops/backend/internal/service"
)

// @Summary Trigger manual quota reset
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/admin/quota-reset [post]
func (h *Handler) AdminQuotaReset(c *gin.Context) {
	results, err := h.Quota.ManualReset(c.Request.Context(), actorID(c), time.Now())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Quota reset failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Quota reset completed",
		"results": results,
	})
}

// @Summary Get system configuration
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/admin/config [get]
func (h *Handler) AdminConfigList(c *gin.Context) {
	items, err := h.Store.ListSystemConfig(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load config", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type UpdateConfigRequest struct {
	Key   string `json:"key" validate:"required"`
	Value string `json:"value" validate:"required"`
}

// @Summary Update system configuration
// @Tags admin
// @Accept json
// @Produce json
// @Success 200 {object} models.ConfigEntry
// @Failure 400 {object} map[string]any
// @Router /api/admin/config [post]
func (h *Handler) AdminConfigUpdate(c *gin.Context) {
	var req UpdateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	if msg, ok := validateConfigValue(req.Key, req.Value); !ok {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", msg, nil)
		return
	}

	entry, err := h.Store.UpsertSystemConfig(c.Request.Context(), req.Key, req.Value)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to update config", err.Error())
		return
	}

	actor := actorID(c)
	var actorPtr *string
	if actor != "" {
		actorPtr = &actor
	}
	details, _ := json.Marshal(gin.H{"key": req.Key, "value": req.Value})
	if err := h.Store.InsertAuditLog(c.Request.Context(), models.AuditLog{
		ActorID:    actorPtr,
		Action:     "UPDATE",
		EntityType: "SYSTEM_CONFIG",
		EntityID:   &entry.Key,
		Details:    details,
	}); err != nil {
		h.Logger.Error().Err(err).Str("key", req.Key).Msg("failed to write audit entry")
	}

	c.JSON(http.StatusOK, entry)
}

// validateConfigValue range-checks the keys the scheduler consumes.
// Unknown keys pass through untouched, matching the open key space.
func validateConfigValue(key, value string) (string, bool) {
	switch key {
	case db.ConfigQuotaResetDay:
		if v, err := strconv.Atoi(value); err != nil || v < 0 || v > 6 {
			return "quota_reset_day must be an integer between 0 and 6", false
		}
	case db.ConfigQuotaResetHour:
		if v, err := strconv.Atoi(value); err != nil || v < 0 || v > 23 {
			return "quota_reset_hour must be an integer between 0 and 23", false
		}
	}
	return "", true
}

// @Summary Technician performance report
// @Tags admin
// @Produce json
// @Param start_date query string true "RFC3339 window start"
// @Param end_date query string true "RFC3339 window end"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/admin/reports/performance [get]
func (h *Handler) AdminPerformanceReport(c *gin.Context) {
	start, err := time.Parse(time.RFC3339, c.Query("start_date"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "start_date must be RFC3339", nil)
		return
	}
	end, err := time.Parse(time.RFC3339, c.Query("end_date"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "end_date must be RFC3339", nil)
		return
	}
	if end.Before(start) {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "end_date must not precede start_date", nil)
		return
	}

	rows, err := h.Store.PerformanceReport(c.Request.Context(), start, end)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to build report", err.Error())
		return
	}

	out := make([]gin.H, 0, len(rows))
	for _, r := range rows {
		answerRate := 0
		if r.TotalCalls > 0 {
			answerRate = int(math.Round(float64(r.AnsweredCalls) / float64(r.TotalCalls) * 100))
		}
		avgLabor := 0.0
		if r.CompletedServices > 0 {
			avgLabor = math.Round(r.TotalLaborHours/float64(r.CompletedServices)*100) / 100
		}
		out = append(out, gin.H{
			"id":     r.TechnicianID,
			"name":   r.Name,
			"email":  r.Email,
			"status": r.Status,
			"metrics": gin.H{
				"total_services":      r.TotalServices,
				"completed_services":  r.CompletedServices,
				"total_calls":         r.TotalCalls,
				"answered_calls":      r.AnsweredCalls,
				"call_answer_rate":    answerRate,
				"total_labor_hours":   math.Round(r.TotalLaborHours*100) / 100,
				"average_labor_hours": avgLabor,
			},
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"start_date": start,
		"end_date":   end,
		"items":      out,
	})
}

func (h *Handler) AdminAuditLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	items, err := h.Store.ListAuditLogs(c.Request.Context(),
		c.Query("actor_id"), c.Query("action"), c.Query("entity_type"), limit, offset)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list audit logs", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "limit": limit, "offset": offset})
}

// @Summary Dashboard statistics
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/admin/dashboard [get]
func (h *Handler) AdminDashboard(c *gin.Context) {
	ctx := c.Request.Context()
	now := time.Now()

	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startOfWeek := startOfDay.AddDate(0, 0, -int(now.Weekday()))
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	techCounts, err := h.Store.CountTechnicians(ctx)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to count technicians", err.Error())
		return
	}

	technicians, err := h.Store.ActiveTechnicians(ctx)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list technicians", err.Error())
		return
	}
	schedules, err := h.Store.SchedulesForDay(ctx, int(now.Weekday()))
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load schedules", err.Error())
		return
	}
	availableNow := len(service.AvailableNow(now, technicians, schedules))

	callsToday, err := h.Store.CountCallsSince(ctx, startOfDay)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to count calls", err.Error())
		return
	}
	callsThisWeek, err := h.Store.CountCallsSince(ctx, startOfWeek)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to count calls", err.Error())
		return
	}
	callsThisMonth, err := h.Store.CountCallsSince(ctx, startOfMonth)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to count calls", err.Error())
		return
	}
	callStats, err := h.Store.CallStats(ctx)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to compute call stats", err.Error())
		return
	}

	servicesThisWeek, err := h.Store.CountServicesSince(ctx, startOfWeek)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to count services", err.Error())
		return
	}
	servicesThisMonth, err := h.Store.CountServicesSince(ctx, startOfMonth)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to count services", err.Error())
		return
	}
	completedThisWeek, err := h.Store.CountCompletedServicesSince(ctx, startOfWeek)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to count completed services", err.Error())
		return
	}

	top, err := h.Store.TopTechnicians(ctx, 5)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load top technicians", err.Error())
		return
	}
	topOut := make([]gin.H, 0, len(top))
	for _, t := range top {
		progress := 0
		if t.WeeklyQuota > 0 {
			progress = int(float64(t.CurrentWeekCompleted)/float64(t.WeeklyQuota)*100 + 0.5)
		}
		topOut = append(topOut, gin.H{
			"id":                  t.ID,
			"name":                t.User.Name,
			"email":               t.User.Email,
			"completed_this_week": t.CurrentWeekCompleted,
			"quota":               t.WeeklyQuota,
			"progress":            progress,
		})
	}

	recent, err := h.Store.ListAuditLogs(ctx, "", "", "", 10, 0)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load recent activity", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"technicians": gin.H{
			"total":         techCounts.Total,
			"active":        techCounts.Active,
			"locked":        techCounts.Locked,
			"available_now": availableNow,
		},
		"calls": gin.H{
			"today":      callsToday,
			"this_week":  callsThisWeek,
			"this_month": callsThisMonth,
			"by_status":  callStats["by_status"],
		},
		"services": gin.H{
			"this_week":           servicesThisWeek,
			"this_month":          servicesThisMonth,
			"completed_this_week": completedThisWeek,
		},
		"top_technicians": topOut,
		"recent_activity": recent,
	})
}
