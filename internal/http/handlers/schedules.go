package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/repairops/backend/internal/models"
)

func (h *Handler) SchedulesList(c *gin.Context) {
	items, err := h.Store.ListSchedules(c.Request.Context(), c.Query("technician_id"))
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list schedules", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type CreateScheduleRequest struct {
	TechnicianID string `json:"technician_id" validate:"required"`
	DayOfWeek    int    `json:"day_of_week" validate:"min=0,max=6"`
	StartTime    string `json:"start_time" validate:"required"`
	EndTime      string `json:"end_time" validate:"required"`
	IsAvailable  *bool  `json:"is_available"`
}

// @Summary Create availability window
// @Tags schedules
// @Accept json
// @Produce json
// @Success 201 {object} models.Schedule
// @Failure 400 {object} map[string]any
// @Router /api/schedules [post]
func (h *Handler) ScheduleCreate(c *gin.Context) {
	var req CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}
	sc, err := h.Schedules.Create(c.Request.Context(), models.Schedule{
		TechnicianID: req.TechnicianID,
		DayOfWeek:    req.DayOfWeek,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		IsAvailable:  available,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sc)
}

type UpdateScheduleRequest struct {
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
	IsAvailable *bool   `json:"is_available"`
}

func (h *Handler) ScheduleUpdate(c *gin.Context) {
	var req UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	sc, err := h.Schedules.Update(c.Request.Context(), c.Param("id"), req.StartTime, req.EndTime, req.IsAvailable)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, sc)
}

func (h *Handler) ScheduleDelete(c *gin.Context) {
	if err := h.Schedules.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
