package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/repairops/backend/internal/models"
	"github.com/repairops/backend/internal/service"
)

func (h *Handler) TechniciansList(c *gin.Context) {
	status := models.TechnicianStatus(c.Query("status"))
	items, err := h.Store.ListTechnicians(c.Request.Context(), status)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list technicians", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// @Summary Currently available technicians
// @Tags technicians
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/technicians/available [get]
func (h *Handler) TechniciansAvailable(c *gin.Context) {
	now := time.Now()
	technicians, err := h.Store.ActiveTechnicians(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list technicians", err.Error())
		return
	}
	schedules, err := h.Store.SchedulesForDay(c.Request.Context(), int(now.Weekday()))
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load schedules", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": service.AvailableNow(now, technicians, schedules)})
}

func (h *Handler) TechnicianDetails(c *gin.Context) {
	t, err := h.Store.GetTechnician(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceErrorOrNotFound(c, err)
		return
	}
	schedules, err := h.Store.ListSchedules(c.Request.Context(), t.ID)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load schedules", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"technician": t, "schedules": schedules})
}

type CreateTechnicianRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	Name        string `json:"name" validate:"required"`
	Phone       string `json:"phone"`
	WeeklyQuota int    `json:"weekly_quota" validate:"omitempty,gt=0"`
}

// @Summary Create technician
// @Tags technicians
// @Accept json
// @Produce json
// @Success 201 {object} models.Technician
// @Failure 400 {object} map[string]any
// @Router /api/technicians [post]
func (h *Handler) TechnicianCreate(c *gin.Context) {
	var req CreateTechnicianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	t, err := h.Technicians.Create(c.Request.Context(), req.Email, req.Password, req.Name, req.Phone, req.WeeklyQuota, actorID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

type UpdateTechnicianRequest struct {
	Phone       *string `json:"phone"`
	WeeklyQuota *int    `json:"weekly_quota" validate:"omitempty,gt=0"`
}

func (h *Handler) TechnicianUpdate(c *gin.Context) {
	var req UpdateTechnicianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	t, err := h.Technicians.Update(c.Request.Context(), c.Param("id"), req.Phone, req.WeeklyQuota, actorID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

type LockTechnicianRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// @Summary Lock technician
// @Tags technicians
// @Accept json
// @Produce json
// @Success 200 {object} models.Technician
// @Failure 400 {object} map[string]any
// @Router /api/technicians/{id}/lock [post]
func (h *Handler) TechnicianLock(c *gin.Context) {
	var req LockTechnicianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	t, err := h.Technicians.Lock(c.Request.Context(), c.Param("id"), req.Reason, actorID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) TechnicianUnlock(c *gin.Context) {
	t, err := h.Technicians.Unlock(c.Request.Context(), c.Param("id"), actorID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) TechnicianDelete(c *gin.Context) {
	if err := h.Technicians.Delete(c.Request.Context(), c.Param("id"), actorID(c)); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// @Summary Technician quota status
// @Tags technicians
// @Produce json
// @Success 200 {object} models.QuotaStatus
// @Router /api/technicians/{id}/quota [get]
func (h *Handler) TechnicianQuotaStatus(c *gin.Context) {
	status, err := h.Quota.Status(c.Request.Context(), c.Param("id"), time.Now())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}
