package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/repairops/backend/internal/db"
	"github.com/repairops/backend/internal/models"
)

func (h *Handler) RecordsList(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	items, err := h.Store.ListServiceRecords(c.Request.Context(),
		c.Query("technician_id"), models.ServiceStatus(c.Query("status")), limit, offset)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list service records", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "limit": limit, "offset": offset})
}

func (h *Handler) RecordDetails(c *gin.Context) {
	record, err := h.Store.GetServiceRecord(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceErrorOrNotFound(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

type CreateRecordRequest struct {
	TechnicianID     string  `json:"technician_id" validate:"required"`
	CallID           *string `json:"call_id"`
	CustomerName     string  `json:"customer_name" validate:"required"`
	CustomerPhone    string  `json:"customer_phone" validate:"required"`
	CustomerAddress  string  `json:"customer_address" validate:"required"`
	ApplianceType    string  `json:"appliance_type" validate:"required"`
	IssueDescription string  `json:"issue_description" validate:"required"`
	ScheduledDate    *string `json:"scheduled_date"`
	Notes            string  `json:"notes"`
}

// @Summary Create service record
// @Tags service-records
// @Accept json
// @Produce json
// @Success 201 {object} models.ServiceRecord
// @Failure 400 {object} map[string]any
// @Router /api/service-records [post]
func (h *Handler) RecordCreate(c *gin.Context) {
	var req CreateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	var scheduled *time.Time
	if req.ScheduledDate != nil {
		ts, err := time.Parse(time.RFC3339, *req.ScheduledDate)
		if err != nil {
			writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "scheduled_date must be RFC3339", nil)
			return
		}
		scheduled = &ts
	}

	record, err := h.Records.Create(c.Request.Context(), models.ServiceRecord{
		TechnicianID:     req.TechnicianID,
		CallID:           req.CallID,
		CustomerName:     req.CustomerName,
		CustomerPhone:    req.CustomerPhone,
		CustomerAddress:  req.CustomerAddress,
		ApplianceType:    req.ApplianceType,
		IssueDescription: req.IssueDescription,
		ScheduledDate:    scheduled,
		Notes:            req.Notes,
	}, actorID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

type UpdateRecordRequest struct {
	CustomerName     *string `json:"customer_name" validate:"omitempty,min=1"`
	CustomerPhone    *string `json:"customer_phone" validate:"omitempty,min=1"`
	CustomerAddress  *string `json:"customer_address" validate:"omitempty,min=1"`
	ApplianceType    *string `json:"appliance_type" validate:"omitempty,min=1"`
	IssueDescription *string `json:"issue_description" validate:"omitempty,min=1"`
	ScheduledDate    *string `json:"scheduled_date"`
	Notes            *string `json:"notes"`
}

// @Summary Update service record
// @Tags service-records
// @Accept json
// @Produce json
// @Success 200 {object} models.ServiceRecord
// @Failure 400 {object} map[string]any
// @Router /api/service-records/{id} [patch]
func (h *Handler) RecordUpdate(c *gin.Context) {
	var req UpdateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	var scheduled *time.Time
	if req.ScheduledDate != nil {
		ts, err := time.Parse(time.RFC3339, *req.ScheduledDate)
		if err != nil {
			writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "scheduled_date must be RFC3339", nil)
			return
		}
		scheduled = &ts
	}

	record, err := h.Records.Update(c.Request.Context(), c.Param("id"), db.RecordUpdate{
		CustomerName:     req.CustomerName,
		CustomerPhone:    req.CustomerPhone,
		CustomerAddress:  req.CustomerAddress,
		ApplianceType:    req.ApplianceType,
		IssueDescription: req.IssueDescription,
		ScheduledDate:    scheduled,
		Notes:            req.Notes,
	}, actorID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

type CompleteRecordRequest struct {
	Diagnosis  string   `json:"diagnosis" validate:"required"`
	Resolution string   `json:"resolution" validate:"required"`
	PartsUsed  string   `json:"parts_used"`
	LaborHours *float64 `json:"labor_hours" validate:"omitempty,gte=0"`
	Notes      string   `json:"notes"`
}

// @Summary Complete service record
// @Tags service-records
// @Accept json
// @Produce json
// @Success 200 {object} models.ServiceRecord
// @Failure 400 {object} map[string]any
// @Router /api/service-records/{id}/complete [post]
func (h *Handler) RecordComplete(c *gin.Context) {
	var req CompleteRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	record, err := h.Records.Complete(c.Request.Context(), c.Param("id"), db.CompletionFields{
		Diagnosis:  req.Diagnosis,
		Resolution: req.Resolution,
		PartsUsed:  req.PartsUsed,
		LaborHours: req.LaborHours,
		Notes:      req.Notes,
	}, actorID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *Handler) RecordCancel(c *gin.Context) {
	if err := h.Records.Cancel(c.Request.Context(), c.Param("id"), actorID(c)); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// @Summary Service record statistics
// @Tags service-records
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/service-records/stats [get]
func (h *Handler) RecordStats(c *gin.Context) {
	stats, err := h.Store.ServiceRecordStats(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to compute service stats", err.Error())
		return
	}
	c.JSON(http.StatusOK, stats)
}
