package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/repairops/backend/internal/db"
	"github.com/repairops/backend/internal/http/middleware"
	"github.com/repairops/backend/internal/metrics"
	"github.com/repairops/backend/internal/service"
)

type Handler struct {
	Store         *db.Store
	Router        *service.Router
	Quota         *service.Quota
	Records       *service.Records
	Technicians   *service.Technicians
	Schedules     *service.Schedules
	Metrics       *metrics.Metrics
	Validator     *validator.Validate
	Logger        zerolog.Logger
	Env           string
	WebhookSecret string
}

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// writeServiceError maps the service error taxonomy onto HTTP responses.
// Anything outside the taxonomy is a storage-level failure.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Resource not found", nil)
	case errors.Is(err, service.ErrInvalidTransition):
		writeError(c, http.StatusBadRequest, "INVALID_STATE", err.Error(), nil)
	case errors.Is(err, service.ErrAlreadyLocked), errors.Is(err, service.ErrNotLocked):
		writeError(c, http.StatusBadRequest, "INVALID_STATE", err.Error(), nil)
	case errors.Is(err, service.ErrScheduleExists):
		writeError(c, http.StatusBadRequest, "ALREADY_EXISTS", err.Error(), nil)
	case errors.Is(err, service.ErrInvalidTimeFormat), errors.Is(err, service.ErrInvalidTimeRange):
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
	default:
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Operation failed", err.Error())
	}
}

// writeServiceErrorOrNotFound is for handlers hitting the store directly,
// where a miss surfaces as pgx.ErrNoRows rather than a service sentinel.
func writeServiceErrorOrNotFound(c *gin.Context, err error) {
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Resource not found", nil)
		return
	}
	writeServiceError(c, err)
}

func actorID(c *gin.Context) string {
	return c.GetString(middleware.ActorIDKey)
}
