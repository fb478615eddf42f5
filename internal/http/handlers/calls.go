package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/repairops/backend/internal/models"
)

func (h *Handler) CallsList(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	items, err := h.Store.ListCalls(c.Request.Context(),
		c.Query("technician_id"), models.CallStatus(c.Query("status")), limit, offset)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list calls", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "limit": limit, "offset": offset})
}

func (h *Handler) CallDetails(c *gin.Context) {
	call, err := h.Store.GetCall(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceErrorOrNotFound(c, err)
		return
	}
	c.JSON(http.StatusOK, call)
}

// @Summary Call statistics
// @Tags calls
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/calls/stats [get]
func (h *Handler) CallStats(c *gin.Context) {
	stats, err := h.Store.CallStats(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to compute call stats", err.Error())
		return
	}
	c.JSON(http.StatusOK, stats)
}
