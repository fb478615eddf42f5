package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/repairops/backend/internal/ringcentral"
	"github.com/repairops/backend/internal/service"
)

// @Summary RingCentral telephony webhook
// @Description Receives incoming-call and call-status events
// @Tags webhooks
// @Accept json
// @Produce json
// @Param Validation-Token header string false "Subscription validation token"
// @Param X-Ringcentral-Signature header string false "HMAC-SHA256 hex signature"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /webhooks/ringcentral [post]
func (h *Handler) RingCentralWebhook(c *gin.Context) {
	// Subscription validation handshake: echo the token back verbatim,
	// skip everything else.
	if token := c.GetHeader("Validation-Token"); token != "" {
		h.Metrics.WebhookEvents.WithLabelValues("validation").Inc()
		c.Header("Validation-Token", token)
		c.String(http.StatusOK, token)
		return
	}

	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Failed to read body", nil)
		return
	}

	if h.Env == "production" {
		sig := c.GetHeader("X-Ringcentral-Signature")
		if !ringcentral.VerifySignature(sig, raw, h.WebhookSecret) {
			// Unauthenticated input: rejected without touching data and
			// without an audit entry.
			h.Metrics.WebhookEvents.WithLabelValues("rejected").Inc()
			h.Logger.Warn().Msg("invalid webhook signature")
			writeError(c, http.StatusBadRequest, "SIGNATURE_INVALID", "Invalid webhook signature", nil)
			return
		}
	}

	payload, err := ringcentral.Parse(raw)
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON payload", err.Error())
		return
	}

	h.Logger.Info().Str("event", payload.Event).Str("uuid", payload.UUID).Msg("received ringcentral event")

	party, hasParty := payload.FirstParty()

	switch payload.Classify() {
	case ringcentral.EventIncomingCall:
		// Classify only yields an incoming call when a party exists.
		h.Metrics.WebhookEvents.WithLabelValues("incoming_call").Inc()
		callerNumber := party.From.PhoneNumber
		if callerNumber == "" {
			callerNumber = "Unknown"
		}
		result, err := h.Router.RouteIncomingCall(c.Request.Context(), payload.ExternalID(), callerNumber, party.From.Name)
		if err != nil {
			if errors.Is(err, service.ErrInvalidPayload) {
				writeError(c, http.StatusBadRequest, "INVALID_PAYLOAD", err.Error(), nil)
				return
			}
			h.Logger.Error().Err(err).Msg("call routing failed")
			writeError(c, http.StatusInternalServerError, "ROUTING_ERROR", "Call routing failed", err.Error())
			return
		}
		c.JSON(http.StatusOK, result)

	case ringcentral.EventStatusUpdate:
		h.Metrics.WebhookEvents.WithLabelValues("status_update").Inc()
		if !hasParty {
			writeError(c, http.StatusBadRequest, "INVALID_PAYLOAD", service.ErrInvalidPayload.Error(), nil)
			return
		}
		if err := h.Router.ApplyStatusEvent(c.Request.Context(), payload.ExternalID(), party.Status.Code, party.RecordingID()); err != nil {
			h.Logger.Error().Err(err).Msg("status update failed")
			writeError(c, http.StatusInternalServerError, "STATUS_UPDATE_ERROR", "Status update failed", err.Error())
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})

	default:
		// Unrecognized event types are acknowledged and dropped.
		h.Metrics.WebhookEvents.WithLabelValues("ignored").Inc()
		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}
