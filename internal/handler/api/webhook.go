package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	resdto "childcare-booking/internal/handler/dto/response"
	"childcare-booking/internal/handler/httperr"
	"childcare-booking/internal/usecase"

	"github.com/gin-gonic/gin"
)

type WebhookHandler struct {
	reconcileUseCase usecase.ReconcileUseCase
}

func NewWebhookHandler(reconcileUseCase usecase.ReconcileUseCase) *WebhookHandler {
	return &WebhookHandler{
		reconcileUseCase: reconcileUseCase,
	}
}

type webhookBody struct {
	Type   string `json:"type"`
	Action string `json:"action"`
	Data   struct {
		ID string `json:"id"`
	} `json:"data"`
}

// @Summary Provider webhook
// @Description Receive a payment notification from the provider
// @Tags payments
// @Accept json
// @Produce json
// @Success 200 {object} resdto.ReconcileResponse
// @Failure 500 {object} httperr.Response
// @Router /payments/webhook [post]
//
// The provider retries on non-2xx, so every terminal outcome answers 200.
// Only a genuinely retryable situation (payment not visible yet, storage
// down) returns an error status.
func (h *WebhookHandler) Receive(c *gin.Context) {
	in := h.decode(c)
	if in.Topic == "" || (in.DataID == "" && in.OrderID == "") {
		slog.Warn("webhook without usable identifiers", "topic", in.Topic)
		c.JSON(http.StatusOK, gin.H{"outcome": "ignored"})
		return
	}

	result, err := h.reconcileUseCase.HandleWebhook(c.Request.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrPaymentNotReady):
			c.JSON(http.StatusAccepted, gin.H{"outcome": "not_ready"})
		case errors.Is(err, usecase.ErrReservationNotFound),
			errors.Is(err, usecase.ErrIncompleteReservation):
			// Nothing a provider retry can fix; acknowledge and log.
			slog.Warn("webhook acknowledged without effect", "error", err.Error())
			c.JSON(http.StatusOK, gin.H{"outcome": "ignored", "reason": err.Error()})
		case errors.Is(err, usecase.ErrNoCapacity):
			// Overbooking detected: terminal for the provider, alert-worthy
			// for operations.
			slog.Error("capacity exceeded while reconciling paid reservation", "error", err.Error())
			c.JSON(http.StatusOK, gin.H{"outcome": "error", "reason": "slot capacity exceeded"})
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error")
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromReconcileResult(result))
}

// @Summary Webhook ping
// @Description Endpoint liveness probe used when registering the webhook URL
// @Tags payments
// @Produce json
// @Success 200 {object} map[string]string
// @Router /payments/webhook [get]
func (h *WebhookHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// decode merges the two notification shapes the provider sends: IPN-style
// query parameters and the JSON body of the webhooks API. The body is
// decoded leniently since notifications carry fields we never model.
func (h *WebhookHandler) decode(c *gin.Context) usecase.WebhookInput {
	in := usecase.WebhookInput{
		Topic:  firstQuery(c, "topic", "type"),
		DataID: firstQuery(c, "data.id", "id"),
	}

	if raw, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20)); err == nil && len(raw) > 0 {
		var body webhookBody
		if err := json.Unmarshal(raw, &body); err == nil {
			if in.Topic == "" {
				in.Topic = body.Type
			}
			if in.DataID == "" {
				in.DataID = body.Data.ID
			}
		}
	}

	if in.Topic == "merchant_order" || in.Topic == "topic_merchant_order_wh" {
		in.OrderID = in.DataID
	}
	return in
}

func firstQuery(c *gin.Context, keys ...string) string {
	for _, k := range keys {
		if v := c.Query(k); v != "" {
			return v
		}
	}
	return ""
}
