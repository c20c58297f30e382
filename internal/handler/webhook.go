package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/maren/photorestore/internal/domain"
	"github.com/maren/photorestore/internal/paddle"
	"github.com/maren/photorestore/internal/service"
)

// WebhookHandler receives payment notifications from Paddle.
type WebhookHandler struct {
	payments *service.PaymentService
	secret   string
}

// NewWebhookHandler creates a new WebhookHandler. An empty secret disables
// signature verification.
func NewWebhookHandler(payments *service.PaymentService, secret string) *WebhookHandler {
	return &WebhookHandler{payments: payments, secret: secret}
}

// HandlePaddle processes a Paddle webhook delivery. Signature verification
// happens against the raw body, before any parsing.
func (h *WebhookHandler) HandlePaddle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		WriteError(w, domain.Invalid("Failed to read request body"))
		return
	}

	if h.secret != "" {
		if err := paddle.VerifySignature(r.Header.Get("Paddle-Signature"), body, h.secret); err != nil {
			WriteError(w, &domain.Error{Err: domain.ErrUnauthorized, Message: "Invalid webhook signature"})
			return
		}
	}

	var event paddle.Event
	if err := json.Unmarshal(body, &event); err != nil {
		WriteError(w, domain.Invalid("Invalid JSON in request body"))
		return
	}

	result, err := h.payments.HandleEvent(r.Context(), event)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// Alive is a liveness probe for the webhook path.
func (h *WebhookHandler) Alive(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"message": "Webhook endpoint is alive"})
}
