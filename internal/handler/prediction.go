package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/maren/photorestore/internal/domain"
	"github.com/maren/photorestore/internal/service"
)

// PredictionHandler proxies restoration jobs to the prediction provider.
type PredictionHandler struct {
	predictions *service.PredictionService
}

// NewPredictionHandler creates a new PredictionHandler.
func NewPredictionHandler(predictions *service.PredictionService) *PredictionHandler {
	return &PredictionHandler{predictions: predictions}
}

type createPredictionRequest struct {
	InputImage string `json:"input_image"`
}

// Create submits an image for restoration and returns the provider's job
// payload with status 201.
func (h *PredictionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body createPredictionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		WriteError(w, domain.Invalid("Invalid JSON in request body"))
		return
	}

	prediction, err := h.predictions.Restore(r.Context(), body.InputImage)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, prediction)
}

// Get relays the current state of a prediction. Clients poll this until the
// status is terminal.
func (h *PredictionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	prediction, err := h.predictions.Get(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, prediction)
}

// ReplicateWebhook acknowledges prediction progress callbacks. The job state
// of record lives with the provider, so the callback is only logged.
func (h *PredictionHandler) ReplicateWebhook(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, domain.Invalid("Invalid JSON in request body"))
		return
	}

	slog.Info("replicate webhook received", "prediction_id", payload.ID, "status", payload.Status)
	WriteJSON(w, http.StatusOK, map[string]string{"message": "ok"})
}
