package service

import (
	"context"

	"github.com/maren/photorestore/internal/domain"
	"github.com/maren/photorestore/internal/replicate"
)

// PredictionClient is the slice of the Replicate client used by the service.
type PredictionClient interface {
	CreatePrediction(ctx context.Context, model string, input map[string]any, opts *replicate.CreateOptions) (*replicate.Prediction, error)
	GetPrediction(ctx context.Context, id string) (*replicate.Prediction, error)
}

// PredictionService proxies restoration jobs to the prediction provider.
type PredictionService struct {
	client      PredictionClient
	model       string
	webhookHost string
}

// NewPredictionService creates a new PredictionService. webhookHost, when
// non-empty, is the public base URL the provider should call on completion.
func NewPredictionService(client PredictionClient, model, webhookHost string) *PredictionService {
	return &PredictionService{
		client:      client,
		model:       model,
		webhookHost: webhookHost,
	}
}

// Restore submits an image (base64 or data URL) for restoration and returns
// the provider's initial job state.
func (s *PredictionService) Restore(ctx context.Context, inputImage string) (*replicate.Prediction, error) {
	if inputImage == "" {
		return nil, domain.Invalid("input_image is required")
	}

	var opts *replicate.CreateOptions
	if s.webhookHost != "" {
		opts = &replicate.CreateOptions{
			Webhook:             s.webhookHost + "/api/webhooks/replicate",
			WebhookEventsFilter: []string{"start", "completed"},
		}
	}

	prediction, err := s.client.CreatePrediction(ctx, s.model, map[string]any{"input_image": inputImage}, opts)
	if err != nil {
		return nil, err
	}
	if prediction.Error != "" {
		return nil, domain.Provider(prediction.Error)
	}
	return prediction, nil
}

// Get relays the current state of a prediction.
func (s *PredictionService) Get(ctx context.Context, id string) (*replicate.Prediction, error) {
	if id == "" {
		return nil, domain.Invalid("Prediction ID is required")
	}
	return s.client.GetPrediction(ctx, id)
}
