package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/maren/photorestore/internal/domain"
	"github.com/maren/photorestore/internal/paddle"
)

// PaymentStore applies a payment transaction to the credit ledger. The
// transaction ID keys a dedup record so a replayed delivery is a no-op.
type PaymentStore interface {
	Apply(ctx context.Context, transactionID, firebaseUID string, credits int) (*domain.User, bool, error)
}

// PaymentService turns completed payment webhooks into credit grants.
type PaymentService struct {
	store PaymentStore
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(store PaymentStore) *PaymentService {
	return &PaymentService{store: store}
}

// WebhookResult is the acknowledgement body returned to the provider.
type WebhookResult struct {
	Message      string `json:"message"`
	CreditsAdded int    `json:"creditsAdded,omitempty"`
	NewBalance   int    `json:"newBalance,omitempty"`
}

// HandleEvent processes a Paddle webhook event. Only transaction.completed
// events mutate state; everything else is acknowledged and ignored. The user
// must be identified by a Firebase UID in the checkout's custom data; events
// without one are rejected rather than guessed at.
func (s *PaymentService) HandleEvent(ctx context.Context, event paddle.Event) (*WebhookResult, error) {
	if event.EventType != paddle.EventTransactionCompleted {
		slog.Info("ignoring paddle event", "event_type", event.EventType)
		return &WebhookResult{Message: "Event type not handled"}, nil
	}

	custom := event.Data.CustomData
	if custom == nil || custom.PackageName == "" {
		return nil, domain.Invalid("No package name found")
	}

	pkg, ok := domain.PackageByName(custom.PackageName)
	if !ok {
		return nil, domain.Invalid("Invalid package")
	}

	if custom.FirebaseUID == "" {
		return nil, domain.Invalid("No Firebase UID found")
	}
	if event.Data.ID == "" {
		return nil, domain.Invalid("No transaction ID found")
	}

	user, applied, err := s.store.Apply(ctx, event.Data.ID, custom.FirebaseUID, pkg.Credits)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound("User not found")
		}
		return nil, fmt.Errorf("apply transaction %s: %w", event.Data.ID, err)
	}
	if !applied {
		slog.Info("duplicate paddle transaction ignored", "transaction_id", event.Data.ID)
		return &WebhookResult{Message: "Transaction already processed"}, nil
	}

	slog.Info("credits added",
		"transaction_id", event.Data.ID,
		"package", custom.PackageName,
		"credits_added", pkg.Credits,
		"new_balance", user.Credits,
		"user_email", user.Email,
	)

	return &WebhookResult{
		Message:      "Credits added successfully",
		CreditsAdded: pkg.Credits,
		NewBalance:   user.Credits,
	}, nil
}
