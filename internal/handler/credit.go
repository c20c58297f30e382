package handler

import (
	"encoding/json"
	"net/http"

	"github.com/maren/photorestore/internal/domain"
	"github.com/maren/photorestore/internal/service"
)

// CreditHandler handles the package catalog and credit mutations.
type CreditHandler struct {
	credits  *service.CreditService
	validate *Validator
}

// NewCreditHandler creates a new CreditHandler.
func NewCreditHandler(credits *service.CreditService, validate *Validator) *CreditHandler {
	return &CreditHandler{credits: credits, validate: validate}
}

// Packages returns the static package catalog.
func (h *CreditHandler) Packages(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{"packages": h.credits.Catalog()})
}

type purchaseRequest struct {
	FirebaseUID string `json:"firebaseUid" validate:"required"`
	PackageName string `json:"packageName" validate:"required"`
}

// Purchase adds a package's credits to the user's balance.
func (h *CreditHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	var body purchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		WriteError(w, domain.Invalid("Invalid request body"))
		return
	}
	if err := h.validate.Struct(body); err != nil {
		WriteError(w, err)
		return
	}

	user, err := h.credits.Purchase(r.Context(), body.FirebaseUID, body.PackageName)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"user": user})
}

type spendRequest struct {
	FirebaseUID string `json:"firebaseUid" validate:"required"`
	Amount      int    `json:"amount" validate:"required,gt=0"`
}

// Spend deducts credits from the user's balance. The deduction is refused
// outright when the balance does not cover it.
func (h *CreditHandler) Spend(w http.ResponseWriter, r *http.Request) {
	var body spendRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		WriteError(w, domain.Invalid("Invalid request body"))
		return
	}
	if err := h.validate.Struct(body); err != nil {
		WriteError(w, err)
		return
	}

	user, err := h.credits.Spend(r.Context(), body.FirebaseUID, body.Amount)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"user":      user,
		"deducted":  body.Amount,
		"remaining": user.Credits,
	})
}
