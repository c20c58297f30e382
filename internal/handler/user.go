package handler

import (
	"encoding/json"
	"net/http"

	"github.com/maren/photorestore/internal/domain"
	"github.com/maren/photorestore/internal/service"
)

// UserHandler handles account endpoints.
type UserHandler struct {
	users    *service.UserService
	validate *Validator
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *service.UserService, validate *Validator) *UserHandler {
	return &UserHandler{users: users, validate: validate}
}

type signInRequest struct {
	FirebaseUID string `json:"firebaseUid" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Name        string `json:"name"`
}

// SignIn upserts a user record keyed on the Firebase UID and reports whether
// it was newly created.
func (h *UserHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var body signInRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		WriteError(w, domain.Invalid("Invalid request body"))
		return
	}
	if err := h.validate.Struct(body); err != nil {
		WriteError(w, err)
		return
	}

	user, isNew, err := h.users.SignIn(r.Context(), body.FirebaseUID, body.Email, body.Name)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"user":      user,
		"isNewUser": isNew,
	})
}

// Get fetches a user by Firebase UID.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	firebaseUID := r.URL.Query().Get("firebaseUid")
	if firebaseUID == "" {
		WriteError(w, domain.Invalid("Firebase UID is required"))
		return
	}

	user, err := h.users.Get(r.Context(), firebaseUID)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"user": user})
}
