package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/polinaozhigova/eqmon-be/internal/services"
	"github.com/rs/zerolog/log"
)

// UserHandler handles HTTP requests for user management.
type UserHandler struct {
	service services.UserServiceProvider
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider) *UserHandler {
	return &UserHandler{service: service}
}

// CreatePayload defines the structure for user creation requests.
type CreatePayload struct {
	Email string `json:"email"`
}

// Create handles explicit user registration. Unlike the upload flow, a
// duplicate email here is a client error.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload CreatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.service.CreateUser(payload.Email)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, services.ErrConflict):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			log.Error().Err(err).Str("email", payload.Email).Msg("Failed to create user")
			http.Error(w, "Failed to create user", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "user created successfully",
		"userId":  user.ID,
	})
}
