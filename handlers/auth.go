package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"strix/models"
	"strix/services/docstore"
	"strix/services/users"
)

type userService interface {
	Register(ctx context.Context, email, username, password string) (models.User, error)
	Login(ctx context.Context, email, password string) (models.User, error)
}

var _ userService = (*users.Service)(nil)

// AuthHandler exposes account registration and login.
type AuthHandler struct {
	Service userService
}

func NewAuthHandler(service userService) *AuthHandler {
	return &AuthHandler{Service: service}
}

func authStatus(err error) int {
	switch {
	case errors.Is(err, users.ErrEmailRequired),
		errors.Is(err, users.ErrUsernameRequired),
		errors.Is(err, users.ErrPasswordRequired):
		return http.StatusBadRequest
	case errors.Is(err, users.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, users.ErrUnknownEmail),
		errors.Is(err, users.ErrWrongPassword):
		return http.StatusUnauthorized
	case errors.Is(err, docstore.ErrReplaceFailed),
		errors.Is(err, docstore.ErrNotConfigured):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates an account.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload registerRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.Service.Register(r.Context(), payload.Email, payload.Username, payload.Password)
	if err != nil {
		http.Error(w, err.Error(), authStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials and returns the account.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.Service.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		http.Error(w, err.Error(), authStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}
