package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"strix/models"
	"strix/services/session"
)

type sessionManager interface {
	Open(ctx context.Context, params session.OpenParams) (string, error)
	SetVisible(id string, visible bool) error
	MarkWatched(ctx context.Context, id string) error
	Close(ctx context.Context, id string) error
}

var _ sessionManager = (*session.Manager)(nil)

// SessionsHandler exposes playback session tracking.
type SessionsHandler struct {
	Manager sessionManager
}

func NewSessionsHandler(manager sessionManager) *SessionsHandler {
	return &SessionsHandler{Manager: manager}
}

func sessionStatus(err error) int {
	switch {
	case errors.Is(err, session.ErrInvalidSession):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

type openSessionRequest struct {
	models.WatchProgressEntry
	InitialElapsed float64 `json:"initialElapsed"`
	Email          string  `json:"email"`
}

// Open starts a playback session and returns its ID. The session loop is
// detached from the request context so it outlives this call.
func (h *SessionsHandler) Open(w http.ResponseWriter, r *http.Request) {
	var payload openSessionRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id, err := h.Manager.Open(context.Background(), session.OpenParams{
		Entry:          payload.WatchProgressEntry,
		InitialElapsed: payload.InitialElapsed,
		Email:          strings.TrimSpace(payload.Email),
	})
	if err != nil {
		http.Error(w, err.Error(), sessionStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"sessionId": id})
}

// SetVisibility records whether the player tab is visible.
func (h *SessionsHandler) SetVisibility(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["sessionID"]

	var payload struct {
		Visible *bool `json:"visible"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if payload.Visible == nil {
		http.Error(w, "visible is required", http.StatusBadRequest)
		return
	}

	if err := h.Manager.SetVisible(id, *payload.Visible); err != nil {
		http.Error(w, err.Error(), sessionStatus(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MarkWatched marks the session's title as fully watched.
func (h *SessionsHandler) MarkWatched(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["sessionID"]

	if err := h.Manager.MarkWatched(r.Context(), id); err != nil {
		http.Error(w, err.Error(), sessionStatus(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Close ends the session and commits its final position.
func (h *SessionsHandler) Close(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["sessionID"]

	if err := h.Manager.Close(r.Context(), id); err != nil {
		http.Error(w, err.Error(), sessionStatus(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
