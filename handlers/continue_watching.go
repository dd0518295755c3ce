package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"strix/services/continuewatching"
)

// ContinueWatchingHandler serves the continue-watching rail from the active
// progress tier.
type ContinueWatchingHandler struct {
	Selector *continuewatching.Selector
}

func NewContinueWatchingHandler(selector *continuewatching.Selector) *ContinueWatchingHandler {
	return &ContinueWatchingHandler{Selector: selector}
}

// List returns the in-progress entries of the active tier along with which
// tier served them.
func (h *ContinueWatchingHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Selector.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"source":  h.Selector.ActiveSource(),
		"entries": entries,
	})
}

// SetUser switches the rail to an account's remote tier.
func (h *ContinueWatchingHandler) SetUser(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(payload.Email) == "" {
		http.Error(w, "email is required", http.StatusBadRequest)
		return
	}

	h.Selector.SetUser(strings.TrimSpace(payload.Email))
	w.WriteHeader(http.StatusNoContent)
}

// ClearUser switches the rail back to the local tier.
func (h *ContinueWatchingHandler) ClearUser(w http.ResponseWriter, r *http.Request) {
	h.Selector.ClearUser()
	w.WriteHeader(http.StatusNoContent)
}

// Remove deletes an entry from the active tier.
func (h *ContinueWatchingHandler) Remove(w http.ResponseWriter, r *http.Request) {
	key, err := parseProgressKey(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.Selector.Remove(r.Context(), key); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
