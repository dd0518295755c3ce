package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"strix/models"
	"strix/services/progress"
)

// RemoteStoreFactory builds the account-scoped progress tier.
type RemoteStoreFactory func(email string) progress.Store

// ProgressHandler exposes the two progress tiers. Requests carrying an email
// query parameter address the account's remote slice; all other requests
// address the device-local store. The tiers are never combined in a response.
type ProgressHandler struct {
	Local         progress.Store
	RemoteFactory RemoteStoreFactory
}

func NewProgressHandler(local progress.Store, remoteFactory RemoteStoreFactory) *ProgressHandler {
	return &ProgressHandler{Local: local, RemoteFactory: remoteFactory}
}

func (h *ProgressHandler) storeFor(r *http.Request) progress.Store {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email != "" && h.RemoteFactory != nil {
		return h.RemoteFactory(email)
	}
	return h.Local
}

func progressStatus(err error) int {
	switch {
	case errors.Is(err, progress.ErrInvalidEntry):
		return http.StatusBadRequest
	case errors.Is(err, progress.ErrUserNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// List returns every entry of the selected tier, most recent first.
func (h *ProgressHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.storeFor(r).List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), progressStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

// Get returns the entry matching the identity key in the query string.
func (h *ProgressHandler) Get(w http.ResponseWriter, r *http.Request) {
	key, err := parseProgressKey(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	entry, err := h.storeFor(r).QueryOne(r.Context(), key)
	if err != nil {
		http.Error(w, err.Error(), progressStatus(err))
		return
	}
	if entry == nil {
		http.Error(w, "no progress recorded", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entry)
}

// Upsert writes an entry to the selected tier.
func (h *ProgressHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var entry models.WatchProgressEntry
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&entry); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.storeFor(r).Upsert(r.Context(), entry); err != nil {
		http.Error(w, err.Error(), progressStatus(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Remove deletes the entry matching the identity key in the query string.
func (h *ProgressHandler) Remove(w http.ResponseWriter, r *http.Request) {
	key, err := parseProgressKey(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.storeFor(r).Remove(r.Context(), key); err != nil {
		http.Error(w, err.Error(), progressStatus(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Clear deletes every entry of the selected tier.
func (h *ProgressHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.storeFor(r).Clear(r.Context()); err != nil {
		http.Error(w, err.Error(), progressStatus(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseProgressKey reads an identity key from query parameters.
func parseProgressKey(r *http.Request) (models.ProgressKey, error) {
	q := r.URL.Query()

	mediaType := models.MediaType(strings.TrimSpace(q.Get("mediaType")))
	if !mediaType.Valid() {
		return models.ProgressKey{}, errors.New("mediaType must be movie or tv")
	}

	id, err := strconv.ParseInt(strings.TrimSpace(q.Get("id")), 10, 64)
	if err != nil || id <= 0 {
		return models.ProgressKey{}, errors.New("id must be a positive integer")
	}

	key := models.ProgressKey{MediaType: mediaType, MediaID: id}
	if mediaType == models.MediaTypeTV {
		season, err := strconv.Atoi(strings.TrimSpace(q.Get("season")))
		if err != nil || season <= 0 {
			return models.ProgressKey{}, errors.New("season is required for tv entries")
		}
		episode, err := strconv.Atoi(strings.TrimSpace(q.Get("episode")))
		if err != nil || episode <= 0 {
			return models.ProgressKey{}, errors.New("episode is required for tv entries")
		}
		key.Season = season
		key.Episode = episode
	}
	return key.Normalized(), nil
}
