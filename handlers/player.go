package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"strix/models"
	"strix/services/player"
)

type playerService interface {
	EmbedURL(mediaType models.MediaType, mediaID int64, season, episode int) (string, error)
}

var _ playerService = (*player.Service)(nil)

// PlayerHandler resolves embed player URLs.
type PlayerHandler struct {
	Service playerService
}

func NewPlayerHandler(service playerService) *PlayerHandler {
	return &PlayerHandler{Service: service}
}

// Embed returns the player URL for a title.
func (h *PlayerHandler) Embed(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	mediaType := models.MediaType(q.Get("mediaType"))
	id, err := strconv.ParseInt(q.Get("id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "id must be a positive integer", http.StatusBadRequest)
		return
	}
	season, _ := strconv.Atoi(q.Get("season"))
	episode, _ := strconv.Atoi(q.Get("episode"))

	url, err := h.Service.EmbedURL(mediaType, id, season, episode)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, player.ErrInvalidMedia) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"url": url})
}
