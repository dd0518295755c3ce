package player

import (
	"errors"
	"fmt"
	"strings"

	"strix/models"
)

var (
	ErrInvalidMedia = errors.New("media type and id are required")
)

const defaultBaseURL = "https://vidsrc.cc"

// Service builds embed player URLs for the streaming provider.
type Service struct {
	baseURL string
}

// NewService creates a player service. An empty baseURL uses the default
// provider.
func NewService(baseURL string) *Service {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Service{baseURL: baseURL}
}

// EmbedURL returns the player URL for a title. For series, season and
// episode default to 1 when unset.
func (s *Service) EmbedURL(mediaType models.MediaType, mediaID int64, season, episode int) (string, error) {
	if !mediaType.Valid() || mediaID <= 0 {
		return "", ErrInvalidMedia
	}

	if mediaType == models.MediaTypeMovie {
		return fmt.Sprintf("%s/v2/embed/movie/%d?autoPlay=true", s.baseURL, mediaID), nil
	}

	if season <= 0 {
		season = 1
	}
	if episode <= 0 {
		episode = 1
	}
	return fmt.Sprintf("%s/v2/embed/tv/%d/%d/%d?autoPlay=true", s.baseURL, mediaID, season, episode), nil
}
