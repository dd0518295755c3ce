package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	defaultTMDBBaseURL = "https://api.themoviedb.org/3"
	tmdbImageBaseURL   = "https://image.tmdb.org/t/p"
	// Optimized image sizes instead of "original" to keep payloads small.
	// Posters render at card size, backdrops at 1080p backgrounds.
	tmdbPosterSize   = "w500"
	tmdbBackdropSize = "w1280"
)

var ErrNotConfigured = errors.New("tmdb api key not configured")

type tmdbClient struct {
	baseURL  string
	apiKey   string
	language string
	httpc    *http.Client

	// Rate limiting
	throttleMu  sync.Mutex
	lastRequest time.Time
	minInterval time.Duration
}

func newTMDBClient(apiKey, language string, httpc *http.Client) *tmdbClient {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	return &tmdbClient{
		baseURL:     defaultTMDBBaseURL,
		apiKey:      strings.TrimSpace(apiKey),
		language:    language,
		httpc:       httpc,
		minInterval: 20 * time.Millisecond, // TMDB has generous rate limits
	}
}

func (c *tmdbClient) isConfigured() bool {
	return c != nil && c.apiKey != ""
}

func (c *tmdbClient) endpoint(apiPath string, query url.Values) (string, error) {
	endpoint, err := url.JoinPath(c.baseURL, apiPath)
	if err != nil {
		return "", err
	}
	if query == nil {
		query = url.Values{}
	}
	query.Set("api_key", c.apiKey)
	if query.Get("language") == "" {
		query.Set("language", normalizeLanguage(c.language))
	}
	return endpoint + "?" + query.Encode(), nil
}

// get performs a rate-limited GET against the given API path and decodes the
// response into v, retrying transient failures with exponential backoff.
func (c *tmdbClient) get(ctx context.Context, apiPath string, query url.Values, v any) error {
	if !c.isConfigured() {
		return ErrNotConfigured
	}

	endpoint, err := c.endpoint(apiPath, query)
	if err != nil {
		return err
	}

	var lastErr error
	backoff := 300 * time.Millisecond

	for attempt := 0; attempt < 3; attempt++ {
		c.throttleMu.Lock()
		since := time.Since(c.lastRequest)
		if since < c.minInterval {
			time.Sleep(c.minInterval - since)
		}
		c.lastRequest = time.Now()
		c.throttleMu.Unlock()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}

		resp, err := c.httpc.Do(req)
		if err != nil {
			lastErr = err
			log.Printf("[tmdb] http error (attempt %d/3): %v", attempt+1, err)
			time.Sleep(backoff)
			backoff *= 2
			continue
		}

		// Retry rate limiting and server errors
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			log.Printf("[tmdb] rate limited or server error (attempt %d/3): status %d", attempt+1, resp.StatusCode)
			lastErr = fmt.Errorf("tmdb request failed: %s", resp.Status)
			time.Sleep(backoff)
			backoff *= 2
			continue
		}

		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return fmt.Errorf("tmdb request failed: %s", resp.Status)
		}

		err = json.NewDecoder(resp.Body).Decode(v)
		resp.Body.Close()
		if err != nil {
			return err
		}
		return nil
	}

	return lastErr
}

func normalizeLanguage(lang string) string {
	lang = strings.TrimSpace(strings.ReplaceAll(lang, "_", "-"))
	if len(lang) == 2 {
		return strings.ToLower(lang) + "-US"
	}
	if len(lang) >= 5 {
		return strings.ToLower(lang[:2]) + "-" + strings.ToUpper(lang[3:])
	}
	return "en-US"
}

// ImageURL builds a full image URL from a TMDB image path, or returns "".
func ImageURL(imagePath, size string) string {
	trimmed := strings.TrimSpace(imagePath)
	if trimmed == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s/%s", tmdbImageBaseURL, size, strings.TrimPrefix(trimmed, "/"))
}

// PosterURL builds a card-sized poster URL, or returns "".
func PosterURL(imagePath string) string {
	return ImageURL(imagePath, tmdbPosterSize)
}

// BackdropURL builds a background-sized backdrop URL, or returns "".
func BackdropURL(imagePath string) string {
	return ImageURL(imagePath, tmdbBackdropSize)
}
