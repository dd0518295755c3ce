package metadata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"strix/models"
)

var (
	ErrInvalidMediaType = errors.New("media type must be movie or tv")
	ErrInvalidCategory  = errors.New("unknown catalog category")
	ErrQueryRequired    = errors.New("search query is required")
)

// Movie list categories served straight from the catalog provider.
const (
	CategoryPopular    = "popular"
	CategoryTopRated   = "top_rated"
	CategoryNowPlaying = "now_playing"
	CategoryUpcoming   = "upcoming"
)

var movieCategories = map[string]bool{
	CategoryPopular:    true,
	CategoryTopRated:   true,
	CategoryNowPlaying: true,
	CategoryUpcoming:   true,
}

var tvCategories = map[string]bool{
	CategoryPopular:  true,
	CategoryTopRated: true,
}

// Service serves catalog metadata from TMDB with a short in-memory cache so
// repeated rail loads don't hammer the provider.
type Service struct {
	client *tmdbClient
	cache  *memoCache
}

// NewService creates a metadata service. language may be empty for en-US.
func NewService(apiKey, language string, cacheTTL time.Duration) *Service {
	if cacheTTL <= 0 {
		cacheTTL = 15 * time.Minute
	}
	return &Service{
		client: newTMDBClient(apiKey, language, nil),
		cache:  newMemoCache(cacheTTL),
	}
}

// Configured reports whether the catalog provider can be reached.
func (s *Service) Configured() bool {
	return s.client.isConfigured()
}

func pageQuery(page int) url.Values {
	q := url.Values{}
	if page > 1 {
		q.Set("page", fmt.Sprintf("%d", page))
	}
	return q
}

// Trending returns this week's trending titles. mediaType is "all", "movie"
// or "tv".
func (s *Service) Trending(ctx context.Context, mediaType string, page int) (models.TitlePage, error) {
	mediaType = strings.TrimSpace(mediaType)
	switch mediaType {
	case "", "all":
		mediaType = "all"
	case "movie", "tv":
	default:
		return models.TitlePage{}, ErrInvalidMediaType
	}
	return s.titlePage(ctx, fmt.Sprintf("trending/%s/week", mediaType), pageQuery(page))
}

// MovieList returns a standard movie rail: popular, top_rated, now_playing
// or upcoming.
func (s *Service) MovieList(ctx context.Context, category string, page int) (models.TitlePage, error) {
	if !movieCategories[category] {
		return models.TitlePage{}, ErrInvalidCategory
	}
	return s.titlePage(ctx, "movie/"+category, pageQuery(page))
}

// TVList returns a standard series rail: popular or top_rated.
func (s *Service) TVList(ctx context.Context, category string, page int) (models.TitlePage, error) {
	if !tvCategories[category] {
		return models.TitlePage{}, ErrInvalidCategory
	}
	return s.titlePage(ctx, "tv/"+category, pageQuery(page))
}

// DiscoverByGenre returns titles of the given genre, sorted by popularity.
func (s *Service) DiscoverByGenre(ctx context.Context, mediaType models.MediaType, genreID int64, page int) (models.TitlePage, error) {
	if !mediaType.Valid() {
		return models.TitlePage{}, ErrInvalidMediaType
	}
	q := pageQuery(page)
	q.Set("with_genres", fmt.Sprintf("%d", genreID))
	q.Set("sort_by", "popularity.desc")
	return s.titlePage(ctx, "discover/"+string(mediaType), q)
}

// Search queries the catalog. scope is "multi", "movie" or "tv".
func (s *Service) Search(ctx context.Context, scope, query string, page int) (models.TitlePage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return models.TitlePage{}, ErrQueryRequired
	}
	switch scope {
	case "", "multi":
		scope = "multi"
	case "movie", "tv":
	default:
		return models.TitlePage{}, ErrInvalidMediaType
	}

	q := pageQuery(page)
	q.Set("query", query)
	q.Set("include_adult", "false")

	// Search results are not cached; queries have too little reuse.
	var result models.TitlePage
	if err := s.client.get(ctx, "search/"+scope, q, &result); err != nil {
		return models.TitlePage{}, err
	}
	return result, nil
}

// Details returns a title's full detail object with credits, videos and
// similar titles appended in one round trip.
func (s *Service) Details(ctx context.Context, mediaType models.MediaType, id int64) (models.TitleDetails, error) {
	if !mediaType.Valid() {
		return models.TitleDetails{}, ErrInvalidMediaType
	}

	cacheKey := fmt.Sprintf("details:%s:%d", mediaType, id)
	if cached, ok := s.cache.get(cacheKey); ok {
		return cached.(models.TitleDetails), nil
	}

	q := url.Values{}
	q.Set("append_to_response", "credits,videos,similar")

	var details models.TitleDetails
	if err := s.client.get(ctx, fmt.Sprintf("%s/%d", mediaType, id), q, &details); err != nil {
		return models.TitleDetails{}, err
	}
	details.PosterURL = PosterURL(details.PosterPath)
	details.BackdropURL = BackdropURL(details.BackdropPath)
	s.cache.set(cacheKey, details)
	return details, nil
}

// Season returns one season of a series with its episode list.
func (s *Service) Season(ctx context.Context, seriesID int64, seasonNumber int) (models.Season, error) {
	cacheKey := fmt.Sprintf("season:%d:%d", seriesID, seasonNumber)
	if cached, ok := s.cache.get(cacheKey); ok {
		return cached.(models.Season), nil
	}

	var season models.Season
	if err := s.client.get(ctx, fmt.Sprintf("tv/%d/season/%d", seriesID, seasonNumber), nil, &season); err != nil {
		return models.Season{}, err
	}
	s.cache.set(cacheKey, season)
	return season, nil
}

func (s *Service) titlePage(ctx context.Context, apiPath string, query url.Values) (models.TitlePage, error) {
	cacheKey := apiPath + "?" + query.Encode()
	if cached, ok := s.cache.get(cacheKey); ok {
		return cached.(models.TitlePage), nil
	}

	var page models.TitlePage
	if err := s.client.get(ctx, apiPath, query, &page); err != nil {
		return models.TitlePage{}, err
	}
	s.cache.set(cacheKey, page)
	return page, nil
}

// TrailerKey picks the best YouTube video key from a title's video list:
// official trailers first, then any trailer, then teasers, then whatever
// YouTube video is left. Returns "" when nothing usable exists.
func TrailerKey(videos *models.VideoList) string {
	if videos == nil {
		return ""
	}

	var trailer, teaser, fallback string
	for _, v := range videos.Results {
		if !strings.EqualFold(v.Site, "YouTube") || v.Key == "" {
			continue
		}
		switch {
		case v.Type == "Trailer" && v.Official:
			return v.Key
		case v.Type == "Trailer" && trailer == "":
			trailer = v.Key
		case v.Type == "Teaser" && teaser == "":
			teaser = v.Key
		case fallback == "":
			fallback = v.Key
		}
	}
	if trailer != "" {
		return trailer
	}
	if teaser != "" {
		return teaser
	}
	return fallback
}

// memoCache is a small TTL cache for catalog responses.
type memoCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]memoEntry
}

type memoEntry struct {
	value   any
	expires time.Time
}

func newMemoCache(ttl time.Duration) *memoCache {
	return &memoCache{
		ttl:     ttl,
		entries: make(map[string]memoEntry),
	}
}

func (c *memoCache) get(key string) (any, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(entry.expires) {
		return nil, false
	}
	return entry.value, true
}

func (c *memoCache) set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Drop expired entries opportunistically so the map doesn't grow
	// without bound.
	now := time.Now()
	for k, e := range c.entries {
		if now.After(e.expires) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = memoEntry{value: value, expires: now.Add(c.ttl)}
}

// withTransport swaps the underlying HTTP client, for tests.
func (s *Service) withTransport(httpc *http.Client) *Service {
	s.client.httpc = httpc
	s.client.minInterval = 0
	return s
}
