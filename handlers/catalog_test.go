package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"strix/models"
	"strix/services/metadata"
)

// fakeCatalog serves canned pages for handler tests.
type fakeCatalog struct {
	page    models.TitlePage
	details models.TitleDetails
	season  models.Season
	err     error

	lastCategory string
	lastScope    string
	lastQuery    string
	lastGenre    int64
}

func (f *fakeCatalog) Trending(ctx context.Context, mediaType string, page int) (models.TitlePage, error) {
	return f.page, f.err
}

func (f *fakeCatalog) MovieList(ctx context.Context, category string, page int) (models.TitlePage, error) {
	f.lastCategory = category
	return f.page, f.err
}

func (f *fakeCatalog) TVList(ctx context.Context, category string, page int) (models.TitlePage, error) {
	f.lastCategory = category
	return f.page, f.err
}

func (f *fakeCatalog) DiscoverByGenre(ctx context.Context, mediaType models.MediaType, genreID int64, page int) (models.TitlePage, error) {
	f.lastGenre = genreID
	return f.page, f.err
}

func (f *fakeCatalog) Search(ctx context.Context, scope, query string, page int) (models.TitlePage, error) {
	f.lastScope = scope
	f.lastQuery = query
	return f.page, f.err
}

func (f *fakeCatalog) Details(ctx context.Context, mediaType models.MediaType, id int64) (models.TitleDetails, error) {
	return f.details, f.err
}

func (f *fakeCatalog) Season(ctx context.Context, seriesID int64, seasonNumber int) (models.Season, error) {
	return f.season, f.err
}

func (f *fakeCatalog) Genres(mediaType models.MediaType) ([]models.Genre, error) {
	if !mediaType.Valid() {
		return nil, metadata.ErrInvalidMediaType
	}
	return []models.Genre{{ID: 18, Name: "Drama"}}, nil
}

func catalogRouter(handler *CatalogHandler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/catalog/trending/{mediaType}", handler.Trending).Methods(http.MethodGet)
	r.HandleFunc("/api/catalog/movies/{category}", handler.MovieList).Methods(http.MethodGet)
	r.HandleFunc("/api/catalog/tv/{id:[0-9]+}/season/{seasonNumber:[0-9]+}", handler.Season).Methods(http.MethodGet)
	r.HandleFunc("/api/catalog/tv/{category}", handler.TVList).Methods(http.MethodGet)
	r.HandleFunc("/api/catalog/discover/{mediaType}", handler.Discover).Methods(http.MethodGet)
	r.HandleFunc("/api/catalog/{mediaType}/{id:[0-9]+}", handler.Details).Methods(http.MethodGet)
	r.HandleFunc("/api/search", handler.Search).Methods(http.MethodGet)
	r.HandleFunc("/api/genres", handler.Genres).Methods(http.MethodGet)
	return r
}

func TestCatalogMovieList(t *testing.T) {
	catalog := &fakeCatalog{page: models.TitlePage{Page: 1, Results: []models.Title{{ID: 603, Title: "The Matrix"}}}}
	router := catalogRouter(NewCatalogHandler(catalog))

	req := httptest.NewRequest(http.MethodGet, "/api/catalog/movies/popular", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if catalog.lastCategory != "popular" {
		t.Fatalf("expected category forwarded, got %q", catalog.lastCategory)
	}
}

func TestCatalogBadCategoryIs400(t *testing.T) {
	catalog := &fakeCatalog{err: metadata.ErrInvalidCategory}
	router := catalogRouter(NewCatalogHandler(catalog))

	req := httptest.NewRequest(http.MethodGet, "/api/catalog/movies/bestest", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCatalogDetailsIncludesTrailerKey(t *testing.T) {
	catalog := &fakeCatalog{details: models.TitleDetails{
		Title: models.Title{ID: 603, Title: "The Matrix"},
		Videos: &models.VideoList{Results: []models.Video{
			{Key: "abc123", Site: "YouTube", Type: "Trailer", Official: true},
		}},
	}}
	router := catalogRouter(NewCatalogHandler(catalog))

	req := httptest.NewRequest(http.MethodGet, "/api/catalog/movie/603", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		ID         int64  `json:"id"`
		TrailerKey string `json:"trailerKey"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.TrailerKey != "abc123" {
		t.Fatalf("expected trailer key in response, got %q", resp.TrailerKey)
	}
}

func TestCatalogSeasonRouteWinsOverCategory(t *testing.T) {
	catalog := &fakeCatalog{season: models.Season{SeasonNumber: 2, Episodes: []models.Episode{{EpisodeNumber: 1}}}}
	router := catalogRouter(NewCatalogHandler(catalog))

	req := httptest.NewRequest(http.MethodGet, "/api/catalog/tv/1399/season/2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var season models.Season
	if err := json.NewDecoder(rec.Body).Decode(&season); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if season.SeasonNumber != 2 {
		t.Fatalf("unexpected season: %+v", season)
	}
}

func TestCatalogDiscoverRequiresGenre(t *testing.T) {
	router := catalogRouter(NewCatalogHandler(&fakeCatalog{}))

	req := httptest.NewRequest(http.MethodGet, "/api/catalog/discover/movie", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without genre, got %d", rec.Code)
	}
}

func TestCatalogGenres(t *testing.T) {
	router := catalogRouter(NewCatalogHandler(&fakeCatalog{}))

	req := httptest.NewRequest(http.MethodGet, "/api/genres?mediaType=tv", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Genres []models.Genre `json:"genres"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Genres) == 0 {
		t.Fatal("expected genres in response")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/genres?mediaType=book", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad media type, got %d", rec.Code)
	}
}

func TestCatalogSearchForwardsQuery(t *testing.T) {
	catalog := &fakeCatalog{}
	router := catalogRouter(NewCatalogHandler(catalog))

	req := httptest.NewRequest(http.MethodGet, "/api/search?scope=movie&query=matrix", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if catalog.lastScope != "movie" || catalog.lastQuery != "matrix" {
		t.Fatalf("expected query forwarded, got scope=%q query=%q", catalog.lastScope, catalog.lastQuery)
	}
}
