package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"strix/models"
	"strix/services/metadata"
)

type catalogService interface {
	Trending(ctx context.Context, mediaType string, page int) (models.TitlePage, error)
	MovieList(ctx context.Context, category string, page int) (models.TitlePage, error)
	TVList(ctx context.Context, category string, page int) (models.TitlePage, error)
	DiscoverByGenre(ctx context.Context, mediaType models.MediaType, genreID int64, page int) (models.TitlePage, error)
	Search(ctx context.Context, scope, query string, page int) (models.TitlePage, error)
	Details(ctx context.Context, mediaType models.MediaType, id int64) (models.TitleDetails, error)
	Season(ctx context.Context, seriesID int64, seasonNumber int) (models.Season, error)
	Genres(mediaType models.MediaType) ([]models.Genre, error)
}

var _ catalogService = (*metadata.Service)(nil)

// CatalogHandler exposes the browse and search surface.
type CatalogHandler struct {
	Service catalogService
}

func NewCatalogHandler(service catalogService) *CatalogHandler {
	return &CatalogHandler{Service: service}
}

func catalogStatus(err error) int {
	switch {
	case errors.Is(err, metadata.ErrInvalidMediaType),
		errors.Is(err, metadata.ErrInvalidCategory),
		errors.Is(err, metadata.ErrQueryRequired):
		return http.StatusBadRequest
	case errors.Is(err, metadata.ErrNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func writePage(w http.ResponseWriter, page models.TitlePage, err error) {
	if err != nil {
		http.Error(w, err.Error(), catalogStatus(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(page)
}

// Trending returns this week's trending titles.
func (h *CatalogHandler) Trending(w http.ResponseWriter, r *http.Request) {
	mediaType := mux.Vars(r)["mediaType"]
	page, err := h.Service.Trending(r.Context(), mediaType, pageParam(r))
	writePage(w, page, err)
}

// MovieList serves a standard movie rail.
func (h *CatalogHandler) MovieList(w http.ResponseWriter, r *http.Request) {
	category := mux.Vars(r)["category"]
	page, err := h.Service.MovieList(r.Context(), category, pageParam(r))
	writePage(w, page, err)
}

// TVList serves a standard series rail.
func (h *CatalogHandler) TVList(w http.ResponseWriter, r *http.Request) {
	category := mux.Vars(r)["category"]
	page, err := h.Service.TVList(r.Context(), category, pageParam(r))
	writePage(w, page, err)
}

// Discover serves a genre rail.
func (h *CatalogHandler) Discover(w http.ResponseWriter, r *http.Request) {
	mediaType := models.MediaType(mux.Vars(r)["mediaType"])

	genreID, err := strconv.ParseInt(r.URL.Query().Get("genre"), 10, 64)
	if err != nil || genreID <= 0 {
		http.Error(w, "genre must be a positive integer", http.StatusBadRequest)
		return
	}

	page, svcErr := h.Service.DiscoverByGenre(r.Context(), mediaType, genreID, pageParam(r))
	writePage(w, page, svcErr)
}

// Genres lists the discover menu genres. mediaType defaults to movie.
func (h *CatalogHandler) Genres(w http.ResponseWriter, r *http.Request) {
	mediaType := models.MediaType(strings.TrimSpace(r.URL.Query().Get("mediaType")))
	if mediaType == "" {
		mediaType = models.MediaTypeMovie
	}

	genres, err := h.Service.Genres(mediaType)
	if err != nil {
		http.Error(w, err.Error(), catalogStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][]models.Genre{"genres": genres})
}

// Search queries the catalog.
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.Service.Search(r.Context(), strings.TrimSpace(q.Get("scope")), q.Get("query"), pageParam(r))
	writePage(w, page, err)
}

type detailsResponse struct {
	models.TitleDetails
	TrailerKey string `json:"trailerKey,omitempty"`
}

// Details returns a title's full detail object plus the best trailer key.
func (h *CatalogHandler) Details(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	mediaType := models.MediaType(vars["mediaType"])

	id, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "id must be a positive integer", http.StatusBadRequest)
		return
	}

	details, err := h.Service.Details(r.Context(), mediaType, id)
	if err != nil {
		http.Error(w, err.Error(), catalogStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(detailsResponse{
		TitleDetails: details,
		TrailerKey:   metadata.TrailerKey(details.Videos),
	})
}

// Season returns one season of a series with its episodes.
func (h *CatalogHandler) Season(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	id, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "id must be a positive integer", http.StatusBadRequest)
		return
	}
	seasonNumber, err := strconv.Atoi(vars["seasonNumber"])
	if err != nil || seasonNumber < 0 {
		http.Error(w, "season number must be a non-negative integer", http.StatusBadRequest)
		return
	}

	season, err := h.Service.Season(r.Context(), id, seasonNumber)
	if err != nil {
		http.Error(w, err.Error(), catalogStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(season)
}
