package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"strix/handlers"
)

// corsMiddleware handles CORS for API routes
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func Register(
	r *mux.Router,
	authHandler *handlers.AuthHandler,
	catalogHandler *handlers.CatalogHandler,
	playerHandler *handlers.PlayerHandler,
	progressHandler *handlers.ProgressHandler,
	continueWatchingHandler *handlers.ContinueWatchingHandler,
	sessionsHandler *handlers.SessionsHandler,
) {
	api := r.PathPrefix("/api").Subrouter()
	api.Use(corsMiddleware)

	// Auth
	api.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost, http.MethodOptions)

	// Catalog browse and search
	api.HandleFunc("/catalog/trending/{mediaType}", catalogHandler.Trending).Methods(http.MethodGet)
	api.HandleFunc("/catalog/movies/{category}", catalogHandler.MovieList).Methods(http.MethodGet)
	api.HandleFunc("/catalog/tv/{id:[0-9]+}/season/{seasonNumber:[0-9]+}", catalogHandler.Season).Methods(http.MethodGet)
	api.HandleFunc("/catalog/tv/{category}", catalogHandler.TVList).Methods(http.MethodGet)
	api.HandleFunc("/catalog/discover/{mediaType}", catalogHandler.Discover).Methods(http.MethodGet)
	api.HandleFunc("/catalog/{mediaType}/{id:[0-9]+}", catalogHandler.Details).Methods(http.MethodGet)
	api.HandleFunc("/search", catalogHandler.Search).Methods(http.MethodGet)
	api.HandleFunc("/genres", catalogHandler.Genres).Methods(http.MethodGet)

	// Player
	api.HandleFunc("/player/embed", playerHandler.Embed).Methods(http.MethodGet)

	// Watch progress
	api.HandleFunc("/progress", progressHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/progress", progressHandler.Upsert).Methods(http.MethodPut, http.MethodOptions)
	api.HandleFunc("/progress", progressHandler.Remove).Methods(http.MethodDelete)
	api.HandleFunc("/progress/entry", progressHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/progress/all", progressHandler.Clear).Methods(http.MethodDelete, http.MethodOptions)

	// Continue watching rail
	api.HandleFunc("/continue-watching", continueWatchingHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/continue-watching/user", continueWatchingHandler.SetUser).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/continue-watching/user", continueWatchingHandler.ClearUser).Methods(http.MethodDelete)
	api.HandleFunc("/continue-watching/entry", continueWatchingHandler.Remove).Methods(http.MethodDelete, http.MethodOptions)

	// Playback sessions
	api.HandleFunc("/sessions", sessionsHandler.Open).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/sessions/{sessionID}/visibility", sessionsHandler.SetVisibility).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/sessions/{sessionID}/watched", sessionsHandler.MarkWatched).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/sessions/{sessionID}", sessionsHandler.Close).Methods(http.MethodDelete, http.MethodOptions)

	// Health
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
}
