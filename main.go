package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"strix/api"
	"strix/config"
	"strix/handlers"
	"strix/models"
	"strix/services/continuewatching"
	"strix/services/docstore"
	"strix/services/metadata"
	"strix/services/player"
	"strix/services/progress"
	"strix/services/session"
	"strix/services/users"

	"github.com/gorilla/mux"
	"github.com/spf13/afero"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	portOverride := flag.Int("port", 0, "override server port from config")
	flag.Parse()

	fmt.Println("🚀 strix Backend Starting...")

	// Determine config path (env or default)
	configPath := os.Getenv("STRIX_CONFIG")
	if configPath == "" {
		configPath = filepath.Join("data", "settings.json")
	}

	// Init config manager and load settings (creates defaults if missing)
	cfgManager := config.NewManager(configPath)
	settings, err := cfgManager.Load()
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}

	// Set up file logging with rotation
	if settings.Log.File != "" {
		logDir := filepath.Dir(settings.Log.File)
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			log.Printf("Warning: could not create log directory %s: %v", logDir, err)
		} else {
			fileWriter := &lumberjack.Logger{
				Filename:   settings.Log.File,
				MaxSize:    settings.Log.MaxSize,
				MaxBackups: settings.Log.MaxBackups,
				MaxAge:     settings.Log.MaxAge,
				Compress:   settings.Log.Compress,
			}
			// Redirect standard log to both console and file
			multiWriter := io.MultiWriter(os.Stdout, fileWriter)
			log.SetOutput(multiWriter)
			log.SetFlags(log.LstdFlags | log.Lshortfile)
			log.Printf("Logging to file: %s", settings.Log.File)
		}
	}

	if *portOverride > 0 {
		settings.Server.Port = *portOverride
	}

	// Device-local progress tier
	localStore, err := progress.NewLocalStore(afero.NewOsFs(), settings.Storage.Directory)
	if err != nil {
		log.Fatalf("failed to init local progress store: %v", err)
	}

	// Remote document store and account-scoped tier
	docClient := docstore.NewClient(settings.DocStore.BaseURL, settings.DocStore.APIKey, settings.DocStore.DocumentID)
	if !docClient.Configured() {
		log.Println("[main] Document store not configured; accounts and remote progress are disabled")
	}
	remoteFactory := func(email string) progress.Store {
		return progress.NewRemoteStore(docClient, email)
	}

	usersSvc := users.NewService(docClient)
	metadataSvc := metadata.NewService(
		settings.Metadata.TMDBAPIKey,
		settings.Metadata.Language,
		time.Duration(settings.Metadata.CacheTTLMinutes)*time.Minute,
	)
	if !metadataSvc.Configured() {
		log.Println("[main] TMDB API key not configured; catalog endpoints will fail until one is set")
	}
	playerSvc := player.NewService(settings.Player.EmbedBaseURL)

	selector := continuewatching.NewSelector(localStore, func(email string) progress.Store {
		return remoteFactory(email)
	})

	sessionManager := session.NewManager(session.ManagerOptions{
		Local:            localStore,
		RemoteFactory:    remoteFactory,
		TickInterval:     time.Duration(settings.Session.TickSeconds) * time.Second,
		AutosaveInterval: time.Duration(settings.Session.AutosaveSeconds) * time.Second,
		OnCommit: func(entry models.WatchProgressEntry) {
			log.Printf("[main] Progress committed for %s/%d (%.1f%%)", entry.MediaType, entry.MediaID, entry.Progress)
		},
	})

	r := mux.NewRouter()
	api.Register(
		r,
		handlers.NewAuthHandler(usersSvc),
		handlers.NewCatalogHandler(metadataSvc),
		handlers.NewPlayerHandler(playerSvc),
		handlers.NewProgressHandler(localStore, handlers.RemoteStoreFactory(remoteFactory)),
		handlers.NewContinueWatchingHandler(selector),
		handlers.NewSessionsHandler(sessionManager),
	)

	addr := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port)
	fmt.Printf("Server starting on %s\n", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Setup graceful shutdown
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-shutdownChan
	log.Println("🛑 Shutdown signal received, cleaning up...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Commit every live playback session before the server stops
	log.Println("🧹 Closing playback sessions...")
	sessionManager.Shutdown(shutdownCtx)

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("✅ Shutdown complete")
}
