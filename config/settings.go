package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Settings represents the application configuration persisted to disk.
type Settings struct {
	Server   ServerSettings   `json:"server"`
	Metadata MetadataSettings `json:"metadata"`
	DocStore DocStoreSettings `json:"docStore"`
	Player   PlayerSettings   `json:"player"`
	Session  SessionSettings  `json:"session"`
	Storage  StorageSettings  `json:"storage"`
	Log      LogConfig        `json:"log"`
}

type ServerSettings struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

type MetadataSettings struct {
	TMDBAPIKey      string `json:"tmdbApiKey"`
	Language        string `json:"language"`
	CacheTTLMinutes int    `json:"cacheTtlMinutes"`
}

// DocStoreSettings points at the hosted JSON document store holding the
// shared user document.
type DocStoreSettings struct {
	BaseURL    string `json:"baseUrl"`
	APIKey     string `json:"apiKey"`
	DocumentID string `json:"documentId"`
}

type PlayerSettings struct {
	EmbedBaseURL string `json:"embedBaseUrl"`
}

type SessionSettings struct {
	TickSeconds     int `json:"tickSeconds"`
	AutosaveSeconds int `json:"autosaveSeconds"`
}

type StorageSettings struct {
	Directory string `json:"directory"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	File       string `json:"file"`
	Level      string `json:"level"`
	MaxSize    int    `json:"maxSize"`
	MaxAge     int    `json:"maxAge"`
	MaxBackups int    `json:"maxBackups"`
	Compress   bool   `json:"compress"`
}

func DefaultSettings() Settings {
	return Settings{
		Server:   ServerSettings{Host: "0.0.0.0", Port: 7455},
		Metadata: MetadataSettings{TMDBAPIKey: "", Language: "en", CacheTTLMinutes: 15},
		DocStore: DocStoreSettings{BaseURL: "", APIKey: "", DocumentID: ""},
		Player:   PlayerSettings{EmbedBaseURL: "https://vidsrc.cc"},
		Session:  SessionSettings{TickSeconds: 1, AutosaveSeconds: 15},
		Storage:  StorageSettings{Directory: "data"},
		Log: LogConfig{
			File:       "data/logs/backend.log",
			Level:      "info",
			MaxSize:    50,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   true,
		},
	}
}

// Manager loads and persists settings to a JSON file.
type Manager struct {
	path string
}

func NewManager(configPath string) *Manager {
	return &Manager{path: configPath}
}

// EnsureDir ensures parent directory exists.
func (m *Manager) EnsureDir() error {
	dir := filepath.Dir(m.path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// Load reads settings from disk, creating the file with defaults when it
// does not exist. Environment variables override stored secrets so deploys
// don't need keys written into the config file.
func (m *Manager) Load() (Settings, error) {
	if m.path == "" {
		return Settings{}, errors.New("config path not set")
	}

	settings := DefaultSettings()
	if _, err := os.Stat(m.path); errors.Is(err, fs.ErrNotExist) {
		if err := m.Save(settings); err != nil {
			return Settings{}, err
		}
	} else {
		f, err := os.Open(m.path)
		if err != nil {
			return Settings{}, err
		}
		defer f.Close()

		if err := json.NewDecoder(f).Decode(&settings); err != nil {
			return Settings{}, err
		}
	}

	applyDefaults(&settings)
	applyEnvOverrides(&settings)
	return settings, nil
}

func applyDefaults(s *Settings) {
	defaults := DefaultSettings()
	if s.Server.Port == 0 {
		s.Server.Port = defaults.Server.Port
	}
	if strings.TrimSpace(s.Server.Host) == "" {
		s.Server.Host = defaults.Server.Host
	}
	if s.Metadata.CacheTTLMinutes <= 0 {
		s.Metadata.CacheTTLMinutes = defaults.Metadata.CacheTTLMinutes
	}
	if strings.TrimSpace(s.Metadata.Language) == "" {
		s.Metadata.Language = defaults.Metadata.Language
	}
	if s.Session.TickSeconds <= 0 {
		s.Session.TickSeconds = defaults.Session.TickSeconds
	}
	if s.Session.AutosaveSeconds <= 0 {
		s.Session.AutosaveSeconds = defaults.Session.AutosaveSeconds
	}
	if strings.TrimSpace(s.Storage.Directory) == "" {
		s.Storage.Directory = defaults.Storage.Directory
	}
	if strings.TrimSpace(s.Player.EmbedBaseURL) == "" {
		s.Player.EmbedBaseURL = defaults.Player.EmbedBaseURL
	}
	if strings.TrimSpace(s.Log.File) == "" {
		s.Log = defaults.Log
	}
}

func applyEnvOverrides(s *Settings) {
	if v := os.Getenv("TMDB_API_KEY"); v != "" {
		s.Metadata.TMDBAPIKey = v
	}
	if v := os.Getenv("DOCSTORE_BASE_URL"); v != "" {
		s.DocStore.BaseURL = v
	}
	if v := os.Getenv("DOCSTORE_API_KEY"); v != "" {
		s.DocStore.APIKey = v
	}
	if v := os.Getenv("DOCSTORE_DOCUMENT_ID"); v != "" {
		s.DocStore.DocumentID = v
	}
}

// Save writes the provided settings to disk atomically.
func (m *Manager) Save(s Settings) error {
	if m.path == "" {
		return errors.New("config path not set")
	}
	if err := m.EnsureDir(); err != nil {
		return err
	}
	tmp := m.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, m.path)
}
