package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"

	"strix/models"
)

const localFileName = "watch_progress.json"

// LocalStore is the device-scoped progress tier, backed by a single JSON file.
// Reads and writes are fail-soft: a missing or corrupt file reads as empty,
// and a failed save is logged without surfacing an error, so playback is
// never interrupted by the persistence layer.
type LocalStore struct {
	mu   sync.RWMutex
	fs   afero.Fs
	path string
	now  func() time.Time
}

var _ Store = (*LocalStore)(nil)

// NewLocalStore creates a local store persisting under storageDir.
func NewLocalStore(fs afero.Fs, storageDir string) (*LocalStore, error) {
	if storageDir == "" {
		return nil, ErrStorageDirRequired
	}
	if err := fs.MkdirAll(storageDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStore{
		fs:   fs,
		path: filepath.Join(storageDir, localFileName),
		now:  time.Now,
	}, nil
}

func (s *LocalStore) List(ctx context.Context) ([]models.WatchProgressEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.loadLocked()
	sortByRecency(entries)
	return entries, nil
}

func (s *LocalStore) QueryOne(ctx context.Context, key models.ProgressKey) (*models.WatchProgressEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return findEntry(s.loadLocked(), key), nil
}

func (s *LocalStore) Upsert(ctx context.Context, entry models.WatchProgressEntry) error {
	if err := validateEntry(entry); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := upsertEntry(s.loadLocked(), stampEntry(entry, s.now()))
	s.saveLocked(entries)
	return nil
}

func (s *LocalStore) Remove(ctx context.Context, key models.ProgressKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, removed := removeEntry(s.loadLocked(), key)
	if removed {
		s.saveLocked(entries)
	}
	return nil
}

func (s *LocalStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.saveLocked([]models.WatchProgressEntry{})
	return nil
}

func (s *LocalStore) ContinueWatching(ctx context.Context) ([]models.WatchProgressEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return inProgress(s.loadLocked()), nil
}

// loadLocked reads the backing file. Any read or decode failure yields an
// empty collection rather than an error.
func (s *LocalStore) loadLocked() []models.WatchProgressEntry {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		return []models.WatchProgressEntry{}
	}

	var entries []models.WatchProgressEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		log.Printf("[progress] Corrupt local progress file, starting fresh: %v", err)
		return []models.WatchProgressEntry{}
	}
	return entries
}

// saveLocked writes the collection atomically via a temp file and rename.
// Failures are logged and swallowed.
func (s *LocalStore) saveLocked(entries []models.WatchProgressEntry) {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		log.Printf("[progress] Failed to marshal local progress: %v", err)
		return
	}

	tmpPath := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmpPath, data, 0o644); err != nil {
		log.Printf("[progress] Failed to write local progress: %v", err)
		return
	}
	if err := s.fs.Rename(tmpPath, s.path); err != nil {
		log.Printf("[progress] Failed to replace local progress file: %v", err)
	}
}
