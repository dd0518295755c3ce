package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"strix/models"
	"strix/services/progress"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidSession  = errors.New("session media type and id are required")
)

// RemoteStoreFactory builds the remote progress tier for an authenticated
// account. A nil factory or empty email means the session stays local-only.
type RemoteStoreFactory func(email string) progress.Store

// Manager owns all live playback sessions, keyed by opaque session ID.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Tracker

	local         progress.Store
	remoteFactory RemoteStoreFactory
	onCommit      func(entry models.WatchProgressEntry)

	tickInterval     time.Duration
	autosaveInterval time.Duration
}

// ManagerOptions configures a session manager.
type ManagerOptions struct {
	Local            progress.Store
	RemoteFactory    RemoteStoreFactory
	OnCommit         func(entry models.WatchProgressEntry)
	TickInterval     time.Duration
	AutosaveInterval time.Duration
}

func NewManager(opts ManagerOptions) *Manager {
	return &Manager{
		sessions:         make(map[string]*Tracker),
		local:            opts.Local,
		remoteFactory:    opts.RemoteFactory,
		onCommit:         opts.OnCommit,
		tickInterval:     opts.TickInterval,
		autosaveInterval: opts.AutosaveInterval,
	}
}

// Runtime estimates used when the caller does not know the duration.
// The embedded player exposes no metadata, so these stand in for it.
const (
	defaultMovieDurationSeconds   = 120 * 60
	defaultEpisodeDurationSeconds = 45 * 60
)

// OpenParams describes a new playback session. Email identifies the
// authenticated account, or is empty for anonymous viewers.
type OpenParams struct {
	Entry          models.WatchProgressEntry
	InitialElapsed float64
	Email          string
}

// Open starts tracking a playback session and returns its ID.
func (m *Manager) Open(ctx context.Context, params OpenParams) (string, error) {
	if !params.Entry.MediaType.Valid() || params.Entry.MediaID <= 0 {
		return "", ErrInvalidSession
	}
	if params.Entry.Duration <= 0 {
		if params.Entry.MediaType == models.MediaTypeTV {
			params.Entry.Duration = defaultEpisodeDurationSeconds
		} else {
			params.Entry.Duration = defaultMovieDurationSeconds
		}
	}

	var remote progress.Store
	if params.Email != "" && m.remoteFactory != nil {
		remote = m.remoteFactory(params.Email)
	}

	tracker := NewTracker(TrackerOptions{
		Entry:            params.Entry,
		InitialElapsed:   params.InitialElapsed,
		Local:            m.local,
		Remote:           remote,
		OnCommit:         m.onCommit,
		TickInterval:     m.tickInterval,
		AutosaveInterval: m.autosaveInterval,
	})

	id := uuid.NewString()
	m.mu.Lock()
	m.sessions[id] = tracker
	m.mu.Unlock()

	tracker.Start(ctx)
	log.Printf("[session] Opened session %s for %s/%d", id, params.Entry.MediaType, params.Entry.MediaID)
	return id, nil
}

func (m *Manager) get(id string) (*Tracker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tracker, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return tracker, nil
}

// SetVisible updates a session's visibility.
func (m *Manager) SetVisible(id string, visible bool) error {
	tracker, err := m.get(id)
	if err != nil {
		return err
	}
	tracker.SetVisible(visible)
	return nil
}

// MarkWatched marks a session's title as fully watched.
func (m *Manager) MarkWatched(ctx context.Context, id string) error {
	tracker, err := m.get(id)
	if err != nil {
		return err
	}
	tracker.MarkWatched(ctx)
	return nil
}

// Close finishes a session, commits its final state and forgets it.
func (m *Manager) Close(ctx context.Context, id string) error {
	m.mu.Lock()
	tracker, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	return tracker.Close(ctx)
}

// Shutdown closes every live session, committing each one's final state.
func (m *Manager) Shutdown(ctx context.Context) {
	m.mu.Lock()
	trackers := make([]*Tracker, 0, len(m.sessions))
	for id, tracker := range m.sessions {
		trackers = append(trackers, tracker)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, tracker := range trackers {
		if err := tracker.Close(ctx); err != nil && !errors.Is(err, ErrSessionClosed) {
			log.Printf("[session] Failed to close session on shutdown: %v", err)
		}
	}
}
