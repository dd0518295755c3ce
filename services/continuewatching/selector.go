package continuewatching

import (
	"context"
	"sync"

	"strix/models"
	"strix/services/progress"
)

// Source names which progress tier the selector is currently reading.
type Source string

const (
	SourceLocal   Source = "local"
	SourceAccount Source = "account"
)

// RemoteStoreFactory builds the remote progress tier for an account.
type RemoteStoreFactory func(email string) progress.Store

// Selector serves the continue-watching rail from exactly one progress tier
// at a time: the account's remote slice while signed in, the device-local
// store otherwise. The two tiers are never merged; signing in or out swaps
// the source wholesale.
type Selector struct {
	mu        sync.RWMutex
	local     progress.Store
	newRemote RemoteStoreFactory
	remote    progress.Store
	email     string
}

// NewSelector creates a selector starting on the local tier.
func NewSelector(local progress.Store, newRemote RemoteStoreFactory) *Selector {
	return &Selector{
		local:     local,
		newRemote: newRemote,
	}
}

// SetUser switches the selector to the account's remote tier. An empty email
// is the same as ClearUser.
func (s *Selector) SetUser(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if email == "" || s.newRemote == nil {
		s.email = ""
		s.remote = nil
		return
	}
	s.email = email
	s.remote = s.newRemote(email)
}

// ClearUser switches the selector back to the local tier.
func (s *Selector) ClearUser() {
	s.SetUser("")
}

// ActiveSource reports which tier the selector is reading.
func (s *Selector) ActiveSource() Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.remote != nil {
		return SourceAccount
	}
	return SourceLocal
}

func (s *Selector) activeStore() progress.Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.remote != nil {
		return s.remote
	}
	return s.local
}

// List returns the in-progress entries of the active tier, most recent first.
func (s *Selector) List(ctx context.Context) ([]models.WatchProgressEntry, error) {
	return s.activeStore().ContinueWatching(ctx)
}

// Remove deletes an entry from the active tier.
func (s *Selector) Remove(ctx context.Context, key models.ProgressKey) error {
	return s.activeStore().Remove(ctx, key)
}
