package progress

import (
	"context"
	"errors"

	"strix/models"
)

var (
	ErrStorageDirRequired = errors.New("storage directory not provided")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidEntry       = errors.New("entry media type and id are required")
)

// Store is the capability both progress tiers implement. The local tier is
// device-scoped and always available; the remote tier holds one user's slice
// of the shared cloud document. Callers pick exactly one tier per read — the
// two are never merged.
type Store interface {
	// List returns all entries, most recently watched first.
	List(ctx context.Context) ([]models.WatchProgressEntry, error)
	// QueryOne returns the entry for the identity key, or nil if absent.
	QueryOne(ctx context.Context, key models.ProgressKey) (*models.WatchProgressEntry, error)
	// Upsert stamps the write time and inserts or replaces by identity key.
	Upsert(ctx context.Context, entry models.WatchProgressEntry) error
	// Remove deletes the entry for the identity key; absent keys are a no-op.
	Remove(ctx context.Context, key models.ProgressKey) error
	// Clear deletes all entries.
	Clear(ctx context.Context) error
	// ContinueWatching returns in-progress entries, most recent first.
	ContinueWatching(ctx context.Context) ([]models.WatchProgressEntry, error)
}

func validateEntry(entry models.WatchProgressEntry) error {
	if !entry.MediaType.Valid() || entry.MediaID <= 0 {
		return ErrInvalidEntry
	}
	return nil
}
