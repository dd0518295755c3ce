package progress

import (
	"context"
	"sync"
	"time"

	"strix/models"
)

// DocumentClient is the slice of the document store client the remote tier
// needs. Fetch degrades to an empty document on failure; Mutate serializes
// whole-document read-modify-write cycles.
type DocumentClient interface {
	Fetch(ctx context.Context) models.UserDocument
	Mutate(ctx context.Context, fn func(doc *models.UserDocument) error) error
}

// RemoteStore is the account-scoped progress tier. It operates on one user's
// watchProgress list inside the shared remote document.
type RemoteStore struct {
	mu     sync.RWMutex
	client DocumentClient
	email  string
	now    func() time.Time
}

var _ Store = (*RemoteStore)(nil)

// NewRemoteStore creates a remote store bound to the account identified by
// email, which is the document's user key.
func NewRemoteStore(client DocumentClient, email string) *RemoteStore {
	return &RemoteStore{
		client: client,
		email:  email,
		now:    time.Now,
	}
}

func (s *RemoteStore) List(ctx context.Context) ([]models.WatchProgressEntry, error) {
	entries, err := s.userEntries(ctx)
	if err != nil {
		return nil, err
	}
	sortByRecency(entries)
	return entries, nil
}

func (s *RemoteStore) QueryOne(ctx context.Context, key models.ProgressKey) (*models.WatchProgressEntry, error) {
	entries, err := s.userEntries(ctx)
	if err != nil {
		return nil, err
	}
	return findEntry(entries, key), nil
}

func (s *RemoteStore) Upsert(ctx context.Context, entry models.WatchProgressEntry) error {
	if err := validateEntry(entry); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stamped := stampEntry(entry, s.now())
	return s.client.Mutate(ctx, func(doc *models.UserDocument) error {
		record, ok := doc.Users[s.email]
		if !ok {
			return ErrUserNotFound
		}
		record.WatchProgress = upsertEntry(record.WatchProgress, stamped)
		doc.Users[s.email] = record
		return nil
	})
}

func (s *RemoteStore) Remove(ctx context.Context, key models.ProgressKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.client.Mutate(ctx, func(doc *models.UserDocument) error {
		record, ok := doc.Users[s.email]
		if !ok {
			return ErrUserNotFound
		}
		entries, removed := removeEntry(record.WatchProgress, key)
		if !removed {
			return nil
		}
		record.WatchProgress = entries
		doc.Users[s.email] = record
		return nil
	})
}

func (s *RemoteStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.client.Mutate(ctx, func(doc *models.UserDocument) error {
		record, ok := doc.Users[s.email]
		if !ok {
			return ErrUserNotFound
		}
		record.WatchProgress = []models.WatchProgressEntry{}
		doc.Users[s.email] = record
		return nil
	})
}

func (s *RemoteStore) ContinueWatching(ctx context.Context) ([]models.WatchProgressEntry, error) {
	entries, err := s.userEntries(ctx)
	if err != nil {
		return nil, err
	}
	return inProgress(entries), nil
}

// userEntries reads one user's list from the shared document. Reads degrade
// to empty for an unknown user; only mutations report ErrUserNotFound.
func (s *RemoteStore) userEntries(ctx context.Context) ([]models.WatchProgressEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc := s.client.Fetch(ctx)
	record, ok := doc.Users[s.email]
	if !ok {
		return []models.WatchProgressEntry{}, nil
	}

	entries := make([]models.WatchProgressEntry, len(record.WatchProgress))
	copy(entries, record.WatchProgress)
	return entries, nil
}
