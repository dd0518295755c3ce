package continuewatching

import (
	"context"
	"testing"

	"strix/models"
	"strix/services/progress"
)

// stubStore serves a fixed continue-watching list and records removals.
type stubStore struct {
	entries []models.WatchProgressEntry
	removed []models.ProgressKey
}

var _ progress.Store = (*stubStore)(nil)

func (s *stubStore) List(ctx context.Context) ([]models.WatchProgressEntry, error) {
	return s.entries, nil
}

func (s *stubStore) QueryOne(ctx context.Context, key models.ProgressKey) (*models.WatchProgressEntry, error) {
	return nil, nil
}

func (s *stubStore) Upsert(ctx context.Context, entry models.WatchProgressEntry) error { return nil }

func (s *stubStore) Remove(ctx context.Context, key models.ProgressKey) error {
	s.removed = append(s.removed, key)
	return nil
}

func (s *stubStore) Clear(ctx context.Context) error { return nil }

func (s *stubStore) ContinueWatching(ctx context.Context) ([]models.WatchProgressEntry, error) {
	return s.entries, nil
}

func entry(id int64) models.WatchProgressEntry {
	return models.WatchProgressEntry{MediaID: id, MediaType: models.MediaTypeMovie, Progress: 50}
}

// TestSelectorSwitchesSourceWithoutMerging verifies signing in swaps the rail
// to the account tier wholesale and signing out swaps it back.
func TestSelectorSwitchesSourceWithoutMerging(t *testing.T) {
	local := &stubStore{entries: []models.WatchProgressEntry{entry(1), entry(2)}}
	remote := &stubStore{entries: []models.WatchProgressEntry{entry(9)}}
	selector := NewSelector(local, func(email string) progress.Store { return remote })
	ctx := context.Background()

	if got := selector.ActiveSource(); got != SourceLocal {
		t.Fatalf("expected local source before sign-in, got %q", got)
	}
	entries, err := selector.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 local entries, got %d", len(entries))
	}

	selector.SetUser("viewer@example.com")
	if got := selector.ActiveSource(); got != SourceAccount {
		t.Fatalf("expected account source after sign-in, got %q", got)
	}
	entries, err = selector.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 1 || entries[0].MediaID != 9 {
		t.Fatalf("expected only the remote entry, got %+v", entries)
	}

	selector.ClearUser()
	entries, _ = selector.List(ctx)
	if len(entries) != 2 {
		t.Fatalf("expected local entries back after sign-out, got %d", len(entries))
	}
}

func TestSelectorRemoveTargetsActiveTier(t *testing.T) {
	local := &stubStore{}
	remote := &stubStore{}
	selector := NewSelector(local, func(email string) progress.Store { return remote })
	ctx := context.Background()

	key := entry(5).Key()
	if err := selector.Remove(ctx, key); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if len(local.removed) != 1 || len(remote.removed) != 0 {
		t.Fatalf("expected removal on local tier only, got local=%d remote=%d", len(local.removed), len(remote.removed))
	}

	selector.SetUser("viewer@example.com")
	if err := selector.Remove(ctx, key); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if len(remote.removed) != 1 {
		t.Fatalf("expected removal on remote tier, got %d", len(remote.removed))
	}
}

func TestSelectorEmptyEmailStaysLocal(t *testing.T) {
	local := &stubStore{}
	selector := NewSelector(local, func(email string) progress.Store { return &stubStore{} })

	selector.SetUser("")
	if got := selector.ActiveSource(); got != SourceLocal {
		t.Fatalf("expected local source for empty email, got %q", got)
	}
}
