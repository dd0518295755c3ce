package progress

import (
	"sort"
	"time"

	"strix/models"
)

// maxEntries caps each collection; the oldest slot is evicted on overflow.
const maxEntries = 20

// The continue-watching window: meaningfully started but not finished.
// Entries at exactly 5% or 95% fall outside it.
const (
	minInProgressPercent = 5.0
	maxInProgressPercent = 95.0
)

// stampEntry fills the write timestamp before an entry is persisted.
func stampEntry(entry models.WatchProgressEntry, now time.Time) models.WatchProgressEntry {
	entry.LastWatched = now.UTC().UnixMilli()
	return entry
}

// upsertEntry replaces the entry matching e's identity key in place, or
// inserts e at the front, then truncates the collection to maxEntries.
func upsertEntry(entries []models.WatchProgressEntry, e models.WatchProgressEntry) []models.WatchProgressEntry {
	key := e.Key()
	for i := range entries {
		if entries[i].Matches(key) {
			entries[i] = e
			return entries
		}
	}

	entries = append([]models.WatchProgressEntry{e}, entries...)
	if len(entries) > maxEntries {
		entries = entries[:maxEntries]
	}
	return entries
}

// removeEntry deletes the entry matching the identity key, if present.
func removeEntry(entries []models.WatchProgressEntry, key models.ProgressKey) ([]models.WatchProgressEntry, bool) {
	key = key.Normalized()
	for i := range entries {
		if entries[i].Matches(key) {
			return append(entries[:i:i], entries[i+1:]...), true
		}
	}
	return entries, false
}

// findEntry returns a copy of the entry matching the identity key, or nil.
func findEntry(entries []models.WatchProgressEntry, key models.ProgressKey) *models.WatchProgressEntry {
	key = key.Normalized()
	for i := range entries {
		if entries[i].Matches(key) {
			entry := entries[i]
			return &entry
		}
	}
	return nil
}

// sortByRecency orders entries most recently watched first. The sort is
// stable so entries written within the same millisecond keep their stored
// order, which already has the newest insert at the front.
func sortByRecency(entries []models.WatchProgressEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].LastWatched > entries[j].LastWatched
	})
}

// inProgress filters to the continue-watching window, most recent first.
func inProgress(entries []models.WatchProgressEntry) []models.WatchProgressEntry {
	filtered := make([]models.WatchProgressEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.Progress > minInProgressPercent && entry.Progress < maxInProgressPercent {
			filtered = append(filtered, entry)
		}
	}
	sortByRecency(filtered)
	return filtered
}
