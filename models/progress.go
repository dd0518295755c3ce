package models

// MediaType distinguishes the two kinds of titles the catalog serves.
type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeTV    MediaType = "tv"
)

// Valid reports whether the media type is one of the known values.
func (m MediaType) Valid() bool {
	return m == MediaTypeMovie || m == MediaTypeTV
}

// ProgressKey identifies a single watch-progress entry. Movie keys carry only
// the media type and ID; TV keys additionally require season and episode.
type ProgressKey struct {
	MediaType MediaType `json:"mediaType"`
	MediaID   int64     `json:"id"`
	Season    int       `json:"season,omitempty"`
	Episode   int       `json:"episode,omitempty"`
}

// Normalized returns the key with season/episode zeroed for movies, so that
// two movie keys compare equal regardless of stray episode fields.
func (k ProgressKey) Normalized() ProgressKey {
	if k.MediaType != MediaTypeTV {
		k.Season = 0
		k.Episode = 0
	}
	return k
}

// WatchProgressEntry records how far a viewer got through a title. Title and
// PosterPath are denormalized copies so the continue-watching UI can render
// without a catalog round-trip.
type WatchProgressEntry struct {
	MediaID     int64     `json:"id"`
	MediaType   MediaType `json:"mediaType"`
	Title       string    `json:"title"`
	PosterPath  string    `json:"posterPath"`
	Progress    float64   `json:"progress"`    // 0-100, persisted alongside CurrentTime
	CurrentTime float64   `json:"currentTime"` // estimated elapsed seconds
	Duration    float64   `json:"duration"`    // assumed total runtime in seconds
	Season      int       `json:"season,omitempty"`
	Episode     int       `json:"episode,omitempty"`
	LastWatched int64     `json:"lastWatched"` // epoch milliseconds, stamped on write
}

// Key returns the entry's identity key.
func (e WatchProgressEntry) Key() ProgressKey {
	return ProgressKey{
		MediaType: e.MediaType,
		MediaID:   e.MediaID,
		Season:    e.Season,
		Episode:   e.Episode,
	}.Normalized()
}

// Matches reports whether the entry belongs to the given identity key.
func (e WatchProgressEntry) Matches(key ProgressKey) bool {
	return e.Key() == key.Normalized()
}
