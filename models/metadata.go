package models

// Catalog metadata structures mirroring the TMDB response shapes the frontend
// consumes. Field names keep TMDB's snake_case wire format.

// Title is a catalog list item returned by trending/discover/search endpoints.
type Title struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title,omitempty"`
	Name         string  `json:"name,omitempty"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	Overview     string  `json:"overview"`
	VoteAverage  float64 `json:"vote_average"`
	ReleaseDate  string  `json:"release_date,omitempty"`
	FirstAirDate string  `json:"first_air_date,omitempty"`
	MediaType    string  `json:"media_type,omitempty"`
	GenreIDs     []int64 `json:"genre_ids,omitempty"`
	Popularity   float64 `json:"popularity,omitempty"`
}

// DisplayName returns the movie title or series name, whichever is set.
func (t Title) DisplayName() string {
	if t.Title != "" {
		return t.Title
	}
	if t.Name != "" {
		return t.Name
	}
	return "Unknown"
}

// TitlePage is a paged list response.
type TitlePage struct {
	Page         int     `json:"page"`
	Results      []Title `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// Genre is a catalog genre reference.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CastMember is a top-billed cast credit.
type CastMember struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path"`
}

// CrewMember is a production credit.
type CrewMember struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Job  string `json:"job"`
}

// Credits holds cast and crew for a title.
type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// Video is a trailer/teaser/clip reference.
type Video struct {
	ID       string `json:"id"`
	Key      string `json:"key"`
	Name     string `json:"name"`
	Site     string `json:"site"`
	Type     string `json:"type"`
	Official bool   `json:"official"`
}

// VideoList wraps the videos sub-resource.
type VideoList struct {
	Results []Video `json:"results"`
}

// Episode is a single episode within a season.
type Episode struct {
	ID            int64   `json:"id"`
	EpisodeNumber int     `json:"episode_number"`
	Name          string  `json:"name"`
	Overview      string  `json:"overview"`
	AirDate       string  `json:"air_date"`
	Runtime       int     `json:"runtime,omitempty"`
	StillPath     string  `json:"still_path,omitempty"`
	VoteAverage   float64 `json:"vote_average"`
}

// Season describes one season of a series, optionally with its episodes.
type Season struct {
	ID           int64     `json:"id"`
	SeasonNumber int       `json:"season_number"`
	EpisodeCount int       `json:"episode_count"`
	Name         string    `json:"name"`
	Episodes     []Episode `json:"episodes,omitempty"`
}

// TitleDetails is a full detail object with appended credits/videos/similar.
// PosterURL and BackdropURL are denormalized from the raw image paths so
// clients don't need to know the image host.
type TitleDetails struct {
	Title

	PosterURL        string     `json:"posterUrl,omitempty"`
	BackdropURL      string     `json:"backdropUrl,omitempty"`
	Genres           []Genre    `json:"genres"`
	Runtime          int        `json:"runtime,omitempty"`
	EpisodeRunTime   []int      `json:"episode_run_time,omitempty"`
	NumberOfSeasons  int        `json:"number_of_seasons,omitempty"`
	NumberOfEpisodes int        `json:"number_of_episodes,omitempty"`
	Seasons          []Season   `json:"seasons,omitempty"`
	Tagline          string     `json:"tagline,omitempty"`
	Status           string     `json:"status,omitempty"`
	Credits          *Credits   `json:"credits,omitempty"`
	Videos           *VideoList `json:"videos,omitempty"`
	Similar          *TitlePage `json:"similar,omitempty"`
}
