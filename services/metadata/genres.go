package metadata

import "strix/models"

// Static genre tables driving the discover menus. TMDB's genre ids are
// stable, so a round trip per menu render is not worth it.
var movieGenres = []models.Genre{
	{ID: 28, Name: "Action"},
	{ID: 12, Name: "Adventure"},
	{ID: 16, Name: "Animation"},
	{ID: 35, Name: "Comedy"},
	{ID: 80, Name: "Crime"},
	{ID: 99, Name: "Documentary"},
	{ID: 18, Name: "Drama"},
	{ID: 10751, Name: "Family"},
	{ID: 14, Name: "Fantasy"},
	{ID: 36, Name: "History"},
	{ID: 27, Name: "Horror"},
	{ID: 10402, Name: "Music"},
	{ID: 9648, Name: "Mystery"},
	{ID: 10749, Name: "Romance"},
	{ID: 878, Name: "Sci-Fi"},
	{ID: 53, Name: "Thriller"},
	{ID: 10752, Name: "War"},
	{ID: 37, Name: "Western"},
}

var tvGenres = []models.Genre{
	{ID: 10759, Name: "Action & Adventure"},
	{ID: 16, Name: "Animation"},
	{ID: 35, Name: "Comedy"},
	{ID: 80, Name: "Crime"},
	{ID: 99, Name: "Documentary"},
	{ID: 18, Name: "Drama"},
	{ID: 10751, Name: "Family"},
	{ID: 10762, Name: "Kids"},
	{ID: 9648, Name: "Mystery"},
	{ID: 10764, Name: "Reality"},
	{ID: 10765, Name: "Sci-Fi & Fantasy"},
	{ID: 10766, Name: "Soap"},
	{ID: 10768, Name: "War & Politics"},
	{ID: 37, Name: "Western"},
}

// Genres returns the discover menu genres for a media type.
func (s *Service) Genres(mediaType models.MediaType) ([]models.Genre, error) {
	var table []models.Genre
	switch mediaType {
	case models.MediaTypeMovie:
		table = movieGenres
	case models.MediaTypeTV:
		table = tvGenres
	default:
		return nil, ErrInvalidMediaType
	}

	genres := make([]models.Genre, len(table))
	copy(genres, table)
	return genres, nil
}
