package tmdb

import (
	"slices"
	"strconv"
	"time"
)

// MediaTypeMovie is the only media type marked by this client
const MediaTypeMovie = "movie"

// Movie represents a movie as returned in TMDB list and search responses
type Movie struct {
	ID               int     `json:"id" validate:"required"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title,omitempty"`
	OriginalLanguage string  `json:"original_language,omitempty"`
	Overview         string  `json:"overview,omitempty"`
	PosterPath       *string `json:"poster_path"`
	BackdropPath     *string `json:"backdrop_path"`
	ReleaseDate      string  `json:"release_date,omitempty"`
	GenreIDs         []int   `json:"genre_ids,omitempty"`
	Popularity       float64 `json:"popularity,omitempty"`
	VoteAverage      float64 `json:"vote_average,omitempty"`
	VoteCount        int     `json:"vote_count,omitempty"`
	Adult            bool    `json:"adult"`
	Video            bool    `json:"video"`
}

// ReleaseTime parses ReleaseDate. It returns the zero time when the date is
// missing or malformed.
func (m Movie) ReleaseTime() time.Time {
	t, err := time.Parse(time.DateOnly, m.ReleaseDate)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ReleaseYear returns the release year, or 0 if unknown
func (m Movie) ReleaseYear() int {
	t := m.ReleaseTime()
	if t.IsZero() {
		return 0
	}
	return t.Year()
}

// Poster returns the poster path or an empty string
func (m Movie) Poster() string {
	if m.PosterPath == nil {
		return ""
	}
	return *m.PosterPath
}

// String returns "Title (Year)" or just the title when the year is unknown
func (m Movie) String() string {
	if year := m.ReleaseYear(); year > 0 {
		return m.Title + " (" + strconv.Itoa(year) + ")"
	}
	return m.Title
}

// MovieResults represents a paged list of movies
type MovieResults struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results" validate:"required,dive"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// StatusResponse is the generic TMDB status payload. It is both the error
// shape of every endpoint and the success shape of the mark endpoints.
type StatusResponse struct {
	Success       bool   `json:"success"`
	StatusCode    int    `json:"status_code" validate:"required"`
	StatusMessage string `json:"status_message"`
}

// RequestTokenResponse is returned by the token and login endpoints
type RequestTokenResponse struct {
	Success      bool   `json:"success"`
	ExpiresAt    string `json:"expires_at"`
	RequestToken string `json:"request_token" validate:"required"`
}

// SessionResponse is returned by the session creation endpoint
type SessionResponse struct {
	Success   bool   `json:"success"`
	SessionID string `json:"session_id" validate:"required"`
}

// LogoutResponse is returned by the session deletion endpoint. Success
// must be true: a bare {"success":false} carries no status code and fails
// to decode.
type LogoutResponse struct {
	Success bool `json:"success" validate:"required"`
}

// Account represents the account owning the current session
type Account struct {
	ID           int    `json:"id" validate:"required"`
	Username     string `json:"username"`
	Name         string `json:"name"`
	IncludeAdult bool   `json:"include_adult"`
	Language     string `json:"iso_639_1"`
	Country      string `json:"iso_3166_1"`
}

// LoginRequest is the body of the validate_with_login call
type LoginRequest struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	RequestToken string `json:"request_token"`
}

// SessionRequest is the body of the session creation call
type SessionRequest struct {
	RequestToken string `json:"request_token"`
}

// LogoutRequest is the body of the session deletion call
type LogoutRequest struct {
	SessionID string `json:"session_id"`
}

// MarkWatchlistRequest is the body of the watchlist mark call
type MarkWatchlistRequest struct {
	MediaType string `json:"media_type"`
	MediaID   int    `json:"media_id"`
	Watchlist bool   `json:"watchlist"`
}

// MarkFavoriteRequest is the body of the favorite mark call
type MarkFavoriteRequest struct {
	MediaType string `json:"media_type"`
	MediaID   int    `json:"media_id"`
	Favorite  bool   `json:"favorite"`
}

// MarkAcceptance lists the status codes treated as a successful mark, per
// direction.
type MarkAcceptance struct {
	Add    []int
	Remove []int
}

// DefaultMarkAcceptance accepts created, updated and deleted in both directions
func DefaultMarkAcceptance() MarkAcceptance {
	return MarkAcceptance{
		Add:    []int{StatusSuccess, StatusItemUpdated, StatusItemDeleted},
		Remove: []int{StatusSuccess, StatusItemUpdated, StatusItemDeleted},
	}
}

// Accepts reports whether code counts as success for the given direction
func (a MarkAcceptance) Accepts(add bool, code int) bool {
	if add {
		return slices.Contains(a.Add, code)
	}
	return slices.Contains(a.Remove, code)
}
