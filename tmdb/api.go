package tmdb

import "context"

// API defines the operations available on a TMDB client
type API interface {
	GetWatchlist(ctx context.Context) ([]Movie, error)
	GetFavorites(ctx context.Context) ([]Movie, error)
	Search(ctx context.Context, query string) ([]Movie, error)
	SearchAsync(ctx context.Context, query string, completion func([]Movie, error)) *Call[[]Movie]
	MarkWatchlist(ctx context.Context, movieID int, watchlist bool) (bool, error)
	MarkFavorite(ctx context.Context, movieID int, favorite bool) (bool, error)
	DownloadPoster(ctx context.Context, posterPath string) ([]byte, error)
	GetAccount(ctx context.Context) (Account, error)
	Credentials() Credentials
}

// Ensure Client implements API
var _ API = (*Client)(nil)
