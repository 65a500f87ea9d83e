package library

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/moviemanager/tmdb"
)

// Kind selects one of the account lists
type Kind int

const (
	Watchlist Kind = iota
	Favorites
)

func (k Kind) String() string {
	switch k {
	case Watchlist:
		return "watchlist"
	case Favorites:
		return "favorites"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind parses "watchlist" or "favorite(s)"
func ParseKind(s string) (Kind, error) {
	switch s {
	case "watchlist":
		return Watchlist, nil
	case "favorite", "favorites":
		return Favorites, nil
	default:
		return 0, fmt.Errorf("unknown list %q (expected watchlist or favorite)", s)
	}
}

// Remote is the part of the TMDB API the library mirrors
type Remote interface {
	GetWatchlist(ctx context.Context) ([]tmdb.Movie, error)
	GetFavorites(ctx context.Context) ([]tmdb.Movie, error)
	MarkWatchlist(ctx context.Context, movieID int, watchlist bool) (bool, error)
	MarkFavorite(ctx context.Context, movieID int, favorite bool) (bool, error)
}

// Library mirrors the account watchlist and favorites in memory. Lists keep
// their remote order, new entries are appended and no movie appears twice.
type Library struct {
	remote Remote
	logger zerolog.Logger

	mu        sync.RWMutex
	watchlist []tmdb.Movie
	favorites []tmdb.Movie
}

// New creates an empty library backed by remote
func New(remote Remote, logger zerolog.Logger) *Library {
	return &Library{
		remote: remote,
		logger: logger,
	}
}

// Refresh reloads both lists concurrently. The mirror is only replaced when
// both loads succeed.
func (l *Library) Refresh(ctx context.Context) error {
	var watchlist, favorites []tmdb.Movie

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		movies, err := l.remote.GetWatchlist(ctx)
		if err != nil {
			return fmt.Errorf("failed to load watchlist: %w", err)
		}
		watchlist = movies
		return nil
	})
	g.Go(func() error {
		movies, err := l.remote.GetFavorites(ctx)
		if err != nil {
			return fmt.Errorf("failed to load favorites: %w", err)
		}
		favorites = movies
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	l.mu.Lock()
	l.watchlist = dedupe(watchlist)
	l.favorites = dedupe(favorites)
	l.mu.Unlock()

	l.logger.Debug().
		Int("watchlist", len(watchlist)).
		Int("favorites", len(favorites)).
		Msg("Refreshed library")

	return nil
}

// Watchlist returns a copy of the mirrored watchlist
func (l *Library) Watchlist() []tmdb.Movie {
	return l.List(Watchlist)
}

// Favorites returns a copy of the mirrored favorites
func (l *Library) Favorites() []tmdb.Movie {
	return l.List(Favorites)
}

// List returns a copy of the given list
func (l *Library) List(kind Kind) []tmdb.Movie {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(*l.list(kind))
}

// Contains reports whether the movie is on the given list
func (l *Library) Contains(kind Kind, movieID int) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return indexOf(*l.list(kind), movieID) >= 0
}

// Apply updates the local mirror only: added appends the movie unless it is
// already present, otherwise every entry with its id is removed.
func (l *Library) Apply(kind Kind, movie tmdb.Movie, added bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	list := l.list(kind)
	if added {
		if indexOf(*list, movie.ID) < 0 {
			*list = append(*list, movie)
		}
		return
	}
	*list = slices.DeleteFunc(*list, func(m tmdb.Movie) bool { return m.ID == movie.ID })
}

// Set marks the movie remotely and applies the change locally once the
// remote call succeeded
func (l *Library) Set(ctx context.Context, kind Kind, movie tmdb.Movie, flag bool) error {
	var (
		ok  bool
		err error
	)
	switch kind {
	case Watchlist:
		ok, err = l.remote.MarkWatchlist(ctx, movie.ID, flag)
	case Favorites:
		ok, err = l.remote.MarkFavorite(ctx, movie.ID, flag)
	default:
		return fmt.Errorf("unknown list %s", kind)
	}
	if err != nil {
		return fmt.Errorf("failed to update %s for %s: %w", kind, movie, err)
	}
	if !ok {
		return fmt.Errorf("failed to update %s for %s", kind, movie)
	}

	l.Apply(kind, movie, flag)

	l.logger.Info().
		Int("movie_id", movie.ID).
		Str("title", movie.Title).
		Str("list", kind.String()).
		Bool("added", flag).
		Msg("Updated list")

	return nil
}

// Toggle adds the movie when it is missing from the list and removes it
// otherwise. It returns the new membership.
func (l *Library) Toggle(ctx context.Context, kind Kind, movie tmdb.Movie) (bool, error) {
	flag := !l.Contains(kind, movie.ID)
	if err := l.Set(ctx, kind, movie, flag); err != nil {
		return !flag, err
	}
	return flag, nil
}

// Find returns the movie with the given id from either list
func (l *Library) Find(movieID int) (tmdb.Movie, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, list := range [][]tmdb.Movie{l.watchlist, l.favorites} {
		if i := indexOf(list, movieID); i >= 0 {
			return list[i], true
		}
	}
	return tmdb.Movie{}, false
}

func (l *Library) list(kind Kind) *[]tmdb.Movie {
	if kind == Favorites {
		return &l.favorites
	}
	return &l.watchlist
}

func indexOf(movies []tmdb.Movie, movieID int) int {
	return slices.IndexFunc(movies, func(m tmdb.Movie) bool { return m.ID == movieID })
}

func dedupe(movies []tmdb.Movie) []tmdb.Movie {
	out := make([]tmdb.Movie, 0, len(movies))
	for _, m := range movies {
		if indexOf(out, m.ID) < 0 {
			out = append(out, m)
		}
	}
	return out
}
