package tmdb

import (
	"context"
	"fmt"
)

// GetWatchlist retrieves the movies on the account watchlist, newest first
func (c *Client) GetWatchlist(ctx context.Context) ([]Movie, error) {
	return c.movieList(ctx, Op(OpGetWatchlist))
}

// GetFavorites retrieves the movies marked as favorite
func (c *Client) GetFavorites(ctx context.Context) ([]Movie, error) {
	return c.movieList(ctx, Op(OpGetFavorites))
}

// Search searches movies by title
func (c *Client) Search(ctx context.Context, query string) ([]Movie, error) {
	return c.movieList(ctx, SearchOp(query))
}

// SearchAsync runs Search on its own goroutine. completion runs on the
// client's executor; the returned Call cancels the request.
func (c *Client) SearchAsync(ctx context.Context, query string, completion func([]Movie, error)) *Call[[]Movie] {
	return Go(ctx, c.executor, func(ctx context.Context) ([]Movie, error) {
		return c.Search(ctx, query)
	}, completion)
}

func (c *Client) movieList(ctx context.Context, op Operation) ([]Movie, error) {
	results, err := call[MovieResults](ctx, c, op, nil)
	if err != nil {
		return []Movie{}, err
	}

	c.logger.Debug().
		Str("operation", op.Kind.String()).
		Int("count", len(results.Results)).
		Int("total", results.TotalResults).
		Msg("Retrieved movies from TMDB")

	return results.Results, nil
}

// MarkWatchlist adds the movie to the watchlist, or removes it when
// watchlist is false
func (c *Client) MarkWatchlist(ctx context.Context, movieID int, watchlist bool) (bool, error) {
	body := MarkWatchlistRequest{
		MediaType: MediaTypeMovie,
		MediaID:   movieID,
		Watchlist: watchlist,
	}
	return c.mark(ctx, Op(OpMarkWatchlist), body, watchlist)
}

// MarkFavorite marks the movie as favorite, or unmarks it when favorite is
// false
func (c *Client) MarkFavorite(ctx context.Context, movieID int, favorite bool) (bool, error) {
	body := MarkFavoriteRequest{
		MediaType: MediaTypeMovie,
		MediaID:   movieID,
		Favorite:  favorite,
	}
	return c.mark(ctx, Op(OpMarkFavorite), body, favorite)
}

func (c *Client) mark(ctx context.Context, op Operation, body any, add bool) (bool, error) {
	// Error bodies decode as StatusResponse too, so rejections land here
	// with their HTTP status
	status, httpStatus, err := callWithStatus[StatusResponse](ctx, c, op, body)
	if err != nil {
		return false, err
	}

	if !c.acceptance.Accepts(add, status.StatusCode) {
		return false, &RemoteError{
			Op:         op.Kind.String(),
			HTTPStatus: httpStatus,
			Code:       status.StatusCode,
			Message:    status.StatusMessage,
		}
	}

	c.logger.Debug().
		Str("operation", op.Kind.String()).
		Bool("add", add).
		Int("status_code", status.StatusCode).
		Msg("Marked movie")

	return true, nil
}

// DownloadPoster retrieves the poster image for a relative poster path
func (c *Client) DownloadPoster(ctx context.Context, posterPath string) ([]byte, error) {
	op := PosterOp(posterPath)
	endpoint, err := c.endpoint(op)
	if err != nil {
		return nil, err
	}

	data, err := c.dispatcher.fetch(ctx, op.Kind.String(), endpoint.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to download poster %s: %w", posterPath, err)
	}
	return data, nil
}

// GetAccount retrieves the account owning the current session
func (c *Client) GetAccount(ctx context.Context) (Account, error) {
	return call[Account](ctx, c, Op(OpGetAccount), nil)
}
