package tmdb

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBuilder() Builder {
	return Builder{
		BaseURL:      DefaultBaseURL,
		ImageBaseURL: DefaultImageBaseURL,
		WebAuthURL:   DefaultWebAuthURL,
		RedirectTo:   DefaultRedirectTo,
		APIKey:       "test-key",
	}
}

func TestBuilderBuild(t *testing.T) {
	b := testBuilder()
	session := Credentials{AccountID: 42, SessionID: "sess-1", RequestToken: "tok-1"}

	tests := []struct {
		name        string
		op          Operation
		method      string
		path        string
		query       url.Values
		needSession bool
	}{
		{
			name:        "watchlist",
			op:          Op(OpGetWatchlist),
			method:      http.MethodGet,
			path:        "/3/account/42/watchlist/movies",
			query:       url.Values{"api_key": {"test-key"}, "session_id": {"sess-1"}, "sort_by": {"created_at.desc"}},
			needSession: true,
		},
		{
			name:        "favorites",
			op:          Op(OpGetFavorites),
			method:      http.MethodGet,
			path:        "/3/account/42/favorite/movies",
			query:       url.Values{"api_key": {"test-key"}, "session_id": {"sess-1"}},
			needSession: true,
		},
		{
			name:   "request token",
			op:     Op(OpGetRequestToken),
			method: http.MethodGet,
			path:   "/3/authentication/token/new",
			query:  url.Values{"api_key": {"test-key"}},
		},
		{
			name:   "login",
			op:     Op(OpLogin),
			method: http.MethodPost,
			path:   "/3/authentication/token/validate_with_login",
			query:  url.Values{"api_key": {"test-key"}},
		},
		{
			name:   "create session",
			op:     Op(OpCreateSession),
			method: http.MethodPost,
			path:   "/3/authentication/session/new",
			query:  url.Values{"api_key": {"test-key"}},
		},
		{
			name:   "logout",
			op:     Op(OpLogout),
			method: http.MethodDelete,
			path:   "/3/authentication/session",
			query:  url.Values{"api_key": {"test-key"}},
		},
		{
			name:   "search",
			op:     SearchOp("Alien"),
			method: http.MethodGet,
			path:   "/3/search/movie",
			query:  url.Values{"api_key": {"test-key"}, "query": {"Alien"}},
		},
		{
			name:        "mark watchlist",
			op:          Op(OpMarkWatchlist),
			method:      http.MethodPost,
			path:        "/3/account/42/watchlist",
			query:       url.Values{"api_key": {"test-key"}, "session_id": {"sess-1"}},
			needSession: true,
		},
		{
			name:        "mark favorite",
			op:          Op(OpMarkFavorite),
			method:      http.MethodPost,
			path:        "/3/account/42/favorite",
			query:       url.Values{"api_key": {"test-key"}, "session_id": {"sess-1"}},
			needSession: true,
		},
		{
			name:        "account",
			op:          Op(OpGetAccount),
			method:      http.MethodGet,
			path:        "/3/account",
			query:       url.Values{"api_key": {"test-key"}, "session_id": {"sess-1"}},
			needSession: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			endpoint, err := b.Build(tt.op, session)
			require.NoError(t, err)

			u, err := url.Parse(endpoint.URL)
			require.NoError(t, err)
			assert.Equal(t, "api.themoviedb.org", u.Host)
			assert.Equal(t, tt.path, u.Path)
			assert.Equal(t, tt.query, u.Query())
			assert.Equal(t, tt.method, endpoint.Method)
			assert.Equal(t, tt.needSession, endpoint.RequiresSession)
		})
	}
}

func TestBuilderIsPure(t *testing.T) {
	b := testBuilder()
	creds := Credentials{AccountID: 7, SessionID: "abc"}

	first, err := b.Build(Op(OpGetWatchlist), creds)
	require.NoError(t, err)
	second, err := b.Build(Op(OpGetWatchlist), creds)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBuilderSearchEncoding(t *testing.T) {
	endpoint, err := testBuilder().Build(SearchOp("Mad Max: Fury Road"), Credentials{})
	require.NoError(t, err)

	_, rawQuery, found := strings.Cut(endpoint.URL, "?")
	require.True(t, found)
	assert.NotContains(t, rawQuery, " ")
	assert.NotContains(t, rawQuery, ":")

	u, err := url.Parse(endpoint.URL)
	require.NoError(t, err)
	assert.Equal(t, "Mad Max: Fury Road", u.Query().Get("query"))
}

func TestBuilderErrors(t *testing.T) {
	b := testBuilder()

	t.Run("session required", func(t *testing.T) {
		for _, kind := range []OperationKind{OpGetWatchlist, OpGetFavorites, OpMarkWatchlist, OpMarkFavorite, OpGetAccount} {
			_, err := b.Build(Op(kind), Credentials{})
			assert.ErrorIs(t, err, ErrNoSession, kind.String())
		}
	})

	t.Run("empty search query", func(t *testing.T) {
		_, err := b.Build(SearchOp("   "), Credentials{})
		assert.ErrorIs(t, err, ErrInvalidOperation)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := b.Build(Op(OpUnknown), Credentials{})
		assert.ErrorIs(t, err, ErrInvalidOperation)
	})

	t.Run("web auth without token", func(t *testing.T) {
		_, err := b.Build(Op(OpWebAuth), Credentials{})
		assert.ErrorIs(t, err, ErrInvalidOperation)
	})

	t.Run("empty poster path", func(t *testing.T) {
		_, err := b.Build(PosterOp(""), Credentials{})
		assert.ErrorIs(t, err, ErrInvalidOperation)
	})
}

func TestBuilderWebAuthAndPoster(t *testing.T) {
	b := testBuilder()

	endpoint, err := b.Build(Op(OpWebAuth), Credentials{RequestToken: "tok-9"})
	require.NoError(t, err)
	assert.Equal(t, "https://www.themoviedb.org/authenticate/tok-9?redirect_to=themoviemanager%3Aauthenticate", endpoint.URL)
	assert.False(t, endpoint.RequiresSession)

	endpoint, err = b.Build(PosterOp("/abc.jpg"), Credentials{})
	require.NoError(t, err)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/abc.jpg", endpoint.URL)

	endpoint, err = b.Build(PosterOp("abc.jpg"), Credentials{})
	require.NoError(t, err)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/abc.jpg", endpoint.URL)
}
