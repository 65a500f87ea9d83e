package tmdb

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// OperationKind identifies a logical TMDB operation
type OperationKind int

const (
	// OpUnknown is the zero value and never builds
	OpUnknown OperationKind = iota
	OpGetWatchlist
	OpGetFavorites
	OpGetRequestToken
	OpLogin
	OpCreateSession
	OpWebAuth
	OpLogout
	OpSearch
	OpMarkWatchlist
	OpMarkFavorite
	OpPosterImage
	OpGetAccount
)

// String returns the operation name used in logs, errors and metrics
func (k OperationKind) String() string {
	switch k {
	case OpGetWatchlist:
		return "get_watchlist"
	case OpGetFavorites:
		return "get_favorites"
	case OpGetRequestToken:
		return "get_request_token"
	case OpLogin:
		return "login"
	case OpCreateSession:
		return "create_session"
	case OpWebAuth:
		return "web_auth"
	case OpLogout:
		return "logout"
	case OpSearch:
		return "search"
	case OpMarkWatchlist:
		return "mark_watchlist"
	case OpMarkFavorite:
		return "mark_favorite"
	case OpPosterImage:
		return "poster_image"
	case OpGetAccount:
		return "get_account"
	default:
		return "unknown"
	}
}

// Operation is a logical request: a kind plus the parameters some kinds carry
type Operation struct {
	Kind  OperationKind
	Query string // Search
	Path  string // PosterImage
}

// Op returns a parameterless operation of the given kind
func Op(kind OperationKind) Operation {
	return Operation{Kind: kind}
}

// SearchOp returns a movie search operation for a free-text query
func SearchOp(query string) Operation {
	return Operation{Kind: OpSearch, Query: query}
}

// PosterOp returns the poster image operation for a relative poster path
func PosterOp(path string) Operation {
	return Operation{Kind: OpPosterImage, Path: path}
}

// Endpoint is a fully-qualified request target
type Endpoint struct {
	URL             string
	Method          string
	RequiresSession bool
}

// route describes how an API operation maps onto the REST API
type route struct {
	method  string
	path    string // %d is replaced by the account id
	account bool
	session bool
	sortBy  string
}

var routes = map[OperationKind]route{
	OpGetWatchlist:    {method: http.MethodGet, path: "/account/%d/watchlist/movies", account: true, session: true, sortBy: "created_at.desc"},
	OpGetFavorites:    {method: http.MethodGet, path: "/account/%d/favorite/movies", account: true, session: true},
	OpGetRequestToken: {method: http.MethodGet, path: "/authentication/token/new"},
	OpLogin:           {method: http.MethodPost, path: "/authentication/token/validate_with_login"},
	OpCreateSession:   {method: http.MethodPost, path: "/authentication/session/new"},
	OpLogout:          {method: http.MethodDelete, path: "/authentication/session"},
	OpSearch:          {method: http.MethodGet, path: "/search/movie"},
	OpMarkWatchlist:   {method: http.MethodPost, path: "/account/%d/watchlist", account: true, session: true},
	OpMarkFavorite:    {method: http.MethodPost, path: "/account/%d/favorite", account: true, session: true},
	OpGetAccount:      {method: http.MethodGet, path: "/account", session: true},
}

// Builder maps operations to request targets. It never performs I/O.
type Builder struct {
	BaseURL      string
	ImageBaseURL string
	WebAuthURL   string
	RedirectTo   string
	APIKey       string
}

// Default TMDB locations
const (
	DefaultBaseURL      = "https://api.themoviedb.org/3"
	DefaultImageBaseURL = "https://image.tmdb.org/t/p/w500"
	DefaultWebAuthURL   = "https://www.themoviedb.org/authenticate"
	DefaultRedirectTo   = "themoviemanager:authenticate"
)

// Build returns the endpoint for op given the current credentials
func (b Builder) Build(op Operation, creds Credentials) (Endpoint, error) {
	switch op.Kind {
	case OpWebAuth:
		return b.webAuth(creds)
	case OpPosterImage:
		return b.poster(op.Path)
	}

	r, ok := routes[op.Kind]
	if !ok {
		return Endpoint{}, fmt.Errorf("%w: unknown operation kind %d", ErrInvalidOperation, op.Kind)
	}

	params := url.Values{}
	params.Set("api_key", b.APIKey)

	if r.session {
		if creds.SessionID == "" {
			return Endpoint{}, fmt.Errorf("%s: %w", op.Kind, ErrNoSession)
		}
		params.Set("session_id", creds.SessionID)
	}
	if r.sortBy != "" {
		params.Set("sort_by", r.sortBy)
	}
	if op.Kind == OpSearch {
		query := strings.TrimSpace(op.Query)
		if query == "" {
			return Endpoint{}, fmt.Errorf("%w: empty search query", ErrInvalidOperation)
		}
		params.Set("query", query)
	}

	path := r.path
	if r.account {
		path = fmt.Sprintf(r.path, creds.AccountID)
	}

	return Endpoint{
		URL:             strings.TrimRight(b.BaseURL, "/") + path + "?" + params.Encode(),
		Method:          r.method,
		RequiresSession: r.session,
	}, nil
}

// webAuth builds the browser approval page for the stored request token
func (b Builder) webAuth(creds Credentials) (Endpoint, error) {
	if creds.RequestToken == "" {
		return Endpoint{}, fmt.Errorf("%w: web authentication needs a request token", ErrInvalidOperation)
	}

	target := strings.TrimRight(b.WebAuthURL, "/") + "/" + url.PathEscape(creds.RequestToken)
	if b.RedirectTo != "" {
		target += "?" + url.Values{"redirect_to": {b.RedirectTo}}.Encode()
	}

	return Endpoint{URL: target, Method: http.MethodGet}, nil
}

// poster maps a relative poster path to the image CDN
func (b Builder) poster(path string) (Endpoint, error) {
	path = strings.TrimSpace(path)
	if path == "" || path == "/" {
		return Endpoint{}, fmt.Errorf("%w: empty poster path", ErrInvalidOperation)
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return Endpoint{
		URL:    strings.TrimRight(b.ImageBaseURL, "/") + path,
		Method: http.MethodGet,
	}, nil
}
