package tmdb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTMDB records hits per path and serves canned responses
type fakeTMDB struct {
	t        *testing.T
	mu       sync.Mutex
	hits     map[string]int
	bodies   map[string][]map[string]any
	handlers map[string]http.HandlerFunc
}

func newFakeTMDB(t *testing.T) *fakeTMDB {
	return &fakeTMDB{
		t:        t,
		hits:     make(map[string]int),
		bodies:   make(map[string][]map[string]any),
		handlers: make(map[string]http.HandlerFunc),
	}
}

func (f *fakeTMDB) handle(path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[path] = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}

func (f *fakeTMDB) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[path]
}

func (f *fakeTMDB) lastBody(path string) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	bodies := f.bodies[path]
	if len(bodies) == 0 {
		return nil
	}
	return bodies[len(bodies)-1]
}

func (f *fakeTMDB) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.URL.Path, "/images/") {
		assert.Equal(f.t, "test-key", r.URL.Query().Get("api_key"))
	}

	var body map[string]any
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	f.mu.Lock()
	f.hits[r.URL.Path]++
	if body != nil {
		f.bodies[r.URL.Path] = append(f.bodies[r.URL.Path], body)
	}
	handler, ok := f.handlers[r.URL.Path]
	f.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"success":false,"status_code":34,"status_message":"The resource you requested could not be found."}`))
		return
	}
	handler(w, r)
}

func newTestClient(t *testing.T, fake *fakeTMDB, opts ...Option) *Client {
	t.Helper()

	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	opts = append([]Option{WithBaseURL(server.URL), WithImageBaseURL(server.URL + "/images")}, opts...)
	client, err := NewClient("test-key", zerolog.Nop(), opts...)
	require.NoError(t, err)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		client.Close(ctx)
	})
	return client
}

func withLoginRoutes(fake *fakeTMDB) {
	fake.handle("/authentication/token/new", http.StatusOK, `{"success":true,"expires_at":"2030-01-01 00:00:00 UTC","request_token":"T1"}`)
	fake.handle("/authentication/token/validate_with_login", http.StatusOK, `{"success":true,"expires_at":"2030-01-01 00:00:00 UTC","request_token":"T2"}`)
	fake.handle("/authentication/session/new", http.StatusOK, `{"success":true,"session_id":"S1"}`)
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient("", zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
}

func TestLoginSuccess(t *testing.T) {
	fake := newFakeTMDB(t)
	withLoginRoutes(fake)
	client := newTestClient(t, fake)
	auth := client.Auth()

	require.NoError(t, auth.Login(context.Background(), "alice", "hunter2"))

	creds := client.Credentials()
	assert.Equal(t, "T2", creds.RequestToken)
	assert.Equal(t, "S1", creds.SessionID)
	assert.Equal(t, StateSessionActive, auth.State())
	assert.NoError(t, auth.Err())

	assert.Equal(t, map[string]any{"username": "alice", "password": "hunter2", "request_token": "T1"},
		fake.lastBody("/authentication/token/validate_with_login"))
	assert.Equal(t, map[string]any{"request_token": "T2"}, fake.lastBody("/authentication/session/new"))
}

func TestLoginInvalidCredentials(t *testing.T) {
	fake := newFakeTMDB(t)
	withLoginRoutes(fake)
	fake.handle("/authentication/token/validate_with_login", http.StatusUnauthorized,
		`{"success":false,"status_code":30,"status_message":"Invalid username and/or password: You did not provide a valid login."}`)
	client := newTestClient(t, fake)
	auth := client.Auth()

	err := auth.Login(context.Background(), "alice", "wrong")
	require.Error(t, err)

	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.True(t, remoteErr.IsInvalidCredentials())
	assert.Equal(t, "Invalid username or password.", Message(err))

	assert.Equal(t, 1, fake.count("/authentication/token/new"))
	assert.Equal(t, 1, fake.count("/authentication/token/validate_with_login"))
	assert.Equal(t, 0, fake.count("/authentication/session/new"))

	creds := client.Credentials()
	assert.Empty(t, creds.SessionID)
	assert.Equal(t, "T1", creds.RequestToken)
	assert.Equal(t, StateFailed, auth.State())
	assert.Equal(t, err, auth.Err())
}

func TestLoginTokenFailureShortCircuits(t *testing.T) {
	fake := newFakeTMDB(t)
	withLoginRoutes(fake)
	fake.handle("/authentication/token/new", http.StatusUnauthorized,
		`{"success":false,"status_code":7,"status_message":"Invalid API key: You must be granted a valid key."}`)
	client := newTestClient(t, fake)

	err := client.Auth().Login(context.Background(), "alice", "hunter2")
	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, StatusInvalidAPIKey, remoteErr.Code)
	assert.True(t, remoteErr.IsUnauthorized())

	assert.Equal(t, 0, fake.count("/authentication/token/validate_with_login"))
	assert.Equal(t, 0, fake.count("/authentication/session/new"))
	assert.Equal(t, Credentials{}, client.Credentials())
}

func TestLoginRetryAfterFailure(t *testing.T) {
	fake := newFakeTMDB(t)
	withLoginRoutes(fake)
	fake.handle("/authentication/session/new", http.StatusUnauthorized,
		`{"success":false,"status_code":17,"status_message":"Session denied."}`)
	client := newTestClient(t, fake)
	auth := client.Auth()

	require.Error(t, auth.Login(context.Background(), "alice", "hunter2"))
	assert.Equal(t, StateFailed, auth.State())

	fake.handle("/authentication/session/new", http.StatusOK, `{"success":true,"session_id":"S2"}`)
	require.NoError(t, auth.Login(context.Background(), "alice", "hunter2"))
	assert.Equal(t, "S2", client.Credentials().SessionID)
}

func TestInvalidTransitions(t *testing.T) {
	fake := newFakeTMDB(t)
	withLoginRoutes(fake)
	client := newTestClient(t, fake)
	auth := client.Auth()
	ctx := context.Background()

	assert.ErrorIs(t, auth.ValidateLogin(ctx, "alice", "hunter2"), ErrInvalidTransition)
	assert.ErrorIs(t, auth.CreateSession(ctx), ErrInvalidTransition)
	_, err := auth.LoadAccount(ctx)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	assert.Equal(t, 0, fake.count("/authentication/token/validate_with_login"))
	assert.Equal(t, 0, fake.count("/authentication/session/new"))
	assert.Equal(t, StateIdle, auth.State())

	require.NoError(t, auth.Login(ctx, "alice", "hunter2"))
	assert.ErrorIs(t, auth.RequestToken(ctx), ErrInvalidTransition)
}

func TestWebAuthFlow(t *testing.T) {
	fake := newFakeTMDB(t)
	withLoginRoutes(fake)
	client := newTestClient(t, fake, WithWebAuth("https://www.themoviedb.org/authenticate", ""))
	auth := client.Auth()
	ctx := context.Background()

	_, err := auth.WebAuthURL()
	assert.ErrorIs(t, err, ErrInvalidOperation)

	require.NoError(t, auth.RequestToken(ctx))
	target, err := auth.WebAuthURL()
	require.NoError(t, err)
	assert.Equal(t, "https://www.themoviedb.org/authenticate/T1", target)

	require.NoError(t, auth.CreateSession(ctx))
	assert.Equal(t, map[string]any{"request_token": "T1"}, fake.lastBody("/authentication/session/new"))
	assert.Equal(t, StateSessionActive, auth.State())
}

func TestLogout(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr bool
	}{
		{
			name:   "remote success",
			status: http.StatusOK,
			body:   `{"success":true}`,
		},
		{
			name:    "remote failure still clears",
			status:  http.StatusNotFound,
			body:    `{"success":false,"status_code":6,"status_message":"Invalid id: The pre-requisite id is invalid or not found."}`,
			wantErr: true,
		},
		{
			name:    "garbage still clears",
			status:  http.StatusBadGateway,
			body:    `<html>bad gateway</html>`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeTMDB(t)
			withLoginRoutes(fake)
			fake.handle("/authentication/session", tt.status, tt.body)
			client := newTestClient(t, fake)
			auth := client.Auth()

			require.NoError(t, auth.Login(context.Background(), "alice", "hunter2"))

			err := auth.Logout(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			assert.Equal(t, map[string]any{"session_id": "S1"}, fake.lastBody("/authentication/session"))
			creds := client.Credentials()
			assert.Empty(t, creds.SessionID)
			assert.Empty(t, creds.RequestToken)
			assert.Equal(t, StateIdle, auth.State())
		})
	}
}

func TestLogoutUnsuccessfulWithoutStatus(t *testing.T) {
	fake := newFakeTMDB(t)
	withLoginRoutes(fake)
	fake.handle("/authentication/session", http.StatusOK, `{"success":false}`)
	client := newTestClient(t, fake)
	auth := client.Auth()

	require.NoError(t, auth.Login(context.Background(), "alice", "hunter2"))

	err := auth.Logout(context.Background())
	var decodeErr *DecodeError
	assert.ErrorAs(t, err, &decodeErr)
	assert.Empty(t, client.Credentials().SessionID)
	assert.Equal(t, StateIdle, auth.State())
}

func TestLogoutWithoutSession(t *testing.T) {
	fake := newFakeTMDB(t)
	client := newTestClient(t, fake)

	err := client.Auth().Logout(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)
	assert.Equal(t, 0, fake.count("/authentication/session"))
}

func TestLoadAccountAndResume(t *testing.T) {
	fake := newFakeTMDB(t)
	fake.handle("/account", http.StatusOK, `{"id":4242,"username":"alice","name":"Alice","include_adult":false,"iso_639_1":"en","iso_3166_1":"US"}`)
	client := newTestClient(t, fake)
	auth := client.Auth()

	auth.Resume(Credentials{SessionID: "S9"})
	assert.Equal(t, StateSessionActive, auth.State())

	account, err := auth.LoadAccount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alice", account.Username)
	assert.Equal(t, 4242, client.Credentials().AccountID)

	auth.Resume(Credentials{})
	assert.Equal(t, StateIdle, auth.State())
}

func TestLoginAsync(t *testing.T) {
	fake := newFakeTMDB(t)
	withLoginRoutes(fake)
	client := newTestClient(t, fake)

	delivered := make(chan Credentials, 1)
	call := client.Auth().LoginAsync(context.Background(), "alice", "hunter2", func(creds Credentials, err error) {
		assert.NoError(t, err)
		delivered <- creds
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	creds, err := call.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "S1", creds.SessionID)

	select {
	case got := <-delivered:
		assert.Equal(t, creds, got)
	default:
		t.Fatal("completion did not run before Done closed")
	}

	logoutErr := make(chan error, 1)
	logoutCall := client.Auth().LogoutAsync(ctx, func(err error) { logoutErr <- err })
	<-logoutCall.Done()
	assert.Error(t, <-logoutErr)
	assert.Empty(t, client.Credentials().SessionID)
}
