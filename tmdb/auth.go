package tmdb

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// AuthState is a step of the authentication workflow
type AuthState int

const (
	StateIdle AuthState = iota
	StateTokenRequested
	StateLoggedIn
	StateSessionActive
	StateFailed
)

func (s AuthState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateTokenRequested:
		return "token_requested"
	case StateLoggedIn:
		return "logged_in"
	case StateSessionActive:
		return "session_active"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("AuthState(%d)", int(s))
	}
}

// Authenticator drives the request token, login and session workflow. It is
// the only writer of the client's credentials. Steps are serialised: a step
// started while another runs waits for it.
type Authenticator struct {
	client *Client
	logger zerolog.Logger

	mu    sync.Mutex
	state AuthState
	err   error
}

func newAuthenticator(c *Client) *Authenticator {
	a := &Authenticator{
		client: c,
		logger: c.logger.With().Str("component", "auth").Logger(),
	}
	if c.creds.Snapshot().HasSession() {
		a.state = StateSessionActive
	}
	return a
}

// State returns the current workflow state
func (a *Authenticator) State() AuthState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Err returns the error of the step that moved the workflow to StateFailed
func (a *Authenticator) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// RequestToken obtains a fresh request token
func (a *Authenticator) RequestToken(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.requestToken(ctx)
}

// ValidateLogin approves the stored request token with a username and password
func (a *Authenticator) ValidateLogin(ctx context.Context, username, password string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.validateLogin(ctx, username, password)
}

// CreateSession exchanges the approved request token for a session id. The
// token may have been approved by ValidateLogin or in a browser through
// WebAuthURL.
func (a *Authenticator) CreateSession(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.createSession(ctx)
}

// Login runs the token, login and session steps in order. The first failure
// is returned as is; credentials stored by earlier steps are kept.
func (a *Authenticator) Login(ctx context.Context, username, password string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.requestToken(ctx); err != nil {
		return err
	}
	if err := a.validateLogin(ctx, username, password); err != nil {
		return err
	}
	if err := a.createSession(ctx); err != nil {
		return err
	}

	a.logger.Info().Msg("Logged in to TMDB")
	return nil
}

// Logout deletes the session remotely and always clears it locally. The
// returned error only reports the remote outcome.
func (a *Authenticator) Logout(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	creds := a.client.creds.Snapshot()
	defer func() {
		a.client.creds.clearSession()
		a.state = StateIdle
		a.err = nil
	}()

	if !creds.HasSession() {
		return fmt.Errorf("logout: %w", ErrNoSession)
	}

	_, err := call[LogoutResponse](ctx, a.client, Op(OpLogout), LogoutRequest{SessionID: creds.SessionID})
	if err != nil {
		a.logger.Warn().Err(err).Msg("Remote logout failed, session cleared locally")
		return err
	}

	a.logger.Info().Msg("Logged out of TMDB")
	return nil
}

// WebAuthURL returns the page on which a user approves the stored request
// token in a browser
func (a *Authenticator) WebAuthURL() (string, error) {
	endpoint, err := a.client.endpoint(Op(OpWebAuth))
	if err != nil {
		return "", err
	}
	return endpoint.URL, nil
}

// LoadAccount fetches the account owning the session and stores its id
func (a *Authenticator) LoadAccount(ctx context.Context) (Account, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != StateSessionActive {
		return Account{}, fmt.Errorf("%w: load account from %s", ErrInvalidTransition, a.state)
	}

	account, err := call[Account](ctx, a.client, Op(OpGetAccount), nil)
	if err != nil {
		return Account{}, err
	}

	a.client.creds.setAccountID(account.ID)
	a.logger.Debug().Int("account_id", account.ID).Str("username", account.Username).Msg("Loaded account")
	return account, nil
}

// Resume restores previously saved credentials
func (a *Authenticator) Resume(creds Credentials) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.client.creds.replace(creds)
	a.err = nil
	if creds.HasSession() {
		a.state = StateSessionActive
	} else {
		a.state = StateIdle
	}
}

// LoginAsync runs Login on its own goroutine and delivers the resulting
// credentials to completion on the client's executor
func (a *Authenticator) LoginAsync(ctx context.Context, username, password string, completion func(Credentials, error)) *Call[Credentials] {
	return Go(ctx, a.client.executor, func(ctx context.Context) (Credentials, error) {
		if err := a.Login(ctx, username, password); err != nil {
			return a.client.creds.Snapshot(), err
		}
		return a.client.creds.Snapshot(), nil
	}, completion)
}

// LogoutAsync runs Logout on its own goroutine and delivers its result to
// completion on the client's executor
func (a *Authenticator) LogoutAsync(ctx context.Context, completion func(error)) *Call[struct{}] {
	var done func(struct{}, error)
	if completion != nil {
		done = func(_ struct{}, err error) { completion(err) }
	}
	return Go(ctx, a.client.executor, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.Logout(ctx)
	}, done)
}

func (a *Authenticator) requestToken(ctx context.Context) error {
	if a.state != StateIdle && a.state != StateFailed {
		return fmt.Errorf("%w: request token from %s", ErrInvalidTransition, a.state)
	}

	resp, err := call[RequestTokenResponse](ctx, a.client, Op(OpGetRequestToken), nil)
	if err != nil {
		return a.fail(err)
	}

	a.client.creds.setRequestToken(resp.RequestToken)
	a.transition(StateTokenRequested)
	return nil
}

func (a *Authenticator) validateLogin(ctx context.Context, username, password string) error {
	if a.state != StateTokenRequested {
		return fmt.Errorf("%w: validate login from %s", ErrInvalidTransition, a.state)
	}

	body := LoginRequest{
		Username:     username,
		Password:     password,
		RequestToken: a.client.creds.Snapshot().RequestToken,
	}
	resp, err := call[RequestTokenResponse](ctx, a.client, Op(OpLogin), body)
	if err != nil {
		return a.fail(err)
	}

	a.client.creds.setRequestToken(resp.RequestToken)
	a.transition(StateLoggedIn)
	return nil
}

func (a *Authenticator) createSession(ctx context.Context) error {
	if a.state != StateLoggedIn && a.state != StateTokenRequested {
		return fmt.Errorf("%w: create session from %s", ErrInvalidTransition, a.state)
	}

	body := SessionRequest{RequestToken: a.client.creds.Snapshot().RequestToken}
	resp, err := call[SessionResponse](ctx, a.client, Op(OpCreateSession), body)
	if err != nil {
		return a.fail(err)
	}

	a.client.creds.setSessionID(resp.SessionID)
	a.transition(StateSessionActive)
	return nil
}

func (a *Authenticator) transition(to AuthState) {
	a.logger.Debug().Stringer("from", a.state).Stringer("to", to).Msg("Auth state changed")
	a.state = to
	a.err = nil
}

func (a *Authenticator) fail(err error) error {
	a.logger.Debug().Err(err).Stringer("from", a.state).Msg("Auth step failed")
	a.state = StateFailed
	a.err = err
	return err
}
