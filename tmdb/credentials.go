package tmdb

import "sync"

// Credentials is the authentication state shared by all calls of one client.
// The zero value is the logged-out state.
type Credentials struct {
	AccountID    int    `json:"account_id"`
	RequestToken string `json:"request_token,omitempty"`
	SessionID    string `json:"session_id"`
}

// HasSession reports whether a session id is present
func (c Credentials) HasSession() bool {
	return c.SessionID != ""
}

// CredentialStore holds one credential set. Readers take snapshots; only
// the Authenticator writes.
type CredentialStore struct {
	mu    sync.RWMutex
	creds Credentials
}

// NewCredentialStore creates an empty credential store
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{}
}

// Snapshot returns a copy of the current credentials
func (s *CredentialStore) Snapshot() Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds
}

func (s *CredentialStore) update(fn func(*Credentials)) {
	s.mu.Lock()
	fn(&s.creds)
	s.mu.Unlock()
}

func (s *CredentialStore) setRequestToken(token string) {
	s.update(func(c *Credentials) { c.RequestToken = token })
}

func (s *CredentialStore) setSessionID(id string) {
	s.update(func(c *Credentials) { c.SessionID = id })
}

func (s *CredentialStore) setAccountID(id int) {
	s.update(func(c *Credentials) { c.AccountID = id })
}

func (s *CredentialStore) replace(creds Credentials) {
	s.update(func(c *Credentials) { *c = creds })
}

// clearSession drops the session id and request token. The account id is
// kept; it is only meaningful together with a session.
func (s *CredentialStore) clearSession() {
	s.update(func(c *Credentials) {
		c.SessionID = ""
		c.RequestToken = ""
	})
}
