package tmdb

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Client represents a TMDB API client bound to one credential store
type Client struct {
	builder    Builder
	dispatcher *Dispatcher
	creds      *CredentialStore
	executor   Executor
	acceptance MarkAcceptance
	auth       *Authenticator
	logger     zerolog.Logger
}

// NewClient creates a new TMDB client. It performs no connection test; the
// first call reports connectivity problems.
func NewClient(apiKey string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("TMDB API key is required")
	}

	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	options.builder.APIKey = apiKey

	creds := options.credentials
	if creds == nil {
		creds = NewCredentialStore()
	}

	executor := options.executor
	if executor == nil {
		executor = NewSerialExecutor()
	}

	c := &Client{
		builder:    options.builder,
		dispatcher: newDispatcher(options, logger),
		creds:      creds,
		executor:   executor,
		acceptance: options.markAcceptance,
		logger:     logger,
	}
	c.auth = newAuthenticator(c)

	return c, nil
}

// Auth returns the authentication workflow of this client
func (c *Client) Auth() *Authenticator {
	return c.auth
}

// Credentials returns a snapshot of the current credentials
func (c *Client) Credentials() Credentials {
	return c.creds.Snapshot()
}

// Executor returns the executor asynchronous completions run on
func (c *Client) Executor() Executor {
	return c.executor
}

// Close stops the completion executor after running queued completions
func (c *Client) Close(ctx context.Context) error {
	return c.executor.Stop(ctx)
}

// endpoint builds op against the current credentials
func (c *Client) endpoint(op Operation) (Endpoint, error) {
	return c.builder.Build(op, c.creds.Snapshot())
}

// call builds op and dispatches it, decoding the response as T
func call[T any](ctx context.Context, c *Client, op Operation, body any) (T, error) {
	value, _, err := callWithStatus[T](ctx, c, op, body)
	return value, err
}

// callWithStatus is call that also returns the HTTP status of the response
func callWithStatus[T any](ctx context.Context, c *Client, op Operation, body any) (T, int, error) {
	endpoint, err := c.endpoint(op)
	if err != nil {
		var zero T
		return zero, 0, err
	}

	return dispatch[T](ctx, c.dispatcher, op.Kind.String(), Request{
		Method: endpoint.Method,
		URL:    endpoint.URL,
		Body:   body,
	})
}
