package tmdb

import (
	"time"
)

// Option configures a Client.
type Option func(*clientOptions)

// clientOptions holds configuration options for the Client.
type clientOptions struct {
	timeout        time.Duration
	doer           Doer
	builder        Builder
	rateLimit      float64
	rateBurst      int
	breaker        *BreakerSettings
	metrics        *Metrics
	executor       Executor
	credentials    *CredentialStore
	markAcceptance MarkAcceptance
	userAgent      string
}

// BreakerSettings configures the circuit breaker guarding the transport
type BreakerSettings struct {
	// MaxFailures is the number of consecutive transport failures that open the circuit
	MaxFailures uint32
	// OpenTimeout is how long the circuit stays open before probing again
	OpenTimeout time.Duration
}

func defaultOptions() clientOptions {
	return clientOptions{
		timeout: 30 * time.Second,
		builder: Builder{
			BaseURL:      DefaultBaseURL,
			ImageBaseURL: DefaultImageBaseURL,
			WebAuthURL:   DefaultWebAuthURL,
			RedirectTo:   DefaultRedirectTo,
		},
		markAcceptance: DefaultMarkAcceptance(),
		userAgent:      "moviemanager",
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
// Ignored when WithDoer is used.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithDoer sets the HTTP client used for every request
func WithDoer(doer Doer) Option {
	return func(o *clientOptions) {
		o.doer = doer
	}
}

// WithBaseURL overrides the API base URL
func WithBaseURL(baseURL string) Option {
	return func(o *clientOptions) {
		if baseURL != "" {
			o.builder.BaseURL = baseURL
		}
	}
}

// WithImageBaseURL overrides the poster CDN base URL
func WithImageBaseURL(imageBaseURL string) Option {
	return func(o *clientOptions) {
		if imageBaseURL != "" {
			o.builder.ImageBaseURL = imageBaseURL
		}
	}
}

// WithWebAuth overrides the browser approval page and its redirect target
func WithWebAuth(webAuthURL, redirectTo string) Option {
	return func(o *clientOptions) {
		if webAuthURL != "" {
			o.builder.WebAuthURL = webAuthURL
		}
		o.builder.RedirectTo = redirectTo
	}
}

// WithRateLimit limits outgoing requests to perSecond with the given burst.
// A non-positive rate disables limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(o *clientOptions) {
		o.rateLimit = perSecond
		o.rateBurst = burst
	}
}

// WithCircuitBreaker guards the transport with a circuit breaker
func WithCircuitBreaker(settings BreakerSettings) Option {
	return func(o *clientOptions) {
		o.breaker = &settings
	}
}

// WithMetrics records dispatch metrics on m
func WithMetrics(m *Metrics) Option {
	return func(o *clientOptions) {
		o.metrics = m
	}
}

// WithExecutor sets the executor asynchronous completions are delivered on
func WithExecutor(exec Executor) Option {
	return func(o *clientOptions) {
		o.executor = exec
	}
}

// WithCredentials shares an existing credential store with the client
func WithCredentials(store *CredentialStore) Option {
	return func(o *clientOptions) {
		o.credentials = store
	}
}

// WithMarkAcceptance replaces the status codes treated as a successful mark
func WithMarkAcceptance(acceptance MarkAcceptance) Option {
	return func(o *clientOptions) {
		o.markAcceptance = acceptance
	}
}

// WithUserAgent sets a custom user agent string.
func WithUserAgent(userAgent string) Option {
	return func(o *clientOptions) {
		o.userAgent = userAgent
	}
}
