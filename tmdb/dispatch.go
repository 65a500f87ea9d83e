package tmdb

//go:generate mockgen -destination=mocks/doer.go -package=mocks github.com/s0up4200/moviemanager/tmdb Doer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// maxBodySize caps how much of a response is read into memory
const maxBodySize = 16 << 20

// Doer performs HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Request is a single HTTP exchange issued by the dispatcher
type Request struct {
	Method string
	URL    string
	// Body is JSON encoded when non-nil
	Body any
}

type rawResponse struct {
	status int
	body   []byte
}

// Dispatcher issues requests and decodes their responses. It never touches
// credentials.
type Dispatcher struct {
	http      Doer
	limiter   *rate.Limiter
	breaker   *gobreaker.CircuitBreaker[*rawResponse]
	validate  *validator.Validate
	metrics   *Metrics
	userAgent string
	logger    zerolog.Logger
}

// newDispatcher wires the transport stack described by opts
func newDispatcher(opts clientOptions, logger zerolog.Logger) *Dispatcher {
	doer := opts.doer
	if doer == nil {
		doer = &http.Client{Timeout: opts.timeout}
	}

	d := &Dispatcher{
		http:      doer,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		metrics:   opts.metrics,
		userAgent: opts.userAgent,
		logger:    logger,
	}

	if opts.rateLimit > 0 {
		burst := opts.rateBurst
		if burst < 1 {
			burst = 1
		}
		d.limiter = rate.NewLimiter(rate.Limit(opts.rateLimit), burst)
	}

	if opts.breaker != nil {
		d.breaker = newBreaker(*opts.breaker, opts.metrics, logger)
	}

	return d
}

func newBreaker(settings BreakerSettings, metrics *Metrics, logger zerolog.Logger) *gobreaker.CircuitBreaker[*rawResponse] {
	maxFailures := settings.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}

	const name = "tmdb"
	metrics.breakerState(name, 0)

	return gobreaker.NewCircuitBreaker[*rawResponse](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		// A cancelled caller says nothing about the health of the API
		IsExcluded: func(err error) bool {
			return errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
			metrics.breakerState(name, breakerGauge(to))
		},
	})
}

func breakerGauge(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// Dispatch performs req and decodes the response as T. When the body does
// not match T but matches the API status payload the result is a
// *RemoteError; when it matches neither it is a *DecodeError. Any failure to
// obtain a body is a *TransportError.
func Dispatch[T any](ctx context.Context, d *Dispatcher, op string, req Request) (T, error) {
	value, _, err := dispatch[T](ctx, d, op, req)
	return value, err
}

// dispatch is Dispatch that also reports the HTTP status of the response,
// or 0 when none was received
func dispatch[T any](ctx context.Context, d *Dispatcher, op string, req Request) (T, int, error) {
	var zero T
	start := time.Now()

	resp, err := d.roundTrip(ctx, req)
	if err != nil {
		d.finish(op, req, outcomeTransport, 0, start, err)
		return zero, 0, &TransportError{Op: op, Err: err}
	}

	value, decodeErr := decodeAs[T](d.validate, resp.body)
	if decodeErr == nil {
		d.finish(op, req, outcomeSuccess, resp.status, start, nil)
		return value, resp.status, nil
	}

	if status, err := decodeAs[StatusResponse](d.validate, resp.body); err == nil {
		remoteErr := &RemoteError{
			Op:         op,
			HTTPStatus: resp.status,
			Code:       status.StatusCode,
			Message:    status.StatusMessage,
		}
		d.finish(op, req, outcomeRemote, resp.status, start, remoteErr)
		return zero, resp.status, remoteErr
	}

	err = &DecodeError{Op: op, Err: decodeErr}
	d.finish(op, req, outcomeDecode, resp.status, start, err)
	return zero, resp.status, err
}

// fetch performs a GET and returns the raw body. Non-2xx responses are
// reported as *RemoteError.
func (d *Dispatcher) fetch(ctx context.Context, op, target string) ([]byte, error) {
	start := time.Now()
	req := Request{Method: http.MethodGet, URL: target}

	resp, err := d.roundTrip(ctx, req)
	if err != nil {
		d.finish(op, req, outcomeTransport, 0, start, err)
		return nil, &TransportError{Op: op, Err: err}
	}

	if resp.status < 200 || resp.status > 299 {
		remoteErr := &RemoteError{Op: op, HTTPStatus: resp.status}
		if status, err := decodeAs[StatusResponse](d.validate, resp.body); err == nil {
			remoteErr.Code = status.StatusCode
			remoteErr.Message = status.StatusMessage
		}
		d.finish(op, req, outcomeRemote, resp.status, start, remoteErr)
		return nil, remoteErr
	}

	d.finish(op, req, outcomeSuccess, resp.status, start, nil)
	return resp.body, nil
}

func (d *Dispatcher) roundTrip(ctx context.Context, req Request) (*rawResponse, error) {
	var payload []byte
	if req.Body != nil {
		var err error
		payload, err = json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	if d.breaker == nil {
		return d.send(ctx, req, payload)
	}
	return d.breaker.Execute(func() (*rawResponse, error) {
		return d.send(ctx, req, payload)
	})
}

func (d *Dispatcher) send(ctx context.Context, req Request, payload []byte) (*rawResponse, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json;charset=utf-8")
	}
	if d.userAgent != "" {
		httpReq.Header.Set("User-Agent", d.userAgent)
	}

	resp, err := d.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("HTTP %d: %w", resp.StatusCode, ErrEmptyBody)
	}

	return &rawResponse{status: resp.StatusCode, body: data}, nil
}

// decodeAs unmarshals data into T and checks its required members
func decodeAs[T any](v *validator.Validate, data []byte) (T, error) {
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return out, err
	}

	if err := v.Struct(out); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			// T is not a struct; nothing to check
			return out, nil
		}
		return out, err
	}
	return out, nil
}

func (d *Dispatcher) finish(op string, req Request, outcome string, status int, start time.Time, err error) {
	elapsed := time.Since(start)
	d.metrics.observe(op, outcome, elapsed)

	event := d.logger.Debug()
	if err != nil {
		event = event.Err(err)
	}
	event.
		Str("operation", op).
		Str("method", req.Method).
		Str("url", redactURL(req.URL)).
		Int("status", status).
		Str("outcome", outcome).
		Dur("elapsed", elapsed).
		Msg("TMDB request")
}

// redactURL masks secrets carried in the query string
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid url>"
	}

	query := u.Query()
	for _, key := range []string{"api_key", "session_id"} {
		if query.Has(key) {
			query.Set(key, "REDACTED")
		}
	}
	u.RawQuery = query.Encode()
	return u.String()
}
