// Package tmdb provides a client for The Movie Database (TMDB) v3 API.
//
// It covers the user-scoped part of the API: the request token, login and
// session workflow, the account watchlist and favorites, movie search,
// marking movies, and poster downloads.
//
// # Architecture
//
// The package is organized into several components:
//
//   - Builder: Maps logical operations to URLs and HTTP methods without I/O
//   - Dispatcher: Issues requests and decodes typed responses, falling back to
//     the API status payload when the expected shape does not match
//   - CredentialStore: The account id, request token and session id shared by
//     every call of one client
//   - Authenticator: The login state machine and the only credential writer
//   - Executor: Runs completions of asynchronous calls on one goroutine
//   - Metrics: Optional Prometheus collectors for every dispatch
//
// # Usage
//
//	logger := zerolog.New(os.Stdout)
//	client, err := tmdb.NewClient(
//		"your-api-key",
//		logger,
//		tmdb.WithTimeout(30*time.Second),
//		tmdb.WithRateLimit(40, 10),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close(context.Background())
//
//	ctx := context.Background()
//	if err := client.Auth().Login(ctx, "user", "password"); err != nil {
//		log.Fatal(tmdb.Message(err))
//	}
//
//	movies, err := client.GetWatchlist(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//
// # Error Handling
//
// Every failure is one of:
//
//   - TransportError: No usable response (network, timeout, cancellation,
//     rate limiter, open circuit breaker, empty body)
//   - RemoteError: The API answered with its status payload
//   - DecodeError: The body matched neither the expected nor the status shape
//   - ErrNoSession, ErrInvalidOperation, ErrInvalidTransition: Raised before
//     any request is sent
//
// Message turns any of them into text suitable for end users:
//
//	var remoteErr *tmdb.RemoteError
//	if errors.As(err, &remoteErr) && remoteErr.IsInvalidCredentials() {
//		// Ask for the password again
//	}
package tmdb
