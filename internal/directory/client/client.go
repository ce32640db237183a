// Package client fetches raw employee records and named-list trees from
// the remote directory service. The client holds no credentials and no
// cache state; both belong to its callers.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"directory-enricher/internal/circuitbreaker"
	"directory-enricher/internal/common/errors"
	commonhttp "directory-enricher/internal/common/http"
	"directory-enricher/internal/common/logging"
	"directory-enricher/internal/common/utils"
	"directory-enricher/internal/directory"
)

// Credentials authenticate one request against the directory service.
// They are supplied per call by the credential collaborator.
type Credentials struct {
	BaseURL    string
	AuthScheme string
	Token      string
}

// AuthorizationHeader renders the Authorization header value, defaulting
// the scheme to Bearer.
func (c Credentials) AuthorizationHeader() string {
	scheme := c.AuthScheme
	if scheme == "" {
		scheme = "Bearer"
	}
	return scheme + " " + c.Token
}

// Client talks HTTP to the directory service with bounded timeouts,
// retry with backoff and a circuit breaker.
type Client struct {
	http    *http.Client
	breaker *circuitbreaker.Breaker
	retry   utils.RetryConfig
	logger  logging.Logger
}

// Option modifies the client during construction
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (used by tests)
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.http = httpClient
	}
}

// WithRetryConfig overrides the retry policy
func WithRetryConfig(cfg utils.RetryConfig) Option {
	return func(c *Client) {
		c.retry = cfg
	}
}

// WithBreaker replaces the default circuit breaker
func WithBreaker(breaker *circuitbreaker.Breaker) Option {
	return func(c *Client) {
		c.breaker = breaker
	}
}

// New creates a directory client with the standard 10s connect / 30s
// request timeouts.
func New(logger logging.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}

	c := &Client{
		http:   commonhttp.NewClient(),
		retry:  utils.DefaultRetryConfig(),
		logger: logger.WithFields(logging.Field{Key: "component", Value: "directory-client"}),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.breaker == nil {
		c.breaker = circuitbreaker.New("directory-service", circuitbreaker.DefaultConfig(), logger)
	}

	return c
}

// FetchEmployee retrieves a single raw record by email. Returns a
// not_found error when the service answers with an empty result set.
func (c *Client) FetchEmployee(ctx context.Context, creds Credentials, email string) (*directory.RawEmployeeRecord, error) {
	identity := directory.NormalizeIdentity(email)
	if identity == "" {
		return nil, errors.ValidationError("identity must not be blank")
	}

	query := url.Values{}
	query.Set("email", identity)

	body, err := c.getJSON(ctx, creds, "/people", query)
	if err != nil {
		return nil, err
	}

	records, err := decodePeople(body)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.NotFoundError("employee").WithContext("email", identity)
	}

	record := records[0]
	return &record, nil
}

// FetchAllEmployees retrieves the full directory listing. Records
// missing an email have already been dropped by decoding.
func (c *Client) FetchAllEmployees(ctx context.Context, creds Credentials) ([]directory.RawEmployeeRecord, error) {
	body, err := c.getJSON(ctx, creds, "/people", nil)
	if err != nil {
		return nil, err
	}

	return decodePeople(body)
}

// FetchNamedList retrieves one category tree by name.
func (c *Client) FetchNamedList(ctx context.Context, creds Credentials, category string) (*directory.NamedList, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, errors.ValidationError("category must not be blank")
	}

	body, err := c.getJSON(ctx, creds, "/company/named-lists/"+url.PathEscape(category), nil)
	if err != nil {
		return nil, err
	}

	return decodeNamedList(body, category)
}

// getJSON performs one authenticated GET with retry and circuit breaker
// protection and returns the raw body of a 2xx response.
func (c *Client) getJSON(ctx context.Context, creds Credentials, path string, query url.Values) ([]byte, error) {
	requestURL := strings.TrimRight(creds.BaseURL, "/") + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	var body []byte
	retryCfg := c.retry
	retryCfg.RetryableErrors = isRetryable

	err := utils.RetryWithBackoff(ctx, retryCfg, func() error {
		return c.breaker.Execute(func() error {
			var reqErr error
			body, reqErr = c.doRequest(ctx, creds, requestURL)
			return reqErr
		})
	})
	if err != nil {
		c.logger.Warn("Directory request failed",
			logging.Field{Key: "url", Value: requestURL},
			logging.Field{Key: "error", Value: err.Error()},
		)
		return nil, unwrapRetry(err)
	}

	return body, nil
}

func (c *Client) doRequest(ctx context.Context, creds Credentials, requestURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, errors.InternalError("failed to create request", err)
	}

	req.Header.Set("Authorization", creds.AuthorizationHeader())
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.TransportError("directory request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.TransportError("failed to read directory response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.UpstreamStatusError(resp.StatusCode, truncate(string(body), 512))
	}

	return body, nil
}

// isRetryable retries transport failures and 5xx answers; 4xx answers
// and decode problems fail the call immediately.
func isRetryable(err error) bool {
	if errors.IsType(err, errors.ErrTypeTransport) {
		return true
	}
	if status := errors.UpstreamStatus(err); status >= 500 || status == http.StatusTooManyRequests {
		return true
	}
	return false
}

// unwrapRetry recovers the typed error hidden behind the retry wrapper
// so callers can classify the failure.
func unwrapRetry(err error) error {
	var appErr *errors.AppError
	for unwrapped := err; unwrapped != nil; {
		if e, ok := unwrapped.(*errors.AppError); ok {
			appErr = e
			break
		}
		u, ok := unwrapped.(interface{ Unwrap() error })
		if !ok {
			break
		}
		unwrapped = u.Unwrap()
	}
	if appErr != nil {
		return appErr
	}
	return errors.TransportError(fmt.Sprintf("directory request failed: %v", err), err)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
