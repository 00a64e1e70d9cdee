package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"adminconsole/internal/logging"

	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"
)

// DefaultTimeout bounds a single request when no timeout is configured.
const DefaultTimeout = 15 * time.Second

// DefaultSlowRequest is the duration above which a request is logged as slow.
const DefaultSlowRequest = 2 * time.Second

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 4 << 20

// ErrEmptyEnvelope is returned when a response carries neither result nor error.
var ErrEmptyEnvelope = errors.New("response has neither result nor error")

// HTTPClient talks to the API over HTTP/JSON.
type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
	slow    time.Duration
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithSlowThreshold sets when a request is logged as a warning.
func WithSlowThreshold(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d > 0 {
			c.slow = d
		}
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		if hc != nil {
			c.http = hc
		}
	}
}

// NewHTTPClient creates a client for the API rooted at baseURL.
func NewHTTPClient(baseURL string, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid api base url %q: scheme must be http or https", baseURL)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	c := &HTTPClient{
		baseURL: u,
		http:    &http.Client{Timeout: DefaultTimeout, Jar: jar},
		slow:    DefaultSlowRequest,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Login exchanges credentials for a session token.
func (c *HTTPClient) Login(ctx context.Context, creds Credentials) (LoginResult, error) {
	var res LoginResult
	err := c.do(ctx, http.MethodPost, "/login", "", nil, creds, &res)
	return res, err
}

// ListUsers fetches one page of users.
func (c *HTTPClient) ListUsers(ctx context.Context, token string, page, pageSize int) ([]User, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(pageSize))

	var res []User
	err := c.do(ctx, http.MethodGet, "/users", token, q, nil, &res)
	return res, err
}

// CreateUser creates a user and returns the stored record.
func (c *HTTPClient) CreateUser(ctx context.Context, token string, u User) (User, error) {
	var res User
	err := c.do(ctx, http.MethodPost, "/users", token, nil, u, &res)
	return res, err
}

// UpdateUser replaces the user with the given id.
func (c *HTTPClient) UpdateUser(ctx context.Context, token string, id int64, u User) (User, error) {
	var res User
	err := c.do(ctx, http.MethodPut, "/users/"+strconv.FormatInt(id, 10), token, nil, u, &res)
	return res, err
}

// DeleteUser removes the user with the given id.
func (c *HTTPClient) DeleteUser(ctx context.Context, token string, id int64) error {
	return c.do(ctx, http.MethodDelete, "/users/"+strconv.FormatInt(id, 10), token, nil, nil, nil)
}

func (c *HTTPClient) do(ctx context.Context, method, path, token string, query url.Values, body, out any) error {
	timer := logging.StartTimer(logging.CategoryAPI, method+" "+path)
	defer timer.StopWithThreshold(c.slow)

	u := *c.baseURL
	u.Path = u.Path + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	logging.APIDebug("%s %s request_id=%s", method, u.Path, requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		logging.Get(logging.CategoryAPI).Warn("%s %s failed: %v", method, u.Path, err)
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		logging.Get(logging.CategoryAPI).Warn("%s %s: status %d, undecodable body", method, u.Path, resp.StatusCode)
		return fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}

	if env.Error != nil {
		logging.API("%s %s -> error %d (%s)", method, u.Path, env.Error.Code, requestID)
		return env.Error
	}
	if env.Result == nil {
		return fmt.Errorf("%s %s (status %d): %w", method, path, resp.StatusCode, ErrEmptyEnvelope)
	}

	logging.APIDebug("%s %s -> %d", method, u.Path, resp.StatusCode)
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("failed to decode result: %w", err)
	}
	return nil
}
