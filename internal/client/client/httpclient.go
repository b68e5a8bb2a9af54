package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/dktlearn/internal/client/models"
	"github.com/dmitrijs2005/dktlearn/internal/common"
	"github.com/dmitrijs2005/dktlearn/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// HTTPClient talks to the backend's REST API. It attaches the stored bearer
// token to every call, unwraps response envelopes, normalizes failures into
// *APIError, and renews the access token once when a call comes back 401.
type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
	tokens  TokenStore
	logger  logging.Logger
	limiter *rate.Limiter

	onSessionExpired func(ctx context.Context)

	refreshMu sync.Mutex
	state     stateHolder
}

// Option customizes an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

// WithTimeout bounds every request, including reading the response.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger sets the logger used for request tracing and refresh events.
func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.logger = l }
}

// WithRateLimit paces outgoing requests to rps per second with the given
// burst. rps <= 0 disables pacing.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *HTTPClient) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithSessionExpiredHook registers fn to run after a failed token renewal has
// cleared the session. The CLI uses it to return to the login prompt.
func WithSessionExpiredHook(fn func(ctx context.Context)) Option {
	return func(c *HTTPClient) { c.onSessionExpired = fn }
}

// NewHTTPClient returns a client for the API rooted at baseURL.
func NewHTTPClient(baseURL string, tokens TokenStore, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be an absolute http(s) URL", baseURL)
	}
	if tokens == nil {
		return nil, errors.New("token store is required")
	}

	c := &HTTPClient{
		baseURL: u,
		http:    &http.Client{Timeout: 30 * time.Second},
		tokens:  tokens,
		logger:  logging.Discard(),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// request is one logical API call. It may be sent twice: once, and once more
// after a token refresh.
type request struct {
	method  string
	path    string
	body    []byte
	retried bool
}

func (r *request) anonymous() bool {
	_, ok := anonymousPaths[r.path]
	return ok
}

// call marshals in, runs the request through do and decodes the unwrapped
// response into out (either may be nil).
func (c *HTTPClient) call(ctx context.Context, method, path string, in, out any) error {
	r := &request{method: method, path: path}
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return newLocalError(fmt.Errorf("encode request: %w", err))
		}
		r.body = b
	}

	raw, err := c.do(ctx, r)
	if err != nil {
		return err
	}
	if err := decodeInto(raw, out); err != nil {
		return newLocalError(err)
	}
	return nil
}

// do sends r with the current bearer token; anonymous paths go without one.
// A 401 on a request that carries
// a session, has not been retried, and is not itself a refresh, triggers one
// token renewal followed by exactly one replay.
func (c *HTTPClient) do(ctx context.Context, r *request) ([]byte, error) {
	cred, err := c.tokens.Credential(ctx)
	if err != nil {
		return nil, newLocalError(fmt.Errorf("read session: %w", err))
	}

	bearer := cred.AccessToken
	if r.anonymous() {
		bearer = ""
	}
	status, body, err := c.send(ctx, r, bearer)
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized && !r.retried && !r.anonymous() {
		r.retried = true

		renewed, err := c.refresh(ctx, cred.AccessToken)
		if err != nil {
			return nil, err
		}

		// the renewal went through, whatever the replay returns
		status, body, err = c.send(ctx, r, renewed.AccessToken)
		c.state.set(StateIdle)
		if err != nil {
			return nil, err
		}
	}

	if status < 200 || status > 299 {
		return nil, newStatusError(status, body)
	}
	return body, nil
}

// send performs a single HTTP round trip and returns status and body.
func (c *HTTPClient) send(ctx context.Context, r *request, accessToken string) (int, []byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, nil, newLocalError(err)
		}
	}

	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL.String()+r.path, body)
	if err != nil {
		return 0, nil, newLocalError(err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeader, requestID)
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set(common.AuthorizationHeader, common.BearerPrefix+accessToken)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug(ctx, "request failed", "method", r.method, "path", r.path, "request_id", requestID, "error", err)
		if errors.Is(err, context.Canceled) {
			return 0, nil, newLocalError(err)
		}
		return 0, nil, newTransportError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, newTransportError(err)
	}

	c.logger.Debug(ctx, "request done",
		"method", r.method,
		"path", r.path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"retried", r.retried,
		"elapsed", time.Since(started),
	)
	return resp.StatusCode, respBody, nil
}

// tokenResponse accepts both names the backend uses for the access token.
type tokenResponse struct {
	AccessToken  string `json:"accessToken"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

func (t tokenResponse) credential() models.Credential {
	access := t.AccessToken
	if access == "" {
		access = t.Token
	}
	return models.Credential{AccessToken: access, RefreshToken: t.RefreshToken}
}
