package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

const (
	loginPath       = "/auth/login"
	registerPath    = "/auth/register"
	currentUserPath = "/users/me"
)

// Client is the typed surface over the HCAS REST API. Authentication
// endpoints return the parsed payload; credential persistence stays with the
// Manager, which owns the store.
type Client struct {
	cfg    Config
	http   *http.Client
	logger Logger
}

// ClientOption customizes the client
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client. The caller is
// responsible for wiring a Transport into it if bearer attachment and
// refresh-on-401 are still wanted.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithClientLogger overrides the logger
func WithClientLogger(logger Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient builds a client whose requests go through the given transport
func NewClient(transport *Transport, cfg Config, opts ...ClientOption) *Client {
	cfg = GetDefaultConfig(cfg)

	c := &Client{
		cfg:    cfg,
		logger: defLogger{},
		http: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c
}

// AuthResult is the response of the login and register endpoints
type AuthResult struct {
	User         *UserProfile `json:"user"`
	Token        string       `json:"token"`
	RefreshToken string       `json:"refresh_token,omitempty"`
}

// Login exchanges credentials for a token pair and the user profile
func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	out := &AuthResult{}
	if err := c.do(ctx, http.MethodPost, loginPath, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Register creates a patient account. The submitted role is pinned to
// patient regardless of what the caller set.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	out := &AuthResult{}
	if err := c.do(ctx, http.MethodPost, registerPath, req.normalized(), out); err != nil {
		return nil, err
	}
	return out, nil
}

// CurrentUser fetches the authoritative profile of the session's user
func (c *Client) CurrentUser(ctx context.Context) (*UserProfile, error) {
	var out struct {
		User *UserProfile `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, currentUserPath, nil, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

// GetJSON issues an authenticated GET against path, decoding into out. The
// placeholder console modules (patients, appointments, records, pharmacy)
// build on this until they grow typed endpoints.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// PostJSON issues an authenticated POST against path
func (c *Client) PostJSON(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "unable to encode request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "unable to build request")
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// Session expiry surfaces here when a refresh failed mid-request.
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.decodeError(resp)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "unable to decode response body")
	}

	return nil
}

// decodeError turns a non-2xx response into a rich error carrying the
// server-supplied message, when the body has one.
func (c *Client) decodeError(resp *http.Response) error {
	var body struct {
		Message string `json:"message"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body)

	// The raw server message travels in metadata so the Manager can fall
	// back to an operation-specific string when the body had none.
	meta := map[string]any{
		"server_message": body.Message,
		"status":         resp.StatusCode,
	}

	if resp.StatusCode == http.StatusUnauthorized {
		message := body.Message
		if message == "" {
			message = "unauthorized"
		}
		return goerrors.New(message, goerrors.CategoryAuth).
			WithTextCode(textCodeBadCredentials).
			WithCode(goerrors.CodeUnauthorized).
			WithMetadata(meta)
	}

	message := body.Message
	if message == "" {
		message = fmt.Sprintf("request failed with status %d", resp.StatusCode)
	}

	return upstreamError(resp.StatusCode, message).WithMetadata(meta)
}
