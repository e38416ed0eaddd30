package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

const refreshPath = "/auth/refresh"

// Transport is an http.RoundTripper that attaches the stored access token to
// every outbound request and recovers from a single 401 by refreshing the
// token and re-issuing the request exactly once. Concurrent 401s share one
// in-flight refresh; issuing one refresh per failed request would race
// refresh-token rotation.
type Transport struct {
	cfg     Config
	store   CredentialStore
	base    http.RoundTripper
	refresh *http.Client
	group   singleflight.Group
	logger  Logger
	onExpir ExpiryHandler
}

// TransportOption customizes the transport
type TransportOption func(*Transport)

// WithTransportBase sets the underlying RoundTripper (default http.DefaultTransport)
func WithTransportBase(rt http.RoundTripper) TransportOption {
	return func(t *Transport) {
		if rt != nil {
			t.base = rt
		}
	}
}

// WithTransportLogger overrides the logger
func WithTransportLogger(logger Logger) TransportOption {
	return func(t *Transport) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithExpiryHandler registers the hook fired after an unrecoverable refresh
// failure, once both tokens are cleared.
func WithExpiryHandler(h ExpiryHandler) TransportOption {
	return func(t *Transport) {
		if h != nil {
			t.onExpir = h
		}
	}
}

// NewTransport returns a transport bound to the given credential store
func NewTransport(store CredentialStore, cfg Config, opts ...TransportOption) *Transport {
	cfg = GetDefaultConfig(cfg)

	t := &Transport{
		cfg:    cfg,
		store:  store,
		base:   http.DefaultTransport,
		logger: defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}

	// The refresh call goes through a bare client so a 401 on the refresh
	// endpoint can never re-enter this transport.
	t.refresh = &http.Client{Timeout: cfg.Timeout}

	return t
}

// RoundTrip implements http.RoundTripper
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.store.Get(t.cfg.AccessTokenKey)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "unable to read access token")
	}

	outbound := t.prepare(req, token)

	resp, err := t.base.RoundTrip(outbound)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	// A request whose body cannot be replayed is not retried; the caller
	// gets the original 401.
	if req.Body != nil && req.GetBody == nil {
		return resp, nil
	}

	refreshToken, err := t.store.Get(t.cfg.RefreshTokenKey)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "unable to read refresh token")
	}

	if refreshToken == "" {
		return resp, nil
	}

	drain(resp)

	newToken, err := t.refreshAccessToken(req.Context(), refreshToken)
	if err != nil {
		// Refresh failure is fatal for the session: the caller sees the
		// refresh error, never the original 401.
		return nil, err
	}

	retry := t.prepare(req, newToken)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "unable to replay request body")
		}
		retry.Body = body
	}

	return t.base.RoundTrip(retry)
}

// prepare clones the request and attaches the bearer credential plus a
// correlation ID. RoundTrippers must not mutate the caller's request.
func (t *Transport) prepare(req *http.Request, token string) *http.Request {
	outbound := req.Clone(req.Context())

	if token != "" {
		outbound.Header.Set("Authorization", t.cfg.AuthScheme+" "+token)
	}

	if outbound.Header.Get("X-Request-ID") == "" {
		outbound.Header.Set("X-Request-ID", uuid.NewString())
	}

	return outbound
}

// refreshAccessToken coalesces concurrent refreshes into a single upstream
// call; every waiter shares its outcome.
func (t *Transport) refreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	token, err, _ := t.group.Do("refresh", func() (any, error) {
		return t.doRefresh(ctx, refreshToken)
	})
	if err != nil {
		return "", err
	}

	return token.(string), nil
}

func (t *Transport) doRefresh(ctx context.Context, refreshToken string) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"refresh_token": refreshToken,
	})
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "unable to encode refresh request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.cfg.BaseURL+refreshPath, bytes.NewReader(payload))
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "unable to build refresh request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.refresh.Do(req)
	if err != nil {
		return "", t.expireSession(goerrors.Wrap(err, goerrors.CategoryAuth, "token refresh failed"))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", t.expireSession(goerrors.New(
			fmt.Sprintf("token refresh rejected with status %d", resp.StatusCode),
			goerrors.CategoryAuth,
		))
	}

	var body struct {
		Token        string `json:"token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Token == "" {
		return "", t.expireSession(goerrors.New("token refresh returned no token", goerrors.CategoryAuth))
	}

	if err := t.store.Set(t.cfg.AccessTokenKey, body.Token); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "unable to persist refreshed token")
	}

	// Rotated refresh tokens replace the stored one when the server sends them.
	if body.RefreshToken != "" {
		if err := t.store.Set(t.cfg.RefreshTokenKey, body.RefreshToken); err != nil {
			return "", goerrors.Wrap(err, goerrors.CategoryInternal, "unable to persist rotated refresh token")
		}
	}

	return body.Token, nil
}

// expireSession clears the credential pair and notifies the expiry hook. The
// returned error always carries the session-expired text code.
func (t *Transport) expireSession(cause error) error {
	if err := t.store.Remove(t.cfg.AccessTokenKey); err != nil {
		t.logger.Error("expire session: remove access token: %v", err)
	}
	if err := t.store.Remove(t.cfg.RefreshTokenKey); err != nil {
		t.logger.Error("expire session: remove refresh token: %v", err)
	}

	if t.onExpir != nil {
		t.onExpir()
	}

	t.logger.Warn("session expired, credentials cleared: %v", cause)

	var richErr *goerrors.Error
	if goerrors.As(cause, &richErr) {
		return richErr.WithTextCode(textCodeSessionExpired).WithCode(goerrors.CodeUnauthorized)
	}

	return goerrors.Wrap(cause, goerrors.CategoryAuth, "session expired").
		WithTextCode(textCodeSessionExpired).
		WithCode(goerrors.CodeUnauthorized)
}

func drain(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}
