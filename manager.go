package session

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	goerrors "github.com/goliatone/go-errors"
)

const (
	loginFallbackMessage    = "Login failed"
	registerFallbackMessage = "Registration failed"
)

// Manager owns the session lifecycle: login, registration, logout and the
// cached profile. It is constructed once at startup and injected into
// consumers; there is no ambient global session.
type Manager struct {
	mu       sync.Mutex
	cfg      Config
	store    CredentialStore
	client   *Client
	logger   Logger
	onExpiry ExpiryHandler
	base     http.RoundTripper

	status  Status
	user    *UserProfile
	lastErr string
}

// ManagerOption customizes the manager
type ManagerOption func(*Manager)

// WithLogger overrides the logger used by the manager and everything it builds
func WithLogger(logger Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithManagerExpiryHandler registers a hook invoked when the session dies to
// an unrecoverable refresh failure. Web front-ends use it to force a full
// navigation to the login entry point.
func WithManagerExpiryHandler(h ExpiryHandler) ManagerOption {
	return func(m *Manager) {
		if h != nil {
			m.onExpiry = h
		}
	}
}

// WithManagerClient injects a pre-built API client, bypassing the transport
// the manager would otherwise construct
func WithManagerClient(client *Client) ManagerOption {
	return func(m *Manager) {
		if client != nil {
			m.client = client
		}
	}
}

// WithManagerTransportBase sets the RoundTripper under the manager's
// transport (useful for tests)
func WithManagerTransportBase(rt http.RoundTripper) ManagerOption {
	return func(m *Manager) {
		if rt != nil {
			m.base = rt
		}
	}
}

// NewManager builds the session core around a credential store and restores
// any persisted session: a stored access token makes the session
// authenticated again without a network call.
func NewManager(store CredentialStore, cfg Config, opts ...ManagerOption) (*Manager, error) {
	cfg = GetDefaultConfig(cfg)

	m := &Manager{
		cfg:    cfg,
		store:  store,
		logger: defLogger{},
		status: StatusAnonymous,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	if m.client == nil {
		transportOpts := []TransportOption{
			WithTransportLogger(m.logger),
			WithExpiryHandler(m.handleExpiry),
		}
		if m.base != nil {
			transportOpts = append(transportOpts, WithTransportBase(m.base))
		}

		transport := NewTransport(store, cfg, transportOpts...)
		m.client = NewClient(transport, cfg, WithClientLogger(m.logger))
	}

	if err := m.restore(); err != nil {
		return nil, err
	}

	return m, nil
}

// Client exposes the API client sharing this manager's credentials, for the
// console modules that talk to other endpoints.
func (m *Manager) Client() *Client {
	return m.client
}

// Snapshot returns a point-in-time copy of the session state
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		User:            m.user,
		Status:          m.status,
		IsAuthenticated: m.status == StatusAuthenticated,
		IsLoading:       m.status == StatusAuthenticating,
		Err:             m.lastErr,
	}
}

// IsAuthenticated reports whether the session holds a usable credential
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status == StatusAuthenticated
}

// ClearError drops the last authentication error message
func (m *Manager) ClearError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastErr = ""
}

// Login authenticates with email and password. On success the token pair and
// profile are persisted and the session becomes authenticated. On failure the
// session stays anonymous and the snapshot carries the server's message, or a
// generic fallback. A login while another login or registration is pending is
// rejected with ErrAuthInFlight.
func (m *Manager) Login(ctx context.Context, req LoginRequest) (*UserProfile, error) {
	if err := req.Validate(); err != nil {
		// Field-level problems stay on the form; they never touch the
		// network or the session error banner.
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid login payload")
	}

	if err := m.beginAuth(); err != nil {
		return nil, err
	}

	result, err := m.client.Login(ctx, req)
	if err != nil {
		m.failAuth(loginFallbackMessage, err)
		return nil, err
	}

	return m.completeAuth(result)
}

// Register creates a patient account and logs it in. The payload's role is
// always submitted as patient, whatever the caller set.
func (m *Manager) Register(ctx context.Context, req RegisterRequest) (*UserProfile, error) {
	if err := req.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid registration payload")
	}

	if err := m.beginAuth(); err != nil {
		return nil, err
	}

	result, err := m.client.Register(ctx, req)
	if err != nil {
		m.failAuth(registerFallbackMessage, err)
		return nil, err
	}

	return m.completeAuth(result)
}

// Logout clears the credential pair and resets the session to anonymous. It
// is local-only: the server is not called, revoking the session server-side
// is explicitly out of scope.
func (m *Manager) Logout() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	err := m.clearCredentialsLocked()

	m.user = nil
	m.status = StatusAnonymous
	m.lastErr = ""

	return err
}

// CurrentUser refreshes the cached profile from the server. It is
// best-effort: on failure the previously known profile is kept and returned
// without error. Calling it on an anonymous session returns
// ErrNotAuthenticated.
func (m *Manager) CurrentUser(ctx context.Context) (*UserProfile, error) {
	m.mu.Lock()
	if m.status != StatusAuthenticated {
		m.mu.Unlock()
		return nil, ErrNotAuthenticated
	}
	cached := m.user
	m.mu.Unlock()

	token, err := m.store.Get(m.cfg.AccessTokenKey)
	if err != nil || token == "" {
		return cached, nil
	}

	user, err := m.client.CurrentUser(ctx)
	if err != nil {
		m.logger.Debug("current user refresh failed, keeping cached profile: %v", err)
		return cached, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// The session may have expired while the request was in flight; do not
	// resurrect it with a stale profile.
	if m.status != StatusAuthenticated {
		return nil, ErrNotAuthenticated
	}

	m.user = user
	m.persistProfileLocked(user)

	return user, nil
}

func (m *Manager) beginAuth() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.status == StatusAuthenticating {
		return ErrAuthInFlight
	}

	if !canTransition(m.status, StatusAuthenticating) {
		return ErrInvalidTransition.WithMetadata(map[string]any{
			"from": m.status,
			"to":   StatusAuthenticating,
		})
	}

	m.status = StatusAuthenticating
	m.lastErr = ""
	return nil
}

func (m *Manager) completeAuth(result *AuthResult) (*UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Set(m.cfg.AccessTokenKey, result.Token); err != nil {
		m.status = StatusAnonymous
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "unable to persist access token")
	}

	if result.RefreshToken != "" {
		if err := m.store.Set(m.cfg.RefreshTokenKey, result.RefreshToken); err != nil {
			m.status = StatusAnonymous
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "unable to persist refresh token")
		}
	}

	m.user = result.User
	m.status = StatusAuthenticated
	m.lastErr = ""
	m.persistProfileLocked(result.User)

	return result.User, nil
}

func (m *Manager) failAuth(fallback string, cause error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.clearCredentialsLocked(); err != nil {
		m.logger.Error("clear credentials after failed auth: %v", err)
	}

	m.user = nil
	m.status = StatusAnonymous
	m.lastErr = ServerMessage(cause, fallback)
}

// handleExpiry runs when the transport gives up on a refresh. Tokens are
// already cleared; this resets the in-memory session and chains to the
// caller-provided hook.
func (m *Manager) handleExpiry() {
	m.mu.Lock()
	m.user = nil
	m.status = StatusAnonymous
	m.lastErr = ""
	if err := m.store.Remove(m.cfg.ProfileKey); err != nil {
		m.logger.Error("remove cached profile on expiry: %v", err)
	}
	m.mu.Unlock()

	if m.onExpiry != nil {
		m.onExpiry()
	}
}

// restore rebuilds the session from the credential store at startup. It also
// repairs a violated invariant: a refresh token without an access token is
// dropped.
func (m *Manager) restore() error {
	token, err := m.store.Get(m.cfg.AccessTokenKey)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "unable to read persisted session")
	}

	if token == "" {
		if err := m.store.Remove(m.cfg.RefreshTokenKey); err != nil {
			m.logger.Error("drop orphaned refresh token: %v", err)
		}
		if err := m.store.Remove(m.cfg.ProfileKey); err != nil {
			m.logger.Error("drop orphaned profile: %v", err)
		}
		return nil
	}

	m.status = StatusAuthenticated
	m.user = m.loadProfile(token)

	return nil
}

// loadProfile prefers the cached profile; when absent it falls back to what
// the access token itself reveals.
func (m *Manager) loadProfile(token string) *UserProfile {
	if raw, err := m.store.Get(m.cfg.ProfileKey); err == nil && raw != "" {
		user := &UserProfile{}
		if err := json.Unmarshal([]byte(raw), user); err == nil {
			return user
		}
		m.logger.Warn("cached profile is corrupt, ignoring")
	}

	info, err := IntrospectToken(token)
	if err != nil {
		return nil
	}

	return &UserProfile{
		ID:   info.Subject,
		Role: info.Role,
	}
}

func (m *Manager) persistProfileLocked(user *UserProfile) {
	if user == nil {
		return
	}

	raw, err := json.Marshal(user)
	if err != nil {
		m.logger.Error("encode cached profile: %v", err)
		return
	}

	if err := m.store.Set(m.cfg.ProfileKey, string(raw)); err != nil {
		m.logger.Error("persist cached profile: %v", err)
	}
}

func (m *Manager) clearCredentialsLocked() error {
	var firstErr error

	for _, key := range []string{m.cfg.AccessTokenKey, m.cfg.RefreshTokenKey, m.cfg.ProfileKey} {
		if err := m.store.Remove(key); err != nil && firstErr == nil {
			firstErr = goerrors.Wrap(err, goerrors.CategoryInternal, "unable to clear credentials")
		}
	}

	return firstErr
}
