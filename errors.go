package session

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeSessionExpired  = "SESSION_EXPIRED"
	textCodeAuthInFlight    = "AUTH_IN_FLIGHT"
	textCodeNoRefreshToken  = "NO_REFRESH_TOKEN"
	textCodeNotAuthed       = "NOT_AUTHENTICATED"
	textCodeBadCredentials  = "INVALID_CREDENTIALS"
	textCodeUpstreamFailure = "UPSTREAM_FAILURE"
)

// ErrNotAuthenticated is returned when an operation requires an active session.
var ErrNotAuthenticated = goerrors.New("not authenticated", goerrors.CategoryAuth).
	WithTextCode(textCodeNotAuthed).
	WithCode(goerrors.CodeUnauthorized)

// ErrAuthInFlight is returned when a login or registration is attempted while
// another one is still pending. Attempts are serialized, not queued.
var ErrAuthInFlight = goerrors.New("another authentication attempt is in flight", goerrors.CategoryConflict).
	WithTextCode(textCodeAuthInFlight).
	WithCode(goerrors.CodeConflict)

// ErrNoRefreshToken is returned when a 401 cannot be recovered because the
// store holds no refresh token.
var ErrNoRefreshToken = goerrors.New("no refresh token available", goerrors.CategoryAuth).
	WithTextCode(textCodeNoRefreshToken).
	WithCode(goerrors.CodeUnauthorized)

// ErrSessionExpired is returned when a token refresh fails and the session is
// torn down. Callers receive this instead of the original 401.
var ErrSessionExpired = goerrors.New("session expired, re-authentication required", goerrors.CategoryAuth).
	WithTextCode(textCodeSessionExpired).
	WithCode(goerrors.CodeUnauthorized)

// IsSessionExpired checks whether err represents a fatal refresh failure.
func IsSessionExpired(err error) bool {
	if err == nil {
		return false
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == textCodeSessionExpired
	}
	return false
}

// IsAuthFailure checks for authentication-category errors (bad credentials,
// missing session). Authorization (role) failures are not errors in this
// package; they surface as redirects in the route guard.
func IsAuthFailure(err error) bool {
	if err == nil {
		return false
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.Category == goerrors.CategoryAuth
	}
	return false
}

// ServerMessage extracts the message the backend put in an error body, or
// falls back when there was none. This is what ends up in the session
// snapshot's Err field.
func ServerMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.Metadata != nil {
		if msg, ok := richErr.Metadata["server_message"].(string); ok && msg != "" {
			return msg
		}
	}

	return fallback
}

// upstreamError maps any non-auth server failure, keeping the status code
// around for callers that branch on it.
func upstreamError(status int, message string) *goerrors.Error {
	if message == "" {
		message = "request failed"
	}

	return goerrors.New(message, goerrors.CategoryOperation).
		WithTextCode(textCodeUpstreamFailure).
		WithMetadata(map[string]any{
			"status": status,
		})
}
