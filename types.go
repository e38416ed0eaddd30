package session

import "fmt"

// Logger is the minimal logging surface this package needs. adapters/zerolog
// provides a structured implementation.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// CredentialStore is a durable key/value namespace for the token pair and the
// cached profile. It survives process restarts but carries no expiry logic;
// expiry is the Manager's concern. An empty value means the key is absent.
// Implementations must make each write immediately visible to subsequent
// reads and must be safe for concurrent use.
type CredentialStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(key string) error
}

// ExpiryHandler is invoked after an unrecoverable refresh failure, once both
// tokens have been cleared. It is the client-side analog of a hard redirect
// to the login entry point.
type ExpiryHandler func()

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] SESSION "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] SESSION "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] SESSION "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] SESSION "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
