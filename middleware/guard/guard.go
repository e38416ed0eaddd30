// Package guard is the route-gating middleware for the admin console. It
// consumes the session Manager's state: sessions still initializing get a
// neutral waiting response, anonymous sessions are redirected to the login
// entry point with the original location preserved, and authenticated
// sessions lacking the route's role are sent to the unauthorized page.
package guard

import (
	"context"
	"net/http"
	"time"

	"github.com/goliatone/go-router"

	session "github.com/hcas-dev/go-session"
)

const (
	// DefaultLoginPath is where anonymous sessions are sent
	DefaultLoginPath = "/login"
	// DefaultUnauthorizedPath is the terminal page for role mismatches
	DefaultUnauthorizedPath = "/unauthorized"
	// DefaultReturnToCookie preserves the originally requested location
	DefaultReturnToCookie = "hcas_return_to"
	// DefaultContextKey is the locals key holding the current user
	DefaultContextKey = "current_user"
)

// SessionReader is the slice of the Manager the guard needs
type SessionReader interface {
	Snapshot() session.Snapshot
}

// Config drives one guarded route group
type Config struct {
	// Session is required; everything else has defaults
	Session SessionReader

	// Filter skips the guard entirely when it returns true
	Filter func(router.Context) bool

	// AllowedRoles lists the roles the route accepts; empty means any
	// authenticated user
	AllowedRoles []session.Role

	// MinimumRole gates by hierarchy instead of (or in addition to) an
	// explicit list
	MinimumRole session.Role

	LoginPath        string
	UnauthorizedPath string
	ReturnToCookie   string
	ContextKey       string

	// WaitingHandler renders the neutral indicator while the session is
	// still initializing. It must never redirect.
	WaitingHandler router.HandlerFunc

	// ContextEnricher propagates the session to the standard Go context
	ContextEnricher func(ctx context.Context, snap session.Snapshot) context.Context
}

// New returns the guard middleware
func New(config ...Config) router.MiddlewareFunc {
	cfg := GetDefaultConfig(config...)

	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return next(ctx)
			}

			snap := cfg.Session.Snapshot()

			if snap.IsLoading {
				return cfg.WaitingHandler(ctx)
			}

			if !snap.IsAuthenticated {
				setReturnTo(ctx, cfg.ReturnToCookie)
				return redirect(ctx, cfg.LoginPath)
			}

			if !allowed(snap.Role(), cfg) {
				return redirect(ctx, cfg.UnauthorizedPath)
			}

			ctx.Locals(cfg.ContextKey, snap.User)

			if cfg.ContextEnricher != nil {
				ctx.SetContext(cfg.ContextEnricher(ctx.Context(), snap))
			}

			return next(ctx)
		}
	}
}

// GetDefaultConfig normalizes the guard configuration
func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Session == nil {
		panic("GUARD: middleware configuration: Session is required.")
	}

	if cfg.LoginPath == "" {
		cfg.LoginPath = DefaultLoginPath
	}

	if cfg.UnauthorizedPath == "" {
		cfg.UnauthorizedPath = DefaultUnauthorizedPath
	}

	if cfg.ReturnToCookie == "" {
		cfg.ReturnToCookie = DefaultReturnToCookie
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = DefaultContextKey
	}

	if cfg.WaitingHandler == nil {
		cfg.WaitingHandler = func(ctx router.Context) error {
			return ctx.Status(http.StatusServiceUnavailable).SendString("Checking authentication...")
		}
	}

	return cfg
}

// ReturnTo reads and clears the preserved location, so the login flow can
// send the user back where they were headed.
func ReturnTo(ctx router.Context, cookieName string, def string) string {
	if cookieName == "" {
		cookieName = DefaultReturnToCookie
	}

	r := ctx.Cookies(cookieName)
	if r == "" {
		return def
	}

	clearCookie(ctx, cookieName)
	return r
}

func allowed(role session.Role, cfg Config) bool {
	if !role.OneOf(cfg.AllowedRoles...) {
		return false
	}

	if cfg.MinimumRole != "" && !role.IsAtLeast(cfg.MinimumRole) {
		return false
	}

	return true
}

func redirect(ctx router.Context, target string) error {
	statusCode := http.StatusSeeOther
	if ctx.Method() == string(router.GET) {
		statusCode = http.StatusFound
	}
	return ctx.Redirect(target, statusCode)
}

func setReturnTo(ctx router.Context, name string) {
	ctx.Cookie(&router.Cookie{
		Name:     name,
		Value:    ctx.OriginalURL(),
		Expires:  time.Now().Add(time.Minute * 5),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func clearCookie(ctx router.Context, name string) {
	ctx.Cookie(&router.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}
