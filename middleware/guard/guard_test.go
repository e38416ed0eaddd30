package guard_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	session "github.com/hcas-dev/go-session"
	"github.com/hcas-dev/go-session/middleware/guard"
)

// staticSession is a SessionReader pinned to one snapshot
type staticSession struct {
	snap session.Snapshot
}

func (s staticSession) Snapshot() session.Snapshot {
	return s.snap
}

func anonymousSession() staticSession {
	return staticSession{snap: session.Snapshot{Status: session.StatusAnonymous}}
}

func loadingSession() staticSession {
	return staticSession{snap: session.Snapshot{
		Status:    session.StatusAuthenticating,
		IsLoading: true,
	}}
}

func authenticatedSession(role session.Role) staticSession {
	return staticSession{snap: session.Snapshot{
		User:            &session.UserProfile{ID: "u-1", Role: role},
		Status:          session.StatusAuthenticated,
		IsAuthenticated: true,
	}}
}

func passthrough(called *bool) router.HandlerFunc {
	return func(ctx router.Context) error {
		*called = true
		return nil
	}
}

func TestGuardWaitsWhileSessionLoads(t *testing.T) {
	var nextCalled bool

	handler := guard.New(guard.Config{
		Session: loadingSession(),
	})(passthrough(&nextCalled))

	ctx := router.NewMockContext()
	ctx.On("Status", http.StatusServiceUnavailable).Return(ctx)
	ctx.On("SendString", "Checking authentication...").Return(nil)

	require.NoError(t, handler(ctx))

	assert.False(t, nextCalled)
	ctx.AssertNotCalled(t, "Redirect", mock.Anything, mock.Anything)
	ctx.AssertExpectations(t)
}

func TestGuardRedirectsAnonymousToLogin(t *testing.T) {
	var nextCalled bool

	handler := guard.New(guard.Config{
		Session: anonymousSession(),
	})(passthrough(&nextCalled))

	ctx := router.NewMockContext()
	ctx.On("Method").Return("GET")
	ctx.On("OriginalURL").Return("/dashboard/patients")
	ctx.On("Cookie", mock.MatchedBy(func(c *router.Cookie) bool {
		return c.Name == guard.DefaultReturnToCookie &&
			c.Value == "/dashboard/patients" &&
			c.HTTPOnly
	})).Return()
	ctx.On("Redirect", guard.DefaultLoginPath, mock.Anything).Return(nil)

	require.NoError(t, handler(ctx))

	assert.False(t, nextCalled)
	ctx.AssertExpectations(t)
}

func TestGuardRedirectsRoleMismatchToUnauthorized(t *testing.T) {
	var nextCalled bool

	handler := guard.New(guard.Config{
		Session:      authenticatedSession(session.RoleStaff),
		AllowedRoles: []session.Role{session.RoleAdmin},
	})(passthrough(&nextCalled))

	ctx := router.NewMockContext()
	ctx.On("Method").Return("GET")
	ctx.On("Redirect", guard.DefaultUnauthorizedPath, mock.Anything).Return(nil)

	require.NoError(t, handler(ctx))

	assert.False(t, nextCalled)
	// No return-to cookie: the user is logged in, just lacking the role.
	ctx.AssertNotCalled(t, "Cookie", mock.Anything)
	ctx.AssertExpectations(t)
}

func TestGuardAdmitsAllowedRole(t *testing.T) {
	var nextCalled bool

	handler := guard.New(guard.Config{
		Session:      authenticatedSession(session.RoleAdmin),
		AllowedRoles: []session.Role{session.RoleAdmin},
	})(passthrough(&nextCalled))

	ctx := router.NewMockContext()
	ctx.On("Locals", guard.DefaultContextKey, mock.Anything).Return(nil)

	require.NoError(t, handler(ctx))

	assert.True(t, nextCalled)

	user, ok := ctx.LocalsMock[guard.DefaultContextKey].(*session.UserProfile)
	require.True(t, ok)
	assert.Equal(t, session.RoleAdmin, user.Role)
}

func TestGuardEmptyAllowListAdmitsAnyAuthenticatedUser(t *testing.T) {
	var nextCalled bool

	handler := guard.New(guard.Config{
		Session: authenticatedSession(session.RolePatient),
	})(passthrough(&nextCalled))

	ctx := router.NewMockContext()
	ctx.On("Locals", guard.DefaultContextKey, mock.Anything).Return(nil)

	require.NoError(t, handler(ctx))
	assert.True(t, nextCalled)
}

func TestGuardMinimumRole(t *testing.T) {
	var nextCalled bool

	handler := guard.New(guard.Config{
		Session:     authenticatedSession(session.RolePatient),
		MinimumRole: session.RoleStaff,
	})(passthrough(&nextCalled))

	ctx := router.NewMockContext()
	ctx.On("Method").Return("POST")
	ctx.On("Redirect", guard.DefaultUnauthorizedPath, mock.Anything).Return(nil)

	require.NoError(t, handler(ctx))
	assert.False(t, nextCalled)
	ctx.AssertExpectations(t)
}

func TestGuardFilterSkipsEverything(t *testing.T) {
	var nextCalled bool

	handler := guard.New(guard.Config{
		Session: anonymousSession(),
		Filter: func(ctx router.Context) bool {
			return true
		},
	})(passthrough(&nextCalled))

	ctx := router.NewMockContext()

	require.NoError(t, handler(ctx))

	assert.True(t, nextCalled)
	ctx.AssertNotCalled(t, "Redirect", mock.Anything, mock.Anything)
}

func TestGuardContextEnricher(t *testing.T) {
	var nextCalled bool
	var enriched context.Context

	handler := guard.New(guard.Config{
		Session: authenticatedSession(session.RoleStaff),
		ContextEnricher: func(ctx context.Context, snap session.Snapshot) context.Context {
			return session.WithUserContext(ctx, snap.User)
		},
	})(passthrough(&nextCalled))

	ctx := router.NewMockContext()
	ctx.On("Locals", guard.DefaultContextKey, mock.Anything).Return(nil)
	ctx.On("Context").Return(context.Background())
	ctx.On("SetContext", mock.Anything).Run(func(args mock.Arguments) {
		enriched = args.Get(0).(context.Context)
	}).Return()

	require.NoError(t, handler(ctx))
	require.True(t, nextCalled)

	user, ok := session.UserFromContext(enriched)
	require.True(t, ok)
	assert.Equal(t, "u-1", user.ID)
	assert.True(t, session.Can(enriched, session.Role.CanManagePatients))
}

func TestGuardPanicsWithoutSession(t *testing.T) {
	assert.Panics(t, func() {
		guard.New(guard.Config{})
	})
}

func TestReturnTo(t *testing.T) {
	t.Run("preserved location", func(t *testing.T) {
		ctx := router.NewMockContext()
		ctx.CookiesM[guard.DefaultReturnToCookie] = "/dashboard/records"
		ctx.On("Cookie", mock.MatchedBy(func(c *router.Cookie) bool {
			return c.Name == guard.DefaultReturnToCookie && c.Value == ""
		})).Return()

		target := guard.ReturnTo(ctx, "", "/dashboard")
		assert.Equal(t, "/dashboard/records", target)
		ctx.AssertExpectations(t)
	})

	t.Run("falls back to default", func(t *testing.T) {
		ctx := router.NewMockContext()
		ctx.On("Cookies", guard.DefaultReturnToCookie).Return("")

		target := guard.ReturnTo(ctx, "", "/dashboard")
		assert.Equal(t, "/dashboard", target)
		ctx.AssertNotCalled(t, "Cookie", mock.Anything)
	})
}
