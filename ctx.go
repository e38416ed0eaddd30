package session

import "context"

var userCtxKey = &contextKey{"user"}
var snapshotCtxKey = &contextKey{"snapshot"}

type contextKey struct {
	name string
}

// WithUserContext sets the UserProfile in the given context
func WithUserContext(ctx context.Context, user *UserProfile) context.Context {
	return context.WithValue(ctx, userCtxKey, user)
}

// UserFromContext finds the user from the context.
func UserFromContext(ctx context.Context) (*UserProfile, bool) {
	raw, ok := ctx.Value(userCtxKey).(*UserProfile)
	return raw, ok
}

// WithSnapshotContext sets the session Snapshot in the given context
func WithSnapshotContext(ctx context.Context, snap Snapshot) context.Context {
	return context.WithValue(ctx, snapshotCtxKey, snap)
}

// SnapshotFromContext extracts the session Snapshot from the context
func SnapshotFromContext(ctx context.Context) (Snapshot, bool) {
	raw, ok := ctx.Value(snapshotCtxKey).(Snapshot)
	return raw, ok
}

// Can is a convenience capability check against the context's user
func Can(ctx context.Context, check func(Role) bool) bool {
	user, ok := UserFromContext(ctx)
	if !ok || user == nil {
		return false
	}
	return check(user.Role)
}
