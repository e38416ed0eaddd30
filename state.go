package session

import goerrors "github.com/goliatone/go-errors"

// Status is the lifecycle state of the client session
type Status string

const (
	// StatusAnonymous means no usable credential is held
	StatusAnonymous Status = "anonymous"
	// StatusAuthenticating means a login or registration is in flight
	StatusAuthenticating Status = "authenticating"
	// StatusAuthenticated means an access token is held and the profile is cached
	StatusAuthenticated Status = "authenticated"
)

// ErrInvalidTransition is returned when a requested session state change is
// not allowed, e.g. a second login while one is pending.
var ErrInvalidTransition = goerrors.New("invalid session state transition", goerrors.CategoryConflict).
	WithTextCode("INVALID_SESSION_TRANSITION").
	WithCode(goerrors.CodeConflict)

// sessionTransitions is the allowed transition table. Startup restore jumps
// straight from anonymous to authenticated when the store holds a token.
var sessionTransitions = map[Status]map[Status]struct{}{
	StatusAnonymous: {
		StatusAuthenticating: {},
		StatusAuthenticated:  {},
	},
	StatusAuthenticating: {
		StatusAuthenticated: {},
		StatusAnonymous:     {},
	},
	StatusAuthenticated: {
		StatusAnonymous: {},
	},
}

func canTransition(from, to Status) bool {
	if from == to {
		return true
	}
	allowed, ok := sessionTransitions[from]
	if !ok {
		return false
	}
	_, exists := allowed[to]
	return exists
}

// Snapshot is a point-in-time copy of the session state. It is safe to keep
// around; it never mutates after it is handed out.
type Snapshot struct {
	User            *UserProfile
	Status          Status
	IsAuthenticated bool
	IsLoading       bool
	Err             string
}

// Role returns the role of the snapshot's user, empty when anonymous
func (s Snapshot) Role() Role {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}
