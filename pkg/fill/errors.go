package fill

const (
	// ErrTypeSessionAlreadyActive is returned by Start while a session is
	// still filling.
	ErrTypeSessionAlreadyActive = "session-already-active"

	// ErrTypeNoActiveSession is returned by Step outside of a session.
	ErrTypeNoActiveSession = "no-active-session"

	ErrTypeInvalidTarget = "invalid-target"

	// ErrTypeAttemptsExhausted is returned by Step when too many candidates
	// in a row were rejected. The session is abandoned.
	ErrTypeAttemptsExhausted = "attempts-exhausted"
)
