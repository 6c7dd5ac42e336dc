package sessionkit

import "errors"

var (
	// ErrSpamRejected is returned when the spam guard rejects an attempt. No
	// notification is shown.
	ErrSpamRejected = errors.New("attempt rejected by spam guard")
	// ErrInvalidCredentials is returned for an unknown email or a wrong
	// password. The two cases are not distinguished.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserAlreadyExists is returned when signing up with a known email.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrLookupFailed is returned when restoring a session fails at the
	// identity provider. The session is logged out.
	ErrLookupFailed = errors.New("session lookup failed")
	// ErrRefreshFailed is returned when the access token could not be
	// refreshed. The session is logged out.
	ErrRefreshFailed = errors.New("token refresh failed")
	// ErrUnknown wraps unexpected failures. They are logged and surfaced with
	// a generic notification.
	ErrUnknown = errors.New("unexpected error")
	// ErrInvalidInput is returned for a malformed sign-up form.
	ErrInvalidInput = errors.New("invalid input")
	// ErrPasswordPolicy is returned when a sign-up password scores below
	// Password.MinStrength.
	ErrPasswordPolicy = errors.New("password policy violation")
	// ErrNoActiveSession is returned by operations that need a signed-in user.
	ErrNoActiveSession = errors.New("no active session")
	// ErrSessionNotFound is returned when a restored token maps to no user.
	ErrSessionNotFound = errors.New("session not found")
	// ErrCoordinatorNotReady is returned by a nil or closed Coordinator.
	ErrCoordinatorNotReady = errors.New("coordinator not initialized")
)
