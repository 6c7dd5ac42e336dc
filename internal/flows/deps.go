package flows

import (
	"context"
	"time"

	"github.com/authdemo/sessionkit/identity"
	"github.com/authdemo/sessionkit/internal"
	"github.com/authdemo/sessionkit/internal/audit"
	"github.com/authdemo/sessionkit/internal/logging"
	"github.com/authdemo/sessionkit/notify"
	"github.com/authdemo/sessionkit/password"
	"github.com/authdemo/sessionkit/tokens"
)

// SessionState is the part of session.Store the flows drive.
type SessionState interface {
	CurrentUser() *identity.UserRecord
	AccessToken() string
	RefreshToken() string
	SetCurrentUser(*identity.UserRecord)
	SetTokens(access, refresh string)
	ClearTokens()
	ReplaceAccessToken(expected, next string) bool
	SetLoading(bool)
}

// TokenIssuer is the identity provider's token surface.
type TokenIssuer interface {
	IssueTokenPair() tokens.Pair
	RefreshAccessToken(ctx context.Context, userID string) (string, error)
	LookupUserByToken(ctx context.Context, token string) (*identity.UserRecord, error)
}

// SpamGuard reports whether an attempt for identifier must be rejected.
type SpamGuard interface {
	Check(identifier string) bool
}

// EmailIndex resolves sign-in emails without scanning the identity store.
// Reserve and Release bracket any write that gives an account a new
// address.
type EmailIndex interface {
	Lookup(email string) (identity.UserRecord, bool)
	Put(rec identity.UserRecord)
	Reserve(email, userID string) bool
	Release(email string)
	Len() int
}

// Notifier is the toast surface.
type Notifier interface {
	Success(ctx context.Context, msg string, opts ...notify.Options)
	Info(ctx context.Context, msg string, opts ...notify.Options)
	Error(ctx context.Context, msg string, opts ...notify.Options)
}

// Routes names the navigation targets used after logout and on a missing
// session.
type Routes struct {
	SignIn string
	SignUp string
}

// MetricIDs carries the metric IDs the flows increment.
type MetricIDs struct {
	RegisterSuccess      int
	RegisterFailure      int
	RegisterDuplicate    int
	AuthSuccess          int
	AuthFailure          int
	SpamRejected         int
	RestoreSuccess       int
	RestoreFailure       int
	RefreshSuccess       int
	RefreshFailure       int
	Logout               int
	ForcedLogout         int
	ProfileUpdateSuccess int
	ProfileUpdateFailure int
}

// Errors carries the coordinator's sentinel errors.
type Errors struct {
	NotReady           error
	SpamRejected       error
	InvalidCredentials error
	UserAlreadyExists  error
	LookupFailed       error
	RefreshFailed      error
	Unknown            error
	InvalidInput       error
	PasswordPolicy     error
	NoActiveSession    error
	SessionNotFound    error
}

// Deps captures everything a flow may touch. The coordinator builds it once
// and passes it by value to every Run function.
type Deps struct {
	Session SessionState
	Store   identity.Store
	Issuer  TokenIssuer
	Hasher  password.Hasher
	Spam    SpamGuard
	Index   EmailIndex
	Notify  Notifier

	Navigate     func(ctx context.Context, route string, replace bool) error
	StartRefresh func()
	StopRefresh  func()
	NewUserID    func() string
	Now          func() time.Time

	// MinStrength rejects sign-up passwords scoring below it. Zero disables
	// the check.
	MinStrength int
	Routes      Routes

	Logger    logging.Logger
	MetricInc func(int)
	EmitAudit func(context.Context, audit.Event)

	Metrics MetricIDs
	Errors  Errors
}

func (d Deps) ready() bool {
	return d.Session != nil &&
		d.Store != nil &&
		d.Issuer != nil &&
		d.Hasher != nil &&
		d.Index != nil
}

func (d Deps) withDefaults() Deps {
	if d.Spam == nil {
		d.Spam = allowAll{}
	}
	if d.Notify == nil {
		d.Notify = notify.NewCenter(nil, 0)
	}
	if d.Navigate == nil {
		d.Navigate = func(context.Context, string, bool) error { return nil }
	}
	if d.StartRefresh == nil {
		d.StartRefresh = func() {}
	}
	if d.StopRefresh == nil {
		d.StopRefresh = func() {}
	}
	if d.NewUserID == nil {
		d.NewUserID = internal.NewUserID
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Logger == nil {
		d.Logger = logging.NewSlogLogger(nil)
	}
	if d.MetricInc == nil {
		d.MetricInc = func(int) {}
	}
	if d.EmitAudit == nil {
		d.EmitAudit = func(context.Context, audit.Event) {}
	}
	return d
}

type allowAll struct{}

func (allowAll) Check(string) bool { return false }

// busy raises the session loading flag until the returned func runs.
func busy(s SessionState) func() {
	s.SetLoading(true)
	return func() { s.SetLoading(false) }
}

// errMessage renders an error for logs and audit records.
func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
