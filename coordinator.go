package sessionkit

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/authdemo/sessionkit/identity"
	internalaudit "github.com/authdemo/sessionkit/internal/audit"
	internalflows "github.com/authdemo/sessionkit/internal/flows"
	"github.com/authdemo/sessionkit/internal/index"
	"github.com/authdemo/sessionkit/internal/limiters"
	"github.com/authdemo/sessionkit/internal/logging"
	"github.com/authdemo/sessionkit/internal/scheduler"
	"github.com/authdemo/sessionkit/notify"
	"github.com/authdemo/sessionkit/password"
	"github.com/authdemo/sessionkit/session"
)

// Coordinator owns one client session: it signs users up and in, restores a
// persisted session, keeps the access token fresh in the background and
// logs out. Methods are safe for concurrent use.
type Coordinator struct {
	config    Config
	session   *session.Store
	store     identity.Store
	issuer    TokenIssuer
	hasher    password.Hasher
	spam      *limiters.SpamLimiter
	index     *index.Email
	notifier  *notify.Center
	navigator Navigator
	logger    logging.Logger
	audit     *internalaudit.Dispatcher
	metrics   *Metrics
	now       func() time.Time
	newUserID func() string

	refresh scheduler.Task

	// ctx is the coordinator lifetime. The refresh task derives from it.
	ctx       context.Context
	cancel    context.CancelFunc
	closed    atomic.Bool
	closeOnce sync.Once
}

// Register creates an account from in and signs it in. onSuccess runs after
// the session is established and the success toast is shown; it may be nil.
//
// Spam rejection, duplicate emails and invalid input are reported through
// AuthResult.Err; nothing is returned as a bare error.
func (c *Coordinator) Register(ctx context.Context, in SignUpInput, onSuccess func()) AuthResult {
	if !c.ready() {
		return AuthResult{Err: ErrCoordinatorNotReady}
	}
	res := internalflows.RunRegister(ctx, internalflows.SignUpInput(in), onSuccess, c.flowDeps())
	return toAuthResult(res)
}

// Authenticate signs in with email and password. An unknown email and a wrong
// password both yield ErrInvalidCredentials and leave the session untouched.
func (c *Coordinator) Authenticate(ctx context.Context, email, password string, onSuccess func()) AuthResult {
	if !c.ready() {
		return AuthResult{Err: ErrCoordinatorNotReady}
	}
	res := internalflows.RunAuthenticate(ctx, email, password, onSuccess, c.flowDeps())
	return toAuthResult(res)
}

// InitAuth restores the session from the tokens already in the session store,
// typically seeded by LoadCookies. Without a token it navigates to the
// sign-in route and returns nil. A token that maps to no user yields
// ErrSessionNotFound and a lookup failure ErrLookupFailed; both log out.
func (c *Coordinator) InitAuth(ctx context.Context) error {
	if !c.ready() {
		return ErrCoordinatorNotReady
	}
	return internalflows.RunRestore(ctx, c.flowDeps())
}

// Logout ends the session and navigates away. It never fails; store cleanup
// errors are logged.
func (c *Coordinator) Logout(ctx context.Context) {
	if !c.ready() {
		return
	}
	internalflows.RunLogout(ctx, internalflows.LogoutOptions{}, c.flowDeps())
}

// RefreshNow runs one refresh cycle synchronously. On failure the session
// has been logged out and the returned error wraps ErrRefreshFailed or is
// ErrNoActiveSession.
func (c *Coordinator) RefreshNow(ctx context.Context) error {
	if !c.ready() {
		return ErrCoordinatorNotReady
	}
	return c.runRefresh(ctx).Err
}

// UpdateUser replaces the profile of the signed-in user and persists it under
// the current access token. The user id, creation time, email and password
// digest are carried over when left blank. A failed save keeps the session
// and the previous profile.
func (c *Coordinator) UpdateUser(ctx context.Context, updated UserRecord, onSuccess func()) error {
	if !c.ready() {
		return ErrCoordinatorNotReady
	}
	return internalflows.RunUpdateUser(ctx, updated, onSuccess, c.flowDeps())
}

// Session exposes the observable session state. Callers may read and
// subscribe; mutating it directly bypasses the coordinator.
func (c *Coordinator) Session() *session.Store {
	if c == nil {
		return nil
	}
	return c.session
}

func (c *Coordinator) CurrentUser() *UserRecord {
	if c == nil {
		return nil
	}
	return c.session.CurrentUser()
}

func (c *Coordinator) IsAuthenticated() bool {
	return c != nil && c.session.IsAuthenticated()
}

// RefreshActive reports whether the background refresh task is running.
func (c *Coordinator) RefreshActive() bool {
	return c != nil && c.refresh.Active()
}

// Config returns a copy of the configuration the coordinator was built with.
func (c *Coordinator) Config() Config {
	if c == nil {
		return Config{}
	}
	return cloneConfig(c.config)
}

// Close stops the refresh task, waits for an in-flight cycle and flushes the
// audit dispatcher. The session state is left as is. Close is idempotent.
func (c *Coordinator) Close() {
	if c == nil {
		return
	}
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.refresh.Stop()
		c.cancel()
		c.refresh.Wait()
		c.audit.Close()
	})
}

func (c *Coordinator) AuditDropped() uint64 {
	if c == nil || c.audit == nil {
		return 0
	}
	return c.audit.Dropped()
}

func (c *Coordinator) MetricsSnapshot() MetricsSnapshot {
	if c == nil || c.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return c.metrics.Snapshot()
}

/*
====================================
COOKIES
====================================
*/

func (c *Coordinator) cookieConfig() session.CookieConfig {
	cc := session.DefaultCookieConfig()
	cc.AccessTTL = c.config.Session.AccessTTL
	cc.RefreshTTL = c.config.Session.RefreshTTL
	if c.config.Session.CookiePath != "" {
		cc.Path = c.config.Session.CookiePath
	}
	cc.Domain = c.config.Session.CookieDomain
	cc.Secure = c.config.Session.CookieSecure
	return cc
}

// Cookies renders the authToken and refreshToken cookies for the current
// session. Absent tokens render as expiring cookies.
func (c *Coordinator) Cookies() []*http.Cookie {
	if c == nil {
		return nil
	}
	return c.session.Cookies(c.cookieConfig())
}

func (c *Coordinator) WriteCookies(w http.ResponseWriter) {
	if c == nil {
		return
	}
	c.session.WriteCookies(w, c.cookieConfig())
}

// ExpireCookies sets expiring session cookies on w without exposing the
// current tokens.
func (c *Coordinator) ExpireCookies(w http.ResponseWriter) {
	if c == nil {
		return
	}
	for _, ck := range session.ExpiredCookies(c.cookieConfig()) {
		http.SetCookie(w, ck)
	}
}

// OwnsRequest reports whether r presents the active session's access token.
func (c *Coordinator) OwnsRequest(r *http.Request) bool {
	if c == nil {
		return false
	}
	return c.session.OwnsRequest(r)
}

// LoadCookies seeds the session tokens from r and reports whether an access
// token was found. Call InitAuth afterwards to resolve the user.
func (c *Coordinator) LoadCookies(r *http.Request) bool {
	if c == nil {
		return false
	}
	return c.session.LoadCookies(r)
}

/*
====================================
FLOW WIRING
====================================
*/

func (c *Coordinator) ready() bool {
	return c != nil && !c.closed.Load()
}

func (c *Coordinator) runRefresh(ctx context.Context) internalflows.RefreshResult {
	start := time.Now()
	res := internalflows.RunRefresh(ctx, c.flowDeps())
	c.metrics.Observe(MetricRefreshLatency, time.Since(start))
	c.logger.Debug(ctx, "refresh cycle",
		"failure", int(res.Failure),
		"user_id", res.UserID,
		"elapsed", time.Since(start),
	)
	return res
}

func (c *Coordinator) startRefresh() {
	if c.closed.Load() {
		return
	}
	c.refresh.Start(c.ctx, c.config.refreshInterval(), func(ctx context.Context) {
		c.runRefresh(ctx)
	})
}

func (c *Coordinator) navigate(ctx context.Context, route string, replace bool) error {
	if c.navigator == nil {
		return nil
	}
	return c.navigator.Navigate(ctx, route, replace)
}

func (c *Coordinator) metricInc(id MetricID) {
	if c == nil || c.metrics == nil {
		return
	}
	c.metrics.Inc(id)
}

func (c *Coordinator) flowDeps() internalflows.Deps {
	return internalflows.Deps{
		Session:      c.session,
		Store:        c.store,
		Issuer:       c.issuer,
		Hasher:       c.hasher,
		Spam:         c.spam,
		Index:        c.index,
		Notify:       c.notifier,
		Navigate:     c.navigate,
		StartRefresh: c.startRefresh,
		StopRefresh:  c.refresh.Stop,
		NewUserID:    c.newUserID,
		Now:          c.now,
		MinStrength:  c.config.Password.MinStrength,
		Routes: internalflows.Routes{
			SignIn: c.config.Routes.SignIn,
			SignUp: c.config.Routes.SignUp,
		},
		Logger: c.logger,
		MetricInc: func(id int) {
			c.metricInc(MetricID(id))
		},
		EmitAudit: c.emitAudit,
		Metrics: internalflows.MetricIDs{
			RegisterSuccess:      int(MetricRegisterSuccess),
			RegisterFailure:      int(MetricRegisterFailure),
			RegisterDuplicate:    int(MetricRegisterDuplicate),
			AuthSuccess:          int(MetricAuthSuccess),
			AuthFailure:          int(MetricAuthFailure),
			SpamRejected:         int(MetricSpamRejected),
			RestoreSuccess:       int(MetricRestoreSuccess),
			RestoreFailure:       int(MetricRestoreFailure),
			RefreshSuccess:       int(MetricRefreshSuccess),
			RefreshFailure:       int(MetricRefreshFailure),
			Logout:               int(MetricLogout),
			ForcedLogout:         int(MetricForcedLogout),
			ProfileUpdateSuccess: int(MetricProfileUpdateSuccess),
			ProfileUpdateFailure: int(MetricProfileUpdateFailure),
		},
		Errors: internalflows.Errors{
			NotReady:           ErrCoordinatorNotReady,
			SpamRejected:       ErrSpamRejected,
			InvalidCredentials: ErrInvalidCredentials,
			UserAlreadyExists:  ErrUserAlreadyExists,
			LookupFailed:       ErrLookupFailed,
			RefreshFailed:      ErrRefreshFailed,
			Unknown:            ErrUnknown,
			InvalidInput:       ErrInvalidInput,
			PasswordPolicy:     ErrPasswordPolicy,
			NoActiveSession:    ErrNoActiveSession,
			SessionNotFound:    ErrSessionNotFound,
		},
	}
}

func toAuthResult(res internalflows.Result) AuthResult {
	return AuthResult{
		Success:    res.Success,
		UserExists: res.UserExists,
		User:       res.User,
		Err:        res.Err,
	}
}
