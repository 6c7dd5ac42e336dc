package flows

import (
	"context"

	"github.com/authdemo/sessionkit/internal/audit"
)

// LogoutOptions describes why a session is being torn down. A forced logout
// follows a failed restore or refresh; Reason is recorded for audit.
type LogoutOptions struct {
	Forced bool
	Reason error
}

// RunLogout ends the session and navigates to an anonymous surface. It never
// fails: store and navigation errors are logged and the local session is
// cleared regardless.
func RunLogout(ctx context.Context, opts LogoutOptions, deps Deps) {
	if deps.Session == nil {
		return
	}
	deps = deps.withDefaults()
	defer busy(deps.Session)()

	token := deps.Session.AccessToken()
	var userID string
	if u := deps.Session.CurrentUser(); u != nil {
		userID = u.UserID
	}

	if token != "" && deps.Store != nil {
		if _, err := deps.Store.Delete(ctx, token); err != nil {
			deps.Logger.Warn(ctx, "logout: delete session entry", "error", err)
		}
	}

	deps.StopRefresh()
	deps.Session.ClearTokens()
	deps.Session.SetCurrentUser(nil)
	deps.Notify.Info(ctx, MsgSignedOut)

	if err := deps.Navigate(ctx, logoutRoute(ctx, deps), true); err != nil {
		deps.Logger.Warn(ctx, "logout: navigate", "error", err)
	}

	event := audit.Event{
		EventType: audit.EventLogout,
		UserID:    userID,
		Success:   true,
	}
	if opts.Forced {
		deps.MetricInc(deps.Metrics.ForcedLogout)
		event.EventType = audit.EventForcedLogout
		event.Error = errMessage(opts.Reason)
	} else {
		deps.MetricInc(deps.Metrics.Logout)
	}
	deps.EmitAudit(ctx, event)
}

// logoutRoute sends the user to sign-in when any account is known and to
// sign-up otherwise.
func logoutRoute(ctx context.Context, deps Deps) string {
	if deps.Index != nil && deps.Index.Len() > 0 {
		return deps.Routes.SignIn
	}
	if deps.Store == nil {
		return deps.Routes.SignIn
	}
	n, err := deps.Store.Count(ctx)
	if err != nil {
		deps.Logger.Warn(ctx, "logout: count users", "error", err)
		return deps.Routes.SignIn
	}
	if n > 0 {
		return deps.Routes.SignIn
	}
	return deps.Routes.SignUp
}
