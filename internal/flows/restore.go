package flows

import (
	"context"
	"fmt"

	"github.com/authdemo/sessionkit/identity"
	"github.com/authdemo/sessionkit/internal/audit"
	"github.com/authdemo/sessionkit/notify"
)

// RunRestore resumes a session from an access token already held in the
// session (for example one loaded from cookies).
//
// Without a token the caller is sent to sign-in. A token with no user, or a
// failed lookup, clears the session and forces a logout.
func RunRestore(ctx context.Context, deps Deps) error {
	if !deps.ready() {
		return deps.Errors.NotReady
	}
	deps = deps.withDefaults()

	token := deps.Session.AccessToken()
	if token == "" {
		if err := deps.Navigate(ctx, deps.Routes.SignIn, false); err != nil {
			deps.Logger.Warn(ctx, "restore: navigate", "error", err)
		}
		return nil
	}

	user, err := lookupSessionUser(ctx, token, deps)
	if err != nil {
		deps.Notify.Error(ctx, MsgAuthFailed, notify.Options{Sticky: true})
		deps.Logger.Warn(ctx, "restore: lookup failed", "error", err)
		return deps.restoreFailed(ctx, fmt.Errorf("%w: %v", deps.Errors.LookupFailed, err))
	}
	if user == nil {
		return deps.restoreFailed(ctx, deps.Errors.SessionNotFound)
	}

	// A sign-in or logout that completed during the lookup owns the session.
	if deps.Session.AccessToken() != token {
		deps.Logger.Debug(ctx, "restore: session changed during lookup, result dropped")
		return nil
	}

	deps.Session.SetCurrentUser(user)
	deps.Index.Put(*user)
	deps.StartRefresh()

	deps.MetricInc(deps.Metrics.RestoreSuccess)
	deps.EmitAudit(ctx, audit.Event{
		EventType: audit.EventRestore,
		UserID:    user.UserID,
		Success:   true,
	})
	return nil
}

func lookupSessionUser(ctx context.Context, token string, deps Deps) (*identity.UserRecord, error) {
	defer busy(deps.Session)()
	return deps.Issuer.LookupUserByToken(ctx, token)
}

func (d Deps) restoreFailed(ctx context.Context, err error) error {
	d.Session.ClearTokens()
	d.Session.SetCurrentUser(nil)
	d.StopRefresh()

	d.MetricInc(d.Metrics.RestoreFailure)
	d.EmitAudit(ctx, audit.Event{
		EventType: audit.EventRestore,
		Error:     errMessage(err),
	})

	RunLogout(ctx, LogoutOptions{Forced: true, Reason: err}, d)
	return err
}
