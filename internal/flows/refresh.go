package flows

import (
	"context"
	"fmt"

	"github.com/authdemo/sessionkit/internal/audit"
	"github.com/authdemo/sessionkit/notify"
)

// RefreshFailureKind classifies refresh outcomes for root-level mapping.
type RefreshFailureKind int

const (
	RefreshFailureNone RefreshFailureKind = iota
	// RefreshFailureNoSession means there was no user or refresh token; the
	// session was logged out.
	RefreshFailureNoSession
	// RefreshFailureIssuer means the issuer rejected the refresh; the session
	// was logged out.
	RefreshFailureIssuer
	// RefreshFailureStale means the session changed while the call was in
	// flight and the new token was discarded.
	RefreshFailureStale
	// RefreshFailureCancelled means ctx ended first. The session is untouched.
	RefreshFailureCancelled
)

// RefreshResult carries the new access token or failure metadata.
type RefreshResult struct {
	Failure     RefreshFailureKind
	Err         error
	UserID      string
	AccessToken string
}

// RunRefresh performs one background refresh cycle. The refresh token is
// kept; only the access token is replaced, and the identity store mapping
// moves to the new token.
func RunRefresh(ctx context.Context, deps Deps) RefreshResult {
	if !deps.ready() {
		return RefreshResult{Failure: RefreshFailureNoSession, Err: deps.Errors.NotReady}
	}
	deps = deps.withDefaults()

	user := deps.Session.CurrentUser()
	if user == nil || user.UserID == "" || deps.Session.RefreshToken() == "" {
		deps.MetricInc(deps.Metrics.RefreshFailure)
		RunLogout(context.WithoutCancel(ctx), LogoutOptions{Forced: true, Reason: deps.Errors.NoActiveSession}, deps)
		return RefreshResult{Failure: RefreshFailureNoSession, Err: deps.Errors.NoActiveSession}
	}
	prev := deps.Session.AccessToken()

	next, err := refreshToken(ctx, user.UserID, deps)
	if err != nil {
		if ctx.Err() != nil {
			return RefreshResult{Failure: RefreshFailureCancelled, Err: ctx.Err(), UserID: user.UserID}
		}
		err = fmt.Errorf("%w: %v", deps.Errors.RefreshFailed, err)
		deps.Notify.Error(ctx, MsgSessionExpired, notify.Options{Sticky: true})
		deps.Logger.Warn(ctx, "refresh failed, signing out", "user_id", user.UserID, "error", err)
		deps.MetricInc(deps.Metrics.RefreshFailure)
		deps.EmitAudit(ctx, audit.Event{
			EventType: audit.EventRefresh,
			UserID:    user.UserID,
			Error:     errMessage(err),
		})
		// logout stops the task that owns ctx, so it must not inherit its
		// cancellation
		RunLogout(context.WithoutCancel(ctx), LogoutOptions{Forced: true, Reason: err}, deps)
		return RefreshResult{Failure: RefreshFailureIssuer, Err: err, UserID: user.UserID}
	}

	if !deps.Session.ReplaceAccessToken(prev, next) {
		deps.Logger.Debug(ctx, "refresh: session changed during call, token dropped", "user_id", user.UserID)
		return RefreshResult{Failure: RefreshFailureStale, UserID: user.UserID}
	}

	rekeySession(ctx, prev, next, deps)

	deps.MetricInc(deps.Metrics.RefreshSuccess)
	deps.EmitAudit(ctx, audit.Event{
		EventType: audit.EventRefresh,
		UserID:    user.UserID,
		Success:   true,
	})
	return RefreshResult{UserID: user.UserID, AccessToken: next}
}

func refreshToken(ctx context.Context, userID string, deps Deps) (string, error) {
	defer busy(deps.Session)()
	return deps.Issuer.RefreshAccessToken(ctx, userID)
}

// rekeySession moves the access token mapping from prev to next. The new
// entry is written before the old one is removed so a restore never finds
// neither.
func rekeySession(ctx context.Context, prev, next string, deps Deps) {
	user := deps.Session.CurrentUser()
	if user == nil {
		return
	}
	if err := deps.Store.Set(ctx, next, *user); err != nil {
		deps.Logger.Warn(ctx, "refresh: store new session entry", "error", err)
		return
	}
	if _, err := deps.Store.Delete(ctx, prev); err != nil {
		deps.Logger.Warn(ctx, "refresh: delete previous session entry", "error", err)
	}
}
