package flows

import (
	"context"
	"fmt"

	"github.com/authdemo/sessionkit/identity"
)

// RunSignIn establishes a session for user: it stores the user, issues a
// fresh token pair, persists the access token mapping, indexes the user and
// starts the refresh task. Unless fromSignup is set a welcome toast follows.
//
// When persisting fails the session is rolled back to anonymous before the
// error is returned, so callers never observe a half-built session. Either
// way the store entry of the session active before the call is deleted on a
// best-effort basis.
func RunSignIn(ctx context.Context, user identity.UserRecord, fromSignup bool, deps Deps) error {
	if !deps.ready() {
		return deps.Errors.NotReady
	}
	deps = deps.withDefaults()
	defer busy(deps.Session)()

	previous := deps.Session.AccessToken()
	deps.Session.SetCurrentUser(&user)
	pair := deps.Issuer.IssueTokenPair()
	deps.Session.SetTokens(pair.AccessToken, pair.RefreshToken)

	err := deps.Store.Set(ctx, pair.AccessToken, user)
	if previous != "" && previous != pair.AccessToken {
		dropSessionEntry(ctx, previous, "sign-in: delete previous session entry", deps)
	}
	if err != nil {
		rollbackSignIn(ctx, pair.AccessToken, deps)
		return fmt.Errorf("persist session: %w", err)
	}

	deps.Index.Put(user)
	deps.StartRefresh()
	if !fromSignup {
		deps.Notify.Success(ctx, MsgWelcomeBack)
	}
	return nil
}

// rollbackSignIn undoes a partial sign-in. The store entry is removed on a
// best-effort basis; a failure there is only logged.
func rollbackSignIn(ctx context.Context, accessToken string, deps Deps) {
	deps.StopRefresh()
	if deps.Session.AccessToken() == accessToken {
		deps.Session.ClearTokens()
		deps.Session.SetCurrentUser(nil)
	}
	dropSessionEntry(ctx, accessToken, "sign-in rollback: delete session entry", deps)
}

func dropSessionEntry(ctx context.Context, token, msg string, deps Deps) {
	if _, err := deps.Store.Delete(context.WithoutCancel(ctx), token); err != nil {
		deps.Logger.Warn(ctx, msg, "error", err)
	}
}
