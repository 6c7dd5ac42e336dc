package flows

import (
	"context"
	"fmt"

	"github.com/authdemo/sessionkit/identity"
	"github.com/authdemo/sessionkit/internal/audit"
	"github.com/authdemo/sessionkit/internal/index"
)

// RunAuthenticate signs in with email and password. An unknown email and a
// wrong password produce the same InvalidCredentials result, and neither
// touches the session.
func RunAuthenticate(ctx context.Context, email, pw string, onSuccess func(), deps Deps) Result {
	if !deps.ready() {
		return Result{Err: deps.Errors.NotReady}
	}
	deps = deps.withDefaults()

	key := index.Normalize(email)

	if deps.Spam.Check(key) {
		deps.MetricInc(deps.Metrics.SpamRejected)
		deps.EmitAudit(ctx, audit.Event{
			EventType:  audit.EventSpamRejected,
			Identifier: key,
			Error:      errMessage(deps.Errors.SpamRejected),
			Metadata:   map[string]string{"operation": audit.EventAuthenticate},
		})
		return Result{Err: deps.Errors.SpamRejected}
	}

	user, ok, err := verifyCredentials(key, pw, deps)
	if err != nil {
		return deps.authenticateFailed(ctx, key, err)
	}
	if !ok {
		deps.MetricInc(deps.Metrics.AuthFailure)
		deps.Notify.Error(ctx, MsgInvalidLogin)
		deps.emitAuthenticate(ctx, "", key, deps.Errors.InvalidCredentials)
		return Result{Err: deps.Errors.InvalidCredentials}
	}

	if err := RunSignIn(ctx, user, false, deps); err != nil {
		return deps.authenticateFailed(ctx, key, err)
	}

	deps.Notify.Success(ctx, MsgSignInSuccess)
	if onSuccess != nil {
		onSuccess()
	}
	deps.MetricInc(deps.Metrics.AuthSuccess)
	deps.emitAuthenticate(ctx, user.UserID, key, nil)

	return Result{Success: true, User: user.Clone()}
}

func verifyCredentials(key, pw string, deps Deps) (identity.UserRecord, bool, error) {
	defer busy(deps.Session)()

	user, found := deps.Index.Lookup(key)
	if !found || pw == "" {
		return identity.UserRecord{}, false, nil
	}
	ok, err := deps.Hasher.Verify(pw, user.HashedPassword)
	if err != nil {
		return identity.UserRecord{}, false, fmt.Errorf("verify password: %w", err)
	}
	return user, ok, nil
}

func (d Deps) authenticateFailed(ctx context.Context, key string, err error) Result {
	d.Logger.Error(ctx, "authenticate failed", "identifier", key, "error", err)
	d.MetricInc(d.Metrics.AuthFailure)
	d.Notify.Error(ctx, MsgGenericFailure)
	d.emitAuthenticate(ctx, "", key, err)
	return Result{Err: fmt.Errorf("%w: %v", d.Errors.Unknown, err)}
}

func (d Deps) emitAuthenticate(ctx context.Context, userID, key string, err error) {
	d.EmitAudit(ctx, audit.Event{
		EventType:  audit.EventAuthenticate,
		UserID:     userID,
		Identifier: key,
		Success:    err == nil,
		Error:      errMessage(err),
	})
}
