package flows

import (
	"context"
	"fmt"
	"strings"

	"github.com/authdemo/sessionkit/identity"
	"github.com/authdemo/sessionkit/internal/audit"
	"github.com/authdemo/sessionkit/internal/index"
)

// RunUpdateUser replaces the signed-in user's profile in the session and in
// the identity store under the current access token.
//
// Blank UserID, CreatedAt, Email and HashedPassword are carried over from the
// current record. A new address already owned by another account is rejected
// with Errors.UserAlreadyExists before anything is written. On a store failure
// the previous profile is put back and an error toast is shown; the session
// stays signed in.
func RunUpdateUser(ctx context.Context, updated identity.UserRecord, onSuccess func(), deps Deps) error {
	if !deps.ready() {
		return deps.Errors.NotReady
	}
	deps = deps.withDefaults()

	current := deps.Session.CurrentUser()
	if current == nil {
		deps.MetricInc(deps.Metrics.ProfileUpdateFailure)
		deps.Notify.Error(ctx, MsgProfileNotSaved)
		return deps.Errors.NoActiveSession
	}
	updated = mergeProfile(*current, updated)
	token := deps.Session.AccessToken()

	if next := index.Normalize(updated.Email); next != index.Normalize(current.Email) {
		if !deps.Index.Reserve(next, current.UserID) {
			err := deps.Errors.UserAlreadyExists
			deps.Logger.Warn(ctx, "update profile: address taken", "user_id", current.UserID, "email", next)
			deps.Notify.Error(ctx, MsgProfileNotSaved)
			deps.MetricInc(deps.Metrics.ProfileUpdateFailure)
			deps.emitProfileUpdate(ctx, current.UserID, err)
			return err
		}
		defer deps.Index.Release(next)
	}

	if err := saveProfile(ctx, token, updated, deps); err != nil {
		deps.Session.SetCurrentUser(current)
		err = fmt.Errorf("%w: %v", deps.Errors.Unknown, err)
		deps.Logger.Error(ctx, "update profile failed", "user_id", current.UserID, "error", err)
		deps.Notify.Error(ctx, MsgProfileNotSaved)
		deps.MetricInc(deps.Metrics.ProfileUpdateFailure)
		deps.emitProfileUpdate(ctx, current.UserID, err)
		return err
	}

	deps.Index.Put(updated)
	if onSuccess != nil {
		onSuccess()
	}
	deps.Notify.Success(ctx, MsgProfileUpdated)
	deps.MetricInc(deps.Metrics.ProfileUpdateSuccess)
	deps.emitProfileUpdate(ctx, updated.UserID, nil)
	return nil
}

func saveProfile(ctx context.Context, token string, updated identity.UserRecord, deps Deps) error {
	defer busy(deps.Session)()

	deps.Session.SetCurrentUser(&updated)
	if token == "" {
		return nil
	}
	return deps.Store.Set(ctx, token, updated)
}

func mergeProfile(current, updated identity.UserRecord) identity.UserRecord {
	if updated.UserID == "" {
		updated.UserID = current.UserID
	}
	if updated.CreatedAt.IsZero() {
		updated.CreatedAt = current.CreatedAt
	}
	if strings.TrimSpace(updated.Email) == "" {
		updated.Email = current.Email
	}
	if updated.HashedPassword == "" {
		updated.HashedPassword = current.HashedPassword
	}
	return updated
}

func (d Deps) emitProfileUpdate(ctx context.Context, userID string, err error) {
	d.EmitAudit(ctx, audit.Event{
		EventType: audit.EventProfileUpdate,
		UserID:    userID,
		Success:   err == nil,
		Error:     errMessage(err),
	})
}
