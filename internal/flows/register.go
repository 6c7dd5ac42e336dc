package flows

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/authdemo/sessionkit/identity"
	"github.com/authdemo/sessionkit/internal/audit"
	"github.com/authdemo/sessionkit/internal/index"
	"github.com/authdemo/sessionkit/password"
)

// SignUpInput is the flow-local sign-up form.
type SignUpInput struct {
	Email              string
	Password           string
	FirstName          string
	LastName           string
	Department         string
	Company            string
	Phone              string
	SubscribeToUpdates bool
}

// Result is the flow-local outcome of register and authenticate.
type Result struct {
	Success    bool
	UserExists bool
	User       *identity.UserRecord
	Err        error
}

// RunRegister creates an account and signs it in. Every failure is reported
// through Result.Err; nothing is returned as a bare error or panic.
func RunRegister(ctx context.Context, in SignUpInput, onSuccess func(), deps Deps) Result {
	if !deps.ready() {
		return Result{Err: deps.Errors.NotReady}
	}
	deps = deps.withDefaults()

	email := strings.TrimSpace(in.Email)
	key := index.Normalize(email)

	if deps.Spam.Check(key) {
		deps.MetricInc(deps.Metrics.SpamRejected)
		deps.EmitAudit(ctx, audit.Event{
			EventType:  audit.EventSpamRejected,
			Identifier: key,
			Error:      errMessage(deps.Errors.SpamRejected),
			Metadata:   map[string]string{"operation": audit.EventRegister},
		})
		return Result{Err: deps.Errors.SpamRejected}
	}

	if err := validateSignUp(email, in.Password); err != nil {
		deps.MetricInc(deps.Metrics.RegisterFailure)
		deps.Notify.Error(ctx, MsgInvalidSignUp)
		deps.emitRegister(ctx, "", key, err)
		return Result{Err: fmt.Errorf("%w: %v", deps.Errors.InvalidInput, err)}
	}

	// The claim covers the store write in sign-in, so a concurrent sign-up
	// for the same address sees it as taken.
	if !deps.Index.Reserve(key, "") {
		deps.MetricInc(deps.Metrics.RegisterDuplicate)
		deps.Notify.Error(ctx, MsgUserExists)
		deps.emitRegister(ctx, "", key, deps.Errors.UserAlreadyExists)
		return Result{UserExists: true, Err: deps.Errors.UserAlreadyExists}
	}
	defer deps.Index.Release(key)

	if deps.MinStrength > 0 {
		if score := password.Strength(in.Password); score.Value < deps.MinStrength {
			deps.MetricInc(deps.Metrics.RegisterFailure)
			deps.Notify.Error(ctx, MsgWeakPassword)
			err := fmt.Errorf("%w: %s", deps.Errors.PasswordPolicy, strings.Join(score.Failed, "; "))
			deps.emitRegister(ctx, "", key, err)
			return Result{Err: err}
		}
	}

	user, err := newUserRecord(email, in, deps)
	if err != nil {
		return deps.registerFailed(ctx, key, err)
	}

	if err := RunSignIn(ctx, user, true, deps); err != nil {
		return deps.registerFailed(ctx, key, err)
	}

	deps.Notify.Success(ctx, MsgAccountCreated)
	if onSuccess != nil {
		onSuccess()
	}
	deps.MetricInc(deps.Metrics.RegisterSuccess)
	deps.emitRegister(ctx, user.UserID, key, nil)

	return Result{Success: true, User: user.Clone()}
}

func newUserRecord(email string, in SignUpInput, deps Deps) (identity.UserRecord, error) {
	defer busy(deps.Session)()

	hashed, err := deps.Hasher.Hash(in.Password)
	if err != nil {
		return identity.UserRecord{}, fmt.Errorf("hash password: %w", err)
	}
	return identity.UserRecord{
		Email:              email,
		HashedPassword:     hashed,
		FirstName:          strings.TrimSpace(in.FirstName),
		LastName:           strings.TrimSpace(in.LastName),
		Department:         strings.TrimSpace(in.Department),
		Company:            strings.TrimSpace(in.Company),
		Phone:              strings.TrimSpace(in.Phone),
		SubscribeToUpdates: in.SubscribeToUpdates,
		UserID:             deps.NewUserID(),
		CreatedAt:          deps.Now().UTC(),
	}, nil
}

func validateSignUp(email, pw string) error {
	if email == "" {
		return errors.New("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("email %q is not a valid address", email)
	}
	if pw == "" {
		return password.ErrEmptyPassword
	}
	return nil
}

func (d Deps) registerFailed(ctx context.Context, key string, err error) Result {
	d.Logger.Error(ctx, "register failed", "identifier", key, "error", err)
	d.MetricInc(d.Metrics.RegisterFailure)
	d.Notify.Error(ctx, MsgGenericFailure)
	d.emitRegister(ctx, "", key, err)
	return Result{Err: fmt.Errorf("%w: %v", d.Errors.Unknown, err)}
}

func (d Deps) emitRegister(ctx context.Context, userID, key string, err error) {
	d.EmitAudit(ctx, audit.Event{
		EventType:  audit.EventRegister,
		UserID:     userID,
		Identifier: key,
		Success:    err == nil,
		Error:      errMessage(err),
	})
}
