package sessionkit

import (
	"context"

	"github.com/authdemo/sessionkit/identity"
	"github.com/authdemo/sessionkit/tokens"
)

// UserRecord is the identity record stored per access token.
type UserRecord = identity.UserRecord

// SignUpInput is the registration form accepted by [Coordinator.Register].
// Email and Password are required; the remaining profile fields are trimmed
// and stored as given.
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

// AuthResult is returned by [Coordinator.Register] and
// [Coordinator.Authenticate]. Err is nil exactly when Success is true.
// UserExists is only set by Register.
type AuthResult struct {
	Success    bool
	UserExists bool
	User       *UserRecord
	Err        error
}

// Navigator moves the client to a route. Replace asks the router to replace
// the current history entry instead of pushing a new one.
type Navigator interface {
	Navigate(ctx context.Context, route string, replace bool) error
}

// NavigatorFunc adapts a function to [Navigator].
type NavigatorFunc func(ctx context.Context, route string, replace bool) error

func (f NavigatorFunc) Navigate(ctx context.Context, route string, replace bool) error {
	return f(ctx, route, replace)
}

// TokenIssuer is the identity provider's token surface. The default is
// [tokens.MockIssuer].
type TokenIssuer interface {
	IssueTokenPair() tokens.Pair
	RefreshAccessToken(ctx context.Context, userID string) (string, error)
	LookupUserByToken(ctx context.Context, token string) (*UserRecord, error)
}
