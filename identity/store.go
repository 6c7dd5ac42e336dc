package identity

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable reports that the backing store could not serve the request.
var ErrUnavailable = errors.New("identity store unavailable")

// UserRecord is the persisted user profile. Records are keyed by access token
// inside a Store; the same record may therefore appear under several keys over
// the lifetime of an account.
type UserRecord struct {
	Email              string    `json:"email"`
	HashedPassword     string    `json:"hashedPassword"`
	FirstName          string    `json:"firstName,omitempty"`
	LastName           string    `json:"lastName,omitempty"`
	Department         string    `json:"department,omitempty"`
	Company            string    `json:"company,omitempty"`
	Phone              string    `json:"phone,omitempty"`
	SubscribeToUpdates bool      `json:"subscribeToUpdates,omitempty"`
	UserID             string    `json:"userId"`
	CreatedAt          time.Time `json:"createdAt"`
}

// Clone returns a copy that shares no memory with r.
func (r *UserRecord) Clone() *UserRecord {
	if r == nil {
		return nil
	}
	out := *r
	return &out
}

// Store is a blocking key/value map from access token to UserRecord.
//
// Every method may block for backend latency and must honor ctx cancellation.
// Get reports found=false with a nil error for a missing key. Delete reports
// whether a value existed.
type Store interface {
	Get(ctx context.Context, key string) (UserRecord, bool, error)
	Set(ctx context.Context, key string, value UserRecord) error
	Delete(ctx context.Context, key string) (bool, error)
	Has(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}

// Entry is one stored record together with the access token it is kept
// under.
type Entry struct {
	Key    string
	Record UserRecord
}

// Lister is implemented by stores that can enumerate their records. It is used
// once at startup to seed the email index.
//
// Records returns entries in write order, oldest first, so a later write of
// the same account supersedes an earlier one when the entries are replayed.
type Lister interface {
	Records(ctx context.Context) ([]Entry, error)
}
