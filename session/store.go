package session

import (
	"strings"
	"sync"

	"github.com/authdemo/sessionkit/identity"
)

// Field names the part of the state a mutation touched.
type Field uint8

const (
	FieldUser Field = iota + 1
	FieldTokens
	FieldLoading
)

func (f Field) String() string {
	switch f {
	case FieldUser:
		return "user"
	case FieldTokens:
		return "tokens"
	case FieldLoading:
		return "loading"
	default:
		return "unknown"
	}
}

// State is a point-in-time copy of the session. Empty token strings mean
// the token is absent.
type State struct {
	Loading      bool
	CurrentUser  *identity.UserRecord
	AccessToken  string
	RefreshToken string
}

// Change is delivered to observers after every mutation.
type Change struct {
	Field Field
	State State
}

// Observer reacts to a Change. Observers run synchronously on the mutating
// goroutine, after the store lock is released.
type Observer func(Change)

// Store holds the current user, tokens and loading flag. It applies no
// policy; the coordinator decides what to write.
//
// Loading is reference counted so nested operations (a logout triggered from
// inside a sign-in) do not clear each other's flag.
type Store struct {
	mu      sync.RWMutex
	loading int
	user    *identity.UserRecord
	access  string
	refresh string

	obsMu     sync.RWMutex
	observers map[uint64]Observer
	nextObs   uint64
}

func NewStore() *Store {
	return &Store{observers: make(map[uint64]Observer)}
}

// CurrentUser returns a copy of the signed-in user, or nil.
func (s *Store) CurrentUser() *identity.UserRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.Clone()
}

func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading > 0
}

// IsAuthenticated reports whether an access token is held. It does not
// require a loaded user: during restore the token arrives first.
func (s *Store) IsAuthenticated() bool {
	return s.AccessToken() != ""
}

// DisplayName joins the non-empty first and last names with a space, falls
// back to the email, and returns "" when there is no user.
func (s *Store) DisplayName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return ""
	}
	if s.user.FirstName != "" || s.user.LastName != "" {
		return strings.TrimSpace(s.user.FirstName + " " + s.user.LastName)
	}
	return s.user.Email
}

func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// SetCurrentUser stores a copy of u. A nil u clears the user.
func (s *Store) SetCurrentUser(u *identity.UserRecord) {
	s.mu.Lock()
	s.user = u.Clone()
	st := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(Change{Field: FieldUser, State: st})
}

func (s *Store) SetTokens(access, refresh string) {
	s.mu.Lock()
	s.access = access
	s.refresh = refresh
	st := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(Change{Field: FieldTokens, State: st})
}

func (s *Store) ClearTokens() {
	s.SetTokens("", "")
}

// ReplaceAccessToken swaps the access token only while it still equals
// expected, keeping the refresh token. It reports whether the swap happened.
func (s *Store) ReplaceAccessToken(expected, next string) bool {
	s.mu.Lock()
	if expected == "" || s.access != expected {
		s.mu.Unlock()
		return false
	}
	s.access = next
	st := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(Change{Field: FieldTokens, State: st})
	return true
}

func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	if loading {
		s.loading++
	} else if s.loading > 0 {
		s.loading--
	}
	st := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(Change{Field: FieldLoading, State: st})
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn Observer) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	s.obsMu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.obsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.obsMu.Lock()
			delete(s.observers, id)
			s.obsMu.Unlock()
		})
	}
}

func (s *Store) snapshotLocked() State {
	return State{
		Loading:      s.loading > 0,
		CurrentUser:  s.user.Clone(),
		AccessToken:  s.access,
		RefreshToken: s.refresh,
	}
}

func (s *Store) notify(c Change) {
	s.obsMu.RLock()
	if len(s.observers) == 0 {
		s.obsMu.RUnlock()
		return
	}
	fns := make([]Observer, 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.obsMu.RUnlock()

	for _, fn := range fns {
		fn(c)
	}
}
