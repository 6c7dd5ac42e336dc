// Package index maintains the email to user lookup used by sign-in and
// sign-up, so neither has to scan the identity store.
package index

import (
	"strings"
	"sync"

	"github.com/authdemo/sessionkit/identity"
)

// Email maps normalized email addresses to the latest known user record.
// Entries are added on registration and profile updates and are kept across
// logouts, mirroring the persistent account list.
//
// An address is owned by at most one account. Writers claim an address with
// Reserve before the slow store write and give the claim back with Release.
type Email struct {
	mu      sync.RWMutex
	users   map[string]identity.UserRecord
	pending map[string]struct{}
}

func NewEmail() *Email {
	return &Email{
		users:   make(map[string]identity.UserRecord),
		pending: make(map[string]struct{}),
	}
}

// Normalize trims and lowercases an address.
func Normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Seed replays entries in the order identity.Lister returns them, so the
// last write of each account wins.
func (e *Email) Seed(entries []identity.Entry) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, entry := range entries {
		e.putLocked(entry.Record)
	}
}

// Put inserts or replaces the record for rec.Email. When the address of an
// existing user changes, the old entry is dropped.
func (e *Email) Put(rec identity.UserRecord) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.putLocked(rec)
}

func (e *Email) putLocked(rec identity.UserRecord) {
	key := Normalize(rec.Email)
	if key == "" {
		return
	}
	for k, existing := range e.users {
		if k != key && rec.UserID != "" && existing.UserID == rec.UserID {
			delete(e.users, k)
		}
	}
	e.users[key] = rec
}

// Reserve claims email on behalf of userID (empty for an account that does
// not exist yet). It fails when the address belongs to a different account
// or another claim on it is still pending.
func (e *Email) Reserve(email, userID string) bool {
	key := Normalize(email)
	if key == "" {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, busy := e.pending[key]; busy {
		return false
	}
	if owner, ok := e.users[key]; ok && (userID == "" || owner.UserID != userID) {
		return false
	}
	e.pending[key] = struct{}{}
	return true
}

// Release drops a claim taken with Reserve. Whether or not the write went
// through, the index itself is only changed by Put.
func (e *Email) Release(email string) {
	e.mu.Lock()
	delete(e.pending, Normalize(email))
	e.mu.Unlock()
}

func (e *Email) Lookup(email string) (identity.UserRecord, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	rec, ok := e.users[Normalize(email)]
	return rec, ok
}

func (e *Email) Has(email string) bool {
	_, ok := e.Lookup(email)
	return ok
}

func (e *Email) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.users)
}
