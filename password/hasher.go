package password

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

const (
	// DefaultDemoSalt is the fixed salt mixed into every demo digest.
	DefaultDemoSalt = "demo-salt-value"
	// DefaultDemoSecret is the fixed pepper mixed into every demo digest.
	DefaultDemoSecret = "demo-secret-key-for-password-hashing"
)

// Hasher turns passwords into stored digests and checks candidates against
// them.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) (bool, error)
}

// Demo is a deterministic SHA-256 hasher with a fixed salt and secret. The
// same password always yields the same digest, which is what the demo
// account flows rely on. It is not a password KDF.
type Demo struct {
	salt   string
	secret string
}

// NewDemo returns a Demo hasher. Empty values fall back to the defaults.
func NewDemo(salt, secret string) *Demo {
	if salt == "" {
		salt = DefaultDemoSalt
	}
	if secret == "" {
		secret = DefaultDemoSecret
	}
	return &Demo{salt: salt, secret: secret}
}

// Hash returns hex(sha256(password + salt + secret)). It never fails.
func (d *Demo) Hash(password string) (string, error) {
	sum := sha256.Sum256([]byte(password + d.salt + d.secret))
	return hex.EncodeToString(sum[:]), nil
}

// Verify re-hashes password and compares in constant time.
func (d *Demo) Verify(password, digest string) (bool, error) {
	computed, _ := d.Hash(password)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(digest)) == 1, nil
}
