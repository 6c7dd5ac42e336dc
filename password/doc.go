// Package password implements credential hashing, verification and the
// password strength rules shown during sign-up.
//
// # Hashers
//
//   - [Demo]: deterministic SHA-256 with a fixed salt and secret. This is the
//     default and the only hasher whose digests can be compared directly.
//   - [Argon2]: argon2id with random salts, encoded as PHC strings.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords. Callers supply plaintext and receive digests.
//   - Import any other sessionkit package.
//   - Log plaintext passwords.
package password
