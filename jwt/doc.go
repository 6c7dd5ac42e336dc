// Package jwt mints and verifies signed access tokens. The session coordinator
// can use it in place of the opaque mock tokens when refreshing a session.
package jwt
