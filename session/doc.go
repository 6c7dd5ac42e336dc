// Package session holds the client-side session state: the signed-in user,
// the access and refresh tokens, and a loading flag.
//
// [Store] is a plain state container with an observer list. Every mutator is
// safe on an already-anonymous session, so late continuations of in-flight
// calls can run after logout without checks.
//
// # Cookies
//
// [Store.Cookies] renders the tokens as the authToken (15 minutes) and
// refreshToken (7 days) cookies; [Store.LoadCookies] reads them back.
//
// # What this package must NOT do
//
//   - Call the identity store or token issuer.
//   - Validate tokens or decide when a session ends.
package session
