// Package sessionkit provides the client-side lifecycle of an authenticated
// session: sign-up, sign-in, session restore, background access-token
// refresh, profile updates and logout, against a mock identity provider.
//
// A [Coordinator] is assembled by [Builder.Build] and is safe to call from
// multiple goroutines. Its observable state lives in a [session.Store] that
// UI layers read and subscribe to.
//
// # Architecture boundaries
//
// sessionkit is the public surface. It exposes [Coordinator], [Builder],
// [Config] and value types ([AuthResult], [SignUpInput], [MetricsSnapshot]).
// Flow orchestration, the spam guard, the email index, the refresh task and
// audit dispatch live under internal/ and are never exported. Storage
// backends live in identity, the mock issuer in tokens and toasts in notify.
//
// # What this package must NOT do
//
//   - Hold passwords in clear text anywhere but the call that hashes them.
//   - Perform I/O outside Coordinator methods and the refresh task
//     (Build only reads the identity store once to seed the email index).
//   - Import any sub-package that re-imports sessionkit.
//
// # Refresh contract
//
// The refresh task fires every Session.RefreshInterval (the access TTL by
// default). A failed refresh logs the session out with a sticky toast. A
// refresh that completes after the session changed is discarded.
package sessionkit
