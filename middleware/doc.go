// Package middleware guards protected routes with a sessionkit Coordinator.
//
// [RouteGuard] answers whether navigation to a path may proceed and logs
// the session out when an anonymous client reaches a protected path. [Guard]
// adapts it to net/http and only lets a request act for the session when its
// authToken cookie matches the session's access token.
//
// # What this package must NOT do
//
//   - Decide authentication itself. The coordinator's session is the only
//     source of truth.
//   - Touch the identity store or tokens directly.
package middleware
