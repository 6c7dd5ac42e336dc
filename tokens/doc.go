// Package tokens is the mock identity provider: it issues opaque token pairs,
// exchanges a user id for a new access token, and resolves access tokens to
// user records. Refresh and lookup sleep for a configurable latency and fail
// at a configurable rate so callers exercise their error paths.
package tokens
