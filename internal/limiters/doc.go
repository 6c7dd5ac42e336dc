// Package limiters provides the in-memory spam guard used by sign-in and
// sign-up.
//
// [SpamLimiter] is nil-safe: a nil or disabled limiter never rejects.
//
// # Architecture boundaries
//
// The limiter only counts. Flow functions decide what a rejection means.
//
// # What this package must NOT do
//
//   - Import sessionkit or any sibling internal package.
//   - Persist counters; they live for the lifetime of the coordinator.
package limiters
