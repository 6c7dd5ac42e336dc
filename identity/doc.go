// Package identity defines the user record model and the token-keyed identity
// store that backs the session coordinator.
//
// # Implementations
//
//   - [MemoryStore]: process-local map, used in tests and as the default.
//   - [RedisStore]: JSON records plus a key-set index in Redis.
//   - [SQLiteStore]: local file database with embedded goose migrations.
//   - [Delayed]: decorator that adds fixed latency to Get, Set and Delete.
//
// # Architecture boundaries
//
// Stores map access tokens to records and nothing else. Email lookup is the
// coordinator's job and is served from its own index.
//
// # What this package must NOT do
//
//   - Import sessionkit or any sibling package.
//   - Hash, verify or otherwise interpret passwords.
package identity
