// Package flows contains pure-function orchestrators for every Coordinator
// operation.
//
// Each flow function (RunRegister, RunAuthenticate, RunRestore, RunRefresh,
// RunLogout, RunUpdateUser) accepts a [Deps] value and returns a result
// without side effects beyond those dependencies, so the flows can be tested
// with in-memory fakes and the Coordinator stays thin.
//
// # Architecture boundaries
//
// Flow functions coordinate calls to the session state, identity store,
// token issuer, hasher, spam guard, notifier, audit and metrics hooks. They
// do NOT own any of these resources; ownership stays with the Coordinator.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import the root sessionkit package.
//   - Start goroutines. The refresh task is started and stopped through
//     Deps hooks.
package flows
