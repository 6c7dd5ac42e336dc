// Package internal holds small helpers shared by sessionkit packages. Its
// subpackages contain the flow orchestration, spam limiter, email index,
// refresh scheduler, audit dispatcher and logging adapter.
package internal
