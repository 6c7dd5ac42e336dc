// Package otel binds sessionkit counters to OpenTelemetry observable
// instruments.
//
// [NewOTelExporter] registers one Int64ObservableCounter per coordinator
// counter and one Int64ObservableGauge per refresh latency bucket. When the
// source is a [sessionkit.Coordinator] two gauges report whether the session
// is authenticated and whether the refresh task is scheduled. A single
// callback reads the snapshot on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the MeterProvider. Callers supply the Meter.
//   - Mutate coordinator state.
package otel
