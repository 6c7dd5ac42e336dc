// Package prometheus renders sessionkit metrics in the Prometheus text
// exposition format.
//
// [NewPrometheusExporter] reads a [sessionkit.Coordinator] and exposes an
// [http.Handler]. Counters are named sessionkit_*_total, the refresh latency
// histogram is sessionkit_refresh_latency_seconds and is only written when
// latency histograms are enabled.
//
// # What this package must NOT do
//
//   - Register metrics in a global registry. Callers mount the Handler.
//   - Mutate coordinator state.
package prometheus
