package internaldefs

import (
	"github.com/authdemo/sessionkit"
)

// CounterDef names one coordinator counter.
type CounterDef struct {
	ID   sessionkit.MetricID
	Name string
	Help string
}

// HistogramDef names one coordinator histogram.
type HistogramDef struct {
	ID   sessionkit.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in MetricID order.
var CounterDefs = []CounterDef{
	{ID: sessionkit.MetricRegisterSuccess, Name: "sessionkit_register_success_total", Help: "Completed sign-ups."},
	{ID: sessionkit.MetricRegisterFailure, Name: "sessionkit_register_failure_total", Help: "Sign-ups that failed validation, policy or persistence."},
	{ID: sessionkit.MetricRegisterDuplicate, Name: "sessionkit_register_duplicate_total", Help: "Sign-ups rejected for an existing email."},
	{ID: sessionkit.MetricAuthSuccess, Name: "sessionkit_auth_success_total", Help: "Successful sign-ins."},
	{ID: sessionkit.MetricAuthFailure, Name: "sessionkit_auth_failure_total", Help: "Failed sign-ins."},
	{ID: sessionkit.MetricSpamRejected, Name: "sessionkit_spam_rejected_total", Help: "Attempts rejected by the spam guard."},
	{ID: sessionkit.MetricRestoreSuccess, Name: "sessionkit_restore_success_total", Help: "Sessions restored from a stored token."},
	{ID: sessionkit.MetricRestoreFailure, Name: "sessionkit_restore_failure_total", Help: "Session restores that ended in a forced logout."},
	{ID: sessionkit.MetricRefreshSuccess, Name: "sessionkit_refresh_success_total", Help: "Successful access-token refreshes."},
	{ID: sessionkit.MetricRefreshFailure, Name: "sessionkit_refresh_failure_total", Help: "Failed access-token refreshes."},
	{ID: sessionkit.MetricLogout, Name: "sessionkit_logout_total", Help: "User-initiated logouts."},
	{ID: sessionkit.MetricForcedLogout, Name: "sessionkit_forced_logout_total", Help: "Logouts forced by a failed restore or refresh."},
	{ID: sessionkit.MetricProfileUpdateSuccess, Name: "sessionkit_profile_update_success_total", Help: "Saved profile updates."},
	{ID: sessionkit.MetricProfileUpdateFailure, Name: "sessionkit_profile_update_failure_total", Help: "Profile updates that could not be saved."},
}

var HistogramDefs = []HistogramDef{
	{ID: sessionkit.MetricRefreshLatency, Name: "sessionkit_refresh_latency_seconds", Help: "Refresh cycle latency histogram."},
}

// HistogramBounds are the upper bounds of the eight refresh latency buckets.
var HistogramBounds = []string{
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"1",
	"2.5",
	"5",
	"+Inf",
}

// HistogramBoundSuffix renders HistogramBounds for instrument names.
var HistogramBoundSuffix = []string{
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"1",
	"2_5",
	"5",
	"inf",
}

// NormalizeBuckets copies raw into a fixed array, padding with zeros.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
