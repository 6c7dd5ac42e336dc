// Package notify is the toast surface the session coordinator reports to.
//
// [Center] applies the display rules (sticky toasts never auto-dismiss, an
// unset duration means two seconds) and forwards each [Toast] to a [Sink].
// Rendering belongs to the sink.
package notify
