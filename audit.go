package sessionkit

import (
	"context"
	"io"

	internalaudit "github.com/authdemo/sessionkit/internal/audit"
)

// AuditEvent is one session lifecycle record.
type AuditEvent = internalaudit.Event

// AuditSink receives audit events from the dispatcher goroutine.
type AuditSink = internalaudit.Sink

type NoOpSink = internalaudit.NoOpSink

type ChannelSink = internalaudit.ChannelSink

type JSONWriterSink = internalaudit.JSONWriterSink

const (
	AuditEventRegister      = internalaudit.EventRegister
	AuditEventAuthenticate  = internalaudit.EventAuthenticate
	AuditEventSpamRejected  = internalaudit.EventSpamRejected
	AuditEventRestore       = internalaudit.EventRestore
	AuditEventRefresh       = internalaudit.EventRefresh
	AuditEventLogout        = internalaudit.EventLogout
	AuditEventForcedLogout  = internalaudit.EventForcedLogout
	AuditEventProfileUpdate = internalaudit.EventProfileUpdate
)

func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink writes one JSON object per line to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

func (c *Coordinator) emitAudit(ctx context.Context, event AuditEvent) {
	if c == nil || c.audit == nil {
		return
	}
	c.audit.Emit(ctx, event)
}
