package notify

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCenterAppliesDisplayRules(t *testing.T) {
	cases := []struct {
		name   string
		opts   Options
		want   time.Duration
		sticky bool
	}{
		{"default", Options{}, DefaultAutoDismiss, false},
		{"explicit", Options{AutoDismiss: 5 * time.Second}, 5 * time.Second, false},
		{"persistent", Options{AutoDismiss: Persistent}, 0, false},
		{"sticky overrides duration", Options{AutoDismiss: 5 * time.Second, Sticky: true}, 0, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := &Recorder{}
			c := NewCenter(rec, 0)
			got := c.Show(context.Background(), Info, "hello", tc.opts)

			assert.Equal(t, tc.want, got.AutoDismiss)
			assert.Equal(t, tc.sticky, got.Sticky)
			assert.NotEmpty(t, got.ID)

			last, ok := rec.Last()
			require.True(t, ok)
			assert.Equal(t, got.ID, last.ID)
		})
	}
}

func TestCenterSeverityHelpers(t *testing.T) {
	rec := &Recorder{}
	c := NewCenter(rec, time.Second)
	ctx := context.Background()

	c.Success(ctx, "s")
	c.Info(ctx, "i")
	c.Warning(ctx, "w")
	c.Error(ctx, "e", Options{Sticky: true})

	toasts := rec.Toasts()
	require.Len(t, toasts, 4)
	assert.Equal(t, []Severity{Success, Info, Warning, Danger},
		[]Severity{toasts[0].Severity, toasts[1].Severity, toasts[2].Severity, toasts[3].Severity})
	assert.Equal(t, time.Second, toasts[0].AutoDismiss)
	assert.True(t, toasts[3].Sticky)
	assert.Zero(t, toasts[3].AutoDismiss)

	rec.Reset()
	assert.Empty(t, rec.Toasts())
}

func TestNilSinkDiscards(t *testing.T) {
	c := NewCenter(nil, 0)
	c.Error(context.Background(), "nobody hears this")
}

func TestLogSinkLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	c := NewCenter(NewLogSink(logger), 0)

	c.Error(context.Background(), "Session expired. Please sign in again.", Options{Sticky: true})
	out := buf.String()
	assert.True(t, strings.Contains(out, "level=ERROR"), out)
	assert.True(t, strings.Contains(out, "sticky=true"), out)
}
