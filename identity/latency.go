package identity

import (
	"context"
	"time"
)

// DefaultLatency is the artificial round-trip applied by WithLatency when no
// explicit duration is given.
const DefaultLatency = time.Second

// Delayed wraps a Store and sleeps before every Get, Set and Delete to model a
// remote backend. Has, Clear and Count read local state and are not delayed.
type Delayed struct {
	inner Store
	delay time.Duration
}

// WithLatency decorates inner with a fixed delay. A negative delay disables
// the decorator; zero selects DefaultLatency.
func WithLatency(inner Store, delay time.Duration) *Delayed {
	if delay == 0 {
		delay = DefaultLatency
	}
	if delay < 0 {
		delay = 0
	}
	return &Delayed{inner: inner, delay: delay}
}

func (d *Delayed) Get(ctx context.Context, key string) (UserRecord, bool, error) {
	if err := Sleep(ctx, d.delay); err != nil {
		return UserRecord{}, false, err
	}
	return d.inner.Get(ctx, key)
}

func (d *Delayed) Set(ctx context.Context, key string, value UserRecord) error {
	if err := Sleep(ctx, d.delay); err != nil {
		return err
	}
	return d.inner.Set(ctx, key, value)
}

func (d *Delayed) Delete(ctx context.Context, key string) (bool, error) {
	if err := Sleep(ctx, d.delay); err != nil {
		return false, err
	}
	return d.inner.Delete(ctx, key)
}

func (d *Delayed) Has(ctx context.Context, key string) (bool, error) {
	return d.inner.Has(ctx, key)
}

func (d *Delayed) Clear(ctx context.Context) error {
	return d.inner.Clear(ctx)
}

func (d *Delayed) Count(ctx context.Context) (int, error) {
	return d.inner.Count(ctx)
}

// Records forwards to the wrapped store when it can enumerate.
func (d *Delayed) Records(ctx context.Context) ([]Entry, error) {
	l, ok := d.inner.(Lister)
	if !ok {
		return nil, nil
	}
	return l.Records(ctx)
}

// Sleep blocks for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
