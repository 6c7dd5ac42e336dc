package limiters

import (
	"sync"
	"time"
)

const (
	DefaultSpamMaxAttempts = 5
	DefaultSpamWindow      = 8 * time.Second
)

// SpamConfig holds the spam guard thresholds.
type SpamConfig struct {
	Enabled     bool
	MaxAttempts int
	Window      time.Duration
}

// SpamRecord is the per-identifier counter.
type SpamRecord struct {
	Attempts      int
	LastAttemptAt time.Time
	LockedOut     bool
}

// SpamLimiter counts attempts per identifier in memory and locks an
// identifier out once it exceeds MaxAttempts inside Window.
//
// A lockout is only lifted by the next Check that arrives at least Window
// after the last recorded attempt; there is no background expiry. Every
// Check, including a rejected one, counts as an attempt.
type SpamLimiter struct {
	config SpamConfig
	now    func() time.Time

	mu      sync.Mutex
	records map[string]*SpamRecord
}

func NewSpamLimiter(cfg SpamConfig) *SpamLimiter {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultSpamMaxAttempts
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultSpamWindow
	}
	return &SpamLimiter{
		config:  cfg,
		now:     time.Now,
		records: make(map[string]*SpamRecord),
	}
}

// WithClock replaces the time source. Intended for tests.
func (l *SpamLimiter) WithClock(now func() time.Time) *SpamLimiter {
	if l != nil && now != nil {
		l.now = now
	}
	return l
}

// Check records an attempt for identifier and reports whether it must be
// rejected.
func (l *SpamLimiter) Check(identifier string) bool {
	if l == nil || !l.config.Enabled {
		return false
	}

	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[identifier]
	if !ok {
		rec = &SpamRecord{LastAttemptAt: now}
		l.records[identifier] = rec
	}
	rec.Attempts++

	if rec.Attempts > l.config.MaxAttempts {
		if now.Sub(rec.LastAttemptAt) >= l.config.Window {
			*rec = SpamRecord{LastAttemptAt: now}
			return false
		}
		rec.LockedOut = true
		rec.LastAttemptAt = now
		return true
	}

	return rec.LockedOut
}

// Record returns a copy of the counter for identifier.
func (l *SpamLimiter) Record(identifier string) (SpamRecord, bool) {
	if l == nil {
		return SpamRecord{}, false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.records[identifier]
	if !ok {
		return SpamRecord{}, false
	}
	return *rec, true
}

// Reset forgets every identifier.
func (l *SpamLimiter) Reset() {
	if l == nil {
		return
	}
	l.mu.Lock()
	l.records = make(map[string]*SpamRecord)
	l.mu.Unlock()
}
