package sessionkit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/authdemo/sessionkit/identity"
	internalaudit "github.com/authdemo/sessionkit/internal/audit"
	"github.com/authdemo/sessionkit/internal/index"
	"github.com/authdemo/sessionkit/internal/limiters"
	"github.com/authdemo/sessionkit/internal/logging"
	"github.com/authdemo/sessionkit/jwt"
	"github.com/authdemo/sessionkit/notify"
	"github.com/authdemo/sessionkit/password"
	"github.com/authdemo/sessionkit/session"
	"github.com/authdemo/sessionkit/tokens"
)

// Builder assembles a [Coordinator]. Configure it during initialization and
// call Build once.
type Builder struct {
	config Config

	store     identity.Store
	issuer    TokenIssuer
	hasher    password.Hasher
	minter    tokens.AccessMinter
	toastSink notify.Sink
	navigator Navigator
	logger    *slog.Logger
	auditSink AuditSink

	now       func() time.Time
	rand      func() float64
	newUserID func() string

	built bool
}

// New returns a Builder holding DefaultConfig.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithIdentityStore replaces the in-memory identity store. When the store
// also implements [identity.Lister], its records seed the email index at
// Build time.
func (b *Builder) WithIdentityStore(store identity.Store) *Builder {
	b.store = store
	return b
}

// WithTokenIssuer replaces the mock issuer. Mock.FailureRate and the access
// minter are then ignored.
func (b *Builder) WithTokenIssuer(issuer TokenIssuer) *Builder {
	b.issuer = issuer
	return b
}

// WithHasher overrides the hasher selected by Password.Scheme.
func (b *Builder) WithHasher(h password.Hasher) *Builder {
	b.hasher = h
	return b
}

// WithAccessMinter overrides how the mock issuer mints refreshed access
// tokens.
func (b *Builder) WithAccessMinter(m tokens.AccessMinter) *Builder {
	b.minter = m
	return b
}

// WithNotifier sets where toasts are delivered. Without one they are
// discarded.
func (b *Builder) WithNotifier(sink notify.Sink) *Builder {
	b.toastSink = sink
	return b
}

func (b *Builder) WithNavigator(n Navigator) *Builder {
	b.navigator = n
	return b
}

func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	b.logger = l
	return b
}

// WithAuditSink sets the audit destination. Events are only dispatched when
// Audit.Enabled is true.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// WithClock replaces the time source of the spam guard and record
// timestamps.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// WithRand replaces the mock issuer's failure draw. fn must return values in
// [0, 1).
func (b *Builder) WithRand(fn func() float64) *Builder {
	b.rand = fn
	return b
}

// WithUserIDGenerator replaces the user_<uuid>_<suffix> generator.
func (b *Builder) WithUserIDGenerator(fn func() string) *Builder {
	b.newUserID = fn
	return b
}

// Build validates the configuration and wires the Coordinator. A Builder can
// only be built once.
func (b *Builder) Build() (*Coordinator, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	now := b.now
	if now == nil {
		now = time.Now
	}

	// -------- IDENTITY STORE --------
	base := b.store
	if base == nil {
		base = identity.NewMemoryStore()
	}
	var store identity.Store = base
	if cfg.Mock.Latency > 0 {
		store = identity.WithLatency(base, cfg.Mock.Latency)
	}

	// -------- EMAIL INDEX --------
	emails := index.NewEmail()
	if lister, ok := base.(identity.Lister); ok {
		records, err := lister.Records(context.Background())
		if err != nil {
			return nil, fmt.Errorf("seed email index: %w", err)
		}
		emails.Seed(records)
	}

	// -------- HASHER --------
	hasher := b.hasher
	if hasher == nil {
		switch cfg.Password.Scheme {
		case PasswordArgon2id:
			a, err := password.NewArgon2(cfg.Password.Argon2)
			if err != nil {
				return nil, err
			}
			hasher = a
		default:
			hasher = password.NewDemo(cfg.Password.DemoSalt, cfg.Password.DemoSecret)
		}
	}

	// -------- TOKEN ISSUER --------
	issuer := b.issuer
	if issuer == nil {
		minter := b.minter
		if minter == nil && cfg.Tokens.Format == TokenJWT {
			m, err := jwt.NewManager(jwt.Config{
				AccessTTL:     cfg.Session.AccessTTL,
				SigningMethod: jwt.SigningMethod(cfg.Tokens.SigningMethod),
				PrivateKey:    cfg.Tokens.PrivateKey,
				PublicKey:     cfg.Tokens.PublicKey,
				Issuer:        cfg.Tokens.Issuer,
				Audience:      cfg.Tokens.Audience,
			})
			if err != nil {
				return nil, fmt.Errorf("jwt minter: %w", err)
			}
			minter = m
		}
		// The issuer applies its own latency, so it reads the undelayed store.
		issuer = tokens.NewMockIssuer(base, tokens.Config{
			Latency:     cfg.Mock.Latency,
			FailureRate: cfg.Mock.FailureRate,
			Minter:      minter,
			Rand:        b.rand,
		})
	}

	// -------- SPAM GUARD --------
	spam := limiters.NewSpamLimiter(limiters.SpamConfig{
		Enabled:     cfg.SpamGuard.Enabled,
		MaxAttempts: cfg.SpamGuard.MaxAttempts,
		Window:      cfg.SpamGuard.Window,
	}).WithClock(b.now)

	// -------- AUDIT --------
	sink := b.auditSink
	if sink == nil {
		sink = NoOpSink{}
	}
	dispatcher := internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, sink)

	ctx, cancel := context.WithCancel(context.Background())

	b.built = true

	return &Coordinator{
		config:    cfg,
		session:   session.NewStore(),
		store:     store,
		issuer:    issuer,
		hasher:    hasher,
		spam:      spam,
		index:     emails,
		notifier:  notify.NewCenter(b.toastSink, cfg.Notify.AutoDismiss),
		navigator: b.navigator,
		logger:    logging.NewSlogLogger(b.logger),
		audit:     dispatcher,
		metrics:   NewMetrics(cfg.Metrics),
		now:       now,
		newUserID: b.newUserID,
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}
