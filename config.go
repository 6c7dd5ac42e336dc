package sessionkit

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/authdemo/sessionkit/password"
	"github.com/caarlos0/env/v11"
)

// EnvPrefix prefixes every variable read by LoadConfigFromEnv.
const EnvPrefix = "SESSIONKIT_"

// Config is the full Coordinator configuration. Obtain defaults from
// DefaultConfig or LoadConfigFromEnv, adjust, then pass to Builder.WithConfig.
type Config struct {
	Session   SessionConfig   `envPrefix:"SESSION_"`
	SpamGuard SpamGuardConfig `envPrefix:"SPAM_"`
	Mock      MockConfig      `envPrefix:"MOCK_"`
	Password  PasswordConfig  `envPrefix:"PASSWORD_"`
	Tokens    TokensConfig    `envPrefix:"TOKENS_"`
	Notify    NotifyConfig    `envPrefix:"NOTIFY_"`
	Routes    RoutesConfig    `envPrefix:"ROUTES_"`
	Audit     AuditConfig     `envPrefix:"AUDIT_"`
	Metrics   MetricsConfig   `envPrefix:"METRICS_"`
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls token lifetimes, the refresh cadence and the
// session cookies.
type SessionConfig struct {
	AccessTTL  time.Duration `env:"ACCESS_TTL"`
	RefreshTTL time.Duration `env:"REFRESH_TTL"`
	// RefreshInterval is the background refresh period. Zero means AccessTTL.
	RefreshInterval time.Duration `env:"REFRESH_INTERVAL"`
	CookiePath      string        `env:"COOKIE_PATH"`
	CookieDomain    string        `env:"COOKIE_DOMAIN"`
	CookieSecure    bool          `env:"COOKIE_SECURE"`
}

// SpamGuardConfig tunes the per-email attempt limiter.
type SpamGuardConfig struct {
	Enabled     bool          `env:"ENABLED"`
	MaxAttempts int           `env:"MAX_ATTEMPTS"`
	Window      time.Duration `env:"WINDOW"`
}

// MockConfig shapes the simulated backend: the delay applied to every
// identity store and issuer call, and the issuer's failure probability.
type MockConfig struct {
	Latency     time.Duration `env:"LATENCY"`
	FailureRate float64       `env:"FAILURE_RATE"`
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordScheme selects the credential hasher.
type PasswordScheme string

const (
	// PasswordDemo is the deterministic salted SHA-256 scheme.
	PasswordDemo PasswordScheme = "demo"
	// PasswordArgon2id hashes with argon2id and a random salt.
	PasswordArgon2id PasswordScheme = "argon2id"
)

// PasswordConfig selects and tunes the hasher. MinStrength (0 to 100) is
// enforced at sign-up when positive.
type PasswordConfig struct {
	Scheme      PasswordScheme        `env:"SCHEME"`
	DemoSalt    string                `env:"DEMO_SALT"`
	DemoSecret  string                `env:"DEMO_SECRET"`
	MinStrength int                   `env:"MIN_STRENGTH"`
	Argon2      password.Argon2Config `envPrefix:"ARGON2_"`
}

/*
====================================
TOKENS CONFIG
====================================
*/

// TokenFormat selects how refreshed access tokens are minted.
type TokenFormat string

const (
	// TokenOpaque mints mock_auth_token_<userID>_<id> strings.
	TokenOpaque TokenFormat = "opaque"
	// TokenJWT mints signed JWTs through the jwt package.
	TokenJWT TokenFormat = "jwt"
)

// TokensConfig configures the refresh minter. Keys are only read for the
// JWT format; ed25519 keys are raw bytes, HS256 uses PrivateKey as secret.
type TokensConfig struct {
	Format        TokenFormat `env:"FORMAT"`
	SigningMethod string      `env:"SIGNING_METHOD"`
	Secret        string      `env:"SECRET"`
	Issuer        string      `env:"ISSUER"`
	Audience      string      `env:"AUDIENCE"`
	PrivateKey    []byte
	PublicKey     []byte
}

// NotifyConfig holds the default toast lifetime.
type NotifyConfig struct {
	AutoDismiss time.Duration `env:"AUTO_DISMISS"`
}

// RoutesConfig names the navigation targets. Protected lists the exact paths
// the route guard requires a session for.
type RoutesConfig struct {
	SignIn    string   `env:"SIGN_IN"`
	SignUp    string   `env:"SIGN_UP"`
	Protected []string `env:"PROTECTED" envSeparator:","`
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool `env:"ENABLED"`
	BufferSize int  `env:"BUFFER_SIZE"`
	DropIfFull bool `env:"DROP_IF_FULL"`
}

// MetricsConfig toggles the in-process counters.
type MetricsConfig struct {
	Enabled                 bool `env:"ENABLED"`
	EnableLatencyHistograms bool `env:"LATENCY_HISTOGRAMS"`
}

// DefaultConfig returns the reference configuration: 15 minute access
// tokens, 7 day refresh tokens, 5 attempts per 8 seconds, 1 second of mock
// latency and a 5% mock failure rate.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Session: SessionConfig{
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 7 * 24 * time.Hour,
			CookiePath: "/",
		},
		SpamGuard: SpamGuardConfig{
			Enabled:     true,
			MaxAttempts: 5,
			Window:      8 * time.Second,
		},
		Mock: MockConfig{
			Latency:     time.Second,
			FailureRate: 0.05,
		},
		Password: PasswordConfig{
			Scheme: PasswordDemo,
			Argon2: password.DefaultArgon2Config(),
		},
		Tokens: TokensConfig{
			Format:        TokenOpaque,
			SigningMethod: "hs256",
		},
		Notify: NotifyConfig{
			AutoDismiss: 2 * time.Second,
		},
		Routes: RoutesConfig{
			SignIn:    "/sign-in",
			SignUp:    "/signup",
			Protected: []string{"/", "/profile"},
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
	}
}

// LoadConfigFromEnv overlays SESSIONKIT_* variables (for example
// SESSIONKIT_SESSION_ACCESS_TTL or SESSIONKIT_MOCK_FAILURE_RATE) onto
// DefaultConfig. The result is not validated; Build does that.
func LoadConfigFromEnv() (Config, error) {
	cfg := defaultConfig()
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Tokens.Secret != "" && len(cfg.Tokens.PrivateKey) == 0 {
		cfg.Tokens.PrivateKey = []byte(cfg.Tokens.Secret)
	}
	return cfg, nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Tokens.PrivateKey = cloneBytes(cfg.Tokens.PrivateKey)
	out.Tokens.PublicKey = cloneBytes(cfg.Tokens.PublicKey)
	if cfg.Routes.Protected != nil {
		out.Routes.Protected = append([]string(nil), cfg.Routes.Protected...)
	}
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// refreshInterval resolves the zero default.
func (c *Config) refreshInterval() time.Duration {
	if c.Session.RefreshInterval > 0 {
		return c.Session.RefreshInterval
	}
	return c.Session.AccessTTL
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	// Session
	if c.Session.AccessTTL <= 0 {
		return errors.New("Session AccessTTL must be > 0")
	}
	if c.Session.RefreshTTL <= 0 {
		return errors.New("Session RefreshTTL must be > 0")
	}
	if c.Session.RefreshTTL < c.Session.AccessTTL {
		return errors.New("Session RefreshTTL must be >= AccessTTL")
	}
	if c.Session.RefreshInterval < 0 {
		return errors.New("Session RefreshInterval must be >= 0")
	}
	if c.Session.CookiePath != "" && !strings.HasPrefix(c.Session.CookiePath, "/") {
		return errors.New("Session CookiePath must start with '/'")
	}

	// Spam guard
	if c.SpamGuard.Enabled {
		if c.SpamGuard.MaxAttempts <= 0 {
			return errors.New("SpamGuard MaxAttempts must be > 0")
		}
		if c.SpamGuard.Window <= 0 {
			return errors.New("SpamGuard Window must be > 0")
		}
	}

	// Mock backend
	if c.Mock.Latency < 0 {
		return errors.New("Mock Latency must be >= 0")
	}
	if c.Mock.FailureRate < 0 || c.Mock.FailureRate > 1 {
		return errors.New("Mock FailureRate must be between 0 and 1")
	}

	// Password
	switch c.Password.Scheme {
	case PasswordDemo:
	case PasswordArgon2id:
		if err := c.Password.Argon2.Validate(); err != nil {
			return fmt.Errorf("Password Argon2: %w", err)
		}
	default:
		return errors.New("Password Scheme must be 'demo' or 'argon2id'")
	}
	if c.Password.MinStrength < 0 || c.Password.MinStrength > 100 {
		return errors.New("Password MinStrength must be between 0 and 100")
	}

	// Tokens
	switch c.Tokens.Format {
	case TokenOpaque:
	case TokenJWT:
		if c.Tokens.SigningMethod != "ed25519" && c.Tokens.SigningMethod != "hs256" {
			return errors.New("unsupported Tokens SigningMethod")
		}
		if len(c.Tokens.PrivateKey) == 0 {
			return errors.New("Tokens JWT format requires PrivateKey")
		}
		if c.Tokens.SigningMethod == "ed25519" && len(c.Tokens.PublicKey) == 0 {
			return errors.New("ed25519 requires PublicKey")
		}
	default:
		return errors.New("Tokens Format must be 'opaque' or 'jwt'")
	}

	// Notify
	if c.Notify.AutoDismiss < 0 {
		return errors.New("Notify AutoDismiss must be >= 0")
	}

	// Routes
	if !strings.HasPrefix(c.Routes.SignIn, "/") || !strings.HasPrefix(c.Routes.SignUp, "/") {
		return errors.New("Routes SignIn and SignUp must be absolute paths")
	}
	for _, p := range c.Routes.Protected {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("Routes Protected entry %q must be an absolute path", p)
		}
		if p == c.Routes.SignIn || p == c.Routes.SignUp {
			return fmt.Errorf("Routes Protected must not include %q", p)
		}
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when enabled")
	}

	return nil
}
