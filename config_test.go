package sessionkit

import (
	"testing"
	"time"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.refreshInterval() != 15*time.Minute {
		t.Fatalf("refresh interval = %v", cfg.refreshInterval())
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantValid bool
	}{
		{
			name: "refresh shorter than access invalid",
			mutate: func(c *Config) {
				c.Session.RefreshTTL = time.Minute
			},
			wantValid: false,
		},
		{
			name: "explicit refresh interval valid",
			mutate: func(c *Config) {
				c.Session.RefreshInterval = time.Minute
			},
			wantValid: true,
		},
		{
			name: "relative cookie path invalid",
			mutate: func(c *Config) {
				c.Session.CookiePath = "app"
			},
			wantValid: false,
		},
		{
			name: "spam guard zero attempts invalid",
			mutate: func(c *Config) {
				c.SpamGuard.MaxAttempts = 0
			},
			wantValid: false,
		},
		{
			name: "disabled spam guard ignores thresholds",
			mutate: func(c *Config) {
				c.SpamGuard.Enabled = false
				c.SpamGuard.MaxAttempts = 0
			},
			wantValid: true,
		},
		{
			name: "failure rate above one invalid",
			mutate: func(c *Config) {
				c.Mock.FailureRate = 1.5
			},
			wantValid: false,
		},
		{
			name: "zero latency valid",
			mutate: func(c *Config) {
				c.Mock.Latency = 0
			},
			wantValid: true,
		},
		{
			name: "unknown password scheme invalid",
			mutate: func(c *Config) {
				c.Password.Scheme = "md5"
			},
			wantValid: false,
		},
		{
			name: "argon2 scheme valid",
			mutate: func(c *Config) {
				c.Password.Scheme = PasswordArgon2id
			},
			wantValid: true,
		},
		{
			name: "min strength above 100 invalid",
			mutate: func(c *Config) {
				c.Password.MinStrength = 120
			},
			wantValid: false,
		},
		{
			name: "jwt without key invalid",
			mutate: func(c *Config) {
				c.Tokens.Format = TokenJWT
			},
			wantValid: false,
		},
		{
			name: "jwt hs256 with secret valid",
			mutate: func(c *Config) {
				c.Tokens.Format = TokenJWT
				c.Tokens.PrivateKey = []byte("0123456789abcdef0123456789abcdef")
			},
			wantValid: true,
		},
		{
			name: "jwt ed25519 without public key invalid",
			mutate: func(c *Config) {
				c.Tokens.Format = TokenJWT
				c.Tokens.SigningMethod = "ed25519"
				c.Tokens.PrivateKey = make([]byte, 64)
			},
			wantValid: false,
		},
		{
			name: "protected sign-in route invalid",
			mutate: func(c *Config) {
				c.Routes.Protected = []string{"/sign-in"}
			},
			wantValid: false,
		},
		{
			name: "relative route invalid",
			mutate: func(c *Config) {
				c.Routes.SignUp = "signup"
			},
			wantValid: false,
		},
		{
			name: "audit without buffer invalid",
			mutate: func(c *Config) {
				c.Audit.Enabled = true
				c.Audit.BufferSize = 0
			},
			wantValid: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantValid && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tc.wantValid && err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("SESSIONKIT_SESSION_ACCESS_TTL", "1m")
	t.Setenv("SESSIONKIT_SPAM_MAX_ATTEMPTS", "3")
	t.Setenv("SESSIONKIT_MOCK_FAILURE_RATE", "0")
	t.Setenv("SESSIONKIT_PASSWORD_ARGON2_MEMORY_KB", "8192")
	t.Setenv("SESSIONKIT_TOKENS_SECRET", "shh")
	t.Setenv("SESSIONKIT_ROUTES_PROTECTED", "/,/profile,/settings")

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadConfigFromEnv: %v", err)
	}
	if cfg.Session.AccessTTL != time.Minute {
		t.Fatalf("access ttl = %v", cfg.Session.AccessTTL)
	}
	if cfg.Session.RefreshTTL != 7*24*time.Hour {
		t.Fatal("unset variables must keep defaults")
	}
	if cfg.SpamGuard.MaxAttempts != 3 || cfg.Mock.FailureRate != 0 {
		t.Fatalf("unexpected overlay %+v %+v", cfg.SpamGuard, cfg.Mock)
	}
	if cfg.Password.Argon2.Memory != 8192 {
		t.Fatalf("argon2 memory = %d", cfg.Password.Argon2.Memory)
	}
	if string(cfg.Tokens.PrivateKey) != "shh" {
		t.Fatal("secret must populate the private key")
	}
	if len(cfg.Routes.Protected) != 3 || cfg.Routes.Protected[2] != "/settings" {
		t.Fatalf("protected = %v", cfg.Routes.Protected)
	}
}

func TestLoadConfigFromEnvRejectsMalformedValue(t *testing.T) {
	t.Setenv("SESSIONKIT_SESSION_ACCESS_TTL", "fifteen")
	if _, err := LoadConfigFromEnv(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestCloneConfigIsDeep(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tokens.PrivateKey = []byte("key")
	out := cloneConfig(cfg)

	out.Tokens.PrivateKey[0] = 'X'
	out.Routes.Protected[0] = "/changed"
	if string(cfg.Tokens.PrivateKey) != "key" || cfg.Routes.Protected[0] != "/" {
		t.Fatal("clone shares memory with the source")
	}
}
