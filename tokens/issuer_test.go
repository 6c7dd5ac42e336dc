package tokens

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/authdemo/sessionkit/identity"
)

func fixedRand(v float64) func() float64 {
	return func() float64 { return v }
}

func TestIssueTokenPairFormatAndUniqueness(t *testing.T) {
	m := NewMockIssuer(identity.NewMemoryStore(), Config{})
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		p := m.IssueTokenPair()
		if !strings.HasPrefix(p.AccessToken, "access_token_") || !strings.HasPrefix(p.RefreshToken, "refresh_token_") {
			t.Fatalf("unexpected token format: %+v", p)
		}
		for _, tok := range []string{p.AccessToken, p.RefreshToken} {
			if _, dup := seen[tok]; dup {
				t.Fatalf("duplicate token %q", tok)
			}
			seen[tok] = struct{}{}
		}
	}
}

func TestRefreshAccessTokenSucceeds(t *testing.T) {
	m := NewMockIssuer(identity.NewMemoryStore(), Config{FailureRate: DefaultFailureRate, Rand: fixedRand(0.5)})
	tok, err := m.RefreshAccessToken(context.Background(), "user_1")
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if !strings.HasPrefix(tok, "mock_auth_token_user_1_") {
		t.Fatalf("unexpected token %q", tok)
	}
}

func TestRefreshAccessTokenInjectedFailure(t *testing.T) {
	m := NewMockIssuer(identity.NewMemoryStore(), Config{FailureRate: DefaultFailureRate, Rand: fixedRand(0.01)})
	if _, err := m.RefreshAccessToken(context.Background(), "user_1"); !errors.Is(err, ErrRefreshUnavailable) {
		t.Fatalf("expected ErrRefreshUnavailable, got %v", err)
	}
}

func TestLookupDistinguishesMissingFromFailure(t *testing.T) {
	store := identity.NewMemoryStore()
	ctx := context.Background()
	if err := store.Set(ctx, "tok", identity.UserRecord{Email: "a@x.com", UserID: "user_1"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	ok := NewMockIssuer(store, Config{FailureRate: DefaultFailureRate, Rand: fixedRand(0.9)})
	rec, err := ok.LookupUserByToken(ctx, "tok")
	if err != nil || rec == nil || rec.UserID != "user_1" {
		t.Fatalf("lookup existing = %+v, %v", rec, err)
	}
	rec, err = ok.LookupUserByToken(ctx, "missing")
	if err != nil || rec != nil {
		t.Fatalf("lookup missing = %+v, %v, want nil, nil", rec, err)
	}

	failing := NewMockIssuer(store, Config{FailureRate: DefaultFailureRate, Rand: fixedRand(0)})
	if _, err := failing.LookupUserByToken(ctx, "tok"); !errors.Is(err, ErrLookupUnavailable) {
		t.Fatalf("expected ErrLookupUnavailable, got %v", err)
	}
}

func TestRefreshHonorsLatencyAndCancellation(t *testing.T) {
	m := NewMockIssuer(identity.NewMemoryStore(), Config{Latency: time.Hour})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := m.RefreshAccessToken(ctx, "user_1"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

type failingMinter struct{}

func (failingMinter) Mint(string) (string, error) { return "", errors.New("signer offline") }

func TestRefreshWrapsMinterError(t *testing.T) {
	m := NewMockIssuer(identity.NewMemoryStore(), Config{Minter: failingMinter{}})
	if _, err := m.RefreshAccessToken(context.Background(), "user_1"); !errors.Is(err, ErrRefreshUnavailable) {
		t.Fatalf("expected ErrRefreshUnavailable, got %v", err)
	}
}
