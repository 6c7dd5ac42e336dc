package tokens

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/authdemo/sessionkit/identity"
	"github.com/authdemo/sessionkit/internal"
	"github.com/google/uuid"
)

var (
	// ErrRefreshUnavailable is returned when the simulated refresh call fails.
	ErrRefreshUnavailable = errors.New("mock refetch failed")
	// ErrLookupUnavailable is returned when the simulated lookup call fails.
	ErrLookupUnavailable = errors.New("failed to fetch user data")
)

// DefaultFailureRate is the probability that a refresh or lookup call fails.
const DefaultFailureRate = 0.05

// Pair is an access/refresh token pair.
type Pair struct {
	AccessToken  string
	RefreshToken string
}

// AccessMinter produces a new access token for a user.
type AccessMinter interface {
	Mint(userID string) (string, error)
}

// OpaqueMinter mints mock_auth_token_<userID>_<id> strings.
type OpaqueMinter struct{}

func (OpaqueMinter) Mint(userID string) (string, error) {
	return "mock_auth_token_" + userID + "_" + uuid.NewString(), nil
}

// Config tunes the mock backend.
type Config struct {
	Latency     time.Duration
	FailureRate float64
	Minter      AccessMinter
	// Rand returns a uniform value in [0, 1). It is drawn once per call.
	Rand func() float64
}

// MockIssuer stands in for the identity provider's token endpoints. Lookups
// are served from the identity store; refresh never consults it.
type MockIssuer struct {
	store       identity.Store
	latency     time.Duration
	failureRate float64
	minter      AccessMinter

	randMu sync.Mutex
	rand   func() float64
}

func NewMockIssuer(store identity.Store, cfg Config) *MockIssuer {
	if cfg.Minter == nil {
		cfg.Minter = OpaqueMinter{}
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.Float64
	}
	if cfg.FailureRate < 0 {
		cfg.FailureRate = 0
	}
	return &MockIssuer{
		store:       store,
		latency:     cfg.Latency,
		failureRate: cfg.FailureRate,
		minter:      cfg.Minter,
		rand:        cfg.Rand,
	}
}

// IssueTokenPair returns two globally unique opaque tokens. It never fails.
func (m *MockIssuer) IssueTokenPair() Pair {
	id := uuid.NewString()
	return Pair{
		AccessToken:  "access_token_" + id + "_" + internal.ShortRandom(7),
		RefreshToken: "refresh_token_" + id + "_" + internal.ShortRandom(7),
	}
}

// RefreshAccessToken simulates the refresh endpoint. After the configured
// latency it fails with probability FailureRate.
func (m *MockIssuer) RefreshAccessToken(ctx context.Context, userID string) (string, error) {
	if err := identity.Sleep(ctx, m.latency); err != nil {
		return "", err
	}
	if m.fails() {
		return "", ErrRefreshUnavailable
	}
	tok, err := m.minter.Mint(userID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRefreshUnavailable, err)
	}
	return tok, nil
}

// LookupUserByToken resolves the user behind an access token. A missing
// token yields (nil, nil); a simulated or store failure yields an error
// wrapping ErrLookupUnavailable.
func (m *MockIssuer) LookupUserByToken(ctx context.Context, token string) (*identity.UserRecord, error) {
	if err := identity.Sleep(ctx, m.latency); err != nil {
		return nil, err
	}
	if m.fails() {
		return nil, ErrLookupUnavailable
	}
	rec, ok, err := m.store.Get(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookupUnavailable, err)
	}
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *MockIssuer) fails() bool {
	if m.failureRate == 0 {
		return false
	}
	m.randMu.Lock()
	v := m.rand()
	m.randMu.Unlock()
	return v < m.failureRate
}
