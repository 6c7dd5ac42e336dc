package sessionkit

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/authdemo/sessionkit/identity"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runLifecycle registers, logs out and signs back in through a fresh
// coordinator built on the same store, which must seed its email index from
// the persisted records.
func runLifecycle(t *testing.T, store identity.Store) {
	t.Helper()
	ctx := context.Background()
	cfg := testConfig()
	cfg.Mock.FailureRate = 0

	first, err := New().WithConfig(cfg).WithIdentityStore(store).Build()
	require.NoError(t, err)
	defer first.Close()

	res := first.Register(ctx, SignUpInput{Email: "a@x.com", Password: "Secret1!", Company: "Acme"}, nil)
	require.True(t, res.Success, "register: %+v", res)
	userID := res.User.UserID

	require.NoError(t, first.RefreshNow(ctx))
	token := first.Session().AccessToken()

	rec, ok, err := store.Get(ctx, token)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, userID, rec.UserID)
	assert.Equal(t, "Acme", rec.Company)

	second, err := New().WithConfig(cfg).WithIdentityStore(store).Build()
	require.NoError(t, err)
	defer second.Close()

	second.Session().SetTokens(token, first.Session().RefreshToken())
	require.NoError(t, second.InitAuth(ctx))
	require.NotNil(t, second.CurrentUser())
	assert.Equal(t, userID, second.CurrentUser().UserID)

	second.Logout(ctx)
	has, err := store.Has(ctx, token)
	require.NoError(t, err)
	assert.False(t, has)

	third, err := New().WithConfig(cfg).WithIdentityStore(store).Build()
	require.NoError(t, err)
	defer third.Close()

	// The store is empty after logout, so a fresh coordinator cannot resolve
	// the email any more.
	res = third.Authenticate(ctx, "a@x.com", "Secret1!", nil)
	assert.ErrorIs(t, res.Err, ErrInvalidCredentials)

	// The coordinator that logged out still knows the user.
	res = second.Authenticate(ctx, "a@x.com", "Secret1!", nil)
	require.True(t, res.Success, "authenticate: %+v", res)
	assert.Equal(t, userID, res.User.UserID)
}

func TestCoordinatorOnRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	runLifecycle(t, identity.NewRedisStore(client, "sessionkit-test"))
}

func TestCoordinatorOnSQLite(t *testing.T) {
	store, err := identity.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "identity.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	runLifecycle(t, store)
}

func TestBuildFailsWhenIndexSeedFails(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	_, err := New().
		WithConfig(testConfig()).
		WithIdentityStore(identity.NewRedisStore(client, "sessionkit-test")).
		Build()
	require.Error(t, err)
}
