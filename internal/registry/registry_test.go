package registry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/monocle-dev/fleetwatch/internal/kv"
	"github.com/monocle-dev/fleetwatch/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry(t *testing.T, opts ...Option) (*Registry, kv.Store) {
	t.Helper()
	store := kv.NewGormStore(testutil.OpenDB(t))
	return New(store, opts...), store
}

func TestRegisterGeneratesToken(t *testing.T) {
	ctx := context.Background()
	fixed := time.UnixMilli(1_700_000_000_123)
	reg, _ := newRegistry(t, WithClock(func() time.Time { return fixed }))

	token, err := reg.Register(ctx, "10.0.0.1", "web1", "")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(token), 20)

	got, err := reg.Lookup(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "web1", got.Name)
	assert.Equal(t, "10.0.0.1", got.IP)
	assert.Equal(t, token, got.Token)
	assert.Equal(t, fixed.UnixMilli(), got.RegisteredAt)
}

func TestRegisterKeepsSuppliedToken(t *testing.T) {
	reg, _ := newRegistry(t)

	token, err := reg.Register(context.Background(), "10.0.0.2", "db1", "my-own-secret-token")
	require.NoError(t, err)
	assert.Equal(t, "my-own-secret-token", token)
}

func TestReregisterRotatesTokenByDefault(t *testing.T) {
	ctx := context.Background()
	reg, _ := newRegistry(t)

	first, err := reg.Register(ctx, "10.0.0.1", "web1", "")
	require.NoError(t, err)

	second, err := reg.Register(ctx, "10.0.0.1", "web1-renamed", "")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	got, err := reg.Lookup(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, second, got.Token)
	assert.Equal(t, "web1-renamed", got.Name)
}

func TestReregisterWithKeepTokenReturnsExisting(t *testing.T) {
	ctx := context.Background()
	reg, _ := newRegistry(t, WithKeepToken(true))

	first, err := reg.Register(ctx, "10.0.0.1", "web1", "")
	require.NoError(t, err)

	second, err := reg.Register(ctx, "10.0.0.1", "web1", "")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	third, err := reg.Register(ctx, "10.0.0.1", "web1", "explicit")
	require.NoError(t, err)
	assert.Equal(t, "explicit", third)
}

func TestLookupUnknownAndDelete(t *testing.T) {
	ctx := context.Background()
	reg, _ := newRegistry(t)

	_, err := reg.Lookup(ctx, "10.9.9.9")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = reg.Register(ctx, "10.9.9.9", "x", "")
	require.NoError(t, err)

	require.NoError(t, reg.Delete(ctx, "10.9.9.9"))
	require.NoError(t, reg.Delete(ctx, "10.9.9.9"))

	_, err = reg.Lookup(ctx, "10.9.9.9")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLookupCorruptRecord(t *testing.T) {
	ctx := context.Background()
	reg, store := newRegistry(t)

	require.NoError(t, store.Put(ctx, "server:10.0.0.5", []byte("{not json")))

	_, err := reg.Lookup(ctx, "10.0.0.5")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestGenerateTokenIsUnpredictable(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		token, err := GenerateToken()
		require.NoError(t, err)
		assert.Len(t, token, 32)
		assert.False(t, seen[token])
		seen[token] = true
	}
}
