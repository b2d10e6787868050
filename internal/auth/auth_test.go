package auth

import (
	"context"
	"testing"
	"time"

	"github.com/monocle-dev/fleetwatch/internal/kv"
	"github.com/monocle-dev/fleetwatch/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestCredentialsPlainPassword(t *testing.T) {
	creds := NewCredentials("admin", "s3cret", nil)

	ok, err := creds.Verify(context.Background(), "admin", "s3cret")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = creds.Verify(context.Background(), "admin", "wrong")
	assert.False(t, ok)

	ok, _ = creds.Verify(context.Background(), "root", "s3cret")
	assert.False(t, ok)
}

func TestCredentialsBcryptPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	creds := NewCredentials("admin", string(hash), nil)

	ok, err := creds.Verify(context.Background(), "admin", "s3cret")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = creds.Verify(context.Background(), "admin", string(hash))
	assert.False(t, ok)
}

func TestCredentialsFromKVStore(t *testing.T) {
	ctx := context.Background()
	store := kv.NewGormStore(testutil.OpenDB(t))
	creds := NewCredentials("", "", store)

	ok, err := creds.Verify(ctx, "", "")
	require.NoError(t, err)
	assert.False(t, ok, "no credential configured must reject everything")

	require.NoError(t, store.Put(ctx, KVUserKey, []byte("ops")))
	require.NoError(t, store.Put(ctx, KVPasswordKey, []byte("hunter2")))

	ok, err = creds.Verify(ctx, "ops", "hunter2")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTokenIssuerRoundTrip(t *testing.T) {
	issuer, err := NewTokenIssuer("secret", time.Hour)
	require.NoError(t, err)

	token, expires, err := issuer.Issue("admin")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	subject, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", subject)

	other, err := NewTokenIssuer("different", time.Hour)
	require.NoError(t, err)
	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuerExpiry(t *testing.T) {
	issuer, err := NewTokenIssuer("secret", time.Minute)
	require.NoError(t, err)

	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := issuer.Issue("admin")
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewTokenIssuerRequiresSecret(t *testing.T) {
	_, err := NewTokenIssuer("", time.Hour)
	assert.Error(t, err)
}
