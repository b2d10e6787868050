package kv_test

import (
	"context"
	"testing"
	"time"

	"github.com/monocle-dev/fleetwatch/internal/kv"
	"github.com/monocle-dev/fleetwatch/internal/testutil"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the contract every backend must satisfy.
func exerciseStore(t *testing.T, store kv.Store) {
	t.Helper()
	ctx := context.Background()

	_, found, err := store.Get(ctx, "server:10.0.0.1")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Put(ctx, "server:10.0.0.1", []byte(`{"token":"a"}`)))

	value, found, err := store.Get(ctx, "server:10.0.0.1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"token":"a"}`, string(value))

	require.NoError(t, store.Put(ctx, "server:10.0.0.1", []byte(`{"token":"b"}`)))

	value, _, err = store.Get(ctx, "server:10.0.0.1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"token":"b"}`, string(value))

	require.NoError(t, store.Put(ctx, "server:fe80::1", []byte("v6")))
	value, found, err = store.Get(ctx, "server:fe80::1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v6", string(value))

	require.NoError(t, store.Delete(ctx, "server:10.0.0.1"))
	_, found, err = store.Get(ctx, "server:10.0.0.1")
	require.NoError(t, err)
	assert.False(t, found)

	// deleting twice, or deleting something never written, is fine
	require.NoError(t, store.Delete(ctx, "server:10.0.0.1"))
	require.NoError(t, store.Delete(ctx, "server:never-written"))
}

func TestGormStore(t *testing.T) {
	exerciseStore(t, kv.NewGormStore(testutil.OpenDB(t)))
}

func TestNATSStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping embedded NATS test in short mode")
	}

	srv, err := server.NewServer(&server.Options{
		Host:      "127.0.0.1",
		Port:      -1,
		JetStream: true,
		StoreDir:  t.TempDir(),
		NoLog:     true,
		NoSigs:    true,
	})
	require.NoError(t, err)

	go srv.Start()
	t.Cleanup(srv.Shutdown)

	if !srv.ReadyForConnections(10 * time.Second) {
		t.Fatal("embedded NATS server not ready for connections")
	}

	nc, err := nats.Connect(srv.ClientURL())
	require.NoError(t, err)
	t.Cleanup(nc.Close)

	store, err := kv.NewNATSStore(context.Background(), nc, "fleetwatch-test")
	require.NoError(t, err)

	exerciseStore(t, store)

	// reopening an existing bucket must not fail
	_, err = kv.NewNATSStore(context.Background(), nc, "fleetwatch-test")
	require.NoError(t, err)
}
