package kv

import (
	"context"
	"encoding/base64"
	"errors"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// NATSStore keeps entries in a JetStream key-value bucket so several collectors
// can share one registry.
type NATSStore struct {
	nc     *nats.Conn
	kv     jetstream.KeyValue
	bucket string
}

var _ Store = (*NATSStore)(nil)

// NewNATSStore binds to bucket, creating it if it does not exist yet.
func NewNATSStore(ctx context.Context, nc *nats.Conn, bucket string) (*NATSStore, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	kvStore, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:  bucket,
		History: 1,
	})
	if err != nil {
		return nil, err
	}

	return &NATSStore{
		nc:     nc,
		kv:     kvStore,
		bucket: bucket,
	}, nil
}

// Dial connects to url and opens the bucket. The returned store owns the connection.
func Dial(ctx context.Context, url, bucket string) (*NATSStore, error) {
	nc, err := nats.Connect(url,
		nats.Name("fleetwatch"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, err
	}

	store, err := NewNATSStore(ctx, nc, bucket)
	if err != nil {
		nc.Close()
		return nil, err
	}

	return store, nil
}

func (s *NATSStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	entry, err := s.kv.Get(ctx, encodeKey(key))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) || errors.Is(err, jetstream.ErrKeyDeleted) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return entry.Value(), true, nil
}

func (s *NATSStore) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.kv.Put(ctx, encodeKey(key), value)
	return err
}

func (s *NATSStore) Delete(ctx context.Context, key string) error {
	err := s.kv.Delete(ctx, encodeKey(key))
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil
	}
	return err
}

func (s *NATSStore) Close() error {
	if s.nc != nil {
		s.nc.Close()
	}
	return nil
}

// encodeKey maps arbitrary keys (IPv6 addresses contain ':') onto the
// [-/_=.a-zA-Z0-9] alphabet JetStream accepts.
func encodeKey(key string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(key))
}
