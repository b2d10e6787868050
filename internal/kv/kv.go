// Package kv provides the get/put/delete key-value backends the host registry runs on.
package kv

import "context"

// Store is a minimal key-value store. Get reports found=false for missing keys
// instead of returning an error, and Delete of a missing key succeeds.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
