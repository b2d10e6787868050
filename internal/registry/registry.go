// Package registry maps host IPs to their registration (display name and bearer token).
package registry

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/monocle-dev/fleetwatch/internal/kv"
	"github.com/monocle-dev/fleetwatch/internal/types"
)

var ErrNotFound = errors.New("registration not found")

const tokenBytes = 24

type Registry struct {
	store     kv.Store
	keepToken bool
	now       func() time.Time
}

type Option func(*Registry)

// WithKeepToken makes re-registration without an explicit token return the
// host's existing token instead of issuing a new one.
func WithKeepToken(keep bool) Option {
	return func(r *Registry) {
		r.keepToken = keep
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

func New(store kv.Store, opts ...Option) *Registry {
	r := &Registry{
		store: store,
		now:   time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register stores the registration for ip, overwriting any previous one, and
// returns the effective token. An empty token generates a fresh one.
func (r *Registry) Register(ctx context.Context, ip, name, token string) (string, error) {
	if token == "" && r.keepToken {
		existing, err := r.Lookup(ctx, ip)

		switch {
		case err == nil:
			token = existing.Token
		case !errors.Is(err, ErrNotFound):
			return "", err
		}
	}

	if token == "" {
		generated, err := GenerateToken()
		if err != nil {
			return "", err
		}
		token = generated
	}

	reg := types.Registration{
		Name:         name,
		IP:           ip,
		Token:        token,
		RegisteredAt: r.now().UnixMilli(),
	}

	value, err := json.Marshal(reg)
	if err != nil {
		return "", fmt.Errorf("failed to encode registration: %w", err)
	}

	if err := r.store.Put(ctx, key(ip), value); err != nil {
		return "", fmt.Errorf("failed to store registration for %s: %w", ip, err)
	}

	return token, nil
}

func (r *Registry) Lookup(ctx context.Context, ip string) (types.Registration, error) {
	value, found, err := r.store.Get(ctx, key(ip))

	if err != nil {
		return types.Registration{}, fmt.Errorf("failed to read registration for %s: %w", ip, err)
	}

	if !found {
		return types.Registration{}, ErrNotFound
	}

	var reg types.Registration

	if err := json.Unmarshal(value, &reg); err != nil {
		return types.Registration{}, fmt.Errorf("corrupt registration for %s: %w", ip, err)
	}

	return reg, nil
}

// Delete removes the registration. Unknown hosts are not an error.
func (r *Registry) Delete(ctx context.Context, ip string) error {
	if err := r.store.Delete(ctx, key(ip)); err != nil {
		return fmt.Errorf("failed to delete registration for %s: %w", ip, err)
	}
	return nil
}

// GenerateToken returns a 32 character URL-safe random token.
func GenerateToken() (string, error) {
	buf := make([]byte, tokenBytes)

	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func key(ip string) string {
	return types.RegistryKeyPrefix + ip
}
