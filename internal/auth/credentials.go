package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/monocle-dev/fleetwatch/internal/kv"
	"golang.org/x/crypto/bcrypt"
)

// Keys consulted in the registry store when no credential is configured.
const (
	KVUserKey     = "user"
	KVPasswordKey = "password"
)

// Credentials checks the single shared dashboard credential. The configured
// user/password win; otherwise the pair is read from the key-value store on
// every check so it can be changed without a restart.
type Credentials struct {
	user     string
	password string
	store    kv.Store
}

func NewCredentials(user, password string, store kv.Store) *Credentials {
	return &Credentials{user: user, password: password, store: store}
}

func (c *Credentials) Verify(ctx context.Context, user, password string) (bool, error) {
	wantUser, wantPassword, err := c.resolve(ctx)
	if err != nil {
		return false, err
	}

	if wantUser == "" || wantPassword == "" {
		return false, nil
	}

	if subtle.ConstantTimeCompare([]byte(user), []byte(wantUser)) != 1 {
		return false, nil
	}

	return passwordMatches(wantPassword, password), nil
}

func (c *Credentials) resolve(ctx context.Context) (string, string, error) {
	if c.user != "" {
		return c.user, c.password, nil
	}

	if c.store == nil {
		return "", "", nil
	}

	user, _, err := c.store.Get(ctx, KVUserKey)
	if err != nil {
		return "", "", fmt.Errorf("failed to read dashboard user: %w", err)
	}

	password, _, err := c.store.Get(ctx, KVPasswordKey)
	if err != nil {
		return "", "", fmt.Errorf("failed to read dashboard password: %w", err)
	}

	return string(user), string(password), nil
}

// passwordMatches accepts either a bcrypt hash or a plain stored password.
func passwordMatches(stored, given string) bool {
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}

	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}
