package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultTokenTTL = 168 * time.Hour

var ErrInvalidToken = errors.New("invalid or expired token")

// TokenIssuer signs dashboard session tokens so the browser does not have to
// resend the shared password on every request.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT secret is not set")
	}

	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (i *TokenIssuer) Issue(subject string) (string, time.Time, error) {
	issuedAt := i.now()
	expires := issuedAt.Add(i.ttl)

	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    "fleetwatch",
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expires),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expires, nil
}

// Verify returns the subject of a valid token.
func (i *TokenIssuer) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return i.secret, nil
	}, jwt.WithIssuer("fleetwatch"), jwt.WithTimeFunc(i.now))

	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
