// Package devtoken mints and verifies the HS256 bearer tokens issued by the dev API.
//
// The shape matches what the real portal API hands out: "sub" is the account
// email, "role" is patient|doctor, "exp" is a unix timestamp.
package devtoken

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/healthportal-app/portal-client/internal/domain"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims are the custom claims carried by dev tokens.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies tokens with a shared HMAC key.
type Issuer struct {
	key []byte
	ttl time.Duration
}

func NewIssuer(key []byte, ttl time.Duration) (*Issuer, error) {
	if len(key) == 0 {
		return nil, errors.New("devtoken: signing key is required")
	}
	if ttl <= 0 {
		return nil, errors.New("devtoken: ttl must be positive")
	}
	return &Issuer{key: key, ttl: ttl}, nil
}

// Mint issues a token for sub/role valid from now for the issuer's TTL.
func (i *Issuer) Mint(sub string, role domain.Role, now time.Time) (string, error) {
	claims := Claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return "", fmt.Errorf("devtoken: sign: %w", err)
	}
	return tok, nil
}

// Verify checks signature and expiry against now and returns the subject and role.
func (i *Issuer) Verify(raw string, now time.Time) (string, domain.Role, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return i.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", "", fmt.Errorf("%w: missing sub", ErrInvalidToken)
	}
	role, ok := domain.ParseRole(claims.Role)
	if !ok {
		return "", "", fmt.Errorf("%w: unknown role %q", ErrInvalidToken, claims.Role)
	}
	return claims.Subject, role, nil
}
