// Package auth issues and verifies session tokens and hashes passwords.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shashiranjanraj/propelyu/config"
)

// TokenTTL is the fixed lifetime of an access token.
const TokenTTL = time.Hour

// Claims is the signed token payload: the user's id and role.
type Claims struct {
	ID   string `json:"id"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Issuer signs tokens with a shared HS256 secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer returns an Issuer for secret. An empty secret falls back to
// config.JWTSecret().
func NewIssuer(secret string) *Issuer {
	if secret == "" {
		secret = config.JWTSecret()
	}
	return &Issuer{secret: []byte(secret), ttl: TokenTTL, now: time.Now}
}

// WithClock overrides the time source. Used by tests to mint expired tokens.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	clone := *i
	clone.now = now
	return &clone
}

// IssueToken creates a signed token for the user id and role, expiring
// one hour after issuance.
func (i *Issuer) IssueToken(userID, role string) (string, error) {
	now := i.now()
	claims := Claims{
		ID:   userID,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   userID,
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// ErrInvalidToken is returned for any signature, algorithm or expiry failure.
var ErrInvalidToken = errors.New("auth: invalid token")

// VerifyToken parses t and checks signature, algorithm and expiry.
func (i *Issuer) VerifyToken(t string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(t, &Claims{}, func(tok *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("%w: token missing user id", ErrInvalidToken)
	}

	return claims, nil
}
