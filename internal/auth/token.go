// Package auth issues and verifies the bearer tokens that identify
// users to the posts API.
//
// Tokens are HS256 JWTs carrying the user's id and username and expire
// one hour after issue unless the issuer is configured otherwise. There
// is no built-in fallback secret: an Issuer can't be built without one.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is how long a token stays valid after it is signed.
const DefaultTTL = time.Hour

// MinSecretLength is the secret size below which the server warns at
// startup. Shorter secrets still work.
const MinSecretLength = 32

var (
	ErrWeakSecret   = errors.New("auth: signing secret is empty")
	ErrInvalidToken = errors.New("auth: invalid token")
	ErrTokenExpired = errors.New("auth: token has expired")
)

// Identity is the verified caller of a request.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// claims is the JWT payload.
type claims struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies tokens with a shared HMAC secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

// NewIssuer returns an Issuer for secret. A non-positive ttl selects
// DefaultTTL.
func NewIssuer(secret []byte, ttl time.Duration) (*Issuer, error) {
	if len(secret) == 0 {
		return nil, ErrWeakSecret
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{secret: secret, ttl: ttl}, nil
}

// TTL returns the lifetime of tokens signed by i.
func (i *Issuer) TTL() time.Duration { return i.ttl }

// Sign returns a token for identity valid from now for the issuer's TTL.
func (i *Issuer) Sign(identity Identity) (string, error) {
	return i.SignAt(identity, time.Now())
}

// SignAt is like Sign but takes the issue time explicitly.
func (i *Issuer) SignAt(identity Identity, now time.Time) (string, error) {
	if identity.ID == "" {
		return "", fmt.Errorf("auth: identity has no id")
	}
	c := claims{
		ID:       identity.ID,
		Username: identity.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Verify checks the token's signature and expiry and returns the
// identity it carries.
func (i *Issuer) Verify(token string) (Identity, error) {
	return i.VerifyAt(token, time.Now())
}

// VerifyAt is like Verify but checks expiry against now.
func (i *Issuer) VerifyAt(token string, now time.Time) (Identity, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	var c claims
	_, err := parser.ParseWithClaims(token, &c, func(*jwt.Token) (interface{}, error) {
		return i.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrTokenExpired
		}
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if c.ID == "" {
		return Identity{}, fmt.Errorf("%w: missing id claim", ErrInvalidToken)
	}
	return Identity{ID: c.ID, Username: c.Username}, nil
}
