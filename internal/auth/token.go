package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dukerupert/choreledger/internal/address"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrNoSecret     = errors.New("token secret is empty")
)

// Tokens signs and verifies HS256 bearer tokens whose subject is the caller
// address.
type Tokens struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewTokens(secret, issuer string) (*Tokens, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	return &Tokens{secret: []byte(secret), issuer: issuer, now: time.Now}, nil
}

// Sign issues a token for addr valid for ttl. The address is checksummed
// before it goes into the subject claim.
func (t *Tokens) Sign(addr string, ttl time.Duration) (string, error) {
	sub, err := address.Parse(addr)
	if err != nil {
		return "", fmt.Errorf("token subject: %w", err)
	}
	now := t.now()
	claims := jwt.RegisteredClaims{
		Issuer:    t.issuer,
		Subject:   sub,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, issuer and expiry and returns the principal the
// token names.
func (t *Tokens) Verify(raw string) (Principal, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	addr, err := address.Parse(claims.Subject)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: subject: %v", ErrInvalidToken, err)
	}
	return Principal{Address: addr, TokenID: claims.ID}, nil
}
