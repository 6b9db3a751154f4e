// Package token mints and verifies the bearer tokens the service issues at
// registration and login. Tokens are HS256 JWTs; the session store keeps a
// hash of every live token so logout revokes server-side.
package token

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ecdye/jwt-pizza-service/internal/types"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	Name  string       `json:"name"`
	Email string       `json:"email"`
	Roles []types.Role `json:"roles"`
	jwt.RegisteredClaims
}

type IssueConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

type Issuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func NewIssuer(cfg IssueConfig) *Issuer {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Issuer{secret: []byte(cfg.Secret), issuer: cfg.Issuer, ttl: ttl}
}

// Mint issues a signed token embedding the user's identity and roles.
func (i *Issuer) Mint(u types.User) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		Name:  u.Name,
		Email: u.Email,
		Roles: u.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   jwtSubject(u.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Verify validates signature and expiry and reconstructs the user the token
// was minted for.
func (i *Issuer) Verify(tok string) (types.User, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(tok, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return i.secret, nil
	})
	if err != nil || !parsed.Valid {
		return types.User{}, ErrInvalidToken
	}

	id, err := parseSubject(claims.Subject)
	if err != nil {
		return types.User{}, ErrInvalidToken
	}
	return types.User{ID: id, Name: claims.Name, Email: claims.Email, Roles: claims.Roles}, nil
}

// Hash returns the base64url sha256 digest of a token. Only hashes are
// persisted in the session store.
func Hash(tok string) string {
	sum := sha256.Sum256([]byte(tok))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
