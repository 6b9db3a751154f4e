package mw

import (
	"context"
	"net/http"

	"github.com/ecdye/jwt-pizza-service/internal/authz"
	"github.com/ecdye/jwt-pizza-service/internal/httpx"
	"github.com/ecdye/jwt-pizza-service/internal/token"
	"github.com/ecdye/jwt-pizza-service/internal/types"
)

type ctxKey int

const (
	principalKey ctxKey = iota
	tokenKey
)

// Authenticator resolves bearer tokens into principals. A token is live only
// when its signature verifies and its session row still exists, so logout
// revokes server-side.
type Authenticator struct {
	Issuer   *token.Issuer
	Sessions types.SessionStore
}

func NewAuthenticator(issuer *token.Issuer, sessions types.SessionStore) *Authenticator {
	return &Authenticator{Issuer: issuer, Sessions: sessions}
}

func (a *Authenticator) resolve(r *http.Request) (authz.Principal, string, bool) {
	tok, ok := httpx.ExtractBearerToken(r.Header.Get("Authorization"))
	if !ok {
		return authz.Principal{}, "", false
	}
	u, err := a.Issuer.Verify(tok)
	if err != nil {
		return authz.Principal{}, "", false
	}
	live, err := a.Sessions.IsLoggedIn(r.Context(), tok)
	if err != nil || !live {
		return authz.Principal{}, "", false
	}
	return authz.Principal{ID: u.ID, Roles: u.Roles}, tok, true
}

// Required rejects requests without a valid live token.
func (a *Authenticator) Required(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, tok, ok := a.resolve(r)
		if !ok {
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), p, tok)))
	})
}

// Optional attaches a principal when a valid token is present and passes the
// request through either way.
func (a *Authenticator) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p, tok, ok := a.resolve(r); ok {
			r = r.WithContext(withPrincipal(r.Context(), p, tok))
		}
		next.ServeHTTP(w, r)
	})
}

func withPrincipal(ctx context.Context, p authz.Principal, tok string) context.Context {
	ctx = context.WithValue(ctx, principalKey, p)
	return context.WithValue(ctx, tokenKey, tok)
}

// PrincipalFrom returns the authenticated principal, if any.
func PrincipalFrom(ctx context.Context) (authz.Principal, bool) {
	p, ok := ctx.Value(principalKey).(authz.Principal)
	return p, ok
}

// TokenFrom returns the raw bearer token the principal authenticated with.
func TokenFrom(ctx context.Context) (string, bool) {
	t, ok := ctx.Value(tokenKey).(string)
	return t, ok
}
