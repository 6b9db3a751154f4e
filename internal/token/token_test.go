package token

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecdye/jwt-pizza-service/internal/types"
)

var jwtShape = regexp.MustCompile(`^[a-zA-Z0-9\-_]*\.[a-zA-Z0-9\-_]*\.[a-zA-Z0-9\-_]*$`)

func testUser() types.User {
	return types.User{
		ID:    42,
		Name:  "pizza diner",
		Email: "diner@test.com",
		Roles: []types.Role{{Role: types.RoleDiner}},
	}
}

func TestMintVerifyRoundTrip(t *testing.T) {
	iss := NewIssuer(IssueConfig{Secret: "test-secret", Issuer: "jwt-pizza-service", TTL: time.Minute})

	tok, err := iss.Mint(testUser())
	require.NoError(t, err)
	assert.Regexp(t, jwtShape, tok)

	u, err := iss.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(42), u.ID)
	assert.Equal(t, "diner@test.com", u.Email)
	assert.Equal(t, []types.Role{{Role: types.RoleDiner}}, u.Roles)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	a := NewIssuer(IssueConfig{Secret: "secret-a", TTL: time.Minute})
	b := NewIssuer(IssueConfig{Secret: "secret-b", TTL: time.Minute})

	tok, err := a.Mint(testUser())
	require.NoError(t, err)

	_, err = b.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpired(t *testing.T) {
	iss := NewIssuer(IssueConfig{Secret: "test-secret", TTL: -time.Minute})

	tok, err := iss.Mint(testUser())
	require.NoError(t, err)

	_, err = iss.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	iss := NewIssuer(IssueConfig{Secret: "test-secret", TTL: time.Minute})
	_, err := iss.Verify("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestHashStableAndUnpadded(t *testing.T) {
	h1 := Hash("token-value")
	h2 := Hash("token-value")
	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, Hash("other-token"))
	assert.NotContains(t, h1, "=")
}
