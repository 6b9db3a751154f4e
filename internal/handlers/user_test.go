package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecdye/jwt-pizza-service/internal/types"
)

func TestMe(t *testing.T) {
	e := newEnv(t)
	res := e.registerDiner(t, "pizza diner", "me@test.com")

	var u types.User
	status := e.do(t, http.MethodGet, "/api/user/me", res.Token, nil, &u)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, res.User.ID, u.ID)
	assert.Equal(t, "me@test.com", u.Email)
	assert.Equal(t, []types.Role{{Role: types.RoleDiner}}, u.Roles)
}

func TestUpdateSelf(t *testing.T) {
	e := newEnv(t)
	res := e.registerDiner(t, "old name", "old@test.com")

	var updated authResult
	status := e.do(t, http.MethodPut, fmt.Sprintf("/api/user/%d", res.User.ID), res.Token, map[string]string{
		"name": "new name", "email": "new@test.com", "password": "rotated pass",
	}, &updated)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "new name", updated.User.Name)
	assert.Equal(t, "new@test.com", updated.User.Email)
	assert.Regexp(t, jwtShape, updated.Token)

	// the fresh token is live and the new password authenticates
	var u types.User
	status = e.do(t, http.MethodGet, "/api/user/me", updated.Token, nil, &u)
	assert.Equal(t, http.StatusOK, status)
	e.login(t, "new@test.com", "rotated pass")
}

func TestUpdateOtherUserForbidden(t *testing.T) {
	e := newEnv(t)
	alice := e.registerDiner(t, "alice", "alice@test.com")
	bob := e.registerDiner(t, "bob", "bob@test.com")

	var body map[string]string
	status := e.do(t, http.MethodPut, fmt.Sprintf("/api/user/%d", bob.User.ID), alice.Token, map[string]string{
		"name": "hijacked", "email": "bob@test.com",
	}, &body)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "unauthorized", body["message"])
}

func TestUpdateAsAdmin(t *testing.T) {
	e := newEnv(t)
	admin := e.newAdmin(t, "admin@test.com")
	diner := e.registerDiner(t, "diner", "target@test.com")

	var updated authResult
	status := e.do(t, http.MethodPut, fmt.Sprintf("/api/user/%d", diner.User.ID), admin.Token, map[string]string{
		"name": "renamed", "email": "target@test.com",
	}, &updated)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "renamed", updated.User.Name)
}

func TestUpdateMissingFields(t *testing.T) {
	e := newEnv(t)
	res := e.registerDiner(t, "diner", "partial@test.com")

	var body map[string]string
	status := e.do(t, http.MethodPut, fmt.Sprintf("/api/user/%d", res.User.ID), res.Token, map[string]string{
		"name": "only name",
	}, &body)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "name and email are required", body["message"])
}

func TestListUsers(t *testing.T) {
	e := newEnv(t)
	admin := e.newAdmin(t, "admin@test.com")
	e.registerDiner(t, "diner one", "one@test.com")
	e.registerDiner(t, "diner two", "two@test.com")

	var res struct {
		Users []types.User `json:"users"`
		More  bool         `json:"more"`
	}
	status := e.do(t, http.MethodGet, "/api/user", admin.Token, nil, &res)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, res.Users, 3)
	assert.False(t, res.More)

	// email filter with wildcard
	status = e.do(t, http.MethodGet, "/api/user?email=one*", admin.Token, nil, &res)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, res.Users, 1)
	assert.Equal(t, "one@test.com", res.Users[0].Email)
}

func TestListUsersForbiddenForDiner(t *testing.T) {
	e := newEnv(t)
	diner := e.registerDiner(t, "diner", "diner@test.com")

	var body map[string]string
	status := e.do(t, http.MethodGet, "/api/user", diner.Token, nil, &body)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "unauthorized", body["message"])
}

func TestListUsersUnauthenticated(t *testing.T) {
	e := newEnv(t)

	var body map[string]string
	status := e.do(t, http.MethodGet, "/api/user", "", nil, &body)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "unauthorized", body["message"])
}

func TestDeleteUser(t *testing.T) {
	e := newEnv(t)
	admin := e.newAdmin(t, "admin@test.com")
	diner := e.registerDiner(t, "doomed", "doomed@test.com")

	var body map[string]string
	status := e.do(t, http.MethodDelete, fmt.Sprintf("/api/user/%d", diner.User.ID), admin.Token, nil, &body)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "OK", body["message"])

	// the account is gone
	status = e.do(t, http.MethodPut, "/api/auth", "", map[string]string{
		"email": "doomed@test.com", "password": testPassword,
	}, &body)
	assert.Equal(t, http.StatusNotFound, status)

	// deleting again still succeeds
	status = e.do(t, http.MethodDelete, fmt.Sprintf("/api/user/%d", diner.User.ID), admin.Token, nil, &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "OK", body["message"])
}

func TestDeleteUserForbiddenForDiner(t *testing.T) {
	e := newEnv(t)
	alice := e.registerDiner(t, "alice", "alice@test.com")
	bob := e.registerDiner(t, "bob", "bob@test.com")

	var body map[string]string
	status := e.do(t, http.MethodDelete, fmt.Sprintf("/api/user/%d", bob.User.ID), alice.Token, nil, &body)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "unauthorized", body["message"])
}
