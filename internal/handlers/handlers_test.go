package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ecdye/jwt-pizza-service/internal/factory"
	"github.com/ecdye/jwt-pizza-service/internal/server"
	"github.com/ecdye/jwt-pizza-service/internal/store/sqlstore"
	"github.com/ecdye/jwt-pizza-service/internal/token"
	"github.com/ecdye/jwt-pizza-service/internal/types"
)

const testPassword = "s3cr3t pass"

// fakeFactory records fulfillment attempts so tests can assert on when the
// factory is and is not contacted.
type fakeFactory struct {
	mu        sync.Mutex
	calls     int
	fail      bool
	reportURL string
}

func (f *fakeFactory) Fulfill(_ context.Context, _ types.User, _ types.Order) (factory.Result, error) {
	f.mu.Lock()
	f.calls++
	fail := f.fail
	f.mu.Unlock()
	if fail {
		return factory.Result{}, &factory.Error{
			Message:   "Failed to fulfill order at factory",
			ReportURL: f.reportURL,
		}
	}
	return factory.Result{JWT: "factory.order.jwt", ReportURL: "https://factory.example.com/report/1"}, nil
}

func (f *fakeFactory) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type env struct {
	db     *sqlstore.DB
	issuer *token.Issuer
	fake   *fakeFactory
	srv    *httptest.Server
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db := sqlstore.NewTestDB(t)
	issuer := token.NewIssuer(token.IssueConfig{Secret: "test-secret", Issuer: "pizza-test", TTL: time.Hour})
	fake := &fakeFactory{}

	h := server.BuildRouter(server.Deps{Store: db, Issuer: issuer, Factory: fake}, server.Options{ListPerPage: 10})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	return &env{db: db, issuer: issuer, fake: fake, srv: srv}
}

// do issues a request and decodes the JSON response into out when out is
// non-nil. The bearer token is optional.
func (e *env) do(t *testing.T, method, path, bearer string, body, out any) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := e.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

type authResult struct {
	User  types.User `json:"user"`
	Token string     `json:"token"`
}

// registerDiner creates an account through the public registration endpoint.
func (e *env) registerDiner(t *testing.T, name, email string) authResult {
	t.Helper()

	var res authResult
	status := e.do(t, http.MethodPost, "/api/auth", "", map[string]string{
		"name": name, "email": email, "password": testPassword,
	}, &res)
	require.Equal(t, http.StatusOK, status)
	return res
}

// newAdmin seeds an admin directly in the store and logs in through the API.
func (e *env) newAdmin(t *testing.T, email string) authResult {
	t.Helper()

	_, err := e.db.AddUser(context.Background(), types.User{
		Name:  "admin",
		Email: email,
		Roles: []types.Role{{Role: types.RoleAdmin}},
	}, testPassword)
	require.NoError(t, err)
	return e.login(t, email, testPassword)
}

func (e *env) login(t *testing.T, email, password string) authResult {
	t.Helper()

	var res authResult
	status := e.do(t, http.MethodPut, "/api/auth", "", map[string]string{
		"email": email, "password": password,
	}, &res)
	require.Equal(t, http.StatusOK, status)
	return res
}

// createFranchise has an admin create a franchise administered by adminEmail,
// which grants that account the scoped franchisee role.
func (e *env) createFranchise(t *testing.T, adminToken, name, adminEmail string) types.Franchise {
	t.Helper()

	var f types.Franchise
	status := e.do(t, http.MethodPost, "/api/franchise", adminToken, map[string]any{
		"name":   name,
		"admins": []map[string]string{{"email": adminEmail}},
	}, &f)
	require.Equal(t, http.StatusOK, status)
	return f
}
