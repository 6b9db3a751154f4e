package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ecdye/jwt-pizza-service/internal/authz"
	"github.com/ecdye/jwt-pizza-service/internal/httpx"
	"github.com/ecdye/jwt-pizza-service/internal/mw"
	"github.com/ecdye/jwt-pizza-service/internal/token"
	"github.com/ecdye/jwt-pizza-service/internal/types"
)

type UserHandler struct {
	Users    types.UserStore
	Sessions types.SessionStore
	Issuer   *token.Issuer
	PageSize int
}

func NewUserHandler(users types.UserStore, sessions types.SessionStore, issuer *token.Issuer, pageSize int) *UserHandler {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &UserHandler{Users: users, Sessions: sessions, Issuer: issuer, PageSize: pageSize}
}

type updateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type listUsersResponse struct {
	Users []types.User `json:"users"`
	More  bool         `json:"more"`
}

// Me returns the authenticated caller's account.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, _ := mw.PrincipalFrom(r.Context())
	u, err := h.Users.GetUser(r.Context(), p.ID)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

// Update changes name, email, and optionally password for the target user.
// Allowed for self or a global admin. A fresh token is issued because the
// claims embed the user.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Name == "" || req.Email == "" {
		httpx.WriteError(w, http.StatusBadRequest, "name and email are required")
		return
	}

	p, _ := mw.PrincipalFrom(r.Context())
	if d := authz.Evaluate(p, authz.ActionUpdateUser, authz.Target{UserID: id}); !d.Allowed {
		httpx.WriteError(w, http.StatusForbidden, "unauthorized")
		return
	}

	u, err := h.Users.UpdateUser(r.Context(), id, req.Name, req.Email, req.Password)
	if errors.Is(err, types.ErrDuplicateEmail) {
		httpx.WriteError(w, http.StatusConflict, "user already exists")
		return
	}
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	tok, err := h.Issuer.Mint(u)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := h.Sessions.LoginUser(r.Context(), u.ID, tok); err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authResponse{User: u, Token: tok})
}

// List is admin-only.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	p, _ := mw.PrincipalFrom(r.Context())
	if d := authz.Evaluate(p, authz.ActionListUsers, authz.Target{}); !d.Allowed {
		httpx.WriteError(w, http.StatusForbidden, "unauthorized")
		return
	}

	page, limit := pageParams(r, h.PageSize)
	users, more, err := h.Users.ListUsers(r.Context(), page, limit, r.URL.Query().Get("email"))
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpx.WriteJSON(w, http.StatusOK, listUsersResponse{Users: users, More: more})
}

// Delete is admin-only and idempotent; removing an already-deleted id
// succeeds with the same body.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	p, _ := mw.PrincipalFrom(r.Context())
	if d := authz.Evaluate(p, authz.ActionDeleteUser, authz.Target{UserID: id}); !d.Allowed {
		httpx.WriteError(w, http.StatusForbidden, "unauthorized")
		return
	}

	if err := h.Users.DeleteUser(r.Context(), id); err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "OK"})
}

// pageParams reads zero-based page and bounded limit query parameters.
func pageParams(r *http.Request, defaultLimit int) (int, int) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 0 {
		page = 0
	}
	limit := defaultLimit
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	return page, limit
}
