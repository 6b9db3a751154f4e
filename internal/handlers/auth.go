package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/ecdye/jwt-pizza-service/internal/httpx"
	"github.com/ecdye/jwt-pizza-service/internal/logging"
	"github.com/ecdye/jwt-pizza-service/internal/mw"
	"github.com/ecdye/jwt-pizza-service/internal/token"
	"github.com/ecdye/jwt-pizza-service/internal/types"
)

type AuthHandler struct {
	Users    types.UserStore
	Sessions types.SessionStore
	Issuer   *token.Issuer
	validate *validator.Validate
}

func NewAuthHandler(users types.UserStore, sessions types.SessionStore, issuer *token.Issuer) *AuthHandler {
	return &AuthHandler{Users: users, Sessions: sessions, Issuer: issuer, validate: validator.New()}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	User  types.User `json:"user"`
	Token string     `json:"token"`
}

// Register creates a new diner account. Roles are never taken from the
// request body.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "name, email, and password are required")
		return
	}

	u, err := h.Users.AddUser(r.Context(), types.User{
		Name:  req.Name,
		Email: req.Email,
		Roles: []types.Role{{Role: types.RoleDiner}},
	}, req.Password)
	if errors.Is(err, types.ErrDuplicateEmail) {
		httpx.WriteError(w, http.StatusConflict, "user already exists")
		return
	}
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.issueSession(w, r, u)
}

// Login authenticates an existing account.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	u, err := h.Users.Authenticate(r.Context(), req.Email, req.Password)
	if errors.Is(err, types.ErrBadCredentials) {
		httpx.WriteError(w, http.StatusNotFound, "unknown user")
		return
	}
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.issueSession(w, r, u)
}

// Logout revokes the caller's session; the token is dead server-side from
// here on.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	tok, ok := mw.TokenFrom(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.Sessions.LogoutUser(r.Context(), tok); err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "logout successful"})
}

func (h *AuthHandler) issueSession(w http.ResponseWriter, r *http.Request, u types.User) {
	tok, err := h.Issuer.Mint(u)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := h.Sessions.LoginUser(r.Context(), u.ID, tok); err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	l := logging.Ctx(r.Context())
	l.Info().Int64("user", u.ID).Msg("session issued")
	httpx.WriteJSON(w, http.StatusOK, authResponse{User: u, Token: tok})
}
