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
	"github.com/ecdye/jwt-pizza-service/internal/types"
)

type FranchiseHandler struct {
	Franchises types.FranchiseStore
	PageSize   int
}

func NewFranchiseHandler(franchises types.FranchiseStore, pageSize int) *FranchiseHandler {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &FranchiseHandler{Franchises: franchises, PageSize: pageSize}
}

type listFranchisesResponse struct {
	Franchises []types.Franchise `json:"franchises"`
	More       bool              `json:"more"`
}

type createStoreRequest struct {
	Name string `json:"name"`
}

// List is public. Admin callers additionally see each franchise's admins.
func (h *FranchiseHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r, h.PageSize)

	includeAdmins := false
	if p, ok := mw.PrincipalFrom(r.Context()); ok {
		includeAdmins = p.IsAdmin()
	}

	franchises, more, err := h.Franchises.ListFranchises(r.Context(), page, limit, r.URL.Query().Get("name"), includeAdmins)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpx.WriteJSON(w, http.StatusOK, listFranchisesResponse{Franchises: franchises, More: more})
}

// ForUser lists the franchises a user administers. By design, a caller who
// is neither that user nor an admin gets an empty list, not an error.
func (h *FranchiseHandler) ForUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	p, _ := mw.PrincipalFrom(r.Context())
	if d := authz.Evaluate(p, authz.ActionViewUserFranchises, authz.Target{UserID: userID}); !d.Allowed {
		httpx.WriteJSON(w, http.StatusOK, []types.Franchise{})
		return
	}

	franchises, err := h.Franchises.GetUserFranchises(r.Context(), userID)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpx.WriteJSON(w, http.StatusOK, franchises)
}

// Create is admin-only.
func (h *FranchiseHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, _ := mw.PrincipalFrom(r.Context())
	if d := authz.Evaluate(p, authz.ActionCreateFranchise, authz.Target{}); !d.Allowed {
		httpx.WriteError(w, http.StatusForbidden, "unable to create a franchise")
		return
	}

	var req types.Franchise
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	f, err := h.Franchises.CreateFranchise(r.Context(), req)
	if errors.Is(err, types.ErrUnknownUser) {
		httpx.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpx.WriteJSON(w, http.StatusOK, f)
}

// Delete is admin-only; cascades to the franchise's stores and franchisee
// roles. Idempotent.
func (h *FranchiseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "franchiseId"), 10, 64)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid franchise id")
		return
	}

	p, _ := mw.PrincipalFrom(r.Context())
	if d := authz.Evaluate(p, authz.ActionDeleteFranchise, authz.Target{FranchiseID: id}); !d.Allowed {
		httpx.WriteError(w, http.StatusForbidden, "unable to delete a franchise")
		return
	}

	if err := h.Franchises.DeleteFranchise(r.Context(), id); err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "franchise deleted"})
}

// CreateStore is allowed for a global admin or a franchisee scoped to this
// franchise.
func (h *FranchiseHandler) CreateStore(w http.ResponseWriter, r *http.Request) {
	franchiseID, err := strconv.ParseInt(chi.URLParam(r, "franchiseId"), 10, 64)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid franchise id")
		return
	}

	p, _ := mw.PrincipalFrom(r.Context())
	if d := authz.Evaluate(p, authz.ActionCreateStore, authz.Target{FranchiseID: franchiseID}); !d.Allowed {
		httpx.WriteError(w, http.StatusForbidden, "unable to create a store")
		return
	}

	var req createStoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	s, err := h.Franchises.CreateStore(r.Context(), franchiseID, req.Name)
	if err != nil {
		// covers the nonexistent-franchise case; denial never leaks
		// resource existence, so this stays a plain 500
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpx.WriteJSON(w, http.StatusOK, s)
}

// DeleteStore uses the same rule as CreateStore. Idempotent.
func (h *FranchiseHandler) DeleteStore(w http.ResponseWriter, r *http.Request) {
	franchiseID, err := strconv.ParseInt(chi.URLParam(r, "franchiseId"), 10, 64)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid franchise id")
		return
	}
	storeID, err := strconv.ParseInt(chi.URLParam(r, "storeId"), 10, 64)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid store id")
		return
	}

	p, _ := mw.PrincipalFrom(r.Context())
	if d := authz.Evaluate(p, authz.ActionDeleteStore, authz.Target{FranchiseID: franchiseID}); !d.Allowed {
		httpx.WriteError(w, http.StatusForbidden, "unable to delete a store")
		return
	}

	if err := h.Franchises.DeleteStore(r.Context(), franchiseID, storeID); err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "store deleted"})
}
