package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/ecdye/jwt-pizza-service/internal/authz"
	"github.com/ecdye/jwt-pizza-service/internal/factory"
	"github.com/ecdye/jwt-pizza-service/internal/httpx"
	"github.com/ecdye/jwt-pizza-service/internal/logging"
	"github.com/ecdye/jwt-pizza-service/internal/mw"
	"github.com/ecdye/jwt-pizza-service/internal/types"
)

type OrderHandler struct {
	Menu     types.MenuStore
	Orders   types.OrderStore
	Users    types.UserStore
	Factory  factory.Fulfiller
	PageSize int
}

func NewOrderHandler(menu types.MenuStore, orders types.OrderStore, users types.UserStore, f factory.Fulfiller, pageSize int) *OrderHandler {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &OrderHandler{Menu: menu, Orders: orders, Users: users, Factory: f, PageSize: pageSize}
}

type ordersResponse struct {
	DinerID int64         `json:"dinerId"`
	Orders  []types.Order `json:"orders"`
	Page    string        `json:"page"`
}

type createOrderRequest struct {
	FranchiseID int64             `json:"franchiseId"`
	StoreID     int64             `json:"storeId"`
	Items       []types.OrderItem `json:"items"`
}

type createOrderResponse struct {
	Order                types.Order `json:"order"`
	JWT                  string      `json:"jwt"`
	FollowLinkToEndChaos string      `json:"followLinkToEndChaos"`
}

// GetMenu is public.
func (h *OrderHandler) GetMenu(w http.ResponseWriter, r *http.Request) {
	menu, err := h.Menu.GetMenu(r.Context())
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpx.WriteJSON(w, http.StatusOK, menu)
}

// AddMenuItem is admin-only and returns the whole updated menu.
func (h *OrderHandler) AddMenuItem(w http.ResponseWriter, r *http.Request) {
	p, _ := mw.PrincipalFrom(r.Context())
	if d := authz.Evaluate(p, authz.ActionAddMenuItem, authz.Target{}); !d.Allowed {
		httpx.WriteError(w, http.StatusForbidden, "unable to add menu item")
		return
	}

	var item types.MenuItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if _, err := h.Menu.AddMenuItem(r.Context(), item); err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	menu, err := h.Menu.GetMenu(r.Context())
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpx.WriteJSON(w, http.StatusOK, menu)
}

// GetOrders returns the caller's order history, one-based page, echoing the
// raw page query value.
func (h *OrderHandler) GetOrders(w http.ResponseWriter, r *http.Request) {
	p, _ := mw.PrincipalFrom(r.Context())

	pageStr := r.URL.Query().Get("page")
	if pageStr == "" {
		pageStr = "1"
	}
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}

	orders, err := h.Orders.GetOrders(r.Context(), p.ID, page-1, h.PageSize)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ordersResponse{DinerID: p.ID, Orders: orders, Page: pageStr})
}

// Create persists the order, then makes exactly one fulfillment attempt at
// the factory. A fulfillment failure surfaces as a 500 but the persisted
// order is deliberately kept as evidence.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, _ := mw.PrincipalFrom(r.Context())
	if d := authz.Evaluate(p, authz.ActionCreateOrder, authz.Target{}); !d.Allowed {
		httpx.WriteError(w, http.StatusForbidden, "unable to create an order")
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	order, err := h.Orders.CreateOrder(r.Context(), types.Order{
		DinerID:     p.ID,
		FranchiseID: req.FranchiseID,
		StoreID:     req.StoreID,
		Items:       req.Items,
	})
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	diner, err := h.Users.GetUser(r.Context(), p.ID)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	res, err := h.Factory.Fulfill(r.Context(), diner, order)
	if err != nil {
		l := logging.Ctx(r.Context())
		l.Error().Err(err).Int64("order", order.ID).Msg("fulfillment failed")
		var ferr *factory.Error
		if errors.As(err, &ferr) {
			httpx.WriteJSON(w, http.StatusInternalServerError, httpx.APIError{
				Message:   ferr.Message,
				ReportURL: ferr.ReportURL,
			})
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to fulfill order at factory")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, createOrderResponse{
		Order:                order,
		JWT:                  res.JWT,
		FollowLinkToEndChaos: res.ReportURL,
	})
}
