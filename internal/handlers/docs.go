package handlers

import (
	"net/http"

	"github.com/ecdye/jwt-pizza-service/internal/httpx"
	"github.com/ecdye/jwt-pizza-service/internal/version"
)

type endpointDoc struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description"`
	RequiresAuth bool  `json:"requiresAuth"`
}

var apiDocs = []endpointDoc{
	{"POST", "/api/auth", "Register a new user", false},
	{"PUT", "/api/auth", "Login existing user", false},
	{"DELETE", "/api/auth", "Logout a user", true},
	{"GET", "/api/user/me", "Get authenticated user", true},
	{"GET", "/api/user", "List users (admin)", true},
	{"PUT", "/api/user/{userId}", "Update user", true},
	{"DELETE", "/api/user/{userId}", "Delete user (admin)", true},
	{"GET", "/api/franchise", "List all franchises", false},
	{"GET", "/api/franchise/{userId}", "List a user's franchises", true},
	{"POST", "/api/franchise", "Create a new franchise (admin)", true},
	{"DELETE", "/api/franchise/{franchiseId}", "Delete a franchise (admin)", true},
	{"POST", "/api/franchise/{franchiseId}/store", "Create a new franchise store", true},
	{"DELETE", "/api/franchise/{franchiseId}/store/{storeId}", "Delete a store", true},
	{"GET", "/api/order/menu", "Get the pizza menu", false},
	{"PUT", "/api/order/menu", "Add an item to the menu (admin)", true},
	{"GET", "/api/order", "Get the orders for the authenticated user", true},
	{"POST", "/api/order", "Create an order for the authenticated user", true},
}

// Docs describes the API surface.
func Docs(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"version":   version.Version,
		"endpoints": apiDocs,
	})
}
