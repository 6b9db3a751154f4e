package types

import (
	"context"
	"errors"
)

type RoleKind string

const (
	RoleDiner      RoleKind = "diner"
	RoleFranchisee RoleKind = "franchisee"
	RoleAdmin      RoleKind = "admin"
)

// Role is a role assignment on a user. ObjectID is the franchise id for
// franchisee roles and zero otherwise.
type Role struct {
	Role     RoleKind `json:"role"`
	ObjectID int64    `json:"objectId,omitempty"`
}

type User struct {
	ID    int64  `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Email string `json:"email" db:"email"`
	Roles []Role `json:"roles"`
}

// HasRole reports whether the user holds the given role at any scope.
func (u User) HasRole(k RoleKind) bool {
	for _, r := range u.Roles {
		if r.Role == k {
			return true
		}
	}
	return false
}

type FranchiseAdmin struct {
	ID    int64  `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type Franchise struct {
	ID     int64            `json:"id" db:"id"`
	Name   string           `json:"name" db:"name"`
	Admins []FranchiseAdmin `json:"admins,omitempty"`
	Stores []Store          `json:"stores"`
}

type Store struct {
	ID          int64  `json:"id" db:"id"`
	FranchiseID int64  `json:"franchiseId,omitempty" db:"franchise_id"`
	Name        string `json:"name" db:"name"`
}

type MenuItem struct {
	ID          int64   `json:"id" db:"id"`
	Title       string  `json:"title" db:"title"`
	Description string  `json:"description" db:"description"`
	Image       string  `json:"image" db:"image"`
	Price       float64 `json:"price" db:"price"`
}

type OrderItem struct {
	ID          int64   `json:"id,omitempty" db:"id"`
	MenuID      int64   `json:"menuId" db:"menu_id"`
	Description string  `json:"description" db:"description"`
	Price       float64 `json:"price" db:"price"`
}

type Order struct {
	ID          int64       `json:"id" db:"id"`
	DinerID     int64       `json:"dinerId,omitempty" db:"diner_id"`
	FranchiseID int64       `json:"franchiseId" db:"franchise_id"`
	StoreID     int64       `json:"storeId" db:"store_id"`
	Date        string      `json:"date,omitempty" db:"created_at"`
	Items       []OrderItem `json:"items"`
}

// Sentinel errors surfaced by DataStore implementations. Handlers map these
// onto the HTTP error taxonomy.
var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("user already exists")
	ErrUnknownUser    = errors.New("unknown user")
	ErrBadCredentials = errors.New("invalid credentials")
)

type UserStore interface {
	// AddUser creates the user with a bcrypt hash of password. The returned
	// user carries the assigned id. A user with no roles is given the diner
	// role.
	AddUser(ctx context.Context, u User, password string) (User, error)
	// Authenticate verifies email/password and returns the stored user.
	// Returns ErrBadCredentials when either does not match.
	Authenticate(ctx context.Context, email, password string) (User, error)
	GetUser(ctx context.Context, id int64) (User, error)
	// UpdateUser replaces name, email, and (when non-empty) password.
	UpdateUser(ctx context.Context, id int64, name, email, password string) (User, error)
	// ListUsers returns one page of users matching the optional email filter
	// ('*' wildcards) and whether more pages exist.
	ListUsers(ctx context.Context, page, limit int, emailFilter string) ([]User, bool, error)
	// DeleteUser removes the user, its roles, and its sessions. Deleting an
	// unknown id is a no-op.
	DeleteUser(ctx context.Context, id int64) error
}

// SessionStore tracks live login sessions by token hash so logout revokes
// server-side.
type SessionStore interface {
	LoginUser(ctx context.Context, userID int64, token string) error
	IsLoggedIn(ctx context.Context, token string) (bool, error)
	LogoutUser(ctx context.Context, token string) error
}

type FranchiseStore interface {
	// CreateFranchise resolves admin emails to users, assigns them the
	// franchisee role scoped to the new franchise, and returns the populated
	// franchise. Returns ErrUnknownUser when an admin email has no account.
	CreateFranchise(ctx context.Context, f Franchise) (Franchise, error)
	// DeleteFranchise cascades to stores and franchisee role rows.
	DeleteFranchise(ctx context.Context, id int64) error
	// ListFranchises returns one page plus a more flag. Admin lists include
	// franchise admins; public lists carry stores only.
	ListFranchises(ctx context.Context, page, limit int, nameFilter string, includeAdmins bool) ([]Franchise, bool, error)
	// GetUserFranchises returns the franchises the user administers, fully
	// populated. Unknown users resolve to an empty list.
	GetUserFranchises(ctx context.Context, userID int64) ([]Franchise, error)
	CreateStore(ctx context.Context, franchiseID int64, name string) (Store, error)
	DeleteStore(ctx context.Context, franchiseID, storeID int64) error
}

type MenuStore interface {
	GetMenu(ctx context.Context) ([]MenuItem, error)
	AddMenuItem(ctx context.Context, item MenuItem) (MenuItem, error)
}

type OrderStore interface {
	// CreateOrder persists the order and its items for the diner.
	CreateOrder(ctx context.Context, order Order) (Order, error)
	GetOrders(ctx context.Context, dinerID int64, page, limit int) ([]Order, error)
}

// DataStore is the full persistence surface the service is built against.
type DataStore interface {
	UserStore
	SessionStore
	FranchiseStore
	MenuStore
	OrderStore
}
