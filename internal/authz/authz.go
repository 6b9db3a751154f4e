// Package authz holds the pure authorization decision logic. Evaluate has no
// side effects and no I/O; callers translate denials into HTTP responses.
package authz

import (
	"github.com/ecdye/jwt-pizza-service/internal/types"
)

type Action string

const (
	ActionUpdateUser         Action = "user.update"
	ActionDeleteUser         Action = "user.delete"
	ActionListUsers          Action = "user.list"
	ActionCreateFranchise    Action = "franchise.create"
	ActionDeleteFranchise    Action = "franchise.delete"
	ActionViewUserFranchises Action = "franchise.view_for_user"
	ActionCreateStore        Action = "store.create"
	ActionDeleteStore        Action = "store.delete"
	ActionAddMenuItem        Action = "menu.add"
	ActionCreateOrder        Action = "order.create"
)

// Principal is the authenticated caller: a user id plus its role
// assignments. Every authenticated principal holds at least the diner role.
type Principal struct {
	ID    int64
	Roles []types.Role
}

// IsAdmin reports whether the principal holds the global admin role.
func (p Principal) IsAdmin() bool {
	for _, r := range p.Roles {
		if r.Role == types.RoleAdmin {
			return true
		}
	}
	return false
}

// AdministersFranchise reports whether the principal holds the franchisee
// role scoped to the given franchise.
func (p Principal) AdministersFranchise(franchiseID int64) bool {
	for _, r := range p.Roles {
		if r.Role == types.RoleFranchisee && r.ObjectID == franchiseID {
			return true
		}
	}
	return false
}

// Target identifies the resource an action is evaluated against. Zero fields
// mean the action has no target of that kind.
type Target struct {
	UserID      int64
	FranchiseID int64
}

type Decision struct {
	Allowed bool
	Reason  string
}

var allow = Decision{Allowed: true}

func deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Evaluate applies the role rules for action on target.
//
// ActionViewUserFranchises is special: a denial means "no visible scope",
// which callers surface as an empty list rather than a 403. A target user id
// with no franchise mapping is still a valid target; scope resolution never
// errors.
func Evaluate(p Principal, action Action, t Target) Decision {
	switch action {
	case ActionUpdateUser:
		if p.ID == t.UserID || p.IsAdmin() {
			return allow
		}
		return deny("not_self_or_admin")

	case ActionDeleteUser, ActionListUsers:
		if p.IsAdmin() {
			return allow
		}
		return deny("admin_only")

	case ActionCreateFranchise, ActionDeleteFranchise, ActionAddMenuItem:
		if p.IsAdmin() {
			return allow
		}
		return deny("admin_only")

	case ActionViewUserFranchises:
		if p.ID == t.UserID || p.IsAdmin() {
			return allow
		}
		return deny("out_of_scope")

	case ActionCreateStore, ActionDeleteStore:
		if p.IsAdmin() || p.AdministersFranchise(t.FranchiseID) {
			return allow
		}
		return deny("not_franchise_admin")

	case ActionCreateOrder:
		// any authenticated principal may order
		return allow
	}
	return deny("unknown_action")
}
