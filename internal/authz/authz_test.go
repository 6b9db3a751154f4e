package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ecdye/jwt-pizza-service/internal/types"
)

var (
	admin      = Principal{ID: 1, Roles: []types.Role{{Role: types.RoleAdmin}}}
	diner      = Principal{ID: 2, Roles: []types.Role{{Role: types.RoleDiner}}}
	franchisee = Principal{ID: 3, Roles: []types.Role{
		{Role: types.RoleDiner},
		{Role: types.RoleFranchisee, ObjectID: 7},
	}}
)

func TestEvaluate(t *testing.T) {
	cases := []struct {
		name    string
		p       Principal
		action  Action
		target  Target
		allowed bool
	}{
		{"self update", diner, ActionUpdateUser, Target{UserID: 2}, true},
		{"admin updates other", admin, ActionUpdateUser, Target{UserID: 2}, true},
		{"diner updates other", diner, ActionUpdateUser, Target{UserID: 3}, false},

		{"admin deletes user", admin, ActionDeleteUser, Target{UserID: 2}, true},
		{"diner deletes user", diner, ActionDeleteUser, Target{UserID: 2}, false},
		{"franchisee deletes user", franchisee, ActionDeleteUser, Target{UserID: 2}, false},

		{"admin lists users", admin, ActionListUsers, Target{}, true},
		{"diner lists users", diner, ActionListUsers, Target{}, false},

		{"admin creates franchise", admin, ActionCreateFranchise, Target{}, true},
		{"franchisee creates franchise", franchisee, ActionCreateFranchise, Target{}, false},
		{"admin deletes franchise", admin, ActionDeleteFranchise, Target{FranchiseID: 7}, true},
		{"owning franchisee deletes franchise", franchisee, ActionDeleteFranchise, Target{FranchiseID: 7}, false},

		{"admin creates store anywhere", admin, ActionCreateStore, Target{FranchiseID: 7}, true},
		{"scoped franchisee creates store", franchisee, ActionCreateStore, Target{FranchiseID: 7}, true},
		{"franchisee wrong franchise", franchisee, ActionCreateStore, Target{FranchiseID: 8}, false},
		{"diner creates store", diner, ActionCreateStore, Target{FranchiseID: 7}, false},
		{"scoped franchisee deletes store", franchisee, ActionDeleteStore, Target{FranchiseID: 7}, true},
		{"diner deletes store", diner, ActionDeleteStore, Target{FranchiseID: 7}, false},

		{"admin adds menu item", admin, ActionAddMenuItem, Target{}, true},
		{"diner adds menu item", diner, ActionAddMenuItem, Target{}, false},

		{"diner creates order", diner, ActionCreateOrder, Target{}, true},
		{"admin creates order", admin, ActionCreateOrder, Target{}, true},

		{"self franchise view", franchisee, ActionViewUserFranchises, Target{UserID: 3}, true},
		{"admin views any franchises", admin, ActionViewUserFranchises, Target{UserID: 3}, true},
		{"other user franchise view", diner, ActionViewUserFranchises, Target{UserID: 3}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Evaluate(tc.p, tc.action, tc.target)
			assert.Equal(t, tc.allowed, d.Allowed)
			if !tc.allowed {
				assert.NotEmpty(t, d.Reason)
			}
		})
	}
}

func TestEvaluateUnknownAction(t *testing.T) {
	d := Evaluate(admin, Action("bogus"), Target{})
	assert.False(t, d.Allowed)
	assert.Equal(t, "unknown_action", d.Reason)
}

// Scope resolution for a user with no franchise mapping must come back as a
// plain denial, not an error; the caller turns it into an empty list.
func TestViewFranchisesUnknownMapping(t *testing.T) {
	d := Evaluate(diner, ActionViewUserFranchises, Target{UserID: 9999})
	assert.False(t, d.Allowed)
	assert.Equal(t, "out_of_scope", d.Reason)
}

func TestPrincipalHelpers(t *testing.T) {
	assert.True(t, admin.IsAdmin())
	assert.False(t, diner.IsAdmin())
	assert.True(t, franchisee.AdministersFranchise(7))
	assert.False(t, franchisee.AdministersFranchise(8))
	assert.False(t, diner.AdministersFranchise(7))
}
