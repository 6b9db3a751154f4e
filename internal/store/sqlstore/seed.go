package sqlstore

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/ecdye/jwt-pizza-service/internal/types"
)

// EnsureAdmin seeds the default admin account when the user table is empty,
// so a fresh deployment is never locked out.
func (d *DB) EnsureAdmin(ctx context.Context, name, email, password string) error {
	var n int
	if err := d.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`); err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		return nil
	}

	_, err := d.AddUser(ctx, types.User{
		Name:  name,
		Email: email,
		Roles: []types.Role{{Role: types.RoleAdmin}},
	}, password)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	log.Info().Str("email", email).Msg("seeded default admin user")
	return nil
}
