package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/ecdye/jwt-pizza-service/internal/types"
)

func (d *DB) AddUser(ctx context.Context, u types.User, password string) (types.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return types.User{}, fmt.Errorf("hash password: %w", err)
	}

	if len(u.Roles) == 0 {
		u.Roles = []types.Role{{Role: types.RoleDiner}}
	}

	err = d.withTx(ctx, func(tx *sqlx.Tx) error {
		id, err := d.insertID(ctx, tx,
			`INSERT INTO users (name, email, password_hash) VALUES (?, ?, ?)`,
			u.Name, u.Email, string(hash))
		if err != nil {
			if isDuplicate(err) {
				return types.ErrDuplicateEmail
			}
			return fmt.Errorf("insert user: %w", err)
		}
		u.ID = id
		return d.insertRoles(ctx, tx, id, u.Roles)
	})
	if err != nil {
		return types.User{}, err
	}
	return u, nil
}

func (d *DB) Authenticate(ctx context.Context, email, password string) (types.User, error) {
	var row struct {
		ID           int64  `db:"id"`
		Name         string `db:"name"`
		Email        string `db:"email"`
		PasswordHash string `db:"password_hash"`
	}
	err := d.db.GetContext(ctx, &row,
		d.rebind(`SELECT id, name, email, password_hash FROM users WHERE email = ?`), email)
	if errors.Is(err, sql.ErrNoRows) {
		return types.User{}, types.ErrBadCredentials
	}
	if err != nil {
		return types.User{}, fmt.Errorf("select user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(password)) != nil {
		return types.User{}, types.ErrBadCredentials
	}

	roles, err := d.loadRoles(ctx, row.ID)
	if err != nil {
		return types.User{}, err
	}
	return types.User{ID: row.ID, Name: row.Name, Email: row.Email, Roles: roles}, nil
}

func (d *DB) GetUser(ctx context.Context, id int64) (types.User, error) {
	var u types.User
	err := d.db.GetContext(ctx, &u,
		d.rebind(`SELECT id, name, email FROM users WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return types.User{}, types.ErrNotFound
	}
	if err != nil {
		return types.User{}, fmt.Errorf("select user: %w", err)
	}
	u.Roles, err = d.loadRoles(ctx, id)
	if err != nil {
		return types.User{}, err
	}
	return u, nil
}

func (d *DB) UpdateUser(ctx context.Context, id int64, name, email, password string) (types.User, error) {
	err := d.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			d.rebind(`UPDATE users SET name = ?, email = ? WHERE id = ?`),
			name, email, id); err != nil {
			if isDuplicate(err) {
				return types.ErrDuplicateEmail
			}
			return fmt.Errorf("update user: %w", err)
		}
		if password != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			if _, err := tx.ExecContext(ctx,
				d.rebind(`UPDATE users SET password_hash = ? WHERE id = ?`),
				string(hash), id); err != nil {
				return fmt.Errorf("update password: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return types.User{}, err
	}
	return d.GetUser(ctx, id)
}

func (d *DB) ListUsers(ctx context.Context, page, limit int, emailFilter string) ([]types.User, bool, error) {
	users := []types.User{}
	err := d.db.SelectContext(ctx, &users,
		d.rebind(`SELECT id, name, email FROM users WHERE email LIKE ? ORDER BY id LIMIT ? OFFSET ?`),
		likePattern(emailFilter), limit+1, pageOffset(page, limit))
	if err != nil {
		return nil, false, fmt.Errorf("list users: %w", err)
	}

	more := len(users) > limit
	if more {
		users = users[:limit]
	}
	for i := range users {
		roles, err := d.loadRoles(ctx, users[i].ID)
		if err != nil {
			return nil, false, err
		}
		users[i].Roles = roles
	}
	return users, more, nil
}

func (d *DB) DeleteUser(ctx context.Context, id int64) error {
	return d.withTx(ctx, func(tx *sqlx.Tx) error {
		for _, q := range []string{
			`DELETE FROM user_roles WHERE user_id = ?`,
			`DELETE FROM sessions WHERE user_id = ?`,
			`DELETE FROM users WHERE id = ?`,
		} {
			if _, err := tx.ExecContext(ctx, d.rebind(q), id); err != nil {
				return fmt.Errorf("delete user: %w", err)
			}
		}
		return nil
	})
}

func (d *DB) loadRoles(ctx context.Context, userID int64) ([]types.Role, error) {
	rows := []struct {
		Role     string `db:"role"`
		ObjectID int64  `db:"object_id"`
	}{}
	err := d.db.SelectContext(ctx, &rows,
		d.rebind(`SELECT role, object_id FROM user_roles WHERE user_id = ?`), userID)
	if err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}
	roles := make([]types.Role, 0, len(rows))
	for _, r := range rows {
		roles = append(roles, types.Role{Role: types.RoleKind(r.Role), ObjectID: r.ObjectID})
	}
	return roles, nil
}

func (d *DB) insertRoles(ctx context.Context, tx *sqlx.Tx, userID int64, roles []types.Role) error {
	for _, r := range roles {
		if _, err := tx.ExecContext(ctx,
			d.rebind(`INSERT INTO user_roles (user_id, role, object_id) VALUES (?, ?, ?)`),
			userID, string(r.Role), r.ObjectID); err != nil {
			return fmt.Errorf("insert role: %w", err)
		}
	}
	return nil
}
