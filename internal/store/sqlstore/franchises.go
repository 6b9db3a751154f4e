package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ecdye/jwt-pizza-service/internal/types"
)

func (d *DB) CreateFranchise(ctx context.Context, f types.Franchise) (types.Franchise, error) {
	admins := f.Admins
	f.Admins = nil
	f.Stores = []types.Store{}

	err := d.withTx(ctx, func(tx *sqlx.Tx) error {
		id, err := d.insertID(ctx, tx, `INSERT INTO franchises (name) VALUES (?)`, f.Name)
		if err != nil {
			return fmt.Errorf("insert franchise: %w", err)
		}
		f.ID = id

		for _, a := range admins {
			var u types.User
			err := tx.GetContext(ctx, &u,
				d.rebind(`SELECT id, name, email FROM users WHERE email = ?`), a.Email)
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w for franchise admin %s", types.ErrUnknownUser, a.Email)
			}
			if err != nil {
				return fmt.Errorf("select franchise admin: %w", err)
			}
			if _, err := tx.ExecContext(ctx,
				d.rebind(`INSERT INTO user_roles (user_id, role, object_id) VALUES (?, ?, ?)`),
				u.ID, string(types.RoleFranchisee), id); err != nil {
				return fmt.Errorf("assign franchisee role: %w", err)
			}
			f.Admins = append(f.Admins, types.FranchiseAdmin{ID: u.ID, Name: u.Name, Email: u.Email})
		}
		return nil
	})
	if err != nil {
		return types.Franchise{}, err
	}
	return f, nil
}

func (d *DB) DeleteFranchise(ctx context.Context, id int64) error {
	return d.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			d.rebind(`DELETE FROM stores WHERE franchise_id = ?`), id); err != nil {
			return fmt.Errorf("delete stores: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			d.rebind(`DELETE FROM user_roles WHERE role = ? AND object_id = ?`),
			string(types.RoleFranchisee), id); err != nil {
			return fmt.Errorf("delete franchisee roles: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			d.rebind(`DELETE FROM franchises WHERE id = ?`), id); err != nil {
			return fmt.Errorf("delete franchise: %w", err)
		}
		return nil
	})
}

func (d *DB) ListFranchises(ctx context.Context, page, limit int, nameFilter string, includeAdmins bool) ([]types.Franchise, bool, error) {
	franchises := []types.Franchise{}
	err := d.db.SelectContext(ctx, &franchises,
		d.rebind(`SELECT id, name FROM franchises WHERE name LIKE ? ORDER BY id LIMIT ? OFFSET ?`),
		likePattern(nameFilter), limit+1, pageOffset(page, limit))
	if err != nil {
		return nil, false, fmt.Errorf("list franchises: %w", err)
	}

	more := len(franchises) > limit
	if more {
		franchises = franchises[:limit]
	}
	for i := range franchises {
		if err := d.populateFranchise(ctx, &franchises[i], includeAdmins); err != nil {
			return nil, false, err
		}
	}
	return franchises, more, nil
}

func (d *DB) GetUserFranchises(ctx context.Context, userID int64) ([]types.Franchise, error) {
	ids := []int64{}
	err := d.db.SelectContext(ctx, &ids,
		d.rebind(`SELECT object_id FROM user_roles WHERE user_id = ? AND role = ?`),
		userID, string(types.RoleFranchisee))
	if err != nil {
		return nil, fmt.Errorf("select franchise roles: %w", err)
	}

	franchises := []types.Franchise{}
	for _, id := range ids {
		var f types.Franchise
		err := d.db.GetContext(ctx, &f,
			d.rebind(`SELECT id, name FROM franchises WHERE id = ?`), id)
		if errors.Is(err, sql.ErrNoRows) {
			// stale role row; franchise already deleted
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("select franchise: %w", err)
		}
		if err := d.populateFranchise(ctx, &f, true); err != nil {
			return nil, err
		}
		franchises = append(franchises, f)
	}
	return franchises, nil
}

func (d *DB) CreateStore(ctx context.Context, franchiseID int64, name string) (types.Store, error) {
	var s types.Store
	err := d.withTx(ctx, func(tx *sqlx.Tx) error {
		id, err := d.insertID(ctx, tx,
			`INSERT INTO stores (franchise_id, name) VALUES (?, ?)`, franchiseID, name)
		if err != nil {
			return fmt.Errorf("insert store: %w", err)
		}
		s = types.Store{ID: id, FranchiseID: franchiseID, Name: name}
		return nil
	})
	if err != nil {
		return types.Store{}, err
	}
	return s, nil
}

func (d *DB) DeleteStore(ctx context.Context, franchiseID, storeID int64) error {
	_, err := d.db.ExecContext(ctx,
		d.rebind(`DELETE FROM stores WHERE id = ? AND franchise_id = ?`), storeID, franchiseID)
	if err != nil {
		return fmt.Errorf("delete store: %w", err)
	}
	return nil
}

func (d *DB) populateFranchise(ctx context.Context, f *types.Franchise, includeAdmins bool) error {
	stores := []types.Store{}
	err := d.db.SelectContext(ctx, &stores,
		d.rebind(`SELECT id, name FROM stores WHERE franchise_id = ? ORDER BY id`), f.ID)
	if err != nil {
		return fmt.Errorf("select stores: %w", err)
	}
	f.Stores = stores

	if !includeAdmins {
		return nil
	}
	admins := []types.FranchiseAdmin{}
	err = d.db.SelectContext(ctx, &admins,
		d.rebind(`SELECT u.id AS id, u.name AS name, u.email AS email
			FROM users u JOIN user_roles ur ON ur.user_id = u.id
			WHERE ur.role = ? AND ur.object_id = ?
			ORDER BY u.id`),
		string(types.RoleFranchisee), f.ID)
	if err != nil {
		return fmt.Errorf("select franchise admins: %w", err)
	}
	f.Admins = admins
	return nil
}
