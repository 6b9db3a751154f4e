package sqlstore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ecdye/jwt-pizza-service/internal/types"
)

func (d *DB) GetMenu(ctx context.Context) ([]types.MenuItem, error) {
	menu := []types.MenuItem{}
	err := d.db.SelectContext(ctx, &menu,
		`SELECT id, title, description, image, price FROM menu ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select menu: %w", err)
	}
	return menu, nil
}

func (d *DB) AddMenuItem(ctx context.Context, item types.MenuItem) (types.MenuItem, error) {
	err := d.withTx(ctx, func(tx *sqlx.Tx) error {
		id, err := d.insertID(ctx, tx,
			`INSERT INTO menu (title, description, image, price) VALUES (?, ?, ?, ?)`,
			item.Title, item.Description, item.Image, item.Price)
		if err != nil {
			return fmt.Errorf("insert menu item: %w", err)
		}
		item.ID = id
		return nil
	})
	if err != nil {
		return types.MenuItem{}, err
	}
	return item, nil
}
