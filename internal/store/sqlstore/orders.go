package sqlstore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ecdye/jwt-pizza-service/internal/types"
)

func (d *DB) CreateOrder(ctx context.Context, order types.Order) (types.Order, error) {
	if order.Items == nil {
		order.Items = []types.OrderItem{}
	}
	err := d.withTx(ctx, func(tx *sqlx.Tx) error {
		id, err := d.insertID(ctx, tx,
			`INSERT INTO orders (diner_id, franchise_id, store_id) VALUES (?, ?, ?)`,
			order.DinerID, order.FranchiseID, order.StoreID)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		order.ID = id

		for i := range order.Items {
			itemID, err := d.insertID(ctx, tx,
				`INSERT INTO order_items (order_id, menu_id, description, price) VALUES (?, ?, ?, ?)`,
				id, order.Items[i].MenuID, order.Items[i].Description, order.Items[i].Price)
			if err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
			order.Items[i].ID = itemID
		}
		return nil
	})
	if err != nil {
		return types.Order{}, err
	}
	return order, nil
}

func (d *DB) GetOrders(ctx context.Context, dinerID int64, page, limit int) ([]types.Order, error) {
	rows := []struct {
		ID          int64  `db:"id"`
		FranchiseID int64  `db:"franchise_id"`
		StoreID     int64  `db:"store_id"`
		CreatedAt   string `db:"created_at"`
	}{}
	err := d.db.SelectContext(ctx, &rows,
		d.rebind(`SELECT id, franchise_id, store_id, CAST(created_at AS TEXT) AS created_at
			FROM orders WHERE diner_id = ? ORDER BY id LIMIT ? OFFSET ?`),
		dinerID, limit, pageOffset(page, limit))
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}

	orders := make([]types.Order, 0, len(rows))
	for _, r := range rows {
		items := []types.OrderItem{}
		err := d.db.SelectContext(ctx, &items,
			d.rebind(`SELECT id, menu_id, description, price FROM order_items WHERE order_id = ? ORDER BY id`),
			r.ID)
		if err != nil {
			return nil, fmt.Errorf("select order items: %w", err)
		}
		orders = append(orders, types.Order{
			ID:          r.ID,
			FranchiseID: r.FranchiseID,
			StoreID:     r.StoreID,
			Date:        r.CreatedAt,
			Items:       items,
		})
	}
	return orders, nil
}
