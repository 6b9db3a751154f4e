package sqlstore

import (
	"context"
	"fmt"

	"github.com/ecdye/jwt-pizza-service/internal/token"
)

// Sessions store token hashes only; the raw token never touches the
// database.

func (d *DB) LoginUser(ctx context.Context, userID int64, tok string) error {
	_, err := d.db.ExecContext(ctx,
		d.rebind(`INSERT INTO sessions (token_hash, user_id) VALUES (?, ?)`),
		token.Hash(tok), userID)
	if err != nil {
		if isDuplicate(err) {
			// same token logged in twice; session already live
			return nil
		}
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (d *DB) IsLoggedIn(ctx context.Context, tok string) (bool, error) {
	var n int
	err := d.db.GetContext(ctx, &n,
		d.rebind(`SELECT COUNT(*) FROM sessions WHERE token_hash = ?`), token.Hash(tok))
	if err != nil {
		return false, fmt.Errorf("select session: %w", err)
	}
	return n > 0, nil
}

func (d *DB) LogoutUser(ctx context.Context, tok string) error {
	_, err := d.db.ExecContext(ctx,
		d.rebind(`DELETE FROM sessions WHERE token_hash = ?`), token.Hash(tok))
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
