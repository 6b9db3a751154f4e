package sqlstore

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
)

// NewTestDB opens a uniquely named shared in-memory sqlite database and
// closes it when the test finishes.
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	d, err := Open(context.Background(), Config{Driver: DriverSQLite, DSN: dsn})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	// shared-cache in-memory databases vanish when the last connection
	// closes; keep one open for the test's lifetime
	d.db.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = d.Close() })
	return d
}
