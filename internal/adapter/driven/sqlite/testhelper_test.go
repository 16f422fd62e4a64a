package sqlite

import (
	"context"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// setupTestDB opens a migrated in-memory database private to the test. The
// writer and reader pools share it through cache=shared under a name derived
// from t.Name().
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := fmt.Sprintf(
		"file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)",
		url.PathEscape(t.Name()),
	)

	db, err := openDSN(context.Background(), dsn, Options{
		Path:         ":memory:",
		MaxOpenConns: 4,
		IdleTimeout:  time.Minute,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, RunMigrations(db.Writer))
	return db
}
