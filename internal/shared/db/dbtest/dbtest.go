package dbtest

import (
	"fmt"
	"testing"

	"github.com/cristianortiz/harvestBid/internal/shared/db"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// MustOpen opens a fresh in-memory SQLite database for one test and runs the given
// migrations on it. The connection is closed via t.Cleanup.
func MustOpen(t *testing.T, migrate ...func(*gorm.DB) error) *gorm.DB {
	t.Helper()

	// a named shared-cache database keeps every pooled connection on the same data
	gdb, err := db.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString()))
	require.NoError(t, err)

	for _, m := range migrate {
		require.NoError(t, m(gdb))
	}

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return gdb
}
