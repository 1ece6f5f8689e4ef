package db

import (
	"testing"

	"github.com/bitstarkbridge/aframp-backend/db/dbtest"
	"github.com/bitstarkbridge/aframp-backend/internal/monitor"

	"github.com/stretchr/testify/require"
)

func openTestDBConnectionPool(t *testing.T) DBConnectionPool {
	t.Helper()

	dbt := dbtest.Open(t)
	dbConnectionPool, err := OpenDBConnectionPool(dbt.DSN)
	require.NoError(t, err)

	t.Cleanup(func() {
		dbConnectionPool.Close()
	})

	return dbConnectionPool
}

// newMockMonitorService returns a *monitor.MockMonitorService whose
// recorded expectations are checked at test cleanup, the behavior
// mockery-generated NewMockXxx constructors give for free.
func newMockMonitorService(t *testing.T) *monitor.MockMonitorService {
	t.Helper()

	m := &monitor.MockMonitorService{}
	t.Cleanup(func() {
		m.AssertExpectations(t)
	})

	return m
}
