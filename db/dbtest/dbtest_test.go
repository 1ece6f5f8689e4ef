package dbtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	db := Open(t)
	defer db.Close()
	session := db.Open()
	defer session.Close()

	count := 0
	err := session.Get(&count, `SELECT COUNT(*) FROM core_migrations`)
	require.NoError(t, err)
	assert.Greater(t, count, 0)
}
