package store

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/bitstarkbridge/aframp-backend/db"
	"github.com/bitstarkbridge/aframp-backend/db/dbtest"
)

func decimalFromString(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func openTestDBConnectionPool(t *testing.T) db.DBConnectionPool {
	t.Helper()

	dbt := dbtest.Open(t)
	dbConnectionPool, err := db.OpenDBConnectionPool(dbt.DSN)
	require.NoError(t, err)

	t.Cleanup(func() {
		dbConnectionPool.Close()
	})

	return dbConnectionPool
}

func testTransaction(direction Direction, status Status) Transaction {
	return Transaction{
		Direction:       direction,
		Status:          status,
		FromAmount:      decimalFromString("50000"),
		FromCurrency:    "NGN",
		ToAmount:        decimalFromString("49500"),
		ToCurrency:      "cNGN",
		WalletAddress:   "GA" + "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
		PaymentProvider: "flutterwave",
	}
}
