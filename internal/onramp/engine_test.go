package onramp

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stellar/go/txnbuild"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitstarkbridge/aframp-backend/db"
	"github.com/bitstarkbridge/aframp-backend/db/dbtest"
	"github.com/bitstarkbridge/aframp-backend/internal/provider"
	"github.com/bitstarkbridge/aframp-backend/internal/stellarbridge"
	"github.com/bitstarkbridge/aframp-backend/internal/store"
)

const (
	testCNGNCode   = "cNGN"
	testCNGNIssuer = "GBBB00000000000000000000000000000000000000000000000000"
	testHotWallet  = "GAAA00000000000000000000000000000000000000000000000000"
	testRecipient  = "GCCC00000000000000000000000000000000000000000000000000"
)

// fakeGateway is a hand-rolled stellarbridge.Gateway double; no mockery mock
// exists for this interface yet, and its four methods are small enough to
// stub directly per test.
type fakeGateway struct {
	accounts   map[string]*stellarbridge.Account
	submitErr  error
	submitHash string
	txResult   *stellarbridge.TransactionResult
	getTxErr   error
}

func (f *fakeGateway) GetAccount(ctx context.Context, address string) (*stellarbridge.Account, error) {
	acc, ok := f.accounts[address]
	if !ok {
		return nil, stellarbridge.ErrTransactionNotFound
	}
	return acc, nil
}

func (f *fakeGateway) GetTransaction(ctx context.Context, hash string) (*stellarbridge.TransactionResult, error) {
	if f.getTxErr != nil {
		return nil, f.getTxErr
	}
	return f.txResult, nil
}

func (f *fakeGateway) GetTransactionOperations(ctx context.Context, hash string) ([]stellarbridge.Operation, error) {
	return nil, nil
}

func (f *fakeGateway) SubmitTransaction(ctx context.Context, tx *txnbuild.Transaction) (*stellarbridge.SubmitResult, error) {
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return &stellarbridge.SubmitResult{Hash: f.submitHash}, nil
}

func openTestDBConnectionPool(t *testing.T) db.DBConnectionPool {
	t.Helper()
	dbt := dbtest.Open(t)
	pool, err := db.OpenDBConnectionPool(dbt.DSN)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })
	return pool
}

func baseEngine(t *testing.T, gw stellarbridge.Gateway) (*Engine, db.DBConnectionPool) {
	pool := openTestDBConnectionPool(t)
	return &Engine{
		Transactions:      store.NewTransactionRepository(pool),
		Gateway:           gw,
		Providers:         map[provider.Name]provider.PaymentProvider{},
		HotWalletSecret:   "SBDHXQVVJC6ESCBFL4J72NP2Z6QQZS5AQI4CNLKXTDKVMLTHJOKNH1R3",
		SystemWalletAddr:  testHotWallet,
		NetworkPassphrase: "Test SDF Network ; September 2015",
		CNGNAssetCode:     testCNGNCode,
		CNGNAssetIssuer:   testCNGNIssuer,
		PollInterval:      30 * time.Second,
		BatchSize:         50,
		PendingTimeout:    30 * time.Minute,
		StellarRetries:    3,
	}, pool
}

func TestEngine_handlePaymentConfirmed_rejectsAlreadyProcessing(t *testing.T) {
	engine, pool := baseEngine(t, &fakeGateway{})
	ctx := context.Background()

	tx, err := engine.Transactions.Insert(ctx, store.Transaction{
		Direction:     store.DirectionOnramp,
		Status:        store.StatusProcessing,
		FromAmount:    decimal.RequireFromString("50000"),
		FromCurrency:  "NGN",
		ToAmount:      decimal.RequireFromString("49500"),
		ToCurrency:    "cNGN",
		WalletAddress: testRecipient,
	})
	require.NoError(t, err)

	err = engine.HandlePaymentConfirmed(ctx, pool, tx.ID, decimal.RequireFromString("50000"))
	require.NoError(t, err)

	reloaded, err := engine.Transactions.FindByID(ctx, pool, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusProcessing, reloaded.Status, "already-claimed transaction must be left untouched")
}

func TestEngine_handlePaymentConfirmed_amountMismatchFailsWithoutRefund(t *testing.T) {
	engine, pool := baseEngine(t, &fakeGateway{})
	ctx := context.Background()

	tx, err := engine.Transactions.Insert(ctx, store.Transaction{
		Direction:     store.DirectionOnramp,
		Status:        store.StatusPending,
		FromAmount:    decimal.RequireFromString("50000"),
		FromCurrency:  "NGN",
		ToAmount:      decimal.RequireFromString("49500"),
		ToCurrency:    "cNGN",
		WalletAddress: testRecipient,
	})
	require.NoError(t, err)

	err = engine.HandlePaymentConfirmed(ctx, pool, tx.ID, decimal.RequireFromString("49000"))
	require.NoError(t, err)

	reloaded, err := engine.Transactions.FindByID(ctx, pool, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusFailed, reloaded.Status)
	assert.Equal(t, ReasonAmountMismatch, reloaded.ErrorMessage.String)
}

func TestEngine_handlePaymentConfirmed_missingTrustlineFailsAndRefunds(t *testing.T) {
	gw := &fakeGateway{accounts: map[string]*stellarbridge.Account{
		testRecipient: {AccountID: testRecipient, Balances: nil},
	}}
	engine, pool := baseEngine(t, gw)
	ctx := context.Background()

	tx, err := engine.Transactions.Insert(ctx, store.Transaction{
		Direction:       store.DirectionOnramp,
		Status:          store.StatusPending,
		FromAmount:      decimal.RequireFromString("50000"),
		FromCurrency:    "NGN",
		ToAmount:        decimal.RequireFromString("49500"),
		ToCurrency:      "cNGN",
		WalletAddress:   testRecipient,
		PaymentProvider: "flutterwave",
	})
	require.NoError(t, err)

	err = engine.HandlePaymentConfirmed(ctx, pool, tx.ID, decimal.RequireFromString("50000"))
	require.NoError(t, err)

	reloaded, err := engine.Transactions.FindByID(ctx, pool, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusRefunded, reloaded.Status)
	assert.Equal(t, ReasonTrustlineNotFound, reloaded.ErrorMessage.String)
}

func TestEngine_verifySystemLiquidity(t *testing.T) {
	gw := &fakeGateway{accounts: map[string]*stellarbridge.Account{
		testHotWallet: {
			AccountID: testHotWallet,
			Balances:  []stellarbridge.Balance{{AssetCode: testCNGNCode, AssetIssuer: testCNGNIssuer, Balance: "100000"}},
		},
	}}
	engine, _ := baseEngine(t, gw)

	ok, err := engine.verifySystemLiquidity(context.Background(), decimal.RequireFromString("50000"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = engine.verifySystemLiquidity(context.Background(), decimal.RequireFromString("200000"))
	require.NoError(t, err)
	assert.False(t, ok)
}
