// Package stellarbridge wraps the Stellar network operations the onramp
// and offramp engines need: account/balance lookups, transaction and
// operation reads, and signed-envelope submission. It deliberately
// exposes only the four operations described for the Horizon collaborator
// contract — no channel-account pool, no fee-bump wrapping — because this
// system submits every payment from one hot wallet.
package stellarbridge

import (
	"context"

	"github.com/stellar/go/txnbuild"
)

// Balance is one line of an account's balances array.
type Balance struct {
	AssetCode   string
	AssetIssuer string
	Balance     string
}

// Account is the subset of Horizon's account resource the engines need.
type Account struct {
	AccountID string
	Sequence  int64
	Balances  []Balance
}

// TransactionResult is the subset of Horizon's transaction resource the
// confirmation monitor needs.
type TransactionResult struct {
	Successful bool
	Ledger     int32
}

// Operation is one payment-shaped operation belonging to a transaction.
type Operation struct {
	Type        string
	From        string
	To          string
	AssetCode   string
	AssetIssuer string
	Amount      string
}

// SubmitResult is returned by a successful submission. Confirmation
// (inclusion in a closed ledger) is established later by the
// confirmation monitor via GetTransaction, not by submission itself.
type SubmitResult struct {
	Hash string
}

// Gateway is the contract the onramp and offramp engines depend on. It is
// satisfied by HorizonGateway in production and by a mock in tests.
type Gateway interface {
	GetAccount(ctx context.Context, address string) (*Account, error)
	GetTransaction(ctx context.Context, hash string) (*TransactionResult, error)
	GetTransactionOperations(ctx context.Context, hash string) ([]Operation, error)
	SubmitTransaction(ctx context.Context, tx *txnbuild.Transaction) (*SubmitResult, error)
}

// BalanceOf returns the balance of asset (code, issuer) held by the
// account, or "0" if the account has no trustline for it.
func (a *Account) BalanceOf(assetCode, assetIssuer string) string {
	for _, b := range a.Balances {
		if b.AssetCode == assetCode && b.AssetIssuer == assetIssuer {
			return b.Balance
		}
	}
	return "0"
}

// HasTrustline reports whether the account holds a balance line for the
// given asset, regardless of amount.
func (a *Account) HasTrustline(assetCode, assetIssuer string) bool {
	for _, b := range a.Balances {
		if b.AssetCode == assetCode && b.AssetIssuer == assetIssuer {
			return true
		}
	}
	return false
}
