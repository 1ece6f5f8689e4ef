package stellarbridge

import (
	"context"
	"fmt"

	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/protocols/horizon/operations"
	"github.com/stellar/go/txnbuild"
)

// HorizonGateway is the production Gateway, backed by a Horizon REST
// client. It holds no channel-account pool and does no fee-bump wrapping:
// every submission is a single transaction signed by the hot wallet.
type HorizonGateway struct {
	client horizonclient.ClientInterface
}

func NewHorizonGateway(client horizonclient.ClientInterface) *HorizonGateway {
	return &HorizonGateway{client: client}
}

var _ Gateway = (*HorizonGateway)(nil)

// GetAccount fetches the hot wallet's current sequence number and
// balances, used both to build the next transaction and to run the
// liquidity check before an offramp withdrawal is initiated.
func (g *HorizonGateway) GetAccount(ctx context.Context, address string) (*Account, error) {
	horizonAccount, err := g.client.AccountDetail(horizonclient.AccountRequest{AccountID: address})
	if err != nil {
		return nil, ClassifySubmitError(err)
	}

	sequence, err := horizonAccount.GetSequenceNumber()
	if err != nil {
		return nil, fmt.Errorf("reading sequence number for account %q: %w", address, err)
	}

	balances := make([]Balance, 0, len(horizonAccount.Balances))
	for _, b := range horizonAccount.Balances {
		balances = append(balances, Balance{
			AssetCode:   b.Asset.Code,
			AssetIssuer: b.Asset.Issuer,
			Balance:     b.Balance,
		})
	}

	return &Account{
		AccountID: horizonAccount.AccountID,
		Sequence:  sequence,
		Balances:  balances,
	}, nil
}

// GetTransaction reports whether hash was included in a closed ledger.
// This is the confirmation monitor's poll primitive: a submission
// succeeding only means Horizon accepted the envelope, never that it
// closed.
func (g *HorizonGateway) GetTransaction(ctx context.Context, hash string) (*TransactionResult, error) {
	tx, err := g.client.TransactionDetail(hash)
	if err != nil {
		if hErr := horizonclient.GetError(err); hErr != nil && hErr.Problem.Status == 404 {
			return nil, ErrTransactionNotFound
		}
		return nil, ClassifySubmitError(err)
	}

	return &TransactionResult{
		Successful: tx.Successful,
		Ledger:     int32(tx.Ledger),
	}, nil
}

// GetTransactionOperations lists the payment operations belonging to
// hash, used to verify the receiving address and amount of an
// externally-observed incoming payment before it is trusted.
func (g *HorizonGateway) GetTransactionOperations(ctx context.Context, hash string) ([]Operation, error) {
	page, err := g.client.Payments(horizonclient.OperationRequest{ForTransaction: hash})
	if err != nil {
		return nil, ClassifySubmitError(err)
	}

	out := make([]Operation, 0, len(page.Embedded.Records))
	for _, record := range page.Embedded.Records {
		payment, ok := record.(operations.Payment)
		if !ok {
			continue
		}
		out = append(out, Operation{
			Type:        payment.Type,
			From:        payment.From,
			To:          payment.To,
			AssetCode:   payment.Asset.Code,
			AssetIssuer: payment.Asset.Issuer,
			Amount:      payment.Amount,
		})
	}

	return out, nil
}

// SubmitTransaction submits a signed transaction, built and signed by
// BuildSignedPayment. There is no fee-bump wrapping: the hot wallet pays
// its own fee.
func (g *HorizonGateway) SubmitTransaction(ctx context.Context, tx *txnbuild.Transaction) (*SubmitResult, error) {
	resp, err := g.client.SubmitTransactionWithOptions(tx, horizonclient.SubmitTxOpts{SkipMemoRequiredCheck: true})
	if err != nil {
		return nil, ClassifySubmitError(err)
	}

	return &SubmitResult{Hash: resp.Hash}, nil
}

// ErrTransactionNotFound is returned by GetTransaction when Horizon has
// no record of hash yet, which is the expected state while a submitted
// transaction is still waiting to close.
var ErrTransactionNotFound = fmt.Errorf("stellarbridge: transaction not found")
