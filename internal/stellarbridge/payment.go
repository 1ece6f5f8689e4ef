package stellarbridge

import (
	"fmt"

	"github.com/stellar/go/keypair"
	"github.com/stellar/go/strkey"
	"github.com/stellar/go/txnbuild"
)

// MaxMemoTextBytes is the wire limit for a MemoText value. Refund memos
// are truncated to this length rather than rejected, since the
// transaction ID prefix alone is enough to trace the refund back to its
// source transaction.
const MaxMemoTextBytes = 28

// refundMemoPrefix plus a truncated transaction ID, per the format
// stamped on refund payments so a receiver's statement shows which
// transaction a refund belongs to.
const refundMemoPrefix = "REFUND-"

// BuildRefundMemo formats the memo text for a refund payment, truncating
// to MaxMemoTextBytes. Given transaction ID
// "11111111-2222-3333-4444-555555555555" this yields
// "REFUND-11111111-2222-3333-44".
func BuildRefundMemo(transactionID string) string {
	memo := refundMemoPrefix + transactionID
	if len(memo) > MaxMemoTextBytes {
		memo = memo[:MaxMemoTextBytes]
	}
	return memo
}

// PaymentParams describes a single signed payment from the hot wallet.
type PaymentParams struct {
	NetworkPassphrase string
	HotWalletSecret   string
	HotWalletAccount  *Account
	Destination       string
	AssetCode         string
	AssetIssuer       string
	Amount            string
	MemoText          string
	BaseFee           int64
}

// BuildSignedPayment builds and signs a direct (non-fee-bump) Stellar
// payment transaction from the hot wallet. There is no channel-account
// pool: the hot wallet is both source and fee payer for every
// transaction this system submits.
func BuildSignedPayment(params PaymentParams) (*txnbuild.Transaction, error) {
	if !strkey.IsValidEd25519PublicKey(params.Destination) {
		return nil, fmt.Errorf("invalid destination account: %s", params.Destination)
	}

	var asset txnbuild.Asset = txnbuild.NativeAsset{}
	if params.AssetCode != "" {
		if !strkey.IsValidEd25519PublicKey(params.AssetIssuer) {
			return nil, fmt.Errorf("invalid asset issuer: %s", params.AssetIssuer)
		}
		asset = txnbuild.CreditAsset{Code: params.AssetCode, Issuer: params.AssetIssuer}
	}

	var memo txnbuild.Memo
	if params.MemoText != "" {
		memo = txnbuild.MemoText(params.MemoText)
	}

	baseFee := params.BaseFee
	if baseFee == 0 {
		baseFee = txnbuild.MinBaseFee
	}

	tx, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount: &txnbuild.SimpleAccount{
			AccountID: params.HotWalletAccount.AccountID,
			Sequence:  params.HotWalletAccount.Sequence,
		},
		Operations: []txnbuild.Operation{
			&txnbuild.Payment{
				Destination: params.Destination,
				Amount:      params.Amount,
				Asset:       asset,
			},
		},
		Memo:                 memo,
		BaseFee:              baseFee,
		Preconditions:        txnbuild.Preconditions{TimeBounds: txnbuild.NewTimeout(300)},
		IncrementSequenceNum: true,
	})
	if err != nil {
		return nil, fmt.Errorf("building payment transaction: %w", err)
	}

	kp, err := keypair.ParseFull(params.HotWalletSecret)
	if err != nil {
		return nil, fmt.Errorf("parsing hot wallet secret key: %w", err)
	}

	signed, err := tx.Sign(params.NetworkPassphrase, kp)
	if err != nil {
		return nil, fmt.Errorf("signing payment transaction: %w", err)
	}

	return signed, nil
}
