package stellarbridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildRefundMemo_truncatesToMemoTextLimit(t *testing.T) {
	txID := "11111111-2222-3333-4444-555555555555"

	memo := BuildRefundMemo(txID)

	assert.Equal(t, "REFUND-11111111-2222-3333-44", memo)
	assert.LessOrEqual(t, len(memo), MaxMemoTextBytes)
}

func TestBuildRefundMemo_shortIDIsNotPadded(t *testing.T) {
	memo := BuildRefundMemo("abc-123")

	assert.Equal(t, "REFUND-abc-123", memo)
}

func TestBuildSignedPayment_rejectsInvalidDestination(t *testing.T) {
	_, err := BuildSignedPayment(PaymentParams{
		NetworkPassphrase: "Test SDF Network ; September 2015",
		HotWalletSecret:   "SAAPYAPTTRZMCUZFPYL5OMEGNCDAWGGMWMTAM27H5KH5FXXXD2OYGNQX",
		HotWalletAccount:  &Account{AccountID: "GBBD47IF6LWK7P7MDEVSCWR7DPUWV3NY3DTQEVFL4NAT4AQH3ZLLFLA5", Sequence: 1},
		Destination:       "not-a-valid-account",
		Amount:            "10.0000000",
	})

	assert.Error(t, err)
}

func TestBuildSignedPayment_rejectsInvalidAssetIssuer(t *testing.T) {
	_, err := BuildSignedPayment(PaymentParams{
		NetworkPassphrase: "Test SDF Network ; September 2015",
		HotWalletSecret:   "SAAPYAPTTRZMCUZFPYL5OMEGNCDAWGGMWMTAM27H5KH5FXXXD2OYGNQX",
		HotWalletAccount:  &Account{AccountID: "GBBD47IF6LWK7P7MDEVSCWR7DPUWV3NY3DTQEVFL4NAT4AQH3ZLLFLA5", Sequence: 1},
		Destination:       "GBBD47IF6LWK7P7MDEVSCWR7DPUWV3NY3DTQEVFL4NAT4AQH3ZLLFLA5",
		AssetCode:         "CNGN",
		AssetIssuer:       "not-an-issuer",
		Amount:            "10.0000000",
	})

	assert.Error(t, err)
}
