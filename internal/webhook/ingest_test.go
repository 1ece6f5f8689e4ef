package webhook

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlutterwave(t *testing.T) {
	payload := []byte(`{"data":{"id":123,"reference":"tx-ref-1","amount":"5000.50","status":"SUCCESSFUL"}}`)

	parsed, err := parseFlutterwave(payload)
	require.NoError(t, err)
	assert.Equal(t, "123", parsed.EventID)
	assert.Equal(t, "tx-ref-1", parsed.Reference)
	assert.True(t, decimal.NewFromFloat(5000.50).Equal(parsed.Amount))
	assert.True(t, parsed.Success)
}

func TestParseFlutterwave_failedStatus(t *testing.T) {
	payload := []byte(`{"data":{"id":124,"reference":"tx-ref-2","amount":"100","status":"FAILED"}}`)

	parsed, err := parseFlutterwave(payload)
	require.NoError(t, err)
	assert.False(t, parsed.Success)
}

func TestParsePaystack_convertsKoboToNaira(t *testing.T) {
	payload := []byte(`{"event":"transfer.success","data":{"reference":"tx-ref-3","amount":250000}}`)

	parsed, err := parsePaystack(payload)
	require.NoError(t, err)
	assert.Equal(t, "tx-ref-3:transfer.success", parsed.EventID)
	assert.True(t, decimal.NewFromInt(2500).Equal(parsed.Amount))
	assert.True(t, parsed.Success)
}

func TestParsePaystack_failedEvent(t *testing.T) {
	payload := []byte(`{"event":"transfer.failed","data":{"reference":"tx-ref-4","amount":1000}}`)

	parsed, err := parsePaystack(payload)
	require.NoError(t, err)
	assert.False(t, parsed.Success)
}

func TestParseMpesa_extractsAmountFromResultParameters(t *testing.T) {
	payload := []byte(`{
		"Result": {
			"ConversationID": "conv-1",
			"OriginatorConversationID": "orig-1",
			"ResultCode": 0,
			"ResultParameters": {
				"ResultParameter": [
					{"Key": "TransactionAmount", "Value": 1500.75},
					{"Key": "TransactionReceipt", "Value": "ABC123"}
				]
			}
		}
	}`)

	parsed, err := parseMpesa(payload)
	require.NoError(t, err)
	assert.Equal(t, "orig-1", parsed.EventID)
	assert.Equal(t, "conv-1", parsed.Reference)
	assert.True(t, decimal.NewFromFloat(1500.75).Equal(parsed.Amount))
	assert.True(t, parsed.Success)
}

func TestParseMpesa_nonZeroResultCodeIsFailure(t *testing.T) {
	payload := []byte(`{"Result":{"ConversationID":"conv-2","OriginatorConversationID":"orig-2","ResultCode":1}}`)

	parsed, err := parseMpesa(payload)
	require.NoError(t, err)
	assert.False(t, parsed.Success)
}

func TestIngest_unknownProvider(t *testing.T) {
	ingester := &Ingester{Secrets: map[string]string{}}

	err := ingester.Ingest(context.Background(), "unknown", "deadbeef", []byte(`{}`))
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestIngest_invalidSignature(t *testing.T) {
	ingester := &Ingester{Secrets: map[string]string{"flutterwave": "shared-secret"}}

	payload := []byte(`{"data":{"id":1,"reference":"ref","amount":"1","status":"SUCCESSFUL"}}`)
	err := ingester.Ingest(context.Background(), "flutterwave", sign("wrong-secret", payload), payload)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestIngest_missingSecretRejectsEvenWithPlausibleSignature(t *testing.T) {
	ingester := &Ingester{Secrets: map[string]string{}}

	payload := []byte(`{"data":{"id":1,"reference":"ref","amount":"1","status":"SUCCESSFUL"}}`)
	err := ingester.Ingest(context.Background(), "flutterwave", sign("anything", payload), payload)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}
