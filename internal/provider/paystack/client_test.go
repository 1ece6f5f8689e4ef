package paystack

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bitstarkbridge/aframp-backend/internal/httpclient"
	"github.com/bitstarkbridge/aframp-backend/internal/provider"
)

func newClientWithMock() (*Client, *httpclient.HTTPClientMock) {
	mockHTTP := &httpclient.HTTPClientMock{}
	c := NewClient(ClientOptions{BaseURL: "http://localhost:9090", APIKey: "test-key"})
	c.httpClient = mockHTTP
	return c, mockHTTP
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader(body))}
}

func TestProcessWithdrawal_success(t *testing.T) {
	c, mockHTTP := newClientWithMock()
	mockHTTP.On("Do", mock.Anything).
		Return(jsonResponse(http.StatusOK, `{"status":true,"message":"ok","data":{"recipient_code":"RCP_1"}}`), nil).
		Once()
	mockHTTP.On("Do", mock.Anything).
		Return(jsonResponse(http.StatusOK, `{"status":true,"message":"ok","data":{"transfer_code":"TRF_1","status":"pending","reference":"tx-1"}}`), nil).
		Once()

	resp, err := c.ProcessWithdrawal(context.Background(), provider.WithdrawalRequest{
		TransactionID:     "tx-1",
		Amount:            "1000",
		Currency:          "NGN",
		BankAccountName:   "Jane Doe",
		BankAccountNumber: "0123456789",
		BankCode:          "058",
	})
	require.NoError(t, err)
	assert.Equal(t, "tx-1", resp.ProviderReference)
}

func TestProcessWithdrawal_recipientCreationRejected(t *testing.T) {
	c, mockHTTP := newClientWithMock()
	mockHTTP.On("Do", mock.Anything).
		Return(jsonResponse(http.StatusOK, `{"status":false,"message":"invalid account number","data":{}}`), nil).
		Once()

	_, err := c.ProcessWithdrawal(context.Background(), provider.WithdrawalRequest{TransactionID: "tx-2"})
	require.Error(t, err)

	var withdrawalErr *provider.WithdrawalError
	require.True(t, errors.As(err, &withdrawalErr))
	assert.Equal(t, provider.ErrorKindProvider, withdrawalErr.Kind)
}

func TestToKobo(t *testing.T) {
	kobo, err := toKobo("1000.50")
	require.NoError(t, err)
	assert.Equal(t, int64(100050), kobo)
}

func TestGetPaymentStatus_mapsFailedStatus(t *testing.T) {
	c, mockHTTP := newClientWithMock()
	mockHTTP.On("Do", mock.Anything).
		Return(jsonResponse(http.StatusOK, `{"status":true,"data":{"status":"failed"}}`), nil).
		Once()

	result, err := c.GetPaymentStatus(context.Background(), "tx-1")
	require.NoError(t, err)
	assert.Equal(t, provider.PaymentStatusFailed, result.Status)
}

var _ provider.PaymentProvider = (*Client)(nil)
