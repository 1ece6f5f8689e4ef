package flutterwave

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
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestProcessWithdrawal_success(t *testing.T) {
	c, mockHTTP := newClientWithMock()
	mockHTTP.On("Do", mock.Anything).
		Return(jsonResponse(http.StatusOK, `{"status":"success","message":"ok","data":{"id":1,"reference":"tx-1","status":"NEW"}}`), nil).
		Once()

	resp, err := c.ProcessWithdrawal(context.Background(), provider.WithdrawalRequest{
		TransactionID:     "tx-1",
		Amount:            "1000",
		Currency:          "NGN",
		BankAccountNumber: "0123456789",
		BankCode:          "044",
	})
	require.NoError(t, err)
	assert.Equal(t, "tx-1", resp.ProviderReference)
	mockHTTP.AssertExpectations(t)
}

func TestProcessWithdrawal_rejectedByProvider(t *testing.T) {
	c, mockHTTP := newClientWithMock()
	mockHTTP.On("Do", mock.Anything).
		Return(jsonResponse(http.StatusOK, `{"status":"error","message":"insufficient balance","data":{}}`), nil).
		Once()

	_, err := c.ProcessWithdrawal(context.Background(), provider.WithdrawalRequest{TransactionID: "tx-2"})
	require.Error(t, err)

	var withdrawalErr *provider.WithdrawalError
	require.True(t, errors.As(err, &withdrawalErr))
	assert.Equal(t, provider.ErrorKindProvider, withdrawalErr.Kind)
	assert.False(t, withdrawalErr.Retryable())
}

func TestProcessWithdrawal_networkErrorIsRetryable(t *testing.T) {
	c, mockHTTP := newClientWithMock()
	mockHTTP.On("Do", mock.Anything).
		Return(nil, errors.New("connection refused")).
		Times(4)

	_, err := c.ProcessWithdrawal(context.Background(), provider.WithdrawalRequest{TransactionID: "tx-3"})
	require.Error(t, err)

	var withdrawalErr *provider.WithdrawalError
	require.True(t, errors.As(err, &withdrawalErr))
	assert.Equal(t, provider.ErrorKindNetwork, withdrawalErr.Kind)
	assert.True(t, withdrawalErr.Retryable())
	mockHTTP.AssertExpectations(t)
}

func TestGetPaymentStatus_mapsSuccessfulStatus(t *testing.T) {
	c, mockHTTP := newClientWithMock()
	mockHTTP.On("Do", mock.Anything).
		Return(jsonResponse(http.StatusOK, `{"status":"success","data":{"status":"SUCCESSFUL"}}`), nil).
		Once()

	result, err := c.GetPaymentStatus(context.Background(), "tx-1")
	require.NoError(t, err)
	assert.Equal(t, provider.PaymentStatusSuccess, result.Status)
}

var _ provider.PaymentProvider = (*Client)(nil)
