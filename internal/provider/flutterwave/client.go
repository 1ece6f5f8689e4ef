// Package flutterwave implements provider.PaymentProvider against the
// Flutterwave transfers API, structured the way internal/circle/client.go
// structures its Circle API client: a concrete Client holding an httpclient.HTTPClientInterface, and
// internal/retryharness wrapping every call for transient-network retry.
package flutterwave

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/stellar/go/support/log"

	"github.com/bitstarkbridge/aframp-backend/internal/httpclient"
	"github.com/bitstarkbridge/aframp-backend/internal/provider"
	"github.com/bitstarkbridge/aframp-backend/internal/retryharness"
)

const (
	transfersPath = "/v3/transfers"
)

// ClientOptions configures a Client.
type ClientOptions struct {
	BaseURL string
	APIKey  string
}

// Client talks to the Flutterwave transfers API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient httpclient.HTTPClientInterface
}

func NewClient(opts ClientOptions) *Client {
	return &Client{
		baseURL:    opts.BaseURL,
		apiKey:     opts.APIKey,
		httpClient: httpclient.DefaultClient(),
	}
}

func (c *Client) Name() provider.Name {
	return provider.Flutterwave
}

type transferRequest struct {
	AccountBank   string `json:"account_bank"`
	AccountNumber string `json:"account_number"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	Narration     string `json:"narration"`
	Reference     string `json:"reference"`
}

type transferData struct {
	ID        int64  `json:"id"`
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

type transferEnvelope struct {
	Status  string       `json:"status"`
	Message string       `json:"message"`
	Data    transferData `json:"data"`
}

func (c *Client) ProcessWithdrawal(ctx context.Context, req provider.WithdrawalRequest) (provider.WithdrawalResponse, error) {
	body, err := json.Marshal(transferRequest{
		AccountBank:   req.BankCode,
		AccountNumber: req.BankAccountNumber,
		Amount:        req.Amount,
		Currency:      req.Currency,
		Narration:     fmt.Sprintf("cNGN offramp %s", req.TransactionID),
		Reference:     req.TransactionID,
	})
	if err != nil {
		return provider.WithdrawalResponse{}, provider.NewWithdrawalError(provider.Flutterwave, provider.ErrorKindInvalidRequest, err)
	}

	raw, err := c.request(ctx, http.MethodPost, transfersPath, body)
	if err != nil {
		return provider.WithdrawalResponse{}, classifyRequestError(err)
	}

	var envelope transferEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return provider.WithdrawalResponse{}, provider.NewWithdrawalError(provider.Flutterwave, provider.ErrorKindProvider, fmt.Errorf("decoding transfer response: %w", err))
	}
	if envelope.Status != "success" {
		return provider.WithdrawalResponse{}, provider.NewWithdrawalError(provider.Flutterwave, provider.ErrorKindProvider, fmt.Errorf("transfer rejected: %s", envelope.Message))
	}

	return provider.WithdrawalResponse{
		ProviderReference: envelope.Data.Reference,
		RawData:           raw,
	}, nil
}

func (c *Client) GetPaymentStatus(ctx context.Context, reference string) (provider.StatusResult, error) {
	path, err := url.JoinPath(transfersPath, "", "")
	if err != nil {
		return provider.StatusResult{}, fmt.Errorf("building path: %w", err)
	}
	path = fmt.Sprintf("%s?reference=%s", path, url.QueryEscape(reference))

	raw, err := c.request(ctx, http.MethodGet, path, nil)
	if err != nil {
		return provider.StatusResult{}, err
	}

	var envelope transferEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return provider.StatusResult{}, fmt.Errorf("decoding status response: %w", err)
	}

	return provider.StatusResult{Status: mapStatus(envelope.Data.Status)}, nil
}

func mapStatus(flwStatus string) provider.PaymentStatus {
	switch flwStatus {
	case "SUCCESSFUL":
		return provider.PaymentStatusSuccess
	case "FAILED":
		return provider.PaymentStatusFailed
	case "NEW", "PENDING":
		return provider.PaymentStatusPending
	default:
		return provider.PaymentStatusProcessing
	}
}

type refundRequest struct {
	Reference string `json:"reference"`
	Amount    string `json:"amount"`
}

func (c *Client) RefundPayment(ctx context.Context, reference, amount string) (provider.RefundResponse, error) {
	body, err := json.Marshal(refundRequest{Reference: reference, Amount: amount})
	if err != nil {
		return provider.RefundResponse{}, fmt.Errorf("marshaling refund request: %w", err)
	}

	raw, err := c.request(ctx, http.MethodPost, transfersPath+"/refund", body)
	if err != nil {
		return provider.RefundResponse{}, err
	}

	var envelope transferEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return provider.RefundResponse{}, fmt.Errorf("decoding refund response: %w", err)
	}

	return provider.RefundResponse{ProviderReference: envelope.Data.Reference, RawData: raw}, nil
}

func (c *Client) request(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	u, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return nil, fmt.Errorf("building url: %w", err)
	}

	var raw []byte
	err = retryharness.WithTransientRetry(ctx, 4, func() error {
		req, err := http.NewRequestWithContext(ctx, method, u, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return retryharness.RetryableError{Err: fmt.Errorf("submitting request to %s: %w", u, err)}
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			log.Ctx(ctx).Warnf("flutterwave client: %s returned %d, retrying", u, resp.StatusCode)
			return retryharness.RetryableError{Err: fmt.Errorf("transient status %d", resp.StatusCode), RetryAfter: 2 * time.Second}
		}

		buf := new(bytes.Buffer)
		if _, err := buf.ReadFrom(resp.Body); err != nil {
			return fmt.Errorf("reading response body: %w", err)
		}
		raw = buf.Bytes()

		if resp.StatusCode >= http.StatusBadRequest {
			return fmt.Errorf("flutterwave API error %d: %s", resp.StatusCode, raw)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func classifyRequestError(err error) error {
	return provider.NewWithdrawalError(provider.Flutterwave, provider.ErrorKindNetwork, err)
}

var _ provider.PaymentProvider = (*Client)(nil)
