// Package mpesa implements provider.PaymentProvider against Safaricom's
// M-Pesa Daraja B2C API, the sole withdrawal rail for Kenyan shilling
// offramps. It does not share Flutterwave/Paystack's bearer-token auth:
// Daraja requires an OAuth client-credentials token fetched per call
// window, which this client caches for its lifetime the same way
// internal/circle/client.go caches nothing but shows the shape of a
// single "make an authed request, unwrap the envelope" method the other
// two providers' request helpers follow.
package mpesa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/stellar/go/support/log"

	"github.com/bitstarkbridge/aframp-backend/internal/httpclient"
	"github.com/bitstarkbridge/aframp-backend/internal/provider"
	"github.com/bitstarkbridge/aframp-backend/internal/retryharness"
)

const (
	oauthPath  = "/oauth/v1/generate?grant_type=client_credentials"
	b2cPath    = "/mpesa/b2c/v3/paymentrequest"
	statusPath = "/mpesa/transactionstatus/v1/query"
)

type ClientOptions struct {
	BaseURL            string
	ConsumerKey        string
	ConsumerSecret     string
	ShortCode          string
	InitiatorName      string
	SecurityCredential string
}

type Client struct {
	opts       ClientOptions
	httpClient httpclient.HTTPClientInterface

	mu         sync.Mutex
	token      string
	tokenUntil time.Time
}

func NewClient(opts ClientOptions) *Client {
	return &Client{
		opts:       opts,
		httpClient: httpclient.DefaultClient(),
	}
}

func (c *Client) Name() provider.Name {
	return provider.Mpesa
}

type oauthResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenUntil) {
		return c.token, nil
	}

	u, err := url.JoinPath(c.opts.BaseURL, oauthPath)
	if err != nil {
		return "", fmt.Errorf("building oauth url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("creating oauth request: %w", err)
	}
	req.SetBasicAuth(c.opts.ConsumerKey, c.opts.ConsumerSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("requesting oauth token: %w", err)
	}
	defer resp.Body.Close()

	var oauthResp oauthResponse
	if err := json.NewDecoder(resp.Body).Decode(&oauthResp); err != nil {
		return "", fmt.Errorf("decoding oauth response: %w", err)
	}

	c.token = oauthResp.AccessToken
	c.tokenUntil = time.Now().Add(55 * time.Minute) // Daraja tokens last 1h
	return c.token, nil
}

type b2cRequest struct {
	InitiatorName      string `json:"InitiatorName"`
	SecurityCredential string `json:"SecurityCredential"`
	CommandID          string `json:"CommandID"`
	Amount             string `json:"Amount"`
	PartyA             string `json:"PartyA"`
	PartyB             string `json:"PartyB"`
	Remarks            string `json:"Remarks"`
	QueueTimeOutURL    string `json:"QueueTimeOutURL"`
	ResultURL          string `json:"ResultURL"`
	Occasion           string `json:"Occasion"`
}

type b2cResponse struct {
	ConversationID           string `json:"ConversationID"`
	OriginatorConversationID string `json:"OriginatorConversationID"`
	ResponseCode             string `json:"ResponseCode"`
	ResponseDescription      string `json:"ResponseDescription"`
}

func (c *Client) ProcessWithdrawal(ctx context.Context, req provider.WithdrawalRequest) (provider.WithdrawalResponse, error) {
	body, err := json.Marshal(b2cRequest{
		InitiatorName:      c.opts.InitiatorName,
		SecurityCredential: c.opts.SecurityCredential,
		CommandID:          "BusinessPayment",
		Amount:             req.Amount,
		PartyA:             c.opts.ShortCode,
		PartyB:             req.BankAccountNumber, // phone number for M-Pesa
		Remarks:            fmt.Sprintf("cNGN offramp %s", req.TransactionID),
		Occasion:           req.TransactionID,
	})
	if err != nil {
		return provider.WithdrawalResponse{}, provider.NewWithdrawalError(provider.Mpesa, provider.ErrorKindInvalidRequest, err)
	}

	raw, err := c.request(ctx, http.MethodPost, b2cPath, body)
	if err != nil {
		return provider.WithdrawalResponse{}, classifyRequestError(err)
	}

	var resp b2cResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return provider.WithdrawalResponse{}, provider.NewWithdrawalError(provider.Mpesa, provider.ErrorKindProvider, fmt.Errorf("decoding b2c response: %w", err))
	}
	if resp.ResponseCode != "0" {
		return provider.WithdrawalResponse{}, provider.NewWithdrawalError(provider.Mpesa, provider.ErrorKindProvider, fmt.Errorf("b2c request rejected: %s", resp.ResponseDescription))
	}

	return provider.WithdrawalResponse{
		ProviderReference: resp.ConversationID,
		RawData:           raw,
	}, nil
}

type statusResultParameter struct {
	Key   string `json:"Key"`
	Value string `json:"Value"`
}

type statusResponse struct {
	ResultCode       string                  `json:"ResultCode"`
	ResultDesc       string                  `json:"ResultDesc"`
	ResultParameters []statusResultParameter `json:"ResultParameters"`
}

func (c *Client) GetPaymentStatus(ctx context.Context, reference string) (provider.StatusResult, error) {
	body, err := json.Marshal(map[string]string{
		"Initiator":          c.opts.InitiatorName,
		"SecurityCredential": c.opts.SecurityCredential,
		"CommandID":          "TransactionStatusQuery",
		"TransactionID":      reference,
		"PartyA":             c.opts.ShortCode,
		"IdentifierType":     "4",
	})
	if err != nil {
		return provider.StatusResult{}, fmt.Errorf("marshaling status request: %w", err)
	}

	raw, err := c.request(ctx, http.MethodPost, statusPath, body)
	if err != nil {
		return provider.StatusResult{}, err
	}

	var resp statusResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return provider.StatusResult{}, fmt.Errorf("decoding status response: %w", err)
	}

	return provider.StatusResult{Status: mapStatus(resp.ResultCode), FailureReason: resp.ResultDesc}, nil
}

func mapStatus(resultCode string) provider.PaymentStatus {
	switch resultCode {
	case "0":
		return provider.PaymentStatusSuccess
	case "":
		return provider.PaymentStatusPending
	default:
		return provider.PaymentStatusFailed
	}
}

// RefundPayment has no Daraja analog for a completed B2C disbursement;
// M-Pesa withdrawals that need reversing go through manual reconciliation,
// so this always reports an invalid-request style error rather than
// silently no-op'ing.
func (c *Client) RefundPayment(ctx context.Context, reference, amount string) (provider.RefundResponse, error) {
	return provider.RefundResponse{}, fmt.Errorf("mpesa: automated refund not supported, reference %s requires manual reversal", reference)
}

func (c *Client) request(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, provider.NewWithdrawalError(provider.Mpesa, provider.ErrorKindNetwork, err)
	}

	u, err := url.JoinPath(c.opts.BaseURL, path)
	if err != nil {
		return nil, fmt.Errorf("building url: %w", err)
	}

	var raw []byte
	err = retryharness.WithTransientRetry(ctx, 4, func() error {
		req, err := http.NewRequestWithContext(ctx, method, u, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return retryharness.RetryableError{Err: fmt.Errorf("submitting request to %s: %w", u, err)}
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			log.Ctx(ctx).Warnf("mpesa client: %s returned %d, retrying", u, resp.StatusCode)
			return retryharness.RetryableError{Err: fmt.Errorf("transient status %d", resp.StatusCode), RetryAfter: 2 * time.Second}
		}

		buf := new(bytes.Buffer)
		if _, err := buf.ReadFrom(resp.Body); err != nil {
			return fmt.Errorf("reading response body: %w", err)
		}
		raw = buf.Bytes()

		if resp.StatusCode >= http.StatusBadRequest {
			return fmt.Errorf("mpesa API error %d: %s", resp.StatusCode, raw)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func classifyRequestError(err error) error {
	return provider.NewWithdrawalError(provider.Mpesa, provider.ErrorKindNetwork, err)
}

var _ provider.PaymentProvider = (*Client)(nil)
