package utils

import (
	"fmt"
	"go/types"
	"time"

	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/network"
	"github.com/stellar/go/support/config"

	"github.com/bitstarkbridge/aframp-backend/db"
	"github.com/bitstarkbridge/aframp-backend/internal/crashtracker"
	"github.com/bitstarkbridge/aframp-backend/internal/notify"
	"github.com/bitstarkbridge/aframp-backend/internal/retryharness"
)

// DBPoolOptions contains tunables for the PostgreSQL connection pool.
type DBPoolOptions struct {
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxIdleTimeSeconds int
	DBConnMaxLifetimeSeconds int
}

// DBPoolConfigOptions returns config options for tuning the DB connection pool.
func DBPoolConfigOptions(opts *DBPoolOptions) []*config.ConfigOption {
	return []*config.ConfigOption{
		{
			Name:        "db-max-open-conns",
			Usage:       "Maximum number of open DB connections per pool",
			OptType:     types.Int,
			ConfigKey:   &opts.DBMaxOpenConns,
			FlagDefault: db.DefaultDBPoolConfig.MaxOpenConns,
			Required:    false,
		},
		{
			Name:        "db-max-idle-conns",
			Usage:       "Maximum number of idle DB connections retained per pool",
			OptType:     types.Int,
			ConfigKey:   &opts.DBMaxIdleConns,
			FlagDefault: db.DefaultDBPoolConfig.MaxIdleConns,
			Required:    false,
		},
		{
			Name:        "db-conn-max-idle-time-seconds",
			Usage:       "Maximum idle time in seconds before a connection is closed",
			OptType:     types.Int,
			ConfigKey:   &opts.DBConnMaxIdleTimeSeconds,
			FlagDefault: db.DefaultConnMaxIdleTimeSeconds,
			Required:    false,
		},
		{
			Name:        "db-conn-max-lifetime-seconds",
			Usage:       "Maximum lifetime in seconds for a single connection",
			OptType:     types.Int,
			ConfigKey:   &opts.DBConnMaxLifetimeSeconds,
			FlagDefault: db.DefaultConnMaxLifetimeSeconds,
			Required:    false,
		},
	}
}

// AWSConfigOptions returns the config options needed for the
// notify.MessengerTypeAWSEmail messenger.
func AWSConfigOptions(opts *notify.MessengerOptions) []*config.ConfigOption {
	return []*config.ConfigOption{
		{
			Name:      "aws-access-key-id",
			Usage:     "The AWS access key ID",
			OptType:   types.String,
			ConfigKey: &opts.AWSAccessKeyID,
			Required:  false,
		},
		{
			Name:      "aws-secret-access-key",
			Usage:     "The AWS secret access key",
			OptType:   types.String,
			ConfigKey: &opts.AWSSecretAccessKey,
			Required:  false,
		},
		{
			Name:      "aws-region",
			Usage:     "The AWS region",
			OptType:   types.String,
			ConfigKey: &opts.AWSRegion,
			Required:  false,
		},
		{
			Name:      "aws-ses-sender-id",
			Usage:     "The email address that AWS will use to send the ops-alert emails. Uses AWS SES.",
			OptType:   types.String,
			ConfigKey: &opts.AWSSESSenderID,
			Required:  false,
		},
	}
}

// NotifyOptions holds the operator-mailbox notification settings shared by
// the serve, onramp, and offramp commands: which messenger backend to use,
// where to send transaction-lifecycle alerts, and (when the backend is
// notify.MessengerTypeAWSEmail) the AWS SES credentials.
type NotifyOptions struct {
	MessengerType string
	OperatorEmail string
	notify.MessengerOptions
}

// NotifyConfigOptions returns the config options for the operator
// notification messenger, including the embedded AWSConfigOptions since
// the AWS SES backend is the only one with credentials to configure.
func NotifyConfigOptions(opts *NotifyOptions) []*config.ConfigOption {
	configOpts := []*config.ConfigOption{
		{
			Name:        "notification-messenger-type",
			Usage:       `Messenger backend used for operator notifications. Options: "AWS_EMAIL", "DRY_RUN"`,
			OptType:     types.String,
			ConfigKey:   &opts.MessengerType,
			FlagDefault: string(notify.MessengerTypeDryRun),
			Required:    false,
		},
		{
			Name:      "operator-email",
			Usage:     "Email address that receives transaction-lifecycle notifications",
			OptType:   types.String,
			ConfigKey: &opts.OperatorEmail,
			Required:  false,
		},
	}
	return append(configOpts, AWSConfigOptions(&opts.MessengerOptions)...)
}

// BuildNotifier parses opts.MessengerType and constructs the matching
// notify.MessengerClient, the same GetClient dispatch crashtracker.GetClient
// and provider.SelectProvider use for their own backend-selection options.
func BuildNotifier(opts NotifyOptions) (notify.MessengerClient, error) {
	messengerType, err := notify.ParseMessengerType(opts.MessengerType)
	if err != nil {
		return nil, fmt.Errorf("parsing notification messenger type: %w", err)
	}
	opts.MessengerOptions.MessengerType = messengerType

	client, err := notify.GetClient(opts.MessengerOptions)
	if err != nil {
		return nil, fmt.Errorf("building notification messenger client: %w", err)
	}
	return client, nil
}

func CrashTrackerTypeConfigOption(targetPointer interface{}) *config.ConfigOption {
	return &config.ConfigOption{
		Name:           "crash-tracker-type",
		Usage:          `Crash tracker type. Options: "SENTRY", "DRY_RUN"`,
		OptType:        types.String,
		CustomSetValue: SetConfigOptionCrashTrackerType,
		ConfigKey:      targetPointer,
		FlagDefault:    string(crashtracker.CrashTrackerTypeDryRun),
		Required:       true,
	}
}

// EngineCycleOptions holds the tunables shared by the onramp and offramp
// processor cycles.
type EngineCycleOptions struct {
	PollIntervalSeconds         int
	BatchSize                   int
	PendingTimeoutMinutes       int
	StellarConfirmationPollSecs int
	StellarConfirmationTimeoutM int
	OfframpRetryTimeoutHours    int
}

// EngineCycleConfigOptions returns the config options that govern one
// processor cycle's pacing — tick interval, batch size, and the timeout
// windows the cycle compares created_at/updated_at against.
// defaultPollIntervalSeconds differs between onramp (30s) and offramp
// (10s) per SPEC_FULL, so it is supplied by the caller rather than
// hardcoded here.
func EngineCycleConfigOptions(opts *EngineCycleOptions, defaultPollIntervalSeconds int) []*config.ConfigOption {
	return []*config.ConfigOption{
		{
			Name:        "poll-interval-seconds",
			Usage:       "How often the engine cycle runs, in seconds",
			OptType:     types.Int,
			ConfigKey:   &opts.PollIntervalSeconds,
			FlagDefault: defaultPollIntervalSeconds,
			Required:    false,
		},
		{
			Name:        "batch-size",
			Usage:       "Maximum number of transactions processed per stage per cycle",
			OptType:     types.Int,
			ConfigKey:   &opts.BatchSize,
			FlagDefault: 50,
			Required:    false,
		},
		{
			Name:        "pending-timeout-minutes",
			Usage:       "Minutes an onramp transaction may stay pending before the onramp engine marks it failed with PAYMENT_TIMEOUT; the offramp engine does not read this value",
			OptType:     types.Int,
			ConfigKey:   &opts.PendingTimeoutMinutes,
			FlagDefault: 30,
			Required:    false,
		},
		{
			Name:        "stellar-confirmation-poll-seconds",
			Usage:       "Confirmation poll interval in seconds. The value is parsed but not applied: the onramp engine checks submitted transactions against Horizon once per engine cycle",
			OptType:     types.Int,
			ConfigKey:   &opts.StellarConfirmationPollSecs,
			FlagDefault: 10,
			Required:    false,
		},
		{
			Name:        "stellar-confirmation-timeout-minutes",
			Usage:       "Confirmation timeout in minutes. The value is parsed but not applied: a submitted Stellar transaction that never confirms stays in processing",
			OptType:     types.Int,
			ConfigKey:   &opts.StellarConfirmationTimeoutM,
			FlagDefault: 5,
			Required:    false,
		},
		{
			Name:        "offramp-retry-timeout-hours",
			Usage:       "Hours an offramp withdrawal may remain retryable with the payment provider before it is escalated to refund",
			OptType:     types.Int,
			ConfigKey:   &opts.OfframpRetryTimeoutHours,
			FlagDefault: 24,
			Required:    false,
		},
	}
}

func (o EngineCycleOptions) PollInterval() time.Duration {
	return time.Duration(o.PollIntervalSeconds) * time.Second
}

func (o EngineCycleOptions) PendingTimeout() time.Duration {
	return time.Duration(o.PendingTimeoutMinutes) * time.Minute
}

func (o EngineCycleOptions) StellarConfirmationPoll() time.Duration {
	return time.Duration(o.StellarConfirmationPollSecs) * time.Second
}

func (o EngineCycleOptions) StellarConfirmationTimeout() time.Duration {
	return time.Duration(o.StellarConfirmationTimeoutM) * time.Minute
}

func (o EngineCycleOptions) OfframpRetryTimeout() time.Duration {
	return time.Duration(o.OfframpRetryTimeoutHours) * time.Hour
}

// PaymentProviderOptions holds the credentials for the three concrete
// payment-provider clients (internal/provider/flutterwave, .../paystack,
// .../mpesa) plus the cNGN asset code, which has no natural home among
// the Stellar-specific options since it describes a fiat-side asset
// rather than a Stellar account.
type PaymentProviderOptions struct {
	CNGNAssetCode string

	FlutterwaveBaseURL string
	FlutterwaveAPIKey  string

	PaystackBaseURL string
	PaystackAPIKey  string

	MpesaBaseURL            string
	MpesaConsumerKey        string
	MpesaConsumerSecret     string
	MpesaShortCode          string
	MpesaInitiatorName      string
	MpesaSecurityCredential string
}

// PaymentProviderConfigOptions returns the config options for the onramp
// and offramp engines' shared provider clients.
func PaymentProviderConfigOptions(opts *PaymentProviderOptions) []*config.ConfigOption {
	return []*config.ConfigOption{
		{
			Name:        "cngn-asset-code",
			Usage:       "The Stellar asset code for cNGN",
			OptType:     types.String,
			ConfigKey:   &opts.CNGNAssetCode,
			FlagDefault: "cNGN",
			Required:    false,
		},
		{
			Name:        "flutterwave-base-url",
			Usage:       "Base URL of the Flutterwave API",
			OptType:     types.String,
			ConfigKey:   &opts.FlutterwaveBaseURL,
			FlagDefault: "https://api.flutterwave.com",
			Required:    false,
		},
		{
			Name:      "flutterwave-api-key",
			Usage:     "Flutterwave secret API key",
			OptType:   types.String,
			ConfigKey: &opts.FlutterwaveAPIKey,
			Required:  true,
		},
		{
			Name:        "paystack-base-url",
			Usage:       "Base URL of the Paystack API",
			OptType:     types.String,
			ConfigKey:   &opts.PaystackBaseURL,
			FlagDefault: "https://api.paystack.co",
			Required:    false,
		},
		{
			Name:      "paystack-api-key",
			Usage:     "Paystack secret API key",
			OptType:   types.String,
			ConfigKey: &opts.PaystackAPIKey,
			Required:  true,
		},
		{
			Name:        "mpesa-base-url",
			Usage:       "Base URL of the M-Pesa Daraja API",
			OptType:     types.String,
			ConfigKey:   &opts.MpesaBaseURL,
			FlagDefault: "https://api.safaricom.co.ke",
			Required:    false,
		},
		{
			Name:      "mpesa-consumer-key",
			Usage:     "M-Pesa Daraja OAuth consumer key",
			OptType:   types.String,
			ConfigKey: &opts.MpesaConsumerKey,
			Required:  true,
		},
		{
			Name:      "mpesa-consumer-secret",
			Usage:     "M-Pesa Daraja OAuth consumer secret",
			OptType:   types.String,
			ConfigKey: &opts.MpesaConsumerSecret,
			Required:  true,
		},
		{
			Name:      "mpesa-short-code",
			Usage:     "M-Pesa B2C organization short code",
			OptType:   types.String,
			ConfigKey: &opts.MpesaShortCode,
			Required:  true,
		},
		{
			Name:      "mpesa-initiator-name",
			Usage:     "M-Pesa B2C initiator name",
			OptType:   types.String,
			ConfigKey: &opts.MpesaInitiatorName,
			Required:  true,
		},
		{
			Name:      "mpesa-security-credential",
			Usage:     "M-Pesa B2C initiator security credential",
			OptType:   types.String,
			ConfigKey: &opts.MpesaSecurityCredential,
			Required:  true,
		},
	}
}

// StellarBridgeOptions holds the credentials and network details the
// Stellar gateway needs. There is no channel-account pool and no
// signature service abstraction: one hot wallet signs every
// transaction this system submits.
type StellarBridgeOptions struct {
	HorizonURL        string
	NetworkPassphrase string
	HotWalletSecret   string
	SystemWalletAddr  string
	CNGNAssetIssuer   string
}

func StellarBridgeConfigOptions(opts *StellarBridgeOptions) []*config.ConfigOption {
	return []*config.ConfigOption{
		{
			Name:        "horizon-url",
			Usage:       "The URL of the Stellar Horizon server this application communicates with.",
			OptType:     types.String,
			ConfigKey:   &opts.HorizonURL,
			FlagDefault: horizonclient.DefaultTestNetClient.HorizonURL,
			Required:    true,
		},
		{
			Name:        "network-passphrase",
			Usage:       "The Stellar network passphrase",
			OptType:     types.String,
			ConfigKey:   &opts.NetworkPassphrase,
			FlagDefault: network.TestNetworkPassphrase,
			Required:    true,
		},
		{
			Name:           "hot-wallet-secret",
			Usage:          "The private key of the hot wallet used to submit every onramp and offramp payment and refund. No default.",
			OptType:        types.String,
			CustomSetValue: SetConfigOptionStellarPrivateKey,
			ConfigKey:      &opts.HotWalletSecret,
			Required:       true,
		},
		{
			Name:           "system-wallet-address",
			Usage:          "The public key that receives cNGN deposits on offramp. No default.",
			OptType:        types.String,
			CustomSetValue: SetConfigOptionStellarPublicKey,
			ConfigKey:      &opts.SystemWalletAddr,
			Required:       true,
		},
		{
			Name:           "cngn-asset-issuer",
			Usage:          "The public key of the cNGN asset issuer account. No default.",
			OptType:        types.String,
			CustomSetValue: SetConfigOptionStellarPublicKey,
			ConfigKey:      &opts.CNGNAssetIssuer,
			Required:       true,
		},
	}
}

// RetryPolicyOptions exposes the max-attempts knob for the two named
// retryharness.Policy values; the backoff vectors themselves are fixed,
// matching SPEC_FULL's committed defaults.
type RetryPolicyOptions struct {
	StellarMaxRetries int
	RefundMaxRetries  int
}

func RetryPolicyConfigOptions(opts *RetryPolicyOptions) []*config.ConfigOption {
	return []*config.ConfigOption{
		{
			Name:        "stellar-max-retries",
			Usage:       "Maximum attempts for a single Stellar submission before the transaction is escalated to refund",
			OptType:     types.Int,
			ConfigKey:   &opts.StellarMaxRetries,
			FlagDefault: retryharness.StellarSubmission.MaxAttempts,
			Required:    false,
		},
		{
			Name:        "refund-max-retries",
			Usage:       "Maximum attempts for a refund submission. The value is parsed but not read by either engine: the offramp refund stage marks a refund failed on its first build or submit error",
			OptType:     types.Int,
			ConfigKey:   &opts.RefundMaxRetries,
			FlagDefault: retryharness.RefundSubmission.MaxAttempts,
			Required:    false,
		},
	}
}

// HTTPServerOptions holds the tunables for the API process's HTTP
// listener, separate from StellarBridgeOptions/PaymentProviderOptions
// since only the serve command (not onramp/offramp) binds a port.
type HTTPServerOptions struct {
	Port               int
	CorsAllowedOrigins []string
	QuoteCacheSize     int
}

func HTTPServerConfigOptions(opts *HTTPServerOptions) []*config.ConfigOption {
	return []*config.ConfigOption{
		{
			Name:        "port",
			Usage:       "Port the API server listens on",
			OptType:     types.Int,
			ConfigKey:   &opts.Port,
			FlagDefault: 8000,
			Required:    true,
		},
		{
			Name:           "cors-allowed-origins",
			Usage:          `CORS origins allowed to access the API, separated by ","`,
			OptType:        types.String,
			CustomSetValue: SetCorsAllowedOrigins,
			ConfigKey:      &opts.CorsAllowedOrigins,
			Required:       true,
		},
		{
			Name:        "quote-cache-size",
			Usage:       "Maximum number of in-flight quotes held in the TTL cache at once",
			OptType:     types.Int,
			ConfigKey:   &opts.QuoteCacheSize,
			FlagDefault: 10_000,
			Required:    false,
		},
	}
}

// WebhookOptions holds the shared HMAC secrets internal/webhook verifies
// inbound provider webhooks against, one per provider.
type WebhookOptions struct {
	FlutterwaveSecret string
	PaystackSecret    string
	MpesaSecret       string
}

func WebhookConfigOptions(opts *WebhookOptions) []*config.ConfigOption {
	return []*config.ConfigOption{
		{
			Name:      "flutterwave-webhook-secret",
			Usage:     "Shared secret Flutterwave webhook signatures are verified against",
			OptType:   types.String,
			ConfigKey: &opts.FlutterwaveSecret,
			Required:  true,
		},
		{
			Name:      "paystack-webhook-secret",
			Usage:     "Shared secret Paystack webhook signatures are verified against",
			OptType:   types.String,
			ConfigKey: &opts.PaystackSecret,
			Required:  true,
		},
		{
			Name:      "mpesa-webhook-secret",
			Usage:     "Shared secret M-Pesa webhook signatures are verified against",
			OptType:   types.String,
			ConfigKey: &opts.MpesaSecret,
			Required:  true,
		},
	}
}
