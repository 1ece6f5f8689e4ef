package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/support/config"
	"github.com/stellar/go/support/log"

	cmdUtils "github.com/bitstarkbridge/aframp-backend/cmd/utils"
	"github.com/bitstarkbridge/aframp-backend/db"
	"github.com/bitstarkbridge/aframp-backend/internal/crashtracker"
	"github.com/bitstarkbridge/aframp-backend/internal/onramp"
	"github.com/bitstarkbridge/aframp-backend/internal/provider"
	"github.com/bitstarkbridge/aframp-backend/internal/provider/flutterwave"
	"github.com/bitstarkbridge/aframp-backend/internal/provider/mpesa"
	"github.com/bitstarkbridge/aframp-backend/internal/provider/paystack"
	"github.com/bitstarkbridge/aframp-backend/internal/scheduler"
	"github.com/bitstarkbridge/aframp-backend/internal/stellarbridge"
	"github.com/bitstarkbridge/aframp-backend/internal/store"
)

// OnrampCommand runs the onramp engine's cycle on a ticker until
// shutdown: it never serves HTTP, it only drives transactions already
// created by the serve command's API forward through their lifecycle.
type OnrampCommand struct{}

func (c *OnrampCommand) Command() *cobra.Command {
	stellarOpts := cmdUtils.StellarBridgeOptions{}
	cycleOpts := cmdUtils.EngineCycleOptions{}
	retryOpts := cmdUtils.RetryPolicyOptions{}
	crashTrackerOptions := crashtracker.CrashTrackerOptions{}
	providerOpts := cmdUtils.PaymentProviderOptions{}
	dbPoolOpts := cmdUtils.DBPoolOptions{}
	notifyOpts := cmdUtils.NotifyOptions{}

	configOpts := config.ConfigOptions{}
	configOpts = append(configOpts, cmdUtils.StellarBridgeConfigOptions(&stellarOpts)...)
	configOpts = append(configOpts, cmdUtils.EngineCycleConfigOptions(&cycleOpts, 30)...)
	configOpts = append(configOpts, cmdUtils.RetryPolicyConfigOptions(&retryOpts)...)
	configOpts = append(configOpts, cmdUtils.DBPoolConfigOptions(&dbPoolOpts)...)
	configOpts = append(configOpts, cmdUtils.PaymentProviderConfigOptions(&providerOpts)...)
	configOpts = append(configOpts, cmdUtils.CrashTrackerTypeConfigOption(&crashTrackerOptions.CrashTrackerType))
	configOpts = append(configOpts, cmdUtils.NotifyConfigOptions(&notifyOpts)...)

	cmd := &cobra.Command{
		Use:              "onramp",
		Short:            "Run the onramp engine cycle (NGN-in to cNGN-out)",
		PersistentPreRun: cmdUtils.PropagatePersistentPreRun,
		Run: func(cmd *cobra.Command, _ []string) {
			ctx := cmd.Context()

			if err := configOpts.SetValues(); err != nil {
				log.Ctx(ctx).Fatalf("error setting onramp config values: %s", err.Error())
			}
			globalOptions.populateCrashTrackerOptions(&crashTrackerOptions)

			pool, err := db.OpenDBConnectionPoolWithConfig(globalOptions.databaseURL, db.DBPoolConfig{
				MaxOpenConns:    dbPoolOpts.DBMaxOpenConns,
				MaxIdleConns:    dbPoolOpts.DBMaxIdleConns,
				ConnMaxIdleTime: time.Duration(dbPoolOpts.DBConnMaxIdleTimeSeconds) * time.Second,
				ConnMaxLifetime: time.Duration(dbPoolOpts.DBConnMaxLifetimeSeconds) * time.Second,
			})
			if err != nil {
				log.Ctx(ctx).Fatalf("error opening DB connection pool: %s", err.Error())
			}
			defer pool.Close()

			crashTrackerClient, err := crashtracker.GetClient(ctx, crashTrackerOptions)
			if err != nil {
				log.Ctx(ctx).Fatalf("error creating crash tracker client: %s", err.Error())
			}

			notifier, err := cmdUtils.BuildNotifier(notifyOpts)
			if err != nil {
				log.Ctx(ctx).Fatalf("error creating notification client: %s", err.Error())
			}

			horizonClient := &horizonclient.Client{HorizonURL: stellarOpts.HorizonURL}
			gateway := stellarbridge.NewHorizonGateway(horizonClient)

			engine := &onramp.Engine{
				Transactions:      store.NewTransactionRepository(pool),
				Gateway:           gateway,
				Providers:         buildProviders(providerOpts),
				HotWalletSecret:   stellarOpts.HotWalletSecret,
				SystemWalletAddr:  stellarOpts.SystemWalletAddr,
				NetworkPassphrase: stellarOpts.NetworkPassphrase,
				CNGNAssetCode:     providerOpts.CNGNAssetCode,
				CNGNAssetIssuer:   stellarOpts.CNGNAssetIssuer,
				PollInterval:      cycleOpts.PollInterval(),
				BatchSize:         cycleOpts.BatchSize,
				PendingTimeout:    cycleOpts.PendingTimeout(),
				StellarRetries:    retryOpts.StellarMaxRetries,
				Notifier:          notifier,
				OperatorEmail:     notifyOpts.OperatorEmail,
			}

			log.Ctx(ctx).Info("Starting onramp engine...")
			scheduler.StartScheduler(crashTrackerClient, scheduler.WithJob(engine))
		},
	}

	if err := configOpts.Init(cmd); err != nil {
		log.Fatalf("error initializing onramp config options: %s", err.Error())
	}

	return cmd
}

// buildProviders wires the three concrete payment-provider clients behind
// the provider.PaymentProvider interface the onramp and offramp engines
// share, keyed by provider.Name the way provider.SelectProvider expects.
func buildProviders(opts cmdUtils.PaymentProviderOptions) map[provider.Name]provider.PaymentProvider {
	return map[provider.Name]provider.PaymentProvider{
		provider.Flutterwave: flutterwave.NewClient(flutterwave.ClientOptions{
			BaseURL: opts.FlutterwaveBaseURL,
			APIKey:  opts.FlutterwaveAPIKey,
		}),
		provider.Paystack: paystack.NewClient(paystack.ClientOptions{
			BaseURL: opts.PaystackBaseURL,
			APIKey:  opts.PaystackAPIKey,
		}),
		provider.Mpesa: mpesa.NewClient(mpesa.ClientOptions{
			BaseURL:            opts.MpesaBaseURL,
			ConsumerKey:        opts.MpesaConsumerKey,
			ConsumerSecret:     opts.MpesaConsumerSecret,
			ShortCode:          opts.MpesaShortCode,
			InitiatorName:      opts.MpesaInitiatorName,
			SecurityCredential: opts.MpesaSecurityCredential,
		}),
	}
}
